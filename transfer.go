package wavetile

// TransferOption adjusts how Load and Store map tile axes onto a View.
type TransferOption func(*transferConfig)

type transferConfig struct {
	rowAxis Axis
}

// WithRowAxis selects the view axis that tile rows run along. The default is
// AxisRow; tile columns always run along AxisCol.
func WithRowAxis(a Axis) TransferOption {
	return func(c *transferConfig) {
		c.rowAxis = a
	}
}

func newTransferConfig(opts []TransferOption) transferConfig {
	cfg := transferConfig{rowAxis: AxisRow}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

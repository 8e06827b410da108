package wavetile

// LayoutKind names how a tile's elements are distributed across lanes.
type LayoutKind int

const (
	// LayoutRow: each lane holds a contiguous run along one row
	LayoutRow LayoutKind = iota
	// LayoutCol: each lane holds accumulator slots of one column (MFMA result layout)
	LayoutCol
)

func (k LayoutKind) String() string {
	if k == LayoutCol {
		return "col"
	}
	return "row"
}

// Layout is the closed set of layout tags. A tile's layout is part of its
// type, so converting layouts always produces a new tile value.
type Layout interface {
	Row | Col
	Kind() LayoutKind
}

// Row tags row-layout tiles (matmul operands, Load).
type Row struct{}

// Col tags column-layout tiles (matmul accumulators, Store).
type Col struct{}

// Kind implements Layout
func (Row) Kind() LayoutKind { return LayoutRow }

// Kind implements Layout
func (Col) Kind() LayoutKind { return LayoutCol }

func layoutOf[L Layout]() LayoutKind {
	var l L
	return l.Kind()
}

// TileKind tags the two register tile shapes.
type TileKind int

const (
	TileBase TileKind = iota
	TileComposite
)

// Tiled is implemented by BaseTile and Tile.
type Tiled interface {
	TileKind() TileKind
	Layout() LayoutKind
	Rows() int
	Cols() int
}

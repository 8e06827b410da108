package wavetile

import (
	"fmt"
	"math"
)

// Tolerance bounds how far a device result may drift from the host oracle.
// A value passes when it is within Abs of the oracle, or within Rel of the
// larger magnitude of the two.
type Tolerance struct {
	Abs float32
	Rel float32
}

// MatmulTolerance is the bound for a narrow-input tile matmul against the
// float32 oracle: absolute 2e-2, no relative slack.
func MatmulTolerance() Tolerance {
	return Tolerance{Abs: 2e-2}
}

// Float32NearEqual reports whether got matches want within tol. NaN matches
// only NaN and an infinity matches only the same infinity.
func Float32NearEqual(want, got float32, tol Tolerance) bool {
	w, g := float64(want), float64(got)
	switch {
	case w == g:
		return true
	case math.IsNaN(w) || math.IsNaN(g):
		return math.IsNaN(w) && math.IsNaN(g)
	case math.IsInf(w, 0) || math.IsInf(g, 0):
		return false
	}

	diff := math.Abs(w - g)
	if diff <= float64(tol.Abs) {
		return true
	}
	return diff <= math.Max(math.Abs(w), math.Abs(g))*float64(tol.Rel)
}

// VerificationResult summarizes an element-wise comparison.
type VerificationResult struct {
	TotalItems  int     // Values in the oracle output
	ActualItems int     // Values in the device output
	NumErrors   int     // Values outside tolerance, or every value on a length mismatch
	FirstError  int     // Index of the first failing value, -1 if none
	MaxAbsError float32 // Largest absolute error among failing values
}

// OK reports whether every value matched.
func (r VerificationResult) OK() bool {
	return r.NumErrors == 0 && r.TotalItems == r.ActualItems
}

// VerifyFloat32Array compares a device output against the oracle output.
// Outputs of different lengths fail as a whole.
func VerifyFloat32Array(expected, actual []float32, tol Tolerance) VerificationResult {
	r := VerificationResult{
		TotalItems:  len(expected),
		ActualItems: len(actual),
		FirstError:  -1,
	}
	if len(expected) != len(actual) {
		r.NumErrors = max(len(expected), len(actual))
		r.FirstError = min(len(expected), len(actual))
		return r
	}

	for i, want := range expected {
		if Float32NearEqual(want, actual[i], tol) {
			continue
		}
		r.NumErrors++
		if r.FirstError < 0 {
			r.FirstError = i
		}
		if d := float32(math.Abs(float64(want) - float64(actual[i]))); d > r.MaxAbsError {
			r.MaxAbsError = d
		}
	}
	return r
}

func (r VerificationResult) String() string {
	switch {
	case r.TotalItems != r.ActualItems:
		return fmt.Sprintf("FAIL: length mismatch: want %d values, got %d", r.TotalItems, r.ActualItems)
	case r.NumErrors == 0:
		return fmt.Sprintf("PASS: %d values within tolerance", r.TotalItems)
	}
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%), max abs error %e, first at index %d",
		r.NumErrors, r.TotalItems, float64(r.NumErrors)/float64(r.TotalItems)*100,
		r.MaxAbsError, r.FirstError)
}

package wavetile

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestFloat32NearEqual(t *testing.T) {
	inf, nan := float32(math.Inf(1)), float32(math.NaN())
	tests := []struct {
		name      string
		want, got float32
		tol       Tolerance
		expected  bool
	}{
		{"Exact", 1.5, 1.5, MatmulTolerance(), true},
		{"SignedZeros", 0, float32(math.Copysign(0, -1)), MatmulTolerance(), true},
		{"WithinAbs", 1.0, 1.019, MatmulTolerance(), true},
		{"OutsideAbs", 1.0, 1.021, MatmulTolerance(), false},
		{"AbsOnlyAtScale", 1000, 1000.05, MatmulTolerance(), false},
		{"WithinRel", 1000, 1000.05, Tolerance{Rel: 1e-4}, true},
		{"OutsideRel", 1000, 1000.5, Tolerance{Rel: 1e-4}, false},
		{"SameInf", inf, inf, MatmulTolerance(), true},
		{"MixedInf", inf, -inf, Tolerance{Abs: 1, Rel: 1}, false},
		{"InfVsFinite", inf, math.MaxFloat32, Tolerance{Rel: 1}, false},
		{"BothNaN", nan, nan, MatmulTolerance(), true},
		{"NaNVsValue", nan, 0, Tolerance{Abs: 1, Rel: 1}, false},
		{"ValueVsNaN", 0, nan, Tolerance{Abs: 1, Rel: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Float32NearEqual(tt.want, tt.got, tt.tol); got != tt.expected {
				t.Errorf("Float32NearEqual(%v, %v) = %v, want %v", tt.want, tt.got, got, tt.expected)
			}
		})
	}
}

func TestVerifyFloat32Array(t *testing.T) {
	tests := []struct {
		name       string
		expected   []float32
		actual     []float32
		wantErrors int
		wantFirst  int
		wantOK     bool
	}{
		{"AllMatch", []float32{1, 2, 3, 4}, []float32{1, 2, 3, 4}, 0, -1, true},
		{"WithinTolerance", []float32{1, 2, 3, 4}, []float32{1.01, 1.99, 3.015, 4}, 0, -1, true},
		{"OneOutside", []float32{1, 2, 3, 4}, []float32{1, 2, 3.5, 4}, 1, 2, false},
		{"ShortActual", []float32{1, 2, 3}, []float32{1, 2}, 3, 2, false},
		{"LongActual", []float32{1, 2}, []float32{1, 2, 3}, 3, 2, false},
		{"EmptyActual", []float32{1}, nil, 1, 0, false},
		{"NaNResult", []float32{1, 2}, []float32{1, float32(math.NaN())}, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := VerifyFloat32Array(tt.expected, tt.actual, MatmulTolerance())
			if r.NumErrors != tt.wantErrors || r.FirstError != tt.wantFirst {
				t.Errorf("errors %d first %d, want %d and %d", r.NumErrors, r.FirstError, tt.wantErrors, tt.wantFirst)
			}
			if r.OK() != tt.wantOK {
				t.Errorf("OK() = %v, want %v\n%s", r.OK(), tt.wantOK, r)
			}
			if prefix := map[bool]string{true: "PASS", false: "FAIL"}[tt.wantOK]; !strings.HasPrefix(r.String(), prefix) {
				t.Errorf("String() = %q, want prefix %s", r.String(), prefix)
			}
		})
	}
}

func TestVerifyReportsLargestError(t *testing.T) {
	r := VerifyFloat32Array([]float32{0, 0, 0}, []float32{0.5, -2, 0.03}, MatmulTolerance())
	if r.NumErrors != 3 || r.FirstError != 0 || r.MaxAbsError != 2 {
		t.Errorf("got %+v", r)
	}
	if !strings.Contains(r.String(), "3/3") {
		t.Errorf("String() = %q", r.String())
	}
}

// Narrowing the inputs of a 16-deep dot product moves the result by far less
// than the matmul bound, so the bound separates rounding from layout bugs.
func TestMatmulToleranceCoversInputRounding(t *testing.T) {
	const m, n, k = 32, 32, TileCols
	rng := rand.New(rand.NewSource(9))
	a, b := randomMatrix(rng, m*k), randomMatrix(rng, n*k)

	exact := make([]float32, m*n)
	Reference{}.MatmulABt(m, n, k, a, b, exact)

	t.Run("bf16", func(t *testing.T) {
		rounded := make([]float32, m*n)
		Reference{}.MatmulABt(m, n, k, Round[BF16](a), Round[BF16](b), rounded)
		if r := VerifyFloat32Array(exact, rounded, MatmulTolerance()); !r.OK() {
			t.Errorf("%s", r)
		}
	})
	t.Run("f16", func(t *testing.T) {
		rounded := make([]float32, m*n)
		Reference{}.MatmulABt(m, n, k, Round[Half](a), Round[Half](b), rounded)
		if r := VerifyFloat32Array(exact, rounded, MatmulTolerance()); !r.OK() {
			t.Errorf("%s", r)
		}
	})

	// A transposed result is a layout bug and must fail
	transposed := make([]float32, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			transposed[j*m+i] = exact[i*n+j]
		}
	}
	if r := VerifyFloat32Array(exact, transposed, MatmulTolerance()); r.OK() {
		t.Error("transposed result passed the matmul bound")
	}
}

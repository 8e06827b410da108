package wavetile

import (
	"math"
	"math/rand"
	"testing"
)

// loadMatrix loads a rows x cols host matrix into a row-layout tile.
func loadMatrix[T Element](t *testing.T, h []float32, rows, cols int) *Tile[T, Row] {
	t.Helper()
	v, err := ViewOf(NarrowSlice[T](h), 1, 1, rows, cols)
	if err != nil {
		t.Fatalf("ViewOf: %v", err)
	}
	tile := MustTile[T, Row](rows, cols)
	Load(tile, v, Coord{})
	return tile
}

// storeMatrix writes a column-layout accumulator out as a rows x cols host matrix.
func storeMatrix(t *testing.T, c *Tile[float32, Col]) []float32 {
	t.Helper()
	out := make([]float32, c.Rows()*c.Cols())
	v, err := ViewOf(out, 1, 1, c.Rows(), c.Cols())
	if err != nil {
		t.Fatalf("ViewOf: %v", err)
	}
	if err := Store(v, c, Coord{}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	return out
}

func randomMatrix(rng *rand.Rand, size int) []float32 {
	out := make([]float32, size)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}

func TestMatmulIdentity(t *testing.T) {
	const m, n, k = 32, 32, 16

	// One-hot rows: A[i][i%16] = 1
	ha := make([]float32, m*k)
	for i := 0; i < m; i++ {
		ha[i*k+i%k] = 1
	}
	hb := make([]float32, n*k)
	for j := 0; j < k; j++ {
		hb[j*k+j] = 1
	}

	a := loadMatrix[BF16](t, ha, m, k)
	b := loadMatrix[BF16](t, hb, n, k)
	c := MustTile[float32, Col](m, n)
	c.Zero()
	if err := MatmulABt(c, a, b); err != nil {
		t.Fatalf("MatmulABt: %v", err)
	}

	got := storeMatrix(t, c)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			want := float32(0)
			if j < k {
				want = ha[i*k+j]
			}
			if math.Abs(float64(got[i*n+j]-want)) > 2e-2 {
				t.Fatalf("C[%d][%d] = %v, want %v", i, j, got[i*n+j], want)
			}
		}
	}
}

func TestMatmulRandom(t *testing.T) {
	tests := []struct {
		name string
		m, n int
	}{
		{"32x32", 32, 32},
		{"64x32", 64, 32},
		{"32x96", 32, 96},
		{"96x64", 96, 64},
	}
	rng := rand.New(rand.NewSource(42))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const k = TileCols
			ha, hb := randomMatrix(rng, tt.m*k), randomMatrix(rng, tt.n*k)

			t.Run("bf16", func(t *testing.T) {
				checkMatmul[BF16](t, ha, hb, tt.m, tt.n, Round[BF16](ha), Round[BF16](hb))
			})
			t.Run("f16", func(t *testing.T) {
				// Unrounded oracle inputs: the tolerance absorbs f16 input rounding
				checkMatmul[Half](t, ha, hb, tt.m, tt.n, ha, hb)
			})
		})
	}
}

func checkMatmul[T Narrow](t *testing.T, ha, hb []float32, m, n int, refA, refB []float32) {
	t.Helper()
	const k = TileCols
	a := loadMatrix[T](t, ha, m, k)
	b := loadMatrix[T](t, hb, n, k)
	c := MustTile[float32, Col](m, n)
	c.Zero()
	if err := MatmulABt(c, a, b); err != nil {
		t.Fatalf("MatmulABt: %v", err)
	}

	want := make([]float32, m*n)
	Reference{}.MatmulABt(m, n, k, refA, refB, want)
	res := VerifyFloat32Array(want, storeMatrix(t, c), MatmulTolerance())
	if res.NumErrors != 0 {
		t.Errorf("%s", res)
	}
}

func TestMatmulAccumulatesAcrossK(t *testing.T) {
	// K = 32 split by the caller into two K = 16 calls on the same C
	const m, n, k = 64, 32, 32
	rng := rand.New(rand.NewSource(3))
	ha, hb := Round[BF16](randomMatrix(rng, m*k)), Round[BF16](randomMatrix(rng, n*k))

	split := func(h []float32, rows, half int) []float32 {
		out := make([]float32, rows*TileCols)
		for r := 0; r < rows; r++ {
			copy(out[r*TileCols:(r+1)*TileCols], h[r*k+half*TileCols:])
		}
		return out
	}

	c := MustTile[float32, Col](m, n)
	c.Zero()
	for half := 0; half < 2; half++ {
		a := loadMatrix[BF16](t, split(ha, m, half), m, TileCols)
		b := loadMatrix[BF16](t, split(hb, n, half), n, TileCols)
		if err := MatmulABt(c, a, b); err != nil {
			t.Fatalf("MatmulABt: %v", err)
		}
	}

	want := make([]float32, m*n)
	Reference{}.MatmulABt(m, n, k, ha, hb, want)
	if res := VerifyFloat32Array(want, storeMatrix(t, c), MatmulTolerance()); res.NumErrors != 0 {
		t.Errorf("%s", res)
	}
}

func TestMma(t *testing.T) {
	const m, n, k = 32, 64, 16
	rng := rand.New(rand.NewSource(11))
	ha, hb := Round[BF16](randomMatrix(rng, m*k)), Round[BF16](randomMatrix(rng, n*k))

	a := loadMatrix[BF16](t, ha, m, k)
	b := loadMatrix[BF16](t, hb, n, k)
	c := MustTile[float32, Col](m, n)
	c.Fill(0.5)
	d := MustTile[float32, Col](m, n)

	if err := Mma(d, c, a, b); err != nil {
		t.Fatalf("Mma: %v", err)
	}

	want := make([]float32, m*n)
	for i := range want {
		want[i] = 0.5
	}
	Reference{}.MatmulABt(m, n, k, ha, hb, want)
	if res := VerifyFloat32Array(want, storeMatrix(t, d), MatmulTolerance()); res.NumErrors != 0 {
		t.Errorf("d: %s", res)
	}
	for _, v := range storeMatrix(t, c) {
		if v != 0.5 {
			t.Fatalf("Mma modified c: found %v", v)
		}
	}
}

func TestMatmulShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		c    *Tile[float32, Col]
		a, b *Tile[BF16, Row]
	}{
		{"KTooLarge", MustTile[float32, Col](32, 32), MustTile[BF16, Row](32, 32), MustTile[BF16, Row](32, 32)},
		{"KMismatch", MustTile[float32, Col](32, 32), MustTile[BF16, Row](32, 16), MustTile[BF16, Row](32, 32)},
		{"CRows", MustTile[float32, Col](64, 32), MustTile[BF16, Row](32, 16), MustTile[BF16, Row](32, 16)},
		{"CCols", MustTile[float32, Col](32, 64), MustTile[BF16, Row](32, 16), MustTile[BF16, Row](32, 16)},
		{"COddWidth", MustTile[float32, Col](32, 16), MustTile[BF16, Row](32, 16), MustTile[BF16, Row](32, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.Fill(7)
			if err := MatmulABt(tt.c, tt.a, tt.b); !IsShapeError(err) {
				t.Fatalf("got %v, want shape error", err)
			}
			if tt.c.At(0, 0, 0, 0) != 7 {
				t.Error("accumulator changed before the shape was rejected")
			}
		})
	}
}

func TestMFMAOperandLayout(t *testing.T) {
	// A[i][k] = i + 1 for k == 0, else 0; B[k][j] = j for k == 0, else 0.
	// D[i][j] = (i+1)*j.
	var a, b Operand
	for lane := 0; lane < 32; lane++ {
		a[lane][0] = PackPair(ToBF16(float32(lane+1)), ToBF16(0))
		b[lane][0] = PackPair(ToBF16(float32(lane)), ToBF16(0))
	}
	var acc Accumulator
	MFMA32x32x8[BF16](&a, &b, &acc, MFMAFlags{})

	for lane := 0; lane < WaveSize; lane++ {
		for e := 0; e < accumulatorElems; e++ {
			i, j := mfmaResultPosition(lane, e)
			if want := float32((i + 1) * j); acc[lane][e] != want {
				t.Fatalf("lane %d slot %d (D[%d][%d]) = %v, want %v", lane, e, i, j, acc[lane][e], want)
			}
		}
	}
}

func TestMFMARejectsModifiers(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MFMA with broadcast flags did not panic")
		}
	}()
	var a, b Operand
	var acc Accumulator
	MFMA32x32x8[Half](&a, &b, &acc, MFMAFlags{CBSZ: 1})
}

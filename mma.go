package wavetile

// MatmulABt accumulates A·Bᵗ into c.
//
// a is M x K and b is N x K, both row layout; c is M x N in column layout.
// K must be exactly one base tile (16); longer reductions are looped by the
// caller, accumulating into the same c. Each 32x32x16 step issues two
// 32x32x8 MFMA calls, the first over register words [0,2) of the operand
// tiles and the second over [2,4), into the same accumulator block.
//
// Shape violations are reported before any instruction is issued.
// Accumulation is always float32.
func MatmulABt[N Narrow](c *Tile[float32, Col], a, b *Tile[N, Row]) error {
	if err := checkABt("MatmulABt", c, a, b); err != nil {
		return err
	}

	var opA, opB Operand
	var acc Accumulator
	for m := 0; m < a.height; m++ {
		for n := 0; n < b.height; n++ {
			gatherAccumulator(c, m, n, &acc)
			for k := 0; k < a.width; k++ {
				for half := 0; half < 2; half++ {
					gatherOperand(a.Base(m, k), half, &opA)
					gatherOperand(b.Base(n, k), half, &opB)
					MFMA32x32x8[N](&opA, &opB, &acc, MFMAFlags{})
				}
			}
			scatterAccumulator(c, m, n, &acc)
		}
	}
	return nil
}

// Mma computes d = A·Bᵗ + c. d and c may be the same tile.
func Mma[N Narrow](d, c *Tile[float32, Col], a, b *Tile[N, Row]) error {
	if err := checkABt("Mma", c, a, b); err != nil {
		return err
	}
	if d != c {
		if err := AssignFrom(d, c); err != nil {
			return err
		}
	}
	return MatmulABt(d, a, b)
}

func checkABt[N Narrow](op string, c *Tile[float32, Col], a, b *Tile[N, Row]) error {
	if a.cols != b.cols {
		return NewShapeError(op, "reduction mismatch: A is %dx%d, B is %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	if a.width != 1 {
		return NewShapeError(op, "K=%d: only one %d-wide K tile per call is supported", a.cols, TileCols)
	}
	if c.width%2 != 0 {
		return NewShapeError(op, "C width %d must be even", c.width)
	}
	if c.rows != a.rows || c.cols != b.rows {
		return NewShapeError(op, "C is %dx%d, want %dx%d", c.rows, c.cols, a.rows, b.rows)
	}
	return nil
}

// gatherOperand copies register words [2*half, 2*half+2) of every lane.
func gatherOperand[N Narrow](bt *BaseTile[N, Row], half int, op *Operand) {
	for lane := 0; lane < WaveSize; lane++ {
		words := bt.Lane(lane)
		op[lane][0] = words[2*half]
		op[lane][1] = words[2*half+1]
	}
}

// gatherAccumulator reads block (m, n) of c: slots 0-7 from base tile
// (m, 2n), slots 8-15 from (m, 2n+1).
func gatherAccumulator(c *Tile[float32, Col], m, n int, acc *Accumulator) {
	lo, hi := c.Base(m, 2*n), c.Base(m, 2*n+1)
	for lane := 0; lane < WaveSize; lane++ {
		lo.elems(lane, acc[lane][:ElementsPerThread])
		hi.elems(lane, acc[lane][ElementsPerThread:])
	}
}

func scatterAccumulator(c *Tile[float32, Col], m, n int, acc *Accumulator) {
	lo, hi := c.Base(m, 2*n), c.Base(m, 2*n+1)
	for lane := 0; lane < WaveSize; lane++ {
		lo.setElems(lane, acc[lane][:ElementsPerThread])
		hi.setElems(lane, acc[lane][ElementsPerThread:])
	}
}

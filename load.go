package wavetile

// Load fills a row-layout tile from src at tile coordinate idx.
//
// For every base tile each lane reads LoadRun contiguous elements starting at
// row lane%32, column (lane/32)*LoadRun of that base tile, and packs them
// straight into its registers. The view must be row-major along the
// addressed rows; other layouts give undefined results.
func Load[T, U Element](dst *Tile[T, Row], src View[U], idx Coord, opts ...TransferOption) {
	cfg := newTransferConfig(opts)
	stride := src.Stride(cfg.rowAxis)
	origin := idx.unit(cfg.rowAxis, dst.rows, dst.cols)

	run := make([]U, LoadRun)
	elems := make([]T, ElementsPerThread)
	for rt := 0; rt < dst.height; rt++ {
		for ct := 0; ct < dst.width; ct++ {
			at := origin.add(cfg.rowAxis, rt*TileRows).add(AxisCol, ct*TileCols)
			base := src.Offset(at)
			bt := dst.Base(rt, ct)

			for lane := 0; lane < WaveSize; lane++ {
				row, col := RowPosition(lane, 0)
				src.ReadVec(base+row*stride+col, run)
				for i, u := range run {
					elems[i] = Convert[T](u)
				}
				bt.setElems(lane, elems)
			}
		}
	}
}

// LoadColumn fills a column-layout tile from src at tile coordinate idx. It
// reads every accumulator slot from the address Store would write it to, so
// LoadColumn followed by Store reproduces memory exactly.
func LoadColumn[T, U Element](dst *Tile[T, Col], src View[U], idx Coord, opts ...TransferOption) error {
	if dst.width%2 != 0 {
		return NewShapeError("LoadColumn", "width %d must be even", dst.width)
	}
	cfg := newTransferConfig(opts)
	stride := src.Stride(cfg.rowAxis)
	origin := idx.unit(cfg.rowAxis, dst.rows, dst.cols)

	var slots [StoreRun]T
	for rt := 0; rt < dst.height; rt++ {
		for p := 0; p < dst.width/2; p++ {
			at := origin.add(cfg.rowAxis, rt*TileRows).add(AxisCol, p*BlockCols)
			base := src.Offset(at)
			lo, hi := dst.Base(rt, 2*p), dst.Base(rt, 2*p+1)

			for lane := 0; lane < WaveSize; lane++ {
				for e := range slots {
					row, col := BlockPosition(lane, e)
					slots[e] = Convert[T](src.load(base + row*stride + col))
				}
				lo.setElems(lane, slots[:ElementsPerThread])
				hi.setElems(lane, slots[ElementsPerThread:])
			}
		}
	}
	return nil
}

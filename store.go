package wavetile

// Store writes a column-layout tile to dst at tile coordinate idx.
//
// Base tiles are consumed in column pairs, each pair one 32x32 block. Lane l
// owns block column l%32 and the raw rows (l/32)*16 .. +15; each raw row is
// passed through Swizzle before the write, which puts every MFMA result slot
// at its logical row. An odd width is rejected before anything is written.
func Store[T, U Element](dst View[U], src *Tile[T, Col], idx Coord, opts ...TransferOption) error {
	if src.width%2 != 0 {
		return NewShapeError("Store", "width %d must be even", src.width)
	}
	cfg := newTransferConfig(opts)
	stride := dst.Stride(cfg.rowAxis)
	origin := idx.unit(cfg.rowAxis, src.rows, src.cols)

	var slots [StoreRun]T
	for rt := 0; rt < src.height; rt++ {
		for p := 0; p < src.width/2; p++ {
			at := origin.add(cfg.rowAxis, rt*TileRows).add(AxisCol, p*BlockCols)
			base := dst.Offset(at)
			lo, hi := src.Base(rt, 2*p), src.Base(rt, 2*p+1)

			for lane := 0; lane < WaveSize; lane++ {
				lo.elems(lane, slots[:ElementsPerThread])
				hi.elems(lane, slots[ElementsPerThread:])
				for e, v := range slots {
					row, col := BlockPosition(lane, e)
					dst.store(base+row*stride+col, Convert[U](v))
				}
			}
		}
	}
	return nil
}

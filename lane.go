package wavetile

// LaneID returns the lane a thread occupies within its wave.
func LaneID(threadIdx int) int {
	return threadIdx % WaveSize
}

// WaveID returns the wave a thread belongs to.
func WaveID(threadIdx int) int {
	return threadIdx / WaveSize
}

// RowPosition returns the (row, col) inside a row-layout base tile held by
// register slot i of lane. Slots of one lane are contiguous along the row.
func RowPosition(lane, i int) (row, col int) {
	return lane % TileRows, (lane/TileRows)*LoadRun + i
}

// BlockPosition returns the (row, col) inside a 32x32 column-layout block held
// by accumulator slot e of lane. Slots 0-7 live in the block's first base tile,
// 8-15 in the second.
func BlockPosition(lane, e int) (row, col int) {
	return Swizzle((lane/TileRows)*StoreRun + e), lane % TileRows
}

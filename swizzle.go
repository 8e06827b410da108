package wavetile

// swizzleSpan is the row span of one column-layout block
const swizzleSpan = 32

// Swizzle permutes a raw block row written by Store. Rows move in slices of
// four; slice g of eight goes to 2*(g%4) + g/4. Applied on every store, never
// configurable.
func Swizzle(r int) int {
	g, slot := r/SwizzleSlice, r%SwizzleSlice
	return (2*(g%4)+g/4)*SwizzleSlice + slot
}

// Unswizzle is the inverse of Swizzle on [0, 32).
func Unswizzle(r int) int {
	return UnswizzleSpan(r, swizzleSpan)
}

// SwizzleSpan applies the same slice shuffle over a span of n rows, n a
// multiple of 4. SwizzleSpan(r, 32) == Swizzle(r) for r in [0, 32).
func SwizzleSpan(r, n int) int {
	groups := n / SwizzleSlice
	if groups < 2 {
		return r
	}
	half := groups / 2
	g, slot := r/SwizzleSlice, r%SwizzleSlice
	return (2*(g%half)+g/half)*SwizzleSlice + slot
}

// UnswizzleSpan inverts SwizzleSpan.
func UnswizzleSpan(r, n int) int {
	groups := n / SwizzleSlice
	if groups < 2 {
		return r
	}
	half := groups / 2
	g, slot := r/SwizzleSlice, r%SwizzleSlice
	return ((g%2)*half+g/2)*SwizzleSlice + slot
}

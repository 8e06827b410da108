package wavetile

import (
	"math"
)

// BF16 represents a 16-bit brain floating point number
// Format: 1 sign bit, 8 exponent bits, 7 mantissa bits
type BF16 uint16

// ToBF16 converts float32 to BF16, rounding to nearest even
func ToBF16(f float32) BF16 {
	// BF16 is the top 16 bits of float32
	bits := math.Float32bits(f)

	// Keep NaNs quiet; the rounding add below could carry them into Inf
	if bits&0x7FFFFFFF > 0x7F800000 {
		return BF16(bits>>16 | 0x0040)
	}

	bits += 0x7FFF + (bits>>16)&1
	return BF16(bits >> 16)
}

// Float32 widens b to float32. The conversion is exact.
func (b BF16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// IsNaN reports whether b is a NaN
func (b BF16) IsNaN() bool {
	return b&0x7F80 == 0x7F80 && b&0x007F != 0
}

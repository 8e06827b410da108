package wavetile

import (
	"github.com/x448/float16"
)

// Half is an IEEE 754 binary16 value: 1 sign bit, 5 exponent bits, 10 mantissa bits
type Half = float16.Float16

// ToHalf converts float32 to Half, rounding to nearest even.
// Subnormals, infinities and NaNs are preserved.
func ToHalf(f float32) Half {
	return float16.Fromfloat32(f)
}

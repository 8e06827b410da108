package wavetile

import (
	"math"

	"github.com/x448/float16"
)

// Element is the closed set of scalar types a tile may hold. Instantiating a
// tile over any other type fails to compile.
type Element interface {
	float32 | BF16 | Half
}

// Narrow is the set of packed narrow-precision types the MFMA unit accepts.
type Narrow interface {
	BF16 | Half
}

// Packing describes how an element type is laid out in 32-bit register words.
type Packing struct {
	Name   string // short type name (f32, bf16, f16)
	Factor int    // logical elements per register word
	Bits   int    // width of one element
}

// PackingOf returns the packing descriptor of T.
func PackingOf[T Element]() Packing {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Packing{Name: "f32", Factor: 1, Bits: 32}
	case BF16:
		return Packing{Name: "bf16", Factor: 2, Bits: 16}
	case Half:
		return Packing{Name: "f16", Factor: 2, Bits: 16}
	}
	panic("wavetile: unreachable element type")
}

func bitsOf[T Element](v T) uint32 {
	switch x := any(v).(type) {
	case float32:
		return math.Float32bits(x)
	case BF16:
		return uint32(x)
	case Half:
		return uint32(x.Bits())
	}
	panic("wavetile: unreachable element type")
}

func fromBits[T Element](b uint32) T {
	var zero T
	var out any
	switch any(zero).(type) {
	case float32:
		out = math.Float32frombits(b)
	case BF16:
		out = BF16(b)
	case Half:
		out = float16.Frombits(uint16(b))
	}
	return out.(T)
}

// ToFloat32 widens v to float32. Widening is exact for every Element.
func ToFloat32[T Element](v T) float32 {
	switch x := any(v).(type) {
	case float32:
		return x
	case BF16:
		return x.Float32()
	case Half:
		return x.Float32()
	}
	panic("wavetile: unreachable element type")
}

// FromFloat32 narrows f to T, rounding to nearest even.
func FromFloat32[T Element](f float32) T {
	var zero T
	var out any
	switch any(zero).(type) {
	case float32:
		out = f
	case BF16:
		out = ToBF16(f)
	case Half:
		out = ToHalf(f)
	}
	return out.(T)
}

// Convert converts a scalar from U to T. Conversion between identical types
// keeps the bit pattern; everything else goes through float32 and may round.
func Convert[T, U Element](u U) T {
	if t, ok := any(u).(T); ok {
		return t
	}
	return FromFloat32[T](ToFloat32(u))
}

// Pack replicates v into every element slot of a register word.
func Pack[T Element](v T) uint32 {
	b := bitsOf(v)
	if PackingOf[T]().Factor == 1 {
		return b
	}
	return b&0xFFFF | b<<16
}

// PackPair interleaves two narrow elements into one word, lo in the low half.
func PackPair[T Narrow](lo, hi T) uint32 {
	return bitsOf(lo)&0xFFFF | bitsOf(hi)<<16
}

// Unpack splits a register word into its logical elements, low half first.
func Unpack[T Element](w uint32) []T {
	out := make([]T, PackingOf[T]().Factor)
	unpackRun(out, []uint32{w})
	return out
}

// ConvertWord converts each element of a packed word from U to T. Both types
// must share a packing factor; words of different width do not map 1:1.
func ConvertWord[T, U Element](w uint32) (uint32, error) {
	pt, pu := PackingOf[T](), PackingOf[U]()
	if pt.Factor != pu.Factor {
		return 0, NewShapeError("ConvertWord", "packing factor mismatch: %s x%d vs %s x%d",
			pt.Name, pt.Factor, pu.Name, pu.Factor)
	}
	src := Unpack[U](w)
	dst := make([]T, len(src))
	for i, u := range src {
		dst[i] = Convert[T](u)
	}
	words := make([]uint32, 1)
	packRun(words, dst)
	return words[0], nil
}

// packRun packs len(words)*factor elements into words.
func packRun[T Element](words []uint32, elems []T) {
	if PackingOf[T]().Factor == 1 {
		for i := range words {
			words[i] = bitsOf(elems[i])
		}
		return
	}
	for i := range words {
		words[i] = bitsOf(elems[2*i])&0xFFFF | bitsOf(elems[2*i+1])<<16
	}
}

// unpackRun is the inverse of packRun.
func unpackRun[T Element](elems []T, words []uint32) {
	if PackingOf[T]().Factor == 1 {
		for i, w := range words {
			elems[i] = fromBits[T](w)
		}
		return
	}
	for i, w := range words {
		elems[2*i] = fromBits[T](w & 0xFFFF)
		elems[2*i+1] = fromBits[T](w >> 16)
	}
}

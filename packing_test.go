package wavetile

import (
	"math"
	"math/rand"
	"testing"
)

func TestPackingOf(t *testing.T) {
	tests := []struct {
		name   string
		got    Packing
		factor int
		bits   int
	}{
		{"f32", PackingOf[float32](), 1, 32},
		{"bf16", PackingOf[BF16](), 2, 16},
		{"f16", PackingOf[Half](), 2, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Name != tt.name || tt.got.Factor != tt.factor || tt.got.Bits != tt.bits {
				t.Errorf("got %+v, want factor %d bits %d", tt.got, tt.factor, tt.bits)
			}
			if tt.got.Factor*tt.got.Bits != 32 {
				t.Errorf("%s does not fill a 32-bit register word", tt.name)
			}
		})
	}
}

func TestToBF16Rounding(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want uint16
	}{
		{"One", 1.0, 0x3F80},
		{"NegTwo", -2.0, 0xC000},
		{"Zero", 0, 0x0000},
		{"NegZero", float32(math.Copysign(0, -1)), 0x8000},
		// 1 + 2^-8 is exactly half way between 1 and 1+2^-7: ties to even
		{"TieToEven", math.Float32frombits(0x3F808000), 0x3F80},
		// 1 + 3*2^-8 ties up to the even mantissa 0x02
		{"TieUp", math.Float32frombits(0x3F818000), 0x3F82},
		{"AboveHalf", math.Float32frombits(0x3F808001), 0x3F81},
		{"Inf", float32(math.Inf(1)), 0x7F80},
		{"OverflowToInf", math.MaxFloat32, 0x7F80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToBF16(tt.in); uint16(got) != tt.want {
				t.Errorf("ToBF16(%v) = %#04x, want %#04x", tt.in, uint16(got), tt.want)
			}
		})
	}

	nan := ToBF16(float32(math.NaN()))
	if !nan.IsNaN() {
		t.Errorf("ToBF16(NaN) = %#04x is not a NaN", uint16(nan))
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []uint32{0, 0xFFFFFFFF, 0x3F80BF80, 0x7FC00001, 0x00010002}
	for i := 0; i < 10000; i++ {
		words = append(words, rng.Uint32())
	}

	for _, w := range words {
		if got := repack[float32](w); got != w {
			t.Fatalf("f32: pack(unpack(%#08x)) = %#08x", w, got)
		}
		if got := repack[BF16](w); got != w {
			t.Fatalf("bf16: pack(unpack(%#08x)) = %#08x", w, got)
		}
		if got := repack[Half](w); got != w {
			t.Fatalf("f16: pack(unpack(%#08x)) = %#08x", w, got)
		}
	}
}

func repack[T Element](w uint32) uint32 {
	words := make([]uint32, 1)
	packRun(words, Unpack[T](w))
	return words[0]
}

func TestPackReplicates(t *testing.T) {
	if got := Pack(ToBF16(1)); got != 0x3F803F80 {
		t.Errorf("Pack(bf16 1) = %#08x, want 0x3f803f80", got)
	}
	if got := Pack(float32(1)); got != 0x3F800000 {
		t.Errorf("Pack(f32 1) = %#08x, want 0x3f800000", got)
	}
	if got := PackPair(ToBF16(1), ToBF16(-2)); got != 0xC0003F80 {
		t.Errorf("PackPair(1, -2) = %#08x, want 0xc0003f80", got)
	}
	pair := Unpack[BF16](0xC0003F80)
	if len(pair) != 2 || pair[0].Float32() != 1 || pair[1].Float32() != -2 {
		t.Errorf("Unpack = %v, want [1 -2]", pair)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	// Every BF16 and Half bit pattern survives a trip through float32
	for b := 0; b <= 0xFFFF; b++ {
		x := BF16(b)
		if got := Convert[BF16](Convert[float32](x)); got != x && !(x.IsNaN() && got.IsNaN()) {
			t.Fatalf("bf16 %#04x -> f32 -> bf16 = %#04x", b, uint16(got))
		}
		h := fromBits[Half](uint32(b))
		if got := Convert[Half](Convert[float32](h)); got != h && !(h.IsNaN() && got.IsNaN()) {
			t.Fatalf("f16 %#04x -> f32 -> f16 = %#04x", b, got.Bits())
		}
	}

	// Values representable in both narrow formats survive bf16 <-> f16
	for _, v := range []float32{0, 1, -1, 0.5, 2, 3.5, -0.125, 256} {
		x := ToBF16(v)
		if got := Convert[BF16](Convert[Half](x)); got != x {
			t.Errorf("bf16 %v via f16 = %v", v, got.Float32())
		}
	}

	// Same-type conversion keeps the exact bits
	nan := math.Float32frombits(0x7FC00123)
	if got := Convert[float32](nan); math.Float32bits(got) != 0x7FC00123 {
		t.Errorf("f32 NaN payload changed: %#08x", math.Float32bits(got))
	}
}

func TestConvertNarrowingRounds(t *testing.T) {
	v := float32(1.0 / 3.0)
	bf := Convert[BF16](v)
	if bf.Float32() == v {
		t.Fatal("1/3 should not be exact in bf16")
	}
	if diff := math.Abs(float64(bf.Float32() - v)); diff > 1.0/256 {
		t.Errorf("bf16(1/3) error %v too large", diff)
	}
	h := Convert[Half](v)
	if diff := math.Abs(float64(h.Float32() - v)); diff > 1.0/2048 {
		t.Errorf("f16(1/3) error %v too large", diff)
	}
}

func TestConvertWord(t *testing.T) {
	w := PackPair(ToBF16(1.5), ToBF16(-3))
	got, err := ConvertWord[Half, BF16](w)
	if err != nil {
		t.Fatalf("ConvertWord: %v", err)
	}
	pair := Unpack[Half](got)
	if pair[0].Float32() != 1.5 || pair[1].Float32() != -3 {
		t.Errorf("ConvertWord = [%v %v], want [1.5 -3]", pair[0].Float32(), pair[1].Float32())
	}

	if _, err := ConvertWord[float32, BF16](w); !IsShapeError(err) {
		t.Errorf("ConvertWord across packing factors: got %v, want shape error", err)
	}
}

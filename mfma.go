package wavetile

import "fmt"

// Operand holds one MFMA source operand for the whole wave: two register
// words, four narrow elements, per lane.
type Operand [WaveSize][2]uint32

// Accumulator holds the 32x32 float32 MFMA result, sixteen slots per lane.
type Accumulator [WaveSize][accumulatorElems]float32

// MFMAFlags are the instruction's broadcast and lane-group modifiers
// (cbsz, abid, blgp).
type MFMAFlags struct {
	CBSZ, ABID, BLGP uint8
}

// MFMA32x32x8 models v_mfma_f32_32x32x8{bf16_1k,f16}: acc += A·B for a 32x8 A
// and 8x32 B, with T selecting the input format.
//
// Lane l supplies A[l%32][4*(l/32)+j] and B[4*(l/32)+j][l%32] for j in [0,4),
// and holds D[(e/4)*8 + (l/32)*4 + e%4][l%32] in accumulator slot e. Products
// are summed in float32 in k order, then added to the accumulator.
//
// Only zero flags are modelled.
func MFMA32x32x8[T Narrow](a, b *Operand, acc *Accumulator, flags MFMAFlags) {
	if flags != (MFMAFlags{}) {
		panic(fmt.Sprintf("wavetile: MFMA modifiers %+v are not modelled", flags))
	}

	var av, bv [MFMAM][MFMAK]float32 // av[i][k] = A[i][k], bv[j][k] = B[k][j]
	var ea, eb [operandElems]T
	for lane := 0; lane < WaveSize; lane++ {
		idx, kb := lane%MFMAM, (lane/MFMAM)*operandElems
		unpackRun(ea[:], a[lane][:])
		unpackRun(eb[:], b[lane][:])
		for j := 0; j < operandElems; j++ {
			av[idx][kb+j] = ToFloat32(ea[j])
			bv[idx][kb+j] = ToFloat32(eb[j])
		}
	}

	for lane := 0; lane < WaveSize; lane++ {
		for e := 0; e < accumulatorElems; e++ {
			i, j := mfmaResultPosition(lane, e)
			var sum float32
			for k := 0; k < MFMAK; k++ {
				sum += av[i][k] * bv[j][k]
			}
			acc[lane][e] += sum
		}
	}
}

// mfmaResultPosition is the (row, col) of D held by accumulator slot e of lane.
func mfmaResultPosition(lane, e int) (row, col int) {
	return (e/4)*8 + (lane/MFMAN)*4 + e%4, lane % MFMAN
}

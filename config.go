// Package wavetile configuration constants
package wavetile

import (
	"os"
	"runtime"
	"strings"
)

// Wave geometry
const (
	// WaveSize is the number of lanes executing one instruction stream in lockstep
	WaveSize = 64

	// TileRows is the row count of every base tile
	TileRows = 32

	// TileCols is the column count of every base tile
	TileCols = 16

	// ElementsPerThread is the number of base tile elements each lane owns
	ElementsPerThread = TileRows * TileCols / WaveSize
)

// Transfer engine geometry
const (
	// lanesPerRow is how many lanes share one tile row on load
	lanesPerRow = WaveSize / TileRows

	// LoadRun is the number of contiguous elements each lane reads per base tile
	LoadRun = TileCols / lanesPerRow

	// BlockCols is the column count of one accumulator block (two column-layout base tiles)
	BlockCols = 2 * TileCols

	// StoreRun is the number of elements each lane writes per accumulator block
	StoreRun = BlockCols / lanesPerRow

	// SwizzleSlice is the row granularity of the store permutation
	SwizzleSlice = 4
)

// MFMA instruction shape (v_mfma_f32_32x32x8)
const (
	MFMAM = 32
	MFMAN = 32
	MFMAK = 8

	// operandElems is the number of narrow elements each lane supplies per operand
	operandElems = MFMAM * MFMAK / WaveSize

	// accumulatorElems is the number of float32 results each lane holds
	accumulatorElems = MFMAM * MFMAN / WaveSize
)

// Shared memory capacities per device generation
const (
	// SharedMemoryMI300 is the scratch capacity of MI300 and earlier parts
	SharedMemoryMI300 = 64 * 1024

	// SharedMemoryMI355X is the scratch capacity of CDNA 4 parts
	SharedMemoryMI355X = 160 * 1024

	// DefaultSharedAlignment is the alignment applied by SharedAllocator
	DefaultSharedAlignment = 16
)

// Memory pool parameters
const (
	// MemoryAlignment for device allocations
	MemoryAlignment = 64
)

// Target identifies the device generation being emulated.
type Target int

const (
	TargetMI300 Target = iota
	TargetMI355X
)

// String returns the marketing name of the target
func (t Target) String() string {
	switch t {
	case TargetMI300:
		return "MI300"
	case TargetMI355X:
		return "MI355X"
	default:
		return "unknown"
	}
}

// SharedMemory returns the per-wave scratch capacity of the target in bytes
func (t Target) SharedMemory() int {
	if t == TargetMI355X {
		return SharedMemoryMI355X
	}
	return SharedMemoryMI300
}

// ParseTarget maps a target name to a Target. Unknown names report false.
func ParseTarget(name string) (Target, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mi300", "mi300x", "cdna3", "":
		return TargetMI300, true
	case "mi355x", "mi350", "cdna4":
		return TargetMI355X, true
	}
	return TargetMI300, false
}

// Config holds the tunables of a Context.
type Config struct {
	// Target selects the emulated device generation
	Target Target

	// SharedAlignment is the default alignment of each wave's SharedAllocator
	SharedAlignment int

	// Workers bounds the number of waves executing concurrently (0 = GOMAXPROCS)
	Workers int

	// MemoryBudget caps the bytes of device memory live at once (0 = system memory)
	MemoryBudget uint64
}

// DefaultConfig returns the configuration used by the default context.
// WAVETILE_TARGET overrides the target generation.
func DefaultConfig() Config {
	cfg := Config{
		Target:          TargetMI300,
		SharedAlignment: DefaultSharedAlignment,
		Workers:         runtime.GOMAXPROCS(0),
	}
	if env, ok := os.LookupEnv("WAVETILE_TARGET"); ok {
		if t, ok := ParseTarget(env); ok {
			cfg.Target = t
		}
	}
	return cfg
}

// defaultSystemMemory is assumed when the platform cannot report physical memory
const defaultSystemMemory = 16 * 1024 * 1024 * 1024

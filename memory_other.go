//go:build !linux

package wavetile

import "unsafe"

// mapRegion allocates from the Go heap, over-allocating to honour MemoryAlignment.
func mapRegion(size int) ([]byte, error) {
	raw := make([]byte, size+MemoryAlignment)
	skip := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) % MemoryAlignment); rem != 0 {
		skip = MemoryAlignment - rem
	}
	return raw[skip : skip+size : skip+size], nil
}

func unmapRegion([]byte) error { return nil }

func systemMemory() uint64 {
	return defaultSystemMemory
}

//go:build linux

package wavetile

import (
	"golang.org/x/sys/unix"
)

// mapRegion backs a device allocation with an anonymous private mapping.
// Mappings are page aligned and zero filled.
func mapRegion(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapRegion(buf []byte) error {
	return unix.Munmap(buf)
}

// systemMemory returns total system memory in bytes
func systemMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return defaultSystemMemory
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}

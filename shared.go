package wavetile

import "unsafe"

// SharedAllocator is a bump allocator over one wave's scratch region. There
// is no free: the region lives exactly as long as the kernel invocation that
// owns it. Allocating past capacity is undefined (in practice a bounds panic).
//
// Allocated types must not contain Go pointers.
type SharedAllocator struct {
	region []byte
	offset int
	align  int
}

// NewSharedAllocator starts a bump allocator at the beginning of region.
// align is the default alignment; zero or negative disables alignment.
func NewSharedAllocator(region []byte, align int) *SharedAllocator {
	return &SharedAllocator{region: region, align: align}
}

// Offset returns the number of bytes consumed so far, padding included.
func (s *SharedAllocator) Offset() int { return s.offset }

// Capacity returns the size of the scratch region.
func (s *SharedAllocator) Capacity() int { return len(s.region) }

// Allocate reserves a dims[0] x dims[1] x ... array of T at the default
// alignment and returns it flattened. No dims reserves a single T.
func Allocate[T any](s *SharedAllocator, dims ...int) []T {
	return AllocateAligned[T](s, s.align, dims...)
}

// AllocateAligned is Allocate with an explicit alignment for this call.
func AllocateAligned[T any](s *SharedAllocator, align int, dims ...int) []T {
	s.alignTo(align)

	n := 1
	for _, d := range dims {
		n *= d
	}
	var zero T
	size := n * int(unsafe.Sizeof(zero))
	buf := s.region[s.offset : s.offset+size]
	s.offset += size
	if n == 0 || size == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
}

func (s *SharedAllocator) alignTo(align int) {
	if align <= 0 || len(s.region) == 0 {
		return
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(s.region))) + uintptr(s.offset)
	if rem := int(addr % uintptr(align)); rem != 0 {
		s.offset += align - rem
	}
}

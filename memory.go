package wavetile

import (
	"fmt"
	"sync"
	"unsafe"

	"k8s.io/klog/v2"
)

// MemcpyKind specifies the direction of memory transfer.
// Device memory is host-addressable, so every direction is a plain copy.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// mapping overhead and fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	budget     uint64
	mapped     uint64 // bytes mapped, live or on the free list
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf  []byte
	used bool
}

// DevicePtr represents a pointer to device memory. Use Elements or the
// typed accessors to view the memory as a slice.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// NewMemoryPool creates a pool that never holds more than budget bytes live.
// A zero budget means the size of system memory.
func NewMemoryPool(budget uint64) *MemoryPool {
	if budget == 0 {
		budget = systemMemory()
	}
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
		budget:    budget,
	}
}

// Malloc allocates device memory of the specified size in bytes.
//
// Example:
//
//	ptr, err := ctx.Malloc(1024 * 4) // Allocate 1024 float32s
//	if err != nil {
//	    return err
//	}
//	defer ctx.Free(ptr)
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	ptr, err := ctx.memory.Allocate(size)
	if err != nil {
		klog.Warningf("device allocation of %d bytes failed: %v", size, err)
	}
	return ptr, err
}

// Free releases device memory allocated by Malloc.
// It is safe to call Free with a zero DevicePtr.
func (ctx *Context) Free(ptr DevicePtr) error {
	if ptr.ptr == nil {
		return nil
	}
	return ctx.memory.Free(ptr)
}

// Memcpy copies size bytes between host and device.
//
// Parameters:
//   - dst: Destination (DevicePtr or Go slice)
//   - src: Source (DevicePtr or Go slice)
//   - size: Number of bytes to copy
//   - kind: Transfer direction (kept for API compatibility)
//
// Supported slices are []byte, []float32, []BF16 and []Half.
func (ctx *Context) Memcpy(dst, src any, size int, kind MemcpyKind) error {
	if size < 0 {
		return NewTransferError("Memcpy", fmt.Sprintf("negative size %d", size))
	}
	d, ok := bytesOf(dst)
	if !ok {
		return NewTransferError("Memcpy", fmt.Sprintf("unsupported dst type: %T", dst))
	}
	s, ok := bytesOf(src)
	if !ok {
		return NewTransferError("Memcpy", fmt.Sprintf("unsupported src type: %T", src))
	}
	if size > len(d) || size > len(s) {
		return NewTransferError("Memcpy", fmt.Sprintf("copy of %d bytes exceeds dst %d / src %d", size, len(d), len(s)))
	}
	copy(d[:size], s[:size])
	return nil
}

func bytesOf(v any) ([]byte, bool) {
	switch x := v.(type) {
	case DevicePtr:
		return x.Byte(), true
	case []byte:
		return x, true
	case []float32:
		return sliceBytes(x), true
	case []BF16:
		return sliceBytes(x), true
	case []Half:
		return sliceBytes(x), true
	}
	return nil, false
}

func sliceBytes[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// MemoryPool methods

// Allocate hands out a block of at least size bytes. A freed block is reused
// when it fits without wasting more than half of it; the smallest such block
// is taken. Every mapped byte counts
// against the budget, so idle free blocks are unmapped to make room before an
// allocation is refused.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	if i := mp.bestFit(alignedSize); i >= 0 {
		alloc := mp.freeList[i]
		mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
		alloc.used = true
		clear(alloc.buf)
		mp.track(int64(len(alloc.buf)))
		return DevicePtr{ptr: unsafe.Pointer(&alloc.buf[0]), size: size}, nil
	}

	for mp.mapped+uint64(alignedSize) > mp.budget && len(mp.freeList) > 0 {
		if err := mp.unmapFree(len(mp.freeList) - 1); err != nil {
			return DevicePtr{}, NewAllocationError("Malloc", "releasing idle block", err)
		}
	}
	if mp.mapped+uint64(alignedSize) > mp.budget {
		return DevicePtr{}, ErrOutOfMemory
	}

	buf, err := mapRegion(alignedSize)
	if err != nil {
		return DevicePtr{}, NewAllocationError("Malloc", fmt.Sprintf("mapping %d bytes", alignedSize), err)
	}

	alloc := &allocation{buf: buf, used: true}
	mp.allocated[uintptr(unsafe.Pointer(&buf[0]))] = alloc
	mp.mapped += uint64(alignedSize)
	mp.track(int64(alignedSize))

	return DevicePtr{ptr: unsafe.Pointer(&buf[0]), size: size}, nil
}

// bestFit returns the index of the smallest free block holding size bytes and
// at most twice that, or -1.
func (mp *MemoryPool) bestFit(size int) int {
	best := -1
	for i, alloc := range mp.freeList {
		n := len(alloc.buf)
		if n >= size && n <= 2*size && (best < 0 || n < len(mp.freeList[best].buf)) {
			best = i
		}
	}
	return best
}

// unmapFree returns free block i to the system.
func (mp *MemoryPool) unmapFree(i int) error {
	alloc := mp.freeList[i]
	mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
	delete(mp.allocated, uintptr(unsafe.Pointer(&alloc.buf[0])))
	mp.mapped -= uint64(len(alloc.buf))
	return unmapRegion(alloc.buf)
}

func (mp *MemoryPool) track(delta int64) {
	mp.totalAlloc += delta
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok || ptr.offset != 0 {
		return NewInvalidArgError("Free", "pointer not found in allocation pool")
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(len(alloc.buf))
	return nil
}

// Release unmaps every block. Pointers from the pool must not be used afterwards.
func (mp *MemoryPool) Release() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var first error
	for key, alloc := range mp.allocated {
		if err := unmapRegion(alloc.buf); err != nil && first == nil {
			first = err
		}
		delete(mp.allocated, key)
	}
	mp.freeList = nil
	mp.mapped = 0
	mp.totalAlloc = 0
	return first
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// DevicePtr methods

// Elements returns a typed view of the device memory. Trailing bytes that do
// not fill a whole element are not included.
func Elements[T Element](d DevicePtr) []T {
	if d.ptr == nil {
		return nil
	}
	var zero T
	return unsafe.Slice((*T)(d.ptr), d.size/int(unsafe.Sizeof(zero)))
}

// Float32 returns a float32 slice view of the device memory.
func (d DevicePtr) Float32() []float32 {
	return Elements[float32](d)
}

// Byte returns a byte slice view of the device memory.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(d.ptr), d.size)
}

// Offset returns a new DevicePtr offset by the given number of bytes.
// The returned DevicePtr shares the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Add(d.ptr, bytes),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}

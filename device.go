package wavetile

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Device describes the emulated accelerator. Device memory is host memory,
// waves run on host cores.
type Device struct {
	ID           int      // Unique device identifier
	Name         string   // Human-readable device name
	Target       Target   // Emulated device generation
	TotalMem     uint64   // Device memory budget in bytes
	SharedMemory int      // Scratch bytes available to each wave
	NumCores     int      // Host cores executing waves
	MaxWaves     int      // Waves executing concurrently
	HostFeatures []string // Host SIMD features relevant to narrow floats
}

// Context owns device resources: the memory pool and the streams kernels
// are launched on. A Context should be destroyed when no longer needed.
type Context struct {
	device        *Device
	cfg           Config
	memory        *MemoryPool
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	defaultStream *Stream
	destroyed     bool // guarded by mu
}

// Global runtime state
var (
	defaultContext *Context
	initOnce       sync.Once
)

func defaultCtx() *Context {
	initOnce.Do(func() {
		defaultContext = NewContext(DefaultConfig())
	})
	return defaultContext
}

// NewContext creates a context for the device described by cfg.
func NewContext(cfg Config) *Context {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.SharedAlignment == 0 {
		cfg.SharedAlignment = DefaultSharedAlignment
	}

	memory := NewMemoryPool(cfg.MemoryBudget)
	ctx := &Context{
		device: &Device{
			ID:           0,
			Name:         fmt.Sprintf("%s (emulated)", cfg.Target),
			Target:       cfg.Target,
			TotalMem:     memory.budget,
			SharedMemory: cfg.Target.SharedMemory(),
			NumCores:     runtime.NumCPU(),
			MaxWaves:     cfg.Workers,
			HostFeatures: hostFeatures(),
		},
		cfg:     cfg,
		memory:  memory,
		streams: make(map[int]*Stream),
	}
	ctx.defaultStream = ctx.CreateStream()

	klog.V(1).Infof("wavetile: context on %s, %d MiB device memory, %d KiB shared per wave, host features %v",
		ctx.device.Name, ctx.device.TotalMem>>20, ctx.device.SharedMemory>>10, ctx.device.HostFeatures)
	return ctx
}

// Device returns the device the context drives.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// Destroy waits for outstanding work, stops the streams and releases
// device memory. The first pending device fault is returned. Launches on a
// destroyed context fail.
func (ctx *Context) Destroy() error {
	ctx.mu.Lock()
	ctx.destroyed = true
	ctx.mu.Unlock()

	err := ctx.Synchronize()

	ctx.mu.Lock()
	for id, s := range ctx.streams {
		s.close()
		delete(ctx.streams, id)
	}
	ctx.mu.Unlock()

	if rerr := ctx.memory.Release(); rerr != nil && err == nil {
		err = NewDeviceFault("Destroy", "releasing device memory", rerr)
	}
	return err
}

// CreateStream creates a new execution stream
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := newStream(id)

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// Synchronize waits for all streams to drain and reports the first device
// fault raised since the previous call.
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	var first error
	for _, s := range streams {
		if err := s.Synchronize(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Malloc allocates device memory on the default context.
//
// Example:
//
//	d_data, err := wavetile.Malloc(1024 * 4) // Allocate 1024 float32s
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer wavetile.Free(d_data)
func Malloc(size int) (DevicePtr, error) {
	return defaultCtx().Malloc(size)
}

// Free releases device memory allocated by Malloc.
func Free(ptr DevicePtr) error {
	return defaultCtx().Free(ptr)
}

// Memcpy copies memory between host and device on the default context.
func Memcpy(dst, src any, size int, kind MemcpyKind) error {
	return defaultCtx().Memcpy(dst, src, size, kind)
}

// Launch runs kernel over the given number of waves on the default stream.
func Launch(waves int, kernel WaveKernel) error {
	return defaultCtx().Launch(waves, kernel)
}

// Synchronize waits for all work on the default context.
func Synchronize() error {
	return defaultCtx().Synchronize()
}

// GetDevice returns the default context's device.
func GetDevice() *Device {
	return defaultCtx().device
}

// SetDevice sets the active device. Only device 0 exists.
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// GetDeviceCount returns the number of available devices.
func GetDeviceCount() int {
	return 1
}

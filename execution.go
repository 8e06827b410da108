package wavetile

import (
	"fmt"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Wave is the execution context handed to a kernel: one 64-lane wave with
// its own shared memory scratch region.
type Wave struct {
	ID     int              // Wave index within the launch
	Shared *SharedAllocator // Bump allocator over this wave's scratch region
}

// WaveKernel is the body of a kernel, run once per wave. Tile operations
// inside it act on all lanes of the wave at once.
type WaveKernel func(w *Wave) error

// Stream represents an ordered sequence of launches. Launches within a
// stream run in order; launches on different streams may overlap.
type Stream struct {
	id    int
	tasks chan func() error
	done  chan struct{}
	wg    sync.WaitGroup

	mu    sync.Mutex
	fault error
}

func newStream(id int) *Stream {
	s := &Stream{
		id:    id,
		tasks: make(chan func() error, 1000),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		if err := task(); err != nil {
			s.mu.Lock()
			if s.fault == nil {
				s.fault = err
			}
			s.mu.Unlock()
		}
		s.wg.Done()
	}
	close(s.done)
}

// Submit adds a task to the stream
func (s *Stream) Submit(task func() error) {
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize waits for all tasks in the stream and returns, then clears,
// the first fault they raised.
func (s *Stream) Synchronize() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.fault
	s.fault = nil
	return err
}

func (s *Stream) close() {
	close(s.tasks)
	<-s.done
}

// Launch runs kernel over waves waves on the default stream
func (ctx *Context) Launch(waves int, kernel WaveKernel) error {
	return ctx.LaunchStream(ctx.defaultStream, waves, kernel)
}

// LaunchStream runs kernel over waves waves on stream. The launch is
// asynchronous: kernel failures surface from Synchronize as device faults.
func (ctx *Context) LaunchStream(stream *Stream, waves int, kernel WaveKernel) error {
	if waves < 0 {
		return NewInvalidArgError("Launch", fmt.Sprintf("wave count %d must not be negative", waves))
	}
	if kernel == nil {
		return NewInvalidArgError("Launch", "nil kernel")
	}

	shared := ctx.device.SharedMemory
	align := ctx.cfg.SharedAlignment
	workers := ctx.cfg.Workers

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.destroyed {
		return NewInvalidArgError("Launch", "context destroyed")
	}
	klog.V(2).Infof("wavetile: launching %d waves on stream %d", waves, stream.id)

	stream.Submit(func() error {
		var g errgroup.Group
		g.SetLimit(workers)
		for id := 0; id < waves; id++ {
			g.Go(func() error {
				return runWave(id, shared, align, kernel)
			})
		}
		if err := g.Wait(); err != nil {
			klog.Errorf("wavetile: kernel fault on stream %d: %v", stream.id, err)
			return NewDeviceFault("Launch", fmt.Sprintf("kernel failed on stream %d", stream.id), err)
		}
		return nil
	})
	return nil
}

// runWave executes one wave with a fresh scratch region. A panicking kernel
// aborts only its own wave and is reported like a returned error.
func runWave(id, shared, align int, kernel WaveKernel) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("wave %d panicked: %v\n%s", id, r, debug.Stack())
		}
	}()

	region := make([]byte, shared)
	w := &Wave{
		ID:     id,
		Shared: NewSharedAllocator(region, align),
	}
	if err := kernel(w); err != nil {
		return fmt.Errorf("wave %d: %w", id, err)
	}
	return nil
}

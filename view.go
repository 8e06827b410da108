package wavetile

import "fmt"

// Axis names one of the four addressable axes of a View.
type Axis int

const (
	AxisBatch Axis = iota
	AxisDepth
	AxisRow
	AxisCol
)

func (a Axis) String() string {
	switch a {
	case AxisBatch:
		return "batch"
	case AxisDepth:
		return "depth"
	case AxisRow:
		return "row"
	case AxisCol:
		return "col"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Coord addresses a position in a View. Transfer engine calls interpret the
// tile axes of a Coord in units of whole tiles; View methods take element
// coordinates.
type Coord struct {
	B, D, R, C int
}

func (c Coord) get(a Axis) int {
	switch a {
	case AxisBatch:
		return c.B
	case AxisDepth:
		return c.D
	case AxisRow:
		return c.R
	default:
		return c.C
	}
}

func (c Coord) with(a Axis, v int) Coord {
	switch a {
	case AxisBatch:
		c.B = v
	case AxisDepth:
		c.D = v
	case AxisRow:
		c.R = v
	default:
		c.C = v
	}
	return c
}

// add offsets axis a by n elements.
func (c Coord) add(a Axis, n int) Coord {
	return c.with(a, c.get(a)+n)
}

// unit scales a tile-granular coordinate to elements for a rows x cols tile
// whose rows run along rowAxis.
func (c Coord) unit(rowAxis Axis, rows, cols int) Coord {
	c = c.with(rowAxis, c.get(rowAxis)*rows)
	return c.with(AxisCol, c.C*cols)
}

// View is a non-owning, strided, up to four axis lens over device memory.
// The memory must outlive every transfer that uses the view.
type View[T Element] struct {
	data   []T
	shape  [4]int
	stride [4]int
}

// NewView describes a dense row-major batch x depth x rows x cols region
// starting at ptr.
func NewView[T Element](ptr DevicePtr, batch, depth, rows, cols int) (View[T], error) {
	return ViewOf(Elements[T](ptr), batch, depth, rows, cols)
}

// ViewOf describes a dense row-major region over an element slice.
func ViewOf[T Element](data []T, batch, depth, rows, cols int) (View[T], error) {
	shape := [4]int{batch, depth, rows, cols}
	stride := [4]int{depth * rows * cols, rows * cols, cols, 1}
	return NewStridedView(data, shape, stride)
}

// NewStridedView describes a region with explicit per-axis strides, in elements.
func NewStridedView[T Element](data []T, shape, stride [4]int) (View[T], error) {
	last := 0
	for a := range shape {
		if shape[a] <= 0 {
			return View[T]{}, NewInvalidArgError("NewView", fmt.Sprintf("%s extent %d must be positive", Axis(a), shape[a]))
		}
		if stride[a] < 0 {
			return View[T]{}, NewInvalidArgError("NewView", fmt.Sprintf("%s stride %d must not be negative", Axis(a), stride[a]))
		}
		last += (shape[a] - 1) * stride[a]
	}
	if last >= len(data) {
		return View[T]{}, NewInvalidArgError("NewView",
			fmt.Sprintf("view spans %d elements, memory holds %d", last+1, len(data)))
	}
	return View[T]{data: data, shape: shape, stride: stride}, nil
}

// Shape returns the extent of axis a.
func (v View[T]) Shape(a Axis) int { return v.shape[a] }

// Stride returns the element stride of axis a.
func (v View[T]) Stride(a Axis) int { return v.stride[a] }

// Offset returns the element offset of an element coordinate.
func (v View[T]) Offset(c Coord) int {
	return c.B*v.stride[AxisBatch] + c.D*v.stride[AxisDepth] + c.R*v.stride[AxisRow] + c.C*v.stride[AxisCol]
}

// At reads the element at c.
func (v View[T]) At(c Coord) T { return v.data[v.Offset(c)] }

// Set writes the element at c.
func (v View[T]) Set(c Coord, x T) { v.data[v.Offset(c)] = x }

// ReadVec reads len(dst) contiguous elements starting at element offset off
// as one unit. The addressed run must be contiguous in memory, which holds
// for a view whose column stride is 1.
func (v View[T]) ReadVec(off int, dst []T) {
	copy(dst, v.data[off:off+len(dst)])
}

// WriteVec writes len(src) contiguous elements starting at element offset off.
func (v View[T]) WriteVec(off int, src []T) {
	copy(v.data[off:off+len(src)], src)
}

// Host copies the viewed elements out in dense batch, depth, row, col order.
func (v View[T]) Host() []T {
	out := make([]T, 0, v.shape[0]*v.shape[1]*v.shape[2]*v.shape[3])
	for b := 0; b < v.shape[AxisBatch]; b++ {
		for d := 0; d < v.shape[AxisDepth]; d++ {
			for r := 0; r < v.shape[AxisRow]; r++ {
				for c := 0; c < v.shape[AxisCol]; c++ {
					out = append(out, v.At(Coord{b, d, r, c}))
				}
			}
		}
	}
	return out
}

func (v View[T]) load(off int) T     { return v.data[off] }
func (v View[T]) store(off int, x T) { v.data[off] = x }

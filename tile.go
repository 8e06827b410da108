package wavetile

// BaseTile is a 32x16 tile whose elements are spread across the 64 lanes of a
// wave. Each lane privately owns PackedPerThread register words.
type BaseTile[T Element, L Layout] struct {
	data []uint32 // lane-major: lane l owns data[l*p : (l+1)*p]
}

func newBaseTile[T Element, L Layout]() BaseTile[T, L] {
	return BaseTile[T, L]{data: make([]uint32, WaveSize*packedPerThread[T]())}
}

func packedPerThread[T Element]() int {
	return ElementsPerThread / PackingOf[T]().Factor
}

// PackedPerThread returns the register words each lane holds.
func (b *BaseTile[T, L]) PackedPerThread() int {
	return packedPerThread[T]()
}

// Lane returns the register words owned by lane.
func (b *BaseTile[T, L]) Lane(lane int) []uint32 {
	p := packedPerThread[T]()
	return b.data[lane*p : (lane+1)*p : (lane+1)*p]
}

// elems unpacks the ElementsPerThread values lane owns into dst.
func (b *BaseTile[T, L]) elems(lane int, dst []T) {
	unpackRun(dst, b.Lane(lane))
}

// setElems packs ElementsPerThread values into lane's registers.
func (b *BaseTile[T, L]) setElems(lane int, src []T) {
	packRun(b.Lane(lane), src)
}

func (b *BaseTile[T, L]) TileKind() TileKind { return TileBase }
func (b *BaseTile[T, L]) Layout() LayoutKind { return layoutOf[L]() }
func (b *BaseTile[T, L]) Rows() int          { return TileRows }
func (b *BaseTile[T, L]) Cols() int          { return TileCols }

// Tile is a rows x cols register tile built from a height x width grid of
// base tiles sharing one element type and layout.
//
// Store, LoadColumn and MatmulABt consume column-layout tiles in column pairs,
// each pair one 32x32 MFMA accumulator block, and reject an odd width.
type Tile[T Element, L Layout] struct {
	rows, cols    int
	height, width int
	tiles         []BaseTile[T, L] // row-major grid
}

// NewTile declares a register tile. Shapes that do not divide into base tiles
// are rejected before any storage is created.
func NewTile[T Element, L Layout](rows, cols int) (*Tile[T, L], error) {
	p := PackingOf[T]()
	if rows <= 0 || cols <= 0 {
		return nil, NewShapeError("NewTile", "%s tile %dx%d: dimensions must be positive", p.Name, rows, cols)
	}
	if rows%TileRows != 0 {
		return nil, NewShapeError("NewTile", "%s tile %dx%d: rows must be divisible by %d", p.Name, rows, cols, TileRows)
	}
	if cols%TileCols != 0 {
		return nil, NewShapeError("NewTile", "%s tile %dx%d: cols must be divisible by %d", p.Name, rows, cols, TileCols)
	}
	height, width := rows/TileRows, cols/TileCols

	t := &Tile[T, L]{
		rows:   rows,
		cols:   cols,
		height: height,
		width:  width,
		tiles:  make([]BaseTile[T, L], height*width),
	}
	for i := range t.tiles {
		t.tiles[i] = newBaseTile[T, L]()
	}
	return t, nil
}

// MustTile is like NewTile but panics on an invalid shape. It is meant for
// tile declarations whose shape is fixed in the kernel source.
func MustTile[T Element, L Layout](rows, cols int) *Tile[T, L] {
	t, err := NewTile[T, L](rows, cols)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tile[T, L]) TileKind() TileKind { return TileComposite }
func (t *Tile[T, L]) Layout() LayoutKind { return layoutOf[L]() }
func (t *Tile[T, L]) Rows() int          { return t.rows }
func (t *Tile[T, L]) Cols() int          { return t.cols }

// Height is the number of base tiles along rows.
func (t *Tile[T, L]) Height() int { return t.height }

// Width is the number of base tiles along columns.
func (t *Tile[T, L]) Width() int { return t.width }

// Base returns grid cell (i, j).
func (t *Tile[T, L]) Base(i, j int) *BaseTile[T, L] {
	return &t.tiles[i*t.width+j]
}

// Fill broadcast-assigns v to every element of the tile.
func (t *Tile[T, L]) Fill(v T) {
	w := Pack(v)
	for i := range t.tiles {
		data := t.tiles[i].data
		for k := range data {
			data[k] = w
		}
	}
}

// Zero clears every register.
func (t *Tile[T, L]) Zero() {
	for i := range t.tiles {
		clear(t.tiles[i].data)
	}
}

// At reads register slot of lane in base tile (i, j).
func (t *Tile[T, L]) At(lane, i, j, slot int) T {
	f := PackingOf[T]().Factor
	w := t.Base(i, j).Lane(lane)[slot/f]
	if f == 2 && slot%2 == 1 {
		w >>= 16
	} else if f == 2 {
		w &= 0xFFFF
	}
	return fromBits[T](w)
}

// Set writes register slot of lane in base tile (i, j).
func (t *Tile[T, L]) Set(lane, i, j, slot int, v T) {
	f := PackingOf[T]().Factor
	words := t.Base(i, j).Lane(lane)
	b := bitsOf(v)
	switch {
	case f == 1:
		words[slot] = b
	case slot%2 == 0:
		words[slot/2] = words[slot/2]&0xFFFF0000 | b&0xFFFF
	default:
		words[slot/2] = words[slot/2]&0x0000FFFF | b<<16
	}
}

// AssignFrom converts src element-wise into dst. Both tiles must have the
// same geometry; the layout is shared through the type.
func AssignFrom[T, U Element, L Layout](dst *Tile[T, L], src *Tile[U, L]) error {
	if dst.rows != src.rows || dst.cols != src.cols {
		return NewShapeError("AssignFrom", "geometry mismatch: %dx%d <- %dx%d",
			dst.rows, dst.cols, src.rows, src.cols)
	}
	in := make([]U, ElementsPerThread)
	out := make([]T, ElementsPerThread)
	for i := range dst.tiles {
		d, s := &dst.tiles[i], &src.tiles[i]
		for lane := 0; lane < WaveSize; lane++ {
			s.elems(lane, in)
			for k, u := range in {
				out[k] = Convert[T](u)
			}
			d.setElems(lane, out)
		}
	}
	return nil
}

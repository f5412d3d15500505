// Package field implements the dense 3-channel grid that agents sense and deposit into.
//
// Layout is row-major with Channels float32 values per cell: cell (i, j) begins at
// offset (j*Dim + i) * Channels. Fractional points in [0,1)² map to cells by
// floor(p * Dim).
package field

import (
	"math"
	"math/rand"

	"github.com/nfagan/slime-mold/vmath"
)

// Channels is the number of float32 values stored per cell.
const Channels = 3

// Topology selects how out-of-range cell indices are addressed.
type Topology uint8

const (
	// Clamped excludes out-of-range cells from sampling and deposit.
	Clamped Topology = iota
	// Wrapped reduces indices modulo Dim.
	Wrapped
)

func (t Topology) String() string {
	if t == Wrapped {
		return "wrapped"
	}
	return "clamped"
}

// Field is a square Dim×Dim grid of Channels-wide cells.
type Field struct {
	dim  int
	data []float32
}

// New allocates a zeroed field. dim must be positive.
func New(dim int) *Field {
	if dim < 1 {
		dim = 1
	}
	return &Field{
		dim:  dim,
		data: make([]float32, dim*dim*Channels),
	}
}

// Dim returns the grid side length in cells.
func (f *Field) Dim() int { return f.dim }

// Data returns the backing slice. Callers must not retain it across reallocation.
func (f *Field) Data() []float32 { return f.data }

// Clear zeroes every channel.
func (f *Field) Clear() {
	clear(f.data)
}

// Fill sets every channel to v.
func (f *Field) Fill(v float32) {
	for i := range f.data {
		f.data[i] = v
	}
}

// CopyFrom copies src into f. Both fields must share a dimension.
func (f *Field) CopyFrom(src *Field) {
	copy(f.data, src.data)
}

// RandomFill writes uniform [0,1) values into every channel.
func (f *Field) RandomFill(rng *rand.Rand) {
	for i := range f.data {
		f.data[i] = rng.Float32()
	}
}

func (f *Field) offset(i, j int) int {
	return (j*f.dim + i) * Channels
}

// Index maps a fractional point to cell indices. The result may be out of range.
func (f *Field) Index(p vmath.Vec2) (i, j int) {
	d := float64(f.dim)
	return int(math.Floor(float64(p.X) * d)), int(math.Floor(float64(p.Y) * d))
}

// InBounds reports whether (i, j) addresses a cell.
func (f *Field) InBounds(i, j int) bool {
	return i >= 0 && j >= 0 && i < f.dim && j < f.dim
}

// Cell returns the channels of cell (i, j), which must be in bounds.
func (f *Field) Cell(i, j int) vmath.Vec3 {
	o := f.offset(i, j)
	return vmath.Vec3{X: f.data[o], Y: f.data[o+1], Z: f.data[o+2]}
}

// SetCell overwrites cell (i, j), which must be in bounds.
func (f *Field) SetCell(i, j int, v vmath.Vec3) {
	o := f.offset(i, j)
	f.data[o] = v.X
	f.data[o+1] = v.Y
	f.data[o+2] = v.Z
}

// Sense sums the cells in the square window of side win centered on p. With
// average set the sum is divided by the number of cells that contributed.
// Clamped topology drops out-of-range cells, Wrapped folds them back in.
func (f *Field) Sense(p vmath.Vec2, win float32, top Topology, average bool) vmath.Vec3 {
	half := win * 0.5
	i0, j0 := f.Index(vmath.Vec2{X: p.X - half, Y: p.Y - half})
	i1, j1 := f.Index(vmath.Vec2{X: p.X + half, Y: p.Y + half})

	var sum vmath.Vec3
	count := 0
	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			ii, jj := i, j
			if top == Wrapped {
				ii = vmath.WrapInt(i, f.dim)
				jj = vmath.WrapInt(j, f.dim)
			} else if !f.InBounds(i, j) {
				continue
			}
			o := f.offset(ii, jj)
			sum.X += f.data[o]
			sum.Y += f.data[o+1]
			sum.Z += f.data[o+2]
			count++
		}
	}

	if average && count > 0 {
		sum = sum.Scale(1 / float32(count))
	}
	return sum
}

// Deposit adds amount*weights into the cell containing p, saturating at 1.
// Points outside [0,1)² are ignored.
func (f *Field) Deposit(p vmath.Vec2, amount float32, weights vmath.Vec3) {
	i, j := f.Index(p)
	if !f.InBounds(i, j) {
		return
	}
	o := f.offset(i, j)
	for k := 0; k < min(3, Channels); k++ {
		f.data[o+k] = min(1, f.data[o+k]+amount*weights.At(k))
	}
}

// CircleOp combines an existing channel value with a splat value.
type CircleOp func(dst, v float32) float32

// ApplyInCircle applies op to every in-range cell within radius of p. The radius is
// a fraction of the grid and never smaller than one cell.
func (f *Field) ApplyInCircle(p vmath.Vec2, radius float32, value vmath.Vec3, op CircleOp) {
	imid, jmid := f.Index(p)
	i0, j0 := f.Index(vmath.Vec2{X: p.X - radius, Y: p.Y - radius})
	i1, j1 := f.Index(vmath.Vec2{X: p.X + radius, Y: p.Y + radius})
	rpx := max(1, radius*float32(f.dim))
	r2 := rpx * rpx

	for j := max(j0, 0); j <= min(j1, f.dim-1); j++ {
		for i := max(i0, 0); i <= min(i1, f.dim-1); i++ {
			di := float32(i - imid)
			dj := float32(j - jmid)
			if di*di+dj*dj > r2 {
				continue
			}
			o := f.offset(i, j)
			f.data[o] = op(f.data[o], value.X)
			f.data[o+1] = op(f.data[o+1], value.Y)
			f.data[o+2] = op(f.data[o+2], value.Z)
		}
	}
}

func clampedAdd(dst, v float32) float32 {
	return vmath.Clamp01(dst + v)
}

// ClampedAddInCircle adds value inside the circle, clamping each channel to [0,1].
func (f *Field) ClampedAddInCircle(p vmath.Vec2, radius float32, value vmath.Vec3) {
	f.ApplyInCircle(p, radius, value, clampedAdd)
}

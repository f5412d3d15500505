package field

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/nfagan/slime-mold/vmath"
)

// DirectionField holds one preferred heading (radians) per cell. Agents can be
// nudged toward it during motion.
type DirectionField struct {
	dim    int
	angles []float32
}

// NewNoiseDirections builds a smoothly varying direction field from OpenSimplex
// noise. scale is the noise frequency across the whole grid.
func NewNoiseDirections(dim int, seed int64, scale float64) *DirectionField {
	if dim < 1 {
		dim = 1
	}
	noise := opensimplex.New(seed)
	d := &DirectionField{dim: dim, angles: make([]float32, dim*dim)}
	for j := 0; j < dim; j++ {
		v := float64(j) / float64(dim) * scale
		for i := 0; i < dim; i++ {
			u := float64(i) / float64(dim) * scale
			// Eval2 is in [-1, 1]; map to a full turn.
			d.angles[j*dim+i] = float32((noise.Eval2(u, v) + 1) * math.Pi)
		}
	}
	return d
}

// FromRows wraps a caller-supplied row-major angle buffer of length dim*dim.
func FromRows(dim int, angles []float32) (*DirectionField, error) {
	if dim < 1 || len(angles) != dim*dim {
		return nil, fmt.Errorf("direction field: need %d angles for dim %d, got %d", dim*dim, dim, len(angles))
	}
	return &DirectionField{dim: dim, angles: angles}, nil
}

// Dim returns the side length of the field.
func (d *DirectionField) Dim() int { return d.dim }

// AngleAt returns the angle of the cell containing p, wrapping out-of-range points.
func (d *DirectionField) AngleAt(p vmath.Vec2) float32 {
	i := vmath.WrapInt(int(math.Floor(float64(p.X)*float64(d.dim))), d.dim)
	j := vmath.WrapInt(int(math.Floor(float64(p.Y)*float64(d.dim))), d.dim)
	return d.angles[j*d.dim+i]
}

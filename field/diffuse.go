package field

import (
	"gonum.org/v1/gonum/blas/blas32"
)

// vec views the backing slice as a blas32 vector.
func (f *Field) vec() blas32.Vector {
	return blas32.Vector{N: len(f.data), Inc: 1, Data: f.data}
}

// BoxFilter writes a k×k box blur of src into dst, horizontal pass into tmp then
// vertical pass into dst. Taps that fall outside the grid contribute nothing but the
// divisor stays k, so edges darken regardless of topology. k should be odd.
func BoxFilter(src, dst, tmp *Field, k int) {
	if k < 1 {
		k = 1
	}
	dim := src.dim
	half := k / 2
	norm := 1 / float32(k)

	s, t, d := src.data, tmp.data, dst.data

	for j := 0; j < dim; j++ {
		row := j * dim
		for i := 0; i < dim; i++ {
			var r, g, b float32
			for o := -half; o <= half; o++ {
				ii := i + o
				if ii < 0 || ii >= dim {
					continue
				}
				off := (row + ii) * Channels
				r += s[off]
				g += s[off+1]
				b += s[off+2]
			}
			off := (row + i) * Channels
			t[off] = r * norm
			t[off+1] = g * norm
			t[off+2] = b * norm
		}
	}

	for j := 0; j < dim; j++ {
		for i := 0; i < dim; i++ {
			var r, g, b float32
			for o := -half; o <= half; o++ {
				jj := j + o
				if jj < 0 || jj >= dim {
					continue
				}
				off := (jj*dim + i) * Channels
				r += t[off]
				g += t[off+1]
				b += t[off+2]
			}
			off := (j*dim + i) * Channels
			d[off] = r * norm
			d[off+1] = g * norm
			d[off+2] = b * norm
		}
	}
}

// Lerp moves f toward other by t in place: f = (1-t)*f + t*other.
func (f *Field) Lerp(other *Field, t float32) {
	v := f.vec()
	blas32.Scal(1-t, v)
	blas32.Axpy(t, other.vec(), v)
}

// Decay subtracts d from every channel, flooring at zero.
func (f *Field) Decay(d float32) {
	for i, v := range f.data {
		f.data[i] = max(0, v-d)
	}
}

// Diffuse blurs f with a k-wide box filter, blends toward the blur by speed and then
// applies decay. scratch and tmp must match f's dimension.
func (f *Field) Diffuse(scratch, tmp *Field, decay, speed float32, k int) {
	BoxFilter(f, scratch, tmp, k)
	f.Lerp(scratch, speed)
	f.Decay(decay)
}

// AddSaturating adds other into f, clamping each channel at 1.
func (f *Field) AddSaturating(other *Field) {
	blas32.Axpy(1, other.vec(), f.vec())
	for i, v := range f.data {
		if v > 1 {
			f.data[i] = 1
		}
	}
}

// MaxBlend keeps the larger of f and other per channel.
func (f *Field) MaxBlend(other *Field) {
	for i, v := range other.data {
		if v > f.data[i] {
			f.data[i] = v
		}
	}
}

// Mass returns the sum of every channel. Channel values are never negative.
func (f *Field) Mass() float32 {
	return blas32.Asum(f.vec())
}

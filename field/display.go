package field

import "github.com/nfagan/slime-mold/vmath"

// RGBABytes returns the byte length of a packed RGBA8 buffer for a dim×dim grid.
func RGBABytes(dim int) int {
	return dim * dim * 4
}

// ToRGBA packs the field into dst as RGBA8 with opaque alpha. dst must hold
// RGBABytes(Dim) bytes.
func (f *Field) ToRGBA(dst []byte) {
	n := f.dim * f.dim
	for c := 0; c < n; c++ {
		src := c * Channels
		out := c * 4
		dst[out] = uint8(vmath.Clamp01(f.data[src]) * 255)
		dst[out+1] = uint8(vmath.Clamp01(f.data[src+1]) * 255)
		dst[out+2] = uint8(vmath.Clamp01(f.data[src+2]) * 255)
		dst[out+3] = 255
	}
}

// AverageChannels replaces every cell's channels with the mean of their clamped values.
func (f *Field) AverageChannels() {
	for o := 0; o < len(f.data); o += Channels {
		m := (vmath.Clamp01(f.data[o]) + vmath.Clamp01(f.data[o+1]) + vmath.Clamp01(f.data[o+2])) / 3
		f.data[o] = m
		f.data[o+1] = m
		f.data[o+2] = m
	}
}

// Stats summarizes the channel distribution of a field.
type Stats struct {
	Mass     float32
	Mean     vmath.Vec3
	Coverage float32 // fraction of cells with any channel above the threshold
}

// Summarize computes Stats, counting a cell as covered when any channel exceeds threshold.
func (f *Field) Summarize(threshold float32) Stats {
	n := f.dim * f.dim
	var sum vmath.Vec3
	covered := 0
	for o := 0; o < len(f.data); o += Channels {
		r, g, b := f.data[o], f.data[o+1], f.data[o+2]
		sum.X += r
		sum.Y += g
		sum.Z += b
		if r > threshold || g > threshold || b > threshold {
			covered++
		}
	}
	inv := 1 / float32(n)
	return Stats{
		Mass:     f.Mass(),
		Mean:     sum.Scale(inv),
		Coverage: float32(covered) * inv,
	}
}

// Intensities writes the channel mean of every cell into dst, growing it as needed,
// and returns the filled slice.
func (f *Field) Intensities(dst []float64) []float64 {
	n := f.dim * f.dim
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for c := 0; c < n; c++ {
		o := c * Channels
		dst[c] = float64(f.data[o]+f.data[o+1]+f.data[o+2]) / 3
	}
	return dst
}

package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nfagan/slime-mold/vmath"
)

func approx(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

// cellCenter returns the fractional center of cell (i, j).
func cellCenter(f *Field, i, j int) vmath.Vec2 {
	d := float32(f.Dim())
	return vmath.V2((float32(i)+0.5)/d, (float32(j)+0.5)/d)
}

func TestDiffuse_ImpulseBound(t *testing.T) {
	const (
		dim    = 9
		k      = 3
		speed  = float32(0.5)
		decay  = float32(0.01)
		center = 4
	)

	f := New(dim)
	scratch := New(dim)
	tmp := New(dim)
	f.SetCell(center, center, vmath.Splat3(1))

	f.Diffuse(scratch, tmp, decay, speed, k)

	blurred := float32(1) / float32(k*k)
	wantCenter := vmath.Lerp(speed, 1, blurred) - decay

	for j := 0; j < dim; j++ {
		for i := 0; i < dim; i++ {
			c := f.Cell(i, j)
			for ch := 0; ch < Channels; ch++ {
				v := c.At(ch)
				if v < 0 {
					t.Fatalf("cell (%d,%d) channel %d negative: %v", i, j, ch, v)
				}
				if i == center && j == center {
					if !approx(v, wantCenter, 1e-5) {
						t.Errorf("center = %v, want %v", v, wantCenter)
					}
					continue
				}
				if v > 1/float32(k)+1e-6 {
					t.Errorf("neighbor (%d,%d) = %v exceeds impulse/k", i, j, v)
				}
			}
		}
	}
}

func TestDiffuse_DrainsToZero(t *testing.T) {
	f := New(16)
	scratch := New(16)
	tmp := New(16)
	f.Fill(0.3)

	for i := 0; i < 10; i++ {
		f.Diffuse(scratch, tmp, 0.1, 0.5, 3)
	}

	for i, v := range f.Data() {
		if v != 0 {
			t.Fatalf("data[%d] = %v, want 0", i, v)
		}
	}
}

func TestBoxFilter_EdgeDarkening(t *testing.T) {
	src := New(8)
	dst := New(8)
	tmp := New(8)
	src.Fill(1)

	BoxFilter(src, dst, tmp, 3)

	if v := dst.Cell(4, 4).X; !approx(v, 1, 1e-6) {
		t.Errorf("interior = %v, want 1", v)
	}
	if v := dst.Cell(0, 4).X; !approx(v, 2.0/3.0, 1e-6) {
		t.Errorf("edge = %v, want 2/3", v)
	}
	if v := dst.Cell(0, 0).X; !approx(v, 4.0/9.0, 1e-6) {
		t.Errorf("corner = %v, want 4/9", v)
	}
}

func TestDeposit_Saturates(t *testing.T) {
	f := New(8)
	p := cellCenter(f, 3, 5)
	w := vmath.V3(1, 0.5, 0)

	for i := 0; i < 10; i++ {
		f.Deposit(p, 0.4, w)
	}

	c := f.Cell(3, 5)
	if c.X != 1 || c.Y != 1 || c.Z != 0 {
		t.Errorf("saturated cell = %v, want (1,1,0)", c)
	}
	for _, v := range f.Data() {
		if v > 1 {
			t.Fatalf("value %v above 1", v)
		}
	}
}

func TestDeposit_SingleCellWindowExact(t *testing.T) {
	f := New(32)
	p := cellCenter(f, 10, 20)
	w := vmath.V3(0.25, 0.5, 0.75)

	f.Deposit(p, 1, w)

	// Window narrower than a cell, centered on the cell, covers only that cell.
	win := 0.5 / float32(f.Dim())
	for _, avg := range []bool{false, true} {
		got := f.Sense(p, win, Clamped, avg)
		if got != w {
			t.Errorf("Sense(avg=%v) = %v, want %v", avg, got, w)
		}
	}
}

func TestDeposit_OutOfRangeIgnored(t *testing.T) {
	f := New(8)
	f.Deposit(vmath.V2(-0.1, 0.5), 1, vmath.Splat3(1))
	f.Deposit(vmath.V2(0.5, 1.0), 1, vmath.Splat3(1))
	if m := f.Mass(); m != 0 {
		t.Errorf("mass = %v, want 0", m)
	}
}

func TestSense_ClampedWrappedAgreeInRange(t *testing.T) {
	f := New(32)
	f.RandomFill(rand.New(rand.NewSource(3)))
	rng := rand.New(rand.NewSource(4))

	for n := 0; n < 200; n++ {
		win := float32(0.1)
		// Keep the whole window inside the grid.
		p := vmath.V2(0.1+rng.Float32()*0.8, 0.1+rng.Float32()*0.8)
		a := f.Sense(p, win, Clamped, true)
		b := f.Sense(p, win, Wrapped, true)
		if a != b {
			t.Fatalf("Sense(%v) clamped=%v wrapped=%v", p, a, b)
		}
	}
}

func TestSense_EdgeWindow(t *testing.T) {
	f := New(8)
	f.SetCell(7, 0, vmath.Splat3(1))

	// Window around (0,0) reaches column 7 only when wrapping.
	p := cellCenter(f, 0, 0)
	win := 2.5 / float32(f.Dim())

	clamped := f.Sense(p, win, Clamped, false)
	wrapped := f.Sense(p, win, Wrapped, false)
	if clamped.X != 0 {
		t.Errorf("clamped sense = %v, want 0", clamped)
	}
	if wrapped.X != 1 {
		t.Errorf("wrapped sense = %v, want 1", wrapped)
	}
}

func TestClampedAddInCircle(t *testing.T) {
	f := New(64)
	p := vmath.V2(0.5, 0.5)

	f.ClampedAddInCircle(p, 0.1, vmath.V3(0.6, 0, 0))
	f.ClampedAddInCircle(p, 0.1, vmath.V3(0.6, 0, 0))

	if c := f.Cell(32, 32); c.X != 1 {
		t.Errorf("center = %v, want saturated 1", c)
	}
	// 0.1*64 = 6.4 px radius.
	if c := f.Cell(32+6, 32); c.X == 0 {
		t.Errorf("cell inside radius untouched")
	}
	if c := f.Cell(32+5, 32+5); c.X != 0 {
		t.Errorf("cell outside radius = %v, want 0", c)
	}
}

func TestClampedAddInCircle_MinimumOnePixel(t *testing.T) {
	f := New(16)
	f.ClampedAddInCircle(cellCenter(f, 5, 5), 0, vmath.Splat3(1))

	if c := f.Cell(5, 5); c.X != 1 {
		t.Errorf("center not written: %v", c)
	}
	if c := f.Cell(6, 5); c.X != 0 {
		t.Errorf("zero radius spilled into neighbor: %v", c)
	}
}

func TestClampedAddInCircle_EdgeTruncated(t *testing.T) {
	f := New(16)
	f.ClampedAddInCircle(vmath.V2(0, 0), 0.2, vmath.Splat3(1))
	if c := f.Cell(15, 15); c.X != 0 {
		t.Errorf("clamped splat wrapped to far corner")
	}
	if c := f.Cell(0, 0); c.X != 1 {
		t.Errorf("origin not written")
	}
}

func TestMaxBlend(t *testing.T) {
	a := New(4)
	b := New(4)
	a.SetCell(1, 1, vmath.V3(0.2, 0.9, 0))
	b.SetCell(1, 1, vmath.V3(0.5, 0.5, 0.5))

	a.MaxBlend(b)

	if c := a.Cell(1, 1); c != vmath.V3(0.5, 0.9, 0.5) {
		t.Errorf("MaxBlend = %v", c)
	}
}

func TestAddSaturating(t *testing.T) {
	a := New(4)
	b := New(4)
	a.Fill(0.7)
	b.Fill(0.5)

	a.AddSaturating(b)

	for i, v := range a.Data() {
		if v != 1 {
			t.Fatalf("data[%d] = %v, want 1", i, v)
		}
	}
}

func TestToRGBA(t *testing.T) {
	f := New(2)
	f.SetCell(0, 0, vmath.Splat3(1))
	f.SetCell(1, 0, vmath.Splat3(0))
	f.SetCell(0, 1, vmath.V3(2, -1, 0.5))

	buf := make([]byte, RGBABytes(f.Dim()))
	f.ToRGBA(buf)

	want := [][4]byte{
		{255, 255, 255, 255},
		{0, 0, 0, 255},
		{255, 0, 127, 255},
	}
	for c, w := range want {
		got := [4]byte{buf[c*4], buf[c*4+1], buf[c*4+2], buf[c*4+3]}
		if got != w {
			t.Errorf("pixel %d = %v, want %v", c, got, w)
		}
	}
}

func TestAverageChannels(t *testing.T) {
	f := New(2)
	f.SetCell(0, 0, vmath.V3(0.3, 0.6, 1.5))

	f.AverageChannels()

	c := f.Cell(0, 0)
	want := float32(0.3+0.6+1) / 3
	if !approx(c.X, want, 1e-6) || c.X != c.Y || c.Y != c.Z {
		t.Errorf("AverageChannels = %v, want all %v", c, want)
	}
}

func TestSummarize(t *testing.T) {
	f := New(4)
	f.SetCell(0, 0, vmath.V3(1, 0, 0))
	f.SetCell(1, 0, vmath.V3(0, 0.5, 0))

	s := f.Summarize(0.1)

	if !approx(s.Mass, 1.5, 1e-6) {
		t.Errorf("mass = %v, want 1.5", s.Mass)
	}
	if !approx(s.Coverage, 2.0/16.0, 1e-6) {
		t.Errorf("coverage = %v, want 0.125", s.Coverage)
	}
	if !approx(s.Mean.X, 1.0/16.0, 1e-6) {
		t.Errorf("mean R = %v", s.Mean.X)
	}
}

func TestDirectionField(t *testing.T) {
	d := NewNoiseDirections(32, 7, 4)
	for j := 0; j < 32; j++ {
		for i := 0; i < 32; i++ {
			a := d.AngleAt(vmath.V2(float32(i)/32, float32(j)/32))
			if a < 0 || a > 2*math.Pi+1e-5 {
				t.Fatalf("angle %v out of range", a)
			}
		}
	}

	rows := make([]float32, 4)
	rows[3] = 1.25
	df, err := FromRows(2, rows)
	if err != nil {
		t.Fatal(err)
	}
	if a := df.AngleAt(vmath.V2(0.75, 0.75)); a != 1.25 {
		t.Errorf("AngleAt = %v, want 1.25", a)
	}
	// Wrapped addressing.
	if a := df.AngleAt(vmath.V2(-0.25, -0.25)); a != 1.25 {
		t.Errorf("wrapped AngleAt = %v, want 1.25", a)
	}
	if _, err := FromRows(3, rows); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestIntensities(t *testing.T) {
	f := New(2)
	f.SetCell(1, 0, vmath.V3(0.3, 0.6, 0.9))

	got := f.Intensities(nil)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if math.Abs(got[1]-0.6) > 1e-6 {
		t.Errorf("cell 1 = %v, want 0.6", got[1])
	}
	if got[0] != 0 || got[2] != 0 || got[3] != 0 {
		t.Errorf("empty cells = %v", got)
	}

	buf := make([]float64, 0, 16)
	if again := f.Intensities(buf); &again[0] != &buf[:1][0] {
		t.Error("did not reuse a large enough buffer")
	}
}

// Package viewer draws a simulation in a raylib window with a raygui control panel.
package viewer

import (
	"fmt"
	"image/color"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/nfagan/slime-mold/camera"
	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/field"
	"github.com/nfagan/slime-mold/sim"
	"github.com/nfagan/slime-mold/visitors"
	"github.com/nfagan/slime-mold/vmath"
)

// Viewer owns the field texture and translates input into simulation commands.
type Viewer struct {
	sim    *sim.Simulation
	signal *sim.SignalParams
	swarm  *visitors.Swarm
	cam    *camera.Camera

	tex    rl.Texture2D
	texDim int
	pixels []color.RGBA

	view   rl.Rectangle // Field area on screen
	panelX float32

	Paused      bool
	ShowPanel   bool
	lastStepMS  float32
	pendingCmds []sim.Command
}

// New creates a viewer. The window must already be open. signal and swarm may be nil.
func New(s *sim.Simulation, signal *sim.SignalParams, swarm *visitors.Swarm, screen config.ScreenConfig) *Viewer {
	viewW := float32(screen.Width - screen.PanelWidth)
	viewH := float32(screen.Height)
	side := min(viewW, viewH)
	v := &Viewer{
		sim:       s,
		signal:    signal,
		swarm:     swarm,
		cam:       camera.New(vmath.V2(side, side), s.World()),
		view:      rl.Rectangle{X: 0, Y: 0, Width: side, Height: side},
		panelX:    viewW + 10,
		ShowPanel: true,
	}
	v.ensureTexture()
	return v
}

// ensureTexture (re)creates the texture whenever the field dimension changes.
func (v *Viewer) ensureTexture() {
	dim := v.sim.Dim()
	if dim == 0 || dim == v.texDim {
		return
	}
	if v.texDim != 0 {
		rl.UnloadTexture(v.tex)
	}
	img := rl.GenImageColor(dim, dim, rl.Black)
	v.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(v.tex, rl.FilterBilinear)
	rl.SetTextureWrap(v.tex, rl.WrapRepeat)
	v.texDim = dim
	v.pixels = make([]color.RGBA, dim*dim)
	v.cam.SetWorld(v.sim.World())
}

// upload copies the display buffer into the texture.
func (v *Viewer) upload() {
	buf := v.sim.DisplayBuffer()
	if len(buf) != len(v.pixels)*4 {
		return
	}
	for i := range v.pixels {
		o := i * 4
		v.pixels[i] = color.RGBA{R: buf[o], G: buf[o+1], B: buf[o+2], A: buf[o+3]}
	}
	rl.UpdateTexture(v.tex, v.pixels)
}

// Frame handles input, applies queued commands, advances the simulation and draws.
// It reports whether the simulation stepped.
func (v *Viewer) Frame() bool {
	v.sim.Perf().RecordFrame()
	v.handleInput()

	if len(v.pendingCmds) > 0 {
		v.sim.Apply(v.pendingCmds...)
		v.pendingCmds = v.pendingCmds[:0]
	}

	stepped := false
	if !v.Paused {
		v.lastStepMS = v.sim.Update()
		if v.swarm != nil {
			cfg := v.sim.Config()
			v.swarm.Step(v.sim, cfg.DT())
		}
		stepped = v.sim.Initialized()
	}

	v.ensureTexture()
	v.upload()
	v.draw()
	return stepped
}

func (v *Viewer) inView(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, v.view)
}

func (v *Viewer) handleInput() {
	mouse := rl.GetMousePosition()
	if v.inView(mouse) {
		local := vmath.V2(mouse.X-v.view.X, mouse.Y-v.view.Y)
		if rl.IsMouseButtonDown(rl.MouseLeftButton) && v.signal != nil {
			v.signal.Position = v.cam.ScreenToField(local)
		}
		if rl.IsMouseButtonDown(rl.MouseRightButton) {
			d := rl.GetMouseDelta()
			v.cam.Pan(vmath.V2(-d.X, -d.Y))
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			factor := float32(1.1)
			if wheel < 0 {
				factor = 1 / factor
			}
			v.cam.ZoomAt(local, factor)
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		v.Paused = !v.Paused
	case rl.IsKeyPressed(rl.KeyR):
		v.pendingCmds = append(v.pendingCmds, sim.Reinitialize{})
	case rl.IsKeyPressed(rl.KeyHome):
		v.cam.Reset()
	case rl.IsKeyPressed(rl.KeyTab):
		v.ShowPanel = !v.ShowPanel
	}
}

func (v *Viewer) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	vis := v.cam.VisibleField()
	dim := float32(v.texDim)
	src := rl.Rectangle{
		X:      vis.Min.X * dim,
		Y:      vis.Min.Y * dim,
		Width:  (vis.Max.X - vis.Min.X) * dim,
		Height: (vis.Max.Y - vis.Min.Y) * dim,
	}
	rl.DrawTexturePro(v.tex, src, v.view, rl.Vector2{}, 0, rl.White)

	if v.swarm != nil {
		v.swarm.Each(func(p vmath.Vec2, c vmath.Vec3) {
			s := v.cam.WorldToScreen(p)
			col := rl.Color{R: uint8(c.X * 255), G: uint8(c.Y * 255), B: uint8(c.Z * 255), A: 255}
			rl.DrawCircle(int32(v.view.X+s.X), int32(v.view.Y+s.Y), 3, col)
		})
	}

	if v.ShowPanel {
		v.drawPanel()
	}
	rl.EndDrawing()
}

func (v *Viewer) drawPanel() {
	cfg := v.sim.Config()
	x := v.panelX
	y := float32(10)
	w := float32(150)

	rl.DrawText(fmt.Sprintf("step %d  %.2f ms", v.sim.Iteration(), v.lastStepMS), int32(x), int32(y), 14, rl.RayWhite)
	y += 24

	slider := func(label string, val, lo, hi float32) float32 {
		rl.DrawText(label, int32(x), int32(y), 12, rl.LightGray)
		y += 14
		out := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w, Height: 16}, "", fmt.Sprintf("%.3f", val), val, lo, hi)
		y += 22
		return out
	}
	toggle := func(label string, on bool) bool {
		pressed := gui.Button(rl.Rectangle{X: x, Y: y, Width: w + 60, Height: 20}, fmt.Sprintf("%s: %s", label, onOff(on)))
		y += 24
		return pressed
	}

	if d := slider("Decay", cfg.Decay, 0, 0.05); d != cfg.Decay {
		v.queue(sim.SetDecay{Value: d})
	}
	if d := slider("Diffuse speed", cfg.DiffuseSpeed, 0, 1); d != cfg.DiffuseSpeed {
		v.queue(sim.SetDiffuseSpeed{Value: d})
	}
	if p := roundInt(slider("Turn speed power", float32(cfg.TurnSpeedPower), -4, 6)); p != cfg.TurnSpeedPower {
		v.queue(sim.SetTurnSpeedPower{Power: p})
	}
	if p := roundInt(slider("Speed power", float32(cfg.SpeedPower), -4, 6)); p != cfg.SpeedPower {
		v.queue(sim.SetSpeedPower{Power: p})
	}
	if ts := slider("Time scale", cfg.TimeScale, 0, 8); ts != cfg.TimeScale {
		v.queue(sim.SetTimeScale{Value: ts})
	}
	if v.signal != nil {
		v.signal.Value = slider("Signal value", v.signal.Value, 0, 1)
	}

	if toggle("Diffuse", cfg.DiffuseEnabled) {
		v.queue(sim.SetDiffuseEnabled{Value: !cfg.DiffuseEnabled})
	}
	if toggle("Perturb", cfg.Perturb.Enabled) {
		v.queue(sim.SetPerturbEnabled{Value: !cfg.Perturb.Enabled})
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w + 60, Height: 20}, "Perturb style: "+cfg.Perturb.Style.String()) {
		next := config.PerturbNoise
		if cfg.Perturb.Style == config.PerturbNoise {
			next = config.PerturbCircles
		}
		v.queue(sim.SetPerturbStyle{Style: next})
	}
	y += 24
	if toggle("Circular world", cfg.CircularWorld) {
		top := field.Wrapped
		if cfg.CircularWorld {
			top = field.Clamped
		}
		v.queue(sim.SetTopology{Topology: top})
	}
	if toggle("Right turns only", cfg.OnlyRightTurns) {
		v.queue(sim.SetRightOnly{Value: !cfg.OnlyRightTurns})
	}
	if toggle("Average image", cfg.AverageImage) {
		v.queue(sim.SetAverageImage{Value: !cfg.AverageImage})
	}
	if toggle("Signal", cfg.SignalEnabled) {
		v.queue(sim.SetSignalEnabled{Value: !cfg.SignalEnabled})
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w + 60, Height: 20}, "Reset diffusion") {
		v.queue(sim.ResetDiffusion{})
	}
	y += 30

	quality, style, timeScale := sim.PresetNames()
	for _, group := range [][]string{quality, style, timeScale} {
		bx := x
		for _, name := range group {
			if gui.Button(rl.Rectangle{X: bx, Y: y, Width: 68, Height: 20}, name) {
				v.queue(sim.ApplyPreset{Name: name})
			}
			bx += 72
			if bx > x+w {
				bx = x
				y += 24
			}
		}
		y += 28
	}
}

func (v *Viewer) queue(c sim.Command) {
	v.pendingCmds = append(v.pendingCmds, c)
}

// Close releases the texture.
func (v *Viewer) Close() {
	if v.texDim != 0 {
		rl.UnloadTexture(v.tex)
		v.texDim = 0
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func roundInt(v float32) int {
	return int(math.Round(float64(v)))
}

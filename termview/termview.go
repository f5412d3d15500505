// Package termview renders a downsampled truecolor preview of a simulation in the
// terminal, two field rows per character cell using half blocks.
package termview

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/sim"
	"github.com/nfagan/slime-mold/visitors"
)

// RGB is one downsampled pixel.
type RGB struct {
	R, G, B uint8
}

// Downsample box-averages a dim×dim RGBA8 buffer into a cols×rows grid written to
// dst, which must hold cols*rows entries.
func Downsample(buf []byte, dim, cols, rows int, dst []RGB) {
	if dim <= 0 || cols <= 0 || rows <= 0 || len(buf) < dim*dim*4 {
		return
	}
	for y := 0; y < rows; y++ {
		j0 := y * dim / rows
		j1 := max((y+1)*dim/rows, j0+1)
		for x := 0; x < cols; x++ {
			i0 := x * dim / cols
			i1 := max((x+1)*dim/cols, i0+1)
			var r, g, b, n int
			for j := j0; j < j1 && j < dim; j++ {
				for i := i0; i < i1 && i < dim; i++ {
					o := (j*dim + i) * 4
					r += int(buf[o])
					g += int(buf[o+1])
					b += int(buf[o+2])
					n++
				}
			}
			if n > 0 {
				dst[y*cols+x] = RGB{uint8(r / n), uint8(g / n), uint8(b / n)}
			}
		}
	}
}

// View draws a simulation into a tcell screen.
type View struct {
	screen tcell.Screen
	sim    *sim.Simulation
	pixels []RGB
	paused bool
	status string
}

// New wraps an initialized screen.
func New(screen tcell.Screen, s *sim.Simulation) *View {
	return &View{screen: screen, sim: s}
}

// Run opens the terminal and steps the simulation until Esc, Ctrl-C or q, or until
// maxTicks steps have run (0 = unlimited). onStep, if non-nil, runs after every
// simulation step.
func Run(s *sim.Simulation, swarm *visitors.Swarm, screenCfg config.ScreenConfig, maxTicks int, onStep func()) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("termview: create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("termview: init screen: %w", err)
	}
	defer screen.Fini()

	v := New(screen, s)

	fps := max(screenCfg.TargetFPS, 1)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go forwardEvents(screen.PollEvent, eventChan, done)

	for {
		select {
		case ev := <-eventChan:
			if v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			v.Tick(swarm, onStep)
			if maxTicks > 0 && s.Iteration() >= uint64(maxTicks) {
				slog.Info("max ticks reached", "tick", s.Iteration())
				return nil
			}
		}
	}
}

// forwardEvents sends polled events to out until poll returns nil or done closes.
func forwardEvents(poll func() tcell.Event, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// Tick records frame timing, steps the simulation unless paused and redraws.
func (v *View) Tick(swarm *visitors.Swarm, onStep func()) {
	v.sim.Perf().RecordFrame()
	if !v.paused {
		v.sim.Update()
		if swarm != nil {
			cfg := v.sim.Config()
			swarm.Step(v.sim, cfg.DT())
		}
		if onStep != nil {
			onStep()
		}
	}
	v.Draw()
}

// HandleEvent applies one input event and reports whether the view should exit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return false
		}
		if ev.Rune() == 'q' {
			return true
		}
		v.handleRune(ev.Rune())
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

// runeCommands maps keys to simulation commands.
var runeCommands = map[rune]func(cfg config.SimConfig) sim.Command{
	'r': func(config.SimConfig) sim.Command { return sim.Reinitialize{} },
	'd': func(c config.SimConfig) sim.Command { return sim.SetDiffuseEnabled{Value: !c.DiffuseEnabled} },
	'p': func(c config.SimConfig) sim.Command { return sim.SetPerturbEnabled{Value: !c.Perturb.Enabled} },
	'o': func(c config.SimConfig) sim.Command { return sim.SetRightOnly{Value: !c.OnlyRightTurns} },
	'a': func(c config.SimConfig) sim.Command { return sim.SetAverageImage{Value: !c.AverageImage} },
	'z': func(config.SimConfig) sim.Command { return sim.ResetDiffusion{} },
	'1': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "low"} },
	'2': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "med"} },
	'3': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "high"} },
	'4': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "mid_coh"} },
	'5': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "high_coh"} },
	'6': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "chaotic"} },
	'7': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "fragile"} },
	'8': func(config.SimConfig) sim.Command { return sim.ApplyPreset{Name: "clustered"} },
	'+': func(c config.SimConfig) sim.Command { return sim.SetTurnSpeedPower{Power: c.TurnSpeedPower + 1} },
	'-': func(c config.SimConfig) sim.Command { return sim.SetTurnSpeedPower{Power: c.TurnSpeedPower - 1} },
	']': func(c config.SimConfig) sim.Command { return sim.SetSpeedPower{Power: c.SpeedPower + 1} },
	'[': func(c config.SimConfig) sim.Command { return sim.SetSpeedPower{Power: c.SpeedPower - 1} },
}

func (v *View) handleRune(r rune) {
	if r == ' ' {
		v.paused = !v.paused
		return
	}
	if mk, ok := runeCommands[r]; ok {
		cmd := mk(v.sim.Config())
		v.sim.Apply(cmd)
		v.status = fmt.Sprintf("%T", cmd)
	}
}

// Draw renders the display buffer and a status line.
func (v *View) Draw() {
	w, h := v.screen.Size()
	rows := h - 1
	if w <= 0 || rows <= 0 {
		return
	}
	v.screen.Clear()

	dim := v.sim.Dim()
	if buf := v.sim.DisplayBuffer(); buf != nil {
		n := w * rows * 2
		if cap(v.pixels) < n {
			v.pixels = make([]RGB, n)
		}
		v.pixels = v.pixels[:n]
		Downsample(buf, dim, w, rows*2, v.pixels)

		for y := 0; y < rows; y++ {
			for x := 0; x < w; x++ {
				top := v.pixels[(2*y)*w+x]
				bot := v.pixels[(2*y+1)*w+x]
				style := tcell.StyleDefault.
					Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
					Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
				v.screen.SetContent(x, y, '▀', nil, style)
			}
		}
	}

	cfg := v.sim.Config()
	line := fmt.Sprintf(" step %d  dim %d  agents %d  turn %d  speed %d  perturb %s  %s",
		v.sim.Iteration(), dim, len(v.sim.Agents()), cfg.TurnSpeedPower, cfg.SpeedPower, v.sim.PerturbState(), v.status)
	if v.paused {
		line += "  [paused]"
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for i, r := range []rune(line) {
		if i >= w {
			break
		}
		v.screen.SetContent(i, rows, r, nil, style)
	}
	v.screen.Show()
}

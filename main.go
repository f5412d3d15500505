package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/sim"
	"github.com/nfagan/slime-mold/telemetry"
	"github.com/nfagan/slime-mold/termview"
	"github.com/nfagan/slime-mold/viewer"
	"github.com/nfagan/slime-mold/visitors"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	tui := flag.Bool("tui", false, "Render in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if cfg.Sim.Seed == 0 {
		cfg.Sim.Seed = time.Now().UnixNano()
	}
	if err := cfg.Sim.Validate(); err != nil {
		slog.Warn("config out of range, clamping", "error", err)
	}
	cfg.Sim.Sanitize()

	// Output manager (nil when -output-dir is empty)
	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	s := sim.New(cfg.Sim)
	defer s.Close()
	s.SetPerfCollector(telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow))
	signal := sim.SignalParamsFromConfig(cfg.Signal)
	s.SetSignal(&signal)
	s.Initialize()

	var swarm *visitors.Swarm
	if cfg.Visitors.Enabled {
		swarm = visitors.New(cfg.Visitors, rand.New(rand.NewSource(cfg.Sim.Seed+1)))
		swarm.Spawn(s.World())
	}

	rec := newRecorder(s, cfg.Telemetry, output, *logStats)

	slog.Info("starting simulation",
		"seed", cfg.Sim.Seed,
		"dim", cfg.Sim.Dim,
		"agents", cfg.Sim.NumAgents,
		"headless", *headless,
		"tui", *tui,
		"max_ticks", *maxTicks,
	)

	switch {
	case *headless:
		// Headless mode - pure CPU simulation, no raylib needed
		for {
			s.Update()
			if swarm != nil {
				simCfg := s.Config()
				swarm.Step(s, simCfg.DT())
			}
			rec.observe()

			if *maxTicks > 0 && s.Iteration() >= uint64(*maxTicks) {
				slog.Info("max ticks reached", "tick", s.Iteration())
				return
			}
		}

	case *tui:
		if err := termview.Run(s, swarm, cfg.Screen, *maxTicks, rec.observe); err != nil {
			slog.Error("terminal view failed", "error", err)
			os.Exit(1)
		}

	default:
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Slime Mold")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		v := viewer.New(s, &signal, swarm, cfg.Screen)
		defer v.Close()

		for !rl.WindowShouldClose() {
			if v.Frame() {
				rec.observe()
			}

			if *maxTicks > 0 && s.Iteration() >= uint64(*maxTicks) {
				break
			}
		}
	}
}

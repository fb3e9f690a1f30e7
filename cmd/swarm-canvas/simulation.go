package swarmcanvas

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/simulation"
	"github.com/picogrid/swarm-canvas/pkg/surface"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
	"github.com/picogrid/swarm-canvas/pkg/telemetry"
)

// SwarmCanvasSimulation runs the swarm frame engine against one renderer,
// collecting telemetry until a stop condition is met
type SwarmCanvasSimulation struct {
	config *Config
	log    logger.Logger

	mu      sync.Mutex
	engine  *swarm.Engine
	summary *telemetry.Summary

	stopChan chan struct{}
	stopOnce sync.Once

	// overridable in tests
	newScreen func() (tcell.Screen, error)
	clock     swarm.Clock
}

// NewSwarmCanvasSimulation creates a new instance of the simulation
func NewSwarmCanvasSimulation() simulation.Simulation {
	return &SwarmCanvasSimulation{
		log:       logger.WithPrefix("swarm-canvas"),
		stopChan:  make(chan struct{}),
		newScreen: tcell.NewScreen,
	}
}

// Name returns the simulation name
func (s *SwarmCanvasSimulation) Name() string {
	return Manifest.Name
}

// Description returns the simulation description
func (s *SwarmCanvasSimulation) Description() string {
	return Manifest.Description
}

// Configure sets up the simulation with provided parameters
func (s *SwarmCanvasSimulation) Configure(params map[string]interface{}) error {
	config, err := ValidateAndParse(params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	s.config = config
	return nil
}

// Summary returns the telemetry aggregate of the last run
func (s *SwarmCanvasSimulation) Summary() *telemetry.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Engine returns the engine of the current run, or nil before Run
func (s *SwarmCanvasSimulation) Engine() *swarm.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// openSurface creates the configured renderer. The returned screen is nil
// unless the terminal renderer is in use.
func (s *SwarmCanvasSimulation) openSurface() (swarm.Surface, tcell.Screen, error) {
	cfg := s.config
	switch cfg.Renderer {
	case RendererTerminal:
		screen, err := s.newScreen()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return nil, nil, fmt.Errorf("failed to initialise terminal: %w", err)
		}
		screen.HideCursor()
		return surface.NewTerminal(screen, cfg.Engine.Width, cfg.Engine.Height), screen, nil
	case RendererPNG:
		seq, err := surface.NewPNGSequence(filepath.Join(cfg.OutputDir, "frames"),
			int(cfg.Engine.Width), int(cfg.Engine.Height), cfg.PNGEvery)
		if err != nil {
			return nil, nil, err
		}
		return seq, nil, nil
	default:
		return surface.Discard{}, nil, nil
	}
}

// Run executes the simulation
func (s *SwarmCanvasSimulation) Run(ctx context.Context) error {
	if s.config == nil {
		return fmt.Errorf("simulation is not configured")
	}
	cfg := s.config

	var writer *telemetry.Writer
	if cfg.TelemetryEvery > 0 {
		w, err := telemetry.NewWriter(cfg.OutputDir, cfg.TelemetryEvery)
		if err != nil {
			return fmt.Errorf("failed to open telemetry: %w", err)
		}
		writer = w
		defer writer.Close()
	}

	surf, screen, err := s.openSurface()
	if err != nil {
		return err
	}
	closeScreen := func() {}
	if screen != nil {
		var once sync.Once
		closeScreen = func() { once.Do(screen.Fini) }
		defer closeScreen()
	}

	summary := telemetry.NewSummary()
	limit := make(chan struct{})
	var limitOnce sync.Once

	var bar *logger.ProgressBar
	if cfg.MaxTicks > 0 && screen == nil {
		bar = logger.NewProgressBar(int(cfg.MaxTicks), "Simulating")
	}

	// engine is assigned before Start, so hooks always see it
	var engine *swarm.Engine
	var writeFailed sync.Once
	hook := func(f swarm.Frame) {
		stats := telemetry.Analyze(f)
		summary.Add(stats)
		if err := writer.Write(stats); err != nil {
			writeFailed.Do(func() { s.log.Warnf("Telemetry disabled: %v", err) })
		}
		if bar != nil {
			bar.Update(int(f.Tick))
		}
		// Stopping here keeps the run at exactly MaxTicks frames
		if cfg.MaxTicks > 0 && f.Tick == cfg.MaxTicks {
			engine.Stop()
			limitOnce.Do(func() { close(limit) })
		}
	}

	opts := []swarm.Option{
		swarm.WithSurface(surf),
		swarm.WithLogger(s.log),
		swarm.WithFrameHook(hook),
	}
	if cfg.Seed != 0 {
		opts = append(opts, swarm.WithSeed(cfg.Seed))
	}
	if s.clock != nil {
		opts = append(opts, swarm.WithClock(s.clock))
	}

	engine, err = swarm.New(cfg.Engine, opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	s.mu.Lock()
	s.engine = engine
	s.summary = summary
	s.mu.Unlock()

	actions := make(chan action)
	quitKeys := make(chan struct{})
	defer close(quitKeys)
	if screen != nil {
		go pollKeys(screen, actions, quitKeys)
	}

	var timeout <-chan time.Time
	if cfg.Duration > 0 {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		timeout = timer.C
	}

	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	s.log.Infof("%s Running %d drones on a %gx%g canvas with %s renderer",
		logger.IconDrone, cfg.Engine.AgentCount, cfg.Engine.Width, cfg.Engine.Height, cfg.Renderer)

	runErr := s.wait(ctx, engine, actions, timeout, limit)
	engine.Stop()
	<-engine.Done()
	closeScreen()

	if bar != nil {
		bar.Finish()
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	logger.LogSection("Run summary")
	summary.Print()
	if writer != nil {
		logger.LogKeyValue("Telemetry", writer.Path())
	}
	if seq, ok := surf.(*surface.PNGSequence); ok {
		logger.LogKeyValue("PNG frames", seq.Written())
	}
	return runErr
}

// wait blocks until a stop condition is met, applying terminal controls in
// the meantime
func (s *SwarmCanvasSimulation) wait(ctx context.Context, engine *swarm.Engine, actions <-chan action, timeout <-chan time.Time, limit <-chan struct{}) error {
	for {
		// A paused engine has no live loop to watch, but it may have been
		// halted by a failure while a control was being applied
		var loopDone <-chan struct{}
		if engine.State() == swarm.Running {
			loopDone = engine.Done()
		} else if err := engine.Err(); err != nil {
			return fmt.Errorf("engine halted: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopChan:
			s.log.Info("Simulation stopped by user")
			return nil
		case <-timeout:
			s.log.Infof("Simulation completed after %s", s.config.Duration)
			return nil
		case <-limit:
			s.log.Infof("Simulation completed after %d ticks", s.config.MaxTicks)
			return nil
		case <-loopDone:
			if err := engine.Err(); err != nil {
				return fmt.Errorf("engine halted: %w", err)
			}
		case a := <-actions:
			if a == actionQuit {
				s.log.Info("Simulation stopped by user")
				return nil
			}
			if err := apply(engine, a); err != nil {
				s.log.Warnf("Control rejected: %v", err)
			}
		}
	}
}

// Stop gracefully shuts down the simulation
func (s *SwarmCanvasSimulation) Stop() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	return nil
}

func init() {
	err := simulation.DefaultRegistry.Register(Manifest, NewSwarmCanvasSimulation)
	if err != nil {
		logger.Errorf("Failed to register simulation: %v", err)
		return
	}
}

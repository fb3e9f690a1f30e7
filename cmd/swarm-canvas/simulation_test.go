package swarmcanvas

import (
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/surface"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

func newTestSimulation(t *testing.T, params map[string]interface{}) (*SwarmCanvasSimulation, *swarm.ManualClock) {
	t.Helper()
	s := NewSwarmCanvasSimulation().(*SwarmCanvasSimulation)
	s.log = logger.NewWithConfig(logger.Config{Level: logger.ErrorLevel, Writer: io.Discard, NoColor: true})
	clock := swarm.NewManualClock()
	s.clock = clock

	if _, ok := params["seed"]; !ok {
		params["seed"] = 11
	}
	if err := s.Configure(params); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return s, clock
}

func runAsync(s *SwarmCanvasSimulation, ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	return errc
}

// advance delivers one frame, waiting for the engine to start if needed
func advance(t *testing.T, clock *swarm.ManualClock) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !clock.Advance() {
		if time.Now().After(deadline) {
			t.Fatal("engine never started")
		}
		time.Sleep(time.Millisecond)
	}
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	s, clock := newTestSimulation(t, map[string]interface{}{
		"renderer":  "none",
		"max_ticks": 5,
	})
	errc := runAsync(s, context.Background())

	for i := 0; i < 5; i++ {
		advance(t, clock)
	}
	if err := waitRun(t, errc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if ticks := s.Engine().Ticks(); ticks != 5 {
		t.Errorf("Expected 5 ticks, got %d", ticks)
	}
	if frames := s.Summary().Frames(); frames != 5 {
		t.Errorf("Expected 5 summarised frames, got %d", frames)
	}
	if clock.Advance() {
		t.Error("Ticker still live after the run ended")
	}
}

func TestRunWritesPNGAndTelemetry(t *testing.T) {
	dir := t.TempDir()
	s, clock := newTestSimulation(t, map[string]interface{}{
		"renderer":            "png",
		"width":               120,
		"height":              90,
		"boundary_margin":     10,
		"communication_range": 40,
		"png_every":           2,
		"telemetry_every":     2,
		"output_dir":          dir,
		"max_ticks":           4,
	})
	errc := runAsync(s, context.Background())
	for i := 0; i < 4; i++ {
		advance(t, clock)
	}
	if err := waitRun(t, errc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, name := range []string{"frame_000002.png", "frame_000004.png"} {
		if _, err := os.Stat(filepath.Join(dir, "frames", name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("Expected telemetry.csv: %v", err)
	}
	// header plus ticks 2 and 4
	if lines := len(strings.Split(strings.TrimSpace(string(data)), "\n")); lines != 3 {
		t.Errorf("Expected 3 CSV lines, got %d:\n%s", lines, data)
	}
}

func TestRunStopAndCancel(t *testing.T) {
	s, clock := newTestSimulation(t, map[string]interface{}{"renderer": "none"})
	errc := runAsync(s, context.Background())
	advance(t, clock)
	_ = s.Stop()
	_ = s.Stop()
	if err := waitRun(t, errc); err != nil {
		t.Errorf("Expected clean stop, got %v", err)
	}
	if s.Engine().State() != swarm.Idle {
		t.Error("Engine still running after Stop")
	}

	s, clock = newTestSimulation(t, map[string]interface{}{"renderer": "none"})
	ctx, cancel := context.WithCancel(context.Background())
	errc = runAsync(s, ctx)
	advance(t, clock)
	cancel()
	if err := waitRun(t, errc); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunEndsAfterDuration(t *testing.T) {
	s, _ := newTestSimulation(t, map[string]interface{}{
		"renderer": "none",
		"duration": "20ms",
	})
	if err := waitRun(t, runAsync(s, context.Background())); err != nil {
		t.Errorf("Run failed: %v", err)
	}
}

func TestRunRequiresConfigure(t *testing.T) {
	s := NewSwarmCanvasSimulation()
	if err := s.Run(context.Background()); err == nil {
		t.Error("Expected error for unconfigured simulation")
	}
}

func TestTerminalRendererKeys(t *testing.T) {
	s, clock := newTestSimulation(t, map[string]interface{}{"renderer": "terminal"})
	screen := tcell.NewSimulationScreen("UTF-8")
	s.newScreen = func() (tcell.Screen, error) { return screen, nil }

	errc := runAsync(s, context.Background())
	advance(t, clock)
	advance(t, clock)

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	eventually(t, "speed change", func() bool { return s.Engine().SpeedMultiplier() > 1.05 })

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	eventually(t, "pause", func() bool { return s.Engine().State() == swarm.Idle })

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	if err := waitRun(t, errc); err != nil {
		t.Errorf("Run failed: %v", err)
	}
	if ticks := s.Engine().Ticks(); ticks != 2 {
		t.Errorf("Expected 2 ticks, got %d", ticks)
	}
}

func TestApplyControls(t *testing.T) {
	e, err := swarm.New(swarm.DefaultConfig(),
		swarm.WithSeed(1),
		swarm.WithClock(swarm.NewManualClock()),
		swarm.WithSurface(surface.Discard{}),
		swarm.WithLogger(logger.NewWithConfig(logger.Config{Writer: io.Discard, NoColor: true})),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	if err := apply(e, actionToggle); err != nil || e.State() != swarm.Running {
		t.Fatalf("Toggle should start the engine: %v", err)
	}
	if err := apply(e, actionToggle); err != nil || e.State() != swarm.Idle {
		t.Fatalf("Toggle should stop the engine: %v", err)
	}

	for i := 0; i < 100; i++ {
		_ = apply(e, actionFaster)
	}
	if e.SpeedMultiplier() != swarm.MaxControlSpeed {
		t.Errorf("Expected speed clamped to %v, got %v", swarm.MaxControlSpeed, e.SpeedMultiplier())
	}
	for i := 0; i < 100; i++ {
		_ = apply(e, actionSlower)
	}
	if e.SpeedMultiplier() != swarm.MinControlSpeed {
		t.Errorf("Expected speed clamped to %v, got %v", swarm.MinControlSpeed, e.SpeedMultiplier())
	}

	run := e.RunID()
	if err := apply(e, actionReset); err != nil {
		t.Fatal(err)
	}
	if e.RunID() == run || e.State() != swarm.Running {
		t.Error("Reset should respawn and keep running")
	}
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want action
	}{
		{tcell.KeyEscape, 0, actionQuit},
		{tcell.KeyRune, 'q', actionQuit},
		{tcell.KeyRune, ' ', actionToggle},
		{tcell.KeyRune, 'r', actionReset},
		{tcell.KeyRune, '+', actionFaster},
		{tcell.KeyRune, '-', actionSlower},
		{tcell.KeyRune, 'x', actionNone},
	}
	for _, tt := range tests {
		if got := keyAction(tcell.NewEventKey(tt.key, tt.r, tcell.ModNone)); got != tt.want {
			t.Errorf("keyAction(%v, %q) = %v, want %v", tt.key, tt.r, got, tt.want)
		}
	}
}

// brokenSurface fails every draw
type brokenSurface struct{ surface.Discard }

var errBroken = errors.New("surface broken")

func (brokenSurface) Fill(color.RGBA) error { return errBroken }

func TestWaitReportsHaltedEngine(t *testing.T) {
	s, _ := newTestSimulation(t, map[string]interface{}{"renderer": "none"})

	clock := swarm.NewManualClock()
	engine, err := swarm.New(s.config.Engine,
		swarm.WithClock(clock),
		swarm.WithSurface(brokenSurface{}),
		swarm.WithLogger(s.log))
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Start(); err != nil {
		t.Fatal(err)
	}
	clock.Advance()
	select {
	case <-engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("engine loop did not exit")
	}

	// The engine is already idle, so only its error can end the wait
	errc := make(chan error, 1)
	go func() { errc <- s.wait(context.Background(), engine, make(chan action), nil, nil) }()

	if err := waitRun(t, errc); !errors.Is(err, errBroken) {
		t.Errorf("Expected halted engine error, got %v", err)
	}
}

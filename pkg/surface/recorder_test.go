package surface

import (
	"image/color"
	"testing"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

func TestRecorderKeepsLastPresentedFrame(t *testing.T) {
	rec := NewRecorder()
	agents := []swarm.Agent{
		{ID: 0, Position: swarm.Vec2{X: 100, Y: 100}},
		{ID: 1, Position: swarm.Vec2{X: 150, Y: 100}},
	}
	edges := []swarm.Edge{{A: 0, B: 1}}

	theme := swarm.DefaultTheme()
	theme.GridPitch = 0
	if err := swarm.Render(rec, 400, 300, theme, agents, edges); err != nil {
		t.Fatalf("render: %v", err)
	}

	if rec.Frames() != 1 {
		t.Errorf("expected 1 presented frame, got %d", rec.Frames())
	}
	if n := rec.Count(OpFill); n != 1 {
		t.Errorf("expected 1 fill, got %d", n)
	}
	if n := rec.Count(OpLine); n != 1 {
		t.Errorf("expected 1 link, got %d", n)
	}
	if n := rec.Count(OpCircle); n != 10 {
		t.Errorf("expected 10 circles, got %d", n)
	}
	if n := rec.Count(OpText); n != 2 {
		t.Errorf("expected 2 labels, got %d", n)
	}

	calls := rec.Calls()
	if calls[0].Op != OpFill {
		t.Errorf("frame should start with a fill, got %s", calls[0].Op)
	}
	if last := calls[len(calls)-1]; last.Op != OpText || last.Text != "1" {
		t.Errorf("frame should end with label 1, got %+v", last)
	}
}

func TestRecorderIgnoresUnpresentedCalls(t *testing.T) {
	rec := NewRecorder()
	red := color.RGBA{R: 255, A: 255}

	_ = rec.Fill(red)
	_ = rec.Circle(swarm.Vec2{X: 1, Y: 1}, 2, red)
	_ = rec.Present()

	_ = rec.Fill(red)
	_ = rec.Line(swarm.Vec2{}, swarm.Vec2{X: 5}, red)

	calls := rec.Calls()
	if len(calls) != 2 || calls[1].Op != OpCircle {
		t.Errorf("expected the first frame only, got %+v", calls)
	}

	rec.Reset()
	if len(rec.Calls()) != 0 || rec.Frames() != 0 {
		t.Error("reset should clear calls and frame count")
	}
}

func TestDiscardAcceptsEverything(t *testing.T) {
	agents := []swarm.Agent{{ID: 0, Position: swarm.Vec2{X: 50, Y: 50}}}
	if err := swarm.Render(Discard{}, 100, 100, swarm.DefaultTheme(), agents, nil); err != nil {
		t.Errorf("discard render failed: %v", err)
	}
}

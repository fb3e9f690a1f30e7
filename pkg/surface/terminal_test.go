package surface

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

func newSimTerminal(t *testing.T) *Terminal {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	// 10 canvas units per column, 25 per row
	return NewTerminal(screen, 800, 600)
}

func runeAt(term *Terminal, x, y int) rune {
	r, _, _, _ := term.Screen().GetContent(x, y)
	return r
}

func TestTerminalTextIsCentred(t *testing.T) {
	term := newSimTerminal(t)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	_ = term.Fill(color.RGBA{A: 255})
	_ = term.Text(swarm.Vec2{X: 200, Y: 300}, "7", white)
	_ = term.Text(swarm.Vec2{X: 400, Y: 100}, "12", white)

	if r := runeAt(term, 20, 12); r != '7' {
		t.Errorf("expected '7' at (20,12), got %q", r)
	}
	if a, b := runeAt(term, 39, 4), runeAt(term, 40, 4); a != '1' || b != '2' {
		t.Errorf("expected \"12\" at (39,4), got %q%q", a, b)
	}
}

func TestTerminalLines(t *testing.T) {
	term := newSimTerminal(t)
	c := color.RGBA{G: 255, A: 255}

	_ = term.Fill(color.RGBA{A: 255})
	_ = term.Line(swarm.Vec2{X: 0, Y: 100}, swarm.Vec2{X: 790, Y: 100}, c)
	for x := 0; x < 80; x++ {
		if r := runeAt(term, x, 4); r != '─' {
			t.Fatalf("expected horizontal rune at (%d,4), got %q", x, r)
		}
	}

	_ = term.Line(swarm.Vec2{X: 50, Y: 0}, swarm.Vec2{X: 50, Y: 590}, c)
	if r := runeAt(term, 5, 10); r != '│' {
		t.Errorf("expected vertical rune at (5,10), got %q", r)
	}

	_ = term.Line(swarm.Vec2{X: 600, Y: 100}, swarm.Vec2{X: 650, Y: 225}, c)
	for i := 0; i <= 5; i++ {
		if r := runeAt(term, 60+i, 4+i); r != '╲' {
			t.Errorf("expected diagonal rune at (%d,%d), got %q", 60+i, 4+i, r)
		}
	}
}

func TestTerminalOutOfRangeIsClamped(t *testing.T) {
	term := newSimTerminal(t)
	c := color.RGBA{R: 255, A: 255}

	_ = term.Circle(swarm.Vec2{X: 5000, Y: -20}, 8, c)
	if r := runeAt(term, 79, 0); r != runeBody {
		t.Errorf("expected clamped body at (79,0), got %q", r)
	}
}

func TestTerminalRotorKeepsBody(t *testing.T) {
	term := newSimTerminal(t)
	c := color.RGBA{R: 255, A: 255}

	_ = term.Fill(color.RGBA{A: 255})
	_ = term.Circle(swarm.Vec2{X: 305, Y: 310}, 8, c)
	_ = term.Circle(swarm.Vec2{X: 301, Y: 304}, 3, c)
	if r := runeAt(term, 30, 12); r != runeBody {
		t.Errorf("rotor overwrote body: %q", r)
	}

	_ = term.Circle(swarm.Vec2{X: 500, Y: 500}, 3, c)
	if r := runeAt(term, 50, 20); r != runeRotor {
		t.Errorf("expected rotor at (50,20), got %q", r)
	}
}

func TestTerminalRendersThroughEngineSurface(t *testing.T) {
	term := newSimTerminal(t)
	agents := []swarm.Agent{
		{ID: 0, Position: swarm.Vec2{X: 100, Y: 100}},
		{ID: 1, Position: swarm.Vec2{X: 160, Y: 100}},
	}
	edges := []swarm.Edge{{A: 0, B: 1}}
	if err := swarm.Render(term, 800, 600, swarm.DefaultTheme(), agents, edges); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r := runeAt(term, 10, 4); r != '0' {
		t.Errorf("expected label 0 at (10,4), got %q", r)
	}
	if r := runeAt(term, 16, 4); r != '1' {
		t.Errorf("expected label 1 at (16,4), got %q", r)
	}
}

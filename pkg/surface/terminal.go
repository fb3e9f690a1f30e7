package surface

import (
	"image/color"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

const (
	runeBody  = '●'
	runeRotor = '·'
	// circles below this canvas radius draw as rotors
	rotorRadius = 4.0
)

// Terminal draws onto a tcell screen, scaling canvas coordinates onto the
// cell grid. Alpha is ignored.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	width  float64
	height float64
	bg     tcell.Color
}

// NewTerminal wraps an initialised screen showing a width x height canvas.
func NewTerminal(screen tcell.Screen, width, height float64) *Terminal {
	return &Terminal{
		screen: screen,
		width:  width,
		height: height,
		bg:     tcell.ColorBlack,
	}
}

// Screen returns the wrapped screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// cell maps a canvas point to a cell, clamped to the screen.
func (t *Terminal) cell(p swarm.Vec2) (int, int) {
	cols, rows := t.screen.Size()
	x := int(math.Floor(p.X / t.width * float64(cols)))
	y := int(math.Floor(p.Y / t.height * float64(rows)))
	return clampInt(x, 0, cols-1), clampInt(y, 0, rows-1)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t *Terminal) style(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Background(t.bg).Foreground(rgb(c))
}

func (t *Terminal) Fill(c color.RGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bg = rgb(c)
	t.screen.Fill(' ', tcell.StyleDefault.Background(t.bg))
	return nil
}

func (t *Terminal) Line(from, to swarm.Vec2, c color.RGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	x0, y0 := t.cell(from)
	x1, y1 := t.cell(to)
	r := lineRune(x1-x0, y1-y0)
	st := t.style(c)

	// Bresenham
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		t.screen.SetContent(x0, y0, r, nil, st)
		if x0 == x1 && y0 == y1 {
			return nil
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// lineRune picks a glyph matching the slope of a line segment.
func lineRune(dx, dy int) rune {
	switch {
	case dy == 0:
		return '─'
	case dx == 0:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (t *Terminal) Circle(center swarm.Vec2, radius float64, c color.RGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	x, y := t.cell(center)
	r := runeBody
	if radius < rotorRadius {
		r = runeRotor
		// rotors never cover a body drawn in the same cell
		if cur, _, _, _ := t.screen.GetContent(x, y); cur == runeBody {
			return nil
		}
	}
	t.screen.SetContent(x, y, r, nil, t.style(c))
	return nil
}

func (t *Terminal) Text(center swarm.Vec2, text string, c color.RGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	runes := []rune(text)
	x, y := t.cell(center)
	cols, _ := t.screen.Size()
	x = clampInt(x-len(runes)/2, 0, cols-len(runes))
	st := t.style(c)
	for i, r := range runes {
		t.screen.SetContent(x+i, y, r, nil, st)
	}
	return nil
}

// Present flushes the frame to the terminal.
func (t *Terminal) Present() error {
	t.screen.Show()
	return nil
}

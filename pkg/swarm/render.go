package swarm

import (
	"fmt"
	"image/color"
	"strconv"
)

// Surface is the minimal drawing capability set a frame needs.
type Surface interface {
	Fill(c color.RGBA) error
	Line(from, to Vec2, c color.RGBA) error
	Circle(center Vec2, radius float64, c color.RGBA) error
	Text(center Vec2, text string, c color.RGBA) error
}

// Presenter is implemented by surfaces that need a flush once a frame is drawn.
type Presenter interface {
	Present() error
}

// Theme controls colours and decorative geometry of a rendered frame.
type Theme struct {
	Background color.RGBA
	Grid       color.RGBA
	Link       color.RGBA
	Body       color.RGBA
	Rotor      color.RGBA
	Label      color.RGBA

	GridPitch   float64
	BodyRadius  float64
	RotorRadius float64
	RotorOffset float64
}

// DefaultTheme is the dark operations-console palette.
func DefaultTheme() Theme {
	return Theme{
		Background:  color.RGBA{R: 15, G: 23, B: 42, A: 255},
		Grid:        color.RGBA{R: 30, G: 41, B: 59, A: 255},
		Link:        color.RGBA{R: 34, G: 211, B: 238, A: 110},
		Body:        color.RGBA{R: 59, G: 130, B: 246, A: 255},
		Rotor:       color.RGBA{R: 147, G: 197, B: 253, A: 255},
		Label:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		GridPitch:   50,
		BodyRadius:  8,
		RotorRadius: 3,
		RotorOffset: 6,
	}
}

var rotorOffsets = [4]Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1}}

// Render draws background, grid, links and agents in that order. Links are
// drawn before agents so bodies sit on top of them.
func Render(s Surface, width, height float64, theme Theme, agents []Agent, edges []Edge) error {
	if s == nil {
		return ErrNoSurface
	}

	if err := s.Fill(theme.Background); err != nil {
		return fmt.Errorf("fill background: %w", err)
	}

	if theme.GridPitch > 0 {
		for x := 0.0; x <= width; x += theme.GridPitch {
			if err := s.Line(Vec2{X: x}, Vec2{X: x, Y: height}, theme.Grid); err != nil {
				return fmt.Errorf("draw grid: %w", err)
			}
		}
		for y := 0.0; y <= height; y += theme.GridPitch {
			if err := s.Line(Vec2{Y: y}, Vec2{X: width, Y: y}, theme.Grid); err != nil {
				return fmt.Errorf("draw grid: %w", err)
			}
		}
	}

	byID := make(map[int]Vec2, len(agents))
	for _, a := range agents {
		byID[a.ID] = a.Position
	}
	for _, e := range edges {
		from, okA := byID[e.A]
		to, okB := byID[e.B]
		if !okA || !okB {
			return fmt.Errorf("edge %s references an unknown agent", e)
		}
		if err := s.Line(from, to, theme.Link); err != nil {
			return fmt.Errorf("draw link %s: %w", e, err)
		}
	}

	for _, a := range agents {
		if err := s.Circle(a.Position, theme.BodyRadius, theme.Body); err != nil {
			return fmt.Errorf("draw agent %d: %w", a.ID, err)
		}
		for _, off := range rotorOffsets {
			if err := s.Circle(a.Position.Add(off.Scale(theme.RotorOffset)), theme.RotorRadius, theme.Rotor); err != nil {
				return fmt.Errorf("draw agent %d rotor: %w", a.ID, err)
			}
		}
		if err := s.Text(a.Position, strconv.Itoa(a.ID), theme.Label); err != nil {
			return fmt.Errorf("draw agent %d label: %w", a.ID, err)
		}
	}

	if p, ok := s.(Presenter); ok {
		if err := p.Present(); err != nil {
			return fmt.Errorf("present frame: %w", err)
		}
	}
	return nil
}

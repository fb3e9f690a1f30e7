package surface

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

// Raster draws into an RGBA image through gg.
type Raster struct {
	dc        *gg.Context
	lineWidth float64
}

// NewRaster allocates a width x height raster.
func NewRaster(width, height int) *Raster {
	return &Raster{dc: gg.NewContext(width, height), lineWidth: 1}
}

func (r *Raster) Fill(c color.RGBA) error {
	r.dc.SetColor(c)
	r.dc.Clear()
	return nil
}

func (r *Raster) Line(from, to swarm.Vec2, c color.RGBA) error {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(r.lineWidth)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
	return nil
}

func (r *Raster) Circle(center swarm.Vec2, radius float64, c color.RGBA) error {
	r.dc.SetColor(c)
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.dc.Fill()
	return nil
}

func (r *Raster) Text(center swarm.Vec2, text string, c color.RGBA) error {
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(text, center.X, center.Y, 0.5, 0.5)
	return nil
}

// Image returns the backing image.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// SavePNG writes the current image to path.
func (r *Raster) SavePNG(path string) error {
	if err := r.dc.SavePNG(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// PNGSequence is a raster that writes every Nth presented frame to disk.
type PNGSequence struct {
	*Raster
	dir     string
	every   int
	frames  int
	written int
}

// NewPNGSequence creates dir and returns a sequence writing one file per
// every presented frames.
func NewPNGSequence(dir string, width, height, every int) (*PNGSequence, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating frame directory: %w", err)
	}
	return &PNGSequence{
		Raster: NewRaster(width, height),
		dir:    dir,
		every:  every,
	}, nil
}

// Present counts the frame and saves it when due.
func (p *PNGSequence) Present() error {
	p.frames++
	if p.frames%p.every != 0 {
		return nil
	}
	p.written++
	return p.SavePNG(filepath.Join(p.dir, fmt.Sprintf("frame_%06d.png", p.frames)))
}

// Written returns how many files have been saved.
func (p *PNGSequence) Written() int {
	return p.written
}

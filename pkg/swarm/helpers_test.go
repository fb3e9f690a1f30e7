package swarm

import (
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/picogrid/swarm-canvas/pkg/logger"
)

func quietLogger() logger.Logger {
	return logger.NewWithConfig(logger.Config{Level: logger.ErrorLevel, Writer: io.Discard, NoColor: true})
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithSeed(42), WithLogger(quietLogger())}, opts...)
	e, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

// drawCall is one recorded surface operation.
type drawCall struct {
	op     string
	from   Vec2
	to     Vec2
	radius float64
	text   string
}

// recordingSurface keeps every call in order.
type recordingSurface struct {
	calls    []drawCall
	presents int
}

func (r *recordingSurface) Fill(color.RGBA) error {
	r.calls = append(r.calls, drawCall{op: "fill"})
	return nil
}

func (r *recordingSurface) Line(from, to Vec2, _ color.RGBA) error {
	r.calls = append(r.calls, drawCall{op: "line", from: from, to: to})
	return nil
}

func (r *recordingSurface) Circle(center Vec2, radius float64, _ color.RGBA) error {
	r.calls = append(r.calls, drawCall{op: "circle", from: center, radius: radius})
	return nil
}

func (r *recordingSurface) Text(center Vec2, text string, _ color.RGBA) error {
	r.calls = append(r.calls, drawCall{op: "text", from: center, text: text})
	return nil
}

func (r *recordingSurface) Present() error {
	r.presents++
	return nil
}

func (r *recordingSurface) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")

// failingSurface rejects every circle.
type failingSurface struct {
	recordingSurface
}

func (f *failingSurface) Circle(Vec2, float64, color.RGBA) error {
	return errBoom
}

package surface

import (
	"image/color"
	"sync"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

// Op names a recorded drawing operation.
type Op string

const (
	OpFill   Op = "fill"
	OpLine   Op = "line"
	OpCircle Op = "circle"
	OpText   Op = "text"
)

// DrawCall is one recorded operation.
type DrawCall struct {
	Op     Op
	From   swarm.Vec2
	To     swarm.Vec2
	Radius float64
	Text   string
	Color  color.RGBA
}

// Recorder keeps the draw calls of the most recent frame. Present closes a
// frame; the next Fill starts a new one.
type Recorder struct {
	mu       sync.Mutex
	pending  []DrawCall
	last     []DrawCall
	presents int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(c DrawCall) error {
	r.mu.Lock()
	r.pending = append(r.pending, c)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Fill(c color.RGBA) error {
	r.mu.Lock()
	r.pending = r.pending[:0]
	r.mu.Unlock()
	return r.add(DrawCall{Op: OpFill, Color: c})
}

func (r *Recorder) Line(from, to swarm.Vec2, c color.RGBA) error {
	return r.add(DrawCall{Op: OpLine, From: from, To: to, Color: c})
}

func (r *Recorder) Circle(center swarm.Vec2, radius float64, c color.RGBA) error {
	return r.add(DrawCall{Op: OpCircle, From: center, Radius: radius, Color: c})
}

func (r *Recorder) Text(center swarm.Vec2, text string, c color.RGBA) error {
	return r.add(DrawCall{Op: OpText, From: center, Text: text, Color: c})
}

// Present publishes the pending calls as the last complete frame.
func (r *Recorder) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = append(r.last[:0], r.pending...)
	r.presents++
	return nil
}

// Calls returns a copy of the last presented frame.
func (r *Recorder) Calls() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DrawCall, len(r.last))
	copy(out, r.last)
	return out
}

// Frames returns how many frames were presented.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presents
}

// Reset forgets every recorded call and the frame count.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
	r.last = nil
	r.presents = 0
}

// Count returns how many calls of op the last frame holds.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Discard accepts and drops every call.
type Discard struct{}

func (Discard) Fill(color.RGBA) error                         { return nil }
func (Discard) Line(swarm.Vec2, swarm.Vec2, color.RGBA) error { return nil }
func (Discard) Circle(swarm.Vec2, float64, color.RGBA) error  { return nil }
func (Discard) Text(swarm.Vec2, string, color.RGBA) error     { return nil }

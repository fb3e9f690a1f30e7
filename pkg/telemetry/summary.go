package telemetry

import (
	"fmt"
	"io"
	"sync"

	"github.com/picogrid/swarm-canvas/pkg/logger"
)

// Summary aggregates Stats over a run.
type Summary struct {
	mu sync.Mutex

	frames        int
	lastTick      uint64
	edgeTotal     int
	minComponents int
	maxComponents int
	maxDegree     int
	maxIsolated   int
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{}
}

// Add folds one frame into the aggregate.
func (s *Summary) Add(st Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frames == 0 || st.Components < s.minComponents {
		s.minComponents = st.Components
	}
	if st.Components > s.maxComponents {
		s.maxComponents = st.Components
	}
	if st.MaxDegree > s.maxDegree {
		s.maxDegree = st.MaxDegree
	}
	if st.Isolated > s.maxIsolated {
		s.maxIsolated = st.Isolated
	}
	s.frames++
	s.lastTick = st.Tick
	s.edgeTotal += st.Edges
}

// Frames returns the number of frames seen.
func (s *Summary) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// MeanEdges returns the average edge count per frame.
func (s *Summary) MeanEdges() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == 0 {
		return 0
	}
	return float64(s.edgeTotal) / float64(s.frames)
}

// Table renders the aggregate as a two-column table.
func (s *Summary) Table() *logger.Table {
	mean := s.MeanEdges()

	s.mu.Lock()
	defer s.mu.Unlock()

	t := logger.NewTable("METRIC", "VALUE")
	t.AddRow("frames", fmt.Sprint(s.frames))
	t.AddRow("last tick", fmt.Sprint(s.lastTick))
	t.AddRow("mean edges", fmt.Sprintf("%.2f", mean))
	t.AddRow("components (min/max)", fmt.Sprintf("%d/%d", s.minComponents, s.maxComponents))
	t.AddRow("max degree", fmt.Sprint(s.maxDegree))
	t.AddRow("max isolated", fmt.Sprint(s.maxIsolated))
	return t
}

// Print writes the table through the default logger output.
func (s *Summary) Print() {
	s.Table().Print()
}

// Fprint writes the table to w.
func (s *Summary) Fprint(w io.Writer) {
	s.Table().Fprint(w)
}

// Package telemetry derives connectivity statistics from swarm frames and
// records them as CSV.
package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

// Stats describes the communication graph of one frame.
type Stats struct {
	RunID            string  `csv:"run_id"`
	Tick             uint64  `csv:"tick"`
	Speed            float64 `csv:"speed"`
	Agents           int     `csv:"agents"`
	Edges            int     `csv:"edges"`
	Density          float64 `csv:"density"`
	MeanDegree       float64 `csv:"mean_degree"`
	StdDegree        float64 `csv:"std_degree"`
	MaxDegree        int     `csv:"max_degree"`
	Components       int     `csv:"components"`
	LargestComponent int     `csv:"largest_component"`
	Isolated         int     `csv:"isolated"`
}

// Analyze builds an undirected graph from the frame and measures it.
func Analyze(f swarm.Frame) Stats {
	s := Stats{
		RunID:  f.RunID.String(),
		Tick:   f.Tick,
		Speed:  f.Speed,
		Agents: len(f.Agents),
		Edges:  len(f.Edges),
	}
	if s.Agents == 0 {
		return s
	}

	g := simple.NewUndirectedGraph()
	for _, a := range f.Agents {
		g.AddNode(simple.Node(a.ID))
	}
	for _, e := range f.Edges {
		g.SetEdge(g.NewEdge(simple.Node(e.A), simple.Node(e.B)))
	}

	degrees := make([]float64, len(f.Agents))
	for i, a := range f.Agents {
		d := g.From(int64(a.ID)).Len()
		degrees[i] = float64(d)
		if d == 0 {
			s.Isolated++
		}
	}
	s.MeanDegree, s.StdDegree = stat.PopMeanStdDev(degrees, nil)
	s.MaxDegree = int(floats.Max(degrees))

	if n := float64(s.Agents); n > 1 {
		s.Density = float64(s.Edges) / (n * (n - 1) / 2)
	}

	components := topo.ConnectedComponents(g)
	s.Components = len(components)
	for _, c := range components {
		if len(c) > s.LargestComponent {
			s.LargestComponent = len(c)
		}
	}
	return s
}

package swarm

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
)

// Edge is an unordered communication link between two agents, A < B.
type Edge struct {
	A int `json:"a" csv:"a"`
	B int `json:"b" csv:"b"`
}

func (e Edge) String() string { return fmt.Sprintf("%d-%d", e.A, e.B) }

func newEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// GraphStrategy selects how the pairwise range check is evaluated.
// Every strategy yields the same edge set.
type GraphStrategy string

const (
	GraphAuto     GraphStrategy = "auto"
	GraphPairwise GraphStrategy = "pairwise"
	GraphGrid     GraphStrategy = "grid"
	GraphParallel GraphStrategy = "parallel"
)

// GraphStrategies lists the accepted strategy names.
var GraphStrategies = []GraphStrategy{GraphAuto, GraphPairwise, GraphGrid, GraphParallel}

// autoGridThreshold is the agent count at which auto switches to the grid index.
const autoGridThreshold = 64

func (s GraphStrategy) valid() bool {
	for _, known := range GraphStrategies {
		if s == known {
			return true
		}
	}
	return false
}

// CommunicationGraph returns every pair of agents closer than rng, sorted by (A, B).
func CommunicationGraph(agents []Agent, rng float64, strategy GraphStrategy) []Edge {
	var edges []Edge
	switch strategy {
	case GraphGrid:
		edges = gridEdges(agents, rng)
	case GraphParallel:
		edges = parallelEdges(agents, rng, runtime.GOMAXPROCS(0))
	case GraphAuto:
		if len(agents) >= autoGridThreshold {
			edges = gridEdges(agents, rng)
		} else {
			edges = pairwiseEdges(agents, rng)
		}
	default:
		edges = pairwiseEdges(agents, rng)
	}
	sortEdges(edges)
	return edges
}

// inRange is the single definition of connectivity: strictly closer than rng.
func inRange(a, b Agent, rng float64) bool {
	return a.Position.Dist(b.Position) < rng
}

func pairwiseEdges(agents []Agent, rng float64) []Edge {
	var edges []Edge
	for i := 0; i < len(agents); i++ {
		edges = appendRow(edges, agents, i, rng)
	}
	return edges
}

// appendRow compares agent i with every later agent.
func appendRow(dst []Edge, agents []Agent, i int, rng float64) []Edge {
	for j := i + 1; j < len(agents); j++ {
		if inRange(agents[i], agents[j], rng) {
			dst = append(dst, newEdge(agents[i].ID, agents[j].ID))
		}
	}
	return dst
}

// parallelEdges stripes triangle rows across workers and merges the partial
// edge lists once every worker is done.
func parallelEdges(agents []Agent, rng float64, workers int) []Edge {
	if workers < 1 {
		workers = 1
	}
	if workers > len(agents) {
		workers = len(agents)
	}
	if workers <= 1 {
		return pairwiseEdges(agents, rng)
	}

	partials := make([][]Edge, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var local []Edge
			for i := w; i < len(agents); i += workers {
				local = appendRow(local, agents, i, rng)
			}
			partials[w] = local
		}(w)
	}
	wg.Wait()

	total := 0
	for _, p := range partials {
		total += len(p)
	}
	edges := make([]Edge, 0, total)
	for _, p := range partials {
		edges = append(edges, p...)
	}
	return edges
}

type cellKey struct {
	col, row int
}

// gridEdges buckets agents into cells one range wide so only the 3x3
// neighbourhood of a cell can hold partners.
func gridEdges(agents []Agent, rng float64) []Edge {
	if len(agents) < 2 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, a := range agents {
		minX = math.Min(minX, a.Position.X)
		minY = math.Min(minY, a.Position.Y)
	}

	keyOf := func(p Vec2) cellKey {
		return cellKey{
			col: int(math.Floor((p.X - minX) / rng)),
			row: int(math.Floor((p.Y - minY) / rng)),
		}
	}

	cells := make(map[cellKey][]int, len(agents))
	for i, a := range agents {
		k := keyOf(a.Position)
		cells[k] = append(cells[k], i)
	}

	var edges []Edge
	for i, a := range agents {
		k := keyOf(a.Position)
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				for _, j := range cells[cellKey{col: k.col + dc, row: k.row + dr}] {
					if j <= i {
						continue
					}
					if inRange(a, agents[j], rng) {
						edges = append(edges, newEdge(a.ID, agents[j].ID))
					}
				}
			}
		}
	}
	return edges
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}

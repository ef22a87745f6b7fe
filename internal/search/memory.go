package search

import "context"

// Memory is an in-memory GraphStore backed by adjacency maps.
// It serves unit tests and the CLI's --graph mode, where a small edge
// list is loaded directly instead of opening the SQLite store.
type Memory struct {
	// Edges maps a page to the pages it links to.
	Edges map[int64][]int64
	// ReverseEdges maps a page to the pages linking to it.
	ReverseEdges map[int64][]int64
}

// NewMemory returns an empty in-memory graph.
func NewMemory() *Memory {
	return &Memory{
		Edges:        make(map[int64][]int64),
		ReverseEdges: make(map[int64][]int64),
	}
}

// AddEdge records a directed link and its reverse index entry.
func (m *Memory) AddEdge(from, to int64) {
	m.Edges[from] = append(m.Edges[from], to)
	m.ReverseEdges[to] = append(m.ReverseEdges[to], from)
}

// Neighbors returns the adjacency lists for the requested pages.
// Every requested ID gets an entry, empty when the page has no links
// in that direction.
func (m *Memory) Neighbors(ctx context.Context, dir Direction, ids []int64) (map[int64][]int64, error) {
	edges := m.Edges
	if dir == Incoming {
		edges = m.ReverseEdges
	}

	out := make(map[int64][]int64, len(ids))
	for _, id := range ids {
		out[id] = edges[id]
	}
	return out, nil
}

// DegreeSum sums the link counts of the requested pages in the given
// direction.
func (m *Memory) DegreeSum(ctx context.Context, dir Direction, ids []int64) (int64, error) {
	edges := m.Edges
	if dir == Incoming {
		edges = m.ReverseEdges
	}

	var sum int64
	for _, id := range ids {
		sum += int64(len(edges[id]))
	}
	return sum, nil
}

var _ GraphStore = (*Memory)(nil)

package search

import (
	"context"
	"fmt"
)

// searchState holds the mutable state of one bidirectional search.
// The visited maps record, for every page reached so far, the set of
// parents that reached it at its BFS depth. A page reached through
// several links at the same depth accumulates several parents; that
// multiplicity is what produces multiple shortest paths. The frontier
// maps hold the newest generation only, keyed the same way.
type searchState struct {
	visitedFwd  map[int64][]int64
	visitedBwd  map[int64][]int64
	frontierFwd map[int64][]int64
	frontierBwd map[int64][]int64
	depthFwd    int
	depthBwd    int
}

// ShortestPaths returns every shortest path from source to target as
// sequences of page IDs. An unreachable target yields an empty slice,
// not an error. Page IDs must be canonical (non-redirect) and positive;
// resolution happens before the engine is invoked.
//
// The engine alternates expansion of a forward frontier from source and
// a backward frontier from target, choosing the side with the smaller
// estimated fan-out each round. Each round issues exactly two degree
// queries and one bulk neighbor fetch against the store.
func ShortestPaths(ctx context.Context, gs GraphStore, source, target int64, opts ...Option) ([][]int64, error) {
	if source <= 0 {
		return nil, fmt.Errorf("%w: source %d", ErrInvalidPageID, source)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target %d", ErrInvalidPageID, target)
	}

	if source == target {
		return [][]int64{{source}}, nil
	}

	o := buildOptions(opts)

	st := &searchState{
		visitedFwd:  make(map[int64][]int64),
		visitedBwd:  make(map[int64][]int64),
		frontierFwd: map[int64][]int64{source: nil},
		frontierBwd: map[int64][]int64{target: nil},
	}

	for len(st.frontierFwd) > 0 && len(st.frontierBwd) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fwdCost, err := gs.DegreeSum(ctx, Outgoing, keys(st.frontierFwd))
		if err != nil {
			return nil, fmt.Errorf("estimate forward cost: %w", err)
		}
		bwdCost, err := gs.DegreeSum(ctx, Incoming, keys(st.frontierBwd))
		if err != nil {
			return nil, fmt.Errorf("estimate backward cost: %w", err)
		}

		if err := st.expand(ctx, gs, o.policy(fwdCost, bwdCost)); err != nil {
			return nil, err
		}

		if meetings := st.meetingNodes(); len(meetings) > 0 {
			return st.assemblePaths(meetings), nil
		}
	}

	// One side ran out of pages before the frontiers met: unreachable.
	return [][]int64{}, nil
}

// expand advances one side of the search by a single generation.
// The current frontier is folded into the visited map first, so a link
// back into the same or an earlier generation never re-adds a page
// (BFS depth monotonicity). A page reached from several frontier pages
// collects all of them as parents.
func (st *searchState) expand(ctx context.Context, gs GraphStore, dir Direction) error {
	visited := st.visitedFwd
	frontier := st.frontierFwd
	if dir == Incoming {
		visited = st.visitedBwd
		frontier = st.frontierBwd
	}

	ids := keys(frontier)
	for id, parents := range frontier {
		visited[id] = parents
	}

	neighbors, err := gs.Neighbors(ctx, dir, ids)
	if err != nil {
		return fmt.Errorf("expand %s frontier: %w", dir, err)
	}

	next := make(map[int64][]int64)
	for _, id := range ids {
		for _, nbr := range neighbors[id] {
			if _, seen := visited[nbr]; seen {
				continue
			}
			next[nbr] = append(next[nbr], id)
		}
	}

	if dir == Incoming {
		st.frontierBwd = next
		st.depthBwd++
	} else {
		st.frontierFwd = next
		st.depthFwd++
	}
	return nil
}

// meetingNodes returns the pages present in both current frontiers.
//
// Frontier depths advance one at a time, so the first round after which
// the frontiers intersect is the first round where depthFwd+depthBwd
// equals the true distance; every shortest path crosses this depth split
// at a page that both frontiers hold, so checking the frontiers alone
// loses no ties.
func (st *searchState) meetingNodes() []int64 {
	small, large := st.frontierFwd, st.frontierBwd
	if len(st.frontierBwd) < len(st.frontierFwd) {
		small, large = st.frontierBwd, st.frontierFwd
	}

	var meetings []int64
	for id := range small {
		if _, ok := large[id]; ok {
			meetings = append(meetings, id)
		}
	}
	return meetings
}

func keys(m map[int64][]int64) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

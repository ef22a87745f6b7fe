// Package search implements bidirectional breadth-first search over the
// page link graph, returning every shortest path between two pages.
//
// The search runs against a GraphStore, which abstracts the persisted
// adjacency lists. All mutable search state is local to one call; the
// package holds no global state and concurrent searches are independent.
package search

import (
	"context"
	"errors"
)

// Direction selects which adjacency list to follow.
type Direction int

const (
	// Outgoing follows links from a page to the pages it links to.
	Outgoing Direction = iota
	// Incoming follows links from a page to the pages that link to it.
	Incoming
)

// String returns "outgoing" or "incoming".
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// GraphStore is the adjacency contract the engine drives.
//
// Both methods must be a single bulk request regardless of how many IDs
// are passed in; the engine calls them once per frontier per round and
// relies on that bound for performance on large frontiers.
type GraphStore interface {
	// Neighbors returns the neighbor list in the given direction for every
	// requested page ID. The returned map must contain an entry for every
	// requested ID, with an empty slice when the page has no links in that
	// direction. Neighbor order carries no meaning.
	Neighbors(ctx context.Context, dir Direction, ids []int64) (map[int64][]int64, error)

	// DegreeSum returns the sum of the precomputed per-page link counts in
	// the given direction. It is used only as an expansion cost estimate
	// and must be cheap (backed by stored counters, not a live edge count).
	DegreeSum(ctx context.Context, dir Direction, ids []int64) (int64, error)
}

// ErrInvalidPageID is returned when a search is started with a
// non-positive page ID. Title resolution happens before the engine runs,
// so the engine does not attempt to repair or look up bad IDs.
var ErrInvalidPageID = errors.New("search: invalid page ID")

// ExpansionPolicy decides which side of the search to expand next.
// fwdCost and bwdCost are the degree sums of the two current frontiers.
type ExpansionPolicy func(fwdCost, bwdCost int64) Direction

// CheapestSide is the default policy: expand the side with the smaller
// estimated fan-out, expanding forward on ties.
func CheapestSide(fwdCost, bwdCost int64) Direction {
	if bwdCost < fwdCost {
		return Incoming
	}
	return Outgoing
}

// Option adjusts search behavior.
type Option func(*options)

type options struct {
	policy ExpansionPolicy
}

// WithExpansionPolicy overrides the side-selection policy. The policy
// only affects performance; any policy yields the same path set.
func WithExpansionPolicy(p ExpansionPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{policy: CheapestSide}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

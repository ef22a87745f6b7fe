package search

import (
	"sort"
	"strconv"
	"strings"
)

// assemblePaths turns the parent links accumulated during the search
// into the full set of shortest paths. For each meeting node the paths
// from source to it and from target to it are enumerated independently;
// their cross product, with the backward half reversed, yields every
// shortest path through that node. Diamond-shaped subgraphs can surface
// the same sequence more than once, so paths are deduplicated before
// being returned in deterministic order.
func (st *searchState) assemblePaths(meetings []int64) [][]int64 {
	// Fold the frontiers in so parent lookup covers the meeting nodes,
	// which sit in the newest generation on at least one side.
	for id, parents := range st.frontierFwd {
		st.visitedFwd[id] = parents
	}
	for id, parents := range st.frontierBwd {
		st.visitedBwd[id] = parents
	}

	seen := make(map[string]struct{})
	var paths [][]int64

	for _, m := range meetings {
		fromSource := pathsToRoot(m, st.visitedFwd)
		fromTarget := pathsToRoot(m, st.visitedBwd)

		for _, head := range fromSource {
			for _, tail := range fromTarget {
				path := make([]int64, 0, len(head)+len(tail)-1)
				path = append(path, head...)
				// tail runs target..m; skip m and walk it backwards.
				for i := len(tail) - 2; i >= 0; i-- {
					path = append(path, tail[i])
				}

				key := pathKey(path)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				paths = append(paths, path)
			}
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		return pathLess(paths[i], paths[j])
	})
	return paths
}

// pathsToRoot enumerates every path from the root of a visited map
// (the page with no parents) to node, following parent links. Each
// returned path runs root..node inclusive.
func pathsToRoot(node int64, visited map[int64][]int64) [][]int64 {
	parents := visited[node]
	if len(parents) == 0 {
		return [][]int64{{node}}
	}

	var out [][]int64
	for _, parent := range parents {
		for _, sub := range pathsToRoot(parent, visited) {
			path := make([]int64, 0, len(sub)+1)
			path = append(path, sub...)
			path = append(path, node)
			out = append(out, path)
		}
	}
	return out
}

func pathKey(path []int64) string {
	var b strings.Builder
	for i, id := range path {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

func pathLess(a, b []int64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

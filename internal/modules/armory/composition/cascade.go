package composition

import "sort"

// CascadeDelete returns the materials removed when root is deleted: root
// itself plus every descendant whose parents would all be removed too. A
// descendant still required by a surviving parent is kept, and so is its
// own sub-tree. The result is sorted ascending. An unknown root yields nil.
func CascadeDelete(g *Graph, root int64) []int64 {
	if _, ok := g.Material(root); !ok {
		return nil
	}
	deleted := map[int64]bool{root: true}
	pending := g.Descendants(root)

	for changed := true; changed; {
		changed = false
		rest := pending[:0]
		for _, id := range pending {
			if deleted[id] {
				continue
			}
			if allIn(g.Parents(id), deleted) {
				deleted[id] = true
				changed = true
				continue
			}
			rest = append(rest, id)
		}
		pending = rest
	}

	out := make([]int64, 0, len(deleted))
	for id := range deleted {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func allIn(ids []int64, set map[int64]bool) bool {
	for _, id := range ids {
		if !set[id] {
			return false
		}
	}
	return true
}

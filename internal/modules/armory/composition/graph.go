// Package composition holds the material composition graph and the two
// computations derived from it: recursive power aggregation and the maximum
// number of units that can be built from inventory plus recursive crafting.
//
// Everything here works on an immutable snapshot handed in by the caller.
// A Graph can be shared between goroutines; every top-level computation
// allocates its own memo and in-progress set.
package composition

import "sort"

// Material is the part of a material row the algorithms need.
type Material struct {
	ID         int64
	PowerLevel *int64
	Qty        int64
}

// Edge declares that one unit of ParentID requires Qty units of MaterialID.
type Edge struct {
	ParentID   int64
	MaterialID int64
	Qty        int64
}

// Child is a direct child edge as seen from its parent.
type Child struct {
	MaterialID int64
	Qty        int64
}

type Graph struct {
	materials map[int64]Material
	children  map[int64][]Child
	parents   map[int64][]int64
	skipped   int
}

// NewGraph indexes the snapshot. Edges that reference a material missing
// from materials are dropped and counted in Skipped.
func NewGraph(materials []Material, edges []Edge) *Graph {
	g := &Graph{
		materials: make(map[int64]Material, len(materials)),
		children:  make(map[int64][]Child),
		parents:   make(map[int64][]int64),
	}
	for _, m := range materials {
		g.materials[m.ID] = m
	}
	for _, e := range edges {
		if _, ok := g.materials[e.ParentID]; !ok {
			g.skipped++
			continue
		}
		if _, ok := g.materials[e.MaterialID]; !ok {
			g.skipped++
			continue
		}
		g.children[e.ParentID] = append(g.children[e.ParentID], Child{MaterialID: e.MaterialID, Qty: e.Qty})
		g.parents[e.MaterialID] = append(g.parents[e.MaterialID], e.ParentID)
	}
	return g
}

func (g *Graph) Material(id int64) (Material, bool) {
	m, ok := g.materials[id]
	return m, ok
}

func (g *Graph) Len() int { return len(g.materials) }

// Skipped reports how many edges were dropped for dangling references.
func (g *Graph) Skipped() int { return g.skipped }

// Children returns the direct child edges of id in input order.
func (g *Graph) Children(id int64) []Child {
	kids := g.children[id]
	out := make([]Child, len(kids))
	copy(out, kids)
	return out
}

// Parents returns the direct parents of id, deduplicated and sorted.
func (g *Graph) Parents(id int64) []int64 {
	return sortedUnique(g.parents[id])
}

// Descendants returns every material reachable from id through child edges,
// excluding id itself unless a cycle leads back to it.
func (g *Graph) Descendants(id int64) []int64 {
	return g.walk(id, func(n int64) []int64 {
		kids := g.children[n]
		out := make([]int64, 0, len(kids))
		for _, k := range kids {
			out = append(out, k.MaterialID)
		}
		return out
	})
}

// Ancestors returns every material that (transitively) requires id.
func (g *Graph) Ancestors(id int64) []int64 {
	return g.walk(id, func(n int64) []int64 { return g.parents[n] })
}

// Reachable reports whether to can be reached from from by following child
// edges. A node is reachable from itself.
func (g *Graph) Reachable(from, to int64) bool {
	if from == to {
		return true
	}
	for _, id := range g.Descendants(from) {
		if id == to {
			return true
		}
	}
	return false
}

// DetectCycle returns a cycle error for the first cycle found, or nil.
// Roots are visited in ascending id order so the result is deterministic.
func (g *Graph) DetectCycle() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[int64]int, len(g.materials))
	var path []int64

	var visit func(id int64) error
	visit = func(id int64) error {
		state[id] = inProgress
		path = append(path, id)
		for _, c := range g.children[id] {
			switch state[c.MaterialID] {
			case inProgress:
				return cycleError(c.MaterialID, append(path, c.MaterialID))
			case unvisited:
				if err := visit(c.MaterialID); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.ids() {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) ids() []int64 {
	ids := make([]int64, 0, len(g.materials))
	for id := range g.materials {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *Graph) walk(start int64, next func(int64) []int64) []int64 {
	seen := map[int64]bool{}
	stack := append([]int64(nil), next(start)...)
	var out []int64
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		stack = append(stack, next(n)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedUnique(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

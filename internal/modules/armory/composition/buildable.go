package composition

import "math"

// Requirement is one material a weapon consumes per unit built.
type Requirement struct {
	MaterialID int64
	Qty        int64
}

// MaxBuildable returns how many units of root are available: units on hand
// plus units that can be crafted from its sub-tree, where every child's own
// availability is computed by the same rule.
func MaxBuildable(g *Graph, root int64) (int64, error) {
	r := newResolver(g)
	return r.available(root)
}

// WeaponMaxBuildable returns how many weapons can be built. Each requirement
// allows floor(available/qty) weapons and the scarcest one wins.
func WeaponMaxBuildable(g *Graph, reqs []Requirement) (int64, error) {
	if len(reqs) == 0 {
		return 0, validationError(0, "weapon has no material requirements")
	}
	for _, req := range reqs {
		if req.Qty <= 0 {
			return 0, validationError(req.MaterialID, "invalid material cost %d", req.Qty)
		}
	}
	r := newResolver(g)
	best := int64(math.MaxInt64)
	for _, req := range reqs {
		avail, err := r.available(req.MaterialID)
		if err != nil {
			return 0, err
		}
		if n := avail / req.Qty; n < best {
			best = n
		}
	}
	return best, nil
}

type resolver struct {
	g          *Graph
	memo       map[int64]int64
	inProgress map[int64]bool
	path       []int64
}

func newResolver(g *Graph) *resolver {
	return &resolver{g: g, memo: map[int64]int64{}, inProgress: map[int64]bool{}}
}

// available(n) = n.qty + craftable(n)
func (r *resolver) available(id int64) (int64, error) {
	if v, ok := r.memo[id]; ok {
		return v, nil
	}
	m, ok := r.g.Material(id)
	if !ok {
		return 0, notFoundError(id)
	}
	if m.Qty < 0 {
		return 0, validationError(id, "negative inventory %d", m.Qty)
	}
	if r.inProgress[id] {
		return 0, cycleError(id, append(r.path, id))
	}
	r.inProgress[id] = true
	r.path = append(r.path, id)

	craftable, err := r.craftable(id)
	if err != nil {
		return 0, err
	}
	if craftable > math.MaxInt64-m.Qty {
		return 0, validationError(id, "available quantity overflows int64")
	}

	r.path = r.path[:len(r.path)-1]
	delete(r.inProgress, id)
	total := m.Qty + craftable
	r.memo[id] = total
	return total, nil
}

// craftable(n) = min over children of floor(available(c)/need). Both
// operands are non-negative integers, so the min of the integer quotients
// equals the floor of the min of the exact ratios.
func (r *resolver) craftable(id int64) (int64, error) {
	kids := r.g.children[id]
	if len(kids) == 0 {
		return 0, nil
	}
	for _, c := range kids {
		if c.Qty <= 0 {
			return 0, validationError(id, "invalid required quantity %d for material %d", c.Qty, c.MaterialID)
		}
	}
	best := int64(math.MaxInt64)
	for _, c := range kids {
		avail, err := r.available(c.MaterialID)
		if err != nil {
			return 0, err
		}
		if n := avail / c.Qty; n < best {
			best = n
		}
	}
	return best, nil
}

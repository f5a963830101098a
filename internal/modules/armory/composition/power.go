package composition

import "math"

// Power returns the total power of a material: its own power level (0 when
// unset) plus, for every direct child, the child's total power times the
// required quantity.
func Power(g *Graph, id int64) (int64, error) {
	p := newPowerFold(g)
	return p.power(id)
}

// WeaponPower sums Power over the materials a weapon is built from.
func WeaponPower(g *Graph, materialIDs []int64) (int64, error) {
	p := newPowerFold(g)
	var total int64
	for _, id := range materialIDs {
		v, err := p.power(id)
		if err != nil {
			return 0, err
		}
		if total, err = addChecked(id, total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// powerFold shares its memo across several roots of one top-level call.
type powerFold struct {
	g          *Graph
	memo       map[int64]int64
	inProgress map[int64]bool
	path       []int64
}

func newPowerFold(g *Graph) *powerFold {
	return &powerFold{g: g, memo: map[int64]int64{}, inProgress: map[int64]bool{}}
}

func (p *powerFold) power(id int64) (int64, error) {
	if v, ok := p.memo[id]; ok {
		return v, nil
	}
	m, ok := p.g.Material(id)
	if !ok {
		return 0, notFoundError(id)
	}
	if p.inProgress[id] {
		return 0, cycleError(id, append(p.path, id))
	}
	p.inProgress[id] = true
	p.path = append(p.path, id)

	var total int64
	if m.PowerLevel != nil {
		total = *m.PowerLevel
	}
	for _, c := range p.g.children[id] {
		sub, err := p.power(c.MaterialID)
		if err != nil {
			return 0, err
		}
		contrib, err := mulChecked(id, sub, c.Qty)
		if err != nil {
			return 0, err
		}
		if total, err = addChecked(id, total, contrib); err != nil {
			return 0, err
		}
	}

	p.path = p.path[:len(p.path)-1]
	delete(p.inProgress, id)
	p.memo[id] = total
	return total, nil
}

func addChecked(id, a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, validationError(id, "power overflows int64")
	}
	return a + b, nil
}

func mulChecked(id, a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, validationError(id, "power overflows int64")
	}
	return r, nil
}

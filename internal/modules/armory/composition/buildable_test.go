package composition

import (
	"errors"
	"testing"
)

func scenarioB() *Graph {
	return NewGraph(
		[]Material{
			{ID: 2, Qty: 10},
			{ID: 3, Qty: 30},
			{ID: 4, Qty: 8},
		},
		[]Edge{
			{ParentID: 2, MaterialID: 3, Qty: 5},
			{ParentID: 2, MaterialID: 4, Qty: 2},
		},
	)
}

func TestMaxBuildableScenarioB(t *testing.T) {
	got, err := MaxBuildable(scenarioB(), 2)
	if err != nil {
		t.Fatalf("MaxBuildable: %v", err)
	}
	if got != 14 {
		t.Fatalf("MaxBuildable(2): want=14 got=%d", got)
	}
}

func TestWeaponMaxBuildableScenarioC(t *testing.T) {
	got, err := WeaponMaxBuildable(scenarioB(), []Requirement{{MaterialID: 2, Qty: 2}})
	if err != nil {
		t.Fatalf("WeaponMaxBuildable: %v", err)
	}
	if got != 7 {
		t.Fatalf("WeaponMaxBuildable: want=7 got=%d", got)
	}
}

func TestMaxBuildableLeafEqualsQty(t *testing.T) {
	g := originalSeedGraph()
	for _, id := range []int64{4, 5, 11, 12} {
		m, _ := g.Material(id)
		got, err := MaxBuildable(g, id)
		if err != nil {
			t.Fatalf("MaxBuildable(%d): %v", id, err)
		}
		if got != m.Qty {
			t.Fatalf("MaxBuildable(%d): want=%d got=%d", id, m.Qty, got)
		}
	}
}

func TestMaxBuildableMultiLevel(t *testing.T) {
	g := originalSeedGraph()
	// 3: 5 + min(100/5, 5/1) = 10
	// 2: 4 + min(10/5, 10/5) = 6
	// 1: 1 + 6/2 = 4
	// 10: 10 + 100/10 = 20 ; 9: 5 + 20/5 = 9
	for id, want := range map[int64]int64{3: 10, 2: 6, 1: 4, 10: 20, 9: 9} {
		got, err := MaxBuildable(g, id)
		if err != nil {
			t.Fatalf("MaxBuildable(%d): %v", id, err)
		}
		if got != want {
			t.Fatalf("MaxBuildable(%d): want=%d got=%d", id, want, got)
		}
	}
}

func TestMaxBuildableFloorsAtEveryLevel(t *testing.T) {
	// 3 units of leaf, need 2 per mid -> 1 mid (not 1.5); root needs 1 mid.
	g := NewGraph(
		[]Material{{ID: 1}, {ID: 2}, {ID: 3, Qty: 3}},
		[]Edge{{ParentID: 1, MaterialID: 2, Qty: 1}, {ParentID: 2, MaterialID: 3, Qty: 2}},
	)
	got, err := MaxBuildable(g, 1)
	if err != nil {
		t.Fatalf("MaxBuildable: %v", err)
	}
	if got != 1 {
		t.Fatalf("MaxBuildable: want=1 got=%d", got)
	}
}

func TestMaxBuildableDiamondSharedDescendant(t *testing.T) {
	g := diamond()
	// available(4)=12, available(2)=12/2=6, available(3)=12/3=4, available(1)=min(6,4)=4
	got, err := MaxBuildable(g, 1)
	if err != nil {
		t.Fatalf("MaxBuildable: %v", err)
	}
	if got != 4 {
		t.Fatalf("MaxBuildable(diamond): want=4 got=%d", got)
	}
	// independent computations in the same process see the same inventory
	for i := 0; i < 3; i++ {
		if again, _ := MaxBuildable(g, 2); again != 6 {
			t.Fatalf("MaxBuildable(2) run %d: want=6 got=%d", i, again)
		}
	}
}

func TestMaxBuildableCycleFailsFast(t *testing.T) {
	g := NewGraph(
		[]Material{{ID: 1, Qty: 1}, {ID: 2, Qty: 1}, {ID: 3, Qty: 1}},
		[]Edge{
			{ParentID: 1, MaterialID: 2, Qty: 1},
			{ParentID: 2, MaterialID: 3, Qty: 1},
			{ParentID: 3, MaterialID: 1, Qty: 1},
		},
	)
	_, err := MaxBuildable(g, 1)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("MaxBuildable(cycle): want ErrCycle got %v", err)
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.MaterialID != 1 || len(ce.Path) != 4 {
		t.Fatalf("cycle error detail: %+v", ce)
	}
}

func TestMaxBuildableRejectsNonPositiveNeed(t *testing.T) {
	for _, need := range []int64{0, -3} {
		g := NewGraph(
			[]Material{{ID: 1, Qty: 5}, {ID: 2, Qty: 10}, {ID: 3, Qty: 10}},
			[]Edge{{ParentID: 1, MaterialID: 2, Qty: 1}, {ParentID: 1, MaterialID: 3, Qty: need}},
		)
		if _, err := MaxBuildable(g, 1); !errors.Is(err, ErrValidation) {
			t.Fatalf("MaxBuildable(need=%d): want ErrValidation got %v", need, err)
		}
	}
}

func TestMaxBuildableRejectsNegativeInventory(t *testing.T) {
	g := NewGraph([]Material{{ID: 1, Qty: -1}}, nil)
	if _, err := MaxBuildable(g, 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("MaxBuildable(negative qty): want ErrValidation got %v", err)
	}
}

func TestMaxBuildableUnknownRoot(t *testing.T) {
	if _, err := MaxBuildable(scenarioB(), 77); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MaxBuildable(unknown): want ErrNotFound got %v", err)
	}
}

func TestMaxBuildableIgnoresDanglingChild(t *testing.T) {
	g := NewGraph(
		[]Material{{ID: 1, Qty: 2}, {ID: 2, Qty: 9}},
		[]Edge{{ParentID: 1, MaterialID: 2, Qty: 3}, {ParentID: 1, MaterialID: 404, Qty: 1}},
	)
	got, err := MaxBuildable(g, 1)
	if err != nil {
		t.Fatalf("MaxBuildable: %v", err)
	}
	if got != 5 {
		t.Fatalf("MaxBuildable: want=5 got=%d", got)
	}
}

func TestWeaponMaxBuildableScarcestRequirementWins(t *testing.T) {
	g := originalSeedGraph()
	// available(1)=4 -> 4/1=4 ; available(9)=9 -> 9/2=4 ; available(5)=100 -> 100/30=3
	got, err := WeaponMaxBuildable(g, []Requirement{
		{MaterialID: 1, Qty: 1},
		{MaterialID: 9, Qty: 2},
		{MaterialID: 5, Qty: 30},
	})
	if err != nil {
		t.Fatalf("WeaponMaxBuildable: %v", err)
	}
	if got != 3 {
		t.Fatalf("WeaponMaxBuildable: want=3 got=%d", got)
	}
}

func TestWeaponMaxBuildableValidation(t *testing.T) {
	g := scenarioB()
	cases := map[string][]Requirement{
		"no requirements": nil,
		"zero cost":       {{MaterialID: 2, Qty: 0}},
		"negative cost":   {{MaterialID: 2, Qty: -1}},
	}
	for name, reqs := range cases {
		if _, err := WeaponMaxBuildable(g, reqs); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: want ErrValidation got %v", name, err)
		}
	}
}

func TestMaxBuildableNeverNegative(t *testing.T) {
	g := NewGraph(
		[]Material{{ID: 1}, {ID: 2}, {ID: 3}},
		[]Edge{{ParentID: 1, MaterialID: 2, Qty: 4}, {ParentID: 2, MaterialID: 3, Qty: 9}},
	)
	got, err := MaxBuildable(g, 1)
	if err != nil {
		t.Fatalf("MaxBuildable: %v", err)
	}
	if got != 0 {
		t.Fatalf("MaxBuildable(empty inventory): want=0 got=%d", got)
	}
}

package composition

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func scenarioA() ([]Material, []Edge) {
	return []Material{
			{ID: 1, PowerLevel: ptr(100)},
			{ID: 2, PowerLevel: ptr(50)},
			{ID: 3, PowerLevel: ptr(20)},
		}, []Edge{
			{ParentID: 1, MaterialID: 2, Qty: 2},
			{ParentID: 2, MaterialID: 3, Qty: 5},
		}
}

func TestPowerScenarioA(t *testing.T) {
	g := NewGraph(scenarioA())
	for id, want := range map[int64]int64{3: 20, 2: 150, 1: 400} {
		got, err := Power(g, id)
		if err != nil {
			t.Fatalf("Power(%d): %v", id, err)
		}
		if got != want {
			t.Fatalf("Power(%d): want=%d got=%d", id, want, got)
		}
	}
}

func TestPowerLeafAndNilPowerLevel(t *testing.T) {
	g := NewGraph([]Material{{ID: 1}, {ID: 2, PowerLevel: ptr(30)}}, nil)
	if got, err := Power(g, 1); err != nil || got != 0 {
		t.Fatalf("Power(nil level): want=0 got=%d err=%v", got, err)
	}
	if got, err := Power(g, 2); err != nil || got != 30 {
		t.Fatalf("Power(leaf): want=30 got=%d err=%v", got, err)
	}
}

func TestPowerNegativeLevelsAccepted(t *testing.T) {
	g := NewGraph(
		[]Material{{ID: 1, PowerLevel: ptr(10)}, {ID: 2, PowerLevel: ptr(-5)}},
		[]Edge{{ParentID: 1, MaterialID: 2, Qty: 2}},
	)
	if got, err := Power(g, 1); err != nil || got != 0 {
		t.Fatalf("Power: want=0 got=%d err=%v", got, err)
	}
}

func TestPowerDiamond(t *testing.T) {
	g := diamond()
	// p4=5, p2=1+5*2=11, p3=1+5*3=16, p1=11+16=27
	got, err := Power(g, 1)
	if err != nil {
		t.Fatalf("Power: %v", err)
	}
	if got != 27 {
		t.Fatalf("Power(diamond root): want=27 got=%d", got)
	}
}

func TestPowerMatchesRecursiveDefinition(t *testing.T) {
	g := originalSeedGraph()
	for _, id := range []int64{1, 2, 3, 9, 10} {
		m, _ := g.Material(id)
		want := int64(0)
		if m.PowerLevel != nil {
			want = *m.PowerLevel
		}
		for _, c := range g.Children(id) {
			sub, err := Power(g, c.MaterialID)
			if err != nil {
				t.Fatalf("Power(%d): %v", c.MaterialID, err)
			}
			want += sub * c.Qty
		}
		got, err := Power(g, id)
		if err != nil {
			t.Fatalf("Power(%d): %v", id, err)
		}
		if got != want {
			t.Fatalf("Power(%d): want=%d got=%d", id, want, got)
		}
	}
}

func TestPowerInvariantToEdgeOrder(t *testing.T) {
	materials, edges := originalSeed()
	base, err := Power(NewGraph(materials, edges), 1)
	if err != nil {
		t.Fatalf("Power: %v", err)
	}
	for shift := 1; shift < len(edges); shift++ {
		rotated := append(append([]Edge{}, edges[shift:]...), edges[:shift]...)
		got, err := Power(NewGraph(materials, rotated), 1)
		if err != nil {
			t.Fatalf("Power(rotation %d): %v", shift, err)
		}
		if got != base {
			t.Fatalf("Power(rotation %d): want=%d got=%d", shift, base, got)
		}
	}
	reversed := make([]Edge, len(edges))
	for i, e := range edges {
		reversed[len(edges)-1-i] = e
	}
	if got, _ := Power(NewGraph(materials, reversed), 1); got != base {
		t.Fatalf("Power(reversed): want=%d got=%d", base, got)
	}
}

func TestPowerUnknownRoot(t *testing.T) {
	g := NewGraph(scenarioA())
	if _, err := Power(g, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Power(unknown): want ErrNotFound got %v", err)
	}
}

func TestPowerCycle(t *testing.T) {
	g := NewGraph(
		[]Material{{ID: 1, PowerLevel: ptr(1)}, {ID: 2, PowerLevel: ptr(1)}},
		[]Edge{{ParentID: 1, MaterialID: 2, Qty: 1}, {ParentID: 2, MaterialID: 1, Qty: 1}},
	)
	_, err := Power(g, 1)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("Power(cycle): want ErrCycle got %v", err)
	}
}

func TestPowerOverflow(t *testing.T) {
	g := NewGraph(
		[]Material{{ID: 1}, {ID: 2, PowerLevel: ptr(math.MaxInt64 / 2)}},
		[]Edge{{ParentID: 1, MaterialID: 2, Qty: 3}},
	)
	if _, err := Power(g, 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("Power(overflow): want ErrValidation got %v", err)
	}
}

func TestWeaponPowerSumsMaterials(t *testing.T) {
	g := originalSeedGraph()
	p1, _ := Power(g, 1)
	p9, _ := Power(g, 9)
	got, err := WeaponPower(g, []int64{1, 9})
	if err != nil {
		t.Fatalf("WeaponPower: %v", err)
	}
	if got != p1+p9 {
		t.Fatalf("WeaponPower: want=%d got=%d", p1+p9, got)
	}
	if got, err := WeaponPower(g, nil); err != nil || got != 0 {
		t.Fatalf("WeaponPower(empty): want=0 got=%d err=%v", got, err)
	}
}

func TestPowerConcurrentReaders(t *testing.T) {
	g := originalSeedGraph()
	want, err := Power(g, 1)
	if err != nil {
		t.Fatalf("Power: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Power(g, 1)
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- errors.New("power mismatch under concurrency")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Power: %v", err)
	}
}

// diamond: 1 needs 2 and 3, both need 4.
func diamond() *Graph {
	return NewGraph(
		[]Material{
			{ID: 1, Qty: 0},
			{ID: 2, PowerLevel: ptr(1), Qty: 0},
			{ID: 3, PowerLevel: ptr(1), Qty: 0},
			{ID: 4, PowerLevel: ptr(5), Qty: 12},
		},
		[]Edge{
			{ParentID: 1, MaterialID: 2, Qty: 1},
			{ParentID: 1, MaterialID: 3, Qty: 1},
			{ParentID: 2, MaterialID: 4, Qty: 2},
			{ParentID: 3, MaterialID: 4, Qty: 3},
		},
	)
}

// originalSeed mirrors the two branches of the default seed data set.
func originalSeed() ([]Material, []Edge) {
	return []Material{
			{ID: 1, PowerLevel: ptr(300), Qty: 1},
			{ID: 2, PowerLevel: ptr(45), Qty: 4},
			{ID: 3, PowerLevel: ptr(30), Qty: 5},
			{ID: 4, PowerLevel: ptr(25), Qty: 10},
			{ID: 5, PowerLevel: ptr(15), Qty: 100},
			{ID: 9, PowerLevel: ptr(95), Qty: 5},
			{ID: 10, PowerLevel: ptr(40), Qty: 10},
			{ID: 11, PowerLevel: ptr(35), Qty: 100},
			{ID: 12, PowerLevel: ptr(10), Qty: 5},
		}, []Edge{
			{ParentID: 1, MaterialID: 2, Qty: 2},
			{ParentID: 2, MaterialID: 3, Qty: 5},
			{ParentID: 2, MaterialID: 4, Qty: 5},
			{ParentID: 3, MaterialID: 5, Qty: 5},
			{ParentID: 3, MaterialID: 12, Qty: 1},
			{ParentID: 9, MaterialID: 10, Qty: 5},
			{ParentID: 10, MaterialID: 11, Qty: 10},
		}
}

func originalSeedGraph() *Graph { return NewGraph(originalSeed()) }

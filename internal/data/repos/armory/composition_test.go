package armory

import (
	"context"
	"testing"

	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/data/repos/testutil"
	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
)

func TestCompositionRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCompositionRepo(gdb, testutil.Logger(t))

	a := testutil.SeedMaterial(t, ctx, tx, "A", nil, 0)
	b := testutil.SeedMaterial(t, ctx, tx, "B", nil, 0)
	c := testutil.SeedMaterial(t, ctx, tx, "C", nil, 0)

	if _, err := repo.Create(dbc, &types.Composition{ParentID: a.ID, MaterialID: b.ID, Qty: 2}); err != nil {
		t.Fatalf("Create a->b: %v", err)
	}
	if _, err := repo.Create(dbc, &types.Composition{ParentID: a.ID, MaterialID: c.ID, Qty: 3}); err != nil {
		t.Fatalf("Create a->c: %v", err)
	}
	if _, err := repo.Create(dbc, &types.Composition{ParentID: b.ID, MaterialID: c.ID, Qty: 4}); err != nil {
		t.Fatalf("Create b->c: %v", err)
	}

	got, err := repo.Get(dbc, a.ID, b.ID)
	if err != nil || got == nil || got.Qty != 2 {
		t.Fatalf("Get: err=%v got=%v", err, got)
	}
	if missing, err := repo.Get(dbc, c.ID, a.ID); err != nil || missing != nil {
		t.Fatalf("Get(missing): err=%v got=%v", err, missing)
	}

	children, err := repo.ListByParentIDs(dbc, []int64{a.ID})
	if err != nil || len(children) != 2 {
		t.Fatalf("ListByParentIDs: err=%v len=%d", err, len(children))
	}
	parents, err := repo.ListByMaterialIDs(dbc, []int64{c.ID})
	if err != nil || len(parents) != 2 {
		t.Fatalf("ListByMaterialIDs: err=%v len=%d", err, len(parents))
	}

	ok, err := repo.UpdateQty(dbc, a.ID, b.ID, 7)
	if err != nil || !ok {
		t.Fatalf("UpdateQty: err=%v ok=%v", err, ok)
	}
	if got, _ := repo.Get(dbc, a.ID, b.ID); got == nil || got.Qty != 7 {
		t.Fatalf("after UpdateQty: got %v", got)
	}
	if ok, err := repo.UpdateQty(dbc, c.ID, a.ID, 1); err != nil || ok {
		t.Fatalf("UpdateQty(missing): err=%v ok=%v", err, ok)
	}

	ok, err = repo.Delete(dbc, b.ID, c.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: err=%v ok=%v", err, ok)
	}
	if ok, err := repo.Delete(dbc, b.ID, c.ID); err != nil || ok {
		t.Fatalf("Delete(again): err=%v ok=%v", err, ok)
	}

	all, err := repo.ListAll(dbc)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAll: err=%v len=%d", err, len(all))
	}
}

func TestCompositionRepoDuplicateIsConflict(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCompositionRepo(gdb, testutil.Logger(t))

	a := testutil.SeedMaterial(t, ctx, tx, "A", nil, 0)
	b := testutil.SeedMaterial(t, ctx, tx, "B", nil, 0)
	if _, err := repo.Create(dbc, &types.Composition{ParentID: a.ID, MaterialID: b.ID, Qty: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(dbc, &types.Composition{ParentID: a.ID, MaterialID: b.ID, Qty: 5})
	if err == nil {
		t.Fatalf("Create(duplicate): want error")
	}
	if !db.IsConflict(err) {
		t.Fatalf("Create(duplicate): want conflict got %v (%s)", err, db.Classify(err))
	}
}

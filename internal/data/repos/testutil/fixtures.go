package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/armory-backend/internal/domain"
)

func SeedMaterial(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, power *int64, qty int64) *types.Material {
	tb.Helper()
	m := &types.Material{Name: name, PowerLevel: power, Qty: qty}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed material: %v", err)
	}
	return m
}

func SeedComposition(tb testing.TB, ctx context.Context, tx *gorm.DB, parentID, materialID, qty int64) *types.Composition {
	tb.Helper()
	c := &types.Composition{ParentID: parentID, MaterialID: materialID, Qty: qty}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed composition: %v", err)
	}
	return c
}

func SeedWeapon(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, materialID int64, materialQty *int64) *types.Weapon {
	tb.Helper()
	w := &types.Weapon{
		Name:        name,
		MaterialID:  &materialID,
		MaterialQty: materialQty,
		Status:      types.WeaponStatusActive,
	}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed weapon: %v", err)
	}
	return w
}

func PtrInt64(v int64) *int64 { return &v }

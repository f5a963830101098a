package db

import (
	"fmt"

	types "github.com/yungbote/armory-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Material{},
		&types.Composition{},
		&types.Weapon{},
		&types.WeaponMaterial{},
	)
}

// EnsureArmoryIndexes adds the constraints AutoMigrate cannot express.
func EnsureArmoryIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"chk_materials_qty_nonneg", `ALTER TABLE materials DROP CONSTRAINT IF EXISTS chk_materials_qty_nonneg;`},
		{"chk_materials_qty_nonneg", `ALTER TABLE materials ADD CONSTRAINT chk_materials_qty_nonneg CHECK (qty >= 0);`},
		{"chk_compositions_qty_pos", `ALTER TABLE compositions DROP CONSTRAINT IF EXISTS chk_compositions_qty_pos;`},
		{"chk_compositions_qty_pos", `ALTER TABLE compositions ADD CONSTRAINT chk_compositions_qty_pos CHECK (qty > 0);`},
		{"chk_compositions_no_self", `ALTER TABLE compositions DROP CONSTRAINT IF EXISTS chk_compositions_no_self;`},
		{"chk_compositions_no_self", `ALTER TABLE compositions ADD CONSTRAINT chk_compositions_no_self CHECK (parent_id <> material_id);`},
		{"idx_materials_name_active", `
			CREATE INDEX IF NOT EXISTS idx_materials_name_active
			ON materials(name)
			WHERE deleted_at IS NULL;
		`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

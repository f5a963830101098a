package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
)

//go:embed default.yaml
var defaultYAML []byte

type Material struct {
	ID         int64  `yaml:"id"`
	Name       string `yaml:"name"`
	PowerLevel *int64 `yaml:"power_level"`
	BasePower  *int64 `yaml:"base_power"`
	Qty        int64  `yaml:"qty"`
}

type Composition struct {
	ParentID   int64 `yaml:"parent_id"`
	MaterialID int64 `yaml:"material_id"`
	Qty        int64 `yaml:"qty"`
}

type WeaponMaterial struct {
	MaterialID int64 `yaml:"material_id"`
	Qty        int64 `yaml:"qty"`
}

type Weapon struct {
	ID          int64            `yaml:"id"`
	Name        string           `yaml:"name"`
	MaterialID  *int64           `yaml:"material_id"`
	MaterialQty *int64           `yaml:"material_qty"`
	Status      string           `yaml:"status"`
	Materials   []WeaponMaterial `yaml:"materials"`
}

// File is the on-disk seed format.
type File struct {
	Materials    []Material    `yaml:"materials"`
	Compositions []Composition `yaml:"compositions"`
	Weapons      []Weapon      `yaml:"weapons"`
}

// Default returns the bundled data set.
func Default() (*File, error) {
	return Parse(defaultYAML)
}

// Load reads a seed file, or the bundled data set when path is empty.
func Load(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(raw []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks ids, quantities, references and that the composition graph
// is acyclic.
func (f *File) Validate() error {
	var errs []error
	ids := make(map[int64]bool, len(f.Materials))
	nodes := make([]composition.Material, 0, len(f.Materials))
	for _, m := range f.Materials {
		switch {
		case m.ID <= 0:
			errs = append(errs, fmt.Errorf("material %q: id must be positive", m.Name))
		case ids[m.ID]:
			errs = append(errs, fmt.Errorf("material %d: duplicate id", m.ID))
		}
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("material %d: name is required", m.ID))
		}
		if m.Qty < 0 {
			errs = append(errs, fmt.Errorf("material %d: qty cannot be negative", m.ID))
		}
		ids[m.ID] = true
		nodes = append(nodes, composition.Material{ID: m.ID, PowerLevel: m.PowerLevel, Qty: m.Qty})
	}

	edges := make([]composition.Edge, 0, len(f.Compositions))
	seen := map[[2]int64]bool{}
	for _, c := range f.Compositions {
		key := [2]int64{c.ParentID, c.MaterialID}
		switch {
		case !ids[c.ParentID] || !ids[c.MaterialID]:
			errs = append(errs, fmt.Errorf("composition %d->%d: unknown material", c.ParentID, c.MaterialID))
		case c.ParentID == c.MaterialID:
			errs = append(errs, fmt.Errorf("composition %d->%d: self reference", c.ParentID, c.MaterialID))
		case c.Qty <= 0:
			errs = append(errs, fmt.Errorf("composition %d->%d: qty must be positive", c.ParentID, c.MaterialID))
		case seen[key]:
			errs = append(errs, fmt.Errorf("composition %d->%d: duplicate", c.ParentID, c.MaterialID))
		}
		seen[key] = true
		edges = append(edges, composition.Edge{ParentID: c.ParentID, MaterialID: c.MaterialID, Qty: c.Qty})
	}
	if len(errs) == 0 {
		if err := composition.NewGraph(nodes, edges).DetectCycle(); err != nil {
			errs = append(errs, err)
		}
	}

	weaponIDs := map[int64]bool{}
	for _, w := range f.Weapons {
		if w.ID <= 0 || weaponIDs[w.ID] {
			errs = append(errs, fmt.Errorf("weapon %q: id must be positive and unique", w.Name))
		}
		weaponIDs[w.ID] = true
		if strings.TrimSpace(w.Name) == "" {
			errs = append(errs, fmt.Errorf("weapon %d: name is required", w.ID))
		}
		if w.Status != "" && w.Status != types.WeaponStatusActive && w.Status != types.WeaponStatusBroken {
			errs = append(errs, fmt.Errorf("weapon %d: unknown status %q", w.ID, w.Status))
		}
		if w.MaterialID != nil && !ids[*w.MaterialID] {
			errs = append(errs, fmt.Errorf("weapon %d: unknown material %d", w.ID, *w.MaterialID))
		}
		for _, wm := range w.Materials {
			if !ids[wm.MaterialID] {
				errs = append(errs, fmt.Errorf("weapon %d: unknown material %d", w.ID, wm.MaterialID))
			}
			if wm.Qty <= 0 {
				errs = append(errs, fmt.Errorf("weapon %d: material %d qty must be positive", w.ID, wm.MaterialID))
			}
		}
	}
	return errors.Join(errs...)
}

// Summary counts what Apply inserted.
type Summary struct {
	Materials    int64
	Compositions int64
	Weapons      int64
}

// Apply inserts the seed inside the caller's transaction. Rows whose key
// already exists are left untouched, so seeding twice is a no-op.
func Apply(dbc dbctx.Context, f *File) (Summary, error) {
	var sum Summary
	if dbc.Tx == nil {
		return sum, errors.New("seed: transaction required")
	}
	tx := dbc.Tx.WithContext(dbc.Ctx)
	skip := clause.OnConflict{DoNothing: true}

	if len(f.Materials) > 0 {
		rows := make([]*types.Material, 0, len(f.Materials))
		for _, m := range f.Materials {
			rows = append(rows, &types.Material{ID: m.ID, Name: m.Name, PowerLevel: m.PowerLevel, BasePower: m.BasePower, Qty: m.Qty})
		}
		res := tx.Clauses(skip).Create(&rows)
		if res.Error != nil {
			return sum, fmt.Errorf("seed materials: %w", res.Error)
		}
		sum.Materials = res.RowsAffected
	}

	if len(f.Compositions) > 0 {
		rows := make([]*types.Composition, 0, len(f.Compositions))
		for _, c := range f.Compositions {
			rows = append(rows, &types.Composition{ParentID: c.ParentID, MaterialID: c.MaterialID, Qty: c.Qty})
		}
		res := tx.Clauses(skip).Create(&rows)
		if res.Error != nil {
			return sum, fmt.Errorf("seed compositions: %w", res.Error)
		}
		sum.Compositions = res.RowsAffected
	}

	for _, w := range f.Weapons {
		status := w.Status
		if status == "" {
			status = types.WeaponStatusActive
		}
		row := &types.Weapon{ID: w.ID, Name: w.Name, MaterialID: w.MaterialID, MaterialQty: w.MaterialQty, Status: status}
		res := tx.Omit(clause.Associations).Clauses(skip).Create(row)
		if res.Error != nil {
			return sum, fmt.Errorf("seed weapon %d: %w", w.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		sum.Weapons++
		for _, wm := range w.Materials {
			link := &types.WeaponMaterial{WeaponID: w.ID, MaterialID: wm.MaterialID, Qty: wm.Qty}
			if err := tx.Clauses(skip).Create(link).Error; err != nil {
				return sum, fmt.Errorf("seed weapon %d material %d: %w", w.ID, wm.MaterialID, err)
			}
		}
	}

	if err := syncSequences(tx); err != nil {
		return sum, err
	}
	return sum, nil
}

// syncSequences moves Postgres id sequences past explicitly seeded ids.
func syncSequences(tx *gorm.DB) error {
	if tx.Dialector == nil || tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"materials", "weapons"} {
		stmt := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))`,
			table, table,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("sync %s sequence: %w", table, err)
		}
	}
	return nil
}

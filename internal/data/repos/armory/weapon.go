package armory

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type WeaponRepo interface {
	Create(dbc dbctx.Context, w *types.Weapon) (*types.Weapon, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Weapon, error)
	List(dbc dbctx.Context) ([]*types.Weapon, error)
	ListByMaterialIDs(dbc dbctx.Context, materialIDs []int64) ([]*types.Weapon, error)
	UpdateStatusByIDs(dbc dbctx.Context, ids []int64, status string) error
}

type weaponRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeaponRepo(db *gorm.DB, baseLog *logger.Logger) WeaponRepo {
	return &weaponRepo{db: db, log: baseLog.With("repo", "WeaponRepo")}
}

// Create inserts the weapon together with its extra material requirements.
func (r *weaponRepo) Create(dbc dbctx.Context, w *types.Weapon) (*types.Weapon, error) {
	if w == nil {
		return nil, nil
	}
	if w.Status == "" {
		w.Status = types.WeaponStatusActive
	}
	if err := dbc.DB(r.db).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (r *weaponRepo) GetByID(dbc dbctx.Context, id int64) (*types.Weapon, error) {
	if id <= 0 {
		return nil, nil
	}
	var out types.Weapon
	if err := dbc.DB(r.db).
		Preload("Materials").
		First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *weaponRepo) List(dbc dbctx.Context) ([]*types.Weapon, error) {
	var results []*types.Weapon
	if err := dbc.DB(r.db).
		Preload("Materials").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByMaterialIDs returns weapons that consume any of the given materials,
// either as root material or as an extra requirement.
func (r *weaponRepo) ListByMaterialIDs(dbc dbctx.Context, materialIDs []int64) ([]*types.Weapon, error) {
	var results []*types.Weapon
	if len(materialIDs) == 0 {
		return results, nil
	}
	t := dbc.DB(r.db)
	sub := t.Session(&gorm.Session{NewDB: true}).
		Model(&types.WeaponMaterial{}).
		Select("weapon_id").
		Where("material_id IN ?", materialIDs)
	if err := t.
		Preload("Materials").
		Where("(material_id IN ? OR id IN (?))", materialIDs, sub).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *weaponRepo) UpdateStatusByIDs(dbc dbctx.Context, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Weapon{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

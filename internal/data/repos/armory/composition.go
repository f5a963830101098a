package armory

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type CompositionRepo interface {
	Create(dbc dbctx.Context, row *types.Composition) (*types.Composition, error)
	Get(dbc dbctx.Context, parentID, materialID int64) (*types.Composition, error)
	ListAll(dbc dbctx.Context) ([]*types.Composition, error)
	ListByParentIDs(dbc dbctx.Context, parentIDs []int64) ([]*types.Composition, error)
	ListByMaterialIDs(dbc dbctx.Context, materialIDs []int64) ([]*types.Composition, error)
	UpdateQty(dbc dbctx.Context, parentID, materialID, qty int64) (bool, error)
	Delete(dbc dbctx.Context, parentID, materialID int64) (bool, error)
}

type compositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompositionRepo(db *gorm.DB, baseLog *logger.Logger) CompositionRepo {
	return &compositionRepo{db: db, log: baseLog.With("repo", "CompositionRepo")}
}

func (r *compositionRepo) Create(dbc dbctx.Context, row *types.Composition) (*types.Composition, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *compositionRepo) Get(dbc dbctx.Context, parentID, materialID int64) (*types.Composition, error) {
	var out types.Composition
	if err := dbc.DB(r.db).
		Where("parent_id = ? AND material_id = ?", parentID, materialID).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// ListAll returns every edge in insertion order. Edges that point at
// soft-deleted materials are left for the graph loader to skip.
func (r *compositionRepo) ListAll(dbc dbctx.Context) ([]*types.Composition, error) {
	var results []*types.Composition
	if err := dbc.DB(r.db).
		Order("created_at ASC").
		Order("parent_id ASC").
		Order("material_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *compositionRepo) ListByParentIDs(dbc dbctx.Context, parentIDs []int64) ([]*types.Composition, error) {
	var results []*types.Composition
	if len(parentIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("parent_id IN ?", parentIDs).
		Order("parent_id ASC").
		Order("created_at ASC").
		Order("material_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *compositionRepo) ListByMaterialIDs(dbc dbctx.Context, materialIDs []int64) ([]*types.Composition, error) {
	var results []*types.Composition
	if len(materialIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("material_id IN ?", materialIDs).
		Order("material_id ASC").
		Order("parent_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *compositionRepo) UpdateQty(dbc dbctx.Context, parentID, materialID, qty int64) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Composition{}).
		Where("parent_id = ? AND material_id = ?", parentID, materialID).
		Update("qty", qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *compositionRepo) Delete(dbc dbctx.Context, parentID, materialID int64) (bool, error) {
	res := dbc.DB(r.db).
		Where("parent_id = ? AND material_id = ?", parentID, materialID).
		Delete(&types.Composition{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

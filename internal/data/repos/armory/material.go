package armory

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

// MaterialFilter narrows List. Nil bounds are ignored.
type MaterialFilter struct {
	PowerLevelGT *int64
	PowerLevelLT *int64
	QtyGT        *int64
	NameContains string
	SortField    string
	SortDesc     bool
}

// sortable columns accepted by List.
var materialSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"power_level": "power_level",
	"qty":         "qty",
	"created_at":  "created_at",
}

func IsMaterialSortField(field string) bool {
	_, ok := materialSortColumns[field]
	return ok
}

type MaterialRepo interface {
	Create(dbc dbctx.Context, rows []*types.Material) ([]*types.Material, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Material, error)
	GetByIDUnscoped(dbc dbctx.Context, id int64) (*types.Material, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Material, error)
	GetByIDsUnscoped(dbc dbctx.Context, ids []int64) ([]*types.Material, error)
	List(dbc dbctx.Context, f MaterialFilter) ([]*types.Material, error)
	ListAll(dbc dbctx.Context) ([]*types.Material, error)
	Update(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []int64) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) Create(dbc dbctx.Context, rows []*types.Material) ([]*types.Material, error) {
	if len(rows) == 0 {
		return []*types.Material{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *materialRepo) GetByID(dbc dbctx.Context, id int64) (*types.Material, error) {
	if id <= 0 {
		return nil, nil
	}
	var out types.Material
	if err := dbc.DB(r.db).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// GetByIDUnscoped also returns soft-deleted rows.
func (r *materialRepo) GetByIDUnscoped(dbc dbctx.Context, id int64) (*types.Material, error) {
	if id <= 0 {
		return nil, nil
	}
	var out types.Material
	if err := dbc.DB(r.db).Unscoped().First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Material, error) {
	var results []*types.Material
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) GetByIDsUnscoped(dbc dbctx.Context, ids []int64) ([]*types.Material, error) {
	var results []*types.Material
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Unscoped().
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) List(dbc dbctx.Context, f MaterialFilter) ([]*types.Material, error) {
	q := dbc.DB(r.db).Model(&types.Material{})
	if f.PowerLevelGT != nil {
		q = q.Where("power_level > ?", *f.PowerLevelGT)
	}
	if f.PowerLevelLT != nil {
		q = q.Where("power_level < ?", *f.PowerLevelLT)
	}
	if f.QtyGT != nil {
		q = q.Where("qty > ?", *f.QtyGT)
	}
	if name := strings.TrimSpace(f.NameContains); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	col, ok := materialSortColumns[f.SortField]
	if !ok {
		col = "id"
	}
	dir := " ASC"
	if f.SortDesc {
		dir = " DESC"
	}
	q = q.Order(col + dir)
	if col != "id" {
		q = q.Order("id ASC")
	}

	var results []*types.Material
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) ListAll(dbc dbctx.Context) ([]*types.Material, error) {
	var results []*types.Material
	if err := dbc.DB(r.db).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) Update(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if id <= 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Material{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *materialRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("id IN ?", ids).
		Delete(&types.Material{}).Error
}

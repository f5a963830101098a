package repos

import (
	"github.com/yungbote/armory-backend/internal/data/repos/armory"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type MaterialRepo = armory.MaterialRepo
type MaterialFilter = armory.MaterialFilter
type CompositionRepo = armory.CompositionRepo
type WeaponRepo = armory.WeaponRepo

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return armory.NewMaterialRepo(db, baseLog)
}
func NewCompositionRepo(db *gorm.DB, baseLog *logger.Logger) CompositionRepo {
	return armory.NewCompositionRepo(db, baseLog)
}
func NewWeaponRepo(db *gorm.DB, baseLog *logger.Logger) WeaponRepo {
	return armory.NewWeaponRepo(db, baseLog)
}

var IsMaterialSortField = armory.IsMaterialSortField

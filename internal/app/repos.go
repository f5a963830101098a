package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/data/repos"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type Repos struct {
	Material    repos.MaterialRepo
	Composition repos.CompositionRepo
	Weapon      repos.WeaponRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Material:    repos.NewMaterialRepo(db, log),
		Composition: repos.NewCompositionRepo(db, log),
		Weapon:      repos.NewWeaponRepo(db, log),
	}
}

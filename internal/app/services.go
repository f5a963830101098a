package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/data/cache"
	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/data/graph"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/services"
)

type Services struct {
	Material    services.MaterialService
	Composition services.CompositionService
	Weapon      services.WeaponService
}

func wireServices(theDB *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	txRunner := db.NewGormTxRunner(theDB)
	resultCache := cache.NewRedisResultCache(clients.Redis, cfg.ResultCacheTTL, log)
	mirror := graph.NewCompositionMirror(clients.Neo4j, log)

	return Services{
		Material: services.NewMaterialService(
			theDB, log, txRunner,
			reposet.Material, reposet.Composition, reposet.Weapon,
			resultCache, mirror, metrics,
		),
		Composition: services.NewCompositionService(
			theDB, log, txRunner,
			reposet.Material, reposet.Composition, reposet.Weapon,
			resultCache, mirror, metrics,
		),
		Weapon: services.NewWeaponService(
			theDB, log, txRunner,
			reposet.Material, reposet.Composition, reposet.Weapon,
			resultCache, mirror, metrics, cfg.ComputeConcurrency,
		),
	}
}

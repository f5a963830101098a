package app

import (
	"database/sql"

	"github.com/yungbote/armory-backend/internal/http"
	httpH "github.com/yungbote/armory-backend/internal/http/handlers"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Material    *httpH.MaterialHandler
	Composition *httpH.CompositionHandler
	Weapon      *httpH.WeaponHandler
}

func wireHandlers(log *logger.Logger, sqlDB *sql.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:      httpH.NewHealthHandler(pinger),
		Material:    httpH.NewMaterialHandler(log, services.Material),
		Composition: httpH.NewCompositionHandler(log, services.Composition),
		Weapon:      httpH.NewWeaponHandler(log, services.Weapon),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	routerCfg := http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		HealthHandler:      handlers.Health,
		MaterialHandler:    handlers.Material,
		CompositionHandler: handlers.Composition,
		WeaponHandler:      handlers.Weapon,
	}
	if cfg.Otel.Enabled {
		routerCfg.TracingService = cfg.Otel.ServiceName
	}
	return http.NewServer(routerCfg)
}

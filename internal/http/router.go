package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/armory-backend/internal/http/handlers"
	httpMW "github.com/yungbote/armory-backend/internal/http/middleware"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// TracingService enables otelgin spans under this service name.
	TracingService string
	CORSOrigins    []string

	MaterialHandler    *httpH.MaterialHandler
	CompositionHandler *httpH.CompositionHandler
	WeaponHandler      *httpH.WeaponHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Materials
		if cfg.MaterialHandler != nil {
			api.GET("/material", cfg.MaterialHandler.ListMaterials)
			api.POST("/material", cfg.MaterialHandler.CreateMaterial)
			api.GET("/material/:id", cfg.MaterialHandler.GetMaterial)
			api.PUT("/material/:id", cfg.MaterialHandler.UpdateMaterial)
			api.DELETE("/material/:id", cfg.MaterialHandler.DeleteMaterial)
			api.GET("/material/:id/power", cfg.MaterialHandler.GetMaterialPower)
			api.GET("/material/:id/maxBuildQuantity", cfg.MaterialHandler.GetMaterialMaxBuildQuantity)
		}

		// Compositions
		if cfg.CompositionHandler != nil {
			api.GET("/composition/:parentId/composition", cfg.CompositionHandler.ListCompositions)
			api.POST("/composition/:parentId/composition", cfg.CompositionHandler.AddComposition)
			api.PUT("/composition/:parentId/composition/:materialId", cfg.CompositionHandler.UpdateComposition)
			api.DELETE("/composition/:parentId/composition/:materialId", cfg.CompositionHandler.DeleteComposition)
		}

		// Weapons
		if cfg.WeaponHandler != nil {
			api.GET("/weapon", cfg.WeaponHandler.ListWeapons)
			api.POST("/weapon", cfg.WeaponHandler.CreateWeapon)
			api.GET("/weapon/:id", cfg.WeaponHandler.GetWeapon)
			api.GET("/weapon/:id/power", cfg.WeaponHandler.GetWeaponPower)
			api.GET("/weapon/:id/maxBuildQuantity", cfg.WeaponHandler.GetWeaponMaxBuildQuantity)
		}
	}

	return r
}

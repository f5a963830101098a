package app

import (
	"time"

	"github.com/yungbote/armory-backend/internal/clients/redis"
	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/envutil"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/platform/neo4jdb"
)

type Config struct {
	Port    string
	LogMode string

	Postgres db.PostgresConfig
	Redis    redis.Config
	Neo4j    neo4jdb.Config
	Otel     observability.OtelConfig

	ResultCacheTTL     time.Duration
	ComputeConcurrency int
	MetricsEnabled     bool
	CORSOrigins        []string
	AutoMigrate        bool
	SeedFile           string
	SeedOnStart        bool
	ShutdownTimeout    time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		Postgres: db.PostgresConfig{
			DSN:          envutil.String("POSTGRES_DSN", ""),
			Host:         envutil.String("POSTGRES_HOST", "localhost"),
			Port:         envutil.String("POSTGRES_PORT", "5432"),
			User:         envutil.String("POSTGRES_USER", "postgres"),
			Password:     envutil.String("POSTGRES_PASSWORD", ""),
			Name:         envutil.String("POSTGRES_NAME", "armory"),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		Neo4j: neo4jdb.Config{
			URI:         envutil.String("NEO4J_URI", ""),
			User:        envutil.String("NEO4J_USER", "neo4j"),
			Password:    envutil.String("NEO4J_PASSWORD", ""),
			Database:    envutil.String("NEO4J_DATABASE", ""),
			Timeout:     envutil.Duration("NEO4J_TIMEOUT", 10*time.Second),
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 50),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "armory-api"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("SERVICE_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseOtelHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
		ResultCacheTTL:     envutil.Duration("RESULT_CACHE_TTL", 30*time.Second),
		ComputeConcurrency: envutil.Int("ARMORY_COMPUTE_CONCURRENCY", 4),
		MetricsEnabled:     envutil.Bool("METRICS_ENABLED", true),
		CORSOrigins:        envutil.List("CORS_ALLOW_ORIGINS", nil),
		AutoMigrate:        envutil.Bool("AUTO_MIGRATE", true),
		SeedFile:           envutil.String("SEED_FILE", ""),
		SeedOnStart:        envutil.Bool("SEED_ON_START", false),
		ShutdownTimeout:    envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.ComputeConcurrency <= 0 {
		log.Warn("ARMORY_COMPUTE_CONCURRENCY must be positive, using 4", "value", cfg.ComputeConcurrency)
		cfg.ComputeConcurrency = 4
	}
	return cfg
}

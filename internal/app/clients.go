package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/armory-backend/internal/clients/redis"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/platform/neo4jdb"
)

// Clients holds the optional backing services. Either may be nil when its
// address is not configured.
type Clients struct {
	Redis *goredis.Client
	Neo4j *neo4jdb.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	rdb, err := redis.NewClient(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Info("REDIS_ADDR not set, result cache disabled")
	}

	// Neo4j
	graph, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if graph == nil {
		log.Info("NEO4J_URI not set, composition graph mirror disabled")
	}

	return Clients{Redis: rdb, Neo4j: graph}, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}

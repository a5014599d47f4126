package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumeo-social/lumeo-backend/internal/db"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
	"github.com/lumeo-social/lumeo-backend/internal/platform/neo4jdb"
	"github.com/lumeo-social/lumeo-backend/internal/platform/redisdb"
)

// Clients holds external backends. Redis and Neo4j are optional: a nil
// client means the dependent feature degrades instead of failing startup.
type Clients struct {
	Postgres *db.PostgresService
	Redis    *goredis.Client
	Neo4j    *neo4jdb.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	pg, err := db.NewPostgresService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return Clients{}, fmt.Errorf("postgres automigrate: %w", err)
	}

	rdb, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("redis unavailable, content scores will be recomputed per request", "error", err)
		rdb = nil
	}

	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("neo4j unavailable, social signals disabled", "error", err)
		neo = nil
	}

	return Clients{Postgres: pg, Redis: rdb, Neo4j: neo}, nil
}

// Package bootstrap wires up runtime dependencies shared by the commands.
package bootstrap

import (
	"fmt"

	"skillmesh/internal/cache"
	"skillmesh/internal/config"
	"skillmesh/internal/database"
	"skillmesh/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo populates the database with the demo roster on startup.
	SeedDemo     bool
	SeedNumUsers int
}

// InitRuntime connects to DB and Redis and optionally runs demo seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		numUsers := opts.SeedNumUsers
		if numUsers <= 0 {
			numUsers = 5
		}
		if err := seed.Seed(db, seed.Options{NumUsers: numUsers}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// Package bootstrap wires process-level dependencies for the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/redisconn"
	"socialfeed/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs database.ApplySchema after connecting.
	ApplySchema bool
	// SeedDemoData fills an empty development database with demo content.
	SeedDemoData bool
}

// InitRuntime connects to the database and Redis, applies the schema and
// optionally seeds demo data. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SeedDemoData {
		if err := seedIfEmpty(ctx, cfg, db); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, redisconn.Connect(ctx, cfg.RedisURL), nil
}

// seedIfEmpty seeds a development database that has no users yet.
func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.Env != "development" {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	summary, err := seed.NewSeeder(db, seed.Options{BcryptCost: cfg.BcryptCost}).Seed(ctx, seed.SeedOptions{
		NumUsers:           10,
		NumPosts:           30,
		MaxCommentsPerPost: 3,
		ReactionRate:       0.3,
	})
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "seeded empty development database",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.String("login", "demo@example.com / "+seed.DemoPassword))
	return nil
}

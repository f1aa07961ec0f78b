// Package bootstrap wires the process-wide runtime dependencies shared by the
// server and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"potluck/internal/cache"
	"potluck/internal/config"
	"potluck/internal/database"
	"potluck/internal/middleware"
	"potluck/internal/models"
	"potluck/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty database with demo content. It is ignored
	// outside development.
	SeedDemoData bool
	DemoUsers    int
	DemoPosts    int
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData && cfg.Env == "development" {
		if err := seedIfEmpty(ctx, db, opts); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB, opts Options) error {
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.InfoContext(ctx, "demo seed skipped, database not empty", slog.Int64("users", users))
		return nil
	}

	numUsers, numPosts := opts.DemoUsers, opts.DemoPosts
	if numUsers <= 0 {
		numUsers = 10
	}
	if numPosts <= 0 {
		numPosts = 40
	}
	_, err := seed.Seed(ctx, db, seed.Options{NumUsers: numUsers, NumPosts: numPosts, SkipBcrypt: true})
	return err
}

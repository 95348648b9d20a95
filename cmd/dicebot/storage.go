package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/accounts"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/server"
	"github.com/cory-johannsen/dicebot/internal/storage/boltstore"
	"github.com/cory-johannsen/dicebot/internal/storage/memory"
	"github.com/cory-johannsen/dicebot/internal/storage/postgres"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

const healthInterval = 30 * time.Second

type store interface {
	variables.Store
	accounts.Store
}

// openStore opens the configured backend and registers a lifecycle service
// that releases it on shutdown.
func openStore(ctx context.Context, cfg config.Config, lifecycle *server.Lifecycle, logger *zap.Logger) (store, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pool.CheckSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				ticker := time.NewTicker(healthInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: pool.Close,
		})
		return postgres.NewStore(pool), nil

	case config.BackendBolt:
		s, err := boltstore.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("bolt store opened", zap.String("path", s.Path()))
		lifecycle.Add("bolt", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
			StopFn: func() {
				if err := s.Close(); err != nil {
					logger.Warn("closing bolt store", zap.Error(err))
				}
			},
		})
		return s, nil

	case config.BackendMemory:
		logger.Warn("using in-memory storage; variables and accounts are lost on exit")
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// Package backend builds the configured document-store implementation.
package backend

import (
	"context"
	"fmt"

	"finledger/internal/config"
	"finledger/internal/log"
	"finledger/internal/store"
	"finledger/internal/store/memory"
	"finledger/internal/store/postgres"
	"finledger/internal/store/sqlite"
)

// CleanupFunc releases the backend's resources.
type CleanupFunc func() error

// Result pairs a store with its cleanup function. Cleanup is never nil.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	logger = logger.WithComponent(log.ComponentStore)

	switch cfg.Backend {
	case "memory":
		logger.InfoContext(ctx, "using in-memory store")
		return &Result{
			Store:   memory.New(),
			Cleanup: func() error { return nil },
		}, nil

	case "sqlite":
		st, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.InfoContext(ctx, "using sqlite store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case "postgres":
		st, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres store: %w", err)
		}
		logger.InfoContext(ctx, "using postgres store")
		return &Result{
			Store: st,
			Cleanup: func() error {
				st.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

// Package backend selects and opens the record store named by the
// configuration.
package backend

import (
	"fmt"

	"gastos/internal/analytics"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
	"gastos/internal/storage/memory"
)

// Store is the full persistence surface the application needs: every
// service-facing store plus the analytics read model.
type Store interface {
	services.CategoryStore
	services.ExpenseStore
	services.BudgetStore
	services.SettingsStore
	analytics.Store
	analytics.SettingsReader
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result is an opened backend and its optional cleanup.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Open builds the store named by cfg.DataBackend.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case "memory":
		logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

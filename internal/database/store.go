package database

import (
	"context"
	"fmt"

	"ecg-academy/internal/config"
	"ecg-academy/internal/domain"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/repository"
	"ecg-academy/internal/repository/memory"

	"go.uber.org/zap"
)

// OpenStore returns the store selected by store.driver and a function releasing it.
// With store.auto_migrate set, pending migrations run before the store is returned.
func OpenStore(ctx context.Context, cfg *config.Config) (domain.Store, func() error, error) {
	if cfg.Store.Driver == "memory" {
		logger.Get().Warn("Using the in-memory store; data is lost when the process exits")
		return memory.New(nil), func() error { return nil }, nil
	}

	db, err := NewSQLXOracleDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Store.AutoMigrate {
		migrations, err := LoadMigrations()
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		applied, err := RunMigrations(ctx, db, migrations)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("auto migration failed: %w", err)
		}
		logger.Get().Info("Auto migration finished", zap.Int("applied", applied))
	}

	return repository.NewOracleStore(db, nil), db.Close, nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"ecg-academy/internal/config"
	"ecg-academy/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // pure Go Oracle driver, registered as "oracle"
	"go.uber.org/zap"
)

func init() {
	// go-ora registers itself as "oracle"; sqlx only knows godror's bind style out of the box.
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// NewSQLXOracleDB opens the Oracle connection selected by store.driver and verifies it with a ping.
func NewSQLXOracleDB(cfg *config.Config) (*sqlx.DB, error) {
	driver, dsn := "oracle", cfg.GetDSN()
	if cfg.Store.Driver == "godror" {
		driver, dsn = "godror", cfg.GetGodrorDSN()
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle database (%s): %w", driver, err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	logger.Get().Info("Successfully connected to Oracle database",
		zap.String("driver", driver),
		zap.String("host", cfg.DB.Host),
		zap.String("service", cfg.DB.DBName))
	return db, nil
}

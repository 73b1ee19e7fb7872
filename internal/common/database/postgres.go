package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"application-builder/internal/common/config"

	_ "github.com/lib/pq"
)

// OpenPostgres opens a pooled lib/pq connection and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

func PostgresCheck(db *sql.DB) HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Handle wraps DB connectivity.
// Keep transaction helpers here to support outbox + state consistency.
type Handle struct {
	DB *gorm.DB
}

// Connect opens postgres when a DSN is provided, otherwise an embedded sqlite
// database at sqlitePath for local and single-node runs.
func Connect(postgresDSN string, sqlitePath string) (*Handle, error) {
	if postgresDSN != "" {
		return connectPostgres(postgresDSN)
	}
	if sqlitePath == "" {
		return nil, errors.New("either postgres dsn or sqlite path is required")
	}
	gdb, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm sqlite: %w", err)
	}
	return &Handle{DB: gdb}, nil
}

func connectPostgres(dsn string) (*Handle, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Handle{DB: gdb}, nil
}

func (h *Handle) Close() error {
	if h == nil || h.DB == nil {
		return nil
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the chat database file. The pool is capped at one connection so
// writers queue behind SQLite's file lock instead of failing with SQLITE_BUSY.
func New(ctx context.Context, path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite sql db failed: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping sqlite failed: %w", err)
	}

	if err := db.WithContext(ctx).Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
		return nil, fmt.Errorf("enable sqlite wal failed: %w", err)
	}
	return db, nil
}

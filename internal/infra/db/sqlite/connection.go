package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ubot-platform/internal/config"
	"ubot-platform/internal/infra/metrics"
)

// Open connects to the SQLite file at cfg.Path and migrates the schema.
// The pool is capped at one connection so writers are serialised by the
// driver rather than failing with SQLITE_BUSY.
func Open(cfg config.DatabaseConfig, log *zerolog.Logger) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "ubot.db"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if log != nil {
		log.Info().Str("path", path).Msg("sqlite store ready")
	}
	return db, nil
}

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ownerRow{}, &voucherRow{}, &sessionRow{}, &featureRow{}, &deploymentRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReportPoolStats publishes the database/sql pool gauges every interval
// until ctx is done.
func ReportPoolStats(ctx context.Context, db *gorm.DB, interval time.Duration) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		st := sqlDB.Stats()
		metrics.SetDBPoolStats("sqlite", st.OpenConnections, st.Idle, st.InUse)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Package db selects the configured storage backend and exposes its
// repositories behind the domain ports.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ubot-platform/internal/config"
	"ubot-platform/internal/domain/ports/repository"
	pg "ubot-platform/internal/infra/db/postgres"
	"ubot-platform/internal/infra/db/sqlite"
)

// Store bundles the repositories of one backend.
type Store struct {
	Driver      string
	Vouchers    repository.VoucherRepository
	Sessions    repository.SessionRepository
	Features    repository.FeatureRepository
	Deployments repository.DeploymentRepository
	Owners      repository.OwnerRepository
	Tx          repository.TransactionManager

	closeFn func()
}

// Open connects to cfg.Driver. For postgres the pool gauges are published
// until ctx is cancelled.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		go pg.ReportPoolStats(ctx, pool, 15*time.Second)
		return &Store{
			Driver:      cfg.Driver,
			Vouchers:    pg.NewVoucherRepo(pool),
			Sessions:    pg.NewSessionRepo(pool),
			Features:    pg.NewFeatureRepo(pool),
			Deployments: pg.NewDeploymentRepo(pool),
			Owners:      pg.NewPostgresOwnerRepo(pool),
			Tx:          pg.NewTxManager(pool),
			closeFn:     pool.Close,
		}, nil

	case "sqlite", "":
		gdb, err := sqlite.Open(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		go sqlite.ReportPoolStats(ctx, gdb, 15*time.Second)
		closeFn := func() {
			if err := sqlite.Close(gdb); err != nil && logger != nil {
				logger.Warn().Err(err).Msg("close sqlite")
			}
		}
		return &Store{
			Driver:      "sqlite",
			Vouchers:    sqlite.NewVoucherRepo(gdb),
			Sessions:    sqlite.NewSessionRepo(gdb),
			Features:    sqlite.NewFeatureRepo(gdb),
			Deployments: sqlite.NewDeploymentRepo(gdb),
			Owners:      sqlite.NewOwnerRepo(gdb),
			Tx:          sqlite.NewTxManager(gdb),
			closeFn:     closeFn,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

package sched

import (
	"context"
	"time"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// VoucherCounter is the part of the voucher store the worker reads.
type VoucherCounter interface {
	CountByState(ctx context.Context, tx repository.Tx, now time.Time) (model.VoucherCounts, error)
}

// VoucherStatsWorker periodically publishes the voucher state gauges.
type VoucherStatsWorker struct {
	interval time.Duration
	vouchers VoucherCounter
	log      *zerolog.Logger
}

func NewVoucherStatsWorker(interval time.Duration, vouchers VoucherCounter, logger *zerolog.Logger) *VoucherStatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	wl := logger.With().Str("component", "VoucherStatsWorker").Logger()
	return &VoucherStatsWorker{interval: interval, vouchers: vouchers, log: &wl}
}

// Tick refreshes the gauges once from a single aggregate query.
func (w *VoucherStatsWorker) Tick(ctx context.Context) (model.VoucherCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := w.vouchers.CountByState(ctx, repository.NoTX, time.Now().UTC())
	if err != nil {
		metrics.IncBackgroundJob("voucher_stats", "error")
		return model.VoucherCounts{}, err
	}
	metrics.SetVoucherStates(st.Active, st.Used, st.Expired)
	metrics.IncBackgroundJob("voucher_stats", "ok")
	return st, nil
}

// Run ticks immediately and then every interval until ctx is done.
func (w *VoucherStatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting voucher stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if st, err := w.Tick(ctx); err != nil {
			w.log.Error().Err(err).Msg("voucher stats refresh failed")
		} else {
			w.log.Debug().Int("active", st.Active).Int("used", st.Used).Int("expired", st.Expired).Msg("voucher stats refreshed")
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping voucher stats worker")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

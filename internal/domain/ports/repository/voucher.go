package repository

import (
	"context"
	"time"

	"ubot-platform/internal/domain/model"
)

// VoucherRepository is the port for voucher persistence.
type VoucherRepository interface {
	// Create inserts a new voucher. A duplicate code surfaces as
	// domain.ErrPersistence wrapping domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, v *model.Voucher) error
	// FindByCode returns the voucher regardless of its state, or domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Voucher, error)
	// MarkUsed atomically flips an unused, unexpired voucher to used.
	// It reports false when no row matched (already used, expired or missing).
	MarkUsed(ctx context.Context, tx Tx, code, userID string, at time.Time) (bool, error)
	// ListByOwner returns the owner's vouchers, newest first.
	ListByOwner(ctx context.Context, tx Tx, ownerID string) ([]*model.Voucher, error)
	// ListAll returns every voucher, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.Voucher, error)
	// CountByState aggregates vouchers into active, used and expired at now.
	CountByState(ctx context.Context, tx Tx, now time.Time) (model.VoucherCounts, error)
}

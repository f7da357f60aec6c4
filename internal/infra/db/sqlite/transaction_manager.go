package sqlite

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager runs units of work in a gorm transaction. The Tx handed to fn
// is the transactional *gorm.DB.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// conn picks the transactional handle when tx carries one.
func conn(ctx context.Context, db *gorm.DB, tx repository.Tx) (*gorm.DB, error) {
	switch v := tx.(type) {
	case nil:
		return db.WithContext(ctx), nil
	case *gorm.DB:
		if v == nil {
			return db.WithContext(ctx), nil
		}
		return v.WithContext(ctx), nil
	default:
		return nil, domain.ErrInvalidExecContext
	}
}

// translate maps gorm and driver errors onto domain errors for op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.Persistence(op, domain.ErrAlreadyExists)
	}
	return domain.Persistence(op, err)
}

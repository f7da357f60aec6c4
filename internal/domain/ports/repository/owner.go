package repository

import (
	"context"

	"ubot-platform/internal/domain/model"
)

// -----------------------------
// Owners
// -----------------------------

type OwnerRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Owner) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Owner, error)
}

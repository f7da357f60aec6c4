package usecase

import (
	"context"
	"errors"
	"strings"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ OwnerUseCase = (*ownerUC)(nil)

// OwnerUseCase manages voucher issuers (display names shown on inspection).
type OwnerUseCase interface {
	RegisterOrFetch(ctx context.Context, id, username string) (*model.Owner, error)
	Get(ctx context.Context, id string) (*model.Owner, error)
}

type ownerUC struct {
	owners repository.OwnerRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewOwnerUseCase(owners repository.OwnerRepository, tm repository.TransactionManager, logger *zerolog.Logger) *ownerUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ownerUC{
		owners: owners,
		tm:     tm,
		log:    logger,
	}
}

// RegisterOrFetch returns the owner with id, creating it or refreshing its
// username in the same transaction.
func (u *ownerUC) RegisterOrFetch(ctx context.Context, id, username string) (*model.Owner, error) {
	defer logging.TraceDuration(u.log, "OwnerUC.RegisterOrFetch")()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Validationf("owner id is required")
	}

	var owner *model.Owner
	err := u.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		o, err := u.owners.FindByID(ctx, tx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if o != nil {
			if username != "" && o.Username != username {
				o.Username = username
				if err := u.owners.Save(ctx, tx, o); err != nil {
					u.log.Error().Err(err).Str("owner_id", id).Msg("Failed to update owner")
					return err
				}
			}
			owner = o
			return nil
		}

		no, err := model.NewOwner(id, username)
		if err != nil {
			return err
		}
		if err := u.owners.Save(ctx, tx, no); err != nil {
			return err
		}
		owner = no
		return nil
	})
	if err != nil {
		return nil, storeErr("register owner", err)
	}
	return owner, nil
}

func (u *ownerUC) Get(ctx context.Context, id string) (*model.Owner, error) {
	defer logging.TraceDuration(u.log, "OwnerUC.Get")()
	o, err := u.owners.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, storeErr("find owner", err)
	}
	return o, nil
}

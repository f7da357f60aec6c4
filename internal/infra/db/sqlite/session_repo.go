package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) repository.SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Session) error {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return translate("create session", err)
	}
	return translate("create session", db.Create(sessionToRow(s)).Error)
}

func (r *sessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, translate("find session", err)
	}
	var row sessionRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate("find session", err)
	}
	return row.toModel(), nil
}

func (r *sessionRepo) SetPairing(ctx context.Context, tx repository.Tx, id, pairingCode, phoneCipher string, at time.Time) (bool, error) {
	return r.conditional(ctx, tx, "set pairing",
		"id = ? AND status IN ?", []interface{}{id, []string{string(model.SessionStatusPairing), string(model.SessionStatusPairingRequested)}},
		map[string]interface{}{
			"pairing_code": pairingCode,
			"phone_cipher": phoneCipher,
			"status":       string(model.SessionStatusPairingRequested),
			"updated_at":   toMillis(at),
		})
}

func (r *sessionRepo) SetQRCode(ctx context.Context, tx repository.Tx, id, qr string, at time.Time) (bool, error) {
	return r.conditional(ctx, tx, "set qr code",
		"id = ? AND status <> ?", []interface{}{id, string(model.SessionStatusDeployed)},
		map[string]interface{}{
			"qr_code":    qr,
			"updated_at": toMillis(at),
		})
}

func (r *sessionRepo) MarkDeployed(ctx context.Context, tx repository.Tx, id, botName string, at time.Time) (bool, error) {
	ms := toMillis(at)
	return r.conditional(ctx, tx, "mark deployed",
		"id = ? AND status = ?", []interface{}{id, string(model.SessionStatusPairingRequested)},
		map[string]interface{}{
			"status":            string(model.SessionStatusDeployed),
			"deployment_status": string(model.DeploymentStatusInProgress),
			"bot_name":          botName,
			"deployed_at":       ms,
			"updated_at":        ms,
		})
}

// conditional applies set only to rows matching where; false means the
// session was missing or not in an allowed state.
func (r *sessionRepo) conditional(ctx context.Context, tx repository.Tx, op, where string, args []interface{}, set map[string]interface{}) (bool, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return false, translate(op, err)
	}
	res := db.Model(&sessionRow{}).Where(where, args...).Updates(set)
	if res.Error != nil {
		return false, translate(op, res.Error)
	}
	return res.RowsAffected >= 1, nil
}

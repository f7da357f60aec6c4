package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) repository.SessionRepository {
	return &sessionRepo{pool: pool}
}

func (r *sessionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Session) error {
	const q = `
INSERT INTO sessions (id, user_id, voucher_code, status, bot_name, pairing_code, phone_cipher,
                      qr_code, deployment_status, created_at, updated_at, deployed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.VoucherCode, string(s.Status), s.BotName, s.PairingCode, s.PhoneCipher,
		s.QRCode, string(s.DeploymentStatus), s.CreatedAt, s.UpdatedAt, s.DeployedAt,
	)
	return translate("insert session", err)
}

func (r *sessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	const q = `
SELECT id, user_id, voucher_code, status, bot_name, pairing_code, phone_cipher,
       qr_code, deployment_status, created_at, updated_at, deployed_at
  FROM sessions
 WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, translate("find session", err)
	}
	var (
		s              model.Session
		status, depSts string
	)
	err = row.Scan(&s.ID, &s.UserID, &s.VoucherCode, &status, &s.BotName, &s.PairingCode, &s.PhoneCipher,
		&s.QRCode, &depSts, &s.CreatedAt, &s.UpdatedAt, &s.DeployedAt)
	if err != nil {
		return nil, translate("find session", err)
	}
	s.Status, s.DeploymentStatus = model.SessionStatus(status), model.DeploymentStatus(depSts)
	return &s, nil
}

func (r *sessionRepo) SetPairing(ctx context.Context, tx repository.Tx, id, pairingCode, phoneCipher string, at time.Time) (bool, error) {
	const q = `
UPDATE sessions
   SET pairing_code = $2,
       phone_cipher = $3,
       status = 'pairing_requested',
       updated_at = $4
 WHERE id = $1
   AND status IN ('pairing', 'pairing_requested');
`
	return r.conditional(ctx, tx, "set pairing", q, id, pairingCode, phoneCipher, at)
}

func (r *sessionRepo) SetQRCode(ctx context.Context, tx repository.Tx, id, qr string, at time.Time) (bool, error) {
	const q = `
UPDATE sessions
   SET qr_code = $2,
       updated_at = $3
 WHERE id = $1
   AND status <> 'deployed';
`
	return r.conditional(ctx, tx, "set qr code", q, id, qr, at)
}

func (r *sessionRepo) MarkDeployed(ctx context.Context, tx repository.Tx, id, botName string, at time.Time) (bool, error) {
	const q = `
UPDATE sessions
   SET status = 'deployed',
       deployment_status = 'in_progress',
       bot_name = $2,
       deployed_at = $3,
       updated_at = $3
 WHERE id = $1
   AND status = 'pairing_requested';
`
	return r.conditional(ctx, tx, "mark deployed", q, id, botName, at)
}

func (r *sessionRepo) conditional(ctx context.Context, tx repository.Tx, op, q string, args ...interface{}) (bool, error) {
	cmd, err := execSQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		return false, translate(op, err)
	}
	return cmd.RowsAffected() >= 1, nil
}

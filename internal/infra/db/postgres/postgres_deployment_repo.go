package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.DeploymentRepository = (*deploymentRepo)(nil)

type deploymentRepo struct {
	pool *pgxpool.Pool
}

func NewDeploymentRepo(pool *pgxpool.Pool) repository.DeploymentRepository {
	return &deploymentRepo{pool: pool}
}

func (r *deploymentRepo) Create(ctx context.Context, tx repository.Tx, d *model.Deployment) error {
	const q = `
INSERT INTO deployments (id, session_id, user_id, deployment_type, status, logs, created_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		d.ID, d.SessionID, d.UserID, d.Type, string(d.Status), d.Logs, d.CreatedAt, d.CompletedAt)
	return translate("insert deployment", err)
}

func (r *deploymentRepo) FindBySession(ctx context.Context, tx repository.Tx, sessionID string) ([]*model.Deployment, error) {
	const q = `
SELECT id, session_id, user_id, deployment_type, status, logs, created_at, completed_at
  FROM deployments
 WHERE session_id = $1
 ORDER BY id ASC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, translate("list deployments", err)
	}
	defer rows.Close()

	var out []*model.Deployment
	for rows.Next() {
		var (
			d      model.Deployment
			status string
		)
		if err := rows.Scan(&d.ID, &d.SessionID, &d.UserID, &d.Type, &status, &d.Logs, &d.CreatedAt, &d.CompletedAt); err != nil {
			return nil, translate("scan deployment", err)
		}
		d.Status = model.DeploymentStatus(status)
		out = append(out, &d)
	}
	return out, translate("list deployments", rows.Err())
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.FeatureRepository = (*featureRepo)(nil)

type featureRepo struct {
	pool *pgxpool.Pool
}

func NewFeatureRepo(pool *pgxpool.Pool) repository.FeatureRepository {
	return &featureRepo{pool: pool}
}

func (r *featureRepo) Upsert(ctx context.Context, tx repository.Tx, f *model.Feature) error {
	const q = `
INSERT INTO features (session_id, feature_name, is_enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id, feature_name) DO UPDATE SET
  is_enabled = EXCLUDED.is_enabled,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q, f.SessionID, f.Name, f.Enabled, f.CreatedAt, f.UpdatedAt)
	return translate("upsert feature", err)
}

func (r *featureRepo) ListBySession(ctx context.Context, tx repository.Tx, sessionID string) ([]*model.Feature, error) {
	const q = `
SELECT session_id, feature_name, is_enabled, created_at, updated_at
  FROM features
 WHERE session_id = $1
 ORDER BY feature_name ASC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, translate("list features", err)
	}
	defer rows.Close()

	out := make([]*model.Feature, 0)
	for rows.Next() {
		var f model.Feature
		if err := rows.Scan(&f.SessionID, &f.Name, &f.Enabled, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, translate("scan feature", err)
		}
		out = append(out, &f)
	}
	return out, translate("list features", rows.Err())
}

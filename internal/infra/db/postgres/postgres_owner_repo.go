package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.OwnerRepository = (*PostgresOwnerRepo)(nil)

type PostgresOwnerRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOwnerRepo(pool *pgxpool.Pool) *PostgresOwnerRepo {
	return &PostgresOwnerRepo{pool: pool}
}

func (r *PostgresOwnerRepo) Save(ctx context.Context, tx repository.Tx, o *model.Owner) error {
	const q = `
INSERT INTO users (id, username, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username;
`
	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.Username, o.CreatedAt)
	return translate("save owner", err)
}

func (r *PostgresOwnerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Owner, error) {
	const q = `SELECT id, username, created_at FROM users WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, translate("find owner", err)
	}
	var o model.Owner
	if err := row.Scan(&o.ID, &o.Username, &o.CreatedAt); err != nil {
		return nil, translate("find owner", err)
	}
	return &o, nil
}

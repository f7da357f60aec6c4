package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.VoucherRepository = (*voucherRepo)(nil)

type voucherRepo struct {
	pool *pgxpool.Pool
}

func NewVoucherRepo(pool *pgxpool.Pool) repository.VoucherRepository {
	return &voucherRepo{pool: pool}
}

const voucherColumns = `id, code, owner_id, used_by_id, is_used, created_at, used_at, expires_at`

func (r *voucherRepo) Create(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	const q = `
INSERT INTO vouchers (` + voucherColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		v.ID, v.Code, v.OwnerID, v.UsedByID, v.IsUsed, v.CreatedAt, v.UsedAt, v.ExpiresAt,
	)
	return translate("insert voucher", err)
}

// FindByCode returns the voucher in whatever state it is.
func (r *voucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, translate("find voucher", err)
	}
	v, err := scanVoucher(row)
	if err != nil {
		return nil, translate("find voucher", err)
	}
	return v, nil
}

// MarkUsed is the single write of a redemption. The WHERE clause carries the
// whole precondition; RowsAffected tells the caller whether it won.
func (r *voucherRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (bool, error) {
	const q = `
UPDATE vouchers
   SET is_used = TRUE,
       used_by_id = $2,
       used_at = $3
 WHERE code = $1
   AND is_used = FALSE
   AND expires_at > $3;
`
	cmd, err := execSQL(ctx, r.pool, tx, q, code, userID, at)
	if err != nil {
		return false, translate("mark voucher used", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *voucherRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE owner_id = $1 ORDER BY created_at DESC, code DESC;`
	return r.list(ctx, tx, q, ownerID)
}

func (r *voucherRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers ORDER BY created_at DESC, code DESC;`
	return r.list(ctx, tx, q)
}

// CountByState is one aggregate pass; used wins over expired.
func (r *voucherRepo) CountByState(ctx context.Context, tx repository.Tx, now time.Time) (model.VoucherCounts, error) {
	const q = `
SELECT count(*) FILTER (WHERE NOT is_used AND expires_at > $1),
       count(*) FILTER (WHERE is_used),
       count(*) FILTER (WHERE NOT is_used AND expires_at <= $1)
  FROM vouchers;
`
	row, err := pickRow(ctx, r.pool, tx, q, now)
	if err != nil {
		return model.VoucherCounts{}, translate("count vouchers", err)
	}
	var active, used, expired int64
	if err := row.Scan(&active, &used, &expired); err != nil {
		return model.VoucherCounts{}, translate("count vouchers", err)
	}
	return model.VoucherCounts{Active: int(active), Used: int(used), Expired: int(expired)}, nil
}

func (r *voucherRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Voucher, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, translate("list vouchers", err)
	}
	defer rows.Close()

	out := make([]*model.Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, translate("scan voucher", err)
		}
		out = append(out, v)
	}
	return out, translate("list vouchers", rows.Err())
}

func scanVoucher(row pgx.Row) (*model.Voucher, error) {
	var v model.Voucher
	if err := row.Scan(&v.ID, &v.Code, &v.OwnerID, &v.UsedByID, &v.IsUsed, &v.CreatedAt, &v.UsedAt, &v.ExpiresAt); err != nil {
		return nil, err
	}
	return &v, nil
}

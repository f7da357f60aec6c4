package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.VoucherRepository = (*voucherRepo)(nil)

type voucherRepo struct {
	db *gorm.DB
}

func NewVoucherRepo(db *gorm.DB) repository.VoucherRepository {
	return &voucherRepo{db: db}
}

func (r *voucherRepo) Create(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return translate("create voucher", err)
	}
	return translate("create voucher", db.Create(voucherToRow(v)).Error)
}

func (r *voucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, translate("find voucher", err)
	}
	var row voucherRow
	if err := db.Where("code = ?", code).First(&row).Error; err != nil {
		return nil, translate("find voucher", err)
	}
	return row.toModel(), nil
}

func (r *voucherRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (bool, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return false, translate("mark voucher used", err)
	}
	ms := toMillis(at)
	res := db.Model(&voucherRow{}).
		Where("code = ? AND is_used = ? AND expires_at > ?", code, false, ms).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_by_id": userID,
			"used_at":    ms,
		})
	if res.Error != nil {
		return false, translate("mark voucher used", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *voucherRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Voucher, error) {
	return r.list(ctx, tx, "owner_id = ?", ownerID)
}

func (r *voucherRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Voucher, error) {
	return r.list(ctx, tx, "")
}

func (r *voucherRepo) CountByState(ctx context.Context, tx repository.Tx, now time.Time) (model.VoucherCounts, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return model.VoucherCounts{}, translate("count vouchers", err)
	}
	ms := toMillis(now)
	var agg struct {
		Active  int64
		Used    int64
		Expired int64
	}
	err = db.Model(&voucherRow{}).
		Select(
			"COALESCE(SUM(CASE WHEN is_used = ? AND expires_at > ? THEN 1 ELSE 0 END), 0) AS active, "+
				"COALESCE(SUM(CASE WHEN is_used = ? THEN 1 ELSE 0 END), 0) AS used, "+
				"COALESCE(SUM(CASE WHEN is_used = ? AND expires_at <= ? THEN 1 ELSE 0 END), 0) AS expired",
			false, ms, true, false, ms,
		).
		Scan(&agg).Error
	if err != nil {
		return model.VoucherCounts{}, translate("count vouchers", err)
	}
	return model.VoucherCounts{Active: int(agg.Active), Used: int(agg.Used), Expired: int(agg.Expired)}, nil
}

func (r *voucherRepo) list(ctx context.Context, tx repository.Tx, where string, args ...interface{}) ([]*model.Voucher, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, translate("list vouchers", err)
	}
	q := db.Model(&voucherRow{})
	if where != "" {
		q = q.Where(where, args...)
	}
	var rows []voucherRow
	if err := q.Order("created_at DESC").Order("code DESC").Find(&rows).Error; err != nil {
		return nil, translate("list vouchers", err)
	}
	out := make([]*model.Voucher, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

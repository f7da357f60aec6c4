package sqlite

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.OwnerRepository = (*ownerRepo)(nil)

type ownerRepo struct {
	db *gorm.DB
}

func NewOwnerRepo(db *gorm.DB) repository.OwnerRepository {
	return &ownerRepo{db: db}
}

// Save inserts the owner or refreshes its username.
func (r *ownerRepo) Save(ctx context.Context, tx repository.Tx, o *model.Owner) error {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return translate("save owner", err)
	}
	row := &ownerRow{ID: o.ID, Username: o.Username, CreatedAt: toMillis(o.CreatedAt)}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username"}),
	}).Create(row).Error
	return translate("save owner", err)
}

func (r *ownerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Owner, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, translate("find owner", err)
	}
	var row ownerRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate("find owner", err)
	}
	return &model.Owner{ID: row.ID, Username: row.Username, CreatedAt: fromMillis(row.CreatedAt)}, nil
}

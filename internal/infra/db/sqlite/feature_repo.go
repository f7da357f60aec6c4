package sqlite

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.FeatureRepository = (*featureRepo)(nil)

type featureRepo struct {
	db *gorm.DB
}

func NewFeatureRepo(db *gorm.DB) repository.FeatureRepository {
	return &featureRepo{db: db}
}

func (r *featureRepo) Upsert(ctx context.Context, tx repository.Tx, f *model.Feature) error {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return translate("upsert feature", err)
	}
	row := &featureRow{
		SessionID:   f.SessionID,
		FeatureName: f.Name,
		IsEnabled:   f.Enabled,
		CreatedAt:   toMillis(f.CreatedAt),
		UpdatedAt:   toMillis(f.UpdatedAt),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "feature_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
	}).Create(row).Error
	return translate("upsert feature", err)
}

func (r *featureRepo) ListBySession(ctx context.Context, tx repository.Tx, sessionID string) ([]*model.Feature, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, translate("list features", err)
	}
	var rows []featureRow
	if err := db.Where("session_id = ?", sessionID).Order("feature_name ASC").Find(&rows).Error; err != nil {
		return nil, translate("list features", err)
	}
	out := make([]*model.Feature, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

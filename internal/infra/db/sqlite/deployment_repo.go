package sqlite

import (
	"context"

	"gorm.io/gorm"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

var _ repository.DeploymentRepository = (*deploymentRepo)(nil)

type deploymentRepo struct {
	db *gorm.DB
}

func NewDeploymentRepo(db *gorm.DB) repository.DeploymentRepository {
	return &deploymentRepo{db: db}
}

func (r *deploymentRepo) Create(ctx context.Context, tx repository.Tx, d *model.Deployment) error {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return translate("create deployment", err)
	}
	row := &deploymentRow{
		ID:             d.ID,
		SessionID:      d.SessionID,
		UserID:         d.UserID,
		DeploymentType: d.Type,
		Status:         string(d.Status),
		Logs:           d.Logs,
		CreatedAt:      toMillis(d.CreatedAt),
		CompletedAt:    toMillisPtr(d.CompletedAt),
	}
	return translate("create deployment", db.Create(row).Error)
}

func (r *deploymentRepo) FindBySession(ctx context.Context, tx repository.Tx, sessionID string) ([]*model.Deployment, error) {
	db, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, translate("list deployments", err)
	}
	var rows []deploymentRow
	if err := db.Where("session_id = ?", sessionID).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate("list deployments", err)
	}
	out := make([]*model.Deployment, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

package sqlite

import (
	"time"

	"ubot-platform/internal/domain/model"
)

// Timestamps are stored as unix milliseconds so range predicates compare
// integers instead of driver specific time strings.

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func toMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := toMillis(*t)
	return &ms
}

func fromMillisPtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := fromMillis(*ms)
	return &t
}

type ownerRow struct {
	ID        string `gorm:"primaryKey"`
	Username  string `gorm:"not null"`
	CreatedAt int64  `gorm:"autoCreateTime:false;not null"`
}

func (ownerRow) TableName() string { return "users" }

type voucherRow struct {
	ID        string `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	OwnerID   string `gorm:"index:idx_vouchers_owner_created,priority:1;not null"`
	UsedByID  *string
	IsUsed    bool  `gorm:"not null;default:false"`
	CreatedAt int64 `gorm:"autoCreateTime:false;index:idx_vouchers_owner_created,priority:2;not null"`
	UsedAt    *int64
	ExpiresAt int64 `gorm:"not null"`
}

func (voucherRow) TableName() string { return "vouchers" }

func voucherToRow(v *model.Voucher) *voucherRow {
	return &voucherRow{
		ID:        v.ID,
		Code:      v.Code,
		OwnerID:   v.OwnerID,
		UsedByID:  v.UsedByID,
		IsUsed:    v.IsUsed,
		CreatedAt: toMillis(v.CreatedAt),
		UsedAt:    toMillisPtr(v.UsedAt),
		ExpiresAt: toMillis(v.ExpiresAt),
	}
}

func (r *voucherRow) toModel() *model.Voucher {
	return &model.Voucher{
		ID:        r.ID,
		Code:      r.Code,
		OwnerID:   r.OwnerID,
		UsedByID:  r.UsedByID,
		IsUsed:    r.IsUsed,
		CreatedAt: fromMillis(r.CreatedAt),
		UsedAt:    fromMillisPtr(r.UsedAt),
		ExpiresAt: fromMillis(r.ExpiresAt),
	}
}

type sessionRow struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"index;not null"`
	VoucherCode      string `gorm:"not null"`
	Status           string `gorm:"not null;default:pairing"`
	BotName          *string
	PairingCode      *string
	PhoneCipher      string  `gorm:"not null;default:''"`
	QRCode           *string `gorm:"column:qr_code"`
	DeploymentStatus string  `gorm:"not null;default:pending"`
	CreatedAt        int64   `gorm:"autoCreateTime:false;not null"`
	UpdatedAt        int64   `gorm:"autoUpdateTime:false;not null"`
	DeployedAt       *int64
}

func (sessionRow) TableName() string { return "sessions" }

func sessionToRow(s *model.Session) *sessionRow {
	return &sessionRow{
		ID:               s.ID,
		UserID:           s.UserID,
		VoucherCode:      s.VoucherCode,
		Status:           string(s.Status),
		BotName:          s.BotName,
		PairingCode:      s.PairingCode,
		PhoneCipher:      s.PhoneCipher,
		QRCode:           s.QRCode,
		DeploymentStatus: string(s.DeploymentStatus),
		CreatedAt:        toMillis(s.CreatedAt),
		UpdatedAt:        toMillis(s.UpdatedAt),
		DeployedAt:       toMillisPtr(s.DeployedAt),
	}
}

func (r *sessionRow) toModel() *model.Session {
	return &model.Session{
		ID:               r.ID,
		UserID:           r.UserID,
		VoucherCode:      r.VoucherCode,
		Status:           model.SessionStatus(r.Status),
		BotName:          r.BotName,
		PairingCode:      r.PairingCode,
		PhoneCipher:      r.PhoneCipher,
		QRCode:           r.QRCode,
		DeploymentStatus: model.DeploymentStatus(r.DeploymentStatus),
		CreatedAt:        fromMillis(r.CreatedAt),
		UpdatedAt:        fromMillis(r.UpdatedAt),
		DeployedAt:       fromMillisPtr(r.DeployedAt),
	}
}

type featureRow struct {
	SessionID   string `gorm:"primaryKey"`
	FeatureName string `gorm:"primaryKey"`
	IsEnabled   bool   `gorm:"not null"`
	CreatedAt   int64  `gorm:"autoCreateTime:false;not null"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:false;not null"`
}

func (featureRow) TableName() string { return "features" }

func (r *featureRow) toModel() *model.Feature {
	return &model.Feature{
		SessionID: r.SessionID,
		Name:      r.FeatureName,
		Enabled:   r.IsEnabled,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

type deploymentRow struct {
	ID             string `gorm:"primaryKey"`
	SessionID      string `gorm:"index;not null"`
	UserID         string `gorm:"not null"`
	DeploymentType string `gorm:"not null"`
	Status         string `gorm:"not null"`
	Logs           string `gorm:"not null;default:''"`
	CreatedAt      int64  `gorm:"autoCreateTime:false;not null"`
	CompletedAt    *int64
}

func (deploymentRow) TableName() string { return "deployments" }

func (r *deploymentRow) toModel() *model.Deployment {
	return &model.Deployment{
		ID:          r.ID,
		SessionID:   r.SessionID,
		UserID:      r.UserID,
		Type:        r.DeploymentType,
		Status:      model.DeploymentStatus(r.Status),
		Logs:        r.Logs,
		CreatedAt:   fromMillis(r.CreatedAt),
		CompletedAt: fromMillisPtr(r.CompletedAt),
	}
}

package repository

import (
	"context"
	"time"

	"ubot-platform/internal/domain/model"
)

// -----------------------------
// Sessions
// -----------------------------

// SessionRepository persists sessions. Every state change is a conditional
// update whose bool result tells whether the row was in an allowed state.
type SessionRepository interface {
	Create(ctx context.Context, tx Tx, s *model.Session) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Session, error)
	// SetPairing stores the pairing code and moves pairing|pairing_requested -> pairing_requested.
	SetPairing(ctx context.Context, tx Tx, id, pairingCode, phoneCipher string, at time.Time) (bool, error)
	// SetQRCode stores the QR payload while the session is not deployed.
	SetQRCode(ctx context.Context, tx Tx, id, qr string, at time.Time) (bool, error)
	// MarkDeployed moves pairing_requested -> deployed.
	MarkDeployed(ctx context.Context, tx Tx, id, botName string, at time.Time) (bool, error)
}

// -----------------------------
// Features
// -----------------------------

type FeatureRepository interface {
	// Upsert inserts or updates the (SessionID, Name) flag.
	Upsert(ctx context.Context, tx Tx, f *model.Feature) error
	// ListBySession returns the session's flags ordered by name.
	ListBySession(ctx context.Context, tx Tx, sessionID string) ([]*model.Feature, error)
}

// -----------------------------
// Deployments
// -----------------------------

type DeploymentRepository interface {
	Create(ctx context.Context, tx Tx, d *model.Deployment) error
	FindBySession(ctx context.Context, tx Tx, sessionID string) ([]*model.Deployment, error)
}

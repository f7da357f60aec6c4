package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

const DeploymentTypeVPS = "vps"

// Deployment is the audit record written when a session is deployed.
type Deployment struct {
	ID          string // ULID, sortable by creation time
	SessionID   string
	UserID      string
	Type        string
	Status      DeploymentStatus
	Logs        string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func NewDeployment(sessionID, userID string, now time.Time) *Deployment {
	now = now.UTC()
	return &Deployment{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		SessionID: sessionID,
		UserID:    userID,
		Type:      DeploymentTypeVPS,
		Status:    DeploymentStatusInProgress,
		Logs:      "Starting deployment...",
		CreatedAt: now,
	}
}

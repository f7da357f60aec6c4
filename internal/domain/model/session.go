package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusPairing          SessionStatus = "pairing"
	SessionStatusPairingRequested SessionStatus = "pairing_requested"
	SessionStatusDeployed         SessionStatus = "deployed"
)

type DeploymentStatus string

const (
	DeploymentStatusPending    DeploymentStatus = "pending"
	DeploymentStatusInProgress DeploymentStatus = "in_progress"
)

// Session tracks one bot deployment started by redeeming a voucher.
// Status only moves forward: pairing -> pairing_requested -> deployed.
type Session struct {
	ID               string
	UserID           string
	VoucherCode      string
	Status           SessionStatus
	BotName          *string
	PairingCode      *string
	PhoneCipher      string // encrypted phone number; never rendered
	QRCode           *string
	DeploymentStatus DeploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeployedAt       *time.Time
}

func NewSession(userID, voucherCode string, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		VoucherCode:      voucherCode,
		Status:           SessionStatusPairing,
		DeploymentStatus: DeploymentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CanPair reports whether a pairing code may be (re)issued.
func (s *Session) CanPair() bool {
	return s.Status == SessionStatusPairing || s.Status == SessionStatusPairingRequested
}

func (s *Session) CanDeploy() bool { return s.Status == SessionStatusPairingRequested }

// SessionDetails is a session together with its feature flags.
type SessionDetails struct {
	Session
	Features map[string]bool
}

// PairingResult is handed back to the client after a pairing request.
type PairingResult struct {
	SessionID    string
	PairingCode  string
	ExpiresIn    time.Duration
	Instructions string
}

// Feature is a named on/off flag of a session; unique per (SessionID, Name).
type Feature struct {
	SessionID string
	Name      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

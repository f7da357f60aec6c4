package adapter

import (
	"context"
	"time"
)

// PairingProvider issues the short code a user types into the messaging app
// to link the bot. The shipped provider is a placeholder; a real one talks to
// the messaging platform.
type PairingProvider interface {
	Name() string
	PairingCode(ctx context.Context, sessionID, phone string) (string, error)
}

// QRPayload is what the QR image encodes.
type QRPayload struct {
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	Domain    string    `json:"domain"`
}

// QRRenderer turns a payload into an image data URL.
type QRRenderer interface {
	DataURL(p QRPayload) (string, error)
}

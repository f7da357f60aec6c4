package model

import (
	"strings"
	"time"

	"ubot-platform/internal/domain"

	"github.com/google/uuid"
)

// Owner is the principal that issues vouchers. Only the display name is
// consumed by the voucher engine.
type Owner struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

func NewOwner(id, username string) (*Owner, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if strings.TrimSpace(username) == "" {
		return nil, domain.Validationf("username is required")
	}
	return &Owner{ID: id, Username: username, CreatedAt: time.Now().UTC()}, nil
}

func (o *Owner) IsZero() bool { return o == nil || o.ID == "" }

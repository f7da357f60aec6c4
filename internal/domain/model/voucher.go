package model

import (
	"strings"
	"time"

	"ubot-platform/internal/domain"

	"github.com/google/uuid"
)

// MaxCodeLength bounds user supplied codes before they reach the store.
const MaxCodeLength = 64

// Voucher is a single-use, time-limited access credential.
// IsUsed never reverts; expiry is judged against ExpiresAt at read time.
type Voucher struct {
	ID        string
	Code      string
	OwnerID   string
	UsedByID  *string // NULL until redeemed
	IsUsed    bool
	CreatedAt time.Time
	UsedAt    *time.Time // NULL until redeemed
	ExpiresAt time.Time
}

// NewVoucher builds an unused voucher valid for validityDays from now.
// validityDays == 0 yields a voucher that is already expired.
func NewVoucher(code, ownerID string, validityDays int, now time.Time) (*Voucher, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.Validationf("owner id is required")
	}
	if validityDays < 0 {
		return nil, domain.Validationf("validity days must not be negative, got %d", validityDays)
	}
	if code == "" {
		return nil, domain.Validationf("code is required")
	}
	now = now.UTC()
	return &Voucher{
		ID:        uuid.NewString(),
		Code:      code,
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, validityDays),
	}, nil
}

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return "", domain.Validationf("code is required")
	}
	if len(c) > MaxCodeLength {
		return "", domain.Validationf("code is longer than %d characters", MaxCodeLength)
	}
	return c, nil
}

// ExpiredAt reports whether the voucher is past its expiry at now.
func (v *Voucher) ExpiredAt(now time.Time) bool { return !now.Before(v.ExpiresAt) }

// RedeemableAt is the redemption precondition: unused and not yet expired.
func (v *Voucher) RedeemableAt(now time.Time) bool { return !v.IsUsed && !v.ExpiredAt(now) }

// Details derives the inspection view at now.
func (v *Voucher) Details(ownerName string, now time.Time) *VoucherDetails {
	expired := v.ExpiredAt(now)
	return &VoucherDetails{
		Voucher:   *v,
		OwnerName: ownerName,
		IsExpired: expired,
		IsValid:   !v.IsUsed && !expired,
	}
}

func (v *Voucher) Summary() *VoucherSummary {
	return &VoucherSummary{
		ID:        v.ID,
		Code:      v.Code,
		IsUsed:    v.IsUsed,
		CreatedAt: v.CreatedAt,
		UsedAt:    v.UsedAt,
		ExpiresAt: v.ExpiresAt,
	}
}

// IssuedVoucher is what CreateVoucher hands back to the issuer.
type IssuedVoucher struct {
	ID        string
	Code      string
	ExpiresAt time.Time
}

// VoucherDetails is the voucher plus fields derived at call time.
type VoucherDetails struct {
	Voucher
	OwnerName string
	IsExpired bool
	IsValid   bool
}

// VoucherCounts splits stored vouchers by state. Used takes precedence
// over expired.
type VoucherCounts struct {
	Active  int
	Used    int
	Expired int
}

type VoucherSummary struct {
	ID        string
	Code      string
	IsUsed    bool
	CreatedAt time.Time
	UsedAt    *time.Time
	ExpiresAt time.Time
}

// Redemption is the result of a successful Redeem.
type Redemption struct {
	VoucherID string
	Code      string
	UserID    string
	UsedAt    time.Time
}

// BatchFailure records why one item of a batch was not created.
type BatchFailure struct {
	Index int
	Err   error
}

// BatchResult reports a CreateMany call; Total is the requested quantity.
type BatchResult struct {
	Total     int
	Succeeded []*IssuedVoucher
	Failed    []BatchFailure
}

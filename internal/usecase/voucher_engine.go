package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ VoucherEngine = (*voucherEngine)(nil)

// VoucherEngine owns the voucher lifecycle: issue, inspect, redeem.
type VoucherEngine interface {
	GenerateCode() (string, error)
	CreateVoucher(ctx context.Context, ownerID string, validityDays int) (*model.IssuedVoucher, error)
	CreateMany(ctx context.Context, ownerID string, quantity, validityDays int) (*model.BatchResult, error)
	Inspect(ctx context.Context, code string) (*model.VoucherDetails, error)
	Redeem(ctx context.Context, code, userID string) (*model.Redemption, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.VoucherSummary, error)
	ListAll(ctx context.Context) ([]*model.VoucherDetails, error)
}

type EngineOption func(*voucherEngine)

// WithClock replaces the engine clock; tests use it to step past expiry.
func WithClock(now func() time.Time) EngineOption {
	return func(e *voucherEngine) { e.now = now }
}

type voucherEngine struct {
	vouchers repository.VoucherRepository
	owners   repository.OwnerRepository
	codes    *CodeGenerator
	maxBatch int
	now      func() time.Time
	log      *zerolog.Logger
}

func NewVoucherEngine(
	vouchers repository.VoucherRepository,
	owners repository.OwnerRepository,
	codes *CodeGenerator,
	maxBatch int,
	logger *zerolog.Logger,
	opts ...EngineOption,
) *voucherEngine {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	e := &voucherEngine{
		vouchers: vouchers,
		owners:   owners,
		codes:    codes,
		maxBatch: maxBatch,
		now:      time.Now,
		log:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *voucherEngine) GenerateCode() (string, error) {
	return e.codes.Generate()
}

func (e *voucherEngine) CreateVoucher(ctx context.Context, ownerID string, validityDays int) (*model.IssuedVoucher, error) {
	defer logging.TraceDuration(e.log, "VoucherEngine.CreateVoucher")()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.Validationf("owner id is required")
	}
	if validityDays < 0 {
		return nil, domain.Validationf("validity days must not be negative, got %d", validityDays)
	}

	code, err := e.codes.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate voucher code: %w", err)
	}
	v, err := model.NewVoucher(code, ownerID, validityDays, e.now())
	if err != nil {
		return nil, err
	}
	if err := e.vouchers.Create(ctx, repository.NoTX, v); err != nil {
		e.log.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to persist voucher")
		return nil, storeErr("create voucher", err)
	}

	e.log.Info().Str("voucher_id", v.ID).Str("owner_id", ownerID).Time("expires_at", v.ExpiresAt).Msg("voucher issued")
	return &model.IssuedVoucher{ID: v.ID, Code: v.Code, ExpiresAt: v.ExpiresAt}, nil
}

// CreateMany issues vouchers one by one; a failed item is recorded and the
// batch carries on. It is not atomic across items.
func (e *voucherEngine) CreateMany(ctx context.Context, ownerID string, quantity, validityDays int) (*model.BatchResult, error) {
	defer logging.TraceDuration(e.log, "VoucherEngine.CreateMany")()

	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.Validationf("owner id is required")
	}
	if quantity < 1 || quantity > e.maxBatch {
		return nil, domain.Validationf("quantity must be between 1 and %d, got %d", e.maxBatch, quantity)
	}
	if validityDays < 0 {
		return nil, domain.Validationf("validity days must not be negative, got %d", validityDays)
	}

	res := &model.BatchResult{Total: quantity, Succeeded: make([]*model.IssuedVoucher, 0, quantity)}
	for i := 0; i < quantity; i++ {
		iv, err := e.CreateVoucher(ctx, ownerID, validityDays)
		if err != nil {
			res.Failed = append(res.Failed, model.BatchFailure{Index: i, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, iv)
	}

	e.log.Info().Str("owner_id", ownerID).Int("requested", quantity).Int("created", len(res.Succeeded)).
		Int("failed", len(res.Failed)).Msg("voucher batch finished")
	return res, nil
}

func (e *voucherEngine) Inspect(ctx context.Context, code string) (*model.VoucherDetails, error) {
	defer logging.TraceDuration(e.log, "VoucherEngine.Inspect")()

	code, err := model.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	v, err := e.vouchers.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		return nil, storeErr("find voucher", err)
	}
	return v.Details(e.ownerName(ctx, v.OwnerID, nil), e.now()), nil
}

// Redeem marks the voucher used by userID. The used flag is only ever set by
// the store's conditional update, so concurrent callers get exactly one winner.
func (e *voucherEngine) Redeem(ctx context.Context, code, userID string) (*model.Redemption, error) {
	defer logging.TraceDuration(e.log, "VoucherEngine.Redeem")()

	code, err := model.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Validationf("user id is required")
	}

	now := e.now().UTC()
	v, err := e.vouchers.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		return nil, storeErr("find voucher", err)
	}
	// The read settles NotFound and Expired. Whether the voucher is still
	// unused is decided by the conditional update alone.
	if v.ExpiredAt(now) {
		return nil, domain.ErrExpired
	}

	ok, err := e.vouchers.MarkUsed(ctx, repository.NoTX, code, userID, now)
	if err != nil {
		e.log.Error().Err(err).Str("voucher_id", v.ID).Msg("Failed to mark voucher used")
		return nil, storeErr("mark voucher used", err)
	}
	if !ok {
		return nil, e.classifyLostRedeem(ctx, code)
	}

	e.log.Info().Str("voucher_id", v.ID).Str("user_id", userID).Msg("voucher redeemed")
	return &model.Redemption{VoucherID: v.ID, Code: code, UserID: userID, UsedAt: now}, nil
}

// classifyLostRedeem explains why the conditional update matched no row.
func (e *voucherEngine) classifyLostRedeem(ctx context.Context, code string) error {
	cur, err := e.vouchers.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		return storeErr("find voucher", err)
	}
	if cur.IsUsed {
		return domain.ErrAlreadyUsed
	}
	return domain.ErrExpired
}

func (e *voucherEngine) ListByOwner(ctx context.Context, ownerID string) ([]*model.VoucherSummary, error) {
	defer logging.TraceDuration(e.log, "VoucherEngine.ListByOwner")()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.Validationf("owner id is required")
	}
	vs, err := e.vouchers.ListByOwner(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, storeErr("list vouchers", err)
	}
	out := make([]*model.VoucherSummary, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Summary())
	}
	return out, nil
}

func (e *voucherEngine) ListAll(ctx context.Context) ([]*model.VoucherDetails, error) {
	defer logging.TraceDuration(e.log, "VoucherEngine.ListAll")()

	vs, err := e.vouchers.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, storeErr("list vouchers", err)
	}
	now := e.now()
	names := make(map[string]string)
	out := make([]*model.VoucherDetails, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Details(e.ownerName(ctx, v.OwnerID, names), now))
	}
	return out, nil
}

// ownerName resolves a display name; lookup failures degrade to "".
func (e *voucherEngine) ownerName(ctx context.Context, ownerID string, memo map[string]string) string {
	if e.owners == nil {
		return ""
	}
	if name, ok := memo[ownerID]; ok {
		return name
	}
	var name string
	o, err := e.owners.FindByID(ctx, repository.NoTX, ownerID)
	switch {
	case err == nil && o != nil:
		name = o.Username
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		e.log.Warn().Err(err).Str("owner_id", ownerID).Msg("owner lookup failed")
	}
	if memo != nil {
		memo[ownerID] = name
	}
	return name
}

// storeErr keeps domain kinds and wraps anything else a store returned as a
// PersistenceError.
func storeErr(op string, err error) error {
	if domain.Kind(err) != "internal" {
		return err
	}
	return domain.Persistence(op, err)
}

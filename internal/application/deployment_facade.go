package application

import (
	"context"
	"errors"
	"fmt"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/infra/metrics"
	"ubot-platform/internal/usecase"

	"github.com/rs/zerolog"
)

// DeploymentFacade composes the voucher engine and the session linker into
// the operations the HTTP API and the CLI expose. Metrics are recorded here
// so the usecases stay free of infrastructure.
type DeploymentFacade struct {
	Vouchers usecase.VoucherEngine
	Sessions usecase.SessionLinker
	Owners   usecase.OwnerUseCase
	log      *zerolog.Logger
}

// NewDeploymentFacade wires the facade. owners may be nil when the caller
// never registers issuers.
func NewDeploymentFacade(vouchers usecase.VoucherEngine, sessions usecase.SessionLinker, owners usecase.OwnerUseCase, logger *zerolog.Logger) *DeploymentFacade {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &DeploymentFacade{Vouchers: vouchers, Sessions: sessions, Owners: owners, log: logger}
}

// IssueVoucher creates one voucher for ownerID.
func (f *DeploymentFacade) IssueVoucher(ctx context.Context, ownerID string, validityDays int) (*model.IssuedVoucher, error) {
	iv, err := f.Vouchers.CreateVoucher(ctx, ownerID, validityDays)
	if err != nil {
		metrics.IncVoucherIssued(domain.Kind(err), 1)
		return nil, err
	}
	metrics.IncVoucherIssued("ok", 1)
	return iv, nil
}

// IssueBatch creates quantity vouchers; per-item failures are in the result.
func (f *DeploymentFacade) IssueBatch(ctx context.Context, ownerID string, quantity, validityDays int) (*model.BatchResult, error) {
	res, err := f.Vouchers.CreateMany(ctx, ownerID, quantity, validityDays)
	if err != nil {
		metrics.IncVoucherIssued(domain.Kind(err), 0)
		return nil, err
	}
	metrics.ObserveBatch(quantity)
	metrics.IncVoucherIssued("ok", len(res.Succeeded))
	for _, fl := range res.Failed {
		metrics.IncVoucherIssued(domain.Kind(fl.Err), 1)
	}
	return res, nil
}

// CheckVoucher inspects a code without changing it.
func (f *DeploymentFacade) CheckVoucher(ctx context.Context, code string) (*model.VoucherDetails, error) {
	return f.Vouchers.Inspect(ctx, code)
}

// ValidateVoucher redeems code for userID and opens the deployment session
// that redemption unlocks. It returns the new session id.
func (f *DeploymentFacade) ValidateVoucher(ctx context.Context, code, userID string) (string, error) {
	_, sessionID, err := f.RedeemAndLink(ctx, code, userID)
	return sessionID, err
}

// RedeemAndLink is ValidateVoucher returning the redemption record as well.
func (f *DeploymentFacade) RedeemAndLink(ctx context.Context, code, userID string) (*model.Redemption, string, error) {
	red, err := f.Vouchers.Redeem(ctx, code, userID)
	metrics.IncRedemption(domain.Kind(err))
	if err != nil {
		return nil, "", err
	}

	sessionID, err := f.Sessions.CreateSession(ctx, red.UserID, red.Code)
	metrics.IncSessionTransition(model.SessionStatusPairing, domain.Kind(err))
	if err != nil {
		// The voucher stays consumed; the operator has to reissue.
		f.log.Error().Err(err).Str("code", red.Code).Str("user_id", red.UserID).Msg("Failed to open session for redeemed voucher")
		return red, "", fmt.Errorf("open session: %w", err)
	}
	return red, sessionID, nil
}

func (f *DeploymentFacade) VouchersByOwner(ctx context.Context, ownerID string) ([]*model.VoucherSummary, error) {
	return f.Vouchers.ListByOwner(ctx, ownerID)
}

func (f *DeploymentFacade) AllVouchers(ctx context.Context) ([]*model.VoucherDetails, error) {
	return f.Vouchers.ListAll(ctx)
}

func (f *DeploymentFacade) Session(ctx context.Context, sessionID string) (*model.SessionDetails, error) {
	return f.Sessions.GetSession(ctx, sessionID)
}

func (f *DeploymentFacade) RequestPairing(ctx context.Context, sessionID, phone string) (*model.PairingResult, error) {
	res, err := f.Sessions.RequestPairing(ctx, sessionID, phone)
	metrics.IncSessionTransition(model.SessionStatusPairingRequested, domain.Kind(err))
	return res, err
}

func (f *DeploymentFacade) IssueQR(ctx context.Context, sessionID string) (string, error) {
	return f.Sessions.IssueQR(ctx, sessionID)
}

func (f *DeploymentFacade) Deploy(ctx context.Context, sessionID, botName string, features map[string]bool) (*model.Deployment, error) {
	d, err := f.Sessions.Deploy(ctx, sessionID, botName, features)
	metrics.IncSessionTransition(model.SessionStatusDeployed, domain.Kind(err))
	return d, err
}

func (f *DeploymentFacade) ToggleFeature(ctx context.Context, sessionID, name string, enabled bool) error {
	return f.Sessions.SetFeature(ctx, sessionID, name, enabled)
}

func (f *DeploymentFacade) Features(ctx context.Context, sessionID string) ([]*model.Feature, error) {
	return f.Sessions.ListFeatures(ctx, sessionID)
}

// EnsureOwner registers the issuer shown on inspected vouchers.
func (f *DeploymentFacade) EnsureOwner(ctx context.Context, id, username string) (*model.Owner, error) {
	if f.Owners == nil {
		return nil, errors.New("owner usecase not available")
	}
	return f.Owners.RegisterOrFetch(ctx, id, username)
}

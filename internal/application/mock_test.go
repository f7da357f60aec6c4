//go:build !integration

package application_test

import (
	"context"
	"time"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
)

// mockEngine implements usecase.VoucherEngine; unset funcs return zero values.
type mockEngine struct {
	createFunc  func(ownerID string, days int) (*model.IssuedVoucher, error)
	batchFunc   func(ownerID string, qty, days int) (*model.BatchResult, error)
	inspectFunc func(code string) (*model.VoucherDetails, error)
	redeemFunc  func(code, userID string) (*model.Redemption, error)
	byOwner     []*model.VoucherSummary
	all         []*model.VoucherDetails
}

func (m *mockEngine) GenerateCode() (string, error) { return "UBOT-TEST-AAAA-AAAA", nil }

func (m *mockEngine) CreateVoucher(_ context.Context, ownerID string, days int) (*model.IssuedVoucher, error) {
	if m.createFunc != nil {
		return m.createFunc(ownerID, days)
	}
	return &model.IssuedVoucher{ID: "v1", Code: "UBOT-TEST-AAAA-AAAA"}, nil
}

func (m *mockEngine) CreateMany(_ context.Context, ownerID string, qty, days int) (*model.BatchResult, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ownerID, qty, days)
	}
	return &model.BatchResult{Total: qty}, nil
}

func (m *mockEngine) Inspect(_ context.Context, code string) (*model.VoucherDetails, error) {
	if m.inspectFunc != nil {
		return m.inspectFunc(code)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEngine) Redeem(_ context.Context, code, userID string) (*model.Redemption, error) {
	if m.redeemFunc != nil {
		return m.redeemFunc(code, userID)
	}
	return &model.Redemption{VoucherID: "v1", Code: code, UserID: userID, UsedAt: time.Now()}, nil
}

func (m *mockEngine) ListByOwner(context.Context, string) ([]*model.VoucherSummary, error) {
	return m.byOwner, nil
}

func (m *mockEngine) ListAll(context.Context) ([]*model.VoucherDetails, error) { return m.all, nil }

// mockLinker implements usecase.SessionLinker.
type mockLinker struct {
	createErr  error
	created    []string // "userID/code"
	deployErr  error
	toggled    map[string]bool
	pairingErr error
}

func (m *mockLinker) CreateSession(_ context.Context, userID, code string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, userID+"/"+code)
	return "sess-1", nil
}

func (m *mockLinker) GetSession(_ context.Context, id string) (*model.SessionDetails, error) {
	if id != "sess-1" {
		return nil, domain.ErrNotFound
	}
	return &model.SessionDetails{Session: model.Session{ID: id, Status: model.SessionStatusPairing}}, nil
}

func (m *mockLinker) RequestPairing(_ context.Context, id, _ string) (*model.PairingResult, error) {
	if m.pairingErr != nil {
		return nil, m.pairingErr
	}
	return &model.PairingResult{SessionID: id, PairingCode: "123456", ExpiresIn: 5 * time.Minute}, nil
}

func (m *mockLinker) IssueQR(context.Context, string) (string, error) {
	return "data:image/png;base64,AA", nil
}

func (m *mockLinker) Deploy(_ context.Context, id, _ string, _ map[string]bool) (*model.Deployment, error) {
	if m.deployErr != nil {
		return nil, m.deployErr
	}
	return &model.Deployment{ID: "dep-1", SessionID: id}, nil
}

func (m *mockLinker) SetFeature(_ context.Context, _ string, name string, enabled bool) error {
	if m.toggled == nil {
		m.toggled = map[string]bool{}
	}
	m.toggled[name] = enabled
	return nil
}

func (m *mockLinker) ListFeatures(context.Context, string) ([]*model.Feature, error) {
	return nil, nil
}

// mockOwners implements usecase.OwnerUseCase.
type mockOwners struct{ registered []string }

func (m *mockOwners) RegisterOrFetch(_ context.Context, id, username string) (*model.Owner, error) {
	m.registered = append(m.registered, id)
	return &model.Owner{ID: id, Username: username}, nil
}

func (m *mockOwners) Get(_ context.Context, id string) (*model.Owner, error) {
	return &model.Owner{ID: id}, nil
}

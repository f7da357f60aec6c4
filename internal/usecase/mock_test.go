//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/adapter"
	"ubot-platform/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// testClock is a manually advanced clock shared by engine and linker.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// =============================
// Adapters
// =============================

// ---- Mock PairingProvider ----

type MockPairing struct {
	mu    sync.Mutex
	Calls int
	Code  string
	Err   error
}

var _ adapter.PairingProvider = (*MockPairing)(nil)

func (m *MockPairing) Name() string { return "mock" }

func (m *MockPairing) PairingCode(ctx context.Context, sessionID, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if m.Code != "" {
		return m.Code, nil
	}
	return "123456", nil
}

// ---- Mock QRRenderer ----

type MockQR struct {
	Last adapter.QRPayload
	Err  error
}

var _ adapter.QRRenderer = (*MockQR)(nil)

func (m *MockQR) DataURL(p adapter.QRPayload) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Last = p
	return "data:image/png;base64,UVI=" + p.SessionID, nil
}

// ---- Mock Cipher ----

type MockCipher struct{}

var _ adapter.Cipher = MockCipher{}

func (MockCipher) Encrypt(s string) (string, error) { return "enc:" + s, nil }
func (MockCipher) Decrypt(s string) (string, error) { return s[len("enc:"):], nil }

// =============================
// Repositories
// =============================

// ---- Mock VoucherRepository ----

// MockVoucherRepo keeps vouchers in memory. MarkUsed checks and flips the
// flag under one lock, the same guarantee the SQL conditional update gives.
type MockVoucherRepo struct {
	mu     sync.Mutex
	byCode map[string]*model.Voucher

	CreateFunc     func(ctx context.Context, tx repository.Tx, v *model.Voucher) error
	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error)
	MarkUsedFunc   func(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (bool, error)
	MarkUsedCalls  int
}

var _ repository.VoucherRepository = (*MockVoucherRepo)(nil)

func NewMockVoucherRepo() *MockVoucherRepo {
	return &MockVoucherRepo{byCode: map[string]*model.Voucher{}}
}

func (r *MockVoucherRepo) Create(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[v.Code]; ok {
		return domain.Persistence("insert voucher", domain.ErrAlreadyExists)
	}
	cp := *v
	r.byCode[v.Code] = &cp
	return nil
}

func (r *MockVoucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *MockVoucherRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (bool, error) {
	r.mu.Lock()
	r.MarkUsedCalls++
	r.mu.Unlock()
	if r.MarkUsedFunc != nil {
		return r.MarkUsedFunc(ctx, tx, code, userID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byCode[code]
	if !ok || v.IsUsed || !at.Before(v.ExpiresAt) {
		return false, nil
	}
	uid, ts := userID, at
	v.IsUsed, v.UsedByID, v.UsedAt = true, &uid, &ts
	return true, nil
}

func (r *MockVoucherRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Voucher, error) {
	return r.list(func(v *model.Voucher) bool { return v.OwnerID == ownerID }), nil
}

func (r *MockVoucherRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Voucher, error) {
	return r.list(func(*model.Voucher) bool { return true }), nil
}

func (r *MockVoucherRepo) CountByState(ctx context.Context, tx repository.Tx, now time.Time) (model.VoucherCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c model.VoucherCounts
	for _, v := range r.byCode {
		switch {
		case v.IsUsed:
			c.Used++
		case v.ExpiredAt(now):
			c.Expired++
		default:
			c.Active++
		}
	}
	return c, nil
}

func (r *MockVoucherRepo) list(keep func(*model.Voucher) bool) []*model.Voucher {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Voucher, 0)
	for _, v := range r.byCode {
		if keep(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code > out[j].Code
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// seed stores v as is, bypassing Create.
func (r *MockVoucherRepo) seed(v *model.Voucher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.byCode[v.Code] = &cp
}

// ---- Mock OwnerRepository ----

type MockOwnerRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Owner

	SaveFunc     func(ctx context.Context, tx repository.Tx, o *model.Owner) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Owner, error)
}

var _ repository.OwnerRepository = (*MockOwnerRepo)(nil)

func NewMockOwnerRepo() *MockOwnerRepo {
	return &MockOwnerRepo{byID: map[string]*model.Owner{}}
}

func (r *MockOwnerRepo) Save(ctx context.Context, tx repository.Tx, o *model.Owner) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, o)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.byID[o.ID] = &cp
	return nil
}

func (r *MockOwnerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Owner, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.byID[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock SessionRepository ----

type MockSessionRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Session

	CreateFunc       func(ctx context.Context, tx repository.Tx, s *model.Session) error
	MarkDeployedFunc func(ctx context.Context, tx repository.Tx, id, botName string, at time.Time) (bool, error)
}

var _ repository.SessionRepository = (*MockSessionRepo)(nil)

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{byID: map[string]*model.Session{}}
}

func (r *MockSessionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Session) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; ok {
		return domain.Persistence("insert session", domain.ErrAlreadyExists)
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MockSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSessionRepo) SetPairing(ctx context.Context, tx repository.Tx, id, pairingCode, phoneCipher string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || !s.CanPair() {
		return false, nil
	}
	code := pairingCode
	s.PairingCode, s.PhoneCipher, s.Status, s.UpdatedAt = &code, phoneCipher, model.SessionStatusPairingRequested, at
	return true, nil
}

func (r *MockSessionRepo) SetQRCode(ctx context.Context, tx repository.Tx, id, qr string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || s.Status == model.SessionStatusDeployed {
		return false, nil
	}
	q := qr
	s.QRCode, s.UpdatedAt = &q, at
	return true, nil
}

func (r *MockSessionRepo) MarkDeployed(ctx context.Context, tx repository.Tx, id, botName string, at time.Time) (bool, error) {
	if r.MarkDeployedFunc != nil {
		return r.MarkDeployedFunc(ctx, tx, id, botName, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || !s.CanDeploy() {
		return false, nil
	}
	name, ts := botName, at
	s.BotName, s.DeployedAt, s.UpdatedAt = &name, &ts, at
	s.Status, s.DeploymentStatus = model.SessionStatusDeployed, model.DeploymentStatusInProgress
	return true, nil
}

// ---- Mock FeatureRepository ----

type MockFeatureRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Feature // key: sessionID + "/" + name

	UpsertFunc func(ctx context.Context, tx repository.Tx, f *model.Feature) error
}

var _ repository.FeatureRepository = (*MockFeatureRepo)(nil)

func NewMockFeatureRepo() *MockFeatureRepo {
	return &MockFeatureRepo{rows: map[string]*model.Feature{}}
}

func (r *MockFeatureRepo) Upsert(ctx context.Context, tx repository.Tx, f *model.Feature) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, f)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := f.SessionID + "/" + f.Name
	if cur, ok := r.rows[key]; ok {
		cur.Enabled, cur.UpdatedAt = f.Enabled, f.UpdatedAt
		return nil
	}
	cp := *f
	r.rows[key] = &cp
	return nil
}

func (r *MockFeatureRepo) ListBySession(ctx context.Context, tx repository.Tx, sessionID string) ([]*model.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Feature, 0)
	for _, f := range r.rows {
		if f.SessionID == sessionID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MockFeatureRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// ---- Mock DeploymentRepository ----

type MockDeploymentRepo struct {
	mu   sync.Mutex
	rows []*model.Deployment
}

var _ repository.DeploymentRepository = (*MockDeploymentRepo)(nil)

func NewMockDeploymentRepo() *MockDeploymentRepo { return &MockDeploymentRepo{} }

func (r *MockDeploymentRepo) Create(ctx context.Context, tx repository.Tx, d *model.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockDeploymentRepo) FindBySession(ctx context.Context, tx repository.Tx, sessionID string) ([]*model.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Deployment
	for _, d := range r.rows {
		if d.SessionID == sessionID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

// =============================
// Transactions
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error
	Calls      int
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return fn(ctx, repository.NoTX)
}

// errStore is a driver-level failure that is not a domain error yet.
var errStore = fmt.Errorf("connection reset by peer")

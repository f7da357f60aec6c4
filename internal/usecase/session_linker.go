package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/adapter"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SessionLinker = (*sessionLinker)(nil)

const pairingInstructions = "Open the messaging app, go to Linked Devices > Link with phone number and enter this code."

// SessionLinker drives a deployment session after its voucher was redeemed.
type SessionLinker interface {
	CreateSession(ctx context.Context, userID, voucherCode string) (string, error)
	GetSession(ctx context.Context, sessionID string) (*model.SessionDetails, error)
	RequestPairing(ctx context.Context, sessionID, phone string) (*model.PairingResult, error)
	IssueQR(ctx context.Context, sessionID string) (string, error)
	Deploy(ctx context.Context, sessionID, botName string, features map[string]bool) (*model.Deployment, error)
	SetFeature(ctx context.Context, sessionID, featureName string, enabled bool) error
	ListFeatures(ctx context.Context, sessionID string) ([]*model.Feature, error)
}

// LinkerConfig holds the pairing knobs.
type LinkerConfig struct {
	Domain  string        // embedded in the QR payload
	CodeTTL time.Duration // advertised pairing code lifetime
}

type LinkerOption func(*sessionLinker)

func WithLinkerClock(now func() time.Time) LinkerOption {
	return func(l *sessionLinker) { l.now = now }
}

// WithCipher enables storing the submitted phone number encrypted.
func WithCipher(c adapter.Cipher) LinkerOption {
	return func(l *sessionLinker) { l.cipher = c }
}

type sessionLinker struct {
	sessions    repository.SessionRepository
	features    repository.FeatureRepository
	deployments repository.DeploymentRepository
	tm          repository.TransactionManager
	pairing     adapter.PairingProvider
	qr          adapter.QRRenderer
	cipher      adapter.Cipher
	cfg         LinkerConfig
	now         func() time.Time
	log         *zerolog.Logger
}

func NewSessionLinker(
	sessions repository.SessionRepository,
	features repository.FeatureRepository,
	deployments repository.DeploymentRepository,
	tm repository.TransactionManager,
	pairing adapter.PairingProvider,
	qr adapter.QRRenderer,
	cfg LinkerConfig,
	logger *zerolog.Logger,
	opts ...LinkerOption,
) *sessionLinker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 5 * time.Minute
	}
	l := &sessionLinker{
		sessions:    sessions,
		features:    features,
		deployments: deployments,
		tm:          tm,
		pairing:     pairing,
		qr:          qr,
		cfg:         cfg,
		now:         time.Now,
		log:         logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateSession trusts its input: it is only called after a successful Redeem.
func (l *sessionLinker) CreateSession(ctx context.Context, userID, voucherCode string) (string, error) {
	defer logging.TraceDuration(l.log, "SessionLinker.CreateSession")()

	s := model.NewSession(userID, voucherCode, l.now())
	if err := l.sessions.Create(ctx, repository.NoTX, s); err != nil {
		l.log.Error().Err(err).Str("user_id", userID).Msg("Failed to create session")
		return "", storeErr("create session", err)
	}
	l.log.Info().Str("session_id", s.ID).Str("user_id", userID).Msg("session created")
	return s.ID, nil
}

func (l *sessionLinker) GetSession(ctx context.Context, sessionID string) (*model.SessionDetails, error) {
	defer logging.TraceDuration(l.log, "SessionLinker.GetSession")()

	s, err := l.findSession(ctx, repository.NoTX, sessionID)
	if err != nil {
		return nil, err
	}
	fs, err := l.features.ListBySession(ctx, repository.NoTX, s.ID)
	if err != nil {
		return nil, storeErr("list features", err)
	}
	flags := make(map[string]bool, len(fs))
	for _, f := range fs {
		flags[f.Name] = f.Enabled
	}
	return &model.SessionDetails{Session: *s, Features: flags}, nil
}

func (l *sessionLinker) RequestPairing(ctx context.Context, sessionID, phone string) (*model.PairingResult, error) {
	defer logging.TraceDuration(l.log, "SessionLinker.RequestPairing")()

	digits := digitsOnly(phone)
	if len(digits) < 10 || len(digits) > 15 {
		return nil, domain.Validationf("phone number must have 10 to 15 digits, got %d", len(digits))
	}
	s, err := l.findSession(ctx, repository.NoTX, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.CanPair() {
		return nil, fmt.Errorf("%w: cannot pair a %s session", domain.ErrInvalidTransition, s.Status)
	}

	code, err := l.pairing.PairingCode(ctx, s.ID, digits)
	if err != nil {
		return nil, fmt.Errorf("pairing provider %s: %w", l.pairing.Name(), err)
	}
	var phoneCipher string
	if l.cipher != nil {
		if phoneCipher, err = l.cipher.Encrypt(digits); err != nil {
			return nil, fmt.Errorf("encrypt phone: %w", err)
		}
	}

	ok, err := l.sessions.SetPairing(ctx, repository.NoTX, s.ID, code, phoneCipher, l.now())
	if err != nil {
		return nil, storeErr("set pairing", err)
	}
	if !ok {
		return nil, l.transitionErr(ctx, repository.NoTX, s.ID, "pair")
	}

	l.log.Info().Str("session_id", s.ID).Str("provider", l.pairing.Name()).Msg("pairing code issued")
	return &model.PairingResult{
		SessionID:    s.ID,
		PairingCode:  code,
		ExpiresIn:    l.cfg.CodeTTL,
		Instructions: pairingInstructions,
	}, nil
}

// IssueQR renders the pairing payload and stores it on the session.
func (l *sessionLinker) IssueQR(ctx context.Context, sessionID string) (string, error) {
	defer logging.TraceDuration(l.log, "SessionLinker.IssueQR")()

	s, err := l.findSession(ctx, repository.NoTX, sessionID)
	if err != nil {
		return "", err
	}
	if s.Status == model.SessionStatusDeployed {
		return "", fmt.Errorf("%w: session is already deployed", domain.ErrInvalidTransition)
	}

	now := l.now().UTC()
	dataURL, err := l.qr.DataURL(adapter.QRPayload{SessionID: s.ID, Timestamp: now, Domain: l.cfg.Domain})
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	ok, err := l.sessions.SetQRCode(ctx, repository.NoTX, s.ID, dataURL, now)
	if err != nil {
		return "", storeErr("set qr code", err)
	}
	if !ok {
		return "", l.transitionErr(ctx, repository.NoTX, s.ID, "issue a qr code for")
	}
	return dataURL, nil
}

// Deploy moves pairing_requested -> deployed, stores the feature flags and
// writes a deployment record in one transaction. A second Deploy is rejected.
func (l *sessionLinker) Deploy(ctx context.Context, sessionID, botName string, features map[string]bool) (*model.Deployment, error) {
	defer logging.TraceDuration(l.log, "SessionLinker.Deploy")()

	botName = strings.TrimSpace(botName)
	if botName == "" {
		return nil, domain.Validationf("bot name is required")
	}
	names := make([]string, 0, len(features))
	for name := range features {
		if strings.TrimSpace(name) == "" {
			return nil, domain.Validationf("feature name is required")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var dep *model.Deployment
	err := l.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		s, err := l.findSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !s.CanDeploy() {
			return fmt.Errorf("%w: cannot deploy a %s session", domain.ErrInvalidTransition, s.Status)
		}

		now := l.now().UTC()
		ok, err := l.sessions.MarkDeployed(ctx, tx, s.ID, botName, now)
		if err != nil {
			return storeErr("mark deployed", err)
		}
		if !ok {
			return l.transitionErr(ctx, tx, s.ID, "deploy")
		}
		for _, name := range names {
			f := &model.Feature{SessionID: s.ID, Name: strings.TrimSpace(name), Enabled: features[name], CreatedAt: now, UpdatedAt: now}
			if err := l.features.Upsert(ctx, tx, f); err != nil {
				return storeErr("upsert feature", err)
			}
		}
		d := model.NewDeployment(s.ID, s.UserID, now)
		if err := l.deployments.Create(ctx, tx, d); err != nil {
			return storeErr("create deployment", err)
		}
		dep = d
		return nil
	})
	if err != nil {
		l.log.Warn().Err(err).Str("session_id", sessionID).Str("kind", domain.Kind(err)).Msg("deploy rejected")
		return nil, err
	}

	l.log.Info().Str("session_id", sessionID).Str("deployment_id", dep.ID).Str("bot_name", botName).Msg("deployment started")
	return dep, nil
}

func (l *sessionLinker) SetFeature(ctx context.Context, sessionID, featureName string, enabled bool) error {
	defer logging.TraceDuration(l.log, "SessionLinker.SetFeature")()

	featureName = strings.TrimSpace(featureName)
	if featureName == "" {
		return domain.Validationf("feature name is required")
	}
	s, err := l.findSession(ctx, repository.NoTX, sessionID)
	if err != nil {
		return err
	}
	now := l.now().UTC()
	f := &model.Feature{SessionID: s.ID, Name: featureName, Enabled: enabled, CreatedAt: now, UpdatedAt: now}
	if err := l.features.Upsert(ctx, repository.NoTX, f); err != nil {
		return storeErr("upsert feature", err)
	}
	return nil
}

func (l *sessionLinker) ListFeatures(ctx context.Context, sessionID string) ([]*model.Feature, error) {
	defer logging.TraceDuration(l.log, "SessionLinker.ListFeatures")()

	s, err := l.findSession(ctx, repository.NoTX, sessionID)
	if err != nil {
		return nil, err
	}
	fs, err := l.features.ListBySession(ctx, repository.NoTX, s.ID)
	if err != nil {
		return nil, storeErr("list features", err)
	}
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	return fs, nil
}

func (l *sessionLinker) findSession(ctx context.Context, tx repository.Tx, sessionID string) (*model.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.Validationf("session id is required")
	}
	s, err := l.sessions.FindByID(ctx, tx, sessionID)
	if err != nil {
		return nil, storeErr("find session", err)
	}
	return s, nil
}

// transitionErr explains a conditional update that matched no row.
func (l *sessionLinker) transitionErr(ctx context.Context, tx repository.Tx, sessionID, action string) error {
	s, err := l.findSession(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: cannot %s a %s session", domain.ErrInvalidTransition, action, s.Status)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

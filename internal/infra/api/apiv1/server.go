package apiv1

import (
	"net/http"
	"time"

	"ubot-platform/internal/application"
	"ubot-platform/internal/infra/worker"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Submitter queues background work; *worker.Pool satisfies it.
type Submitter interface {
	Submit(name string, task worker.Task) error
}

// Options tunes request handling. Zero values fall back to the defaults
// used by the CLI.
type Options struct {
	AdminKey            string
	DefaultValidityDays int
	ServiceName         string
	Dev                 bool
}

// Server implements the /api and /admin handlers on top of the facade.
type Server struct {
	app  *application.DeploymentFacade
	jobs Submitter
	opts Options
	now  func() time.Time
	log  *zerolog.Logger
}

// NewServer wires the handlers. jobs may be nil, in which case async admin
// batches are refused with 503.
func NewServer(app *application.DeploymentFacade, jobs Submitter, opts Options, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.DefaultValidityDays <= 0 {
		opts.DefaultValidityDays = 30
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "ubot deployment platform"
	}
	return &Server{app: app, jobs: jobs, opts: opts, now: time.Now, log: logger}
}

// RegisterAPIV1 mounts every route on r with absolute paths.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Get("/health", s.health)

	r.Route("/api/vouchers", func(r chi.Router) {
		r.Post("/check", s.checkVoucher)
		r.Get("/owner/{ownerId}", s.vouchersByOwner)
		r.Get("/all", s.allVouchers)
	})

	r.Route("/api/deployment", func(r chi.Router) {
		r.Post("/validate-voucher", s.validateVoucher)
		r.Post("/generate-qr", s.generateQR)
		r.Post("/get-pairing-code", s.pairingCode)
		r.Get("/session/{id}", s.session)
		r.Get("/session/{id}/features", s.features)
		r.Post("/deploy", s.deploy)
		r.Post("/toggle-feature", s.toggleFeature)
	})

	r.Post("/admin/generate-vouchers", s.generateVouchers)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   s.opts.ServiceName,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

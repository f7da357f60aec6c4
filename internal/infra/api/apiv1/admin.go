package apiv1

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/infra/logging"
	"ubot-platform/internal/infra/metrics"
	"ubot-platform/internal/infra/worker"
)

type generateVouchersRequest struct {
	Key           string `json:"key"`
	OwnerID       string `json:"ownerId"`
	Quantity      int    `json:"quantity"`
	ExpiresInDays int    `json:"expiresInDays"`
	Async         bool   `json:"async"`
}

// authorized compares key with the configured admin key in constant time.
// An unset admin key locks the admin surface.
func (s *Server) authorized(key string) bool {
	if s.opts.AdminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.AdminKey)) == 1
}

func (s *Server) denyAdmin(w http.ResponseWriter, endpoint string) {
	metrics.IncAdminRequest(endpoint, "unauthorized")
	fail(w, http.StatusForbidden, "Invalid admin key")
}

func (s *Server) generateVouchers(w http.ResponseWriter, r *http.Request) {
	var req generateVouchersRequest
	if !decode(w, r, &req) {
		return
	}
	if !s.authorized(req.Key) {
		s.denyAdmin(w, "generate_vouchers")
		return
	}
	metrics.IncAdminRequest("generate_vouchers", "authorized")

	if strings.TrimSpace(req.OwnerID) == "" {
		fail(w, http.StatusBadRequest, "Owner ID is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.ExpiresInDays == 0 {
		req.ExpiresInDays = s.opts.DefaultValidityDays
	}

	if req.Async {
		s.generateAsync(w, r, req)
		return
	}

	res, err := s.app.IssueBatch(r.Context(), req.OwnerID, req.Quantity, req.ExpiresInDays)
	if err != nil {
		s.failErr(w, r, err, "Owner not found")
		return
	}
	codes := make([]string, 0, len(res.Succeeded))
	for _, v := range res.Succeeded {
		codes = append(codes, v.Code)
	}
	ok(w, envelope{
		"quantity": res.Total,
		"created":  len(res.Succeeded),
		"failed":   len(res.Failed),
		"vouchers": codes,
	})
}

// generateAsync queues the batch and answers immediately.
func (s *Server) generateAsync(w http.ResponseWriter, r *http.Request, req generateVouchersRequest) {
	if s.jobs == nil {
		fail(w, http.StatusServiceUnavailable, "Background generation is not available")
		return
	}
	traceID := logging.TraceIDFrom(r.Context())
	err := s.jobs.Submit("voucher_batch", func(ctx context.Context) error {
		ctx = logging.WithTraceID(ctx, traceID)
		res, err := s.app.IssueBatch(ctx, req.OwnerID, req.Quantity, req.ExpiresInDays)
		metrics.IncBackgroundJob("voucher_batch", domain.Kind(err))
		if err != nil {
			return err
		}
		l := logging.With(ctx, s.log)
		l.Info().Str("owner_id", req.OwnerID).Int("created", len(res.Succeeded)).
			Int("failed", len(res.Failed)).Msg("vouchers generated")
		return nil
	})
	if errors.Is(err, worker.ErrQueueFull) {
		metrics.IncBackgroundJob("voucher_batch", "rejected")
		fail(w, http.StatusServiceUnavailable, "Generation queue is full, please retry later")
		return
	}
	if errors.Is(err, worker.ErrStopped) {
		metrics.IncBackgroundJob("voucher_batch", "rejected")
		fail(w, http.StatusServiceUnavailable, "Server is shutting down, please retry later")
		return
	}
	if err != nil {
		s.failErr(w, r, err, "")
		return
	}
	metrics.IncBackgroundJob("voucher_batch", "queued")
	writeJSON(w, http.StatusAccepted, envelope{
		"success":  true,
		"message":  "Voucher generation started",
		"quantity": req.Quantity,
	})
}

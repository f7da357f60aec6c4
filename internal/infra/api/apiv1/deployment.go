package apiv1

import (
	"net/http"
	"strings"
	"time"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

type validateVoucherRequest struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type pairingRequest struct {
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
}

type deployRequest struct {
	SessionID string          `json:"sessionId"`
	BotName   string          `json:"botName"`
	Features  map[string]bool `json:"features"`
}

type toggleFeatureRequest struct {
	SessionID   string `json:"sessionId"`
	FeatureName string `json:"featureName"`
	Enabled     *bool  `json:"enabled"`
}

type sessionView struct {
	ID               string          `json:"sessionId"`
	UserID           string          `json:"userId"`
	VoucherCode      string          `json:"voucherCode"`
	Status           string          `json:"status"`
	BotName          *string         `json:"botName,omitempty"`
	HasPairingCode   bool            `json:"hasPairingCode"`
	QRCode           *string         `json:"qrCode,omitempty"`
	DeploymentStatus string          `json:"deploymentStatus"`
	Features         map[string]bool `json:"features"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeployedAt       *time.Time      `json:"deployedAt,omitempty"`
}

func toSessionView(d *model.SessionDetails) sessionView {
	return sessionView{
		ID:               d.ID,
		UserID:           d.UserID,
		VoucherCode:      d.VoucherCode,
		Status:           string(d.Status),
		BotName:          d.BotName,
		HasPairingCode:   d.PairingCode != nil,
		QRCode:           d.QRCode,
		DeploymentStatus: string(d.DeploymentStatus),
		Features:         d.Features,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		DeployedAt:       d.DeployedAt,
	}
}

func (s *Server) validateVoucher(w http.ResponseWriter, r *http.Request) {
	var req validateVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.UserID) == "" {
		fail(w, http.StatusBadRequest, "Code and userId are required")
		return
	}

	ctx := logging.WithUserID(r.Context(), req.UserID)
	sessionID, err := s.app.ValidateVoucher(ctx, req.Code, req.UserID)
	if err != nil {
		s.failErr(w, r.WithContext(ctx), err, "Voucher not found")
		return
	}
	l := logging.With(logging.WithSessID(ctx, sessionID), s.log)
	l.Info().Str("code", logging.Redact(req.Code, s.opts.Dev)).Msg("voucher validated")
	ok(w, envelope{"sessionId": sessionID, "message": "Voucher validated. Session created."})
}

func (s *Server) generateQR(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		fail(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	qr, err := s.app.IssueQR(r.Context(), req.SessionID)
	if err != nil {
		s.failErr(w, r, err, "Session not found")
		return
	}
	ok(w, envelope{"sessionId": req.SessionID, "qrCode": qr, "message": "QR Code generated successfully"})
}

func (s *Server) pairingCode(w http.ResponseWriter, r *http.Request) {
	var req pairingRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.PhoneNumber) == "" {
		fail(w, http.StatusBadRequest, "Session ID and phone number are required")
		return
	}
	ctx := logging.WithSessID(r.Context(), req.SessionID)
	res, err := s.app.RequestPairing(ctx, req.SessionID, req.PhoneNumber)
	if err != nil {
		s.failErr(w, r.WithContext(ctx), err, "Session not found")
		return
	}
	l := logging.With(ctx, s.log)
	l.Info().Str("phone", logging.RedactPhone(req.PhoneNumber, s.opts.Dev)).Msg("pairing code issued")
	ok(w, envelope{
		"sessionId":    res.SessionID,
		"pairingCode":  res.PairingCode,
		"expiresIn":    int(res.ExpiresIn / time.Second),
		"instructions": res.Instructions,
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	d, err := s.app.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.failErr(w, r, err, "Session not found")
		return
	}
	ok(w, envelope{"session": toSessionView(d)})
}

func (s *Server) features(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := s.app.Features(r.Context(), id)
	if err != nil {
		s.failErr(w, r, err, "Session not found")
		return
	}
	flags := make(map[string]bool, len(list))
	for _, f := range list {
		flags[f.Name] = f.Enabled
	}
	ok(w, envelope{"sessionId": id, "features": flags})
}

func (s *Server) deploy(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.BotName) == "" {
		fail(w, http.StatusBadRequest, "Session ID and bot name are required")
		return
	}
	d, err := s.app.Deploy(r.Context(), req.SessionID, req.BotName, req.Features)
	if err != nil {
		s.failErr(w, r, err, "Session not found")
		return
	}
	ok(w, envelope{
		"deploymentId": d.ID,
		"sessionId":    d.SessionID,
		"status":       string(d.Status),
		"message":      "Deployment started successfully",
	})
}

func (s *Server) toggleFeature(w http.ResponseWriter, r *http.Request) {
	var req toggleFeatureRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.FeatureName) == "" || req.Enabled == nil {
		fail(w, http.StatusBadRequest, "Session ID, feature name, and enabled status are required")
		return
	}
	if err := s.app.ToggleFeature(r.Context(), req.SessionID, req.FeatureName, *req.Enabled); err != nil {
		s.failErr(w, r, err, "Session not found")
		return
	}
	ok(w, envelope{"sessionId": req.SessionID, "featureName": req.FeatureName, "enabled": *req.Enabled})
}

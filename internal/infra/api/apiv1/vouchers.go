package apiv1

import (
	"net/http"
	"strings"
	"time"

	"ubot-platform/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type checkVoucherRequest struct {
	Code string `json:"code"`
}

type voucherView struct {
	Code      string     `json:"code"`
	OwnerID   string     `json:"ownerId,omitempty"`
	OwnerName string     `json:"ownerName,omitempty"`
	IsValid   *bool      `json:"isValid,omitempty"`
	IsUsed    bool       `json:"isUsed"`
	IsExpired *bool      `json:"isExpired,omitempty"`
	UsedBy    *string    `json:"usedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func detailsView(d *model.VoucherDetails) voucherView {
	valid, expired := d.IsValid, d.IsExpired
	return voucherView{
		Code:      d.Code,
		OwnerID:   d.OwnerID,
		OwnerName: d.OwnerName,
		IsValid:   &valid,
		IsUsed:    d.IsUsed,
		IsExpired: &expired,
		UsedBy:    d.UsedByID,
		CreatedAt: d.CreatedAt,
		UsedAt:    d.UsedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

func (s *Server) checkVoucher(w http.ResponseWriter, r *http.Request) {
	var req checkVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		fail(w, http.StatusBadRequest, "Code is required")
		return
	}

	d, err := s.app.CheckVoucher(r.Context(), req.Code)
	if err != nil {
		s.failErr(w, r, err, "Voucher not found")
		return
	}
	ok(w, envelope{
		"code":      d.Code,
		"ownerName": d.OwnerName,
		"isValid":   d.IsValid,
		"isUsed":    d.IsUsed,
		"isExpired": d.IsExpired,
		"createdAt": d.CreatedAt,
		"expiresAt": d.ExpiresAt,
	})
}

func (s *Server) vouchersByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")
	list, err := s.app.VouchersByOwner(r.Context(), ownerID)
	if err != nil {
		s.failErr(w, r, err, "Owner not found")
		return
	}
	out := make([]voucherView, 0, len(list))
	for _, v := range list {
		out = append(out, voucherView{
			Code:      v.Code,
			IsUsed:    v.IsUsed,
			CreatedAt: v.CreatedAt,
			UsedAt:    v.UsedAt,
			ExpiresAt: v.ExpiresAt,
		})
	}
	ok(w, envelope{"total": len(out), "vouchers": out})
}

// allVouchers lists every voucher; it needs the admin key in X-Admin-Key.
func (s *Server) allVouchers(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r.Header.Get("X-Admin-Key")) {
		s.denyAdmin(w, "list_vouchers")
		return
	}
	list, err := s.app.AllVouchers(r.Context())
	if err != nil {
		s.failErr(w, r, err, "Voucher not found")
		return
	}
	out := make([]voucherView, 0, len(list))
	for _, d := range list {
		out = append(out, detailsView(d))
	}
	ok(w, envelope{"total": len(out), "vouchers": out})
}

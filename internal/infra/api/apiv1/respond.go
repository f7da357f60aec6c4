package apiv1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/infra/logging"
)

const maxBodyBytes = 1 << 20

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, body envelope) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "error": msg})
}

// decode reads a JSON body into dst; an empty or malformed body is a 400.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusFor maps an error kind onto the HTTP status returned to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyUsed),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// failErr writes the error response for err. notFound names the missing
// entity; persistence and unknown failures are logged and not echoed.
func (s *Server) failErr(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status := statusFor(err)
	switch {
	case status == http.StatusNotFound:
		fail(w, status, notFound)
	case errors.Is(err, domain.ErrAlreadyUsed):
		fail(w, status, "Voucher already used")
	case errors.Is(err, domain.ErrExpired):
		fail(w, status, "Voucher has expired")
	case status == http.StatusBadRequest:
		fail(w, status, err.Error())
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("kind", domain.Kind(err)).Str("path", r.URL.Path).Msg("Failed to handle request")
		fail(w, status, "Internal server error")
	}
}

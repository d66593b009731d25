package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type keyChecker interface {
	Configured() bool
}

// HealthHandler handles health-check and diagnostic endpoints.
type HealthHandler struct {
	brevo keyChecker
}

func NewHealthHandler(brevo keyChecker) *HealthHandler { return &HealthHandler{brevo: brevo} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "ping" {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
		return
	}
	writeError(w, http.StatusBadRequest, "unknown action")
}

type brevoKeyStatus struct {
	BrevoAPIKeyExists bool `json:"brevoApiKeyExists"`
}

// CheckBrevoKey reports whether the email provider key is set, never the key.
func (h *HealthHandler) CheckBrevoKey(w http.ResponseWriter, r *http.Request) {
	exists := h.brevo != nil && h.brevo.Configured()
	slog.InfoContext(r.Context(), "brevo api key check", "exists", exists)
	writeJSON(w, http.StatusOK, brevoKeyStatus{BrevoAPIKeyExists: exists})
}

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-otp-login/internal/domain"
)

// writeCallableError writes a callable-protocol error envelope.
func writeCallableError(w http.ResponseWriter, kind domain.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"status": kind.Status(), "message": msg},
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-otp-login/internal/domain"
	"github.com/go-otp-login/internal/pkg/validate"
)

// maxBodyBytes bounds callable request bodies.
const maxBodyBytes = 16 << 10

// callableRequest is the request wrapper of the callable protocol.
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

// ResultEnvelope wraps a successful callable response.
type ResultEnvelope struct {
	Result interface{} `json:"result"`
}

// ErrorEnvelope wraps a failed callable response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageEnvelope is the plain response of the non-callable endpoints.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func writeResult(w http.ResponseWriter, v interface{}) {
	writeJSON(w, http.StatusOK, ResultEnvelope{Result: v})
}

// writeCallableError renders err in the callable error envelope. Only
// classified errors reveal their message; anything else is reported as a
// bare internal error.
func writeCallableError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		slog.ErrorContext(r.Context(), "unclassified error reached transport", "path", r.URL.Path, "err", err)
		de = domain.NewError(domain.KindInternal, "INTERNAL")
	}
	writeJSON(w, de.Kind.HTTPStatus(), ErrorEnvelope{Error: ErrorBody{
		Status:  de.Kind.Status(),
		Message: de.Message,
		Details: de.Details,
	}})
}

// decodeCallable unwraps {"data": {...}} into dst and validates it.
// A missing data field decodes as an empty payload.
func decodeCallable(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req callableRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return domain.WrapError(domain.KindInvalidArgument, "Bad Request", err)
	}
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if err := json.Unmarshal(req.Data, dst); err != nil {
			return domain.WrapError(domain.KindInvalidArgument, "Bad Request", err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return domain.WrapError(domain.KindInvalidArgument, err.Error(), err)
	}
	return nil
}

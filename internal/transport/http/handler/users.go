package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-otp-login/internal/application/user"
	"github.com/go-otp-login/internal/domain"
	"github.com/go-otp-login/internal/transport/http/middleware"
)

// UserHandler serves the updateUser callable.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

type updateUserRequest struct {
	UID         string                 `json:"uid" validate:"max=128"`
	ProfileData map[string]interface{} `json:"profileData"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeCallable(w, r, &req); err != nil {
		writeCallableError(w, r, err)
		return
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		slog.InfoContext(r.Context(), "update user caller", "caller_uid", claims.UID)
	}
	res, err := h.svc.Update(r.Context(), domain.UpdateUserRequest{UID: req.UID, ProfileData: req.ProfileData})
	if err != nil {
		writeCallableError(w, r, err)
		return
	}
	writeResult(w, res)
}

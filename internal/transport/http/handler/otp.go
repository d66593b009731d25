package handler

import (
	"net/http"

	"github.com/go-otp-login/internal/application/otp"
)

// OTPHandler serves the passwordless-login callables.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

// Presence is checked by the service so callers get its exact messages.
type sendOTPRequest struct {
	Email string `json:"email" validate:"max=320"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"max=320"`
	OTP   string `json:"otp" validate:"max=32"`
}

func (h *OTPHandler) SendAndStore(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := decodeCallable(w, r, &req); err != nil {
		writeCallableError(w, r, err)
		return
	}
	res, err := h.svc.Issue(r.Context(), req.Email)
	if err != nil {
		writeCallableError(w, r, err)
		return
	}
	writeResult(w, res)
}

func (h *OTPHandler) VerifyAndCreateToken(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeCallable(w, r, &req); err != nil {
		writeCallableError(w, r, err)
		return
	}
	res, err := h.svc.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeCallableError(w, r, err)
		return
	}
	writeResult(w, res)
}

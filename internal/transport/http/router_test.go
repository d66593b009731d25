package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-otp-login/internal/application/otp"
	"github.com/go-otp-login/internal/application/user"
	"github.com/go-otp-login/internal/config"
	jwtinfra "github.com/go-otp-login/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOTP struct{}

func (stubOTP) Issue(context.Context, string) (*otp.IssueResult, error) {
	return &otp.IssueResult{Success: true, Message: "sent"}, nil
}

func (stubOTP) Verify(context.Context, string, string) (*otp.VerifyResult, error) {
	return &otp.VerifyResult{Success: true, Message: "ok", Token: "t", UID: "u"}, nil
}

type keySet bool

func (k keySet) Configured() bool { return bool(k) }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewRouter(&config.Config{AllowedOrigins: []string{"https://app.example"}}, &Deps{
		OTPService:    stubOTP{},
		UserService:   user.NewService(),
		EmailProvider: keySet(true),
		TokenVerifier: jwtinfra.NewProviderFromKeys(key, &key.PublicKey, "iss", "aud", time.Hour),
	})
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/v1/health-check/ping", "", http.StatusOK},
		{http.MethodGet, "/v1/checkBrevoKey", "", http.StatusOK},
		{http.MethodPost, "/v1/sendAndStoreOtp", `{"data":{"email":"a@b.com"}}`, http.StatusOK},
		{http.MethodPost, "/v1/verifyOtpAndCreateCustomToken", `{"data":{"email":"a@b.com","otp":"123456"}}`, http.StatusOK},
		{http.MethodPost, "/v1/updateUser", `{"data":{"uid":"u"}}`, http.StatusOK},
		{http.MethodGet, "/v1/sendAndStoreOtp", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/unknown", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRouter_InvalidBearerRejected(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/sendAndStoreOtp", bytes.NewBufferString(`{"data":{"email":"a@b.com"}}`))
	req.Header.Set("Authorization", "Bearer junk")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHENTICATED")
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/sendAndStoreOtp", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
}

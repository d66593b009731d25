package brevo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	brevosdk "github.com/getbrevo/brevo-go/lib"
	"github.com/go-otp-login/internal/config"
	"github.com/go-otp-login/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *Client {
	c := NewClient(config.Brevo{APIKey: "xkeysib-test", BaseURL: url + "/", MaxRetries: retries, Timeout: 5 * time.Second})
	c.backoff = time.Millisecond
	return c
}

func writeJSONReply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

var msg = domain.TemplateEmail{
	TemplateID:  178,
	To:          "a@b.com",
	SenderEmail: "info@example.com",
	SenderName:  "Example",
	Params:      map[string]string{"otp": "123456"},
}

func TestSendTemplate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/smtp/email", r.URL.Path)
		assert.Equal(t, "xkeysib-test", r.Header.Get("api-key"))

		var body brevosdk.SendSmtpEmail
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(178), body.TemplateId)
		require.Len(t, body.To, 1)
		assert.Equal(t, "a@b.com", body.To[0].Email)
		require.NotNil(t, body.Sender)
		assert.Equal(t, "Example", body.Sender.Name)
		assert.Equal(t, "info@example.com", body.Sender.Email)
		assert.Equal(t, "123456", body.Params["otp"])

		writeJSONReply(w, http.StatusCreated, `{"messageId":"<202601@smtp-relay.mailin.fr>"}`)
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL, 0).SendTemplate(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "<202601@smtp-relay.mailin.fr>", id)
}

func TestSendTemplate_AcceptedWithUndecodableBody_NotResent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>ok</html>`))
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL, 2).SendTemplate(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendTemplate_BadRequest_NotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSONReply(w, http.StatusBadRequest, `{"code":"invalid_parameter","message":"templateId is not valid"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).SendTemplate(context.Background(), msg)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_parameter", apiErr.Code)
	assert.NotContains(t, err.Error(), "123456")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendTemplate_ServerError_RetriedThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSONReply(w, http.StatusServiceUnavailable, `{"code":"unavailable","message":"try later"}`)
			return
		}
		writeJSONReply(w, http.StatusCreated, `{"messageId":"m-1"}`)
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL, 2).SendTemplate(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "m-1", id)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendTemplate_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSONReply(w, http.StatusTooManyRequests, `{"code":"too_many_requests","message":"slow down"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).SendTemplate(context.Background(), msg)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendTemplate_NotConfigured(t *testing.T) {
	c := NewClient(config.Brevo{BaseURL: "http://unused"})
	assert.False(t, c.Configured())
	_, err := c.SendTemplate(context.Background(), msg)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

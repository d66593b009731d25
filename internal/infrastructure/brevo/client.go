// Package brevo sends template-based transactional email through the Brevo
// (formerly Sendinblue) v3 API using the official Go SDK.
package brevo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	brevosdk "github.com/getbrevo/brevo-go/lib"
	"github.com/go-otp-login/internal/config"
	"github.com/go-otp-login/internal/domain"
	"github.com/sethvargo/go-retry"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("brevo api key not configured")

// APIError is a non-2xx answer from Brevo.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brevo api error: status %d: %s %s", e.StatusCode, e.Code, e.Message)
}

// Client is a Brevo transactional email client.
type Client struct {
	api        *brevosdk.APIClient
	apiKey     string
	maxRetries uint64
	backoff    time.Duration
}

func NewClient(cfg config.Brevo) *Client {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	sdkCfg := brevosdk.NewConfiguration()
	sdkCfg.AddDefaultHeader("api-key", cfg.APIKey)
	sdkCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.BaseURL != "" {
		sdkCfg.BasePath = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api:        brevosdk.NewAPIClient(sdkCfg),
		apiKey:     cfg.APIKey,
		maxRetries: uint64(retries),
		backoff:    200 * time.Millisecond,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// SendTemplate delivers msg and returns the provider message id. Throttling,
// server errors and transport failures are retried with exponential backoff;
// other 4xx answers fail immediately. Once Brevo has accepted the message it
// is never sent again, even if the reply cannot be decoded.
func (c *Client) SendTemplate(ctx context.Context, msg domain.TemplateEmail) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	params := make(map[string]interface{}, len(msg.Params))
	for k, v := range msg.Params {
		params[k] = v
	}
	email := brevosdk.SendSmtpEmail{
		Sender:     &brevosdk.SendSmtpEmailSender{Name: msg.SenderName, Email: msg.SenderEmail},
		To:         []brevosdk.SendSmtpEmailTo{{Email: msg.To}},
		TemplateId: msg.TemplateID,
		Params:     params,
	}

	var messageID string
	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		out, resp, err := c.api.TransactionalEmailsApi.SendTransacEmail(ctx, email)
		if resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if err != nil {
				slog.WarnContext(ctx, "brevo accepted the email but the reply could not be decoded",
					"status", resp.StatusCode, "err", err)
			}
			messageID = out.MessageId
			return nil
		}
		if resp == nil {
			if err == nil {
				err = errors.New("brevo returned no response")
			}
			return retry.RetryableError(fmt.Errorf("brevo request: %w", err))
		}
		apiErr := newAPIError(resp.StatusCode, err)
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return retry.RetryableError(apiErr)
		}
		return apiErr
	})
	if err != nil {
		return "", err
	}
	return messageID, nil
}

// newAPIError extracts Brevo's {"code","message"} body from an SDK error.
func newAPIError(status int, err error) *APIError {
	apiErr := &APIError{StatusCode: status}
	var withBody interface{ Body() []byte }
	if errors.As(err, &withBody) {
		_ = json.Unmarshal(withBody.Body(), apiErr)
	}
	return apiErr
}

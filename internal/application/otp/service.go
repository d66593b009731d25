package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-otp-login/internal/domain"
	"github.com/go-otp-login/internal/pkg/clock"
	"github.com/go-otp-login/internal/pkg/mask"
	"github.com/go-otp-login/internal/pkg/otpcode"
)

type IssueResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	UID     string `json:"uid,omitempty"`
}

type Service interface {
	// Issue sends a fresh passcode to email, subject to the resend cooldown.
	Issue(ctx context.Context, email string) (*IssueResult, error)
	// Verify consumes the passcode for email and returns a custom token.
	Verify(ctx context.Context, email, code string) (*VerifyResult, error)
}

type otpStore interface {
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Put(ctx context.Context, rec *domain.OTPRecord, issuedBefore time.Time) error
	MarkVerified(ctx context.Context, email, otpHash string, createdAt, at time.Time) error
	ResetVerified(ctx context.Context, email string, createdAt time.Time) error
	IncrementAttempts(ctx context.Context, email string, createdAt time.Time) error
	Delete(ctx context.Context, email string, createdAt time.Time) error
}

type identityProvider interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.Identity, error)
	CreateUser(ctx context.Context, params domain.CreateIdentityParams) (*domain.Identity, error)
	CreateCustomToken(ctx context.Context, uid string) (string, error)
}

type profileStore interface {
	Put(ctx context.Context, p *domain.UserProfile) error
	Get(ctx context.Context, uid string) (*domain.UserProfile, error)
}

type mailer interface {
	Configured() bool
	SendTemplate(ctx context.Context, msg domain.TemplateEmail) (string, error)
}

// Settings are the fixed protocol parameters and email template identity.
type Settings struct {
	Length      int
	Expiry      time.Duration
	Cooldown    time.Duration
	MaxAttempts int // 0 disables the lockout
	TemplateID  int64
	SenderEmail string
	SenderName  string
}

type ServiceDeps struct {
	OTPRepo     otpStore
	Identity    identityProvider
	ProfileRepo profileStore
	Mailer      mailer
	Clock       clock.Clock
	Settings    Settings
}

type service struct {
	otps     otpStore
	identity identityProvider
	profiles profileStore
	mailer   mailer
	clock    clock.Clock
	cfg      Settings
}

func NewService(deps ServiceDeps) Service {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &service{
		otps:     deps.OTPRepo,
		identity: deps.Identity,
		profiles: deps.ProfileRepo,
		mailer:   deps.Mailer,
		clock:    clk,
		cfg:      deps.Settings,
	}
}

const (
	msgEmailRequired    = "Email is required."
	msgServiceDown      = "OTP service is temporarily unavailable. Please try again later."
	msgTemplateConfig   = "OTP service configuration error (Template ID)."
	msgProviderFailure  = "Failed to send OTP email due to a provider issue. Please try again."
	msgIssueFailed      = "Failed to send OTP. Please try again later."
	msgOTPSent          = "OTP sent successfully. Please check your email."
	msgCooldownTemplate = "Please wait %d seconds before requesting another OTP."
)

func (s *service) Issue(ctx context.Context, email string) (*IssueResult, error) {
	email = normalizeEmail(email)
	masked := mask.Email(email)
	slog.InfoContext(ctx, "otp issue requested", "email", masked)

	if email == "" {
		slog.WarnContext(ctx, "otp issue rejected: email is required")
		return nil, domain.NewError(domain.KindInvalidArgument, msgEmailRequired)
	}
	if s.mailer == nil || !s.mailer.Configured() {
		slog.ErrorContext(ctx, "email provider not configured, cannot send otp", "email", masked)
		return nil, domain.NewError(domain.KindFailedPrecondition, msgServiceDown)
	}
	if s.cfg.TemplateID <= 0 {
		slog.ErrorContext(ctx, "invalid or missing otp template id", "template_id", s.cfg.TemplateID)
		return nil, domain.NewError(domain.KindFailedPrecondition, msgTemplateConfig)
	}

	res, err := s.issue(ctx, email, masked)
	if err != nil {
		return nil, classify(ctx, "issue", masked, msgIssueFailed, err)
	}
	return res, nil
}

func (s *service) issue(ctx context.Context, email, masked string) (*IssueResult, error) {
	now := s.clock.Now()

	existing, err := s.otps.Get(ctx, email)
	switch {
	case err == nil:
		if wait := existing.CooldownRemaining(now, s.cfg.Cooldown); wait > 0 {
			slog.WarnContext(ctx, "otp requested during cooldown", "email", masked, "wait_seconds", ceilSeconds(wait))
			return nil, cooldownError(wait)
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("read otp: %w", err)
	}

	code, err := otpcode.Generate(s.cfg.Length)
	if err != nil {
		return nil, err
	}
	rec := &domain.OTPRecord{
		Email:     email,
		OTPHash:   otpcode.Hash(code),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Expiry),
	}

	// The record must exist before any send attempt.
	if err := s.otps.Put(ctx, rec, now.Add(-s.cfg.Cooldown)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, s.lostIssueRace(ctx, email, masked)
		}
		return nil, fmt.Errorf("store otp: %w", err)
	}
	slog.InfoContext(ctx, "otp stored",
		"email", masked, "otp_hash", mask.Hash(rec.OTPHash), "expires_at", rec.ExpiresAt.Format(time.RFC3339))

	messageID, err := s.mailer.SendTemplate(ctx, domain.TemplateEmail{
		TemplateID:  s.cfg.TemplateID,
		To:          email,
		SenderEmail: s.cfg.SenderEmail,
		SenderName:  s.cfg.SenderName,
		Params:      map[string]string{"otp": code},
	})
	if err != nil {
		// The stored record is left in place; a retry after the cooldown overwrites it.
		slog.ErrorContext(ctx, "failed to send otp email", "email", masked, "template_id", s.cfg.TemplateID, "err", err)
		return nil, domain.WrapError(domain.KindInternal, msgProviderFailure, err)
	}
	if messageID == "" {
		messageID = "N/A"
	}
	slog.InfoContext(ctx, "otp email sent", "email", masked, "message_id", messageID)

	return &IssueResult{Success: true, Message: msgOTPSent}, nil
}

// lostIssueRace reports the cooldown of the issuance that won a concurrent put.
func (s *service) lostIssueRace(ctx context.Context, email, masked string) error {
	wait := s.cfg.Cooldown
	if rec, err := s.otps.Get(ctx, email); err == nil {
		if w := rec.CooldownRemaining(s.clock.Now(), s.cfg.Cooldown); w > 0 {
			wait = w
		}
	}
	slog.WarnContext(ctx, "concurrent otp issuance lost the race", "email", masked)
	return cooldownError(wait)
}

func cooldownError(wait time.Duration) error {
	secs := ceilSeconds(wait)
	return domain.NewError(domain.KindResourceExhausted, fmt.Sprintf(msgCooldownTemplate, secs)).
		WithDetails(map[string]interface{}{"retryAfterSeconds": secs})
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// classify passes classified errors through unchanged and turns anything
// else into a generic internal error. Only masked identifiers are logged.
func classify(ctx context.Context, op, masked, fallback string, err error) error {
	if de, ok := domain.AsError(err); ok {
		slog.WarnContext(ctx, "otp "+op+" failed", "email", masked, "code", string(de.Kind), "message", de.Message)
		return de
	}
	slog.ErrorContext(ctx, "unexpected error during otp "+op, "email", masked, "err", err)
	return domain.WrapError(domain.KindInternal, fallback, err)
}

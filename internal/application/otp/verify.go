package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-otp-login/internal/domain"
	"github.com/go-otp-login/internal/pkg/mask"
	"github.com/go-otp-login/internal/pkg/otpcode"
)

const (
	msgVerifyRequired   = "Email and OTP are required."
	msgNotFound         = "OTP not found or already used. Please request a new one."
	msgAlreadyUsed      = "This OTP has already been used. Please request a new one."
	msgExpired          = "OTP has expired. Please request a new one."
	msgTooManyAttempts  = "Too many incorrect attempts. Please request a new OTP."
	msgIncorrect        = "Incorrect OTP entered."
	msgCreateUserFailed = "Failed to create user account after OTP verification."
	msgLookupFailed     = "Error verifying user status."
	msgVerifyFailed     = "Failed to verify OTP. Please try again later."
	msgVerified         = "OTP verified successfully."
)

func (s *service) Verify(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = normalizeEmail(email)
	masked := mask.Email(email)
	slog.InfoContext(ctx, "otp verify requested", "email", masked)

	if email == "" || code == "" {
		slog.WarnContext(ctx, "otp verify rejected: email and otp are required")
		return nil, domain.NewError(domain.KindInvalidArgument, msgVerifyRequired)
	}

	res, err := s.verify(ctx, email, code, masked)
	if err != nil {
		return nil, classify(ctx, "verify", masked, msgVerifyFailed, err)
	}
	return res, nil
}

func (s *service) verify(ctx context.Context, email, code, masked string) (*VerifyResult, error) {
	rec, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, msgNotFound)
		}
		return nil, fmt.Errorf("read otp: %w", err)
	}

	now := s.clock.Now()
	expired := rec.Expired(now)

	if rec.Verified && !expired {
		return nil, domain.NewError(domain.KindAlreadyExists, msgAlreadyUsed)
	}
	if expired {
		s.discard(ctx, rec, masked, "expired")
		return nil, domain.NewError(domain.KindDeadlineExceeded, msgExpired)
	}
	if s.cfg.MaxAttempts > 0 && rec.Attempts >= s.cfg.MaxAttempts {
		s.discard(ctx, rec, masked, "attempt limit reached")
		return nil, domain.NewError(domain.KindResourceExhausted, msgTooManyAttempts)
	}

	submitted := otpcode.Hash(code)
	if !otpcode.Equal(submitted, rec.OTPHash) {
		slog.WarnContext(ctx, "incorrect otp submitted",
			"email", masked, "submitted_hash", mask.Hash(submitted), "attempts", rec.Attempts+1)
		if err := s.otps.IncrementAttempts(ctx, email, rec.CreatedAt); err != nil {
			slog.WarnContext(ctx, "failed to record otp attempt", "email", masked, "err", err)
		}
		return nil, domain.NewError(domain.KindInvalidArgument, msgIncorrect)
	}

	if err := s.otps.MarkVerified(ctx, email, rec.OTPHash, rec.CreatedAt, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			slog.WarnContext(ctx, "otp consumed by a concurrent verify", "email", masked)
			return nil, domain.NewError(domain.KindNotFound, msgNotFound)
		}
		return nil, fmt.Errorf("mark otp verified: %w", err)
	}
	slog.InfoContext(ctx, "otp marked as verified", "email", masked)

	user, err := s.resolveIdentity(ctx, email, masked)
	if err != nil {
		s.rollback(ctx, rec, masked)
		return nil, err
	}

	token, err := s.identity.CreateCustomToken(ctx, user.UID)
	if err != nil {
		s.rollback(ctx, rec, masked)
		return nil, fmt.Errorf("create custom token: %w", err)
	}
	slog.InfoContext(ctx, "custom token created", "email", masked, "uid", user.UID)

	// A failed delete leaves a verified record behind, which can never be
	// verified again and is removed by TTL or the next issuance.
	if err := s.otps.Delete(ctx, email, rec.CreatedAt); err != nil {
		slog.WarnContext(ctx, "failed to delete verified otp", "email", masked, "err", err)
	} else {
		slog.InfoContext(ctx, "otp deleted after successful verification", "email", masked)
	}

	return &VerifyResult{Success: true, Message: msgVerified, Token: token, UID: user.UID}, nil
}

// resolveIdentity returns the account for email, creating it together with
// its profile when none exists.
func (s *service) resolveIdentity(ctx context.Context, email, masked string) (*domain.Identity, error) {
	user, err := s.identity.GetUserByEmail(ctx, email)
	if err == nil {
		slog.InfoContext(ctx, "existing user found", "email", masked, "uid", user.UID)
		s.ensureProfile(ctx, user.UID, email, masked)
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		slog.ErrorContext(ctx, "error fetching user by email", "email", masked, "err", err)
		return nil, domain.WrapError(domain.KindInternal, msgLookupFailed, err)
	}

	slog.InfoContext(ctx, "user not found, creating new user", "email", masked)
	user, err = s.identity.CreateUser(ctx, domain.CreateIdentityParams{Email: email, EmailVerified: true})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another verify created the account first.
			if existing, gerr := s.identity.GetUserByEmail(ctx, email); gerr == nil {
				return existing, nil
			}
		}
		slog.ErrorContext(ctx, "error creating new user", "email", masked, "err", err)
		return nil, domain.WrapError(domain.KindInternal, msgCreateUserFailed, err)
	}
	slog.InfoContext(ctx, "new user created", "email", masked, "uid", user.UID)

	if err := s.profiles.Put(ctx, domain.NewUserProfile(user.UID, email, s.clock.Now())); err != nil {
		slog.ErrorContext(ctx, "error creating user profile", "email", masked, "uid", user.UID, "err", err)
		return nil, domain.WrapError(domain.KindInternal, msgCreateUserFailed, err)
	}
	slog.InfoContext(ctx, "basic profile created for new user", "uid", user.UID)
	return user, nil
}

// ensureProfile recreates the basic profile of an existing account whose
// profile write failed on an earlier login. Failures are logged only.
func (s *service) ensureProfile(ctx context.Context, uid, email, masked string) {
	_, err := s.profiles.Get(ctx, uid)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "error reading user profile", "uid", uid, "err", err)
		return
	}
	if err := s.profiles.Put(ctx, domain.NewUserProfile(uid, email, s.clock.Now())); err != nil {
		slog.WarnContext(ctx, "error restoring missing user profile", "email", masked, "uid", uid, "err", err)
		return
	}
	slog.InfoContext(ctx, "missing profile restored for existing user", "uid", uid)
}

// rollback restores verified=false so a retried verification is not blocked.
func (s *service) rollback(ctx context.Context, rec *domain.OTPRecord, masked string) {
	if err := s.otps.ResetVerified(ctx, rec.Email, rec.CreatedAt); err != nil {
		slog.ErrorContext(ctx, "failed to roll back otp verification", "email", masked, "err", err)
		return
	}
	slog.InfoContext(ctx, "otp verification rolled back", "email", masked)
}

func (s *service) discard(ctx context.Context, rec *domain.OTPRecord, masked, reason string) {
	if err := s.otps.Delete(ctx, rec.Email, rec.CreatedAt); err != nil && !errors.Is(err, domain.ErrConflict) {
		slog.WarnContext(ctx, "failed to delete otp", "email", masked, "reason", reason, "err", err)
		return
	}
	slog.InfoContext(ctx, "otp deleted", "email", masked, "reason", reason,
		"expired_at", rec.ExpiresAt.Format(time.RFC3339))
}

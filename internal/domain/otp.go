package domain

import "time"

// OTPRecord is the single pending passcode for an email address.
// PK: email (lower-cased). ExpiresAt doubles as the DynamoDB TTL attribute.
type OTPRecord struct {
	Email      string
	OTPHash    string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	Verified   bool
	VerifiedAt *time.Time
	// Attempts counts mismatched codes submitted against this record.
	Attempts int
}

// Expired reports whether the record is no longer usable at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// CooldownRemaining returns how long the caller must wait before a new code
// may be issued, or zero when issuance is allowed. A record stamped ahead of
// now by a skewed writer still waits at most cooldown.
func (r *OTPRecord) CooldownRemaining(now time.Time, cooldown time.Duration) time.Duration {
	if r.CreatedAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(r.CreatedAt)
	if elapsed >= cooldown {
		return 0
	}
	if elapsed < 0 {
		return cooldown
	}
	return cooldown - elapsed
}

// Package mask redacts identifiers for logging. Its output must never feed
// back into decision logic.
package mask

import "strings"

const (
	invalidFormat = "invalid_email_format"
	incomplete    = "incomplete_email"
)

// Email keeps the first character of the local part and the domain:
// "ab@example.com" becomes "a***@example.com".
func Email(email string) string {
	if email == "" {
		return invalidFormat
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return incomplete
	}
	local := []rune(parts[0])
	if len(local) > 1 {
		local = local[:1]
	}
	return string(local) + "***@" + parts[1]
}

// Hash returns a short prefix of a digest, enough to correlate log lines.
func Hash(digest string) string {
	if len(digest) <= 10 {
		return digest
	}
	return digest[:10] + "..."
}

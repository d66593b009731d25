package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail      = "email"
	fieldUID        = "uid"
	fieldOTPHash    = "otp_hash"
	fieldCreatedAt  = "created_at"
	fieldVerified   = "verified"
	fieldVerifiedAt = "verified_at"
	fieldAttempts   = "attempts"
	fieldTTL        = "ttl"
)

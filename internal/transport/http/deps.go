package http

import (
	jwtinfra "github.com/go-otp-login/internal/infrastructure/jwt"
)

// KeyChecker reports whether the email provider has an API key.
type KeyChecker interface {
	Configured() bool
}

// TokenVerifier validates bearer tokens issued by this service.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

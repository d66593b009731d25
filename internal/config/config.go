package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort           string
	AppEnv            string
	AWSRegion         string
	AWSEndpointURL    string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID    string
	AWSSecretKey      string
	DynamoTables      DynamoTables
	Brevo             Brevo
	OTP               OTP
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	TokenIssuer       string
	TokenAudience     string
	TokenExpiry       time.Duration
	AllowedOrigins    []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	OTPAttempts string
	Users       string
	Identities  string
}

// Brevo holds the transactional email provider settings.
type Brevo struct {
	APIKey        string
	SenderEmail   string
	SenderName    string
	OTPTemplateID int64
	BaseURL       string
	MaxRetries    int
	Timeout       time.Duration
}

// OTP holds the passcode issuance and verification parameters.
type OTP struct {
	Length      int
	Expiry      time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			OTPAttempts: getEnv("DYNAMO_TABLE_OTP_ATTEMPTS", "otp_attempts"),
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			Identities:  getEnv("DYNAMO_TABLE_IDENTITIES", "identities"),
		},
		Brevo: Brevo{
			APIKey:        getEnv("BREVO_API_KEY", ""),
			SenderEmail:   getEnv("BREVO_SENDER_EMAIL", "info@bergmantri.com"),
			SenderName:    getEnv("BREVO_SENDER_NAME", "Bergman Triathlon"),
			OTPTemplateID: getEnvInt64("BREVO_OTP_TEMPLATE_ID", 178),
			BaseURL:       getEnv("BREVO_BASE_URL", "https://api.brevo.com/v3"),
			MaxRetries:    getEnvInt("BREVO_MAX_RETRIES", 2),
			Timeout:       time.Duration(getEnvInt("BREVO_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		OTP: OTP{
			Length:      6,
			Expiry:      10 * time.Minute,
			Cooldown:    60 * time.Second,
			MaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
		},
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		TokenIssuer:       getEnv("TOKEN_ISSUER", "otp-login@localhost"),
		TokenAudience:     getEnv("TOKEN_AUDIENCE", "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"),
		TokenExpiry:       time.Hour,
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvInt64 returns 0 for a present but unparsable value so that a
// malformed template id surfaces as a configuration error instead of
// silently falling back to the default.
func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

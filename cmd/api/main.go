package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-otp-login/internal/application/otp"
	"github.com/go-otp-login/internal/application/user"
	"github.com/go-otp-login/internal/config"
	"github.com/go-otp-login/internal/infrastructure/brevo"
	"github.com/go-otp-login/internal/infrastructure/dynamo"
	"github.com/go-otp-login/internal/infrastructure/identity"
	jwtinfra "github.com/go-otp-login/internal/infrastructure/jwt"
	"github.com/go-otp-login/internal/pkg/clock"
	transporthttp "github.com/go-otp-login/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.AppEnv == "production" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
	slog.Info("email provider configuration",
		"api_key_exists", cfg.Brevo.APIKey != "",
		"sender_email", cfg.Brevo.SenderEmail,
		"sender_name", cfg.Brevo.SenderName,
		"otp_template_id", cfg.Brevo.OTPTemplateID,
	)

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// Custom tokens cannot be minted without the signing keys.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	clk := clock.System{}
	identityProvider := identity.NewProvider(
		dynamo.NewIdentityRepo(dynamoClient, cfg.DynamoTables.Identities), jwtProvider, clk)

	// A missing API key is not fatal: issuance fails with a precondition
	// error and checkBrevoKey reports it.
	mailer := brevo.NewClient(cfg.Brevo)
	if !mailer.Configured() {
		slog.Warn("BREVO_API_KEY is not set, otp issuance is disabled")
	}

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:     dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPAttempts),
		Identity:    identityProvider,
		ProfileRepo: dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Users),
		Mailer:      mailer,
		Clock:       clk,
		Settings: otp.Settings{
			Length:      cfg.OTP.Length,
			Expiry:      cfg.OTP.Expiry,
			Cooldown:    cfg.OTP.Cooldown,
			MaxAttempts: cfg.OTP.MaxAttempts,
			TemplateID:  cfg.Brevo.OTPTemplateID,
			SenderEmail: cfg.Brevo.SenderEmail,
			SenderName:  cfg.Brevo.SenderName,
		},
	})

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		OTPService:    otpSvc,
		UserService:   user.NewService(),
		EmailProvider: mailer,
		TokenVerifier: jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

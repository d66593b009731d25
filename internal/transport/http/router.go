package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-login/internal/application/otp"
	"github.com/go-otp-login/internal/application/user"
	"github.com/go-otp-login/internal/config"
	"github.com/go-otp-login/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-login/internal/transport/http/middleware"
)

// Deps holds the services and handles the router needs. Everything is built
// once in main before the listener starts.
type Deps struct {
	OTPService    otp.Service
	UserService   user.Service
	EmailProvider KeyChecker
	TokenVerifier TokenVerifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.TokenVerifier != nil {
		authMw = appmiddleware.OptionalAuth(deps.TokenVerifier)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	healthH := handler.NewHealthHandler(deps.EmailProvider)
	otpH := handler.NewOTPHandler(deps.OTPService)
	userH := handler.NewUserHandler(deps.UserService)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/checkBrevoKey", healthH.CheckBrevoKey)

		// Callable functions: {"data": ...} in, {"result": ...} or {"error": ...} out.
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/sendAndStoreOtp", otpH.SendAndStore)
			r.Post("/verifyOtpAndCreateCustomToken", otpH.VerifyAndCreateToken)
			r.Post("/updateUser", userH.Update)
		})
	})

	return r
}

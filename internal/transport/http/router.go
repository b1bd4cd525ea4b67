package http

import (
	"net/http"

	"github.com/ecom-auth-api/internal/application/otp"
	"github.com/ecom-auth-api/internal/application/passwordreset"
	"github.com/ecom-auth-api/internal/application/registration"
	"github.com/ecom-auth-api/internal/application/session"
	"github.com/ecom-auth-api/internal/config"
	jwtinfra "github.com/ecom-auth-api/internal/infrastructure/jwt"
	"github.com/ecom-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/ecom-auth-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo AccountRepository
	KV          KVStore
	Mailer      Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the public OTP endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	issuer := otp.NewIssuer(deps.KV, deps.Mailer)
	verifier := otp.NewVerifier(deps.KV)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		Issuer:      issuer,
		Verifier:    verifier,
	})
	resetSvc := passwordreset.NewService(passwordreset.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		KV:          deps.KV,
		Issuer:      issuer,
		Verifier:    verifier,
	})
	var signer session.JWTSigner
	if deps.JWTProvider != nil {
		signer = deps.JWTProvider
	}
	sessionSvc := session.NewService(deps.AccountRepo, signer)

	healthH := handler.NewHealthHandler()
	registrationH := handler.NewRegistrationHandler(registrationSvc)
	resetH := handler.NewPasswordResetHandler(resetSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/register-user", registrationH.RegisterUser)
		r.With(sensitiveRL.Limit).Post("/register-seller", registrationH.RegisterSeller)
		r.With(sensitiveRL.Limit).Post("/verify-user", registrationH.VerifyUser)
		r.With(sensitiveRL.Limit).Post("/verify-seller", registrationH.VerifySeller)
		r.With(sensitiveRL.Limit).Post("/forget-password", resetH.Request)
		r.With(sensitiveRL.Limit).Post("/verify-forget-password", resetH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/reset-password", resetH.Reset)
		r.With(sensitiveRL.Limit).Post("/login", sessionH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Get("/me", sessionH.Me)
		})
	})

	return r
}

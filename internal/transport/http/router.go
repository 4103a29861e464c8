package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/barangaysm/portal-api/internal/application/profile"
	"github.com/barangaysm/portal-api/internal/application/registration"
	"github.com/barangaysm/portal-api/internal/config"
	"github.com/barangaysm/portal-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/barangaysm/portal-api/internal/infrastructure/jwt"
	redisinfra "github.com/barangaysm/portal-api/internal/infrastructure/redis"
	"github.com/barangaysm/portal-api/internal/infrastructure/smtp"
	"github.com/barangaysm/portal-api/internal/transport/http/handler"
	appmiddleware "github.com/barangaysm/portal-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo *dynamo.AccountRepo
	ProfileRepo *dynamo.ProfileRepo
	UserLogRepo *dynamo.UserLogRepo
	Ephemeral   *redisinfra.Store
	Mailer      smtp.Mailer
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

	// 5 requests/second, burst of 10. Keeps the public OTP endpoints from
	// being used for mailbox flooding or code guessing.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	credentialMw := appmiddleware.Credential(deps.JWTProvider, deps.Ephemeral)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		Store:       deps.Ephemeral,
		AccountRepo: deps.AccountRepo,
		Issuer:      deps.JWTProvider,
		Mailer:      deps.Mailer,
		UserLogRepo: deps.UserLogRepo,
		OTPTTL:      cfg.OTPTTL,
	})
	profileSvc := profile.NewService(deps.ProfileRepo, deps.AccountRepo)

	healthH := handler.NewHealthHandler()
	registrationH := handler.NewRegistrationHandler(registrationSvc)
	profileH := handler.NewProfileHandler(profileSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Registration flow ────────────────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/generate-otp", registrationH.GenerateOTP)
		r.With(sensitiveRL.Limit).Post("/verify-otp", registrationH.VerifyOTP)
		r.With(sensitiveRL.Limit, credentialMw).Post("/user-auth", registrationH.CreateUserAuth)

		// ── Residency profile ────────────────────────────────────────────────
		r.Get("/user-profile/{user_id}", profileH.Get)
		r.Put("/user-profile/{user_id}", profileH.Upsert)
	})

	return r
}

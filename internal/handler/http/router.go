package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KazimFedxD/FinCore/internal/auth"
	"github.com/KazimFedxD/FinCore/internal/service"
	"github.com/KazimFedxD/FinCore/pkg/health"
	"github.com/KazimFedxD/FinCore/pkg/middleware"
)

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	authService *service.AuthService,
	financeService *service.FinanceService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	cookieConfig CookieConfig,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("fincore"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(authService, cookieConfig, logger)
	financeHandler := NewFinanceHandler(financeService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/verify", authHandler.Verify)
			r.Post("/auth/refresh", authHandler.Refresh)
			r.Post("/auth/logout", authHandler.Logout)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(CookieTokenExtractor)
			r.Use(Auth(jwtManager))

			r.Get("/auth/me", authHandler.Me)
			r.With(ContentTypeJSON).Post("/auth/change-password", authHandler.ChangePassword)

			r.Get("/categories", financeHandler.ListCategories)
			r.With(ContentTypeJSON).Post("/categories", financeHandler.CreateCategory)
			r.Delete("/categories/{id}", financeHandler.DeleteCategory)

			r.Get("/incomes", financeHandler.ListIncomes)
			r.With(ContentTypeJSON).Post("/incomes", financeHandler.CreateIncome)
			r.Delete("/incomes/{id}", financeHandler.DeleteIncome)

			r.Get("/expenses", financeHandler.ListExpenses)
			r.With(ContentTypeJSON).Post("/expenses", financeHandler.CreateExpense)
			r.Delete("/expenses/{id}", financeHandler.DeleteExpense)

			r.Get("/report", financeHandler.Report)
		})
	})

	return r
}

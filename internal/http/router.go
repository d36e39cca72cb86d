package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/authflow/internal/auth"
	"github.com/redmonkez12/authflow/internal/config"
	"github.com/redmonkez12/authflow/internal/httputil"
	"github.com/redmonkez12/authflow/internal/logging"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, authHandler *auth.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first; credentials are needed for the session cookie
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.TrustedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/index.html")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/verify-email", authHandler.VerifyEmail)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password/{token}", authHandler.ResetPassword)

		// Protected routes (require a session)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/check-auth", authHandler.CheckAuth)
			r.Post("/resend-verification", authHandler.ResendVerification)
		})
	})

	// The built frontend is only served by the API in production
	if !cfg.Server.IsDevelopment() && cfg.Server.StaticDir != "" {
		logger.Info("serving frontend bundle", "dir", cfg.Server.StaticDir)
		r.NotFound(newSPAHandler(cfg.Server.StaticDir).ServeHTTP)
	} else {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondError(w, "Not found", http.StatusNotFound)
		})
	}

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

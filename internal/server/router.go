package server

import (
	"net/http"

	"github.com/Stewz00/mailforge-api/internal/auth"
	"github.com/Stewz00/mailforge-api/internal/handler"
	"github.com/Stewz00/mailforge-api/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	authHandler := handler.NewAuthHandler(app.Auth, app.Logger)
	emailHandler := handler.NewEmailHandler(app.Notifications, app.Drafts, app.Logger)
	healthHandler := handler.NewHealthHandler(app.Users, app.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(app.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(app.Config.Server.AllowedOrigins))
	r.Use(middleware.RateLimiter())

	r.Get("/", healthHandler.Index)
	r.Get("/health", healthHandler.Health)

	// Credential routes with strict rate limiting
	r.Group(func(r chi.Router) {
		r.Use(middleware.StrictRateLimiter())
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Post("/generate_email", emailHandler.GenerateEmail)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(app.Tokens))
		r.Get("/profile", authHandler.Profile)
		r.Post("/send_email", emailHandler.SendEmail)
	})

	return r
}

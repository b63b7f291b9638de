package server

import (
	"fmt"
	"log/slog"

	"github.com/Stewz00/mailforge-api/internal/auth"
	"github.com/Stewz00/mailforge-api/internal/config"
	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/service"
	"github.com/Stewz00/mailforge-api/internal/validation"
)

// App holds everything a request needs. It is built once at startup and
// passed to the router by reference.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Users         interfaces.UserRepository
	Tokens        *auth.TokenService
	Auth          *service.AuthService
	Notifications *service.NotificationService
	Drafts        *service.DraftService
}

// Deps are the external collaborators of an App.
type Deps struct {
	Users     interfaces.UserRepository
	Mail      interfaces.MailTransport
	Generator interfaces.TextGenerator
	Hasher    *auth.PasswordHasher
}

func NewApp(cfg *config.Config, logger *slog.Logger, deps Deps) (*App, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher()
	}

	v := validation.New()

	return &App{
		Config:        cfg,
		Logger:        logger,
		Users:         deps.Users,
		Tokens:        tokens,
		Auth:          service.NewAuthService(deps.Users, hasher, tokens, v, logger),
		Notifications: service.NewNotificationService(deps.Mail, v, logger),
		Drafts:        service.NewDraftService(deps.Generator, v, logger),
	}, nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Stewz00/mailforge-api/internal/config"
	"github.com/Stewz00/mailforge-api/internal/database"
	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/llm"
	"github.com/Stewz00/mailforge-api/internal/logging"
	"github.com/Stewz00/mailforge-api/internal/mail"
	"github.com/Stewz00/mailforge-api/internal/repository"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 30 * time.Second

// Run is the action of the serve command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)

	users, closeStore, err := OpenStore(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeStore()

	transport, err := newMailTransport(cfg.Mail, logger)
	if err != nil {
		return err
	}

	generator, err := newGenerator(ctx, cfg.GenAI, logger)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, logger, Deps{Users: users, Mail: transport, Generator: generator})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, srv, logger)
}

// serve blocks until ctx is done or SIGINT/SIGTERM arrives, then drains
// in-flight requests for up to 30 seconds.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

// OpenStore picks Postgres for postgres:// URLs and SQLite for anything else.
// Both run pending migrations before returning.
func OpenStore(ctx context.Context, url string) (interfaces.UserRepository, func(), error) {
	if database.IsPostgresURL(url) {
		db, err := database.New(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewUserRepository(db), db.Close, nil
	}

	db, err := database.OpenSQLite(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewSQLiteUserRepository(db), func() { _ = db.Close() }, nil
}

func newMailTransport(cfg config.MailConfig, logger *slog.Logger) (interfaces.MailTransport, error) {
	if cfg.Host == "" {
		logger.Warn("MAIL_SERVER not set, /send_email will fail")
		return mail.NewDisabledTransport(logger), nil
	}
	return mail.NewSMTPTransport(cfg)
}

func newGenerator(ctx context.Context, cfg config.GenAIConfig, logger *slog.Logger) (interfaces.TextGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("API_KEY not set, draft generation is disabled")
		return llm.DisabledGenerator{}, nil
	}
	return llm.NewGeminiGenerator(ctx, llm.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
}

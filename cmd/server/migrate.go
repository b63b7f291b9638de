package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Stewz00/mailforge-api/internal/database"
	"github.com/Stewz00/mailforge-api/internal/logging"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back database migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runMigrations(ctx, cmd, database.DirectionUp)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runMigrations(ctx, cmd, database.DirectionDown)
				},
			},
		},
	}
}

func runMigrations(ctx context.Context, cmd *cli.Command, direction database.Direction) error {
	dbURL := cmd.String("database-url")
	logger := logging.New(cmd.String("log-level"), cmd.String("log-format"), os.Stderr)

	if database.IsPostgresURL(dbURL) {
		if err := database.MigratePostgres(ctx, dbURL, direction); err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		logger.Info("migrations applied", slog.String("direction", string(direction)), slog.String("dialect", "postgres"))
		return nil
	}

	// Opening SQLite always migrates up first.
	db, err := database.OpenSQLite(ctx, dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if direction == database.DirectionDown {
		if err := database.Migrate(ctx, db.DB, database.DialectSQLite, direction); err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
	}
	logger.Info("migrations applied", slog.String("direction", string(direction)), slog.String("dialect", "sqlite"))
	return nil
}

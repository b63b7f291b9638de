package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Dialect selects both the goose dialect and the migrations directory.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Direction is the migration direction accepted by Migrate.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Dialect) dir() string {
	if d == DialectPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// Migrate applies (up) or rolls back one step of (down) the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, direction Direction) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}

	var err error
	switch direction {
	case DirectionUp:
		err = goose.UpContext(ctx, db, dialect.dir())
	case DirectionDown:
		err = goose.DownContext(ctx, db, dialect.dir())
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("running %s migrations: %w", direction, err)
	}
	return nil
}

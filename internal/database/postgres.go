package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
)

// DB represents a PostgreSQL database connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// IsPostgresURL reports whether dsn should be served by the Postgres store.
func IsPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// New creates a new database connection pool using the provided connection URL
// and brings the schema up to date.
func New(ctx context.Context, dbURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2

	if err := migratePostgres(ctx, poolConfig.ConnConfig, DirectionUp); err != nil {
		return nil, err
	}

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// MigratePostgres runs the embedded migrations against dbURL without opening a pool.
func MigratePostgres(ctx context.Context, dbURL string, direction Direction) error {
	connConfig, err := pgx.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("error parsing database URL: %w", err)
	}
	return migratePostgres(ctx, connConfig, direction)
}

func migratePostgres(ctx context.Context, connConfig *pgx.ConnConfig, direction Direction) error {
	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	return Migrate(ctx, sqlDB, DialectPostgres, direction)
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

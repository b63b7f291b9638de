package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Stewz00/mailforge-api/internal/database"
	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// Common errors that can be returned by the repository
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresUserRepository implements the UserRepository interface on a pgx pool
type PostgresUserRepository struct {
	db *database.DB
}

// Verify that PostgresUserRepository implements UserRepository interface
var _ interfaces.UserRepository = (*PostgresUserRepository)(nil)

// NewUserRepository creates a new Postgres-backed UserRepository
func NewUserRepository(db *database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a new user. Uniqueness is enforced by the users_email_key
// index, so concurrent signups for one email cannot both succeed.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error) {
	var user model.User
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, email, password_hash, is_verified, created_at`,
		email, passwordHash).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsVerified, &user.Created)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by their email address
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, email, password_hash, is_verified, created_at
		 FROM users
		 WHERE email = $1`,
		email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsVerified, &user.Created)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &user, nil
}

// Ping checks that the pool can reach the database
func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

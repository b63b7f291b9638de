package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteUserRepository implements the UserRepository interface on SQLite
type SQLiteUserRepository struct {
	db *sqlx.DB
}

var _ interfaces.UserRepository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a new SQLite-backed UserRepository
func NewSQLiteUserRepository(db *sqlx.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// userRow mirrors the users table; SQLite hands timestamps back as text
// unless the driver can see the declared column type.
type userRow struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	IsVerified   bool       `db:"is_verified"`
	Created      sqliteTime `db:"created_at"`
}

func (row *userRow) toModel() *model.User {
	return &model.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsVerified:   row.IsVerified,
		Created:      row.Created.Time,
	}
}

// sqliteTime scans CURRENT_TIMESTAMP values whether they arrive as time.Time or text.
type sqliteTime struct {
	time.Time
}

func (t *sqliteTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func (t *sqliteTime) parse(s string) error {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

func (r *SQLiteUserRepository) CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO users (email, password_hash)
		 VALUES (?, ?)
		 RETURNING id, email, password_hash, is_verified, created_at`,
		email, passwordHash)

	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return row.toModel(), nil
}

func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, email, password_hash, is_verified, created_at
		 FROM users
		 WHERE email = ?`,
		email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return row.toModel(), nil
}

func (r *SQLiteUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}

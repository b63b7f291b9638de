package interfaces

import (
	"context"

	"github.com/Stewz00/mailforge-api/internal/model"
)

// UserRepository defines the interface for the credential store
type UserRepository interface {
	// CreateUser inserts a user atomically; a duplicate email yields repository.ErrDuplicateEmail.
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	Ping(ctx context.Context) error
}

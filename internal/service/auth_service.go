package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Stewz00/mailforge-api/internal/apperror"
	"github.com/Stewz00/mailforge-api/internal/auth"
	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/Stewz00/mailforge-api/internal/repository"
	"github.com/Stewz00/mailforge-api/internal/validation"
)

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User  *model.User
	Token string
}

type AuthService struct {
	userRepo  interfaces.UserRepository
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo interfaces.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// Signup validates the credentials, stores a new user and issues a token for it.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	input := validation.UserSchema{Email: normalizeEmail(email), Password: password}
	if fields := s.validator.Validate(&input); fields != nil {
		// A registered email is reported as a duplicate whatever the password.
		if _, badEmail := fields["email"]; !badEmail && s.exists(ctx, input.Email) {
			return nil, apperror.DuplicateUser()
		}
		return nil, apperror.Validation(fields)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, input.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.DuplicateUser()
		}
		return nil, err
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed up", slog.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	input := validation.LoginSchema{Email: normalizeEmail(email), Password: password}
	if fields := s.validator.Validate(&input); fields != nil {
		return nil, apperror.Validation(fields)
	}

	user, err := s.userRepo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Keep the response time close to the wrong-password path.
			_ = s.hasher.Verify(s.dummy(), input.Password)
			s.logger.InfoContext(ctx, "login failed")
			return nil, apperror.InvalidCredentials()
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, input.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.ErrorContext(ctx, "stored password hash unusable",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.InfoContext(ctx, "login failed")
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Profile returns the stored record for an identity taken from a verified token.
func (s *AuthService) Profile(ctx context.Context, identity string) (*model.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) exists(ctx context.Context, email string) bool {
	_, err := s.userRepo.GetUserByEmail(ctx, email)
	return err == nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-1!")
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

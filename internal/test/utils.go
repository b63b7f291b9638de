package test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/Stewz00/mailforge-api/internal/repository"
)

// MockUserRepository implements interfaces.UserRepository in memory
type MockUserRepository struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int64

	// set to simulate a store failure
	Err error
}

// Verify that MockUserRepository implements UserRepository interface
var _ interfaces.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*model.User),
		nextID: 1,
	}
}

// CreateUser mocks creating a new user
func (r *MockUserRepository) CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if _, exists := r.users[email]; exists {
		return nil, repository.ErrDuplicateEmail
	}

	user := &model.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Created:      time.Now(),
	}
	r.nextID++
	r.users[email] = user

	copied := *user
	return &copied, nil
}

// GetUserByEmail mocks retrieving a user by email
func (r *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	user, exists := r.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MockUserRepository) Ping(ctx context.Context) error {
	return r.Err
}

// Delete removes a user so tests can exercise tokens that outlive their record.
func (r *MockUserRepository) Delete(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
}

// StoredHash returns the password hash kept for email.
func (r *MockUserRepository) StoredHash(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return u.PasswordHash
	}
	return ""
}

// MockMailTransport records every message it is asked to send
type MockMailTransport struct {
	mu   sync.Mutex
	sent []model.EmailMessage

	Err error
}

var _ interfaces.MailTransport = (*MockMailTransport)(nil)

func (m *MockMailTransport) Send(ctx context.Context, msg *model.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, *msg)
	return nil
}

// Sent returns a copy of the messages delivered so far.
func (m *MockMailTransport) Sent() []model.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.EmailMessage(nil), m.sent...)
}

// StubGenerator returns a fixed text and remembers the last prompt parts.
type StubGenerator struct {
	mu          sync.Mutex
	Text        string
	Err         error
	Instruction string
	Content     string
	Calls       int
}

var _ interfaces.TextGenerator = (*StubGenerator)(nil)

func (g *StubGenerator) Generate(ctx context.Context, instruction, content string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls++
	g.Instruction = instruction
	g.Content = content
	if g.Err != nil {
		return "", g.Err
	}
	return g.Text, nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations matches the PBKDF2-SHA256 work factor of the hashes
	// already stored by the previous backend.
	DefaultIterations = 600000

	saltLength = 16
	saltChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	method     = "pbkdf2:sha256"
)

var (
	ErrPasswordMismatch = errors.New("auth: invalid password")
	ErrMalformedHash    = errors.New("auth: malformed password hash")
)

// PasswordHasher produces and checks salted PBKDF2-SHA256 digests encoded as
// "pbkdf2:sha256:<iterations>$<salt>$<hex digest>".
type PasswordHasher struct {
	iterations int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{iterations: DefaultIterations}
}

// NewPasswordHasherForTest lets tests trade strength for speed.
func NewPasswordHasherForTest(iterations int) *PasswordHasher {
	return &PasswordHasher{iterations: iterations}
}

// Hash returns a new encoded digest with a fresh random salt.
func (p *PasswordHasher) Hash(password string) (string, error) {
	salt, err := randomSalt()
	if err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	digest := derive(password, salt, p.iterations)
	return fmt.Sprintf("%s:%d$%s$%s", method, p.iterations, salt, digest), nil
}

// Verify checks password against an encoded digest in constant time.
func (p *PasswordHasher) Verify(encoded, password string) error {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return ErrMalformedHash
	}

	header, salt, want := parts[0], parts[1], parts[2]
	if !strings.HasPrefix(header, method+":") {
		return ErrMalformedHash
	}
	iterations, err := strconv.Atoi(strings.TrimPrefix(header, method+":"))
	if err != nil || iterations <= 0 {
		return ErrMalformedHash
	}

	got := derive(password, salt, iterations)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func derive(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return hex.EncodeToString(key)
}

func randomSalt() (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	b := make([]byte, saltLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = saltChars[n.Int64()]
	}
	return string(b), nil
}

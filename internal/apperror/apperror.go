// Package apperror defines the error taxonomy shared by services and handlers.
// Services return *AppError values; the HTTP layer maps the wrapped sentinel
// to a status code with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not found")
	ErrMailTransport      = errors.New("mail transport error")
	ErrGeneration         = errors.New("generation error")
)

// AppError carries a sentinel kind, a client-safe message and, for validation
// failures, one message per offending field.
type AppError struct {
	Err     error
	Cause   error
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func Validation(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Invalid input",
		Fields:  fields,
	}
}

func DuplicateUser() *AppError {
	return &AppError{
		Err:     ErrDuplicateUser,
		Message: "User already exists",
	}
}

func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid credentials",
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// MailTransport wraps a transport failure; the underlying message is surfaced to the caller.
func MailTransport(cause error) *AppError {
	return &AppError{
		Err:     ErrMailTransport,
		Cause:   cause,
		Message: fmt.Sprintf("Failed to send email: %v", cause),
	}
}

// Generation wraps a failure of the text-generation backend.
func Generation(cause error) *AppError {
	return &AppError{
		Err:     ErrGeneration,
		Cause:   cause,
		Message: fmt.Sprintf("Failed to generate email: %v", cause),
	}
}

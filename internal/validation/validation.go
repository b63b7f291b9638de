// Package validation holds the request schemas and turns validator failures
// into one client-safe message per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// PasswordSymbols is the set of symbols a password may, and must, draw from.
const PasswordSymbols = "@$!%*#?&"

// UserSchema validates signup input.
type UserSchema struct {
	Email    string `json:"email" validate:"required,email,min=5,max=150"`
	Password string `json:"password" validate:"required,min=8,password"`
}

// LoginSchema only checks shape; the password rules are not re-applied so
// that accounts are never told which rule a wrong password broke.
type LoginSchema struct {
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required"`
}

// CampaignSchema validates an outbound email request.
type CampaignSchema struct {
	Recipients []string `json:"recipients" validate:"required,min=1,dive,email"`
	Subject    string   `json:"subject" validate:"required,min=1,max=200"`
	Body       string   `json:"body" validate:"required,min=10,max=5000"`
}

// DraftSchema bounds the untrusted fields forwarded to the generation backend.
type DraftSchema struct {
	CompanyName       string `json:"companyName" validate:"required,max=500"`
	Purpose           string `json:"purpose" validate:"required,max=500"`
	TriggerType       string `json:"triggerType" validate:"required,max=500"`
	AdditionalDetails string `json:"additionalDetails" validate:"max=500"`
}

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("password", validPassword)

	return &Validator{v: v}
}

// Validate returns nil when s satisfies its schema, otherwise a map from JSON
// field name to the message of the first rule that field violated.
func (v *Validator) Validate(s any) map[string]string {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_schema": "Invalid input."}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := topLevelField(fe.Field())
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe)
	}
	return out
}

// topLevelField strips element indexes so "recipients[2]" reports as "recipients".
func topLevelField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

// message never includes fe.Value(): rejected input is not reflected back.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "Must contain at least one item."
		}
		return "Missing data for required field."
	case "email":
		return "Not a valid email address."
	case "password":
		return fmt.Sprintf("Must contain at least one letter, one digit and one of %s, and no other symbols.", PasswordSymbols)
	case "min":
		if fe.Kind() == reflect.Slice {
			return "Must contain at least one item."
		}
		return lengthMessage(fe)
	case "max":
		return lengthMessage(fe)
	default:
		return "Invalid value."
	}
}

func lengthMessage(fe validator.FieldError) string {
	bounds, ok := lengthBounds[fe.Namespace()]
	if ok {
		return fmt.Sprintf("Length must be between %d and %d.", bounds[0], bounds[1])
	}
	if fe.Tag() == "min" {
		return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
	}
	return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
}

// lengthBounds lists fields that carry both a lower and an upper length limit.
var lengthBounds = map[string][2]int{
	"UserSchema.email":       {5, 150},
	"CampaignSchema.subject": {1, 200},
	"CampaignSchema.body":    {10, 5000},
}

func validPassword(fl validator.FieldLevel) bool {
	var letter, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case r <= unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return letter && digit && symbol
}

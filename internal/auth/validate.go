package auth

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// bcrypt refuses passwords longer than this many bytes.
const maxPasswordBytes = 72

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

// SignupInput is the payload accepted by signup.
type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
}

// LoginInput is the payload accepted by login. Identifier is a username or an email.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Normalize trims whitespace and lower-cases the email.
func (in SignupInput) Normalize() SignupInput {
	return SignupInput{
		Username: strings.TrimSpace(in.Username),
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
	}
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		// max= counts runes; bcrypt limits bytes.
		_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= maxPasswordBytes
		})
		validate = v
	})
	return validate
}

// violationMessages maps Struct.Field/tag to the client-facing message.
var violationMessages = map[string]string{
	"Username/required":   "Username is required",
	"Username/min":        "Username must be at least 3 characters long",
	"Username/username":   "Username can only contain letters, numbers, and underscores",
	"Email/required":      "Email is required",
	"Email/email":         "Please provide a valid email address",
	"Password/required":   "Password is required",
	"Password/min":        "Password must be at least 6 characters long",
	"Password/bcryptlen":  "Password must be at most 72 bytes long",
	"Identifier/required": "Identifier (username or email) is required",
}

// Validate runs struct validation and collects every violation, not just the first.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := violationMessages[fe.Field()+"/"+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		violations = append(violations, msg)
	}
	return &ValidationError{Violations: violations}
}

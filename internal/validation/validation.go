package validation

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Error is a single violated input constraint, safe to show to the client.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// must mirror the signup password policy everywhere a password is set
	v.RegisterValidation("userpassword", validPassword)
	return v
}

// validPassword requires at least 8 characters with one uppercase letter,
// one lowercase letter and one digit.
func validPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Validate checks the struct's declared constraints and returns the first
// violation as *Error, or nil. It is pure with respect to the HTTP layer and
// the store: a failure here short-circuits before any I/O.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &Error{Message: "Invalid input"}
	}
	fe := verrs[0]
	return &Error{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email address"
	case "min":
		return fmt.Sprintf("%s length must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s length must be at most %s", fe.Field(), fe.Param())
	case "userpassword":
		return "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, and one digit"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

package validation

import "strings"

// Account field rules, shared by request structs and the user service.
const (
	UsernameRule = "required,min=3,max=30,username"
	EmailRule    = "required,email,max=254"
	PasswordRule = "required,min=8,max=128,bcryptsafe"
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if err := ValidateVar("username", username, UsernameRule); err != nil {
		return err
	}
	if strings.HasPrefix(username, "-") || strings.HasSuffix(username, "-") {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "username",
			Tag:     "edge",
			Message: "username cannot start or end with a hyphen",
		}}}
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	return ValidateVar("email", email, EmailRule)
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	return ValidateVar("password", password, PasswordRule)
}

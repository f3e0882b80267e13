package utils

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// ValidateRequired validates that a string is not empty
func ValidateRequired(value, field, message string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, message)
	}
	return nil
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if err := ValidateRequired(email, "email", "Email is required."); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email", "Invalid email format.")
	}
	return nil
}

// ValidateURL validates an optional record URL
func ValidateURL(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NewValidationError("url", "URL must start with http:// or https://.")
	}
	return nil
}

// ValidateID validates a vault or record id given on the command line
func ValidateID(id, field string) error {
	if err := ValidateRequired(id, field, field+" is required."); err != nil {
		return err
	}

	if !idPattern.MatchString(id) {
		return NewValidationError(field, field+" contains invalid characters.")
	}
	return nil
}

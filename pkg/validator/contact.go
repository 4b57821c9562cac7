package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a valid UAE mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 050, 052, 054, 055, 056, or 058")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidEmail indicates email address is malformed
	ErrInvalidEmail = errors.New("invalid email address")
)

// validPrefixes contains all valid UAE mobile operator prefixes
var validPrefixes = []string{
	"050", // Etisalat
	"052", // du
	"054", // Etisalat
	"055", // du
	"056", // Etisalat
	"058", // du
}

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// emailRegex is a pragmatic address check, not a full RFC 5322 parser
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ContactValidator handles phone number and email validation
type ContactValidator struct{}

// NewContactValidator creates a new contact validator instance
func NewContactValidator() *ContactValidator {
	return &ContactValidator{}
}

// ValidatePhone validates a UAE mobile number
// Accepts format: 0501234567 or 050 123 4567 or +971 50 123 4567
// Returns sanitized phone number (digits only) and error if invalid
func (v *ContactValidator) ValidatePhone(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.SanitizePhone(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// SanitizePhone removes separators and normalizes the 971 country code
func (v *ContactValidator) SanitizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")

	// Replace country code with the local leading zero
	if strings.HasPrefix(phone, "971") && len(phone) == 12 {
		phone = "0" + phone[3:]
	}

	return phone
}

// IsValidPrefix checks if phone number has a valid UAE mobile prefix
func (v *ContactValidator) IsValidPrefix(phone string) bool {
	if len(phone) < 3 {
		return false
	}

	prefix := phone[:3]
	for _, validPrefix := range validPrefixes {
		if prefix == validPrefix {
			return true
		}
	}

	return false
}

// FormatPhone formats a phone number in the standard display format: 05X XXX XXXX
func (v *ContactValidator) FormatPhone(phone string) (string, error) {
	sanitized, err := v.ValidatePhone(phone)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s %s",
		sanitized[0:3],
		sanitized[3:6],
		sanitized[6:10],
	), nil
}

// ValidateEmail validates an email address and returns it lowercased
func (v *ContactValidator) ValidateEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(trimmed) {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

// IsValidPhone is a convenience method that returns true if phone is valid
func (v *ContactValidator) IsValidPhone(phone string) bool {
	_, err := v.ValidatePhone(phone)
	return err == nil
}

// IsValidEmail is a convenience method that returns true if email is valid
func (v *ContactValidator) IsValidEmail(email string) bool {
	_, err := v.ValidateEmail(email)
	return err == nil
}

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContactValidator(t *testing.T) {
	validator := NewContactValidator()
	assert.NotNil(t, validator)
}

func TestValidatePhone_ValidNumbers(t *testing.T) {
	validator := NewContactValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0501234567", "0501234567", "Standard format"},
		{"050 123 4567", "0501234567", "With spaces"},
		{"050-123-4567", "0501234567", "With dashes"},
		{"(050) 123 4567", "0501234567", "With parentheses"},
		{"0521234567", "0521234567", "du 052"},
		{"0541234567", "0541234567", "Etisalat 054"},
		{"0551234567", "0551234567", "du 055"},
		{"0561234567", "0561234567", "Etisalat 056"},
		{"0581234567", "0581234567", "du 058"},
		{"+971501234567", "0501234567", "With country code"},
		{"+971 50 123 4567", "0501234567", "With country code and spaces"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.ValidatePhone(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidatePhone_InvalidNumbers(t *testing.T) {
	validator := NewContactValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty"},
		{"050123456", ErrInvalidLength, "Too short"},
		{"05012345678", ErrInvalidLength, "Too long"},
		{"0511234567", ErrInvalidPrefix, "Landline prefix"},
		{"0601234567", ErrInvalidPrefix, "Unknown prefix"},
		{"050abc4567", ErrInvalidFormat, "Contains letters"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.ValidatePhone(tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFormatPhone(t *testing.T) {
	validator := NewContactValidator()

	formatted, err := validator.FormatPhone("+971501234567")
	require.NoError(t, err)
	assert.Equal(t, "050 123 4567", formatted)

	_, err = validator.FormatPhone("12345")
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	validator := NewContactValidator()

	email, err := validator.ValidateEmail("  Agent@GulfBridge.AE ")
	require.NoError(t, err)
	assert.Equal(t, "agent@gulfbridge.ae", email)

	invalid := []string{"", "plainaddress", "missing@tld", "@no-local.com", "spaces in@mail.com"}
	for _, input := range invalid {
		_, err := validator.ValidateEmail(input)
		assert.ErrorIs(t, err, ErrInvalidEmail, input)
	}
}

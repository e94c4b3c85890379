// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/uidoperator/internal/errors"
)

// LocalDateTimeLayout is the UTC timestamp format used by the bucket endpoints, with optional
// fractional seconds.
const LocalDateTimeLayout = "2006-01-02T15:04:05.999999999"

// localDateTimeMinutesLayout accepts timestamps that omit seconds.
const localDateTimeMinutesLayout = "2006-01-02T15:04"

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// EmailHash validates a SHA-256 digest given as base64 or hex.
var EmailHash = validation.NewStringRuleWithError(
	func(s string) bool {
		s = strings.TrimSpace(s)
		if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == sha256.Size {
			return true
		}
		b, err := hex.DecodeString(s)
		return err == nil && len(b) == sha256.Size
	},
	validation.NewError("validation_email_hash", "must be a base64 or hex encoded sha256 digest"),
)

// LocalDateTime validates a timestamp in LocalDateTimeLayout.
var LocalDateTime = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := ParseLocalDateTime(s)
		return err == nil
	},
	validation.NewError("validation_local_date_time", "invalid date, must conform to ISO 8601"),
)

// ParseLocalDateTime parses a timestamp without zone as UTC. Seconds are optional.
func ParseLocalDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(LocalDateTimeLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	if t, minutesErr := time.ParseInLocation(localDateTimeMinutesLayout, s, time.UTC); minutesErr == nil {
		return t, nil
	}
	return time.Time{}, err
}

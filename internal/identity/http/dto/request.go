// Package dto provides data transfer objects for the identity mapping endpoints.
package dto

import (
	"errors"
	"time"

	validation "github.com/jellydator/validation"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
	customValidation "github.com/allisson/uidoperator/internal/validation"
)

var errMissingSinceTimestamp = errors.New("missing parameter since_timestamp")

// MapBatchRequest is the body of a batch mapping call. Emails take precedence when both
// lists are given.
type MapBatchRequest struct {
	Email     []string `json:"email"`
	EmailHash []string `json:"email_hash"`
}

// Inputs normalizes every identifier in request order. Invalid entries are kept and marked
// as such so the caller decides what to drop.
func (r *MapBatchRequest) Inputs() []*identityDomain.IdentifierInput {
	if len(r.Email) > 0 {
		inputs := make([]*identityDomain.IdentifierInput, 0, len(r.Email))
		for _, email := range r.Email {
			inputs = append(inputs, identityService.NormalizeEmail(email))
		}
		return inputs
	}

	inputs := make([]*identityDomain.IdentifierInput, 0, len(r.EmailHash))
	for _, hash := range r.EmailHash {
		inputs = append(inputs, identityService.NormalizeHash(hash))
	}
	return inputs
}

// BucketsRequest holds the query of a modified buckets call.
type BucketsRequest struct {
	SinceTimestamp string `form:"since_timestamp"`
}

// Validate checks that since_timestamp is present and well formed.
func (r *BucketsRequest) Validate() error {
	if r.SinceTimestamp == "" {
		return errMissingSinceTimestamp
	}
	return validation.Validate(r.SinceTimestamp, customValidation.LocalDateTime)
}

// Since returns the parsed timestamp. Only meaningful after Validate succeeds.
func (r *BucketsRequest) Since() (time.Time, error) {
	return customValidation.ParseLocalDateTime(r.SinceTimestamp)
}

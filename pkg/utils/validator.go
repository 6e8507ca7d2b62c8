package utils

import (
	"slices"

	"github.com/printstarter/printstarter/pkg/errors"
)

// ValidateLength fails when value is longer than maxChars. Length is
// measured in runes so multi-byte input is not over-rejected.
func ValidateLength(name, value string, maxChars int) *errors.AppError {
	if len([]rune(value)) > maxChars {
		return errors.ErrLengthExceeded(name, maxChars)
	}
	return nil
}

// ValidateOneOf fails when value is not a member of the allowed set.
// Comparison is exact; normalization happens later, at the cache boundary.
func ValidateOneOf(name, value string, allowed []string) *errors.AppError {
	if !slices.Contains(allowed, value) {
		return errors.ErrNotOneOf(name)
	}
	return nil
}

package logging

import (
	"strings"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
)

// MaskSubject masks a token subject, preserving first and last characters.
// Example: "550e8400-e29b-41d4-a716-446655440000" -> "550e...0000"
func MaskSubject(sub string) string {
	return maskPartial(sub)
}

// MaskToken masks a bearer token, preserving only prefix.
// Example: "Bearer eyJhbGciOiJIUzI1NiJ9.xxx" -> "eyJh...***REDACTED***"
func MaskToken(token string) string {
	token = trimBearer(token)
	if token == "" {
		return constants.MaskPlaceholder
	}

	if len(token) > constants.MaskPreserveLen {
		return token[:constants.MaskPreserveLen] + constants.MaskSeparator + constants.MaskPlaceholder
	}
	return constants.MaskPlaceholder
}

// maskPartial applies partial masking to a string.
// If the string is shorter than MaskMinLength, it's fully masked.
// Otherwise, first and last MaskPreserveLen characters are preserved.
func maskPartial(s string) string {
	s = trimBearer(s)
	if len(s) < constants.MaskMinLength {
		return constants.MaskPlaceholder
	}

	prefix := s[:constants.MaskPreserveLen]
	suffix := s[len(s)-constants.MaskPreserveLen:]
	return prefix + constants.MaskSeparator + suffix
}

func trimBearer(s string) string {
	s = strings.TrimPrefix(s, constants.BearerPrefix)
	return strings.TrimPrefix(s, constants.BearerPrefixLower)
}

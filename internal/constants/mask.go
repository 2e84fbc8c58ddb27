package constants

// ============================================================================
// Masking Configuration
// ============================================================================

const (
	// DefaultMaskChar is repeated once per character of a masked value
	DefaultMaskChar = "*"

	// FieldSeparator splits the configured field list
	FieldSeparator = ","

	// FieldPatternFormat wraps the field alternation.
	// Group 1 is the field name, group 2 the value (quotes included).
	FieldPatternFormat = `"(%s)"\s*:\s*(".*?"|\d+(\.\d+)?|true|false|null)`

	// ValueGroup is the submatch index of the value span
	ValueGroup = 2
)

// ============================================================================
// Log Masking (tokens/subjects written to our own logs)
// ============================================================================

const (
	// MaskPlaceholder is the string used to replace fully masked values
	MaskPlaceholder = "***REDACTED***"

	// MaskPreserveLen is the number of characters to preserve at start/end
	MaskPreserveLen = 4

	// MaskMinLength is the minimum length for partial masking
	// Values shorter than this are fully masked
	MaskMinLength = 10

	// MaskSeparator is the separator between preserved prefix and suffix
	MaskSeparator = "..."
)

// ============================================================================
// Token Prefixes
// ============================================================================

const (
	BearerPrefix      = "Bearer "
	BearerPrefixLower = "bearer "
)

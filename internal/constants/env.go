package constants

// ============================================================================
// Environment Variable Names
// ============================================================================

const (
	// Logging
	EnvLogLevel    = "LOG_LEVEL"
	EnvEnvironment = "ENVIRONMENT"

	// Log levels
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"

	// Masking
	EnvMaskedFields = "RESPONSE_MASKED_FIELDS"
	EnvMaskChar     = "MASK_CHAR"
	EnvEnvFile      = "MASK_ENV_FILE"
)

// ============================================================================
// Default Values
// ============================================================================

const (
	// Environment
	DefaultEnvironment = "dev"

	// DefaultEnvFile is loaded with godotenv when present
	DefaultEnvFile = ".env"
)

package constants

// ============================================================================
// Validation Error Messages
// ============================================================================

const (
	ErrMaskerRequired    = "masker is required"
	ErrLoggerRequired    = "logger is required"
	ErrSecretKeyRequired = "secretKey is required"
	ErrAlgorithmRequired = "algorithm is required"
)

// ============================================================================
// Masking Error Messages
// ============================================================================

const (
	ErrCompileFieldPattern = "%w %q: %w"
)

// ============================================================================
// JWT Error Messages
// ============================================================================

const (
	ErrInvalidToken        = "invalid token: %w"
	ErrInvalidTokenClaims  = "invalid token claims"
	ErrMissingClaimSub     = "missing required claim: sub"
	ErrInvalidIssuer       = "invalid issuer: %v"
	ErrInvalidAudience     = "invalid audience: %v"
	ErrMissingScopePattern = "required scope missing: %s"
)

// ============================================================================
// Redis Error Messages
// ============================================================================

const (
	ErrPoolOptionsRequired = "pool options is required"
	ErrRedisURLParse       = "failed to parse redis url: %w"
	ErrRedisConnect        = "failed to connect to redis: %w"
	ErrRedisClientNil      = "redis client is nil"
	ErrStoreNil            = "store is nil"
	ErrRedisOperation      = "redis error: %w"
)

// ============================================================================
// Processor Error Messages
// ============================================================================

const (
	ErrStreamRecv = "ext_proc stream receive: %v"
	ErrStreamSend = "ext_proc stream send: %v"
)

// ============================================================================
// Denial Reasons (for logging)
// ============================================================================

const (
	ReasonMissingHeader = "missing_auth_header"
	ReasonInvalidToken  = "invalid_token"
	ReasonBodyTooLarge  = "body_too_large"
)

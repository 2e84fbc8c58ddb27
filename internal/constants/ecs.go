package constants

// ============================================================================
// Service Identity
// ============================================================================

const (
	ServiceName    = "json-masker"
	ServiceVersion = "1.0.0"
)

// ============================================================================
// ECS (Elastic Common Schema) Field Keys
// ============================================================================
//
// Reference: https://www.elastic.co/guide/en/ecs/current/ecs-field-reference.html

const (
	// Base fields
	ECSFieldTimestamp = "@timestamp"
	ECSFieldMessage   = "message"

	// Log fields
	ECSFieldLogLevel = "log.level"

	// Event fields
	ECSFieldEventAction   = "event.action"
	ECSFieldEventOutcome  = "event.outcome"
	ECSFieldEventReason   = "event.reason"
	ECSFieldEventDuration = "event.duration_ms"

	// User fields
	ECSFieldUserID = "user.id"

	// Error fields
	ECSFieldErrorMessage = "error.message"

	// Masking fields (custom)
	ECSFieldMaskFields  = "mask.fields"
	ECSFieldMaskMatches = "mask.matches"
	ECSFieldMaskResult  = "mask.result"
	ECSFieldMaskSource  = "mask.source"
	ECSFieldToken       = "auth.token"

	// Trace fields (ECS standard)
	ECSFieldTraceID = "trace.id"
	ECSFieldSpanID  = "span.id"
)

// ============================================================================
// ECS Event Actions
// ============================================================================

const (
	EventActionMaskInit       = "mask_init"
	EventActionMask           = "mask"
	EventActionAuthentication = "authentication"
)

// ============================================================================
// ECS Event Outcomes
// ============================================================================

const (
	EventOutcomeSuccess = "success"
	EventOutcomeFailure = "failure"
)

// ============================================================================
// ECS Version
// ============================================================================

const (
	ECSVersion = "8.11"
)

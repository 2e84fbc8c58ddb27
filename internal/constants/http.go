// Package constants provides centralized constant definitions for json-masker.
package constants

// ============================================================================
// HTTP Headers
// ============================================================================

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "content-length"

	// HeaderMasked marks messages and responses that went through the masker
	HeaderMasked = "x-masked"

	// B3 Trace Context headers (Istio/Envoy)
	HeaderB3TraceID = "x-b3-traceid"
	HeaderB3SpanID  = "x-b3-spanid"
)

// ============================================================================
// HTTP Response Messages
// ============================================================================

const (
	MsgMissingAuthHeader = "Missing Authorization header"
	MsgInvalidToken      = "Invalid token"
	MsgBodyTooLarge      = "Request body too large"
	MsgBodyRead          = "Failed to read request body"
)

// ============================================================================
// HTTP Paths
// ============================================================================

const (
	PathMetrics = "/metrics"
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathV1      = "/v1"
	PathMask    = "/mask"
	PathFields  = "/fields"
)

// ============================================================================
// Query Parameters
// ============================================================================

const (
	QueryMask = "mask"
)

// ============================================================================
// Health Check
// ============================================================================

const (
	HealthOK = "ok"
)

// ============================================================================
// Content Types
// ============================================================================

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json"
)

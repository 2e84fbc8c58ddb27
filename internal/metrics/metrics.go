package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "json_masker"

// ============================================================================
// Histogram bucket configurations
// ============================================================================

const (
	// Request duration: 0.1ms ~ 2s (body buffering dominates for large payloads)
	requestDurationMin   = 0.0001
	requestDurationMax   = 2.0
	requestDurationCount = 14

	// Body size: 64B ~ 16MiB
	bodySizeMin   = 64
	bodySizeMax   = 16 << 20
	bodySizeCount = 10
)

// ============================================================================
// Histograms
// ============================================================================

var (
	// RequestDuration: time to handle one masking request
	// Labels: transport (ext_proc/http/mq), result (masked/passthrough/error)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling masking requests",
			Buckets:   prometheus.ExponentialBucketsRange(requestDurationMin, requestDurationMax, requestDurationCount),
		},
		[]string{"transport", "result"},
	)

	// BodySize: size of payloads handed to the masker
	BodySize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "body_size_bytes",
			Help:      "Size of payloads passed to the masker",
			Buckets:   prometheus.ExponentialBucketsRange(bodySizeMin, bodySizeMax, bodySizeCount),
		},
		[]string{"transport"},
	)
)

// ============================================================================
// Counters
// ============================================================================

var (
	// RequestsTotal: total requests by transport and result
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of masking requests",
		},
		[]string{"transport", "result"},
	)

	// ErrorsTotal: errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by type",
		},
		[]string{"type"},
	)

	// ProcessorMessages: ext_proc messages by phase
	ProcessorMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ext_proc",
			Name:      "messages_total",
			Help:      "Total number of ext_proc messages received by phase",
		},
		[]string{"phase"},
	)
)

// ============================================================================
// Gauges
// ============================================================================

var (
	// StreamsInFlight: open ext_proc streams
	StreamsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ext_proc",
			Name:      "streams_in_flight",
			Help:      "Number of ext_proc streams currently open",
		},
	)
)

// ============================================================================
// Label constants
// ============================================================================

// Transport labels
const (
	TransportExtProc = "ext_proc"
	TransportHTTP    = "http"
	TransportMQ      = "mq"
)

// Result labels
const (
	ResultMasked      = "masked"
	ResultPassthrough = "passthrough"
	ResultError       = "error"
	ResultDenied      = "denied"
)

// Phase labels for ProcessorMessages
const (
	PhaseRequestHeaders   = "request_headers"
	PhaseRequestBody      = "request_body"
	PhaseRequestTrailers  = "request_trailers"
	PhaseResponseHeaders  = "response_headers"
	PhaseResponseBody     = "response_body"
	PhaseResponseTrailers = "response_trailers"
	PhaseUnknown          = "unknown"
)

// Error type labels for ErrorsTotal
const (
	ErrorTypeStreamRecv = "stream_recv"
	ErrorTypeStreamSend = "stream_send"
	ErrorTypeAuth       = "auth"
	ErrorTypeBodyRead   = "body_read"
	ErrorTypePublish    = "publish"
)

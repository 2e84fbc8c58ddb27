// Package server implements the Envoy external processing (ext_proc) service
// that masks JSON response bodies on their way back to the client.
//
// Envoy must send response bodies in BUFFERED mode: each body message is
// masked on its own, so a field split across streamed chunks is not matched.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	corev3 "github.com/envoyproxy/go-control-plane/envoy/config/core/v3"
	extprocv3 "github.com/envoyproxy/go-control-plane/envoy/service/ext_proc/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
	"github.com/eco2-team/backend/domains/json-masker/internal/masking"
	"github.com/eco2-team/backend/domains/json-masker/internal/metrics"
)

type ResponseProcessor struct {
	masker   *masking.Masker
	maskChar string
	logger   *logging.Logger
}

func New(masker *masking.Masker, maskChar string, logger *logging.Logger) (*ResponseProcessor, error) {
	if masker == nil {
		return nil, errors.New(constants.ErrMaskerRequired)
	}
	if logger == nil {
		return nil, errors.New(constants.ErrLoggerRequired)
	}
	return &ResponseProcessor{
		masker:   masker,
		maskChar: maskChar,
		logger:   logger,
	}, nil
}

// Process handles one ext_proc stream, i.e. one HTTP request/response pair.
func (s *ResponseProcessor) Process(stream extprocv3.ExternalProcessor_ProcessServer) error {
	metrics.StreamsInFlight.Inc()
	defer metrics.StreamsInFlight.Dec()

	ctx := stream.Context()
	logger := s.logger.WithContext(ctx)

	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return status.Error(codes.Canceled, "ext_proc stream canceled")
			}
			metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeStreamRecv).Inc()
			logger.Error("ext_proc receive failed", "error", err)
			return status.Errorf(codes.Unknown, constants.ErrStreamRecv, err)
		}

		resp, l := s.handle(ctx, req, logger)
		logger = l
		if resp == nil {
			continue
		}

		if err := stream.Send(resp); err != nil {
			metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeStreamSend).Inc()
			logger.Error("ext_proc send failed", "error", err)
			return status.Errorf(codes.Unknown, constants.ErrStreamSend, err)
		}
	}
}

// handle builds the reply for a single processing message. The returned
// logger carries trace context once request headers have been seen.
func (s *ResponseProcessor) handle(ctx context.Context, req *extprocv3.ProcessingRequest, logger *logging.Logger) (*extprocv3.ProcessingResponse, *logging.Logger) {
	switch v := req.Request.(type) {
	case *extprocv3.ProcessingRequest_RequestHeaders:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseRequestHeaders).Inc()
		headers := v.RequestHeaders.GetHeaders()
		logger = logger.WithTrace(headerValue(headers, constants.HeaderB3TraceID), headerValue(headers, constants.HeaderB3SpanID))
		return &extprocv3.ProcessingResponse{
			Response: &extprocv3.ProcessingResponse_RequestHeaders{
				RequestHeaders: &extprocv3.HeadersResponse{Response: continueResponse()},
			},
		}, logger

	case *extprocv3.ProcessingRequest_RequestBody:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseRequestBody).Inc()
		return &extprocv3.ProcessingResponse{
			Response: &extprocv3.ProcessingResponse_RequestBody{
				RequestBody: &extprocv3.BodyResponse{Response: continueResponse()},
			},
		}, logger

	case *extprocv3.ProcessingRequest_RequestTrailers:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseRequestTrailers).Inc()
		return &extprocv3.ProcessingResponse{
			Response: &extprocv3.ProcessingResponse_RequestTrailers{
				RequestTrailers: &extprocv3.TrailersResponse{},
			},
		}, logger

	case *extprocv3.ProcessingRequest_ResponseHeaders:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseResponseHeaders).Inc()
		common := continueResponse()
		if s.masker.Enabled() {
			// masked length differs from the original for multi-character masks
			common.HeaderMutation = &extprocv3.HeaderMutation{
				RemoveHeaders: []string{constants.HeaderContentLength},
			}
		}
		return &extprocv3.ProcessingResponse{
			Response: &extprocv3.ProcessingResponse_ResponseHeaders{
				ResponseHeaders: &extprocv3.HeadersResponse{Response: common},
			},
		}, logger

	case *extprocv3.ProcessingRequest_ResponseBody:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseResponseBody).Inc()
		return &extprocv3.ProcessingResponse{
			Response: &extprocv3.ProcessingResponse_ResponseBody{
				ResponseBody: &extprocv3.BodyResponse{Response: s.maskBody(ctx, v.ResponseBody.GetBody(), logger)},
			},
		}, logger

	case *extprocv3.ProcessingRequest_ResponseTrailers:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseResponseTrailers).Inc()
		return &extprocv3.ProcessingResponse{
			Response: &extprocv3.ProcessingResponse_ResponseTrailers{
				ResponseTrailers: &extprocv3.TrailersResponse{},
			},
		}, logger

	default:
		metrics.ProcessorMessages.WithLabelValues(metrics.PhaseUnknown).Inc()
		logger.Warn("Unknown ext_proc message", "type", fmt.Sprintf("%T", req.Request))
		return nil, logger
	}
}

func (s *ResponseProcessor) maskBody(ctx context.Context, body []byte, logger *logging.Logger) *extprocv3.CommonResponse {
	start := time.Now()
	common := continueResponse()
	metrics.BodySize.WithLabelValues(metrics.TransportExtProc).Observe(float64(len(body)))

	if !s.masker.Enabled() {
		record(metrics.ResultPassthrough, start)
		return common
	}

	masked := s.masker.MaskFieldsContext(ctx, string(body), s.maskChar)
	common.BodyMutation = &extprocv3.BodyMutation{
		Mutation: &extprocv3.BodyMutation_Body{Body: []byte(masked)},
	}
	record(metrics.ResultMasked, start)
	logger.WithDuration(time.Since(start)).Debug("Response body masked",
		"body_bytes", len(body),
		"masked_bytes", len(masked),
	)
	return common
}

func record(result string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(metrics.TransportExtProc, result).Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues(metrics.TransportExtProc, result).Inc()
}

func continueResponse() *extprocv3.CommonResponse {
	return &extprocv3.CommonResponse{
		Status: extprocv3.CommonResponse_CONTINUE,
	}
}

// headerValue returns the first value of key. Envoy fills RawValue instead
// of Value on recent versions, so both are checked.
func headerValue(headers *corev3.HeaderMap, key string) string {
	for _, h := range headers.GetHeaders() {
		if h.GetKey() != key {
			continue
		}
		if v := h.GetValue(); v != "" {
			return v
		}
		return string(h.GetRawValue())
	}
	return ""
}

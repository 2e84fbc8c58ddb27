package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/jwt"
	"github.com/eco2-team/backend/domains/json-masker/internal/metrics"
)

type fieldsResponse struct {
	Enabled bool     `json:"enabled"`
	Fields  []string `json:"fields"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(constants.HealthOK))
}

// Mask returns the request body with configured fields masked. The "mask"
// query parameter overrides the configured mask character.
func (h *Handler) Mask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.record(metrics.ResultError, start)
			http.Error(w, constants.MsgBodyTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeBodyRead).Inc()
		h.record(metrics.ResultError, start)
		http.Error(w, constants.MsgBodyRead, http.StatusBadRequest)
		return
	}
	metrics.BodySize.WithLabelValues(metrics.TransportHTTP).Observe(float64(len(body)))

	maskChar := h.maskChar
	if q := r.URL.Query(); q.Has(constants.QueryMask) {
		maskChar = q.Get(constants.QueryMask)
	}

	masked := h.masker.MaskFieldsContext(r.Context(), string(body), maskChar)

	contentType := r.Header.Get(constants.HeaderContentType)
	if contentType == "" {
		contentType = constants.ContentTypeText
	}
	w.Header().Set(constants.HeaderContentType, contentType)
	w.Header().Set(constants.HeaderMasked, strconv.FormatBool(h.masker.Enabled()))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(masked))

	if h.masker.Enabled() {
		h.record(metrics.ResultMasked, start)
	} else {
		h.record(metrics.ResultPassthrough, start)
	}
}

// Fields lists the configured field names.
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	resp := fieldsResponse{
		Enabled: h.masker.Enabled(),
		Fields:  h.masker.Fields(),
	}
	if resp.Fields == nil {
		resp.Fields = []string{}
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode fields response", "error", err)
	}
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		token := r.Header.Get(constants.HeaderAuthorization)
		if token == "" {
			h.logger.AuthDeny(r.Method, r.URL.Path, r.Host, "", constants.ReasonMissingHeader, nil)
			h.record(metrics.ResultDenied, start)
			http.Error(w, constants.MsgMissingAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := h.verifier.Verify(token)
		if err != nil {
			h.logger.AuthDeny(r.Method, r.URL.Path, r.Host, token, constants.ReasonInvalidToken, err)
			metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeAuth).Inc()
			h.record(metrics.ResultDenied, start)
			http.Error(w, constants.MsgInvalidToken, http.StatusUnauthorized)
			return
		}

		h.logger.AuthAllow(r.Method, r.URL.Path, r.Host, jwt.Subject(claims))
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) record(result string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(metrics.TransportHTTP, result).Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues(metrics.TransportHTTP, result).Inc()
}

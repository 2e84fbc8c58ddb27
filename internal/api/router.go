// Package api exposes the masker over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eco2-team/backend/domains/json-masker/internal/config"
	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/jwt"
	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
	"github.com/eco2-team/backend/domains/json-masker/internal/masking"
)

// TokenVerifier validates bearer tokens. *jwt.Verifier satisfies it.
type TokenVerifier interface {
	Verify(token string) (jwt.Claims, error)
}

var _ TokenVerifier = (*jwt.Verifier)(nil)

// Options configures the HTTP handlers.
type Options struct {
	MaskChar     string
	MaxBodyBytes int64
	// Verifier enables bearer authentication on /v1 when set.
	Verifier TokenVerifier
}

type Handler struct {
	masker   *masking.Masker
	maskChar string
	maxBody  int64
	verifier TokenVerifier
	logger   *logging.Logger
}

func NewHandler(masker *masking.Masker, opts Options, logger *logging.Logger) (*Handler, error) {
	if masker == nil {
		return nil, errors.New(constants.ErrMaskerRequired)
	}
	if logger == nil {
		return nil, errors.New(constants.ErrLoggerRequired)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	return &Handler{
		masker:   masker,
		maskChar: opts.MaskChar,
		maxBody:  opts.MaxBodyBytes,
		verifier: opts.Verifier,
		logger:   logger,
	}, nil
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get(constants.PathHealth, h.Health)

	r.Route(constants.PathV1, func(r chi.Router) {
		if h.verifier != nil {
			r.Use(h.authenticate)
		}
		r.Post(constants.PathMask, h.Mask)
		r.Get(constants.PathFields, h.Fields)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.WithContext(r.Context()).
			WithRequest(r.Method, r.URL.Path, r.Host).
			WithDuration(time.Since(start)).
			Debug("HTTP request",
				"request_id", middleware.GetReqID(r.Context()),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
			)
	})
}

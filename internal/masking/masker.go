// Package masking replaces the values of configured JSON fields with a run of
// mask characters, working on the raw text instead of a decoded document.
//
// The field pattern is compiled once by New. A Masker is immutable afterwards
// and safe for concurrent use.
package masking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
	"github.com/eco2-team/backend/domains/json-masker/internal/tracing"
)

// ErrInvalidFieldPattern is returned by New when the field list does not
// compile. Field names are not escaped, so regex metacharacters end up here.
var ErrInvalidFieldPattern = errors.New("invalid masked field pattern")

// Masker masks configured fields. A Masker built from a blank field list is
// disabled and returns every input unchanged.
type Masker struct {
	fields  string
	pattern *regexp.Regexp
	logger  *logging.Logger
}

// New compiles the matcher for a comma-separated field list.
func New(fields string, logger *logging.Logger) (*Masker, error) {
	if logger == nil {
		return nil, errors.New(constants.ErrLoggerRequired)
	}

	m := &Masker{fields: fields, logger: logger}
	if strings.TrimSpace(fields) == "" {
		logger.MaskingDisabled()
		fieldsConfigured.Set(0)
		return m, nil
	}

	logger.MaskingEnabled(fields)
	pattern, err := regexp.Compile(BuildPattern(fields))
	if err != nil {
		return nil, fmt.Errorf(constants.ErrCompileFieldPattern, ErrInvalidFieldPattern, fields, err)
	}
	m.pattern = pattern
	fieldsConfigured.Set(float64(len(m.Fields())))
	return m, nil
}

// BuildPattern returns the expression matched for fields. The list is joined
// literally: no trimming, no escaping.
func BuildPattern(fields string) string {
	return fmt.Sprintf(constants.FieldPatternFormat, strings.ReplaceAll(fields, constants.FieldSeparator, "|"))
}

// Enabled reports whether any field is configured.
func (m *Masker) Enabled() bool {
	return m != nil && m.pattern != nil
}

// Fields returns the configured field names as split from the configuration.
func (m *Masker) Fields() []string {
	if !m.Enabled() {
		return nil
	}
	return strings.Split(m.fields, constants.FieldSeparator)
}

// Pattern returns the compiled expression, or "" when masking is disabled.
func (m *Masker) Pattern() string {
	if !m.Enabled() {
		return ""
	}
	return m.pattern.String()
}

// MaskFields replaces every matched value in json with maskChar repeated once
// per character of the value. Quoted values keep their quotes; numbers and
// literals are replaced without quotes.
func (m *Masker) MaskFields(json, maskChar string) string {
	out, _ := m.mask(json, maskChar)
	return out
}

// MaskFieldsContext is MaskFields wrapped in a tracing span.
func (m *Masker) MaskFieldsContext(ctx context.Context, json, maskChar string) string {
	_, span := tracing.StartSpan(ctx, "masking.mask_fields",
		attribute.Bool("mask.enabled", m.Enabled()),
		attribute.Int("mask.input_bytes", len(json)),
	)
	defer span.End()

	out, matches := m.mask(json, maskChar)
	span.SetAttributes(attribute.Int(constants.ECSFieldMaskMatches, matches))
	return out
}

func (m *Masker) mask(json, maskChar string) (string, int) {
	if !m.Enabled() {
		callsTotal.WithLabelValues(stateDisabled).Inc()
		return json, 0
	}

	start := time.Now()
	matches := m.pattern.FindAllStringSubmatchIndex(json, -1)

	var b strings.Builder
	b.Grow(len(json))
	lastEnd := 0
	for _, loc := range matches {
		valueStart, valueEnd := loc[2*constants.ValueGroup], loc[2*constants.ValueGroup+1]
		b.WriteString(json[lastEnd:valueStart])
		b.WriteString(maskValue(json[valueStart:valueEnd], maskChar))
		lastEnd = valueEnd
	}
	b.WriteString(json[lastEnd:])
	result := b.String()

	callsTotal.WithLabelValues(stateEnabled).Inc()
	valuesMasked.Add(float64(len(matches)))
	maskDuration.Observe(time.Since(start).Seconds())

	m.logger.Masked(result, len(matches))
	return result, len(matches)
}

// maskValue masks a single value span. Length is counted in characters.
func maskValue(value, maskChar string) string {
	if strings.HasPrefix(value, `"`) {
		return `"` + strings.Repeat(maskChar, utf8.RuneCountInString(value)-2) + `"`
	}
	return strings.Repeat(maskChar, utf8.RuneCountInString(value))
}

package masking

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
)

func newMasker(t *testing.T, fields string) *Masker {
	t.Helper()
	m, err := New(fields, logging.NewTestLogger())
	require.NoError(t, err)
	return m
}

func TestMaskFields(t *testing.T) {
	tests := []struct {
		name     string
		fields   string
		input    string
		maskChar string
		want     string
	}{
		{
			name:     "quoted value",
			fields:   "password",
			input:    `"password": "secret123"`,
			maskChar: "*",
			want:     `"password": "*********"`,
		},
		{
			name:     "integer value",
			fields:   "age",
			input:    `"age": 42`,
			maskChar: "#",
			want:     `"age": ##`,
		},
		{
			name:     "decimal value",
			fields:   "amount",
			input:    `{"amount":12.50,"currency":"EUR"}`,
			maskChar: "*",
			want:     `{"amount":*****,"currency":"EUR"}`,
		},
		{
			name:     "boolean value",
			fields:   "active",
			input:    `"active": true`,
			maskChar: "X",
			want:     `"active": XXXX`,
		},
		{
			name:     "null value",
			fields:   "ssn",
			input:    `{"ssn": null}`,
			maskChar: "*",
			want:     `{"ssn": ****}`,
		},
		{
			name:     "only configured fields",
			fields:   "password",
			input:    `{"password":"x","name":"y"}`,
			maskChar: "*",
			want:     `{"password":"*","name":"y"}`,
		},
		{
			name:     "several fields and occurrences",
			fields:   "password,ssn",
			input:    `[{"ssn":"123-45-6789","password":"pw"},{"ssn":"1","id":7}]`,
			maskChar: "*",
			want:     `[{"ssn":"***********","password":"**"},{"ssn":"*","id":7}]`,
		},
		{
			name:     "whitespace around colon preserved",
			fields:   "token",
			input:    "{\"token\" \t:\n  \"abc\"}",
			maskChar: "*",
			want:     "{\"token\" \t:\n  \"***\"}",
		},
		{
			name:     "empty string stays empty",
			fields:   "password",
			input:    `{"password":""}`,
			maskChar: "*",
			want:     `{"password":""}`,
		},
		{
			name:     "multi-character mask unit",
			fields:   "pin",
			input:    `{"pin":"abc"}`,
			maskChar: "ab",
			want:     `{"pin":"ababab"}`,
		},
		{
			name:     "length counted in characters",
			fields:   "name",
			input:    `{"name":"héllo"}`,
			maskChar: "*",
			want:     `{"name":"*****"}`,
		},
		{
			name:     "nested occurrence matched textually",
			fields:   "password",
			input:    `{"user":{"password":"pw1"}}`,
			maskChar: "*",
			want:     `{"user":{"password":"***"}}`,
		},
		{
			name:     "negative number is not a value match",
			fields:   "balance",
			input:    `{"balance":-5}`,
			maskChar: "*",
			want:     `{"balance":-5}`,
		},
		{
			name:     "object value is not a value match",
			fields:   "card",
			input:    `{"card":{"number":"4111"}}`,
			maskChar: "*",
			want:     `{"card":{"number":"4111"}}`,
		},
		{
			name:     "escaped quote ends the value early",
			fields:   "password",
			input:    `{"password":"a\"b","x":1}`,
			maskChar: "*",
			want:     `{"password":"**"b","x":1}`,
		},
		{
			name:     "field names are not escaped",
			fields:   "amount.due",
			input:    `{"amountXdue":10,"amount.due":20}`,
			maskChar: "*",
			want:     `{"amountXdue":**,"amount.due":**}`,
		},
		{
			name:     "field name must match exactly",
			fields:   "pass",
			input:    `{"password":"secret","pass":"x"}`,
			maskChar: "*",
			want:     `{"password":"secret","pass":"*"}`,
		},
		{
			name:     "first alternative that completes wins",
			fields:   "pass,password",
			input:    `{"password":"secret"}`,
			maskChar: "*",
			want:     `{"password":"******"}`,
		},
		{
			name:     "not json at all",
			fields:   "password",
			input:    `password=secret`,
			maskChar: "*",
			want:     `password=secret`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMasker(t, tt.fields)
			assert.Equal(t, tt.want, m.MaskFields(tt.input, tt.maskChar))
		})
	}
}

func TestMaskFields_Disabled(t *testing.T) {
	for _, fields := range []string{"", "   ", "\t\n"} {
		m := newMasker(t, fields)
		assert.False(t, m.Enabled())
		assert.Nil(t, m.Fields())
		assert.Empty(t, m.Pattern())

		input := `{"password":"secret","age":42}`
		assert.Equal(t, input, m.MaskFields(input, "*"))
	}
}

func TestMaskFields_NilMasker(t *testing.T) {
	var m *Masker
	assert.Equal(t, `{"a":1}`, m.MaskFields(`{"a":1}`, "*"))
}

func TestMaskFields_StructurePreserved(t *testing.T) {
	m := newMasker(t, "password,age")
	input := `{"user":"bob", "password" : "hunter2", "age":31, "note":"age: 3"}`

	got := m.MaskFields(input, "*")

	require.Len(t, got, len(input))
	assert.Equal(t, `{"user":"bob", "password" : "*******", "age":**, "note":"age: 3"}`, got)
}

func TestMaskFields_NotIdempotentForLiterals(t *testing.T) {
	m := newMasker(t, "password,age")

	once := m.MaskFields(`{"password":"pw","age":42}`, "*")
	assert.Equal(t, `{"password":"**","age":**}`, once)

	// quoted masks still match the value grammar; unquoted masks do not
	twice := m.MaskFields(once, "#")
	assert.Equal(t, `{"password":"##","age":**}`, twice)
}

func TestMaskFieldsContext(t *testing.T) {
	m := newMasker(t, "password")
	got := m.MaskFieldsContext(context.Background(), `{"password":"abc"}`, "*")
	assert.Equal(t, `{"password":"***"}`, got)
}

func TestMaskFields_Concurrent(t *testing.T) {
	m := newMasker(t, "password")
	input := `{"password":"secret"}`
	want := `{"password":"******"}`

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := m.MaskFields(input, "*"); got != want {
					t.Errorf("MaskFields() = %q, want %q", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNew_InvalidPattern(t *testing.T) {
	for _, fields := range []string{"pass[word", "a(b", "x,y)"} {
		m, err := New(fields, logging.NewTestLogger())
		assert.Nil(t, m)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidFieldPattern), "error %v should wrap ErrInvalidFieldPattern", err)
		assert.Contains(t, err.Error(), fields)
	}
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New("password", nil)
	assert.Error(t, err)
}

func TestNew_FieldsAndPattern(t *testing.T) {
	m := newMasker(t, "password,ssn, card")

	assert.True(t, m.Enabled())
	assert.Equal(t, []string{"password", "ssn", " card"}, m.Fields())
	assert.Equal(t, `"(password|ssn| card)"\s*:\s*(".*?"|\d+(\.\d+)?|true|false|null)`, m.Pattern())
}

func TestNew_LogsConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&logging.Config{Level: logging.LevelDebug, Output: &buf, Environment: "test"})

	_, err := New("password,ssn", logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Masked fields property: password,ssn")

	buf.Reset()
	_, err = New("", logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No fields configured for masking")
	assert.Contains(t, buf.String(), `"log.level":"WARN"`)
}

func TestMaskFields_LogsResult(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&logging.Config{Level: logging.LevelInfo, Output: &buf, Environment: "test"})
	m, err := New("password", logger)
	require.NoError(t, err)
	buf.Reset()

	m.MaskFields(`{"password":"abc"}`, "*")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"mask.matches":1`)
	assert.Contains(t, lines[0], `Masked Response: {\"password\":\"***\"}`)
}

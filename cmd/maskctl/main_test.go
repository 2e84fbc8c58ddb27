package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eco2-team/backend/domains/json-masker/internal/masking"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMaskctl_Stdin(t *testing.T) {
	out, _, err := execute(t, `{"password":"hunter2","id":7}`, "--fields", "password,id")
	require.NoError(t, err)
	assert.Equal(t, `{"password":"*******","id":*}`, out)
}

func TestMaskctl_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ssn":"123-45-6789"}`), 0o600))

	out, _, err := execute(t, "", "--fields", "ssn", "--mask", "#", path)
	require.NoError(t, err)
	assert.Equal(t, `{"ssn":"###########"}`, out)
}

func TestMaskctl_FieldsFromEnv(t *testing.T) {
	t.Setenv("RESPONSE_MASKED_FIELDS", "token")
	t.Setenv("MASK_CHAR", "x")

	out, _, err := execute(t, `{"token":"abc"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"token":"xxx"}`, out)
}

func TestMaskctl_EnvFile(t *testing.T) {
	t.Setenv("RESPONSE_MASKED_FIELDS", "")
	os.Unsetenv("RESPONSE_MASKED_FIELDS")
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("RESPONSE_MASKED_FIELDS=pin\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RESPONSE_MASKED_FIELDS") })

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(`{"pin":1234}`))
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", envFile})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, `{"pin":****}`, stdout.String())
}

func TestMaskctl_NoFieldsPassesThrough(t *testing.T) {
	t.Setenv("RESPONSE_MASKED_FIELDS", "")

	out, _, err := execute(t, `{"password":"hunter2"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"password":"hunter2"}`, out)
}

func TestMaskctl_InvalidPattern(t *testing.T) {
	_, _, err := execute(t, `{}`, "--fields", "pass[word")
	require.Error(t, err)
	assert.True(t, errors.Is(err, masking.ErrInvalidFieldPattern))
}

func TestMaskctl_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "--fields", "a", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

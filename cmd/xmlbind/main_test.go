package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

func TestRun_NoArgs(t *testing.T) {
	_, stderr, err := runCLI(t)

	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
	assert.Contains(t, stderr, "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, _, err := runCLI(t, "render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "render"`)
}

func TestRun_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "xmlbind describe")
}

func TestCheck_Calendar(t *testing.T) {
	stdout, _, err := runCLI(t, "check", "xmlbind/examples/calendar")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 error(s), 0 warning(s)")
}

func TestCheck_Invalid(t *testing.T) {
	stdout, _, err := runCLI(t, "check", "xmlbind/examples/invalid")

	var exit *exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 1, exit.ExitCode())

	assert.Contains(t, stdout, "invalid.Typo.Name: [unknown_option]")
	assert.Contains(t, stdout, "(did you mean attribute?)")
	assert.Contains(t, stdout, "[multiple_text]")
	assert.Contains(t, stdout, "[flatten_cycle]")
	assert.Contains(t, stdout, "7 error(s)")
}

func TestCheck_Binding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binding.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: "1"
types:
  xmlbind/examples/calendar.Extra:
    fields:
      Weeks: attribute
`), 0o600))

	stdout, _, err := runCLI(t, "check", "--binding", path, "xmlbind/examples/calendar")
	require.Error(t, err)
	assert.Contains(t, stdout, "[unknown_field]")
	assert.Contains(t, stdout, "(did you mean Week?)")
}

func TestCheck_MissingBinding(t *testing.T) {
	_, _, err := runCLI(t, "check", "--binding", filepath.Join(t.TempDir(), "none.yaml"), "xmlbind/examples/calendar")
	require.Error(t, err)

	var exit *exitError
	assert.False(t, errors.As(err, &exit))
}

func TestDescribe(t *testing.T) {
	stdout, _, err := runCLI(t, "describe", "xmlbind/examples/calendar", "Entry")
	require.NoError(t, err)
	assert.Contains(t, stdout, "xmlbind/examples/calendar.Entry -> <Date>")
	assert.Contains(t, stdout, "custom")
}

func TestDescribe_Dump(t *testing.T) {
	stdout, _, err := runCLI(t, "describe", "--dump", "xmlbind/examples/calendar", "calendar.Extra")
	require.NoError(t, err)
	assert.Contains(t, stdout, "analyze.Layout")
	assert.Contains(t, stdout, `Element: (string) (len=5) "Extra"`)
}

func TestDescribe_Errors(t *testing.T) {
	_, _, err := runCLI(t, "describe", "xmlbind/examples/calendar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs PATTERN and TYPE")

	_, _, err = runCLI(t, "describe", "xmlbind/examples/calendar", "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type Missing not found")

	_, _, err = runCLI(t, "describe", "xmlbind/examples/invalid", "Typo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_option")
}

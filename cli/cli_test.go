package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"loan-widget/service"
)

func writeConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	content := strings.Join([]string{
		"widget:",
		"  simulated_latency: 0s",
		"storage:",
		"  backend: " + backend,
		"  sqlite_path: " + filepath.Join(dir, "widget.db"),
		"logging:",
		"  level: error",
		"  format: json",
		"",
	}, "\n")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCalc_Text(t *testing.T) {
	cfg := writeConfig(t, "memory")

	out, _, err := run(t, "--config", cfg, "calc", "--amount", "10000", "--interest", "5", "--years", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "188.71")
	assert.Contains(t, out, "Years:           5")
}

func TestCalc_JSON(t *testing.T) {
	cfg := writeConfig(t, "memory")

	out, _, err := run(t, "--config", cfg, "calc", "--amount", "200000", "--interest", "0.01", "--years", "30", "-o", "json")
	require.NoError(t, err)

	var outcome service.SubmitOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, service.SubmitSucceeded, outcome.Status)
	require.NotNil(t, outcome.Result)
	assert.Greater(t, outcome.Result.MonthlyPayment, 555.0)
}

func TestCalc_YAMLRejected(t *testing.T) {
	cfg := writeConfig(t, "memory")

	out, stderr, err := run(t, "--config", cfg, "calc", "--amount", "50", "--interest", "5", "--years", "5", "-o", "yaml")
	require.ErrorIs(t, err, errRejected)
	assert.Contains(t, stderr, "amount: Amount must be between 100 and 99,999,999")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "rejected", decoded["status"])
}

func TestCalc_UsesLastEntryForMissingFlags(t *testing.T) {
	cfg := writeConfig(t, "sqlite")

	_, _, err := run(t, "--config", cfg, "calc", "--amount", "10000", "--interest", "5", "--years", "5")
	require.NoError(t, err)

	out, _, err := run(t, "--config", cfg, "calc", "--years", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Amount:          10000")
	assert.Contains(t, out, "Years:           10")
}

func TestCalc_UnknownOutput(t *testing.T) {
	cfg := writeConfig(t, "memory")

	_, _, err := run(t, "--config", cfg, "calc", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestHistory_SQLite(t *testing.T) {
	cfg := writeConfig(t, "sqlite")

	out, _, err := run(t, "--config", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No calculations yet.")

	for _, years := range []string{"5", "10"} {
		_, _, err := run(t, "--config", cfg, "calc", "--amount", "10000", "--interest", "5", "--years", years)
		require.NoError(t, err)
	}

	out, _, err = run(t, "--config", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "MONTHLY")
	assert.Contains(t, out, "188.71")

	out, _, err = run(t, "--config", cfg, "history", "-n", "1", "-o", "json")
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
}

func TestStorageFlagOverride(t *testing.T) {
	cfg := writeConfig(t, "sqlite")

	_, _, err := run(t, "--config", cfg, "--storage", "floppy", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

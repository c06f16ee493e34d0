package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_ExportWritesFile(t *testing.T) {
	t.Setenv("NIKBROWSER_CONFIG", "")
	backend := newFakeBackend()
	probe, _ := newTestApp(t, backend, "")
	dir := t.TempDir()
	out := filepath.Join(dir, "settings.json")

	var stderr bytes.Buffer
	code := Execute(context.Background(), []string{
		"--db", filepath.Join(dir, "nik.db"),
		"--auth-url", probe.config.AuthURL,
		"export", out,
	}, &stderr)

	require.Equal(t, 0, code, stderr.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"darkMode": false`)
	assert.Contains(t, string(data), `"version": "1.0"`)
}

func TestExecute_FactoryErrorIsReported(t *testing.T) {
	orig := appFactory
	appFactory = func(context.Context, *cobra.Command) (*App, error) {
		return nil, errors.New("no database")
	}
	t.Cleanup(func() { appFactory = orig })

	var stderr bytes.Buffer
	code := Execute(context.Background(), []string{"whoami"}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: no database")
}

func TestExecute_WhoAmIUsesFactoryApp(t *testing.T) {
	a, out := newTestApp(t, newFakeBackend(), "")
	orig := appFactory
	appFactory = func(context.Context, *cobra.Command) (*App, error) { return a, nil }
	t.Cleanup(func() { appFactory = orig })

	var stderr bytes.Buffer
	code := Execute(context.Background(), []string{"whoami"}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, out.String(), "Not logged in.")
}

func TestExecute_ImportNeedsLocation(t *testing.T) {
	var stderr bytes.Buffer
	code := Execute(context.Background(), []string{"import"}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error:")
}

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsBootstrap(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.sqlite3")
	assert.True(t, NeedsBootstrap(missing))

	present := filepath.Join(dir, "present.sqlite3")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o600))
	assert.False(t, NeedsBootstrap(present))
}

func TestRunDownloadsSnapshot(t *testing.T) {
	const body = "fake sqlite snapshot bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "nested", "broker.sqlite3")
	err := Run(context.Background(), target, Config{SnapshotURL: srv.URL})
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestRunSkipsExistingFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "broker.sqlite3")
	require.NoError(t, os.WriteFile(target, []byte("already here"), 0o600))

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	err := Run(context.Background(), target, Config{SnapshotURL: srv.URL})
	require.NoError(t, err)
	assert.False(t, called, "Run must not fetch when the target already exists")
}

func TestRunUpstreamErrorLeavesNoPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "broker.sqlite3")
	err := Run(context.Background(), target, Config{SnapshotURL: srv.URL})
	assert.Error(t, err)
	assert.True(t, NeedsBootstrap(target))
}

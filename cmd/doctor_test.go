package cmd

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestDoctorReportsMissingCollectorsAndNoMeta(t *testing.T) {
	cfg := testConfig(t)

	out := captureStdout(t, func() {
		cmd := newDoctorCmd()
		cmd.SetContext(context.WithValue(context.Background(), configKey{}, cfg))
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())
	})

	assert.Contains(t, out, "collectors with no indexed files:")
	assert.Contains(t, out, "no update cycle has run yet")
}

package backup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgpkit/broker-go/internal/store/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(context.Background(), sqlite.Config{Path: filepath.Join(t.TempDir(), "broker.sqlite3")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRunOnceLocalBackup(t *testing.T) {
	st := openTestStore(t)
	dst := filepath.Join(t.TempDir(), "snapshot.sqlite3")

	b := New(st, Config{To: dst})
	require.NoError(t, b.RunOnce(context.Background()))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunOnceLocalBackupPingsHeartbeat(t *testing.T) {
	st := openTestStore(t)
	dst := filepath.Join(t.TempDir(), "snapshot.sqlite3")

	pinged := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pinged <- struct{}{}
	}))
	defer srv.Close()

	b := New(st, Config{To: dst, HeartbeatURL: srv.URL})
	require.NoError(t, b.RunOnce(context.Background()))

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("expected heartbeat GET after a successful backup")
	}
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := parseS3URI("s3://my-bucket/path/to/backup.sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/backup.sqlite3", key)
}

func TestParseS3URIInvalid(t *testing.T) {
	_, _, err := parseS3URI("s3://missing-key")
	assert.Error(t, err)
}

func TestRunOnceRejectsMalformedS3URI(t *testing.T) {
	st := openTestStore(t)
	b := New(st, Config{To: "s3://bad"})
	err := b.RunOnce(context.Background())
	assert.Error(t, err, "a URI missing the key segment must fail before any AWS SDK call")
}

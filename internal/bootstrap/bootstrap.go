// Package bootstrap downloads a remote Index Store snapshot into place
// when no local store file exists yet.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/logging"
)

// DefaultSnapshotURL is the published snapshot used when no override is
// configured.
const DefaultSnapshotURL = "https://spaces.bgpkit.org/broker/bgpkit_broker.sqlite3"

// Config controls the bootstrap download.
type Config struct {
	SnapshotURL string
	// ShowProgress renders a terminal progress bar while downloading.
	ShowProgress bool
}

func (c Config) withDefaults() Config {
	if c.SnapshotURL == "" {
		c.SnapshotURL = DefaultSnapshotURL
	}
	return c
}

// NeedsBootstrap reports whether targetPath does not yet exist.
func NeedsBootstrap(targetPath string) bool {
	_, err := os.Stat(targetPath)
	return os.IsNotExist(err)
}

// Run downloads cfg.SnapshotURL to targetPath if targetPath does not
// already exist. It is a no-op (returning nil) if the file is already
// present, so callers can call it unconditionally at startup.
func Run(ctx context.Context, targetPath string, cfg Config) error {
	cfg = cfg.withDefaults()
	if !NeedsBootstrap(targetPath) {
		logging.L.Info("bootstrap: local store already present, skipping download", zap.String("path", targetPath))
		return nil
	}

	logging.L.Info("bootstrap: downloading remote snapshot", zap.String("url", cfg.SnapshotURL), zap.String("target", targetPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.SnapshotURL, nil)
	if err != nil {
		return fmt.Errorf("bootstrap: build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("bootstrap: download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bootstrap: unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("bootstrap: create target dir: %w", err)
	}

	tmpPath := targetPath + ".downloading"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("bootstrap: create temp file: %w", err)
	}

	var dst io.Writer = f
	if cfg.ShowProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "bootstrap")
		dst = io.MultiWriter(f, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("bootstrap: write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("bootstrap: close snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return fmt.Errorf("bootstrap: finalize snapshot file: %w", err)
	}

	logging.L.Info("bootstrap: download complete", zap.String("target", targetPath))
	return nil
}

// Package backup exports the running Index Store to a local path or an S3
// bucket on a schedule, independent of the update cycle.
package backup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/internal/store"
)

// Config controls where and how often backups run.
type Config struct {
	// To is either a local filesystem path or an "s3://bucket/key" URI.
	To string
	// Interval between backups. Default 6h.
	Interval time.Duration
	// HeartbeatURL, if set, is GET-ed after each successful backup.
	HeartbeatURL string
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 6 * time.Hour
	}
	return c
}

// Backuper periodically snapshots a Store to Config.To.
type Backuper struct {
	store store.Store
	cfg   Config
}

// New builds a Backuper.
func New(s store.Store, cfg Config) *Backuper {
	return &Backuper{store: s, cfg: cfg.withDefaults()}
}

// Run blocks, backing up on cfg.Interval until ctx is canceled. The first
// backup runs immediately.
func (b *Backuper) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := b.RunOnce(ctx); err != nil {
			logging.L.Error("backup cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single backup: for a local target the store is
// vacuumed directly into Config.To; for an s3:// target it is vacuumed
// into a local temp file, uploaded to S3, and the temp file is removed.
func (b *Backuper) RunOnce(ctx context.Context) error {
	if strings.HasPrefix(b.cfg.To, "s3://") {
		return b.backupToS3(ctx, b.cfg.To)
	}
	return b.backupToLocal(ctx, b.cfg.To)
}

func (b *Backuper) backupToLocal(ctx context.Context, path string) error {
	if err := b.store.Backup(ctx, path); err != nil {
		return fmt.Errorf("backup: local vacuum failed: %w", err)
	}
	logging.L.Info("backup: wrote local snapshot", zap.String("path", path))
	return b.heartbeat(ctx)
}

func (b *Backuper) backupToS3(ctx context.Context, uri string) error {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "bgpkit-broker-backup-*.sqlite3")
	if err != nil {
		return fmt.Errorf("backup: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := b.store.Backup(ctx, tmpPath); err != nil {
		return fmt.Errorf("backup: vacuum to temp file failed: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("backup: reopen temp file: %w", err)
	}
	defer f.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("backup: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("backup: s3 upload failed: %w", err)
	}

	logging.L.Info("backup: uploaded snapshot to s3", zap.String("bucket", bucket), zap.String("key", key))
	return b.heartbeat(ctx)
}

func (b *Backuper) heartbeat(ctx context.Context) error {
	if b.cfg.HeartbeatURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.HeartbeatURL, nil)
	if err != nil {
		logging.L.Warn("backup: build heartbeat request failed", zap.Error(err))
		return nil
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logging.L.Warn("backup: heartbeat GET failed", zap.Error(err))
		return nil
	}
	resp.Body.Close()
	return nil
}

func parseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("backup: invalid s3 URI %q, expected s3://bucket/key", uri)
	}
	return parts[0], parts[1], nil
}

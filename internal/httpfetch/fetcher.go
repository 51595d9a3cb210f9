// Package httpfetch implements the retrying HTTP GET used by every
// crawler and the Updater's heartbeat ping.
package httpfetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/internal/metrics"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// Config controls retry and timeout behavior. Zero values fall back to the
// documented defaults via NewFetcher.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Default 3 (BGPKIT_BROKER_CRAWLER_MAX_RETRIES).
	MaxRetries int
	// BackoffBase is the starting backoff delay, doubled on each retry.
	// Default 1s (BGPKIT_BROKER_CRAWLER_BACKOFF_MS).
	BackoffBase time.Duration
	// Timeout is the hard per-request timeout. Default 30s.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification, for
	// lab/test deployments only.
	InsecureSkipVerify bool
	// HostRPS caps requests per second per collector host. 0 disables
	// limiting.
	HostRPS float64
	// HostBurst is the token bucket burst size for HostRPS. Default 2.
	HostBurst int
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HostBurst <= 0 {
		c.HostBurst = 2
	}
	return c
}

// Fetcher performs retrying GET requests.
type Fetcher struct {
	client  *http.Client
	cfg     Config
	limiter *hostLimiter
}

// NewFetcher builds a Fetcher, applying config defaults.
func NewFetcher(cfg Config) *Fetcher {
	cfg = cfg.withDefaults()
	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in lab mode
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg:     cfg,
		limiter: newHostLimiter(cfg.HostRPS, cfg.HostBurst),
	}
}

// Get fetches url, retrying on transport errors and 5xx responses with
// exponential backoff starting at cfg.BackoffBase and doubling each
// attempt. 4xx responses are never retried. It returns the response body
// on success.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoff(attempt - 1)
			logging.L.Debug("retrying fetch", zap.String("url", url), zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retryable, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, broker.NewNetworkError(url, fmt.Errorf("exhausted %d retries: %w", f.cfg.MaxRetries, lastErr))
}

// attempt performs one request. retryable is true for transport-level
// errors and 5xx responses; false for 4xx responses and success.
func (f *Fetcher) attempt(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	if err := f.limiter.wait(ctx, url); err != nil {
		return nil, false, broker.NewNetworkError(url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, broker.NewConfigurationError("url", err.Error())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.ObserveFetch(metrics.SanitizeHost(url), "error", 0)
		return nil, true, broker.NewNetworkError(url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveFetch(metrics.SanitizeHost(url), "error", 0)
		return nil, true, broker.NewNetworkError(url, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		metrics.ObserveFetch(metrics.SanitizeHost(url), "success", len(data))
		return data, false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		metrics.ObserveFetch(metrics.SanitizeHost(url), "client_error", 0)
		return nil, false, broker.NewNetworkError(url, fmt.Errorf("client error: %s", resp.Status))
	default:
		metrics.ObserveFetch(metrics.SanitizeHost(url), "server_error", 0)
		return nil, true, broker.NewNetworkError(url, fmt.Errorf("server error: %s", resp.Status))
	}
}

// backoff returns the delay before retry attempt (0-indexed).
func (f *Fetcher) backoff(retryIndex int) time.Duration {
	return time.Duration(float64(f.cfg.BackoffBase) * math.Pow(2, float64(retryIndex)))
}

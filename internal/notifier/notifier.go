// Package notifier publishes new-file events to a NATS-compatible pub/sub
// bus. Delivery is best-effort: a failed publish is logged but never
// blocks the Updater.
package notifier

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// Config configures the NATS connection and subject template.
type Config struct {
	URL string
	// User/Password authenticate with the NATS server. Both empty means
	// unauthenticated.
	User     string
	Password string
	// RootSubject prefixes every published subject. Default
	// "public.broker".
	RootSubject string
}

func (c Config) withDefaults() Config {
	if c.RootSubject == "" {
		c.RootSubject = "public.broker"
	}
	return c
}

// Notifier publishes BrokerItem events. A nil *Notifier (or one built from
// an empty Config.URL) is a valid no-op notifier: NotifyItems silently does
// nothing, matching the upstream "best-effort, continue without NATS on
// connect failure" behavior.
type Notifier struct {
	conn        *nats.Conn
	rootSubject string
	catalog     *catalog.Catalog
}

// New connects to the configured NATS server. If cfg.URL is empty, it
// returns a no-op Notifier and a nil error: the Updater runs without
// notifications rather than failing to start.
func New(cfg Config) (*Notifier, error) {
	cfg = cfg.withDefaults()
	cat := catalog.New()
	if cfg.URL == "" {
		logging.L.Info("notifier disabled: no NATS URL configured")
		return &Notifier{rootSubject: cfg.RootSubject, catalog: cat}, nil
	}

	opts := []nats.Option{nats.Name("bgpkit-broker")}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		logging.L.Warn("notifier: failed to connect to NATS, continuing without notifications", zap.Error(err))
		return &Notifier{rootSubject: cfg.RootSubject, catalog: cat}, nil
	}
	return &Notifier{conn: conn, rootSubject: cfg.RootSubject, catalog: cat}, nil
}

// Subject renders the "{root}.{project}.{collector}.{data_type}" template
// for item.
func (n *Notifier) Subject(item broker.BrokerItem) string {
	project := n.projectOf(item.CollectorID)
	return fmt.Sprintf("%s.%s.%s.%s", n.rootSubject, project, item.CollectorID, item.DataType)
}

// projectOf infers the project from a collector_id using the bundled
// catalog, falling back to the "rrc"-prefix heuristic used upstream for
// collectors the catalog doesn't recognize.
func (n *Notifier) projectOf(collectorID string) string {
	if col, ok := n.catalog.ByName(collectorID); ok {
		return col.Project
	}
	if len(collectorID) >= 3 && collectorID[:3] == "rrc" {
		return catalog.ProjectRIPERIS
	}
	return catalog.ProjectRouteViews
}

// NotifyItems publishes one message per item, best-effort. Publish
// failures are logged and do not stop the remaining items from being
// attempted.
func (n *Notifier) NotifyItems(items []broker.BrokerItem) {
	if n == nil || n.conn == nil {
		return
	}
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			logging.L.Warn("notifier: failed to marshal item", zap.Error(err))
			continue
		}
		if err := n.conn.Publish(n.Subject(item), payload); err != nil {
			logging.L.Warn("notifier: publish failed", zap.String("subject", n.Subject(item)), zap.Error(err))
		}
	}
	if err := n.conn.Flush(); err != nil {
		logging.L.Warn("notifier: flush failed", zap.Error(err))
	}
}

// Close releases the underlying NATS connection, if any.
func (n *Notifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

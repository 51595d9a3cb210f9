// Package api hosts the HTTP query surface backed by a pkg/broker.Engine.
// Notable routes:
//   - GET /health for liveness/last-update reporting.
//   - GET or POST /search for the paginated BrokerItem query grammar.
//   - GET /latest for the latest known file per collector.
//   - GET /peers for peer rows read through from the configured PeerSource.
package api

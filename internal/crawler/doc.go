// Package crawler discovers BGP archive files published by RouteViews and
// RIPE RIS collectors by walking their public HTTP directory listings.
package crawler

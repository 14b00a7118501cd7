// Package metrics provides operational metrics collection.
//
// # Metric Categories
//
//   - Latency: request duration histograms by route pattern
//   - Traffic: request counts by route pattern, method and status
//   - Business: RSVP outcomes, reminder outcomes, imported guests
//
// # Integration
//
// Metrics are collected through an HTTP middleware and exposed in
// Prometheus format by Handler. Each Metrics value owns its own registry so
// tests can build isolated instances.
package metrics

// Package telemetry groups operational observability for the wedding site.
//
// Two concerns are kept apart:
//
// # Operational Metrics (telemetry/metrics)
//
// Request counts, latency and status codes for every HTTP route, exposed in
// Prometheus format for scraping.
//
// # Business Counters
//
// RSVP submissions by outcome, reminder deliveries by outcome and imported
// guests. These live in the same registry so one scrape covers both, but
// they are recorded by services rather than middleware.
package telemetry

// Package timeouts defines shared timeout constants used across the site
// server and the operator CLI.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// HealthCheck caps the database ping performed by the health endpoint.
const HealthCheck = 2 * time.Second

// SMTPSend caps one outbound email delivery, dial included.
const SMTPSend = 15 * time.Second

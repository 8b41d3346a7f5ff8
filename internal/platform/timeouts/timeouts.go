// Package timeouts holds the timeouts shared by process servers.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request caps the handling of one HTTP request, retries included.
const Request = 10 * time.Second

// Idle closes keep-alive connections that stay quiet this long.
const Idle = 60 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

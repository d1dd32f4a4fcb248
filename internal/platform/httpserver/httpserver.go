// Package httpserver builds the peripheral node's HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	// The sync handlers run with a 60s request timeout; the server-side
	// write deadline sits above it so the middleware deadline fires first
	// and the client still gets a response body.
	writeTimeout = 65 * time.Second
	idleTimeout  = 2 * time.Minute
)

// New builds the server around the assembled router.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

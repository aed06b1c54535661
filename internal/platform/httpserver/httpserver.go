package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. No WriteTimeout: validation runs can be long.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds the public HTTP server. The write timeout leaves room for the
// synchronous geocoder and mail calls made while handling a request.
// net/http's own errors (TLS handshakes, header parsing) go to log at warn.
func New(addr string, handler http.Handler, log *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    16 << 10,
	}
	if log != nil {
		srv.ErrorLog = slog.NewLogLogger(log.Handler(), slog.LevelWarn)
	}
	return srv
}

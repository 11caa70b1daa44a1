package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. Server
// errors (TLS handshakes, panics in handlers) go to logger at ERROR level.
// WriteTimeout leaves room for batch anomaly scans.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    64 << 10,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}
	return srv
}

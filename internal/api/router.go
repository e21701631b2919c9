package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/wallet-auth/docs"
	"github.com/AlexZinkM/wallet-auth/internal/handler"
	"github.com/AlexZinkM/wallet-auth/internal/metrics"
)

// SetupRouter sets up router with handlers
func SetupRouter(authHandler *handler.AuthHandler, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus
	mux.Handle("/metrics", m.Handler())

	// Auth endpoints
	mux.HandleFunc("/auth/wallet/register", authHandler.Register)
	mux.HandleFunc("/auth/nonce", authHandler.Nonce)
	mux.HandleFunc("/auth/wallet/login", authHandler.Login)
	mux.HandleFunc("/auth/me", authHandler.Me)

	return withLogging(mux, logger)
}

// withLogging attaches the logger to every request and writes one access line.
// Request bodies are never logged: they carry signatures.
func withLogging(next http.Handler, logger zerolog.Logger) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
	h = hlog.RemoteAddrHandler("remote_addr")(h)
	h = hlog.RequestIDHandler("request_id", "X-Request-Id")(h)
	return hlog.NewHandler(logger)(h)
}

// Auth server: wallet registration, login nonces and session tokens.
// Usage: JWT_SECRET=... go run ./cmd/authserver
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/wallet-auth/internal/api"
	"github.com/AlexZinkM/wallet-auth/internal/config"
	"github.com/AlexZinkM/wallet-auth/internal/handler"
	"github.com/AlexZinkM/wallet-auth/internal/metrics"
	"github.com/AlexZinkM/wallet-auth/internal/nonce"
	"github.com/AlexZinkM/wallet-auth/internal/ratelimit"
	"github.com/AlexZinkM/wallet-auth/internal/registry"
	"github.com/AlexZinkM/wallet-auth/internal/token"
)

const janitorInterval = time.Minute

func main() {
	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg := config.Get().Server

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "authserver").Logger()
	log.Logger = logger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid server config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nonces, closeNonces, err := newNonceStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up nonce store")
	}
	defer closeNonces()

	if cfg.AcceptAnySignature {
		log.Warn().Msg("AUTH_ACCEPT_ANY_SIGNATURE is on: signatures are NOT verified (development only)")
	}

	limiter := ratelimit.New(cfg.NonceRatePerSec, cfg.NonceRateBurst, 10*time.Minute)
	go limiter.RunJanitor(ctx, janitorInterval)

	m := metrics.New()
	authHandler, err := handler.NewAuthHandler(handler.Options{
		Registry:           registry.NewMemoryRegistry(),
		Nonces:             nonces,
		Tokens:             token.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL),
		Limiter:            limiter,
		Metrics:            m,
		NonceTTL:           cfg.NonceTTL,
		AcceptAnySignature: cfg.AcceptAnySignature,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth handler")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(authHandler, m, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Dur("nonce_ttl", cfg.NonceTTL).Msg("Auth server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down auth server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Auth server failed")
		}
	}
}

// newNonceStore uses Redis when redisURL is set so several server instances share nonces.
func newNonceStore(ctx context.Context, redisURL string) (nonce.Store, func(), error) {
	if redisURL == "" {
		store := nonce.NewMemoryStore()
		go store.RunJanitor(ctx, janitorInterval)
		log.Info().Msg("Using in-memory nonce store")
		return store, func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	store := nonce.NewRedisStore(client)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", opts.Addr).Msg("Using Redis nonce store")
	return store, func() { client.Close() }, nil
}

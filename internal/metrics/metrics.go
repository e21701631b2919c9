// Package metrics exposes auth server counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes
const (
	LoginSuccess      = "success"
	LoginNoNonce      = "no_nonce"
	LoginBadSignature = "bad_signature"
	LoginUnknown      = "unknown_address"
	LoginInvalid      = "invalid_request"
)

// Metrics holds the auth server collectors
type Metrics struct {
	registry *prometheus.Registry

	Registrations *prometheus.CounterVec
	NoncesIssued  prometheus.Counter
	RateLimited   prometheus.Counter
	Logins        *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet_auth",
			Name:      "registrations_total",
			Help:      "Wallet registrations by result.",
		}, []string{"result"}),
		NoncesIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet_auth",
			Name:      "nonces_issued_total",
			Help:      "Login nonces handed out.",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet_auth",
			Name:      "nonce_rate_limited_total",
			Help:      "Nonce requests rejected by the rate limiter.",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet_auth",
			Name:      "logins_total",
			Help:      "Signature logins by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

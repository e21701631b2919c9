package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.NoncesIssued.Inc()
	m.Logins.WithLabelValues(LoginSuccess).Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues(LoginSuccess)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "wallet_auth_nonces_issued_total 1")
	assert.Contains(t, string(body), `wallet_auth_logins_total{outcome="success"} 2`)
}

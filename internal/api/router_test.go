package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-auth/internal/handler"
	"github.com/AlexZinkM/wallet-auth/internal/metrics"
	"github.com/AlexZinkM/wallet-auth/internal/nonce"
	"github.com/AlexZinkM/wallet-auth/internal/registry"
	"github.com/AlexZinkM/wallet-auth/internal/token"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newRouter(t *testing.T, logs *syncBuffer) http.Handler {
	t.Helper()
	m := metrics.New()
	h, err := handler.NewAuthHandler(handler.Options{
		Registry: registry.NewMemoryRegistry(),
		Nonces:   nonce.NewMemoryStore(),
		Tokens:   token.NewManager("0123456789abcdef0123456789abcdef", "test", time.Hour),
		Metrics:  m,
		NonceTTL: time.Minute,
	})
	require.NoError(t, err)
	return SetupRouter(h, m, zerolog.New(logs))
}

func TestRoutes(t *testing.T) {
	var logs syncBuffer
	srv := httptest.NewServer(newRouter(t, &logs))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/auth/nonce", "application/json",
		strings.NewReader(`{"address":"0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, body.String(), "wallet_auth_nonces_issued_total 1")

	resp, err = http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), `"path":"/auth/nonce"`)
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), `"request_id"`)
}

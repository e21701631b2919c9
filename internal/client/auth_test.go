package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-auth/internal/api"
	"github.com/AlexZinkM/wallet-auth/internal/challenge"
	"github.com/AlexZinkM/wallet-auth/internal/handler"
	"github.com/AlexZinkM/wallet-auth/internal/identity"
	"github.com/AlexZinkM/wallet-auth/internal/localstore"
	"github.com/AlexZinkM/wallet-auth/internal/metrics"
	"github.com/AlexZinkM/wallet-auth/internal/model"
	"github.com/AlexZinkM/wallet-auth/internal/nonce"
	"github.com/AlexZinkM/wallet-auth/internal/registry"
	"github.com/AlexZinkM/wallet-auth/internal/token"
)

func newServer(t *testing.T) *httptest.Server {
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
	srv := httptest.NewServer(api.SetupRouter(h, m, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func newKeypair(t *testing.T) *identity.Keypair {
	t.Helper()
	kp, err := identity.Generate()
	require.NoError(t, err)
	return kp
}

func TestRegisterNonceLogin(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	c := NewAuthClient(newServer(t).URL, time.Second, store)
	kp := newKeypair(t)

	reg, err := c.RegisterWallet(ctx, kp.PublicKeyHex(), kp.Address(), model.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)

	nonceHex, err := c.RequestNonce(ctx, kp.Address())
	require.NoError(t, err)
	n, err := challenge.DecodeNonce(nonceHex)
	require.NoError(t, err)

	sig, err := challenge.Sign(n, kp.PrivateKey)
	require.NoError(t, err)
	session, err := c.Login(ctx, kp.Address(), sig)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, session.UserID)
	assert.Equal(t, kp.Address(), session.Address)

	stored, ok, err := LoadSession(store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.AccessToken, stored.AccessToken)
	assert.Equal(t, session.Role, stored.Role)
	assert.True(t, session.ExpiresAt.Equal(stored.ExpiresAt))

	me, err := c.Me(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, me.UserID)

	_, err = c.Login(ctx, kp.Address(), sig)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	c := NewAuthClient(newServer(t).URL, time.Second, localstore.NewMemoryStore())
	kp := newKeypair(t)

	_, err := c.RegisterWallet(ctx, kp.PublicKeyHex(), kp.Address(), model.RoleUser)
	require.NoError(t, err)
	_, err = c.RegisterWallet(ctx, kp.PublicKeyHex(), kp.Address(), model.RoleUser)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = c.RegisterWallet(ctx, kp.PublicKeyHex(), newKeypair(t).Address(), model.RoleUser)
	assert.ErrorIs(t, err, model.ErrValidation)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, model.CodeValidation, apiErr.Code)

	_, err = c.Me(ctx, "garbage")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestValidationBeforeRequest(t *testing.T) {
	c := NewAuthClient("http://127.0.0.1:1", time.Second, localstore.NewMemoryStore())

	_, err := c.RegisterWallet(context.Background(), "", "", model.RoleUser)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = c.Login(context.Background(), "0xabc", "")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewAuthClient(url, time.Second, localstore.NewMemoryStore())
	_, err := c.RequestNonce(context.Background(), newKeypair(t).Address())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNetwork)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewAuthClient(srv.URL, 50*time.Millisecond, localstore.NewMemoryStore())
	_, err := c.RequestNonce(context.Background(), newKeypair(t).Address())
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestRequestNonceEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nonce":""}`))
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL, time.Second, localstore.NewMemoryStore())
	_, err := c.RequestNonce(context.Background(), "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf")
	assert.ErrorIs(t, err, challenge.ErrNoNonce)
}

func TestLogoutKeepsWallet(t *testing.T) {
	store := localstore.NewMemoryStore()
	require.NoError(t, store.Set(localstore.KeyVault, "{}"))
	require.NoError(t, SaveSession(store, &model.Session{
		AccessToken: "tok",
		TokenType:   "bearer",
		UserID:      "u1",
		PublicKey:   "02abcd",
		Address:     "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf",
		Role:        model.RoleUser,
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	c := NewAuthClient("http://127.0.0.1:1", time.Second, store)
	require.NoError(t, c.Logout())

	_, ok, err := LoadSession(store)
	require.NoError(t, err)
	assert.False(t, ok)

	vault, ok, err := store.Get(localstore.KeyVault)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", vault)

	for _, key := range []string{localstore.KeyUserID, localstore.KeyRole, localstore.KeyAccessToken, localstore.KeyIsLoggedIn} {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	for _, key := range []string{localstore.KeyAddress, localstore.KeyPublicKey} {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Expired(&model.Session{}, now))
	assert.False(t, Expired(&model.Session{ExpiresAt: now.Add(time.Minute)}, now))
	assert.True(t, Expired(&model.Session{ExpiresAt: now}, now))
}

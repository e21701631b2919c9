package handler

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/AlexZinkM/wallet-auth/internal/challenge"
	"github.com/AlexZinkM/wallet-auth/internal/identity"
	"github.com/AlexZinkM/wallet-auth/internal/metrics"
	"github.com/AlexZinkM/wallet-auth/internal/model"
	"github.com/AlexZinkM/wallet-auth/internal/nonce"
	"github.com/AlexZinkM/wallet-auth/internal/ratelimit"
	"github.com/AlexZinkM/wallet-auth/internal/registry"
	"github.com/AlexZinkM/wallet-auth/internal/token"
)

const noNonceMessage = "No nonce found for this address. Please request nonce first."

var errNoPendingNonce = fmt.Errorf("no pending nonce: %w", model.ErrUnauthorized)

// Options wires the AuthHandler dependencies
type Options struct {
	Registry registry.Registry
	Nonces   nonce.Store
	Tokens   *token.Manager
	Limiter  *ratelimit.AddressLimiter
	Metrics  *metrics.Metrics
	NonceTTL time.Duration

	// AcceptAnySignature skips signature verification and lets unknown
	// addresses log in as "user". It reproduces the development mock and
	// must stay off anywhere real.
	AcceptAnySignature bool
}

// AuthHandler serves wallet registration and nonce login
type AuthHandler struct {
	registry           registry.Registry
	nonces             nonce.Store
	tokens             *token.Manager
	limiter            *ratelimit.AddressLimiter
	metrics            *metrics.Metrics
	nonceTTL           time.Duration
	acceptAnySignature bool
	now                func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(opts Options) (*AuthHandler, error) {
	if opts.Registry == nil || opts.Nonces == nil || opts.Tokens == nil {
		return nil, errors.New("registry, nonce store and token manager are required")
	}
	if opts.NonceTTL <= 0 {
		return nil, errors.New("nonce TTL must be positive")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &AuthHandler{
		registry:           opts.Registry,
		nonces:             opts.Nonces,
		tokens:             opts.Tokens,
		limiter:            opts.Limiter,
		metrics:            opts.Metrics,
		nonceTTL:           opts.NonceTTL,
		acceptAnySignature: opts.AcceptAnySignature,
		now:                time.Now,
	}, nil
}

// Register handles POST /auth/wallet/register
// @Summary      Register wallet
// @Description  Registers a wallet public key and its derived address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RegisterRequest  true  "Wallet identity"
// @Success      200      {object}  model.RegisterResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /auth/wallet/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	id, err := h.register(r.Context(), &req)
	if err != nil {
		h.metrics.Registrations.WithLabelValues(resultLabel(err)).Inc()
		writeServiceError(w, r, err)
		return
	}
	h.metrics.Registrations.WithLabelValues("ok").Inc()
	hlog.FromRequest(r).Info().Str("address", id.Address).Str("role", string(id.Role)).Msg("wallet registered")

	writeJSON(w, http.StatusOK, model.RegisterResponse{
		UserID:    id.UserID,
		PublicKey: id.PublicKey,
		Address:   id.Address,
		Role:      id.Role,
	})
}

func (h *AuthHandler) register(ctx context.Context, req *model.RegisterRequest) (*model.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	publicKey, err := identity.ParsePublicKeyHex(strings.TrimSpace(req.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("invalid public_key: %w", model.ErrValidation)
	}
	address := normalizeAddress(req.Address)
	if err := identity.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("invalid address: %w", model.ErrValidation)
	}
	derived, err := identity.DeriveAddress(publicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public_key: %w", model.ErrValidation)
	}
	if derived != address {
		return nil, fmt.Errorf("address does not match public_key: %w", model.ErrValidation)
	}
	return h.registry.Register(ctx, hex.EncodeToString(publicKey), address, role)
}

// Nonce handles POST /auth/nonce
// @Summary      Request login nonce
// @Description  Issues a single-use 32-byte nonce for the address to sign
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.NonceRequest  true  "Wallet address"
// @Success      200      {object}  model.NonceResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Router       /auth/nonce [post]
func (h *AuthHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.NonceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	address := normalizeAddress(req.Address)
	if address == "" {
		writeError(w, http.StatusBadRequest, model.CodeValidation, "Missing address")
		return
	}
	if err := identity.ValidateAddress(address); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidation, "invalid address")
		return
	}

	if ok, wait := h.limiter.Allow(address, h.now()); !ok {
		h.metrics.RateLimited.Inc()
		w.Header().Set("Retry-After", retryAfter(wait))
		writeServiceError(w, r, fmt.Errorf("too many nonce requests for %s: %w", address, model.ErrRateLimited))
		return
	}

	n, err := nonce.Issue(r.Context(), h.nonces, address, h.nonceTTL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.metrics.NoncesIssued.Inc()
	hlog.FromRequest(r).Debug().Str("address", address).Dur("ttl", h.nonceTTL).Msg("nonce issued")

	writeJSON(w, http.StatusOK, model.NonceResponse{Nonce: n})
}

// Login handles POST /auth/wallet/login
// @Summary      Login with signature
// @Description  Verifies the signature over SHA-256 of the pending nonce and returns a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "Address and nonce signature"
// @Success      200      {object}  model.Session
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /auth/wallet/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.metrics.Logins.WithLabelValues(metrics.LoginInvalid).Inc()
		writeServiceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.metrics.Logins.WithLabelValues(metrics.LoginInvalid).Inc()
		writeServiceError(w, r, err)
		return
	}

	address := normalizeAddress(req.Address)
	log := hlog.FromRequest(r).With().Str("address", address).Logger()

	id, outcome, err := h.verify(r.Context(), address, req.Signature)
	h.metrics.Logins.WithLabelValues(outcome).Inc()
	if err != nil {
		log.Info().Str("outcome", outcome).Msg("login rejected")
		if errors.Is(err, errNoPendingNonce) {
			writeError(w, http.StatusUnauthorized, model.CodeUnauthorized, noNonceMessage)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	accessToken, expiresAt, err := h.tokens.Issue(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Info().Str("user_id", id.UserID).Msg("login succeeded")

	writeJSON(w, http.StatusOK, model.Session{
		AccessToken: accessToken,
		TokenType:   token.TokenType,
		UserID:      id.UserID,
		PublicKey:   id.PublicKey,
		Address:     id.Address,
		Role:        id.Role,
		ExpiresAt:   expiresAt,
	})
}

// verify consumes the pending nonce before checking the signature,
// so every attempt burns it whatever the outcome.
func (h *AuthHandler) verify(ctx context.Context, address, signature string) (*model.Identity, string, error) {
	pending, err := h.nonces.Consume(ctx, address)
	if err != nil {
		if errors.Is(err, nonce.ErrNotFound) {
			return nil, metrics.LoginNoNonce, errNoPendingNonce
		}
		return nil, metrics.LoginInvalid, err
	}

	id, err := h.registry.Lookup(ctx, address)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, metrics.LoginInvalid, err
	}

	if h.acceptAnySignature {
		if id == nil {
			id = &model.Identity{UserID: uuid.NewString(), Address: address, Role: model.RoleUser}
		}
		return id, metrics.LoginSuccess, nil
	}

	if id == nil {
		return nil, metrics.LoginUnknown, fmt.Errorf("address is not registered: %w", model.ErrUnauthorized)
	}
	nonceBytes, err := hex.DecodeString(pending)
	if err != nil {
		return nil, metrics.LoginInvalid, fmt.Errorf("stored nonce is corrupt: %w", err)
	}
	publicKey, err := hex.DecodeString(id.PublicKey)
	if err != nil {
		return nil, metrics.LoginInvalid, fmt.Errorf("stored public key is corrupt: %w", err)
	}
	if err := challenge.Verify(signature, nonceBytes, publicKey); err != nil {
		return nil, metrics.LoginBadSignature, fmt.Errorf("invalid signature: %w", model.ErrUnauthorized)
	}
	return id, metrics.LoginSuccess, nil
}

// Me handles GET /auth/me
// @Summary      Current session
// @Description  Returns the identity behind a bearer access token
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer access token"
// @Success      200            {object}  model.MeResponse
// @Failure      401            {object}  model.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	raw, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, model.CodeUnauthorized, "missing bearer token")
		return
	}
	claims, err := h.tokens.Validate(raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := model.MeResponse{
		UserID:  claims.Subject,
		Address: claims.Address,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "invalid"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	}
	return "error"
}

// retryAfter renders a wait as whole seconds, rounded up and at least one.
func retryAfter(wait time.Duration) string {
	return strconv.Itoa(max(1, int(math.Ceil(wait.Seconds()))))
}

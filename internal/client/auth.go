package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/wallet-auth/internal/challenge"
	"github.com/AlexZinkM/wallet-auth/internal/localstore"
	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// DefaultTimeout bounds every request to the auth server
const DefaultTimeout = 15 * time.Second

// NetworkError is a transport failure talking to the auth server
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, model.ErrNetwork) true
func (e *NetworkError) Is(target error) bool { return target == model.ErrNetwork }

// APIError is a non-2xx answer from the auth server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth server returned status %d", e.Status)
	}
	return fmt.Sprintf("auth server returned status %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the shared error taxonomy.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return model.ErrValidation
	case http.StatusUnauthorized:
		return model.ErrUnauthorized
	case http.StatusConflict:
		return model.ErrConflict
	case http.StatusTooManyRequests:
		return model.ErrRateLimited
	case http.StatusNotFound:
		return model.ErrNotFound
	}
	return nil
}

// AuthClient client for the wallet auth server
type AuthClient struct {
	baseURL string
	client  *http.Client
	store   localstore.Store
}

// NewAuthClient creates a new auth client. Sessions returned by Login are persisted into store.
func NewAuthClient(baseURL string, timeout time.Duration, store localstore.Store) *AuthClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		store: store,
	}
}

// RegisterWallet sends the wallet identity to the server and returns the assigned user id.
func (c *AuthClient) RegisterWallet(ctx context.Context, publicKey, address string, role model.Role) (*model.RegisterResponse, error) {
	req := model.RegisterRequest{PublicKey: publicKey, Address: address, Role: string(role)}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp model.RegisterResponse
	if err := c.post(ctx, "/auth/wallet/register", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to register wallet: %w", err)
	}
	if resp.UserID == "" {
		return nil, errors.New("failed to register wallet: server returned no user id")
	}
	return &resp, nil
}

// RequestNonce asks the server for a login nonce for address.
func (c *AuthClient) RequestNonce(ctx context.Context, address string) (string, error) {
	var resp model.NonceResponse
	if err := c.post(ctx, "/auth/nonce", model.NonceRequest{Address: address}, &resp); err != nil {
		return "", fmt.Errorf("failed to request nonce: %w", err)
	}
	if resp.Nonce == "" {
		return "", challenge.ErrNoNonce
	}
	return resp.Nonce, nil
}

// Login exchanges a nonce signature for a session and persists it.
func (c *AuthClient) Login(ctx context.Context, address, signature string) (*model.Session, error) {
	req := model.LoginRequest{Address: address, Signature: signature}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var session model.Session
	if err := c.post(ctx, "/auth/wallet/login", req, &session); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if session.AccessToken == "" {
		return nil, errors.New("failed to login: server returned no access token")
	}
	if err := SaveSession(c.store, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Me returns the identity behind an access token.
func (c *AuthClient) Me(ctx context.Context, accessToken string) (*model.MeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp model.MeResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &resp, nil
}

// Logout clears the persisted session. Wallet keys stay in the store.
func (c *AuthClient) Logout() error {
	if err := c.store.Delete(localstore.SessionKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (c *AuthClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *AuthClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var payload model.ErrorResponse
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// NonceRequest represents request for POST /auth/nonce
type NonceRequest struct {
	Address string `json:"address"`
}

// NonceResponse represents response for POST /auth/nonce
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// LoginRequest represents request for POST /auth/wallet/login
type LoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// Validate checks that every field is present.
func (r *LoginRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(r.Signature) == "" {
		missing = append(missing, "signature")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s: %w", strings.Join(missing, ", "), ErrValidation)
	}
	return nil
}

// Session represents response for POST /auth/wallet/login.
// It is persisted client-side until logout.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	UserID      string    `json:"user_id"`
	PublicKey   string    `json:"public_key"`
	Address     string    `json:"address"`
	Role        Role      `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MeResponse represents response for GET /auth/me
type MeResponse struct {
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// Role of a registered wallet identity
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClient    Role = "client"
	RoleValidator Role = "validator"
	RoleUser      Role = "user"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleClient, RoleValidator, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("role must be one of admin, client, validator, user: %w", ErrValidation)
}

// RegisterRequest represents request for POST /auth/wallet/register
type RegisterRequest struct {
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
	Role      string `json:"role"`
}

// Validate checks that every field is present.
func (r *RegisterRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.PublicKey) == "" {
		missing = append(missing, "public_key")
	}
	if strings.TrimSpace(r.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(r.Role) == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s: %w", strings.Join(missing, ", "), ErrValidation)
	}
	return nil
}

// RegisterResponse represents response for POST /auth/wallet/register
type RegisterResponse struct {
	UserID    string `json:"user_id"`
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
	Role      Role   `json:"role"`
}

// Identity is a wallet registered with the auth server
type Identity struct {
	UserID    string    `json:"user_id"`
	PublicKey string    `json:"public_key"`
	Address   string    `json:"address"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

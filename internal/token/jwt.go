// Package token issues and validates session tokens.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// TokenType is returned to clients alongside the access token
const TokenType = "bearer"

// Claims are the session claims carried by an access token
type Claims struct {
	jwt.RegisteredClaims
	Address string     `json:"address"`
	Role    model.Role `json:"role"`
}

// Manager handles JWT generation and validation
type Manager struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	now           func() time.Time
}

// NewManager creates a new Manager
func NewManager(secretKey, issuer string, tokenDuration time.Duration) *Manager {
	return &Manager{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Issue creates a signed token for an identity and returns it with its expiry.
func (m *Manager) Issue(id *model.Identity) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.tokenDuration)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   id.UserID,
		},
		Address: id.Address,
		Role:    id.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}
	return signed, expiresAt.UTC().Truncate(time.Second), nil
}

// Validate validates the token and returns its claims
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Wrapf(model.ErrUnauthorized, "invalid token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Wrap(model.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

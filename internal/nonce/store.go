// Package nonce issues and tracks single-use login challenges keyed by address.
package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// Size of a nonce in bytes
const Size = 32

// ErrNotFound is returned when no live nonce exists for an address
var ErrNotFound = errors.Wrap(model.ErrNotFound, "nonce")

// Store keeps at most one pending nonce per address.
// Set replaces any pending nonce. Consume returns and removes the nonce
// atomically, so a nonce can be consumed once.
type Store interface {
	Set(ctx context.Context, address, nonce string, ttl time.Duration) error
	Get(ctx context.Context, address string) (string, error)
	Consume(ctx context.Context, address string) (string, error)
	Delete(ctx context.Context, address string) error
}

// Generate returns a fresh random nonce as hex
func Generate() (string, error) {
	buf := make([]byte, Size)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	return hex.EncodeToString(buf), nil
}

// Issue generates a nonce for address and stores it with ttl.
func Issue(ctx context.Context, s Store, address string, ttl time.Duration) (string, error) {
	n, err := Generate()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, address, n, ttl); err != nil {
		return "", err
	}
	return n, nil
}

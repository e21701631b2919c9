// Package challenge signs and verifies server-issued login nonces.
package challenge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AlexZinkM/wallet-auth/internal/identity"
)

// NonceLen is the size of a server nonce in bytes
const NonceLen = 32

const compactSigLen = 64

var (
	// ErrNoNonce means the server did not hand out a usable nonce
	ErrNoNonce = errors.New("no nonce available")
	// ErrBadSignature means the signature does not match the nonce and public key
	ErrBadSignature = errors.New("signature verification failed")
)

// NonceSource fetches a login nonce for an address.
type NonceSource interface {
	RequestNonce(ctx context.Context, address string) (string, error)
}

// Signer requests nonces and signs them
type Signer struct {
	source NonceSource
}

// NewSigner creates a Signer fetching nonces from source
func NewSigner(source NonceSource) *Signer {
	return &Signer{source: source}
}

// RequestNonce fetches and decodes the nonce issued for address.
func (s *Signer) RequestNonce(ctx context.Context, address string) ([]byte, error) {
	nonceHex, err := s.source.RequestNonce(ctx, address)
	if err != nil {
		return nil, err
	}
	return DecodeNonce(nonceHex)
}

// DecodeNonce parses a hex nonce and checks its size.
func DecodeNonce(nonceHex string) ([]byte, error) {
	nonceHex = strings.TrimSpace(nonceHex)
	if nonceHex == "" {
		return nil, ErrNoNonce
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return nil, fmt.Errorf("nonce is not hex: %w", ErrNoNonce)
	}
	if len(nonce) != NonceLen {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d: %w", NonceLen, len(nonce), ErrNoNonce)
	}
	return nonce, nil
}

// Digest is the message hash that gets signed
func Digest(nonce []byte) []byte {
	sum := sha256.Sum256(nonce)
	return sum[:]
}

// Sign signs SHA-256(nonce) with the private key and returns the
// 64-byte compact r||s signature as hex. Signing is deterministic (RFC 6979).
func Sign(nonce, privateKey []byte) (string, error) {
	if len(nonce) == 0 {
		return "", ErrNoNonce
	}
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, identity.ErrInvalidKey)
	}
	sig, err := crypto.Sign(Digest(nonce), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign nonce: %w", err)
	}
	defer clear(sig)
	return hex.EncodeToString(sig[:compactSigLen]), nil
}

// Verify checks a hex signature over SHA-256(nonce) against publicKey.
// 65-byte signatures carrying a recovery id are accepted as well.
func Verify(signatureHex string, nonce, publicKey []byte) error {
	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signatureHex), "0x"))
	if err != nil {
		return fmt.Errorf("signature is not hex: %w", ErrBadSignature)
	}
	switch len(sig) {
	case compactSigLen, compactSigLen + 1:
		sig = sig[:compactSigLen]
	default:
		return fmt.Errorf("signature must be 64 or 65 bytes, got %d: %w", len(sig), ErrBadSignature)
	}
	if _, err := identity.ParsePublicKey(publicKey); err != nil {
		return err
	}
	if !crypto.VerifySignature(publicKey, Digest(nonce), sig) {
		return ErrBadSignature
	}
	return nil
}

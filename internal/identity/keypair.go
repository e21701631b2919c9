// Package identity generates secp256k1 wallet keypairs and derives their addresses.
package identity

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	PrivateKeyLen = 32
	AddressPrefix = "0x"
	addressLen    = 20
)

// ErrInvalidKey is returned for malformed private or public keys
var ErrInvalidKey = errors.New("invalid key")

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// Keypair is a secp256k1 wallet key.
// PublicKey is the 33-byte compressed SEC1 encoding.
type Keypair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// Generate creates a fresh keypair from crypto/rand.
func Generate() (*Keypair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromECDSA(key), nil
}

// FromPrivateKey rebuilds the keypair for a raw 32-byte private key.
func FromPrivateKey(privateKey []byte) (*Keypair, error) {
	if len(privateKey) != PrivateKeyLen {
		return nil, fmt.Errorf("private key must be %d bytes, got %d: %w", PrivateKeyLen, len(privateKey), ErrInvalidKey)
	}
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidKey)
	}
	return fromECDSA(key), nil
}

func fromECDSA(key *ecdsa.PrivateKey) *Keypair {
	return &Keypair{
		PrivateKey: crypto.FromECDSA(key),
		PublicKey:  crypto.CompressPubkey(&key.PublicKey),
	}
}

// Address returns the address of the keypair's public key.
func (k *Keypair) Address() string {
	addr, err := DeriveAddress(k.PublicKey)
	if err != nil {
		// PublicKey always comes from a valid scalar
		panic(err)
	}
	return addr
}

// PublicKeyHex returns the compressed public key as hex
func (k *Keypair) PublicKeyHex() string {
	return hex.EncodeToString(k.PublicKey)
}

// Wipe zeroes the private key bytes.
func (k *Keypair) Wipe() {
	if k == nil {
		return
	}
	clear(k.PrivateKey)
}

// ParsePublicKey accepts a compressed (33) or uncompressed (65) public key.
func ParsePublicKey(publicKey []byte) (*secp256k1.PublicKey, error) {
	switch len(publicKey) {
	case secp256k1.PubKeyBytesLenCompressed, secp256k1.PubKeyBytesLenUncompressed:
	default:
		return nil, fmt.Errorf("unsupported public key length %d: %w", len(publicKey), ErrInvalidKey)
	}
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidKey)
	}
	return pub, nil
}

// ParsePublicKeyHex decodes and parses a hex public key
func ParsePublicKeyHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("public key is not hex: %w", ErrInvalidKey)
	}
	if _, err := ParsePublicKey(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DeriveAddress returns "0x" + hex(keccak256(X||Y)[12:]).
// The result does not depend on whether the key is compressed.
func DeriveAddress(publicKey []byte) (string, error) {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	uncompressed := pub.SerializeUncompressed() // 0x04 | X | Y
	hash := crypto.Keccak256(uncompressed[1:])
	return AddressPrefix + hex.EncodeToString(hash[len(hash)-addressLen:]), nil
}

// ValidateAddress checks the address format.
func ValidateAddress(address string) error {
	if !addressPattern.MatchString(address) {
		return fmt.Errorf("address must be 0x followed by 40 lowercase hex chars: %w", ErrInvalidKey)
	}
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

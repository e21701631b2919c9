// Package keyvault encrypts wallet private keys at rest under a user password.
package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// EncryptedVault is a private key sealed with AES-256-GCM
type EncryptedVault struct {
	Ciphertext []byte
	IV         []byte
	Salt       []byte
	Params     Params
}

// Encrypt seals privateKey with DefaultParams.
// password must be []byte for security (caller should zero it after use)
func Encrypt(privateKey, password []byte) (*EncryptedVault, error) {
	return EncryptWithParams(privateKey, password, DefaultParams)
}

// EncryptWithParams seals privateKey under a key derived from password with p.
func EncryptWithParams(privateKey, password []byte, p Params) (*EncryptedVault, error) {
	if len(privateKey) == 0 {
		return nil, errors.New("private key is empty")
	}
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if p.KDF == KDFLegacySHA256 {
		return nil, errors.New("legacy sha256 kdf is decrypt-only")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := deriveKey(password, salt, p)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return &EncryptedVault{
		Ciphertext: aesGCM.Seal(nil, iv, privateKey, nil),
		IV:         iv,
		Salt:       salt,
		Params:     p,
	}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

package keyvault

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed means a wrong password or a tampered ciphertext
	ErrAuthenticationFailed = errors.New("vault authentication failed")
	// ErrInvalidVault means the stored vault is malformed or truncated
	ErrInvalidVault = errors.New("vault is invalid")
)

// Decrypt opens the vault and returns the private key.
// password must be []byte for security (caller should zero it after use);
// the caller also owns the returned key and should clear it when done.
func Decrypt(v *EncryptedVault, password []byte) ([]byte, error) {
	if v == nil {
		return nil, ErrInvalidVault
	}
	if err := v.Params.validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidVault)
	}
	if len(v.IV) != nonceLen {
		return nil, fmt.Errorf("iv must be %d bytes: %w", nonceLen, ErrInvalidVault)
	}
	if v.Params.KDF != KDFLegacySHA256 && len(v.Salt) == 0 {
		return nil, fmt.Errorf("salt is missing: %w", ErrInvalidVault)
	}

	key, err := deriveKey(password, v.Salt, v.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(v.Ciphertext) < aesGCM.Overhead() {
		return nil, fmt.Errorf("ciphertext is truncated: %w", ErrInvalidVault)
	}

	plaintext, err := aesGCM.Open(nil, v.IV, v.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Reencrypt opens v with password and seals the key again with p.
// It upgrades legacy vaults to a salted KDF.
func Reencrypt(v *EncryptedVault, password []byte, p Params) (*EncryptedVault, error) {
	privateKey, err := Decrypt(v, password)
	if err != nil {
		return nil, err
	}
	defer clear(privateKey)
	return EncryptWithParams(privateKey, password, p)
}

package identity

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// RecoveryPhrase encodes the 32-byte private key as a 24-word BIP-39 mnemonic.
// The phrase is the private key; treat it with the same care.
func RecoveryPhrase(privateKey []byte) (string, error) {
	if len(privateKey) != PrivateKeyLen {
		return "", fmt.Errorf("private key must be %d bytes: %w", PrivateKeyLen, ErrInvalidKey)
	}
	phrase, err := bip39.NewMnemonic(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode recovery phrase: %w", err)
	}
	return phrase, nil
}

// FromRecoveryPhrase restores the keypair encoded by RecoveryPhrase.
func FromRecoveryPhrase(phrase string) (*Keypair, error) {
	phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("invalid recovery phrase: %v: %w", err, ErrInvalidKey)
	}
	defer clear(entropy)
	if len(entropy) != PrivateKeyLen {
		return nil, fmt.Errorf("recovery phrase must have 24 words: %w", ErrInvalidKey)
	}
	return FromPrivateKey(entropy)
}

package keyvault

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

// KDF names the password key-derivation function of a vault
type KDF string

const (
	KDFScrypt   KDF = "scrypt"
	KDFArgon2id KDF = "argon2id"
	// KDFLegacySHA256 is a single unsalted SHA-256 of the password.
	// Vaults written by the browser client use it; it is accepted for decryption only.
	KDFLegacySHA256 KDF = "sha256"
)

const (
	keyLen   = 32
	saltLen  = 32
	nonceLen = 12
)

// Params selects the KDF and its cost.
type Params struct {
	KDF KDF

	// scrypt
	N int
	R int
	P int

	// argon2id
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

// DefaultParams derives keys with scrypt.
//
// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while still
// fitting the per-app memory limits of mobile devices.
var DefaultParams = Params{KDF: KDFScrypt, N: 1 << 18, R: 8, P: 1}

// Argon2idParams matches the envelope settings used for local secure storage
var Argon2idParams = Params{KDF: KDFArgon2id, Time: 2, MemoryKB: 64 * 1024, Threads: 1}

// ParamsFor returns the default params for a KDF name.
func ParamsFor(name string) (Params, error) {
	switch KDF(name) {
	case "", KDFScrypt:
		return DefaultParams, nil
	case KDFArgon2id:
		return Argon2idParams, nil
	}
	return Params{}, fmt.Errorf("unsupported kdf %q", name)
}

// Upper bounds on KDF cost. A stored vault carries its own params, so a
// tampered record must not be able to make unlock allocate or spin without limit.
const (
	maxKDFMemoryBytes = 1 << 30
	maxScryptN        = 1 << 20
	maxScryptR        = 32
	maxScryptP        = 16
	maxArgon2Time     = 16
	maxArgon2MemoryKB = maxKDFMemoryBytes / 1024
	maxArgon2Threads  = 16
)

func (p Params) validate() error {
	switch p.KDF {
	case KDFScrypt:
		if p.N <= 1 || p.N&(p.N-1) != 0 || p.R <= 0 || p.P <= 0 {
			return fmt.Errorf("invalid scrypt params N=%d r=%d p=%d", p.N, p.R, p.P)
		}
		// scrypt needs 128*N*r bytes
		if p.N > maxScryptN || p.R > maxScryptR || p.P > maxScryptP || 128*p.N*p.R > maxKDFMemoryBytes {
			return fmt.Errorf("scrypt params too large N=%d r=%d p=%d", p.N, p.R, p.P)
		}
	case KDFArgon2id:
		if p.Time == 0 || p.MemoryKB == 0 || p.Threads == 0 {
			return fmt.Errorf("invalid argon2id params t=%d m=%d p=%d", p.Time, p.MemoryKB, p.Threads)
		}
		if p.Time > maxArgon2Time || p.MemoryKB > maxArgon2MemoryKB || p.Threads > maxArgon2Threads {
			return fmt.Errorf("argon2id params too large t=%d m=%d p=%d", p.Time, p.MemoryKB, p.Threads)
		}
	case KDFLegacySHA256:
	default:
		return fmt.Errorf("unsupported kdf %q", p.KDF)
	}
	return nil
}

// deriveKey derives the AES-256 key from password.
// Caller should zero the returned key after use.
func deriveKey(password, salt []byte, p Params) ([]byte, error) {
	switch p.KDF {
	case KDFScrypt:
		return scrypt.Key(password, salt, p.N, p.R, p.P, keyLen)
	case KDFArgon2id:
		return argon2.IDKey(password, salt, p.Time, p.MemoryKB, p.Threads, keyLen), nil
	case KDFLegacySHA256:
		sum := sha256.Sum256(password)
		return sum[:], nil
	}
	return nil, fmt.Errorf("unsupported kdf %q", p.KDF)
}

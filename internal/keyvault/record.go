package keyvault

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// Record converts the vault to its persisted hex form.
func (v *EncryptedVault) Record() model.VaultRecord {
	rec := model.VaultRecord{
		Encrypted: hex.EncodeToString(v.Ciphertext),
		IV:        hex.EncodeToString(v.IV),
	}
	if v.Params.KDF == KDFLegacySHA256 {
		return rec
	}
	rec.Salt = hex.EncodeToString(v.Salt)
	rec.KDF = string(v.Params.KDF)
	rec.KDFParams = &model.KDFParams{
		N:        v.Params.N,
		R:        v.Params.R,
		P:        v.Params.P,
		Time:     v.Params.Time,
		MemoryKB: v.Params.MemoryKB,
		Threads:  v.Params.Threads,
	}
	return rec
}

// FromRecord parses a persisted vault. Records without a KDF are legacy vaults.
func FromRecord(rec model.VaultRecord) (*EncryptedVault, error) {
	ciphertext, err := hex.DecodeString(rec.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", ErrInvalidVault)
	}
	iv, err := hex.DecodeString(rec.IV)
	if err != nil {
		return nil, fmt.Errorf("failed to decode iv: %w", ErrInvalidVault)
	}
	v := &EncryptedVault{Ciphertext: ciphertext, IV: iv}

	if rec.IsLegacy() {
		v.Params = Params{KDF: KDFLegacySHA256}
		return v, nil
	}

	if v.Salt, err = hex.DecodeString(rec.Salt); err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", ErrInvalidVault)
	}
	v.Params = Params{KDF: KDF(rec.KDF)}
	if p := rec.KDFParams; p != nil {
		v.Params.N, v.Params.R, v.Params.P = p.N, p.R, p.P
		v.Params.Time, v.Params.MemoryKB, v.Params.Threads = p.Time, p.MemoryKB, p.Threads
	}
	if err := v.Params.validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidVault)
	}
	return v, nil
}

// Marshal encodes the vault as the JSON stored under the "vault" key.
func (v *EncryptedVault) Marshal() (string, error) {
	raw, err := json.Marshal(v.Record())
	if err != nil {
		return "", fmt.Errorf("failed to marshal vault: %w", err)
	}
	return string(raw), nil
}

// Unmarshal parses the JSON stored under the "vault" key.
func Unmarshal(data string) (*EncryptedVault, error) {
	var rec model.VaultRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault: %w", ErrInvalidVault)
	}
	return FromRecord(rec)
}

// IsLegacy reports whether the vault uses the unsalted single-hash KDF.
func (v *EncryptedVault) IsLegacy() bool {
	return v.Params.KDF == KDFLegacySHA256
}

package model

// VaultRecord is the persisted form of an encrypted private key.
// Byte fields are hex strings. A record without KDF is a legacy vault
// whose key was derived with a single SHA-256 of the password.
type VaultRecord struct {
	Encrypted string     `json:"encrypted"`
	IV        string     `json:"iv"`
	Salt      string     `json:"salt,omitempty"`
	KDF       string     `json:"kdf,omitempty"`
	KDFParams *KDFParams `json:"kdf_params,omitempty"`
}

// KDFParams holds cost parameters for the password KDF
type KDFParams struct {
	N        int    `json:"n,omitempty"`
	R        int    `json:"r,omitempty"`
	P        int    `json:"p,omitempty"`
	Time     uint32 `json:"time,omitempty"`
	MemoryKB uint32 `json:"memory_kb,omitempty"`
	Threads  uint8  `json:"threads,omitempty"`
}

// IsLegacy reports whether the record predates salted KDFs.
func (r *VaultRecord) IsLegacy() bool {
	return r.KDF == ""
}

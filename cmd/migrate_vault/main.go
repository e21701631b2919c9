// One-off: re-seal the stored wallet vault with the configured KDF (WALLET_KDF).
// Legacy vaults keyed by a single SHA-256 of the password are upgraded to a salted KDF.
// Usage: go run ./cmd/migrate_vault
package main

import (
	"fmt"
	"os"

	"github.com/AlexZinkM/wallet-auth/internal/config"
	"github.com/AlexZinkM/wallet-auth/internal/keyvault"
	"github.com/AlexZinkM/wallet-auth/internal/localstore"
	"github.com/AlexZinkM/wallet-auth/internal/wallet"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Get().Client

	params, err := keyvault.ParamsFor(cfg.KDF)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	store, err := localstore.NewFileStore(cfg.StorePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	password, err := config.ReadPassword("Wallet password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer clear(password)

	// Migration never talks to the auth server
	svc := wallet.New(store, nil, wallet.WithParams(params))
	migrated, err := svc.MigrateVault(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migration failed:", err)
		clear(password)
		os.Exit(1)
	}
	if !migrated {
		fmt.Printf("vault in %s already uses %s\n", store.Path(), params.KDF)
		return
	}
	fmt.Printf("vault in %s re-encrypted with %s\n", store.Path(), params.KDF)
}

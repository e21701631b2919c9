// walletctl manages the local wallet and logs in to the auth server.
// Usage: go run ./cmd/walletctl <command>
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/wallet-auth/internal/client"
	"github.com/AlexZinkM/wallet-auth/internal/config"
	"github.com/AlexZinkM/wallet-auth/internal/keyvault"
	"github.com/AlexZinkM/wallet-auth/internal/localstore"
	"github.com/AlexZinkM/wallet-auth/internal/wallet"
)

func main() {
	root := &cobra.Command{
		Use:           "walletctl",
		Short:         "Wallet keys and challenge login",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCreateCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newRestoreCmd(),
		newPhraseCmd(),
		newQRCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("walletctl failed")
	}
}

// deps wires the wallet service from config
type deps struct {
	cfg     config.Client
	store   *localstore.FileStore
	client  *client.AuthClient
	service *wallet.Service
}

func setup() (*deps, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get().Client

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	params, err := keyvault.ParamsFor(cfg.KDF)
	if err != nil {
		return nil, err
	}
	store, err := localstore.NewFileStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	c := client.NewAuthClient(cfg.AuthServerURL, cfg.HTTPTimeout, store)

	return &deps{
		cfg:    cfg,
		store:  store,
		client: c,
		service: wallet.New(store, c,
			wallet.WithParams(params),
			wallet.WithLogger(logger),
			wallet.WithObserver(func(state wallet.LoginState, err error) {
				logger.Debug().Stringer("state", state).Msg("login step")
			}),
		),
	}, nil
}

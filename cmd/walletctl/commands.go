package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/wallet-auth/internal/client"
	"github.com/AlexZinkM/wallet-auth/internal/config"
	"github.com/AlexZinkM/wallet-auth/internal/model"
)

func newCreateCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a wallet, register it and store it encrypted",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			d, err := setup()
			if err != nil {
				return err
			}
			password, err := config.ReadNewPassword()
			if err != nil {
				return err
			}
			defer clear(password)

			created, err := d.service.CreateWallet(cmd.Context(), password, r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Address:  %s\n", created.Address)
			fmt.Fprintf(out, "User ID:  %s\n", created.UserID)
			fmt.Fprintf(out, "Role:     %s\n", created.Role)
			fmt.Fprintf(out, "Stored:   %s\n", d.store.Path())
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recovery phrase (write it down, it is shown once):")
			fmt.Fprintln(out, created.RecoveryPhrase)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleUser), "Role: admin, client, validator or user")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a wallet from its recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			d, err := setup()
			if err != nil {
				return err
			}
			phrase, err := config.ReadPassword("Recovery phrase: ")
			if err != nil {
				return err
			}
			defer clear(phrase)
			password, err := config.ReadNewPassword()
			if err != nil {
				return err
			}
			defer clear(password)

			restored, err := d.service.Restore(cmd.Context(), string(phrase), password, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s into %s\n", restored.Address, d.store.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleUser), "Role used if the wallet is not registered yet")
	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign a server nonce with the wallet key and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			password, err := config.ReadPassword("Wallet password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			session, err := d.service.Login(cmd.Context(), password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), session expires %s\n",
				session.Address, session.Role, session.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session; the wallet stays stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			return d.service.Logout()
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			session, ok, err := d.service.Session()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			if client.Expired(session, time.Now()) {
				fmt.Fprintln(out, "Session expired, run walletctl login")
				return nil
			}

			if remote {
				ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.HTTPTimeout)
				defer cancel()
				me, err := d.client.Me(ctx, session.AccessToken)
				if errors.Is(err, model.ErrUnauthorized) {
					fmt.Fprintln(out, "Session rejected by the server, run walletctl login")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %s (verified by server)\n", me.UserID, me.Address, me.Role)
				return nil
			}
			fmt.Fprintf(out, "%s %s %s\n", session.UserID, session.Address, session.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Check the token against the auth server")
	return cmd
}

func newPhraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phrase",
		Short: "Unlock the wallet and print its recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			password, err := config.ReadPassword("Wallet password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			phrase, err := d.service.RecoveryPhrase(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phrase)
			return nil
		},
	}
}

func newQRCmd() *cobra.Command {
	var outPath string
	var size int

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Write the wallet address as a PNG QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			png, err := d.service.AddressQR(size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, png, 0o644); err != nil {
				return fmt.Errorf("failed to write QR code: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "QR code written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "address.png", "Output PNG file")
	cmd.Flags().IntVar(&size, "size", 256, "Image size in pixels")
	return cmd
}

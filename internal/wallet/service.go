// Package wallet orchestrates the client-side wallet: creation, backup and
// challenge login against the auth server.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AlexZinkM/wallet-auth/internal/client"
	"github.com/AlexZinkM/wallet-auth/internal/identity"
	"github.com/AlexZinkM/wallet-auth/internal/keyvault"
	"github.com/AlexZinkM/wallet-auth/internal/localstore"
	"github.com/AlexZinkM/wallet-auth/internal/model"
)

var (
	// ErrWalletExists means the store already holds a wallet
	ErrWalletExists = errors.New("wallet already exists")
	// ErrNoWallet means the store holds no wallet
	ErrNoWallet = errors.New("no wallet found, create or restore one first")
)

// AuthAPI is the auth server surface the wallet needs
type AuthAPI interface {
	RegisterWallet(ctx context.Context, publicKey, address string, role model.Role) (*model.RegisterResponse, error)
	RequestNonce(ctx context.Context, address string) (string, error)
	Login(ctx context.Context, address, signature string) (*model.Session, error)
	Logout() error
}

// Service manages the wallet held in a local store
type Service struct {
	store    localstore.Store
	api      AuthAPI
	params   keyvault.Params
	logger   zerolog.Logger
	observer Observer
}

// Option configures a Service
type Option func(*Service)

// WithParams sets the KDF used for new vaults
func WithParams(p keyvault.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithObserver receives every login state transition
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// New creates a wallet service
func New(store localstore.Store, api AuthAPI, opts ...Option) *Service {
	s := &Service{
		store:  store,
		api:    api,
		params: keyvault.DefaultParams,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Created describes a freshly created or restored wallet
type Created struct {
	Address   string
	PublicKey string
	UserID    string
	Role      model.Role
	// QRCode is a base64 PNG of the address
	QRCode string
	// RecoveryPhrase encodes the private key; show it once and never persist it
	RecoveryPhrase string
}

// CreateWallet generates a keypair, seals it under password, registers it
// with the auth server and stores it. Nothing is stored if registration fails.
// password must be []byte for security (caller should zero it after use)
func (s *Service) CreateWallet(ctx context.Context, password []byte, role model.Role) (*Created, error) {
	if err := s.ensureEmpty(); err != nil {
		return nil, err
	}

	kp, err := identity.Generate()
	if err != nil {
		return nil, err
	}
	defer kp.Wipe()

	return s.enroll(ctx, kp, password, role, false)
}

// Restore rebuilds the wallet from its recovery phrase on this device.
// The address may already be registered; that is not an error.
func (s *Service) Restore(ctx context.Context, phrase string, password []byte, role model.Role) (*Created, error) {
	if err := s.ensureEmpty(); err != nil {
		return nil, err
	}

	kp, err := identity.FromRecoveryPhrase(phrase)
	if err != nil {
		return nil, err
	}
	defer kp.Wipe()

	return s.enroll(ctx, kp, password, role, true)
}

func (s *Service) enroll(ctx context.Context, kp *identity.Keypair, password []byte, role model.Role, allowRegistered bool) (*Created, error) {
	address := kp.Address()
	publicKey := kp.PublicKeyHex()

	vault, err := keyvault.EncryptWithParams(kp.PrivateKey, password, s.params)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt wallet: %w", err)
	}
	sealed, err := vault.Marshal()
	if err != nil {
		return nil, err
	}

	var userID string
	reg, err := s.api.RegisterWallet(ctx, publicKey, address, role)
	switch {
	case err == nil:
		userID = reg.UserID
	case allowRegistered && errors.Is(err, model.ErrConflict):
		s.logger.Info().Str("address", address).Msg("wallet already registered, restoring locally")
	default:
		return nil, err
	}

	phrase, err := identity.RecoveryPhrase(kp.PrivateKey)
	if err != nil {
		return nil, err
	}
	qr, err := qrCodeBase64(address)
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		localstore.KeyVault:     sealed,
		localstore.KeyPublicKey: publicKey,
		localstore.KeyAddress:   address,
		localstore.KeyRole:      string(role),
	}
	if userID != "" {
		values[localstore.KeyUserID] = userID
	}
	if err := s.store.SetMany(values); err != nil {
		return nil, fmt.Errorf("failed to store wallet: %w", err)
	}
	s.logger.Info().Str("address", address).Str("kdf", string(s.params.KDF)).Msg("wallet stored")

	return &Created{
		Address:        address,
		PublicKey:      publicKey,
		UserID:         userID,
		Role:           role,
		QRCode:         qr,
		RecoveryPhrase: phrase,
	}, nil
}

// Logout clears the session; the wallet stays on the device.
func (s *Service) Logout() error {
	return s.api.Logout()
}

// Session returns the persisted session, if any.
func (s *Service) Session() (*model.Session, bool, error) {
	return client.LoadSession(s.store)
}

// Address returns the stored wallet address.
func (s *Service) Address() (string, error) {
	address, ok, err := s.store.Get(localstore.KeyAddress)
	if err != nil {
		return "", fmt.Errorf("failed to read address: %w", err)
	}
	if !ok || address == "" {
		return "", ErrNoWallet
	}
	return address, nil
}

// RecoveryPhrase unlocks the vault and returns the wallet recovery phrase.
func (s *Service) RecoveryPhrase(password []byte) (string, error) {
	vault, err := s.loadVault()
	if err != nil {
		return "", err
	}
	privateKey, err := keyvault.Decrypt(vault, password)
	if err != nil {
		return "", err
	}
	defer clear(privateKey)
	return identity.RecoveryPhrase(privateKey)
}

// MigrateVault re-seals the vault with the configured KDF.
// It reports false when the vault already uses it.
func (s *Service) MigrateVault(password []byte) (bool, error) {
	vault, err := s.loadVault()
	if err != nil {
		return false, err
	}
	if vault.Params == s.params {
		return false, nil
	}

	upgraded, err := keyvault.Reencrypt(vault, password, s.params)
	if err != nil {
		return false, err
	}
	sealed, err := upgraded.Marshal()
	if err != nil {
		return false, err
	}
	if err := s.store.Set(localstore.KeyVault, sealed); err != nil {
		return false, fmt.Errorf("failed to store vault: %w", err)
	}
	s.logger.Info().
		Str("from", string(vault.Params.KDF)).
		Str("to", string(s.params.KDF)).
		Msg("vault migrated")
	return true, nil
}

func (s *Service) ensureEmpty() error {
	existing, ok, err := s.store.Get(localstore.KeyVault)
	if err != nil {
		return fmt.Errorf("failed to read vault: %w", err)
	}
	if ok && strings.TrimSpace(existing) != "" {
		return ErrWalletExists
	}
	return nil
}

func (s *Service) loadVault() (*keyvault.EncryptedVault, error) {
	raw, ok, err := s.store.Get(localstore.KeyVault)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrNoWallet
	}
	return keyvault.Unmarshal(raw)
}

package wallet

import (
	"context"

	"github.com/AlexZinkM/wallet-auth/internal/challenge"
	"github.com/AlexZinkM/wallet-auth/internal/keyvault"
	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// LoginState is a step of the challenge login
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginNonceRequested
	LoginSigned
	LoginVerified
	LoginFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginIdle:
		return "idle"
	case LoginNonceRequested:
		return "nonce_requested"
	case LoginSigned:
		return "signed"
	case LoginVerified:
		return "verified"
	case LoginFailed:
		return "failed"
	}
	return "unknown"
}

// Observer is told about each login transition. err is set only with LoginFailed.
type Observer func(state LoginState, err error)

// Login proves control of the stored wallet to the auth server.
// It runs Idle -> NonceRequested -> Signed -> Verified and stops at Failed
// on the first error; nothing is retried.
// password must be []byte for security (caller should zero it after use)
func (s *Service) Login(ctx context.Context, password []byte) (*model.Session, error) {
	s.transition(LoginIdle, nil)

	session, err := s.login(ctx, password)
	if err != nil {
		s.transition(LoginFailed, err)
		return nil, err
	}
	s.transition(LoginVerified, nil)
	return session, nil
}

func (s *Service) login(ctx context.Context, password []byte) (*model.Session, error) {
	address, err := s.Address()
	if err != nil {
		return nil, err
	}
	vault, err := s.loadVault()
	if err != nil {
		return nil, err
	}

	nonce, err := challenge.NewSigner(s.api).RequestNonce(ctx, address)
	if err != nil {
		return nil, err
	}
	s.transition(LoginNonceRequested, nil)

	privateKey, err := keyvault.Decrypt(vault, password)
	if err != nil {
		return nil, err
	}
	defer clear(privateKey)

	signature, err := challenge.Sign(nonce, privateKey)
	if err != nil {
		return nil, err
	}
	s.transition(LoginSigned, nil)

	return s.api.Login(ctx, address, signature)
}

func (s *Service) transition(state LoginState, err error) {
	ev := s.logger.Debug()
	if err != nil {
		ev = s.logger.Warn().Err(err)
	}
	ev.Stringer("state", state).Msg("login")

	if s.observer != nil {
		s.observer(state, err)
	}
}

package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AlexZinkM/wallet-auth/internal/localstore"
	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// SaveSession writes every session field into the store and marks the client logged in.
func SaveSession(store localstore.Store, s *model.Session) error {
	err := store.SetMany(map[string]string{
		localstore.KeyIsLoggedIn:  strconv.FormatBool(true),
		localstore.KeyAccessToken: s.AccessToken,
		localstore.KeyTokenType:   s.TokenType,
		localstore.KeyExpiresAt:   s.ExpiresAt.UTC().Format(time.RFC3339),
		localstore.KeyUserID:      s.UserID,
		localstore.KeyPublicKey:   s.PublicKey,
		localstore.KeyAddress:     s.Address,
		localstore.KeyRole:        string(s.Role),
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// LoadSession reads the persisted session. ok is false when the client is logged out.
func LoadSession(store localstore.Store) (session *model.Session, ok bool, err error) {
	loggedIn, _, err := store.Get(localstore.KeyIsLoggedIn)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session: %w", err)
	}
	if isLoggedIn, _ := strconv.ParseBool(loggedIn); !isLoggedIn {
		return nil, false, nil
	}

	values := make(map[string]string)
	for _, key := range []string{
		localstore.KeyAccessToken,
		localstore.KeyTokenType,
		localstore.KeyExpiresAt,
		localstore.KeyUserID,
		localstore.KeyPublicKey,
		localstore.KeyAddress,
		localstore.KeyRole,
	} {
		v, _, err := store.Get(key)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read session: %w", err)
		}
		values[key] = v
	}
	if values[localstore.KeyAccessToken] == "" {
		return nil, false, nil
	}

	s := &model.Session{
		AccessToken: values[localstore.KeyAccessToken],
		TokenType:   values[localstore.KeyTokenType],
		UserID:      values[localstore.KeyUserID],
		PublicKey:   values[localstore.KeyPublicKey],
		Address:     values[localstore.KeyAddress],
		Role:        model.Role(values[localstore.KeyRole]),
	}
	if raw := values[localstore.KeyExpiresAt]; raw != "" {
		if s.ExpiresAt, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, false, fmt.Errorf("failed to parse session expiry: %w", err)
		}
	}
	return s, true, nil
}

// Expired reports whether the session is past its expiry at now.
// A session without an expiry never expires locally.
func Expired(s *model.Session, now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

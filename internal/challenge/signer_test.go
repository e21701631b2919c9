package challenge

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-auth/internal/identity"
)

type fakeSource struct {
	nonce string
	err   error
	asked []string
}

func (f *fakeSource) RequestNonce(_ context.Context, address string) (string, error) {
	f.asked = append(f.asked, address)
	return f.nonce, f.err
}

func newNonce(t *testing.T) []byte {
	t.Helper()
	n := make([]byte, NonceLen)
	_, err := rand.Read(n)
	require.NoError(t, err)
	return n
}

func TestSignVerify(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)
	nonce := newNonce(t)

	sig, err := Sign(nonce, kp.PrivateKey)
	require.NoError(t, err)
	assert.Len(t, sig, 128)

	assert.NoError(t, Verify(sig, nonce, kp.PublicKey))
}

func TestSignIsDeterministic(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)
	nonce := newNonce(t)

	s1, err := Sign(nonce, kp.PrivateKey)
	require.NoError(t, err)
	s2, err := Sign(nonce, kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestVerifyRejectsOtherKeypair(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)
	other, err := identity.Generate()
	require.NoError(t, err)
	nonce := newNonce(t)

	sig, err := Sign(nonce, kp.PrivateKey)
	require.NoError(t, err)

	assert.ErrorIs(t, Verify(sig, nonce, other.PublicKey), ErrBadSignature)
}

func TestVerifyRejectsDifferentNonce(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)

	sig, err := Sign(newNonce(t), kp.PrivateKey)
	require.NoError(t, err)

	assert.ErrorIs(t, Verify(sig, newNonce(t), kp.PublicKey), ErrBadSignature)
}

func TestVerifyAcceptsRecoverableSignature(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)
	pub, err := identity.ParsePublicKey(kp.PublicKey)
	require.NoError(t, err)
	nonce := newNonce(t)

	sig, err := Sign(nonce, kp.PrivateKey)
	require.NoError(t, err)

	assert.NoError(t, Verify("0x"+sig+"1b", nonce, pub.SerializeUncompressed()))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)
	nonce := newNonce(t)

	assert.ErrorIs(t, Verify("not-hex", nonce, kp.PublicKey), ErrBadSignature)
	assert.ErrorIs(t, Verify("abcd", nonce, kp.PublicKey), ErrBadSignature)
	assert.ErrorIs(t, Verify(hex.EncodeToString(make([]byte, 64)), nonce, kp.PublicKey), ErrBadSignature)
	assert.ErrorIs(t, Verify(hex.EncodeToString(make([]byte, 64)), nonce, []byte{1}), identity.ErrInvalidKey)
}

func TestSignRejectsBadInput(t *testing.T) {
	_, err := Sign(nil, make([]byte, 32))
	assert.ErrorIs(t, err, ErrNoNonce)

	_, err = Sign(newNonce(t), []byte{1, 2})
	assert.ErrorIs(t, err, identity.ErrInvalidKey)
}

func TestRequestNonce(t *testing.T) {
	nonce := newNonce(t)
	src := &fakeSource{nonce: hex.EncodeToString(nonce)}

	got, err := NewSigner(src).RequestNonce(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, nonce, got)
	assert.Equal(t, []string{"0xabc"}, src.asked)
}

func TestRequestNonceNoNonce(t *testing.T) {
	for name, value := range map[string]string{
		"empty":   "",
		"not hex": "xyz",
		"short":   "abcd",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSigner(&fakeSource{nonce: value}).RequestNonce(context.Background(), "0xabc")
			assert.ErrorIs(t, err, ErrNoNonce)
		})
	}
}

func TestRequestNoncePropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSigner(&fakeSource{err: boom}).RequestNonce(context.Background(), "0xabc")
	assert.ErrorIs(t, err, boom)
}

package signer

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/dex-wallet/pkg/testutil"
)

func TestLocalKeySigner(t *testing.T) {
	key := testutil.GenerateSolanaKeypair(t)

	s, err := NewLocalKeySigner(key)
	require.NoError(t, err)
	assert.EqualValues(t, key.Public(), s.PublicKey())

	message := []byte("message")
	sig, err := s.Sign(context.Background(), message, nil)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(s.PublicKey(), message, sig[:]))

	fromText, err := NewLocalKeySignerFromBase58(base58.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, s.PublicKey(), fromText.PublicKey())

	_, err = NewLocalKeySigner(key[:32])
	assert.Error(t, err)
	_, err = NewLocalKeySignerFromBase58("0OIl")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Sign(ctx, message, nil)
	assert.ErrorIs(t, err, ErrSigningFailed)
}

type testElement struct {
	key ed25519.PrivateKey
	err error
	sig []byte
}

func (e *testElement) PublicKey() ed25519.PublicKey {
	return e.key.Public().(ed25519.PublicKey)
}

func (e *testElement) Sign(_ context.Context, message []byte, _ AuthContext) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.sig != nil {
		return e.sig, nil
	}
	return ed25519.Sign(e.key, message), nil
}

func TestHardwareSigner(t *testing.T) {
	element := &testElement{key: testutil.GenerateSolanaKeypair(t)}
	s := NewHardwareSigner(element)
	message := []byte("message")

	sig, err := s.Sign(context.Background(), message, "biometric")
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(s.PublicKey(), message, sig[:]))

	for _, tc := range []struct {
		err      error
		expected error
	}{
		{ErrUserCancelled, ErrSigningDeclined},
		{errors.Wrap(ErrAuthenticationFailed, "fingerprint mismatch"), ErrSigningDeclined},
		{context.Canceled, ErrSigningDeclined},
		{errors.New("keystore unavailable"), ErrSigningFailed},
	} {
		element.err = tc.err
		_, err := s.Sign(context.Background(), message, nil)
		assert.ErrorIs(t, err, tc.expected, tc.err.Error())
	}

	element.err = nil
	element.sig = make([]byte, 10)
	_, err = s.Sign(context.Background(), message, nil)
	assert.ErrorIs(t, err, ErrSigningFailed)

	element.sig = make([]byte, ed25519.SignatureSize)
	_, err = s.Sign(context.Background(), message, nil)
	assert.ErrorIs(t, err, ErrSigningFailed)
}

package signer

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/solana"
)

var (
	// ErrUserCancelled is returned by a SecureElement when the user dismisses
	// the authorization prompt.
	ErrUserCancelled = errors.New("user cancelled authorization")

	// ErrAuthenticationFailed is returned by a SecureElement when the user
	// could not be authenticated.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// SecureElement is a key store that signs inside hardware and never exposes
// the private key.
type SecureElement interface {
	PublicKey() ed25519.PublicKey
	Sign(ctx context.Context, message []byte, auth AuthContext) ([]byte, error)
}

// HardwareSigner adapts a SecureElement to Signer, classifying its failures
// and verifying every signature it returns.
type HardwareSigner struct {
	log     *logrus.Entry
	element SecureElement
}

func NewHardwareSigner(element SecureElement) *HardwareSigner {
	return &HardwareSigner{
		log:     logrus.StandardLogger().WithField("type", "signer/hardware"),
		element: element,
	}
}

func (s *HardwareSigner) PublicKey() ed25519.PublicKey {
	return s.element.PublicKey()
}

func (s *HardwareSigner) Sign(ctx context.Context, message []byte, auth AuthContext) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, "signer.hardware", "Sign")
	defer tracer.End()

	var sig solana.Signature

	raw, err := s.element.Sign(ctx, message, auth)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserCancelled), errors.Is(err, ErrAuthenticationFailed), errors.Is(err, context.Canceled):
		return sig, errors.Wrap(ErrSigningDeclined, err.Error())
	default:
		s.log.WithError(err).Warn("secure element failed to sign")
		tracer.OnError(err)
		return sig, errors.Wrap(ErrSigningFailed, err.Error())
	}

	if len(raw) != ed25519.SignatureSize {
		err := errors.Wrapf(ErrSigningFailed, "invalid signature length: %d", len(raw))
		tracer.OnError(err)
		return sig, err
	}
	if !ed25519.Verify(s.element.PublicKey(), message, raw) {
		err := errors.Wrap(ErrSigningFailed, "signature does not verify")
		tracer.OnError(err)
		return sig, err
	}

	copy(sig[:], raw)
	return sig, nil
}

package liquidity

import (
	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/signer"
	"github.com/code-payments/dex-wallet/pkg/solana"
)

var (
	// ErrAddressDerivation means a program address could not be derived.
	// It indicates a bug in seed construction, never a transient failure.
	ErrAddressDerivation = errors.New("could not compute addresses")

	// ErrMetadataUnavailable is reported as a warning when token metadata
	// could not be fetched and default decimals were assumed.
	ErrMetadataUnavailable = errors.New("could not reach network for token info")

	// ErrSubmissionFailed means the network rejected the signed transaction.
	ErrSubmissionFailed = errors.New("submission rejected")

	// ErrTransactionFailed means the transaction landed but its execution
	// failed.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrConfirmationTimeout = errors.New("transaction not confirmed in time")

	ErrInvalidArgs   = errors.New("invalid arguments")
	ErrPoolNotFound  = errors.New("pool not found")
	ErrPayerMismatch = errors.New("signer is not the transaction payer")
)

// UserMessage maps an assembly or execution failure onto a single human
// readable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var txErr *solana.TransactionError
	switch {
	case errors.Is(err, ErrAddressDerivation):
		return "Could not compute the pool addresses. This is a bug, please report it."
	case errors.Is(err, ErrMetadataUnavailable):
		return "Could not reach the network for token info. Default token decimals were used."
	case errors.Is(err, signer.ErrSigningDeclined):
		return "Signing was declined. Approve the request to continue."
	case errors.Is(err, signer.ErrSigningFailed):
		return "Signing failed. Please try again."
	case errors.Is(err, ErrTransactionFailed) && errors.As(err, &txErr):
		return "The transaction failed: " + txErr.Error() + "."
	case errors.As(err, &txErr):
		return "The network rejected the transaction: " + txErr.Error() + "."
	case errors.Is(err, ErrSubmissionFailed):
		return "The network rejected the transaction. Please try again."
	case errors.Is(err, ErrConfirmationTimeout):
		return "The transaction was sent but is not confirmed yet. Check its status before retrying."
	case errors.Is(err, ErrPoolNotFound):
		return "The pool does not exist yet."
	case errors.Is(err, ErrInvalidArgs), errors.Is(err, ErrPayerMismatch):
		return "The request is invalid: " + err.Error() + "."
	}
	return "Something went wrong. Please try again."
}

// classifiedError matches class with errors.Is while leaving cause reachable
// through errors.As.
type classifiedError struct {
	class error
	cause error
}

func (e *classifiedError) Error() string {
	return e.class.Error() + ": " + e.cause.Error()
}

func (e *classifiedError) Is(target error) bool {
	return target == e.class
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

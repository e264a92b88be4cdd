package liquidity

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/retry"
	"github.com/code-payments/dex-wallet/pkg/retry/backoff"
	"github.com/code-payments/dex-wallet/pkg/solana"
)

const confirmerMetricsStructName = "liquidity.confirmer"

var errNotConfirmed = errors.New("not yet confirmed")

// StatusSource reports the state of submitted transactions. solana.Client
// satisfies it.
type StatusSource interface {
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*solana.SignatureStatus, error)
}

// Confirmer waits for submitted transactions to reach confirmed commitment.
type Confirmer struct {
	log      *logrus.Entry
	conf     *conf
	statuses StatusSource
}

func NewConfirmer(statuses StatusSource, configProvider ConfigProvider) *Confirmer {
	return &Confirmer{
		log:      logrus.StandardLogger().WithField("type", "liquidity/confirmer"),
		conf:     configProvider(),
		statuses: statuses,
	}
}

// Await polls until sig is confirmed, its execution fails, or the configured
// timeout passes. A failed execution is returned as ErrTransactionFailed with
// the *solana.TransactionError reachable through errors.As.
func (c *Confirmer) Await(ctx context.Context, sig solana.Signature) (*solana.SignatureStatus, error) {
	tracer := metrics.TraceMethodCall(ctx, confirmerMetricsStructName, "Await")
	defer tracer.End()

	log := c.log.WithFields(logrus.Fields{
		"method":    "Await",
		"signature": sig.String(),
	})

	interval := c.conf.confirmationPollInterval.Get(ctx)
	pollCtx, cancel := context.WithTimeout(ctx, c.conf.confirmationTimeout.Get(ctx))
	defer cancel()

	var status *solana.SignatureStatus
	attempts, err := retry.Retry(
		pollCtx,
		func() error {
			latest, err := c.statuses.GetSignatureStatus(pollCtx, sig)
			if err != nil {
				return err
			}
			if latest.ErrorResult == nil && !latest.Confirmed() {
				return errNotConfirmed
			}
			status = latest
			return nil
		},
		retry.RetriableErrors(solana.ErrSignatureNotFound, errNotConfirmed),
		retry.Backoff(backoff.Constant(interval), interval),
	)
	log = log.WithField("attempts", attempts)

	switch {
	case err == nil:
	case errors.Is(err, errNotConfirmed), errors.Is(err, solana.ErrSignatureNotFound):
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("transaction not confirmed before timeout")
		err = errors.Wrap(ErrConfirmationTimeout, sig.String())
		tracer.OnError(err)
		return nil, err
	default:
		log.WithError(err).Warn("failure polling signature status")
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting signature status")
	}

	if status.ErrorResult != nil {
		err := &classifiedError{class: ErrTransactionFailed, cause: status.ErrorResult}
		log.WithError(err).Info("transaction failed")
		tracer.OnError(err)
		return status, err
	}

	log.WithField("status", status.ConfirmationStatus).Info("transaction confirmed")
	return status, nil
}

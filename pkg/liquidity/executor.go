package liquidity

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/signer"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/computebudget"
	"github.com/code-payments/dex-wallet/pkg/solana/memo"
)

const (
	executorMetricsStructName = "liquidity.executor"

	memoPrefix = "dexwallet/"
)

// BlockhashSource provides a recent blockhash for new transactions.
// solana.Client satisfies it.
type BlockhashSource interface {
	GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error)
}

// Submitter sends a signed, serialized transaction to the network.
type Submitter interface {
	Submit(ctx context.Context, txBytes []byte) (solana.Signature, error)
}

type rpcSubmitter struct {
	sc solana.Client
}

// NewRPCSubmitter submits transactions over the JSON RPC API at confirmed
// commitment.
func NewRPCSubmitter(sc solana.Client) Submitter {
	return &rpcSubmitter{sc: sc}
}

func (s *rpcSubmitter) Submit(ctx context.Context, txBytes []byte) (solana.Signature, error) {
	var txn solana.Transaction
	if err := txn.Unmarshal(txBytes); err != nil {
		return solana.Signature{}, errors.Wrap(err, "invalid transaction")
	}
	return s.sc.SubmitTransaction(ctx, txn, solana.CommitmentConfirmed)
}

// Executor compiles a Description into a transaction, has it signed and
// submits it.
type Executor struct {
	log         *logrus.Entry
	conf        *conf
	blockhashes BlockhashSource
	signer      signer.Signer
	submitter   Submitter
}

func NewExecutor(blockhashes BlockhashSource, s signer.Signer, submitter Submitter, configProvider ConfigProvider) *Executor {
	return &Executor{
		log:         logrus.StandardLogger().WithField("type", "liquidity/executor"),
		conf:        configProvider(),
		blockhashes: blockhashes,
		signer:      s,
		submitter:   submitter,
	}
}

// Build compiles desc into an unsigned transaction with the payer as the
// first account. Compute budget and memo instructions are added ahead of the
// AMM instruction when configured.
func (e *Executor) Build(ctx context.Context, desc *Description) (*solana.Transaction, error) {
	if !desc.Payer.Equal(e.signer.PublicKey()) {
		return nil, errors.Wrapf(
			ErrPayerMismatch,
			"payer %s, signer %s",
			solana.EncodeBase58(desc.Payer),
			solana.EncodeBase58(e.signer.PublicKey()),
		)
	}

	bh, err := e.blockhashes.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting recent blockhash")
	}

	var ixns []solana.Instruction
	if limit := e.conf.computeUnitLimit.Get(ctx); limit > 0 {
		if limit > math.MaxUint32 {
			limit = math.MaxUint32
		}
		ixns = append(ixns, computebudget.SetComputeUnitLimit(uint32(limit)))
	}
	if price := e.conf.computeUnitPrice.Get(ctx); price > 0 {
		ixns = append(ixns, computebudget.SetComputeUnitPrice(price))
	}
	if e.conf.attachMemo.Get(ctx) {
		ixns = append(ixns, memo.Instruction(memoPrefix+string(desc.Operation)))
	}
	ixns = append(ixns, desc.Instruction)

	txn := solana.NewTransaction(desc.Payer, ixns...)
	txn.SetBlockhash(bh)
	return &txn, nil
}

// Execute signs and submits desc, returning the transaction signature.
func (e *Executor) Execute(ctx context.Context, desc *Description, auth signer.AuthContext) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, executorMetricsStructName, "Execute")
	defer tracer.End()

	requestID := uuid.New()
	tracer.AddAttribute("request_id", requestID.String())

	log := e.log.WithFields(logrus.Fields{
		"method":     "Execute",
		"request_id": requestID.String(),
		"operation":  desc.Operation,
		"payer":      solana.EncodeBase58(desc.Payer),
	})

	sig, err := e.execute(ctx, log, desc, auth)
	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Warn("failure executing transaction")
		return sig, err
	}

	log.WithField("signature", sig.String()).Info("transaction submitted")
	return sig, nil
}

func (e *Executor) execute(ctx context.Context, log *logrus.Entry, desc *Description, auth signer.AuthContext) (solana.Signature, error) {
	txn, err := e.Build(ctx, desc)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := e.signer.Sign(ctx, txn.Message.Marshal(), auth)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := txn.SetSignature(desc.Payer, sig); err != nil {
		return solana.Signature{}, errors.Wrap(signer.ErrSigningFailed, err.Error())
	}

	txBytes := txn.Marshal()
	if len(txBytes) > solana.MaxTransactionSize {
		return solana.Signature{}, errors.Wrapf(solana.ErrTransactionTooLarge, "%d bytes", len(txBytes))
	}

	log.WithField("signature", sig.String()).Debug("submitting transaction")

	submitted, err := e.submitter.Submit(ctx, txBytes)
	if err != nil {
		return sig, errors.Wrap(&classifiedError{class: ErrSubmissionFailed, cause: err}, "error submitting transaction")
	}
	return submitted, nil
}

package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/rate"
	"github.com/code-payments/dex-wallet/pkg/retry"
	"github.com/code-payments/dex-wallet/pkg/retry/backoff"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602

	metricsStructName = "solana.client"
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrNoBalance         = errors.New("no balance")
)

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() {
		return true
	}

	if s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}

	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

type TokenAmount struct {
	Amount   string `json:"amount"`   // example: "49801500000",
	Decimals uint8  `json:"decimals"` // example: 5,
}

// Client provides the subset of the Solana JSON RPC API the wallet needs.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (AccountInfo, error)
	GetLatestBlockhash(ctx context.Context) (Blockhash, error)
	GetSignatureStatus(ctx context.Context, sig Signature) (*SignatureStatus, error)
	GetTokenAccountBalance(ctx context.Context, account ed25519.PublicKey) (uint64, error)
	GetTokenSupply(ctx context.Context, mint ed25519.PublicKey) (TokenSupply, error)
	SubmitTransaction(ctx context.Context, txn Transaction, commitment Commitment) (Signature, error)
}

// TokenSupply is the raw supply of a mint and its decimals.
type TokenSupply struct {
	Amount   uint64
	Decimals uint8
}

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	limiter rate.Limiter
	retrier retry.Retrier

	blockMu   sync.RWMutex
	blockhash Blockhash
	lastWrite time.Time
}

// NewWithRateLimit returns a client that issues at most requestsPerSecond
// calls of each RPC method. Public endpoints reject bursts with HTTP 429.
func NewWithRateLimit(endpoint string, requestsPerSecond float64) Client {
	c := newClient(jsonrpc.NewClient(endpoint))
	c.limiter = rate.NewLocalRateLimiter(requestsPerSecond)
	return c
}

func newClient(rpc jsonrpc.RPCClient) *client {
	return &client{
		log:     logrus.StandardLogger().WithField("type", "solana/client"),
		client:  rpc,
		limiter: &rate.NoLimiter{},
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
	}
}

// call invokes method, retrying rate limited and unhealthy node responses.
func (c *client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()

	_, err := c.retrier.Retry(ctx, func() error {
		return c.invoke(ctx, out, method, params...)
	})
	tracer.OnError(err)
	return err
}

// callOnce invokes method exactly once. Used for requests that must not be
// replayed, such as transaction submission.
func (c *client) callOnce(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()

	err := c.invoke(ctx, out, method, params...)
	tracer.OnError(err)
	return err
}

func (c *client) invoke(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if err := c.limiter.Wait(ctx, method); err != nil {
		return err
	}

	err := c.client.CallFor(out, method, params...)
	if err == nil {
		return nil
	}
	return c.handleRpcError(method, err)
}

func (c *client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}
	if rpcErr.Code == 429 {
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	}
	if rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode {
		return errServiceError
	}

	return err
}

func (c *client) GetLatestBlockhash(ctx context.Context) (hash Blockhash, err error) {
	// Refresh on a randomized window so concurrent callers don't all hit the
	// node at the same moment.
	window := time.Duration(float64(2*time.Second) * (0.8 + rand.Float64()))

	c.blockMu.RLock()
	if time.Since(c.lastWrite) < window {
		hash = c.blockhash
	}
	c.blockMu.RUnlock()

	if hash != (Blockhash{}) {
		return hash, nil
	}

	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	// note: the commitment must be wrapped in an []interface{}, otherwise a
	//       single struct param is sent as a JSON object.
	if err := c.call(ctx, &resp, "getLatestBlockhash", []interface{}{CommitmentFinalized}); err != nil {
		return hash, errors.Wrap(err, "getLatestBlockhash() failed to send request")
	}

	hashBytes, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded hash in response")
	}
	if len(hashBytes) != len(hash) {
		return hash, errors.Errorf("invalid blockhash length: %d", len(hashBytes))
	}

	copy(hash[:], hashBytes)

	c.blockMu.Lock()
	c.blockhash = hash
	c.lastWrite = time.Now()
	c.blockMu.Unlock()

	return hash, nil
}

func (c *client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	var resp struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	if err := c.call(ctx, &resp, "getAccountInfo", base58.Encode(account), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}
	if len(resp.Value.Data) == 0 {
		return accountInfo, errors.New("missing account data in response")
	}

	accountInfo.Owner, err = base58.Decode(resp.Value.Owner)
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base58 encoded owner")
	}

	accountInfo.Data, err = base64.StdEncoding.DecodeString(resp.Value.Data[0])
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base64 encoded data")
	}

	accountInfo.Lamports = resp.Value.Lamports
	accountInfo.Executable = resp.Value.Executable

	return accountInfo, nil
}

func (c *client) GetTokenAccountBalance(ctx context.Context, account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value TokenAmount `json:"value"`
	}
	if err := c.call(ctx, &resp, "getTokenAccountBalance", base58.Encode(account), CommitmentConfirmed); err != nil {
		if isInvalidParam(err) {
			return 0, ErrNoBalance
		}
		return 0, errors.Wrap(err, "getTokenAccountBalance() failed to send request")
	}

	quarks, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid value in response")
	}

	return quarks, nil
}

func (c *client) GetTokenSupply(ctx context.Context, mint ed25519.PublicKey) (TokenSupply, error) {
	var resp struct {
		Value TokenAmount `json:"value"`
	}
	if err := c.call(ctx, &resp, "getTokenSupply", base58.Encode(mint), CommitmentConfirmed); err != nil {
		if isInvalidParam(err) {
			return TokenSupply{}, ErrNoAccountInfo
		}
		return TokenSupply{}, errors.Wrap(err, "getTokenSupply() failed to send request")
	}

	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return TokenSupply{}, errors.Errorf("invalid value in response")
	}

	return TokenSupply{Amount: amount, Decimals: resp.Value.Decimals}, nil
}

func (c *client) GetSignatureStatus(ctx context.Context, sig Signature) (*SignatureStatus, error) {
	type rpcStatus struct {
		Slot               uint64      `json:"slot"`
		Confirmations      *int        `json:"confirmations"`
		Err                interface{} `json:"err"`
		ConfirmationStatus string      `json:"confirmationStatus"`
	}

	var resp struct {
		Value []*rpcStatus `json:"value"`
	}

	searchConfig := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	if err := c.call(ctx, &resp, "getSignatureStatuses", []string{base58.Encode(sig[:])}, searchConfig); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed to send request")
	}

	if len(resp.Value) == 0 || resp.Value[0] == nil {
		return nil, ErrSignatureNotFound
	}

	status := &SignatureStatus{
		Slot:               resp.Value[0].Slot,
		Confirmations:      resp.Value[0].Confirmations,
		ConfirmationStatus: resp.Value[0].ConfirmationStatus,
	}

	txErr, err := ParseTransactionError(resp.Value[0].Err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse transaction error")
	}
	status.ErrorResult = txErr

	return status, nil
}

// SubmitTransaction sends a signed transaction with preflight simulation
// enabled. Simulation failures are returned as *TransactionError. The request
// is never retried.
func (c *client) SubmitTransaction(ctx context.Context, txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signature()

	config := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
		Encoding            string `json:"encoding"`
	}{
		SkipPreflight:       false,
		PreflightCommitment: commitment.Commitment,
		Encoding:            "base64",
	}

	var sigStr string
	err := c.callOnce(ctx, &sigStr, "sendTransaction", base64.StdEncoding.EncodeToString(txn.Marshal()), config)
	if err == nil {
		return sig, nil
	}

	jsonRPCErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrap(err, "sendTransaction() failed to send request")
	}

	txErr, parseErr := ParseRPCError(jsonRPCErr)
	if txErr != nil {
		c.log.WithFields(logrus.Fields{
			"method":    "SubmitTransaction",
			"signature": sig.String(),
			"logs":      txErr.Logs,
		}).WithError(txErr).Debug("transaction rejected")

		return sig, txErr
	}
	if parseErr != nil {
		c.log.WithField("method", "SubmitTransaction").WithError(parseErr).Debug("unparseable rpc error data")
	}

	return sig, errors.Wrap(err, "sendTransaction() failed")
}

func isInvalidParam(err error) bool {
	jsonRPCErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
	return ok && jsonRPCErr.Code == invalidParamCode
}

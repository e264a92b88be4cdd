package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/dex-wallet/pkg/rate"
	"github.com/code-payments/dex-wallet/pkg/retry"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcServer serves canned JSON RPC responses keyed by method.
type rpcServer struct {
	sync.Mutex
	results  map[string]string
	errors   map[string]string
	requests []rpcRequest
}

func newTestClient(t *testing.T) (*client, *rpcServer) {
	s := &rpcServer{
		results: make(map[string]string),
		errors:  make(map[string]string),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		s.Lock()
		s.requests = append(s.requests, req)
		result, hasResult := s.results[req.Method]
		rpcErr, hasErr := s.errors[req.Method]
		s.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case hasErr:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":0,"error":` + rpcErr + `}`))
		case hasResult:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":0,"result":` + result + `}`))
		default:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":0,"error":{"code":-32601,"message":"Method not found"}}`))
		}
	}))
	t.Cleanup(server.Close)

	return newClient(jsonrpc.NewClient(server.URL)), s
}

func (s *rpcServer) lastRequest() rpcRequest {
	s.Lock()
	defer s.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *rpcServer) requestCount() int {
	s.Lock()
	defer s.Unlock()
	return len(s.requests)
}

func TestClient_GetAccountInfo(t *testing.T) {
	c, s := newTestClient(t)

	account, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	owner, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	data := []byte{1, 2, 3, 4}
	s.results["getAccountInfo"] = `{"context":{"slot":1},"value":{"lamports":1461600,"owner":"` + base58.Encode(owner) +
		`","data":["` + base64.StdEncoding.EncodeToString(data) + `","base64"],"executable":false}}`

	info, err := c.GetAccountInfo(context.Background(), account, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, data, info.Data)
	assert.EqualValues(t, owner, info.Owner)
	assert.EqualValues(t, 1461600, info.Lamports)

	req := s.lastRequest()
	require.Len(t, req.Params, 2)
	assert.JSONEq(t, `"`+base58.Encode(account)+`"`, string(req.Params[0]))
	assert.JSONEq(t, `{"commitment":"confirmed","encoding":"base64"}`, string(req.Params[1]))

	s.results["getAccountInfo"] = `{"context":{"slot":1},"value":null}`
	_, err = c.GetAccountInfo(context.Background(), account, CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	c, s := newTestClient(t)

	var expected Blockhash
	for i := range expected {
		expected[i] = byte(i + 1)
	}
	s.results["getLatestBlockhash"] = `{"context":{"slot":1},"value":{"blockhash":"` + base58.Encode(expected[:]) + `","lastValidBlockHeight":100}}`

	actual, err := c.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	req := s.lastRequest()
	require.Len(t, req.Params, 1)
	assert.JSONEq(t, `{"commitment":"finalized"}`, string(req.Params[0]))

	// Served from the local cache
	actual, err = c.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, 1, s.requestCount())
}

func TestClient_TokenQueries(t *testing.T) {
	c, s := newTestClient(t)

	account, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s.results["getTokenAccountBalance"] = `{"context":{"slot":1},"value":{"amount":"49801500000","decimals":5,"uiAmount":498015.0}}`
	balance, err := c.GetTokenAccountBalance(context.Background(), account)
	require.NoError(t, err)
	assert.EqualValues(t, 49801500000, balance)

	s.results["getTokenSupply"] = `{"context":{"slot":1},"value":{"amount":"1000000000","decimals":6,"uiAmount":1000.0}}`
	supply, err := c.GetTokenSupply(context.Background(), account)
	require.NoError(t, err)
	assert.EqualValues(t, 1000000000, supply.Amount)
	assert.EqualValues(t, 6, supply.Decimals)

	s.errors["getTokenAccountBalance"] = `{"code":-32602,"message":"Invalid param: could not find account"}`
	_, err = c.GetTokenAccountBalance(context.Background(), account)
	assert.Equal(t, ErrNoBalance, err)
}

func TestClient_SubmitTransaction(t *testing.T) {
	c, s := newTestClient(t)

	payer, payerKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	txn := NewTransaction(payer, NewInstruction(program, []byte{1}, NewAccountMeta(payer, true)))
	require.NoError(t, txn.Sign(payerKey))

	s.results["sendTransaction"] = `"` + txn.Signature().String() + `"`
	sig, err := c.SubmitTransaction(context.Background(), txn, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, txn.Signature(), sig)

	req := s.lastRequest()
	require.Len(t, req.Params, 2)
	var encoded string
	require.NoError(t, json.Unmarshal(req.Params[0], &encoded))
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, txn.Marshal(), raw)
	assert.JSONEq(t, `{"skipPreflight":false,"preflightCommitment":"confirmed","encoding":"base64"}`, string(req.Params[1]))

	s.errors["sendTransaction"] = `{"code":-32002,"message":"Transaction simulation failed","data":{"err":{"InstructionError":[0,{"Custom":6000}]},"logs":["Program log: AnchorError"]}}`
	_, err = c.SubmitTransaction(context.Background(), txn, CommitmentConfirmed)
	require.Error(t, err)

	txErr, ok := errors.Cause(err).(*TransactionError)
	require.True(t, ok)
	assert.Equal(t, TransactionErrorInstructionError, txErr.Key)
	require.NotNil(t, txErr.CustomCode)
	assert.Equal(t, 6000, *txErr.CustomCode)
	assert.Equal(t, []string{"Program log: AnchorError"}, txErr.Logs)
}

func TestClient_RetriesOnlyReads(t *testing.T) {
	c, s := newTestClient(t)
	c.retrier = retry.NewRetrier(retry.RetriableErrors(errRateLimited, errServiceError), retry.Limit(3))

	mint, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s.errors["getTokenSupply"] = `{"code":-32005,"message":"Node is unhealthy"}`
	_, err = c.GetTokenSupply(context.Background(), mint)
	assert.True(t, errors.Is(err, errServiceError))
	assert.Equal(t, 3, s.requestCount())

	payer, payerKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	txn := NewTransaction(payer, NewInstruction(mint, []byte{1}, NewAccountMeta(payer, true)))
	require.NoError(t, txn.Sign(payerKey))

	s.errors["sendTransaction"] = `{"code":-32005,"message":"Node is unhealthy"}`
	_, err = c.SubmitTransaction(context.Background(), txn, CommitmentConfirmed)
	assert.True(t, errors.Is(err, errServiceError))
	assert.Equal(t, 4, s.requestCount())
}

func TestClient_GetSignatureStatus(t *testing.T) {
	c, s := newTestClient(t)

	s.results["getSignatureStatuses"] = `{"context":{"slot":82},"value":[{"slot":72,"confirmations":10,"err":null,"confirmationStatus":"confirmed"}]}`
	status, err := c.GetSignatureStatus(context.Background(), Signature{1})
	require.NoError(t, err)
	assert.EqualValues(t, 72, status.Slot)
	assert.True(t, status.Confirmed())
	assert.False(t, status.Finalized())
	assert.Nil(t, status.ErrorResult)

	s.results["getSignatureStatuses"] = `{"context":{"slot":82},"value":[{"slot":72,"confirmations":null,"err":"BlockhashNotFound","confirmationStatus":"finalized"}]}`
	status, err = c.GetSignatureStatus(context.Background(), Signature{1})
	require.NoError(t, err)
	require.NotNil(t, status.ErrorResult)
	assert.Equal(t, TransactionErrorBlockhashNotFound, status.ErrorResult.Key)

	s.results["getSignatureStatuses"] = `{"context":{"slot":82},"value":[null]}`
	_, err = c.GetSignatureStatus(context.Background(), Signature{1})
	assert.Equal(t, ErrSignatureNotFound, err)
}

func TestSignatureStatus(t *testing.T) {
	zero, one := 0, 1

	testCases := []struct {
		s         SignatureStatus
		confirmed bool
		finalized bool
	}{
		{s: SignatureStatus{Confirmations: &zero}},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusProcessed}},
		{s: SignatureStatus{Confirmations: &one}, confirmed: true},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusConfirmed}, confirmed: true},
		{s: SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusFinalized}, confirmed: true, finalized: true},
		{s: SignatureStatus{}, confirmed: true, finalized: true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.confirmed, tc.s.Confirmed())
		assert.Equal(t, tc.finalized, tc.s.Finalized())
	}
}

func TestClient_RateLimit(t *testing.T) {
	c, s := newTestClient(t)
	c.limiter = rate.NewLocalRateLimiter(1)

	s.results["getTokenAccountBalance"] = `{"context":{"slot":1},"value":{"amount":"1","decimals":0}}`

	account, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = c.GetTokenAccountBalance(context.Background(), account)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.GetTokenAccountBalance(ctx, account)
	assert.Error(t, err)
	assert.Equal(t, 1, s.requestCount())
}

// Package memory provides an in-memory solana.Client for tests.
package memory

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

// Client is a solana.Client backed by maps. Failures can be injected per
// method with the Err fields.
type Client struct {
	mu sync.Mutex

	accounts  map[string]solana.AccountInfo
	balances  map[string]uint64
	supplies  map[string]solana.TokenSupply
	statuses  map[solana.Signature]*solana.SignatureStatus
	blockhash solana.Blockhash
	submitted []solana.Transaction

	// Calls counts invocations by method name.
	Calls map[string]int

	AccountInfoErr error
	BlockhashErr   error
	SubmitErr      error
}

var _ solana.Client = (*Client)(nil)

func NewClient() *Client {
	return &Client{
		accounts:  make(map[string]solana.AccountInfo),
		balances:  make(map[string]uint64),
		supplies:  make(map[string]solana.TokenSupply),
		statuses:  make(map[solana.Signature]*solana.SignatureStatus),
		blockhash: solana.Blockhash{1},
		Calls:     make(map[string]int),
	}
}

func (c *Client) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[base58.Encode(address)] = info
}

func (c *Client) SetTokenBalance(account ed25519.PublicKey, balance uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[base58.Encode(account)] = balance
}

func (c *Client) SetTokenSupply(mint ed25519.PublicKey, supply solana.TokenSupply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supplies[base58.Encode(mint)] = supply
}

func (c *Client) SetBlockhash(bh solana.Blockhash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockhash = bh
}

// SetSignatureStatus overrides the status reported for sig. A nil status
// makes the signature unknown.
func (c *Client) SetSignatureStatus(sig solana.Signature, status *solana.SignatureStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status == nil {
		delete(c.statuses, sig)
		return
	}
	c.statuses[sig] = status
}

// Submitted returns the transactions accepted by SubmitTransaction.
func (c *Client) Submitted() []solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]solana.Transaction(nil), c.submitted...)
}

func (c *Client) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

func (c *Client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetAccountInfo"]++

	if c.AccountInfoErr != nil {
		return solana.AccountInfo{}, c.AccountInfoErr
	}
	if err := ctx.Err(); err != nil {
		return solana.AccountInfo{}, err
	}

	info, ok := c.accounts[base58.Encode(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetLatestBlockhash"]++

	if c.BlockhashErr != nil {
		return solana.Blockhash{}, c.BlockhashErr
	}
	return c.blockhash, ctx.Err()
}

func (c *Client) GetSignatureStatus(_ context.Context, sig solana.Signature) (*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetSignatureStatus"]++

	status, ok := c.statuses[sig]
	if !ok {
		return nil, solana.ErrSignatureNotFound
	}
	cloned := *status
	return &cloned, nil
}

func (c *Client) GetTokenAccountBalance(_ context.Context, account ed25519.PublicKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetTokenAccountBalance"]++

	balance, ok := c.balances[base58.Encode(account)]
	if !ok {
		return 0, solana.ErrNoBalance
	}
	return balance, nil
}

func (c *Client) GetTokenSupply(_ context.Context, mint ed25519.PublicKey) (solana.TokenSupply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetTokenSupply"]++

	supply, ok := c.supplies[base58.Encode(mint)]
	if !ok {
		return solana.TokenSupply{}, solana.ErrNoAccountInfo
	}
	return supply, nil
}

// SubmitTransaction records txn and marks it as finalized.
func (c *Client) SubmitTransaction(ctx context.Context, txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["SubmitTransaction"]++

	sig := txn.Signature()
	if c.SubmitErr != nil {
		return sig, c.SubmitErr
	}
	if err := ctx.Err(); err != nil {
		return sig, err
	}

	c.submitted = append(c.submitted, txn)
	c.statuses[sig] = &solana.SignatureStatus{ConfirmationStatus: "finalized"}
	return sig, nil
}

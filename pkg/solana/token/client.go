package token

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

// Token-2022 program, whose mints share the base Mint layout.
//
// Current key: TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb
var Token2022ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 238, 117, 143, 222, 24, 66, 93, 188, 228, 108, 205, 218, 182, 26, 252, 77, 131, 185, 13, 39, 254, 189, 249, 40, 216, 161, 139, 252}

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
)

// Client reads token program state.
type Client struct {
	sc solana.Client
}

func NewClient(sc solana.Client) *Client {
	return &Client{
		sc: sc,
	}
}

// GetMint returns the mint account at address.
//
// ErrInvalidMint is returned when the account is not owned by a token program
// or does not decode as an initialized mint.
func (c *Client) GetMint(ctx context.Context, address ed25519.PublicKey) (*Mint, error) {
	accountInfo, err := c.sc.GetAccountInfo(ctx, address, solana.CommitmentConfirmed)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, ProgramKey) && !bytes.Equal(accountInfo.Owner, Token2022ProgramKey) {
		return nil, errors.Wrap(ErrInvalidMint, "unexpected owner")
	}

	var mint Mint
	if err := mint.Unmarshal(accountInfo.Data); err != nil {
		return nil, err
	}

	return &mint, nil
}

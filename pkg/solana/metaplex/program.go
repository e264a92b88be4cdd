// Package metaplex reads Metaplex token metadata accounts.
package metaplex

import (
	"context"
	"crypto/ed25519"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/binary"
)

// ProgramKey is the Metaplex token metadata program.
//
// Current key: metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s
var ProgramKey = ed25519.PublicKey{11, 112, 101, 177, 227, 209, 124, 69, 56, 157, 82, 127, 107, 4, 195, 205, 88, 184, 108, 115, 26, 160, 253, 181, 73, 182, 209, 188, 3, 248, 41, 70}

const keyMetadataV1 = 4

var (
	ErrMetadataNotFound = errors.New("metadata account not found")
	ErrInvalidMetadata  = errors.New("invalid metadata account")
)

// Metadata is the leading, fixed portion of a metadata account. Later fields
// (creators, collection, uses) are not decoded.
type Metadata struct {
	UpdateAuthority ed25519.PublicKey
	Mint            ed25519.PublicKey
	Name            string
	Symbol          string
	URI             string
}

// GetMetadataAddress derives the metadata account of mint.
func GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		ProgramKey,
		[]byte("metadata"),
		ProgramKey,
		mint,
	)
}

// Unmarshal decodes metadata account data. On-chain strings are padded with
// NUL bytes, which are stripped.
func (m *Metadata) Unmarshal(b []byte) error {
	d := binary.NewDecoder(b)

	key := d.GetUint8()
	m.UpdateAuthority = d.GetKey32()
	m.Mint = d.GetKey32()
	m.Name = trimPadding(d.GetString())
	m.Symbol = trimPadding(d.GetString())
	m.URI = trimPadding(d.GetString())

	if err := d.Err(); err != nil {
		return errors.Wrap(ErrInvalidMetadata, err.Error())
	}
	if key != keyMetadataV1 {
		return errors.Wrapf(ErrInvalidMetadata, "unexpected key %d", key)
	}
	return nil
}

// Marshal encodes the decoded prefix of the account.
func (m *Metadata) Marshal() []byte {
	return binary.NewEncoder(1+2*ed25519.PublicKeySize+len(m.Name)+len(m.Symbol)+len(m.URI)+12).
		PutUint8(keyMetadataV1).
		PutBytes(m.UpdateAuthority).
		PutBytes(m.Mint).
		PutString(m.Name).
		PutString(m.Symbol).
		PutString(m.URI).
		Bytes()
}

func trimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// Client reads metadata accounts over RPC.
type Client struct {
	sc solana.Client
}

func NewClient(sc solana.Client) *Client {
	return &Client{sc: sc}
}

// GetMetadata returns the metadata for mint, or ErrMetadataNotFound when the
// mint has none.
func (c *Client) GetMetadata(ctx context.Context, mint ed25519.PublicKey) (*Metadata, error) {
	address, err := GetMetadataAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive metadata address")
	}

	info, err := c.sc.GetAccountInfo(ctx, address, solana.CommitmentConfirmed)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrMetadataNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get metadata account")
	}

	var metadata Metadata
	if err := metadata.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &metadata, nil
}

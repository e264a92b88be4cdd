package token

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/dex-wallet/pkg/testutil"
)

func TestMint_RoundTrip(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	for _, expected := range []Mint{
		{MintAuthority: keys[0], Supply: 1_000_000_000, Decimals: 6, IsInitialized: true, FreezeAuthority: keys[1]},
		{Supply: 42, Decimals: 9, IsInitialized: true},
	} {
		b := expected.Marshal()
		require.Len(t, b, MintSize)

		var actual Mint
		require.NoError(t, actual.Unmarshal(b))
		assert.Equal(t, expected, actual)
	}
}

func TestMint_Layout(t *testing.T) {
	b := make([]byte, MintSize)
	b[36] = 0x40 // supply = 64
	b[44] = 6
	b[45] = 1

	var mint Mint
	require.NoError(t, mint.Unmarshal(b))
	assert.EqualValues(t, 64, mint.Supply)
	assert.EqualValues(t, 6, mint.Decimals)
	assert.Nil(t, mint.MintAuthority)
	assert.Nil(t, mint.FreezeAuthority)

	// Trailing extension data is ignored
	require.NoError(t, mint.Unmarshal(append(b, make([]byte, 100)...)))
	assert.EqualValues(t, 6, mint.Decimals)
}

func TestMint_Invalid(t *testing.T) {
	var mint Mint
	assert.True(t, errors.Is(mint.Unmarshal(make([]byte, MintSize-1)), ErrInvalidMint))
	assert.True(t, errors.Is(mint.Unmarshal(make([]byte, MintSize)), ErrInvalidMint))
}

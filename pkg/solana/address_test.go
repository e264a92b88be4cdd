package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"hash"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProgramAddress(t *testing.T) {
	exceededSeed := make([]byte, maxSeedLength+1)
	maxSeed := make([]byte, maxSeedLength)

	// The typo here was taken directly from the Solana test case,
	// which was used to derive the expected outputs.
	publicKey, err := base58.Decode("SeedPubey1111111111111111111111111111111111")
	require.NoError(t, err)
	programID, err := base58.Decode("BPFLoader1111111111111111111111111111111111")
	require.NoError(t, err)

	_, err = CreateProgramAddress(programID, exceededSeed)
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)
	_, err = CreateProgramAddress(programID, []byte("short seed"), exceededSeed)
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	_, err = CreateProgramAddress(programID, maxSeed)
	assert.NoError(t, err)

	cases := []struct {
		expected string
		input    [][]byte
	}{
		{
			expected: "3gF2KMe9KiC6FNVBmfg9i267aMPvK37FewCip4eGBFcT",
			input:    [][]byte{{}, {1}},
		},
		{
			expected: "7ytmC1nT1xY4RfxCV2ZgyA7UakC93do5ZdyhdF3EtPj7",
			input:    [][]byte{[]byte("☉")},
		},
		{
			expected: "HwRVBufQ4haG5XSgpspwKtNd3PC9GM9m1196uJW36vds",
			input:    [][]byte{[]byte("Talking"), []byte("Squirrels")},
		},
		{
			expected: "GUs5qLUfsEHkcMB9T38vjr18ypEhRuNWiePW2LoK4E3K",
			input:    [][]byte{publicKey},
		},
	}

	for _, tc := range cases {
		key, err := CreateProgramAddress(programID, tc.input...)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, base58.Encode(key))

		// Deterministic across calls
		again, err := CreateProgramAddress(programID, tc.input...)
		require.NoError(t, err)
		assert.Equal(t, key, again)
	}

	a, err := CreateProgramAddress(programID, []byte("Talking"))
	assert.NoError(t, err)
	b, err := CreateProgramAddress(programID, []byte("Talking"), []byte("Squirrels"))
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCreateProgramAddress_TooManySeeds(t *testing.T) {
	programID, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	seeds := make([][]byte, maxSeeds+1)
	for i := range seeds {
		seeds[i] = []byte{byte(i)}
	}

	_, err = CreateProgramAddress(programID, seeds...)
	assert.Equal(t, ErrTooManySeeds, err)

	_, _, err = FindProgramAddressAndBump(programID, seeds[:maxSeeds]...)
	assert.Equal(t, ErrTooManySeeds, err)
}

// recordingHash captures every write so tests can decide the digest based on
// the bump seed, which is always the third-to-last write.
type recordingHash struct {
	writes  [][]byte
	onCurve func(bump byte) bool
	curve   []byte
	off     []byte
}

func (h *recordingHash) Write(p []byte) (int, error) {
	h.writes = append(h.writes, append([]byte{}, p...))
	return len(p), nil
}

func (h *recordingHash) Sum(b []byte) []byte {
	bump := h.writes[len(h.writes)-3]
	if len(bump) == 1 && h.onCurve(bump[0]) {
		return append(b, h.curve...)
	}

	return append(b, h.off...)
}

func (h *recordingHash) Reset()         { h.writes = nil }
func (h *recordingHash) Size() int      { return sha256.Size }
func (h *recordingHash) BlockSize() int { return sha256.BlockSize }

// offCurveValue returns a 32 byte value that is not a valid ed25519 point,
// checked with an implementation independent of IsOnCurve.
func offCurveValue(t *testing.T) []byte {
	for i := 0; i < 1024; i++ {
		candidate := sha256.Sum256([]byte{byte(i >> 8), byte(i)})

		var point edwards25519.ExtendedGroupElement
		if !point.FromBytes(&candidate) {
			return candidate[:]
		}
	}

	require.FailNow(t, "no off-curve value found")
	return nil
}

func withProgramHash(t *testing.T, ctor func() hash.Hash) {
	programHashCtor = ctor
	t.Cleanup(func() {
		programHashCtor = sha256.New
	})
}

func TestCreateProgramAddress_Invalid(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	withProgramHash(t, func() hash.Hash {
		return &recordingHash{
			onCurve: func(byte) bool { return true },
			curve:   pub,
		}
	})

	programID, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = CreateProgramAddress(programID, []byte("Lil'"), []byte{7})
	assert.Equal(t, ErrInvalidPublicKey, err)
}

func TestFindProgramAddress(t *testing.T) {
	for i := 0; i < 1000; i++ {
		programID, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		_, err = FindProgramAddress(programID, []byte("Lil'"), []byte("Bits"))
		assert.NoError(t, err)
	}
}

func TestFindProgramAddress_BumpSearchOrder(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	off := offCurveValue(t)

	var attempts []byte
	withProgramHash(t, func() hash.Hash {
		return &recordingHash{
			onCurve: func(bump byte) bool {
				attempts = append(attempts, bump)
				return bump == 255
			},
			curve: pub,
			off:   off,
		}
	})

	programID, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	addr, bump, err := FindProgramAddressAndBump(programID, []byte("order"))
	require.NoError(t, err)
	assert.EqualValues(t, 254, bump)
	assert.Equal(t, []byte{255, 254}, attempts)

	assert.EqualValues(t, off, addr)
}

func TestFindProgramAddress_LowestBumpIsTried(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	off := offCurveValue(t)

	withProgramHash(t, func() hash.Hash {
		return &recordingHash{
			onCurve: func(bump byte) bool { return bump != 0 },
			curve:   pub,
			off:     off,
		}
	})

	programID, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, bump, err := FindProgramAddressAndBump(programID, []byte("zero"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, bump)
}

func TestFindProgramAddress_Exhausted(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var calls int
	withProgramHash(t, func() hash.Hash {
		return &recordingHash{
			onCurve: func(byte) bool {
				calls++
				return true
			},
			curve: pub,
		}
	})

	programID, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	addr, _, err := FindProgramAddressAndBump(programID, []byte("never"))
	assert.Equal(t, ErrNoViableBumpSeed, err)
	assert.Nil(t, addr)
	assert.Equal(t, 256, calls)
}

func TestFindProgramAddress_OffCurve(t *testing.T) {
	for i := 0; i < 256; i++ {
		programID, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		addr, bump, err := FindProgramAddressAndBump(programID, []byte("off"), []byte{byte(i)})
		require.NoError(t, err)

		// Independent curve check using a different edwards25519 implementation
		var point edwards25519.ExtendedGroupElement
		var raw [32]byte
		copy(raw[:], addr)
		assert.False(t, point.FromBytes(&raw))
		assert.False(t, IsOnCurve(addr))

		// Every higher bump must have landed on the curve
		for higher := 255; higher > int(bump); higher-- {
			_, err := CreateProgramAddress(programID, []byte("off"), []byte{byte(i)}, []byte{byte(higher)})
			assert.Equal(t, ErrInvalidPublicKey, err)
		}
	}
}

func TestFindProgramAddress_MatchesSolanaGo(t *testing.T) {
	for i := 0; i < 100; i++ {
		programID, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		seeds := [][]byte{[]byte("pool"), programID[:16], {byte(i)}}

		addr, bump, err := FindProgramAddressAndBump(programID, seeds...)
		require.NoError(t, err)

		expected, expectedBump, err := solanago.FindProgramAddress(seeds, solanago.PublicKeyFromBytes(programID))
		require.NoError(t, err)

		assert.EqualValues(t, expected[:], addr)
		assert.Equal(t, expectedBump, bump)
	}
}

func TestIsOnCurve(t *testing.T) {
	for i := 0; i < 100; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		assert.True(t, IsOnCurve(pub))
	}

	assert.False(t, IsOnCurve(nil))
	assert.False(t, IsOnCurve(make([]byte, 31)))
}

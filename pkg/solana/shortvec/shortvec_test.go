package shortvec

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortVec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i <= math.MaxUint16; i++ {
		buf.Reset()

		n, err := EncodeLen(&buf, i)
		require.NoError(t, err)
		require.Equal(t, buf.Len(), n)

		decoded, err := DecodeLen(&buf)
		require.NoError(t, err)
		require.Equal(t, i, decoded)
		require.Zero(t, buf.Len())
	}
}

func TestShortVec_KnownEncodings(t *testing.T) {
	for _, tc := range []struct {
		val     int
		encoded []byte
	}{
		{0x0, []byte{0x0}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x7fff, []byte{0xff, 0xff, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	} {
		var buf bytes.Buffer
		n, err := EncodeLen(&buf, tc.val)
		require.NoError(t, err)
		assert.Equal(t, len(tc.encoded), n, "value %#x", tc.val)
		assert.Equal(t, tc.encoded, buf.Bytes(), "value %#x", tc.val)

		decoded, err := DecodeLen(bytes.NewReader(tc.encoded))
		require.NoError(t, err)
		assert.Equal(t, tc.val, decoded)
	}
}

func TestShortVec_Invalid(t *testing.T) {
	_, err := EncodeLen(&bytes.Buffer{}, math.MaxUint16+1)
	assert.Error(t, err)

	_, err = EncodeLen(&bytes.Buffer{}, -1)
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x01}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0xff, 0xff, 0x7f}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80}))
	assert.Equal(t, io.EOF, err)
}

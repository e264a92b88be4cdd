// Package shortvec implements the compact-u16 length prefix used by the
// Solana wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedBytes = 3

// EncodeLen writes length as 7-bit groups, least significant first, with the
// high bit set on every byte except the last. It returns the number of bytes
// written.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, errors.Errorf("length %d outside [0, %d]", length, math.MaxUint16)
	}

	var encoded [maxEncodedBytes]byte
	n := 0
	for {
		b := byte(length & 0x7f)
		length >>= 7
		if length != 0 {
			b |= 0x80
		}

		encoded[n] = b
		n++

		if length == 0 {
			break
		}
	}

	return w.Write(encoded[:n])
}

// DecodeLen reads a compact-u16 length from r.
func DecodeLen(r io.Reader) (int, error) {
	var val int
	var b [1]byte

	for i := 0; i < maxEncodedBytes; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (7 * i)
		if b[0]&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, errors.Errorf("decoded length %d exceeds %d", val, math.MaxUint16)
			}
			return val, nil
		}
	}

	return 0, errors.Errorf("invalid size: more than %d bytes", maxEncodedBytes)
}

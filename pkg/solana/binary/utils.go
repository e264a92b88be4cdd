// Package binary reads and writes the fixed little-endian layouts used by
// Solana programs and account data.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

var ErrShortBuffer = errors.New("buffer too short")

// Encoder appends little-endian values to a growing buffer.
type Encoder struct {
	buf []byte
}

func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

func (e *Encoder) PutBytes(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

func (e *Encoder) PutUint8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) PutUint32(v uint32) *Encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) PutUint64(v uint64) *Encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

// PutString writes a borsh string: u32 length followed by the bytes.
func (e *Encoder) PutString(s string) *Encoder {
	e.PutUint32(uint32(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder reads little-endian values from src with an advancing offset. The
// first short read is sticky: every later Get is a no-op and Err reports it.
type Decoder struct {
	src    []byte
	offset int
	err    error
}

func NewDecoder(src []byte) *Decoder {
	return &Decoder{src: src}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.src)-d.offset < n {
		d.err = errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, d.offset, len(d.src)-d.offset)
		return nil
	}

	b := d.src[d.offset : d.offset+n]
	d.offset += n
	return b
}

func (d *Decoder) GetUint8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) GetBool() bool {
	return d.GetUint8() != 0
}

func (d *Decoder) GetUint32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) GetUint64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// GetKey32 returns a copy of the next 32 bytes.
func (d *Decoder) GetKey32() ed25519.PublicKey {
	b := d.take(ed25519.PublicKeySize)
	if b == nil {
		return nil
	}

	key := make([]byte, ed25519.PublicKeySize)
	copy(key, b)
	return key
}

// GetOptionalKey32 reads a COption<Pubkey>: a u32 tag followed by the key.
// The key bytes are always consumed; nil is returned when the tag is unset.
func (d *Decoder) GetOptionalKey32() ed25519.PublicKey {
	tag := d.GetUint32()
	key := d.GetKey32()
	if tag == 0 {
		return nil
	}
	return key
}

// GetString reads a borsh string.
func (d *Decoder) GetString() string {
	n := d.GetUint32()
	b := d.take(int(n))
	return string(b)
}

func (d *Decoder) Offset() int {
	return d.offset
}

func (d *Decoder) Err() error {
	return d.err
}

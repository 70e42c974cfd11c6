package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Decode errors
var (
	ErrOutOfBounds      = errors.New("read out of bounds")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrUnrecognizedType = errors.New("unrecognized property type")
)

// Cursor is a bounds-checked little-endian reader over an immutable buffer
type Cursor struct {
	buf     []byte
	pos     int
	endian  binary.ByteOrder
	decoder *encoding.Decoder // Text decoder for length-prefixed strings
}

// NewCursor creates a cursor positioned at the start of buf
func NewCursor(buf []byte) *Cursor {
	return &Cursor{
		buf:     buf,
		endian:  binary.LittleEndian,
		decoder: unicode.UTF8.NewDecoder(),
	}
}

// Tell returns the current offset from the start of the buffer
func (c *Cursor) Tell() int {
	return c.pos
}

// Len returns the size of the underlying buffer
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Seek moves to an absolute offset. Seeking to the end of the buffer is allowed.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.buf) {
		return fmt.Errorf("seek to 0x%x in %d byte buffer: %w", offset, len(c.buf), ErrOutOfBounds)
	}
	c.pos = offset
	return nil
}

// take returns the next n bytes and advances
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("read %d bytes at 0x%x (%d remaining): %w", n, c.pos, c.Remaining(), ErrOutOfBounds)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Bytes reads n raw bytes. The result is a copy.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Skip advances past n bytes
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return c.endian.Uint16(b), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return c.endian.Uint32(b), nil
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return c.endian.Uint64(b), nil
}

func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// F32 reads an IEEE 754 single from its bit pattern
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// Bool reads one byte, non-zero being true
func (c *Cursor) Bool() (bool, error) {
	v, err := c.U8()
	return v != 0, err
}

// LengthPrefixedString reads a u32 length followed by that many bytes of UTF-8
func (c *Cursor) LengthPrefixedString() (string, error) {
	n, err := c.U32()
	if err != nil {
		return "", err
	}
	if int64(n) > int64(c.Remaining()) {
		return "", fmt.Errorf("string of %d bytes at 0x%x: %w", n, c.pos, ErrOutOfBounds)
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	return c.decodeString(b), nil
}

// decodeString turns raw bytes into text, replacing invalid sequences
func (c *Cursor) decodeString(data []byte) string {
	decoded, err := c.decoder.Bytes(data)
	if err != nil {
		return string(data) // Fall back to raw string on error
	}
	return string(decoded)
}

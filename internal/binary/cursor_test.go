package binary

import (
	"errors"
	"testing"
)

func TestCursorScalars(t *testing.T) {
	b := &builder{}
	b.u8(0x7F).u16(0xBEEF).u32(0xDEADBEEF).u64(0x0102030405060708).u32(0xFFFFFFFE).f32(1.5)

	c := NewCursor(b.bytes())

	if v, err := c.U8(); err != nil || v != 0x7F {
		t.Errorf("U8 = 0x%x, %v, want 0x7f", v, err)
	}
	if v, err := c.U16(); err != nil || v != 0xBEEF {
		t.Errorf("U16 = 0x%x, %v, want 0xbeef", v, err)
	}
	if v, err := c.U32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("U32 = 0x%x, %v, want 0xdeadbeef", v, err)
	}
	if v, err := c.U64(); err != nil || v != 0x0102030405060708 {
		t.Errorf("U64 = 0x%x, %v, want 0x0102030405060708", v, err)
	}
	if v, err := c.I32(); err != nil || v != -2 {
		t.Errorf("I32 = %d, %v, want -2", v, err)
	}
	if v, err := c.F32(); err != nil || v != 1.5 {
		t.Errorf("F32 = %v, %v, want 1.5", v, err)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining())
	}
}

func TestCursorOutOfBounds(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})

	if _, err := c.U32(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("U32 on 3 bytes: err = %v, want ErrOutOfBounds", err)
	}
	// A failed read must not move the cursor
	if c.Tell() != 0 {
		t.Errorf("Tell after failed read = %d, want 0", c.Tell())
	}
	if _, err := c.Bytes(4); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Bytes(4): err = %v, want ErrOutOfBounds", err)
	}
	if err := c.Skip(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Skip(-1): err = %v, want ErrOutOfBounds", err)
	}
}

func TestCursorSeek(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})

	if err := c.Seek(4); err != nil {
		t.Fatalf("Seek to end: %v", err)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining())
	}
	if err := c.Seek(5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Seek past end: err = %v, want ErrOutOfBounds", err)
	}
	if err := c.Seek(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Seek negative: err = %v, want ErrOutOfBounds", err)
	}
	if err := c.Seek(2); err != nil {
		t.Fatalf("Seek(2): %v", err)
	}
	if v, _ := c.U8(); v != 3 {
		t.Errorf("U8 after seek = %d, want 3", v)
	}
}

func TestCursorLengthPrefixedString(t *testing.T) {
	b := &builder{}
	b.str("a2a_pose").str("caf\xc3\xa9").u32(100)

	c := NewCursor(b.bytes())

	if s, err := c.LengthPrefixedString(); err != nil || s != "a2a_pose" {
		t.Errorf("string 1 = %q, %v, want %q", s, err, "a2a_pose")
	}
	if s, err := c.LengthPrefixedString(); err != nil || s != "café" {
		t.Errorf("string 2 = %q, %v, want %q", s, err, "café")
	}
	if _, err := c.LengthPrefixedString(); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("oversized string: err = %v, want ErrOutOfBounds", err)
	}
}

func TestCursorBytesIsCopy(t *testing.T) {
	buf := []byte{1, 2, 3}
	c := NewCursor(buf)

	out, err := c.Bytes(3)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	out[0] = 9
	if buf[0] != 1 {
		t.Errorf("underlying buffer modified: %v", buf)
	}
}

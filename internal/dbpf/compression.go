package dbpf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compression types of extended index entries
const (
	CompressionNone       uint16 = 0x0000
	CompressionZlib       uint16 = 0x5A42
	CompressionRefPack    uint16 = 0xFFFF
	CompressionRefPackAlt uint16 = 0xFFFE
	CompressionDeleted    uint16 = 0xFFE0
)

// ErrDecompression is returned when resource data cannot be unpacked
var ErrDecompression = errors.New("decompression failed")

// Declared sizes are untrusted; buffers start at most this many times the
// input size and grow as data is actually produced.
const initialRatio = 16

// Decompress unpacks resource data according to its index entry. Entries
// without extended info are inflated when they start with a zlib header and
// returned as-is otherwise.
func Decompress(data []byte, e Entry) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch {
	case !e.Extended:
		if isZlib(data) {
			out, err = inflate(data, int(e.MemSize))
		} else {
			out = data
		}
	case e.Compression == CompressionNone:
		out = data
	case e.Compression == CompressionZlib:
		out, err = inflate(data, int(e.MemSize))
	case e.Compression == CompressionRefPack, e.Compression == CompressionRefPackAlt:
		if e.MemSize != 0 {
			size, _, err := refPackHeader(data)
			if err != nil {
				return nil, err
			}
			if size != int(e.MemSize) {
				return nil, fmt.Errorf("refpack: stream declares %d bytes, index %d: %w", size, e.MemSize, ErrDecompression)
			}
		}
		out, err = RefPack(data)
	case e.Compression == CompressionDeleted:
		return nil, fmt.Errorf("deleted entry: %w", ErrDecompression)
	default:
		return nil, fmt.Errorf("compression type 0x%04X: %w", e.Compression, ErrDecompression)
	}
	if err != nil {
		return nil, err
	}

	if e.MemSize != 0 && len(out) != int(e.MemSize) {
		return nil, fmt.Errorf("got %d bytes, want %d: %w", len(out), e.MemSize, ErrDecompression)
	}
	return out, nil
}

// isZlib checks for a deflate zlib stream header
func isZlib(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0]&0x0F == 8 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0
}

func inflate(data []byte, sizeHint int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %v: %w", err, ErrDecompression)
	}
	defer zr.Close()

	var r io.Reader = zr
	if sizeHint > 0 {
		// One byte past the expected size is enough to report a mismatch
		r = io.LimitReader(zr, int64(sizeHint)+1)
	}

	var buf bytes.Buffer
	buf.Grow(capHint(sizeHint, len(data)))
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("zlib: %v: %w", err, ErrDecompression)
	}
	return buf.Bytes(), nil
}

// RefPack decompresses the QFS/RefPack LZ77 scheme used inside packages.
//
// The stream starts with a flags byte and 0xFB, then the decompressed size
// as a big-endian 3-byte (4 with flag 0x80) integer. Flag 0x01 means a
// compressed size of the same width precedes it.
func RefPack(src []byte) ([]byte, error) {
	size, pos, err := refPackHeader(src)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, 0, capHint(size, len(src)))
	for done := false; !done; {
		if pos >= len(src) {
			return nil, fmt.Errorf("refpack: missing end marker: %w", ErrDecompression)
		}

		var (
			b0     = src[pos]
			plain  int
			length int
			offset int
			need   int
		)
		switch {
		case b0 < 0x80:
			need = 2
		case b0 < 0xC0:
			need = 3
		case b0 < 0xE0:
			need = 4
		default:
			need = 1
		}
		if pos+need > len(src) {
			return nil, fmt.Errorf("refpack: truncated command at 0x%x: %w", pos, ErrDecompression)
		}
		cmd := src[pos : pos+need]
		pos += need

		switch {
		case b0 < 0x80:
			plain = int(b0 & 0x03)
			length = int(b0&0x1C)>>2 + 3
			offset = int(b0&0x60)<<3 + int(cmd[1]) + 1
		case b0 < 0xC0:
			plain = int(cmd[1] >> 6)
			length = int(b0&0x3F) + 4
			offset = int(cmd[1]&0x3F)<<8 + int(cmd[2]) + 1
		case b0 < 0xE0:
			plain = int(b0 & 0x03)
			length = int(b0&0x0C)<<6 + int(cmd[3]) + 5
			offset = int(b0&0x10)<<12 + int(cmd[1])<<8 + int(cmd[2]) + 1
		case b0 < 0xFC:
			plain = int(b0&0x1F)<<2 + 4
		default:
			plain = int(b0 & 0x03)
			done = true
		}

		if len(dst)+plain+length > size {
			return nil, fmt.Errorf("refpack: output exceeds declared %d bytes: %w", size, ErrDecompression)
		}
		if pos+plain > len(src) {
			return nil, fmt.Errorf("refpack: %d literal bytes at 0x%x: %w", plain, pos, ErrDecompression)
		}
		dst = append(dst, src[pos:pos+plain]...)
		pos += plain

		if length == 0 {
			continue
		}
		if offset > len(dst) {
			return nil, fmt.Errorf("refpack: back reference %d with %d bytes written: %w", offset, len(dst), ErrDecompression)
		}
		// Byte by byte, the source may overlap what is being written
		start := len(dst) - offset
		for i := 0; i < length; i++ {
			dst = append(dst, dst[start+i])
		}
	}

	if len(dst) != size {
		return nil, fmt.Errorf("refpack: got %d bytes, want %d: %w", len(dst), size, ErrDecompression)
	}
	return dst, nil
}

// refPackHeader returns the declared decompressed size and the offset of the
// first command
func refPackHeader(src []byte) (size, pos int, err error) {
	if len(src) < 2 || src[1] != 0xFB {
		return 0, 0, fmt.Errorf("refpack: bad signature: %w", ErrDecompression)
	}

	flags := src[0]
	width := 3
	if flags&0x80 != 0 {
		width = 4
	}
	pos = 2
	if flags&0x01 != 0 {
		pos += width
	}
	if len(src) < pos+width {
		return 0, 0, fmt.Errorf("refpack: truncated header: %w", ErrDecompression)
	}

	for _, b := range src[pos : pos+width] {
		size = size<<8 | int(b)
	}
	return size, pos + width, nil
}

// capHint bounds a declared output size by what the input could plausibly
// expand to
func capHint(declared, inputLen int) int {
	return max(0, min(declared, inputLen*initialRatio))
}

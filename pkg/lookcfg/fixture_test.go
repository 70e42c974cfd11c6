package lookcfg

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/dyuri/lookcfg/internal/model"
	"github.com/klauspost/compress/zlib"
)

// le appends little-endian values to buf
func le(buf *bytes.Buffer, values ...any) {
	for _, v := range values {
		if f, ok := v.(float32); ok {
			v = math.Float32bits(f)
		}
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
}

// lookBytes builds a StyledLook resource pointing at simInfo with the given
// outfit category tag numbers
func lookBytes(mask uint32, simInfo uint64, categories ...uint16) []byte {
	var b bytes.Buffer
	le(&b, uint32(1), mask, uint64(0xAABB), uint8(0), uint8(0))
	le(&b, simInfo, uint64(0), uint64(0), uint32(0), uint32(0))
	b.Write(make([]byte, 14))
	le(&b, uint16(0), uint16(0))
	le(&b, uint64(0), uint32(4))
	b.WriteString("pose")
	le(&b, uint64(0), uint32(5))
	b.WriteString("thumb")
	le(&b, uint8(0)) // colors

	le(&b, uint8(len(categories)))
	for i, cat := range categories {
		if i == 0 {
			b.Write([]byte{0, 0, 0})
		}
		le(&b, model.OutfitCategoryTag, cat, uint16(0))
	}
	return b.Bytes()
}

// simBytes builds a version 18 SimInfo with one everyday outfit whose parts
// are {key index, body type} pairs
func simBytes(parts [][2]uint32, links ...uint64) []byte {
	var body bytes.Buffer
	for i := 0; i < 8; i++ {
		le(&body, float32(0))
	}
	le(&body, uint32(0x20), uint32(0x1000))
	le(&body, uint64(0x5555))
	le(&body, uint8(0), uint8(0), uint8(0)) // sculpts, modifiers
	le(&body, uint32(1), float32(1), uint64(0))

	le(&body, uint32(1), uint8(0), uint32(1)) // one everyday group, one outfit
	le(&body, uint64(1), uint64(0), uint64(0), uint8(0), uint32(len(parts)))
	for _, p := range parts {
		le(&body, uint8(p[0]), p[1], uint64(0))
	}

	le(&body, uint8(0), uint8(0), uint8(0), uint8(0)) // genetic parts, sculpts, modifiers
	le(&body, float32(0), float32(0), float32(0), float32(0))
	le(&body, uint32(1), float32(1), uint64(0))
	le(&body, uint8(0)) // traits

	offset := body.Len()
	le(&body, uint8(len(links)))
	for _, inst := range links {
		le(&body, inst, uint32(0), uint32(0x034AEECB))
	}

	var out bytes.Buffer
	le(&out, uint32(18), uint32(offset))
	out.Write(body.Bytes())
	return out.Bytes()
}

// entry is one resource of a generated package
type entry struct {
	key  model.ResourceKey
	data []byte
	zlib bool
}

// packageBytes lays out a DBPF 2.1 package with a full index
func packageBytes(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var data bytes.Buffer
	data.Write(make([]byte, 96))

	var index bytes.Buffer
	le(&index, uint32(0))
	for _, e := range entries {
		stored := e.data
		if e.zlib {
			var zbuf bytes.Buffer
			zw := zlib.NewWriter(&zbuf)
			if _, err := zw.Write(e.data); err != nil {
				t.Fatal(err)
			}
			if err := zw.Close(); err != nil {
				t.Fatal(err)
			}
			stored = zbuf.Bytes()
		}

		le(&index, e.key.Type, e.key.Group, uint32(e.key.Instance>>32), uint32(e.key.Instance))
		le(&index, uint32(data.Len()))
		if e.zlib {
			le(&index, uint32(len(stored))|0x80000000, uint32(len(e.data)), uint16(0x5A42), uint16(1))
		} else {
			le(&index, uint32(len(stored)), uint32(len(e.data)))
		}
		data.Write(stored)
	}

	indexPos := data.Len()
	data.Write(index.Bytes())

	out := data.Bytes()
	copy(out, "DBPF")
	binary.LittleEndian.PutUint32(out[4:], 2)
	binary.LittleEndian.PutUint32(out[8:], 1)
	binary.LittleEndian.PutUint32(out[36:], uint32(len(entries)))
	binary.LittleEndian.PutUint32(out[44:], uint32(index.Len()))
	binary.LittleEndian.PutUint64(out[64:], uint64(indexPos))
	return out
}

func lookKey(instance uint64) model.ResourceKey {
	return model.ResourceKey{Type: model.TypeStyledLook, Instance: instance}
}

func simKey(instance uint64) model.ResourceKey {
	return model.ResourceKey{Type: model.TypeSimInfo, Instance: instance}
}

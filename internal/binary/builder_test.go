package binary

import (
	"bytes"
	"encoding/binary"
	"math"
)

// builder assembles little-endian test buffers
type builder struct {
	buf bytes.Buffer
}

func (b *builder) u8(v uint8) *builder {
	b.buf.WriteByte(v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) u32(v uint32) *builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) u64(v uint64) *builder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) f32(v float32) *builder {
	return b.u32(math.Float32bits(v))
}

func (b *builder) raw(p []byte) *builder {
	b.buf.Write(p)
	return b
}

func (b *builder) str(s string) *builder {
	b.u32(uint32(len(s)))
	b.buf.WriteString(s)
	return b
}

func (b *builder) len() int {
	return b.buf.Len()
}

func (b *builder) bytes() []byte {
	return b.buf.Bytes()
}

// styledLookBytes builds a StyledLook resource with the given mask, sim info
// instance and tags
func styledLookBytes(mask uint32, simInfo uint64, tags ...[2]uint16) []byte {
	b := &builder{}
	b.u32(1).u32(mask)
	b.u64(0xAABBCCDD).u8(1).u8(2) // prototype id, b1, b2
	b.u64(simInfo).u64(0x1111).u64(0x2222)
	b.u32(0xDEADBEEF).u32(0xCAFEF00D) // name, description
	b.raw(make([]byte, 14)).u16(3).u16(4)
	b.u64(0x3333).str("pose_key")
	b.u64(0x4444).str("thumb_key")
	b.u8(2).u32(0xFFFCDBD3).u32(0xFF000000) // colors

	b.u8(uint8(len(tags)))
	for i, tag := range tags {
		if i == 0 {
			b.raw([]byte{0x9, 0x9, 0x9})
		}
		b.u16(tag[0]).u16(tag[1]).u16(0)
	}
	return b.bytes()
}

// simInfoLayout describes the variable parts of a generated SimInfo resource
type simInfoLayout struct {
	version        uint32
	pronounCount   uint32
	pronounPayload []byte // written as-is after the count
	outfits        []outfitLayout
	links          []uint64
}

type outfitLayout struct {
	category uint8
	parts    [][2]uint32 // key index, body type
}

// simInfoBytes builds a SimInfo resource. The link list is placed after a
// 4 byte gap behind the trait list so the decoder has to seek to it.
func simInfoBytes(s simInfoLayout) []byte {
	body := &builder{}
	for i := 0; i < 8; i++ {
		body.f32(float32(i) / 10)
	}
	body.u32(0x20).u32(0x1000) // age, gender
	if s.version > 18 {
		body.u32(1).u32(7) // species, unknown1
	}
	if s.version >= 32 {
		body.u32(s.pronounCount)
		body.buf.Write(s.pronounPayload)
	}
	body.u64(0x5555) // skintone
	if s.version >= 28 {
		body.f32(0.25)
	}
	if s.version > 19 {
		body.u8(1).u64(0x6666).u32(0xFF00FF00)
	}
	body.u8(2).u8(0).u8(1)            // sculpts
	body.u8(1).u8(0).f32(0.5)         // face modifiers
	body.u8(0)                        // body modifiers
	body.u32(9).f32(1.5).u64(0x7777) // voice

	body.u32(uint32(len(s.outfits)))
	for i, o := range s.outfits {
		body.u8(o.category).u32(1)
		body.u64(uint64(0x100 + i)).u64(0).u64(0x42).u8(1)
		body.u32(uint32(len(o.parts)))
		for _, p := range o.parts {
			body.u8(uint8(p[0])).u32(p[1]).u64(0x88)
		}
	}

	// Genetics
	body.u8(1).u8(0).u32(5)
	body.u8(0).u8(0).u8(0)
	body.f32(1).f32(2).f32(3).f32(4)
	body.u32(9).f32(1.5).u64(0x7777)

	body.u8(1).u64(0x9999) // traits
	body.raw([]byte{0xEE, 0xEE, 0xEE, 0xEE})

	linkListOffset := body.len()
	body.u8(uint8(len(s.links)))
	for i, inst := range s.links {
		body.u64(inst).u32(uint32(i)).u32(0x034AEECB)
	}

	out := &builder{}
	out.u32(s.version).u32(uint32(linkListOffset)).raw(body.bytes())
	return out.bytes()
}

package dbpf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	bin "github.com/dyuri/lookcfg/internal/binary"
	"github.com/dyuri/lookcfg/internal/model"
	"github.com/edsrzf/mmap-go"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go4.org/readerutil"
)

// Container errors
var (
	ErrBadMagic           = errors.New("not a DBPF package")
	ErrUnsupportedVersion = errors.New("unsupported DBPF version")
)

const (
	headerSize   = 96
	majorVersion = 2

	// Index flags marking fields shared by every entry
	constType         = 0x1
	constGroup        = 0x2
	constInstanceHigh = 0x4

	extendedBit = 0x80000000
)

// Header is the fixed 96-byte DBPF header
type Header struct {
	Magic             [4]byte // "DBPF"
	Major             uint32
	Minor             uint32
	UserMajor         uint32
	UserMinor         uint32
	Flags             uint32
	Created           uint32
	Modified          uint32
	IndexMajor        uint32
	IndexCount        uint32
	IndexOffsetLegacy uint32
	IndexSize         uint32
	HoleCount         uint32
	HoleOffset        uint32
	HoleSize          uint32
	IndexMinor        uint32
	IndexPosition     uint64 // Used instead of IndexOffsetLegacy when non-zero
	Reserved          [24]byte
}

// indexOffset returns where the index starts
func (h Header) indexOffset() int64 {
	if h.IndexPosition != 0 {
		return int64(h.IndexPosition)
	}
	return int64(h.IndexOffsetLegacy)
}

// Entry is one index record
type Entry struct {
	Key         model.ResourceKey
	Position    uint32
	FileSize    uint32 // Stored size, extended bit cleared
	MemSize     uint32 // Size after decompression
	Extended    bool   // Compression and Committed are only valid when set
	Compression uint16
	Committed   uint16
}

// Deleted reports whether the entry is a deletion marker
func (e Entry) Deleted() bool {
	return e.Extended && e.Compression == CompressionDeleted
}

// Package is an opened DBPF container
type Package struct {
	r       readerutil.SizeReaderAt
	header  Header
	entries []Entry
	mapped  mmap.MMap
}

// Open opens a package through fs. Files on the OS filesystem are memory
// mapped; anything else is read into memory.
func Open(fs afero.Fs, path string) (*Package, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat package: %w", err)
	}
	if info.Size() < headerSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrBadMagic)
	}

	if osf, ok := f.(*os.File); ok {
		m, err := mmap.Map(osf, mmap.RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to map package: %w", err)
		}
		p, err := NewReader(bytes.NewReader(m))
		if err != nil {
			return nil, multierror.Append(err, m.Unmap()).ErrorOrNil()
		}
		p.mapped = m
		return p, nil
	}

	data, err := afero.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read package: %w", err)
	}
	return NewReader(bytes.NewReader(data))
}

// NewReader parses the header and index of a package
func NewReader(r readerutil.SizeReaderAt) (*Package, error) {
	p := &Package{r: r}

	if r.Size() < headerSize {
		return nil, fmt.Errorf("package is %d bytes: %w", r.Size(), ErrBadMagic)
	}
	if err := binary.Read(io.NewSectionReader(r, 0, headerSize), binary.LittleEndian, &p.header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(p.header.Magic[:]) != "DBPF" {
		return nil, fmt.Errorf("magic %q: %w", p.header.Magic[:], ErrBadMagic)
	}
	if p.header.Major != majorVersion {
		return nil, fmt.Errorf("version %d.%d: %w", p.header.Major, p.header.Minor, ErrUnsupportedVersion)
	}

	entries, err := p.readIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	p.entries = entries

	return p, nil
}

// readIndex parses the index table
func (p *Package) readIndex() ([]Entry, error) {
	if p.header.IndexCount == 0 {
		return nil, nil
	}

	off, size := p.header.indexOffset(), int64(p.header.IndexSize)
	if off < headerSize || size < 4 || off+size > p.r.Size() {
		return nil, fmt.Errorf("index at 0x%x size %d in %d byte package: %w", off, size, p.r.Size(), bin.ErrOutOfBounds)
	}

	buf := make([]byte, size)
	if _, err := p.r.ReadAt(buf, off); err != nil {
		return nil, err
	}
	c := bin.NewCursor(buf)

	flags, err := c.U32()
	if err != nil {
		return nil, err
	}

	// Constant fields follow the flags in type, group, instance-high order
	var typ, group, instanceHigh uint32
	for _, field := range []struct {
		bit uint32
		dst *uint32
	}{
		{constType, &typ},
		{constGroup, &group},
		{constInstanceHigh, &instanceHigh},
	} {
		if flags&field.bit == 0 {
			continue
		}
		if *field.dst, err = c.U32(); err != nil {
			return nil, err
		}
	}

	// Smallest entry is instance-low, position, sizes
	if int64(p.header.IndexCount)*16 > int64(c.Remaining()) {
		return nil, fmt.Errorf("%d entries in %d bytes: %w", p.header.IndexCount, c.Remaining(), bin.ErrOutOfBounds)
	}

	entries := make([]Entry, 0, p.header.IndexCount)
	for i := uint32(0); i < p.header.IndexCount; i++ {
		e, err := readEntry(c, flags, typ, group, instanceHigh)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func readEntry(c *bin.Cursor, flags, typ, group, instanceHigh uint32) (Entry, error) {
	var (
		e   Entry
		err error
	)

	if flags&constType == 0 {
		if typ, err = c.U32(); err != nil {
			return e, err
		}
	}
	if flags&constGroup == 0 {
		if group, err = c.U32(); err != nil {
			return e, err
		}
	}
	if flags&constInstanceHigh == 0 {
		if instanceHigh, err = c.U32(); err != nil {
			return e, err
		}
	}
	instanceLow, err := c.U32()
	if err != nil {
		return e, err
	}
	e.Key = model.ResourceKey{
		Type:     typ,
		Group:    group,
		Instance: uint64(instanceHigh)<<32 | uint64(instanceLow),
	}

	if e.Position, err = c.U32(); err != nil {
		return e, err
	}
	fileSize, err := c.U32()
	if err != nil {
		return e, err
	}
	e.FileSize = fileSize &^ extendedBit
	e.Extended = fileSize&extendedBit != 0
	if e.MemSize, err = c.U32(); err != nil {
		return e, err
	}

	if e.Extended {
		if e.Compression, err = c.U16(); err != nil {
			return e, err
		}
		if e.Committed, err = c.U16(); err != nil {
			return e, err
		}
	}

	return e, nil
}

// Header returns the parsed header
func (p *Package) Header() Header {
	return p.header
}

// Resources returns the live entries in index order. Deletion markers are
// left out.
func (p *Package) Resources() []Entry {
	resources := make([]Entry, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Deleted() {
			continue
		}
		resources = append(resources, e)
	}
	return resources
}

// ReadResource returns the decompressed contents of an entry
func (p *Package) ReadResource(e Entry) ([]byte, error) {
	if e.Deleted() {
		return nil, fmt.Errorf("resource %s is deleted: %w", e.Key, ErrDecompression)
	}

	end := int64(e.Position) + int64(e.FileSize)
	if end > p.r.Size() {
		return nil, fmt.Errorf("resource %s at 0x%x size %d past end of package: %w", e.Key, e.Position, e.FileSize, bin.ErrOutOfBounds)
	}

	data := make([]byte, e.FileSize)
	if len(data) > 0 {
		if _, err := p.r.ReadAt(data, int64(e.Position)); err != nil {
			return nil, fmt.Errorf("failed to read resource %s: %w", e.Key, err)
		}
	}

	out, err := Decompress(data, e)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", e.Key, err)
	}
	return out, nil
}

// Close releases the memory map, if any
func (p *Package) Close() error {
	if p.mapped == nil {
		return nil
	}
	err := p.mapped.Unmap()
	p.mapped = nil
	return err
}

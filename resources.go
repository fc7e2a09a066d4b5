package axml

import (
	"fmt"

	"github.com/pkg/errors"
)

// ResourceEntry is one value of a resource id under one configuration.
// Complex (map) entries carry a nil Value.
type ResourceEntry struct {
	ID       uint32
	TypeName string
	Key      string
	Value    *ResValue
	Locale   string
}

// ResourceTable is the decoded resources.arsc: entries indexed by resource
// id, with every configuration of an id kept side by side. Tables are
// read-only after parsing and may be shared between decodes.
type ResourceTable struct {
	globalPool *stringPool
	entries    map[uint32][]*ResourceEntry
	attrNames  map[uint32]string
}

// Entries returns every configuration of the given resource id.
func (t *ResourceTable) Entries(resID uint32) []*ResourceEntry {
	if t == nil {
		return nil
	}
	return t.entries[resID]
}

// AttributeName returns the key of the attr-typed entry with the given id.
func (t *ResourceTable) AttributeName(resID uint32) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.attrNames[resID]
	return name, ok
}

// EntryCount reports how many resource ids the table carries.
func (t *ResourceTable) EntryCount() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

type tableParser struct {
	r     *byteReader
	table *ResourceTable

	// current package context
	pkgID    uint32
	typePool *stringPool
	keyPool  *stringPool
}

// ParseResourceTable decodes a compiled resource table. Unknown chunk types
// are skipped by their declared size so tables written by newer toolchains
// still parse.
func ParseResourceTable(data []byte) (*ResourceTable, error) {
	if len(data) == 0 {
		return nil, ErrInvalidArgument
	}

	p := &tableParser{
		r: newByteReader(data),
		table: &ResourceTable{
			entries:   make(map[uint32][]*ResourceEntry),
			attrNames: make(map[uint32]string),
		},
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.table, nil
}

func (p *tableParser) parse() error {
	h, err := readChunkHeader(p.r)
	if err != nil {
		return err
	}
	if h.Type != chunkTable {
		return errors.Wrapf(ErrUnexpectedChunkType, "table sentinel 0x%04x", h.Type)
	}
	if _, err = readTableHeader(p.r, h); err != nil {
		return err
	}

	for p.r.Remaining() >= chunkHeaderSize {
		h, err = readChunkHeader(p.r)
		if err != nil {
			return err
		}

		switch h.Type {
		case chunkStringPool:
			err = p.parseGlobalPool(h)
		case chunkTablePackage:
			if err = p.parsePackage(h); err != nil {
				return errors.Wrapf(err, "package at 0x%08x", h.start)
			}
			// The package body holds the TYPE_SPEC/TYPE chunks; iterate
			// into it instead of skipping to the chunk end.
			continue
		case chunkTableType:
			err = p.parseType(h)
		case chunkTableTypeSpec:
			// Validated but otherwise unused: the per-entry spec flags do
			// not affect value lookup.
			_, err = readTableTypeSpecHeader(p.r, h)
		case chunkTableLibrary, chunkNull:
			// library maps are not needed here
		default:
			// Tolerate chunk kinds from newer table formats.
		}
		if err != nil {
			return errors.Wrapf(err, "chunk 0x%04x at 0x%08x", h.Type, h.start)
		}

		if err = p.r.Seek(h.end()); err != nil {
			return errors.Wrapf(err, "chunk 0x%04x at 0x%08x", h.Type, h.start)
		}
	}
	return nil
}

func (p *tableParser) parseGlobalPool(h chunkHeader) error {
	sp, err := readStringPoolHeader(p.r, h)
	if err != nil {
		return err
	}
	pool, err := parseStringPool(p.r, sp)
	if err != nil {
		return err
	}
	if p.table.globalPool == nil {
		p.table.globalPool = pool
	}
	return nil
}

// parsePackage decodes the package header and its two nested pools. The
// type and key pools sit at absolute offsets from the package chunk start;
// the TYPE/TYPE_SPEC chunks that follow are handled by the outer loop with
// this package as context.
func (p *tableParser) parsePackage(h chunkHeader) error {
	pkg, err := readTablePackageHeader(p.r, h)
	if err != nil {
		return err
	}
	p.pkgID = pkg.ID
	p.typePool = nil
	p.keyPool = nil

	if pkg.TypeStrings != 0 {
		if p.typePool, err = p.parseNestedPool(h.start + int(pkg.TypeStrings)); err != nil {
			return errors.Wrap(err, "type strings")
		}
	}
	if pkg.KeyStrings != 0 {
		if p.keyPool, err = p.parseNestedPool(h.start + int(pkg.KeyStrings)); err != nil {
			return errors.Wrap(err, "key strings")
		}
	}

	// Leave the cursor after the package header; the chunk loop's end-seek
	// is overridden here because the package body holds the type chunks.
	return p.r.Seek(h.bodyStart())
}

func (p *tableParser) parseNestedPool(offset int) (*stringPool, error) {
	if err := p.r.Seek(offset); err != nil {
		return nil, err
	}
	h, err := readChunkHeader(p.r)
	if err != nil {
		return nil, err
	}
	if h.Type != chunkStringPool {
		return nil, errors.Wrapf(ErrMissingStringPool, "got chunk 0x%04x", h.Type)
	}
	sp, err := readStringPoolHeader(p.r, h)
	if err != nil {
		return nil, err
	}
	return parseStringPool(p.r, sp)
}

func (p *tableParser) typeName(typeID uint8) string {
	if typeID >= 1 {
		if name := p.typePool.get(uint32(typeID) - 1); name != "" {
			return name
		}
	}
	return fmt.Sprintf("type%d", typeID)
}

func (p *tableParser) parseType(h chunkHeader) error {
	t, err := readTableTypeHeader(p.r, h)
	if err != nil {
		return err
	}

	offsets := make([]uint32, t.EntryCount)
	for i := range offsets {
		if offsets[i], err = p.r.Uint32(); err != nil {
			return errors.Wrap(err, "entry offsets")
		}
	}

	typeName := p.typeName(t.ID)
	locale := t.Config.locale()

	for i, off := range offsets {
		if off == missingString {
			continue
		}
		if err = p.r.Seek(h.start + int(t.EntriesStart) + int(off)); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
		if err = p.parseEntry(t.ID, uint32(i), typeName, locale); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
	}
	return nil
}

const entryFlagComplex = 0x0001

func (p *tableParser) parseEntry(typeID uint8, index uint32, typeName, locale string) error {
	begin := p.r.Pos()

	size, err := p.r.Uint16()
	if err != nil {
		return err
	}
	flags, err := p.r.Uint16()
	if err != nil {
		return err
	}
	keyRef, err := p.r.Uint32()
	if err != nil {
		return err
	}

	entry := &ResourceEntry{
		ID:       p.pkgID<<24 | uint32(typeID)<<16 | index,
		TypeName: typeName,
		Key:      p.keyPool.get(keyRef),
		Locale:   locale,
	}

	if flags&entryFlagComplex != 0 {
		// Map entry: parent id and child count precede the map body. The
		// children are consumed for cursor hygiene but not retained.
		if _, err = p.r.Uint32(); err != nil {
			return err
		}
		count, err := p.r.Uint32()
		if err != nil {
			return err
		}
		if err = p.r.Seek(begin + int(size)); err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			if _, err = p.r.Uint32(); err != nil {
				return err
			}
			if _, err = readResValue(p.r); err != nil {
				return err
			}
		}
	} else {
		if err = p.r.Seek(begin + int(size)); err != nil {
			return err
		}
		value, err := readResValue(p.r)
		if err != nil {
			return err
		}
		entry.Value = &value
	}

	p.table.entries[entry.ID] = append(p.table.entries[entry.ID], entry)
	if entry.TypeName == "attr" {
		p.table.attrNames[entry.ID] = entry.Key
	}
	return nil
}

package axml

import (
	"github.com/pkg/errors"
)

// frameworks/base/libs/androidfw/include/androidfw/ResourceTypes.h
const (
	chunkNull        = 0x0000
	chunkStringPool  = 0x0001
	chunkTable       = 0x0002
	chunkXml         = 0x0003
	chunkResourceIds = 0x0180

	chunkXmlFirst    = 0x0100
	chunkXmlNsStart  = 0x0100
	chunkXmlNsEnd    = 0x0101
	chunkXmlTagStart = 0x0102
	chunkXmlTagEnd   = 0x0103
	chunkXmlCData    = 0x0104
	chunkXmlLast     = 0x017f

	chunkTablePackage  = 0x0200
	chunkTableType     = 0x0201
	chunkTableTypeSpec = 0x0202
	chunkTableLibrary  = 0x0203

	chunkHeaderSize = 2 + 2 + 4
)

const missingString = 0xffffffff

// chunkHeader is the part every chunk starts with. headerSize covers the
// chunk-specific header fields as well; the body begins at
// start + headerSize and ends at start + size.
type chunkHeader struct {
	Type       uint16
	HeaderSize uint16
	Size       uint32

	start int
}

func (h *chunkHeader) bodyStart() int { return h.start + int(h.HeaderSize) }
func (h *chunkHeader) end() int       { return h.start + int(h.Size) }

// readChunkHeader reads the common chunk prefix. The chunk-specific header
// fields are read by the per-variant helpers below; each of them leaves the
// cursor at start + headerSize regardless of how many fields it consumed.
func readChunkHeader(r *byteReader) (chunkHeader, error) {
	h := chunkHeader{start: r.Pos()}
	var err error
	if h.Type, err = r.Uint16(); err != nil {
		return h, err
	}
	if h.HeaderSize, err = r.Uint16(); err != nil {
		return h, err
	}
	if h.Size, err = r.Uint32(); err != nil {
		return h, err
	}
	if uint32(h.HeaderSize) > h.Size {
		return h, errors.Wrapf(ErrTruncated, "chunk 0x%04x: header size %d > chunk size %d",
			h.Type, h.HeaderSize, h.Size)
	}
	return h, nil
}

// stringPoolHeader is the STRING_POOL variant header.
type stringPoolHeader struct {
	chunkHeader
	StringCount  uint32
	StyleCount   uint32
	Flags        uint32
	StringsStart uint32
	StylesStart  uint32
}

const flagUtf8 = 1 << 8

func (h *stringPoolHeader) isUtf8() bool { return h.Flags&flagUtf8 != 0 }

func readStringPoolHeader(r *byteReader, h chunkHeader) (stringPoolHeader, error) {
	sp := stringPoolHeader{chunkHeader: h}
	var err error
	if sp.StringCount, err = r.Uint32(); err != nil {
		return sp, err
	}
	if sp.StyleCount, err = r.Uint32(); err != nil {
		return sp, err
	}
	if sp.Flags, err = r.Uint32(); err != nil {
		return sp, err
	}
	if sp.StringsStart, err = r.Uint32(); err != nil {
		return sp, err
	}
	if sp.StylesStart, err = r.Uint32(); err != nil {
		return sp, err
	}
	return sp, r.Seek(h.bodyStart())
}

// xmlNodeHeader is shared by all XML event chunks: a source line number and
// an optional comment string reference.
type xmlNodeHeader struct {
	chunkHeader
	Line    uint32
	Comment uint32
}

func readXmlNodeHeader(r *byteReader, h chunkHeader) (xmlNodeHeader, error) {
	n := xmlNodeHeader{chunkHeader: h}
	var err error
	if n.Line, err = r.Uint32(); err != nil {
		return n, err
	}
	if n.Comment, err = r.Uint32(); err != nil {
		return n, err
	}
	return n, r.Seek(h.bodyStart())
}

// tableHeader is the TABLE variant header.
type tableHeader struct {
	chunkHeader
	PackageCount uint32
}

func readTableHeader(r *byteReader, h chunkHeader) (tableHeader, error) {
	t := tableHeader{chunkHeader: h}
	var err error
	if t.PackageCount, err = r.Uint32(); err != nil {
		return t, err
	}
	return t, r.Seek(h.bodyStart())
}

// tablePackageHeader is the TABLE_PACKAGE variant header. The name is a
// fixed 256-byte UTF-16 field; TypeStrings and KeyStrings are offsets from
// the package chunk start to the nested string pools.
type tablePackageHeader struct {
	chunkHeader
	ID             uint32
	Name           string
	TypeStrings    uint32
	LastPublicType uint32
	KeyStrings     uint32
	LastPublicKey  uint32
}

func readTablePackageHeader(r *byteReader, h chunkHeader) (tablePackageHeader, error) {
	p := tablePackageHeader{chunkHeader: h}
	var err error
	if p.ID, err = r.Uint32(); err != nil {
		return p, err
	}
	if p.Name, err = r.ReadFixedUTF16(128); err != nil {
		return p, err
	}
	if p.TypeStrings, err = r.Uint32(); err != nil {
		return p, err
	}
	if p.LastPublicType, err = r.Uint32(); err != nil {
		return p, err
	}
	if p.KeyStrings, err = r.Uint32(); err != nil {
		return p, err
	}
	if p.LastPublicKey, err = r.Uint32(); err != nil {
		return p, err
	}
	return p, r.Seek(h.bodyStart())
}

// tableTypeHeader is the TABLE_TYPE variant header, config block included.
type tableTypeHeader struct {
	chunkHeader
	ID           uint8
	EntryCount   uint32
	EntriesStart uint32
	Config       resConfig
}

func readTableTypeHeader(r *byteReader, h chunkHeader) (tableTypeHeader, error) {
	t := tableTypeHeader{chunkHeader: h}
	var err error
	if t.ID, err = r.Uint8(); err != nil {
		return t, err
	}
	if err = r.Skip(3); err != nil { // res0 u8, res1 u16
		return t, err
	}
	if t.EntryCount, err = r.Uint32(); err != nil {
		return t, err
	}
	if t.EntriesStart, err = r.Uint32(); err != nil {
		return t, err
	}
	if t.Config, err = readResConfig(r); err != nil {
		return t, err
	}
	return t, r.Seek(h.bodyStart())
}

// tableTypeSpecHeader is the TABLE_TYPE_SPEC variant header.
type tableTypeSpecHeader struct {
	chunkHeader
	ID         uint8
	EntryCount uint32
}

func readTableTypeSpecHeader(r *byteReader, h chunkHeader) (tableTypeSpecHeader, error) {
	t := tableTypeSpecHeader{chunkHeader: h}
	var err error
	if t.ID, err = r.Uint8(); err != nil {
		return t, err
	}
	if err = r.Skip(3); err != nil {
		return t, err
	}
	if t.EntryCount, err = r.Uint32(); err != nil {
		return t, err
	}
	return t, r.Seek(h.bodyStart())
}

// resConfig is the part of the type config block this decoder cares about.
// The block is self-sized; anything past the decoded fields is skipped.
type resConfig struct {
	Mcc         int16
	Mnc         int16
	Language    string
	Country     string
	Orientation uint8
	Touchscreen uint8
	Density     uint16
}

// locale renders "", "lang" or "lang-COUNTRY" the way the config stores it.
func (c resConfig) locale() string {
	switch {
	case c.Language == "":
		return ""
	case c.Country == "":
		return c.Language
	default:
		return c.Language + "-" + c.Country
	}
}

func readResConfig(r *byteReader) (resConfig, error) {
	begin := r.Pos()
	var c resConfig

	size, err := r.Uint32()
	if err != nil {
		return c, err
	}
	mcc, err := r.Uint16()
	if err != nil {
		return c, err
	}
	mnc, err := r.Uint16()
	if err != nil {
		return c, err
	}
	c.Mcc, c.Mnc = int16(mcc), int16(mnc)
	if c.Language, err = r.ReadFixedASCII(2); err != nil {
		return c, err
	}
	if c.Country, err = r.ReadFixedASCII(2); err != nil {
		return c, err
	}
	if c.Orientation, err = r.Uint8(); err != nil {
		return c, err
	}
	if c.Touchscreen, err = r.Uint8(); err != nil {
		return c, err
	}
	if c.Density, err = r.Uint16(); err != nil {
		return c, err
	}
	return c, r.Seek(begin + int(size))
}

package axml

import (
	"github.com/pkg/errors"
)

// stringPool is the decoded form of a STRING_POOL chunk. Styles are not
// used by manifests or resource tables, so only the strings survive.
type stringPool struct {
	strings []string
}

// get resolves a string reference. The magic index 0xffffffff and anything
// out of range read as the empty string; the binary format uses both to mean
// "no string here".
func (p *stringPool) get(idx uint32) string {
	if p == nil || idx == missingString || idx >= uint32(len(p.strings)) {
		return ""
	}
	return p.strings[idx]
}

func (p *stringPool) size() int {
	if p == nil {
		return 0
	}
	return len(p.strings)
}

// parseStringPool decodes the pool whose variant header was just read.
// Duplicate offsets share their decoded value instead of decoding twice.
// The cursor ends at the chunk end no matter where the last string stopped.
func parseStringPool(r *byteReader, h stringPoolHeader) (*stringPool, error) {
	if h.StringCount >= 2*1024*1024 {
		return nil, errors.Wrapf(ErrOverflow, "string pool declares %d strings", h.StringCount)
	}

	offsets := make([]uint32, h.StringCount)
	for i := range offsets {
		off, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrap(err, "string offset array")
		}
		offsets[i] = off
	}

	stringsStart := h.start + int(h.StringsStart)

	pool := &stringPool{strings: make([]string, h.StringCount)}
	decoded := make(map[uint32]int, h.StringCount)
	for i, off := range offsets {
		if prev, ok := decoded[off]; ok {
			pool.strings[i] = pool.strings[prev]
			continue
		}
		if err := r.Seek(stringsStart + int(off)); err != nil {
			return nil, errors.Wrapf(err, "string %d", i)
		}
		s, err := r.ReadString(h.isUtf8())
		if err != nil {
			return nil, errors.Wrapf(err, "string %d", i)
		}
		pool.strings[i] = s
		decoded[off] = i
	}

	return pool, r.Seek(h.end())
}

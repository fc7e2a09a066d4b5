package axml

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// byteReader is a cursored little-endian view over a borrowed byte slice.
// Both parsers in this package share it; a reader belongs to exactly one
// parse invocation and is never retained afterwards.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) Pos() int { return r.pos }

func (r *byteReader) Remaining() int { return len(r.data) - r.pos }

func (r *byteReader) need(n int) error {
	if len(r.data)-r.pos < n {
		return errors.Wrapf(ErrTruncated, "need %d bytes at offset 0x%x", n, r.pos)
	}
	return nil
}

func (r *byteReader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) Uint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *byteReader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *byteReader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

// Seek moves the cursor to an absolute position. pos == len(data) is legal:
// the reader is exhausted but valid.
func (r *byteReader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return errors.Wrapf(ErrOverflow, "seek to 0x%x of 0x%x", pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// ReadLength8 reads the length prefix used by UTF-8 pool strings: one byte,
// or two with the high bit of the first as a continuation marker. The result
// counts code units.
func (r *byteReader) ReadLength8() (int, error) {
	first, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	if first&0x80 == 0 {
		return int(first), nil
	}
	second, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	return int(first&0x7f)<<8 | int(second), nil
}

// ReadLength16 is the 16-bit analogue used by UTF-16 pool strings.
func (r *byteReader) ReadLength16() (int, error) {
	first, err := r.Uint16()
	if err != nil {
		return 0, err
	}
	if first&0x8000 == 0 {
		return int(first), nil
	}
	second, err := r.Uint16()
	if err != nil {
		return 0, err
	}
	return int(first&0x7fff)<<16 | int(second), nil
}

// ReadString decodes one length-prefixed pool string at the cursor.
//
// UTF-8 entries carry two lengths (the UTF-16 length, unused here, then the
// byte count), the bytes, and a trailing NUL. UTF-16 entries carry the code
// unit count and that many units; a NUL unit ends the string early but the
// remaining units are still consumed so the cursor stays consistent.
// Surrogate pairs pass through utf16.Decode unchanged.
func (r *byteReader) ReadString(isUtf8 bool) (string, error) {
	if isUtf8 {
		if _, err := r.ReadLength8(); err != nil {
			return "", err
		}
		byteCount, err := r.ReadLength8()
		if err != nil {
			return "", err
		}
		if err := r.need(byteCount + 1); err != nil {
			return "", err
		}
		s := string(r.data[r.pos : r.pos+byteCount])
		r.pos += byteCount + 1 // NUL terminator
		return s, nil
	}

	charCount, err := r.ReadLength16()
	if err != nil {
		return "", err
	}
	if err := r.need(2 * charCount); err != nil {
		return "", err
	}
	units := make([]uint16, 0, charCount)
	for i := 0; i < charCount; i++ {
		u := binary.LittleEndian.Uint16(r.data[r.pos+2*i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	r.pos += 2 * charCount
	return string(utf16.Decode(units)), nil
}

// ReadFixedASCII reads an n-byte field and truncates it at the first NUL.
func (r *byteReader) ReadFixedASCII(n int) (string, error) {
	if err := r.need(n); err != nil {
		return "", err
	}
	buf := r.data[r.pos : r.pos+n]
	r.pos += n
	for i, b := range buf {
		if b == 0 {
			buf = buf[:i]
			break
		}
	}
	return string(buf), nil
}

// ReadFixedUTF16 reads n 16-bit units and truncates at the first NUL unit.
// Package names in the resource table are stored this way.
func (r *byteReader) ReadFixedUTF16(n int) (string, error) {
	if err := r.need(2 * n); err != nil {
		return "", err
	}
	units := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(r.data[r.pos+2*i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	r.pos += 2 * n
	return string(utf16.Decode(units)), nil
}

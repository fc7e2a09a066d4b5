package axml

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Builders for synthetic chunk streams. The golden tests in this package
// run against documents assembled here instead of checked-in binaries.

type binWriter struct {
	bytes.Buffer
}

func (w *binWriter) u8(v uint8)   { w.WriteByte(v) }
func (w *binWriter) u16(v uint16) { binary.Write(w, binary.LittleEndian, v) }
func (w *binWriter) u32(v uint32) { binary.Write(w, binary.LittleEndian, v) }

func chunkOf(typ uint16, header, body []byte) []byte {
	var w binWriter
	w.u16(typ)
	w.u16(uint16(chunkHeaderSize + len(header)))
	w.u32(uint32(chunkHeaderSize + len(header) + len(body)))
	w.Write(header)
	w.Write(body)
	return w.Bytes()
}

func encodeUtf16String(s string) []byte {
	var w binWriter
	units := utf16.Encode([]rune(s))
	w.u16(uint16(len(units)))
	for _, u := range units {
		w.u16(u)
	}
	w.u16(0)
	return w.Bytes()
}

func encodeUtf8String(s string) []byte {
	var w binWriter
	w.u8(uint8(len([]rune(s))))
	w.u8(uint8(len(s)))
	w.WriteString(s)
	w.u8(0)
	return w.Bytes()
}

// buildStringPool encodes a STRING_POOL chunk. dups maps an index to the
// earlier index whose offset it repeats.
func buildStringPool(utf8Flag bool, strs []string, dups map[int]int) []byte {
	encoded := make([][]byte, len(strs))
	for i, s := range strs {
		if utf8Flag {
			encoded[i] = encodeUtf8String(s)
		} else {
			encoded[i] = encodeUtf16String(s)
		}
	}

	offsets := make([]uint32, len(strs))
	var data binWriter
	for i := range strs {
		if prev, ok := dups[i]; ok {
			offsets[i] = offsets[prev]
			continue
		}
		offsets[i] = uint32(data.Len())
		data.Write(encoded[i])
	}

	var header binWriter
	headerSize := uint32(chunkHeaderSize + 5*4)
	stringsStart := headerSize + uint32(4*len(strs))
	var flags uint32
	if utf8Flag {
		flags = flagUtf8
	}
	header.u32(uint32(len(strs)))
	header.u32(0) // styleCount
	header.u32(flags)
	header.u32(stringsStart)
	header.u32(0) // stylesStart

	var body binWriter
	for _, off := range offsets {
		body.u32(off)
	}
	body.Write(data.Bytes())

	return chunkOf(chunkStringPool, header.Bytes(), body.Bytes())
}

func xmlNodeChunk(typ uint16, body []byte) []byte {
	var header binWriter
	header.u32(1)             // line
	header.u32(missingString) // comment
	return chunkOf(typ, header.Bytes(), body)
}

func buildNsStart(prefixRef, uriRef uint32) []byte {
	var w binWriter
	w.u32(prefixRef)
	w.u32(uriRef)
	return xmlNodeChunk(chunkXmlNsStart, w.Bytes())
}

func buildNsEnd(prefixRef, uriRef uint32) []byte {
	var w binWriter
	w.u32(prefixRef)
	w.u32(uriRef)
	return xmlNodeChunk(chunkXmlNsEnd, w.Bytes())
}

type attrRec struct {
	ns, name, raw uint32
	dataType      uint8
	data          uint32
}

func buildStartElement(nsRef, nameRef uint32, attrs ...attrRec) []byte {
	var w binWriter
	w.u32(nsRef)
	w.u32(nameRef)
	w.u16(20) // attributeStart
	w.u16(20) // attributeSize
	w.u16(uint16(len(attrs)))
	w.u16(0) // idIndex
	w.u16(0) // classIndex
	w.u16(0) // styleIndex
	for _, a := range attrs {
		w.u32(a.ns)
		w.u32(a.name)
		w.u32(a.raw)
		w.u16(8) // value size
		w.u8(0)  // res0
		w.u8(a.dataType)
		w.u32(a.data)
	}
	return xmlNodeChunk(chunkXmlTagStart, w.Bytes())
}

func buildEndElement(nsRef, nameRef uint32) []byte {
	var w binWriter
	w.u32(nsRef)
	w.u32(nameRef)
	return xmlNodeChunk(chunkXmlTagEnd, w.Bytes())
}

func buildCData(dataRef uint32) []byte {
	var w binWriter
	w.u32(dataRef)
	w.u16(8)
	w.u8(0)
	w.u8(TypeNull)
	w.u32(0)
	return xmlNodeChunk(chunkXmlCData, w.Bytes())
}

func buildResourceMap(ids ...uint32) []byte {
	var w binWriter
	for _, id := range ids {
		w.u32(id)
	}
	return chunkOf(chunkResourceIds, nil, w.Bytes())
}

func buildXmlDoc(chunks ...[]byte) []byte {
	var body binWriter
	for _, c := range chunks {
		body.Write(c)
	}
	return chunkOf(chunkXml, nil, body.Bytes())
}

// --- resource table builders ---

type tableEntry struct {
	index    uint32
	keyRef   uint32
	dataType uint8
	data     uint32
	complex  bool
}

func buildConfig(language, country string) []byte {
	var w binWriter
	w.u32(28) // declared size
	w.u16(0)  // mcc
	w.u16(0)  // mnc
	writeLangField(&w, language)
	writeLangField(&w, country)
	w.u8(0)  // orientation
	w.u8(0)  // touchscreen
	w.u16(0) // density
	for w.Len() < 28 {
		w.u8(0)
	}
	return w.Bytes()
}

func writeLangField(w *binWriter, s string) {
	var field [2]byte
	copy(field[:], s)
	w.Write(field[:])
}

func buildTableType(typeID uint8, entryCount uint32, config []byte, entries ...tableEntry) []byte {
	var header binWriter
	header.u8(typeID)
	header.u8(0)  // res0
	header.u16(0) // res1
	header.u32(entryCount)
	headerSize := uint32(chunkHeaderSize+12) + uint32(len(config))
	entriesStart := headerSize + 4*entryCount
	header.u32(entriesStart)
	header.Write(config)

	offsets := make([]uint32, entryCount)
	for i := range offsets {
		offsets[i] = missingString
	}
	var data binWriter
	for _, e := range entries {
		offsets[e.index] = uint32(data.Len())
		if e.complex {
			data.u16(16) // entry header size
			data.u16(entryFlagComplex)
			data.u32(e.keyRef)
			data.u32(0) // parent
			data.u32(1) // child count
			data.u32(0x01000000)
			data.u16(8)
			data.u8(0)
			data.u8(e.dataType)
			data.u32(e.data)
		} else {
			data.u16(8)
			data.u16(0)
			data.u32(e.keyRef)
			data.u16(8)
			data.u8(0)
			data.u8(e.dataType)
			data.u32(e.data)
		}
	}

	var body binWriter
	for _, off := range offsets {
		body.u32(off)
	}
	body.Write(data.Bytes())

	return chunkOf(chunkTableType, header.Bytes(), body.Bytes())
}

func buildTableTypeSpec(typeID uint8, entryCount uint32) []byte {
	var header binWriter
	header.u8(typeID)
	header.u8(0)
	header.u16(0)
	header.u32(entryCount)

	var body binWriter
	for i := uint32(0); i < entryCount; i++ {
		body.u32(0)
	}
	return chunkOf(chunkTableTypeSpec, header.Bytes(), body.Bytes())
}

func buildTablePackage(id uint32, name string, typePool, keyPool []byte, typeChunks ...[]byte) []byte {
	headerSize := uint32(chunkHeaderSize + 4 + 256 + 4*4)

	var header binWriter
	header.u32(id)
	units := utf16.Encode([]rune(name))
	for i := 0; i < 128; i++ {
		if i < len(units) {
			header.u16(units[i])
		} else {
			header.u16(0)
		}
	}
	header.u32(headerSize) // typeStrings offset
	header.u32(0)          // lastPublicType
	header.u32(headerSize + uint32(len(typePool)))
	header.u32(0) // lastPublicKey

	var body binWriter
	body.Write(typePool)
	body.Write(keyPool)
	for _, c := range typeChunks {
		body.Write(c)
	}
	return chunkOf(chunkTablePackage, header.Bytes(), body.Bytes())
}

func buildTable(globalPool []byte, packages ...[]byte) []byte {
	var header binWriter
	header.u32(uint32(len(packages)))

	var body binWriter
	body.Write(globalPool)
	for _, p := range packages {
		body.Write(p)
	}
	return chunkOf(chunkTable, header.Bytes(), body.Bytes())
}

package axml

import (
	"fmt"

	"github.com/pkg/errors"
)

type xmlParser struct {
	r           *byteReader
	pool        *stringPool
	resourceMap []uint32

	handler XmlEventHandler
	res     *Resolver
	mapper  *ValueMapper
}

// ParseXml decodes a binary XML document, feeding the event stream into
// handler. res resolves references and recovers attribute names stripped by
// obfuscators; mapper post-processes well-known attribute values. Both may
// be nil.
func ParseXml(data []byte, handler XmlEventHandler, res *Resolver, mapper *ValueMapper) error {
	if len(data) == 0 || handler == nil {
		return ErrInvalidArgument
	}
	if data[0] == '<' {
		return ErrPlainTextManifest
	}

	x := &xmlParser{
		r:       newByteReader(data),
		handler: handler,
		res:     res,
		mapper:  mapper,
	}
	return x.parse()
}

func (x *xmlParser) parse() error {
	doc, err := readChunkHeader(x.r)
	if err != nil {
		return err
	}
	// Android accepts a NULL sentinel in place of the XML one.
	if doc.Type != chunkXml && doc.Type != chunkNull {
		return errors.Wrapf(ErrUnexpectedChunkType, "document sentinel 0x%04x", doc.Type)
	}
	if err = x.r.Seek(doc.bodyStart()); err != nil {
		return err
	}

	docEnd := doc.end()
	if docEnd > len(x.r.data) {
		docEnd = len(x.r.data)
	}

	h, err := readChunkHeader(x.r)
	if err != nil {
		return err
	}
	if h.Type != chunkStringPool {
		return errors.Wrapf(ErrMissingStringPool, "got chunk 0x%04x", h.Type)
	}
	sp, err := readStringPoolHeader(x.r, h)
	if err != nil {
		return err
	}
	if x.pool, err = parseStringPool(x.r, sp); err != nil {
		return errors.Wrap(err, "xml string pool")
	}

	for x.r.Pos()+chunkHeaderSize <= docEnd {
		h, err = readChunkHeader(x.r)
		if err != nil {
			return err
		}

		switch {
		case h.Type == chunkResourceIds:
			err = x.parseResourceMap(h)
		case h.Type >= chunkXmlFirst && h.Type <= chunkXmlLast:
			err = x.parseXmlChunk(h)
		default:
			return errors.Wrapf(ErrUnexpectedChunkType, "chunk 0x%04x at 0x%08x", h.Type, h.start)
		}
		if err != nil {
			return errors.Wrapf(err, "chunk 0x%04x at 0x%08x", h.Type, h.start)
		}

		// The handler may not have consumed the whole body; the declared
		// size is authoritative.
		if err = x.r.Seek(h.end()); err != nil {
			return errors.Wrapf(err, "chunk 0x%04x at 0x%08x", h.Type, h.start)
		}
	}
	return nil
}

func (x *xmlParser) parseResourceMap(h chunkHeader) error {
	if err := x.r.Seek(h.bodyStart()); err != nil {
		return err
	}
	count := (h.Size - uint32(h.HeaderSize)) / 4
	x.resourceMap = make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		id, err := x.r.Uint32()
		if err != nil {
			return err
		}
		x.resourceMap = append(x.resourceMap, id)
	}
	return nil
}

func (x *xmlParser) parseXmlChunk(h chunkHeader) error {
	node, err := readXmlNodeHeader(x.r, h)
	if err != nil {
		return err
	}

	switch node.Type {
	case chunkXmlNsStart:
		return x.parseNsChunk(x.handler.StartNamespace)
	case chunkXmlNsEnd:
		return x.parseNsChunk(x.handler.EndNamespace)
	case chunkXmlTagStart:
		return x.parseTagStart(node)
	case chunkXmlTagEnd:
		return x.parseTagEnd()
	case chunkXmlCData:
		return x.parseCData()
	default:
		// Reserved XML range; newer chunk kinds are skipped by size.
		return nil
	}
}

func (x *xmlParser) parseNsChunk(emit func(prefix, uri string)) error {
	prefixRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	uriRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	emit(x.pool.get(prefixRef), x.pool.get(uriRef))
	return nil
}

func (x *xmlParser) parseTagStart(node xmlNodeHeader) error {
	nsRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	nameRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	attrStart, err := x.r.Uint16()
	if err != nil {
		return err
	}
	attrSize, err := x.r.Uint16()
	if err != nil {
		return err
	}
	attrCount, err := x.r.Uint16()
	if err != nil {
		return err
	}
	// idIndex, classIndex, styleIndex
	if err = x.r.Skip(2 * 3); err != nil {
		return err
	}

	if err = x.r.Seek(node.bodyStart() + int(attrStart)); err != nil {
		return err
	}

	attrs := make([]XmlAttribute, 0, attrCount)
	for i := 0; i < int(attrCount); i++ {
		recordStart := x.r.Pos()
		attr, err := x.parseAttribute()
		if err != nil {
			return errors.Wrapf(err, "attribute %d", i)
		}
		attrs = append(attrs, attr)
		if err = x.r.Seek(recordStart + int(attrSize)); err != nil {
			return errors.Wrapf(err, "attribute %d", i)
		}
	}

	x.handler.StartElement(x.pool.get(nsRef), x.pool.get(nameRef), attrs)
	return nil
}

func (x *xmlParser) parseAttribute() (XmlAttribute, error) {
	var attr XmlAttribute

	nsRef, err := x.r.Uint32()
	if err != nil {
		return attr, err
	}
	nameRef, err := x.r.Uint32()
	if err != nil {
		return attr, err
	}
	rawRef, err := x.r.Int32()
	if err != nil {
		return attr, err
	}
	value, err := readResValue(x.r)
	if err != nil {
		return attr, err
	}

	attr.NamespaceURI = x.pool.get(nsRef)
	attr.Name = x.attributeName(nameRef)

	if rawRef >= 0 {
		attr.Value = x.pool.get(uint32(rawRef))
	} else {
		attr.Value = value.render(x.pool, x.res.orNil())
	}
	if x.mapper != nil {
		attr.Value = x.mapper.Apply(attr.Name, attr.Value)
	}
	return attr, nil
}

// attributeName resolves the attribute's name string. Obfuscators strip the
// names from the pool; when that happens the resource map still carries the
// attribute's resource id, which the resolver (or a hex fallback) can name.
func (x *xmlParser) attributeName(nameRef uint32) string {
	if name := x.pool.get(nameRef); name != "" {
		return name
	}
	if nameRef >= uint32(len(x.resourceMap)) {
		return ""
	}
	resID := x.resourceMap[nameRef]
	if x.res != nil {
		if name, ok := x.res.ResolveAttributeName(resID); ok {
			return name
		}
	}
	return fmt.Sprintf("AttrId:0x%x", resID)
}

func (x *xmlParser) parseTagEnd() error {
	nsRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	nameRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	x.handler.EndElement(x.pool.get(nsRef), x.pool.get(nameRef))
	return nil
}

func (x *xmlParser) parseCData() error {
	dataRef, err := x.r.Uint32()
	if err != nil {
		return err
	}
	if _, err = readResValue(x.r); err != nil {
		return err
	}
	x.handler.CData(x.pool.get(dataRef))
	return nil
}

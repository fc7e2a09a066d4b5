package axml

import (
	"strings"
)

// XmlAttribute is a fully materialised attribute: the value is already a
// string, either raw from the pool or rendered from its typed value.
type XmlAttribute struct {
	NamespaceURI string
	Name         string
	Value        string
}

// XmlEventHandler receives the event stream produced by ParseXml. The
// default implementation is XmlTranslator; anything consuming manifest
// structure directly can plug in instead.
type XmlEventHandler interface {
	StartNamespace(prefix, uri string)
	EndNamespace(prefix, uri string)
	StartElement(namespaceURI, name string, attrs []XmlAttribute)
	EndElement(namespaceURI, name string)
	CData(text string)
}

type nsBinding struct {
	prefix, uri string
}

// XmlTranslator renders the event stream as indented XML text. Namespace
// declarations are held back until the next start tag so they appear on the
// element that opened them.
type XmlTranslator struct {
	sb       strings.Builder
	depth    int
	tagOpen  bool
	bindings []nsBinding
	pending  []nsBinding
}

func NewXmlTranslator() *XmlTranslator {
	t := &XmlTranslator{}
	t.sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	return t
}

// String returns the document rendered so far.
func (t *XmlTranslator) String() string { return t.sb.String() }

func (t *XmlTranslator) StartNamespace(prefix, uri string) {
	b := nsBinding{prefix: prefix, uri: uri}
	t.bindings = append(t.bindings, b)
	t.pending = append(t.pending, b)
}

func (t *XmlTranslator) EndNamespace(prefix, uri string) {
	if prefix == "" || uri == "" {
		return
	}
	for i := len(t.bindings) - 1; i >= 0; i-- {
		if t.bindings[i].prefix == prefix && t.bindings[i].uri == uri {
			t.bindings = append(t.bindings[:i], t.bindings[i+1:]...)
			return
		}
	}
}

// prefixForUri returns the most recently pushed binding for uri.
func (t *XmlTranslator) prefixForUri(uri string) (string, bool) {
	for i := len(t.bindings) - 1; i >= 0; i-- {
		if t.bindings[i].uri == uri {
			return t.bindings[i].prefix, true
		}
	}
	return "", false
}

func (t *XmlTranslator) closeOpenTag() {
	if t.tagOpen {
		t.sb.WriteString(">\n")
		t.tagOpen = false
	}
}

func (t *XmlTranslator) indent() {
	for i := 0; i < t.depth; i++ {
		t.sb.WriteByte('\t')
	}
}

func (t *XmlTranslator) writeQName(namespaceURI, name string) {
	if namespaceURI != "" {
		if prefix, ok := t.prefixForUri(namespaceURI); ok {
			t.sb.WriteString(prefix)
			t.sb.WriteByte(':')
		}
	}
	t.sb.WriteString(name)
}

func (t *XmlTranslator) StartElement(namespaceURI, name string, attrs []XmlAttribute) {
	t.closeOpenTag()
	t.indent()
	t.sb.WriteByte('<')
	t.writeQName(namespaceURI, name)

	for _, b := range t.pending {
		t.sb.WriteString(` xmlns:`)
		t.sb.WriteString(b.prefix)
		t.sb.WriteString(`="`)
		t.sb.WriteString(escapeXml(b.uri))
		t.sb.WriteByte('"')
	}
	t.pending = t.pending[:0]

	for _, a := range attrs {
		t.sb.WriteByte(' ')
		if a.NamespaceURI != "" {
			prefix, ok := t.prefixForUri(a.NamespaceURI)
			if !ok {
				// No binding in scope; the URI itself is the best label left.
				prefix = a.NamespaceURI
			}
			t.sb.WriteString(prefix)
			t.sb.WriteByte(':')
		}
		t.sb.WriteString(a.Name)
		t.sb.WriteString(`="`)
		t.sb.WriteString(escapeXml(a.Value))
		t.sb.WriteByte('"')
	}

	t.depth++
	t.tagOpen = true
}

func (t *XmlTranslator) EndElement(namespaceURI, name string) {
	t.depth--
	if t.tagOpen {
		t.sb.WriteString(" />\n")
		t.tagOpen = false
		return
	}
	t.indent()
	t.sb.WriteString("</")
	t.writeQName(namespaceURI, name)
	t.sb.WriteString(">\n")
}

func (t *XmlTranslator) CData(text string) {
	t.closeOpenTag()
	t.indent()
	t.sb.WriteString(escapeXml(text))
	t.sb.WriteByte('\n')
}

// escapeXml escapes markup characters and drops control characters below
// 0x20 other than tab, newline and carriage return.
func escapeXml(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		case '\'':
			sb.WriteString("&apos;")
		case '\t', '\n', '\r':
			sb.WriteRune(r)
		default:
			if r < 0x20 {
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

package axml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkHeaderCursorDiscipline(t *testing.T) {
	// A namespace chunk whose header is padded past the fields the reader
	// knows about: the cursor must land on headerSize, not after the last
	// field read.
	var header binWriter
	header.u32(1)             // line
	header.u32(missingString) // comment
	header.u32(0xdeadbeef)    // unknown future header field
	var body binWriter
	body.u32(0)
	body.u32(1)
	chunk := chunkOf(chunkXmlNsStart, header.Bytes(), body.Bytes())

	r := newByteReader(chunk)
	h, err := readChunkHeader(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(chunkXmlNsStart), h.Type)

	node, err := readXmlNodeHeader(r, h)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), node.Line)
	assert.Equal(t, h.bodyStart(), r.Pos())
	assert.Equal(t, h.start+int(h.Size), h.end())
}

func TestChunkHeaderSizeExceedsChunk(t *testing.T) {
	var w binWriter
	w.u16(chunkXml)
	w.u16(64) // headerSize
	w.u32(16) // chunkSize < headerSize
	w.u32(0)
	w.u32(0)

	r := newByteReader(w.Bytes())
	_, err := readChunkHeader(r)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestResConfigLocale(t *testing.T) {
	cases := []struct {
		language, country, want string
	}{
		{"", "", ""},
		{"en", "", "en"},
		{"en", "US", "en-US"},
	}
	for _, tc := range cases {
		r := newByteReader(buildConfig(tc.language, tc.country))
		c, err := readResConfig(r)
		require.NoError(t, err)
		assert.Equal(t, tc.want, c.locale())
		// The declared size governs the cursor, not the decoded fields.
		assert.Equal(t, 28, r.Pos())
	}
}

func TestDecodeNullSentinel(t *testing.T) {
	pool := buildStringPool(false, []string{"root"}, nil)
	doc := buildXmlDoc(pool, buildStartElement(missingString, 0), buildEndElement(missingString, 0))
	// Rewrite the sentinel type to NULL; Android accepts this form.
	doc[0] = chunkNull
	doc[1] = 0

	tr := NewXmlTranslator()
	require.NoError(t, ParseXml(doc, tr, nil, nil))
	assert.Contains(t, tr.String(), "<root />")
}

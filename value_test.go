package axml

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResValueRendering(t *testing.T) {
	pool := &stringPool{strings: []string{"zero", "one"}}

	cases := []struct {
		name     string
		dataType uint8
		data     uint32
		want     string
	}{
		{"null", TypeNull, 42, ""},
		{"reference unresolved", TypeReference, 0x7f010000, "@0x7f010000"},
		{"attribute unresolved", TypeAttribute, 0x0101abcd, "@0x101abcd"},
		{"string", TypeString, 1, "one"},
		{"string negative", TypeString, 0xffffffff, ""},
		{"float", TypeFloat, 0x3f800000, "1"},
		{"dimension dp", TypeDimension, 16<<8 | 1, "16dp"},
		{"dimension px", TypeDimension, 0x2000 | 0, "32px"},
		{"dimension unknown unit", TypeDimension, 16<<8 | 0xe, "16unknown"},
		{"fraction", TypeFraction, 128<<8 | 0, "128%"},
		{"fraction parent", TypeFraction, 128<<8 | 1, "128%p"},
		{"int dec", TypeIntDec, 0xffffffff, "-1"},
		{"int hex", TypeIntHex, 0x40000480, "0x40000480"},
		{"bool true", TypeIntBoolean, 0xffffffff, "true"},
		{"bool false", TypeIntBoolean, 0, "false"},
		{"argb8", TypeIntColorArgb8, 0x11223344, "#11223344"},
		{"rgb8", TypeIntColorRgb8, 0xff223344, "#223344"},
		{"argb4", TypeIntColorArgb4, 0xdeadbeef, "#beef"},
		{"rgb4", TypeIntColorRgb4, 0xdeadbeef, "#eef"},
		{"unknown type", 0x42, 7, "{66:7}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ResValue{Size: 8, DataType: tc.dataType, Data: tc.data}
			assert.Equal(t, tc.want, v.render(pool, nil))
		})
	}
}

type fakeResolver struct{ byID map[uint32]string }

func (f *fakeResolver) ResolveReference(resID uint32) (string, bool) {
	s, ok := f.byID[resID]
	return s, ok
}

func TestResValueReferenceUsesResolver(t *testing.T) {
	res := &fakeResolver{byID: map[uint32]string{0x7f010000: "@string/app_name"}}

	v := ResValue{DataType: TypeReference, Data: 0x7f010000}
	assert.Equal(t, "@string/app_name", v.render(nil, res))

	v = ResValue{DataType: TypeReference, Data: 0x7f010001}
	assert.Equal(t, fmt.Sprintf("@0x%x", uint32(0x7f010001)), v.render(nil, res))
}

func TestDimensionNegative(t *testing.T) {
	// -288px: two's complement -73728 in the upper 24 bits, unit px.
	v := ResValue{DataType: TypeDimension, Data: 0xfffee000}
	assert.Equal(t, "-288px", v.render(nil, nil))
}

package axml

import (
	"strconv"
	"strings"
)

// ValueMapper rewrites the values of well-known manifest attributes into
// their symbolic form ("1" -> "portrait"). Mappers are built once and only
// read afterwards, so a single instance can serve concurrent decodes.
type ValueMapper struct {
	byName map[string]func(uint32) string
}

// Apply maps an attribute value. Values that do not parse as decimal or
// 0x-prefixed hex integers, and attributes without a mapping, pass through
// unchanged.
func (m *ValueMapper) Apply(attrName, value string) string {
	if m == nil {
		return value
	}
	fn, ok := m.byName[attrName]
	if !ok {
		return value
	}
	n, err := parseAttrInt(value)
	if err != nil {
		return value
	}
	if mapped := fn(n); mapped != "" {
		return mapped
	}
	return value
}

func parseAttrInt(s string) (uint32, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		n, err := strconv.ParseUint(rest, 16, 32)
		return uint32(n), err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return uint32(n), err
}

// NewValueMapper returns the built-in attribute mappings.
func NewValueMapper() *ValueMapper {
	return &ValueMapper{byName: map[string]func(uint32) string{
		"screenOrientation":   mapEnum(screenOrientations),
		"configChanges":       mapConfigChanges,
		"windowSoftInputMode": mapWindowSoftInputMode,
		"launchMode":          mapEnum(launchModes),
		"documentLaunchMode":  mapEnum(documentLaunchModes),
		"installLocation":     mapEnum(installLocations),
		"protectionLevel":     mapProtectionLevel,
	}}
}

func mapEnum(names []string) func(uint32) string {
	return func(v uint32) string {
		if int(v) < len(names) {
			return names[int(v)]
		}
		return ""
	}
}

var screenOrientations = []string{
	"landscape", "portrait", "user", "behind", "sensor", "nosensor",
	"sensorLandscape", "sensorPortrait", "reverseLandscape", "reversePortrait",
	"fullSensor", "userLandscape", "userPortrait", "fullUser", "locked",
}

var launchModes = []string{"standard", "singleTop", "singleTask", "singleInstance"}

var documentLaunchModes = []string{"intoExisting", "always", "none", "never"}

var installLocations = []string{"auto", "internalOnly", "preferExternal"}

// configChanges flag names by bit index. fontScale sits alone at bit 30.
var configChangeBits = map[int]string{
	0:  "mcc",
	1:  "mnc",
	2:  "locale",
	3:  "touchscreen",
	4:  "keyboard",
	5:  "navigation",
	6:  "orientation",
	7:  "keyboardHidden",
	8:  "screenSize",
	9:  "uiMode",
	10: "screenLayout",
	11: "smallestScreenSize",
	12: "density",
	13: "layoutDirection",
	30: "fontScale",
}

func mapConfigChanges(v uint32) string {
	var parts []string
	for bit := 0; bit < 32; bit++ {
		if v&(1<<bit) == 0 {
			continue
		}
		if name, ok := configChangeBits[bit]; ok {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// windowSoftInputMode: the low nibble is an index into the state list (the
// index-based encoding; the older raw-3-bit variant is deliberately not
// interpreted), the next nibble holds the adjust mode.
var softInputStates = []string{
	"stateUnspecified", "stateUnchanged", "stateHidden",
	"stateAlwaysHidden", "stateVisible", "stateAlwaysVisible",
}

var softInputAdjusts = map[uint32]string{
	0x10: "adjustResize",
	0x20: "adjustPan",
	0x30: "adjustNothing",
}

func mapWindowSoftInputMode(v uint32) string {
	var parts []string
	if state := int(v & 0x0f); state > 0 && state < len(softInputStates) {
		parts = append(parts, softInputStates[state])
	}
	if adjust, ok := softInputAdjusts[v&0xf0]; ok {
		parts = append(parts, adjust)
	}
	if v&0x100 != 0 {
		parts = append(parts, "isForwardNavigation")
	}
	return strings.Join(parts, "|")
}

var protectionBases = []string{"normal", "dangerous", "signature", "signatureOrSystem"}

var protectionFlags = []struct {
	mask uint32
	name string
}{
	{0x10, "privileged"},
	{0x20, "development"},
	{0x40, "appop"},
	{0x80, "pre23"},
	{0x100, "installer"},
	{0x200, "verifier"},
	{0x400, "preinstalled"},
	{0x800, "setup"},
	{0x1000, "instant"},
	{0x2000, "runtime"},
}

func mapProtectionLevel(v uint32) string {
	base := int(v & 0x0f)
	if base >= len(protectionBases) {
		return ""
	}
	parts := []string{protectionBases[base]}
	for _, f := range protectionFlags {
		if v&f.mask != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

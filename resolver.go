package axml

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

//go:embed assets/styles.txt
var assetsFS embed.FS

// Framework style ids live in this window of the android package.
const (
	frameworkStyleFirst = 0x01030000
	frameworkStyleLast  = 0x01031000
)

// FrameworkStyles maps android framework style resource ids to their public
// names. Loaded once, immutable afterwards, safe for concurrent readers.
type FrameworkStyles struct {
	names map[uint32]string
}

// LoadFrameworkStyles reads a dictionary whose lines are "name = decimal-id".
// Blank and malformed lines are ignored.
func LoadFrameworkStyles(r io.Reader) (*FrameworkStyles, error) {
	fs := &FrameworkStyles{names: make(map[uint32]string)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, idText, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(idText), 10, 32)
		if err != nil {
			continue
		}
		fs.names[uint32(id)] = strings.TrimSpace(name)
	}
	return fs, sc.Err()
}

var defaultStyles = mustLoadDefaultStyles()

func mustLoadDefaultStyles() *FrameworkStyles {
	data, err := assetsFS.ReadFile("assets/styles.txt")
	if err != nil {
		panic(err)
	}
	fs, err := LoadFrameworkStyles(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	return fs
}

// DefaultFrameworkStyles returns the embedded android style dictionary.
func DefaultFrameworkStyles() *FrameworkStyles { return defaultStyles }

func (fs *FrameworkStyles) name(id uint32) (string, bool) {
	if fs == nil {
		return "", false
	}
	name, ok := fs.names[id]
	return name, ok
}

// Resolver turns resource ids found in a manifest into displayable strings,
// either symbolic (@type/name) or, in value mode, the concrete string the
// reference chain ends in. All state is read-only after construction.
type Resolver struct {
	table  *ResourceTable
	styles *FrameworkStyles

	resolveToValues bool
	lang, country   string
}

// NewResolver builds a resolver over table. locale is a BCP-47 tag ("en",
// "en-US", ...) used to pick between entry configurations; an empty or
// unparseable locale picks the configuration-less entry, or the first
// configuration when an id has none. styles may be nil to use the embedded
// dictionary.
func NewResolver(table *ResourceTable, resolveToValues bool, locale string, styles *FrameworkStyles) *Resolver {
	if styles == nil {
		styles = defaultStyles
	}
	r := &Resolver{
		table:           table,
		styles:          styles,
		resolveToValues: resolveToValues,
	}
	if tag, err := language.Parse(locale); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			r.lang = base.String()
		}
		if region, conf := tag.Region(); conf != language.No && region.IsCountry() {
			r.country = region.String()
		}
	}
	return r
}

// orNil keeps a typed-nil *Resolver from sneaking into an interface value.
func (r *Resolver) orNil() referenceResolver {
	if r == nil {
		return nil
	}
	return r
}

// ResolveAttributeName names an attribute by resource id from the table's
// attr entries.
func (r *Resolver) ResolveAttributeName(resID uint32) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.table.AttributeName(resID)
}

// ResolveReference renders a reference-typed value. Framework style ids use
// the style dictionary; everything else goes through the resource table.
func (r *Resolver) ResolveReference(resID uint32) (string, bool) {
	if r == nil {
		return "", false
	}

	if resID > frameworkStyleFirst && resID < frameworkStyleLast {
		if name, ok := r.styles.name(resID); ok {
			return "@android:style/" + name, true
		}
		return fmt.Sprintf("@android:style/0x%08x", resID), true
	}

	entry := r.pickEntry(resID)
	if entry == nil {
		return "", false
	}
	if !r.resolveToValues {
		return "@" + entry.TypeName + "/" + entry.Key, true
	}

	visited := map[uint32]bool{}
	if s, ok := r.followChain(entry, visited); ok {
		return s, true
	}
	return "@" + entry.TypeName + "/" + entry.Key, true
}

// followChain walks reference values until a string is produced. The
// visited set bounds the walk; a cycle or a dead end reports failure so the
// caller can fall back to the symbolic form.
func (r *Resolver) followChain(entry *ResourceEntry, visited map[uint32]bool) (string, bool) {
	if visited[entry.ID] {
		return "", false
	}
	visited[entry.ID] = true

	v := entry.Value
	if v == nil {
		return "", false
	}
	switch v.DataType {
	case TypeString:
		if int32(v.Data) < 0 {
			return "", false
		}
		return r.table.globalPool.get(v.Data), true
	case TypeReference, TypeAttribute:
		next := r.pickEntry(v.Data)
		if next == nil {
			return "", false
		}
		return r.followChain(next, visited)
	default:
		return "", false
	}
}

// pickEntry selects the configuration of a resource id that best matches
// the requested locale: lang-COUNTRY, then lang, then the locale-less
// entry, then whatever comes first.
func (r *Resolver) pickEntry(resID uint32) *ResourceEntry {
	candidates := r.table.Entries(resID)
	if len(candidates) == 0 {
		return nil
	}

	full := ""
	if r.lang != "" && r.country != "" {
		full = r.lang + "-" + r.country
	}
	var byLang, byEmpty *ResourceEntry
	for _, e := range candidates {
		switch {
		case full != "" && e.Locale == full:
			return e
		case byLang == nil && r.lang != "" && e.Locale == r.lang:
			byLang = e
		case byEmpty == nil && e.Locale == "":
			byEmpty = e
		}
	}
	if byLang != nil {
		return byLang
	}
	if byEmpty != nil {
		return byEmpty
	}
	return candidates[0]
}

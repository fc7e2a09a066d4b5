// Package axml decodes the binary AndroidManifest.xml and resources.arsc
// formats packed inside Android APKs and renders the manifest back as
// textual XML, optionally resolving resource references against the
// resource table.
package axml

import (
	"io"

	"github.com/pkg/errors"
)

// Options configures a decode. The zero value renders symbolic references
// (@type/name), uses the configuration-less resource entries and leaves
// attribute values untouched.
type Options struct {
	// ResolveToValues dereferences resource references down to concrete
	// strings instead of @type/name.
	ResolveToValues bool

	// Locale is the BCP-47 tag used to pick among resource configurations,
	// e.g. "en-US". Empty prefers the configuration-less entry.
	Locale string

	// Humanize rewrites well-known attribute values into symbolic form
	// (screenOrientation, configChanges, ...). Mapper overrides the
	// built-in set when non-nil.
	Humanize bool
	Mapper   *ValueMapper

	// Styles overrides the embedded framework style dictionary.
	Styles *FrameworkStyles
}

func (o Options) mapper() *ValueMapper {
	if o.Mapper != nil {
		return o.Mapper
	}
	if o.Humanize {
		return NewValueMapper()
	}
	return nil
}

// DecodeManifest renders a binary manifest as XML text. table may be nil,
// in which case references stay in @0x<hex> form.
func DecodeManifest(manifest []byte, table *ResourceTable, opts Options) (string, error) {
	var res *Resolver
	if table != nil {
		res = NewResolver(table, opts.ResolveToValues, opts.Locale, opts.Styles)
	}

	t := NewXmlTranslator()
	if err := ParseXml(manifest, t, res, opts.mapper()); err != nil {
		return "", err
	}
	return t.String(), nil
}

// DecodeApk opens an APK and decodes its manifest.
//
// The resource table is optional in the archive and its parse failures are
// not fatal: the manifest still decodes, just without reference resolution.
// resErr reports what happened to the table, manifestErr to the manifest.
func DecodeApk(path string, opts Options) (xml string, resErr, manifestErr error) {
	a, err := OpenApk(path)
	if err != nil {
		return "", nil, err
	}
	defer a.Close()
	return decodeApk(a, opts)
}

// DecodeApkReader is DecodeApk over an already open archive source.
func DecodeApkReader(r io.ReaderAt, size int64, opts Options) (xml string, resErr, manifestErr error) {
	a, err := NewApkReader(r, size)
	if err != nil {
		return "", nil, err
	}
	return decodeApk(a, opts)
}

func decodeApk(a *ApkReader, opts Options) (xml string, resErr, manifestErr error) {
	var table *ResourceTable

	arsc, resErr := a.Resources()
	if resErr == nil {
		table, resErr = ParseResourceTable(arsc)
	}

	manifest, manifestErr := a.Manifest()
	if manifestErr != nil {
		return "", resErr, manifestErr
	}

	xml, manifestErr = DecodeManifest(manifest, table, opts)
	return xml, resErr, errors.Wrap(manifestErr, "decoding manifest")
}

package axml

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

const (
	manifestEntryName  = "AndroidManifest.xml"
	resourcesEntryName = "resources.arsc"

	// Cap on a single decompressed entry; manifests and resource tables
	// are far below this, crafted bombs are not.
	maxEntrySize = 1 << 28
)

// ApkReader retrieves raw entry blobs from an APK archive. It first goes
// through archive/zip; archives that archive/zip rejects (and Android still
// installs) fall back to a raw scan over local file headers.
type ApkReader struct {
	zr      *zip.Reader
	rescued map[string]rescuedEntry

	src       io.ReaderAt
	size      int64
	ownedFile *os.File
}

type rescuedEntry struct {
	dataOffset int64
	method     uint16
}

// OpenApk opens an APK on disk. The returned reader owns the file handle.
func OpenApk(apkPath string) (*ApkReader, error) {
	f, err := os.Open(apkPath)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := NewApkReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	a.ownedFile = f
	return a, nil
}

// NewApkReader opens an APK from an arbitrary random-access source.
func NewApkReader(r io.ReaderAt, size int64) (*ApkReader, error) {
	if r == nil {
		return nil, ErrInvalidArgument
	}
	a := &ApkReader{src: r, size: size}

	zr, err := zip.NewReader(r, size)
	if err == nil {
		zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
			return flate.NewReader(r)
		})
		a.zr = zr
		a.fixupMethods()
		return a, nil
	}

	if err = a.rescueScan(); err != nil {
		return nil, errors.Wrap(err, "archive is not a readable zip")
	}
	return a, nil
}

// Close releases the underlying file when the reader owns one.
func (a *ApkReader) Close() error {
	if a.ownedFile == nil {
		return nil
	}
	err := a.ownedFile.Close()
	a.ownedFile = nil
	return err
}

// fixupMethods rewrites entries with unknown compression methods the way
// the platform treats them: the manifest and resource table are read as
// stored, everything else as deflate.
func (a *ApkReader) fixupMethods() {
	for _, f := range a.zr.File {
		if f.Method == zip.Store || f.Method == zip.Deflate {
			continue
		}
		switch path.Clean(f.Name) {
		case manifestEntryName, resourcesEntryName:
			f.Method = zip.Store
			f.CompressedSize64 = f.UncompressedSize64
		default:
			f.Method = zip.Deflate
		}
	}
}

// Manifest returns the raw bytes of the binary manifest entry.
func (a *ApkReader) Manifest() ([]byte, error) {
	data, err := a.ReadEntry(manifestEntryName)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrManifestNotFound
	}
	return data, err
}

// Resources returns the raw bytes of the compiled resource table entry.
func (a *ApkReader) Resources() ([]byte, error) {
	return a.ReadEntry(resourcesEntryName)
}

// ReadEntry reads a whole named entry. Names are cleaned before matching,
// so crafted "./AndroidManifest.xml" entries still resolve.
func (a *ApkReader) ReadEntry(name string) ([]byte, error) {
	if a.zr != nil {
		for _, f := range a.zr.File {
			if path.Clean(f.Name) != name {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
			rc.Close()
			if err != nil {
				return nil, errors.Wrapf(err, "entry %s", name)
			}
			return data, nil
		}
		return nil, errors.Wrapf(os.ErrNotExist, "entry %s", name)
	}

	e, ok := a.rescued[name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "entry %s", name)
	}
	section := io.NewSectionReader(a.src, e.dataOffset, a.size-e.dataOffset)
	var r io.Reader = section
	// Android treats every nonzero method as deflate.
	if e.method != zip.Store {
		fr := flate.NewReader(section)
		defer fr.Close()
		r = fr
	}
	data, err := io.ReadAll(io.LimitReader(r, maxEntrySize))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, errors.Wrapf(err, "entry %s", name)
	}
	return data, nil
}

var localFileHeaderMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// rescueScan walks the file for local file header signatures and records
// each entry's data offset and method. Later duplicates win, matching
// installer behavior on crafted archives.
func (a *ApkReader) rescueScan() error {
	const headerLen = 30

	data, err := io.ReadAll(io.LimitReader(io.NewSectionReader(a.src, 0, a.size), maxEntrySize))
	if err != nil {
		return err
	}

	a.rescued = make(map[string]rescuedEntry)
	for off := 0; ; {
		idx := bytes.Index(data[off:], localFileHeaderMagic)
		if idx < 0 {
			break
		}
		begin := off + idx
		off = begin + len(localFileHeaderMagic)

		if begin+headerLen > len(data) {
			break
		}
		method := binary.LittleEndian.Uint16(data[begin+8:])
		nameLen := int(binary.LittleEndian.Uint16(data[begin+26:]))
		extraLen := int(binary.LittleEndian.Uint16(data[begin+28:]))
		if begin+headerLen+nameLen > len(data) {
			break
		}
		name := path.Clean(string(data[begin+headerLen : begin+headerLen+nameLen]))
		a.rescued[name] = rescuedEntry{
			dataOffset: int64(begin + headerLen + nameLen + extraLen),
			method:     method,
		}
	}
	if len(a.rescued) == 0 {
		return errors.New("no local file headers found")
	}
	return nil
}

package axml

import "errors"

// Errors that abort the current decode. More context is usually attached on
// the way up with github.com/pkg/errors; match with errors.Is.
var (
	// ErrTruncated means the input ended before the bytes a structure
	// declared for itself.
	ErrTruncated = errors.New("input truncated")

	// ErrOverflow means a seek or offset points outside the input.
	ErrOverflow = errors.New("offset out of range")

	// ErrUnexpectedChunkType means a binary XML document held a chunk
	// outside the XML chunk range, or a document or resource table did not
	// start with its expected sentinel chunk.
	ErrUnexpectedChunkType = errors.New("unexpected chunk type")

	// ErrMissingStringPool means a string pool chunk was not where one is
	// required: after the XML sentinel, or at a package's type or key
	// string offset in a resource table.
	ErrMissingStringPool = errors.New("no string pool chunk")

	// ErrManifestNotFound means the archive has no AndroidManifest.xml entry.
	ErrManifestNotFound = errors.New("AndroidManifest.xml not found in archive")

	// ErrInvalidArgument means a nil or empty input was passed to a decode
	// entry point.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPlainTextManifest is returned for manifests that are already plain
	// text. Some samples ship these; they are an error for this decoder.
	ErrPlainTextManifest = errors.New("xml is in plaintext, binary form expected")
)

package viewcache

import (
	"errors"

	"github.com/polyscene/viewcache/archive"
	"github.com/polyscene/viewcache/remote"
)

var (
	// ErrNotCached is returned when an operation requires a complete
	// cache entry but the marker file is absent.
	ErrNotCached = errors.New("viewcache: project not cached")

	// ErrDeserialize is returned when the local metadata file is missing
	// or cannot be decoded.
	ErrDeserialize = errors.New("viewcache: metadata deserialization failed")
)

// Errors re-exported from remote.
var (
	// ErrNotFound is returned when a remote object does not exist.
	ErrNotFound = remote.ErrNotFound

	// ErrUnauthorized is returned when the remote store rejects access.
	ErrUnauthorized = remote.ErrUnauthorized
)

// Errors re-exported from archive.
var (
	// ErrArchiveFormat is returned when a bundle archive is corrupt or
	// uses an unsupported encoding.
	ErrArchiveFormat = archive.ErrFormat
)

// Package remote defines the contracts for reaching the object store that
// authoritatively holds project artifacts: a Provider that issues
// short-lived signed URLs for object keys, and a Downloader that streams
// a URL into a local file.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the remote object does not exist.
	ErrNotFound = errors.New("remote: object not found")

	// ErrUnauthorized is returned when the remote store rejects access
	// to an object.
	ErrUnauthorized = errors.New("remote: access denied")
)

// Provider issues signed URLs granting temporary read access to objects.
// Returned URLs are opaque and short-lived; callers must consume them
// promptly.
type Provider interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

// Downloader streams the content behind a URL into a local file.
type Downloader interface {
	// DownloadTo fetches url and writes its body to dest. The write is
	// atomic: dest either holds the complete body or its previous
	// content, never a partial download.
	DownloadTo(ctx context.Context, url, dest string) error
}

package viewcache

import (
	"fmt"
	"os"
	"sync"
)

// Store owns the on-disk cache entry for one project: its metadata file,
// thumbnail, completion marker, and hash-versioned bundle directories.
//
// The metadata accessor is a load-once cell: the first successful read is
// cached for the store's lifetime and never revalidated against disk.
// A Store is safe for concurrent use.
type Store struct {
	project Project
	layout  *Layout

	mu   sync.Mutex
	meta *ProjectMetadata
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithThumbnailExt sets the local thumbnail file extension, without the
// dot. Defaults to "png".
func WithThumbnailExt(ext string) StoreOption {
	return func(s *Store) {
		s.layout.thumbExt = ext
	}
}

// NewStore creates a store for project rooted at root. No I/O happens
// until an accessor is called.
func NewStore(root string, project Project, opts ...StoreOption) (*Store, error) {
	layout, err := NewLayout(root, project.ID())
	if err != nil {
		return nil, err
	}
	s := &Store{
		project: project,
		layout:  layout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.layout.thumbExt == "" {
		return nil, fmt.Errorf("viewcache: thumbnail extension is empty")
	}
	return s, nil
}

// Project returns the project this store caches.
func (s *Store) Project() Project {
	return s.project
}

// Layout returns the store's local path mapping.
func (s *Store) Layout() *Layout {
	return s.layout
}

// Metadata returns the project metadata, reading and decoding the local
// metadata file on first access. A successful read is cached for the
// store's lifetime; a failed read is not latched, so a later call retries
// once the file exists.
func (s *Store) Metadata() (*ProjectMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta != nil {
		return s.meta, nil
	}
	path, err := s.layout.Path(NameMetadata)
	if err != nil {
		return nil, err
	}
	meta, err := decodeMetadataFile(path)
	if err != nil {
		return nil, err
	}
	s.meta = meta
	return meta, nil
}

// IsCached reports whether the cache entry is complete. The marker file's
// existence is the sole signal: it is written only after every download
// and the bundle unpack succeeded, so its absence must be treated as "not
// cached" and never partially trusted.
func (s *Store) IsCached() bool {
	path, err := s.layout.Path(NameMarker)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// BundleDir returns the directory holding the unpacked bundle for the
// current metadata hash. Requires the metadata file to be local.
func (s *Store) BundleDir() (string, error) {
	meta, err := s.Metadata()
	if err != nil {
		return "", err
	}
	return s.layout.VersionDir(meta.Hash)
}

// CachedBundleDir is BundleDir guarded by the completion marker: it fails
// with ErrNotCached instead of handing out a possibly partial directory.
func (s *Store) CachedBundleDir() (string, error) {
	if err := s.verifyCached(); err != nil {
		return "", err
	}
	return s.BundleDir()
}

// ThumbnailPath returns the local thumbnail path, guarded by the
// completion marker.
func (s *Store) ThumbnailPath() (string, error) {
	if err := s.verifyCached(); err != nil {
		return "", err
	}
	return s.layout.Path(NameThumbnail)
}

// BundleVersions lists the content hashes that have an unpacked bundle
// directory on disk. Old versions are retained until a caller sweeps
// them; this is how callers find what to sweep.
func (s *Store) BundleVersions() ([]string, error) {
	entries, err := os.ReadDir(s.layout.BundleRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("viewcache: list bundle versions: %w", err)
	}
	var hashes []string
	for _, e := range entries {
		if e.IsDir() {
			hashes = append(hashes, e.Name())
		}
	}
	return hashes, nil
}

func (s *Store) verifyCached() error {
	if !s.IsCached() {
		return fmt.Errorf("%w: project %s", ErrNotCached, s.project.ID())
	}
	return nil
}

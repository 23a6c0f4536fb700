package viewcache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Logical names for the assets of a project cache entry.
const (
	NameMetadata  = "metadata"
	NameThumbnail = "thumbnail"
	NameMarker    = "marker"
	NameModelView = "model-view"
)

// bundleRoot is the subdirectory of a project's cache directory that
// holds one unpacked bundle per content hash.
const bundleRoot = "view"

const defaultThumbnailExt = "png"

// Layout maps logical asset names to absolute paths inside one project's
// cache directory. It performs no I/O.
type Layout struct {
	root      string
	projectID string
	thumbExt  string
}

// NewLayout creates a layout rooted at root for the given project.
func NewLayout(root, projectID string) (*Layout, error) {
	if root == "" {
		return nil, errors.New("viewcache: layout root is empty")
	}
	if err := validateComponent(projectID); err != nil {
		return nil, fmt.Errorf("viewcache: project id %q: %w", projectID, err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("viewcache: resolve root: %w", err)
	}
	return &Layout{
		root:      abs,
		projectID: projectID,
		thumbExt:  defaultThumbnailExt,
	}, nil
}

// Dir returns the project's cache directory.
func (l *Layout) Dir() string {
	return filepath.Join(l.root, l.projectID)
}

// Path maps a logical asset name to its local file path.
func (l *Layout) Path(logical string) (string, error) {
	switch logical {
	case NameMetadata:
		return filepath.Join(l.Dir(), "metadata.json"), nil
	case NameThumbnail:
		return filepath.Join(l.Dir(), "thumbnail."+l.thumbExt), nil
	case NameMarker:
		return filepath.Join(l.Dir(), "marker"), nil
	default:
		return "", fmt.Errorf("viewcache: no local path for logical name %q", logical)
	}
}

// BundleRoot returns the directory holding one unpacked bundle per
// content hash.
func (l *Layout) BundleRoot() string {
	return filepath.Join(l.Dir(), bundleRoot)
}

// VersionDir returns the directory for the bundle unpacked from the
// archive produced at the given content hash.
func (l *Layout) VersionDir(hash string) (string, error) {
	if err := validateComponent(hash); err != nil {
		return "", fmt.Errorf("viewcache: hash %q: %w", hash, err)
	}
	return filepath.Join(l.BundleRoot(), hash), nil
}

// validateComponent rejects values that cannot safely form a single path
// element under the cache root.
func validateComponent(s string) error {
	if s == "" {
		return errors.New("empty")
	}
	if s == "." || s == ".." {
		return errors.New("reserved name")
	}
	if strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0) {
		return errors.New("contains path separator")
	}
	return nil
}

// Package archive unpacks bundle archives into local directories.
package archive

import (
	"context"
	"errors"
)

// ErrFormat is returned when an archive is corrupt or uses an unsupported
// encoding.
var ErrFormat = errors.New("archive: unsupported or corrupt archive")

// Unpacker extracts a whole archive into a destination directory.
type Unpacker interface {
	// ExtractAll unpacks the archive at archivePath into destDir,
	// creating destDir if needed. Extraction is all-or-nothing from the
	// caller's perspective: on error the destination must not be treated
	// as populated.
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

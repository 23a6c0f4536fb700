package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Zip unpacks zip archives. Only the Store and Deflate methods are
// supported; entries using any other method fail with ErrFormat.
type Zip struct {
	overwrite    bool
	preserveMode bool
}

// ZipOption configures a Zip unpacker.
type ZipOption func(*Zip)

// ZipWithOverwrite controls whether existing files at the destination are
// replaced. Defaults to true; when disabled, existing files are skipped.
func ZipWithOverwrite(overwrite bool) ZipOption {
	return func(z *Zip) {
		z.overwrite = overwrite
	}
}

// ZipWithPreserveMode preserves file permission modes from the archive.
// By default, files use umask defaults.
func ZipWithPreserveMode(preserve bool) ZipOption {
	return func(z *Zip) {
		z.preserveMode = preserve
	}
}

// NewZip creates a zip unpacker.
func NewZip(opts ...ZipOption) *Zip {
	z := &Zip{overwrite: true}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// ExtractAll unpacks the zip archive at archivePath into destDir.
func (z *Zip) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		if r != nil {
			r.Close()
		}
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrInsecurePath) {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, defaultDirPerm); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := z.extractEntry(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func (z *Zip) extractEntry(f *zip.File, destDir string) error {
	target, err := resolveTarget(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, defaultDirPerm)
	}

	if f.Method != zip.Store && f.Method != zip.Deflate {
		return fmt.Errorf("%w: entry %s uses unsupported method %d", ErrFormat, f.Name, f.Method)
	}

	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerm); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !z.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	perm := os.FileMode(defaultFilePerm)
	if z.preserveMode {
		perm = f.Mode().Perm()
	}

	out, err := os.OpenFile(target, flags, perm)
	if err != nil {
		if !z.overwrite && errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}

	rc, err := f.Open()
	if err != nil {
		out.Close()
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return fmt.Errorf("%w: entry %s: %v", ErrFormat, f.Name, err)
		}
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}

	_, copyErr := io.Copy(out, rc)
	rc.Close()
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if errors.Is(copyErr, zip.ErrChecksum) || errors.Is(copyErr, zip.ErrFormat) {
			return fmt.Errorf("%w: entry %s: %v", ErrFormat, f.Name, copyErr)
		}
		return fmt.Errorf("extract entry %s: %w", f.Name, copyErr)
	}
	return nil
}

// resolveTarget maps an archive entry name to a path under destDir,
// rejecting names that would escape it.
func resolveTarget(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: entry %q escapes destination", ErrFormat, name)
	}
	return filepath.Join(destDir, cleaned), nil
}

package viewcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/polyscene/viewcache/archive"
	"github.com/polyscene/viewcache/internal/keylock"
	"github.com/polyscene/viewcache/remote"
)

const (
	dirPerm = 0o755

	// markerContent is an opaque completion token; only the marker's
	// existence carries meaning.
	markerContent = "done"
)

// Fetcher brings project cache entries from absent or partial to
// complete. It is safe for concurrent use; ensures for the same project
// are serialized in-process.
type Fetcher struct {
	provider remote.Provider
	download remote.Downloader
	unpacker archive.Unpacker
	log      zerolog.Logger
	locks    *keylock.Map
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDownloader replaces the default HTTP downloader.
func WithDownloader(d remote.Downloader) FetcherOption {
	return func(f *Fetcher) {
		f.download = d
	}
}

// WithUnpacker replaces the default zip unpacker.
func WithUnpacker(u archive.Unpacker) FetcherOption {
	return func(f *Fetcher) {
		f.unpacker = u
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = log
	}
}

// NewFetcher creates a Fetcher that signs object keys through provider.
func NewFetcher(provider remote.Provider, opts ...FetcherOption) (*Fetcher, error) {
	if provider == nil {
		return nil, errors.New("viewcache: provider is nil")
	}
	f := &Fetcher{
		provider: provider,
		download: remote.NewHTTPDownloader(),
		unpacker: archive.NewZip(),
		log:      zerolog.Nop(),
		locks:    keylock.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.download == nil || f.unpacker == nil {
		return nil, errors.New("viewcache: downloader and unpacker must not be nil")
	}
	return f, nil
}

// Ensure makes the project's cache entry complete, or fails leaving no
// marker so the entry still reads as not cached.
//
// Metadata and thumbnail download concurrently; the bundle follows,
// because its remote key depends on the content hash found inside the
// metadata. The marker is written last, after every other step has
// succeeded. Any failure aborts the whole operation, and a retry is
// always safe: every step is an idempotent overwrite.
func (f *Fetcher) Ensure(ctx context.Context, store *Store) error {
	unlock := f.locks.Lock(store.Project().ID())
	defer unlock()

	layout := store.Layout()
	log := f.log.With().Str("project", store.Project().ID()).Logger()

	if err := os.MkdirAll(layout.Dir(), dirPerm); err != nil {
		return fmt.Errorf("viewcache: create project dir: %w", err)
	}

	keys := store.Project().Keys()
	eg, gctx := errgroup.WithContext(ctx)
	for _, logical := range []string{NameMetadata, NameThumbnail} {
		logical := logical
		eg.Go(func() error {
			return f.fetchAsset(gctx, keys, layout, logical)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	log.Debug().Msg("metadata and thumbnail downloaded")

	meta, err := store.Metadata()
	if err != nil {
		return err
	}
	if err := f.fetchBundle(ctx, store, meta.Hash); err != nil {
		return err
	}
	log.Debug().Str("hash", meta.Hash).Msg("bundle unpacked")

	if err := writeMarker(layout); err != nil {
		return err
	}
	log.Info().Str("hash", meta.Hash).Msg("project cached")
	return nil
}

// fetchAsset resolves one logical name to its local destination and
// remote key, obtains a signed URL, and downloads.
func (f *Fetcher) fetchAsset(ctx context.Context, keys KeyMapper, layout *Layout, logical string) error {
	dest, err := layout.Path(logical)
	if err != nil {
		return err
	}
	key, err := keys.Key(logical)
	if err != nil {
		return err
	}
	url, err := f.provider.SignedURL(ctx, key)
	if err != nil {
		return fmt.Errorf("viewcache: sign %s: %w", logical, err)
	}
	return f.download.DownloadTo(ctx, url, dest)
}

// fetchBundle downloads the bundle archive for hash to a temp file and
// unpacks it into the versioned bundle directory. Unpacking stages into a
// temp directory which replaces the destination in one rename, so the
// versioned directory is never observable half-populated.
func (f *Fetcher) fetchBundle(ctx context.Context, store *Store, hash string) error {
	layout := store.Layout()

	vkeys, err := store.Project().VersionKeys(hash)
	if err != nil {
		return err
	}
	key, err := vkeys.Key(NameModelView)
	if err != nil {
		return err
	}
	url, err := f.provider.SignedURL(ctx, key)
	if err != nil {
		return fmt.Errorf("viewcache: sign %s: %w", NameModelView, err)
	}

	tmp, err := os.CreateTemp(layout.Dir(), "model-view-*.zip")
	if err != nil {
		return fmt.Errorf("viewcache: create temp archive: %w", err)
	}
	archivePath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(archivePath)
		return fmt.Errorf("viewcache: create temp archive: %w", err)
	}
	defer func() {
		if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
			f.log.Warn().Err(err).Str("path", archivePath).Msg("temp archive not removed")
		}
	}()

	if err := f.download.DownloadTo(ctx, url, archivePath); err != nil {
		return err
	}

	dest, err := layout.VersionDir(hash)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(layout.BundleRoot(), dirPerm); err != nil {
		return fmt.Errorf("viewcache: create bundle root: %w", err)
	}
	staging, err := os.MkdirTemp(layout.BundleRoot(), ".unpack-*")
	if err != nil {
		return fmt.Errorf("viewcache: create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := f.unpacker.ExtractAll(ctx, archivePath, staging); err != nil {
		return err
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("viewcache: clear %s: %w", dest, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		return fmt.Errorf("viewcache: install bundle: %w", err)
	}
	return nil
}

// writeMarker commits the cache entry. Temp-file-then-rename keeps a
// half-written marker from ever being observable.
func writeMarker(layout *Layout) error {
	path, err := layout.Path(NameMarker)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".marker-*")
	if err != nil {
		return fmt.Errorf("viewcache: write marker: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.WriteString(markerContent)
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("viewcache: write marker: %w", writeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("viewcache: write marker: %w", err)
	}
	return nil
}

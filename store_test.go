package viewcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	p, err := NewProject("p1")
	require.NoError(t, err)
	s, err := NewStore(t.TempDir(), p, opts...)
	require.NoError(t, err)
	return s
}

func writeMetadata(t *testing.T, s *Store, body string) {
	t.Helper()

	path, err := s.Layout().Path(NameMetadata)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestMetadataLazyLoad(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	// First access before the file exists must fail, and must not latch
	// the failure.
	_, err := s.Metadata()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeserialize)

	writeMetadata(t, s, `{"hash": "H1", "name": "demo"}`)

	meta, err := s.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "H1", meta.Hash)
	assert.Equal(t, "demo", meta.Name)

	// Cache-forever: a later change on disk is not observed.
	writeMetadata(t, s, `{"hash": "H2"}`)
	meta, err = s.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "H1", meta.Hash)
}

func TestMetadataMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{{{"},
		{"missing hash", `{"name": "demo"}`},
		{"empty hash", `{"hash": ""}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStore(t)
			writeMetadata(t, s, tt.body)

			_, err := s.Metadata()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDeserialize)
		})
	}
}

func TestBundleDirComposition(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	writeMetadata(t, s, `{"hash": "ABCDEF0123"}`)

	dir, err := s.BundleDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Layout().Dir(), "view", "ABCDEF0123"), dir)
}

func TestIsCachedMarkerOnly(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	assert.False(t, s.IsCached())

	markerPath, err := s.Layout().Path(NameMarker)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(markerPath), 0o755))
	require.NoError(t, os.WriteFile(markerPath, []byte("done"), 0o644))
	assert.True(t, s.IsCached())

	require.NoError(t, os.Remove(markerPath))
	assert.False(t, s.IsCached())
}

func TestGuardedAccessorsRequireMarker(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	writeMetadata(t, s, `{"hash": "H1"}`)

	_, err := s.CachedBundleDir()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotCached)

	_, err = s.ThumbnailPath()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestBundleVersions(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	versions, err := s.BundleVersions()
	require.NoError(t, err)
	assert.Empty(t, versions)

	for _, h := range []string{"H1", "H2"} {
		dir, err := s.Layout().VersionDir(h)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	versions, err = s.BundleVersions()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"H1", "H2"}, versions)
}

func TestWithThumbnailExt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, WithThumbnailExt("jpg"))
	path, err := s.Layout().Path(NameThumbnail)
	require.NoError(t, err)
	assert.Equal(t, "thumbnail.jpg", filepath.Base(path))
}

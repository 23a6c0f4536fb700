package fingerprint

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9A-F]{64}$`)

func TestBytesKnownAnswer(t *testing.T) {
	t.Parallel()

	// SHA-256 of "hello", rendered uppercase.
	const want = "2CF24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824"
	assert.Equal(t, want, Bytes([]byte("hello")))
	assert.Equal(t, want, String("hello"))
}

func TestBytesDeterministic(t *testing.T) {
	t.Parallel()

	data := []byte("some project state")
	first := Bytes(data)
	second := Bytes(data)
	assert.Equal(t, first, second)
	assert.True(t, hexPattern.MatchString(first), "fingerprint %q is not 64 uppercase hex chars", first)

	assert.NotEqual(t, first, Bytes([]byte("some other state")))
}

func TestFileMatchesReader(t *testing.T) {
	t.Parallel()

	data := []byte("file and stream must agree")
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fromFile, err := File(path)
	require.NoError(t, err)

	fromReader, err := Reader(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, fromReader, fromFile)
	assert.Equal(t, Bytes(data), fromFile)
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	_, err := File(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValueMapOrderIndependent(t *testing.T) {
	t.Parallel()

	a := map[string]any{"alpha": 1, "beta": "two", "gamma": []int{3, 4}}
	b := map[string]any{"gamma": []int{3, 4}, "beta": "two", "alpha": 1}

	fpA, err := Value(a)
	require.NoError(t, err)
	fpB, err := Value(b)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
}

func TestValueStructMatchesEquivalentMap(t *testing.T) {
	t.Parallel()

	type record struct {
		Name  string
		Count int
	}

	fromStruct, err := Value(record{Name: "p1", Count: 7})
	require.NoError(t, err)

	fromMap, err := Value(map[string]any{"Count": 7, "Name": "p1"})
	require.NoError(t, err)

	assert.Equal(t, fromMap, fromStruct)
}

func TestValueNested(t *testing.T) {
	t.Parallel()

	type inner struct {
		X int
		Y int
	}
	type outer struct {
		Label string
		Point inner
	}

	first, err := Value(outer{Label: "origin", Point: inner{X: 1, Y: 2}})
	require.NoError(t, err)
	second, err := Value(map[string]any{
		"Point": map[string]any{"Y": 2, "X": 1},
		"Label": "origin",
	})
	require.NoError(t, err)
	assert.Equal(t, second, first)

	changed, err := Value(outer{Label: "origin", Point: inner{X: 1, Y: 3}})
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestValueScalarsAndNil(t *testing.T) {
	t.Parallel()

	fp, err := Value(42)
	require.NoError(t, err)
	assert.True(t, hexPattern.MatchString(fp))

	fpNil, err := Value(nil)
	require.NoError(t, err)
	assert.True(t, hexPattern.MatchString(fpNil))
	assert.NotEqual(t, fp, fpNil)
}

package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".callisto.json")
	doc := sampleDocument()

	require.NoError(t, WriteDocument(doc, path))

	got, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteDocument_ReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".callisto.json")
	require.NoError(t, WriteDocument(sampleDocument(), path))
	require.NoError(t, WriteDocument(NewDocument(), path))

	got, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, NewDocument(), got)
}

func TestWriteDocument_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", ".callisto.json")

	err := WriteDocument(NewDocument(), path)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, path, ioErr.Path)
}

func TestReadDocument_Missing(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "nope.json"))

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestReadDocument_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".callisto.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := ReadDocument(path)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, path, de.Path)
	assert.Contains(t, err.Error(), path)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.json")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ReadDocument reads and decodes the document stored at filePath.
// A missing file yields an *IOError wrapping fs.ErrNotExist.
func ReadDocument(filePath string) (*Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &IOError{Op: "read", Path: filePath, Err: err}
	}

	doc, err := Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = filePath
		}
		return nil, err
	}
	return doc, nil
}

// WriteDocument encodes doc and replaces the file at filePath with it.
// The bytes go to a temporary file in the same directory which is then
// renamed over the target, so readers see either the old or the new document.
func WriteDocument(doc *Document, filePath string) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, ".callisto-*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: filePath, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &IOError{Op: "write", Path: filePath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: filePath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: filePath, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &IOError{Op: "chmod", Path: filePath, Err: err}
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return &IOError{Op: "replace", Path: filePath, Err: err}
	}
	committed = true
	return nil
}

// Exists reports whether a file is present at filePath.
func Exists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &IOError{Op: "stat", Path: filePath, Err: err}
}

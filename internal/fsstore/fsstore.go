// Package fsstore persists JSON documents on the local filesystem with
// atomic replace semantics: a write either lands completely or leaves the
// previous file untouched.
package fsstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultDirPerm  = 0o700
	defaultFilePerm = 0o600
)

var (
	ErrInvalidPath  = errors.New("fsstore: invalid path")
	ErrEncodeFailed = errors.New("fsstore: encode failed")
	ErrDecodeFailed = errors.New("fsstore: decode failed")
	ErrWriteFailed  = errors.New("fsstore: atomic write failed")
)

func cleanPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return filepath.Clean(path), nil
}

func EnsureDir(path string, perm os.FileMode) error {
	dir, err := cleanPath(path)
	if err != nil {
		return err
	}
	if perm == 0 {
		perm = defaultDirPerm
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("fsstore ensure dir %s: %w", dir, err)
	}
	return nil
}

// ReadJSON decodes the document at path into out. A missing or empty file
// reports (false, nil) so callers can fall back to defaults.
func ReadJSON(path string, out any) (bool, error) {
	file, err := cleanPath(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read json %s: %w", file, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrDecodeFailed, file, err)
	}
	return true, nil
}

// WriteJSONAtomic marshals v and replaces the file at path via a synced
// temp file and rename.
func WriteJSONAtomic(path string, v any) error {
	file, err := cleanPath(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrEncodeFailed, file, err)
	}
	data = append(data, '\n')

	parent := filepath.Dir(file)
	if err := EnsureDir(parent, defaultDirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(parent, filepath.Base(file)+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrWriteFailed, file, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: write temp for %s: %v", ErrWriteFailed, file, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync temp for %s: %v", ErrWriteFailed, file, err)
	}
	if err := tmp.Chmod(defaultFilePerm); err != nil {
		return fmt.Errorf("%w: chmod temp for %s: %v", ErrWriteFailed, file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp for %s: %v", ErrWriteFailed, file, err)
	}
	if err := os.Rename(tmpPath, file); err != nil {
		return fmt.Errorf("%w: rename temp for %s: %v", ErrWriteFailed, file, err)
	}

	// Best effort directory sync for durability; ignore failures.
	if dirFD, err := os.Open(parent); err == nil {
		_ = dirFD.Sync()
		_ = dirFD.Close()
	}
	return nil
}

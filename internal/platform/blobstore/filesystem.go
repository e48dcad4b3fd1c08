package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// FileSystemStore keeps objects as plain files under root, which is also the
// directory served at /uploads.
type FileSystemStore struct {
	root    string
	maxSize int64
}

func NewFileSystemStore(root string, maxSize int64) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &FileSystemStore{root: root, maxSize: maxSize}, nil
}

// validateKey rejects absolute keys and keys that escape the root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	if clean := path.Clean(key); clean != key || clean == "." || strings.HasPrefix(clean, "..") {
		return ErrInvalidKey
	}
	return nil
}

func (s *FileSystemStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put writes to a temporary file and renames it into place so readers never
// see a partial photo.
func (s *FileSystemStore) Put(_ context.Context, key, contentType string, content io.Reader) (*BlobMetadata, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := readLimited(content, s.maxSize)
	if err != nil {
		return nil, err
	}

	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}

	return newMetadata(key, contentType, data, time.Now()), nil
}

func (s *FileSystemStore) Get(_ context.Context, key string) (io.ReadCloser, *BlobMetadata, error) {
	if err := validateKey(key); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", key, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return f, &BlobMetadata{
		Key:         key,
		ContentType: mime.TypeByExtension(path.Ext(key)),
		Size:        info.Size(),
		CreatedAt:   info.ModTime().UTC(),
	}, nil
}

func (s *FileSystemStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

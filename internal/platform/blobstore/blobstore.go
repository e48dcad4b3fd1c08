// Package blobstore stores uploaded files such as resident photos. Objects
// are addressed by a slash-separated key ("residents/<id>.png") and served
// back under /uploads/<key>.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrInvalidKey         = errors.New("invalid blob key")
)

// PublicPrefix is the URL path under which stored objects are served.
const PublicPrefix = "/uploads/"

// imageExtensions maps the accepted photo types to file extensions.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// BlobMetadata describes a stored object.
type BlobMetadata struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicPath is the relative URL clients use to fetch the object.
func (m *BlobMetadata) PublicPath() string { return PublicPrefix + m.Key }

type BlobStore interface {
	Put(ctx context.Context, key, contentType string, content io.Reader) (*BlobMetadata, error)
	Get(ctx context.Context, key string) (io.ReadCloser, *BlobMetadata, error)
	Delete(ctx context.Context, key string) error
}

// ImageExtension returns the file extension for an accepted image type.
func ImageExtension(contentType string) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: png, jpeg, webp)", ErrInvalidContentType, contentType)
	}
	return ext, nil
}

// SniffImage reads the first bytes of r to detect its real content type and
// returns a reader that replays them. The client-declared type is ignored.
func SniffImage(r io.Reader) (contentType string, replay io.Reader, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType = http.DetectContentType(head)
	if _, err := ImageExtension(contentType); err != nil {
		return "", nil, err
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// readLimited drains content, failing with ErrFileTooLarge past maxSize.
func readLimited(content io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(content, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func newMetadata(key, contentType string, data []byte, now time.Time) *BlobMetadata {
	return &BlobMetadata{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        fmt.Sprintf("%x", sha256.Sum256(data)),
		CreatedAt:   now.UTC(),
	}
}

type storedBlob struct {
	metadata BlobMetadata
	content  []byte
}

// InMemoryBlobStore is a thread-safe BlobStore for tests and development.
type InMemoryBlobStore struct {
	mu      sync.RWMutex
	blobs   map[string]*storedBlob
	maxSize int64
}

func NewInMemoryBlobStore(maxSize int64) *InMemoryBlobStore {
	return &InMemoryBlobStore{
		blobs:   make(map[string]*storedBlob),
		maxSize: maxSize,
	}
}

func (s *InMemoryBlobStore) Put(_ context.Context, key, contentType string, content io.Reader) (*BlobMetadata, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := readLimited(content, s.maxSize)
	if err != nil {
		return nil, err
	}

	meta := newMetadata(key, contentType, data, time.Now())
	s.mu.Lock()
	s.blobs[key] = &storedBlob{metadata: *meta, content: data}
	s.mu.Unlock()
	return meta, nil
}

func (s *InMemoryBlobStore) Get(_ context.Context, key string) (io.ReadCloser, *BlobMetadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := blob.metadata
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

func (s *InMemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Count returns the number of stored objects.
func (s *InMemoryBlobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

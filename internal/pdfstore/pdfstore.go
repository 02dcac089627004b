// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfstore keeps downloaded paper PDFs on local disk, keyed by a
// caller-chosen name (usually the paper's arXiv ID or database ID).
package pdfstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// BlobStore stores PDF blobs under string keys.
type BlobStore interface {
	Put(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) bool
	Path(key string) string
}

// LocalStore is a BlobStore over a flat directory of files.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating PDF directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Path returns the filesystem location a key maps to. The file may not
// exist yet.
func (s *LocalStore) Path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".pdf")
}

// Exists reports whether a blob is stored under key.
func (s *LocalStore) Exists(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Put writes r to the store via a temporary file, renaming into place only
// after the full copy succeeds. A failed write never leaves a partial blob
// under the key.
func (s *LocalStore) Put(key string, r io.Reader) error {
	destPath := s.Path(key)

	tmpFile, err := os.CreateTemp(s.dir, ".put-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing blob: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Open returns a reader over the stored blob.
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(key))
	if err != nil {
		return nil, fmt.Errorf("opening blob: %w", err)
	}
	return f, nil
}

// Delete removes a blob. Deleting a missing key is not an error.
func (s *LocalStore) Delete(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// Fetch downloads url into the store under key and returns the stored
// path. It sets User-Agent and requests PDF via the Accept header; the
// HTTP client handles redirect following.
func Fetch(ctx context.Context, client *http.Client, store BlobStore, key, url, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	if err := store.Put(key, resp.Body); err != nil {
		return "", err
	}
	return store.Path(key), nil
}

// sanitizeKey replaces path separators so arXiv-style keys like
// "math.GT/0309136" map to a single filename.
func sanitizeKey(key string) string {
	out := make([]rune, 0, len(key))
	for _, r := range key {
		switch r {
		case '/', '\\', ':':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore keeps one JSON file per key under a base directory.
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore ensures the base directory exists and returns a handle.
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FilesystemStore{baseDir: baseDir}, nil
}

// Get reads the blob stored for key.
func (s *FilesystemStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

// Put writes the blob through a temp file so a crash never leaves a torn value.
func (s *FilesystemStore) Put(_ context.Context, key string, value []byte) error {
	path := s.resolve(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit blob %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob if present.
func (s *FilesystemStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (s *FilesystemStore) resolve(key string) string {
	// Keys are fixed application constants, but flatten separators anyway so a
	// key can never escape the base directory.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.baseDir, safe+".json")
}

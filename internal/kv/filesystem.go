package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore persists each key as one file under a base directory.
type FilesystemStore struct {
	basePath string
}

// NewFilesystemStore creates a filesystem-backed store rooted at basePath
func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FilesystemStore{basePath: basePath}, nil
}

func (s *FilesystemStore) pathFor(key string) (string, error) {
	// Keys are fixed identifiers chosen by this codebase, but reject path
	// separators anyway so a bad key cannot escape the base directory.
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.basePath, key+".json"), nil
}

func (s *FilesystemStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *FilesystemStore) Set(ctx context.Context, key string, value []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	// Write-then-rename so readers never observe a partially written document
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FilesystemStore) Close() error {
	return nil
}

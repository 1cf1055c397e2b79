package cart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Persistence on the local file system, one JSON
// file per storage key under a state directory.
type fileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file-backed persistence port rooted at dir,
// creating the directory if needed.
func NewFileStore(dir string, logger zerolog.Logger) (Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart state dir %s: %w", dir, err)
	}

	return &fileStore{
		dir:    dir,
		logger: logger.With().Str("component", "cart-file-store").Logger(),
	}, nil
}

func (f *fileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load reads the value stored under key. A missing file means the key
// has never been written.
func (f *fileStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		f.logger.Error().Err(err).Str("key", key).Msg("failed to read cart state file")
		return nil, fmt.Errorf("failed to read cart state %s: %w", key, err)
	}
	return data, nil
}

// Save writes the value via a temp file and rename so a crash mid-write
// never leaves a torn state file.
func (f *fileStore) Save(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cart state %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cart state %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cart state %s: %w", key, err)
	}

	return nil
}

// Delete removes the value stored under key. Deleting an absent key is
// not an error.
func (f *fileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Error().Err(err).Str("key", key).Msg("failed to delete cart state file")
		return fmt.Errorf("failed to delete cart state %s: %w", key, err)
	}
	return nil
}

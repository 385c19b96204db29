// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/optoscholar/pkg/types"
)

// DefaultKey names the slot holding the library. It matches the key used by
// the browser client so exported slots interoperate.
const DefaultKey = "optoscholar_library_v1"

// ErrSlotEmpty is returned by Slot.Read when nothing has been written yet.
var ErrSlotEmpty = errors.New("library slot is empty")

// Slot is a single durable value holding the serialized library. Writes
// replace the whole value; the last writer wins.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FileSlot stores the library as a JSON file.
type FileSlot struct {
	Path string
}

// Read returns the file contents, or ErrSlotEmpty if the file does not exist.
func (f *FileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return data, nil
}

// Write replaces the file atomically via a temp file and rename, creating
// the parent directory when needed.
func (f *FileSlot) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating library directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".library-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", f.Path, err)
	}
	return nil
}

// OpenSlot builds the slot selected by cfg. The returned closer releases
// backend resources and is never nil.
func OpenSlot(ctx context.Context, cfg types.LibraryConfig) (Slot, func() error, error) {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	noop := func() error { return nil }

	switch cfg.Backend {
	case types.SlotFile, "":
		path := cfg.Path
		if path == "" {
			path = key + ".json"
		}
		return &FileSlot{Path: path}, noop, nil
	case types.SlotSQLite:
		path := cfg.Path
		if path == "" {
			path = "optoscholar.db"
		}
		s, err := NewSQLiteSlot(path, key)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case types.SlotS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return NewS3Slot(client, cfg.S3Bucket, key), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown library backend %q", cfg.Backend)
}

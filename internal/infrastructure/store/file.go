package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"

	"go.uber.org/zap"
)

// File persists the snapshot as a single JSON document. Writes go through
// a temp file and a rename, so a concurrent reader observes either the
// previous snapshot or the new one, never a torn write.
type File struct {
	path string
	log  *zap.Logger
}

var _ application.SnapshotStore = (*File)(nil)

func NewFile(path string, log *zap.Logger) *File {
	if log == nil {
		log = zap.NewNop()
	}
	return &File{path: path, log: log}
}

func (f *File) Write(_ context.Context, snap domain.PriceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Temp file lives in the target directory so the rename stays on one
	// filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".pricecache-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (f *File) Read(_ context.Context) domain.PriceSnapshot {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("snapshot file unreadable", zap.String("path", f.path), zap.Error(err))
		}
		return domain.PriceSnapshot{}
	}
	var snap domain.PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		f.log.Warn("snapshot file corrupt", zap.String("path", f.path), zap.Error(err))
		return domain.PriceSnapshot{}
	}
	return snap
}

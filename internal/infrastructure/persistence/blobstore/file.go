// Package blobstore provides Store adapters that keep the invoice collection
// as a single blob under one key, either in a flat file or in a one-row
// sqlite table.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
)

// File stores the blob as a single JSON file under a data directory.
// This is the default backend.
type File struct {
	path   string
	logger *zap.Logger
}

// NewFile creates a file-backed store. The blob lives at dir/<key>.json.
func NewFile(dir, key string, logger *zap.Logger) *File {
	return &File{
		path:   filepath.Join(dir, key+".json"),
		logger: logger,
	}
}

// Read returns the file contents. A file that does not exist yet is reported
// as ok=false, not as an error.
func (f *File) Read() ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		f.logger.Error("Failed to read blob file",
			zap.String("path", f.path),
			zap.Error(err))
		return nil, false, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return data, true, nil
}

// Write replaces the file contents, creating parent directories as needed.
func (f *File) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		f.logger.Error("Failed to create data directory",
			zap.String("path", filepath.Dir(f.path)),
			zap.Error(err))
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		f.logger.Error("Failed to write blob file",
			zap.String("path", f.path),
			zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Verify interface compliance
var _ port.Store = (*File)(nil)

package blobstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
)

const createBlobTable = `
	CREATE TABLE IF NOT EXISTS kv_blobs (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// SQLite stores the blob in a one-row key-value table. It implements the same
// single-key contract as File, so the repository cannot tell them apart.
type SQLite struct {
	db     *sql.DB
	key    string
	logger *zap.Logger
}

// NewSQLite opens (or creates) the database at path and ensures the blob
// table exists. WAL mode keeps readers from blocking the writer.
func NewSQLite(path, key string, logger *zap.Logger) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(createBlobTable); err != nil {
		return nil, fmt.Errorf("failed to create blob table: %w", err)
	}

	logger.Info("SQLite blob store ready",
		zap.String("path", path),
		zap.String("key", key))

	return &SQLite{db: db, key: key, logger: logger}, nil
}

// Read returns the stored blob, or ok=false when the key has never been
// written.
func (s *SQLite) Read() ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow("SELECT value FROM kv_blobs WHERE key = ?", s.key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("Failed to read blob", zap.String("key", s.key), zap.Error(err))
		return nil, false, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, true, nil
}

// Write upserts the blob under the store's key.
func (s *SQLite) Write(data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO kv_blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, s.key, data)
	if err != nil {
		s.logger.Error("Failed to write blob", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Verify interface compliance
var _ port.Store = (*SQLite)(nil)

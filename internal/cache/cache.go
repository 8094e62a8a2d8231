// Package cache persists serialized canonical tables, one file per
// (kind, year, variant) key, in front of expensive re-downloads and
// re-parses. Staleness is judged from file modification time alone; a
// corrupt or missing file reads as a miss, never an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"vaschooldata/internal/errors"
	"vaschooldata/pkg/contracts/domain"
)

// Key identifies one cached table.
type Key struct {
	Kind    domain.DataKind
	Year    int
	Variant string
}

// Filename derives the deterministic on-disk name for a key.
func (k Key) Filename() string {
	variant := k.Variant
	if variant == "" {
		variant = "default"
	}
	return fmt.Sprintf("%s_%d_%s.json", k.Kind, k.Year, variant)
}

// Store is a file-per-key table cache rooted at an explicit directory.
// Writes are atomic (temp file plus rename), so concurrent writers to
// different keys are safe; callers serialize writers to the same key.
type Store struct {
	root   string
	logger *slog.Logger

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// NewStore creates the cache root if needed and returns a store bound to it.
// The root is always threaded in by the caller; there is no process-wide
// default directory.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.NewConfigError("cache root directory is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.NewStorageError("failed to create cache directory", err)
	}

	meter := otel.Meter("vaschooldata/cache")
	hits, _ := meter.Int64Counter("vaschooldata.cache_hits",
		metric.WithDescription("Cache reads served from disk"))
	misses, _ := meter.Int64Counter("vaschooldata.cache_misses",
		metric.WithDescription("Cache reads that fell through to normalization"))

	return &Store{root: root, logger: logger, hits: hits, misses: misses}, nil
}

// GetWide retrieves a cached wide table. Absence and corruption both read as
// a miss.
func (s *Store) GetWide(key Key) (*domain.WideTable, bool) {
	var table domain.WideTable
	if !s.read(key, &table) {
		return nil, false
	}
	return &table, true
}

// PutWide atomically persists a wide table under the key.
func (s *Store) PutWide(key Key, table *domain.WideTable) error {
	return s.write(key, table)
}

// GetTidy retrieves a cached tidy table.
func (s *Store) GetTidy(key Key) (*domain.TidyTable, bool) {
	var table domain.TidyTable
	if !s.read(key, &table) {
		return nil, false
	}
	return &table, true
}

// PutTidy atomically persists a tidy table under the key.
func (s *Store) PutTidy(key Key, table *domain.TidyTable) error {
	return s.write(key, table)
}

// IsStale reports whether the key's entry is older than maxAge. A missing
// entry is stale.
func (s *Store) IsStale(key Key, maxAge time.Duration) bool {
	info, err := os.Stat(s.path(key))
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > maxAge
}

func (s *Store) path(key Key) string {
	return filepath.Join(s.root, key.Filename())
}

func (s *Store) read(key Key, v interface{}) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		s.misses.Add(context.Background(), 1)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Treated as a miss: the entry will be rewritten on the next put.
		s.logger.Warn("discarding corrupt cache entry",
			slog.String("file", key.Filename()),
			slog.String("error", err.Error()))
		s.misses.Add(context.Background(), 1)
		return false
	}
	s.hits.Add(context.Background(), 1)
	return true
}

func (s *Store) write(key Key, v interface{}) error {
	tmp, err := os.CreateTemp(s.root, key.Filename()+".tmp-*")
	if err != nil {
		return errors.NewStorageError("failed to create cache temp file", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(v); err != nil {
		return errors.NewStorageError("failed to encode cache entry", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.NewStorageError("failed to sync cache entry", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError("failed to close cache temp file", err)
	}

	// Rename within one directory is atomic; readers see either the old
	// entry or the new one, never a partial write.
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.NewStorageError("failed to publish cache entry", err)
	}

	s.logger.Debug("cache entry written",
		slog.String("file", key.Filename()))
	return nil
}

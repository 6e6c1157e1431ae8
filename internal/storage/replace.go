package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store replacement strategies for a rebuild.
const (
	// ReplaceAtomic builds into <path>.<uuid>.tmp and renames it over path on
	// success. A failed rebuild leaves the previous index untouched.
	ReplaceAtomic = "atomic"
	// ReplaceEager deletes the previous index first and builds in place.
	// Categories committed before a failure stay in the new file.
	ReplaceEager = "eager"
)

// FillFunc populates a freshly created index.
type FillFunc func(ctx context.Context, db *sql.DB) error

// Build creates a new index at path with the schema in place, runs fill
// against it and closes it.
func Build(ctx context.Context, path string, opts Options, strategy string, fill FillFunc) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	switch strategy {
	case ReplaceEager:
		if err := RemoveIndex(path); err != nil {
			return err
		}
		return buildAt(ctx, path, opts, fill)

	case ReplaceAtomic, "":
		tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
		if err := buildAt(ctx, tmp, opts, fill); err != nil {
			if rmErr := RemoveIndex(tmp); rmErr != nil {
				log.Printf("Warning: failed to remove temporary index %s: %v", tmp, rmErr)
			}
			return err
		}
		// Sidecars of the old file must not be replayed against the new one.
		if err := removeSidecars(path); err != nil {
			return err
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("failed to move new index into place: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown replace strategy %q", strategy)
	}
}

func buildAt(ctx context.Context, path string, opts Options, fill FillFunc) error {
	opts.ReadOnly = false
	db, err := Open(ctx, path, opts)
	if err != nil {
		return err
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	fillErr := fill(ctx, db)
	if fillErr == nil {
		if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			fillErr = fmt.Errorf("failed to checkpoint index: %w", err)
		}
	}

	if err := db.Close(); err != nil && fillErr == nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	return fillErr
}

// RemoveIndex deletes an index file and its WAL sidecars. A missing file is
// not an error.
func RemoveIndex(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove index %s: %w", path, err)
	}
	return removeSidecars(path)
}

func removeSidecars(path string) error {
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s%s: %w", path, suffix, err)
		}
	}
	return nil
}

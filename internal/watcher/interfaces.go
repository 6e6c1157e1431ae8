package watcher

import (
	"context"

	"github.com/mvp-joe/dsindex/internal/indexer"
)

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source paths, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Rebuilder replaces the whole index. *indexer.Indexer satisfies it.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*indexer.RebuildStats, error)
}

package watcher

import (
	"context"
	"log"
	"time"
)

// WatchCoordinator turns debounced source changes into wholesale rebuilds.
// File events are paused while a rebuild runs; changes seen meanwhile
// trigger one more rebuild once it finishes.
type WatchCoordinator struct {
	files   FileWatcher
	rebuild Rebuilder
	pending chan []string

	// OnRebuild, if set, is called after every rebuild attempt.
	OnRebuild func(changed []string, err error)
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, rebuild Rebuilder) *WatchCoordinator {
	return &WatchCoordinator{
		files:   files,
		rebuild: rebuild,
		pending: make(chan []string, 1),
	}
}

// Start begins routing file changes to the rebuilder.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.cleanup()
			return ctx.Err()
		case changed := <-c.pending:
			c.runRebuild(ctx, changed)
		}
	}
}

func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

// handleFileChange queues a rebuild. A rebuild already queued absorbs the
// new batch, since every rebuild reads all sources anyway.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}
	select {
	case c.pending <- files:
	default:
	}
}

// runRebuild pauses file events (they keep accumulating), rebuilds, then
// resumes, which re-queues anything that changed in the meantime.
func (c *WatchCoordinator) runRebuild(ctx context.Context, changed []string) {
	log.Printf("%d source file(s) changed, rebuilding index...", len(changed))

	c.files.Pause()
	defer c.files.Resume()

	stats, err := c.rebuild.Rebuild(ctx)
	if err != nil {
		log.Printf("Error: rebuild failed: %v", err)
	} else {
		log.Printf("✓ Rebuilt index in %s (build %s)", stats.Duration.Round(time.Millisecond), stats.BuildID)
	}
	if c.OnRebuild != nil {
		c.OnRebuild(changed, err)
	}
}

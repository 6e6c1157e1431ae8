package mcp

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloadable is an interface for components that can be reloaded.
type Reloadable interface {
	Reload(ctx context.Context) error
}

// IndexWatcher reloads a Reloadable when the index file is replaced. It
// watches the parent directory because an atomic rebuild renames a new
// file over the old one.
type IndexWatcher struct {
	reloadable   Reloadable
	watcher      *fsnotify.Watcher
	indexPath    string
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	startOnce    sync.Once
	stopOnce     sync.Once
}

// NewIndexWatcher creates a watcher for the index file at indexPath.
func NewIndexWatcher(reloadable Reloadable, indexPath string) (*IndexWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	indexPath = filepath.Clean(indexPath)
	if err := watcher.Add(filepath.Dir(indexPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &IndexWatcher{
		reloadable:   reloadable,
		watcher:      watcher,
		indexPath:    indexPath,
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins watching for index replacement.
func (iw *IndexWatcher) Start(ctx context.Context) {
	iw.startOnce.Do(func() { go iw.watch(ctx) })
}

// Stop stops the watcher. It is safe to call more than once, and without Start.
func (iw *IndexWatcher) Stop() {
	iw.stopOnce.Do(func() {
		close(iw.stopCh)
		// A Start racing with Stop is resolved by startOnce
		iw.startOnce.Do(func() { close(iw.doneCh) })
		<-iw.doneCh
		iw.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (iw *IndexWatcher) watch(ctx context.Context) {
	defer close(iw.doneCh)

	var debounceTimer *time.Timer
	reloadCh := make(chan struct{}, 1)
	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-iw.stopCh:
			stopTimer()
			return

		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != iw.indexPath {
				continue
			}
			// Rename covers an atomic replace, Create/Write an eager rebuild
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			stopTimer()
			debounceTimer = time.AfterFunc(iw.debounceTime, func() {
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			})

		case <-reloadCh:
			iw.triggerReload(ctx)

		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Index watcher error: %v", err)
		}
	}
}

// triggerReload executes a reload of the reloadable component.
func (iw *IndexWatcher) triggerReload(ctx context.Context) {
	log.Printf("Index changed, reloading...")
	start := time.Now()

	if err := iw.reloadable.Reload(ctx); err != nil {
		log.Printf("Error reloading index: %v (keeping old state)", err)
		return
	}

	log.Printf("Reloaded index in %v", time.Since(start))
}

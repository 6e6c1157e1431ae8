package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/indexer"
	"github.com/mvp-joe/dsindex/internal/watcher"
)

var (
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the design system index",
	Long: `Index extracts every configured source and rebuilds the index wholesale:
  - Design tokens (JSON token files)
  - Vue and React components (props, slots, events, examples, CSS classes)
  - CSS utility classes
  - Documentation pages (Markdown/MDX)
  - Icons (icon registry module)

The previous index stays in place until the new one is complete when the
atomic replace strategy is configured (the default).

Examples:
  # Index the current directory
  dsindex index

  # Index with progress bars disabled
  dsindex index --quiet

  # Rebuild whenever a source changes
  dsindex index --watch

  # Index another project
  dsindex index -C /path/to/design-system
`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch sources and rebuild on change")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	return executeIndex(ctx, cmd.OutOrStdout(), rootDir, cfg, indexOptions{
		quiet: quietFlag,
		watch: watchFlag,
	})
}

type indexOptions struct {
	quiet bool
	watch bool
}

// executeIndex runs one rebuild and, in watch mode, keeps rebuilding on
// source changes until ctx is cancelled.
func executeIndex(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, opts indexOptions) error {
	progress := NewCLIProgressReporter(out, opts.quiet)
	idx := indexer.New(cfg.ToIndexerConfig(rootDir), progress)

	stats, err := idx.Rebuild(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return describeRebuildError(err)
	}

	if opts.quiet && !opts.watch {
		fmt.Fprintf(out, "Indexing complete: %d categories in %.2fs\n",
			len(stats.Counts), stats.Duration.Seconds())
	}
	if !opts.watch {
		return nil
	}

	fw, err := watcher.NewFileWatcher(cfg.WatchPaths(rootDir), watcher.SourceExtensions)
	if err != nil {
		return fmt.Errorf("failed to watch sources: %w", err)
	}
	coordinator := watcher.NewWatchCoordinator(fw, idx)
	coordinator.OnRebuild = func(changed []string, err error) {
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "✗ Rebuild failed: %v\n", describeRebuildError(err))
		}
	}

	if !opts.quiet {
		log.Println("Watching sources for changes (Ctrl+C to stop)...")
	}
	if err := coordinator.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	if !opts.quiet {
		log.Println("Watch mode stopped")
	}
	return nil
}

// describeRebuildError names the failing category and the error kind.
func describeRebuildError(err error) error {
	var catErr *indexer.CategoryError
	if !errors.As(err, &catErr) {
		return fmt.Errorf("indexing failed: %w", err)
	}
	switch {
	case errors.Is(err, indexer.ErrMissingSource):
		return fmt.Errorf("indexing failed: %s source is missing (configure it or use rebuild.mode=lenient): %w", catErr.Category, err)
	case errors.Is(err, indexer.ErrEmptyResult):
		return fmt.Errorf("indexing failed: %s produced no records: %w", catErr.Category, err)
	default:
		return fmt.Errorf("indexing failed: %w", err)
	}
}

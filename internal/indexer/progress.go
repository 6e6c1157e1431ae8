package indexer

// ProgressReporter provides callbacks for reporting rebuild progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnRebuildStart is called once with the categories about to run, in order.
	OnRebuildStart(categories []string)

	// OnCategoryStart is called before a category is extracted.
	OnCategoryStart(category string)

	// OnCategoryComplete is called after a category is stored. fromDefaults
	// is true when the bundled dataset replaced a missing or empty source.
	OnCategoryComplete(category string, records int, fromDefaults bool)

	// OnComplete is called when the rebuild finishes successfully.
	OnComplete(stats *RebuildStats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnRebuildStart(categories []string) {}

func (n *NoOpProgressReporter) OnCategoryStart(category string) {}

func (n *NoOpProgressReporter) OnCategoryComplete(category string, records int, fromDefaults bool) {}

func (n *NoOpProgressReporter) OnComplete(stats *RebuildStats) {}

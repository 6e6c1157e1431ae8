package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/dsindex/internal/indexer"
)

// CLIProgressReporter implements indexer.ProgressReporter with a progress
// bar over the rebuild categories.
type CLIProgressReporter struct {
	out   io.Writer
	quiet bool
	bar   *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet}
}

func (c *CLIProgressReporter) OnRebuildStart(categories []string) {
	if c.quiet {
		return
	}
	c.bar = progressbar.NewOptions(len(categories),
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnCategoryStart(category string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Describe(fmt.Sprintf("Indexing %-14s", category))
}

func (c *CLIProgressReporter) OnCategoryComplete(category string, records int, fromDefaults bool) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.RebuildStats) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	if c.quiet {
		return
	}
	printRebuildSummary(c.out, stats)
}

// printRebuildSummary prints per-category counts, marking categories served
// from the bundled defaults.
func printRebuildSummary(out io.Writer, stats *indexer.RebuildStats) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	total := 0
	for _, n := range stats.Counts {
		total += n
	}

	fmt.Fprintln(out)
	green.Fprintf(out, "✓ Indexing complete: %s records in %.1fs (%s mode)\n",
		formatNumber(total), stats.Duration.Seconds(), stats.Mode)
	for _, category := range indexer.Categories {
		n, ok := stats.Counts[category]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  %-14s %s", category+":", formatNumber(n))
		if slices.Contains(stats.Fallbacks, category) {
			yellow.Fprint(out, " (bundled defaults)")
		}
		fmt.Fprintln(out)
	}
}

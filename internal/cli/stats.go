package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/storage"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Show row counts per entity type and the metadata of the last build.

Displays:
- Build id, time and mode of the last rebuild
- Counts of tokens, components, CSS utilities, documentation pages and icons
- Tokens and components broken down by category`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}
	return executeStats(context.Background(), cmd.OutOrStdout(), rootDir, cfg, statsJSON)
}

type statsOutput struct {
	*storage.Stats
	Metadata map[string]string `json:"metadata"`
}

func executeStats(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, asJSON bool) error {
	db, err := openIndex(ctx, rootDir, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	store := storage.NewStore(db)

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	meta, err := store.Metadata(ctx)
	if err != nil {
		return err
	}

	// Output as JSON if flag set
	if asJSON {
		jsonBytes, err := json.MarshalIndent(statsOutput{Stats: stats, Metadata: meta}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	formatStats(out, cfg.IndexPath(rootDir), stats, meta)
	return nil
}

func formatStats(out io.Writer, indexPath string, stats *storage.Stats, meta map[string]string) {
	bold := color.New(color.Bold)

	bold.Fprintln(out, "Index:")
	fmt.Fprintf(out, "  Path:     %s\n", indexPath)
	fmt.Fprintf(out, "  Build:    %s\n", orUnknown(meta[storage.MetaBuildID]))
	fmt.Fprintf(out, "  Built:    %s\n", formatBuiltAt(meta[storage.MetaBuiltAt], time.Now()))
	fmt.Fprintf(out, "  Mode:     %s\n", orUnknown(meta[storage.MetaMode]))
	fmt.Fprintf(out, "  Schema:   %s\n", orUnknown(meta[storage.MetaSchemaVersion]))
	fmt.Fprintln(out)

	bold.Fprintln(out, "Records:")
	rows := []struct {
		label string
		n     int
	}{
		{"Tokens", stats.Tokens},
		{"Components", stats.Components},
		{"  props", stats.Props},
		{"  slots", stats.Slots},
		{"  events", stats.Events},
		{"  examples", stats.Examples},
		{"CSS utilities", stats.CSSUtilities},
		{"  classes", stats.UtilityClasses},
		{"Documentation", stats.Documentation},
		{"Icons", stats.Icons},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-15s %s\n", r.label+":", formatNumber(r.n))
	}

	printBreakdown(out, "Tokens by category:", stats.TokensByCategory)
	printBreakdown(out, "Components by category:", stats.ComponentsByCategory)
}

func printBreakdown(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(out)
	color.New(color.Bold).Fprintln(out, title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-15s %s\n", k+":", formatNumber(counts[k]))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// formatBuiltAt renders an RFC 3339 build time with its age relative to now.
func formatBuiltAt(builtAt string, now time.Time) string {
	ts, err := time.Parse(time.RFC3339, builtAt)
	if err != nil {
		return orUnknown(builtAt)
	}
	return fmt.Sprintf("%s (%s)", ts.Local().Format("2006-01-02 15:04:05"), formatTimeSince(ts.Unix(), now))
}

// formatTimeSince formats Unix timestamp as time ago, measured from now.
// Examples: "5m ago", "2h ago", "3d ago"
func formatTimeSince(unixSeconds int64, now time.Time) string {
	if unixSeconds == 0 {
		return "never"
	}

	since := now.Sub(time.Unix(unixSeconds, 0))

	days := int(since.Hours() / 24)
	hours := int(since.Hours()) % 24
	minutes := int(since.Minutes()) % 60

	if days > 0 {
		if hours > 0 {
			return fmt.Sprintf("%dd %dh ago", days, hours)
		}
		return fmt.Sprintf("%dd ago", days)
	}

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm ago", hours, minutes)
		}
		return fmt.Sprintf("%dh ago", hours)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	return fmt.Sprintf("%ds ago", int(since.Seconds()))
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

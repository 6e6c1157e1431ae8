package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/storage"
)

// Search targets of the search command.
const (
	searchDocs   = "docs"
	searchTokens = "tokens"
	searchIcons  = "icons"
)

var (
	searchTypeFlag  string
	searchLimitFlag int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search the index from the terminal",
	Long: `Search runs a full-text query against the index. The query uses SQLite
FTS5 syntax: plain words match all terms, "quoted phrases" match in order,
and prefix* matches word beginnings.

Examples:
  dsindex search spacing
  dsindex search --type tokens primary
  dsindex search --type icons arrow --limit 5
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchTypeFlag, "type", "t", searchDocs, "What to search: docs, tokens or icons")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 10, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}
	return executeSearch(cmd.Context(), cmd.OutOrStdout(), rootDir, cfg,
		searchTypeFlag, strings.Join(args, " "), searchLimitFlag)
}

// openIndex opens the project's index read-only.
func openIndex(ctx context.Context, rootDir string, cfg *config.Config) (*sql.DB, error) {
	db, err := storage.OpenReadOnly(ctx, cfg.IndexPath(rootDir), cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open index (run 'dsindex index' first): %w", err)
	}
	return db, nil
}

func executeSearch(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, kind, query string, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := openIndex(ctx, rootDir, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	store := storage.NewStore(db)

	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	switch kind {
	case searchDocs:
		hits, err := store.SearchDocumentation(ctx, query, limit)
		if err != nil {
			return err
		}
		for _, h := range hits {
			cyan.Fprintf(out, "%s", h.Title)
			faint.Fprintf(out, "  %s\n", h.Path)
			fmt.Fprintf(out, "  %s\n", highlightSnippet(h.Snippet))
		}
		return printResultCount(out, len(hits))

	case searchTokens:
		tokens, err := store.SearchTokens(ctx, query, limit)
		if err != nil {
			return err
		}
		for _, t := range tokens {
			cyan.Fprintf(out, "%-36s", t.Path)
			fmt.Fprintf(out, " %s", t.ValueRaw)
			if t.CSSVariable != nil {
				faint.Fprintf(out, "  %s", *t.CSSVariable)
			}
			fmt.Fprintln(out)
		}
		return printResultCount(out, len(tokens))

	case searchIcons:
		icons, err := store.SearchIcons(ctx, query, limit)
		if err != nil {
			return err
		}
		for _, ic := range icons {
			cyan.Fprintf(out, "%-28s", ic.Name)
			faint.Fprintf(out, " %s %s\n", ic.Type, ic.ViewBox)
		}
		return printResultCount(out, len(icons))

	default:
		return fmt.Errorf("unknown search type %q (want %s, %s or %s)", kind, searchDocs, searchTokens, searchIcons)
	}
}

func printResultCount(out io.Writer, n int) error {
	if n == 0 {
		color.New(color.FgYellow).Fprintln(out, "No results")
		return nil
	}
	fmt.Fprintf(out, "\n%d result(s)\n", n)
	return nil
}

var markPattern = regexp.MustCompile(`<mark>(.*?)</mark>`)

// highlightSnippet renders <mark> spans of a search snippet in color.
func highlightSnippet(snippet string) string {
	hl := color.New(color.FgYellow, color.Bold)
	return markPattern.ReplaceAllStringFunc(snippet, func(m string) string {
		return hl.Sprint(markPattern.FindStringSubmatch(m)[1])
	})
}

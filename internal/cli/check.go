package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/storage"
)

// errIntegrity is returned when the check finds issues, so the exit code
// is non-zero.
var errIntegrity = errors.New("index integrity check failed")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the index for consistency",
	Long: `Check verifies that every child row (props, slots, events, examples,
CSS classes, utility classes) has its parent and that the full-text mirrors
hold exactly one row per base row.

Exits non-zero when issues are found; rebuild with 'dsindex index'.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}
	return executeCheck(context.Background(), cmd.OutOrStdout(), rootDir, cfg)
}

func executeCheck(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config) error {
	db, err := openIndex(ctx, rootDir, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	issues, err := storage.CheckIntegrity(ctx, db)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		color.New(color.FgGreen).Fprintln(out, "✓ Index is consistent")
		return nil
	}

	red := color.New(color.FgRed)
	for _, issue := range issues {
		red.Fprintf(out, "✗ %s %s", issue.Kind, issue.Table)
		fmt.Fprintf(out, " (%d): %s\n", issue.Count, issue.Detail)
	}
	return fmt.Errorf("%w: %d issue(s)", errIntegrity, len(issues))
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/storage"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the index",
	Long: `Clean removes the index file and its WAL sidecars. The configuration
file (.dsindex/config.yml) is preserved.

Use cases:
  - Corrupted index reported by 'dsindex check'
  - Switching the storage driver
  - Leftover temporary files after an interrupted rebuild

Examples:
  dsindex clean
  dsindex clean --quiet
`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}
	return executeClean(cmd.OutOrStdout(), rootDir, cfg, cleanQuietFlag)
}

func executeClean(out io.Writer, rootDir string, cfg *config.Config, quiet bool) error {
	indexPath := cfg.IndexPath(rootDir)

	info, err := os.Stat(indexPath)
	if os.IsNotExist(err) {
		if !quiet {
			fmt.Fprintln(out, "No index found for this project")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat index: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)

	if err := storage.RemoveIndex(indexPath); err != nil {
		return fmt.Errorf("failed to remove index: %w", err)
	}

	if !quiet {
		fmt.Fprintf(out, "✓ Removed %s (~%.1f MB)\n", indexPath, sizeMB)
		fmt.Fprintln(out, "Run 'dsindex index' to rebuild")
	}
	return nil
}

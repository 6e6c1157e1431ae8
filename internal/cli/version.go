package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/storage"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dsindex",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "dsindex %s\n", Version)
	fmt.Fprintf(out, "Git commit:     %s\n", GitCommit)
	fmt.Fprintf(out, "Build date:     %s\n", BuildDate)
	fmt.Fprintf(out, "Schema version: %s\n", storage.SchemaVersion)
}

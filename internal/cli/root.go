package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
)

var (
	projectDir string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dsindex",
	Short: "dsindex - design system indexer",
	Long: `dsindex indexes a design system's tokens, components, CSS utilities,
documentation and icons into a single full-text searchable SQLite index,
and serves it to coding assistants over MCP.

Configuration is read from .dsindex/config.yml in the project root, with
DSINDEX_* environment variables taking precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initLogging sets the log format. Logs go to stderr so stdout stays clean
// for command output and the MCP stdio transport.
func initLogging() {
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		return
	}
	log.SetFlags(log.LstdFlags)
}

// projectRoot resolves the --dir flag to an absolute path.
func projectRoot() (string, error) {
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return abs, nil
}

// loadProject resolves the project root and loads its configuration.
func loadProject() (string, *config.Config, error) {
	rootDir, err := projectRoot()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		log.Printf("Project root: %s", rootDir)
	}
	return rootDir, cfg, nil
}

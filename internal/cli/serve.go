package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/mcp"
)

var serveNoWatchFlag bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"mcp"},
	Short:   "Start the MCP server over stdio",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
query the design system index.

The MCP server:
- Opens the index read-only (run 'dsindex index' first)
- Exposes token, component, documentation, CSS utility and icon tools
- Reloads the index when a rebuild replaces it
- Communicates via stdio (standard MCP transport)

Example:
  dsindex serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoWatchFlag, "no-watch", false, "Do not reload the index when it is rebuilt")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	serverConfig := serverConfigFor(rootDir, cfg)
	serverConfig.WatchIndex = !serveNoWatchFlag

	// stdout carries the MCP protocol; everything else goes to stderr
	fmt.Fprintf(os.Stderr, "dsindex MCP Server %s\n", Version)
	fmt.Fprintf(os.Stderr, "Index: %s\n\n", serverConfig.IndexPath)

	server, err := mcp.NewServer(ctx, serverConfig, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	return server.Serve(ctx)
}

// serverConfigFor maps the project configuration onto the MCP server.
func serverConfigFor(rootDir string, cfg *config.Config) *mcp.ServerConfig {
	serverConfig := mcp.DefaultServerConfig(cfg.IndexPath(rootDir))
	serverConfig.Storage = cfg.StorageOptions()
	serverConfig.CacheSize = cfg.Serve.CacheSize
	serverConfig.CacheTTL = time.Duration(cfg.Serve.CacheTTLSeconds) * time.Second
	return serverConfig
}

package mcp

import (
	"time"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/mvp-joe/dsindex/internal/storage"
)

// ServerConfig contains configuration for the MCP server.
type ServerConfig struct {
	// IndexPath is the index file served. It is reopened when a rebuild
	// replaces it.
	IndexPath string
	Storage   storage.Options

	// CacheSize bounds the component/utility lookup cache; 0 disables it.
	CacheSize int
	CacheTTL  time.Duration

	// WatchIndex reloads the index when the file is replaced.
	WatchIndex bool
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig(indexPath string) *ServerConfig {
	return &ServerConfig{
		IndexPath:  indexPath,
		CacheSize:  1000,
		CacheTTL:   5 * time.Minute,
		WatchIndex: true,
	}
}

// Default and maximum result counts of the search tools.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// TokensResponse is returned by get_tokens and search_tokens.
type TokensResponse struct {
	Tokens []extraction.Token `json:"tokens"`
	Total  int                `json:"total"`
}

// ComponentsResponse is returned by list_components.
type ComponentsResponse struct {
	Components []storage.ComponentSummary `json:"components"`
	Total      int                        `json:"total"`
}

// DocumentationResponse is returned by search_documentation.
type DocumentationResponse struct {
	Results []storage.DocumentHit `json:"results"`
	Total   int                   `json:"total"`
}

// UtilitiesResponse is returned by list_css_utilities.
type UtilitiesResponse struct {
	Utilities []storage.UtilitySummary `json:"utilities"`
	Total     int                      `json:"total"`
}

// IconsResponse is returned by search_icons.
type IconsResponse struct {
	Icons []extraction.Icon `json:"icons"`
	Total int               `json:"total"`
}

// StatsResponse is returned by get_stats.
type StatsResponse struct {
	*storage.Stats
	Metadata map[string]string `json:"metadata"`
}

// DocumentListResponse is returned by get_documentation without a path.
type DocumentListResponse struct {
	Pages []storage.DocumentSummary `json:"pages"`
	Total int                       `json:"total"`
}

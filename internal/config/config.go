// Package config loads project configuration for dsindex.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (DSINDEX_*)
//  2. Project config (.dsindex/config.yml)
//  3. Built-in defaults
//
// Nested fields map to underscores: storage.replace is DSINDEX_STORAGE_REPLACE.
package config

import (
	"path/filepath"
)

// DirName is the per-project directory holding config.yml and the index.
const DirName = ".dsindex"

// Config represents the complete dsindex configuration.
// It can be loaded from .dsindex/config.yml with environment variable overrides.
type Config struct {
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Rebuild RebuildConfig `yaml:"rebuild" mapstructure:"rebuild"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
}

// SourcesConfig locates the design-system artifacts, relative to the project root.
// An empty path disables that source.
type SourcesConfig struct {
	TokensDir          string   `yaml:"tokens_dir" mapstructure:"tokens_dir"`
	VueDir             string   `yaml:"vue_dir" mapstructure:"vue_dir"`
	ReactDir           string   `yaml:"react_dir" mapstructure:"react_dir"`
	DocsDir            string   `yaml:"docs_dir" mapstructure:"docs_dir"`
	IconsFile          string   `yaml:"icons_file" mapstructure:"icons_file"`
	ComponentPrefixVue string   `yaml:"component_prefix_vue" mapstructure:"component_prefix_vue"` // stripped from "MButton"
	CSSClassPrefixes   []string `yaml:"css_class_prefixes" mapstructure:"css_class_prefixes" validate:"dive,required"`
}

// StorageConfig defines where and how the index is written.
type StorageConfig struct {
	Path          string `yaml:"path" mapstructure:"path" validate:"required"`
	Driver        string `yaml:"driver" mapstructure:"driver" validate:"oneof=sqlite sqlite3"`  // modernc or mattn
	Replace       string `yaml:"replace" mapstructure:"replace" validate:"oneof=atomic eager"` // rebuild replacement strategy
	BusyTimeoutMS int    `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms" validate:"gte=0"`
}

// RebuildConfig controls the error policy of a rebuild.
type RebuildConfig struct {
	Mode      string   `yaml:"mode" mapstructure:"mode" validate:"oneof=strict lenient"`
	Mandatory []string `yaml:"mandatory" mapstructure:"mandatory" validate:"dive,oneof=tokens components css-utilities documentation icons"`
}

// ServeConfig tunes the MCP server.
type ServeConfig struct {
	CacheSize       int `yaml:"cache_size" mapstructure:"cache_size" validate:"gte=0"` // 0 disables the lookup cache
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			TokensDir:          "tokens",
			VueDir:             "packages/vue/src/components",
			ReactDir:           "packages/react/src/components",
			DocsDir:            "docs",
			IconsFile:          "packages/icons/index.js",
			ComponentPrefixVue: "M",
			CSSClassPrefixes:   []string{"mc-", "ml-", "mu-"},
		},
		Storage: StorageConfig{
			Path:          filepath.Join(DirName, "index.db"),
			Driver:        "sqlite",
			Replace:       "atomic",
			BusyTimeoutMS: 5000,
		},
		Rebuild: RebuildConfig{
			Mode:      "lenient",
			Mandatory: []string{"tokens", "components", "documentation"},
		},
		Serve: ServeConfig{
			CacheSize:       1000,
			CacheTTLSeconds: 300,
		},
	}
}

// IndexPath resolves the storage path against rootDir unless it is absolute.
func (c *Config) IndexPath(rootDir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(rootDir, c.Storage.Path)
}

// WatchPaths returns the configured source locations resolved against
// rootDir, skipping disabled ones.
func (c *Config) WatchPaths(rootDir string) []string {
	var paths []string
	for _, p := range []string{
		c.Sources.TokensDir,
		c.Sources.VueDir,
		c.Sources.ReactDir,
		c.Sources.DocsDir,
		c.Sources.IconsFile,
	} {
		if p == "" {
			continue
		}
		paths = append(paths, filepath.Join(rootDir, filepath.FromSlash(p)))
	}
	return paths
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DSINDEX_*)
// 2. Config file (.dsindex/config.yml or .dsindex/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, DirName))

	// Replace . with _ in env var names (e.g., DSINDEX_STORAGE_DRIVER)
	v.SetEnvPrefix("DSINDEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKeys are the scalar keys overridable from the environment. List values
// (css_class_prefixes, mandatory) are read as comma-separated strings.
var envKeys = []string{
	"sources.tokens_dir",
	"sources.vue_dir",
	"sources.react_dir",
	"sources.docs_dir",
	"sources.icons_file",
	"sources.component_prefix_vue",
	"sources.css_class_prefixes",
	"storage.path",
	"storage.driver",
	"storage.replace",
	"storage.busy_timeout_ms",
	"rebuild.mode",
	"rebuild.mandatory",
	"serve.cache_size",
	"serve.cache_ttl_seconds",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("sources.tokens_dir", defaults.Sources.TokensDir)
	v.SetDefault("sources.vue_dir", defaults.Sources.VueDir)
	v.SetDefault("sources.react_dir", defaults.Sources.ReactDir)
	v.SetDefault("sources.docs_dir", defaults.Sources.DocsDir)
	v.SetDefault("sources.icons_file", defaults.Sources.IconsFile)
	v.SetDefault("sources.component_prefix_vue", defaults.Sources.ComponentPrefixVue)
	v.SetDefault("sources.css_class_prefixes", defaults.Sources.CSSClassPrefixes)

	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.driver", defaults.Storage.Driver)
	v.SetDefault("storage.replace", defaults.Storage.Replace)
	v.SetDefault("storage.busy_timeout_ms", defaults.Storage.BusyTimeoutMS)

	v.SetDefault("rebuild.mode", defaults.Rebuild.Mode)
	v.SetDefault("rebuild.mandatory", defaults.Rebuild.Mandatory)

	v.SetDefault("serve.cache_size", defaults.Serve.CacheSize)
	v.SetDefault("serve.cache_ttl_seconds", defaults.Serve.CacheTTLSeconds)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

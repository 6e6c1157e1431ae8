package config

import (
	"os"

	"github.com/mvp-joe/dsindex/internal/indexer"
	"github.com/mvp-joe/dsindex/internal/storage"
)

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the project root all sources are relative to.
func (c *Config) ToIndexerConfig(rootDir string) indexer.Config {
	mandatory := c.Rebuild.Mandatory
	if mandatory == nil {
		// An explicit empty list means nothing is mandatory
		mandatory = []string{}
	}
	return indexer.Config{
		FS: os.DirFS(rootDir),
		Sources: indexer.Sources{
			TokensDir: c.Sources.TokensDir,
			VueDir:    c.Sources.VueDir,
			ReactDir:  c.Sources.ReactDir,
			DocsDir:   c.Sources.DocsDir,
			IconsFile: c.Sources.IconsFile,
		},
		VuePrefix:     c.Sources.ComponentPrefixVue,
		ClassPrefixes: c.Sources.CSSClassPrefixes,
		Mode:          c.Rebuild.Mode,
		Mandatory:     mandatory,
		StorePath:     c.IndexPath(rootDir),
		Store:         c.StorageOptions(),
		Replace:       c.Storage.Replace,
	}
}

// StorageOptions returns the connection options for the index.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:        c.Storage.Driver,
		BusyTimeoutMS: c.Storage.BusyTimeoutMS,
	}
}

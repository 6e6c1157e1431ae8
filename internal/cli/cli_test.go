package cli

// Test Plan for CLI commands:
// - Every subcommand is registered on the root command
// - index builds the index; lenient mode reports bundled defaults in the summary
// - index in strict mode names the category whose source is missing
// - index --watch rebuilds after a source change and stops on cancellation
// - search covers docs, tokens and icons, and rejects unknown types and bad queries
// - stats prints counts and metadata, as text and as JSON
// - check reports a consistent index
// - clean removes the index and tolerates a missing one
// - Commands reading the index fail with a hint when it does not exist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/config"
	"github.com/mvp-joe/dsindex/internal/indexer"
	"github.com/mvp-joe/dsindex/internal/storage"
)

const testColors = `{
  "color": {
    "primary-01": { "100": { "value": "#78be20", "description": "Brand green" } },
    "danger-01": { "100": { "value": "#c61112" } }
  }
}`

const testDoc = `---
title: Colors
---
Use the primary palette for calls to action.
`

// setupProject writes a small design system (tokens and docs only) and
// returns its root with a configuration pointing at it.
func setupProject(t *testing.T) (string, *config.Config) {
	t.Helper()

	rootDir := t.TempDir()
	writeFile(t, filepath.Join(rootDir, "tokens", "color.json"), testColors)
	writeFile(t, filepath.Join(rootDir, "docs", "foundations", "colors.md"), testDoc)

	cfg := config.Default()
	cfg.Sources.VueDir = "vue"
	cfg.Sources.ReactDir = "react"
	cfg.Sources.IconsFile = "icons/index.js"
	return rootDir, cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func buildProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	rootDir, cfg := setupProject(t)
	var out bytes.Buffer
	require.NoError(t, executeIndex(context.Background(), &out, rootDir, cfg, indexOptions{quiet: true}))
	return rootDir, cfg
}

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	t.Parallel()

	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"index", "serve", "search", "stats", "check", "clean", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestExecuteIndex_Lenient(t *testing.T) {
	t.Parallel()

	rootDir, cfg := setupProject(t)
	var out bytes.Buffer
	err := executeIndex(context.Background(), &out, rootDir, cfg, indexOptions{})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Indexing complete")
	assert.Contains(t, output, "lenient mode")
	assert.Contains(t, output, "components:")
	assert.Contains(t, output, "(bundled defaults)")
	assert.FileExists(t, cfg.IndexPath(rootDir))
}

func TestExecuteIndex_StrictMissingSource(t *testing.T) {
	t.Parallel()

	rootDir, cfg := setupProject(t)
	cfg.Rebuild.Mode = indexer.ModeStrict

	var out bytes.Buffer
	err := executeIndex(context.Background(), &out, rootDir, cfg, indexOptions{quiet: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, indexer.ErrMissingSource))
	assert.Contains(t, err.Error(), "components source is missing")
	assert.NoFileExists(t, cfg.IndexPath(rootDir))
}

func TestExecuteIndex_Watch(t *testing.T) {
	t.Parallel()

	rootDir, cfg := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		out bytes.Buffer
	)
	done := make(chan error, 1)
	go func() {
		done <- executeIndex(ctx, &lockedWriter{mu: &mu, w: &out}, rootDir, cfg, indexOptions{quiet: true, watch: true})
	}()

	indexPath := cfg.IndexPath(rootDir)
	require.Eventually(t, func() bool {
		_, err := os.Stat(indexPath)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	firstBuild := readBuildID(t, indexPath)

	// Give the watcher time to register before changing a source
	time.Sleep(300 * time.Millisecond)
	writeFile(t, filepath.Join(rootDir, "docs", "foundations", "spacing.md"), "# Spacing\n\nMagic unit scale.\n")

	require.Eventually(t, func() bool {
		return readBuildID(t, indexPath) != firstBuild
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop after cancellation")
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func readBuildID(t *testing.T, indexPath string) string {
	t.Helper()
	db, err := storage.OpenReadOnly(context.Background(), indexPath, storage.Options{})
	if err != nil {
		return ""
	}
	defer db.Close()
	meta, err := storage.NewStore(db).Metadata(context.Background())
	if err != nil {
		return ""
	}
	return meta[storage.MetaBuildID]
}

func TestExecuteSearch(t *testing.T) {
	t.Parallel()
	rootDir, cfg := buildProject(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		kind  string
		query string
		want  []string
	}{
		{"docs", searchDocs, "palette", []string{"Colors", "/foundations/colors", "palette", "1 result(s)"}},
		{"tokens", searchTokens, "green", []string{"color.primary-01.100", "#78be20"}},
		{"icons from bundled defaults", searchIcons, "navigation", []string{"ArrowDown16"}},
		{"no results", searchDocs, "zzzzunmatched", []string{"No results"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, executeSearch(ctx, &out, rootDir, cfg, tt.kind, tt.query, 10))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		err := executeSearch(ctx, &bytes.Buffer{}, rootDir, cfg, "colors", "x", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown search type")
	})

	t.Run("invalid query", func(t *testing.T) {
		err := executeSearch(ctx, &bytes.Buffer{}, rootDir, cfg, searchDocs, `"unterminated`, 10)
		require.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestExecuteStats(t *testing.T) {
	t.Parallel()
	rootDir, cfg := buildProject(t)
	ctx := context.Background()

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, executeStats(ctx, &out, rootDir, cfg, false))
		output := out.String()
		assert.Contains(t, output, "Mode:     lenient")
		assert.Contains(t, output, "Documentation:")
		assert.Contains(t, output, "Tokens by category:")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, executeStats(ctx, &out, rootDir, cfg, true))

		var decoded statsOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.NotNil(t, decoded.Stats)
		assert.Equal(t, 1, decoded.Documentation)
		assert.Equal(t, 2, decoded.TokensByCategory["color"])
		assert.Equal(t, indexer.ModeLenient, decoded.Metadata[storage.MetaMode])
		assert.NotEmpty(t, decoded.Metadata[storage.MetaBuildID])
	})
}

func TestExecuteCheck(t *testing.T) {
	t.Parallel()
	rootDir, cfg := buildProject(t)

	var out bytes.Buffer
	require.NoError(t, executeCheck(context.Background(), &out, rootDir, cfg))
	assert.Contains(t, out.String(), "Index is consistent")
}

func TestExecuteClean(t *testing.T) {
	t.Parallel()
	rootDir, cfg := buildProject(t)
	indexPath := cfg.IndexPath(rootDir)

	var out bytes.Buffer
	require.NoError(t, executeClean(&out, rootDir, cfg, false))
	assert.Contains(t, out.String(), "Removed")
	assert.NoFileExists(t, indexPath)

	out.Reset()
	require.NoError(t, executeClean(&out, rootDir, cfg, false))
	assert.Contains(t, out.String(), "No index found")

	out.Reset()
	require.NoError(t, executeClean(&out, rootDir, cfg, true))
	assert.Empty(t, out.String())
}

func TestCommands_MissingIndex(t *testing.T) {
	t.Parallel()
	rootDir, cfg := setupProject(t)
	ctx := context.Background()

	for name, run := range map[string]func() error{
		"search": func() error { return executeSearch(ctx, &bytes.Buffer{}, rootDir, cfg, searchDocs, "x", 10) },
		"stats":  func() error { return executeStats(ctx, &bytes.Buffer{}, rootDir, cfg, false) },
		"check":  func() error { return executeCheck(ctx, &bytes.Buffer{}, rootDir, cfg) },
	} {
		t.Run(name, func(t *testing.T) {
			err := run()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "run 'dsindex index' first")
		})
	}
}

func TestServerConfigFor(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Serve.CacheSize = 50
	cfg.Serve.CacheTTLSeconds = 60
	cfg.Storage.BusyTimeoutMS = 100

	sc := serverConfigFor("/project", cfg)
	assert.Equal(t, filepath.Join("/project", ".dsindex", "index.db"), sc.IndexPath)
	assert.Equal(t, 50, sc.CacheSize)
	assert.Equal(t, time.Minute, sc.CacheTTL)
	assert.Equal(t, 100, sc.Storage.BusyTimeoutMS)
	assert.True(t, sc.WatchIndex)
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printVersion(&out)
	assert.True(t, strings.HasPrefix(out.String(), "dsindex "+Version))
	assert.Contains(t, out.String(), "Schema version: "+storage.SchemaVersion)
}

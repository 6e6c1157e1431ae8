package mcp

// Test Plan for Server and tools:
// - Every tool is registered under its public name
// - Token tools: list by category, default "all", lookup by path, full-text search
// - get_component resolves names through slugs and honors case_sensitive
// - Documentation search returns <mark> snippets; get_documentation reads or lists pages
// - CSS utility and icon tools read what the index holds
// - get_stats reports counts and build metadata
// - Failures (unknown record, bad category, bad FTS syntax, missing argument,
//   unknown tool) are isError results, never protocol errors
// - Component lookups are cached and the cache is cleared by Reload
// - Reload swaps in a rebuilt index file

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/indexer"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/mvp-joe/dsindex/internal/indexer/parsers"
	"github.com/mvp-joe/dsindex/internal/storage"
)

// seedIndex fills db with the bundled dataset and the generated utilities.
func seedIndex(t *testing.T, db *sql.DB, buildID string) {
	t.Helper()
	ctx := context.Background()

	fb, err := indexer.LoadFallback(parsers.DefaultClassPrefixes)
	require.NoError(t, err)

	w := storage.NewWriter(db)
	require.NoError(t, w.InsertTokens(ctx, fb.Tokens()))
	require.NoError(t, w.InsertComponents(ctx, fb.Components()))
	require.NoError(t, w.InsertCSSUtilities(ctx, parsers.ExtractCSSUtilities(parsers.DefaultUtilityTables())))
	require.NoError(t, w.InsertDocumentation(ctx, fb.Documentation()))
	require.NoError(t, w.InsertIcons(ctx, fb.Icons()))
	require.NoError(t, w.SetMetadata(ctx, storage.MetaBuildID, buildID))
	require.NoError(t, w.SetMetadata(ctx, storage.MetaMode, indexer.ModeLenient))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := storage.NewTestDB(t)
	seedIndex(t, db, "build-1")

	s, err := NewStoreServer(storage.NewStore(db), &ServerConfig{CacheSize: 100}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// callJSON calls a tool that must succeed and decodes its JSON payload.
func callJSON(t *testing.T, s *Server, name string, args map[string]any, out any) {
	t.Helper()
	result, err := s.Call(context.Background(), name, args)
	require.NoError(t, err)
	text := resultText(t, result)
	require.False(t, result.IsError, "unexpected error result: %s", text)
	require.NoError(t, json.Unmarshal([]byte(text), out))
}

// callError calls a tool that must fail and returns the error text.
func callError(t *testing.T, s *Server, name string, args map[string]any) string {
	t.Helper()
	result, err := s.Call(context.Background(), name, args)
	require.NoError(t, err)
	require.True(t, result.IsError)
	return resultText(t, result)
}

func TestServer_ToolNames(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	assert.Equal(t, []string{
		"get_component",
		"get_css_utility",
		"get_documentation",
		"get_icon",
		"get_stats",
		"get_token",
		"get_tokens",
		"list_components",
		"list_css_utilities",
		"search_documentation",
		"search_icons",
		"search_tokens",
	}, s.ToolNames())
}

func TestServer_TokenTools(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	t.Run("get_tokens by category", func(t *testing.T) {
		var resp TokensResponse
		callJSON(t, s, "get_tokens", map[string]any{"category": "color"}, &resp)
		require.NotEmpty(t, resp.Tokens)
		assert.Equal(t, len(resp.Tokens), resp.Total)
		for _, tok := range resp.Tokens {
			assert.Equal(t, extraction.CategoryColor, tok.Category)
		}
	})

	t.Run("get_tokens defaults to all", func(t *testing.T) {
		var all, colors TokensResponse
		callJSON(t, s, "get_tokens", nil, &all)
		callJSON(t, s, "get_tokens", map[string]any{"category": "color"}, &colors)
		assert.Greater(t, all.Total, colors.Total)
	})

	t.Run("get_token", func(t *testing.T) {
		var tok extraction.Token
		callJSON(t, s, "get_token", map[string]any{"path": "color.primary-01.100"}, &tok)
		assert.Equal(t, "#78be20", tok.ValueRaw)
		require.NotNil(t, tok.Description)
		assert.Equal(t, "Primary brand green", *tok.Description)
	})

	t.Run("search_tokens", func(t *testing.T) {
		var resp TokensResponse
		callJSON(t, s, "search_tokens", map[string]any{"query": "green", "limit": 5.0}, &resp)
		require.NotEmpty(t, resp.Tokens)
		assert.Equal(t, "color.primary-01.100", resp.Tokens[0].Path)
	})

	t.Run("search_tokens with no match", func(t *testing.T) {
		var resp TokensResponse
		callJSON(t, s, "search_tokens", map[string]any{"query": "zzzzunmatched"}, &resp)
		assert.Empty(t, resp.Tokens)
		assert.Equal(t, 0, resp.Total)
	})
}

func TestServer_ComponentTools(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	t.Run("by slug", func(t *testing.T) {
		var c extraction.Component
		callJSON(t, s, "get_component", map[string]any{"name": "text-input"}, &c)
		assert.Equal(t, "TextInput", c.Name)
	})

	t.Run("by name", func(t *testing.T) {
		var c extraction.Component
		callJSON(t, s, "get_component", map[string]any{"name": "TextInput"}, &c)
		assert.Equal(t, "text-input", c.Slug)
	})

	t.Run("slug alias argument", func(t *testing.T) {
		var c extraction.Component
		callJSON(t, s, "get_component", map[string]any{"slug": "button"}, &c)
		assert.Equal(t, "Button", c.Name)
		assert.ElementsMatch(t, []string{"vue", "react"}, c.Frameworks)
		require.NotEmpty(t, c.Props)
	})

	t.Run("case sensitive", func(t *testing.T) {
		msg := callError(t, s, "get_component", map[string]any{"name": "Button", "case_sensitive": true})
		assert.Contains(t, msg, "not found")

		var c extraction.Component
		callJSON(t, s, "get_component", map[string]any{"name": "button", "case_sensitive": true}, &c)
		assert.Equal(t, "Button", c.Name)
	})

	t.Run("list_components", func(t *testing.T) {
		var resp ComponentsResponse
		callJSON(t, s, "list_components", nil, &resp)
		assert.Equal(t, 3, resp.Total)

		callJSON(t, s, "list_components", map[string]any{"category": "form"}, &resp)
		require.Len(t, resp.Components, 1)
		assert.Equal(t, "TextInput", resp.Components[0].Name)
	})

	t.Run("unknown component", func(t *testing.T) {
		assert.Contains(t, callError(t, s, "get_component", map[string]any{"name": "Carousel"}), "not found")
	})
}

func TestServer_DocumentationTools(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	t.Run("search_documentation", func(t *testing.T) {
		var resp DocumentationResponse
		callJSON(t, s, "search_documentation", map[string]any{"query": "magic"}, &resp)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "/foundations/spacing", resp.Results[0].Path)
		assert.Contains(t, resp.Results[0].Snippet, "<mark>")
	})

	t.Run("get_documentation by path", func(t *testing.T) {
		var doc extraction.Documentation
		callJSON(t, s, "get_documentation", map[string]any{"path": "/getting-started/installation"}, &doc)
		assert.Equal(t, "Installation", doc.Title)
	})

	t.Run("get_documentation lists pages", func(t *testing.T) {
		var resp DocumentListResponse
		callJSON(t, s, "get_documentation", nil, &resp)
		assert.Equal(t, 2, resp.Total)

		callJSON(t, s, "get_documentation", map[string]any{"category": parsers.DocFoundations}, &resp)
		require.Len(t, resp.Pages, 1)
		assert.Equal(t, "Spacing", resp.Pages[0].Title)
	})
}

func TestServer_UtilityAndIconTools(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	t.Run("list_css_utilities", func(t *testing.T) {
		var resp UtilitiesResponse
		callJSON(t, s, "list_css_utilities", map[string]any{"category": "layout"}, &resp)
		require.NotEmpty(t, resp.Utilities)
		for _, u := range resp.Utilities {
			assert.Equal(t, extraction.UtilityLayout, u.Category)
			assert.Positive(t, u.ClassCount)
		}
	})

	t.Run("get_css_utility", func(t *testing.T) {
		var u extraction.CSSUtility
		callJSON(t, s, "get_css_utility", map[string]any{"name": "Margin"}, &u)
		assert.Equal(t, "margin", u.Slug)
		assert.Contains(t, u.Classes, "mu-m-100")
	})

	t.Run("search_icons", func(t *testing.T) {
		var resp IconsResponse
		callJSON(t, s, "search_icons", map[string]any{"query": "navigation"}, &resp)
		require.Len(t, resp.Icons, 1)
		assert.Equal(t, "ArrowDown16", resp.Icons[0].Name)
	})

	t.Run("get_icon", func(t *testing.T) {
		var icon extraction.Icon
		callJSON(t, s, "get_icon", map[string]any{"name": "check24"}, &icon)
		assert.Equal(t, "Check24", icon.Name)
		assert.Equal(t, "0 0 24 24", icon.ViewBox)
	})
}

func TestServer_GetStats(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var resp StatsResponse
	callJSON(t, s, "get_stats", nil, &resp)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 3, resp.Components)
	assert.Equal(t, 2, resp.Documentation)
	assert.Equal(t, 2, resp.Icons)
	assert.Positive(t, resp.TokensByCategory[extraction.CategorySpacing])
	assert.Equal(t, "build-1", resp.Metadata[storage.MetaBuildID])
	assert.Equal(t, indexer.ModeLenient, resp.Metadata[storage.MetaMode])
}

func TestServer_ErrorResults(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"unknown token", "get_token", map[string]any{"path": "color.nope"}, "not found"},
		{"unknown token category", "get_tokens", map[string]any{"category": "sound"}, "invalid query"},
		{"unknown component category", "list_components", map[string]any{"category": "widgets"}, "invalid query"},
		{"unknown utility category", "list_css_utilities", map[string]any{"category": "print"}, "invalid query"},
		{"bad fts syntax", "search_documentation", map[string]any{"query": `"unterminated`}, "invalid query"},
		{"blank query", "search_icons", map[string]any{"query": "   "}, "invalid query"},
		{"missing query", "search_tokens", nil, "query parameter is required"},
		{"wrong argument type", "get_icon", map[string]any{"name": 16.0}, "name must be a string"},
		{"unknown page", "get_documentation", map[string]any{"path": "/nowhere"}, "not found"},
		{"unknown utility", "get_css_utility", map[string]any{"name": "Grid"}, "not found"},
		{"unknown tool", "delete_everything", nil, "unknown tool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, callError(t, s, tt.tool, tt.args), tt.want)
		})
	}
}

func TestServer_LookupCache(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var c extraction.Component
	callJSON(t, s, "get_component", map[string]any{"name": "button"}, &c)
	callJSON(t, s, "get_component", map[string]any{"name": "button"}, &c)
	callError(t, s, "get_component", map[string]any{"name": "missing"})

	require.Eventually(t, func() bool { return s.cache.size() == 1 }, time.Second, 10*time.Millisecond)
}

func TestServer_Reload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	indexPath := filepath.Join(t.TempDir(), "index.db")
	build := func(buildID string, withIcons bool) {
		err := storage.Build(ctx, indexPath, storage.Options{}, storage.ReplaceAtomic, func(ctx context.Context, db *sql.DB) error {
			seedIndex(t, db, buildID)
			if !withIcons {
				_, err := db.ExecContext(ctx, "DELETE FROM icons")
				return err
			}
			return nil
		})
		require.NoError(t, err)
	}
	build("build-1", true)

	config := DefaultServerConfig(indexPath)
	config.WatchIndex = false
	s, err := NewServer(ctx, config, "test")
	require.NoError(t, err)
	defer s.Close()

	var stats StatsResponse
	callJSON(t, s, "get_stats", nil, &stats)
	assert.Equal(t, "build-1", stats.Metadata[storage.MetaBuildID])
	assert.Equal(t, 2, stats.Icons)

	var c extraction.Component
	callJSON(t, s, "get_component", map[string]any{"name": "button"}, &c)

	build("build-2", false)
	require.NoError(t, s.Reload(ctx))
	require.Eventually(t, func() bool { return s.cache.size() == 0 }, time.Second, 10*time.Millisecond)

	callJSON(t, s, "get_stats", nil, &stats)
	assert.Equal(t, "build-2", stats.Metadata[storage.MetaBuildID])
	assert.Equal(t, 0, stats.Icons)
}

func TestServer_ReloadWithoutIndexFile(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	require.Error(t, s.Reload(context.Background()))
}

func TestNewServer_MissingIndex(t *testing.T) {
	t.Parallel()

	_, err := NewServer(context.Background(), DefaultServerConfig(filepath.Join(t.TempDir(), "none.db")), "test")
	require.Error(t, err)
}

package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/mvp-joe/dsindex/internal/indexer/parsers"
	"github.com/mvp-joe/dsindex/internal/storage"
)

type toolEntry struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// readOnlyTool builds a tool with the annotations every query tool shares.
func readOnlyTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	}, opts...)
	return mcp.NewTool(name, opts...)
}

func limitOption() mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (1-100, default: 10)"))
}

func (s *Server) tools() []toolEntry {
	return []toolEntry{
		{
			tool: readOnlyTool("get_tokens",
				"List design tokens of one category (color, spacing, typography, shadow, border, radius, screen, grid) or all of them.",
				mcp.WithString("category",
					mcp.Description("Token category, or 'all' (default)"))),
			handler: s.handleGetTokens,
		},
		{
			tool: readOnlyTool("get_token",
				"Get one design token by its dotted path (e.g. 'color.primary-01.100').",
				mcp.WithString("path", mcp.Required(), mcp.Description("Dotted token path"))),
			handler: s.handleGetToken,
		},
		{
			tool: readOnlyTool("search_tokens",
				"Full-text search over token names, paths, values and descriptions.",
				mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
				limitOption()),
			handler: s.handleSearchTokens,
		},
		{
			tool: readOnlyTool("get_component",
				"Get a component with its props, slots, events, examples and CSS classes.",
				mcp.WithString("name", mcp.Required(),
					mcp.Description("Component name or slug (e.g. 'TextInput' or 'text-input')")),
				mcp.WithBoolean("case_sensitive",
					mcp.Description("Match the slug case-sensitively (default: false)"))),
			handler: s.handleGetComponent,
		},
		{
			tool: readOnlyTool("list_components",
				"List components, optionally filtered by category (action, form, navigation, feedback, layout, data-display, other).",
				mcp.WithString("category", mcp.Description("Component category filter"))),
			handler: s.handleListComponents,
		},
		{
			tool: readOnlyTool("search_documentation",
				"Full-text search over documentation pages. Matches are wrapped in <mark></mark> in each snippet.",
				mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
				limitOption()),
			handler: s.handleSearchDocumentation,
		},
		{
			tool: readOnlyTool("get_documentation",
				"Get a documentation page by its route path (e.g. '/foundations/colors'). Without a path, lists pages.",
				mcp.WithString("path", mcp.Description("Route path of the page")),
				mcp.WithString("category", mcp.Description("Category filter when listing pages"))),
			handler: s.handleGetDocumentation,
		},
		{
			tool: readOnlyTool("list_css_utilities",
				"List CSS utility groups, optionally filtered by category (layout, utility).",
				mcp.WithString("category", mcp.Description("Utility category filter"))),
			handler: s.handleListUtilities,
		},
		{
			tool: readOnlyTool("get_css_utility",
				"Get a CSS utility group with all of its generated classes and examples.",
				mcp.WithString("name", mcp.Required(), mcp.Description("Utility name or slug (e.g. 'Margin')"))),
			handler: s.handleGetUtility,
		},
		{
			tool: readOnlyTool("search_icons",
				"Search icons by export name or icon name.",
				mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
				limitOption()),
			handler: s.handleSearchIcons,
		},
		{
			tool: readOnlyTool("get_icon",
				"Get an icon with its view box and SVG paths.",
				mcp.WithString("name", mcp.Required(), mcp.Description("Icon export name (e.g. 'ArrowDown16')"))),
			handler: s.handleGetIcon,
		},
		{
			tool:    readOnlyTool("get_stats", "Row counts per entity type and build metadata of the index."),
			handler: s.handleGetStats,
		},
	}
}

func (s *Server) handleGetTokens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	category, err := parseStringArg(args, "category", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if category == "" {
		category = storage.AllCategories
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		tokens, err := store.TokensByCategory(ctx, category)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(TokensResponse{Tokens: nonNil(tokens), Total: len(tokens)})
	})
}

func (s *Server) handleGetToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	path, err := parseStringArg(args, "path", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		token, err := store.TokenByPath(ctx, path)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(token)
	})
}

func (s *Server) handleSearchTokens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	query, err := parseStringArg(args, "query", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := parseClampedInt(args, "limit", DefaultSearchLimit, 1, MaxSearchLimit)

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		tokens, err := store.SearchTokens(ctx, query, limit)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(TokensResponse{Tokens: nonNil(tokens), Total: len(tokens)})
	})
}

func (s *Server) handleGetComponent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	name, err := firstStringArg(args, "name", "slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	caseSensitive := parseBoolArg(args, "case_sensitive", false)

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		key := name + "\x00" + strconv.FormatBool(caseSensitive)
		component, err := cachedLookup(s.cache, "component", key, func() (*extraction.Component, error) {
			return lookupComponent(ctx, store, name, caseSensitive)
		})
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(component)
	})
}

// lookupComponent tries the argument as a slug. A case-insensitive lookup
// then retries with the slugified form so "TextInput" finds "text-input".
func lookupComponent(ctx context.Context, store *storage.Store, name string, caseSensitive bool) (*extraction.Component, error) {
	component, err := store.ComponentBySlug(ctx, name, !caseSensitive)
	if caseSensitive || !errors.Is(err, storage.ErrNotFound) {
		return component, err
	}
	if slug := parsers.Slugify(name); slug != name {
		return store.ComponentBySlug(ctx, slug, true)
	}
	return nil, err
}

func (s *Server) handleListComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	category, err := parseStringArg(args, "category", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		components, err := store.ListComponents(ctx, category)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(ComponentsResponse{Components: nonNil(components), Total: len(components)})
	})
}

func (s *Server) handleSearchDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	query, err := parseStringArg(args, "query", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := parseClampedInt(args, "limit", DefaultSearchLimit, 1, MaxSearchLimit)

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		hits, err := store.SearchDocumentation(ctx, query, limit)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(DocumentationResponse{Results: nonNil(hits), Total: len(hits)})
	})
}

func (s *Server) handleGetDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	path, err := parseStringArg(args, "path", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := parseStringArg(args, "category", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		if path == "" {
			pages, err := store.ListDocumentation(ctx, category)
			if err != nil {
				return queryErrorResult(err), nil
			}
			return marshalToolResponse(DocumentListResponse{Pages: nonNil(pages), Total: len(pages)})
		}
		doc, err := store.DocumentByPath(ctx, path)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(doc)
	})
}

func (s *Server) handleListUtilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	category, err := parseStringArg(args, "category", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		utilities, err := store.ListUtilities(ctx, category)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(UtilitiesResponse{Utilities: nonNil(utilities), Total: len(utilities)})
	})
}

func (s *Server) handleGetUtility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	name, err := firstStringArg(args, "name", "slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		utility, err := cachedLookup(s.cache, "utility", name, func() (*extraction.CSSUtility, error) {
			u, err := store.UtilityBySlug(ctx, name)
			if errors.Is(err, storage.ErrNotFound) && parsers.Slugify(name) != name {
				return store.UtilityBySlug(ctx, parsers.Slugify(name))
			}
			return u, err
		})
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(utility)
	})
}

func (s *Server) handleSearchIcons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	query, err := parseStringArg(args, "query", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := parseClampedInt(args, "limit", DefaultSearchLimit, 1, MaxSearchLimit)

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		icons, err := store.SearchIcons(ctx, query, limit)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(IconsResponse{Icons: nonNil(icons), Total: len(icons)})
	})
}

func (s *Server) handleGetIcon(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseToolArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	name, err := parseStringArg(args, "name", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		icon, err := store.IconByName(ctx, name)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(icon)
	})
}

func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withStore(func(store *storage.Store) (*mcp.CallToolResult, error) {
		stats, err := store.Stats(ctx)
		if err != nil {
			return queryErrorResult(err), nil
		}
		metadata, err := store.Metadata(ctx)
		if err != nil {
			return queryErrorResult(err), nil
		}
		return marshalToolResponse(StatsResponse{Stats: stats, Metadata: metadata})
	})
}

// nonNil keeps empty result lists as [] in JSON.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/dsindex/internal/storage"
)

// ServerName is announced to MCP clients.
const ServerName = "dsindex"

// Server exposes the Query Layer as MCP tools. Every tool failure is an
// isError result; the process keeps serving.
type Server struct {
	config   *ServerConfig
	mu       sync.RWMutex
	db       *sql.DB // nil when the store was supplied by the caller
	store    *storage.Store
	cache    *lookupCache
	watcher  *IndexWatcher
	mcp      *server.MCPServer
	handlers map[string]server.ToolHandlerFunc
}

// NewServer opens the index read-only and registers every tool.
func NewServer(ctx context.Context, config *ServerConfig, version string) (*Server, error) {
	if config == nil || config.IndexPath == "" {
		return nil, fmt.Errorf("index path is required")
	}

	db, err := storage.OpenReadOnly(ctx, config.IndexPath, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open index (run 'dsindex index' first): %w", err)
	}

	s, err := newServer(storage.NewStore(db), config, version)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db

	if config.WatchIndex {
		watcher, err := NewIndexWatcher(s, config.IndexPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to watch index: %w", err)
		}
		s.watcher = watcher
	}
	return s, nil
}

// NewStoreServer serves an already open store. Reload is not available.
func NewStoreServer(store *storage.Store, config *ServerConfig, version string) (*Server, error) {
	if config == nil {
		config = &ServerConfig{}
	}
	return newServer(store, config, version)
}

func newServer(store *storage.Store, config *ServerConfig, version string) (*Server, error) {
	cache, err := newLookupCache(config.CacheSize, config.CacheTTL)
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		config:   config,
		store:    store,
		cache:    cache,
		handlers: make(map[string]server.ToolHandlerFunc),
		mcp: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(true),
		),
	}
	for _, t := range s.tools() {
		s.handlers[t.tool.Name] = t.handler
		s.mcp.AddTool(t.tool, t.handler)
	}
	return s, nil
}

// Reload reopens the index file and drops cached lookups. On failure the
// previous index keeps serving.
func (s *Server) Reload(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("server has no index file to reload")
	}
	db, err := storage.OpenReadOnly(ctx, s.config.IndexPath, s.config.Storage)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.db
	s.db = db
	s.store = storage.NewStore(db)
	s.cache.clear()
	s.mu.Unlock()

	return old.Close()
}

// withStore runs fn against the current store. Reload waits for it.
func (s *Server) withStore(fn func(*storage.Store) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.store)
}

// Call invokes a tool in-process, the same way an MCP client would.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool %q", name)), nil
	}
	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return handler(ctx, request)
}

// ToolNames lists the registered tools, sorted.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Start(ctx)
		defer s.watcher.Stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.cache.close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

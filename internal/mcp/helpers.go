package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/dsindex/internal/storage"
)

// parseToolArguments validates and extracts the arguments map from an MCP tool request.
// Missing arguments are an empty map; anything else but an object is an error result.
func parseToolArguments(request mcp.CallToolRequest) (map[string]any, *mcp.CallToolResult) {
	if request.Params.Arguments == nil {
		return map[string]any{}, nil
	}
	argsMap, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, mcp.NewToolResultError("invalid arguments format")
	}
	return argsMap, nil
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// queryErrorResult turns a Query Layer failure into an isError result.
// Lookups that found nothing and rejected queries are expected outcomes for
// a long-lived server, so they never become protocol errors.
func queryErrorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	case errors.Is(err, storage.ErrInvalidQuery):
		return mcp.NewToolResultError(fmt.Sprintf("invalid query: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err))
	}
}

package mcp

import (
	"fmt"
	"strconv"
	"strings"
)

// parseStringArg extracts a string argument from an MCP arguments map.
// Returns an error if the argument is required but missing or invalid.
func parseStringArg(argsMap map[string]any, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok || val == nil {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// parseIntArg extracts an integer argument from an MCP arguments map.
// MCP sends numbers as float64; some clients send numeric strings.
// Returns defaultVal if the argument is missing or invalid.
func parseIntArg(argsMap map[string]any, key string, defaultVal int) int {
	switch v := argsMap[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		return defaultVal
	default:
		return defaultVal
	}
}

// parseBoolArg extracts a boolean argument from an MCP arguments map.
// Returns defaultVal if the argument is missing or invalid.
func parseBoolArg(argsMap map[string]any, key string, defaultVal bool) bool {
	if b, ok := argsMap[key].(bool); ok {
		return b
	}
	return defaultVal
}

// parseClampedInt extracts an integer argument and clamps it to [lo, hi].
// Returns defaultVal if the argument is missing or invalid.
func parseClampedInt(argsMap map[string]any, key string, defaultVal, lo, hi int) int {
	return min(max(parseIntArg(argsMap, key, defaultVal), lo), hi)
}

// firstStringArg returns the first non-empty string among keys, so a tool
// can accept aliases such as "name" and "slug".
func firstStringArg(argsMap map[string]any, keys ...string) (string, error) {
	for _, key := range keys {
		s, err := parseStringArg(argsMap, key, false)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("%s parameter is required", keys[0])
}

package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringArg(t *testing.T) {
	t.Parallel()

	t.Run("required string present", func(t *testing.T) {
		argsMap := map[string]any{"path": "color.primary-01.100"}
		result, err := parseStringArg(argsMap, "path", true)
		require.NoError(t, err)
		assert.Equal(t, "color.primary-01.100", result)
	})

	t.Run("required string missing", func(t *testing.T) {
		result, err := parseStringArg(map[string]any{}, "path", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path parameter is required")
		assert.Empty(t, result)
	})

	t.Run("required string null", func(t *testing.T) {
		_, err := parseStringArg(map[string]any{"path": nil}, "path", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path parameter is required")
	})

	t.Run("required string empty", func(t *testing.T) {
		result, err := parseStringArg(map[string]any{"path": ""}, "path", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path cannot be empty")
		assert.Empty(t, result)
	})

	t.Run("optional string missing", func(t *testing.T) {
		result, err := parseStringArg(map[string]any{}, "category", false)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("optional string empty", func(t *testing.T) {
		result, err := parseStringArg(map[string]any{"category": ""}, "category", false)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := parseStringArg(map[string]any{"path": 42.0}, "path", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path must be a string")
	})
}

func TestParseIntArg(t *testing.T) {
	t.Parallel()

	t.Run("float64 from JSON", func(t *testing.T) {
		assert.Equal(t, 25, parseIntArg(map[string]any{"limit": 25.0}, "limit", 10))
	})

	t.Run("int", func(t *testing.T) {
		assert.Equal(t, 7, parseIntArg(map[string]any{"limit": 7}, "limit", 10))
	})

	t.Run("missing uses default", func(t *testing.T) {
		assert.Equal(t, 10, parseIntArg(map[string]any{}, "limit", 10))
	})

	t.Run("numeric string", func(t *testing.T) {
		assert.Equal(t, 25, parseIntArg(map[string]any{"limit": " 25"}, "limit", 10))
	})

	t.Run("wrong type uses default", func(t *testing.T) {
		assert.Equal(t, 10, parseIntArg(map[string]any{"limit": "many"}, "limit", 10))
		assert.Equal(t, 10, parseIntArg(map[string]any{"limit": true}, "limit", 10))
	})
}

func TestParseBoolArg(t *testing.T) {
	t.Parallel()

	t.Run("true", func(t *testing.T) {
		assert.True(t, parseBoolArg(map[string]any{"case_sensitive": true}, "case_sensitive", false))
	})

	t.Run("false overrides default", func(t *testing.T) {
		assert.False(t, parseBoolArg(map[string]any{"case_sensitive": false}, "case_sensitive", true))
	})

	t.Run("missing uses default", func(t *testing.T) {
		assert.True(t, parseBoolArg(map[string]any{}, "case_sensitive", true))
	})

	t.Run("wrong type uses default", func(t *testing.T) {
		assert.True(t, parseBoolArg(map[string]any{"case_sensitive": "false"}, "case_sensitive", true))
	})
}

func TestParseClampedInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"within range", map[string]any{"limit": 5.0}, 5},
		{"below min", map[string]any{"limit": 0.0}, 1},
		{"negative", map[string]any{"limit": -3.0}, 1},
		{"above max", map[string]any{"limit": 500.0}, 100},
		{"missing", map[string]any{}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseClampedInt(tt.args, "limit", 10, 1, 100))
		})
	}
}

func TestFirstStringArg(t *testing.T) {
	t.Parallel()

	t.Run("first key wins", func(t *testing.T) {
		got, err := firstStringArg(map[string]any{"name": "Button", "slug": "text-input"}, "name", "slug")
		require.NoError(t, err)
		assert.Equal(t, "Button", got)
	})

	t.Run("falls back to alias", func(t *testing.T) {
		got, err := firstStringArg(map[string]any{"slug": "text-input"}, "name", "slug")
		require.NoError(t, err)
		assert.Equal(t, "text-input", got)
	})

	t.Run("none present", func(t *testing.T) {
		_, err := firstStringArg(map[string]any{}, "name", "slug")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name parameter is required")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := firstStringArg(map[string]any{"name": true}, "name", "slug")
		require.Error(t, err)
	})
}

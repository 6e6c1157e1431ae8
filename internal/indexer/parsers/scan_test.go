package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for lexical helpers:
// - matchBrace skips strings, template literals and comments
// - splitTopLevel respects nesting and arrow functions
// - literalUnion only accepts unions of string literals, ignoring undefined and null members
// - splitCamel / Slugify handle acronyms and digits

func TestMatchBrace(t *testing.T) {
	t.Parallel()

	src := "{ a: '}', b: `}`, /* } */ c: { d: 1 } // }\n}"
	end, ok := matchBrace(src, 0)
	require.True(t, ok)
	assert.Equal(t, len(src)-1, end)

	_, ok = matchBrace("{ unterminated", 0)
	assert.False(t, ok)

	_, ok = matchBrace("abc", 0)
	assert.False(t, ok)
}

func TestSplitTopLevel(t *testing.T) {
	t.Parallel()

	parts := splitTopLevel("a: 1, b: { c: 2, d: 3 }, e: (x, y) => x, f: Array<A, B>", ",")
	require.Len(t, parts, 4)
	assert.Equal(t, "a: 1", parts[0])
	assert.Equal(t, " b: { c: 2, d: 3 }", parts[1])
	assert.Equal(t, " e: (x, y) => x", parts[2])
	assert.Equal(t, " f: Array<A, B>", parts[3])
}

func TestLiteralUnion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{`'s' | 'm' | 'l'`, []string{"s", "m", "l"}},
		{`| "primary" | "secondary"`, []string{"primary", "secondary"}},
		{`'only'`, []string{"only"}},
		{`string`, nil},
		{`'s' | number`, nil},
		{`'s' | 'm' | undefined`, []string{"s", "m"}},
		{`null | 'a' | 'b'`, []string{"a", "b"}},
		{`'x' | null | undefined`, []string{"x"}},
		{`'a|b' | 'c'`, []string{"a|b", "c"}},
		{`undefined`, nil},
		{`null | undefined`, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, literalUnion(tt.in), tt.in)
	}
}

func TestStripComments(t *testing.T) {
	t.Parallel()

	out := stripComments("a // gone\nurl = 'https://x.io' /* gone */ b")
	assert.Equal(t, "a \nurl = 'https://x.io'  b", out)
}

func TestSplitCamelAndSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "With Left Icon", splitCamel("WithLeftIcon"))
	assert.Equal(t, "XL Size", splitCamel("XLSize"))
	assert.Equal(t, "Size 2", splitCamel("Size_2"))

	assert.Equal(t, "data-table", Slugify("DataTable"))
	assert.Equal(t, "button", Slugify("Button"))
	assert.Equal(t, "kpi-item", Slugify("KPIItem"))
}

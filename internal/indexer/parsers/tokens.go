package parsers

import (
	"fmt"
	"io/fs"
	"log"
	"math"
	"path"
	"regexp"
	"strings"

	"github.com/mvp-joe/dsindex/internal/files"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/tidwall/gjson"
)

// SpacingMultipliers is the magic-unit scale (1 mu = 16px).
var SpacingMultipliers = []float64{
	0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 2.5, 3, 3.5, 4, 5, 6, 7, 8, 9, 10,
}

// BaseFontSize converts rem to px.
const BaseFontSize = 16

// compositeFields are decomposed into TokenProperty rows, in this order.
var compositeFields = []string{"x", "y", "blur", "spread", "opacity"}

// compositeCategories always decompose their leaves.
var compositeCategories = map[string]bool{
	extraction.CategoryShadow: true,
}

var trailingDigitsSuffix = regexp.MustCompile(`-\d+$`)

// TokenExtractor reads design tokens from a directory of JSON sources.
//
// For a category C the first existing source wins:
//
//	<root>/properties/C/**/*.json
//	<root>/C/**/*.json
//	<root>/C.json
//
// Spacing is generated from SpacingMultipliers and needs no source.
type TokenExtractor struct {
	fsys fs.FS
	root string
}

// NewTokenExtractor creates a token extractor rooted at root inside fsys.
func NewTokenExtractor(fsys fs.FS, root string) *TokenExtractor {
	return &TokenExtractor{fsys: fsys, root: root}
}

// ExtractAll extracts every category. Categories without a source are
// skipped; the caller decides whether that matters.
func (e *TokenExtractor) ExtractAll() ([]extraction.Token, error) {
	var all []extraction.Token
	for _, category := range extraction.TokenCategories {
		tokens, err := e.Extract(category)
		if err != nil {
			if files.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		all = append(all, tokens...)
	}
	return all, nil
}

// Extract returns the tokens of one category. A missing source yields an
// error wrapping fs.ErrNotExist; bad entries are logged and skipped.
func (e *TokenExtractor) Extract(category string) ([]extraction.Token, error) {
	if category == extraction.CategorySpacing {
		return SpacingScale(), nil
	}

	sources, err := e.sourceFiles(category)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tokens []extraction.Token
	for _, src := range sources {
		data, err := fs.ReadFile(e.fsys, src)
		if err != nil {
			log.Printf("Warning: failed to read token source %s: %v", src, err)
			continue
		}
		for _, tok := range ParseTokenJSON(category, data, src) {
			if seen[tok.Path] {
				log.Printf("Warning: duplicate token path %s in %s, keeping first", tok.Path, src)
				continue
			}
			seen[tok.Path] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func (e *TokenExtractor) sourceFiles(category string) ([]string, error) {
	jsonFiles := files.MustGlob("**/*.json")
	for _, dir := range []string{
		path.Join(e.root, "properties", category),
		path.Join(e.root, category),
	} {
		list, err := files.ListFiles(e.fsys, dir, jsonFiles)
		if err == nil {
			return list, nil
		}
		if !files.IsNotExist(err) {
			return nil, err
		}
	}

	single := path.Join(e.root, category+".json")
	if files.Exists(e.fsys, single) {
		return []string{strings.TrimPrefix(path.Clean(single), "/")}, nil
	}
	return nil, fmt.Errorf("%s tokens under %s: %w", category, e.root, fs.ErrNotExist)
}

// ParseTokenJSON walks a nested token object in document order. A leaf is an
// object with a "value" field; everything else is a group. source is only
// used in warnings.
func ParseTokenJSON(category string, data []byte, source string) []extraction.Token {
	if !gjson.ValidBytes(data) {
		log.Printf("Warning: invalid JSON in token source %s, skipping", source)
		return nil
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		log.Printf("Warning: token source %s is not an object, skipping", source)
		return nil
	}

	// Style-dictionary files usually nest everything under the category key
	if inner := root.Get(category); inner.IsObject() && countKeys(root) == 1 {
		root = inner
	}

	var tokens []extraction.Token
	walkTokens(root, nil, func(segments []string, leaf gjson.Result) {
		tok, err := buildToken(category, segments, leaf)
		if err != nil {
			log.Printf("Warning: skipping token %s.%s in %s: %v", category, strings.Join(segments, "."), source, err)
			return
		}
		tokens = append(tokens, tok)
	})
	return tokens
}

func walkTokens(node gjson.Result, prefix []string, visit func([]string, gjson.Result)) {
	node.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		segments := append(append([]string{}, prefix...), key.String())
		if value.Get("value").Exists() {
			visit(segments, value)
			return true
		}
		walkTokens(value, segments, visit)
		return true
	})
}

func buildToken(category string, segments []string, leaf gjson.Result) (extraction.Token, error) {
	value := leaf.Get("value")

	var raw string
	switch {
	case value.Type == gjson.String:
		raw = strings.TrimSpace(value.Str)
	case value.Type == gjson.Number:
		raw = value.Raw
	case value.IsObject():
		raw = compositeRaw(value)
	default:
		return extraction.Token{}, fmt.Errorf("unsupported value %s", value.Raw)
	}
	if raw == "" {
		return extraction.Token{}, fmt.Errorf("empty value")
	}

	rel := strings.Join(segments, ".")
	dashed := strings.ReplaceAll(rel, ".", "-")
	pv := ParseValue(raw)

	tok := extraction.Token{
		Category:     category,
		Name:         dashed,
		Path:         category + "." + rel,
		CSSVariable:  extraction.Ptr("--" + category + "-" + dashed),
		SCSSVariable: extraction.Ptr("$" + category + "-" + dashed),
		ValueRaw:     raw,
		ValueNumber:  pv.Number,
		ValueUnit:    pv.Unit,
		Platform:     extraction.DefaultPlatform,
		Subcategory:  extraction.Ptr(trailingDigitsSuffix.ReplaceAllString(segments[0], "")),
	}
	if desc := firstString(leaf, "description", "comment"); desc != "" {
		tok.Description = &desc
	}
	if platform := firstString(leaf, "platform"); platform != "" {
		tok.Platform = platform
	}

	if compositeCategories[category] || value.IsObject() {
		holder := leaf
		if value.IsObject() {
			holder = value
		}
		tok.Properties = decompose(holder)
	}
	return tok, nil
}

func decompose(holder gjson.Result) []extraction.TokenProperty {
	var props []extraction.TokenProperty
	for _, field := range compositeFields {
		v := holder.Get(field)
		if !v.Exists() {
			continue
		}
		raw := v.String()
		pv := ParseValue(raw)
		props = append(props, extraction.TokenProperty{
			Property:    field,
			Value:       raw,
			ValueNumber: pv.Number,
			ValueUnit:   pv.Unit,
		})
	}
	return props
}

// compositeRaw renders an object value as CSS shorthand: x y blur spread color.
func compositeRaw(value gjson.Result) string {
	var parts []string
	for _, field := range []string{"x", "y", "blur", "spread", "color"} {
		if v := value.Get(field); v.Exists() && v.String() != "" {
			parts = append(parts, v.String())
		}
	}
	return strings.Join(parts, " ")
}

func firstString(node gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := node.Get(k); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func countKeys(node gjson.Result) int {
	n := 0
	node.ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}

// SpacingScale generates the magic-unit spacing tokens.
func SpacingScale() []extraction.Token {
	tokens := make([]extraction.Token, 0, len(SpacingMultipliers))
	for _, m := range SpacingMultipliers {
		tokens = append(tokens, SpacingToken(SpacingName(m), m))
	}
	return tokens
}

// SpacingName returns the magic-unit name of a multiplier (0.25 -> mu025, 10 -> mu1000).
func SpacingName(multiplier float64) string {
	return fmt.Sprintf("mu%03d", int(math.Round(multiplier*100)))
}

// SpacingToken builds one spacing token: valueRaw "<m>rem", valueComputed "<m*16>px".
func SpacingToken(name string, multiplier float64) extraction.Token {
	m := multiplier
	rem := "rem"
	return extraction.Token{
		Category:      extraction.CategorySpacing,
		Subcategory:   extraction.Ptr("magic-unit"),
		Name:          name,
		Path:          extraction.CategorySpacing + "." + name,
		CSSVariable:   extraction.Ptr("--" + extraction.CategorySpacing + "-" + name),
		SCSSVariable:  extraction.Ptr("$" + name),
		ValueRaw:      formatNumber(m) + "rem",
		ValueNumber:   &m,
		ValueUnit:     &rem,
		ValueComputed: extraction.Ptr(formatNumber(m*BaseFontSize) + "px"),
		Description:   extraction.Ptr(fmt.Sprintf("%s magic unit (%spx)", formatNumber(m), formatNumber(m*BaseFontSize))),
		Platform:      extraction.DefaultPlatform,
	}
}

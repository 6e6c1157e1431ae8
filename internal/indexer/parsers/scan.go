package parsers

import (
	"regexp"
	"strings"
	"unicode"
)

// Small lexical helpers shared by the JS/TS/Vue heuristics. None of them is a
// parser; they only track quotes and bracket depth well enough to cut
// declarations out of real-world source.

// matchBrace returns the index of the bracket closing the one at open.
// Quotes, template literals and comments are skipped.
func matchBrace(s string, open int) (int, bool) {
	if open < 0 || open >= len(s) {
		return 0, false
	}
	opening := s[open]
	var closing byte
	switch opening {
	case '{':
		closing = '}'
	case '[':
		closing = ']'
	case '(':
		closing = ')'
	default:
		return 0, false
	}

	depth := 0
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(s, i)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return 0, false
			}
			i += end + 3
		case c == opening:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// blockAfter returns the contents between the bracket at open and its match.
func blockAfter(s string, open int) (string, bool) {
	end, ok := matchBrace(s, open)
	if !ok {
		return "", false
	}
	return s[open+1 : end], true
}

// skipString returns the index of the quote closing the string starting at i.
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		}
	}
	return len(s) - 1
}

// splitTopLevel splits s on any of seps at bracket depth 0, outside strings.
// "=>" never counts as a closing angle bracket.
func splitTopLevel(s string, seps string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(s, i)
		case c == '{' || c == '[' || c == '(' || c == '<':
			depth++
		case c == '>' && i > 0 && s[i-1] == '=':
			// arrow
		case c == '}' || c == ']' || c == ')' || c == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.IndexByte(seps, c) >= 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])

	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	lineComment  = regexp.MustCompile(`(?m)(^|[^:\\])//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// stripComments removes // and /* */ comments. "://" in URLs is preserved.
func stripComments(s string) string {
	s = blockComment.ReplaceAllString(s, "")
	return lineComment.ReplaceAllString(s, "$1")
}

var stringLiteral = regexp.MustCompile(`'([^'\\]*(?:\\.[^'\\]*)*)'|"([^"\\]*(?:\\.[^"\\]*)*)"|` + "`([^`]*)`")

// stringLiterals returns the contents of every quoted literal in s.
func stringLiterals(s string) []string {
	var out []string
	for _, m := range stringLiteral.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1]+m[2]+m[3])
	}
	return out
}

// unquote strips one pair of matching quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

var stringUnion = regexp.MustCompile(`^\s*(?:'[^']*'|"[^"]*")(?:\s*\|\s*(?:'[^']*'|"[^"]*"))*\s*$`)

// literalUnion returns the members of a union of string literals
// ('s' | 'm' | 'l'), or nil when typeText is anything else. undefined and
// null members are dropped first, so optional unions keep their options.
func literalUnion(typeText string) []string {
	var members []string
	for _, m := range splitTopLevel(typeText, "|") {
		switch m = strings.TrimSpace(m); m {
		case "undefined", "null":
		default:
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return nil
	}
	t := strings.Join(members, " | ")
	if !stringUnion.MatchString(t) {
		return nil
	}
	return stringLiterals(t)
}

// splitCamel turns "WithLeftIcon" into "With Left Icon" and "XLSize" into "XL Size".
func splitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		if r == '_' {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Slugify turns "DataTable" into "data-table".
func Slugify(s string) string {
	words := strings.Fields(splitCamel(strings.NewReplacer("-", " ", ".", " ").Replace(s)))
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

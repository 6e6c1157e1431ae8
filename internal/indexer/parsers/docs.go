package parsers

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/dsindex/internal/files"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// Documentation categories.
const (
	DocComponents  = "components"
	DocFoundations = "foundations"
	DocPatterns    = "patterns"
	DocGuides      = "guides"
	DocOther       = "other"
)

// UntitledDocument is the title of a page with no title anywhere.
const UntitledDocument = "Untitled"

// DocKeywordVocabulary is matched case-insensitively against cleaned content.
var DocKeywordVocabulary = []string{
	"accessibility", "responsive", "breakpoint", "color", "spacing", "typography",
	"token", "theme", "grid", "layout", "icon", "animation", "dark mode",
	"form", "validation", "button", "modal", "navigation", "vue", "react",
}

// DocExtractor reads Markdown/MDX pages under a base directory.
type DocExtractor struct {
	fsys          fs.FS
	root          string
	classPrefixes []string
	md            goldmark.Markdown
}

// NewDocExtractor creates a documentation extractor. classPrefixes select the
// utility-class tokens kept as keywords.
func NewDocExtractor(fsys fs.FS, root string, classPrefixes []string) *DocExtractor {
	if len(classPrefixes) == 0 {
		classPrefixes = DefaultClassPrefixes
	}
	return &DocExtractor{
		fsys:          fsys,
		root:          root,
		classPrefixes: classPrefixes,
		md:            goldmark.New(),
	}
}

// ExtractAll parses every .md/.mdx file under the root. A page that fails to
// read is logged and skipped; a missing root wraps fs.ErrNotExist.
func (e *DocExtractor) ExtractAll() ([]extraction.Documentation, error) {
	paths, err := files.ListFiles(e.fsys, e.root, files.MustGlob("**/*.{md,mdx}"))
	if err != nil {
		return nil, fmt.Errorf("failed to list documentation: %w", err)
	}

	var docs []extraction.Documentation
	seen := make(map[string]bool)
	for _, p := range paths {
		content, err := files.ReadString(e.fsys, p)
		if err != nil {
			log.Printf("Warning: skipping documentation %s: %v", p, err)
			continue
		}
		doc := e.Parse(p, content)
		if seen[doc.Path] {
			log.Printf("Warning: skipping documentation %s: duplicate path %s", p, doc.Path)
			continue
		}
		seen[doc.Path] = true
		docs = append(docs, doc)
	}
	return docs, nil
}

// Parse builds the Documentation record of one page at file path p.
func (e *DocExtractor) Parse(p, input string) extraction.Documentation {
	fm, body := ParseFrontmatter(input)
	title := e.ResolveTitle(fm, body)
	urlPath := GenerateURLPath(p, e.root)

	category := fm["category"]
	if category == "" {
		category = InferDocCategory(urlPath)
	}

	content := CleanContent(body)
	return extraction.Documentation{
		Title:    title,
		Path:     urlPath,
		Content:  content,
		Category: extraction.StringPtr(category),
		Keywords: ExtractKeywords(title, content, e.classPrefixes),
	}
}

var frontmatterBlock = regexp.MustCompile(`^---\r?\n([\s\S]*?)\r?\n---\r?\n?`)

// ParseFrontmatter splits a leading ---/--- block from the body. Each
// `key: value` line becomes an entry with surrounding quotes stripped; values
// are kept as raw text. A YAML block scalar (`key: |` followed by indented
// lines) is read through yaml.v3. Without a block the map is empty and the
// body is the whole input.
func ParseFrontmatter(input string) (map[string]string, string) {
	fm := make(map[string]string)
	loc := frontmatterBlock.FindStringSubmatchIndex(input)
	if loc == nil {
		return fm, input
	}
	block := input[loc[2]:loc[3]]
	body := input[loc[1]:]

	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		key, value, ok := strings.Cut(lines[i], ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if blockScalarIndicator.MatchString(value) {
			end := i + 1
			for end < len(lines) && (strings.TrimSpace(lines[end]) == "" || isIndented(lines[end])) {
				end++
			}
			if text, ok := blockScalar(key, value, lines[i+1:end]); ok {
				fm[key] = text
				i = end - 1
				continue
			}
		}
		fm[key] = unquote(value)
	}
	return fm, body
}

var blockScalarIndicator = regexp.MustCompile(`^[|>][-+]?$`)

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// blockScalar decodes `key: |` and its indented lines as a YAML block
// scalar, returning the node's raw text.
func blockScalar(key, indicator string, lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	src := "value: " + indicator + "\n" + strings.Join(lines, "\n") + "\n"
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		log.Printf("Warning: failed to read frontmatter block %q: %v", key, err)
		return "", false
	}
	if len(doc.Content) == 0 || len(doc.Content[0].Content) < 2 {
		return "", false
	}
	node := doc.Content[0].Content[1]
	if node.Kind != yaml.ScalarNode {
		return "", false
	}
	return strings.TrimRight(node.Value, "\n"), true
}

var htmlHeading = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1>`)
var htmlTag = regexp.MustCompile(`<[^>]+>`)

// ResolveTitle returns the frontmatter title, else the first Markdown H1,
// else the first HTML <h1>, else "Untitled".
func (e *DocExtractor) ResolveTitle(fm map[string]string, body string) string {
	if t := strings.TrimSpace(fm["title"]); t != "" {
		return t
	}
	if t := e.firstHeading([]byte(body)); t != "" {
		return t
	}
	if m := htmlHeading.FindStringSubmatch(body); m != nil {
		if t := strings.TrimSpace(htmlTag.ReplaceAllString(m[1], "")); t != "" {
			return t
		}
	}
	return UntitledDocument
}

// firstHeading walks the goldmark AST for the first level-1 heading.
func (e *DocExtractor) firstHeading(source []byte) string {
	doc := e.md.Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		title = strings.TrimSpace(string(headingText(h, source)))
		return ast.WalkStop, nil
	})
	return title
}

func headingText(n ast.Node, source []byte) []byte {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			out = append(out, t.Segment.Value(source)...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				out = append(out, ' ')
			}
		case *ast.String:
			out = append(out, t.Value...)
		default:
			out = append(out, headingText(c, source)...)
		}
	}
	return out
}

// InferDocCategory maps a URL path to a documentation category.
func InferDocCategory(urlPath string) string {
	p := strings.ToLower(urlPath)
	switch {
	case strings.Contains(p, "component"):
		return DocComponents
	case strings.Contains(p, "foundation"), strings.Contains(p, "token"):
		return DocFoundations
	case strings.Contains(p, "pattern"):
		return DocPatterns
	case strings.Contains(p, "getting-started"), strings.Contains(p, "guide"):
		return DocGuides
	}
	return DocOther
}

var (
	importLine     = regexp.MustCompile(`(?m)^[ \t]*import\s[^\n]*\n?`)
	jsxSelfClosing = regexp.MustCompile(`<[A-Z][\w.]*(?:\s[^<>]*)?/>`)
	jsxOpenTag     = regexp.MustCompile(`<[A-Z][\w.]*(?:\s[^<>]*)?>`)
	jsxCloseTag    = regexp.MustCompile(`</[A-Z][\w.]*\s*>`)
	emptyFence     = regexp.MustCompile("(?m)^[ \\t]*```[^\\n`]*\\n[ \\t\\n]*```[ \\t]*$\\n?")
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// CleanContent strips import lines, unwraps capitalized JSX elements keeping
// their children, drops empty fenced code blocks and collapses runs of blank
// lines to a single blank line.
func CleanContent(body string) string {
	s := strings.ReplaceAll(body, "\r\n", "\n")
	s = importLine.ReplaceAllString(s, "")
	s = jsxSelfClosing.ReplaceAllString(s, "")
	s = jsxOpenTag.ReplaceAllString(s, "")
	s = jsxCloseTag.ReplaceAllString(s, "")
	s = emptyFence.ReplaceAllString(s, "")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var pascalCase = regexp.MustCompile(`\b[A-Z][a-z0-9]*(?:[A-Z][a-z0-9]+)+\b`)

// ExtractKeywords returns the sorted keyword set of a page: title words
// longer than two characters and PascalCase identifiers, both lower-cased,
// utility classes with their case kept, and vocabulary terms found in content.
func ExtractKeywords(title, content string, classPrefixes []string) []string {
	set := make(map[string]bool)

	for _, w := range strings.FieldsFunc(title, func(r rune) bool {
		return !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) {
		if len(w) > 2 {
			set[strings.ToLower(w)] = true
		}
	}

	for _, w := range pascalCase.FindAllString(content, -1) {
		set[strings.ToLower(w)] = true
	}

	if len(classPrefixes) > 0 {
		quoted := make([]string, len(classPrefixes))
		for i, p := range classPrefixes {
			quoted[i] = regexp.QuoteMeta(p)
		}
		classes := regexp.MustCompile(`(?:^|[^\w-])((?:` + strings.Join(quoted, "|") + `)[A-Za-z0-9]+(?:(?:-{1,2}|_{1,2})[A-Za-z0-9]+)*)`)
		for _, m := range classes.FindAllStringSubmatch(content, -1) {
			set[m[1]] = true
		}
	}

	lower := strings.ToLower(content)
	for _, term := range DocKeywordVocabulary {
		if strings.Contains(lower, term) {
			set[term] = true
		}
	}

	keywords := make([]string, 0, len(set))
	for k := range set {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// GenerateURLPath derives the URL path of a page from its file path relative
// to base: extension stripped, lower-cased, trailing /index removed.
//
//	GenerateURLPath("/docs/Components/Button/index.mdx", "/docs") == "/components/button"
func GenerateURLPath(filePath, base string) string {
	p := path.Clean("/" + strings.TrimPrefix(strings.ReplaceAll(filePath, "\\", "/"), "/"))
	b := path.Clean("/" + strings.TrimPrefix(strings.ReplaceAll(base, "\\", "/"), "/"))

	rel := p
	if b != "/" && (p == b || strings.HasPrefix(p, b+"/")) {
		rel = strings.TrimPrefix(p, b)
	}
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	rel = strings.ToLower(rel)
	rel = strings.TrimSuffix(rel, "/index")
	if rel == "" || rel == "/index" {
		return "/"
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return rel
}

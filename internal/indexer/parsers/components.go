package parsers

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/mvp-joe/dsindex/internal/files"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// ComponentSource is everything read from one component directory.
type ComponentSource struct {
	Framework string
	Name      string // normalized name, framework prefix stripped
	DirName   string // directory base name, e.g. "MButton"
	Dir       string
	File      string // primary source file
	Source    string // primary source, verbatim
	Script    string // script part (the whole file outside single-file components)
	Template  string // template part of a single-file component

	TypesFile string // co-located type-definition module, if imported
	Types     string
	Imported  []string // names imported from TypesFile

	StoriesFile string
	Stories     string
}

// ComponentOptions configures the component extractors.
type ComponentOptions struct {
	// Prefix is stripped from directory names when followed by an upper-case
	// letter ("MButton" -> "Button"). Only the Vue dialect uses it.
	Prefix string
	// ClassPrefixes are the CSS class prefixes harvested from sources.
	ClassPrefixes []string
}

// DefaultClassPrefixes are harvested when no prefixes are configured.
var DefaultClassPrefixes = []string{"mc-", "ml-", "mu-"}

// dialect captures one framework's source conventions.
type dialect interface {
	framework() string
	componentName(dirName string) (string, bool)
	mainFiles(dirName, name string) []string
	load(fsys fs.FS, src *ComponentSource) error
	strategies() []PropStrategy
	slots(src *ComponentSource) []extraction.Slot
	events(src *ComponentSource, res PropResult) []extraction.Event
	renderExample(src *ComponentSource, args []storyArg) string
}

// ComponentExtractor turns component directories into Component records.
type ComponentExtractor struct {
	fsys          fs.FS
	root          string
	dialect       dialect
	classPattern  *regexp.Regexp
	storiesFilter files.Predicate
}

func newComponentExtractor(fsys fs.FS, root string, d dialect, opts ComponentOptions) *ComponentExtractor {
	prefixes := opts.ClassPrefixes
	if len(prefixes) == 0 {
		prefixes = DefaultClassPrefixes
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return &ComponentExtractor{
		fsys:          fsys,
		root:          root,
		dialect:       d,
		classPattern:  regexp.MustCompile(`(?:^|[^\w-])((?:` + strings.Join(quoted, "|") + `)[a-z0-9]+(?:(?:-{1,2}|_{1,2})[a-z0-9]+)*)`),
		storiesFilter: files.MustGlob("*.stories.{ts,tsx,js,jsx,mdx}"),
	}
}

// Framework returns the framework this extractor reads.
func (e *ComponentExtractor) Framework() string {
	return e.dialect.framework()
}

// ExtractAll discovers component directories under the root and extracts
// each one. A directory that fails to read or parse is logged and skipped.
// A missing root is returned as an error wrapping fs.ErrNotExist.
func (e *ComponentExtractor) ExtractAll() ([]extraction.Component, error) {
	dirs, err := files.ListDirs(e.fsys, e.root, func(rel string) bool {
		_, ok := e.dialect.componentName(path.Base(rel))
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s components: %w", e.dialect.framework(), err)
	}

	var out []extraction.Component
	seen := make(map[string]bool)
	for _, dir := range dirs {
		comp, err := e.ExtractDir(dir)
		if err != nil {
			log.Printf("Warning: skipping component directory %s: %v", dir, err)
			continue
		}
		if comp == nil || seen[comp.Name] {
			continue
		}
		seen[comp.Name] = true
		out = append(out, *comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ExtractDir extracts one component directory. It returns nil, nil when the
// directory holds no primary source file.
func (e *ComponentExtractor) ExtractDir(dir string) (*extraction.Component, error) {
	src, err := e.Load(dir)
	if err != nil || src == nil {
		return nil, err
	}
	return e.Extract(src), nil
}

// Load reads the primary source, stories and framework-specific parts of a
// component directory.
func (e *ComponentExtractor) Load(dir string) (*ComponentSource, error) {
	dirName := path.Base(dir)
	name, ok := e.dialect.componentName(dirName)
	if !ok {
		return nil, nil
	}

	entries, err := fs.ReadDir(e.fsys, dir)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			present[entry.Name()] = true
		}
	}

	var main string
	for _, candidate := range e.dialect.mainFiles(dirName, name) {
		if strings.HasPrefix(candidate, "*") {
			for _, entry := range entries {
				n := entry.Name()
				if !entry.IsDir() && strings.HasSuffix(n, candidate[1:]) && !strings.Contains(n, ".stories.") && !strings.Contains(n, ".spec.") && !strings.Contains(n, ".test.") {
					main = n
					break
				}
			}
		} else if present[candidate] {
			main = candidate
		}
		if main != "" {
			break
		}
	}
	if main == "" {
		return nil, nil
	}

	src := &ComponentSource{
		Framework: e.dialect.framework(),
		Name:      name,
		DirName:   dirName,
		Dir:       dir,
		File:      path.Join(dir, main),
	}
	if src.Source, err = files.ReadString(e.fsys, src.File); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && e.storiesFilter(entry.Name()) {
			src.StoriesFile = path.Join(dir, entry.Name())
			if src.Stories, err = files.ReadString(e.fsys, src.StoriesFile); err != nil {
				return nil, err
			}
			break
		}
	}

	if err := e.dialect.load(e.fsys, src); err != nil {
		return nil, err
	}
	return src, nil
}

// Extract builds the Component record from loaded sources.
func (e *ComponentExtractor) Extract(src *ComponentSource) *extraction.Component {
	res, _ := RunPropStrategies(src, e.dialect.strategies())
	applyDefaults(res.Props, propDefaults(src.Script))

	comp := &extraction.Component{
		Name:        src.Name,
		Slug:        Slugify(src.Name),
		Category:    InferComponentCategory(src.Name),
		Description: componentDescription(src),
		Frameworks:  []string{src.Framework},
		Props:       res.Props,
		Slots:       e.dialect.slots(src),
		Events:      e.dialect.events(src, res),
		CSSClasses:  e.cssClasses(src.Source),
	}
	for _, story := range parseStories(src.Stories) {
		if len(story.Args) == 0 {
			continue
		}
		comp.Examples = append(comp.Examples, extraction.Example{
			Framework: src.Framework,
			Title:     extraction.StringPtr(splitCamel(story.Name)),
			Code:      e.dialect.renderExample(src, story.Args),
		})
	}
	return comp
}

func (e *ComponentExtractor) cssClasses(source string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range e.classPattern.FindAllStringSubmatch(source, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Category inference
// ---------------------------------------------------------------------------

// componentCategoryKeywords is checked in order; the first bucket with a
// keyword contained in the lower-cased name wins.
var componentCategoryKeywords = []struct {
	category string
	keywords []string
}{
	{extraction.ComponentAction, []string{"button", "link", "fab"}},
	{extraction.ComponentForm, []string{"input", "field", "checkbox", "radio", "select", "textarea", "toggle", "switch", "datepicker", "autocomplete", "dropdown", "quantity", "slider", "range", "option", "fileuploader", "password", "phone"}},
	{extraction.ComponentNavigation, []string{"tabs", "breadcrumb", "pagination", "menu", "nav", "stepper", "sidebar", "header", "footer"}},
	{extraction.ComponentFeedback, []string{"notification", "toast", "alert", "modal", "dialog", "tooltip", "progress", "loader", "spinner", "flag", "overlay", "drawer", "callout"}},
	{extraction.ComponentLayout, []string{"layout", "grid", "container", "divider", "accordion", "card", "section", "stack"}},
	{extraction.ComponentDataDisplay, []string{"table", "list", "tag", "avatar", "heading", "text", "icon", "image", "tile", "badge", "rating", "hero", "kpi"}},
}

// InferComponentCategory maps a component name to its category bucket.
func InferComponentCategory(name string) string {
	lower := strings.ToLower(name)
	for _, bucket := range componentCategoryKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.category
			}
		}
	}
	return extraction.ComponentOther
}

// ---------------------------------------------------------------------------
// Description
// ---------------------------------------------------------------------------

var (
	storiesDescription = regexp.MustCompile(`description\s*:\s*\{\s*component\s*:\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)"|` + "`([^`]*)`)")
	jsDocBlock         = regexp.MustCompile(`/\*\*([\s\S]*?)\*/`)
)

// componentDescription prefers the stories docs description, then the first
// JSDoc block of the script that is not only tags.
func componentDescription(src *ComponentSource) *string {
	if m := storiesDescription.FindStringSubmatch(src.Stories); m != nil {
		if d := strings.TrimSpace(m[1] + m[2] + m[3]); d != "" {
			return &d
		}
	}
	for _, m := range jsDocBlock.FindAllStringSubmatch(src.Script, -1) {
		if d := cleanJSDoc(m[1]); d != "" {
			return &d
		}
	}
	return nil
}

func cleanJSDoc(body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if strings.HasPrefix(line, "@") {
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// ---------------------------------------------------------------------------
// Stories
// ---------------------------------------------------------------------------

type storyArg struct {
	Key   string
	Value string // source text of the value
}

type story struct {
	Name string
	Args []storyArg
}

var (
	storyExport = regexp.MustCompile(`(?m)^export\s+const\s+([A-Z][\w$]*)\s*(?::\s*[^=]+)?=`)
	inlineArgs  = regexp.MustCompile(`\bargs\s*:\s*\{`)
)

// parseStories lists exported stories (Default excluded) with their args,
// taken from `Name.args = {...}` or an inline `args: {...}`.
func parseStories(stories string) []story {
	if stories == "" {
		return nil
	}
	exports := storyExport.FindAllStringSubmatchIndex(stories, -1)

	var out []story
	for i, loc := range exports {
		name := stories[loc[2]:loc[3]]
		if name == "Default" {
			continue
		}
		s := story{Name: name}

		assign := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\.args\s*=\s*\{`)
		if a := assign.FindStringIndex(stories); a != nil {
			if body, ok := blockAfter(stories, a[1]-1); ok {
				s.Args = parseArgs(body)
			}
		} else {
			end := len(stories)
			if i+1 < len(exports) {
				end = exports[i+1][0]
			}
			decl := stories[loc[1]:end]
			if a := inlineArgs.FindStringIndex(decl); a != nil {
				if body, ok := blockAfter(decl, a[1]-1); ok {
					s.Args = parseArgs(body)
				}
			}
		}
		out = append(out, s)
	}
	return out
}

func parseArgs(body string) []storyArg {
	var args []storyArg
	for _, entry := range splitTopLevel(stripComments(body), ",") {
		key, value, ok := splitKeyValue(entry)
		if !ok {
			continue
		}
		args = append(args, storyArg{Key: key, Value: value})
	}
	return args
}

// renderAttrs renders args as tag attributes. Literal strings become plain
// attributes; everything else is bound with bind(key, expr).
func renderAttrs(args []storyArg, skip string, bind func(key, expr string) string) string {
	var b strings.Builder
	for _, a := range args {
		if a.Key == skip {
			continue
		}
		b.WriteByte(' ')
		if lit := stringLiterals(a.Value); len(lit) == 1 && unquote(a.Value) == lit[0] {
			fmt.Fprintf(&b, `%s="%s"`, a.Key, lit[0])
			continue
		}
		b.WriteString(bind(a.Key, a.Value))
	}
	return b.String()
}

func renderTag(tag, attrs, inner string) string {
	if inner == "" {
		return "<" + tag + attrs + " />"
	}
	return "<" + tag + attrs + ">" + inner + "</" + tag + ">"
}

func argText(args []storyArg, key string) string {
	for _, a := range args {
		if a.Key == key {
			if lit := stringLiterals(a.Value); len(lit) == 1 {
				return lit[0]
			}
			return a.Value
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Merge
// ---------------------------------------------------------------------------

// MergeComponents unions per-framework extractions by component name.
// Frameworks are unioned; props, slots and events are deduplicated by name
// with the first framework winning; examples are concatenated and CSS classes
// deduplicated. Output is sorted by name.
func MergeComponents(lists ...[]extraction.Component) []extraction.Component {
	byName := make(map[string]*extraction.Component)
	var order []string

	for _, list := range lists {
		for _, c := range list {
			existing, ok := byName[c.Name]
			if !ok {
				cp := c
				cp.Frameworks = append([]string(nil), c.Frameworks...)
				cp.Props = append([]extraction.Prop(nil), c.Props...)
				cp.Slots = append([]extraction.Slot(nil), c.Slots...)
				cp.Events = append([]extraction.Event(nil), c.Events...)
				cp.Examples = append([]extraction.Example(nil), c.Examples...)
				cp.CSSClasses = append([]string(nil), c.CSSClasses...)
				byName[c.Name] = &cp
				order = append(order, c.Name)
				continue
			}
			mergeComponent(existing, c)
		}
	}

	sort.Strings(order)
	out := make([]extraction.Component, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func mergeComponent(dst *extraction.Component, src extraction.Component) {
	dst.Frameworks = unionStrings(dst.Frameworks, src.Frameworks)
	if dst.Description == nil {
		dst.Description = src.Description
	}

	propNames := make(map[string]bool)
	for _, p := range dst.Props {
		propNames[p.Name] = true
	}
	for _, p := range src.Props {
		if !propNames[p.Name] {
			propNames[p.Name] = true
			dst.Props = append(dst.Props, p)
		}
	}

	slotNames := make(map[string]bool)
	for _, s := range dst.Slots {
		slotNames[s.Name] = true
	}
	for _, s := range src.Slots {
		if !slotNames[s.Name] {
			slotNames[s.Name] = true
			dst.Slots = append(dst.Slots, s)
		}
	}

	eventNames := make(map[string]bool)
	for _, ev := range dst.Events {
		eventNames[ev.Name] = true
	}
	for _, ev := range src.Events {
		if !eventNames[ev.Name] {
			eventNames[ev.Name] = true
			dst.Events = append(dst.Events, ev)
		}
	}

	dst.Examples = append(dst.Examples, src.Examples...)
	dst.CSSClasses = unionStrings(dst.CSSClasses, src.CSSClasses)
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

package parsers

import (
	"io/fs"
	"regexp"
	"strings"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// NewVueExtractor reads single-file components under root.
func NewVueExtractor(fsys fs.FS, root string, opts ComponentOptions) *ComponentExtractor {
	return newComponentExtractor(fsys, root, newVueDialect(opts.Prefix), opts)
}

type vueDialect struct {
	prefix  string
	dirName *regexp.Regexp
}

func newVueDialect(prefix string) *vueDialect {
	return &vueDialect{
		prefix:  prefix,
		dirName: regexp.MustCompile(`^(?:` + regexp.QuoteMeta(prefix) + `)?[A-Z][A-Za-z0-9]*$`),
	}
}

func (d *vueDialect) framework() string { return extraction.FrameworkVue }

// componentName strips the prefix only when an upper-case letter follows it,
// so "MButton" is "Button" but "Modal" stays "Modal".
func (d *vueDialect) componentName(dirName string) (string, bool) {
	if !d.dirName.MatchString(dirName) {
		return "", false
	}
	if d.prefix != "" && strings.HasPrefix(dirName, d.prefix) {
		rest := dirName[len(d.prefix):]
		if rest != "" && rest[0] >= 'A' && rest[0] <= 'Z' {
			return rest, true
		}
	}
	return dirName, true
}

func (d *vueDialect) mainFiles(dirName, name string) []string {
	return []string{dirName + ".vue", name + ".vue", "index.vue", "*.vue"}
}

var (
	scriptBlock   = regexp.MustCompile(`(?s)<script\b[^>]*>(.*?)</script>`)
	templateOpen  = regexp.MustCompile(`<template\b[^>]*>`)
	templateClose = "</template>"
)

// load splits the single-file component into script and template parts.
func (d *vueDialect) load(_ fs.FS, src *ComponentSource) error {
	if !strings.HasSuffix(src.File, ".vue") {
		src.Script = src.Source
		return nil
	}

	var scripts []string
	for _, m := range scriptBlock.FindAllStringSubmatch(src.Source, -1) {
		scripts = append(scripts, m[1])
	}
	src.Script = strings.Join(scripts, "\n")

	if loc := templateOpen.FindStringIndex(src.Source); loc != nil {
		if end := strings.LastIndex(src.Source, templateClose); end > loc[1] {
			src.Template = src.Source[loc[1]:end]
		}
	}
	return nil
}

func (d *vueDialect) strategies() []PropStrategy {
	return []PropStrategy{
		OptionsObjectStrategy(),
		InlineInterfaceStrategy(),
	}
}

var (
	slotTag     = regexp.MustCompile(`<slot\b([^>]*)>`)
	slotNameAtt = regexp.MustCompile(`(?:^|\s)name\s*=\s*["']([^"']+)["']`)
	slotComment = regexp.MustCompile(`(?s)<!--\s*@slot\s+(.*?)\s*-->\s*$`)
)

// slots scans the template for <slot> tags. An unnamed slot is "default";
// a `<!-- @slot text -->` comment right before the tag describes it.
func (d *vueDialect) slots(src *ComponentSource) []extraction.Slot {
	var out []extraction.Slot
	seen := make(map[string]bool)
	for _, loc := range slotTag.FindAllStringSubmatchIndex(src.Template, -1) {
		attrs := src.Template[loc[2]:loc[3]]
		name := "default"
		if m := slotNameAtt.FindStringSubmatch(attrs); m != nil {
			name = m[1]
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		slot := extraction.Slot{Name: name}
		before := src.Template[:loc[0]]
		if open := strings.LastIndex(before, "<!--"); open >= 0 {
			if m := slotComment.FindStringSubmatch(before[open:]); m != nil {
				slot.Description = extraction.StringPtr(m[1])
			}
		}
		out = append(out, slot)
	}
	return out
}

var (
	emitCall        = regexp.MustCompile(`\bemit\s*\(\s*['"]([^'"]+)['"]\s*(?:,\s*([^)]*))?\)`)
	emitsOption     = regexp.MustCompile(`\bemits\s*:\s*\[`)
	defineEmitsList = regexp.MustCompile(`defineEmits\s*\(\s*\[`)
	defineEmitsType = regexp.MustCompile(`defineEmits\s*<\s*\{`)
	emitSignature   = regexp.MustCompile(`\(\s*[\w$]+\s*:\s*['"]([^'"]+)['"]\s*(?:,\s*([^)]*))?\)`)
)

// events collects declared emits first, then `$emit(...)` / `emit(...)` call
// sites; a call site fills in a payload the declaration did not carry.
func (d *vueDialect) events(src *ComponentSource, _ PropResult) []extraction.Event {
	var out []extraction.Event
	index := make(map[string]int)
	add := func(name, payload string) {
		payload = strings.TrimSpace(payload)
		if i, ok := index[name]; ok {
			if out[i].Payload == nil {
				out[i].Payload = extraction.StringPtr(payload)
			}
			return
		}
		index[name] = len(out)
		out = append(out, extraction.Event{Name: name, Payload: extraction.StringPtr(payload)})
	}

	script := stripComments(src.Script)
	for _, re := range []*regexp.Regexp{emitsOption, defineEmitsList} {
		if loc := re.FindStringIndex(script); loc != nil {
			if body, ok := blockAfter(script, loc[1]-1); ok {
				for _, name := range stringLiterals(body) {
					add(name, "")
				}
			}
		}
	}
	if loc := defineEmitsType.FindStringIndex(script); loc != nil {
		if body, ok := blockAfter(script, loc[1]-1); ok {
			for _, m := range emitSignature.FindAllStringSubmatch(body, -1) {
				add(m[1], m[2])
			}
		}
	}
	for _, part := range []string{script, src.Template} {
		for _, m := range emitCall.FindAllStringSubmatch(part, -1) {
			add(m[1], m[2])
		}
	}
	return out
}

// renderExample renders `<MButton size="s" :disabled="true" />`.
func (d *vueDialect) renderExample(src *ComponentSource, args []storyArg) string {
	attrs := renderAttrs(args, "default", func(key, expr string) string {
		return ":" + key + `="` + strings.ReplaceAll(expr, `"`, `'`) + `"`
	})
	return renderTag(src.DirName, attrs, argText(args, "default"))
}

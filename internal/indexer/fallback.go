package indexer

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/mvp-joe/dsindex/internal/indexer/parsers"
)

//go:embed defaults.toml
var defaultsTOML string

type bundledDefaults struct {
	Tokens        map[string]string  `toml:"tokens"` // category -> JSON token source
	Components    []bundledComponent `toml:"components"`
	Documentation []bundledDocument  `toml:"documentation"`
	Icons         struct {
		Registry string `toml:"registry"`
	} `toml:"icons"`
}

type bundledComponent struct {
	Name        string        `toml:"name"`
	Description string        `toml:"description"`
	Frameworks  []string      `toml:"frameworks"`
	CSSClasses  []string      `toml:"css_classes"`
	Slots       []string      `toml:"slots"`
	Events      []string      `toml:"events"`
	Props       []bundledProp `toml:"props"`
}

type bundledProp struct {
	Name     string   `toml:"name"`
	Type     string   `toml:"type"`
	Default  string   `toml:"default"`
	Required bool     `toml:"required"`
	Options  []string `toml:"options"`
}

type bundledDocument struct {
	Path    string `toml:"path"`
	Content string `toml:"content"`
}

// Fallback serves the bundled dataset that stands in for a missing or empty
// category in lenient mode.
type Fallback struct {
	data          bundledDefaults
	classPrefixes []string
}

// LoadFallback decodes the embedded defaults.
func LoadFallback(classPrefixes []string) (*Fallback, error) {
	var data bundledDefaults
	md, err := toml.Decode(defaultsTOML, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bundled defaults: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in bundled defaults: %v", undecoded)
	}
	return &Fallback{data: data, classPrefixes: classPrefixes}, nil
}

// Tokens returns the bundled tokens plus the generated spacing scale.
func (f *Fallback) Tokens() []extraction.Token {
	var tokens []extraction.Token
	for _, category := range extraction.TokenCategories {
		if category == extraction.CategorySpacing {
			tokens = append(tokens, parsers.SpacingScale()...)
			continue
		}
		src, ok := f.data.Tokens[category]
		if !ok {
			continue
		}
		tokens = append(tokens, parsers.ParseTokenJSON(category, []byte(src), "bundled defaults")...)
	}
	return tokens
}

// Components returns the bundled components sorted by name.
func (f *Fallback) Components() []extraction.Component {
	out := make([]extraction.Component, 0, len(f.data.Components))
	for _, bc := range f.data.Components {
		c := extraction.Component{
			Name:        bc.Name,
			Slug:        parsers.Slugify(bc.Name),
			Category:    parsers.InferComponentCategory(bc.Name),
			Description: extraction.StringPtr(bc.Description),
			Frameworks:  bc.Frameworks,
			CSSClasses:  bc.CSSClasses,
		}
		for _, p := range bc.Props {
			c.Props = append(c.Props, extraction.Prop{
				Name:         p.Name,
				Type:         extraction.StringPtr(p.Type),
				DefaultValue: extraction.StringPtr(p.Default),
				Required:     p.Required,
				Options:      p.Options,
			})
		}
		for _, s := range bc.Slots {
			c.Slots = append(c.Slots, extraction.Slot{Name: s})
		}
		for _, e := range bc.Events {
			c.Events = append(c.Events, extraction.Event{Name: e})
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Documentation returns the bundled pages, parsed like files under a docs root.
func (f *Fallback) Documentation() []extraction.Documentation {
	ext := parsers.NewDocExtractor(nil, "", f.classPrefixes)
	docs := make([]extraction.Documentation, 0, len(f.data.Documentation))
	for _, d := range f.data.Documentation {
		docs = append(docs, ext.Parse(d.Path, d.Content))
	}
	return docs
}

// Icons returns the bundled icon registry entries.
func (f *Fallback) Icons() []extraction.Icon {
	return parsers.ParseIcons(f.data.Icons.Registry)
}

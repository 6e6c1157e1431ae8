package parsers

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/mvp-joe/dsindex/internal/files"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// Icon field fallbacks.
const (
	DefaultIconViewBox = "0 0 16 16"
	DefaultIconType    = "unknown"
	DefaultIconSize    = 16
)

var (
	exportBoundary  = regexp.MustCompile(`(?m)^export\s+`)
	exportIdent     = regexp.MustCompile(`^(?:const|let|var|function)?\s*([A-Za-z_$][\w$]*)`)
	trailingDigits  = regexp.MustCompile(`\d+$`)
	pathsField      = regexp.MustCompile(`\bpaths\s*:\s*`)
	nextIconField   = regexp.MustCompile(`,?\s*\b(?:name|type|iconName|viewBox|size|width|height)\s*:`)
	errMissingPaths = errors.New("missing paths")
)

func iconField(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + name + `\s*:\s*(?:'([^']*)'|"([^"]*)"|` + "`([^`]*)`)")
}

var (
	viewBoxField  = iconField("viewBox")
	typeField     = iconField("type")
	iconNameField = iconField("iconName")
)

// IconExtractor reads the generated icon registry module.
type IconExtractor struct {
	fsys fs.FS
	file string
}

// NewIconExtractor creates an icon extractor for the registry file.
func NewIconExtractor(fsys fs.FS, file string) *IconExtractor {
	return &IconExtractor{fsys: fsys, file: file}
}

// ExtractAll reads and parses the registry. A missing file wraps fs.ErrNotExist.
func (e *IconExtractor) ExtractAll() ([]extraction.Icon, error) {
	src, err := files.ReadString(e.fsys, e.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon registry: %w", err)
	}
	return ParseIcons(src), nil
}

// ParseIcons splits a registry module on export boundaries and parses each
// block. Blocks that fail a required field are logged and skipped.
func ParseIcons(src string) []extraction.Icon {
	bounds := exportBoundary.FindAllStringIndex(src, -1)

	var icons []extraction.Icon
	seen := make(map[string]bool)
	for i, b := range bounds {
		end := len(src)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		block := src[b[1]:end]

		icon, err := ParseIconBlock(block)
		if err != nil {
			log.Printf("Warning: skipping icon export at offset %d: %v", b[0], err)
			continue
		}
		if seen[icon.Name] {
			continue
		}
		seen[icon.Name] = true
		icons = append(icons, icon)
	}
	return icons
}

// ParseIconBlock parses the text following one `export` keyword.
func ParseIconBlock(block string) (extraction.Icon, error) {
	m := exportIdent.FindStringSubmatch(block)
	if m == nil || m[1] == "default" {
		return extraction.Icon{}, fmt.Errorf("no export identifier")
	}
	name := m[1]

	paths, err := iconPaths(block)
	if err != nil {
		return extraction.Icon{}, fmt.Errorf("%s: %w", name, err)
	}

	// fields nested in the shape tree must not shadow the icon's own
	fields := strings.Replace(block, paths, "", 1)

	icon := extraction.Icon{
		Name:    name,
		Type:    fieldOr(typeField, fields, DefaultIconType),
		ViewBox: fieldOr(viewBoxField, fields, DefaultIconViewBox),
		Size:    DefaultIconSize,
		Paths:   paths,
	}
	if d := trailingDigits.FindString(name); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			icon.Size = n
		}
	}
	icon.IconName = trailingDigits.ReplaceAllString(fieldOr(iconNameField, fields, name), "")
	return icon, nil
}

func fieldOr(re *regexp.Regexp, block, fallback string) string {
	if m := re.FindStringSubmatch(block); m != nil {
		if v := m[1] + m[2] + m[3]; v != "" {
			return v
		}
	}
	return fallback
}

// iconPaths captures the serialized shape tree after `paths:` verbatim. A
// bracketed value is taken up to its matching bracket; anything else runs to
// the next known field or the closing brace of the export.
func iconPaths(block string) (string, error) {
	loc := pathsField.FindStringIndex(block)
	if loc == nil {
		return "", errMissingPaths
	}
	rest := block[loc[1]:]

	var value string
	if len(rest) > 0 && (rest[0] == '[' || rest[0] == '{') {
		end, ok := matchBrace(rest, 0)
		if !ok {
			return "", fmt.Errorf("unterminated paths")
		}
		value = rest[:end+1]
	} else if next := nextIconField.FindStringIndex(rest); next != nil {
		value = rest[:next[0]]
	} else if closing := strings.LastIndex(rest, "}"); closing >= 0 {
		value = rest[:closing]
	} else {
		value = rest
	}

	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ","))
	if value == "" {
		return "", errMissingPaths
	}
	return value, nil
}

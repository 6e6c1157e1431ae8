package parsers

import (
	"io/fs"
	"log"
	"path"
	"regexp"
	"strings"

	"github.com/mvp-joe/dsindex/internal/files"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// NewReactExtractor reads TSX/JSX components under root.
func NewReactExtractor(fsys fs.FS, root string, opts ComponentOptions) *ComponentExtractor {
	return newComponentExtractor(fsys, root, reactDialect{}, opts)
}

type reactDialect struct{}

var reactDirName = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

func (reactDialect) framework() string { return extraction.FrameworkReact }

func (reactDialect) componentName(dirName string) (string, bool) {
	return dirName, reactDirName.MatchString(dirName)
}

func (reactDialect) mainFiles(dirName, name string) []string {
	return []string{
		dirName + ".tsx", name + ".tsx", "index.tsx",
		dirName + ".jsx", "index.jsx",
		dirName + ".ts", "index.ts",
	}
}

var (
	typesImport   = regexp.MustCompile(`import\s+(?:type\s+)?([^;]*?)\s+from\s+['"](\.{1,2}/[^'"]*?types?)['"]`)
	importedNames = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
)

var typesExtensions = []string{".ts", ".tsx", ".d.ts", "/index.ts"}

// load resolves the co-located type-definition module imported by the
// component ("./Button.types", "./types"). A missing module is not an error.
func (reactDialect) load(fsys fs.FS, src *ComponentSource) error {
	src.Script = src.Source

	m := typesImport.FindStringSubmatch(src.Source)
	if m == nil {
		return nil
	}
	clause := strings.Trim(strings.TrimSpace(m[1]), "{}")
	for _, name := range importedNames.FindAllString(clause, -1) {
		if name != "type" && name != "as" {
			src.Imported = append(src.Imported, name)
		}
	}

	base := path.Join(src.Dir, m[2])
	for _, ext := range typesExtensions {
		candidate := base + ext
		if !files.Exists(fsys, candidate) {
			continue
		}
		text, err := files.ReadString(fsys, candidate)
		if err != nil {
			return err
		}
		src.TypesFile = candidate
		src.Types = text
		return nil
	}
	return nil
}

func (reactDialect) strategies() []PropStrategy {
	return []PropStrategy{
		TypesFileStrategy(),
		OptionsObjectStrategy(),
		InlineInterfaceStrategy(),
	}
}

// TypesFileStrategy reads props from the co-located type-definition module,
// following extends chains. Precondition: the component imports one.
func TypesFileStrategy() PropStrategy {
	return PropStrategy{
		Name: StrategyTypesFile,
		Applies: func(src *ComponentSource) bool {
			return src.Types != ""
		},
		Extract: func(src *ComponentSource) PropResult {
			tf, err := parseTypesFile([]byte(src.Types))
			if err != nil {
				log.Printf("Warning: failed to parse %s: %v", src.TypesFile, err)
				return PropResult{}
			}
			name, ok := tf.PropsInterface(src.Name, src.Imported)
			if !ok {
				return PropResult{}
			}
			return membersToResult(tf.Members(name), tf.Options)
		},
	}
}

func (reactDialect) slots(*ComponentSource) []extraction.Slot {
	return nil
}

// events surfaces callback props as events.
func (reactDialect) events(_ *ComponentSource, res PropResult) []extraction.Event {
	return res.Callbacks
}

// renderExample renders `<Button size="s" disabled={true} />`.
func (reactDialect) renderExample(src *ComponentSource, args []storyArg) string {
	attrs := renderAttrs(args, "children", func(key, expr string) string {
		return key + "={" + expr + "}"
	})
	return renderTag(src.Name, attrs, argText(args, "children"))
}

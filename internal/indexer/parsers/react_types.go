package parsers

import (
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/dominikbraun/graph"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsInterface is an object type declared in a type-definition file, either as
// an interface or as an alias of an object/intersection type.
type tsInterface struct {
	Name    string
	Members []tsMember
	Extends []string
}

// typesFile is the parsed content of a co-located type-definition module.
type typesFile struct {
	Interfaces map[string]*tsInterface
	Aliases    map[string]string   // non-object type aliases: name -> type text
	Constants  map[string][]string // const arrays of string literals
	order      []string            // interface names in declaration order
	constOrder []string

	inherits graph.Graph[string, string]
}

// parseTypesFile reads interfaces, type aliases and literal-array constants
// out of a .ts/.tsx module with tree-sitter, and builds the extends graph.
func parseTypesFile(source []byte) (*typesFile, error) {
	tree, err := parseTSX(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	tf := &typesFile{
		Interfaces: make(map[string]*tsInterface),
		Aliases:    make(map[string]string),
		Constants:  make(map[string][]string),
	}

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "interface_declaration":
			tf.addInterface(readInterface(n, source))
			return false
		case "type_alias_declaration":
			tf.readTypeAlias(n, source)
			return false
		case "lexical_declaration":
			tf.readConstants(n, source)
			return false
		}
		return true
	})

	tf.buildGraph()
	return tf, nil
}

func (tf *typesFile) addInterface(iface *tsInterface) {
	if iface == nil || iface.Name == "" {
		return
	}
	if existing, ok := tf.Interfaces[iface.Name]; ok {
		// declaration merging
		existing.Members = append(existing.Members, iface.Members...)
		existing.Extends = append(existing.Extends, iface.Extends...)
		return
	}
	tf.Interfaces[iface.Name] = iface
	tf.order = append(tf.order, iface.Name)
}

func readInterface(n *sitter.Node, source []byte) *tsInterface {
	iface := &tsInterface{Name: nodeText(n.ChildByFieldName("name"), source)}

	if clause := findChildByType(n, "extends_type_clause"); clause != nil {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			if name := typeRefName(clause.NamedChild(i), source); name != "" {
				iface.Extends = append(iface.Extends, name)
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		body = findChildByType(n, "interface_body")
	}
	if body == nil {
		body = findChildByType(n, "object_type")
	}
	iface.Members = readObjectMembers(body, source)
	return iface
}

func (tf *typesFile) readTypeAlias(n *sitter.Node, source []byte) {
	name := nodeText(n.ChildByFieldName("name"), source)
	value := n.ChildByFieldName("value")
	if name == "" || value == nil {
		return
	}

	switch value.Kind() {
	case "object_type":
		tf.addInterface(&tsInterface{Name: name, Members: readObjectMembers(value, source)})
	case "intersection_type":
		iface := &tsInterface{Name: name}
		collectIntersection(value, source, iface)
		tf.addInterface(iface)
	default:
		tf.Aliases[name] = nodeText(value, source)
	}
}

// collectIntersection flattens A & B & { ... } into extends and members.
func collectIntersection(n *sitter.Node, source []byte, iface *tsInterface) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "intersection_type":
			collectIntersection(child, source, iface)
		case "object_type":
			iface.Members = append(iface.Members, readObjectMembers(child, source)...)
		default:
			if name := typeRefName(child, source); name != "" {
				iface.Extends = append(iface.Extends, name)
			}
		}
	}
}

// typeRefName returns the referenced type name of IBase, IBase<T> or ns.IBase.
func typeRefName(n *sitter.Node, source []byte) string {
	switch n.Kind() {
	case "type_identifier":
		return nodeText(n, source)
	case "generic_type":
		return typeRefName(n.ChildByFieldName("name"), source)
	case "nested_type_identifier":
		return nodeText(n, source)
	}
	return ""
}

func readObjectMembers(body *sitter.Node, source []byte) []tsMember {
	if body == nil {
		return nil
	}
	var members []tsMember
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		switch child.Kind() {
		case "property_signature":
			m := tsMember{
				Name:     unquote(nodeText(child.ChildByFieldName("name"), source)),
				Optional: hasChild(child, "?"),
			}
			if anno := child.ChildByFieldName("type"); anno != nil {
				m.Type = strings.TrimSpace(strings.TrimPrefix(nodeText(anno, source), ":"))
			}
			members = append(members, m)
		case "method_signature":
			members = append(members, tsMember{
				Name:     nodeText(child.ChildByFieldName("name"), source),
				Optional: hasChild(child, "?"),
				Method:   true,
				Type:     nodeText(child, source),
			})
		}
	}
	return members
}

// readConstants records `const SIZES = ['s', 'm'] as const` style declarations.
func (tf *typesFile) readConstants(n *sitter.Node, source []byte) {
	for _, decl := range findChildrenByType(n, "variable_declarator") {
		name := nodeText(decl.ChildByFieldName("name"), source)
		value := decl.ChildByFieldName("value")
		if name == "" || value == nil {
			continue
		}
		if value.Kind() == "as_expression" || value.Kind() == "satisfies_expression" {
			value = value.NamedChild(0)
		}
		if value == nil || value.Kind() != "array" {
			continue
		}
		var items []string
		for i := uint(0); i < value.NamedChildCount(); i++ {
			item := value.NamedChild(i)
			if item.Kind() != "string" {
				continue
			}
			items = append(items, unquote(nodeText(item, source)))
		}
		if len(items) == 0 {
			continue
		}
		if _, ok := tf.Constants[name]; !ok {
			tf.constOrder = append(tf.constOrder, name)
		}
		tf.Constants[name] = items
	}
}

// buildGraph records extends edges child -> parent. Edges that would close a
// cycle are rejected and logged; parents declared elsewhere are ignored.
func (tf *typesFile) buildGraph() {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, name := range tf.order {
		_ = g.AddVertex(name)
	}
	for _, name := range tf.order {
		for _, parent := range tf.Interfaces[name].Extends {
			if _, ok := tf.Interfaces[parent]; !ok {
				continue
			}
			err := g.AddEdge(name, parent)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				log.Printf("Warning: ignoring cyclic extends %s -> %s", name, parent)
			default:
				log.Printf("Warning: failed to record extends %s -> %s: %v", name, parent, err)
			}
		}
	}
	tf.inherits = g
}

// Members returns the interface's own members followed by every inherited
// member, parents visited in declared order. First occurrence of a name wins.
func (tf *typesFile) Members(name string) []tsMember {
	var out []tsMember
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(string)
	visit = func(n string) {
		iface, ok := tf.Interfaces[n]
		if !ok || visited[n] {
			return
		}
		visited[n] = true
		for _, m := range iface.Members {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			out = append(out, m)
		}
		for _, parent := range iface.Extends {
			if _, err := tf.inherits.Edge(n, parent); err != nil {
				continue
			}
			visit(parent)
		}
	}
	visit(name)
	return out
}

// PropsInterface picks the interface describing the component's props:
// names imported by the component first, then the usual naming conventions.
func (tf *typesFile) PropsInterface(component string, imported []string) (string, bool) {
	candidates := append([]string{}, imported...)
	candidates = append(candidates,
		"I"+component, component+"Props", "I"+component+"Props", "Props")
	for _, c := range candidates {
		if _, ok := tf.Interfaces[c]; ok && !tf.extendedBy(c, imported) {
			return c, true
		}
	}
	for _, name := range tf.order {
		if strings.HasSuffix(name, "Props") {
			return name, true
		}
	}
	if len(tf.order) > 0 {
		return tf.order[len(tf.order)-1], true
	}
	return "", false
}

// extendedBy reports whether another of the names inherits from name, so that
// `import { IBase, IButton }` resolves to IButton.
func (tf *typesFile) extendedBy(name string, names []string) bool {
	for _, other := range names {
		if other == name {
			continue
		}
		if _, ok := tf.Interfaces[other]; !ok {
			continue
		}
		if _, err := graph.ShortestPath(tf.inherits, other, name); err == nil {
			return true
		}
	}
	return false
}

var (
	identifierType = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	typeofIndexed  = regexp.MustCompile(`^\(?\s*typeof\s+([A-Za-z_$][\w$]*)\s*\)?\s*\[\s*number\s*\]$`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
)

var primitiveTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "any": true, "unknown": true,
	"object": true, "never": true, "void": true, "null": true, "undefined": true,
	"ReactNode": true, "ReactElement": true,
}

// Options resolves a member type to an enumerated value set: a literal union,
// an alias of one, a `typeof X[number]` reference, or an identifier whose
// normalized name overlaps the name of an exported string-array constant.
func (tf *typesFile) Options(typeText string) []string {
	t := strings.TrimSpace(typeText)
	if opts := literalUnion(t); opts != nil {
		return opts
	}
	if m := typeofIndexed.FindStringSubmatch(t); m != nil {
		return tf.Constants[m[1]]
	}
	if !identifierType.MatchString(t) || primitiveTypes[t] {
		return nil
	}
	if alias, ok := tf.Aliases[t]; ok {
		if opts := literalUnion(alias); opts != nil {
			return opts
		}
		if m := typeofIndexed.FindStringSubmatch(strings.TrimSpace(alias)); m != nil {
			return tf.Constants[m[1]]
		}
	}
	return tf.matchConstant(t)
}

// matchConstant compares normalized names case-insensitively, in either
// direction. Identifiers shorter than three characters never match.
func (tf *typesFile) matchConstant(ident string) []string {
	id := nonAlnum.ReplaceAllString(strings.ToLower(ident), "")
	if len(id) < 3 {
		return nil
	}
	for _, name := range tf.constOrder {
		c := nonAlnum.ReplaceAllString(strings.ToLower(name), "")
		if len(c) < 3 {
			continue
		}
		if strings.Contains(c, id) || strings.Contains(id, c) {
			return tf.Constants[name]
		}
	}
	return nil
}

package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// PropResult is what a prop strategy found. Callbacks are function-typed
// members with the callback prefix; React surfaces them as events.
type PropResult struct {
	Props     []extraction.Prop
	Callbacks []extraction.Event
}

// PropStrategy is one way of reading a component's props.
//
// Strategies run in a fixed order and the first one whose result has at least
// one prop wins. Applies is the strategy's precondition; a strategy whose
// precondition fails is not run at all.
type PropStrategy struct {
	Name    string
	Applies func(src *ComponentSource) bool
	Extract func(src *ComponentSource) PropResult
}

// RunPropStrategies applies strategies in order and returns the winning
// result with the winner's name ("" when none produced props).
func RunPropStrategies(src *ComponentSource, strategies []PropStrategy) (PropResult, string) {
	var fallback PropResult
	for _, s := range strategies {
		if s.Applies != nil && !s.Applies(src) {
			continue
		}
		res := s.Extract(src)
		if len(res.Props) > 0 {
			return res, s.Name
		}
		if len(fallback.Callbacks) == 0 {
			fallback.Callbacks = res.Callbacks
		}
	}
	return fallback, ""
}

// Strategy names.
const (
	StrategyTypesFile       = "types-file"
	StrategyOptionsObject   = "options-object"
	StrategyInlineInterface = "inline-interface"
)

// ---------------------------------------------------------------------------
// options-object: props: { size: { type: String, default: 'm', validator } }
// ---------------------------------------------------------------------------

var (
	optionsPropsStart = regexp.MustCompile(`\bprops\s*:\s*[{\[]|\.propTypes\s*=\s*\{|defineProps\s*\(\s*[{\[]`)
	validatorArray    = regexp.MustCompile(`\[([^\[\]]*)\]`)
	bareWord          = regexp.MustCompile(`^[A-Za-z0-9_.$+-]+$`)
)

// OptionsObjectStrategy reads Vue options-API style prop declarations.
// Precondition: the script contains a `props:` object/array, a defineProps
// call with an object/array argument, or a propTypes assignment.
func OptionsObjectStrategy() PropStrategy {
	return PropStrategy{
		Name: StrategyOptionsObject,
		Applies: func(src *ComponentSource) bool {
			return optionsPropsStart.MatchString(src.Script)
		},
		Extract: func(src *ComponentSource) PropResult {
			return PropResult{Props: parseOptionsProps(src.Script)}
		},
	}
}

func parseOptionsProps(script string) []extraction.Prop {
	loc := optionsPropsStart.FindStringIndex(script)
	if loc == nil {
		return nil
	}
	open := loc[1] - 1
	body, ok := blockAfter(script, open)
	if !ok {
		return nil
	}

	// props: ['label', 'size']
	if script[open] == '[' {
		var props []extraction.Prop
		for _, name := range stringLiterals(body) {
			props = append(props, extraction.Prop{Name: name})
		}
		return props
	}

	var props []extraction.Prop
	seen := make(map[string]bool)
	for _, entry := range splitTopLevel(body, ",") {
		key, value, ok := splitKeyValue(entry)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		props = append(props, parseOptionsProp(key, value))
	}
	return props
}

func parseOptionsProp(name, value string) extraction.Prop {
	prop := extraction.Prop{Name: name}
	value = strings.TrimSpace(value)

	// size: PropTypes.oneOf(['s', 'm']).isRequired
	if strings.HasPrefix(value, "PropTypes.") {
		return parsePropTypesProp(name, value)
	}

	// size: String
	if !strings.HasPrefix(value, "{") {
		prop.Type = optionsType(value)
		return prop
	}

	body, ok := blockAfter(value, 0)
	if !ok {
		return prop
	}
	for _, entry := range splitTopLevel(body, ",") {
		key, v, ok := splitKeyValue(entry)
		if !ok {
			// validator(value) { ... } method shorthand
			if strings.HasPrefix(strings.TrimSpace(entry), "validator") {
				prop.Options = validatorOptions(entry)
			}
			continue
		}
		switch key {
		case "type":
			prop.Type = optionsType(v)
		case "default":
			prop.DefaultValue = literalDefault(v)
		case "required":
			prop.Required = strings.TrimSpace(v) == "true"
		case "validator":
			prop.Options = validatorOptions(v)
		}
	}
	return prop
}

var propTypesKind = regexp.MustCompile(`^PropTypes\.(\w+)`)

func parsePropTypesProp(name, value string) extraction.Prop {
	prop := extraction.Prop{
		Name:     name,
		Required: strings.HasSuffix(value, ".isRequired"),
	}
	if m := propTypesKind.FindStringSubmatch(value); m != nil {
		prop.Type = extraction.StringPtr(strings.ToLower(m[1]))
		if m[1] == "oneOf" {
			prop.Options = validatorOptions(value)
		}
	}
	return prop
}

// optionsType lowercases String / [String, Number] / PropType<...>.
func optionsType(v string) *string {
	v = strings.TrimSpace(v)
	if i := strings.Index(v, " as "); i >= 0 {
		// Object as PropType<Foo>
		v = strings.TrimSpace(v[:i])
	}
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		var names []string
		for _, part := range strings.Split(v[1:len(v)-1], ",") {
			if p := strings.TrimSpace(part); p != "" {
				names = append(names, strings.ToLower(p))
			}
		}
		return extraction.StringPtr(strings.Join(names, " | "))
	}
	return extraction.StringPtr(strings.ToLower(v))
}

// literalDefault keeps string and bare-word defaults; factories are dropped.
func literalDefault(v string) *string {
	v = strings.TrimSpace(v)
	if lits := stringLiterals(v); len(lits) == 1 && unquote(v) == lits[0] {
		return &lits[0]
	}
	if bareWord.MatchString(v) {
		return &v
	}
	return nil
}

// validatorOptions pulls string members out of the array literal the
// validator checks against: (v) => ['s', 'm'].includes(v). Only the function
// body is scanned, so typed parameters such as (v: string[]) are skipped.
// Without a function (PropTypes.oneOf([...])) the whole text is scanned.
func validatorOptions(v string) []string {
	m := validatorArray.FindStringSubmatch(functionBody(v))
	if m == nil {
		return nil
	}
	return stringLiterals(m[1])
}

// functionBody returns the text after an arrow or after the brace that opens
// a function body; anything else comes back unchanged.
func functionBody(v string) string {
	if i := strings.Index(v, "=>"); i >= 0 {
		return v[i+2:]
	}
	if p := strings.Index(v, ")"); p >= 0 {
		if b := strings.Index(v[p:], "{"); b >= 0 {
			return v[p+b+1:]
		}
	}
	return v
}

func splitKeyValue(entry string) (string, string, bool) {
	entry = strings.TrimSpace(entry)
	i := strings.Index(entry, ":")
	if i <= 0 {
		return "", "", false
	}
	key := unquote(strings.TrimSpace(entry[:i]))
	if strings.ContainsAny(key, " ({") {
		return "", "", false
	}
	return key, strings.TrimSpace(entry[i+1:]), true
}

// ---------------------------------------------------------------------------
// inline-interface: interface ButtonProps { size?: 's' | 'm' }
// ---------------------------------------------------------------------------

// tsMember is one member of a TypeScript object type.
type tsMember struct {
	Name     string
	Type     string
	Optional bool
	Method   bool
}

var (
	definePropsLiteral = regexp.MustCompile(`defineProps\s*<\s*\{`)
	definePropsNamed   = regexp.MustCompile(`defineProps\s*<\s*([A-Za-z_$][\w$]*)\s*>`)
	interfaceDecl      = regexp.MustCompile(`\binterface\s+([A-Za-z_$][\w$]*)[^{]*\{`)
	typeObjectDecl     = regexp.MustCompile(`\btype\s+([A-Za-z_$][\w$]*)\s*(?:<[^=]*>)?\s*=\s*\{`)
	propertyMember     = regexp.MustCompile(`^(?:readonly\s+)?['"]?([A-Za-z_$][\w$-]*)['"]?\s*(\?)?\s*:\s*([\s\S]+)$`)
	methodMember       = regexp.MustCompile(`^(?:readonly\s+)?([A-Za-z_$][\w$]*)\s*(\?)?\s*(?:<[^>]*>)?\s*\(`)
	callbackName       = regexp.MustCompile(`^on[A-Z]`)
)

// InlineInterfaceStrategy reads an inline TS interface or object type alias.
// Precondition: the script declares an interface, an object type alias or
// calls defineProps with a type argument.
func InlineInterfaceStrategy() PropStrategy {
	return PropStrategy{
		Name: StrategyInlineInterface,
		Applies: func(src *ComponentSource) bool {
			return definePropsLiteral.MatchString(src.Script) ||
				interfaceDecl.MatchString(src.Script) ||
				typeObjectDecl.MatchString(src.Script)
		},
		Extract: func(src *ComponentSource) PropResult {
			body, ok := findPropsBody(src.Script, src.Name)
			if !ok {
				return PropResult{}
			}
			members := parseTSMembers(body)
			return membersToResult(members, func(typeText string) []string {
				return literalUnion(typeText)
			})
		},
	}
}

// findPropsBody picks the object type that describes the props, most
// specific first: defineProps<{...}>, defineProps<Named>, <Name>Props,
// I<Name>Props, I<Name>, Props, any *Props, then the first interface.
func findPropsBody(script, name string) (string, bool) {
	if loc := definePropsLiteral.FindStringIndex(script); loc != nil {
		return blockAfter(script, loc[1]-1)
	}

	var candidates []string
	if m := definePropsNamed.FindStringSubmatch(script); m != nil {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, name+"Props", "I"+name+"Props", "I"+name, "Props")
	for _, c := range candidates {
		if body, ok := objectTypeBody(script, c); ok {
			return body, true
		}
	}

	declared := allObjectTypeNames(script)
	for _, d := range declared {
		if strings.HasSuffix(d, "Props") {
			return objectTypeBody(script, d)
		}
	}
	if len(declared) > 0 {
		return objectTypeBody(script, declared[0])
	}
	return "", false
}

func objectTypeBody(script, typeName string) (string, bool) {
	for _, re := range []*regexp.Regexp{interfaceDecl, typeObjectDecl} {
		for _, loc := range re.FindAllStringSubmatchIndex(script, -1) {
			if script[loc[2]:loc[3]] == typeName {
				return blockAfter(script, loc[1]-1)
			}
		}
	}
	return "", false
}

func allObjectTypeNames(script string) []string {
	type named struct {
		pos  int
		name string
	}
	var found []named
	for _, re := range []*regexp.Regexp{interfaceDecl, typeObjectDecl} {
		for _, loc := range re.FindAllStringSubmatchIndex(script, -1) {
			found = append(found, named{loc[0], script[loc[2]:loc[3]]})
		}
	}
	// document order
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].pos < found[j-1].pos; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}

// parseTSMembers splits an object type body into members. Unions continued
// on the next line ("| 'l'") are joined back onto their member.
func parseTSMembers(body string) []tsMember {
	var merged []string
	for _, seg := range splitTopLevel(stripComments(body), ";,\n") {
		s := strings.TrimSpace(seg)
		if s == "" {
			continue
		}
		if n := len(merged); n > 0 {
			prev := strings.TrimSpace(merged[n-1])
			if strings.HasPrefix(s, "|") || strings.HasPrefix(s, "&") ||
				strings.HasSuffix(prev, "|") || strings.HasSuffix(prev, "&") ||
				strings.HasSuffix(prev, "=>") || strings.HasSuffix(prev, ":") {
				merged[n-1] = prev + " " + s
				continue
			}
		}
		merged = append(merged, s)
	}

	var members []tsMember
	for _, s := range merged {
		if m := methodMember.FindStringSubmatch(s); m != nil && !strings.Contains(s[:strings.Index(s, "(")], ":") {
			members = append(members, tsMember{Name: m[1], Optional: m[2] == "?", Method: true, Type: s})
			continue
		}
		if m := propertyMember.FindStringSubmatch(s); m != nil {
			members = append(members, tsMember{
				Name:     m[1],
				Optional: m[2] == "?",
				Type:     strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimRight(m[3], ",; ")), "|")),
			})
		}
	}
	return members
}

// isFunctionType reports whether a member is callable.
func isFunctionType(m tsMember) bool {
	if m.Method {
		return true
	}
	t := strings.TrimSpace(m.Type)
	t = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(t, "| undefined")), ")")
	return strings.Contains(t, "=>") || t == "Function" || strings.HasPrefix(t, "Function ") ||
		strings.HasSuffix(t, "Handler") || strings.HasPrefix(t, "EventHandler")
}

// isCallback reports whether a member is an on<Event> function.
func isCallback(m tsMember) bool {
	return callbackName.MatchString(m.Name) && isFunctionType(m)
}

// excludedFromProps drops members React treats as events or children.
func excludedFromProps(m tsMember) bool {
	return isFunctionType(m) || callbackName.MatchString(m.Name) ||
		m.Name == "children" || m.Name == "className"
}

// membersToResult converts members to props and callback events.
// resolve maps a type text to an enumerated option set (or nil).
func membersToResult(members []tsMember, resolve func(string) []string) PropResult {
	var res PropResult
	seenProp := make(map[string]bool)
	seenEvent := make(map[string]bool)
	for _, m := range members {
		if isCallback(m) {
			if !seenEvent[m.Name] {
				seenEvent[m.Name] = true
				res.Callbacks = append(res.Callbacks, callbackEvent(m))
			}
			continue
		}
		if excludedFromProps(m) || seenProp[m.Name] {
			continue
		}
		seenProp[m.Name] = true
		res.Props = append(res.Props, extraction.Prop{
			Name:     m.Name,
			Type:     extraction.StringPtr(m.Type),
			Required: !m.Optional,
			Options:  resolve(m.Type),
		})
	}
	return res
}

var arrowParams = regexp.MustCompile(`^\(([^)]*)\)\s*=>`)

// callbackEvent turns onClick?: (e: MouseEvent) => void into an event named
// onClick described as "Click event callback".
func callbackEvent(m tsMember) extraction.Event {
	ev := extraction.Event{
		Name:        m.Name,
		Description: extraction.Ptr(strings.TrimPrefix(m.Name, "on") + " event callback"),
	}
	t := strings.TrimSpace(m.Type)
	t = strings.TrimPrefix(t, "(")
	if pm := arrowParams.FindStringSubmatch(strings.TrimSpace(m.Type)); pm != nil {
		ev.Payload = extraction.StringPtr(strings.TrimSpace(pm[1]))
	} else if pm := arrowParams.FindStringSubmatch(t); pm != nil {
		ev.Payload = extraction.StringPtr(strings.TrimSpace(pm[1]))
	}
	return ev
}

var (
	withDefaultsCall = regexp.MustCompile(`withDefaults\s*\(\s*defineProps\s*<[^>]*>\s*\(\s*\)\s*,\s*\{`)
	destructuredArgs = regexp.MustCompile(`(?:function\s+[A-Z][\w$]*\s*|[A-Z][\w$]*\s*=\s*(?:React\.)?(?:forwardRef\s*\(\s*|memo\s*\(\s*)?)\(\s*\{`)
)

// propDefaults collects defaults declared outside the prop declaration:
// Vue withDefaults(defineProps<...>(), {...}) and React parameter
// destructuring ({ size = 'm' }: Props).
func propDefaults(script string) map[string]string {
	defaults := make(map[string]string)

	if loc := withDefaultsCall.FindStringIndex(script); loc != nil {
		if body, ok := blockAfter(script, loc[1]-1); ok {
			for _, entry := range splitTopLevel(body, ",") {
				if key, v, ok := splitKeyValue(entry); ok {
					if d := literalDefault(v); d != nil {
						defaults[key] = *d
					}
				}
			}
		}
	}

	if loc := destructuredArgs.FindStringIndex(script); loc != nil {
		if body, ok := blockAfter(script, loc[1]-1); ok {
			for _, entry := range splitTopLevel(body, ",") {
				key, v, found := strings.Cut(entry, "=")
				if !found || strings.HasPrefix(v, ">") {
					continue
				}
				key = strings.TrimSpace(key)
				if i := strings.Index(key, ":"); i >= 0 {
					// { size: s = 'm' } renames; the prop is still size
					key = strings.TrimSpace(key[:i])
				}
				if d := literalDefault(v); d != nil && key != "" {
					defaults[key] = *d
				}
			}
		}
	}
	return defaults
}

// applyDefaults fills DefaultValue where the winning strategy found none.
func applyDefaults(props []extraction.Prop, defaults map[string]string) {
	for i := range props {
		if props[i].DefaultValue != nil {
			continue
		}
		if d, ok := defaults[props[i].Name]; ok {
			props[i].DefaultValue = extraction.Ptr(d)
		}
	}
}

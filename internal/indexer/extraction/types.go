package extraction

// Records emitted by the extractors and read back by the query layer.
// Optional fields are pointers (nil = absent); the defaulting rule for each
// field is noted next to it.

// Token categories (closed set).
const (
	CategoryColor      = "color"
	CategorySpacing    = "spacing"
	CategoryTypography = "typography"
	CategoryShadow     = "shadow"
	CategoryBorder     = "border"
	CategoryRadius     = "radius"
	CategoryScreen     = "screen"
	CategoryGrid       = "grid"
)

// TokenCategories lists every token category in extraction order.
var TokenCategories = []string{
	CategoryColor,
	CategorySpacing,
	CategoryTypography,
	CategoryShadow,
	CategoryBorder,
	CategoryRadius,
	CategoryScreen,
	CategoryGrid,
}

// DefaultPlatform is used when a token source does not name a platform.
const DefaultPlatform = "all"

// Token is a named design value.
type Token struct {
	ID            int64           `json:"id,omitempty"`
	Category      string          `json:"category"`
	Subcategory   *string         `json:"subcategory,omitempty"`   // nil when the path has a single segment
	Name          string          `json:"name"`                    // relative path, dots replaced by dashes
	Path          string          `json:"path"`                    // <category>.<relative path>, globally unique
	CSSVariable   *string         `json:"cssVariable,omitempty"`   // --<category>-<relative path dashed>
	SCSSVariable  *string         `json:"scssVariable,omitempty"`  // $<category>-<relative path dashed>
	ValueRaw      string          `json:"valueRaw"`                // always set
	ValueNumber   *float64        `json:"valueNumber,omitempty"`   // nil unless ValueRaw is <number><unit?>
	ValueUnit     *string         `json:"valueUnit,omitempty"`     // nil unless ValueRaw carries a known unit
	ValueComputed *string         `json:"valueComputed,omitempty"` // px rendering of rem values (spacing only)
	Description   *string         `json:"description,omitempty"`
	Platform      string          `json:"platform"` // defaults to "all"
	Properties    []TokenProperty `json:"properties,omitempty"`
}

// TokenProperty is one named sub-field of a composite token (e.g. shadow x/y/blur).
type TokenProperty struct {
	Property    string   `json:"property"`
	Value       string   `json:"value"`
	ValueNumber *float64 `json:"valueNumber,omitempty"`
	ValueUnit   *string  `json:"valueUnit,omitempty"`
}

// Frameworks a component can be implemented in.
const (
	FrameworkVue   = "vue"
	FrameworkReact = "react"
	FrameworkHTML  = "html"
)

// Component categories (closed set).
const (
	ComponentAction      = "action"
	ComponentForm        = "form"
	ComponentNavigation  = "navigation"
	ComponentFeedback    = "feedback"
	ComponentLayout      = "layout"
	ComponentDataDisplay = "data-display"
	ComponentOther       = "other"
)

// ComponentCategories lists every component category.
var ComponentCategories = []string{
	ComponentAction,
	ComponentForm,
	ComponentNavigation,
	ComponentFeedback,
	ComponentLayout,
	ComponentDataDisplay,
	ComponentOther,
}

// Component is a UI component with its API surface.
type Component struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"` // unique, framework prefix stripped
	Slug        string    `json:"slug"` // kebab-case of Name
	Category    string    `json:"category"`
	Description *string   `json:"description,omitempty"`
	Frameworks  []string  `json:"frameworks"`
	Props       []Prop    `json:"props,omitempty"`
	Slots       []Slot    `json:"slots,omitempty"`
	Events      []Event   `json:"events,omitempty"`
	Examples    []Example `json:"examples,omitempty"`
	CSSClasses  []string  `json:"cssClasses,omitempty"`
}

// Prop is one component input.
type Prop struct {
	Name         string   `json:"name"`
	Type         *string  `json:"type,omitempty"`
	DefaultValue *string  `json:"defaultValue,omitempty"`
	Required     bool     `json:"required"`          // type members: true unless marked `?`; options declarations: the required literal, false when absent
	Options      []string `json:"options,omitempty"` // enumerated value set, nil when open
}

// Slot is a named insertion point of a template-based component.
type Slot struct {
	Name        string  `json:"name"` // "default" when unnamed
	Description *string `json:"description,omitempty"`
}

// Event is an emitted event or callback prop.
type Event struct {
	Name        string  `json:"name"`
	Payload     *string `json:"payload,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Example is a usage sample taken from a stories file.
type Example struct {
	Framework string  `json:"framework"`
	Title     *string `json:"title,omitempty"`
	Code      string  `json:"code"`
}

// CSS utility categories.
const (
	UtilityLayout  = "layout"
	UtilityUtility = "utility"
)

// CSSUtility is a generated family of CSS classes.
type CSSUtility struct {
	ID          int64            `json:"id,omitempty"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Classes     []string         `json:"classes,omitempty"`
	Examples    []UtilityExample `json:"examples,omitempty"`
}

// UtilityExample is a literal usage snippet of a CSS utility.
type UtilityExample struct {
	Title *string `json:"title,omitempty"`
	Code  string  `json:"code"`
}

// Documentation is one Markdown/MDX page.
type Documentation struct {
	ID       int64    `json:"id,omitempty"`
	Title    string   `json:"title"` // "Untitled" when nothing resolves
	Path     string   `json:"path"`  // unique URL-style path
	Content  string   `json:"content"`
	Category *string  `json:"category,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Icon is one entry of the generated icon registry.
type Icon struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`     // export identifier, size suffix included
	IconName string `json:"iconName"` // trailing size digits stripped
	Type     string `json:"type"`     // "unknown" when absent
	Size     int    `json:"size"`     // trailing digits of Name, 16 when absent
	ViewBox  string `json:"viewBox"`  // "0 0 16 16" when absent
	Paths    string `json:"paths"`    // serialized shape tree, verbatim
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

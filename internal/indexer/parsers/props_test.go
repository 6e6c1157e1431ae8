package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// Test Plan for prop strategies:
// - Inline type literal passed to defineProps yields optional union props with options
// - Options-object declarations read type, default, required and validator options
// - PropTypes declarations read kind, oneOf options and isRequired
// - Strategies run in order and the first non-empty result wins
// - Callback members are surfaced separately even when no props are found
// - Multi-line union members are joined before parsing
// - Defaults from withDefaults and parameter destructuring fill missing defaults

func TestInlineInterface_DefinePropsLiteral(t *testing.T) {
	t.Parallel()

	src := &ComponentSource{Name: "Button", Script: "const props = defineProps<{\n  size?: 's' | 'm' | 'l';\n}>()"}
	res := InlineInterfaceStrategy().Extract(src)

	require.Len(t, res.Props, 1)
	assert.Equal(t, extraction.Prop{
		Name:     "size",
		Type:     extraction.Ptr("'s' | 'm' | 'l'"),
		Required: false,
		Options:  []string{"s", "m", "l"},
	}, res.Props[0])
}

func TestInlineInterface_OptionalUnionKeepsOptions(t *testing.T) {
	t.Parallel()

	src := &ComponentSource{Name: "Button", Script: "const props = defineProps<{\n  size?: 's' | 'm' | undefined;\n  tone: 'info' | null;\n}>()"}
	res := InlineInterfaceStrategy().Extract(src)

	require.Len(t, res.Props, 2)
	assert.Equal(t, []string{"s", "m"}, res.Props[0].Options)
	assert.Equal(t, []string{"info"}, res.Props[1].Options)
}

func TestInlineInterface_PicksNamedPropsInterface(t *testing.T) {
	t.Parallel()

	script := `
interface Theme { dark: boolean }
export interface TagProps {
  label: string;
  removable?: boolean;
  children?: ReactNode;
  className?: string;
  onRemove?: (id: string) => void;
}`
	src := &ComponentSource{Name: "Tag", Script: script}
	strategy := InlineInterfaceStrategy()
	require.True(t, strategy.Applies(src))

	res := strategy.Extract(src)
	require.Len(t, res.Props, 2)
	assert.Equal(t, "label", res.Props[0].Name)
	assert.True(t, res.Props[0].Required)
	assert.Equal(t, "removable", res.Props[1].Name)
	assert.False(t, res.Props[1].Required)

	require.Len(t, res.Callbacks, 1)
	assert.Equal(t, "onRemove", res.Callbacks[0].Name)
	assert.Equal(t, "id: string", extraction.Deref(res.Callbacks[0].Payload))
	assert.Equal(t, "Remove event callback", extraction.Deref(res.Callbacks[0].Description))
}

func TestOptionsObject(t *testing.T) {
	t.Parallel()

	script := `
export default {
  name: 'MSelect',
  props: {
    size: {
      type: String,
      default: 'm',
      validator: (value) => ['s', 'm'].includes(value),
    },
    options: { type: Array, default: () => [] },
    value: { type: [String, Number], required: true },
    disabled: Boolean,
  },
}`
	src := &ComponentSource{Name: "Select", Script: script}
	strategy := OptionsObjectStrategy()
	require.True(t, strategy.Applies(src))

	props := strategy.Extract(src).Props
	require.Len(t, props, 4)

	assert.Equal(t, extraction.Prop{
		Name:         "size",
		Type:         extraction.Ptr("string"),
		DefaultValue: extraction.Ptr("m"),
		Options:      []string{"s", "m"},
	}, props[0])
	assert.Equal(t, "array", extraction.Deref(props[1].Type))
	assert.Nil(t, props[1].DefaultValue)
	assert.Equal(t, "string | number", extraction.Deref(props[2].Type))
	assert.True(t, props[2].Required)
	assert.Equal(t, "boolean", extraction.Deref(props[3].Type))
	assert.False(t, props[3].Required)
}

func TestValidatorOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"arrow", "(value) => ['s', 'm'].includes(value)", []string{"s", "m"}},
		{"typed arrow parameter", "(value: string[]) => ['a', 'b'].includes(value)", []string{"a", "b"}},
		{"method shorthand with typed parameter", "validator(value: string[]) { return ['a', 'b'].includes(value) }", []string{"a", "b"}},
		{"function expression", "function (value) { return [\"x\", \"y\"].indexOf(value) !== -1 }", []string{"x", "y"}},
		{"oneOf call", "PropTypes.oneOf(['info', 'danger']).isRequired", []string{"info", "danger"}},
		{"no array", "(value) => value > 0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validatorOptions(tt.text))
		})
	}
}

func TestOptionsObject_ValidatorMethod(t *testing.T) {
	t.Parallel()

	script := `
export default {
  props: {
    tone: {
      type: String,
      validator(value: string[]) { return ['info', 'danger'].includes(value) },
    },
  },
}`
	props := OptionsObjectStrategy().Extract(&ComponentSource{Script: script}).Props
	require.Len(t, props, 1)
	assert.Equal(t, []string{"info", "danger"}, props[0].Options)
}

func TestOptionsObject_ArrayForm(t *testing.T) {
	t.Parallel()

	src := &ComponentSource{Script: "defineProps(['label', 'icon'])"}
	props := OptionsObjectStrategy().Extract(src).Props
	require.Len(t, props, 2)
	assert.Equal(t, "label", props[0].Name)
	assert.Equal(t, "icon", props[1].Name)
}

func TestOptionsObject_PropTypes(t *testing.T) {
	t.Parallel()

	script := `Badge.propTypes = {
  tone: PropTypes.oneOf(['info', 'danger']).isRequired,
  label: PropTypes.string,
};`
	props := OptionsObjectStrategy().Extract(&ComponentSource{Script: script}).Props
	require.Len(t, props, 2)
	assert.Equal(t, "oneof", extraction.Deref(props[0].Type))
	assert.Equal(t, []string{"info", "danger"}, props[0].Options)
	assert.True(t, props[0].Required)
	assert.Equal(t, "string", extraction.Deref(props[1].Type))
	assert.False(t, props[1].Required)
}

func TestRunPropStrategies_FirstNonEmptyWins(t *testing.T) {
	t.Parallel()

	src := &ComponentSource{Script: "interface Props { a: string }\nexport default { props: { label: String } }"}
	res, winner := RunPropStrategies(src, []PropStrategy{OptionsObjectStrategy(), InlineInterfaceStrategy()})
	assert.Equal(t, StrategyOptionsObject, winner)
	require.Len(t, res.Props, 1)
	assert.Equal(t, "label", res.Props[0].Name)

	res, winner = RunPropStrategies(src, []PropStrategy{InlineInterfaceStrategy(), OptionsObjectStrategy()})
	assert.Equal(t, StrategyInlineInterface, winner)
	assert.Equal(t, "a", res.Props[0].Name)
}

func TestRunPropStrategies_CallbacksWithoutProps(t *testing.T) {
	t.Parallel()

	src := &ComponentSource{Script: "interface Props { onClose: () => void }"}
	res, winner := RunPropStrategies(src, []PropStrategy{OptionsObjectStrategy(), InlineInterfaceStrategy()})
	assert.Empty(t, winner)
	assert.Empty(t, res.Props)
	require.Len(t, res.Callbacks, 1)
	assert.Equal(t, "onClose", res.Callbacks[0].Name)
	assert.Nil(t, res.Callbacks[0].Payload)
}

func TestParseTSMembers_MultilineUnion(t *testing.T) {
	t.Parallel()

	members := parseTSMembers("\n  size?:\n    | 's'\n    | 'm';\n  onClick?: (e: MouseEvent) => void;\n  render(): void;\n")
	require.Len(t, members, 3)

	assert.Equal(t, "size", members[0].Name)
	assert.True(t, members[0].Optional)
	assert.Equal(t, []string{"s", "m"}, literalUnion(members[0].Type))

	assert.Equal(t, "onClick", members[1].Name)
	assert.True(t, isCallback(members[1]))

	assert.Equal(t, "render", members[2].Name)
	assert.True(t, members[2].Method)
}

func TestPropDefaults(t *testing.T) {
	t.Parallel()

	react := propDefaults("export const Button = ({ variant = 'solid', size = 'm', children, ...rest }: IButton) => null")
	assert.Equal(t, map[string]string{"variant": "solid", "size": "m"}, react)

	vue := propDefaults("const props = withDefaults(defineProps<Props>(), { size: 'm', block: false })")
	assert.Equal(t, map[string]string{"size": "m", "block": "false"}, vue)

	props := []extraction.Prop{{Name: "size"}, {Name: "label", DefaultValue: extraction.Ptr("x")}}
	applyDefaults(props, map[string]string{"size": "m", "label": "y"})
	assert.Equal(t, "m", extraction.Deref(props[0].DefaultValue))
	assert.Equal(t, "x", extraction.Deref(props[1].DefaultValue))
}

package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for type-definition files:
// - Interfaces with extends merge own members first, then parents, first occurrence wins
// - Cyclic extends chains are cut instead of looping
// - Intersection type aliases contribute members and parents
// - Options resolve from literal unions, aliases, typeof constants and name-matched constants
// - The props interface is chosen from imports, skipping imported parents

const buttonTypes = `
import { ReactNode, MouseEvent } from 'react';

export const BUTTON_VARIANTS = ['solid', 'bordered', 'text'] as const;
export const SIZES = ['s', 'm', 'l'];
export type TButtonSize = 's' | 'm' | 'l';
export type TTheme = (typeof THEMES)[number];
export const THEMES = ['light', 'dark'] as const;

export interface IBase {
  id?: string;
  className?: string;
}

export interface IButton extends IBase {
  variant?: ButtonVariant;
  size?: TButtonSize;
  theme: TTheme;
  isDisabled?: boolean;
  children?: ReactNode;
  onClick?: (event: MouseEvent<HTMLButtonElement>) => void;
}
`

func TestTypesFile_ExtendsMerge(t *testing.T) {
	t.Parallel()

	tf, err := parseTypesFile([]byte(`
interface IBase { id?: string }
interface IButton extends IBase { variant?: string }
`))
	require.NoError(t, err)

	var names []string
	for _, m := range tf.Members("IButton") {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"id", "variant"}, names)
	assert.Equal(t, []string{"variant", "id"}, names)
}

func TestTypesFile_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	tf, err := parseTypesFile([]byte(`
interface A { label: string }
interface B { label?: number; extra: boolean }
interface C extends A, B { own: string }
`))
	require.NoError(t, err)

	members := tf.Members("C")
	require.Len(t, members, 3)
	assert.Equal(t, "own", members[0].Name)
	assert.Equal(t, "label", members[1].Name)
	assert.Equal(t, "string", members[1].Type)
	assert.False(t, members[1].Optional)
	assert.Equal(t, "extra", members[2].Name)
}

func TestTypesFile_CyclicExtends(t *testing.T) {
	t.Parallel()

	tf, err := parseTypesFile([]byte(`
interface A extends B { a: string }
interface B extends A { b: string }
`))
	require.NoError(t, err)

	assert.Len(t, tf.Members("A"), 2)
	assert.Len(t, tf.Members("B"), 1)
}

func TestTypesFile_IntersectionAlias(t *testing.T) {
	t.Parallel()

	tf, err := parseTypesFile([]byte(`
interface IBase { id?: string }
export type LinkProps = IBase & { href: string }
`))
	require.NoError(t, err)

	var names []string
	for _, m := range tf.Members("LinkProps") {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"href", "id"}, names)
}

func TestTypesFile_Options(t *testing.T) {
	t.Parallel()

	tf, err := parseTypesFile([]byte(buttonTypes))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tf.Options(`'a' | 'b'`))
	assert.Equal(t, []string{"s", "m", "l"}, tf.Options("TButtonSize"))
	assert.Equal(t, []string{"light", "dark"}, tf.Options("TTheme"))
	assert.Equal(t, []string{"solid", "bordered", "text"}, tf.Options("ButtonVariant"))
	assert.Equal(t, []string{"light", "dark"}, tf.Options("(typeof THEMES)[number]"))
	assert.Nil(t, tf.Options("string"))
	assert.Nil(t, tf.Options("Id"))
}

func TestTypesFile_PropsInterface(t *testing.T) {
	t.Parallel()

	tf, err := parseTypesFile([]byte(buttonTypes))
	require.NoError(t, err)

	name, ok := tf.PropsInterface("Button", []string{"IBase", "IButton"})
	require.True(t, ok)
	assert.Equal(t, "IButton", name)

	name, ok = tf.PropsInterface("Button", nil)
	require.True(t, ok)
	assert.Equal(t, "IButton", name)
}

func TestTypesFileStrategy(t *testing.T) {
	t.Parallel()

	src := &ComponentSource{Name: "Button", Types: buttonTypes, Imported: []string{"IButton"}}
	strategy := TypesFileStrategy()
	require.True(t, strategy.Applies(src))

	res := strategy.Extract(src)

	byName := make(map[string][]string)
	var names []string
	for _, p := range res.Props {
		names = append(names, p.Name)
		byName[p.Name] = p.Options
	}
	assert.Equal(t, []string{"variant", "size", "theme", "isDisabled", "id"}, names)
	assert.Equal(t, []string{"solid", "bordered", "text"}, byName["variant"])
	assert.Equal(t, []string{"s", "m", "l"}, byName["size"])
	assert.Nil(t, byName["isDisabled"])

	require.Len(t, res.Callbacks, 1)
	assert.Equal(t, "onClick", res.Callbacks[0].Name)
	assert.Equal(t, "event: MouseEvent<HTMLButtonElement>", *res.Callbacks[0].Payload)
	assert.Equal(t, "Click event callback", *res.Callbacks[0].Description)

	assert.False(t, strategy.Applies(&ComponentSource{}))
}

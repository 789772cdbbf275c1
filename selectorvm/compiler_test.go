package selectorvm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector_TypeSelector(t *testing.T) {
	sel, err := ParseSelector("div")
	require.NoError(t, err)

	want := Selector{Components: []SelectorComponent{{LocalName: "div"}}}
	if diff := cmp.Diff(want, sel); diff != "" {
		t.Errorf("ParseSelector(\"div\") mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSelector_Universal(t *testing.T) {
	sel, err := ParseSelector("*")
	require.NoError(t, err)
	assert.Equal(t, "", sel.Components[0].LocalName)
}

func TestParseSelector_ChildCombinator(t *testing.T) {
	sel, err := ParseSelector("a > b")
	require.NoError(t, err)

	require.Len(t, sel.Components, 2)
	assert.Equal(t, "a", sel.Components[0].LocalName)
	assert.Equal(t, "b", sel.Components[1].LocalName)
	assert.Equal(t, []Combinator{Child}, sel.Combinators)
}

func TestParseSelector_DescendantCombinator(t *testing.T) {
	sel, err := ParseSelector("a b")
	require.NoError(t, err)

	require.Len(t, sel.Components, 2)
	assert.Equal(t, []Combinator{Descendant}, sel.Combinators)
}

func TestParseSelector_ChainedCombinators(t *testing.T) {
	sel, err := ParseSelector("a > b c")
	require.NoError(t, err)

	require.Len(t, sel.Components, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{
		sel.Components[0].LocalName, sel.Components[1].LocalName, sel.Components[2].LocalName,
	})
	assert.Equal(t, []Combinator{Child, Descendant}, sel.Combinators)
}

func TestParseSelector_SingleAttrPresence(t *testing.T) {
	sel, err := ParseSelector("a[href]")
	require.NoError(t, err)

	require.Len(t, sel.Components, 1)
	assert.Equal(t, "a", sel.Components[0].LocalName)
	assert.Equal(t, []string{"href"}, sel.Components[0].AttrPresence)
}

func TestParseSelector_ChainedAttrPresence(t *testing.T) {
	sel, err := ParseSelector("a[href][target]")
	require.NoError(t, err)

	assert.Equal(t, []string{"href", "target"}, sel.Components[0].AttrPresence)
}

func TestParseSelector_Errors(t *testing.T) {
	cases := []string{"", "  ", "a >", "a[", "a[href"}
	for _, text := range cases {
		_, err := ParseSelector(text)
		assert.Error(t, err, "expected an error parsing %q", text)
	}
}

func TestCompile_SingleComponentHasNoIntermediateAddresses(t *testing.T) {
	ast, err := ParseAST(map[string]int{"a": 1})
	require.NoError(t, err)

	program, err := Compile(ast, "utf-8")
	require.NoError(t, err)

	require.Equal(t, 1, program.EntryPoints.Len())
	require.Len(t, program.Instructions, 1)
}

func TestCompile_ChildCombinatorAllocatesOneTailAddress(t *testing.T) {
	ast, err := ParseAST(map[string]int{"a > b": 1})
	require.NoError(t, err)

	program, err := Compile(ast, "utf-8")
	require.NoError(t, err)

	// One address for the tail ("b") component, one entry point for "a".
	require.Len(t, program.Instructions, 2)
	require.Equal(t, 1, program.EntryPoints.Len())

	entry := program.instr(program.EntryPoints.Start)
	branch, bail := entry.TryWithoutAttrs("a")
	require.False(t, bail)
	require.NotNil(t, branch)
	assert.NotNil(t, branch.ChildJumps)
	assert.Nil(t, branch.DescendantJumps)
}

func TestCompile_ErrorOnEmptySelector(t *testing.T) {
	_, err := Compile(&AST[int]{Entries: []ASTEntry[int]{{Payload: 1}}}, "utf-8")
	require.Error(t, err)

	var selErr *SelectorError
	assert.ErrorAs(t, err, &selErr)
}

func TestNew_CompilesAndReturnsEmptyStackVM(t *testing.T) {
	ast, err := ParseAST(map[string]int{"a": 1})
	require.NoError(t, err)

	vm, err := New(ast, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, 0, vm.StackLen())
}

package selectorvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackDirectiveFor(t *testing.T) {
	assert.Equal(t, PopImmediately, StackDirectiveFor("br", HTML))
	assert.Equal(t, PopImmediately, StackDirectiveFor("img", HTML))
	assert.Equal(t, Push, StackDirectiveFor("div", HTML))
	assert.Equal(t, Push, StackDirectiveFor("a", HTML))
	assert.Equal(t, PushIfNotSelfClosing, StackDirectiveFor("circle", SVG))
	assert.Equal(t, PushIfNotSelfClosing, StackDirectiveFor("mi", MathML))
}

func TestStack_PushAndPopUpTo(t *testing.T) {
	var s Stack[int]

	a := newStackItem[int]("a")
	a.MatchedPayloads[1] = struct{}{}
	s.PushItem(a)

	b := newStackItem[int]("b")
	b.MatchedPayloads[2] = struct{}{}
	s.PushItem(b)

	require.Equal(t, 2, s.Len())

	var unmatched []int
	s.PopUpTo("b", func(p int) { unmatched = append(unmatched, p) })

	assert.Equal(t, []int{2}, unmatched)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, LocalName("a"), s.Items()[0].LocalName)
}

func TestStack_PopUpTo_PopsIntermediateUnclosedItems(t *testing.T) {
	var s Stack[int]

	s.PushItem(newStackItem[int]("a"))
	inner := newStackItem[int]("b")
	inner.MatchedPayloads[7] = struct{}{}
	s.PushItem(inner)
	// "c" never gets a matching end tag before "a" closes.
	c := newStackItem[int]("c")
	c.MatchedPayloads[9] = struct{}{}
	s.PushItem(c)

	var unmatched []int
	s.PopUpTo("a", func(p int) { unmatched = append(unmatched, p) })

	assert.ElementsMatch(t, []int{7, 9}, unmatched)
	assert.Equal(t, 0, s.Len())
}

func TestStack_PopUpTo_StrayEndTagIsIgnored(t *testing.T) {
	var s Stack[int]
	s.PushItem(newStackItem[int]("a"))

	called := false
	s.PopUpTo("nonexistent", func(int) { called = true })

	assert.False(t, called)
	assert.Equal(t, 1, s.Len())
}

func TestStack_HasAncestorWithDescendantJumps(t *testing.T) {
	var s Stack[int]

	root := newStackItem[int]("root")
	root.DescendantJumps = []AddressRange{{Start: 0, End: 1}}
	s.PushItem(root)
	assert.False(t, s.Items()[0].HasAncestorWithDescendantJumps)

	child := newStackItem[int]("child")
	s.PushItem(child)
	assert.True(t, s.Items()[1].HasAncestorWithDescendantJumps)

	grandchild := newStackItem[int]("grandchild")
	s.PushItem(grandchild)
	assert.True(t, s.Items()[2].HasAncestorWithDescendantJumps)
}

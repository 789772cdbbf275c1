package selectorvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespace_String(t *testing.T) {
	assert.Equal(t, "html", HTML.String())
	assert.Equal(t, "svg", SVG.String())
	assert.Equal(t, "mathml", MathML.String())
}

func TestIsVoidElement(t *testing.T) {
	for _, name := range []LocalName{"br", "img", "input", "area", "hr"} {
		assert.True(t, isVoidElement(name), "%q should be void", name)
	}
	for _, name := range []LocalName{"div", "span", "a"} {
		assert.False(t, isVoidElement(name), "%q should not be void", name)
	}
}

func TestLocalName_Clone(t *testing.T) {
	n := LocalName("section")
	assert.Equal(t, n, n.Clone())
}

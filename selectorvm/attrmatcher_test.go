package selectorvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildAttrs lays out name=value pairs into a single backing buffer and
// returns the matcher over it, mirroring how a tokenizer would hand the VM
// a start tag's raw attribute bytes.
func buildAttrs(t *testing.T, pairs ...[2]string) *AttributeMatcher {
	t.Helper()

	var input []byte
	var spans []AttrSpan

	for _, p := range pairs {
		nameStart := len(input)
		input = append(input, p[0]...)
		nameEnd := len(input)

		valStart := len(input)
		input = append(input, p[1]...)
		valEnd := len(input)

		spans = append(spans, AttrSpan{
			NameStart: nameStart, NameEnd: nameEnd,
			ValueStart: valStart, ValueEnd: valEnd,
		})
	}

	return NewAttributeMatcher(AttrBuffer{Input: input, Attrs: spans, Encoding: "utf-8"}, HTML)
}

func TestAttributeMatcher_HasAttr(t *testing.T) {
	m := buildAttrs(t, [2]string{"href", "/x"}, [2]string{"class", "a b c"})

	assert.True(t, m.HasAttr("href"))
	assert.True(t, m.HasAttr("HREF"), "attribute names are matched case-insensitively")
	assert.False(t, m.HasAttr("target"))
}

func TestAttributeMatcher_AttrEquals(t *testing.T) {
	m := buildAttrs(t, [2]string{"class", "Foo"})

	assert.True(t, m.AttrEquals("class", "Foo", false))
	assert.False(t, m.AttrEquals("class", "foo", false))
	assert.True(t, m.AttrEquals("class", "foo", true))
	assert.False(t, m.AttrEquals("missing", "foo", true))
}

func TestAttributeMatcher_AttrStartsWith(t *testing.T) {
	m := buildAttrs(t, [2]string{"href", "https://example.com/path"})

	assert.True(t, m.AttrStartsWith("href", "https://"))
	assert.False(t, m.AttrStartsWith("href", "http://"))
	assert.False(t, m.AttrStartsWith("href", ""))
}

func TestAttributeMatcher_AttrEndsWith(t *testing.T) {
	m := buildAttrs(t, [2]string{"href", "archive.pdf"})

	assert.True(t, m.AttrEndsWith("href", ".pdf"))
	assert.False(t, m.AttrEndsWith("href", ".html"))
}

func TestAttributeMatcher_AttrContains(t *testing.T) {
	m := buildAttrs(t, [2]string{"class", "alpha beta gamma"})

	assert.True(t, m.AttrContains("class", "eta gam"))
	assert.False(t, m.AttrContains("class", "zzz"))
}

func TestAttributeMatcher_AttrIncludesWord(t *testing.T) {
	m := buildAttrs(t, [2]string{"class", "alpha beta gamma"})

	assert.True(t, m.AttrIncludesWord("class", "beta"))
	assert.False(t, m.AttrIncludesWord("class", "et"), "must match a whole word, not a substring")
	assert.False(t, m.AttrIncludesWord("class", ""))
}

func TestAttributeMatcher_EmptyBuffer(t *testing.T) {
	m := NewAttributeMatcher(AttrBuffer{Encoding: "utf-8"}, HTML)

	assert.False(t, m.HasAttr("anything"))
	assert.False(t, m.AttrEquals("anything", "", false))
}

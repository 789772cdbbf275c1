package selectorvm

import (
	"bytes"
	"strings"
)

// AttrSpan locates one attribute's name and value as byte ranges into a
// start tag's raw input, letting the matcher answer predicates without
// decoding anything it doesn't need (spec.md §6 "Attribute buffer").
type AttrSpan struct {
	NameStart, NameEnd   int
	ValueStart, ValueEnd int
}

// AttrBuffer is the ordered list of attribute spans the tokenizer hands to
// the VM once it has scanned a start tag's attributes.
type AttrBuffer struct {
	Input    []byte
	Attrs    []AttrSpan
	Encoding string
}

// AttributeMatcher answers predicates over a start tag's raw attribute
// bytes (spec.md §4.3). It does not consult the buffer's Encoding and
// decodes nothing: names and values are always compared as raw bytes,
// which is correct for presence/prefix/suffix predicates over ASCII
// attribute names but not guaranteed for multi-byte value comparisons
// in encodings other than UTF-8.
type AttributeMatcher struct {
	input []byte
	attrs []AttrSpan
	ns    Namespace
}

// NewAttributeMatcher builds a matcher over buf for an element in
// namespace ns.
func NewAttributeMatcher(buf AttrBuffer, ns Namespace) *AttributeMatcher {
	return &AttributeMatcher{input: buf.Input, attrs: buf.Attrs, ns: ns}
}

func (m *AttributeMatcher) name(s AttrSpan) []byte {
	return m.input[s.NameStart:s.NameEnd]
}

func (m *AttributeMatcher) value(s AttrSpan) []byte {
	return m.input[s.ValueStart:s.ValueEnd]
}

func (m *AttributeMatcher) find(name string) (AttrSpan, bool) {
	for _, a := range m.attrs {
		if bytes.EqualFold(m.name(a), []byte(name)) {
			return a, true
		}
	}
	return AttrSpan{}, false
}

// HasAttr answers an `[name]` presence predicate.
func (m *AttributeMatcher) HasAttr(name string) bool {
	_, ok := m.find(name)
	return ok
}

// AttrEquals answers an `[name=value]` predicate.
func (m *AttributeMatcher) AttrEquals(name, value string, caseInsensitive bool) bool {
	a, ok := m.find(name)
	if !ok {
		return false
	}
	v := m.value(a)
	if caseInsensitive {
		return bytes.EqualFold(v, []byte(value))
	}
	return bytes.Equal(v, []byte(value))
}

// AttrStartsWith answers an `[name^=value]` predicate.
func (m *AttributeMatcher) AttrStartsWith(name, value string) bool {
	a, ok := m.find(name)
	if !ok || value == "" {
		return false
	}
	return bytes.HasPrefix(m.value(a), []byte(value))
}

// AttrEndsWith answers an `[name$=value]` predicate.
func (m *AttributeMatcher) AttrEndsWith(name, value string) bool {
	a, ok := m.find(name)
	if !ok || value == "" {
		return false
	}
	return bytes.HasSuffix(m.value(a), []byte(value))
}

// AttrContains answers an `[name*=value]` predicate.
func (m *AttributeMatcher) AttrContains(name, value string) bool {
	a, ok := m.find(name)
	if !ok || value == "" {
		return false
	}
	return bytes.Contains(m.value(a), []byte(value))
}

// AttrIncludesWord answers an `[name~=value]` predicate: value must
// appear as one whitespace-separated word of the attribute's value.
func (m *AttributeMatcher) AttrIncludesWord(name, value string) bool {
	a, ok := m.find(name)
	if !ok || value == "" {
		return false
	}
	for _, word := range strings.Fields(string(m.value(a))) {
		if word == value {
			return true
		}
	}
	return false
}

package selectorvm

// Namespace controls implicit-close rules for the open-element stack.
type Namespace uint8

const (
	HTML Namespace = iota
	SVG
	MathML
)

func (ns Namespace) String() string {
	switch ns {
	case SVG:
		return "svg"
	case MathML:
		return "mathml"
	default:
		return "html"
	}
}

// LocalName is a tag's local name. It is a Go string, so it never aliases
// the tokenizer's byte buffer; a name is passed through Clone when it is
// stored on a stack item.
type LocalName string

// Clone returns an owned copy of the local name, safe to keep past the
// lifetime of the tokenizer's input buffer.
func (l LocalName) Clone() LocalName {
	return LocalName(string(l))
}

// htmlVoidElements is the fixed set of HTML elements that never have
// content, per spec.md §4.1.
var htmlVoidElements = map[LocalName]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {},
	"source": {}, "track": {}, "wbr": {},
}

func isVoidElement(name LocalName) bool {
	_, ok := htmlVoidElements[name]
	return ok
}

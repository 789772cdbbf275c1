package selectorvm

// StackDirective classifies an incoming element before it is matched
// (spec.md §3 "Stack directive").
type StackDirective uint8

const (
	// Push is a normal open element: push on successful match.
	Push StackDirective = iota
	// PushIfNotSelfClosing is a foreign-namespace element whose
	// self-closing flag must be consulted, which requires the attribute
	// phase because the tokenizer only reveals self-closing alongside
	// the attribute buffer.
	PushIfNotSelfClosing
	// PopImmediately is a void (or implicitly empty) element: never
	// pushed, always matched with WithContent=false.
	PopImmediately
)

// StackItem is the per-open-element record (spec.md §3 "Stack item").
type StackItem[P comparable] struct {
	LocalName       LocalName
	MatchedPayloads map[P]struct{}
	ChildJumps      []AddressRange
	DescendantJumps []AddressRange

	// HasAncestorWithDescendantJumps is true iff any item below this one
	// on the stack carries a non-empty DescendantJumps. It is the
	// early-exit key for the descendant-jump ancestor walk.
	HasAncestorWithDescendantJumps bool
}

func newStackItem[P comparable](name LocalName) StackItem[P] {
	return StackItem[P]{
		LocalName:       name,
		MatchedPayloads: make(map[P]struct{}),
	}
}

// clone returns a deep-enough copy of the item suitable for pushing onto
// the stack from a scratch ExecutionCtx: the local name is interned via
// LocalName.Clone so the stack never retains tokenizer-owned bytes.
func (s StackItem[P]) clone() StackItem[P] {
	s.LocalName = s.LocalName.Clone()
	return s
}

// Stack is the ordered sequence of currently-open elements, innermost
// last (spec.md §4.1).
type Stack[P comparable] struct {
	items []StackItem[P]
}

// Items returns an ordered view of the stack, innermost last. Callers
// must not mutate the returned slice.
func (s *Stack[P]) Items() []StackItem[P] {
	return s.items
}

func (s *Stack[P]) Len() int {
	return len(s.items)
}

// StackDirectiveFor computes the directive for an incoming element
// (spec.md §4.1 policy).
func StackDirectiveFor(name LocalName, ns Namespace) StackDirective {
	if ns == HTML {
		if isVoidElement(name) {
			return PopImmediately
		}
		return Push
	}
	return PushIfNotSelfClosing
}

// PushItem appends item to the stack, deriving HasAncestorWithDescendantJumps
// from the current top.
func (s *Stack[P]) PushItem(item StackItem[P]) {
	if len(s.items) > 0 {
		top := s.items[len(s.items)-1]
		item.HasAncestorWithDescendantJumps = top.HasAncestorWithDescendantJumps || len(top.DescendantJumps) > 0
	} else {
		item.HasAncestorWithDescendantJumps = false
	}
	s.items = append(s.items, item)
}

// PopUpTo pops items from the top of the stack while their local name
// differs from name; if a matching item is found it too is popped. Every
// popped item's payloads that were emitted with_content=true are reported
// to unmatch exactly once. If no matching item exists, nothing is popped
// (spec.md §4.1, stray end tag).
func (s *Stack[P]) PopUpTo(name LocalName, unmatch func(P)) {
	idx := -1
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].LocalName == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	popped := s.items[idx:]
	for i := len(popped) - 1; i >= 0; i-- {
		for payload := range popped[i].MatchedPayloads {
			unmatch(payload)
		}
	}
	s.items = s.items[:idx]
}

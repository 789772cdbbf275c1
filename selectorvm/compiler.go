package selectorvm

import "strings"

// compoundInstr is the sole Instruction implementation the compiler
// emits: it matches an (optional) local name and an (optional) set of
// required-present attributes. A bare local-name check never needs
// attributes; as soon as AttrPresence is non-empty, the instruction can
// only be decided once the attribute buffer is available, which is
// exactly the bailout spec.md §3 describes for "Instruction".
type compoundInstr[P comparable] struct {
	localName string // "" matches any local name (the `*` universal selector)
	attrs     []string
	branch    ExecutionBranch[P]
}

func (c *compoundInstr[P]) nameMatches(name LocalName) bool {
	return c.localName == "" || c.localName == string(name)
}

func (c *compoundInstr[P]) hasAttrRequirements() bool {
	return len(c.attrs) > 0
}

func (c *compoundInstr[P]) attrsPresent(am *AttributeMatcher) bool {
	for _, a := range c.attrs {
		if !am.HasAttr(a) {
			return false
		}
	}
	return true
}

func (c *compoundInstr[P]) TryWithoutAttrs(name LocalName) (*ExecutionBranch[P], bool) {
	if !c.nameMatches(name) {
		return nil, false
	}
	if c.hasAttrRequirements() {
		return nil, true
	}
	return &c.branch, false
}

func (c *compoundInstr[P]) Exec(name LocalName, am *AttributeMatcher) *ExecutionBranch[P] {
	if !c.nameMatches(name) {
		return nil
	}
	if c.hasAttrRequirements() && !c.attrsPresent(am) {
		return nil
	}
	return &c.branch
}

func (c *compoundInstr[P]) CompleteExecutionWithAttrs(am *AttributeMatcher) *ExecutionBranch[P] {
	// Only reachable for an instruction whose name already matched in
	// TryWithoutAttrs — that's what produced the bailout in the first
	// place — so only the attribute requirement remains to check.
	if c.hasAttrRequirements() && !c.attrsPresent(am) {
		return nil
	}
	return &c.branch
}

// programBuilder accumulates instructions into one flat array, handing
// back address ranges as it goes, matching spec.md §3 "Address range".
type programBuilder[P comparable] struct {
	instructions []Instruction[P]
}

func (b *programBuilder[P]) alloc(instr Instruction[P]) AddressRange {
	start := len(b.instructions)
	b.instructions = append(b.instructions, instr)
	return AddressRange{Start: start, End: start + 1}
}

// Compile turns an AST into an immutable Program. It is a deliberately
// small compiler: one compoundInstr per selector component, chained via
// child/descendant jump tables exactly as spec.md §4.2/§4.4 describes,
// with no cross-selector merging (spec.md §1 Non-goals: "no
// selector-level optimization beyond what the compiler already
// produces" — this compiler produces none).
func Compile[P comparable](ast *AST[P], encoding string) (*Program[P], error) {
	b := &programBuilder[P]{}

	entryInstrs := make([]Instruction[P], 0, len(ast.Entries))
	for _, entry := range ast.Entries {
		instr, err := b.compileChain(entry.Selector, entry.Payload)
		if err != nil {
			return nil, err
		}
		entryInstrs = append(entryInstrs, instr)
	}

	entryPoints := AddressRange{Start: len(b.instructions), End: len(b.instructions) + len(entryInstrs)}
	b.instructions = append(b.instructions, entryInstrs...)

	return &Program[P]{Instructions: b.instructions, EntryPoints: entryPoints}, nil
}

// compileChain builds the instruction for sel.Components[0], wiring a
// child- or descendant-jump table (per sel.Combinators[0]) to the
// instruction compiled for the remainder of the chain. The payload is
// only attached to the branch of the last component.
func (b *programBuilder[P]) compileChain(sel Selector, payload P) (Instruction[P], error) {
	if len(sel.Components) == 0 {
		return nil, selectorErrorf("", "selector has no components")
	}

	last := len(sel.Components) - 1
	tail := &compoundInstr[P]{
		localName: sel.Components[last].LocalName,
		attrs:     sel.Components[last].AttrPresence,
		branch:    ExecutionBranch[P]{Payloads: []P{payload}},
	}

	instr := Instruction[P](tail)

	for i := last - 1; i >= 0; i-- {
		addr := b.alloc(instr)
		branch := ExecutionBranch[P]{}

		switch sel.Combinators[i] {
		case Child:
			branch.ChildJumps = &addr
		default:
			branch.DescendantJumps = &addr
		}

		instr = &compoundInstr[P]{
			localName: sel.Components[i].LocalName,
			attrs:     sel.Components[i].AttrPresence,
			branch:    branch,
		}
	}

	return instr, nil
}

// New compiles ast for the given document encoding and returns a ready
// VM with an empty stack (spec.md §6, `new(ast, encoding) -> VM`).
// encoding is an opaque label (e.g. "utf-8") passed to Compile, which does
// not interpret it; the returned VM does not keep it. AttributeMatchers
// are built from the AttrBuffer supplied when an AttributeRequest is served.
func New[P comparable](ast *AST[P], encoding string) (*VM[P], error) {
	program, err := Compile(ast, encoding)
	if err != nil {
		return nil, err
	}
	return NewVM(program), nil
}

// ParseAST builds an AST from plain selector text and payloads, for
// tests and the cmd/ tools — a stand-in for the CSS selector parser
// spec.md §1 keeps out of this module's scope.
func ParseAST[P comparable](entries map[string]P) (*AST[P], error) {
	ast := &AST[P]{}
	for text, payload := range entries {
		sel, err := ParseSelector(text)
		if err != nil {
			return nil, err
		}
		ast.Entries = append(ast.Entries, ASTEntry[P]{Payload: payload, Selector: sel})
	}
	return ast, nil
}

// ParseSelector parses a small selector subset: type selectors (`div`),
// the universal selector (`*`), the child combinator (`>`), the
// descendant combinator (plain whitespace), and attribute-presence
// compounds (`a[href]`, chainable as `a[href][target]`).
func ParseSelector(text string) (Selector, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Selector{}, selectorErrorf(text, "empty selector")
	}

	var sel Selector

	first, err := parseComponent(text, tokens[0])
	if err != nil {
		return Selector{}, err
	}
	sel.Components = append(sel.Components, first)

	i := 1
	for i < len(tokens) {
		combinator := Descendant
		tok := tokens[i]
		if tok == ">" {
			combinator = Child
			i++
			if i >= len(tokens) {
				return Selector{}, selectorErrorf(text, "combinator '>' with no following component")
			}
			tok = tokens[i]
		}

		comp, err := parseComponent(text, tok)
		if err != nil {
			return Selector{}, err
		}

		sel.Components = append(sel.Components, comp)
		sel.Combinators = append(sel.Combinators, combinator)
		i++
	}

	return sel, nil
}

func parseComponent(selectorText, tok string) (SelectorComponent, error) {
	namePart := tok
	var attrs []string

	if idx := strings.IndexByte(tok, '['); idx >= 0 {
		namePart = tok[:idx]
		rest := tok[idx:]

		for len(rest) > 0 {
			if rest[0] != '[' {
				return SelectorComponent{}, selectorErrorf(selectorText, "malformed attribute selector near %q", rest)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return SelectorComponent{}, selectorErrorf(selectorText, "unterminated attribute selector near %q", rest)
			}
			name := strings.TrimSpace(rest[1:end])
			if name == "" {
				return SelectorComponent{}, selectorErrorf(selectorText, "empty attribute selector near %q", rest)
			}
			attrs = append(attrs, name)
			rest = rest[end+1:]
		}
	}

	localName := ""
	if namePart != "" && namePart != "*" {
		localName = namePart
	}

	return SelectorComponent{LocalName: localName, AttrPresence: attrs}, nil
}

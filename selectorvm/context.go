package selectorvm

// MatchInfo is reported to the match handler for each newly matched
// selector on the current element.
type MatchInfo[P comparable] struct {
	Payload     P
	WithContent bool
}

// MatchHandler is invoked synchronously, once per newly matched payload,
// from ExecForStartTag or from a served AttributeRequest. It must not
// reenter the VM (spec.md §5).
type MatchHandler[P comparable] func(MatchInfo[P])

// UnmatchHandler is invoked synchronously for every payload that goes out
// of scope when its element is popped off the stack.
type UnmatchHandler[P comparable] func(P)

// ExecutionCtx is the per-start-tag scratch value: the stack item under
// construction plus whether the element has content and its namespace
// (spec.md §3 "Execution Context").
type ExecutionCtx[P comparable] struct {
	StackItem   StackItem[P]
	WithContent bool
	NS          Namespace
}

func newExecutionCtx[P comparable](name LocalName, ns Namespace) ExecutionCtx[P] {
	return ExecutionCtx[P]{
		StackItem:   newStackItem[P](name),
		WithContent: true,
		NS:          ns,
	}
}

// AddExecutionBranch emits every payload in branch not already matched on
// this element, then — if the element has content — appends the branch's
// child/descendant jump tables so the element's subtree inherits them
// (spec.md §4.3). If the element has no content, jump tables are
// discarded: there is no subtree to ever reach them.
func (c *ExecutionCtx[P]) AddExecutionBranch(branch *ExecutionBranch[P], handler MatchHandler[P]) {
	if branch == nil {
		return
	}

	for _, payload := range branch.Payloads {
		if _, already := c.StackItem.MatchedPayloads[payload]; already {
			continue
		}

		if handler != nil {
			handler(MatchInfo[P]{Payload: payload, WithContent: c.WithContent})
		}
		c.StackItem.MatchedPayloads[payload] = struct{}{}
	}

	if !c.WithContent {
		return
	}

	if branch.ChildJumps != nil {
		c.StackItem.ChildJumps = append(c.StackItem.ChildJumps, *branch.ChildJumps)
	}
	if branch.DescendantJumps != nil {
		c.StackItem.DescendantJumps = append(c.StackItem.DescendantJumps, *branch.DescendantJumps)
	}
}

func (c ExecutionCtx[P]) intoOwned() ExecutionCtx[P] {
	c.StackItem = c.StackItem.clone()
	return c
}

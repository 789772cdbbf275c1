package selectorvm

import "fmt"

// AuxStartTagInfo is the attribute information the tokenizer supplies
// when serving an AttributeRequest (spec.md §6).
type AuxStartTagInfo struct {
	Input       []byte
	AttrBuffer  AttrBuffer
	SelfClosing bool
}

// AttributeRequest is the VM's reified continuation: a one-shot deferred
// computation that, once the caller has scanned a start tag's attribute
// buffer, resumes matching exactly where the VM suspended (spec.md §9,
// "Cooperative suspension without language async"). It must be served
// exactly once, before the VM's next ExecForStartTag call.
type AttributeRequest[P comparable] struct {
	vm     *VM[P]
	served bool
	resume func(vm *VM[P], aux AuxStartTagInfo, handler MatchHandler[P])
}

// Serve supplies the attribute info the request was waiting on, completes
// matching, and pushes the element's stack item if it has content. Serving
// the same request twice is a programming error and panics, matching
// spec.md §7's fail-fast contract-violation policy.
func (r *AttributeRequest[P]) Serve(aux AuxStartTagInfo, handler MatchHandler[P]) {
	if r.served {
		panic("selectorvm: AttributeRequest served more than once")
	}
	r.served = true
	r.vm.awaitingAttrs = false
	r.resume(r.vm, aux, handler)
}

// jumpPtr is the restore point for a bailout inside the child-jump phase:
// which instruction set, and the offset within it.
type jumpPtr struct {
	instrSetIdx int
	offset      int
}

// hereditaryJumpPtr is the restore point for a bailout inside the
// descendant-jump phase: which ancestor (by distance from the top of the
// stack), which of its instruction sets, and the offset within it.
type hereditaryJumpPtr struct {
	stackOffset int
	instrSetIdx int
	offset      int
}

type bailout[T any] struct {
	atAddr       int
	restorePoint T
}

// VM is the Selector Matching Virtual Machine: it owns the compiled
// Program and the open-element Stack and implements the start-tag
// matching protocol described in spec.md §4.4-§4.5.
type VM[P comparable] struct {
	program       *Program[P]
	stack         Stack[P]
	awaitingAttrs bool
}

// NewVM wraps an already-compiled Program in a VM with an empty stack. Use
// New (in compiler.go) to go from an AST to a VM in one step, per
// spec.md §6's `new(ast, encoding) -> VM` contract.
func NewVM[P comparable](program *Program[P]) *VM[P] {
	return &VM[P]{program: program}
}

// StackLen reports the current open-element depth; it is 0 for a
// well-formed document once all end tags have been processed (spec.md §8,
// testable property 6).
func (vm *VM[P]) StackLen() int {
	return vm.stack.Len()
}

// ExecForStartTag matches local_name/ns against the program. It returns
// nil when matching completed synchronously, or a non-nil AttributeRequest
// that the caller must Serve exactly once, before the next start tag, to
// finish matching (spec.md §4.4, §6).
//
// Calling ExecForStartTag again while a previously returned request has
// not yet been served is itself a contract violation; spec.md §9 leaves
// this case's policy to the implementation, and this VM fails fast,
// symmetric with the double-serve case in spec.md §7.
func (vm *VM[P]) ExecForStartTag(name LocalName, ns Namespace, handler MatchHandler[P]) *AttributeRequest[P] {
	if vm.awaitingAttrs {
		panic("selectorvm: ExecForStartTag called before the previous AttributeRequest was served")
	}

	ctx := newExecutionCtx[P](name, ns)
	directive := StackDirectiveFor(name, ns)

	switch directive {
	case PopImmediately:
		ctx.WithContent = false

	case PushIfNotSelfClosing:
		owned := ctx.intoOwned()
		return vm.requestAttrs(func(vm *VM[P], aux AuxStartTagInfo, handler MatchHandler[P]) {
			am := NewAttributeMatcher(aux.AttrBuffer, ns)
			owned.WithContent = !aux.SelfClosing

			vm.execInstrSetWithAttrs(vm.program.EntryPoints, am, &owned, 0, handler)
			vm.execJumpsWithAttrs(am, &owned, jumpPtr{}, handler)
			vm.execHereditaryJumpsWithAttrs(am, &owned, hereditaryJumpPtr{}, handler)

			if owned.WithContent {
				vm.stack.PushItem(owned.StackItem)
			}
		})
	}

	return vm.execWithoutAttrs(ctx, handler)
}

// ExecForEndTag unwinds the stack up to and including the deepest open
// element named local_name, reporting every payload those elements
// matched with_content=true to unmatch. A stray end tag with no matching
// open element is silently ignored (spec.md §4.5, §7).
func (vm *VM[P]) ExecForEndTag(localName LocalName, unmatch UnmatchHandler[P]) {
	vm.stack.PopUpTo(localName, unmatch)
}

func (vm *VM[P]) requestAttrs(resume func(vm *VM[P], aux AuxStartTagInfo, handler MatchHandler[P])) *AttributeRequest[P] {
	vm.awaitingAttrs = true
	return &AttributeRequest[P]{vm: vm, resume: resume}
}

// execWithoutAttrs runs the no-attribute phase in fixed order — entry
// points, then child jumps, then descendant jumps — bailing out to an
// AttributeRequest the moment any instruction is undecidable without
// attributes (spec.md §4.4 step 3).
func (vm *VM[P]) execWithoutAttrs(ctx ExecutionCtx[P], handler MatchHandler[P]) *AttributeRequest[P] {
	if b, bailed := vm.tryExecInstrSetWithoutAttrs(vm.program.EntryPoints, &ctx, handler); bailed {
		return bailoutRequest(vm, ctx, b, func(vm *VM[P], c *ExecutionCtx[P], am *AttributeMatcher, rp int, h MatchHandler[P]) {
			vm.execInstrSetWithAttrs(vm.program.EntryPoints, am, c, rp, h)
			vm.execJumpsWithAttrs(am, c, jumpPtr{}, h)
			vm.execHereditaryJumpsWithAttrs(am, c, hereditaryJumpPtr{}, h)
		})
	}

	if b, bailed := vm.tryExecJumpsWithoutAttrs(&ctx, handler); bailed {
		return bailoutRequest(vm, ctx, b, func(vm *VM[P], c *ExecutionCtx[P], am *AttributeMatcher, rp jumpPtr, h MatchHandler[P]) {
			vm.execJumpsWithAttrs(am, c, rp, h)
			vm.execHereditaryJumpsWithAttrs(am, c, hereditaryJumpPtr{}, h)
		})
	}

	if b, bailed := vm.tryExecHereditaryJumpsWithoutAttrs(&ctx, handler); bailed {
		return bailoutRequest(vm, ctx, b, func(vm *VM[P], c *ExecutionCtx[P], am *AttributeMatcher, rp hereditaryJumpPtr, h MatchHandler[P]) {
			vm.execHereditaryJumpsWithAttrs(am, c, rp, h)
		})
	}

	if ctx.WithContent {
		vm.stack.PushItem(ctx.intoOwned().StackItem)
	}

	return nil
}

// bailoutRequest builds the AttributeRequest for a bailout whose restore
// point is an int, jumpPtr or hereditaryJumpPtr: it completes the bailed-out instruction,
// resumes the interrupted phase (and runs every later phase) via resumer,
// then pushes the item if it has content.
func bailoutRequest[P comparable, T any](vm *VM[P], ctx ExecutionCtx[P], b bailout[T], resumer func(vm *VM[P], c *ExecutionCtx[P], am *AttributeMatcher, rp T, h MatchHandler[P])) *AttributeRequest[P] {
	owned := ctx.intoOwned()
	ns := owned.NS

	return vm.requestAttrs(func(vm *VM[P], aux AuxStartTagInfo, handler MatchHandler[P]) {
		am := NewAttributeMatcher(aux.AttrBuffer, ns)

		vm.completeInstrExecutionWithAttrs(b.atAddr, am, &owned, handler)
		resumer(vm, &owned, am, b.restorePoint, handler)

		if owned.WithContent {
			vm.stack.PushItem(owned.StackItem)
		}
	})
}

func (vm *VM[P]) completeInstrExecutionWithAttrs(addr int, am *AttributeMatcher, ctx *ExecutionCtx[P], handler MatchHandler[P]) {
	branch := vm.program.instr(addr).CompleteExecutionWithAttrs(am)
	ctx.AddExecutionBranch(branch, handler)
}

// tryExecInstrSetWithoutAttrs tries every instruction in addrRange against
// the local name alone. The restore-point offset is defined as
// (bailout-address - instr-set-start + 1), so resumption starts at the
// instruction immediately after the one that bailed out (spec.md §4.4,
// "Restore points resume within...").
func (vm *VM[P]) tryExecInstrSetWithoutAttrs(addrRange AddressRange, ctx *ExecutionCtx[P], handler MatchHandler[P]) (bailout[int], bool) {
	start := addrRange.Start

	for addr := addrRange.Start; addr < addrRange.End; addr++ {
		branch, bail := vm.program.instr(addr).TryWithoutAttrs(ctx.StackItem.LocalName)
		if bail {
			return bailout[int]{atAddr: addr, restorePoint: addr - start + 1}, true
		}
		ctx.AddExecutionBranch(branch, handler)
	}

	return bailout[int]{}, false
}

func (vm *VM[P]) execInstrSetWithAttrs(addrRange AddressRange, am *AttributeMatcher, ctx *ExecutionCtx[P], offset int, handler MatchHandler[P]) {
	for addr := addrRange.Start + offset; addr < addrRange.End; addr++ {
		branch := vm.program.instr(addr).Exec(ctx.StackItem.LocalName, am)
		ctx.AddExecutionBranch(branch, handler)
	}
}

// tryExecJumpsWithoutAttrs consults the innermost open element's (the
// current stack top, i.e. the new element's parent) child-jump instruction
// sets in order.
func (vm *VM[P]) tryExecJumpsWithoutAttrs(ctx *ExecutionCtx[P], handler MatchHandler[P]) (bailout[jumpPtr], bool) {
	items := vm.stack.Items()
	if len(items) == 0 {
		return bailout[jumpPtr]{}, false
	}
	parent := items[len(items)-1]

	for i, jumps := range parent.ChildJumps {
		if b, bailed := vm.tryExecInstrSetWithoutAttrs(jumps, ctx, handler); bailed {
			return bailout[jumpPtr]{
				atAddr:       b.atAddr,
				restorePoint: jumpPtr{instrSetIdx: i, offset: b.restorePoint},
			}, true
		}
	}

	return bailout[jumpPtr]{}, false
}

func (vm *VM[P]) execJumpsWithAttrs(am *AttributeMatcher, ctx *ExecutionCtx[P], ptr jumpPtr, handler MatchHandler[P]) {
	items := vm.stack.Items()
	if len(items) == 0 {
		return
	}
	parent := items[len(items)-1]
	if ptr.instrSetIdx >= len(parent.ChildJumps) {
		return
	}

	vm.execInstrSetWithAttrs(parent.ChildJumps[ptr.instrSetIdx], am, ctx, ptr.offset, handler)

	for _, jumps := range parent.ChildJumps[ptr.instrSetIdx+1:] {
		vm.execInstrSetWithAttrs(jumps, am, ctx, 0, handler)
	}
}

// tryExecHereditaryJumpsWithoutAttrs walks ancestors innermost-to-outermost,
// trying each ancestor's descendant-jump instruction sets, and stops after
// the first ancestor whose HasAncestorWithDescendantJumps is false — the
// invariant guarantees that ancestor and everything outside it carry no
// descendant jumps at all (spec.md §4.4, §5).
func (vm *VM[P]) tryExecHereditaryJumpsWithoutAttrs(ctx *ExecutionCtx[P], handler MatchHandler[P]) (bailout[hereditaryJumpPtr], bool) {
	items := vm.stack.Items()

	for i := len(items) - 1; i >= 0; i-- {
		ancestor := items[i]
		stackOffset := len(items) - 1 - i

		for j, jumps := range ancestor.DescendantJumps {
			if b, bailed := vm.tryExecInstrSetWithoutAttrs(jumps, ctx, handler); bailed {
				return bailout[hereditaryJumpPtr]{
					atAddr: b.atAddr,
					restorePoint: hereditaryJumpPtr{
						stackOffset: stackOffset,
						instrSetIdx: j,
						offset:      b.restorePoint,
					},
				}, true
			}
		}

		if !ancestor.HasAncestorWithDescendantJumps {
			break
		}
	}

	return bailout[hereditaryJumpPtr]{}, false
}

func (vm *VM[P]) execHereditaryJumpsWithAttrs(am *AttributeMatcher, ctx *ExecutionCtx[P], ptr hereditaryJumpPtr, handler MatchHandler[P]) {
	items := vm.stack.Items()
	if len(items) == 0 {
		return
	}

	ptrAncestorIdx := len(items) - 1 - ptr.stackOffset
	if ptrAncestorIdx < 0 || ptrAncestorIdx >= len(items) {
		return
	}
	ptrAncestor := items[ptrAncestorIdx]

	if ptr.instrSetIdx < len(ptrAncestor.DescendantJumps) {
		vm.execInstrSetWithAttrs(ptrAncestor.DescendantJumps[ptr.instrSetIdx], am, ctx, ptr.offset, handler)

		for _, jumps := range ptrAncestor.DescendantJumps[ptr.instrSetIdx+1:] {
			vm.execInstrSetWithAttrs(jumps, am, ctx, 0, handler)
		}
	}

	if ptrAncestor.HasAncestorWithDescendantJumps {
		for i := ptrAncestorIdx - 1; i >= 0; i-- {
			ancestor := items[i]
			for _, jumps := range ancestor.DescendantJumps {
				vm.execInstrSetWithAttrs(jumps, am, ctx, 0, handler)
			}
			if !ancestor.HasAncestorWithDescendantJumps {
				break
			}
		}
	}
}

// String renders a VM's current stack depth, useful in debug logging from
// cmd/match and cmd/watch.
func (vm *VM[P]) String() string {
	return fmt.Sprintf("VM{depth=%d}", vm.stack.Len())
}

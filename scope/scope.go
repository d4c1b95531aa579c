// Package scope implements the nested lexical scope tree spec.md §3/§4.4
// describes: a tree of frames mapping identifier to item, with lookup
// walking toward the root and insertion restricted to the current frame
// (no same-frame shadowing). It is lifted out of the bytecode emitter
// into its own package — grounded on the teacher's `compiler/
// ast_compiler.go` locals/scopeDepth mechanism — so the frame logic
// (declare, resolve, address allocation) sits apart from the
// bytecode.Emitter that drives it; analysis and emission still share one
// pass over the AST.
package scope

import (
	"fmt"

	"shardc/types"
)

// ItemKind distinguishes the six binding forms a scope frame can hold.
type ItemKind int

const (
	ItemVariable ItemKind = iota
	ItemConstant
	ItemType
	ItemFunction
	ItemModule
	ItemStatic
)

// Item is one name binding held by a Frame.
type Item struct {
	Kind ItemKind
	Name string
	Type types.Type

	// Mutable applies to ItemVariable/ItemStatic.
	Mutable bool

	// Address is the storage address assigned at declaration time,
	// meaningful for ItemVariable/ItemStatic/ItemConstant.
	Address int

	// ConstantValue is set for ItemConstant (and ItemType-aliased
	// constants the way enum variants with a discriminant are represented).
	ConstantValue *types.Constant

	// Function carries the signature for ItemFunction.
	Function *types.Function

	// ModuleFrame is the child frame of a nested module's own items,
	// meaningful for ItemModule.
	ModuleFrame *Frame
}

// Frame is one level of the lexical scope tree. Frames belonging to the
// same function share a single address counter (via counter, a pointer)
// so nested block frames keep allocating storage addresses from the same
// running total the way the teacher's single scopeDepth-tagged locals
// stack does; a Frame created by NewFunctionRoot starts a fresh counter.
type Frame struct {
	parent  *Frame
	items   map[string]*Item
	counter *int
}

// NewRoot creates the outermost module-level frame, with its own address
// counter (module-level statics/constants address independently of any
// function's locals).
func NewRoot() *Frame {
	c := 0
	return &Frame{items: make(map[string]*Item), counter: &c}
}

// NewFunctionRoot creates a frame that starts a fresh address counter —
// one per function activation record, per spec.md §4.5's "monotonically
// increasing storage address counter per function frame".
func (f *Frame) NewFunctionRoot() *Frame {
	c := 0
	return &Frame{parent: f, items: make(map[string]*Item), counter: &c}
}

// Child creates a nested block frame that shares its parent's address
// counter but gets its own name-binding map, so the same-frame shadowing
// check only ever looks at names declared directly in this block.
func (f *Frame) Child() *Frame {
	return &Frame{parent: f, items: make(map[string]*Item), counter: f.counter}
}

// Declare inserts item into f, failing if the name already exists in this
// exact frame (spec.md: "insertion at a frame fails if the name already
// exists there (no shadowing across the same frame; shadowing across
// nested frames is permitted)" — the resolved open question in spec.md §9
// confirms this is the repo's behavior, not the teacher's permissive one).
func (f *Frame) Declare(item *Item) error {
	if _, exists := f.items[item.Name]; exists {
		return fmt.Errorf("redefinition of %q in the same scope", item.Name)
	}
	f.items[item.Name] = item
	return nil
}

// Resolve looks up name, walking from f toward the root.
func (f *Frame) Resolve(name string) (*Item, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if it, ok := cur.items[name]; ok {
			return it, true
		}
	}
	return nil, false
}

// ResolveLocal looks up name in f only, without walking to parent frames —
// used by the same-frame shadowing check before Declare.
func (f *Frame) ResolveLocal(name string) (*Item, bool) {
	it, ok := f.items[name]
	return it, ok
}

// Allocate reserves width storage cells in f's function frame and returns
// the address of the first cell.
func (f *Frame) Allocate(width int) int {
	addr := *f.counter
	*f.counter += width
	return addr
}

// Depth returns the number of frames between f and the module root,
// inclusive of f but not the root — used only for diagnostics.
func (f *Frame) Depth() int {
	d := 0
	for cur := f; cur.parent != nil; cur = cur.parent {
		d++
	}
	return d
}

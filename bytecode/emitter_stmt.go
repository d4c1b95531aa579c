package bytecode

import (
	"strconv"

	"shardc/ast"
	"shardc/scope"
	"shardc/token"
	"shardc/types"
)

// stmtResult wraps the error returned by a statement Visit method (bytecode
// emission has no value result for statements, unlike expressions).
type stmtResult struct {
	err error
}

func (e *Emitter) emitStmt(stmt ast.Stmt) error {
	res := stmt.Accept(e).(stmtResult)
	return res.err
}

// evalBlock emits a block's statements in a fresh child scope and returns
// the Element its trailing expression produces (Unit if there is none).
func (e *Emitter) evalBlock(b ast.Block) (types.Element, error) {
	outer := e.cur
	e.cur = e.cur.Child()
	defer func() { e.cur = outer }()

	for _, stmt := range b.Statements {
		if err := e.emitStmt(stmt); err != nil {
			return types.Element{}, err
		}
	}
	if b.Result == nil {
		return types.Element{Kind: types.ElementConstant, Constant: types.NewUnitConstant()}, nil
	}
	return e.evalExpr(b.Result)
}

// popValue discards a statement-position expression's leftover runtime
// value (a constant never touched the stack, so there is nothing to pop).
func (e *Emitter) popValue(elem types.Element) error {
	if elem.Kind == types.ElementConstant {
		return nil
	}
	for i := 0; i < elem.TypeOf().Footprint(); i++ {
		e.emit(OpPop)
	}
	return nil
}

// ensurePushed guarantees elem's value is on the instruction stream's
// operand stack: a Value already put itself there when it was evaluated,
// so only a Constant (never touches the stream on its own) needs pushing.
func (e *Emitter) ensurePushed(elem types.Element) error {
	if elem.Kind == types.ElementConstant {
		return e.pushConstant(elem.Constant)
	}
	return nil
}

func (e *Emitter) emitLoadAt(addr int, t types.Type) {
	switch w := t.Footprint(); {
	case w == 0:
	case w == 1:
		e.emit(OpLoad, addr)
	default:
		e.emit(OpLoadSequence, addr, w)
	}
}

func (e *Emitter) emitStoreAt(addr int, t types.Type) {
	switch w := t.Footprint(); {
	case w == 0:
	case w == 1:
		e.emit(OpStore, addr)
	default:
		e.emit(OpStoreSequence, addr, w)
	}
}

// lvalue is a resolved assignable storage location: an address in either
// the current function's frame or the static/global address space.
type lvalue struct {
	addr   int
	typ    types.Type
	global bool
}

func (e *Emitter) emitLoadLvalue(p lvalue) {
	if p.global {
		if w := p.typ.Footprint(); w > 0 {
			e.emit(OpLoadGlobal, p.addr, w)
		}
		return
	}
	e.emitLoadAt(p.addr, p.typ)
}

func (e *Emitter) emitStoreLvalue(p lvalue) {
	if p.global {
		if w := p.typ.Footprint(); w > 0 {
			e.emit(OpStoreGlobal, p.addr, w)
		}
		return
	}
	e.emitStoreAt(p.addr, p.typ)
}

// resolvePlace resolves expr to an assignable storage location: a named
// variable/static, or a chain of field/tuple/array accesses rooted at one.
// requireMutable rejects immutable bases (used for assignment targets, not
// for reads).
func (e *Emitter) resolvePlace(expr ast.Expression, requireMutable bool) (lvalue, error) {
	switch v := expr.(type) {
	case ast.Variable:
		name := v.Name.Lexeme
		it, ok := e.cur.Resolve(name)
		if !ok || (it.Kind != scope.ItemVariable && it.Kind != scope.ItemStatic) {
			return lvalue{}, locErr(v.Location(), "%q is not an assignable place", name)
		}
		if requireMutable && !it.Mutable {
			return lvalue{}, locErr(v.Location(), "cannot assign to immutable %q", name)
		}
		return lvalue{addr: it.Address, typ: it.Type, global: it.Kind == scope.ItemStatic}, nil

	case ast.FieldAccess:
		base, err := e.resolvePlace(v.Target, requireMutable)
		if err != nil {
			return lvalue{}, err
		}
		bt := base.typ.Resolve()
		if bt.Kind != types.KindStructure && bt.Kind != types.KindTuple {
			return lvalue{}, locErr(v.Location(), "field access on non-structure/tuple type %s", base.typ)
		}
		offset, ft, err := fieldOffset(bt, v.Field)
		if err != nil {
			return lvalue{}, locErr(v.Location(), "%s", err)
		}
		base.addr += offset
		base.typ = ft
		return base, nil

	case ast.Index:
		base, err := e.resolvePlace(v.Array, requireMutable)
		if err != nil {
			return lvalue{}, err
		}
		bt := base.typ.Resolve()
		if bt.Kind != types.KindArray {
			return lvalue{}, locErr(v.Location(), "index on non-array type %s", base.typ)
		}
		idxConst, err := e.evalConstExpr(v.Index, nil)
		if err != nil {
			return lvalue{}, locErr(v.Location(), "array index must be a compile-time constant (this instruction set has no indirect addressing)")
		}
		i := int(idxConst.Int.Int64())
		if i < 0 || i >= bt.Size {
			return lvalue{}, locErr(v.Location(), "index %d out of bounds for array of size %d", i, bt.Size)
		}
		base.addr += i * bt.Element.Footprint()
		base.typ = *bt.Element
		return base, nil

	default:
		return lvalue{}, locErr(expr.Location(), "expression is not an assignable place")
	}
}

// tryResolvePlace resolves expr to an lvalue without requiring mutability,
// reporting false (rather than an error) if expr is not addressable at all
// — used by reads that prefer direct addressing over a full evaluation
// (field/index access, array iteration) but must gracefully fall back when
// the base is a temporary (e.g. a call result).
func (e *Emitter) tryResolvePlace(expr ast.Expression) (lvalue, bool) {
	p, err := e.resolvePlace(expr, false)
	if err != nil {
		return lvalue{}, false
	}
	return p, true
}

// fieldOffset returns a field or tuple element's storage offset (in cells)
// within its owning aggregate type, and the element's own type. field is
// either a structure field name ("p.x") or a tuple element index written as
// an integer lexeme ("t.0").
func fieldOffset(bt types.Type, field token.Token) (int, types.Type, error) {
	switch bt.Kind {
	case types.KindStructure:
		offset := 0
		for _, f := range bt.Fields {
			if f.Name == field.Lexeme {
				return offset, f.Type, nil
			}
			offset += f.Type.Footprint()
		}
		return 0, types.Type{}, locErr(ast.Loc(field), "structure %s has no field %q", bt, field.Lexeme)

	case types.KindTuple:
		idx, err := strconv.Atoi(field.Lexeme)
		if err != nil || idx < 0 || idx >= len(bt.Elements) {
			return 0, types.Type{}, locErr(ast.Loc(field), "tuple has no element %q", field.Lexeme)
		}
		offset := 0
		for _, t := range bt.Elements[:idx] {
			offset += t.Footprint()
		}
		return offset, bt.Elements[idx], nil

	default:
		return 0, types.Type{}, locErr(ast.Loc(field), "field access on non-structure/tuple type %s", bt)
	}
}

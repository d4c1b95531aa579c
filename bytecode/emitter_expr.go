package bytecode

import (
	"shardc/ast"
	"shardc/scope"
	"shardc/semantic"
	"shardc/token"
	"shardc/types"
)

// exprResult wraps an expression Visit method's Element and error, the
// expression-side counterpart to emitter_stmt.go's stmtResult.
type exprResult struct {
	elem types.Element
	err  error
}

// evalExpr lowers expr to bytecode, returning the Element its value
// contributes to the enclosing expression. A Value Element has already
// pushed its result onto the operand stack by the time this returns; a
// Constant Element has not (see ensurePushed).
func (e *Emitter) evalExpr(expr ast.Expression) (types.Element, error) {
	res := expr.Accept(e).(exprResult)
	return res.elem, res.err
}

func (e *Emitter) VisitLiteral(l ast.Literal) any {
	c, err := e.evalLiteral(l, nil)
	if err != nil {
		return exprResult{err: err}
	}
	return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
}

func (e *Emitter) VisitGrouping(g ast.Grouping) any {
	elem, err := e.evalExpr(g.Expression)
	return exprResult{elem, err}
}

func (e *Emitter) VisitVariableExpression(v ast.Variable) any {
	name := v.Name.Lexeme
	it, ok := e.cur.Resolve(name)
	if !ok {
		if full, ok2 := e.imports[name]; ok2 {
			it, ok = e.qualified[full]
		}
	}
	if !ok {
		it, ok = e.qualified[name]
	}
	if !ok {
		return exprResult{err: locErr(v.Location(), "undefined name %q", name)}
	}
	switch it.Kind {
	case scope.ItemConstant:
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: *it.ConstantValue}}
	case scope.ItemVariable:
		e.emitLoadAt(it.Address, it.Type)
		return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: it.Type}}
	case scope.ItemStatic:
		if w := it.Type.Footprint(); w > 0 {
			e.emit(OpLoadGlobal, it.Address, w)
		}
		return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: it.Type}}
	case scope.ItemType:
		return exprResult{elem: types.Element{Kind: types.ElementType, ValueType: it.Type}}
	case scope.ItemFunction:
		return exprResult{elem: types.Element{Kind: types.ElementFunction, Function: types.Function{Name: name}}}
	default:
		return exprResult{err: locErr(v.Location(), "%q cannot be used as a value", name)}
	}
}

func (e *Emitter) VisitPathExpression(p ast.Path) any {
	name := p.String()
	if full, ok := e.imports[name]; ok {
		name = full
	}
	it, ok := e.qualified[name]
	if !ok {
		return exprResult{err: locErr(p.Location(), "undefined name %q", name)}
	}
	switch it.Kind {
	case scope.ItemConstant:
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: *it.ConstantValue}}
	case scope.ItemType:
		return exprResult{elem: types.Element{Kind: types.ElementType, ValueType: it.Type}}
	case scope.ItemFunction:
		return exprResult{elem: types.Element{Kind: types.ElementFunction, Function: types.Function{Name: name}}}
	default:
		return exprResult{err: locErr(p.Location(), "%q cannot be used as a value", name)}
	}
}

func (e *Emitter) VisitAssignExpression(a ast.Assign) any {
	place, err := e.resolvePlace(a.Target, true)
	if err != nil {
		return exprResult{err: err}
	}
	valElem, err := e.evalExpr(a.Value)
	if err != nil {
		return exprResult{err: err}
	}
	if !types.Equal(valElem.TypeOf(), place.typ) {
		return exprResult{err: locErr(a.Location(), "cannot assign %s to a place of type %s", valElem.TypeOf(), place.typ)}
	}
	if err := e.ensurePushed(valElem); err != nil {
		return exprResult{err: err}
	}
	e.emitStoreLvalue(place)
	return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: types.NewUnitConstant()}}
}

func (e *Emitter) VisitBinary(b ast.Binary) any {
	if c, err := e.evalConstExpr(b, nil); err == nil {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
	}
	left, err := e.evalExpr(b.Left)
	if err != nil {
		return exprResult{err: err}
	}
	if err := e.ensurePushed(left); err != nil {
		return exprResult{err: err}
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return exprResult{err: err}
	}
	if err := e.ensurePushed(right); err != nil {
		return exprResult{err: err}
	}
	resultType, op, err := binaryOpType(b.Operator, left.TypeOf(), right.TypeOf(), b.Location())
	if err != nil {
		return exprResult{err: err}
	}
	e.emit(op)
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: resultType}}
}

// binaryOpType resolves a binary operator token to its result type and
// opcode, reusing the same compatibility rules semantic.go's constant
// folders enforce (spec.md §4.4) without folding anything itself.
func binaryOpType(op token.Token, left, right types.Type, loc ast.Location) (types.Type, Opcode, error) {
	switch op.TokenType {
	case token.ADD:
		return arithmeticOpType(left, right, loc, OpAdd)
	case token.SUB:
		return arithmeticOpType(left, right, loc, OpSub)
	case token.MULT:
		return arithmeticOpType(left, right, loc, OpMul)
	case token.DIV:
		return arithmeticOpType(left, right, loc, OpDiv)
	case token.MOD:
		return arithmeticOpType(left, right, loc, OpMod)
	case token.AMP:
		return bitwiseOpType(left, right, loc, OpAnd)
	case token.PIPE:
		return bitwiseOpType(left, right, loc, OpOr)
	case token.CARET:
		return bitwiseOpType(left, right, loc, OpXor)
	case token.SHL:
		return bitwiseOpType(left, right, loc, OpShl)
	case token.SHR:
		return bitwiseOpType(left, right, loc, OpShr)
	case token.LESS:
		return comparisonOpType(left, right, loc, OpLt)
	case token.LESS_EQUAL:
		return comparisonOpType(left, right, loc, OpLe)
	case token.LARGER:
		return comparisonOpType(left, right, loc, OpGt)
	case token.LARGER_EQUAL:
		return comparisonOpType(left, right, loc, OpGe)
	case token.EQUAL_EQUAL:
		return equalityOpType(left, right, loc, OpEq)
	case token.NOT_EQUAL:
		return equalityOpType(left, right, loc, OpNe)
	default:
		return types.Type{}, 0, locErr(loc, "operator %s is not valid here", op.Lexeme)
	}
}

func arithmeticOpType(left, right types.Type, loc ast.Location, op Opcode) (types.Type, Opcode, error) {
	rt, err := semantic.ArithmeticResult(left, right)
	if err != nil {
		return types.Type{}, 0, locErr(loc, "%s", err)
	}
	return rt, op, nil
}

func bitwiseOpType(left, right types.Type, loc ast.Location, op Opcode) (types.Type, Opcode, error) {
	lr, rr := left.Resolve(), right.Resolve()
	if !lr.IsInteger() || !rr.IsInteger() || lr.Kind != rr.Kind || lr.BitLength != rr.BitLength {
		return types.Type{}, 0, locErr(loc, "mismatched operand types %s and %s", left, right)
	}
	return lr, op, nil
}

func comparisonOpType(left, right types.Type, loc ast.Location, op Opcode) (types.Type, Opcode, error) {
	lr, rr := left.Resolve(), right.Resolve()
	if lr.Kind == types.KindBoolean || rr.Kind == types.KindBoolean {
		return types.Type{}, 0, locErr(loc, "ordering comparisons are not defined over bool")
	}
	if !semantic.Comparable(left, right) {
		return types.Type{}, 0, locErr(loc, "mismatched operand types %s and %s", left, right)
	}
	return types.Bool, op, nil
}

func equalityOpType(left, right types.Type, loc ast.Location, op Opcode) (types.Type, Opcode, error) {
	if !semantic.Comparable(left, right) {
		return types.Type{}, 0, locErr(loc, "mismatched operand types %s and %s", left, right)
	}
	return types.Bool, op, nil
}

func (e *Emitter) VisitUnary(u ast.Unary) any {
	if c, err := e.evalConstExpr(u, nil); err == nil {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
	}
	operand, err := e.evalExpr(u.Right)
	if err != nil {
		return exprResult{err: err}
	}
	if err := e.ensurePushed(operand); err != nil {
		return exprResult{err: err}
	}
	t := operand.TypeOf()
	switch u.Operator.TokenType {
	case token.SUB:
		if t.Resolve().Kind != types.KindField && !t.IsSigned() {
			return exprResult{err: locErr(u.Location(), "cannot negate unsigned type %s", t)}
		}
		e.emit(OpNeg)
		return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: t}}
	case token.BANG:
		if t.Resolve().Kind != types.KindBoolean {
			return exprResult{err: locErr(u.Location(), "'!' requires bool, got %s", t)}
		}
		e.emit(OpNot)
		return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: t}}
	case token.TILDE:
		if !t.IsInteger() {
			return exprResult{err: locErr(u.Location(), "'~' requires an integer type, got %s", t)}
		}
		rt := t.Resolve()
		signed := 0
		if rt.IsSigned() {
			signed = 1
		}
		e.emit(OpBitNot, signed, rt.BitLength)
		return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: t}}
	default:
		return exprResult{err: locErr(u.Location(), "unknown unary operator %s", u.Operator.Lexeme)}
	}
}

func (e *Emitter) VisitLogicalExpression(l ast.Logical) any {
	leftElem, err := e.evalExpr(l.Left)
	if err != nil {
		return exprResult{err: err}
	}
	if leftElem.TypeOf().Resolve().Kind != types.KindBoolean {
		return exprResult{err: locErr(l.Location(), "logical operator requires bool operands")}
	}
	var elem types.Element
	switch l.Operator.TokenType {
	case token.AND:
		elem, err = e.emitIf(l.Location(), leftElem,
			func() (types.Element, error) { return e.evalExpr(l.Right) },
			func() (types.Element, error) {
				return types.Element{Kind: types.ElementConstant, Constant: types.NewBoolConstant(false)}, nil
			})
	case token.OR:
		elem, err = e.emitIf(l.Location(), leftElem,
			func() (types.Element, error) {
				return types.Element{Kind: types.ElementConstant, Constant: types.NewBoolConstant(true)}, nil
			},
			func() (types.Element, error) { return e.evalExpr(l.Right) })
	default:
		err = locErr(l.Location(), "unknown logical operator %s", l.Operator.Lexeme)
	}
	return exprResult{elem, err}
}

func (e *Emitter) VisitIndexExpression(idx ast.Index) any {
	if rng, ok := idx.Index.(ast.Range); ok {
		return e.evalSlice(idx, rng)
	}
	place, err := e.resolvePlace(idx, false)
	if err != nil {
		return exprResult{err: err}
	}
	e.emitLoadLvalue(place)
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: place.typ}}
}

func (e *Emitter) evalSlice(idx ast.Index, rng ast.Range) exprResult {
	base, err := e.resolvePlace(idx.Array, false)
	if err != nil {
		return exprResult{err: err}
	}
	bt := base.typ.Resolve()
	if bt.Kind != types.KindArray {
		return exprResult{err: locErr(idx.Location(), "slicing a non-array type %s", base.typ)}
	}
	lowC, err := e.evalConstExpr(rng.Low, nil)
	if err != nil {
		return exprResult{err: locErr(idx.Location(), "array slice bounds must be compile-time constants")}
	}
	highC, err := e.evalConstExpr(rng.High, nil)
	if err != nil {
		return exprResult{err: locErr(idx.Location(), "array slice bounds must be compile-time constants")}
	}
	lo, hi := int(lowC.Int.Int64()), int(highC.Int.Int64())
	if rng.Inclusive {
		hi++
	}
	if lo < 0 || hi > bt.Size || lo > hi {
		return exprResult{err: locErr(idx.Location(), "slice [%d..%d] out of bounds for array of size %d", lo, hi, bt.Size)}
	}
	elemW := bt.Element.Footprint()
	sliceType := types.Array(*bt.Element, hi-lo)
	sliced := lvalue{addr: base.addr + lo*elemW, typ: sliceType, global: base.global}
	e.emitLoadLvalue(sliced)
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: sliceType}}
}

func (e *Emitter) VisitFieldAccessExpression(fa ast.FieldAccess) any {
	place, err := e.resolvePlace(fa, false)
	if err != nil {
		return exprResult{err: err}
	}
	e.emitLoadLvalue(place)
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: place.typ}}
}

func (e *Emitter) VisitCastExpression(c ast.Cast) any {
	operand, err := e.evalExpr(c.Operand)
	if err != nil {
		return exprResult{err: err}
	}
	target, err := e.resolveTypeAnnotation(c.Target, "")
	if err != nil {
		return exprResult{err: err}
	}
	if err := semantic.CheckCast(operand.TypeOf(), target); err != nil {
		return exprResult{err: locErr(c.Location(), "%s", err)}
	}
	if operand.Kind == types.ElementConstant {
		folded, err := semantic.FoldCast(operand.Constant, target)
		if err != nil {
			return exprResult{err: locErr(c.Location(), "%s", err)}
		}
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: folded}}
	}
	if err := e.ensurePushed(operand); err != nil {
		return exprResult{err: err}
	}
	rt := target.Resolve()
	signed, bits := 0, rt.BitLength
	if rt.IsSigned() {
		signed = 1
	}
	if rt.Kind == types.KindField {
		bits = 254
	}
	e.emit(OpCast, signed, bits)
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: target}}
}

func (e *Emitter) VisitRangeExpression(r ast.Range) any {
	return exprResult{err: locErr(r.Location(), "a range is only valid as a for-loop header or an array slice index")}
}

func (e *Emitter) VisitTupleExpression(t ast.TupleExpr) any {
	if len(t.Elements) == 0 {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: types.NewUnitConstant()}}
	}
	if c, err := e.evalConstExpr(t, nil); err == nil {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
	}
	elemTypes := make([]types.Type, len(t.Elements))
	for i, el := range t.Elements {
		elem, err := e.evalExpr(el)
		if err != nil {
			return exprResult{err: err}
		}
		elemTypes[i] = elem.TypeOf()
		if err := e.ensurePushed(elem); err != nil {
			return exprResult{err: err}
		}
	}
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: types.Tuple(elemTypes...)}}
}

func (e *Emitter) VisitArrayListExpression(a ast.ArrayList) any {
	if len(a.Elements) == 0 {
		return exprResult{err: locErr(a.Location(), "array literal must have at least one element")}
	}
	if c, err := e.evalConstExpr(a, nil); err == nil {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
	}
	var elemType types.Type
	for i, el := range a.Elements {
		elem, err := e.evalExpr(el)
		if err != nil {
			return exprResult{err: err}
		}
		if i == 0 {
			elemType = elem.TypeOf()
		} else if !types.Equal(elem.TypeOf(), elemType) {
			return exprResult{err: locErr(a.Location(), "array elements must share one type, got %s and %s", elemType, elem.TypeOf())}
		}
		if err := e.ensurePushed(elem); err != nil {
			return exprResult{err: err}
		}
	}
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: types.Array(elemType, len(a.Elements))}}
}

func (e *Emitter) VisitArrayRepeatExpression(a ast.ArrayRepeat) any {
	if c, err := e.evalConstExpr(a, nil); err == nil {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
	}
	sizeConst, err := e.evalConstExpr(a.Size, nil)
	if err != nil {
		return exprResult{err: locErr(a.Location(), "array repeat count must be a compile-time constant")}
	}
	n := int(sizeConst.Int.Int64())
	if n < 0 {
		return exprResult{err: locErr(a.Location(), "array repeat count must be non-negative")}
	}
	fillElem, err := e.evalExpr(a.Element)
	if err != nil {
		return exprResult{err: err}
	}
	elemType := fillElem.TypeOf()
	width := elemType.Footprint()
	if err := e.ensurePushed(fillElem); err != nil {
		return exprResult{err: err}
	}
	addr := e.cur.Allocate(width)
	e.emitStoreAt(addr, elemType)
	for i := 0; i < n; i++ {
		e.emitLoadAt(addr, elemType)
	}
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: types.Array(elemType, n)}}
}

func (e *Emitter) VisitBlockExpression(b ast.Block) any {
	elem, err := e.evalBlock(b)
	return exprResult{elem, err}
}

func (e *Emitter) VisitIfExpression(i ast.IfExpr) any {
	condElem, err := e.evalExpr(i.Condition)
	if err != nil {
		return exprResult{err: err}
	}
	thenFn := func() (types.Element, error) { return e.evalBlock(i.Then) }
	elseFn := func() (types.Element, error) {
		if i.Else == nil {
			return types.Element{Kind: types.ElementConstant, Constant: types.NewUnitConstant()}, nil
		}
		return e.evalExpr(i.Else)
	}
	elem, err := e.emitIf(i.Location(), condElem, thenFn, elseFn)
	return exprResult{elem, err}
}

// emitIf is the structured-if codegen shared by IfExpr, short-circuiting
// Logical expressions, and Match's arm cascade: it emits
// cond; If placeholder; then-branch; Else placeholder; else-branch; EndIf,
// back-patching both placeholders to their real targets once known, and
// requires both branches to leave a value of the same type on the stack
// (spec.md §4.3.3's "both branches of an if-expression push one value of
// the common type").
func (e *Emitter) emitIf(loc ast.Location, condElem types.Element, thenFn, elseFn func() (types.Element, error)) (types.Element, error) {
	if condElem.TypeOf().Resolve().Kind != types.KindBoolean {
		return types.Element{}, locErr(loc, "if condition must be bool, got %s", condElem.TypeOf())
	}
	if err := e.ensurePushed(condElem); err != nil {
		return types.Element{}, err
	}
	ifPos := e.emit(OpIf, 0)
	thenElem, err := thenFn()
	if err != nil {
		return types.Element{}, err
	}
	if err := e.ensurePushed(thenElem); err != nil {
		return types.Element{}, err
	}
	elsePos := e.emit(OpElse, 0)
	patchUint16(e.instructions, operandOffset(ifPos), len(e.instructions))
	elseElem, err := elseFn()
	if err != nil {
		return types.Element{}, err
	}
	if err := e.ensurePushed(elseElem); err != nil {
		return types.Element{}, err
	}
	patchUint16(e.instructions, operandOffset(elsePos), len(e.instructions))
	e.emit(OpEndIf)
	if !types.Equal(thenElem.TypeOf(), elseElem.TypeOf()) {
		return types.Element{}, locErr(loc, "if/else branches have mismatched types %s and %s", thenElem.TypeOf(), elseElem.TypeOf())
	}
	return types.Element{Kind: types.ElementValue, ValueType: thenElem.TypeOf()}, nil
}

func (e *Emitter) VisitMatchExpression(m ast.Match) any {
	scrutinee, err := e.evalExpr(m.Scrutinee)
	if err != nil {
		return exprResult{err: err}
	}
	scrutineeType := scrutinee.TypeOf()
	if !matchIsExhaustive(scrutineeType, m.Arms) {
		return exprResult{err: locErr(m.Location(), "match is not exhaustive")}
	}

	width := scrutineeType.Footprint()
	addr := e.cur.Allocate(width)
	if err := e.ensurePushed(scrutinee); err != nil {
		return exprResult{err: err}
	}
	e.emitStoreAt(addr, scrutineeType)
	loadScrutinee := func() { e.emitLoadAt(addr, scrutineeType) }

	var buildArm func(i int) (types.Element, error)
	buildArm = func(i int) (types.Element, error) {
		if i >= len(m.Arms) {
			return types.Element{}, locErr(m.Location(), "match is not exhaustive")
		}
		arm := m.Arms[i]
		if arm.Pattern.Kind == ast.PatternWildcard {
			return e.evalExpr(arm.Body)
		}
		if arm.Pattern.Kind == ast.PatternBinding {
			outer := e.cur
			e.cur = e.cur.Child()
			it := &scope.Item{Kind: scope.ItemVariable, Name: arm.Pattern.Name.Lexeme, Type: scrutineeType, Address: addr}
			if err := e.cur.Declare(it); err != nil {
				e.cur = outer
				return types.Element{}, locErr(ast.Loc(arm.Pattern.Name), "%s", err)
			}
			elem, err := e.evalExpr(arm.Body)
			e.cur = outer
			return elem, err
		}
		patConst, err := patternConstant(e, arm.Pattern, scrutineeType)
		if err != nil {
			return types.Element{}, err
		}
		if i == len(m.Arms)-1 {
			// matchIsExhaustive passed, so the earlier arms leave only this
			// pattern's value: the last arm needs no test of its own.
			return e.evalExpr(arm.Body)
		}
		condElem := types.Element{Kind: types.ElementValue, ValueType: types.Bool}
		cond := func() (types.Element, error) {
			loadScrutinee()
			if err := e.pushConstant(patConst); err != nil {
				return types.Element{}, err
			}
			e.emit(OpEq)
			return condElem, nil
		}
		// cond must be emitted before emitIf pushes it, so run it now and
		// discard the element placeholder passed to emitIf; emitIf expects
		// the condition already evaluated (see ensurePushed's Value no-op).
		if _, err := cond(); err != nil {
			return types.Element{}, err
		}
		return e.emitIf(arm.Pattern.Location(), condElem,
			func() (types.Element, error) { return e.evalExpr(arm.Body) },
			func() (types.Element, error) { return buildArm(i + 1) })
	}
	elem, err := buildArm(0)
	return exprResult{elem, err}
}

// matchIsExhaustive reports whether m's arms cover every value the
// scrutinee type can take: a wildcard/binding arm always does, and a
// boolean scrutinee is exhaustive once both literal patterns are present.
func matchIsExhaustive(scrutineeType types.Type, arms []ast.MatchArm) bool {
	for _, a := range arms {
		if a.Pattern.IsWildcard() {
			return true
		}
	}
	if scrutineeType.Resolve().Kind == types.KindBoolean {
		var hasTrue, hasFalse bool
		for _, a := range arms {
			if a.Pattern.Kind == ast.PatternBoolLiteral {
				if a.Pattern.BoolValue {
					hasTrue = true
				} else {
					hasFalse = true
				}
			}
		}
		return hasTrue && hasFalse
	}
	return false
}

// patternConstant folds a non-wildcard match pattern into the constant
// value it compares the scrutinee against.
func patternConstant(e *Emitter, p ast.Pattern, scrutineeType types.Type) (types.Constant, error) {
	switch p.Kind {
	case ast.PatternBoolLiteral:
		return types.NewBoolConstant(p.BoolValue), nil
	case ast.PatternIntLiteral:
		return parseIntLiteral(p.IntValue, &scrutineeType)
	case ast.PatternPath:
		return e.lookupConst(p.Path.String(), p.Location())
	default:
		return types.Constant{}, locErr(p.Location(), "unsupported match pattern")
	}
}

func (e *Emitter) VisitStructLiteralExpression(s ast.StructLiteral) any {
	if c, err := e.evalConstExpr(s, nil); err == nil {
		return exprResult{elem: types.Element{Kind: types.ElementConstant, Constant: c}}
	}
	name := s.Name.Lexeme
	it, ok := e.qualified[name]
	if !ok {
		if full, ok2 := e.imports[name]; ok2 {
			it, ok = e.qualified[full]
		}
	}
	if !ok || it.Kind != scope.ItemType || it.Type.Resolve().Kind != types.KindStructure {
		return exprResult{err: locErr(s.Location(), "undefined structure %q", name)}
	}
	st := it.Type.Resolve()
	exprs := make(map[string]ast.Expression, len(s.Fields))
	for _, f := range s.Fields {
		exprs[f.Name.Lexeme] = f.Value
	}
	for _, sf := range st.Fields {
		fe, ok := exprs[sf.Name]
		if !ok {
			return exprResult{err: locErr(s.Location(), "missing field %q in structure literal for %s", sf.Name, name)}
		}
		elem, err := e.evalExpr(fe)
		if err != nil {
			return exprResult{err: err}
		}
		if !types.Equal(elem.TypeOf(), sf.Type) {
			return exprResult{err: locErr(s.Location(), "field %q expects %s, got %s", sf.Name, sf.Type, elem.TypeOf())}
		}
		if err := e.ensurePushed(elem); err != nil {
			return exprResult{err: err}
		}
	}
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: it.Type}}
}

func (e *Emitter) VisitCallExpression(c ast.Call) any {
	qname, selfArg, err := e.resolveCallee(c.Callee)
	if err != nil {
		return exprResult{err: err}
	}
	fi, ok := e.funcs[qname]
	if !ok {
		return exprResult{err: locErr(c.Location(), "undefined function %q", qname)}
	}
	var argElems []types.Element
	if selfArg != nil {
		argElems = append(argElems, *selfArg)
	}
	for _, a := range c.Args {
		elem, err := e.evalExpr(a)
		if err != nil {
			return exprResult{err: err}
		}
		argElems = append(argElems, elem)
	}
	if len(argElems) != len(fi.params) {
		return exprResult{err: locErr(c.Location(), "%s expects %d argument(s), got %d", qname, len(fi.params), len(argElems))}
	}
	total := 0
	for i, elem := range argElems {
		if !types.Equal(elem.TypeOf(), fi.params[i]) {
			return exprResult{err: locErr(c.Location(), "%s argument %d expects %s, got %s", qname, i+1, fi.params[i], elem.TypeOf())}
		}
		if err := e.ensurePushed(elem); err != nil {
			return exprResult{err: err}
		}
		total += elem.TypeOf().Footprint()
	}
	pos := e.emit(OpCall, 0, total)
	e.pending = append(e.pending, pendingCall{operandOffset: operandOffset(pos), funcName: qname})
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: fi.returnType}}
}

// resolveCallee identifies the fully qualified function a call expression's
// callee refers to: a plain name, a "Type::method"/"mod::fn" path, or a
// "receiver.method(...)" method call, which additionally evaluates the
// receiver as the implicit first ("self") argument.
func (e *Emitter) resolveCallee(callee ast.Expression) (string, *types.Element, error) {
	switch v := callee.(type) {
	case ast.Variable:
		name := v.Name.Lexeme
		if full, ok := e.imports[name]; ok {
			name = full
		}
		if _, ok := e.funcs[name]; ok {
			return name, nil, nil
		}
		return "", nil, locErr(v.Location(), "undefined function %q", name)
	case ast.Path:
		name := v.String()
		if full, ok := e.imports[name]; ok {
			name = full
		}
		if _, ok := e.funcs[name]; ok {
			return name, nil, nil
		}
		return "", nil, locErr(v.Location(), "undefined function %q", name)
	case ast.FieldAccess:
		selfElem, err := e.evalExpr(v.Target)
		if err != nil {
			return "", nil, err
		}
		bt := selfElem.TypeOf().Resolve()
		if bt.Kind != types.KindStructure {
			return "", nil, locErr(v.Location(), "method call on non-structure type %s", selfElem.TypeOf())
		}
		qname := bt.Identifier + "::" + v.Field.Lexeme
		if _, ok := e.funcs[qname]; !ok {
			return "", nil, locErr(v.Location(), "undefined method %q", qname)
		}
		return qname, &selfElem, nil
	default:
		return "", nil, locErr(callee.Location(), "callee is not a function reference")
	}
}

func (e *Emitter) VisitCallBuiltinExpression(c ast.CallBuiltin) any {
	b, ok := semantic.Lookup(c.Path.String())
	if !ok {
		return exprResult{err: locErr(c.Location(), "undefined standard library function %q", c.Path.String())}
	}
	argTypes := make([]types.Type, len(c.Args))
	argElems := make([]types.Element, len(c.Args))
	for i, a := range c.Args {
		elem, err := e.evalExpr(a)
		if err != nil {
			return exprResult{err: err}
		}
		argElems[i] = elem
		argTypes[i] = elem.TypeOf()
	}
	resultType, err := b.Check(argTypes)
	if err != nil {
		return exprResult{err: locErr(c.Location(), "%s", err)}
	}
	total := 0
	for _, elem := range argElems {
		if err := e.ensurePushed(elem); err != nil {
			return exprResult{err: err}
		}
		total += elem.TypeOf().Footprint()
	}
	e.emit(OpCallBuiltin, b.ID, total)
	return exprResult{elem: types.Element{Kind: types.ElementValue, ValueType: resultType}}
}

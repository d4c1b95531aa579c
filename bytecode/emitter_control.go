package bytecode

import (
	"math/big"

	"shardc/ast"
	"shardc/scope"
	"shardc/token"
	"shardc/types"
)

// emitFunctionBody walks a declared function's body, allocating a fresh
// function-root frame for its parameters and locals (spec.md §4.5's "each
// function gets its own address space starting at 0").
func (e *Emitter) emitFunctionBody(name string) error {
	fi := e.funcs[name]
	fi.entry = len(e.instructions)
	fi.emitted = true

	outerCur, outerSelf, outerReturn := e.cur, e.curSelf, e.curReturn
	e.cur = e.global.NewFunctionRoot()
	e.curSelf = fi.selfType
	e.curReturn = fi.returnType
	defer func() { e.cur, e.curSelf, e.curReturn = outerCur, outerSelf, outerReturn }()

	for i, p := range fi.decl.Params {
		addr := e.cur.Allocate(fi.params[i].Footprint())
		it := &scope.Item{Kind: scope.ItemVariable, Name: p.Name.Lexeme, Type: fi.params[i], Mutable: false, Address: addr}
		if err := e.cur.Declare(it); err != nil {
			return locErr(ast.Loc(p.Name), "%s", err)
		}
	}

	resultElem, err := e.evalBlock(fi.decl.Body)
	if err != nil {
		return err
	}
	// A body ending in a return statement has already type-checked and
	// emitted its own Return (VisitReturnStmt).
	if n := len(fi.decl.Body.Statements); fi.decl.Body.Result == nil && n > 0 {
		if _, ok := fi.decl.Body.Statements[n-1].(ast.ReturnStmt); ok {
			return nil
		}
	}
	if !types.Equal(resultElem.TypeOf(), fi.returnType) {
		return locErr(fi.decl.Location(), "function %q returns %s but its body has type %s", name, fi.returnType, resultElem.TypeOf())
	}
	if err := e.ensurePushed(resultElem); err != nil {
		return err
	}
	e.emit(OpReturn, fi.returnType.Footprint())
	return nil
}

func (e *Emitter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	elem, err := e.evalExpr(s.Expression)
	if err != nil {
		return stmtResult{err}
	}
	return stmtResult{e.popValue(elem)}
}

func (e *Emitter) VisitLetStmt(s ast.LetStmt) any {
	var annotated *types.Type
	if s.Type != nil {
		t, err := e.resolveTypeAnnotation(*s.Type, "")
		if err != nil {
			return stmtResult{err}
		}
		annotated = &t
	}
	// A constant initializer under an annotation takes the annotated type,
	// so "let x: u64 = 10;" stamps 10 as u64 rather than the default u8.
	var elem types.Element
	var err error
	if c, cerr := e.evalConstExpr(s.Initializer, annotated); annotated != nil && cerr == nil {
		elem = types.Element{Kind: types.ElementConstant, Constant: c}
	} else if elem, err = e.evalExpr(s.Initializer); err != nil {
		return stmtResult{err}
	}
	declaredType := elem.TypeOf()
	if annotated != nil {
		t := *annotated
		if !types.Equal(elem.TypeOf(), t) {
			return stmtResult{locErr(s.Location(), "let %s: %s initializer has type %s", s.Name.Lexeme, t, elem.TypeOf())}
		}
		declaredType = t
	}
	if err := e.ensurePushed(elem); err != nil {
		return stmtResult{err}
	}
	addr := e.cur.Allocate(declaredType.Footprint())
	e.emitStoreAt(addr, declaredType)
	it := &scope.Item{Kind: scope.ItemVariable, Name: s.Name.Lexeme, Type: declaredType, Mutable: s.Mutable, Address: addr}
	if err := e.cur.Declare(it); err != nil {
		return stmtResult{locErr(ast.Loc(s.Name), "%s", err)}
	}
	return stmtResult{nil}
}

// moduleScopeOnly is returned by every declaration-shaped statement's Visit
// method when it is reached from inside a function body: declareNames and
// its companion passes already process every module-level occurrence of
// these before any body is emitted, so a nested one can only mean the
// parser accepted syntax this emitter does not support at local scope.
func moduleScopeOnly(loc ast.Location, what string) stmtResult {
	return stmtResult{locErr(loc, "%s is only supported at module scope", what)}
}

func (e *Emitter) VisitConstStmt(s ast.ConstStmt) any {
	return moduleScopeOnly(s.Location(), "'const'")
}

func (e *Emitter) VisitStaticStmt(s ast.StaticStmt) any {
	return moduleScopeOnly(s.Location(), "'static'")
}

func (e *Emitter) VisitTypeAliasStmt(s ast.TypeAliasStmt) any {
	return moduleScopeOnly(s.Location(), "type aliases")
}

func (e *Emitter) VisitStructDeclStmt(s ast.StructDeclStmt) any {
	return moduleScopeOnly(s.Location(), "structure declarations")
}

func (e *Emitter) VisitEnumDeclStmt(s ast.EnumDeclStmt) any {
	return moduleScopeOnly(s.Location(), "enum declarations")
}

func (e *Emitter) VisitFnDeclStmt(s ast.FnDeclStmt) any {
	return moduleScopeOnly(s.Location(), "nested function declarations")
}

func (e *Emitter) VisitModStmt(s ast.ModStmt) any {
	return moduleScopeOnly(s.Location(), "'mod' blocks")
}

func (e *Emitter) VisitUseStmt(s ast.UseStmt) any {
	return moduleScopeOnly(s.Location(), "'use' declarations")
}

func (e *Emitter) VisitImplStmt(s ast.ImplStmt) any {
	return moduleScopeOnly(s.Location(), "'impl' blocks")
}

func (e *Emitter) VisitRequireStmt(s ast.RequireStmt) any {
	elem, err := e.evalExpr(s.Condition)
	if err != nil {
		return stmtResult{err}
	}
	if elem.TypeOf().Resolve().Kind != types.KindBoolean {
		return stmtResult{locErr(s.Location(), "require() condition must be bool, got %s", elem.TypeOf())}
	}
	if err := e.ensurePushed(elem); err != nil {
		return stmtResult{err}
	}
	tagIdx := noTag
	if s.Tag != nil {
		tagIdx = e.addTag(s.Tag.Literal.(string))
	}
	e.emit(OpAssert, tagIdx)
	return stmtResult{nil}
}

func (e *Emitter) VisitReturnStmt(s ast.ReturnStmt) any {
	var elem types.Element
	var err error
	if s.Value == nil {
		elem = types.Element{Kind: types.ElementConstant, Constant: types.NewUnitConstant()}
	} else {
		elem, err = e.evalExpr(s.Value)
		if err != nil {
			return stmtResult{err}
		}
	}
	if !types.Equal(elem.TypeOf(), e.curReturn) {
		return stmtResult{locErr(s.Location(), "return type %s does not match function's declared return type %s", elem.TypeOf(), e.curReturn)}
	}
	if err := e.ensurePushed(elem); err != nil {
		return stmtResult{err}
	}
	e.emit(OpReturn, e.curReturn.Footprint())
	return stmtResult{nil}
}

// emitConditionalLoop lowers a runtime-condition loop shared by WhileStmt
// and a for-range whose bounds are not compile-time constants:
//
//	start: <cond>; JumpIfFalse end; <body>; Jump start; end:
func (e *Emitter) emitConditionalLoop(loc ast.Location, condFn func() (types.Element, error), bodyFn func() error) error {
	start := len(e.instructions)
	condElem, err := condFn()
	if err != nil {
		return err
	}
	if condElem.TypeOf().Resolve().Kind != types.KindBoolean {
		return locErr(loc, "loop condition must be bool, got %s", condElem.TypeOf())
	}
	if err := e.ensurePushed(condElem); err != nil {
		return err
	}
	jumpOut := e.emit(OpJumpIfFalse, 0)
	if err := bodyFn(); err != nil {
		return err
	}
	e.emit(OpJump, start)
	patchUint16(e.instructions, operandOffset(jumpOut), len(e.instructions))
	return nil
}

func (e *Emitter) VisitWhileStmt(s ast.WhileStmt) any {
	err := e.emitConditionalLoop(s.Location(),
		func() (types.Element, error) { return e.evalExpr(s.Condition) },
		func() error {
			resultElem, err := e.evalBlock(s.Body)
			if err != nil {
				return err
			}
			return e.popValue(resultElem)
		})
	return stmtResult{err}
}

func (e *Emitter) VisitForStmt(s ast.ForStmt) any {
	if rng, ok := s.Range.(ast.Range); ok {
		return stmtResult{e.emitForRange(s.Name, rng, s.Body)}
	}
	return stmtResult{e.emitForArray(s.Name, s.Range, s.Body)}
}

func (e *Emitter) emitForRange(name token.Token, rng ast.Range, body ast.Block) error {
	lowC, lowErr := e.evalConstExpr(rng.Low, nil)
	highC, highErr := e.evalConstExpr(rng.High, nil)
	if lowErr == nil && highErr == nil {
		return e.emitForRangeStatic(name, rng, lowC, highC, body)
	}
	return e.emitForRangeDynamic(name, rng, body)
}

// emitForRangeStatic lowers a for-loop over a range whose bounds are both
// compile-time constants to a counted OpLoopBegin/OpLoopEnd loop, stepping
// the induction variable by +1 (ascending) or -1 when the bounds run in
// reverse (low > high iterates down to high, inclusive per rng.Inclusive).
func (e *Emitter) emitForRangeStatic(name token.Token, rng ast.Range, lowC, highC types.Constant, body ast.Block) error {
	elemType := lowC.Type
	descending := lowC.Int.Cmp(highC.Int) > 0
	var count *big.Int
	if descending {
		count = new(big.Int).Sub(lowC.Int, highC.Int)
	} else {
		count = new(big.Int).Sub(highC.Int, lowC.Int)
	}
	if rng.Inclusive {
		count = new(big.Int).Add(count, big.NewInt(1))
	}
	if count.Sign() <= 0 {
		return nil
	}
	if !count.IsInt64() || count.Int64() > 0xFFFF {
		return locErr(rng.Location(), "for-range trip count %s exceeds the loop counter's range", count)
	}

	ivConst := lowC
	if err := e.pushConstant(ivConst); err != nil {
		return err
	}
	addr := e.cur.Allocate(1)
	e.emitStoreAt(addr, elemType)

	outer := e.cur
	e.cur = e.cur.Child()
	it := &scope.Item{Kind: scope.ItemVariable, Name: name.Lexeme, Type: elemType, Address: addr}
	if err := e.cur.Declare(it); err != nil {
		e.cur = outer
		return locErr(ast.Loc(name), "%s", err)
	}

	e.emit(OpLoopBegin, int(count.Int64()))
	resultElem, err := e.evalBlock(body)
	if err != nil {
		e.cur = outer
		return err
	}
	if err := e.popValue(resultElem); err != nil {
		e.cur = outer
		return err
	}

	var stepConst types.Constant
	if elemType.Resolve().Kind == types.KindField {
		stepConst = types.NewFieldConstant(big.NewInt(1))
	} else {
		stepConst = types.NewIntConstant(big.NewInt(1), elemType.IsSigned(), elemType.BitLength)
	}
	e.emitLoadAt(addr, elemType)
	if err := e.pushConstant(stepConst); err != nil {
		e.cur = outer
		return err
	}
	if descending {
		e.emit(OpSub)
	} else {
		e.emit(OpAdd)
	}
	e.emitStoreAt(addr, elemType)
	e.emit(OpLoopEnd)
	e.cur = outer
	return nil
}

// emitForRangeDynamic lowers a for-loop over a range whose bounds are not
// both compile-time constants to a while-style loop (see
// emitConditionalLoop), always ascending: unlike a constant range, a
// dynamic range whose low bound exceeds its high bound runs zero times.
func (e *Emitter) emitForRangeDynamic(name token.Token, rng ast.Range, body ast.Block) error {
	lowElem, err := e.evalExpr(rng.Low)
	if err != nil {
		return err
	}
	elemType := lowElem.TypeOf()
	if !elemType.IsInteger() && elemType.Resolve().Kind != types.KindField {
		return locErr(rng.Location(), "for-range bounds must be integers or field elements")
	}
	if err := e.ensurePushed(lowElem); err != nil {
		return err
	}
	addr := e.cur.Allocate(1)
	e.emitStoreAt(addr, elemType)

	highElem, err := e.evalExpr(rng.High)
	if err != nil {
		return err
	}
	if !types.Equal(highElem.TypeOf(), elemType) {
		return locErr(rng.Location(), "for-range bounds must share one type, got %s and %s", elemType, highElem.TypeOf())
	}
	if err := e.ensurePushed(highElem); err != nil {
		return err
	}
	boundAddr := e.cur.Allocate(1)
	e.emitStoreAt(boundAddr, elemType)

	outer := e.cur
	e.cur = e.cur.Child()
	it := &scope.Item{Kind: scope.ItemVariable, Name: name.Lexeme, Type: elemType, Address: addr}
	if err := e.cur.Declare(it); err != nil {
		e.cur = outer
		return locErr(ast.Loc(name), "%s", err)
	}

	cmp := OpLt
	if rng.Inclusive {
		cmp = OpLe
	}
	var stepConst types.Constant
	if elemType.Resolve().Kind == types.KindField {
		stepConst = types.NewFieldConstant(big.NewInt(1))
	} else {
		stepConst = types.NewIntConstant(big.NewInt(1), elemType.IsSigned(), elemType.BitLength)
	}

	err = e.emitConditionalLoop(rng.Location(),
		func() (types.Element, error) {
			e.emitLoadAt(addr, elemType)
			e.emitLoadAt(boundAddr, elemType)
			e.emit(cmp)
			return types.Element{Kind: types.ElementValue, ValueType: types.Bool}, nil
		},
		func() error {
			resultElem, err := e.evalBlock(body)
			if err != nil {
				return err
			}
			if err := e.popValue(resultElem); err != nil {
				return err
			}
			e.emitLoadAt(addr, elemType)
			if err := e.pushConstant(stepConst); err != nil {
				return err
			}
			e.emit(OpAdd)
			e.emitStoreAt(addr, elemType)
			return nil
		})
	e.cur = outer
	return err
}

// emitForArray lowers a for-loop over an array expression by fully
// unrolling it at compile time: this instruction set has no indirect
// addressing (see resolvePlace), so there is no way to index an array by a
// runtime loop counter. A fully-constant array folds to a fresh
// compile-time constant binding per iteration; an addressable local array
// aliases the loop variable directly onto each element's storage address.
// Iterating a static (global) array is not supported.
func (e *Emitter) emitForArray(name token.Token, arrExpr ast.Expression, body ast.Block) error {
	if c, err := e.evalConstExpr(arrExpr, nil); err == nil {
		if c.Type.Resolve().Kind != types.KindArray {
			return locErr(arrExpr.Location(), "for-loop range must be a range or an array, got %s", c.Type)
		}
		for _, elemC := range c.Elements {
			elemC := elemC
			outer := e.cur
			e.cur = e.cur.Child()
			it := &scope.Item{Kind: scope.ItemConstant, Name: name.Lexeme, Type: elemC.Type, ConstantValue: &elemC}
			if err := e.cur.Declare(it); err != nil {
				e.cur = outer
				return locErr(ast.Loc(name), "%s", err)
			}
			resultElem, err := e.evalBlock(body)
			e.cur = outer
			if err != nil {
				return err
			}
			if err := e.popValue(resultElem); err != nil {
				return err
			}
		}
		return nil
	}

	place, ok := e.tryResolvePlace(arrExpr)
	if !ok {
		return locErr(arrExpr.Location(), "for-loop range must be a range or an array")
	}
	if place.global {
		return locErr(arrExpr.Location(), "iterating a static array in a for-loop is not supported; copy it to a local first")
	}
	bt := place.typ.Resolve()
	if bt.Kind != types.KindArray {
		return locErr(arrExpr.Location(), "for-loop range must be a range or an array, got %s", place.typ)
	}
	elemFootprint := bt.Element.Footprint()
	for i := 0; i < bt.Size; i++ {
		outer := e.cur
		e.cur = e.cur.Child()
		it := &scope.Item{Kind: scope.ItemVariable, Name: name.Lexeme, Type: *bt.Element, Address: place.addr + i*elemFootprint}
		if err := e.cur.Declare(it); err != nil {
			e.cur = outer
			return locErr(ast.Loc(name), "%s", err)
		}
		resultElem, err := e.evalBlock(body)
		e.cur = outer
		if err != nil {
			return err
		}
		if err := e.popValue(resultElem); err != nil {
			return err
		}
	}
	return nil
}

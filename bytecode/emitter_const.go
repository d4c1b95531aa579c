package bytecode

import (
	"shardc/ast"
	"shardc/scope"
	"shardc/semantic"
	"shardc/token"
	"shardc/types"
)

// evalConstExpr evaluates an expression that must fold entirely to a
// compile-time constant: const/static initializers, enum discriminants,
// and array size expressions. Unlike evalExpr it never touches the
// instruction stream — a non-constant sub-expression is a semantic error.
func (e *Emitter) evalConstExpr(expr ast.Expression, expected *types.Type) (types.Constant, error) {
	switch v := expr.(type) {
	case ast.Literal:
		return e.evalLiteral(v, expected)
	case ast.Grouping:
		return e.evalConstExpr(v.Expression, expected)
	case ast.Unary:
		operand, err := e.evalConstExpr(v.Right, nil)
		if err != nil {
			return types.Constant{}, err
		}
		c, err := semantic.FoldUnary(v.Operator.TokenType, operand)
		if err != nil {
			return types.Constant{}, locErr(v.Location(), "%s", err)
		}
		return c, nil
	case ast.Binary:
		left, err := e.evalConstExpr(v.Left, expected)
		if err != nil {
			return types.Constant{}, err
		}
		right, err := e.evalConstExpr(v.Right, &left.Type)
		if err != nil {
			return types.Constant{}, err
		}
		return e.foldBinaryConst(v.Operator, left, right, v.Location())
	case ast.Cast:
		operand, err := e.evalConstExpr(v.Operand, nil)
		if err != nil {
			return types.Constant{}, err
		}
		target, err := e.resolveTypeAnnotation(v.Target, "")
		if err != nil {
			return types.Constant{}, err
		}
		if err := semantic.CheckCast(operand.Type, target); err != nil {
			return types.Constant{}, locErr(v.Location(), "%s", err)
		}
		c, err := semantic.FoldCast(operand, target)
		if err != nil {
			return types.Constant{}, locErr(v.Location(), "%s", err)
		}
		return c, nil
	case ast.Variable:
		return e.lookupConst(v.Name.Lexeme, v.Location())
	case ast.Path:
		return e.lookupConst(v.String(), v.Location())
	case ast.TupleExpr:
		elems := make([]types.Constant, len(v.Elements))
		types_ := make([]types.Type, len(v.Elements))
		for i, el := range v.Elements {
			c, err := e.evalConstExpr(el, nil)
			if err != nil {
				return types.Constant{}, err
			}
			elems[i] = c
			types_[i] = c.Type
		}
		return types.Constant{Type: types.Tuple(types_...), Elements: elems}, nil
	case ast.ArrayList:
		if len(v.Elements) == 0 {
			return types.Constant{}, locErr(v.Location(), "array literal must have at least one element")
		}
		elems := make([]types.Constant, len(v.Elements))
		for i, el := range v.Elements {
			c, err := e.evalConstExpr(el, nil)
			if err != nil {
				return types.Constant{}, err
			}
			elems[i] = c
		}
		elemType := elems[0].Type
		for _, c := range elems[1:] {
			if !types.Equal(c.Type, elemType) {
				return types.Constant{}, locErr(v.Location(), "array elements must share one type, got %s and %s", elemType, c.Type)
			}
		}
		return types.Constant{Type: types.Array(elemType, len(elems)), Elements: elems}, nil
	case ast.ArrayRepeat:
		sizeConst, err := e.evalConstExpr(v.Size, nil)
		if err != nil {
			return types.Constant{}, err
		}
		n := int(sizeConst.Int.Int64())
		fill, err := e.evalConstExpr(v.Element, nil)
		if err != nil {
			return types.Constant{}, err
		}
		elems := make([]types.Constant, n)
		for i := range elems {
			elems[i] = fill
		}
		return types.Constant{Type: types.Array(fill.Type, n), Elements: elems}, nil
	case ast.StructLiteral:
		return e.evalConstStructLiteral(v)
	default:
		return types.Constant{}, locErr(expr.Location(), "expression is not a compile-time constant")
	}
}

func (e *Emitter) evalLiteral(lit ast.Literal, expected *types.Type) (types.Constant, error) {
	switch val := lit.Value.(type) {
	case bool:
		return types.NewBoolConstant(val), nil
	case token.Token:
		return parseIntLiteral(val, expected)
	case string:
		return types.NewStringConstant(val), nil
	default:
		invariant("evalLiteral: unhandled literal value %T", lit.Value)
		return types.Constant{}, nil
	}
}

func (e *Emitter) evalConstStructLiteral(s ast.StructLiteral) (types.Constant, error) {
	name := s.Name.Lexeme
	it, ok := e.qualified[name]
	if !ok {
		if full, ok2 := e.imports[name]; ok2 {
			it, ok = e.qualified[full]
		}
	}
	if !ok || it.Kind != scope.ItemType || it.Type.Resolve().Kind != types.KindStructure {
		return types.Constant{}, locErr(s.Location(), "undefined structure %q", name)
	}
	st := it.Type.Resolve()
	values := make(map[string]types.Constant, len(s.Fields))
	for _, f := range s.Fields {
		c, err := e.evalConstExpr(f.Value, nil)
		if err != nil {
			return types.Constant{}, err
		}
		values[f.Name.Lexeme] = c
	}
	for _, sf := range st.Fields {
		c, ok := values[sf.Name]
		if !ok {
			return types.Constant{}, locErr(s.Location(), "missing field %q in structure literal for %s", sf.Name, name)
		}
		if !types.Equal(c.Type, sf.Type) {
			return types.Constant{}, locErr(s.Location(), "field %q expects %s, got %s", sf.Name, sf.Type, c.Type)
		}
	}
	return types.Constant{Type: it.Type, Fields: values}, nil
}

// foldBinaryConst dispatches a binary operator token to the matching
// semantic.Fold* function.
func (e *Emitter) foldBinaryConst(op token.Token, left, right types.Constant, loc ast.Location) (types.Constant, error) {
	switch op.TokenType {
	case token.ADD, token.SUB, token.MULT, token.DIV, token.MOD:
		if _, err := semantic.ArithmeticResult(left.Type, right.Type); err != nil {
			return types.Constant{}, locErr(loc, "%s", err)
		}
		c, err := semantic.FoldArithmetic(op.TokenType, left, right)
		if err != nil {
			return types.Constant{}, locErr(loc, "%s", err)
		}
		return c, nil
	case token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR:
		c, err := semantic.FoldBitwise(op.TokenType, left, right)
		if err != nil {
			return types.Constant{}, locErr(loc, "%s", err)
		}
		return c, nil
	case token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL:
		c, err := semantic.FoldComparison(op.TokenType, left, right)
		if err != nil {
			return types.Constant{}, locErr(loc, "%s", err)
		}
		return c, nil
	case token.EQUAL_EQUAL:
		c, err := semantic.FoldEquality(false, left, right)
		if err != nil {
			return types.Constant{}, locErr(loc, "%s", err)
		}
		return c, nil
	case token.NOT_EQUAL:
		c, err := semantic.FoldEquality(true, left, right)
		if err != nil {
			return types.Constant{}, locErr(loc, "%s", err)
		}
		return c, nil
	case token.AND:
		if left.Type.Resolve().Kind != types.KindBoolean || right.Type.Resolve().Kind != types.KindBoolean {
			return types.Constant{}, locErr(loc, "logical operator requires bool operands")
		}
		return types.NewBoolConstant(left.Bool && right.Bool), nil
	case token.OR:
		if left.Type.Resolve().Kind != types.KindBoolean || right.Type.Resolve().Kind != types.KindBoolean {
			return types.Constant{}, locErr(loc, "logical operator requires bool operands")
		}
		return types.NewBoolConstant(left.Bool || right.Bool), nil
	default:
		return types.Constant{}, locErr(loc, "operator %s is not valid in a constant expression", op.Lexeme)
	}
}

// lookupConst resolves a (possibly "::"-qualified) name to a previously
// folded constant — a const binding, a static's initial value, or an enum
// variant.
func (e *Emitter) lookupConst(name string, loc ast.Location) (types.Constant, error) {
	if full, ok := e.imports[name]; ok {
		name = full
	}
	it, ok := e.qualified[name]
	if !ok || it.ConstantValue == nil {
		return types.Constant{}, locErr(loc, "%q is not a compile-time constant", name)
	}
	return *it.ConstantValue, nil
}

package semantic

import (
	"fmt"
	"math/big"

	"shardc/token"
	"shardc/types"
)

// maxSigned/maxUnsigned/minSigned compute the inclusive bound a bitlength
// integer stamp allows, used both to reject an over-wide literal and to
// detect overflow after constant folding (spec.md: "overflow is an error
// (signed/unsigned wrap is not silent)").
func maxUnsigned(bitlength int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bitlength))
	return max.Sub(max, big.NewInt(1))
}

func maxSigned(bitlength int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bitlength-1))
	return max.Sub(max, big.NewInt(1))
}

func minSigned(bitlength int) *big.Int {
	min := new(big.Int).Lsh(big.NewInt(1), uint(bitlength-1))
	return min.Neg(min)
}

// InRange reports whether v fits the given integer stamp.
func InRange(v *big.Int, signed bool, bitlength int) bool {
	if signed {
		return v.Cmp(minSigned(bitlength)) >= 0 && v.Cmp(maxSigned(bitlength)) <= 0
	}
	return v.Sign() >= 0 && v.Cmp(maxUnsigned(bitlength)) <= 0
}

// sameIntegerStamp requires both types to be the identical integer
// variant (spec.md: "arithmetic on two Value integers requires identical
// (sign, bitlength)").
func sameIntegerStamp(a, b types.Type) bool {
	a, b = a.Resolve(), b.Resolve()
	if !a.IsInteger() || !b.IsInteger() {
		return false
	}
	return a.Kind == b.Kind && a.BitLength == b.BitLength
}

// ArithmeticResult computes the statically known result type of a binary
// arithmetic operator (+,-,*,/,%) applied to left and right, enforcing
// spec.md's identical-stamp rule for integers and allowing Field<->Field.
// It does not fold; Fold does that separately once both operands are
// known Constants.
func ArithmeticResult(left, right types.Type) (types.Type, error) {
	left, right = left.Resolve(), right.Resolve()
	if left.Kind == types.KindField && right.Kind == types.KindField {
		return types.Field, nil
	}
	if !sameIntegerStamp(left, right) {
		return types.Type{}, fmt.Errorf("mismatched operand types %s and %s", left, right)
	}
	return left, nil
}

// FoldArithmetic folds a compile-time constant binary operation, checking
// for overflow against the operand stamp (field arithmetic instead reduces
// modulo types.FieldModulus, since the field has no fixed bit width to
// overflow).
func FoldArithmetic(op token.TokenType, left, right types.Constant) (types.Constant, error) {
	var result *big.Int
	switch op {
	case token.ADD:
		result = new(big.Int).Add(left.Int, right.Int)
	case token.SUB:
		result = new(big.Int).Sub(left.Int, right.Int)
	case token.MULT:
		result = new(big.Int).Mul(left.Int, right.Int)
	case token.DIV:
		if right.Int.Sign() == 0 {
			return types.Constant{}, fmt.Errorf("division by zero")
		}
		result = new(big.Int).Quo(left.Int, right.Int)
	case token.MOD:
		if right.Int.Sign() == 0 {
			return types.Constant{}, fmt.Errorf("division by zero")
		}
		result = new(big.Int).Rem(left.Int, right.Int)
	default:
		return types.Constant{}, fmt.Errorf("not an arithmetic operator: %s", op)
	}

	if left.Type.Resolve().Kind == types.KindField {
		result.Mod(result, types.FieldModulus)
		return types.NewFieldConstant(result), nil
	}

	if !InRange(result, left.Stamp.Signed, left.Stamp.BitLength) {
		return types.Constant{}, fmt.Errorf("integer overflow: %s does not fit in %s", result, left.Type)
	}
	return types.NewIntConstant(result, left.Stamp.Signed, left.Stamp.BitLength), nil
}

// FoldBitwise folds &, |, ^, <<, >> over constant integers (not field —
// bitwise operators are not defined over field elements).
func FoldBitwise(op token.TokenType, left, right types.Constant) (types.Constant, error) {
	if left.Type.Resolve().Kind == types.KindField {
		return types.Constant{}, fmt.Errorf("bitwise operators are not defined over field")
	}
	var result *big.Int
	switch op {
	case token.AMP:
		result = new(big.Int).And(left.Int, right.Int)
	case token.PIPE:
		result = new(big.Int).Or(left.Int, right.Int)
	case token.CARET:
		result = new(big.Int).Xor(left.Int, right.Int)
	case token.SHL:
		result = new(big.Int).Lsh(left.Int, uint(right.Int.Uint64()))
	case token.SHR:
		result = new(big.Int).Rsh(left.Int, uint(right.Int.Uint64()))
	default:
		return types.Constant{}, fmt.Errorf("not a bitwise operator: %s", op)
	}
	if !InRange(result, left.Stamp.Signed, left.Stamp.BitLength) {
		return types.Constant{}, fmt.Errorf("integer overflow: %s does not fit in %s", result, left.Type)
	}
	return types.NewIntConstant(result, left.Stamp.Signed, left.Stamp.BitLength), nil
}

// Comparable reports whether a and b can appear on either side of "==" or
// "!=": booleans, integers, field, and recursively arrays/tuples/
// structures of equality-comparable element types (spec.md §4.4).
func Comparable(a, b types.Type) bool {
	a, b = a.Resolve(), b.Resolve()
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.KindBoolean, types.KindField:
		return true
	case types.KindIntegerUnsigned, types.KindIntegerSigned:
		return a.BitLength == b.BitLength
	case types.KindArray:
		return a.Size == b.Size && Comparable(*a.Element, *b.Element)
	case types.KindTuple:
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Comparable(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case types.KindStructure:
		return a.Identifier == b.Identifier
	default:
		return false
	}
}

// CheckCast validates an "as" cast's source and target types per spec.md
// §4.4: integer<->integer (any widths/signs), integer<->field (unsigned
// only, value-bounded by the field modulus), and identity casts. Boolean
// cannot be cast to or from anything.
func CheckCast(from, target types.Type) error {
	from = from.Resolve()
	target = target.Resolve()
	if types.Equal(from, target) {
		return nil
	}
	if from.Kind == types.KindBoolean || target.Kind == types.KindBoolean {
		return fmt.Errorf("cannot cast %s to %s: bool cannot be cast", from, target)
	}
	if from.IsInteger() && target.IsInteger() {
		return nil
	}
	if from.IsInteger() && target.Kind == types.KindField {
		if from.IsSigned() {
			return fmt.Errorf("only unsigned integers convert to field, got %s", from)
		}
		return nil
	}
	if from.Kind == types.KindField && target.IsInteger() {
		if target.IsSigned() {
			return fmt.Errorf("only unsigned integers convert from field, got target %s", target)
		}
		return nil
	}
	return fmt.Errorf("invalid cast from %s to %s", from, target)
}

// FoldCast folds a constant "as" cast, re-stamping the value and checking
// it still fits the target (spec.md's "after casting, the stamp always
// matches the target type" invariant).
func FoldCast(c types.Constant, target types.Type) (types.Constant, error) {
	target = target.Resolve()
	if target.Kind == types.KindField {
		v := new(big.Int).Mod(c.Int, types.FieldModulus)
		return types.NewFieldConstant(v), nil
	}
	if !InRange(c.Int, target.IsSigned(), target.BitLength) {
		return types.Constant{}, fmt.Errorf("value %s does not fit in %s", c.Int, target)
	}
	return types.NewIntConstant(c.Int, target.IsSigned(), target.BitLength), nil
}

// FoldEquality folds "=="/"!=" over two constants of comparable types
// (spec.md §4.4: booleans, integers, field, and recursively arrays/tuples/
// structures of equality-comparable element types).
func FoldEquality(negate bool, left, right types.Constant) (types.Constant, error) {
	eq, err := constantsEqual(left, right)
	if err != nil {
		return types.Constant{}, err
	}
	if negate {
		eq = !eq
	}
	return types.NewBoolConstant(eq), nil
}

func constantsEqual(left, right types.Constant) (bool, error) {
	lt, rt := left.Type.Resolve(), right.Type.Resolve()
	if lt.Kind != rt.Kind {
		return false, fmt.Errorf("mismatched operand types %s and %s", left.Type, right.Type)
	}
	switch lt.Kind {
	case types.KindBoolean:
		return left.Bool == right.Bool, nil
	case types.KindIntegerUnsigned, types.KindIntegerSigned, types.KindField:
		return left.Int.Cmp(right.Int) == 0, nil
	case types.KindArray, types.KindTuple:
		if len(left.Elements) != len(right.Elements) {
			return false, nil
		}
		for i := range left.Elements {
			eq, err := constantsEqual(left.Elements[i], right.Elements[i])
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case types.KindStructure:
		for _, f := range lt.Fields {
			eq, err := constantsEqual(left.Fields[f.Name], right.Fields[f.Name])
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("%s is not equality-comparable", left.Type)
	}
}

// FoldComparison folds "<"/"<="/">"/">=" over two constant integers or
// field elements.
func FoldComparison(op token.TokenType, left, right types.Constant) (types.Constant, error) {
	if left.Type.Resolve().Kind == types.KindBoolean {
		return types.Constant{}, fmt.Errorf("ordering comparisons are not defined over bool")
	}
	c := left.Int.Cmp(right.Int)
	var result bool
	switch op {
	case token.LESS:
		result = c < 0
	case token.LESS_EQUAL:
		result = c <= 0
	case token.LARGER:
		result = c > 0
	case token.LARGER_EQUAL:
		result = c >= 0
	default:
		return types.Constant{}, fmt.Errorf("not a comparison operator: %s", op)
	}
	return types.NewBoolConstant(result), nil
}

// FoldUnary folds "-", "!", "~" over a constant operand.
func FoldUnary(op token.TokenType, operand types.Constant) (types.Constant, error) {
	switch op {
	case token.SUB:
		if operand.Type.Resolve().Kind == types.KindField {
			v := new(big.Int).Neg(operand.Int)
			v.Mod(v, types.FieldModulus)
			return types.NewFieldConstant(v), nil
		}
		if !operand.Stamp.Signed {
			return types.Constant{}, fmt.Errorf("cannot negate unsigned type %s", operand.Type)
		}
		v := new(big.Int).Neg(operand.Int)
		if !InRange(v, true, operand.Stamp.BitLength) {
			return types.Constant{}, fmt.Errorf("integer overflow negating %s", operand.Int)
		}
		return types.NewIntConstant(v, true, operand.Stamp.BitLength), nil
	case token.BANG:
		if operand.Type.Resolve().Kind != types.KindBoolean {
			return types.Constant{}, fmt.Errorf("'!' requires bool, got %s", operand.Type)
		}
		return types.NewBoolConstant(!operand.Bool), nil
	case token.TILDE:
		if !operand.Type.IsInteger() {
			return types.Constant{}, fmt.Errorf("'~' requires an integer type, got %s", operand.Type)
		}
		mask := maxUnsigned(operand.Stamp.BitLength)
		v := new(big.Int).Xor(operand.Int, mask)
		if operand.Stamp.Signed {
			// Two's-complement bitwise-not over a signed stamp: flip every
			// bit within the stamp's width, then re-interpret as signed.
			v = new(big.Int).Sub(new(big.Int).Neg(operand.Int), big.NewInt(1))
		}
		if !InRange(v, operand.Stamp.Signed, operand.Stamp.BitLength) {
			return types.Constant{}, fmt.Errorf("integer overflow complementing %s", operand.Int)
		}
		return types.NewIntConstant(v, operand.Stamp.Signed, operand.Stamp.BitLength), nil
	default:
		return types.Constant{}, fmt.Errorf("not a unary operator: %s", op)
	}
}

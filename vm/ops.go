package vm

import (
	"math/big"

	"shardc/bytecode"
)

// evalBinary implements the arithmetic/bitwise/comparison opcodes shared
// by every binary operator: a and b arrive already popped in operand
// order (a was pushed first, b second), matching the emitter's left-to-
// right evaluation (spec.md §4.3.1).
func evalBinary(op bytecode.Opcode, a, b *big.Int) (*big.Int, error) {
	switch op {
	case bytecode.OpAdd:
		return new(big.Int).Add(a, b), nil
	case bytecode.OpSub:
		return new(big.Int).Sub(a, b), nil
	case bytecode.OpMul:
		return new(big.Int).Mul(a, b), nil
	case bytecode.OpDiv:
		if b.Sign() == 0 {
			return nil, newRuntimeError("division by zero")
		}
		// Quo truncates toward zero, matching the source language's
		// Rust-flavored integer division rather than Go's floored Div.
		return new(big.Int).Quo(a, b), nil
	case bytecode.OpMod:
		if b.Sign() == 0 {
			return nil, newRuntimeError("modulo by zero")
		}
		return new(big.Int).Rem(a, b), nil
	case bytecode.OpAnd:
		return new(big.Int).And(a, b), nil
	case bytecode.OpOr:
		return new(big.Int).Or(a, b), nil
	case bytecode.OpXor:
		return new(big.Int).Xor(a, b), nil
	case bytecode.OpShl:
		return new(big.Int).Lsh(a, uint(b.Uint64())), nil
	case bytecode.OpShr:
		return new(big.Int).Rsh(a, uint(b.Uint64())), nil
	case bytecode.OpLt:
		return boolInt(a.Cmp(b) < 0), nil
	case bytecode.OpLe:
		return boolInt(a.Cmp(b) <= 0), nil
	case bytecode.OpGt:
		return boolInt(a.Cmp(b) > 0), nil
	case bytecode.OpGe:
		return boolInt(a.Cmp(b) >= 0), nil
	case bytecode.OpEq:
		return boolInt(a.Cmp(b) == 0), nil
	case bytecode.OpNe:
		return boolInt(a.Cmp(b) != 0), nil
	default:
		return nil, newRuntimeError("not a binary operator: %d", op)
	}
}

// mask returns 2^bitlength - 1.
func mask(bitlength int) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bitlength)), big.NewInt(1))
}

// toUnsignedRepr reduces a to its bitlength-wide two's complement bit
// pattern, represented as a non-negative integer in [0, 2^bitlength). Go's
// math/big bitwise operators already treat a negative operand as an
// infinite two's complement value, so masking is enough.
func toUnsignedRepr(a *big.Int, bitlength int) *big.Int {
	return new(big.Int).And(a, mask(bitlength))
}

// fromUnsignedRepr reinterprets u (already in [0, 2^bitlength)) as a
// signed bitlength-wide integer when signed is set.
func fromUnsignedRepr(u *big.Int, signed bool, bitlength int) *big.Int {
	if !signed {
		return u
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(bitlength-1))
	if u.Cmp(half) >= 0 {
		return new(big.Int).Sub(u, new(big.Int).Lsh(big.NewInt(1), uint(bitlength)))
	}
	return new(big.Int).Set(u)
}

// castTo implements Cast(sign, bitlength): truncate/reinterpret a to the
// target stamp, matching spec.md §4.4's "after casting, the stamp always
// matches the target type".
func castTo(a *big.Int, signed bool, bitlength int) *big.Int {
	if bitlength <= 0 {
		return big.NewInt(0)
	}
	return fromUnsignedRepr(toUnsignedRepr(a, bitlength), signed, bitlength)
}

// bitNot implements "~": complement every bit of a's bitlength-wide
// representation, then reinterpret per sign.
func bitNot(a *big.Int, signed bool, bitlength int) *big.Int {
	u := toUnsignedRepr(a, bitlength)
	comp := new(big.Int).Xor(u, mask(bitlength))
	return fromUnsignedRepr(comp, signed, bitlength)
}

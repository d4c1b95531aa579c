package vm

import (
	"math/big"

	"shardc/semantic"
)

// callBuiltin implements CallBuiltin(id, total): total is the summed cell
// footprint of the arguments, already pushed in declaration order by the
// emitter. Only the conversions this reference executor can run without
// type information the bytecode stream doesn't carry are implemented —
// see the package doc comment and DESIGN.md: the field-typed conversions,
// the width-changing array helpers, and the cryptographic gadgets all
// need either the scalar field's modulus or a static element type neither
// of which survives into the flat cell sequence the VM actually sees.
func (vm *VM) callBuiltin(id, total int) error {
	args := make([]*big.Int, total)
	for i := total - 1; i >= 0; i-- {
		v, ok := vm.stack.Pop()
		if !ok {
			return newRuntimeError("callbuiltin: too few argument cells on stack")
		}
		args[i] = v
	}

	switch id {
	case semantic.BuiltinFromBitsUnsigned:
		vm.stack.Push(bitsToUint(args))
		return nil
	case semantic.BuiltinFromBitsSigned:
		vm.stack.Push(fromUnsignedRepr(bitsToUint(args), true, len(args)))
		return nil
	default:
		return newRuntimeError("builtin %d is not implemented by this reference executor", id)
	}
}

// bitsToUint folds a most-significant-bit-first array of 0/1 cells into
// its unsigned integer value.
func bitsToUint(bits []*big.Int) *big.Int {
	v := new(big.Int)
	for _, bit := range bits {
		v.Lsh(v, 1)
		if bit.Sign() != 0 {
			v.Or(v, big.NewInt(1))
		}
	}
	return v
}

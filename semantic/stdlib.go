// Package semantic implements the operator compatibility tables and
// standard-library signature checks the bytecode.Emitter consults while it
// walks the AST (spec.md §4.4). The analyzer and the emitter are
// interleaved into the same pass, per spec.md §4.5 — exactly as the
// teacher's `ASTCompiler` combines scope resolution and code generation —
// so this package exports pure, stateless helpers rather than a second
// tree-walking pass of its own.
package semantic

import (
	"fmt"

	"shardc/types"
)

// Builtin describes one standard-library function: its stable integer id
// (emitted as CallBuiltin's operand), its "::"-qualified path, and a
// signature-check function that validates argument types and produces the
// call's result type. Grounded on
// original_source/zinc-compiler/src/semantic/element/type/function/stdlib/
// convert_from_bits_unsigned.rs's argument-count/type validation pattern.
type Builtin struct {
	ID    int
	Path  string
	Check func(args []types.Type) (types.Type, error)
}

// Stable builtin identifiers, emitted as CallBuiltin's operand.
const (
	BuiltinFromBitsUnsigned = iota
	BuiltinFromBitsSigned
	BuiltinFromBitsField
	BuiltinToBitsUnsigned
	BuiltinToBitsSigned
	BuiltinToBitsField
	BuiltinSha256
	BuiltinPedersen
	BuiltinArrayReverse
	BuiltinArrayTruncate
	BuiltinArrayPad
	BuiltinFfInvert
	BuiltinConvertUnwrap
	BuiltinConvertUnwrapOr
)

func isBitArray(t types.Type) (size int, ok bool) {
	t = t.Resolve()
	if t.Kind != types.KindArray {
		return 0, false
	}
	if t.Element.Resolve().Kind != types.KindBoolean {
		return 0, false
	}
	return t.Size, true
}

func checkArity(args []types.Type, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

// fromBits builds the signature check for std::convert::from_bits_{un,}signed
// / from_bits_field: ([bool; N]) -> {u,i}N / field, N in [8,248] and a
// multiple of 8.
func fromBits(signed, field bool) func([]types.Type) (types.Type, error) {
	return func(args []types.Type) (types.Type, error) {
		if err := checkArity(args, 1); err != nil {
			return types.Type{}, err
		}
		n, ok := isBitArray(args[0])
		if !ok {
			return types.Type{}, fmt.Errorf("expected [bool; N], got %s", args[0])
		}
		if n < 8 || n > 248 || n%8 != 0 {
			return types.Type{}, fmt.Errorf("bit width %d must be in [8,248] and a multiple of 8", n)
		}
		if field {
			return types.Field, nil
		}
		if signed {
			return types.Int(n), nil
		}
		return types.Uint(n), nil
	}
}

// toBits builds the signature check for std::convert::to_bits_{un,}signed
// / to_bits_field: ({u,i}N / field) -> [bool; N].
func toBits(signed, field bool) func([]types.Type) (types.Type, error) {
	return func(args []types.Type) (types.Type, error) {
		if err := checkArity(args, 1); err != nil {
			return types.Type{}, err
		}
		arg := args[0].Resolve()
		if field {
			if arg.Kind != types.KindField {
				return types.Type{}, fmt.Errorf("expected field, got %s", args[0])
			}
			return types.Array(types.Bool, 254), nil
		}
		if !arg.IsInteger() || arg.IsSigned() != signed {
			return types.Type{}, fmt.Errorf("expected %s-bit integer, got %s", signWord(signed), args[0])
		}
		return types.Array(types.Bool, arg.BitLength), nil
	}
}

func signWord(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}

func checkSha256(args []types.Type) (types.Type, error) {
	if err := checkArity(args, 1); err != nil {
		return types.Type{}, err
	}
	if _, ok := isBitArray(args[0]); !ok {
		return types.Type{}, fmt.Errorf("sha256 expects a bit array, got %s", args[0])
	}
	return types.Array(types.Bool, 256), nil
}

func checkPedersen(args []types.Type) (types.Type, error) {
	if err := checkArity(args, 1); err != nil {
		return types.Type{}, err
	}
	if _, ok := isBitArray(args[0]); !ok {
		return types.Type{}, fmt.Errorf("pedersen expects a bit array, got %s", args[0])
	}
	return types.Field, nil
}

func checkArrayReverse(args []types.Type) (types.Type, error) {
	if err := checkArity(args, 1); err != nil {
		return types.Type{}, err
	}
	arr := args[0].Resolve()
	if arr.Kind != types.KindArray {
		return types.Type{}, fmt.Errorf("array::reverse expects an array, got %s", args[0])
	}
	return args[0], nil
}

func checkArrayTruncate(args []types.Type) (types.Type, error) {
	if err := checkArity(args, 2); err != nil {
		return types.Type{}, err
	}
	arr := args[0].Resolve()
	if arr.Kind != types.KindArray {
		return types.Type{}, fmt.Errorf("array::truncate expects an array, got %s", args[0])
	}
	if !args[1].Resolve().IsInteger() {
		return types.Type{}, fmt.Errorf("array::truncate's length must be an integer constant")
	}
	return args[0], nil
}

func checkArrayPad(args []types.Type) (types.Type, error) {
	if err := checkArity(args, 3); err != nil {
		return types.Type{}, err
	}
	arr := args[0].Resolve()
	if arr.Kind != types.KindArray {
		return types.Type{}, fmt.Errorf("array::pad expects an array, got %s", args[0])
	}
	if !types.Equal(*arr.Element, args[2]) {
		return types.Type{}, fmt.Errorf("array::pad's fill value must match the element type %s", arr.Element)
	}
	return args[0], nil
}

func checkFfInvert(args []types.Type) (types.Type, error) {
	if err := checkArity(args, 1); err != nil {
		return types.Type{}, err
	}
	if args[0].Resolve().Kind != types.KindField {
		return types.Type{}, fmt.Errorf("ff::invert expects field, got %s", args[0])
	}
	return types.Field, nil
}

// checkUnwrap models convert::unwrap/unwrap_or over the source language's
// Option-adjacent (tuple(bool, T)) convention: the first tuple element is
// the "present" flag, the second its payload.
func checkUnwrap(withDefault bool) func([]types.Type) (types.Type, error) {
	return func(args []types.Type) (types.Type, error) {
		want := 1
		if withDefault {
			want = 2
		}
		if err := checkArity(args, want); err != nil {
			return types.Type{}, err
		}
		opt := args[0].Resolve()
		if opt.Kind != types.KindTuple || len(opt.Elements) != 2 || opt.Elements[0].Resolve().Kind != types.KindBoolean {
			return types.Type{}, fmt.Errorf("convert::unwrap expects (bool, T), got %s", args[0])
		}
		payload := opt.Elements[1]
		if withDefault && !types.Equal(payload, args[1]) {
			return types.Type{}, fmt.Errorf("convert::unwrap_or's default must match the payload type %s", payload)
		}
		return payload, nil
	}
}

// Builtins is the closed standard-library registry: name -> Builtin. All
// entries are grounded in
// original_source/zinc-compiler/src/semantic/element/type/function/stdlib/.
var Builtins = map[string]Builtin{
	"std::convert::from_bits_unsigned": {BuiltinFromBitsUnsigned, "std::convert::from_bits_unsigned", fromBits(false, false)},
	"std::convert::from_bits_signed":   {BuiltinFromBitsSigned, "std::convert::from_bits_signed", fromBits(true, false)},
	"std::convert::from_bits_field":    {BuiltinFromBitsField, "std::convert::from_bits_field", fromBits(false, true)},
	"std::convert::to_bits_unsigned":   {BuiltinToBitsUnsigned, "std::convert::to_bits_unsigned", toBits(false, false)},
	"std::convert::to_bits_signed":     {BuiltinToBitsSigned, "std::convert::to_bits_signed", toBits(true, false)},
	"std::convert::to_bits_field":      {BuiltinToBitsField, "std::convert::to_bits_field", toBits(false, true)},
	"std::crypto::sha256":              {BuiltinSha256, "std::crypto::sha256", checkSha256},
	"std::crypto::pedersen":            {BuiltinPedersen, "std::crypto::pedersen", checkPedersen},
	"std::array::reverse":              {BuiltinArrayReverse, "std::array::reverse", checkArrayReverse},
	"std::array::truncate":             {BuiltinArrayTruncate, "std::array::truncate", checkArrayTruncate},
	"std::array::pad":                  {BuiltinArrayPad, "std::array::pad", checkArrayPad},
	"std::ff::invert":                  {BuiltinFfInvert, "std::ff::invert", checkFfInvert},
	"std::convert::unwrap":             {BuiltinConvertUnwrap, "std::convert::unwrap", checkUnwrap(false)},
	"std::convert::unwrap_or":          {BuiltinConvertUnwrapOr, "std::convert::unwrap_or", checkUnwrap(true)},
}

// Lookup finds a Builtin by its fully qualified "::"-joined path.
func Lookup(path string) (Builtin, bool) {
	b, ok := Builtins[path]
	return b, ok
}

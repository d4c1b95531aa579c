package vm

import (
	"math/big"
	"strings"
	"testing"

	"shardc/bytecode"
	"shardc/semantic"
)

// link wraps body in the prelude the real Emitter always produces
// (Call(mainEntry, 0); Exit(0)) followed by body itself, so tests can hand
// -assemble a bytecode.Program the same way bytecode.Emit does.
func link(constants []bytecode.Constant, tags []string, body []byte) bytecode.Program {
	instr := bytecode.Make(bytecode.OpCall, 0, 0)
	instr = append(instr, bytecode.Make(bytecode.OpExit, 0)...)
	mainEntry := len(instr)
	instr = append(instr, body...)
	instr[1] = byte(mainEntry >> 8)
	instr[2] = byte(mainEntry)
	return bytecode.Program{Instructions: instr, Constants: constants, Tags: tags, MainEntry: mainEntry}
}

func TestRunPushConstArithmetic(t *testing.T) {
	constants := []bytecode.Constant{
		{Value: big.NewInt(5), BitLength: 8},
		{Value: big.NewInt(1), BitLength: 8},
	}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpPushConst, 1)...)
	body = append(body, bytecode.Make(bytecode.OpAdd)...)
	body = append(body, bytecode.Make(bytecode.OpPop)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	code, err := Run(link(constants, nil, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestRunAssertFailureIsRuntimeError(t *testing.T) {
	constants := []bytecode.Constant{{Value: big.NewInt(0), BitLength: 1}}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpAssert, bytecode.NoTag)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	_, err := Run(link(constants, nil, body))
	if err == nil {
		t.Fatalf("expected a RuntimeError for a failing Assert")
	}
	if _, ok := err.(RuntimeError); !ok {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
}

func TestRunAssertFailureReportsTag(t *testing.T) {
	constants := []bytecode.Constant{{Value: big.NewInt(0), BitLength: 1}}
	tags := []string{"balance must be non-negative"}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpAssert, 0)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	_, err := Run(link(constants, tags, body))
	if err == nil {
		t.Fatalf("expected a RuntimeError for a failing Assert")
	}
	if !strings.Contains(err.Error(), tags[0]) {
		t.Fatalf("error %q does not report the tag %q", err.Error(), tags[0])
	}
}

func TestRunLoopSumsTripCount(t *testing.T) {
	constants := []bytecode.Constant{
		{Value: big.NewInt(0), BitLength: 8},
		{Value: big.NewInt(1), BitLength: 8},
	}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpStore, 0)...)
	body = append(body, bytecode.Make(bytecode.OpLoopBegin, 5)...)
	body = append(body, bytecode.Make(bytecode.OpLoad, 0)...)
	body = append(body, bytecode.Make(bytecode.OpPushConst, 1)...)
	body = append(body, bytecode.Make(bytecode.OpAdd)...)
	body = append(body, bytecode.Make(bytecode.OpStore, 0)...)
	body = append(body, bytecode.Make(bytecode.OpLoopEnd)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	vmInstance := New()
	if _, err := vmInstance.Run(link(constants, nil, body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := vmInstance.locals[0]
	if got == nil || got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("sum = %v, want 5", got)
	}
}

func TestRunZeroTripLoopSkipsBody(t *testing.T) {
	constants := []bytecode.Constant{{Value: big.NewInt(0), BitLength: 8}}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpLoopBegin, 0)...)
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpAssert, bytecode.NoTag)...) // would fail if reached
	body = append(body, bytecode.Make(bytecode.OpLoopEnd)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	if _, err := Run(link(constants, nil, body)); err != nil {
		t.Fatalf("unexpected error (zero-trip loop body should be skipped): %v", err)
	}
}

func TestRunNestedZeroTripLoopSkipsInnerBody(t *testing.T) {
	constants := []bytecode.Constant{{Value: big.NewInt(0), BitLength: 8}}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpLoopBegin, 0)...) // outer: zero trips
	body = append(body, bytecode.Make(bytecode.OpLoopBegin, 3)...) // inner: would run 3x if reached
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpAssert, bytecode.NoTag)...)
	body = append(body, bytecode.Make(bytecode.OpLoopEnd)...) // ends inner
	body = append(body, bytecode.Make(bytecode.OpLoopEnd)...) // ends outer
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	if _, err := Run(link(constants, nil, body)); err != nil {
		t.Fatalf("unexpected error (nested zero-trip loop should skip entirely): %v", err)
	}
}

func TestRunCastSignExtendsNegative(t *testing.T) {
	// 130 (0x82) reinterpreted as a signed 8-bit value is -126.
	constants := []bytecode.Constant{{Value: big.NewInt(130), BitLength: 16}}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpCast, 1, 8)...)
	body = append(body, bytecode.Make(bytecode.OpStore, 0)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	vmInstance := New()
	if _, err := vmInstance.Run(link(constants, nil, body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := vmInstance.locals[0]
	if got == nil || got.Cmp(big.NewInt(-126)) != 0 {
		t.Fatalf("cast result = %v, want -126", got)
	}
}

func TestRunCallAndReturn(t *testing.T) {
	// callee: Load(0); PushConst(1); Add; Return(1) — returns arg+1.
	var callee []byte
	callee = append(callee, bytecode.Make(bytecode.OpLoad, 0)...)
	callee = append(callee, bytecode.Make(bytecode.OpPushConst, 1)...)
	callee = append(callee, bytecode.Make(bytecode.OpAdd)...)
	callee = append(callee, bytecode.Make(bytecode.OpReturn, 1)...)

	// main: PushConst(7); Call(<callee>, 1); Store(0); Return(0)
	var main []byte
	main = append(main, bytecode.Make(bytecode.OpPushConst, 0)...)
	callPos := len(main)
	main = append(main, bytecode.Make(bytecode.OpCall, 0, 1)...) // address patched below
	main = append(main, bytecode.Make(bytecode.OpStore, 0)...)
	main = append(main, bytecode.Make(bytecode.OpReturn, 0)...)

	// Call takes an absolute address, and link places body after the
	// Call+Exit prelude.
	prelude := len(bytecode.Make(bytecode.OpCall, 0, 0)) + len(bytecode.Make(bytecode.OpExit, 0))
	calleeEntry := prelude + len(main)
	addressOffset := callPos + 1 // past the opcode byte
	main[addressOffset] = byte(calleeEntry >> 8)
	main[addressOffset+1] = byte(calleeEntry)

	body := append(main, callee...)

	constants := []bytecode.Constant{
		{Value: big.NewInt(7), BitLength: 8},
		{Value: big.NewInt(1), BitLength: 8},
	}

	vmInstance := New()
	if _, err := vmInstance.Run(link(constants, nil, body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := vmInstance.locals[0]
	if got == nil || got.Cmp(big.NewInt(8)) != 0 {
		t.Fatalf("result = %v, want 8", got)
	}
}

func TestRunCallBuiltinFromBitsUnsigned(t *testing.T) {
	// from_bits_unsigned([1,0,1]) == 0b101 == 5, MSB-first, as bitsToUint folds it.
	constants := []bytecode.Constant{
		{Value: big.NewInt(1), BitLength: 1},
		{Value: big.NewInt(0), BitLength: 1},
		{Value: big.NewInt(1), BitLength: 1},
	}
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpPushConst, 0)...)
	body = append(body, bytecode.Make(bytecode.OpPushConst, 1)...)
	body = append(body, bytecode.Make(bytecode.OpPushConst, 2)...)
	body = append(body, bytecode.Make(bytecode.OpCallBuiltin, semantic.BuiltinFromBitsUnsigned, 3)...)
	body = append(body, bytecode.Make(bytecode.OpStore, 0)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	vmInstance := New()
	if _, err := vmInstance.Run(link(constants, nil, body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := vmInstance.locals[0]
	if got == nil || got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("from_bits_unsigned result = %v, want 5", got)
	}
}

func TestRunCallBuiltinUnsupportedIsRuntimeError(t *testing.T) {
	var body []byte
	body = append(body, bytecode.Make(bytecode.OpCallBuiltin, semantic.BuiltinSha256, 0)...)
	body = append(body, bytecode.Make(bytecode.OpReturn, 0)...)

	_, err := Run(link(nil, nil, body))
	if err == nil {
		t.Fatalf("expected a RuntimeError for an unsupported builtin")
	}
	if _, ok := err.(RuntimeError); !ok {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
}

func TestRunInstructionStreamWithoutExitIsRuntimeError(t *testing.T) {
	instr := bytecode.Make(bytecode.OpPushConst, 0)
	_, err := Run(bytecode.Program{Instructions: instr, Constants: []bytecode.Constant{{Value: big.NewInt(1)}}})
	if err == nil {
		t.Fatalf("expected an error when the stream runs off the end without Exit")
	}
}

// Package vm implements a reference executor for bytecode.Program: a
// straight-line interpreter over the instruction set spec.md §6 defines,
// kept in the same shape as the teacher's own toy stack machine
// (compiler.Bytecode/OP_CONSTANT/OP_END fetch-decode-execute loop) but
// regrown to the full opcode table this front end emits.
//
// It is NOT the zero-knowledge virtual machine spec.md §1 names as an
// out-of-scope external collaborator: it has no notion of a constraint
// system or the scalar field's modulus, and a CallBuiltin naming a
// cryptographic gadget fails with a RuntimeError rather than silently
// returning a wrong answer. Its only job is to give this repository's own
// test suite (and the CLI's `run` command) an in-tree way to execute
// emitted bytecode end-to-end.
package vm

import (
	"math/big"

	"shardc/bytecode"
)

// callFrame is what Call saves so Return can resume the caller: the
// instruction to resume at, and the caller's local storage addresses
// (spec.md §4.5's "each function gets its own address space").
type callFrame struct {
	returnIP int
	locals   map[int]*big.Int
}

// loopFrame tracks one in-progress LoopBegin/LoopEnd pair: where its body
// starts (so LoopEnd can jump back) and how many iterations remain.
type loopFrame struct {
	bodyStart int
	remaining int
}

// VM executes one bytecode.Program to completion. It is the runtime
// environment where the front end's own bytecode gets executed outside
// the real proving-system backend.
type VM struct {
	stack   Stack
	locals  map[int]*big.Int
	globals map[int]*big.Int
	calls   []callFrame
	loops   []loopFrame

	// loopEnds maps a LoopBegin instruction's offset to its matching
	// LoopEnd's offset, precomputed once per Run so a zero-trip loop can
	// be skipped in one jump instead of single-stepping its body.
	loopEnds map[int]int

	ip int
}

// New creates a fresh VM instance.
func New() *VM {
	return &VM{
		locals:  make(map[int]*big.Int),
		globals: make(map[int]*big.Int),
	}
}

// Run executes p's instruction stream on a fresh VM, starting at
// instruction 0 (p's own prelude begins `Call(main_entry, 0); Exit(0)`,
// per spec.md §4.5), and returns the code given to Exit.
func Run(p bytecode.Program) (int, error) {
	return New().Run(p)
}

// Run executes p to completion on vm, which may be reused for a fresh
// program afterwards (its stacks and frames are reset on entry).
func (vm *VM) Run(p bytecode.Program) (int, error) {
	vm.stack = nil
	vm.locals = make(map[int]*big.Int)
	vm.globals = make(map[int]*big.Int)
	vm.calls = nil
	vm.loops = nil
	vm.loopEnds = matchLoopEnds(p.Instructions)
	vm.ip = 0

	for vm.ip < len(p.Instructions) {
		op := bytecode.Opcode(p.Instructions[vm.ip])
		def, err := bytecode.Lookup(op)
		if err != nil {
			return 0, newRuntimeError("unknown opcode %d at ip %d", op, vm.ip)
		}
		operands, read := bytecode.ReadOperands(def, p.Instructions[vm.ip+1:])
		next := vm.ip + 1 + read

		switch op {
		case bytecode.OpExit:
			return operands[0], nil

		case bytecode.OpPushConst:
			idx := operands[0]
			if idx < 0 || idx >= len(p.Constants) {
				return 0, newRuntimeError("constant index %d out of range", idx)
			}
			vm.stack.Push(new(big.Int).Set(p.Constants[idx].Value))

		case bytecode.OpPop:
			if _, ok := vm.stack.Pop(); !ok {
				return 0, newRuntimeError("pop from empty stack")
			}

		case bytecode.OpLoad:
			v, ok := vm.locals[operands[0]]
			if !ok {
				return 0, newRuntimeError("read from unset local address %d", operands[0])
			}
			vm.stack.Push(new(big.Int).Set(v))

		case bytecode.OpStore:
			v, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("store: empty stack")
			}
			vm.locals[operands[0]] = v

		case bytecode.OpLoadSequence:
			if err := vm.loadSequence(vm.locals, operands[0], operands[1]); err != nil {
				return 0, err
			}

		case bytecode.OpStoreSequence:
			if err := vm.storeSequence(vm.locals, operands[0], operands[1]); err != nil {
				return 0, err
			}

		case bytecode.OpLoadGlobal:
			if err := vm.loadSequence(vm.globals, operands[0], operands[1]); err != nil {
				return 0, err
			}

		case bytecode.OpStoreGlobal:
			if err := vm.storeSequence(vm.globals, operands[0], operands[1]); err != nil {
				return 0, err
			}

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
			bytecode.OpAnd, bytecode.OpOr, bytecode.OpXor, bytecode.OpShl, bytecode.OpShr,
			bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe, bytecode.OpEq, bytecode.OpNe:
			b, ok1 := vm.stack.Pop()
			a, ok2 := vm.stack.Pop()
			if !ok1 || !ok2 {
				return 0, newRuntimeError("binary operator %s: stack underflow", def.Name)
			}
			result, err := evalBinary(op, a, b)
			if err != nil {
				return 0, err
			}
			vm.stack.Push(result)

		case bytecode.OpNeg:
			a, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("neg: stack underflow")
			}
			vm.stack.Push(new(big.Int).Neg(a))

		case bytecode.OpNot:
			a, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("not: stack underflow")
			}
			vm.stack.Push(boolInt(a.Sign() == 0))

		case bytecode.OpBitNot:
			a, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("bitnot: stack underflow")
			}
			vm.stack.Push(bitNot(a, operands[0] != 0, operands[1]))

		case bytecode.OpCast:
			a, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("cast: stack underflow")
			}
			vm.stack.Push(castTo(a, operands[0] != 0, operands[1]))

		case bytecode.OpIf:
			cond, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("if: stack underflow")
			}
			if cond.Sign() == 0 {
				next = operands[0]
			}

		case bytecode.OpElse:
			next = operands[0]

		case bytecode.OpEndIf:
			// boundary marker only; execution simply falls through.

		case bytecode.OpJump:
			next = operands[0]

		case bytecode.OpJumpIfFalse:
			cond, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("jumpiffalse: stack underflow")
			}
			if cond.Sign() == 0 {
				next = operands[0]
			}

		case bytecode.OpLoopBegin:
			trip := operands[0]
			if trip <= 0 {
				end, ok := vm.loopEnds[vm.ip]
				if !ok {
					return 0, newRuntimeError("loopbegin at %d has no matching loopend", vm.ip)
				}
				endDef, _ := bytecode.Lookup(bytecode.OpLoopEnd)
				_, endRead := bytecode.ReadOperands(endDef, p.Instructions[end+1:])
				next = end + 1 + endRead
			} else {
				vm.loops = append(vm.loops, loopFrame{bodyStart: next, remaining: trip})
			}

		case bytecode.OpLoopEnd:
			if len(vm.loops) == 0 {
				return 0, newRuntimeError("loopend with no matching loopbegin")
			}
			top := &vm.loops[len(vm.loops)-1]
			top.remaining--
			if top.remaining > 0 {
				next = top.bodyStart
			} else {
				vm.loops = vm.loops[:len(vm.loops)-1]
			}

		case bytecode.OpCall:
			address, total := operands[0], operands[1]
			args := make([]*big.Int, total)
			for i := total - 1; i >= 0; i-- {
				v, ok := vm.stack.Pop()
				if !ok {
					return 0, newRuntimeError("call: too few argument cells on stack")
				}
				args[i] = v
			}
			callee := make(map[int]*big.Int, total)
			for i, v := range args {
				callee[i] = v
			}
			vm.calls = append(vm.calls, callFrame{returnIP: next, locals: vm.locals})
			vm.locals = callee
			next = address

		case bytecode.OpCallBuiltin:
			if err := vm.callBuiltin(operands[0], operands[1]); err != nil {
				return 0, err
			}

		case bytecode.OpReturn:
			if len(vm.calls) == 0 {
				return 0, newRuntimeError("return with no active call")
			}
			top := vm.calls[len(vm.calls)-1]
			vm.calls = vm.calls[:len(vm.calls)-1]
			// Returning from the outermost call (main) leaves main's locals
			// in place, so they stay readable after Run returns.
			if len(vm.calls) > 0 {
				vm.locals = top.locals
			}
			next = top.returnIP

		case bytecode.OpAssert:
			cond, ok := vm.stack.Pop()
			if !ok {
				return 0, newRuntimeError("assert: stack underflow")
			}
			if cond.Sign() == 0 {
				tagIdx := operands[0]
				if tagIdx != bytecode.NoTag && tagIdx < len(p.Tags) {
					return 0, newRuntimeError("assertion failed: %s", p.Tags[tagIdx])
				}
				return 0, newRuntimeError("assertion failed")
			}

		default:
			return 0, newRuntimeError("unhandled opcode %s at ip %d", def.Name, vm.ip)
		}

		vm.ip = next
	}
	return 0, newRuntimeError("instruction stream ran off the end without Exit")
}

// loadSequence pushes n consecutive cells from mem starting at addr, in
// ascending address order, onto the operand stack (spec.md's
// LoadSequence/LoadGlobal: "addr, n").
func (vm *VM) loadSequence(mem map[int]*big.Int, addr, n int) error {
	for i := 0; i < n; i++ {
		v, ok := mem[addr+i]
		if !ok {
			return newRuntimeError("read from unset address %d", addr+i)
		}
		vm.stack.Push(new(big.Int).Set(v))
	}
	return nil
}

// storeSequence pops n cells off the operand stack and stores them into
// mem starting at addr, restoring the ascending address order the values
// were originally pushed in.
func (vm *VM) storeSequence(mem map[int]*big.Int, addr, n int) error {
	for i := n - 1; i >= 0; i-- {
		v, ok := vm.stack.Pop()
		if !ok {
			return newRuntimeError("storesequence: too few cells on stack")
		}
		mem[addr+i] = v
	}
	return nil
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// matchLoopEnds scans instr once, pairing every LoopBegin with its
// lexically matching LoopEnd by nesting depth, so a zero-trip loop can
// skip its whole body (including any nested loops) in one jump.
func matchLoopEnds(instr []byte) map[int]int {
	ends := make(map[int]int)
	var open []int
	ip := 0
	for ip < len(instr) {
		op := bytecode.Opcode(instr[ip])
		def, err := bytecode.Lookup(op)
		if err != nil {
			ip++
			continue
		}
		_, read := bytecode.ReadOperands(def, instr[ip+1:])
		switch op {
		case bytecode.OpLoopBegin:
			open = append(open, ip)
		case bytecode.OpLoopEnd:
			if len(open) > 0 {
				top := open[len(open)-1]
				open = open[:len(open)-1]
				ends[top] = ip
			}
		}
		ip += 1 + read
	}
	return ends
}

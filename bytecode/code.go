// Package bytecode implements the flat instruction stream spec.md §6
// defines and the Emitter that produces it. The opcode table is kept in
// the exact shape as the teacher's `compiler/code.go`
// (`Opcode byte`/`OpCodeDefinition{Name, OperandWidths}`/`definitions
// map[Opcode]*OpCodeDefinition`/big-endian `encoding/binary` packing), just
// regrown from the teacher's single OP_CONSTANT entry to the full
// instruction set required here.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Opcode identifies one instruction kind in the stream.
type Opcode byte

const (
	OpPushConst Opcode = iota
	OpPop
	OpLoad
	OpStore
	OpLoadSequence
	OpStoreSequence
	OpLoadGlobal
	OpStoreGlobal
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpNot
	OpBitNot
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpCast
	OpIf
	OpElse
	OpEndIf
	OpLoopBegin
	OpLoopEnd
	OpCall
	OpCallBuiltin
	OpReturn
	OpExit
	OpAssert

	// OpJump and OpJumpIfFalse are an emitter extension beyond spec.md §6's
	// minimum instruction set, needed because LoopBegin/LoopEnd only
	// express a loop whose trip count is known at compile time. A "while"
	// loop's condition generally is not, so it lowers to the teacher's own
	// OP_JUMP/OP_JUMP_IF_FALSE pattern from VisitWhileStmt instead
	// (condition; JumpIfFalse end; body; Jump start; end:).
	OpJump
	OpJumpIfFalse
)

// Definition describes one opcode's human-readable name and the byte
// width of each of its operands, in encoding order.
type Definition struct {
	Name          string
	OperandWidths []int
}

// NoTag is the sentinel Assert tag operand meaning "no diagnostic tag was
// given" (require() with a single argument). Assert's operand otherwise
// indexes Program.Tags; the Emitter places no cap on that table.
const NoTag = 0xFFFF

const noTag = NoTag

var definitions = map[Opcode]*Definition{
	OpPushConst:     {"PushConst", []int{2}},
	OpPop:           {"Pop", []int{}},
	OpLoad:          {"Load", []int{2}},
	OpStore:         {"Store", []int{2}},
	OpLoadSequence:  {"LoadSequence", []int{2, 2}},
	OpStoreSequence: {"StoreSequence", []int{2, 2}},
	// OpLoadGlobal/OpStoreGlobal are an emitter extension beyond spec.md
	// §6's minimum instruction set: Load/Store address a function's own
	// frame, but "static" bindings need storage that outlives any single
	// call, so they get their own address space.
	OpLoadGlobal:  {"LoadGlobal", []int{2, 2}}, // address, width
	OpStoreGlobal: {"StoreGlobal", []int{2, 2}},
	OpAdd:         {"Add", []int{}},
	OpSub:         {"Sub", []int{}},
	OpMul:         {"Mul", []int{}},
	OpDiv:         {"Div", []int{}},
	OpMod:         {"Mod", []int{}},
	OpNeg:         {"Neg", []int{}},
	OpNot:         {"Not", []int{}},
	// OpBitNot is "~", kept distinct from OpNot ("!") since one complements
	// a single bit and the other complements a stamped integer width.
	OpBitNot: {"BitNot", []int{1, 2}}, // sign (0/1), bitlength
	OpAnd:    {"And", []int{}},
	OpOr:            {"Or", []int{}},
	OpXor:           {"Xor", []int{}},
	OpShl:           {"Shl", []int{}},
	OpShr:           {"Shr", []int{}},
	OpLt:            {"Lt", []int{}},
	OpLe:            {"Le", []int{}},
	OpGt:            {"Gt", []int{}},
	OpGe:            {"Ge", []int{}},
	OpEq:            {"Eq", []int{}},
	OpNe:            {"Ne", []int{}},
	OpCast:          {"Cast", []int{1, 2}}, // sign (0/1), bitlength
	OpIf:            {"If", []int{2}},      // placeholder jump to Else/EndIf
	OpElse:          {"Else", []int{2}},    // placeholder jump to EndIf
	OpEndIf:         {"EndIf", []int{}},
	OpLoopBegin:     {"LoopBegin", []int{2}}, // trip count
	OpLoopEnd:       {"LoopEnd", []int{}},
	OpCall:          {"Call", []int{2, 1}}, // entry address, argc
	OpCallBuiltin:   {"CallBuiltin", []int{2, 1}},
	OpReturn:        {"Return", []int{2}}, // return width (storage cells)
	OpExit:          {"Exit", []int{1}},
	OpAssert:        {"Assert", []int{2}}, // index into Program.Tags, or noTag
	OpJump:          {"Jump", []int{2}},
	OpJumpIfFalse:   {"JumpIfFalse", []int{2}},
}

// Lookup returns op's Definition, or an error for an unrecognized opcode —
// this can only happen from a malformed/foreign instruction stream, not
// from this package's own emitter, so callers that construct opcodes
// themselves treat the error as an internal invariant violation.
func Lookup(op Opcode) (*Definition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("bytecode: opcode %d undefined", op)
	}
	return def, nil
}

// Make encodes one instruction: the opcode byte followed by each operand
// packed big-endian at its defined width.
func Make(op Opcode, operands ...int) []byte {
	def, err := Lookup(op)
	if err != nil {
		return nil
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)
	offset := 1
	for i, o := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instruction[offset] = byte(o)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(o))
		}
		offset += width
	}
	return instruction
}

// ReadOperands decodes the operands of one instruction (given its
// Definition) starting at ins[0], returning the decoded values and the
// number of bytes consumed (excluding the opcode byte itself).
func ReadOperands(def *Definition, ins []byte) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(ins[offset])
		case 2:
			operands[i] = int(binary.BigEndian.Uint16(ins[offset:]))
		}
		offset += width
	}
	return operands, offset
}

// Constant is one entry of Program.Constants: an arbitrary-precision integer
// tagged with the (sign, bitlength) stamp spec.md requires every
// PushConst carry. Booleans are represented as 1-bit unsigned integers
// (true = 1, false = 0), matching spec.md scenario 3's
// `PushConst(1, false, 1)` for `require(true)`.
type Constant struct {
	Value     *big.Int
	Signed    bool
	BitLength int
}

// Program is the linked output of the Emitter: the instruction stream, its
// constants pool, the separate pool of require() diagnostic tags (strings
// never participate in circuit arithmetic, so they never share the
// Constants pool), and the resolved entry address of main (spec.md's
// "prelude Call(main_entry, 0); Exit(0)").
type Program struct {
	Instructions []byte
	Constants    []Constant
	Tags         []string
	MainEntry    int
}

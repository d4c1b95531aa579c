package bytecode

import (
	"testing"

	"shardc/lexer"
	"shardc/parser"
)

func mustEmit(t *testing.T, source string) Program {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	items, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := Emit(items)
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	return prog
}

// spec.md §8 scenario 3: require(true) emits PushConst(1,false,1); Assert(noTag).
func TestEmitRequireTrue(t *testing.T) {
	prog := mustEmit(t, `fn main() { require(true); }`)
	if len(prog.Constants) == 0 {
		t.Fatalf("expected at least one constant")
	}
	c := prog.Constants[len(prog.Constants)-1]
	if c.Value.Sign() == 0 || c.Signed || c.BitLength != 1 {
		t.Fatalf("unexpected boolean-true constant stamp: %+v", c)
	}
	// main's body ends with Return(0), three bytes; Assert (also three
	// bytes) comes right before it.
	if Opcode(prog.Instructions[len(prog.Instructions)-6]) != OpAssert {
		t.Fatalf("expected Assert right before main's closing Return")
	}
}

// require(true, "k") attaches a diagnostic tag to the Assert instruction.
func TestEmitRequireWithTag(t *testing.T) {
	prog := mustEmit(t, `fn main() { require(true, "k"); }`)
	if len(prog.Tags) != 1 || prog.Tags[0] != "k" {
		t.Fatalf("expected one tag %q, got %v", "k", prog.Tags)
	}
}

// spec.md §8 scenario 4's exact prelude shape: Call(main_entry,0); Exit(0).
func TestEmitPrelude(t *testing.T) {
	prog := mustEmit(t, `fn main() { require(true); }`)
	if Opcode(prog.Instructions[0]) != OpCall {
		t.Fatalf("expected instruction 0 to be Call, got %d", prog.Instructions[0])
	}
	callDef, _ := Lookup(OpCall)
	operands, read := ReadOperands(callDef, prog.Instructions[1:])
	if operands[0] != prog.MainEntry {
		t.Fatalf("Call operand %d does not match MainEntry %d", operands[0], prog.MainEntry)
	}
	if operands[1] != 0 {
		t.Fatalf("Call to main must pass 0 arguments, got %d", operands[1])
	}
	exitPos := 1 + read
	if Opcode(prog.Instructions[exitPos]) != OpExit {
		t.Fatalf("expected Exit right after the Call to main")
	}
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	prog := mustEmit(t, `
fn main() {
    let mut sum = 0;
    for i in 0..=5 {
        sum = sum + i;
    }
    require(sum == 15);
}
`)
	out := Disassemble(prog)
	if out == "" {
		t.Fatalf("expected non-empty disassembly")
	}
}

func TestNoMainIsAnError(t *testing.T) {
	_, err := mustEmitErr(t, `fn helper() -> u8 { return 1; }`)
	if err == nil {
		t.Fatalf("expected an error for a program without 'main'")
	}
}

func mustEmitErr(t *testing.T, source string) (Program, error) {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		return Program{}, err
	}
	items, err := parser.Parse(tokens)
	if err != nil {
		return Program{}, err
	}
	return Emit(items)
}

// Package bytecode implements the flat instruction stream spec.md §6
// defines and the Emitter that produces it. Semantic analysis (name
// resolution, type checking, constant folding) and bytecode emission are
// interleaved into a single tree walk, exactly the way the teacher's
// `ASTCompiler` combines scope resolution and code generation in one pass
// (spec.md §4.5 describes them as separate components conceptually, but
// nothing requires two physical passes over the tree — see DESIGN.md).
package bytecode

import (
	"fmt"
	"math/big"
	"strings"

	"shardc/ast"
	"shardc/diag"
	"shardc/scope"
	"shardc/semantic"
	"shardc/token"
	"shardc/types"
)

// pendingCall records one Call instruction whose entry-address operand was
// emitted as a placeholder because the callee's instruction offset was not
// yet known (spec.md's "relocation table for function call sites").
type pendingCall struct {
	operandOffset int
	funcName      string
}

// funcInfo is what the emitter knows about a declared function before its
// body has been walked: its signature (for call-site type checking) and,
// once emitted, its entry address.
type funcInfo struct {
	decl       ast.FnDeclStmt
	params     []types.Type
	returnType types.Type
	selfType   *types.Type // non-nil for impl methods
	entry      int
	emitted    bool
}

// Emitter assigns stack addresses, resolves names and types, folds
// constants, and linearizes a parsed program into a bytecode.Program
// (spec.md §4.4/§4.5).
type Emitter struct {
	instructions []byte
	constants    []Constant
	tags         []string

	global *scope.Frame

	// qualified maps every "::"-joined declared name (struct/enum/alias/
	// const/static/function/method) to its scope.Item, independent of
	// lexical nesting, so a path expression can resolve "Color::Red" or
	// "shapes::Point" without walking the frame tree.
	qualified map[string]*scope.Item

	// imports maps a short name introduced by "use a::b::c;" (or
	// "use a::b::c as d;") back to its fully qualified name.
	imports map[string]string

	funcs map[string]*funcInfo
	// funcOrder preserves function declaration order (spec.md "each
	// function's body in declaration order").
	funcOrder []string

	structDecls map[string]ast.StructDeclStmt
	enumDecls   map[string]ast.EnumDeclStmt
	aliasDecls  map[string]ast.TypeAliasStmt
	constDecls  []qualifiedConstDecl
	staticDecls []qualifiedStaticDecl

	pending []pendingCall

	mainEntry    int
	mainPatchPos int

	cur         *scope.Frame
	curSelf     *types.Type
	curReturn   types.Type
	loopIVCount int
}

// qualifiedConstDecl/qualifiedStaticDecl pair a fully qualified name with
// its declaration, keeping module-level const/static initializers in
// declaration order for evaluateGlobals.
type qualifiedConstDecl struct {
	name string
	decl ast.ConstStmt
}

type qualifiedStaticDecl struct {
	name string
	decl ast.StaticStmt
}

// NewEmitter constructs an Emitter with a fresh module-root scope.
func NewEmitter() *Emitter {
	return &Emitter{
		global:      scope.NewRoot(),
		qualified:   make(map[string]*scope.Item),
		imports:     make(map[string]string),
		funcs:       make(map[string]*funcInfo),
		structDecls: make(map[string]ast.StructDeclStmt),
		enumDecls:   make(map[string]ast.EnumDeclStmt),
		aliasDecls:  make(map[string]ast.TypeAliasStmt),
	}
}

// Emit compiles a parsed program (top-level items, as returned by
// parser.Parse) into a linked Program.
func Emit(items []ast.Stmt) (Program, error) {
	e := NewEmitter()
	return e.emitProgram(items)
}

func (e *Emitter) emitProgram(items []ast.Stmt) (prog Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(diag.InvariantViolation); ok {
				err = iv
				return
			}
			panic(r)
		}
	}()

	if err := e.declareNames("", items); err != nil {
		return Program{}, err
	}
	if err := e.resolveAliases(); err != nil {
		return Program{}, err
	}
	if err := e.resolveStructFields(); err != nil {
		return Program{}, err
	}
	if err := e.resolveEnums(); err != nil {
		return Program{}, err
	}
	if err := e.resolveSignatures(); err != nil {
		return Program{}, err
	}
	if err := e.evaluateGlobals(); err != nil {
		return Program{}, err
	}

	if _, ok := e.funcs["main"]; !ok {
		return Program{}, fmt.Errorf("semantic error: no 'main' function declared")
	}

	// Prelude: Call(main_entry, 0); Exit(0), with main_entry back-patched
	// once main's body has been emitted (spec.md §4.5).
	e.mainPatchPos = len(e.instructions) + 1
	e.emit(OpCall, 0, 0)
	e.emit(OpExit, 0)

	for _, name := range e.funcOrder {
		if err := e.emitFunctionBody(name); err != nil {
			return Program{}, err
		}
	}

	if err := e.backpatch(); err != nil {
		return Program{}, err
	}

	return Program{
		Instructions: e.instructions,
		Constants:    e.constants,
		Tags:         e.tags,
		MainEntry:    e.funcs["main"].entry,
	}, nil
}

func (e *Emitter) backpatch() error {
	for _, p := range e.pending {
		fi, ok := e.funcs[p.funcName]
		if !ok || !fi.emitted {
			return fmt.Errorf("semantic error: undefined function %q", p.funcName)
		}
		patchUint16(e.instructions, p.operandOffset, fi.entry)
	}
	patchUint16(e.instructions, e.mainPatchPos, e.funcs["main"].entry)
	return nil
}

func patchUint16(code []byte, offset, value int) {
	code[offset] = byte(value >> 8)
	code[offset+1] = byte(value)
}

// --- low-level emission helpers ---

func (e *Emitter) emit(op Opcode, operands ...int) int {
	pos := len(e.instructions)
	e.instructions = append(e.instructions, Make(op, operands...)...)
	return pos
}

// operandOffset returns the byte offset of the first operand of the
// instruction emitted at instrPos (i.e. instrPos+1, past the opcode byte),
// used to register a pendingCall for later back-patching.
func operandOffset(instrPos int) int { return instrPos + 1 }

func (e *Emitter) addConstant(c Constant) int {
	e.constants = append(e.constants, c)
	return len(e.constants) - 1
}

func (e *Emitter) addTag(tag string) int {
	e.tags = append(e.tags, tag)
	return len(e.tags) - 1
}

func (e *Emitter) pushConstant(c types.Constant) error {
	switch c.Type.Resolve().Kind {
	case types.KindBoolean:
		v := big.NewInt(0)
		if c.Bool {
			v = big.NewInt(1)
		}
		idx := e.addConstant(Constant{Value: v, Signed: false, BitLength: 1})
		e.emit(OpPushConst, idx)
		return nil
	case types.KindUnit:
		return nil
	case types.KindArray, types.KindTuple:
		for _, el := range c.Elements {
			if err := e.pushConstant(el); err != nil {
				return err
			}
		}
		return nil
	case types.KindStructure:
		for _, f := range c.Type.Resolve().Fields {
			if err := e.pushConstant(c.Fields[f.Name]); err != nil {
				return err
			}
		}
		return nil
	default:
		signed := c.Stamp.Signed
		bits := c.Stamp.BitLength
		if c.Type.Resolve().Kind == types.KindField {
			bits = 254
		}
		idx := e.addConstant(Constant{Value: new(big.Int).Set(c.Int), Signed: signed, BitLength: bits})
		e.emit(OpPushConst, idx)
		return nil
	}
}

func locErr(loc ast.Location, format string, args ...any) error {
	return diag.NewSemanticError(loc.Line, loc.Column, fmt.Sprintf(format, args...))
}

func invariant(format string, args ...any) {
	panic(diag.InvariantViolation{Message: fmt.Sprintf(format, args...)})
}

// parseIntLiteral converts an INT token's lexeme (which may carry a 0x/0b/
// 0o prefix and underscores, per lexer.handleNumber) into an arbitrary
// precision integer, stamped per `expected` when given, or defaulting to
// unsigned 8-bit per spec.md §9's resolved open question.
func parseIntLiteral(tok token.Token, expected *types.Type) (types.Constant, error) {
	raw := strings.ReplaceAll(tok.Lexeme, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X"):
		base, raw = 16, raw[2:]
	case strings.HasPrefix(raw, "0b") || strings.HasPrefix(raw, "0B"):
		base, raw = 2, raw[2:]
	case strings.HasPrefix(raw, "0o") || strings.HasPrefix(raw, "0O"):
		base, raw = 8, raw[2:]
	}
	v, ok := new(big.Int).SetString(raw, base)
	if !ok {
		return types.Constant{}, locErr(ast.Loc(tok), "malformed integer literal %q", tok.Lexeme)
	}

	if expected != nil {
		t := expected.Resolve()
		switch t.Kind {
		case types.KindField:
			v.Mod(v, types.FieldModulus)
			return types.NewFieldConstant(v), nil
		case types.KindIntegerUnsigned, types.KindIntegerSigned:
			if !semantic.InRange(v, t.IsSigned(), t.BitLength) {
				return types.Constant{}, locErr(ast.Loc(tok), "literal %s does not fit in %s", v, t)
			}
			return types.NewIntConstant(v, t.IsSigned(), t.BitLength), nil
		}
	}
	if !semantic.InRange(v, false, 8) {
		return types.Constant{}, locErr(ast.Loc(tok), "literal %s does not fit the default type u8 (annotate its type)", v)
	}
	return types.NewIntConstant(v, false, 8), nil
}

func intFromToken(tok token.Token) (*big.Int, error) {
	c, err := parseIntLiteral(tok, nil)
	if err != nil {
		return nil, err
	}
	return c.Int, nil
}

// statements.go contains all the statement AST nodes. A statement node does not produce a value.

package ast

import "shardc/token"

// ExpressionStmt represents a statement that consists of a single expression.
// Example: "foo + bar;" — evaluates the expression and discards the result.
type ExpressionStmt struct {
	Expression Expression
}

func (e ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(e) }
func (e ExpressionStmt) Location() Location       { return e.Expression.Location() }

// LetStmt represents a local binding, e.g. "let x: u8 = 1;" or "let mut y = f();".
// Type is nil when the annotation is omitted and must be inferred from
// Initializer.
type LetStmt struct {
	Name        token.Token
	Mutable     bool
	Type        *TypeAnnotation
	Initializer Expression
}

func (l LetStmt) Accept(v StmtVisitor) any { return v.VisitLetStmt(l) }
func (l LetStmt) Location() Location       { return Loc(l.Name) }

// ConstStmt represents a module-level or block-level compile-time constant,
// e.g. "const LIMIT: u32 = 100;". Unlike LetStmt, Type is mandatory and
// Initializer must fold to a Constant during semantic analysis.
type ConstStmt struct {
	Name        token.Token
	Type        TypeAnnotation
	Initializer Expression
}

func (c ConstStmt) Accept(v StmtVisitor) any { return v.VisitConstStmt(c) }
func (c ConstStmt) Location() Location       { return Loc(c.Name) }

// StaticStmt represents a module-level mutable storage cell,
// e.g. "static mut COUNTER: u32 = 0;".
type StaticStmt struct {
	Name        token.Token
	Mutable     bool
	Type        TypeAnnotation
	Initializer Expression
}

func (s StaticStmt) Accept(v StmtVisitor) any { return v.VisitStaticStmt(s) }
func (s StaticStmt) Location() Location       { return Loc(s.Name) }

// TypeAliasStmt represents "type Name = TypeAnnotation;". The semantic
// analyzer rejects a TypeAliasStmt whose Aliased transitively refers back
// to Name (spec.md's "recursive type alias" semantic error).
type TypeAliasStmt struct {
	Name    token.Token
	Aliased TypeAnnotation
}

func (t TypeAliasStmt) Accept(v StmtVisitor) any { return v.VisitTypeAliasStmt(t) }
func (t TypeAliasStmt) Location() Location       { return Loc(t.Name) }

// StructField is one "name: Type" member of a StructDeclStmt.
type StructField struct {
	Name token.Token
	Type TypeAnnotation
}

// StructDeclStmt represents "struct Name { field: Type, ... }".
type StructDeclStmt struct {
	Name   token.Token
	Fields []StructField
}

func (s StructDeclStmt) Accept(v StmtVisitor) any { return v.VisitStructDeclStmt(s) }
func (s StructDeclStmt) Location() Location       { return Loc(s.Name) }

// EnumVariant is one "Name" or "Name = expr" member of an EnumDeclStmt.
// Value is nil when the variant has no explicit discriminant.
type EnumVariant struct {
	Name  token.Token
	Value Expression
}

// EnumDeclStmt represents "enum Name { Variant, Variant = expr, ... }".
type EnumDeclStmt struct {
	Name     token.Token
	Variants []EnumVariant
}

func (e EnumDeclStmt) Accept(v StmtVisitor) any { return v.VisitEnumDeclStmt(e) }
func (e EnumDeclStmt) Location() Location       { return Loc(e.Name) }

// Param is one "name: Type" function parameter.
type Param struct {
	Name token.Token
	Type TypeAnnotation
}

// FnDeclStmt represents a function declaration, e.g.
// "fn add(a: u8, b: u8) -> u8 { a + b }". ReturnType is nil for a
// unit-returning function.
type FnDeclStmt struct {
	Name       token.Token
	Params     []Param
	ReturnType *TypeAnnotation
	Body       Block
}

func (f FnDeclStmt) Accept(v StmtVisitor) any { return v.VisitFnDeclStmt(f) }
func (f FnDeclStmt) Location() Location       { return Loc(f.Name) }

// ModStmt represents a nested module declaration, e.g. "mod shapes { ... }".
type ModStmt struct {
	Name  token.Token
	Items []Stmt
}

func (m ModStmt) Accept(v StmtVisitor) any { return v.VisitModStmt(m) }
func (m ModStmt) Location() Location       { return Loc(m.Name) }

// UseStmt represents an import relative to the module root, e.g.
// "use std::crypto::sha256;". Alias is the empty token when no "as" clause
// is present.
type UseStmt struct {
	Path  Path
	Alias token.Token
}

func (u UseStmt) Accept(v StmtVisitor) any { return v.VisitUseStmt(u) }
func (u UseStmt) Location() Location       { return u.Path.Location() }

// RequireStmt represents a circuit assertion, e.g. "require(x == y);" or
// "require(x == y, \"tag\");", lowered by the bytecode emitter directly
// into an Assert instruction. Tag is nil when no diagnostic string was
// given.
type RequireStmt struct {
	Condition Expression
	Tag       *token.Token
	Loc       Location
}

func (r RequireStmt) Accept(v StmtVisitor) any { return v.VisitRequireStmt(r) }
func (r RequireStmt) Location() Location       { return r.Loc }

// ImplStmt represents "impl TypeName { fn ... }", attaching a set of
// methods (ordinary FnDeclStmt items whose first parameter may be "self")
// to a previously declared struct or enum.
type ImplStmt struct {
	TypeName token.Token
	Methods  []FnDeclStmt
}

func (i ImplStmt) Accept(v StmtVisitor) any { return v.VisitImplStmt(i) }
func (i ImplStmt) Location() Location       { return Loc(i.TypeName) }

// ForStmt represents "for name in range { body }", where Range is either a
// Range expression or any other iterable array expression.
type ForStmt struct {
	Name  token.Token
	Range Expression
	Body  Block
	Loc   Location
}

func (f ForStmt) Accept(v StmtVisitor) any { return v.VisitForStmt(f) }
func (f ForStmt) Location() Location       { return f.Loc }

// WhileStmt represents "while condition { body }".
type WhileStmt struct {
	Condition Expression
	Body      Block
	Loc       Location
}

func (w WhileStmt) Accept(v StmtVisitor) any { return v.VisitWhileStmt(w) }
func (w WhileStmt) Location() Location       { return w.Loc }

// ReturnStmt represents "return expr;" or a bare "return;" (Value is nil,
// the function's return type must be unit).
type ReturnStmt struct {
	Value Expression
	Loc   Location
}

func (r ReturnStmt) Accept(v StmtVisitor) any { return v.VisitReturnStmt(r) }
func (r ReturnStmt) Location() Location       { return r.Loc }

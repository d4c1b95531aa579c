package ast

import "shardc/token"

// This file implements the "late-mandatory field" builder pattern used by
// nodes whose construction spans several parser productions (a type
// annotation is seen before the initializer, optional clauses appear in
// varying order, and so on). Builders here encode the mandatory fields
// statically, by requiring them up front in the constructor, so there is no
// possible call sequence that finishes a value missing a required field —
// unlike a builder that defaults every field to its zero value and panics
// in Finish if one was never set.

// LetStmtBuilder assembles a LetStmt. Name is mandatory and supplied at
// construction; Mutable, Type, and Initializer are optional and set
// afterward.
type LetStmtBuilder struct {
	name        token.Token
	mutable     bool
	typ         *TypeAnnotation
	initializer Expression
}

// NewLetStmtBuilder starts a LetStmt builder with its one mandatory field.
func NewLetStmtBuilder(name token.Token) *LetStmtBuilder {
	return &LetStmtBuilder{name: name}
}

func (b *LetStmtBuilder) SetMutable() *LetStmtBuilder {
	b.mutable = true
	return b
}

func (b *LetStmtBuilder) SetType(t TypeAnnotation) *LetStmtBuilder {
	b.typ = &t
	return b
}

func (b *LetStmtBuilder) SetInitializer(expr Expression) *LetStmtBuilder {
	b.initializer = expr
	return b
}

// Finish produces the LetStmt. There is no missing-field panic here: Name is
// enforced by the constructor signature, and every other field is
// genuinely optional in the grammar ("let x;" with no type or initializer
// is syntactically valid, to be rejected later by semantic analysis, not
// by the builder).
func (b *LetStmtBuilder) Finish() LetStmt {
	return LetStmt{
		Name:        b.name,
		Mutable:     b.mutable,
		Type:        b.typ,
		Initializer: b.initializer,
	}
}

// FnDeclStmtBuilder assembles a FnDeclStmt. Name and Body are mandatory;
// Params accumulate one at a time and ReturnType is optional.
type FnDeclStmtBuilder struct {
	name       token.Token
	params     []Param
	returnType *TypeAnnotation
	body       *Block
}

// NewFnDeclStmtBuilder starts a FnDeclStmt builder with its mandatory name.
func NewFnDeclStmtBuilder(name token.Token) *FnDeclStmtBuilder {
	return &FnDeclStmtBuilder{name: name}
}

func (b *FnDeclStmtBuilder) AddParam(p Param) *FnDeclStmtBuilder {
	b.params = append(b.params, p)
	return b
}

func (b *FnDeclStmtBuilder) SetReturnType(t TypeAnnotation) *FnDeclStmtBuilder {
	b.returnType = &t
	return b
}

func (b *FnDeclStmtBuilder) SetBody(body Block) *FnDeclStmtBuilder {
	b.body = &body
	return b
}

// Finish produces the FnDeclStmt, panicking if Body was never set — a
// function declaration without a body is a programmer error in the parser,
// never a reachable parse state, so this is an internal invariant
// violation rather than a user-facing diagnostic.
func (b *FnDeclStmtBuilder) Finish() FnDeclStmt {
	if b.body == nil {
		panic("ast: FnDeclStmtBuilder.Finish called before SetBody")
	}
	return FnDeclStmt{
		Name:       b.name,
		Params:     b.params,
		ReturnType: b.returnType,
		Body:       *b.body,
	}
}

// IfExprBuilder assembles an IfExpr. Condition and Then are mandatory;
// Else is optional (absent for a terminal "if" with no else branch).
type IfExprBuilder struct {
	condition Expression
	then      Block
	elseBr    Expression
	loc       Location
}

// NewIfExprBuilder starts an IfExpr builder with its mandatory fields.
func NewIfExprBuilder(condition Expression, then Block, loc Location) *IfExprBuilder {
	return &IfExprBuilder{condition: condition, then: then, loc: loc}
}

func (b *IfExprBuilder) SetElse(elseBr Expression) *IfExprBuilder {
	b.elseBr = elseBr
	return b
}

func (b *IfExprBuilder) Finish() IfExpr {
	return IfExpr{Condition: b.condition, Then: b.then, Else: b.elseBr, Loc: b.loc}
}

// StructLiteralBuilder assembles a StructLiteral. Name is mandatory; fields
// accumulate one at a time as the parser consumes "name: expression" pairs.
type StructLiteralBuilder struct {
	name   token.Token
	fields []StructLiteralField
	loc    Location
}

// NewStructLiteralBuilder starts a StructLiteral builder with its mandatory
// name and location.
func NewStructLiteralBuilder(name token.Token, loc Location) *StructLiteralBuilder {
	return &StructLiteralBuilder{name: name, loc: loc}
}

func (b *StructLiteralBuilder) AddField(field StructLiteralField) *StructLiteralBuilder {
	b.fields = append(b.fields, field)
	return b
}

func (b *StructLiteralBuilder) Finish() StructLiteral {
	return StructLiteral{Name: b.name, Fields: b.fields, Loc: b.loc}
}

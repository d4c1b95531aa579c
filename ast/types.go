package ast

import (
	"strconv"

	"shardc/token"
)

// TypeAnnotationKind distinguishes the syntactic forms a type annotation can
// take in source text. This is the parser's surface-syntax representation;
// the semantic analyzer later resolves each TypeAnnotation into a concrete
// types.Type.
type TypeAnnotationKind int

const (
	// TypeKindPrimitiveInt is "uN" or "iN" (N in [1, 248]).
	TypeKindPrimitiveInt TypeAnnotationKind = iota
	// TypeKindField is the scalar-field primitive "field".
	TypeKindField
	// TypeKindBool is "bool".
	TypeKindBool
	// TypeKindUnit is "()".
	TypeKindUnit
	// TypeKindArray is "[T; n]".
	TypeKindArray
	// TypeKindTuple is "(T, T, ...)".
	TypeKindTuple
	// TypeKindNamed is a reference to a struct, enum, or type alias by name,
	// possibly path-qualified (e.g. "Point" or "std::crypto::Digest").
	TypeKindNamed
	// TypeKindSelf is the "Self" type, valid only inside an impl block.
	TypeKindSelf
)

// TypeAnnotation is the AST representation of a type as written in source —
// a function parameter type, a let binding's annotation, a struct field
// type, an array element type, and so on.
type TypeAnnotation struct {
	Kind TypeAnnotationKind

	// Signed and BitLength are set when Kind == TypeKindPrimitiveInt.
	Signed    bool
	BitLength int

	// Element and Size are set when Kind == TypeKindArray.
	Element *TypeAnnotation
	Size    Expression

	// Elements is set when Kind == TypeKindTuple.
	Elements []TypeAnnotation

	// Name is set when Kind == TypeKindNamed (a possibly path-qualified
	// reference to a struct, enum, or type alias).
	Name Path

	Loc token.Token
}

// Location reports where this type annotation begins in the source.
func (t TypeAnnotation) Location() Location { return Loc(t.Loc) }

// String renders a TypeAnnotation back into roughly its source form, used
// by diagnostics and the AST printer.
func (t TypeAnnotation) String() string {
	switch t.Kind {
	case TypeKindPrimitiveInt:
		sign := "u"
		if t.Signed {
			sign = "i"
		}
		return sign + strconv.Itoa(t.BitLength)
	case TypeKindField:
		return "field"
	case TypeKindBool:
		return "bool"
	case TypeKindUnit:
		return "()"
	case TypeKindArray:
		return "[" + t.Element.String() + "; ...]"
	case TypeKindTuple:
		out := "("
		for i, e := range t.Elements {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + ")"
	case TypeKindSelf:
		return "Self"
	default:
		return t.Name.String()
	}
}

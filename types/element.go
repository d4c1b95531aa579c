package types

import "math/big"

// ElementKind distinguishes the six shapes spec.md §3 assigns to the
// result of evaluating an expression at compile time.
type ElementKind int

const (
	ElementValue ElementKind = iota
	ElementConstant
	ElementPlace
	ElementType
	ElementModule
	ElementFunction
)

// Stamp is the "(sign, bitlength)" pair every integer constant carries,
// per spec.md's invariant that casting always leaves the stamp matching
// the target type.
type Stamp struct {
	Signed    bool
	BitLength int
}

// Constant is a fully folded compile-time value. Its Type selects which
// payload field is meaningful: IntegerUnsigned/IntegerSigned/Field use
// Int (and Stamp for the two integer variants); Boolean uses Bool; a
// require() diagnostic tag (the language's only string literal use) uses
// Str; Unit carries no payload; Array/Tuple use Elements; Structure uses
// Fields, keyed by field name and preserving declaration order via the
// owning Type.Fields slice.
type Constant struct {
	Type Type

	Int   *big.Int
	Stamp Stamp
	Bool  bool
	Str   string

	Elements []Constant
	Fields   map[string]Constant
}

// NewIntConstant builds an integer Constant with the given stamp.
func NewIntConstant(v *big.Int, signed bool, bitlength int) Constant {
	t := Uint(bitlength)
	if signed {
		t = Int(bitlength)
	}
	return Constant{Type: t, Int: new(big.Int).Set(v), Stamp: Stamp{Signed: signed, BitLength: bitlength}}
}

// NewBoolConstant builds a boolean Constant.
func NewBoolConstant(v bool) Constant {
	return Constant{Type: Bool, Bool: v}
}

// NewFieldConstant builds a field-element Constant.
func NewFieldConstant(v *big.Int) Constant {
	return Constant{Type: Field, Int: new(big.Int).Set(v)}
}

// NewStringConstant builds a string Constant (require() tags only).
func NewStringConstant(v string) Constant {
	return Constant{Str: v}
}

// NewUnitConstant builds the unit Constant.
func NewUnitConstant() Constant { return Constant{Type: Unit} }

// PlaceAccessor is one step of a Place's selector chain: either a named
// field/tuple-index access or an array index, which may itself be a
// compile-time constant (enabling static bounds checking) or a dynamic
// Value (deferred to a runtime index instruction).
type PlaceAccessor struct {
	// FieldName is set for ".field"/".0" accessors.
	FieldName string
	// HasFieldName distinguishes a legitimate empty field name (never
	// produced by the parser, but keeps the zero value unambiguous) from
	// "this accessor is an index, not a field".
	HasFieldName bool

	// ConstIndex is set when the index expression folded to a compile-time
	// constant (spec.md §4.4 "array[i] requires i be an integer constant
	// ... or an unsigned integer value").
	ConstIndex   int
	IsConstIndex bool
	ElementType  Type
}

// Place is an assignable l-value: a resolved base identifier plus a chain
// of field/index accessors, each reducing the statically known type by
// exactly one level (spec.md's Place invariant).
type Place struct {
	Name      string
	Address   int
	Mutable   bool
	Type      Type
	Accessors []PlaceAccessor
}

// Function describes a callable Element — either a user-defined function,
// addressed by its emitted entry point once known, or a standard-library
// builtin, addressed by its stable integer identifier.
type Function struct {
	Name       string
	Params     []Type
	ReturnType Type

	IsBuiltin bool
	BuiltinID int
}

// Element is the tagged union produced by evaluating an expression at
// compile time (spec.md §3). Exactly one of Type/Constant/Place/Function
// is meaningful, selected by Kind; ElementModule carries only ModuleName.
type Element struct {
	Kind ElementKind

	ValueType  Type // meaningful when Kind == ElementValue or ElementType
	Constant   Constant
	Place      Place
	Function   Function
	ModuleName string
}

// TypeOf reports the static type an Element contributes to an enclosing
// expression — the type a Value has, the type a folded Constant has, or
// the type a Place currently names. It panics for Module/Function/Type
// elements, which do not have a value type (a caller asking for one there
// is a compiler bug, not a user error).
func (e Element) TypeOf() Type {
	switch e.Kind {
	case ElementValue:
		return e.ValueType
	case ElementConstant:
		return e.Constant.Type
	case ElementPlace:
		return e.Place.Type
	default:
		panic("types: TypeOf called on an Element with no value type")
	}
}

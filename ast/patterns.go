package ast

import "shardc/token"

// PatternKind distinguishes the five pattern forms a match arm may use
// (spec.md §4.3.4): boolean literal, integer literal, identifier binding,
// qualified path (named constants/enum variants), or wildcard.
type PatternKind int

const (
	PatternBoolLiteral PatternKind = iota
	PatternIntLiteral
	PatternBinding
	PatternPath
	PatternWildcard
)

// Pattern is one matchable shape in a match arm's left-hand side. Like
// MatchArm, it is a plain data struct rather than a Visitor-dispatched node
// — the semantic analyzer switches on Kind directly when checking
// exhaustiveness, rather than visiting each pattern polymorphically.
type Pattern struct {
	Kind PatternKind

	// BoolValue is set when Kind == PatternBoolLiteral.
	BoolValue bool

	// IntValue is set when Kind == PatternIntLiteral. Stored as the raw
	// literal token so arbitrary-precision values parse the same way
	// Literal expressions do.
	IntValue token.Token

	// Name is set when Kind == PatternBinding, introducing a fresh
	// identifier bound to the scrutinee within the arm's body.
	Name token.Token

	// Path is set when Kind == PatternPath, e.g. "Color::Red" or a named
	// constant.
	Path Path

	Loc token.Token
}

// Location reports where this pattern begins in the source.
func (p Pattern) Location() Location { return Loc(p.Loc) }

// IsWildcard reports whether this pattern matches unconditionally, the way
// the semantic analyzer's exhaustiveness check treats "_" and a bare
// binding identically: both catch every remaining value.
func (p Pattern) IsWildcard() bool {
	return p.Kind == PatternWildcard || p.Kind == PatternBinding
}

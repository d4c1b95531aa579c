// interfaces.go contains all visitor interfaces that any code traversing expression and statement AST nodes must implement.
// It also contains the interfaces that all statement and expression AST nodes must implement which also follows the
// visitor design pattern

package ast

// ExpressionVisitor is the interface for operating on all Expression AST nodes.
// Any type that wants to perform an operation on expressions (e.g., the semantic
// analyzer, the bytecode emitter, the AST printer, the reference executor)
// must implement this interface.
//
// Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	VisitBinary(binary Binary) any
	VisitUnary(unary Unary) any
	VisitLiteral(literal Literal) any
	VisitGrouping(grouping Grouping) any
	VisitVariableExpression(variable Variable) any
	VisitAssignExpression(assign Assign) any
	VisitLogicalExpression(logical Logical) any
	VisitCallExpression(call Call) any
	VisitCallBuiltinExpression(call CallBuiltin) any
	VisitIndexExpression(index Index) any
	VisitFieldAccessExpression(access FieldAccess) any
	VisitCastExpression(cast Cast) any
	VisitRangeExpression(r Range) any
	VisitTupleExpression(tuple TupleExpr) any
	VisitArrayListExpression(arr ArrayList) any
	VisitArrayRepeatExpression(arr ArrayRepeat) any
	VisitBlockExpression(block Block) any
	VisitIfExpression(ifExpr IfExpr) any
	VisitMatchExpression(match Match) any
	VisitStructLiteralExpression(lit StructLiteral) any
	VisitPathExpression(path Path) any

	// TODO: Add further Visit methods as new expression grammar rules are introduced.
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
// This separation between expressions and statements mirrors the grammar structure.
type StmtVisitor interface {
	// VisitExpressionStmt is called when visiting an Expression statement.
	// Example: "foo + bar;"
	VisitExpressionStmt(exprStmt ExpressionStmt) any

	VisitLetStmt(letStmt LetStmt) any
	VisitConstStmt(constStmt ConstStmt) any
	VisitStaticStmt(staticStmt StaticStmt) any
	VisitTypeAliasStmt(typeAliasStmt TypeAliasStmt) any
	VisitStructDeclStmt(structStmt StructDeclStmt) any
	VisitEnumDeclStmt(enumStmt EnumDeclStmt) any
	VisitFnDeclStmt(fnStmt FnDeclStmt) any
	VisitModStmt(modStmt ModStmt) any
	VisitUseStmt(useStmt UseStmt) any
	VisitRequireStmt(requireStmt RequireStmt) any
	VisitImplStmt(implStmt ImplStmt) any
	VisitForStmt(forStmt ForStmt) any
	VisitWhileStmt(stmt WhileStmt) any
	VisitReturnStmt(returnStmt ReturnStmt) any

	// TODO: Add further visit methods as new statement grammar rules are introduced.
}

// Stmt is the base interface for all statement nodes in the AST.
// Like Expression, it follows the Visitor design pattern where each
// statement type implements Accept, calling back into the correct
// Visit method on a StmtVisitor.
type Stmt interface {
	// Accept dispatches this statement to the appropriate Visit method
	// of the provided StmtVisitor implementation.
	Accept(v StmtVisitor) any

	// Location reports where this statement begins in the source.
	Location() Location
}

// Expression is the core interface for all expression nodes in the Abstract Syntax Tree (AST).
// Any expression type (e.g., binary operation, literal, grouping, etc.) must implement this interface.
// The Accept method enables the Visitor design pattern so that operations can be performed on
// expressions without the expression types needing to know the details of those operations.
type Expression interface {
	// Accept dispatches the current expression node to the appropriate method on a Visitor.
	Accept(v ExpressionVisitor) any

	// Location reports where this expression begins in the source.
	Location() Location
}

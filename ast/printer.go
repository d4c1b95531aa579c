package ast

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// printer implements both Visitor interfaces and builds a JSON-friendly
// representation of the AST using maps and slices. Each Visit method
// returns a value that can be marshaled to JSON.
type printer struct{}

func (p printer) VisitExpressionStmt(exprStmt ExpressionStmt) any {
	return map[string]any{
		"type":       "ExpressionStmt",
		"expression": exprStmt.Expression.Accept(p),
	}
}

func (p printer) VisitLetStmt(letStmt LetStmt) any {
	return map[string]any{
		"type":        "LetStmt",
		"name":        letStmt.Name.Lexeme,
		"mutable":     letStmt.Mutable,
		"initializer": nilOrAcceptExpr(letStmt.Initializer, p),
	}
}

func (p printer) VisitConstStmt(constStmt ConstStmt) any {
	return map[string]any{
		"type":        "ConstStmt",
		"name":        constStmt.Name.Lexeme,
		"initializer": constStmt.Initializer.Accept(p),
	}
}

func (p printer) VisitStaticStmt(staticStmt StaticStmt) any {
	return map[string]any{
		"type":        "StaticStmt",
		"name":        staticStmt.Name.Lexeme,
		"mutable":     staticStmt.Mutable,
		"initializer": staticStmt.Initializer.Accept(p),
	}
}

func (p printer) VisitTypeAliasStmt(typeAliasStmt TypeAliasStmt) any {
	return map[string]any{
		"type":    "TypeAliasStmt",
		"name":    typeAliasStmt.Name.Lexeme,
		"aliased": typeAliasStmt.Aliased.String(),
	}
}

func (p printer) VisitStructDeclStmt(structStmt StructDeclStmt) any {
	fields := make([]any, 0, len(structStmt.Fields))
	for _, f := range structStmt.Fields {
		fields = append(fields, map[string]any{"name": f.Name.Lexeme, "type": f.Type.String()})
	}
	return map[string]any{
		"type":   "StructDeclStmt",
		"name":   structStmt.Name.Lexeme,
		"fields": fields,
	}
}

func (p printer) VisitEnumDeclStmt(enumStmt EnumDeclStmt) any {
	variants := make([]any, 0, len(enumStmt.Variants))
	for _, v := range enumStmt.Variants {
		variants = append(variants, map[string]any{
			"name":  v.Name.Lexeme,
			"value": nilOrAcceptExpr(v.Value, p),
		})
	}
	return map[string]any{
		"type":     "EnumDeclStmt",
		"name":     enumStmt.Name.Lexeme,
		"variants": variants,
	}
}

func (p printer) VisitFnDeclStmt(fnStmt FnDeclStmt) any {
	params := make([]any, 0, len(fnStmt.Params))
	for _, param := range fnStmt.Params {
		params = append(params, map[string]any{"name": param.Name.Lexeme, "type": param.Type.String()})
	}
	returnType := "()"
	if fnStmt.ReturnType != nil {
		returnType = fnStmt.ReturnType.String()
	}
	return map[string]any{
		"type":       "FnDeclStmt",
		"name":       fnStmt.Name.Lexeme,
		"params":     params,
		"returnType": returnType,
		"body":       fnStmt.Body.Accept(p),
	}
}

func (p printer) VisitModStmt(modStmt ModStmt) any {
	items := make([]any, 0, len(modStmt.Items))
	for _, item := range modStmt.Items {
		items = append(items, item.Accept(p))
	}
	return map[string]any{
		"type":  "ModStmt",
		"name":  modStmt.Name.Lexeme,
		"items": items,
	}
}

func (p printer) VisitUseStmt(useStmt UseStmt) any {
	return map[string]any{
		"type": "UseStmt",
		"path": useStmt.Path.String(),
	}
}

func (p printer) VisitRequireStmt(requireStmt RequireStmt) any {
	return map[string]any{
		"type":      "RequireStmt",
		"condition": requireStmt.Condition.Accept(p),
	}
}

func (p printer) VisitImplStmt(implStmt ImplStmt) any {
	methods := make([]any, 0, len(implStmt.Methods))
	for _, m := range implStmt.Methods {
		methods = append(methods, m.Accept(p))
	}
	return map[string]any{
		"type":     "ImplStmt",
		"typeName": implStmt.TypeName.Lexeme,
		"methods":  methods,
	}
}

func (p printer) VisitForStmt(forStmt ForStmt) any {
	return map[string]any{
		"type":  "ForStmt",
		"name":  forStmt.Name.Lexeme,
		"range": forStmt.Range.Accept(p),
		"body":  forStmt.Body.Accept(p),
	}
}

func (p printer) VisitWhileStmt(stmt WhileStmt) any {
	return map[string]any{
		"type":      "WhileStmt",
		"condition": stmt.Condition.Accept(p),
		"body":      stmt.Body.Accept(p),
	}
}

func (p printer) VisitReturnStmt(returnStmt ReturnStmt) any {
	return map[string]any{
		"type":  "ReturnStmt",
		"value": nilOrAcceptExpr(returnStmt.Value, p),
	}
}

func (p printer) VisitLogicalExpression(expr Logical) any {
	return map[string]any{
		"type":     "Logical",
		"operator": expr.Operator.Lexeme,
		"left":     expr.Left.Accept(p),
		"right":    expr.Right.Accept(p),
	}
}

func (p printer) VisitAssignExpression(assign Assign) any {
	return map[string]any{
		"type":   "Assign",
		"target": assign.Target.Accept(p),
		"value":  assign.Value.Accept(p),
	}
}

func (p printer) VisitVariableExpression(variable Variable) any {
	return map[string]any{
		"type": "Variable",
		"name": variable.Name.Lexeme,
	}
}

func (p printer) VisitBinary(b Binary) any {
	return map[string]any{
		"type":     "Binary",
		"operator": b.Operator.Lexeme,
		"left":     b.Left.Accept(p),
		"right":    b.Right.Accept(p),
	}
}

func (p printer) VisitUnary(u Unary) any {
	return map[string]any{
		"type":     "Unary",
		"operator": u.Operator.Lexeme,
		"right":    u.Right.Accept(p),
	}
}

func (p printer) VisitLiteral(l Literal) any {
	// literals are terminal values and can be used directly in JSON
	return l.Value
}

func (p printer) VisitGrouping(g Grouping) any {
	return map[string]any{
		"type":       "Grouping",
		"expression": g.Expression.Accept(p),
	}
}

func (p printer) VisitCallExpression(call Call) any {
	args := make([]any, 0, len(call.Args))
	for _, a := range call.Args {
		args = append(args, a.Accept(p))
	}
	return map[string]any{
		"type":   "Call",
		"callee": call.Callee.Accept(p),
		"args":   args,
	}
}

func (p printer) VisitCallBuiltinExpression(call CallBuiltin) any {
	args := make([]any, 0, len(call.Args))
	for _, a := range call.Args {
		args = append(args, a.Accept(p))
	}
	return map[string]any{
		"type": "CallBuiltin",
		"path": call.Path.String(),
		"args": args,
	}
}

func (p printer) VisitIndexExpression(idx Index) any {
	return map[string]any{
		"type":  "Index",
		"array": idx.Array.Accept(p),
		"index": idx.Index.Accept(p),
	}
}

func (p printer) VisitFieldAccessExpression(access FieldAccess) any {
	return map[string]any{
		"type":   "FieldAccess",
		"target": access.Target.Accept(p),
		"field":  access.Field.Lexeme,
	}
}

func (p printer) VisitCastExpression(cast Cast) any {
	return map[string]any{
		"type":    "Cast",
		"operand": cast.Operand.Accept(p),
		"target":  cast.Target.String(),
	}
}

func (p printer) VisitRangeExpression(r Range) any {
	return map[string]any{
		"type":      "Range",
		"low":       r.Low.Accept(p),
		"high":      r.High.Accept(p),
		"inclusive": r.Inclusive,
	}
}

func (p printer) VisitTupleExpression(tuple TupleExpr) any {
	elems := make([]any, 0, len(tuple.Elements))
	for _, e := range tuple.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{
		"type":     "Tuple",
		"elements": elems,
	}
}

func (p printer) VisitArrayListExpression(arr ArrayList) any {
	elems := make([]any, 0, len(arr.Elements))
	for _, e := range arr.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{
		"type":     "ArrayList",
		"elements": elems,
	}
}

func (p printer) VisitArrayRepeatExpression(arr ArrayRepeat) any {
	return map[string]any{
		"type":    "ArrayRepeat",
		"element": arr.Element.Accept(p),
		"size":    arr.Size.Accept(p),
	}
}

func (p printer) VisitBlockExpression(block Block) any {
	stmts := make([]any, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{
		"type":       "Block",
		"statements": stmts,
		"result":     nilOrAcceptExpr(block.Result, p),
	}
}

func (p printer) VisitIfExpression(ifExpr IfExpr) any {
	return map[string]any{
		"type":      "If",
		"condition": ifExpr.Condition.Accept(p),
		"then":      ifExpr.Then.Accept(p),
		"else":      nilOrAcceptExpr(ifExpr.Else, p),
	}
}

func (p printer) VisitMatchExpression(match Match) any {
	arms := make([]any, 0, len(match.Arms))
	for _, arm := range match.Arms {
		arms = append(arms, map[string]any{
			"pattern": printPattern(arm.Pattern),
			"body":    arm.Body.Accept(p),
		})
	}
	return map[string]any{
		"type":      "Match",
		"scrutinee": match.Scrutinee.Accept(p),
		"arms":      arms,
	}
}

func (p printer) VisitStructLiteralExpression(lit StructLiteral) any {
	fields := make([]any, 0, len(lit.Fields))
	for _, f := range lit.Fields {
		fields = append(fields, map[string]any{"name": f.Name.Lexeme, "value": f.Value.Accept(p)})
	}
	return map[string]any{
		"type":   "StructLiteral",
		"name":   lit.Name.Lexeme,
		"fields": fields,
	}
}

func (p printer) VisitPathExpression(path Path) any {
	return map[string]any{
		"type": "Path",
		"path": path.String(),
	}
}

func printPattern(pat Pattern) map[string]any {
	switch pat.Kind {
	case PatternBoolLiteral:
		return map[string]any{"kind": "bool", "value": pat.BoolValue}
	case PatternIntLiteral:
		return map[string]any{"kind": "int", "value": pat.IntValue.Literal}
	case PatternBinding:
		return map[string]any{"kind": "binding", "name": pat.Name.Lexeme}
	case PatternPath:
		return map[string]any{"kind": "path", "path": pat.Path.String()}
	default:
		return map[string]any{"kind": "wildcard"}
	}
}

// nilOrAcceptExpr returns nil if expr is nil, otherwise it continues
// processing the expression and returns the result.
func nilOrAcceptExpr(expr Expression, p ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON converts a slice of statements into a prettified JSON string.
func PrintASTJSON(statements []Stmt) (string, error) {
	pr := printer{}
	out := make([]any, 0, len(statements))
	for _, s := range statements {
		out = append(out, s.Accept(pr))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(statements []Stmt, path string) error {
	s, err := PrintASTJSON(statements)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer fDescriptor.Close()

	_, err = fDescriptor.Write([]byte(s))
	if err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}

package bytecode

import (
	"math/big"
	"strings"

	"shardc/ast"
	"shardc/scope"
	"shardc/types"
)

// declareNames walks every top-level item (recursing into "mod" blocks with
// an accumulating "::"-joined prefix) and registers a placeholder for each
// declared name before anything is type-checked, so mutually forward
// referencing items — a struct field naming a type declared later, a
// function calling one declared later — resolve correctly.
func (e *Emitter) declareNames(prefix string, items []ast.Stmt) error {
	for _, item := range items {
		switch v := item.(type) {
		case ast.StructDeclStmt:
			qname := prefix + v.Name.Lexeme
			if _, exists := e.qualified[qname]; exists {
				return locErr(ast.Loc(v.Name), "duplicate declaration of %q", qname)
			}
			t := types.Type{Kind: types.KindStructure, Identifier: qname}
			it := &scope.Item{Kind: scope.ItemType, Name: v.Name.Lexeme, Type: t}
			e.qualified[qname] = it
			e.structDecls[qname] = v
			if prefix == "" {
				if err := e.global.Declare(it); err != nil {
					return locErr(ast.Loc(v.Name), "%s", err)
				}
			}

		case ast.EnumDeclStmt:
			qname := prefix + v.Name.Lexeme
			if _, exists := e.qualified[qname]; exists {
				return locErr(ast.Loc(v.Name), "duplicate declaration of %q", qname)
			}
			it := &scope.Item{Kind: scope.ItemType, Name: v.Name.Lexeme, Type: types.Uint(8)}
			e.qualified[qname] = it
			e.enumDecls[qname] = v
			if prefix == "" {
				if err := e.global.Declare(it); err != nil {
					return locErr(ast.Loc(v.Name), "%s", err)
				}
			}

		case ast.TypeAliasStmt:
			qname := prefix + v.Name.Lexeme
			if _, exists := e.qualified[qname]; exists {
				return locErr(ast.Loc(v.Name), "duplicate declaration of %q", qname)
			}
			it := &scope.Item{Kind: scope.ItemType, Name: v.Name.Lexeme, Type: types.Alias(qname)}
			e.qualified[qname] = it
			e.aliasDecls[qname] = v
			if prefix == "" {
				if err := e.global.Declare(it); err != nil {
					return locErr(ast.Loc(v.Name), "%s", err)
				}
			}

		case ast.ConstStmt:
			qname := prefix + v.Name.Lexeme
			if _, exists := e.qualified[qname]; exists {
				return locErr(ast.Loc(v.Name), "duplicate declaration of %q", qname)
			}
			it := &scope.Item{Kind: scope.ItemConstant, Name: v.Name.Lexeme}
			e.qualified[qname] = it
			e.constDecls = append(e.constDecls, qualifiedConstDecl{qname, v})
			if prefix == "" {
				if err := e.global.Declare(it); err != nil {
					return locErr(ast.Loc(v.Name), "%s", err)
				}
			}

		case ast.StaticStmt:
			qname := prefix + v.Name.Lexeme
			if _, exists := e.qualified[qname]; exists {
				return locErr(ast.Loc(v.Name), "duplicate declaration of %q", qname)
			}
			it := &scope.Item{Kind: scope.ItemStatic, Name: v.Name.Lexeme, Mutable: v.Mutable}
			e.qualified[qname] = it
			e.staticDecls = append(e.staticDecls, qualifiedStaticDecl{qname, v})
			if prefix == "" {
				if err := e.global.Declare(it); err != nil {
					return locErr(ast.Loc(v.Name), "%s", err)
				}
			}

		case ast.FnDeclStmt:
			qname := prefix + v.Name.Lexeme
			if _, exists := e.funcs[qname]; exists {
				return locErr(ast.Loc(v.Name), "duplicate declaration of function %q", qname)
			}
			e.funcs[qname] = &funcInfo{decl: v}
			e.funcOrder = append(e.funcOrder, qname)
			it := &scope.Item{Kind: scope.ItemFunction, Name: v.Name.Lexeme}
			e.qualified[qname] = it
			if prefix == "" {
				if err := e.global.Declare(it); err != nil {
					return locErr(ast.Loc(v.Name), "%s", err)
				}
			}

		case ast.ModStmt:
			if err := e.declareNames(prefix+v.Name.Lexeme+"::", v.Items); err != nil {
				return err
			}

		case ast.UseStmt:
			short := v.Path.Segments[len(v.Path.Segments)-1].Lexeme
			if v.Alias.Lexeme != "" {
				short = v.Alias.Lexeme
			}
			e.imports[short] = v.Path.String()

		case ast.ImplStmt:
			typeName := prefix + v.TypeName.Lexeme
			for _, method := range v.Methods {
				qname := typeName + "::" + method.Name.Lexeme
				if _, exists := e.funcs[qname]; exists {
					return locErr(ast.Loc(method.Name), "duplicate declaration of method %q", qname)
				}
				st := types.Alias(typeName)
				e.funcs[qname] = &funcInfo{decl: method, selfType: &st}
				e.funcOrder = append(e.funcOrder, qname)
				e.qualified[qname] = &scope.Item{Kind: scope.ItemFunction, Name: qname}
			}

		default:
			invariant("declareNames: unhandled top-level item %T", item)
		}
	}
	return nil
}

// resolveAliases fills in Target for every TypeAliasStmt registered during
// declareNames, detecting cycles (a recursive type alias is a semantic
// error, not a stack overflow).
func (e *Emitter) resolveAliases() error {
	resolving := make(map[string]bool)
	var resolve func(qname string) error
	resolve = func(qname string) error {
		it := e.qualified[qname]
		if it.Type.Kind != types.KindAlias || it.Type.Target != nil {
			return nil
		}
		if resolving[qname] {
			decl := e.aliasDecls[qname]
			return locErr(ast.Loc(decl.Name), "recursive type alias %q", qname)
		}
		resolving[qname] = true
		decl := e.aliasDecls[qname]
		target, err := e.resolveTypeAnnotation(decl.Aliased, prefixOf(qname))
		if err != nil {
			return err
		}
		it.Type.Target = &target
		resolving[qname] = false
		return nil
	}
	for qname := range e.aliasDecls {
		if err := resolve(qname); err != nil {
			return err
		}
	}
	return nil
}

// resolveStructFields fills in Fields for every struct registered during
// declareNames, now that every named type (including forward references)
// has a placeholder to resolve against.
func (e *Emitter) resolveStructFields() error {
	for qname, decl := range e.structDecls {
		it := e.qualified[qname]
		var fields []types.StructField
		for _, f := range decl.Fields {
			ft, err := e.resolveTypeAnnotation(f.Type, prefixOf(qname))
			if err != nil {
				return err
			}
			fields = append(fields, types.StructField{Name: f.Name.Lexeme, Type: ft})
		}
		it.Type.Fields = fields
	}
	return nil
}

// resolveEnums folds each enum variant's discriminant (auto-incrementing
// from 0 when no explicit value is given) and registers it as a qualified
// constant, e.g. "Color::Red" (a ast.PatternPath pattern target). Enum
// values are represented as plain u8 constants.
func (e *Emitter) resolveEnums() error {
	for qname, decl := range e.enumDecls {
		next := big.NewInt(0)
		for _, variant := range decl.Variants {
			v := new(big.Int).Set(next)
			if variant.Value != nil {
				elem, err := e.evalConstExpr(variant.Value, nil)
				if err != nil {
					return err
				}
				if !elem.Type.IsInteger() {
					return locErr(ast.Loc(variant.Name), "enum discriminant must be an integer constant")
				}
				v = new(big.Int).Set(elem.Int)
			}
			next = new(big.Int).Add(v, big.NewInt(1))
			full := qname + "::" + variant.Name.Lexeme
			c := types.NewIntConstant(v, false, 8)
			e.qualified[full] = &scope.Item{
				Kind:          scope.ItemConstant,
				Name:          variant.Name.Lexeme,
				Type:          types.Uint(8),
				ConstantValue: &c,
			}
		}
	}
	return nil
}

// resolveSignatures resolves every declared function/method's parameter and
// return types, now that struct/enum/alias types are known. A method's
// "self" parameter resolves to its owning type via selfType rather than an
// annotation (the parser never gives "self" one).
func (e *Emitter) resolveSignatures() error {
	for _, qname := range e.funcOrder {
		fi := e.funcs[qname]
		prefix := prefixOf(qname)
		var params []types.Type
		for _, p := range fi.decl.Params {
			if p.Type.Kind == ast.TypeKindSelf {
				params = append(params, *fi.selfType)
				continue
			}
			t, err := e.resolveTypeAnnotation(p.Type, prefix)
			if err != nil {
				return err
			}
			params = append(params, t)
		}
		fi.params = params
		if fi.decl.ReturnType != nil {
			t, err := e.resolveTypeAnnotation(*fi.decl.ReturnType, prefix)
			if err != nil {
				return err
			}
			fi.returnType = t
		} else {
			fi.returnType = types.Unit
		}
	}
	return nil
}

// evaluateGlobals folds every module-level const/static initializer in
// declaration order (later constants may reference earlier ones).
func (e *Emitter) evaluateGlobals() error {
	for _, qc := range e.constDecls {
		t, err := e.resolveTypeAnnotation(qc.decl.Type, prefixOf(qc.name))
		if err != nil {
			return err
		}
		val, err := e.evalConstExpr(qc.decl.Initializer, &t)
		if err != nil {
			return err
		}
		if !types.Equal(val.Type, t) {
			return locErr(ast.Loc(qc.decl.Name), "const %s declared as %s but initializer has type %s", qc.name, t, val.Type)
		}
		it := e.qualified[qc.name]
		it.Type = t
		it.ConstantValue = &val
	}
	for _, qs := range e.staticDecls {
		t, err := e.resolveTypeAnnotation(qs.decl.Type, prefixOf(qs.name))
		if err != nil {
			return err
		}
		val, err := e.evalConstExpr(qs.decl.Initializer, &t)
		if err != nil {
			return err
		}
		it := e.qualified[qs.name]
		it.Type = t
		it.Address = e.global.Allocate(t.Footprint())
		it.ConstantValue = &val
		if err := e.pushConstant(val); err != nil {
			return err
		}
		e.emit(OpStoreGlobal, it.Address, t.Footprint())
	}
	return nil
}

// prefixOf returns the "::"-joined module prefix of a qualified name (the
// part before its last segment), used so a type annotation encountered
// while resolving a declaration looks up sibling names in the same module
// first.
func prefixOf(qname string) string {
	idx := strings.LastIndex(qname, "::")
	if idx < 0 {
		return ""
	}
	return qname[:idx+2]
}

// resolveTypeAnnotation converts a parsed TypeAnnotation into a concrete
// types.Type, looking up named references first in the given module
// prefix and falling back to the unqualified/imported name.
func (e *Emitter) resolveTypeAnnotation(ann ast.TypeAnnotation, prefix string) (types.Type, error) {
	switch ann.Kind {
	case ast.TypeKindPrimitiveInt:
		if ann.BitLength < 1 || ann.BitLength > 248 {
			return types.Type{}, locErr(ann.Location(), "integer bit width must be in [1,248], got %d", ann.BitLength)
		}
		if ann.Signed {
			return types.Int(ann.BitLength), nil
		}
		return types.Uint(ann.BitLength), nil
	case ast.TypeKindField:
		return types.Field, nil
	case ast.TypeKindBool:
		return types.Bool, nil
	case ast.TypeKindUnit:
		return types.Unit, nil
	case ast.TypeKindArray:
		elem, err := e.resolveTypeAnnotation(*ann.Element, prefix)
		if err != nil {
			return types.Type{}, err
		}
		sizeConst, err := e.evalConstExpr(ann.Size, nil)
		if err != nil {
			return types.Type{}, err
		}
		if !sizeConst.Type.IsInteger() {
			return types.Type{}, locErr(ann.Location(), "array size must be an integer constant")
		}
		return types.Array(elem, int(sizeConst.Int.Int64())), nil
	case ast.TypeKindTuple:
		elems := make([]types.Type, len(ann.Elements))
		for i, a := range ann.Elements {
			t, err := e.resolveTypeAnnotation(a, prefix)
			if err != nil {
				return types.Type{}, err
			}
			elems[i] = t
		}
		return types.Tuple(elems...), nil
	case ast.TypeKindSelf:
		if e.curSelf == nil {
			return types.Type{}, locErr(ann.Location(), "'Self' used outside an impl block")
		}
		return *e.curSelf, nil
	case ast.TypeKindNamed:
		name := ann.Name.String()
		if full, ok := e.imports[name]; ok {
			if it, ok := e.qualified[full]; ok && it.Kind == scope.ItemType {
				return it.Type, nil
			}
		}
		if prefix != "" {
			if it, ok := e.qualified[prefix+name]; ok && it.Kind == scope.ItemType {
				return it.Type, nil
			}
		}
		if it, ok := e.qualified[name]; ok && it.Kind == scope.ItemType {
			return it.Type, nil
		}
		return types.Type{}, locErr(ann.Location(), "undefined type %q", name)
	default:
		invariant("resolveTypeAnnotation: unhandled kind %d", ann.Kind)
		return types.Type{}, nil
	}
}

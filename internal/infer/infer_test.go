package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/infer"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// builtinType builds a resolved NamedTypeExpr-free declared type by going
// straight to the Context, mirroring what the resolver would have produced.
func builtinType(ctx *typectx.Context, kind typectx.BuiltinKind) typectx.TypeRef {
	return ctx.GetBuiltin(kind, lexer.Span{})
}

// fn builds a zero-arg function declared to return retType, whose body is
// body, as if the resolver had already run (Resolved fields pre-populated).
func fn(name string, retType typectx.TypeRef, body *ast.Block) *ast.FnDecl {
	return &ast.FnDecl{
		Name:     ast.NewIdent(name, lexer.Span{}),
		Body:     body,
		Resolved: retType,
	}
}

func local(ctx *typectx.Context, name string, declared ast.TypeExpr, declaredType typectx.TypeRef, init ast.Expr) *ast.Local {
	l := &ast.Local{
		Name:     ast.NewIdent(name, lexer.Span{}),
		Declared: declared,
		Init:     init,
	}
	if declared != nil {
		l.Resolved = declaredType
	}
	return l
}

func declRefTo(decl any, name string, fresh typectx.TypeRef) *ast.DeclRef {
	return &ast.DeclRef{
		ExprBase: ast.NewExprBase(lexer.Span{}, fresh),
		Path:     []*ast.Ident{ast.NewIdent(name, lexer.Span{})},
		Decl:     decl,
	}
}

// paramRefTo builds a DeclRef resolving to a synthetic Param bound to typ, as
// if the resolver had bound "name" to a function parameter of that type.
func paramRefTo(ctx *typectx.Context, name string, typ typectx.TypeRef) *ast.DeclRef {
	p := &ast.Param{Name: ast.NewIdent(name, lexer.Span{}), Resolved: typ}
	return declRefTo(p, name, ctx.GetVar(typectx.DomainAny, lexer.Span{}))
}

func intLit(ctx *typectx.Context, raw string) *ast.IntLiteral {
	return &ast.IntLiteral{ExprBase: ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainInt, lexer.Span{})), Raw: raw}
}

func floatLit(ctx *typectx.Context, raw string) *ast.FloatLiteral {
	return &ast.FloatLiteral{ExprBase: ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainFloat, lexer.Span{})), Raw: raw}
}

func boolLit(ctx *typectx.Context, v bool) *ast.BoolLiteral {
	return &ast.BoolLiteral{ExprBase: ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainAny, lexer.Span{})), Value: v}
}

func exprStmt(e ast.Expr, tail bool) *ast.ExprStmt {
	return &ast.ExprStmt{Value: e, Tail: tail}
}

func TestInfer_DefaultsBareIntLocalToI32(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	x := local(ctx, "x", nil, typectx.TypeRef{}, intLit(ctx, "42"))
	xRef := declRefTo(x, "x", ctx.GetVar(typectx.DomainAny, lexer.Span{}))

	body := ast.NewBlock([]ast.Stmt{
		&ast.DeclStmt{Decl: x},
		&ast.ReturnStmt{Value: xRef},
	}, lexer.Span{})

	f := fn("main", builtinType(ctx, typectx.I32), body)
	prog := &ast.Program{Modules: []*ast.Module{{Items: []ast.Decl{f}}}}

	infer.New(sink, ctx).Infer(prog)

	require.Equal(t, 0, sink.ErrorCount())
	assert.Equal(t, typectx.I32, x.Resolved.Handle.(*typectx.Builtin).BKind)
	assert.Equal(t, typectx.I32, xRef.Type.Handle.(*typectx.Builtin).BKind)
}

func TestInfer_DefaultsBareFloatLocalToF64(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	y := local(ctx, "y", nil, typectx.TypeRef{}, floatLit(ctx, "3.14"))
	body := ast.NewBlock([]ast.Stmt{&ast.DeclStmt{Decl: y}}, lexer.Span{})
	f := fn("main", builtinType(ctx, typectx.Null), body)
	prog := &ast.Program{Modules: []*ast.Module{{Items: []ast.Decl{f}}}}

	infer.New(sink, ctx).Infer(prog)

	require.Equal(t, 0, sink.ErrorCount())
	assert.Equal(t, typectx.F64, y.Resolved.Handle.(*typectx.Builtin).BKind)
}

func TestInfer_MismatchedDeclaredTypeReportsDomainConstraint(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	boolType := builtinType(ctx, typectx.Bool)
	z := local(ctx, "z", &ast.NamedTypeExpr{}, boolType, intLit(ctx, "42"))
	body := ast.NewBlock([]ast.Stmt{&ast.DeclStmt{Decl: z}}, lexer.Span{})
	f := fn("main", builtinType(ctx, typectx.Null), body)
	prog := &ast.Program{Modules: []*ast.Module{{Items: []ast.Decl{f}}}}

	infer.New(sink, ctx).Infer(prog)

	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeDomainConstraint, sink.Diagnostics[0].Code)
}

func TestInfer_EqualityOperatorsUnifyOperandsAndYieldNull(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	cmp := &ast.BinaryOp{
		ExprBase: ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainAny, lexer.Span{})),
		Op:       ast.OpEq,
		Lhs:      intLit(ctx, "1"),
		Rhs:      intLit(ctx, "2"),
	}
	body := ast.NewBlock([]ast.Stmt{exprStmt(cmp, true)}, lexer.Span{})
	f := fn("main", builtinType(ctx, typectx.Null), body)
	prog := &ast.Program{Modules: []*ast.Module{{Items: []ast.Decl{f}}}}

	infer.New(sink, ctx).Infer(prog)

	require.Equal(t, 0, sink.ErrorCount())
	assert.Equal(t, typectx.Null, cmp.Type.Handle.(*typectx.Builtin).BKind)
}

func TestInfer_GenericStructFieldAccessSubstitutesTypeArgument(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	tParam := &ast.GenericParam{Name: ast.NewIdent("T", lexer.Span{})}
	tParam.Slot = ctx.GetGeneric("T", tParam, lexer.Span{})

	valueField := &ast.Field{Name: ast.NewIdent("value", lexer.Span{}), Resolved: tParam.Slot}
	box := ast.NewStructDecl(ast.NewIdent("Box", lexer.Span{}), lexer.Span{}, []*ast.GenericParam{tParam}, []*ast.Field{valueField}, nil)
	box.Resolved = ctx.GetAdt("Box", box, lexer.Span{})

	init := &ast.AdtInit{
		ExprBase:       ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainAny, lexer.Span{})),
		ResolvedStruct: box,
		Members: []*ast.MemberInit{
			{Field: ast.NewIdent("value", lexer.Span{}), Init: intLit(ctx, "7")},
		},
	}
	access := &ast.FieldAccess{
		ExprBase: ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainAny, lexer.Span{})),
		Base:     init,
		Field:    ast.NewIdent("value", lexer.Span{}),
	}

	body := ast.NewBlock([]ast.Stmt{exprStmt(access, true)}, lexer.Span{})
	f := fn("main", builtinType(ctx, typectx.Null), body)
	prog := &ast.Program{
		Modules: []*ast.Module{{Items: []ast.Decl{box, f}}},
	}

	infer.New(sink, ctx).Infer(prog)

	require.Equal(t, 0, sink.ErrorCount())
	require.NotNil(t, access.Resolved)
	assert.Equal(t, typectx.I32, access.Type.Handle.(*typectx.Builtin).BKind)
}

func TestInfer_MatchOverEnumReportsNonExhaustive(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	red := &ast.Variant{Name: ast.NewIdent("Red", lexer.Span{})}
	green := &ast.Variant{Name: ast.NewIdent("Green", lexer.Span{})}
	colorEnum := ast.NewEnumDecl(ast.NewIdent("Color", lexer.Span{}), lexer.Span{}, nil, []*ast.Variant{red, green}, nil)
	colorEnum.Resolved = ctx.GetAdt("Color", colorEnum, lexer.Span{})

	scrutinee := paramRefTo(ctx, "c", colorEnum.Resolved)

	m := &ast.Match{
		ExprBase:  ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainAny, lexer.Span{})),
		Scrutinee: scrutinee,
		Arms: []*ast.MatchArm{
			{Patterns: []ast.Pattern{&ast.VariantPattern{VariantName: ast.NewIdent("Red", lexer.Span{})}}, Result: boolLit(ctx, true)},
		},
	}

	body := ast.NewBlock([]ast.Stmt{exprStmt(m, true)}, lexer.Span{})
	f := fn("main", builtinType(ctx, typectx.Null), body)
	prog := &ast.Program{Modules: []*ast.Module{{Items: []ast.Decl{colorEnum, f}}}}

	infer.New(sink, ctx).Infer(prog)

	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeNonExhaustiveMatch, sink.Diagnostics[0].Code)
}

func TestInfer_MatchOverEnumExhaustiveReportsNoError(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()

	red := &ast.Variant{Name: ast.NewIdent("Red", lexer.Span{})}
	green := &ast.Variant{Name: ast.NewIdent("Green", lexer.Span{})}
	colorEnum := ast.NewEnumDecl(ast.NewIdent("Color", lexer.Span{}), lexer.Span{}, nil, []*ast.Variant{red, green}, nil)
	colorEnum.Resolved = ctx.GetAdt("Color", colorEnum, lexer.Span{})

	scrutinee := paramRefTo(ctx, "c", colorEnum.Resolved)

	m := &ast.Match{
		ExprBase:  ast.NewExprBase(lexer.Span{}, ctx.GetVar(typectx.DomainAny, lexer.Span{})),
		Scrutinee: scrutinee,
		Arms: []*ast.MatchArm{
			{Patterns: []ast.Pattern{&ast.VariantPattern{VariantName: ast.NewIdent("Red", lexer.Span{})}}, Result: boolLit(ctx, true)},
			{Patterns: []ast.Pattern{&ast.VariantPattern{VariantName: ast.NewIdent("Green", lexer.Span{})}}, Result: boolLit(ctx, false)},
		},
	}

	body := ast.NewBlock([]ast.Stmt{exprStmt(m, true)}, lexer.Span{})
	f := fn("main", builtinType(ctx, typectx.Null), body)
	prog := &ast.Program{Modules: []*ast.Module{{Items: []ast.Decl{colorEnum, f}}}}

	infer.New(sink, ctx).Infer(prog)

	assert.Equal(t, 0, sink.ErrorCount())
}

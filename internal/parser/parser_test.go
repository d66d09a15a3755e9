package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/parser"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

func parseModule(t *testing.T, src string) (*ast.Module, *diag.CollectingSink) {
	t.Helper()
	sink := diag.NewCollectingSink()
	p := parser.New(src, "test.mal", typectx.New(), sink)
	return p.ParseModule("test"), sink
}

func TestParser_FnDeclWithParamsAndReturnType(t *testing.T) {
	mod, sink := parseModule(t, `
		fun add(a: i32, b: i32) -> i32 {
			return a + b;
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())
	require.Len(t, mod.Items, 1)

	fn, ok := mod.Items[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name.Name)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Stmts, 1)
}

func TestParser_StructDeclWithGenericParam(t *testing.T) {
	mod, sink := parseModule(t, `
		struct Box<T> {
			value: T,
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())
	require.Len(t, mod.Items, 1)

	s, ok := mod.Items[0].(*ast.StructDecl)
	require.True(t, ok)
	assert.Equal(t, "Box", s.Name.Name)
	require.Len(t, s.GenericParams, 1)
	assert.Equal(t, "T", s.GenericParams[0].Name.Name)
	require.Len(t, s.Fields, 1)
	assert.Equal(t, "value", s.Fields[0].Name.Name)
}

func TestParser_EnumDeclWithVariants(t *testing.T) {
	mod, sink := parseModule(t, `
		enum Color {
			Red,
			Green,
			Blue,
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	e, ok := mod.Items[0].(*ast.EnumDecl)
	require.True(t, ok)
	require.Len(t, e.Variants, 3)
	assert.Equal(t, "Red", e.Variants[0].Name.Name)
}

func TestParser_BinaryPrecedence(t *testing.T) {
	mod, sink := parseModule(t, `
		fun f() {
			1 + 2 * 3;
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := mod.Items[0].(*ast.FnDecl)
	exprStmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	bin, ok := exprStmt.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)

	rhs, ok := bin.Rhs.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParser_IfElseIfChain(t *testing.T) {
	mod, sink := parseModule(t, `
		fun f(x: i32) {
			if x == 1 {
				return;
			} else if x == 2 {
				return;
			} else {
				return;
			}
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := mod.Items[0].(*ast.FnDecl)
	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
	require.Len(t, ifStmt.Else.Stmts, 1)
	_, ok = ifStmt.Else.Stmts[0].(*ast.IfStmt)
	assert.True(t, ok)
}

func TestParser_MatchWithAlternatingPatterns(t *testing.T) {
	mod, sink := parseModule(t, `
		fun f(c: Color) {
			match c {
				Red || Green => true,
				Blue => false,
			};
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := mod.Items[0].(*ast.FnDecl)
	exprStmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	m, ok := exprStmt.Value.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Arms, 2)
	assert.Len(t, m.Arms[0].Patterns, 2)
}

func TestParser_AnonymousAdtInitUsesDotBrace(t *testing.T) {
	mod, sink := parseModule(t, `
		fun f() {
			var b: Box = .{ value: 1 };
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := mod.Items[0].(*ast.FnDecl)
	decl := fn.Body.Stmts[0].(*ast.DeclStmt)
	local := decl.Decl.(*ast.Local)
	init, ok := local.Init.(*ast.AdtInit)
	require.True(t, ok)
	require.Len(t, init.Members, 1)
	assert.Equal(t, "value", init.Members[0].Field.Name)
}

func TestParser_NamedAdtInit(t *testing.T) {
	mod, sink := parseModule(t, `
		fun f() {
			Box { value: 1 };
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := mod.Items[0].(*ast.FnDecl)
	exprStmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	init, ok := exprStmt.Value.(*ast.AdtInit)
	require.True(t, ok)
	require.Len(t, init.TypeName, 1)
	assert.Equal(t, "Box", init.TypeName[0].Name)
}

func TestParser_RangeExpressionInFor(t *testing.T) {
	mod, sink := parseModule(t, `
		fun f() {
			for i in 0..10 {
				break;
			}
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := mod.Items[0].(*ast.FnDecl)
	forStmt, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	rng, ok := forStmt.Range.(*ast.RangeLiteral)
	require.True(t, ok)
	assert.False(t, rng.Inclusive)
}

func TestParser_MalformedDeclRecoversToNextItem(t *testing.T) {
	mod, sink := parseModule(t, `
		1;
		fun ok() {
			return;
		}
	`)
	assert.Greater(t, sink.ErrorCount(), 0)
	found := false
	for _, item := range mod.Items {
		if fn, ok := item.(*ast.FnDecl); ok && fn.Name.Name == "ok" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and still parse the following fn decl")
}

package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/parser"
	"github.com/malphas-lang/malphas-lang/internal/resolver"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// compile parses src as a single-module program and runs name resolution
// over it, returning the sink so tests can assert on recorded diagnostics.
func compile(t *testing.T, src string) (*ast.Program, *diag.CollectingSink) {
	t.Helper()
	ctx := typectx.New()
	sink := diag.NewCollectingSink()
	p := parser.New(src, "test.mal", ctx, sink)
	mod := p.ParseModule("test")
	require.Equal(t, 0, sink.ErrorCount(), "parse errors: %v", sink.Diagnostics)

	prog := &ast.Program{Modules: []*ast.Module{mod}}
	resolver.New(sink, ctx).Resolve(prog)
	return prog, sink
}

func TestResolver_BindsLocalReferenceToItsDecl(t *testing.T) {
	prog, sink := compile(t, `
		fun f() -> i32 {
			var x: i32 = 1;
			return x;
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := prog.Modules[0].Items[0].(*ast.FnDecl)
	decl := fn.Body.Stmts[0].(*ast.DeclStmt).Decl.(*ast.Local)
	ret := fn.Body.Stmts[1].(*ast.ReturnStmt)
	ref := ret.Value.(*ast.DeclRef)

	require.NotNil(t, ref.Decl)
	assert.Same(t, decl, ref.Decl)
}

func TestResolver_UndeclaredIdentifierReportsError(t *testing.T) {
	_, sink := compile(t, `
		fun f() -> i32 {
			return y;
		}
	`)
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeUndeclaredIdentifier, sink.Diagnostics[0].Code)
}

func TestResolver_BreakOutsideLoopReportsError(t *testing.T) {
	_, sink := compile(t, `
		fun f() {
			break;
		}
	`)
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeBreakOutsideLoop, sink.Diagnostics[0].Code)
}

func TestResolver_BreakInsideWhileReportsNoError(t *testing.T) {
	_, sink := compile(t, `
		fun f() {
			while true {
				break;
			}
		}
	`)
	assert.Equal(t, 0, sink.ErrorCount())
}

func TestResolver_StructFieldResolvesDeclaredType(t *testing.T) {
	prog, sink := compile(t, `
		struct Point {
			x: i32,
			y: i32,
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	s := prog.Modules[0].Items[0].(*ast.StructDecl)
	require.Equal(t, "i32", s.Fields[0].Resolved.String())
	require.Equal(t, "i32", s.Fields[1].Resolved.String())
}

func TestResolver_UnknownTypeInFieldReportsError(t *testing.T) {
	_, sink := compile(t, `
		struct Point {
			x: Nope,
		}
	`)
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeUnknownType, sink.Diagnostics[0].Code)
}

func TestResolver_DuplicateParamNameReportsError(t *testing.T) {
	_, sink := compile(t, `
		fun f(a: i32, a: i32) {
			return;
		}
	`)
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeDuplicateParam, sink.Diagnostics[0].Code)
}

func TestResolver_MethodThisBindsToStructReceiver(t *testing.T) {
	prog, sink := compile(t, `
		struct Point {
			x: i32,

			fun getX(this) -> i32 {
				return this.x;
			}
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	s := prog.Modules[0].Items[0].(*ast.StructDecl)
	require.Len(t, s.Methods, 1)
	method := s.Methods[0]
	require.NotNil(t, method.Receiver)
	assert.Equal(t, "this", method.Receiver.Name.Name)
}

func TestResolver_MatchArmBindingNotVisibleInLaterArm(t *testing.T) {
	_, sink := compile(t, `
		enum E {
			A(i32),
			B(i32),
		}

		fun f(e: E) -> i32 {
			return match e {
				A(x) => x,
				B(y) => x,
			};
		}
	`)
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeUndeclaredIdentifier, sink.Diagnostics[0].Code)
}

func TestResolver_AlternationWithConsistentBindingsResolvesCleanly(t *testing.T) {
	prog, sink := compile(t, `
		enum E {
			A(i32),
			B(i32),
		}

		fun f(e: E) -> i32 {
			return match e {
				A(x) || B(x) => x,
			};
		}
	`)
	require.Equal(t, 0, sink.ErrorCount())

	fn := prog.Modules[0].Items[1].(*ast.FnDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	m := ret.Value.(*ast.Match)
	ref := m.Arms[0].Result.(*ast.DeclRef)
	require.NotNil(t, ref.Decl)
}

func TestResolver_AlternationWithDifferentBindingsReportsError(t *testing.T) {
	_, sink := compile(t, `
		enum E {
			A(i32),
			B(i32),
		}

		fun f(e: E) -> i32 {
			return match e {
				A(x) || B(y) => 0,
			};
		}
	`)
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeInconsistentAltBind, sink.Diagnostics[0].Code)
}

func TestResolver_SelfImportReportsError(t *testing.T) {
	ctx := typectx.New()
	sink := diag.NewCollectingSink()
	p := parser.New(`
		import test;
		fun f() { return; }
	`, "test.mal", ctx, sink)
	mod := p.ParseModule("test")
	require.Equal(t, 0, sink.ErrorCount())

	prog := &ast.Program{Modules: []*ast.Module{mod}}
	resolver.New(sink, ctx).Resolve(prog)

	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, diag.CodeRedefinition, sink.Diagnostics[0].Code)
}

package resolver

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// resolveTypeExpr resolves a source-level type expression to an interned
// TypeRef, reporting unknown-type errors and returning Err on failure so
// callers can keep walking without special-casing nils.
func (r *Resolver) resolveTypeExpr(te ast.TypeExpr) typectx.TypeRef {
	if te == nil {
		return r.ctx.GetBuiltin(typectx.Null, lexer.Span{})
	}
	switch t := te.(type) {
	case *ast.NamedTypeExpr:
		return r.resolveNamedType(t)
	case *ast.AppliedTypeExpr:
		base := r.resolveTypeExpr(t.Base)
		args := make([]typectx.TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = r.resolveTypeExpr(a)
		}
		return r.ctx.GetApplied(base, args, t.Span())
	case *ast.PtrTypeExpr:
		return r.ctx.GetPtr(r.resolveTypeExpr(t.Pointee), t.Span())
	case *ast.RefTypeExpr:
		return r.ctx.GetRef(r.resolveTypeExpr(t.Pointee), t.Span())
	case *ast.TupleTypeExpr:
		elems := make([]typectx.TypeRef, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = r.resolveTypeExpr(e)
		}
		return r.ctx.GetTuple(elems, t.Span())
	default:
		return r.ctx.GetErr(te.Span())
	}
}

func (r *Resolver) resolveNamedType(t *ast.NamedTypeExpr) typectx.TypeRef {
	name := t.Name.Name
	if kind, ok := typectx.BuiltinKindByName[name]; ok {
		if sym, ok := r.current.lookup(name); ok && sym.Kind != SymPrimitive {
			return r.resolveAliasedType(sym, t)
		}
		return r.ctx.GetBuiltin(kind, t.Span())
	}
	sym, ok := r.current.lookup(name)
	if !ok {
		r.emitUnknownType(name, t.Span())
		return r.ctx.GetErr(t.Span())
	}
	return r.resolveAliasedType(sym, t)
}

func (r *Resolver) resolveAliasedType(sym *Symbol, t *ast.NamedTypeExpr) typectx.TypeRef {
	switch d := sym.Decl.(type) {
	case *ast.StructDecl:
		return r.ctx.GetAdt(d.Name.Name, d, t.Span())
	case *ast.EnumDecl:
		return r.ctx.GetAdt(d.Name.Name, d, t.Span())
	case *ast.GenericParam:
		return typectx.TypeRef{Handle: d.Slot.Handle, Span: t.Span()}
	default:
		r.emitUnknownType(t.Name.Name, t.Span())
		return r.ctx.GetErr(t.Span())
	}
}

func (r *Resolver) emitUnknownType(name string, span lexer.Span) {
	msg := "unknown type `" + name + "`"
	if sug := closestName(r.current, name); sug != "" {
		r.sink.Emit(diag.Diagnostic{
			Level: diag.LevelError, Code: diag.CodeUnknownType, Message: msg,
			Span: toDiagSpan(span), Help: "did you mean `" + sug + "`?",
		})
		return
	}
	r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUnknownType, Message: msg, Span: toDiagSpan(span)})
}

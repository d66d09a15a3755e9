package infer

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// genSubst maps a generic parameter declaration to the fresh type variable
// (or explicit argument) it is instantiated with at one use site.
type genSubst map[*ast.GenericParam]typectx.TypeRef

// freshSubstFor allocates one fresh Var(Any) per generic parameter in
// params, recorded at span (spec.md §4.3.3: "substitutes every generic
// parameter with a freshly-generated Var(Any)... multiple references
// produce independent fresh variables").
func (inf *Inferencer) freshSubstFor(params []*ast.GenericParam, span lexer.Span) genSubst {
	subst := make(genSubst, len(params))
	for _, p := range params {
		subst[p] = inf.ctx.GetVar(typectx.DomainAny, span)
	}
	return subst
}

// bindExplicitTypeArgs overwrites subst's fresh vars with explicitly written
// type arguments (`Box<i32> { ... }`), resolved through the inferencer's own
// type-expression resolver (mirrors the resolver's resolveTypeExpr, but runs
// at inference time against the inferencer's generic scope stack — explicit
// type args on AdtInit are left unresolved by the name resolver per spec.md
// §4.2.4, deferred here).
func (inf *Inferencer) bindExplicitTypeArgs(params []*ast.GenericParam, args []ast.TypeExpr, subst genSubst) {
	n := len(params)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		subst[params[i]] = inf.resolveTypeExpr(args[i])
	}
}

// resolveTypeExpr resolves a source type expression to an interned TypeRef
// at inference time, looking generic parameter names up through the
// currently active generic scopes (pushed when entering a generic item).
func (inf *Inferencer) resolveTypeExpr(te ast.TypeExpr) typectx.TypeRef {
	if te == nil {
		return inf.ctx.GetBuiltin(typectx.Null, lexer.Span{})
	}
	switch t := te.(type) {
	case *ast.NamedTypeExpr:
		name := t.Name.Name
		if kind, ok := typectx.BuiltinKindByName[name]; ok {
			return inf.ctx.GetBuiltin(kind, t.Span())
		}
		for i := len(inf.genericScopes) - 1; i >= 0; i-- {
			if g, ok := inf.genericScopes[i][name]; ok {
				return typectx.TypeRef{Handle: g.Handle, Span: t.Span()}
			}
		}
		if decl, ok := inf.adtByName[name]; ok {
			return inf.ctx.GetAdt(name, decl, t.Span())
		}
		return inf.ctx.GetErr(t.Span())
	case *ast.AppliedTypeExpr:
		base := inf.resolveTypeExpr(t.Base)
		args := make([]typectx.TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = inf.resolveTypeExpr(a)
		}
		return inf.ctx.GetApplied(base, args, t.Span())
	case *ast.PtrTypeExpr:
		return inf.ctx.GetPtr(inf.resolveTypeExpr(t.Pointee), t.Span())
	case *ast.RefTypeExpr:
		return inf.ctx.GetRef(inf.resolveTypeExpr(t.Pointee), t.Span())
	case *ast.TupleTypeExpr:
		elems := make([]typectx.TypeRef, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = inf.resolveTypeExpr(e)
		}
		return inf.ctx.GetTuple(elems, t.Span())
	default:
		return inf.ctx.GetErr(te.Span())
	}
}

// substituteGenerics replaces every Generic handle in t whose declaration is
// a key of subst with its substitution, rebuilding composite types through
// ctx so results stay hash-consed. Types with no matching generics anywhere
// in their structure are returned unchanged.
func substituteGenerics(ctx *typectx.Context, t typectx.TypeRef, subst genSubst, span lexer.Span) typectx.TypeRef {
	switch h := t.Handle.(type) {
	case *typectx.Generic:
		if gp, ok := h.Decl.(*ast.GenericParam); ok {
			if repl, ok := subst[gp]; ok {
				return typectx.TypeRef{Handle: repl.Handle, Span: span}
			}
		}
		return t
	case *typectx.Tuple:
		elems := make([]typectx.TypeRef, len(h.Elems))
		changed := false
		for i, e := range h.Elems {
			elems[i] = substituteGenerics(ctx, e, subst, span)
			changed = changed || elems[i].Handle != e.Handle
		}
		if !changed {
			return t
		}
		return ctx.GetTuple(elems, span)
	case *typectx.Fun:
		params := make([]typectx.TypeRef, len(h.Params))
		changed := false
		for i, p := range h.Params {
			params[i] = substituteGenerics(ctx, p, subst, span)
			changed = changed || params[i].Handle != p.Handle
		}
		ret := substituteGenerics(ctx, h.Return, subst, span)
		changed = changed || ret.Handle != h.Return.Handle
		if !changed {
			return t
		}
		return ctx.GetFun(params, ret, span)
	case *typectx.Ptr:
		pointee := substituteGenerics(ctx, h.Pointee, subst, span)
		if pointee.Handle == h.Pointee.Handle {
			return t
		}
		return ctx.GetPtr(pointee, span)
	case *typectx.Ref:
		pointee := substituteGenerics(ctx, h.Pointee, subst, span)
		if pointee.Handle == h.Pointee.Handle {
			return t
		}
		return ctx.GetRef(pointee, span)
	case *typectx.Applied:
		base := substituteGenerics(ctx, h.Base, subst, span)
		changed := base.Handle != h.Base.Handle
		args := make([]typectx.TypeRef, len(h.Args))
		for i, a := range h.Args {
			args[i] = substituteGenerics(ctx, a, subst, span)
			changed = changed || args[i].Handle != a.Handle
		}
		if !changed {
			return t
		}
		return ctx.GetApplied(base, args, span)
	default:
		return t
	}
}

// instantiateSignature builds a generic function/method's parameter and
// return types with fresh substitutions for its own generics plus, for
// methods, the enclosing ADT's generics (spec.md §4.3.3: "Method references
// additionally substitute the enclosing ADT's generics").
func (inf *Inferencer) instantiateSignature(fn *ast.FnDecl, adtGenerics []*ast.GenericParam, span lexer.Span) ([]typectx.TypeRef, typectx.TypeRef) {
	subst := inf.freshSubstFor(fn.GenericParams, span)
	for p, v := range inf.freshSubstFor(adtGenerics, span) {
		subst[p] = v
	}
	params := make([]typectx.TypeRef, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = substituteGenerics(inf.ctx, p.Resolved, subst, span)
	}
	ret := substituteGenerics(inf.ctx, fn.Resolved, subst, span)
	return params, ret
}

func (inf *Inferencer) instantiateFn(fn *ast.FnDecl, span lexer.Span) typectx.TypeRef {
	params, ret := inf.instantiateSignature(fn, nil, span)
	return inf.ctx.GetFun(params, ret, span)
}

// adtGenericSubst builds the substitution for an ADT's own generic
// parameters from an already-resolved Applied type's arguments, pairing them
// by position. A generic parameter with no matching argument (every one of
// them when args is empty, as for a bare reference) gets no entry, so it
// stays the Generic handle rather than a fresh var.
func adtGenericSubst(generics []*ast.GenericParam, args []typectx.TypeRef) genSubst {
	subst := make(genSubst, len(generics))
	n := len(generics)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		subst[generics[i]] = args[i]
	}
	return subst
}

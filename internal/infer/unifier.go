package infer

import (
	"fmt"

	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// ufNode is one union-find tree node, keyed directly by the typectx.Type
// handle it describes (spec.md §9, design note 2: the original's
// TypeUnifier::Nodes is keyed by Type*, not a separate id scheme — we follow
// that here since typectx.Type handles are themselves comparable pointers).
type ufNode struct {
	parent typectx.Type
	size   int
}

// Unifier is the union-find structure described in spec.md §4.3.5. It owns
// no state beyond one Inferencer's lifetime and is single-threaded,
// mutation-only: once two classes merge they never split.
type Unifier struct {
	ctx   *typectx.Context
	sink  diag.Sink
	nodes map[typectx.Type]*ufNode
}

// NewUnifier constructs a Unifier over ctx, reporting failures to sink.
// Nodes are created lazily as types are first seen (typectx.Context.GetVar
// keeps allocating fresh Vars throughout inference, so pre-seeding once at
// construction time would miss them).
func NewUnifier(ctx *typectx.Context, sink diag.Sink) *Unifier {
	return &Unifier{ctx: ctx, sink: sink, nodes: make(map[typectx.Type]*ufNode)}
}

func (u *Unifier) nodeFor(t typectx.Type) *ufNode {
	n, ok := u.nodes[t]
	if !ok {
		n = &ufNode{parent: t, size: 1}
		u.nodes[t] = n
	}
	return n
}

// find returns the root of t's equivalence class, compressing the path it
// walks.
func (u *Unifier) find(t typectx.Type) typectx.Type {
	n := u.nodeFor(t)
	if n.parent == t {
		return t
	}
	root := u.find(n.parent)
	n.parent = root
	return root
}

// Resolve returns the concrete representative of ref's equivalence class, or
// the root Var itself if the class has not yet bound to a concrete type.
func (u *Unifier) Resolve(ref typectx.TypeRef) typectx.TypeRef {
	return typectx.TypeRef{Handle: u.find(ref.Handle), Span: ref.Span}
}

// Unify merges a and b's equivalence classes with no extra diagnostic
// context.
func (u *Unifier) Unify(a, b typectx.TypeRef) bool {
	return u.unify(a, b, "")
}

// UnifyContext merges a and b's equivalence classes, appending context to
// any mismatch diagnostic ("argument 2", "return type", ...) so the message
// names the origin the way spec.md §7.3 asks for.
func (u *Unifier) UnifyContext(a, b typectx.TypeRef, context string) bool {
	return u.unify(a, b, context)
}

func (u *Unifier) unify(a, b typectx.TypeRef, context string) bool {
	ra, rb := u.find(a.Handle), u.find(b.Handle)
	if ra == rb {
		return true
	}
	if ra.Kind() == typectx.KindErr || rb.Kind() == typectx.KindErr {
		return true
	}
	va, aIsVar := ra.(*typectx.Var)
	vb, bIsVar := rb.(*typectx.Var)
	switch {
	case aIsVar && bIsVar:
		return u.unifyVarVar(va, vb, a, b, context)
	case aIsVar:
		return u.unifyVarConcrete(va, rb, a, b, context)
	case bIsVar:
		return u.unifyVarConcrete(vb, ra, b, a, context)
	default:
		return u.unifyConcrete(ra, rb, a, b, context)
	}
}

// intersectDomains implements spec.md §4.3.5's domain intersection table.
func intersectDomains(a, b typectx.Domain) (typectx.Domain, bool) {
	if a == typectx.DomainAny {
		return b, true
	}
	if b == typectx.DomainAny {
		return a, true
	}
	if a == b {
		return a, true
	}
	return 0, false
}

func (u *Unifier) unifyVarVar(va, vb *typectx.Var, aRef, bRef typectx.TypeRef, context string) bool {
	if va == vb {
		return true
	}
	newDomain, ok := intersectDomains(va.Domain(), vb.Domain())
	if !ok {
		u.emitDomainError(aRef, bRef, context)
		return false
	}
	na, nb := u.nodeFor(va), u.nodeFor(vb)
	if na.size < nb.size {
		na.parent = vb
		nb.size += na.size
		vb.SetDomain(newDomain)
	} else {
		nb.parent = va
		na.size += nb.size
		va.SetDomain(newDomain)
	}
	return true
}

func (u *Unifier) unifyVarConcrete(v *typectx.Var, concrete typectx.Type, vRef, cRef typectx.TypeRef, context string) bool {
	if !v.Accepts(concrete) {
		u.emitDomainError(vRef, cRef, context)
		return false
	}
	if v.OccursIn(concrete) {
		u.emitOccursError(vRef, cRef)
		return false
	}
	u.nodeFor(v).parent = concrete
	return true
}

func (u *Unifier) unifyConcrete(a, b typectx.Type, aRef, bRef typectx.TypeRef, context string) bool {
	if a.Kind() != b.Kind() {
		u.emitMismatch(aRef, bRef, context)
		return false
	}
	switch av := a.(type) {
	case *typectx.Builtin:
		bv := b.(*typectx.Builtin)
		if av.BKind != bv.BKind {
			u.emitMismatch(aRef, bRef, context)
			return false
		}
		return true
	case *typectx.Adt:
		bv := b.(*typectx.Adt)
		if av.Name != bv.Name {
			u.emitMismatch(aRef, bRef, context)
			return false
		}
		return true
	case *typectx.Tuple:
		bv := b.(*typectx.Tuple)
		if len(av.Elems) != len(bv.Elems) {
			u.emitArity(aRef, bRef, context)
			return false
		}
		ok := true
		for i := range av.Elems {
			if !u.unify(av.Elems[i], bv.Elems[i], fmt.Sprintf("tuple element %d", i)) {
				ok = false
			}
		}
		return ok
	case *typectx.Fun:
		bv := b.(*typectx.Fun)
		if len(av.Params) != len(bv.Params) {
			u.emitArity(aRef, bRef, context)
			return false
		}
		ok := u.unify(av.Return, bv.Return, "return type")
		for i := range av.Params {
			if !u.unify(av.Params[i], bv.Params[i], fmt.Sprintf("parameter %d", i)) {
				ok = false
			}
		}
		return ok
	case *typectx.Ptr:
		bv := b.(*typectx.Ptr)
		return u.unify(av.Pointee, bv.Pointee, context)
	case *typectx.Ref:
		bv := b.(*typectx.Ref)
		return u.unify(av.Pointee, bv.Pointee, context)
	case *typectx.Applied:
		bv := b.(*typectx.Applied)
		if len(av.Args) != len(bv.Args) {
			u.emitArity(aRef, bRef, context)
			return false
		}
		ok := u.unify(av.Base, bv.Base, context)
		for i := range av.Args {
			if !u.unify(av.Args[i], bv.Args[i], fmt.Sprintf("type argument %d", i)) {
				ok = false
			}
		}
		return ok
	case *typectx.Generic:
		bv := b.(*typectx.Generic)
		if av.Decl != bv.Decl {
			u.emitMismatch(aRef, bRef, context)
			return false
		}
		return true
	default:
		return true
	}
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

func withContext(msg, context string) string {
	if context == "" {
		return msg
	}
	return msg + " (" + context + ")"
}

func (u *Unifier) emitMismatch(got, want typectx.TypeRef, context string) {
	msg := withContext(fmt.Sprintf("type mismatch: found `%s`, expected `%s`", got.String(), want.String()), context)
	u.sink.Emit(diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.CodeTypeMismatch,
		Message: msg,
		LabeledSpans: []diag.LabeledSpan{
			{Span: toDiagSpan(got.Span), Style: diag.StylePrimary, Label: "found `" + got.String() + "`"},
			{Span: toDiagSpan(want.Span), Style: diag.StyleSecondary, Label: "expected `" + want.String() + "` from here"},
		},
	})
}

func (u *Unifier) emitArity(a, b typectx.TypeRef, context string) {
	msg := withContext(fmt.Sprintf("arity mismatch between `%s` and `%s`", a.String(), b.String()), context)
	u.sink.Emit(diag.Diagnostic{
		Level: diag.LevelError, Code: diag.CodeArityMismatch, Message: msg,
		LabeledSpans: []diag.LabeledSpan{
			{Span: toDiagSpan(a.Span), Style: diag.StylePrimary},
			{Span: toDiagSpan(b.Span), Style: diag.StyleSecondary},
		},
	})
}

func (u *Unifier) emitDomainError(v, t typectx.TypeRef, context string) {
	msg := withContext(fmt.Sprintf("`%s` cannot unify with `%s`: domain constraint violated", v.String(), t.String()), context)
	u.sink.Emit(diag.Diagnostic{
		Level: diag.LevelError, Code: diag.CodeDomainConstraint, Message: msg,
		LabeledSpans: []diag.LabeledSpan{
			{Span: toDiagSpan(v.Span), Style: diag.StylePrimary},
			{Span: toDiagSpan(t.Span), Style: diag.StyleSecondary},
		},
	})
}

func (u *Unifier) emitOccursError(v, t typectx.TypeRef) {
	u.sink.Emit(diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.CodeOccursCheck,
		Message: fmt.Sprintf("cyclic type: `%s` occurs in `%s`", v.String(), t.String()),
		Span:    toDiagSpan(v.Span),
	})
}

// Package infer implements the Type Inferencer (spec.md §4.3): a two-pass
// walk that assigns a concrete interned type to every expression and
// declaration, driven by a union-find Unifier over the shared typectx
// Context. It runs after internal/resolver has bound every identifier
// reference in a module.
package infer

import (
	"fmt"

	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// Inferencer owns no state beyond one Infer call's lifetime; construct a
// fresh one (sharing the Context and Sink the Resolver used) per
// compilation.
type Inferencer struct {
	ctx     *typectx.Context
	sink    diag.Sink
	unifier *Unifier

	adtByName map[string]typectx.AdtDecl

	// returnStack tracks the expected return type of the function currently
	// being collected, for `return` statements.
	returnStack []typectx.TypeRef

	// expected is the "expected type" stack used to recover an anonymous
	// AdtInit's target type from context (spec.md §9, open question 2):
	// pushed by an explicitly-typed local's initializer, a call argument
	// position, a return statement's value, and a struct field or enum
	// payload initializer.
	expected []typectx.TypeRef

	// genericScopes lets resolveTypeExpr look generic parameter names up by
	// source text while inside a generic item's body (used for explicit
	// AdtInit type arguments).
	genericScopes []map[string]typectx.TypeRef

	// bindingTypes records the inferred type of a for-loop variable or
	// match-pattern payload binding, keyed by its declaring node — these
	// aren't expressions, so they have no TypeSlot of their own, but
	// DeclRef.Decl may point at them.
	bindingTypes map[ast.Node]typectx.TypeRef
}

// New constructs an Inferencer sharing ctx and sink with whatever Resolver
// ran over the same Program.
func New(sink diag.Sink, ctx *typectx.Context) *Inferencer {
	return &Inferencer{
		ctx:          ctx,
		sink:         sink,
		unifier:      NewUnifier(ctx, sink),
		adtByName:    make(map[string]typectx.AdtDecl),
		bindingTypes: make(map[ast.Node]typectx.TypeRef),
	}
}

// Unifier exposes the Inferencer's Unifier for callers that need to resolve
// a type reference after inference (e.g. tests asserting on a finalized
// program, or a driver printing a typed dump).
func (inf *Inferencer) Unifier() *Unifier { return inf.unifier }

// Infer runs the collection pass followed by the finalization pass over
// every module in prog (spec.md §4.3.1).
func (inf *Inferencer) Infer(prog *ast.Program) {
	inf.buildItemIndex(prog)
	for _, m := range prog.Modules {
		for _, item := range m.Items {
			inf.collectItem(item)
		}
	}
	for _, m := range prog.Modules {
		for _, item := range m.Items {
			inf.finalizeItem(item)
		}
	}
}

func (inf *Inferencer) buildItemIndex(prog *ast.Program) {
	for _, m := range prog.Modules {
		for _, item := range m.Items {
			switch d := item.(type) {
			case *ast.StructDecl:
				inf.adtByName[d.Name.Name] = d
			case *ast.EnumDecl:
				inf.adtByName[d.Name.Name] = d
			}
		}
	}
}

func (inf *Inferencer) collectItem(item ast.Decl) {
	switch d := item.(type) {
	case *ast.FnDecl:
		inf.collectFn(d, nil)
	case *ast.StructDecl:
		inf.collectStruct(d)
	case *ast.EnumDecl:
		inf.collectEnum(d)
	}
}

func (inf *Inferencer) pushGenericScope(params []*ast.GenericParam) {
	scope := make(map[string]typectx.TypeRef, len(params))
	for _, p := range params {
		scope[p.Name.Name] = p.Slot
	}
	inf.genericScopes = append(inf.genericScopes, scope)
}

func (inf *Inferencer) popGenericScope() {
	inf.genericScopes = inf.genericScopes[:len(inf.genericScopes)-1]
}

func (inf *Inferencer) collectStruct(s *ast.StructDecl) {
	inf.pushGenericScope(s.GenericParams)
	defer inf.popGenericScope()
	for _, f := range s.Fields {
		if f.Default != nil {
			dt := inf.visit(f.Default)
			inf.unifier.UnifyContext(dt, f.Resolved, "default value of field `"+f.Name.Name+"`")
		}
	}
	for _, m := range s.Methods {
		inf.collectFn(m, s.GenericParams)
	}
}

func (inf *Inferencer) collectEnum(e *ast.EnumDecl) {
	inf.pushGenericScope(e.GenericParams)
	defer inf.popGenericScope()
	for _, m := range e.Methods {
		inf.collectFn(m, e.GenericParams)
	}
}

func (inf *Inferencer) collectFn(fn *ast.FnDecl, adtGenerics []*ast.GenericParam) {
	if fn.Body == nil {
		return
	}
	inf.pushGenericScope(fn.GenericParams)
	defer inf.popGenericScope()
	inf.returnStack = append(inf.returnStack, fn.Resolved)
	inf.visitBlock(fn.Body)
	inf.returnStack = inf.returnStack[:len(inf.returnStack)-1]
}

func (inf *Inferencer) currentReturnType() (typectx.TypeRef, bool) {
	if len(inf.returnStack) == 0 {
		return typectx.TypeRef{}, false
	}
	return inf.returnStack[len(inf.returnStack)-1], true
}

func (inf *Inferencer) pushExpected(t typectx.TypeRef) { inf.expected = append(inf.expected, t) }
func (inf *Inferencer) popExpected()                   { inf.expected = inf.expected[:len(inf.expected)-1] }
func (inf *Inferencer) peekExpected() (typectx.TypeRef, bool) {
	if len(inf.expected) == 0 {
		return typectx.TypeRef{}, false
	}
	return inf.expected[len(inf.expected)-1], true
}

// unwrapRefPtr peels Ref/Ptr layers off a resolved type so field/method
// lookup works uniformly whether the base is `this` (Ref<Adt>), a plain
// value, or an explicit pointer.
func (inf *Inferencer) unwrapRefPtr(t typectx.TypeRef) typectx.TypeRef {
	for {
		switch h := t.Handle.(type) {
		case *typectx.Ref:
			t = h.Pointee
		case *typectx.Ptr:
			t = h.Pointee
		default:
			return t
		}
	}
}

// adtParts splits a resolved (and Ref/Ptr-unwrapped) type into its struct or
// enum declaration plus any Applied type arguments, or reports it isn't an
// ADT at all.
func adtParts(t typectx.TypeRef) (structDecl *ast.StructDecl, enumDecl *ast.EnumDecl, args []typectx.TypeRef, ok bool) {
	switch h := t.Handle.(type) {
	case *typectx.Adt:
		switch d := h.Decl.(type) {
		case *ast.StructDecl:
			return d, nil, nil, true
		case *ast.EnumDecl:
			return nil, d, nil, true
		}
		return nil, nil, nil, false
	case *typectx.Applied:
		base, ok := adtBase(h.Base)
		if !ok {
			return nil, nil, nil, false
		}
		switch d := base.(type) {
		case *ast.StructDecl:
			return d, nil, h.Args, true
		case *ast.EnumDecl:
			return nil, d, h.Args, true
		}
		return nil, nil, nil, false
	default:
		return nil, nil, nil, false
	}
}

func adtBase(t typectx.TypeRef) (typectx.AdtDecl, bool) {
	a, ok := t.Handle.(*typectx.Adt)
	if !ok || a.Decl == nil {
		return nil, false
	}
	return a.Decl, true
}

func lookupField(s *ast.StructDecl, name string) *ast.Field {
	for _, f := range s.Fields {
		if f.Name.Name == name {
			return f
		}
	}
	return nil
}

func lookupMethodOn(structDecl *ast.StructDecl, enumDecl *ast.EnumDecl, name string) *ast.FnDecl {
	var methods []*ast.FnDecl
	if structDecl != nil {
		methods = structDecl.Methods
	} else if enumDecl != nil {
		methods = enumDecl.Methods
	}
	for _, m := range methods {
		if m.Name.Name == name {
			return m
		}
	}
	return nil
}

func adtGenericsOf(structDecl *ast.StructDecl, enumDecl *ast.EnumDecl) []*ast.GenericParam {
	if structDecl != nil {
		return structDecl.GenericParams
	}
	if enumDecl != nil {
		return enumDecl.GenericParams
	}
	return nil
}

func adtNameOf(structDecl *ast.StructDecl, enumDecl *ast.EnumDecl) string {
	if structDecl != nil {
		return structDecl.Name.Name
	}
	if enumDecl != nil {
		return enumDecl.Name.Name
	}
	return ""
}

func (inf *Inferencer) emitNotAdt(span lexer.Span, found typectx.TypeRef) {
	if found.IsErr() {
		return
	}
	inf.sink.Emit(diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.CodeUnknownField,
		Message: fmt.Sprintf("`%s` is not a struct or enum", found.String()),
		Span:    toDiagSpan(span),
	})
}

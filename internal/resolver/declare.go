package resolver

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// resolveSignatures is phase B step 3 (spec.md §4.2.2.3): register every
// top-level item's name, and for structs/enums resolve field/variant types
// and method signatures without walking bodies yet.
func (r *Resolver) resolveSignatures(m *ast.Module) {
	for _, item := range m.Items {
		switch d := item.(type) {
		case *ast.FnDecl:
			r.declareItemName(d.Name.Name, d, d.Span())
		case *ast.StructDecl:
			r.declareItemName(d.Name.Name, d, d.Span())
			r.resolveStructSignature(d)
		case *ast.EnumDecl:
			r.declareItemName(d.Name.Name, d, d.Span())
			r.resolveEnumSignature(d)
		}
	}
	for _, item := range m.Items {
		if fn, ok := item.(*ast.FnDecl); ok {
			r.resolveFnSignature(fn, nil)
		}
	}
}

func (r *Resolver) declareItemName(name string, decl ast.Decl, span ast.Node) {
	sym := &Symbol{Name: name, Kind: SymItem, Decl: decl}
	if existing, inserted := r.current.insert(sym); !inserted {
		r.redefinition(span.Span(), declSpan(existing.Decl), "item `"+name+"`")
	}
}

// declareGenericParams introduces generics into the current scope, creating
// each one's typectx.Generic handle (spec.md §4.2.2.3: "generic parameters
// are introduced into the item's scope at this time").
func (r *Resolver) declareGenericParams(params []*ast.GenericParam) {
	for _, p := range params {
		p.Slot = r.ctx.GetGeneric(p.Name.Name, p, p.Span())
		sym := &Symbol{Name: p.Name.Name, Kind: SymTypeParam, Decl: p}
		if existing, inserted := r.current.insertShadowingPrimitive(sym); !inserted {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeDuplicateTypeParam,
				Message: "duplicate type parameter `" + p.Name.Name + "`",
				LabeledSpans: []diag.LabeledSpan{
					{Span: toDiagSpan(p.Span()), Style: diag.StylePrimary},
					{Span: toDiagSpan(declSpan(existing.Decl)), Style: diag.StyleSecondary, Label: "first defined here"},
				},
			})
		}
	}
}

func (r *Resolver) resolveStructSignature(s *ast.StructDecl) {
	defer r.pushScope().Pop()
	r.declareGenericParams(s.GenericParams)

	seen := make(map[string]*ast.Field)
	for _, f := range s.Fields {
		if prior, dup := seen[f.Name.Name]; dup {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeDuplicateMember,
				Message: "duplicate field `" + f.Name.Name + "`",
				LabeledSpans: []diag.LabeledSpan{
					{Span: toDiagSpan(f.Span()), Style: diag.StylePrimary},
					{Span: toDiagSpan(prior.Span()), Style: diag.StyleSecondary, Label: "first defined here"},
				},
			})
			continue
		}
		seen[f.Name.Name] = f
		f.Resolved = r.resolveTypeExpr(f.Declared)
	}
	for _, method := range s.Methods {
		r.resolveFnSignature(method, s)
	}
}

func (r *Resolver) resolveEnumSignature(e *ast.EnumDecl) {
	defer r.pushScope().Pop()
	r.declareGenericParams(e.GenericParams)

	seen := make(map[string]*ast.Variant)
	for _, v := range e.Variants {
		if prior, dup := seen[v.Name.Name]; dup {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeDuplicateMember,
				Message: "duplicate variant `" + v.Name.Name + "`",
				LabeledSpans: []diag.LabeledSpan{
					{Span: toDiagSpan(v.Span()), Style: diag.StylePrimary},
					{Span: toDiagSpan(prior.Span()), Style: diag.StyleSecondary, Label: "first defined here"},
				},
			})
			continue
		}
		seen[v.Name.Name] = v
		if v.Payload != nil {
			v.Resolved = r.resolveTypeExpr(v.Payload)
		}
	}
	for _, method := range e.Methods {
		r.resolveFnSignature(method, e)
	}
}

// resolveFnSignature resolves generics, the synthetic `this` receiver (for
// methods), parameters, and the return type — but does not walk the body.
// parent is non-nil for methods, naming the enclosing ADT for `this`'s type.
func (r *Resolver) resolveFnSignature(fn *ast.FnDecl, parent typectx.AdtDecl) {
	defer r.pushScope().Pop()
	r.declareGenericParams(fn.GenericParams)

	if parent != nil {
		adtSpan := fn.Span()
		adtRef := r.ctx.GetAdt(parent.AdtName(), parent, adtSpan)
		this := &ast.Param{Name: ast.NewIdent("this", adtSpan), Resolved: r.ctx.GetRef(adtRef, adtSpan)}
		fn.Receiver = this
		r.current.insert(&Symbol{Name: "this", Kind: SymParam, Decl: this})
	}

	seen := make(map[string]*ast.Param)
	for _, p := range fn.Params {
		if p.Name.Name == "this" {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeReceiverNotThis,
				Message: "`this` may only appear as the implicit receiver",
				Span:    toDiagSpan(p.Span()),
			})
			continue
		}
		if prior, dup := seen[p.Name.Name]; dup {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeDuplicateParam,
				Message: "duplicate parameter `" + p.Name.Name + "`",
				LabeledSpans: []diag.LabeledSpan{
					{Span: toDiagSpan(p.Span()), Style: diag.StylePrimary},
					{Span: toDiagSpan(prior.Span()), Style: diag.StyleSecondary, Label: "first defined here"},
				},
			})
			continue
		}
		seen[p.Name.Name] = p
		p.Resolved = r.resolveTypeExpr(p.Declared)
		r.current.insert(&Symbol{Name: p.Name.Name, Kind: SymParam, Decl: p})
	}

	if fn.ReturnType != nil {
		fn.Resolved = r.resolveTypeExpr(fn.ReturnType)
	} else {
		fn.Resolved = r.ctx.GetBuiltin(typectx.Null, fn.Span())
	}
}

// resolveBodies is phase B step 4 (spec.md §4.2.2.4).
func (r *Resolver) resolveBodies(m *ast.Module) {
	for _, item := range m.Items {
		switch d := item.(type) {
		case *ast.FnDecl:
			r.resolveFnBody(d, nil)
		case *ast.StructDecl:
			for _, method := range d.Methods {
				r.resolveFnBody(method, d.GenericParams)
			}
		case *ast.EnumDecl:
			for _, method := range d.Methods {
				r.resolveFnBody(method, d.GenericParams)
			}
		}
	}
}

func (r *Resolver) resolveFnBody(fn *ast.FnDecl, adtGenerics []*ast.GenericParam) {
	if fn.Body == nil {
		return
	}
	defer r.pushScope().Pop()
	for _, g := range adtGenerics {
		r.current.insertShadowingPrimitive(&Symbol{Name: g.Name.Name, Kind: SymTypeParam, Decl: g})
	}
	defer r.pushScope().Pop()
	r.declareGenericParams(fn.GenericParams)
	if fn.Receiver != nil {
		r.current.insert(&Symbol{Name: "this", Kind: SymParam, Decl: fn.Receiver})
	}
	for _, p := range fn.Params {
		r.current.insert(&Symbol{Name: p.Name.Name, Kind: SymParam, Decl: p})
	}

	prevFn := r.curFn
	r.curFn = fn
	r.resolveBlock(fn.Body)
	r.curFn = prevFn
}

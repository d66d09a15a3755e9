// Package resolver implements the Name Resolver (spec.md §4.2): a two-phase
// walk that attaches, for every identifier reference in every module, the
// declaration it refers to.
package resolver

import (
	"strings"

	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// Resolver walks a Program and binds every identifier reference to its
// declaration, accumulating diagnostics into sink. It owns no state beyond
// one Resolve call's lifetime; callers construct a fresh Resolver between
// compilations.
type Resolver struct {
	sink diag.Sink
	ctx  *typectx.Context

	moduleByPath map[string]*ast.Module
	itemByPath   map[string]ast.Decl

	current   *Scope
	curModule *ast.Module
	curFn     *ast.FnDecl
	loopDepth int
}

// New constructs a Resolver that emits into sink and interns types through
// ctx (shared with the inferencer that runs after it).
func New(sink diag.Sink, ctx *typectx.Context) *Resolver {
	return &Resolver{
		sink:         sink,
		ctx:          ctx,
		moduleByPath: make(map[string]*ast.Module),
		itemByPath:   make(map[string]ast.Decl),
	}
}

func itemName(d ast.Decl) (string, ast.Visibility, bool) {
	switch v := d.(type) {
	case *ast.FnDecl:
		if v.IsMethod() {
			return "", ast.Private, false
		}
		return v.Name.Name, v.Visibility, true
	case *ast.StructDecl:
		return v.Name.Name, v.Visibility, true
	case *ast.EnumDecl:
		return v.Name.Name, v.Visibility, true
	default:
		return "", ast.Private, false
	}
}

// Resolve runs both phases over every module in prog.
func (r *Resolver) Resolve(prog *ast.Program) {
	// Phase A: global importable tables (spec.md §4.2.1).
	for _, m := range prog.Modules {
		r.moduleByPath[m.Path] = m
	}
	for _, m := range prog.Modules {
		for _, item := range m.Items {
			name, vis, ok := itemName(item)
			if !ok || vis != ast.Public {
				continue
			}
			r.itemByPath[m.Path+"::"+name] = item
		}
	}

	// Phase B: per-module resolution (spec.md §4.2.2).
	for _, m := range prog.Modules {
		r.resolveModule(m)
	}
}

func (r *Resolver) resolveModule(m *ast.Module) {
	r.curModule = m
	defer r.pushScope().Pop()
	r.seedPrimitives()

	r.resolveImports(m)
	r.resolveUses(m)
	r.resolveSignatures(m)
	r.resolveBodies(m)
}

func (r *Resolver) seedPrimitives() {
	for name := range typectx.BuiltinKindByName {
		r.current.insert(&Symbol{Name: name, Kind: SymPrimitive})
	}
	for _, name := range []string{"string", "char", "bool"} {
		r.current.insert(&Symbol{Name: name, Kind: SymPrimitive})
	}
}

func pathString(path []*ast.Ident) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.Name
	}
	return strings.Join(parts, "::")
}

func pathSpan(path []*ast.Ident) lexer.Span {
	if len(path) == 0 {
		return lexer.Span{}
	}
	return path[0].Span()
}

func (r *Resolver) redefinition(newSpan, origSpan lexer.Span, what string) {
	r.sink.Emit(diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.CodeRedefinition,
		Message: "redefinition of " + what,
		LabeledSpans: []diag.LabeledSpan{
			{Span: toDiagSpan(newSpan), Style: diag.StylePrimary, Label: "redefined here"},
			{Span: toDiagSpan(origSpan), Style: diag.StyleSecondary, Label: "first defined here"},
		},
	})
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

func (r *Resolver) resolveImports(m *ast.Module) {
	for _, imp := range m.Imports {
		path := pathString(imp.Path)
		if mod, ok := r.moduleByPath[path]; ok {
			if mod == m {
				r.redefinition(pathSpan(imp.Path), pathSpan(imp.Path), "import: module cannot import itself")
				continue
			}
			alias := path
			if imp.Alias != nil {
				alias = imp.Alias.Name
			} else if len(imp.Path) > 0 {
				alias = imp.Path[len(imp.Path)-1].Name
			}
			for _, item := range mod.Items {
				name, vis, ok := itemName(item)
				if !ok || vis != ast.Public {
					continue
				}
				sym := &Symbol{Name: alias + "::" + name, Kind: SymImportAlias, Decl: item}
				if existing, inserted := r.current.insert(sym); !inserted {
					r.redefinition(pathSpan(imp.Path), declSpan(existing.Decl), "imported name "+sym.Name)
				}
			}
			continue
		}
		if item, ok := r.itemByPath[path]; ok {
			if strings.HasPrefix(path, m.Path+"::") {
				r.redefinition(pathSpan(imp.Path), pathSpan(imp.Path), "import of an item already owned by this module")
				continue
			}
			name, _, _ := itemName(item)
			if imp.Alias != nil {
				name = imp.Alias.Name
			}
			sym := &Symbol{Name: name, Kind: SymImportAlias, Decl: item}
			if existing, inserted := r.current.insert(sym); !inserted {
				r.redefinition(pathSpan(imp.Path), declSpan(existing.Decl), "imported name "+name)
			}
			continue
		}
		r.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeItemPathNotFound,
			Message: "no item or module at path `" + path + "`",
			Span:    toDiagSpan(pathSpan(imp.Path)),
		})
	}
}

func (r *Resolver) resolveUses(m *ast.Module) {
	for _, use := range m.Uses {
		path := pathString(use.Path)
		var target ast.Decl
		if mod, ok := r.moduleByPath[path]; ok && mod != m {
			// A "use" of a whole module aliases nothing concrete by itself;
			// treated like an import for name purposes.
			alias := use.Path[len(use.Path)-1].Name
			if use.Alias != nil {
				alias = use.Alias.Name
			}
			sym := &Symbol{Name: alias, Kind: SymImportAlias, Decl: mod}
			if existing, inserted := r.current.insertShadowingPrimitive(sym); !inserted {
				r.redefinition(pathSpan(use.Path), declSpan(existing.Decl), "type alias "+alias)
			}
			continue
		}
		if item, ok := r.itemByPath[path]; ok {
			target = item
		}
		name := ""
		if len(use.Path) > 0 {
			name = use.Path[len(use.Path)-1].Name
		}
		if use.Alias != nil {
			name = use.Alias.Name
		}
		if target == nil {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeItemPathNotFound,
				Message: "no item or module at path `" + path + "`",
				Span:    toDiagSpan(pathSpan(use.Path)),
			})
			continue
		}
		sym := &Symbol{Name: name, Kind: SymImportAlias, Decl: target}
		if existing, inserted := r.current.insertShadowingPrimitive(sym); !inserted {
			r.redefinition(pathSpan(use.Path), declSpan(existing.Decl), "type alias "+name)
		}
	}
}

// declSpan returns the best-effort span for a resolver-owned "any" decl
// value, used to point a redefinition diagnostic's secondary label at the
// original declaration.
func declSpan(v any) lexer.Span {
	switch d := v.(type) {
	case ast.Node:
		return d.Span()
	default:
		return lexer.Span{}
	}
}

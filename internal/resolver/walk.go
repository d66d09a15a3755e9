package resolver

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
)

func (r *Resolver) resolveBlock(b *ast.Block) {
	defer r.pushScope().Pop()
	for _, s := range b.Stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		if st.Value != nil {
			r.resolveExpr(st.Value)
		}
	case *ast.DeferStmt:
		r.resolveExpr(st.Value)
	case *ast.IfStmt:
		r.resolveExpr(st.Cond)
		r.resolveBlock(st.Then)
		if st.Else != nil {
			r.resolveBlock(st.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(st.Cond)
		r.loopDepth++
		r.resolveBlock(st.Body)
		r.loopDepth--
	case *ast.ForStmt:
		r.resolveExpr(st.Range)
		defer r.pushScope().Pop()
		r.current.insert(&Symbol{Name: st.Var.Name, Kind: SymLocal, Decl: st})
		r.loopDepth++
		for _, inner := range st.Body.Stmts {
			r.resolveStmt(inner)
		}
		r.loopDepth--
	case *ast.DeclStmt:
		r.resolveLocal(st.Decl)
	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeBreakOutsideLoop, Message: "`break` outside a loop", Span: toDiagSpan(st.Span())})
		}
	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeContinueOutsideLoop, Message: "`continue` outside a loop", Span: toDiagSpan(st.Span())})
		}
	case *ast.ExprStmt:
		r.resolveExpr(st.Value)
	}
}

func (r *Resolver) resolveLocal(l *ast.Local) {
	if l.Declared != nil {
		l.Resolved = r.resolveTypeExpr(l.Declared)
	}
	if l.Init != nil {
		r.resolveExpr(l.Init)
	}
	sym := &Symbol{Name: l.Name.Name, Kind: SymLocal, Decl: l}
	if existing, inserted := r.current.insert(sym); !inserted {
		r.redefinition(l.Span(), declSpan(existing.Decl), "`"+l.Name.Name+"`")
	}
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.CharLiteral, *ast.StrLiteral:
		// no sub-structure to resolve
	case *ast.RangeLiteral:
		r.resolveExpr(ex.Start)
		r.resolveExpr(ex.End)
	case *ast.TupleLiteral:
		for _, el := range ex.Elems {
			r.resolveExpr(el)
		}
	case *ast.DeclRef:
		r.resolveDeclRef(ex)
	case *ast.FunCall:
		r.resolveExpr(ex.Callee)
		for _, a := range ex.Args {
			r.resolveExpr(a)
		}
		if callee, ok := ex.Callee.(*ast.DeclRef); ok {
			if fn, ok := callee.Decl.(*ast.FnDecl); ok {
				ex.Resolved = fn
			}
		}

	case *ast.BinaryOp:
		r.resolveExpr(ex.Lhs)
		r.resolveExpr(ex.Rhs)
	case *ast.UnaryOp:
		r.resolveExpr(ex.Operand)
	case *ast.AdtInit:
		r.resolveAdtInit(ex)
	case *ast.FieldAccess:
		r.resolveExpr(ex.Base)
	case *ast.MethodCall:
		r.resolveExpr(ex.Base)
		for _, a := range ex.Args {
			r.resolveExpr(a)
		}
	case *ast.Match:
		r.resolveMatch(ex)
	case *ast.IntrinsicCall:
		for _, a := range ex.Args {
			r.resolveExpr(a)
		}
	case *ast.BlockExpr:
		r.resolveBlock(ex.Block)
	}
}

func (r *Resolver) resolveDeclRef(ex *ast.DeclRef) {
	if len(ex.Path) == 1 && ex.Path[0].Name == "this" {
		if sym, ok := r.current.lookup("this"); ok {
			ex.Decl = sym.Decl
			return
		}
	}
	joined := pathString(ex.Path)
	sym, ok := r.current.lookup(joined)
	if !ok && len(ex.Path) == 1 {
		sym, ok = r.current.lookup(ex.Path[0].Name)
	}
	if !ok {
		name := joined
		msg := "undeclared identifier `" + name + "`"
		if sug := closestName(r.current, ex.Path[len(ex.Path)-1].Name); sug != "" {
			r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUndeclaredIdentifier, Message: msg, Span: toDiagSpan(ex.Span()), Help: "did you mean `" + sug + "`?"})
		} else {
			r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUndeclaredIdentifier, Message: msg, Span: toDiagSpan(ex.Span())})
		}
		return
	}
	ex.Decl = sym.Decl
}

func (r *Resolver) resolveAdtInit(ex *ast.AdtInit) {
	if ex.TypeName == nil {
		for _, mem := range ex.Members {
			if mem.Init != nil {
				r.resolveExpr(mem.Init)
			}
		}
		return
	}
	name := pathString(ex.TypeName)
	sym, ok := r.current.lookup(name)
	if !ok && len(ex.TypeName) == 1 {
		sym, ok = r.current.lookup(ex.TypeName[0].Name)
	}
	if !ok {
		r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUnknownAdt, Message: "unknown type `" + name + "`", Span: toDiagSpan(ex.Span())})
		for _, mem := range ex.Members {
			if mem.Init != nil {
				r.resolveExpr(mem.Init)
			}
		}
		return
	}
	switch d := sym.Decl.(type) {
	case *ast.StructDecl:
		ex.ResolvedStruct = d
		r.resolveStructInitMembers(ex, d)
	case *ast.EnumDecl:
		ex.ResolvedEnum = d
		r.resolveEnumInitMembers(ex, d)
	default:
		r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUnknownAdt, Message: "`" + name + "` is not a struct or enum", Span: toDiagSpan(ex.Span())})
	}
}

func (r *Resolver) resolveStructInitMembers(ex *ast.AdtInit, s *ast.StructDecl) {
	fieldByName := make(map[string]*ast.Field, len(s.Fields))
	for _, f := range s.Fields {
		fieldByName[f.Name.Name] = f
	}
	given := make(map[string]bool, len(ex.Members))
	for _, mem := range ex.Members {
		f, ok := fieldByName[mem.Field.Name]
		if !ok {
			r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUnknownField, Message: "unknown field `" + mem.Field.Name + "` on `" + s.Name.Name + "`", Span: toDiagSpan(mem.Span())})
		} else {
			given[f.Name.Name] = true
		}
		if mem.Init != nil {
			r.resolveExpr(mem.Init)
		}
	}
	var missing []string
	for _, f := range s.Fields {
		if !given[f.Name.Name] && f.Default == nil {
			missing = append(missing, f.Name.Name)
		}
	}
	if len(missing) > 0 {
		msg := "missing field"
		if len(missing) > 1 {
			msg += "s"
		}
		msg += " in initializer of `" + s.Name.Name + "`: "
		for i, name := range missing {
			if i > 0 {
				msg += ", "
			}
			msg += "`" + name + "`"
		}
		r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeMissingFields, Message: msg, Span: toDiagSpan(ex.Span())})
	}
}

func (r *Resolver) resolveEnumInitMembers(ex *ast.AdtInit, en *ast.EnumDecl) {
	if len(ex.Members) != 1 {
		r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUnknownVariant, Message: "enum initializer must name exactly one variant", Span: toDiagSpan(ex.Span())})
		for _, mem := range ex.Members {
			if mem.Init != nil {
				r.resolveExpr(mem.Init)
			}
		}
		return
	}
	mem := ex.Members[0]
	for _, v := range en.Variants {
		if v.Name.Name == mem.Field.Name {
			ex.ResolvedVariant = v
			break
		}
	}
	if ex.ResolvedVariant == nil {
		r.sink.Emit(diag.Diagnostic{Level: diag.LevelError, Code: diag.CodeUnknownVariant, Message: "`" + en.Name.Name + "` has no variant `" + mem.Field.Name + "`", Span: toDiagSpan(mem.Span())})
	}
	if mem.Init != nil {
		r.resolveExpr(mem.Init)
	}
}

func (r *Resolver) resolveMatch(ex *ast.Match) {
	r.resolveExpr(ex.Scrutinee)
	for _, arm := range ex.Arms {
		scope := r.pushScope()
		r.resolveMatchArm(arm)
		scope.Pop()
	}
}

// resolveMatchArm resolves one arm's patterns (including any `||`-joined
// alternatives) into the arm's already-pushed scope, then its body/result.
func (r *Resolver) resolveMatchArm(arm *ast.MatchArm) {
	r.resolvePatternAlternatives(arm.Patterns)
	if arm.Body != nil {
		for _, s := range arm.Body.Stmts {
			r.resolveStmt(s)
		}
	}
	if arm.Result != nil {
		r.resolveExpr(arm.Result)
	}
}

// resolvePatternAlternatives resolves every pattern in a (possibly
// `||`-joined) arm. All alternatives share the one arm scope, and each must
// bind the same variable names; binding symbols are inserted exactly once,
// keyed off the first alternative's bindings.
func (r *Resolver) resolvePatternAlternatives(patterns []ast.Pattern) {
	for _, p := range patterns {
		if lit, ok := p.(*ast.LiteralPattern); ok {
			r.resolveExpr(lit.Value)
		}
	}

	var firstBindings []*ast.PatternBinding
	var firstNames map[string]bool
	for i, p := range patterns {
		bindings := r.collectPatternBindings(p)
		names := bindingNameSet(bindings)
		if i == 0 {
			firstBindings, firstNames = bindings, names
			continue
		}
		if !sameNameSet(firstNames, names) {
			r.sink.Emit(diag.Diagnostic{
				Level:   diag.LevelError,
				Code:    diag.CodeInconsistentAltBind,
				Message: "every alternative in a pattern alternation must bind the same names",
				Span:    toDiagSpan(p.Span()),
			})
		}
	}

	for _, b := range firstBindings {
		sym := &Symbol{Name: b.Name.Name, Kind: SymLocal, Decl: b}
		if existing, inserted := r.current.insert(sym); !inserted {
			r.redefinition(b.Span(), declSpan(existing.Decl), "`"+b.Name.Name+"`")
		}
	}
}

// collectPatternBindings returns p's variant bindings, reporting a
// redefinition if p itself binds the same name twice (e.g. `A(x, x)`).
func (r *Resolver) collectPatternBindings(p ast.Pattern) []*ast.PatternBinding {
	vp, ok := p.(*ast.VariantPattern)
	if !ok {
		return nil
	}
	seen := make(map[string]*ast.PatternBinding, len(vp.Bindings))
	out := make([]*ast.PatternBinding, 0, len(vp.Bindings))
	for _, b := range vp.Bindings {
		if prior, dup := seen[b.Name.Name]; dup {
			r.redefinition(b.Span(), declSpan(prior), "`"+b.Name.Name+"`")
			continue
		}
		seen[b.Name.Name] = b
		out = append(out, b)
	}
	return out
}

func bindingNameSet(bindings []*ast.PatternBinding) map[string]bool {
	set := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		set[b.Name.Name] = true
	}
	return set
}

func sameNameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if !b[name] {
			return false
		}
	}
	return true
}

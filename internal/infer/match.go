package infer

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// visitMatchExpr implements spec.md §4.3.4: the scrutinee must be an enum
// (or Bool, handled as a closed two-variant domain) for a VariantPattern-only
// match to make sense; every arm's result type unifies into the match's own
// type; and the arm set must be exhaustive over the scrutinee's variants
// unless a WildcardPattern arm is present.
func (inf *Inferencer) visitMatchExpr(ex *ast.Match) typectx.TypeRef {
	scrutType := inf.visit(ex.Scrutinee)
	resolved := inf.unifier.Resolve(scrutType)
	unwrapped := inf.unwrapRefPtr(resolved)

	var enumDecl *ast.EnumDecl
	var subst genSubst
	isBool := false
	if b, ok := unwrapped.Handle.(*typectx.Builtin); ok && b.BKind == typectx.Bool {
		isBool = true
	} else if _, e, args, ok := adtParts(unwrapped); ok && e != nil {
		enumDecl = e
		subst = adtGenericSubst(e.GenericParams, args)
	} else if !unwrapped.IsErr() {
		inf.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeNonMatchableScrut,
			Message: "`" + unwrapped.String() + "` cannot be matched",
			Span:    toDiagSpan(ex.Scrutinee.Span()),
		})
	}

	resultType := inf.ctx.GetVar(typectx.DomainAny, ex.Span())
	covered := make(map[string]bool)
	hasWildcard := false

	for _, arm := range ex.Arms {
		for _, p := range arm.Patterns {
			inf.visitPattern(p, enumDecl, subst, isBool, covered, &hasWildcard)
		}
		if arm.Body != nil {
			inf.visitBlock(arm.Body)
		}
		if arm.Result != nil {
			rt := inf.visit(arm.Result)
			inf.unifier.UnifyContext(rt, resultType, "match arm")
		}
	}

	if !hasWildcard {
		inf.checkExhaustive(ex, enumDecl, isBool, covered)
	}
	return resultType
}

func (inf *Inferencer) visitPattern(p ast.Pattern, enumDecl *ast.EnumDecl, subst genSubst, isBool bool, covered map[string]bool, hasWildcard *bool) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		*hasWildcard = true
	case *ast.LiteralPattern:
		lt := inf.visit(pat.Value)
		if isBool {
			inf.unifier.UnifyContext(lt, inf.ctx.GetBuiltin(typectx.Bool, pat.Span()), "match pattern")
			if b, ok := pat.Value.(*ast.BoolLiteral); ok {
				if b.Value {
					covered["true"] = true
				} else {
					covered["false"] = true
				}
			}
		}
	case *ast.VariantPattern:
		inf.visitVariantPattern(pat, enumDecl, subst, covered)
	}
}

func (inf *Inferencer) visitVariantPattern(pat *ast.VariantPattern, enumDecl *ast.EnumDecl, subst genSubst, covered map[string]bool) {
	if enumDecl == nil {
		for _, b := range pat.Bindings {
			inf.bindingTypes[b] = inf.ctx.GetErr(b.Span())
		}
		return
	}
	var variant *ast.Variant
	for _, v := range enumDecl.Variants {
		if v.Name.Name == pat.VariantName.Name {
			variant = v
			break
		}
	}
	if variant == nil {
		inf.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeUnknownVariantMatch,
			Message: "`" + enumDecl.Name.Name + "` has no variant `" + pat.VariantName.Name + "`",
			Span:    toDiagSpan(pat.Span()),
		})
		for _, b := range pat.Bindings {
			inf.bindingTypes[b] = inf.ctx.GetErr(b.Span())
		}
		return
	}
	pat.Resolved = variant
	covered[variant.Name.Name] = true

	switch {
	case variant.Payload != nil && len(pat.Bindings) == 1:
		payloadType := substituteGenerics(inf.ctx, variant.Resolved, subst, pat.Span())
		inf.bindingTypes[pat.Bindings[0]] = payloadType
	case variant.Payload != nil && len(pat.Bindings) == 0:
		inf.sink.Emit(diag.Diagnostic{
			Level: diag.LevelError, Code: diag.CodePayloadArity,
			Message: "variant `" + variant.Name.Name + "` requires a binding",
			Span:    toDiagSpan(pat.Span()),
		})
	case variant.Payload == nil && len(pat.Bindings) > 0:
		inf.sink.Emit(diag.Diagnostic{
			Level: diag.LevelError, Code: diag.CodePayloadArity,
			Message: "variant `" + variant.Name.Name + "` has no payload to bind",
			Span:    toDiagSpan(pat.Span()),
		})
		for _, b := range pat.Bindings {
			inf.bindingTypes[b] = inf.ctx.GetErr(b.Span())
		}
	}
}

func (inf *Inferencer) checkExhaustive(ex *ast.Match, enumDecl *ast.EnumDecl, isBool bool, covered map[string]bool) {
	var missing []string
	switch {
	case isBool:
		for _, name := range []string{"true", "false"} {
			if !covered[name] {
				missing = append(missing, name)
			}
		}
	case enumDecl != nil:
		for _, v := range enumDecl.Variants {
			if !covered[v.Name.Name] {
				missing = append(missing, v.Name.Name)
			}
		}
	default:
		return
	}
	if len(missing) == 0 {
		return
	}
	msg := "non-exhaustive match: missing"
	for i, m := range missing {
		if i > 0 {
			msg += ","
		}
		msg += " `" + m + "`"
	}
	inf.sink.Emit(diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.CodeNonExhaustiveMatch,
		Message: msg,
		Span:    toDiagSpan(ex.Span()),
	})
}

package infer

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

func (inf *Inferencer) visitFieldAccess(ex *ast.FieldAccess) typectx.TypeRef {
	baseType := inf.visit(ex.Base)
	resolved := inf.unifier.Resolve(baseType)
	unwrapped := inf.unwrapRefPtr(resolved)
	structDecl, _, args, ok := adtParts(unwrapped)
	if !ok || structDecl == nil {
		inf.emitNotAdt(ex.Span(), unwrapped)
		return inf.ctx.GetErr(ex.Span())
	}
	field := lookupField(structDecl, ex.Field.Name)
	if field == nil {
		inf.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeUnknownField,
			Message: "unknown field `" + ex.Field.Name + "` on `" + structDecl.Name.Name + "`",
			Span:    toDiagSpan(ex.Span()),
		})
		return inf.ctx.GetErr(ex.Span())
	}
	ex.Resolved = field
	subst := adtGenericSubst(structDecl.GenericParams, args)
	return substituteGenerics(inf.ctx, field.Resolved, subst, ex.Span())
}

func (inf *Inferencer) visitMethodCall(ex *ast.MethodCall) typectx.TypeRef {
	baseType := inf.visit(ex.Base)
	resolved := inf.unifier.Resolve(baseType)
	unwrapped := inf.unwrapRefPtr(resolved)
	structDecl, enumDecl, args, ok := adtParts(unwrapped)
	if !ok {
		inf.emitNotAdt(ex.Span(), unwrapped)
		for _, a := range ex.Args {
			inf.visit(a)
		}
		return inf.ctx.GetErr(ex.Span())
	}
	method := lookupMethodOn(structDecl, enumDecl, ex.Method.Name)
	if method == nil {
		inf.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeUnknownField,
			Message: "unknown method `" + ex.Method.Name + "` on `" + adtNameOf(structDecl, enumDecl) + "`",
			Span:    toDiagSpan(ex.Span()),
		})
		for _, a := range ex.Args {
			inf.visit(a)
		}
		return inf.ctx.GetErr(ex.Span())
	}
	ex.Resolved = method
	adtGenerics := adtGenericsOf(structDecl, enumDecl)
	adtSubst := adtGenericSubst(adtGenerics, args)
	ownSubst := inf.freshSubstFor(method.GenericParams, ex.Span())
	combined := make(genSubst, len(adtSubst)+len(ownSubst))
	for k, v := range adtSubst {
		combined[k] = v
	}
	for k, v := range ownSubst {
		combined[k] = v
	}
	params := make([]typectx.TypeRef, len(method.Params))
	for i, p := range method.Params {
		params[i] = substituteGenerics(inf.ctx, p.Resolved, combined, ex.Span())
	}
	ret := substituteGenerics(inf.ctx, method.Resolved, combined, ex.Span())
	inf.unifyCallArgs(ex.Args, params)
	return ret
}

func (inf *Inferencer) visitAdtInit(ex *ast.AdtInit) typectx.TypeRef {
	switch {
	case ex.ResolvedStruct != nil:
		return inf.visitStructInit(ex, ex.ResolvedStruct)
	case ex.ResolvedEnum != nil:
		return inf.visitEnumInit(ex, ex.ResolvedEnum)
	default:
		return inf.visitAnonymousInit(ex)
	}
}

func (inf *Inferencer) visitAnonymousInit(ex *ast.AdtInit) typectx.TypeRef {
	expected, ok := inf.peekExpected()
	if !ok {
		inf.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeAmbiguousAdtInit,
			Message: "cannot infer struct type for anonymous initializer",
			Span:    toDiagSpan(ex.Span()),
		})
		for _, mem := range ex.Members {
			if mem.Init != nil {
				inf.visit(mem.Init)
			}
		}
		return inf.ctx.GetErr(ex.Span())
	}
	resolved := inf.unifier.Resolve(expected)
	unwrapped := inf.unwrapRefPtr(resolved)
	structDecl, enumDecl, _, ok := adtParts(unwrapped)
	if !ok {
		inf.emitNotAdt(ex.Span(), unwrapped)
		for _, mem := range ex.Members {
			if mem.Init != nil {
				inf.visit(mem.Init)
			}
		}
		return inf.ctx.GetErr(ex.Span())
	}
	if structDecl != nil {
		ex.ResolvedStruct = structDecl
		return inf.visitStructInit(ex, structDecl)
	}
	ex.ResolvedEnum = enumDecl
	for _, v := range enumDecl.Variants {
		if len(ex.Members) == 1 && v.Name.Name == ex.Members[0].Field.Name {
			ex.ResolvedVariant = v
			break
		}
	}
	return inf.visitEnumInit(ex, enumDecl)
}

func (inf *Inferencer) visitStructInit(ex *ast.AdtInit, s *ast.StructDecl) typectx.TypeRef {
	subst := inf.freshSubstFor(s.GenericParams, ex.Span())
	if len(ex.TypeArgs) > 0 {
		inf.bindExplicitTypeArgs(s.GenericParams, ex.TypeArgs, subst)
	}
	fieldByName := make(map[string]*ast.Field, len(s.Fields))
	for _, f := range s.Fields {
		fieldByName[f.Name.Name] = f
	}
	for _, mem := range ex.Members {
		f, ok := fieldByName[mem.Field.Name]
		if !ok {
			if mem.Init != nil {
				inf.visit(mem.Init)
			}
			continue
		}
		declaredType := substituteGenerics(inf.ctx, f.Resolved, subst, mem.Span())
		var initType typectx.TypeRef
		switch {
		case mem.Init != nil:
			inf.pushExpected(declaredType)
			initType = inf.visit(mem.Init)
			inf.popExpected()
		case f.Default != nil:
			initType = *f.Default.TypeSlot()
		default:
			continue
		}
		inf.unifier.UnifyContext(initType, declaredType, "field `"+f.Name.Name+"`")
	}
	return inf.adtOrApplied(s.Name.Name, s, s.GenericParams, subst, ex.Span())
}

func (inf *Inferencer) visitEnumInit(ex *ast.AdtInit, e *ast.EnumDecl) typectx.TypeRef {
	subst := inf.freshSubstFor(e.GenericParams, ex.Span())
	if len(ex.TypeArgs) > 0 {
		inf.bindExplicitTypeArgs(e.GenericParams, ex.TypeArgs, subst)
	}
	if ex.ResolvedVariant != nil && len(ex.Members) == 1 {
		mem := ex.Members[0]
		v := ex.ResolvedVariant
		switch {
		case v.Payload != nil && mem.Init != nil:
			declaredType := substituteGenerics(inf.ctx, v.Resolved, subst, mem.Span())
			inf.pushExpected(declaredType)
			initType := inf.visit(mem.Init)
			inf.popExpected()
			inf.unifier.UnifyContext(initType, declaredType, "variant `"+v.Name.Name+"` payload")
		case v.Payload != nil && mem.Init == nil:
			inf.sink.Emit(diag.Diagnostic{
				Level: diag.LevelError, Code: diag.CodePayloadArity,
				Message: "variant `" + v.Name.Name + "` requires a payload",
				Span:    toDiagSpan(mem.Span()),
			})
		case v.Payload == nil && mem.Init != nil:
			inf.sink.Emit(diag.Diagnostic{
				Level: diag.LevelError, Code: diag.CodePayloadArity,
				Message: "variant `" + v.Name.Name + "` has no payload",
				Span:    toDiagSpan(mem.Span()),
			})
			inf.visit(mem.Init)
		}
	} else {
		for _, mem := range ex.Members {
			if mem.Init != nil {
				inf.visit(mem.Init)
			}
		}
	}
	return inf.adtOrApplied(e.Name.Name, e, e.GenericParams, subst, ex.Span())
}

func (inf *Inferencer) adtOrApplied(name string, decl typectx.AdtDecl, generics []*ast.GenericParam, subst genSubst, span lexer.Span) typectx.TypeRef {
	adtRef := inf.ctx.GetAdt(name, decl, span)
	if len(generics) == 0 {
		return adtRef
	}
	args := make([]typectx.TypeRef, len(generics))
	for i, g := range generics {
		args[i] = subst[g]
	}
	return inf.ctx.GetApplied(adtRef, args, span)
}

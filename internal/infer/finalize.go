package infer

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// finalize replaces ref with its Unifier representative, defaulting an
// unbound Var(Int) to i32 and an unbound Var(Float) to f64 (spec.md
// §4.3.1/§8.1's defaulting rule). An unbound Var(Any) or Var(Adt) is returned
// as it is.
func (inf *Inferencer) finalize(ref typectx.TypeRef) typectx.TypeRef {
	resolved := inf.unifier.Resolve(ref)
	if v, ok := resolved.Handle.(*typectx.Var); ok {
		switch v.Domain() {
		case typectx.DomainInt:
			return inf.ctx.GetBuiltin(typectx.I32, resolved.Span)
		case typectx.DomainFloat:
			return inf.ctx.GetBuiltin(typectx.F64, resolved.Span)
		}
	}
	return resolved
}

func (inf *Inferencer) finalizeSlot(slot *typectx.TypeRef) {
	*slot = inf.finalize(*slot)
}

func (inf *Inferencer) finalizeItem(item ast.Decl) {
	switch d := item.(type) {
	case *ast.FnDecl:
		inf.finalizeFn(d)
	case *ast.StructDecl:
		inf.finalizeStruct(d)
	case *ast.EnumDecl:
		inf.finalizeEnum(d)
	}
}

func (inf *Inferencer) finalizeStruct(s *ast.StructDecl) {
	inf.finalizeSlot(&s.Resolved)
	for _, f := range s.Fields {
		inf.finalizeSlot(&f.Resolved)
		if f.Default != nil {
			inf.finalizeExpr(f.Default)
		}
	}
	for _, m := range s.Methods {
		inf.finalizeFn(m)
	}
}

func (inf *Inferencer) finalizeEnum(e *ast.EnumDecl) {
	inf.finalizeSlot(&e.Resolved)
	for _, v := range e.Variants {
		inf.finalizeSlot(&v.Resolved)
	}
	for _, m := range e.Methods {
		inf.finalizeFn(m)
	}
}

func (inf *Inferencer) finalizeFn(fn *ast.FnDecl) {
	inf.finalizeSlot(&fn.Resolved)
	if fn.Receiver != nil {
		inf.finalizeSlot(&fn.Receiver.Resolved)
	}
	for _, p := range fn.Params {
		inf.finalizeSlot(&p.Resolved)
	}
	for _, g := range fn.GenericParams {
		inf.finalizeSlot(&g.Slot)
	}
	if fn.Body != nil {
		inf.finalizeBlock(fn.Body)
	}
}

func (inf *Inferencer) finalizeBlock(b *ast.Block) {
	for _, st := range b.Stmts {
		inf.finalizeStmt(st)
	}
}

func (inf *Inferencer) finalizeStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		if st.Value != nil {
			inf.finalizeExpr(st.Value)
		}
	case *ast.DeferStmt:
		inf.finalizeExpr(st.Value)
	case *ast.IfStmt:
		inf.finalizeExpr(st.Cond)
		inf.finalizeBlock(st.Then)
		if st.Else != nil {
			inf.finalizeBlock(st.Else)
		}
	case *ast.WhileStmt:
		inf.finalizeExpr(st.Cond)
		inf.finalizeBlock(st.Body)
	case *ast.ForStmt:
		inf.finalizeExpr(st.Range)
		if t, ok := inf.bindingTypes[st]; ok {
			inf.bindingTypes[st] = inf.finalize(t)
		}
		inf.finalizeBlock(st.Body)
	case *ast.DeclStmt:
		inf.finalizeLocal(st.Decl)
	case *ast.ExprStmt:
		inf.finalizeExpr(st.Value)
	}
}

func (inf *Inferencer) finalizeLocal(l *ast.Local) {
	inf.finalizeSlot(&l.Resolved)
	if l.Init != nil {
		inf.finalizeExpr(l.Init)
	}
}

func (inf *Inferencer) finalizeExpr(e ast.Expr) {
	slot := e.TypeSlot()
	inf.finalizeSlot(slot)
	switch ex := e.(type) {
	case *ast.RangeLiteral:
		inf.finalizeExpr(ex.Start)
		inf.finalizeExpr(ex.End)
	case *ast.TupleLiteral:
		for _, el := range ex.Elems {
			inf.finalizeExpr(el)
		}
	case *ast.FunCall:
		inf.finalizeExpr(ex.Callee)
		for _, a := range ex.Args {
			inf.finalizeExpr(a)
		}
	case *ast.BinaryOp:
		inf.finalizeExpr(ex.Lhs)
		inf.finalizeExpr(ex.Rhs)
	case *ast.UnaryOp:
		inf.finalizeExpr(ex.Operand)
	case *ast.AdtInit:
		for _, mem := range ex.Members {
			if mem.Init != nil {
				inf.finalizeExpr(mem.Init)
			}
		}
	case *ast.FieldAccess:
		inf.finalizeExpr(ex.Base)
	case *ast.MethodCall:
		inf.finalizeExpr(ex.Base)
		for _, a := range ex.Args {
			inf.finalizeExpr(a)
		}
	case *ast.Match:
		inf.finalizeExpr(ex.Scrutinee)
		for _, arm := range ex.Arms {
			for _, p := range arm.Patterns {
				inf.finalizePattern(p)
			}
			if arm.Body != nil {
				inf.finalizeBlock(arm.Body)
			}
			if arm.Result != nil {
				inf.finalizeExpr(arm.Result)
			}
		}
	case *ast.IntrinsicCall:
		for _, a := range ex.Args {
			inf.finalizeExpr(a)
		}
	case *ast.BlockExpr:
		inf.finalizeBlock(ex.Block)
	}
}

func (inf *Inferencer) finalizePattern(p ast.Pattern) {
	switch pat := p.(type) {
	case *ast.LiteralPattern:
		inf.finalizeExpr(pat.Value)
	case *ast.VariantPattern:
		for _, b := range pat.Bindings {
			if t, ok := inf.bindingTypes[b]; ok {
				inf.bindingTypes[b] = inf.finalize(t)
			}
		}
	}
}

package infer

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

func (inf *Inferencer) visitBlock(b *ast.Block) {
	for _, st := range b.Stmts {
		inf.visitStmt(st)
	}
}

func (inf *Inferencer) visitStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		inf.visitReturn(st)
	case *ast.DeferStmt:
		inf.visit(st.Value)
	case *ast.IfStmt:
		inf.visitIf(st)
	case *ast.WhileStmt:
		inf.visitWhile(st)
	case *ast.ForStmt:
		inf.visitFor(st)
	case *ast.DeclStmt:
		inf.visitLocal(st.Decl)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// no type consequences
	case *ast.ExprStmt:
		inf.visit(st.Value)
	}
}

func (inf *Inferencer) visitReturn(st *ast.ReturnStmt) {
	retType, ok := inf.currentReturnType()
	if st.Value == nil {
		if ok {
			inf.unifier.UnifyContext(inf.ctx.GetBuiltin(typectx.Null, st.Span()), retType, "return value")
		}
		return
	}
	if ok {
		inf.pushExpected(retType)
		vt := inf.visit(st.Value)
		inf.popExpected()
		inf.unifier.UnifyContext(vt, retType, "return value")
		return
	}
	inf.visit(st.Value)
}

func (inf *Inferencer) visitIf(st *ast.IfStmt) {
	cond := inf.visit(st.Cond)
	inf.unifier.UnifyContext(cond, inf.ctx.GetBuiltin(typectx.Bool, st.Cond.Span()), "if condition")
	inf.visitBlock(st.Then)
	if st.Else != nil {
		inf.visitBlock(st.Else)
	}
}

func (inf *Inferencer) visitWhile(st *ast.WhileStmt) {
	cond := inf.visit(st.Cond)
	inf.unifier.UnifyContext(cond, inf.ctx.GetBuiltin(typectx.Bool, st.Cond.Span()), "while condition")
	inf.visitBlock(st.Body)
}

// visitFor handles `for name in range { body }`. The loop variable's type is
// the range's element type: if Range is itself a RangeLiteral its bounds'
// type drives the element type directly (spec.md's Range is otherwise
// opaque over element type), falling back to a fresh Var(Int) so a bare
// `0..n` written without literal bounds elsewhere still infers sensibly.
func (inf *Inferencer) visitFor(st *ast.ForStmt) {
	var elemType typectx.TypeRef
	if rl, ok := st.Range.(*ast.RangeLiteral); ok {
		inf.visit(rl)
		elemType = *rl.Start.TypeSlot()
	} else {
		inf.visit(st.Range)
		elemType = inf.ctx.GetVar(typectx.DomainInt, st.Span())
	}
	inf.bindingTypes[st] = elemType
	inf.visitBlock(st.Body)
}

// visitLocal implements the four shapes of a local declaration (spec.md
// §4.3.1): declared type plus initializer (push expected, unify both
// against the declared slot), declared type alone, initializer alone (the
// local's type becomes the initializer's), or neither (a fresh Var(Any),
// left for later unification from use).
func (inf *Inferencer) visitLocal(l *ast.Local) {
	switch {
	case l.Declared != nil && l.Init != nil:
		declaredType := l.Resolved
		inf.pushExpected(declaredType)
		initType := inf.visit(l.Init)
		inf.popExpected()
		inf.unifier.UnifyContext(initType, declaredType, "initializer of `"+l.Name.Name+"`")
	case l.Declared != nil:
		// l.Resolved was already set by the resolver from the declared type.
	case l.Init != nil:
		initType := inf.visit(l.Init)
		l.Resolved = initType
	default:
		l.Resolved = inf.ctx.GetVar(typectx.DomainAny, l.Span())
	}
}

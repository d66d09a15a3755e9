package infer

import (
	"fmt"

	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// visit implements the per-expression contract table in spec.md §4.3.2: it
// computes e's type and unifies it with e's own type slot (a fresh Var the
// parser seeded), then returns the slot — every expression downstream reads
// its type back through TypeSlot, so the slot is always the canonical
// reference.
func (inf *Inferencer) visit(e ast.Expr) typectx.TypeRef {
	var computed typectx.TypeRef
	switch ex := e.(type) {
	case *ast.IntLiteral:
		computed = inf.ctx.GetVar(typectx.DomainInt, ex.Span())
	case *ast.FloatLiteral:
		computed = inf.ctx.GetVar(typectx.DomainFloat, ex.Span())
	case *ast.BoolLiteral:
		computed = inf.ctx.GetBuiltin(typectx.Bool, ex.Span())
	case *ast.CharLiteral:
		computed = inf.ctx.GetBuiltin(typectx.Char, ex.Span())
	case *ast.StrLiteral:
		computed = inf.ctx.GetBuiltin(typectx.String, ex.Span())
	case *ast.RangeLiteral:
		computed = inf.visitRange(ex)
	case *ast.TupleLiteral:
		computed = inf.visitTuple(ex)
	case *ast.DeclRef:
		computed = inf.visitDeclRef(ex)
	case *ast.FunCall:
		computed = inf.visitFunCall(ex)
	case *ast.BinaryOp:
		computed = inf.visitBinaryOp(ex)
	case *ast.UnaryOp:
		computed = inf.visitUnaryOp(ex)
	case *ast.AdtInit:
		computed = inf.visitAdtInit(ex)
	case *ast.FieldAccess:
		computed = inf.visitFieldAccess(ex)
	case *ast.MethodCall:
		computed = inf.visitMethodCall(ex)
	case *ast.Match:
		computed = inf.visitMatchExpr(ex)
	case *ast.IntrinsicCall:
		computed = inf.visitIntrinsic(ex)
	case *ast.BlockExpr:
		computed = inf.visitBlockExpr(ex)
	default:
		computed = inf.ctx.GetErr(e.Span())
	}
	slot := e.TypeSlot()
	inf.unifier.Unify(*slot, computed)
	return *slot
}

func (inf *Inferencer) visitRange(ex *ast.RangeLiteral) typectx.TypeRef {
	s := inf.visit(ex.Start)
	en := inf.visit(ex.End)
	inf.unifier.UnifyContext(s, en, "range bounds")
	return inf.ctx.GetBuiltin(typectx.Range, ex.Span())
}

func (inf *Inferencer) visitTuple(ex *ast.TupleLiteral) typectx.TypeRef {
	elems := make([]typectx.TypeRef, len(ex.Elems))
	for i, el := range ex.Elems {
		elems[i] = inf.visit(el)
	}
	return inf.ctx.GetTuple(elems, ex.Span())
}

func (inf *Inferencer) visitDeclRef(ex *ast.DeclRef) typectx.TypeRef {
	switch d := ex.Decl.(type) {
	case *ast.FnDecl:
		return inf.instantiateFn(d, ex.Span())
	case *ast.Param:
		return d.Resolved
	case *ast.Local:
		return d.Resolved
	case *ast.GenericParam:
		return d.Slot
	case *ast.ForStmt:
		if t, ok := inf.bindingTypes[d]; ok {
			return t
		}
		return inf.ctx.GetVar(typectx.DomainInt, ex.Span())
	case *ast.PatternBinding:
		if t, ok := inf.bindingTypes[d]; ok {
			return t
		}
		return inf.ctx.GetErr(ex.Span())
	default:
		return inf.ctx.GetErr(ex.Span())
	}
}

func (inf *Inferencer) unifyCallArgs(args []ast.Expr, params []typectx.TypeRef) {
	n := len(args)
	if len(params) < n {
		n = len(params)
	}
	for i := 0; i < n; i++ {
		inf.pushExpected(params[i])
		at := inf.visit(args[i])
		inf.popExpected()
		inf.unifier.UnifyContext(at, params[i], fmt.Sprintf("argument %d", i+1))
	}
	for i := n; i < len(args); i++ {
		inf.visit(args[i])
	}
	if len(args) != len(params) {
		span := lexer.Span{}
		if len(args) > 0 {
			span = args[len(args)-1].Span()
		}
		inf.sink.Emit(diag.Diagnostic{
			Level:   diag.LevelError,
			Code:    diag.CodeArityMismatch,
			Message: fmt.Sprintf("expected %d argument(s), found %d", len(params), len(args)),
			Span:    toDiagSpan(span),
		})
	}
}

func (inf *Inferencer) visitFunCall(ex *ast.FunCall) typectx.TypeRef {
	if ex.Resolved != nil {
		params, ret := inf.instantiateSignature(ex.Resolved, nil, ex.Callee.Span())
		fnType := inf.ctx.GetFun(params, ret, ex.Callee.Span())
		if _, ok := ex.Callee.(*ast.DeclRef); ok {
			slot := ex.Callee.TypeSlot()
			inf.unifier.Unify(*slot, fnType)
		} else {
			inf.visit(ex.Callee)
		}
		inf.unifyCallArgs(ex.Args, params)
		return ret
	}
	calleeType := inf.visit(ex.Callee)
	root := inf.unifier.Resolve(calleeType)
	fun, ok := root.Handle.(*typectx.Fun)
	if !ok {
		for _, a := range ex.Args {
			inf.visit(a)
		}
		if !root.IsErr() {
			inf.sink.Emit(diag.Diagnostic{
				Level: diag.LevelError, Code: diag.CodeTypeMismatch,
				Message: fmt.Sprintf("`%s` is not callable", root.String()),
				Span:    toDiagSpan(ex.Span()),
			})
		}
		return inf.ctx.GetErr(ex.Span())
	}
	inf.unifyCallArgs(ex.Args, fun.Params)
	return fun.Return
}

func (inf *Inferencer) visitBinaryOp(ex *ast.BinaryOp) typectx.TypeRef {
	lt := inf.visit(ex.Lhs)
	rt := inf.visit(ex.Rhs)
	switch ex.Op {
	case ast.OpAnd, ast.OpOr:
		boolT := inf.ctx.GetBuiltin(typectx.Bool, ex.Span())
		inf.unifier.UnifyContext(lt, boolT, "logical operand")
		inf.unifier.UnifyContext(rt, boolT, "logical operand")
		return boolT
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		inf.unifier.UnifyContext(lt, rt, "comparison operands")
		return inf.ctx.GetBuiltin(typectx.Bool, ex.Span())
	case ast.OpEq, ast.OpNotEq:
		inf.unifier.UnifyContext(lt, rt, "equality operands")
		return inf.ctx.GetBuiltin(typectx.Null, ex.Span())
	case ast.OpAssign:
		inf.unifier.UnifyContext(lt, rt, "assignment")
		return inf.ctx.GetBuiltin(typectx.Null, ex.Span())
	default: // arithmetic: +, -, *, /, %
		inf.unifier.UnifyContext(lt, rt, "arithmetic operands")
		return lt
	}
}

func (inf *Inferencer) visitUnaryOp(ex *ast.UnaryOp) typectx.TypeRef {
	switch ex.Op {
	case ast.OpNot:
		t := inf.visit(ex.Operand)
		boolT := inf.ctx.GetBuiltin(typectx.Bool, ex.Span())
		inf.unifier.UnifyContext(t, boolT, "logical negation operand")
		return boolT
	case ast.OpAddr:
		t := inf.visit(ex.Operand)
		return inf.ctx.GetRef(t, ex.Span())
	case ast.OpDeref:
		t := inf.visit(ex.Operand)
		root := inf.unifier.Resolve(t)
		switch h := root.Handle.(type) {
		case *typectx.Ptr:
			return h.Pointee
		case *typectx.Ref:
			return h.Pointee
		default:
			if !root.IsErr() {
				inf.sink.Emit(diag.Diagnostic{
					Level: diag.LevelError, Code: diag.CodeTypeMismatch,
					Message: fmt.Sprintf("cannot dereference `%s`", root.String()),
					Span:    toDiagSpan(ex.Span()),
				})
			}
			return inf.ctx.GetErr(ex.Span())
		}
	default: // `-x` and other prefix arithmetic operators: same type as operand
		return inf.visit(ex.Operand)
	}
}

func (inf *Inferencer) visitIntrinsic(ex *ast.IntrinsicCall) typectx.TypeRef {
	if ex.Kind == ast.IntrinsicTypeof {
		if len(ex.Args) == 0 {
			return inf.ctx.GetErr(ex.Span())
		}
		t := inf.visit(ex.Args[0])
		for _, a := range ex.Args[1:] {
			inf.visit(a)
		}
		return t
	}
	for _, a := range ex.Args {
		inf.visit(a)
	}
	return inf.ctx.GetBuiltin(typectx.Null, ex.Span())
}

func (inf *Inferencer) visitBlockExpr(ex *ast.BlockExpr) typectx.TypeRef {
	inf.visitBlock(ex.Block)
	for i := len(ex.Block.Stmts) - 1; i >= 0; i-- {
		if tail, ok := ex.Block.Stmts[i].(*ast.ExprStmt); ok && tail.Tail {
			return *tail.Value.TypeSlot()
		}
	}
	return inf.ctx.GetBuiltin(typectx.Null, ex.Span())
}

package ast

import "github.com/malphas-lang/malphas-lang/internal/lexer"

// NamedTypeExpr is a bare type name as written in source: a primitive
// (`i32`), an ADT name (`Color`), or a generic parameter (`T`).
type NamedTypeExpr struct {
	baseNode
	Name *Ident
}

func (t *NamedTypeExpr) typeNode() {}

// AppliedTypeExpr is `Base<Args...>` as written in source.
type AppliedTypeExpr struct {
	baseNode
	Base TypeExpr
	Args []TypeExpr
}

func (t *AppliedTypeExpr) typeNode() {}

// PtrTypeExpr is `*T` as written in source.
type PtrTypeExpr struct {
	baseNode
	Pointee TypeExpr
}

func (t *PtrTypeExpr) typeNode() {}

// RefTypeExpr is `&T` as written in source.
type RefTypeExpr struct {
	baseNode
	Pointee TypeExpr
}

func (t *RefTypeExpr) typeNode() {}

// TupleTypeExpr is `(T1, T2, ...)` as written in source.
type TupleTypeExpr struct {
	baseNode
	Elems []TypeExpr
}

func (t *TupleTypeExpr) typeNode() {}

func NewNamedTypeExpr(name *Ident, span lexer.Span) *NamedTypeExpr {
	return &NamedTypeExpr{baseNode: baseNode{span: span}, Name: name}
}

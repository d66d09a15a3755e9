// Package ast defines the AST nodes consumed by the name resolver and type
// inferencer (spec.md §3.2). The parser is the only producer of these nodes;
// the core only ever mutates them in place (binding declaration references,
// overwriting type slots).
package ast

import (
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// Node is implemented by every AST node; every node carries a non-empty
// source span.
type Node interface {
	Span() lexer.Span
}

// Decl is a module-level or local declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression; every expression owns a type reference slot that
// starts as a fresh Var and is overwritten as inference progresses.
type Expr interface {
	Node
	exprNode()
	TypeSlot() *typectx.TypeRef
}

// TypeExpr is a type as written in source, before resolution.
type TypeExpr interface {
	Node
	typeNode()
}

// Pattern is a match-arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// Visibility is Public or Private, attached to every top-level item.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// Mutability is fixed at parse time for every local declaration.
type Mutability int

const (
	MutConst Mutability = iota
	MutVar
)

// baseNode factors out the span every node carries.
type baseNode struct {
	span lexer.Span
}

func (b baseNode) Span() lexer.Span { return b.span }

// SetSpan is used by the parser to stamp a node's span after its extent is
// known (typically once its closing token has been consumed).
func (b *baseNode) SetSpan(s lexer.Span) { b.span = s }

// ExprBase factors out the type slot every expression carries.
type ExprBase struct {
	baseNode
	Type typectx.TypeRef
}

func (e *ExprBase) TypeSlot() *typectx.TypeRef { return &e.Type }

func NewExprBase(span lexer.Span, fresh typectx.TypeRef) ExprBase {
	return ExprBase{baseNode: baseNode{span: span}, Type: fresh}
}

// Module is a single parsed source file: a path, its items, and its
// import/use directives.
type Module struct {
	baseNode
	Path    string
	Imports []*ImportDecl
	Uses    []*UseDecl
	Items   []Decl
}

func NewModule(path string, span lexer.Span) *Module {
	return &Module{baseNode: baseNode{span: span}, Path: path}
}

// Program is the set of modules the driver compiles together.
type Program struct {
	Modules []*Module
}

package ast

import (
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// BinOp is a binary operator token.
type BinOp string

const (
	OpAdd    BinOp = "+"
	OpSub    BinOp = "-"
	OpMul    BinOp = "*"
	OpDiv    BinOp = "/"
	OpMod    BinOp = "%"
	OpAnd    BinOp = "&&"
	OpOr     BinOp = "||"
	OpLt     BinOp = "<"
	OpLe     BinOp = "<="
	OpGt     BinOp = ">"
	OpGe     BinOp = ">="
	OpEq     BinOp = "=="
	OpNotEq  BinOp = "!="
	OpAssign BinOp = "="
)

// UnOp is a unary operator token.
type UnOp string

const (
	OpNot    UnOp = "!"
	OpNeg    UnOp = "-"
	OpAddr   UnOp = "&"
	OpDeref  UnOp = "*"
)

// IntrinsicKind is one of the small closed set of intrinsic calls.
type IntrinsicKind string

const (
	IntrinsicPanic       IntrinsicKind = "panic"
	IntrinsicAssert      IntrinsicKind = "assert"
	IntrinsicUnreachable IntrinsicKind = "unreachable"
	IntrinsicTypeof      IntrinsicKind = "typeof"
)

// IntLiteral is an integer literal; its raw lexeme is kept for later width
// validation by a downstream pass (not the core's concern).
type IntLiteral struct {
	ExprBase
	Raw string
}

func (e *IntLiteral) exprNode() {}

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	ExprBase
	Raw string
}

func (e *FloatLiteral) exprNode() {}

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	ExprBase
	Value bool
}

func (e *BoolLiteral) exprNode() {}

// CharLiteral is a single-quoted char literal.
type CharLiteral struct {
	ExprBase
	Value rune
}

func (e *CharLiteral) exprNode() {}

// StrLiteral is a double-quoted string literal.
type StrLiteral struct {
	ExprBase
	Value string
}

func (e *StrLiteral) exprNode() {}

// RangeLiteral is `start..end` or `start..=end`.
type RangeLiteral struct {
	ExprBase
	Start, End Expr
	Inclusive  bool
}

func (e *RangeLiteral) exprNode() {}

// TupleLiteral is `(e1, e2, ...)`.
type TupleLiteral struct {
	ExprBase
	Elems []Expr
}

func (e *TupleLiteral) exprNode() {}

// DeclRef is a (possibly qualified) identifier reference. Decl is populated
// by the resolver and holds whatever concrete node the name binds to:
// *FnDecl, *StructDecl, *EnumDecl, *Local, *Param, *ForStmt (loop variable),
// or *PatternBinding.
type DeclRef struct {
	ExprBase
	Path []*Ident // len 1 for unqualified names
	Decl any      // resolved declaration; nil until resolution binds it
}

func (e *DeclRef) exprNode() {}

func (e *DeclRef) Name() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[len(e.Path)-1].Name
}

// FunCall is `callee(args...)`.
type FunCall struct {
	ExprBase
	Callee   Expr
	Args     []Expr
	Resolved *FnDecl // the resolved function, populated by the resolver
}

func (e *FunCall) exprNode() {}

// BinaryOp is `lhs op rhs`.
type BinaryOp struct {
	ExprBase
	Op       BinOp
	Lhs, Rhs Expr
}

func (e *BinaryOp) exprNode() {}

// UnaryOp is `op operand`, prefix or postfix (only `&`, `&mut`, `*`, `!`, `-`
// are prefix in this language; IsPrefix is carried for parity with spec.md).
type UnaryOp struct {
	ExprBase
	Op        UnOp
	Operand   Expr
	IsPrefix  bool
}

func (e *UnaryOp) exprNode() {}

// MemberInit is one field/variant-payload initializer inside an AdtInit.
type MemberInit struct {
	baseNode
	Field *Ident
	Init  Expr // nil for shorthand `{ field }` init
}

func (m *MemberInit) Span() lexer.Span { return m.baseNode.span }

// AdtInit is `TypeName { field: val, ... }` (for an enum, `TypeName { Variant }`
// or `TypeName { Variant: payload }`), or,
// when TypeName is nil, an anonymous initializer whose target type is
// recovered from context by the inferencer (spec.md §9 open question 2).
type AdtInit struct {
	ExprBase
	TypeName  []*Ident // nil for anonymous init
	TypeArgs  []TypeExpr
	Members   []*MemberInit
	// ResolvedStruct/ResolvedEnum/ResolvedVariant are populated by the
	// resolver when TypeName is present, or by the inferencer once an
	// anonymous init's target type is recovered from the expected-type stack.
	ResolvedStruct  *StructDecl
	ResolvedEnum    *EnumDecl
	ResolvedVariant *Variant
}

func (e *AdtInit) exprNode() {}

// FieldAccess is `base.field`.
type FieldAccess struct {
	ExprBase
	Base     Expr
	Field    *Ident
	Resolved *Field // populated by the inferencer once base's type is known
}

func (e *FieldAccess) exprNode() {}

// MethodCall is `base.method(args...)`.
type MethodCall struct {
	ExprBase
	Base     Expr
	Method   *Ident
	Args     []Expr
	Resolved *FnDecl
}

func (e *MethodCall) exprNode() {}

// MatchArm is one arm of a Match expression.
type MatchArm struct {
	baseNode
	Patterns []Pattern // pattern alternation: >1 when arm covers several patterns
	Body     *Block    // optional; the parser leaves it nil (a `=> { ... }` arm is a BlockExpr Result)
	Result   Expr      // the arm's return expression (last stmt of Body, or this)
}

func (a *MatchArm) Span() lexer.Span { return a.baseNode.span }

// Match is `match scrutinee { arms... }`.
type Match struct {
	ExprBase
	Scrutinee Expr
	Arms      []*MatchArm
}

func (e *Match) exprNode() {}

// IntrinsicCall is `panic(...)`, `assert(...)`, `unreachable()`, `typeof(...)`.
type IntrinsicCall struct {
	ExprBase
	Kind Intrinsic
	Args []Expr
}

type Intrinsic = IntrinsicKind

func (e *IntrinsicCall) exprNode() {}

// BlockExpr is a block used in expression position (its tail ExprStmt is its
// value), e.g. a `{ ... }` match-arm result.
type BlockExpr struct {
	ExprBase
	Block *Block
}

func (e *BlockExpr) exprNode() {}

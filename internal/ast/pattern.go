package ast

import "github.com/malphas-lang/malphas-lang/internal/lexer"

// WildcardPattern matches anything, binding nothing.
type WildcardPattern struct {
	baseNode
}

func (p *WildcardPattern) patternNode() {}

// LiteralPattern matches by equality with a literal expression.
type LiteralPattern struct {
	baseNode
	Value Expr
}

func (p *LiteralPattern) patternNode() {}

// PatternBinding is one payload binding introduced by a VariantPattern, e.g.
// `.Some(x)` binds `x`.
type PatternBinding struct {
	baseNode
	Name *Ident
}

// VariantPattern matches an enum variant, optionally binding its payload.
type VariantPattern struct {
	baseNode
	VariantName *Ident
	Bindings    []*PatternBinding
	Resolved    *Variant // populated by the inferencer
}

func (p *VariantPattern) patternNode() {}

func NewWildcardPattern(span lexer.Span) *WildcardPattern {
	return &WildcardPattern{baseNode: baseNode{span: span}}
}

package parser

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// parseType parses a type expression, assuming curTok is its first token.
func (p *Parser) parseType() ast.TypeExpr {
	switch p.curTok.Type {
	case lexer.IDENT:
		return p.parseNamedOrAppliedType()
	case lexer.ASTERISK:
		start := p.curTok.Span
		p.nextToken()
		pointee := p.parseType()
		if pointee == nil {
			return nil
		}
		t := &ast.PtrTypeExpr{Pointee: pointee}
		t.SetSpan(mergeSpan(start, pointee.Span()))
		return t
	case lexer.AMPERSAND:
		start := p.curTok.Span
		p.nextToken()
		pointee := p.parseType()
		if pointee == nil {
			return nil
		}
		t := &ast.RefTypeExpr{Pointee: pointee}
		t.SetSpan(mergeSpan(start, pointee.Span()))
		return t
	case lexer.LPAREN:
		start := p.curTok.Span
		elems := parseCommaList(p, lexer.RPAREN, func() (ast.TypeExpr, bool) {
			t := p.parseType()
			return t, t != nil
		})
		t := &ast.TupleTypeExpr{Elems: elems}
		t.SetSpan(mergeSpan(start, p.curTok.Span))
		return t
	default:
		p.errorf(p.curTok.Span, "expected type expression")
		return nil
	}
}

// parseNamedOrAppliedType parses `Name` or `Name<Args...>`.
func (p *Parser) parseNamedOrAppliedType() ast.TypeExpr {
	start := p.curTok.Span
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	named := ast.NewNamedTypeExpr(name, start)

	if p.peekTok.Type != lexer.LT {
		return named
	}
	p.nextToken() // '<'
	args := parseCommaList(p, lexer.GT, func() (ast.TypeExpr, bool) {
		t := p.parseType()
		return t, t != nil
	})
	applied := &ast.AppliedTypeExpr{Base: named, Args: args}
	applied.SetSpan(mergeSpan(start, p.curTok.Span))
	return applied
}

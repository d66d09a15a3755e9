package parser

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// parsePattern parses one match-arm pattern: a wildcard `_`, a literal, or a
// `.Variant[(binding)]` enum-variant pattern. curTok starts on the pattern's
// first token.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curTok.Type {
	case lexer.IDENT:
		if p.curTok.Literal == "_" {
			return ast.NewWildcardPattern(p.curTok.Span)
		}
		return p.parseVariantPattern()
	case lexer.DOT:
		p.nextToken()
		return p.parseVariantPattern()
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE, lexer.MINUS:
		start := p.curTok.Span
		val := p.parseExpression(precUnary)
		if val == nil {
			return nil
		}
		pat := &ast.LiteralPattern{Value: val}
		pat.SetSpan(mergeSpan(start, val.Span()))
		return pat
	default:
		p.errorf(p.curTok.Span, "expected pattern")
		return nil
	}
}

// parseVariantPattern parses `Name[(binding[, binding...])]`, assuming curTok
// is the variant's name identifier.
func (p *Parser) parseVariantPattern() ast.Pattern {
	if p.curTok.Type != lexer.IDENT {
		p.errorf(p.curTok.Span, "expected variant name in pattern")
		return nil
	}
	start := p.curTok.Span
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)

	var bindings []*ast.PatternBinding
	if p.peekTok.Type == lexer.LPAREN {
		p.nextToken()
		names := parseCommaList(p, lexer.RPAREN, func() (*ast.PatternBinding, bool) {
			if p.curTok.Type != lexer.IDENT {
				p.errorf(p.curTok.Span, "expected binding name")
				return nil, false
			}
			b := &ast.PatternBinding{Name: ast.NewIdent(p.curTok.Literal, p.curTok.Span)}
			b.SetSpan(p.curTok.Span)
			return b, true
		})
		bindings = names
	}

	pat := &ast.VariantPattern{VariantName: name, Bindings: bindings}
	pat.SetSpan(mergeSpan(start, p.curTok.Span))
	return pat
}

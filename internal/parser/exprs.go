package parser

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return precLowest
}

// parseExpression is the Pratt-parsing entry point: it parses one prefix
// expression, then repeatedly folds in infix/postfix operators whose
// precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix, ok := p.prefixFns[p.curTok.Type]
	if !ok {
		p.errorf(p.curTok.Span, "unexpected token '"+string(p.curTok.Type)+"' in expression")
		return nil
	}
	left := prefix()

	for left != nil && p.peekTok.Type != lexer.SEMICOLON && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekTok.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntLiteral() ast.Expr {
	span := p.curTok.Span
	return &ast.IntLiteral{ExprBase: ast.NewExprBase(span, p.fresh(span)), Raw: p.curTok.Raw}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	span := p.curTok.Span
	return &ast.FloatLiteral{ExprBase: ast.NewExprBase(span, p.fresh(span)), Raw: p.curTok.Raw}
}

func (p *Parser) parseStrLiteral() ast.Expr {
	span := p.curTok.Span
	return &ast.StrLiteral{ExprBase: ast.NewExprBase(span, p.fresh(span)), Value: p.curTok.Value}
}

func (p *Parser) parseCharLiteral() ast.Expr {
	span := p.curTok.Span
	var v rune
	if rs := []rune(p.curTok.Value); len(rs) > 0 {
		v = rs[0]
	}
	return &ast.CharLiteral{ExprBase: ast.NewExprBase(span, p.fresh(span)), Value: v}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	span := p.curTok.Span
	return &ast.BoolLiteral{ExprBase: ast.NewExprBase(span, p.fresh(span)), Value: p.curTok.Type == lexer.TRUE}
}

func (p *Parser) parseThis() ast.Expr {
	span := p.curTok.Span
	return &ast.DeclRef{
		ExprBase: ast.NewExprBase(span, p.fresh(span)),
		Path:     []*ast.Ident{ast.NewIdent("this", span)},
	}
}

// parseDeclRefOrInit parses a (possibly `::`-qualified) identifier, which is
// either a bare reference or, when immediately followed by '{', a struct or
// enum initializer (spec.md §3.1's AdtInit).
func (p *Parser) parseDeclRefOrInit() ast.Expr {
	start := p.curTok.Span
	path := p.parsePath()
	if path == nil {
		return nil
	}
	if p.peekTok.Type == lexer.LBRACE {
		p.nextToken() // '{'
		return p.finishAdtInit(path, start)
	}
	ref := &ast.DeclRef{ExprBase: ast.NewExprBase(start, p.fresh(start)), Path: path}
	ref.SetSpan(mergeSpan(start, p.curTok.Span))
	return ref
}

// parseAnonymousInit parses `.{ field: val, ... }`, an ADT initializer whose
// target type is recovered from context by the inferencer rather than
// written at the call site.
func (p *Parser) parseAnonymousInit() ast.Expr {
	start := p.curTok.Span // '.'
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	return p.finishAdtInit(nil, start)
}

// finishAdtInit parses the `{ members... }` suffix of an ADT initializer,
// assuming curTok == '{'.
func (p *Parser) finishAdtInit(path []*ast.Ident, start lexer.Span) *ast.AdtInit {
	members := parseCommaList(p, lexer.RBRACE, func() (*ast.MemberInit, bool) {
		if p.curTok.Type != lexer.IDENT {
			p.errorf(p.curTok.Span, "expected field name in initializer")
			return nil, false
		}
		fname := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
		m := &ast.MemberInit{Field: fname}
		if p.peekTok.Type == lexer.COLON {
			p.nextToken()
			p.nextToken()
			m.Init = p.parseExpression(precLowest)
		}
		m.SetSpan(fname.Span())
		return m, true
	})
	init := &ast.AdtInit{ExprBase: ast.NewExprBase(start, p.fresh(start)), TypeName: path, Members: members}
	init.SetSpan(mergeSpan(start, p.curTok.Span))
	return init
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	start := p.curTok.Span
	var op ast.UnOp
	switch p.curTok.Type {
	case lexer.MINUS:
		op = ast.OpNeg
	case lexer.BANG:
		op = ast.OpNot
	case lexer.ASTERISK:
		op = ast.OpDeref
	case lexer.AMPERSAND, lexer.REF_MUT:
		op = ast.OpAddr
	}
	p.nextToken()
	operand := p.parseExpression(precUnary)
	if operand == nil {
		return nil
	}
	u := &ast.UnaryOp{ExprBase: ast.NewExprBase(start, p.fresh(start)), Op: op, Operand: operand, IsPrefix: true}
	u.SetSpan(mergeSpan(start, operand.Span()))
	return u
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	opTok := p.curTok
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	b := &ast.BinaryOp{
		ExprBase: ast.NewExprBase(left.Span(), p.fresh(left.Span())),
		Op:       ast.BinOp(opTok.Type),
		Lhs:      left,
		Rhs:      right,
	}
	b.SetSpan(mergeSpan(left.Span(), right.Span()))
	return b
}

func (p *Parser) parseRangeExpr(left ast.Expr) ast.Expr {
	inclusive := p.curTok.Type == lexer.RANGE_EQ
	p.nextToken()
	end := p.parseExpression(precRange)
	r := &ast.RangeLiteral{ExprBase: ast.NewExprBase(left.Span(), p.fresh(left.Span())), Start: left, End: end, Inclusive: inclusive}
	if end != nil {
		r.SetSpan(mergeSpan(left.Span(), end.Span()))
	} else {
		r.SetSpan(left.Span())
	}
	return r
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	start := callee.Span()
	args := parseCommaList(p, lexer.RPAREN, func() (ast.Expr, bool) {
		e := p.parseExpression(precLowest)
		return e, e != nil
	})
	call := &ast.FunCall{ExprBase: ast.NewExprBase(start, p.fresh(start)), Callee: callee, Args: args}
	call.SetSpan(mergeSpan(start, p.curTok.Span))
	return call
}

// parseDotExpr parses `.field` or `.method(args...)`, assuming curTok == '.'.
func (p *Parser) parseDotExpr(base ast.Expr) ast.Expr {
	start := base.Span()
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)

	if p.peekTok.Type == lexer.LPAREN {
		p.nextToken() // '('
		args := parseCommaList(p, lexer.RPAREN, func() (ast.Expr, bool) {
			e := p.parseExpression(precLowest)
			return e, e != nil
		})
		mc := &ast.MethodCall{ExprBase: ast.NewExprBase(start, p.fresh(start)), Base: base, Method: name, Args: args}
		mc.SetSpan(mergeSpan(start, p.curTok.Span))
		return mc
	}

	fa := &ast.FieldAccess{ExprBase: ast.NewExprBase(start, p.fresh(start)), Base: base, Field: name}
	fa.SetSpan(mergeSpan(start, p.curTok.Span))
	return fa
}

// parseGroupedOrTuple parses `(expr)` or `(e1, e2, ...)`, assuming
// curTok == '('.
func (p *Parser) parseGroupedOrTuple() ast.Expr {
	start := p.curTok.Span
	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		t := &ast.TupleLiteral{ExprBase: ast.NewExprBase(start, p.fresh(start))}
		t.SetSpan(mergeSpan(start, p.curTok.Span))
		return t
	}

	p.nextToken()
	first := p.parseExpression(precLowest)
	if first == nil {
		return nil
	}

	if p.peekTok.Type != lexer.COMMA {
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return first
	}

	elems := []ast.Expr{first}
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		if p.peekTok.Type == lexer.RPAREN {
			break
		}
		p.nextToken()
		e := p.parseExpression(precLowest)
		if e == nil {
			break
		}
		elems = append(elems, e)
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	tup := &ast.TupleLiteral{ExprBase: ast.NewExprBase(start, p.fresh(start)), Elems: elems}
	tup.SetSpan(mergeSpan(start, p.curTok.Span))
	return tup
}

// parseBlockExprPrefix parses a block used in expression position: its value
// is its tail expression-statement (ast.BlockExpr's contract).
func (p *Parser) parseBlockExprPrefix() ast.Expr {
	start := p.curTok.Span
	block := p.parseBlock()
	be := &ast.BlockExpr{ExprBase: ast.NewExprBase(start, p.fresh(start)), Block: block}
	be.SetSpan(mergeSpan(start, p.curTok.Span))
	return be
}

// parseMatchExpr parses `match scrutinee { arms... }`. A bare identifier
// directly followed by '{' is the scrutinee, not a named ADT initializer.
func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.curTok.Span
	p.nextToken()
	var scrut ast.Expr
	if p.curTok.Type == lexer.IDENT && p.peekTok.Type == lexer.LBRACE {
		span := p.curTok.Span
		scrut = &ast.DeclRef{ExprBase: ast.NewExprBase(span, p.fresh(span)), Path: []*ast.Ident{ast.NewIdent(p.curTok.Literal, span)}}
	} else {
		scrut = p.parseExpression(precLowest)
	}
	if scrut == nil {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}

	var arms []*ast.MatchArm
	for p.peekTok.Type != lexer.RBRACE && p.peekTok.Type != lexer.EOF {
		p.nextToken()
		arm := p.parseMatchArm()
		if arm != nil {
			arms = append(arms, arm)
		} else {
			p.recoverTo(lexer.COMMA)
		}
		if p.peekTok.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	m := &ast.Match{ExprBase: ast.NewExprBase(start, p.fresh(start)), Scrutinee: scrut, Arms: arms}
	m.SetSpan(mergeSpan(start, p.curTok.Span))
	return m
}

// parseMatchArm parses `pattern [|| pattern...] => result`, assuming curTok
// is the first pattern's first token.
func (p *Parser) parseMatchArm() *ast.MatchArm {
	start := p.curTok.Span
	first := p.parsePattern()
	if first == nil {
		return nil
	}
	patterns := []ast.Pattern{first}
	for p.peekTok.Type == lexer.OR {
		p.nextToken()
		p.nextToken()
		next := p.parsePattern()
		if next == nil {
			break
		}
		patterns = append(patterns, next)
	}

	if !p.expect(lexer.FATARROW) {
		return nil
	}
	p.nextToken()
	result := p.parseExpression(precLowest)

	arm := &ast.MatchArm{Patterns: patterns, Result: result}
	if result != nil {
		arm.SetSpan(mergeSpan(start, result.Span()))
	} else {
		arm.SetSpan(start)
	}
	return arm
}

// parseIntrinsicCall parses `panic(...)`, `assert(...)`, `unreachable()`, and
// `typeof(...)`.
func (p *Parser) parseIntrinsicCall() ast.Expr {
	start := p.curTok.Span
	var kind ast.Intrinsic
	switch p.curTok.Type {
	case lexer.PANIC:
		kind = ast.IntrinsicPanic
	case lexer.ASSERT:
		kind = ast.IntrinsicAssert
	case lexer.UNREACH:
		kind = ast.IntrinsicUnreachable
	case lexer.TYPEOF:
		kind = ast.IntrinsicTypeof
	}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	args := parseCommaList(p, lexer.RPAREN, func() (ast.Expr, bool) {
		e := p.parseExpression(precLowest)
		return e, e != nil
	})
	ic := &ast.IntrinsicCall{ExprBase: ast.NewExprBase(start, p.fresh(start)), Kind: kind, Args: args}
	ic.SetSpan(mergeSpan(start, p.curTok.Span))
	return ic
}

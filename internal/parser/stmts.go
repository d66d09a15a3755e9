package parser

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// parseBlock parses `{ stmts... }`, assuming curTok == '{'.
func (p *Parser) parseBlock() *ast.Block {
	start := p.curTok.Span
	var stmts []ast.Stmt
	for p.peekTok.Type != lexer.RBRACE && p.peekTok.Type != lexer.EOF {
		p.nextToken()
		st := p.parseStmt()
		if st != nil {
			stmts = append(stmts, st)
		} else if p.curTok.Type != lexer.RBRACE {
			p.recover()
		}
	}
	if !p.expect(lexer.RBRACE) {
		return ast.NewBlock(stmts, mergeSpan(start, p.curTok.Span))
	}
	return ast.NewBlock(stmts, mergeSpan(start, p.curTok.Span))
}

// parseStmt parses a single statement, assuming curTok is its first token.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Type {
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.DEFER:
		return p.parseDeferStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.VAR, lexer.CONST:
		return p.parseDeclStmt()
	case lexer.BREAK:
		s := &ast.BreakStmt{}
		s.SetSpan(p.curTok.Span)
		if p.peekTok.Type == lexer.SEMICOLON {
			p.nextToken()
		}
		return s
	case lexer.CONTINUE:
		s := &ast.ContinueStmt{}
		s.SetSpan(p.curTok.Span)
		if p.peekTok.Type == lexer.SEMICOLON {
			p.nextToken()
		}
		return s
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.curTok.Span
	var val ast.Expr
	if p.peekTok.Type != lexer.SEMICOLON && p.peekTok.Type != lexer.RBRACE {
		p.nextToken()
		val = p.parseExpression(precLowest)
	}
	end := p.curTok.Span
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
		end = p.curTok.Span
	}
	s := &ast.ReturnStmt{Value: val}
	s.SetSpan(mergeSpan(start, end))
	return s
}

func (p *Parser) parseDeferStmt() *ast.DeferStmt {
	start := p.curTok.Span
	p.nextToken()
	val := p.parseExpression(precLowest)
	end := p.curTok.Span
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
		end = p.curTok.Span
	}
	s := &ast.DeferStmt{Value: val}
	s.SetSpan(mergeSpan(start, end))
	return s
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.curTok.Span
	p.nextToken()
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	then := p.parseBlock()

	var els *ast.Block
	if p.peekTok.Type == lexer.ELSE {
		p.nextToken()
		if p.peekTok.Type == lexer.IF {
			p.nextToken()
			nested := p.parseIfStmt()
			els = ast.NewBlock([]ast.Stmt{nested}, nested.Span())
		} else if p.expect(lexer.LBRACE) {
			els = p.parseBlock()
		}
	}

	s := &ast.IfStmt{Cond: cond, Then: then, Else: els}
	s.SetSpan(mergeSpan(start, p.curTok.Span))
	return s
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.curTok.Span
	p.nextToken()
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	s := &ast.WhileStmt{Cond: cond, Body: body}
	s.SetSpan(mergeSpan(start, p.curTok.Span))
	return s
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	if !p.expect(lexer.IN) {
		return nil
	}
	p.nextToken()
	rng := p.parseExpression(precLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	s := &ast.ForStmt{Var: name, Range: rng, Body: body}
	s.SetSpan(mergeSpan(start, p.curTok.Span))
	return s
}

// parseDeclStmt parses `var|const name [: Type] [= init];` as a statement.
func (p *Parser) parseDeclStmt() *ast.DeclStmt {
	start := p.curTok.Span
	mut := ast.MutConst
	if p.curTok.Type == lexer.VAR {
		mut = ast.MutVar
	}
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)

	var declared ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		declared = p.parseType()
	}

	var init ast.Expr
	if p.peekTok.Type == lexer.ASSIGN {
		p.nextToken()
		p.nextToken()
		init = p.parseExpression(precLowest)
	}

	end := p.curTok.Span
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
		end = p.curTok.Span
	}

	local := &ast.Local{Name: name, Mutability: mut, Declared: declared, Init: init}
	local.SetSpan(mergeSpan(start, end))

	d := &ast.DeclStmt{Decl: local}
	d.SetSpan(local.Span())
	return d
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	start := p.curTok.Span
	val := p.parseExpression(precLowest)
	if val == nil {
		return nil
	}
	tail := true
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
		tail = false
	}
	s := &ast.ExprStmt{Value: val, Tail: tail}
	s.SetSpan(mergeSpan(start, p.curTok.Span))
	return s
}

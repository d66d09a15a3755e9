package parser

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// parseImportDecl is `import path::segments [as alias];`.
func (p *Parser) parseImportDecl() *ast.ImportDecl {
	start := p.curTok.Span // IMPORT
	p.nextToken()
	path := p.parsePath()
	if path == nil {
		return nil
	}
	var alias *ast.Ident
	if p.peekTok.Type == lexer.AS {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		alias = ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	}
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	d := &ast.ImportDecl{Path: path, Alias: alias}
	d.SetSpan(mergeSpan(start, p.curTok.Span))
	return d
}

// parsePath parses a `::`-separated identifier path, assuming curTok is
// already on the first segment.
func (p *Parser) parsePath() []*ast.Ident {
	if p.curTok.Type != lexer.IDENT {
		p.errorf(p.curTok.Span, "expected identifier")
		return nil
	}
	path := []*ast.Ident{ast.NewIdent(p.curTok.Literal, p.curTok.Span)}
	for p.peekTok.Type == lexer.DOUBLE_COLON {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		path = append(path, ast.NewIdent(p.curTok.Literal, p.curTok.Span))
	}
	return path
}

// parseUseDecl is `use path::segments [as alias];`.
func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.curTok.Span
	p.nextToken()
	path := p.parsePath()
	if path == nil {
		return nil
	}
	var alias *ast.Ident
	if p.peekTok.Type == lexer.AS {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		alias = ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	}
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	d := &ast.UseDecl{Path: path, Alias: alias}
	d.SetSpan(mergeSpan(start, p.curTok.Span))
	return d
}

// parseGenericParams parses an optional `<T, U>` list, assuming curTok is the
// token just before the opening '<' (i.e. the declared name).
func (p *Parser) parseGenericParams() []*ast.GenericParam {
	if p.peekTok.Type != lexer.LT {
		return nil
	}
	p.nextToken() // '<'
	return parseCommaList(p, lexer.GT, func() (*ast.GenericParam, bool) {
		if p.curTok.Type != lexer.IDENT {
			p.errorf(p.curTok.Span, "expected type parameter name")
			return nil, false
		}
		return &ast.GenericParam{Name: ast.NewIdent(p.curTok.Literal, p.curTok.Span)}, true
	})
}

// parseParams parses a parenthesized parameter list, assuming curTok == '('.
func (p *Parser) parseParams() []*ast.Param {
	return parseCommaList(p, lexer.RPAREN, func() (*ast.Param, bool) {
		mut := ast.MutConst
		if p.curTok.Type == lexer.MUT {
			mut = ast.MutVar
			p.nextToken()
		}
		if p.curTok.Type != lexer.IDENT {
			p.errorf(p.curTok.Span, "expected parameter name")
			return nil, false
		}
		name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
		if !p.expect(lexer.COLON) {
			return nil, false
		}
		p.nextToken()
		typ := p.parseType()
		if typ == nil {
			return nil, false
		}
		return &ast.Param{Name: name, Mutability: mut, Declared: typ}, true
	})
}

// parseFnDecl parses `fun name[<generics>](params) [-> ret] { body }`,
// including the synthetic `this` receiver form used inside a struct/enum's
// method block: `fun name(this, ...params)`.
func (p *Parser) parseFnDecl(vis ast.Visibility) *ast.FnDecl {
	start := p.curTok.Span // FUN
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	generics := p.parseGenericParams()

	if !p.expect(lexer.LPAREN) {
		return nil
	}

	var receiver *ast.Param
	if p.peekTok.Type == lexer.THIS {
		p.nextToken()
		receiver = &ast.Param{Name: ast.NewIdent("this", p.curTok.Span)}
		if p.peekTok.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	params := p.parseParams()

	var retType ast.TypeExpr
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken()
		p.nextToken()
		retType = p.parseType()
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()

	fn := &ast.FnDecl{
		Visibility:    vis,
		Name:          name,
		GenericParams: generics,
		Receiver:      receiver,
		Params:        params,
		ReturnType:    retType,
		Body:          body,
	}
	fn.SetSpan(mergeSpan(start, p.curTok.Span))
	return fn
}

// parseStructDecl parses `struct Name[<generics>] { fields... methods... }`.
func (p *Parser) parseStructDecl(vis ast.Visibility) *ast.StructDecl {
	start := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	generics := p.parseGenericParams()

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	var fields []*ast.Field
	var methods []*ast.FnDecl
	index := 0
	for p.peekTok.Type != lexer.RBRACE && p.peekTok.Type != lexer.EOF {
		p.nextToken()
		itemVis := ast.Private
		if p.curTok.Type == lexer.PUB {
			itemVis = ast.Public
			p.nextToken()
		}
		if p.curTok.Type == lexer.FUN {
			if m := p.parseFnDecl(itemVis); m != nil {
				methods = append(methods, m)
			}
			continue
		}
		if p.curTok.Type != lexer.IDENT {
			p.errorf(p.curTok.Span, "expected field name or method")
			p.recover()
			break
		}
		fname := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
		if !p.expect(lexer.COLON) {
			break
		}
		p.nextToken()
		ftype := p.parseType()
		var def ast.Expr
		if p.peekTok.Type == lexer.ASSIGN {
			p.nextToken()
			p.nextToken()
			def = p.parseExpression(precLowest)
		}
		fields = append(fields, &ast.Field{Visibility: itemVis, Index: index, Name: fname, Declared: ftype, Default: def})
		index++
		if p.peekTok.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	s := ast.NewStructDecl(name, mergeSpan(start, p.curTok.Span), generics, fields, methods)
	s.Visibility = vis
	return s
}

// parseEnumDecl parses `enum Name[<generics>] { Variant[(Payload)]... methods... }`.
func (p *Parser) parseEnumDecl(vis ast.Visibility) *ast.EnumDecl {
	start := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	generics := p.parseGenericParams()

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	var variants []*ast.Variant
	var methods []*ast.FnDecl
	index := 0
	for p.peekTok.Type != lexer.RBRACE && p.peekTok.Type != lexer.EOF {
		p.nextToken()
		itemVis := ast.Private
		if p.curTok.Type == lexer.PUB {
			itemVis = ast.Public
			p.nextToken()
		}
		if p.curTok.Type == lexer.FUN {
			if m := p.parseFnDecl(itemVis); m != nil {
				methods = append(methods, m)
			}
			continue
		}
		if p.curTok.Type != lexer.IDENT {
			p.errorf(p.curTok.Span, "expected variant name or method")
			p.recover()
			break
		}
		vname := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
		var payload ast.TypeExpr
		if p.peekTok.Type == lexer.LPAREN {
			p.nextToken()
			p.nextToken()
			payload = p.parseType()
			if !p.expect(lexer.RPAREN) {
				break
			}
		}
		variants = append(variants, &ast.Variant{Index: index, Name: vname, Payload: payload})
		index++
		if p.peekTok.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	e := ast.NewEnumDecl(name, mergeSpan(start, p.curTok.Span), generics, variants, methods)
	e.Visibility = vis
	return e
}

// Package parser turns source text into the ast package's node tree consumed
// by the resolver and inferencer. It is a hand-written recursive-descent
// parser with Pratt-style precedence climbing for expressions, in the same
// style the rest of this codebase's parsers use: a curTok/peekTok lookahead
// window, per-token-type prefix/infix handler tables, and append-only error
// recovery (a malformed declaration or statement is skipped to a
// resynchronization point rather than aborting the whole parse).
package parser

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// precedence levels, lowest to highest.
const (
	precLowest = iota
	precRange
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.RANGE:    precRange,
	lexer.RANGE_EQ: precRange,
	lexer.OR:       precOr,
	lexer.AND:      precAnd,
	lexer.EQ:       precEquality,
	lexer.NOT_EQ:   precEquality,
	lexer.LT:       precRelational,
	lexer.LE:       precRelational,
	lexer.GT:       precRelational,
	lexer.GE:       precRelational,
	lexer.PLUS:     precAdditive,
	lexer.MINUS:    precAdditive,
	lexer.ASTERISK: precMultiplicative,
	lexer.SLASH:    precMultiplicative,
	lexer.PERCENT:  precMultiplicative,
	lexer.LPAREN:   precPostfix,
	lexer.DOT:      precPostfix,
}

type prefixParseFn func() ast.Expr
type infixParseFn func(left ast.Expr) ast.Expr

// Parser is a single-file recursive-descent parser. It mints fresh type
// variables for every expression it builds (ast.Expr.TypeSlot's contract:
// the parser seeds a fresh Var, the inferencer unifies it later), so it is
// constructed with the same typectx.Context the resolver and inferencer will
// later share, and with the diag.Sink diagnostics are reported through.
type Parser struct {
	lx       *lexer.Lexer
	ctx      *typectx.Context
	sink     diag.Sink
	filename string

	curTok  lexer.Token
	peekTok lexer.Token

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser over src, reporting syntax errors to sink and
// minting fresh type variables from ctx.
func New(src, filename string, ctx *typectx.Context, sink diag.Sink) *Parser {
	p := &Parser{
		lx:       lexer.New(src),
		ctx:      ctx,
		sink:     sink,
		filename: filename,
	}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:     p.parseDeclRefOrInit,
		lexer.INT:       p.parseIntLiteral,
		lexer.FLOAT:     p.parseFloatLiteral,
		lexer.STRING:    p.parseStrLiteral,
		lexer.CHAR:      p.parseCharLiteral,
		lexer.TRUE:      p.parseBoolLiteral,
		lexer.FALSE:     p.parseBoolLiteral,
		lexer.THIS:      p.parseThis,
		lexer.MINUS:     p.parseUnaryExpr,
		lexer.BANG:      p.parseUnaryExpr,
		lexer.ASTERISK:  p.parseUnaryExpr,
		lexer.AMPERSAND: p.parseUnaryExpr,
		lexer.REF_MUT:   p.parseUnaryExpr,
		lexer.LPAREN:    p.parseGroupedOrTuple,
		lexer.LBRACE:    p.parseBlockExprPrefix,
		lexer.DOT:       p.parseAnonymousInit,
		lexer.MATCH:     p.parseMatchExpr,
		lexer.PANIC:     p.parseIntrinsicCall,
		lexer.ASSERT:    p.parseIntrinsicCall,
		lexer.UNREACH:   p.parseIntrinsicCall,
		lexer.TYPEOF:    p.parseIntrinsicCall,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:     p.parseBinaryExpr,
		lexer.MINUS:    p.parseBinaryExpr,
		lexer.ASTERISK: p.parseBinaryExpr,
		lexer.SLASH:    p.parseBinaryExpr,
		lexer.PERCENT:  p.parseBinaryExpr,
		lexer.AND:      p.parseBinaryExpr,
		lexer.OR:       p.parseBinaryExpr,
		lexer.EQ:       p.parseBinaryExpr,
		lexer.NOT_EQ:   p.parseBinaryExpr,
		lexer.LT:       p.parseBinaryExpr,
		lexer.LE:       p.parseBinaryExpr,
		lexer.GT:       p.parseBinaryExpr,
		lexer.GE:       p.parseBinaryExpr,
		lexer.LPAREN:   p.parseCallExpr,
		lexer.DOT:      p.parseDotExpr,
		lexer.RANGE:    p.parseRangeExpr,
		lexer.RANGE_EQ: p.parseRangeExpr,
	}

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken advances the lookahead window by one token. It is the only place
// that queries the lexer, so span bookkeeping for merged nodes stays
// centralized here.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return precLowest
}

// expect checks that peekTok has type tt; on success it advances and returns
// true, otherwise it reports an error and leaves the token window untouched
// so the caller can attempt resynchronization.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}
	p.errorf(p.peekTok.Span, "expected '"+string(tt)+"', found '"+string(p.peekTok.Type)+"'")
	return false
}

func (p *Parser) errorf(span lexer.Span, msg string) {
	p.sink.Emit(diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.CodeParseError,
		Message: msg,
		Span:    toDiagSpan(p.withFilename(span)),
	})
}

func (p *Parser) withFilename(span lexer.Span) lexer.Span {
	if span.Filename == "" {
		span.Filename = p.filename
	}
	return span
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

func mergeSpan(start, end lexer.Span) lexer.Span {
	s := start
	s.End = end.End
	return s
}

// fresh mints the fresh Var(Any) every ast.ExprBase starts life with.
func (p *Parser) fresh(span lexer.Span) typectx.TypeRef {
	return p.ctx.GetVar(typectx.DomainAny, span)
}

// ParseModule parses a full source file into a Module. path is the module's
// logical import path (spec.md §2.1), not its filesystem location.
func (p *Parser) ParseModule(path string) *ast.Module {
	start := p.curTok.Span
	mod := ast.NewModule(path, start)

	for p.curTok.Type != lexer.EOF {
		startTok := p.curTok
		switch p.curTok.Type {
		case lexer.IMPORT:
			if d := p.parseImportDecl(); d != nil {
				mod.Imports = append(mod.Imports, d)
				p.nextToken()
				continue
			}
		case lexer.USE:
			if d := p.parseUseDecl(); d != nil {
				mod.Uses = append(mod.Uses, d)
				p.nextToken()
				continue
			}
		default:
			if d := p.parseItem(); d != nil {
				mod.Items = append(mod.Items, d)
				p.nextToken()
				continue
			}
		}
		if p.curTok == startTok {
			p.nextToken()
		}
		p.recover()
	}

	return mod
}

// recover skips tokens until a plausible item boundary, so one malformed
// declaration doesn't cascade into spurious errors for the rest of the file.
func (p *Parser) recover() {
	for p.curTok.Type != lexer.EOF {
		switch p.curTok.Type {
		case lexer.FUN, lexer.STRUCT, lexer.ENUM, lexer.IMPORT, lexer.USE, lexer.PUB:
			return
		}
		p.nextToken()
	}
}

// parseItem parses one top-level item: an optional `pub`
// visibility marker followed by a fun/struct/enum declaration.
func (p *Parser) parseItem() ast.Decl {
	vis := ast.Private
	if p.curTok.Type == lexer.PUB {
		vis = ast.Public
		p.nextToken()
	}

	switch p.curTok.Type {
	case lexer.FUN:
		return p.parseFnDecl(vis)
	case lexer.STRUCT:
		return p.parseStructDecl(vis)
	case lexer.ENUM:
		return p.parseEnumDecl(vis)
	default:
		p.errorf(p.curTok.Span, "expected declaration, found '"+string(p.curTok.Type)+"'")
		return nil
	}
}

package parser

import "github.com/malphas-lang/malphas-lang/internal/lexer"

// parseCommaList parses a comma-separated list of items up to (and
// consuming) a closing token, assuming curTok is already positioned at the
// opening delimiter. parseItem is called with curTok on the first token of
// each item; it must leave curTok on the item's last token.
func parseCommaList[T any](p *Parser, closing lexer.TokenType, parseItem func() (T, bool)) []T {
	var items []T
	if p.peekTok.Type == closing {
		p.nextToken()
		return items
	}
	p.nextToken()
	for {
		item, ok := parseItem()
		if !ok {
			p.recoverTo(closing)
			break
		}
		items = append(items, item)
		if p.peekTok.Type == closing {
			p.nextToken()
			break
		}
		if !p.expect(lexer.COMMA) {
			p.recoverTo(closing)
			break
		}
		if p.peekTok.Type == closing {
			p.nextToken()
			break
		}
		p.nextToken()
	}
	return items
}

// recoverTo advances past tokens until closing (consuming it) or EOF.
func (p *Parser) recoverTo(closing lexer.TokenType) {
	for p.curTok.Type != closing && p.curTok.Type != lexer.EOF {
		p.nextToken()
	}
}

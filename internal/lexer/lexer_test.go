package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

func TestNextTokenKeywordsAndOperators(t *testing.T) {
	input := `fun struct enum impl pub module import use as if else match
while for in break continue return defer true false null this where unsafe
panic assert unreachable typeof
+ - * / % = == != < <= > >= && || ! & &mut -> => :: : ; , . .. ..= ? ( ) { } [ ]`

	want := []lexer.TokenType{
		lexer.FUN, lexer.STRUCT, lexer.ENUM, lexer.IMPL, lexer.PUB, lexer.MODULE,
		lexer.IMPORT, lexer.USE, lexer.AS, lexer.IF, lexer.ELSE, lexer.MATCH,
		lexer.WHILE, lexer.FOR, lexer.IN, lexer.BREAK, lexer.CONTINUE, lexer.RETURN,
		lexer.DEFER, lexer.TRUE, lexer.FALSE, lexer.NIL, lexer.THIS, lexer.WHERE,
		lexer.UNSAFE, lexer.PANIC, lexer.ASSERT, lexer.UNREACH, lexer.TYPEOF,
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.ASSIGN, lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.LE, lexer.GT, lexer.GE,
		lexer.AND, lexer.OR, lexer.BANG, lexer.AMPERSAND, lexer.REF_MUT,
		lexer.ARROW, lexer.FATARROW, lexer.DOUBLE_COLON, lexer.COLON, lexer.SEMICOLON,
		lexer.COMMA, lexer.DOT, lexer.RANGE, lexer.RANGE_EQ, lexer.QUESTION,
		lexer.LPAREN, lexer.RPAREN, lexer.LBRACE, lexer.RBRACE, lexer.LBRACKET, lexer.RBRACKET,
		lexer.EOF,
	}

	l := lexer.New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		assert.Equalf(t, wantType, tok.Type, "token %d (raw %q)", i, tok.Raw)
	}
}

func TestNextTokenNumbers(t *testing.T) {
	tests := []struct {
		input    string
		wantType lexer.TokenType
		wantRaw  string
	}{
		{"42", lexer.INT, "42"},
		{"0x1F", lexer.INT, "0x1F"},
		{"0b1010", lexer.INT, "0b1010"},
		{"1_000", lexer.INT, "1_000"},
		{"3.14", lexer.FLOAT, "3.14"},
		{"1e9", lexer.FLOAT, "1e9"},
		{"1.5e-3", lexer.FLOAT, "1.5e-3"},
	}
	for _, tt := range tests {
		l := lexer.New(tt.input)
		tok := l.NextToken()
		assert.Equal(t, tt.wantType, tok.Type, tt.input)
		assert.Equal(t, tt.wantRaw, tok.Raw, tt.input)
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := lexer.New(`"hello\nworld"`)
	tok := l.NextToken()
	require.Equal(t, lexer.STRING, tok.Type)
	assert.Equal(t, "hello\nworld", tok.Value)
}

func TestNextTokenCharLiteral(t *testing.T) {
	l := lexer.New(`'a' '\n'`)
	tok := l.NextToken()
	require.Equal(t, lexer.CHAR, tok.Type)
	assert.Equal(t, "a", tok.Value)

	tok = l.NextToken()
	require.Equal(t, lexer.CHAR, tok.Type)
	assert.Equal(t, "\n", tok.Value)
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := lexer.New(`"unterminated`)
	tok := l.NextToken()
	assert.Equal(t, lexer.ILLEGAL, tok.Type)
	require.Len(t, l.Errors, 1)
	assert.Equal(t, lexer.ErrUnterminatedString, l.Errors[0].Kind)
}

func TestNextTokenIllegalRune(t *testing.T) {
	l := lexer.New("@")
	tok := l.NextToken()
	assert.Equal(t, lexer.ILLEGAL, tok.Type)
	require.Len(t, l.Errors, 1)
	assert.Equal(t, lexer.ErrIllegalRune, l.Errors[0].Kind)
}

func TestNextTokenIdentifiersAreNotKeywords(t *testing.T) {
	l := lexer.New("function_name funky")
	tok := l.NextToken()
	assert.Equal(t, lexer.IDENT, tok.Type)
	assert.Equal(t, "function_name", tok.Raw)
}

func TestLineCommentsAreSkipped(t *testing.T) {
	l := lexer.New("// a comment\nfun")
	tok := l.NextToken()
	assert.Equal(t, lexer.FUN, tok.Type)
}

func TestBlockCommentsNest(t *testing.T) {
	l := lexer.New("/* outer /* inner */ still outer */ fun")
	tok := l.NextToken()
	assert.Equal(t, lexer.FUN, tok.Type)
}

func TestSpanTracking(t *testing.T) {
	l := lexer.New("fun\n  main")
	tok := l.NextToken()
	assert.Equal(t, 1, tok.Span.Line)
	assert.Equal(t, 1, tok.Span.Column)

	tok = l.NextToken()
	assert.Equal(t, lexer.IDENT, tok.Type)
	assert.Equal(t, 2, tok.Span.Line)
	assert.Equal(t, 3, tok.Span.Column)
}

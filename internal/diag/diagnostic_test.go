package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedString,
		Message: "unterminated string literal",
		Span: lexer.Span{
			Filename: "main.mal",
			Line:     1,
			Column:   3,
			Start:    2,
			End:      6,
		},
	}

	d := err.ToDiagnostic()

	assert.Equal(t, diag.LevelError, d.Level)
	assert.Equal(t, diag.CodeLexerUnterminatedString, d.Code)
	assert.Equal(t, err.Message, d.Message)

	wantSpan := diag.Span{Filename: "main.mal", Line: 1, Column: 3, Start: 2, End: 6}
	assert.Equal(t, wantSpan, d.Span)
	require.Len(t, d.LabeledSpans, 1)
	assert.Equal(t, diag.StylePrimary, d.LabeledSpans[0].Style)
}

func TestCollectingSinkCountsBySeverity(t *testing.T) {
	sink := diag.NewCollectingSink()
	sink.Emit(diag.Diagnostic{Level: diag.LevelError, Message: "boom"})
	sink.Emit(diag.Diagnostic{Level: diag.LevelWarning, Message: "hmm"})
	sink.Emit(diag.Diagnostic{Level: diag.LevelError, Message: "boom again"})

	assert.Equal(t, 2, sink.ErrorCount())
	assert.Equal(t, 1, sink.WarningCount())
	require.Len(t, sink.Diagnostics, 3)

	sink.Reset()
	assert.Equal(t, 0, sink.ErrorCount())
	assert.Empty(t, sink.Diagnostics)
}

func TestSpanIsValid(t *testing.T) {
	assert.False(t, diag.Span{}.IsValid())
	assert.True(t, diag.Span{Filename: "a.mal"}.IsValid())
	assert.True(t, diag.Span{Line: 1}.IsValid())
}

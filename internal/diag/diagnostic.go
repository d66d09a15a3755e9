// Package diag defines the diagnostic sink contract consumed by the resolver
// and inferencer. The core never writes to stdout/stderr directly; it emits
// through a Sink, and only the sink's error count is ever consulted to decide
// whether a later phase runs.
package diag

import "fmt"

// Level is how impactful a diagnostic is.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
	LevelHelp    Level = "help"
)

// Code is a stable identifier for a diagnostic, grouped by the taxonomy in
// spec.md §7.1.
type Code string

const (
	// Lexer errors (the lexer is an external collaborator; these codes let
	// its diagnostics flow through the same sink as everything else)
	CodeLexerUnterminatedString       Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerUnterminatedBlockComment Code = "LEXER_UNTERMINATED_BLOCK_COMMENT"
	CodeLexerIllegalRune              Code = "LEXER_ILLEGAL_RUNE"

	// Parse errors (the parser is likewise an external collaborator to the
	// resolver/inferencer core; it reports through the same sink)
	CodeParseError Code = "PARSE_ERROR"

	// Resolution errors
	CodeUndeclaredIdentifier Code = "RES_UNDECLARED_IDENTIFIER"
	CodeUnknownType          Code = "RES_UNKNOWN_TYPE"
	CodeUnknownAdt           Code = "RES_UNKNOWN_ADT"
	CodeUnknownField         Code = "RES_UNKNOWN_FIELD"
	CodeUnknownVariant       Code = "RES_UNKNOWN_VARIANT"
	CodeItemPathNotFound     Code = "RES_ITEM_PATH_NOT_FOUND"
	CodeSelfImport           Code = "RES_SELF_IMPORT"
	CodeImportOwnItem        Code = "RES_IMPORT_OWN_ITEM"
	CodeRedefinition         Code = "RES_REDEFINITION"
	CodeMissingFields        Code = "RES_MISSING_FIELDS"
	CodeInconsistentAltBind  Code = "RES_INCONSISTENT_ALTERNATION_BINDINGS"

	// Signature errors
	CodeDuplicateParam     Code = "SIG_DUPLICATE_PARAM"
	CodeDuplicateMember    Code = "SIG_DUPLICATE_MEMBER"
	CodeDuplicateTypeParam Code = "SIG_DUPLICATE_TYPE_PARAM"
	CodeReceiverNotThis    Code = "SIG_RECEIVER_NOT_THIS"

	// Inference errors
	CodeTypeMismatch        Code = "INF_TYPE_MISMATCH"
	CodeArityMismatch       Code = "INF_ARITY_MISMATCH"
	CodeOccursCheck         Code = "INF_OCCURS_CHECK"
	CodeNonMatchableScrut   Code = "INF_NON_MATCHABLE_SCRUTINEE"
	CodeUnknownVariantMatch Code = "INF_UNKNOWN_VARIANT_IN_PATTERN"
	CodePayloadArity        Code = "INF_PAYLOAD_ARITY_MISMATCH"
	CodeNonExhaustiveMatch  Code = "INF_NON_EXHAUSTIVE_MATCH"
	CodeDomainConstraint    Code = "INF_DOMAIN_CONSTRAINT"
	CodeAmbiguousAdtInit    Code = "INF_AMBIGUOUS_ADT_INIT"

	// Program-shape errors
	CodeBreakOutsideLoop    Code = "SHAPE_BREAK_OUTSIDE_LOOP"
	CodeContinueOutsideLoop Code = "SHAPE_CONTINUE_OUTSIDE_LOOP"
)

// Span is a location range in a single source file.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether the span carries real location information.
func (s Span) IsValid() bool {
	return s.Filename != "" || s.Line != 0 || s.Start != 0 || s.End != 0
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// SpanStyle distinguishes the primary offending span from supporting context.
type SpanStyle string

const (
	StylePrimary   SpanStyle = "primary"
	StyleSecondary SpanStyle = "secondary"
)

// LabeledSpan is a span annotated for display, optionally carrying a short
// inline label ("expected `i32`", "first defined here").
type LabeledSpan struct {
	Span  Span
	Style SpanStyle
	Label string
}

// ProofStep is one link of a "how was this type inferred" chain, rendered as
// a `= note:` line trailing the primary diagnostic.
type ProofStep struct {
	Message string
	Span    Span
}

// Edit is a suggested code change: replace the text at Span with Replacement.
type Edit struct {
	Span        Span
	Replacement string
	Description string
}

// Diagnostic is the structured shape the core emits through a Sink, matching
// the contract in spec.md §6.2.
type Diagnostic struct {
	Level   Level
	Code    Code
	Message string

	// Span is the primary location; convenience form for diagnostics with a
	// single span. LabeledSpans, if present, takes precedence when rendering.
	Span         Span
	LabeledSpans []LabeledSpan

	Notes      []string
	Help       string
	Suggestion string
	Edits      []Edit
	ProofChain []ProofStep
	Related    []Span
}

// Sink is the contract the resolver and inferencer emit diagnostics through.
// A sink that merely counts errors is sufficient for the core's own
// operation; only the counts are ever consulted by the driver.
type Sink interface {
	Emit(d Diagnostic)
	ErrorCount() int
	WarningCount() int
}

// CollectingSink records every diagnostic and counts them by level. This is
// the reference Sink implementation: it performs no rendering at all.
type CollectingSink struct {
	Diagnostics []Diagnostic
	errors      int
	warnings    int
}

// NewCollectingSink returns an empty CollectingSink.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

func (s *CollectingSink) Emit(d Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
	switch d.Level {
	case LevelError:
		s.errors++
	case LevelWarning:
		s.warnings++
	}
}

func (s *CollectingSink) ErrorCount() int   { return s.errors }
func (s *CollectingSink) WarningCount() int { return s.warnings }

// Reset clears all recorded diagnostics and counters, allowing the sink to be
// reused across compilations.
func (s *CollectingSink) Reset() {
	s.Diagnostics = nil
	s.errors = 0
	s.warnings = 0
}

package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
)

// TerminalRenderer is a Rust-style diagnostic renderer. It wraps a
// CollectingSink so the error/warning counts the driver consults stay
// authoritative, while printing human-readable output as diagnostics arrive.
//
// Color is gated on the output being a real terminal (via go-isatty); piping
// malphas's output to a file or another process yields plain text.
type TerminalRenderer struct {
	inner       *CollectingSink
	out         io.Writer
	color       bool
	sourceCache map[string]string
}

// NewTerminalRenderer builds a renderer writing to out. Color is on exactly
// when isatty reports out's fd as a terminal; there is no option to force it.
func NewTerminalRenderer(out *os.File) *TerminalRenderer {
	return &TerminalRenderer{
		inner:       NewCollectingSink(),
		out:         out,
		color:       isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
		sourceCache: make(map[string]string),
	}
}

func (r *TerminalRenderer) Emit(d Diagnostic) {
	r.inner.Emit(d)
	r.render(d)
}

func (r *TerminalRenderer) ErrorCount() int   { return r.inner.ErrorCount() }
func (r *TerminalRenderer) WarningCount() int { return r.inner.WarningCount() }

func (r *TerminalRenderer) loadSource(filename string) string {
	if filename == "" {
		return ""
	}
	if src, ok := r.sourceCache[filename]; ok {
		return src
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	src := string(data)
	r.sourceCache[filename] = src
	return src
}

func (r *TerminalRenderer) style(code string, s string) string {
	if !r.color {
		return s
	}
	return code + s + "\x1b[0m"
}

func (r *TerminalRenderer) bold(s string) string   { return r.style("\x1b[1m", s) }
func (r *TerminalRenderer) red(s string) string    { return r.style("\x1b[31;1m", s) }
func (r *TerminalRenderer) yellow(s string) string { return r.style("\x1b[33;1m", s) }
func (r *TerminalRenderer) blue(s string) string   { return r.style("\x1b[34;1m", s) }

func (r *TerminalRenderer) render(d Diagnostic) {
	spans := r.collectSpans(d)
	if len(spans) == 0 {
		r.renderSimple(d)
		return
	}

	spansByFile := make(map[string][]LabeledSpan)
	for _, span := range spans {
		filename := span.Span.Filename
		if filename == "" {
			filename = "<unknown>"
		}
		spansByFile[filename] = append(spansByFile[filename], span)
	}

	r.printHeader(d)
	for filename, fileSpans := range spansByFile {
		src := r.loadSource(filename)
		if src == "" {
			r.renderSimple(d)
			continue
		}
		r.printFileSpans(filename, src, fileSpans)
	}
	r.printHelp(d)
}

func (r *TerminalRenderer) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.IsValid() {
		return []LabeledSpan{{Span: d.Span, Style: StylePrimary}}
	}
	return nil
}

func (r *TerminalRenderer) printHeader(d Diagnostic) {
	level := string(d.Level)
	if level == "" {
		level = "error"
	}
	styled := level
	switch d.Level {
	case LevelError:
		styled = r.red(level)
	case LevelWarning:
		styled = r.yellow(level)
	default:
		styled = r.blue(level)
	}
	if d.Code != "" {
		fmt.Fprintf(r.out, "%s%s%s: %s\n", styled, r.bold("["), r.bold(string(d.Code))+r.bold("]"), r.bold(d.Message))
	} else {
		fmt.Fprintf(r.out, "%s: %s\n", styled, r.bold(d.Message))
	}
}

func (r *TerminalRenderer) printFileSpans(filename, src string, spans []LabeledSpan) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	lines := strings.Split(src, "\n")
	maxLine := len(lines)

	spansByLine := make(map[int][]LabeledSpan)
	for _, span := range spans {
		if span.Span.Line > 0 && span.Span.Line <= maxLine {
			spansByLine[span.Span.Line] = append(spansByLine[span.Span.Line], span)
		}
	}

	lineNumbers := make([]int, 0, len(spansByLine))
	for line := range spansByLine {
		lineNumbers = append(lineNumbers, line)
	}
	sort.Ints(lineNumbers)
	if len(lineNumbers) == 0 {
		return
	}

	contextStart := max(1, lineNumbers[0]-2)
	contextEnd := min(maxLine, lineNumbers[len(lineNumbers)-1]+2)
	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))

	fmt.Fprintf(r.out, "  --> %s\n", filename)
	fmt.Fprintf(r.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineContent := ""
		if lineNum <= len(lines) {
			lineContent = lines[lineNum-1]
		}
		fmt.Fprintf(r.out, " %*d | %s\n", lineNumWidth, lineNum, lineContent)
		if lineSpans := spansByLine[lineNum]; len(lineSpans) > 0 {
			r.printUnderlines(lineNumWidth, lineContent, lineSpans)
		}
	}
	fmt.Fprintf(r.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))
}

func (r *TerminalRenderer) printUnderlines(lineNumWidth int, lineContent string, spans []LabeledSpan) {
	underline := make([]byte, len(lineContent))
	for i := range underline {
		underline[i] = ' '
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Span.Column < spans[j].Span.Column })

	for _, span := range spans {
		if span.Style != StylePrimary {
			continue
		}
		start := max(0, span.Span.Column-1)
		end := min(len(underline), span.Span.Column-1+max(1, span.Span.End-span.Span.Start))
		for i := start; i < end && i < len(underline); i++ {
			underline[i] = '^'
		}
	}
	for _, span := range spans {
		if span.Style != StyleSecondary {
			continue
		}
		start := max(0, span.Span.Column-1)
		end := min(len(underline), span.Span.Column-1+max(1, span.Span.End-span.Span.Start))
		for i := start; i < end && i < len(underline); i++ {
			if underline[i] == ' ' {
				underline[i] = '~'
			}
		}
	}

	rightmost := -1
	for i := len(underline) - 1; i >= 0; i-- {
		if underline[i] != ' ' {
			rightmost = i
			break
		}
	}
	if rightmost == -1 {
		return
	}

	fmt.Fprintf(r.out, "   %s | %s", strings.Repeat(" ", lineNumWidth), string(underline))

	primaryLabel := ""
	var secondaryLabels []string
	for _, span := range spans {
		if span.Label == "" {
			continue
		}
		if span.Style == StylePrimary {
			primaryLabel = span.Label
		} else {
			secondaryLabels = append(secondaryLabels, span.Label)
		}
	}
	if primaryLabel != "" {
		fmt.Fprintf(r.out, " %s", primaryLabel)
	}
	fmt.Fprintln(r.out)

	for _, label := range secondaryLabels {
		fmt.Fprintf(r.out, "   %s | %s\n", strings.Repeat(" ", lineNumWidth), label)
	}
}

func (r *TerminalRenderer) printHelp(d Diagnostic) {
	for _, step := range d.ProofChain {
		fmt.Fprintln(r.out)
		if step.Span.IsValid() {
			fmt.Fprintf(r.out, "  = note: %s\n", step.Message)
			fmt.Fprintf(r.out, "           at %s\n", step.Span.String())
		} else {
			fmt.Fprintf(r.out, "  = note: %s\n", step.Message)
		}
	}
	for _, note := range d.Notes {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "  = note: %s\n", note)
	}
	if d.Help != "" {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "help: %s\n", d.Help)
	} else if d.Suggestion != "" {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "help: %s\n", d.Suggestion)
	}
	for _, edit := range d.Edits {
		fmt.Fprintf(r.out, "  = edit %s: replace with %q\n", edit.Span.String(), edit.Replacement)
	}
	for _, related := range d.Related {
		if related.IsValid() {
			fmt.Fprintln(r.out)
			fmt.Fprintf(r.out, "  = note: related location at %s\n", related.String())
		}
	}
}

func (r *TerminalRenderer) renderSimple(d Diagnostic) {
	r.printHeader(d)
	if d.Span.IsValid() {
		fmt.Fprintf(r.out, "  --> %s\n", d.Span.String())
	}
	r.printHelp(d)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

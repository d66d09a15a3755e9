// Package driver wires the parser, resolver, and inferencer into a single
// compilation pipeline, and owns the per-process ambient concerns (config,
// session identity) that the core itself stays oblivious to (spec.md §1.2).
package driver

import (
	"github.com/malphas-lang/malphas-lang/internal/ast"
	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/infer"
	"github.com/malphas-lang/malphas-lang/internal/parser"
	"github.com/malphas-lang/malphas-lang/internal/resolver"
	"github.com/malphas-lang/malphas-lang/internal/session"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// Source is one file handed to a Compilation: its logical module path (used
// in diagnostics and cross-module name resolution) and its text.
type Source struct {
	Path string
	Text string
}

// Compilation runs one parse/resolve/infer pass over a set of sources,
// sharing a single typectx.Context across every module the way spec.md §1.1
// describes the type universe as process-scoped.
type Compilation struct {
	Config  Config
	Session session.Session
	Sink    diag.Sink
	Ctx     *typectx.Context
}

// New starts a Compilation under cfg that reports into sink, minting a fresh
// session identity and type context.
func New(cfg Config, sink diag.Sink) *Compilation {
	return &Compilation{
		Config:  cfg,
		Session: session.New(),
		Sink:    sink,
		Ctx:     typectx.New(),
	}
}

// Compile parses every source into the shared Context, then runs name
// resolution and type inference in turn — each phase only proceeds if the
// previous one recorded no errors, mirroring how a single malformed file
// shouldn't cascade into spurious resolver/inferencer diagnostics.
func (c *Compilation) Compile(sources []Source) *ast.Program {
	prog := &ast.Program{}
	for _, src := range sources {
		p := parser.New(src.Text, src.Path, c.Ctx, c.Sink)
		prog.Modules = append(prog.Modules, p.ParseModule(src.Path))
	}
	if c.Sink.ErrorCount() > 0 {
		return prog
	}

	resolver.New(c.Sink, c.Ctx).Resolve(prog)
	if c.Sink.ErrorCount() > 0 {
		return prog
	}

	infer.New(c.Sink, c.Ctx).Infer(prog)
	return prog
}

// Failed reports whether the compilation should be considered unsuccessful,
// promoting warnings to failures when Config.WarningsAsErrors is set.
func (c *Compilation) Failed() bool {
	if c.Config.WarningsAsErrors && c.Sink.WarningCount() > 0 {
		return true
	}
	return c.Sink.ErrorCount() > 0
}

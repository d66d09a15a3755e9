package typectx

import (
	"fmt"
	"strings"

	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// Context is the process-scoped (per-compilation) arena described in
// spec.md §4.1. It owns every Type for the lifetime of one compilation;
// structural keys are hashed deterministically so that two factory calls
// with the same key return the same handle. Var and Applied are allowed to
// diverge from strict hash-consing (Var and Generic are always fresh;
// Applied is keyed on its children's handles, which is still structural, but
// distinct AdtDecl pointers for the "same" generic at different instantiation
// sites are intentionally kept apart upstream in the resolver).
type Context struct {
	arena []Type

	builtins map[BuiltinKind]*Builtin
	adts     map[string]*Adt
	tuples   map[string]*Tuple
	funs     map[string]*Fun
	ptrs     map[Type]*Ptr
	refs     map[Type]*Ref
	applieds map[string]*Applied

	vars     []*Var
	generics []*Generic
	err      *Err

	nextVarID uint64
}

// New creates a Context with builtins and Err pre-allocated, per spec.md
// §4.1's lifecycle contract.
func New() *Context {
	c := &Context{
		builtins: make(map[BuiltinKind]*Builtin),
		adts:     make(map[string]*Adt),
		tuples:   make(map[string]*Tuple),
		funs:     make(map[string]*Fun),
		ptrs:     make(map[Type]*Ptr),
		refs:     make(map[Type]*Ref),
		applieds: make(map[string]*Applied),
	}
	for k := I8; k <= Null; k++ {
		b := &Builtin{BKind: k}
		c.allocate(b)
		c.builtins[k] = b
	}
	c.err = c.allocate(&Err{}).(*Err)
	return c
}

// Reset tears the context down and reinitializes it, as required for reusing
// a Context across compilations (spec.md §4.1, §9 on the Type Context being
// process-wide state with explicit init/teardown).
func (c *Context) Reset() {
	*c = *New()
}

func (c *Context) allocate(t Type) Type {
	c.arena = append(c.arena, t)
	return t
}

// GetAll returns every type ever allocated by this context, in allocation
// order. Nothing in this module calls it; the Unifier creates its nodes
// lazily on first use.
func (c *Context) GetAll() []Type {
	return c.arena
}

func (c *Context) GetBuiltin(kind BuiltinKind, span lexer.Span) TypeRef {
	b, ok := c.builtins[kind]
	if !ok {
		b = &Builtin{BKind: kind}
		c.allocate(b)
		c.builtins[kind] = b
	}
	return TypeRef{Handle: b, Span: span}
}

func (c *Context) GetAdt(name string, decl AdtDecl, span lexer.Span) TypeRef {
	a, ok := c.adts[name]
	if !ok {
		a = &Adt{Name: name, Decl: decl}
		c.allocate(a)
		c.adts[name] = a
	} else if decl != nil {
		a.Decl = decl
	}
	return TypeRef{Handle: a, Span: span}
}

func handleKey(h Type) string { return fmt.Sprintf("%p", h) }

func tupleKey(elems []TypeRef) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = handleKey(e.Handle)
	}
	return strings.Join(parts, ",")
}

func (c *Context) GetTuple(elems []TypeRef, span lexer.Span) TypeRef {
	key := tupleKey(elems)
	t, ok := c.tuples[key]
	if !ok {
		t = &Tuple{Elems: elems}
		c.allocate(t)
		c.tuples[key] = t
	}
	return TypeRef{Handle: t, Span: span}
}

func funKey(params []TypeRef, ret TypeRef) string {
	parts := make([]string, len(params)+1)
	for i, p := range params {
		parts[i] = handleKey(p.Handle)
	}
	parts[len(params)] = handleKey(ret.Handle)
	return strings.Join(parts, ",")
}

func (c *Context) GetFun(params []TypeRef, ret TypeRef, span lexer.Span) TypeRef {
	key := funKey(params, ret)
	f, ok := c.funs[key]
	if !ok {
		f = &Fun{Params: params, Return: ret}
		c.allocate(f)
		c.funs[key] = f
	}
	return TypeRef{Handle: f, Span: span}
}

func (c *Context) GetPtr(pointee TypeRef, span lexer.Span) TypeRef {
	p, ok := c.ptrs[pointee.Handle]
	if !ok {
		p = &Ptr{Pointee: pointee}
		c.allocate(p)
		c.ptrs[pointee.Handle] = p
	}
	return TypeRef{Handle: p, Span: span}
}

func (c *Context) GetRef(pointee TypeRef, span lexer.Span) TypeRef {
	r, ok := c.refs[pointee.Handle]
	if !ok {
		r = &Ref{Pointee: pointee}
		c.allocate(r)
		c.refs[pointee.Handle] = r
	}
	return TypeRef{Handle: r, Span: span}
}

// GetVar always allocates a fresh type variable; Var is never deduplicated.
// Identifiers increase monotonically, per spec.md §5's determinism guarantee.
func (c *Context) GetVar(domain Domain, span lexer.Span) TypeRef {
	v := &Var{N: c.nextVarID, domain: domain}
	c.nextVarID++
	c.allocate(v)
	c.vars = append(c.vars, v)
	return TypeRef{Handle: v, Span: span}
}

// GetGeneric always allocates fresh: two lexically identical parameter names
// declared on different items are distinct parameters, distinguished by decl.
func (c *Context) GetGeneric(name string, decl GenericDecl, span lexer.Span) TypeRef {
	g := &Generic{Name: name, Decl: decl}
	c.allocate(g)
	c.generics = append(c.generics, g)
	return TypeRef{Handle: g, Span: span}
}

func appliedKey(base TypeRef, args []TypeRef) string {
	parts := make([]string, len(args)+1)
	parts[0] = handleKey(base.Handle)
	for i, a := range args {
		parts[i+1] = handleKey(a.Handle)
	}
	return strings.Join(parts, ",")
}

func (c *Context) GetApplied(base TypeRef, args []TypeRef, span lexer.Span) TypeRef {
	key := appliedKey(base, args)
	a, ok := c.applieds[key]
	if !ok {
		a = &Applied{Base: base, Args: args}
		c.allocate(a)
		c.applieds[key] = a
	}
	return TypeRef{Handle: a, Span: span}
}

func (c *Context) GetErr(span lexer.Span) TypeRef {
	return TypeRef{Handle: c.err, Span: span}
}

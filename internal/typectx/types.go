// Package typectx is the Type Context: a process-scoped arena that interns
// every type used during one compilation and is the single source of type
// identity. Equal structural keys return the same handle; Var is the only
// type that is mutable once interned (its domain narrows over time).
package typectx

import (
	"fmt"
	"strings"

	"github.com/malphas-lang/malphas-lang/internal/lexer"
)

// Kind tags the variant of an interned Type.
type Kind int

const (
	KindBuiltin Kind = iota
	KindAdt
	KindTuple
	KindFun
	KindPtr
	KindRef
	KindVar
	KindGeneric
	KindApplied
	KindErr
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "Builtin"
	case KindAdt:
		return "Adt"
	case KindTuple:
		return "Tuple"
	case KindFun:
		return "Fun"
	case KindPtr:
		return "Ptr"
	case KindRef:
		return "Ref"
	case KindVar:
		return "Var"
	case KindGeneric:
		return "Generic"
	case KindApplied:
		return "Applied"
	case KindErr:
		return "Err"
	default:
		return "?"
	}
}

// Type is implemented by every member of the type universe. Identity for
// non-Var, non-Applied, non-Generic kinds is hash-consed: equal structural
// keys produce the same pointer, so `==` on the concrete pointer is type
// equality.
type Type interface {
	Kind() Kind
	String() string
}

// AdtDecl is the minimal back-reference contract an Adt handle needs from
// its declaration. internal/ast's struct/enum declarations satisfy it.
type AdtDecl interface {
	AdtName() string
}

// GenericDecl is the back-reference contract a Generic handle needs from the
// generic parameter declaration it names.
type GenericDecl interface {
	GenericParamName() string
}

// BuiltinKind enumerates the fixed set of builtin types.
type BuiltinKind int

const (
	I8 BuiltinKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	Char
	String
	Range
	Null
)

var builtinNames = map[BuiltinKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64",
	Bool: "bool", Char: "char", String: "string",
	Range: "Range", Null: "Null",
}

func (k BuiltinKind) String() string { return builtinNames[k] }

// IsInteger reports whether k is one of the signed/unsigned integer widths.
func (k BuiltinKind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is one of the floating-point widths.
func (k BuiltinKind) IsFloat() bool {
	return k == F32 || k == F64
}

// BuiltinKindByName maps source-level primitive names to their kind, used by
// the resolver's and inferencer's type-expression resolution and to seed the
// resolver's primitive names (spec.md §4.2.2.2: primitive names take precedence).
var BuiltinKindByName = map[string]BuiltinKind{
	"i8": I8, "i16": I16, "i32": I32, "i64": I64,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64,
	"f32": F32, "f64": F64,
	"bool": Bool, "char": Char, "string": String,
}

// TypeRef bundles an interned type handle with the span of the reference
// that produced it (not the type's own declaration span; a type may be
// referenced from many spans). Pointer equality of Handle is type identity.
type TypeRef struct {
	Handle Type
	Span   lexer.Span
}

func (r TypeRef) Kind() Kind { return r.Handle.Kind() }
func (r TypeRef) String() string {
	if r.Handle == nil {
		return "<nil>"
	}
	return r.Handle.String()
}

// IsVar reports whether the handle is still an unresolved type variable.
func (r TypeRef) IsVar() bool { return r.Kind() == KindVar }

// IsErr reports whether the handle is the poisoning Err sentinel.
func (r TypeRef) IsErr() bool { return r.Kind() == KindErr }

// Builtin is a primitive type. Identity: the builtin kind.
type Builtin struct {
	BKind BuiltinKind
}

func (b *Builtin) Kind() Kind      { return KindBuiltin }
func (b *Builtin) String() string  { return b.BKind.String() }

// Adt is a user-defined struct or enum. Identity: the name.
type Adt struct {
	Name string
	Decl AdtDecl
}

func (a *Adt) Kind() Kind     { return KindAdt }
func (a *Adt) String() string { return a.Name }

// Tuple is an ordered sequence of element types. Identity: structural.
type Tuple struct {
	Elems []TypeRef
}

func (t *Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Fun is a function signature: ordered parameters plus a return type.
// Identity: structural.
type Fun struct {
	Params []TypeRef
	Return TypeRef
}

func (f *Fun) Kind() Kind { return KindFun }
func (f *Fun) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fun(%s) -> %s", strings.Join(parts, ", "), f.Return.String())
}

// Ptr is a pointer to an interned pointee. Identity: one-to-one with pointee.
type Ptr struct {
	Pointee TypeRef
}

func (p *Ptr) Kind() Kind     { return KindPtr }
func (p *Ptr) String() string { return "*" + p.Pointee.String() }

// Ref is a reference to an interned pointee. Identity: one-to-one with pointee.
type Ref struct {
	Pointee TypeRef
}

func (r *Ref) Kind() Kind     { return KindRef }
func (r *Ref) String() string { return "&" + r.Pointee.String() }

// Domain restricts what concrete types a Var may eventually resolve to.
type Domain int

const (
	DomainAny Domain = iota
	DomainInt
	DomainFloat
	DomainAdt
)

func (d Domain) String() string {
	switch d {
	case DomainAny:
		return "Any"
	case DomainInt:
		return "Int"
	case DomainFloat:
		return "Float"
	case DomainAdt:
		return "Adt"
	default:
		return "?"
	}
}

// Var is a type variable, identified by a globally unique integer, carrying
// a domain that may narrow over time. It is the only mutable type in the
// universe once interned — every other kind is immutable once hash-consed.
type Var struct {
	N      uint64
	domain Domain
}

func (v *Var) Kind() Kind       { return KindVar }
func (v *Var) String() string   { return fmt.Sprintf("?%d", v.N) }
func (v *Var) Domain() Domain   { return v.domain }
func (v *Var) SetDomain(d Domain) { v.domain = d }

// Accepts reports whether a concrete type lies within v's domain. Only
// meaningful for concrete (non-Var) handles; callers should resolve through
// the unifier first if t might itself be a Var.
func (v *Var) Accepts(t Type) bool {
	switch v.domain {
	case DomainAny:
		return true
	case DomainInt:
		b, ok := t.(*Builtin)
		return ok && b.BKind.IsInteger()
	case DomainFloat:
		b, ok := t.(*Builtin)
		return ok && b.BKind.IsFloat()
	case DomainAdt:
		switch t.(type) {
		case *Adt, *Applied:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// OccursIn reports whether v is structurally reachable from t's children,
// used by the unifier's occurs check before binding v to a composite
// concrete type.
func (v *Var) OccursIn(t Type) bool {
	switch c := t.(type) {
	case *Var:
		return c == v
	case *Tuple:
		for _, e := range c.Elems {
			if v.OccursIn(e.Handle) {
				return true
			}
		}
		return false
	case *Fun:
		for _, p := range c.Params {
			if v.OccursIn(p.Handle) {
				return true
			}
		}
		return v.OccursIn(c.Return.Handle)
	case *Ptr:
		return v.OccursIn(c.Pointee.Handle)
	case *Ref:
		return v.OccursIn(c.Pointee.Handle)
	case *Applied:
		if v.OccursIn(c.Base.Handle) {
			return true
		}
		for _, a := range c.Args {
			if v.OccursIn(a.Handle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Generic is a type parameter declared by a generic item, always allocated
// fresh (never deduplicated — two textually identical declarations of `T` in
// different items are distinct parameters).
type Generic struct {
	Name string
	Decl GenericDecl
}

func (g *Generic) Kind() Kind     { return KindGeneric }
func (g *Generic) String() string { return g.Name }

// Applied is a generic type instantiated with type arguments, e.g. Box<i32>.
// Identity: structural.
type Applied struct {
	Base TypeRef
	Args []TypeRef
}

func (a *Applied) Kind() Kind { return KindApplied }
func (a *Applied) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s<%s>", a.Base.String(), strings.Join(parts, ", "))
}

// Err is a singleton poisoning marker: unifying Err with anything trivially
// succeeds, suppressing cascading errors after a prior failure.
type Err struct{}

func (e *Err) Kind() Kind     { return KindErr }
func (e *Err) String() string { return "<err>" }

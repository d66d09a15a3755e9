package ast

import (
	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

// Ident is a bare identifier occurrence with its own span, used for names
// that aren't full expressions (declaration names, field names, import
// path segments).
type Ident struct {
	baseNode
	Name string
}

func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{baseNode: baseNode{span: span}, Name: name}
}

// ImportDecl is `import <path> [as <alias>]`.
type ImportDecl struct {
	baseNode
	Path  []*Ident
	Alias *Ident
}

func (d *ImportDecl) declNode() {}

// UseDecl is a type alias directive: `use <path> [as <alias>]`.
type UseDecl struct {
	baseNode
	Path  []*Ident
	Alias *Ident
}

func (d *UseDecl) declNode() {}

// GenericParam is a type parameter declared by a generic item.
type GenericParam struct {
	baseNode
	Name *Ident
	// Slot is populated by the resolver with this parameter's typectx.Generic
	// handle, used by the inferencer for instantiation.
	Slot typectx.TypeRef
}

func (g *GenericParam) GenericParamName() string { return g.Name.Name }

// Param is a function/method parameter.
type Param struct {
	baseNode
	Name       *Ident
	Mutability Mutability
	Declared   TypeExpr // nil if untyped (rare; methods' synthetic `this` has none)
	Resolved   typectx.TypeRef
}

// Local is a `const`/`var` local declaration (spec.md's "Var" local decl;
// named Local here to avoid colliding with typectx.Var).
type Local struct {
	baseNode
	Name        *Ident
	Mutability  Mutability
	Declared    TypeExpr // optional explicit annotation
	Init        Expr     // optional initializer
	Resolved    typectx.TypeRef
}

func (l *Local) declNode() {}

// Field is a struct member. ParentAdt is a non-owning back-reference set
// once by the enclosing StructDecl's constructor and never mutated
// (spec.md §9's weak-back-reference guidance).
type Field struct {
	baseNode
	Index      int
	Visibility Visibility
	Name       *Ident
	Declared   TypeExpr
	Default    Expr // optional default initializer
	Resolved   typectx.TypeRef
	ParentAdt  *StructDecl
}

// Variant is an enum member. ParentAdt mirrors Field's back-reference.
type Variant struct {
	baseNode
	Index     int
	Name      *Ident
	Payload   TypeExpr // optional
	Resolved  typectx.TypeRef
	ParentAdt *EnumDecl
}

// FnDecl is a top-level function or, when Receiver != nil, a method.
type FnDecl struct {
	baseNode
	Visibility   Visibility
	Name         *Ident
	GenericParams []*GenericParam
	Receiver     *Param // non-nil for methods; bound to Ref<Adt> by the resolver
	Params       []*Param
	ReturnType   TypeExpr // nil means Null
	Body         *Block
	Resolved     typectx.TypeRef // the declared return type (Null when ReturnType is nil), set by the resolver
}

func (f *FnDecl) declNode() {}

func (f *FnDecl) IsMethod() bool { return f.Receiver != nil }

// StructDecl is a struct item.
type StructDecl struct {
	baseNode
	Visibility    Visibility
	Name          *Ident
	GenericParams []*GenericParam
	Fields        []*Field
	Methods       []*FnDecl
	Resolved      typectx.TypeRef
}

func (s *StructDecl) declNode()        {}
func (s *StructDecl) AdtName() string  { return s.Name.Name }

// NewStructDecl constructs a StructDecl and back-patches every field's
// ParentAdt pointer, per the weak-back-reference discipline in spec.md §9.
func NewStructDecl(name *Ident, span lexer.Span, generics []*GenericParam, fields []*Field, methods []*FnDecl) *StructDecl {
	s := &StructDecl{
		baseNode:      baseNode{span: span},
		Name:          name,
		GenericParams: generics,
		Fields:        fields,
		Methods:       methods,
	}
	for _, f := range fields {
		f.ParentAdt = s
	}
	return s
}

// EnumDecl is an enum item.
type EnumDecl struct {
	baseNode
	Visibility    Visibility
	Name          *Ident
	GenericParams []*GenericParam
	Variants      []*Variant
	Methods       []*FnDecl
	Resolved      typectx.TypeRef
}

func (e *EnumDecl) declNode()       {}
func (e *EnumDecl) AdtName() string { return e.Name.Name }

// NewEnumDecl constructs an EnumDecl and back-patches every variant's
// ParentAdt pointer.
func NewEnumDecl(name *Ident, span lexer.Span, generics []*GenericParam, variants []*Variant, methods []*FnDecl) *EnumDecl {
	e := &EnumDecl{
		baseNode:      baseNode{span: span},
		Name:          name,
		GenericParams: generics,
		Variants:      variants,
		Methods:       methods,
	}
	for _, v := range variants {
		v.ParentAdt = e
	}
	return e
}

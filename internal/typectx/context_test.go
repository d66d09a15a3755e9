package typectx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/malphas-lang/internal/lexer"
	"github.com/malphas-lang/malphas-lang/internal/typectx"
)

var noSpan = lexer.Span{}

// TestInterningProperty exercises spec.md §8.1's type-interning invariant:
// two calls to a factory with the same structural key return the same
// handle, across every kind that is hash-consed.
func TestInterningProperty(t *testing.T) {
	ctx := typectx.New()

	a1 := ctx.GetBuiltin(typectx.I32, noSpan)
	a2 := ctx.GetBuiltin(typectx.I32, noSpan)
	assert.Same(t, a1.Handle, a2.Handle)

	s1 := ctx.GetAdt("Color", nil, noSpan)
	s2 := ctx.GetAdt("Color", nil, noSpan)
	assert.Same(t, s1.Handle, s2.Handle)

	i32 := ctx.GetBuiltin(typectx.I32, noSpan)
	boolT := ctx.GetBuiltin(typectx.Bool, noSpan)
	t1 := ctx.GetTuple([]typectx.TypeRef{i32, boolT}, noSpan)
	t2 := ctx.GetTuple([]typectx.TypeRef{i32, boolT}, noSpan)
	assert.Same(t, t1.Handle, t2.Handle)

	f1 := ctx.GetFun([]typectx.TypeRef{i32}, boolT, noSpan)
	f2 := ctx.GetFun([]typectx.TypeRef{i32}, boolT, noSpan)
	assert.Same(t, f1.Handle, f2.Handle)

	p1 := ctx.GetPtr(i32, noSpan)
	p2 := ctx.GetPtr(i32, noSpan)
	assert.Same(t, p1.Handle, p2.Handle)

	r1 := ctx.GetRef(i32, noSpan)
	r2 := ctx.GetRef(i32, noSpan)
	assert.Same(t, r1.Handle, r2.Handle)

	box := ctx.GetAdt("Box", nil, noSpan)
	ap1 := ctx.GetApplied(box, []typectx.TypeRef{i32}, noSpan)
	ap2 := ctx.GetApplied(box, []typectx.TypeRef{i32}, noSpan)
	assert.Same(t, ap1.Handle, ap2.Handle)
}

func TestVarAndGenericAlwaysFresh(t *testing.T) {
	ctx := typectx.New()
	v1 := ctx.GetVar(typectx.DomainAny, noSpan)
	v2 := ctx.GetVar(typectx.DomainAny, noSpan)
	assert.NotSame(t, v1.Handle, v2.Handle)

	g1 := ctx.GetGeneric("T", nil, noSpan)
	g2 := ctx.GetGeneric("T", nil, noSpan)
	assert.NotSame(t, g1.Handle, g2.Handle)
}

func TestVarIDsMonotonic(t *testing.T) {
	ctx := typectx.New()
	v1 := ctx.GetVar(typectx.DomainAny, noSpan).Handle.(*typectx.Var)
	v2 := ctx.GetVar(typectx.DomainAny, noSpan).Handle.(*typectx.Var)
	assert.Less(t, v1.N, v2.N)
}

func TestErrIsSingleton(t *testing.T) {
	ctx := typectx.New()
	e1 := ctx.GetErr(noSpan)
	e2 := ctx.GetErr(noSpan)
	assert.Same(t, e1.Handle, e2.Handle)
}

func TestVarAcceptsDomain(t *testing.T) {
	ctx := typectx.New()
	i32 := ctx.GetBuiltin(typectx.I32, noSpan)
	f64 := ctx.GetBuiltin(typectx.F64, noSpan)
	str := ctx.GetBuiltin(typectx.String, noSpan)

	intVar := ctx.GetVar(typectx.DomainInt, noSpan).Handle.(*typectx.Var)
	assert.True(t, intVar.Accepts(i32.Handle))
	assert.False(t, intVar.Accepts(f64.Handle))
	assert.False(t, intVar.Accepts(str.Handle))

	anyVar := ctx.GetVar(typectx.DomainAny, noSpan).Handle.(*typectx.Var)
	assert.True(t, anyVar.Accepts(str.Handle))
}

func TestOccursCheck(t *testing.T) {
	ctx := typectx.New()
	vRef := ctx.GetVar(typectx.DomainAny, noSpan)
	v := vRef.Handle.(*typectx.Var)

	ptr := ctx.GetPtr(vRef, noSpan)
	assert.True(t, v.OccursIn(ptr.Handle))

	i32 := ctx.GetBuiltin(typectx.I32, noSpan)
	assert.False(t, v.OccursIn(i32.Handle))

	other := ctx.GetVar(typectx.DomainAny, noSpan).Handle.(*typectx.Var)
	assert.False(t, v.OccursIn(other))
}

func TestResetReinitializesBuiltinsAndErr(t *testing.T) {
	ctx := typectx.New()
	before := ctx.GetBuiltin(typectx.I32, noSpan)
	ctx.Reset()
	after := ctx.GetBuiltin(typectx.I32, noSpan)
	require.NotNil(t, ctx.GetErr(noSpan).Handle)
	assert.NotSame(t, before.Handle, after.Handle)
}

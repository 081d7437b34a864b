package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

type countingResolver struct {
	mapResolver
	calls int
}

func (r *countingResolver) ResolveType(namespace, name string, entity bool) (Type, error) {
	r.calls++
	return r.mapResolver.ResolveType(namespace, name, entity)
}

func TestSoftTypeRefIsLazyAndIdempotent(t *testing.T) {
	r := &countingResolver{mapResolver: builtins(t)}
	ref := NewSoftTypeRef(r, xsdNS, " string ", false)
	assert.Equal(t, 0, r.calls)
	assert.Equal(t, "{"+xsdNS+"}string", ref.String())

	first, err := ref.Resolve()
	require.NoError(t, err)
	second, err := ref.Resolve()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.calls)
}

func TestSoftTypeRefFailures(t *testing.T) {
	ref := NewSoftTypeRef(builtins(t), "", "Customer", true)
	_, err := ref.Resolve()
	var unresolved *xsderrors.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.True(t, unresolved.Entity)
	assert.Equal(t, "Customer", unresolved.Name)

	_, err = NewSoftTypeRef(nil, "", "Customer", false).Resolve()
	assert.ErrorAs(t, err, &unresolved)
}

func TestSoftFieldRef(t *testing.T) {
	ext := builtins(t)
	customer := NewComplexType("", "Customer", true)
	customer.AddField(mustField(t, "id", 1, 1).As(NewSoftTypeRef(ext, xsdNS, "string", false)))
	customer.RegisterKey(NewSoftFieldRef(nil, "", "Customer", "id", true))
	ext[typeKey{name: "Customer"}] = Freeze([]*TypeBuilder{customer}, ext, nil)[0]

	id := NewSoftIDFieldRef(ext, "", "Customer")
	assert.True(t, id.Identifier())
	fields, err := id.Resolve()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "id", fields[0].Name())

	byPath := NewSoftFieldRef(ext, "", "Customer", "/id/", true)
	assert.Equal(t, "id", byPath.Path())
	f, err := byPath.ResolveField()
	require.NoError(t, err)
	assert.Same(t, fields[0], f)

	_, err = NewSoftFieldRef(ext, "", "Customer", "missing", true).Resolve()
	var unresolved *xsderrors.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.Path)

	_, err = NewSoftFieldRef(ext, xsdNS, "string", "x", false).Resolve()
	var mismatch *xsderrors.KindMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

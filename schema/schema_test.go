package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinChain(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{name: "token", want: []string{"token", "normalizedString", "string", "anySimpleType"}},
		{name: "unsignedByte", want: []string{"unsignedByte", "unsignedShort", "unsignedInt", "unsignedLong", "nonNegativeInteger", "integer", "decimal", "anySimpleType"}},
		{name: "anySimpleType", want: []string{"anySimpleType"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := Builtin(tt.name)
			require.True(t, ok)
			var got []string
			for cur := st; cur != nil; cur = cur.BaseType {
				assert.True(t, cur.Builtin())
				assert.Equal(t, XSDNamespace, cur.Namespace)
				got = append(got, cur.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Builtin("nope")
	assert.False(t, ok)

	def, ok := LookupBuiltin(QName{Namespace: XSDNamespace, Local: "anyType"})
	require.True(t, ok)
	assert.Same(t, AnyType, def)
	_, ok = LookupBuiltin(QName{Local: "string"})
	assert.False(t, ok)
}

func TestHasEnumerationFollowsBaseChain(t *testing.T) {
	str, _ := Builtin("string")
	colors := &SimpleType{
		Name:     "Color",
		BaseType: str,
		Facets: []Facet{
			{Kind: FacetEnumeration, Value: "red"},
			{Kind: FacetEnumeration, Value: "blue"},
		},
	}
	restricted := &SimpleType{BaseType: colors, Facets: []Facet{{Kind: FacetMaxLength, Value: "4"}}}

	assert.True(t, colors.HasEnumeration())
	assert.True(t, restricted.HasEnumeration())
	assert.False(t, str.HasEnumeration())
	assert.Equal(t, []string{"red", "blue"}, restricted.Enumeration())

	v, ok := restricted.Facet(FacetMaxLength)
	require.True(t, ok)
	assert.Equal(t, "4", v)
	assert.True(t, restricted.Anonymous())
}

type recorder struct {
	stopAt string
	calls  []string
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	if call == r.stopAt {
		return errors.New("stop")
	}
	return nil
}

func (r *recorder) VisitSchema(*Schema) error             { return r.record("schema") }
func (r *recorder) VisitSimpleType(s *SimpleType) error   { return r.record("simple:" + s.Name) }
func (r *recorder) VisitComplexType(c *ComplexType) error { return r.record("complex:" + c.Name) }
func (r *recorder) VisitElement(e *Element) error         { return r.record("element:" + e.Name) }

func TestWalkSchemaOrder(t *testing.T) {
	person := &ComplexType{Name: "PersonType"}
	customer := &ComplexType{Name: "CustomerType", BaseType: person, Base: QName{Local: "PersonType"}}
	s := &Schema{
		SimpleTypes:  []*SimpleType{{Name: "Code"}},
		ComplexTypes: []*ComplexType{customer, person},
		Elements:     []*Element{{Name: "Customer", Global: true}, {Name: "Person", Global: true}},
	}

	r := &recorder{}
	require.NoError(t, Walk(s, r))
	assert.Equal(t, []string{
		"simple:Code",
		"complex:PersonType",
		"complex:CustomerType",
		"element:Customer",
		"element:Person",
		"schema",
	}, r.calls)

	r = &recorder{stopAt: "complex:PersonType"}
	assert.Error(t, Walk(s, r))
	assert.Equal(t, []string{"simple:Code", "complex:PersonType"}, r.calls)
}

func TestWalkModelGroup(t *testing.T) {
	inner := &ModelGroup{Compositor: Choice, Particles: []*Particle{
		{Term: &Element{Name: "b"}},
		{Term: &Wildcard{}},
	}}
	group := &ModelGroup{Particles: []*Particle{
		{Term: &Element{Name: "a"}},
		{Term: inner},
		{Term: &Element{Name: "c"}},
	}}

	r := &recorder{}
	require.NoError(t, Walk(group, r))
	assert.Equal(t, []string{"element:a", "element:b", "element:c"}, r.calls)
	assert.NoError(t, Walk(nil, r))
}

func TestAppInfoBySource(t *testing.T) {
	a := &Annotation{AppInfo: []AppInfo{
		{Source: "X_ForeignKey", Text: "Customer/id"},
		{Source: "X_Label_EN", Text: "Customer"},
		{Source: "X_ForeignKey", Text: "Other/id"},
	}}
	got := a.AppInfoBySource("X_ForeignKey")
	require.Len(t, got, 2)
	assert.Equal(t, "Other/id", got[1].Text)

	var none *Annotation
	assert.Nil(t, none.AppInfoBySource("X_ForeignKey"))
}

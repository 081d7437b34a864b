package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
)

func field(t *testing.T, name string, minOccurs, maxOccurs int) *metadata.FieldBuilder {
	t.Helper()
	f, err := metadata.NewField(name, minOccurs, maxOccurs)
	require.NoError(t, err)
	return f
}

func key(typeName, path string) *metadata.SoftFieldRef {
	return metadata.NewSoftFieldRef(nil, "", typeName, path, true)
}

func ref(name string, entity bool) *metadata.SoftTypeRef {
	return metadata.NewSoftTypeRef(nil, "", name, entity)
}

func freeze(drafts ...*metadata.TypeBuilder) map[string]*metadata.ComplexType {
	out := make(map[string]*metadata.ComplexType)
	for _, t := range metadata.Freeze(drafts, nil, nil) {
		if ct, ok := t.(*metadata.ComplexType); ok {
			out[ct.Name()] = ct
		}
	}
	return out
}

func TestFieldInheritanceOverrideIsFailFast(t *testing.T) {
	person := metadata.NewComplexType("", "Person", false).AddField(field(t, "name", 1, 1))
	customer := metadata.NewComplexType("", "Customer", true).
		AddSuperType(ref("Person", false)).
		AddField(field(t, "name", 1, 1).SetData(metadata.DataXSDLine, 12))
	types := freeze(person, customer)

	h := NewCollectingHandler()
	ok := ValidateType(h, types["Customer"])

	assert.False(t, ok)
	assert.Equal(t, []xsderrors.Kind{xsderrors.KindFieldCannotOverrideInheritedElement}, h.Kinds())
	records := h.Records()
	assert.Equal(t, "Customer", records[0].Owner)
	assert.Equal(t, 12, records[0].Line)
	assert.Equal(t, "field 'name' can not override inherited element", records[0].Message)
}

func TestKeyFieldRules(t *testing.T) {
	address := metadata.NewComplexType("", "Address", false).AddField(field(t, "city", 1, 1))
	customer := metadata.NewComplexType("", "Customer", true).
		AddField(field(t, "id", 0, metadata.Unbounded)).
		AddField(field(t, "address", 1, 1).As(ref("Address", false))).
		RegisterKey(key("Customer", "id")).
		RegisterKey(key("Customer", "address"))
	types := freeze(address, customer)

	h := NewCollectingHandler()
	assert.False(t, ValidateType(h, types["Customer"]))
	assert.Equal(t, []xsderrors.Kind{
		xsderrors.KindKeyFieldMustBeMandatory,
		xsderrors.KindKeyFieldCannotBeRepeatable,
		xsderrors.KindKeyFieldMustBeSimple,
	}, h.Kinds())
	assert.Equal(t, 3, h.ErrorCount())
}

func TestEntityKeys(t *testing.T) {
	person := metadata.NewComplexType("", "Person", true).
		AddField(field(t, "id", 1, 1)).
		RegisterKey(key("Person", "id"))
	customer := metadata.NewComplexType("", "Customer", true).
		AddSuperType(ref("Person", true)).
		AddField(field(t, "code", 1, 1)).
		RegisterKey(key("Customer", "code"))
	employee := metadata.NewComplexType("", "Employee", true).
		AddSuperType(ref("Person", true)).
		AddField(field(t, "badge", 1, 1))
	orphan := metadata.NewComplexType("", "Orphan", true).AddField(field(t, "x", 1, 1))
	types := freeze(person, customer, employee, orphan)

	tests := []struct {
		name string
		typ  string
		want []xsderrors.Kind
	}{
		{name: "own key", typ: "Person"},
		{name: "inherited key", typ: "Employee"},
		{name: "overridden key", typ: "Customer", want: []xsderrors.Kind{xsderrors.KindTypeCannotOverrideSuperTypeKey}},
		{name: "no key", typ: "Orphan", want: []xsderrors.Kind{xsderrors.KindTypeMustHaveKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCollectingHandler()
			assert.Equal(t, len(tt.want) == 0, ValidateType(h, types[tt.typ]))
			if len(tt.want) == 0 {
				assert.Empty(t, h.Records())
				return
			}
			assert.Equal(t, tt.want, h.Kinds())
		})
	}
}

func TestForeignKeyInfoRule(t *testing.T) {
	customer := metadata.NewComplexType("", "Customer", true).
		AddField(field(t, "id", 1, 1)).
		AddField(field(t, "name", 0, 1)).
		RegisterKey(key("Customer", "id"))
	supplier := metadata.NewComplexType("", "Supplier", true).
		AddField(field(t, "id", 1, 1)).
		AddField(field(t, "name", 0, 1)).
		RegisterKey(key("Supplier", "id"))

	fk := field(t, "customer", 0, 1)
	fk.ForeignKey().
		Reference(ref("Customer", true), metadata.NewSoftIDFieldRef(nil, "", "Customer")).
		AddInfo(key("Customer", "name")).
		AddInfo(key("Supplier", "name"))
	order := metadata.NewComplexType("", "Order", true).
		AddField(field(t, "id", 1, 1)).
		AddField(fk).
		RegisterKey(key("Order", "id"))
	types := freeze(customer, supplier, order)

	h := NewCollectingHandler()
	assert.False(t, ValidateType(h, types["Order"]))
	assert.Equal(t, []xsderrors.Kind{xsderrors.KindForeignKeyInfoNotInReferencedType}, h.Kinds())
	assert.Contains(t, h.Records()[0].Message, "Supplier/name")
}

func TestFieldPathRuleWarns(t *testing.T) {
	customer := metadata.NewComplexType("", "Customer", true).
		AddField(field(t, "id", 1, 1)).
		AddField(field(t, "name", 0, 1)).
		RegisterKey(key("Customer", "id")).
		AddPrimaryKeyInfo("name", "nickname").
		AddLookupField("id")
	types := freeze(customer)

	h := NewCollectingHandler()
	ValidateType(h, types["Customer"])
	records := h.Records()
	require.Len(t, records, 1)
	assert.Equal(t, xsderrors.SeverityWarning, records[0].Severity)
	assert.Contains(t, records[0].Message, "nickname")
	assert.Equal(t, 0, h.ErrorCount())
	assert.NoError(t, h.Err())
}

func TestSuperTypeCycleRule(t *testing.T) {
	a := metadata.NewComplexType("", "A", false).AddSuperType(ref("B", false))
	b := metadata.NewComplexType("", "B", false).AddSuperType(ref("A", false))
	c := metadata.NewComplexType("", "C", false).AddSuperType(ref("A", false))
	types := freeze(a, b, c)

	h := NewCollectingHandler()
	rule := SuperTypeCycleRule{Types: []*metadata.ComplexType{types["C"], types["A"], types["B"]}}
	assert.False(t, rule.Perform(h))
	require.Len(t, h.Records(), 1)
	assert.Equal(t, xsderrors.KindCyclicInheritance, h.Records()[0].Kind)
	assert.Equal(t, "cyclic inheritance: A -> B -> A", h.Records()[0].Message)

	h = NewCollectingHandler()
	assert.False(t, SuperTypeCycleRule{Types: []*metadata.ComplexType{types["C"]}}.Perform(h))
	assert.Len(t, h.Records(), 1)

	base := metadata.NewComplexType("", "Base", false)
	derived := metadata.NewComplexType("", "Derived", false).AddSuperType(ref("Base", false))
	acyclic := freeze(base, derived)
	h = NewCollectingHandler()
	assert.True(t, SuperTypeCycleRule{Types: []*metadata.ComplexType{acyclic["Derived"], acyclic["Base"]}}.Perform(h))
	assert.Empty(t, h.Records())
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.lines = append(l.lines, "warn: "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.lines = append(l.lines, "error: "+fmt.Sprintf(format, args...))
}

func TestHandlers(t *testing.T) {
	logger := &recordingLogger{}
	h := NewDefaultHandler(logger)
	Report(h, xsderrors.NewValidation(xsderrors.KindTypeMustHaveKey, "Customer", "no key"))
	warning := xsderrors.NewValidation(xsderrors.KindFieldDoesNotExist, "Customer", "missing")
	warning.Severity = xsderrors.SeverityWarning
	Report(h, warning)
	h.End()

	assert.Equal(t, 1, h.ErrorCount())
	assert.Equal(t, 1, h.WarningCount())
	assert.Equal(t, []string{
		"error: [TYPE_MUST_HAVE_KEY] no key in Customer",
		"warn: [FIELD_DOES_NOT_EXIST] missing in Customer (warning)",
	}, logger.lines)

	var noop NoOpHandler
	Report(noop, warning)
	assert.Equal(t, 0, noop.ErrorCount())
	Report(nil, warning)

	collecting := NewCollectingHandler()
	collecting.Warning(xsderrors.NewValidation(xsderrors.KindXMLSchema, "", "import not followed"))
	collecting.Error(xsderrors.NewValidation(xsderrors.KindXMLSchema, "", "bad"))
	collecting.End()
	assert.True(t, collecting.Ended())
	assert.Equal(t, 1, collecting.ErrorCount())
	list, ok := xsderrors.AsValidations(collecting.Err())
	require.True(t, ok)
	assert.Len(t, list, 1)
}

type stubRule struct {
	ran  *[]string
	name string
	ok   bool
	cont bool
}

func (r stubRule) Perform(Handler) bool {
	*r.ran = append(*r.ran, r.name)
	return r.ok
}

func (r stubRule) ContinueOnFail() bool { return r.cont }

func TestRunStopsOnFailFastRule(t *testing.T) {
	var ran []string
	ok := Run(NoOpHandler{},
		stubRule{ran: &ran, name: "a", ok: true},
		stubRule{ran: &ran, name: "b", ok: false, cont: true},
		stubRule{ran: &ran, name: "c", ok: false},
		stubRule{ran: &ran, name: "d", ok: true},
	)
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, ran)
}

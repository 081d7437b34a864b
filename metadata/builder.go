package metadata

import (
	"slices"
	"strings"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

// TypeBuilder is the mutable draft of a simple or complex type.
type TypeBuilder struct {
	data           sideData
	sealed         Type
	container      *FieldBuilder
	labels         map[string]string
	descriptions   map[string]string
	namespace      string
	name           string
	supers         []*SoftTypeRef
	fields         []*FieldBuilder
	keys           []*SoftFieldRef
	usages         []*SoftTypeRef
	schematron     []string
	primaryKeyInfo []string
	lookupFields   []string
	access         Access
	simple         bool
	instantiable   bool
	anonymous      bool
	frozen         bool
}

// NewComplexType creates a complex type draft. Instantiable drafts become
// entity types.
func NewComplexType(namespace, name string, instantiable bool) *TypeBuilder {
	return &TypeBuilder{namespace: namespace, name: name, instantiable: instantiable}
}

// NewSimpleType creates a simple type draft.
func NewSimpleType(namespace, name string) *TypeBuilder {
	return &TypeBuilder{namespace: namespace, name: name, simple: true}
}

// NewAnonymousComplexType creates the draft of an inline complex type
// declared at ownerPath.
func NewAnonymousComplexType(namespace, ownerPath string) *TypeBuilder {
	return &TypeBuilder{namespace: namespace, name: AnonymousName(ownerPath), anonymous: true}
}

// NewAnonymousSimpleType creates the draft of an inline simple type
// declared at ownerPath.
func NewAnonymousSimpleType(namespace, ownerPath string) *TypeBuilder {
	return &TypeBuilder{namespace: namespace, name: AnonymousName(ownerPath), simple: true, anonymous: true}
}

func (b *TypeBuilder) Namespace() string  { return b.namespace }
func (b *TypeBuilder) Name() string       { return b.name }
func (b *TypeBuilder) Instantiable() bool { return b.instantiable }
func (b *TypeBuilder) Simple() bool       { return b.simple }
func (b *TypeBuilder) Anonymous() bool    { return b.anonymous }

// Frozen reports whether the draft was sealed.
func (b *TypeBuilder) Frozen() bool { return b.frozen }

// Sealed returns the type the draft was sealed into, nil before Freeze.
func (b *TypeBuilder) Sealed() Type { return b.sealed }

func (b *TypeBuilder) mustBeOpen(op string) {
	if b.frozen {
		panic(&xsderrors.ContractViolationError{Op: op, Owner: b.name})
	}
}

// AddSuperType appends a super type. Declaration order is kept and a
// reference already present is ignored.
func (b *TypeBuilder) AddSuperType(ref *SoftTypeRef) *TypeBuilder {
	b.mustBeOpen("add super type")
	if ref == nil {
		return b
	}
	for _, s := range b.supers {
		if s.same(ref) {
			return b
		}
	}
	b.supers = append(b.supers, ref)
	return b
}

// SuperTypes returns the super type references in declaration order.
func (b *TypeBuilder) SuperTypes() []*SoftTypeRef { return slices.Clone(b.supers) }

// AddField appends a field, replacing any field with the same name in place.
func (b *TypeBuilder) AddField(f *FieldBuilder) *TypeBuilder {
	b.mustBeOpen("add field")
	if b.simple {
		panic(&xsderrors.ContractViolationError{Op: "add field to simple type", Owner: b.name})
	}
	f.owner = b
	for i, existing := range b.fields {
		if existing.name == f.name {
			b.fields[i] = f
			return b
		}
	}
	b.fields = append(b.fields, f)
	return b
}

// Fields returns the declared field drafts.
func (b *TypeBuilder) Fields() []*FieldBuilder { return slices.Clone(b.fields) }

// Field returns the declared field draft named name, or nil.
func (b *TypeBuilder) Field(name string) *FieldBuilder {
	for _, f := range b.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// RegisterKey adds a key field reference. Paths are checked when the draft
// is sealed; a path already registered is ignored.
func (b *TypeBuilder) RegisterKey(ref *SoftFieldRef) *TypeBuilder {
	b.mustBeOpen("register key")
	if ref == nil {
		return b
	}
	for _, k := range b.keys {
		if k.path == ref.path {
			return b
		}
	}
	b.keys = append(b.keys, ref)
	return b
}

// Keys returns the registered key references.
func (b *TypeBuilder) Keys() []*SoftFieldRef { return slices.Clone(b.keys) }

// DeclareUsage records that the entity type referenced by user embeds this type.
func (b *TypeBuilder) DeclareUsage(user *SoftTypeRef) *TypeBuilder {
	b.mustBeOpen("declare usage")
	for _, u := range b.usages {
		if u.same(user) {
			return b
		}
	}
	b.usages = append(b.usages, user)
	return b
}

// Usages returns the declared usage references.
func (b *TypeBuilder) Usages() []*SoftTypeRef { return slices.Clone(b.usages) }

// AddSchematronRule attaches a validation rule document.
func (b *TypeBuilder) AddSchematronRule(rule string) *TypeBuilder {
	b.mustBeOpen("add schematron rule")
	b.schematron = append(b.schematron, rule)
	return b
}

func (b *TypeBuilder) SchematronRules() []string { return slices.Clone(b.schematron) }

// SetData records side data.
func (b *TypeBuilder) SetData(key string, value any) *TypeBuilder {
	b.mustBeOpen("set data")
	if b.data == nil {
		b.data = make(sideData)
	}
	b.data[key] = value
	return b
}

// Data returns side data recorded on the draft.
func (b *TypeBuilder) Data(key string) (any, bool) { return b.data.get(key) }

// SetMaxLength records a maxLength or length facet value.
func (b *TypeBuilder) SetMaxLength(value string) *TypeBuilder {
	return b.SetData(DataMaxLength, value)
}

func (b *TypeBuilder) SetAccess(a Access) *TypeBuilder {
	b.mustBeOpen("set access")
	b.access = a.clone()
	return b
}

func (b *TypeBuilder) Access() Access { return b.access.clone() }

// AddPrimaryKeyInfo appends field paths displayed in place of the key.
func (b *TypeBuilder) AddPrimaryKeyInfo(paths ...string) *TypeBuilder {
	b.mustBeOpen("add primary key info")
	b.primaryKeyInfo = appendPaths(b.primaryKeyInfo, paths)
	return b
}

func (b *TypeBuilder) PrimaryKeyInfo() []string { return slices.Clone(b.primaryKeyInfo) }

// AddLookupField appends field paths used for lookups.
func (b *TypeBuilder) AddLookupField(paths ...string) *TypeBuilder {
	b.mustBeOpen("add lookup field")
	b.lookupFields = appendPaths(b.lookupFields, paths)
	return b
}

func (b *TypeBuilder) LookupFields() []string { return slices.Clone(b.lookupFields) }

// SetLabel records the label for lang.
func (b *TypeBuilder) SetLabel(lang, label string) *TypeBuilder {
	b.mustBeOpen("set label")
	b.labels = putLang(b.labels, lang, label)
	return b
}

// SetDescription records the description for lang.
func (b *TypeBuilder) SetDescription(lang, description string) *TypeBuilder {
	b.mustBeOpen("set description")
	b.descriptions = putLang(b.descriptions, lang, description)
	return b
}

func (b *TypeBuilder) Labels() map[string]string { return cloneStrings(b.labels) }

// FieldBuilder is the mutable draft of a field.
type FieldBuilder struct {
	data         sideData
	owner        *TypeBuilder
	typeRef      *SoftTypeRef
	inline       *TypeBuilder
	foreignKey   *ForeignKeyBuilder
	labels       map[string]string
	descriptions map[string]string
	name         string
	access       Access
	minOccurs    int
	maxOccurs    int
	enumeration  bool
	reference    bool
	frozen       bool
}

// NewField creates a field draft. maxOccurs is Unbounded or a bound; a
// bounded maxOccurs lower than minOccurs is rejected.
func NewField(name string, minOccurs, maxOccurs int) (*FieldBuilder, error) {
	if maxOccurs > 0 && minOccurs > maxOccurs {
		return nil, &xsderrors.OccursError{Field: name, MinOccurs: minOccurs, MaxOccurs: maxOccurs}
	}
	return &FieldBuilder{name: name, minOccurs: minOccurs, maxOccurs: maxOccurs}, nil
}

func (f *FieldBuilder) mustBeOpen(op string) {
	if f.frozen {
		panic(&xsderrors.ContractViolationError{Op: op, Owner: f.name})
	}
}

func (f *FieldBuilder) Name() string   { return f.name }
func (f *FieldBuilder) MinOccurs() int { return f.minOccurs }
func (f *FieldBuilder) MaxOccurs() int { return f.maxOccurs }

// Owner returns the type draft the field was added to, or nil.
func (f *FieldBuilder) Owner() *TypeBuilder { return f.owner }

func (f *FieldBuilder) Frozen() bool { return f.frozen }

// As types the field by reference.
func (f *FieldBuilder) As(ref *SoftTypeRef) *FieldBuilder {
	f.mustBeOpen("set field type")
	f.typeRef = ref
	f.inline = nil
	return f
}

// AsAnonymous types the field with an inline anonymous type draft.
func (f *FieldBuilder) AsAnonymous(t *TypeBuilder) *FieldBuilder {
	f.mustBeOpen("set field type")
	f.inline = t
	f.typeRef = nil
	t.container = f
	return f
}

// TypeRef returns the type reference, nil for an inline type.
func (f *FieldBuilder) TypeRef() *SoftTypeRef { return f.typeRef }

// InlineType returns the inline anonymous type draft, or nil.
func (f *FieldBuilder) InlineType() *TypeBuilder { return f.inline }

// MarkEnumeration flags the field values as restricted by enumeration facets.
func (f *FieldBuilder) MarkEnumeration() *FieldBuilder {
	f.mustBeOpen("mark enumeration")
	f.enumeration = true
	return f
}

func (f *FieldBuilder) IsEnumeration() bool { return f.enumeration }

// MarkReference flags the field as a pointer to another entity.
func (f *FieldBuilder) MarkReference() *FieldBuilder {
	f.mustBeOpen("mark reference")
	f.reference = true
	return f
}

func (f *FieldBuilder) IsReference() bool { return f.reference }

// ForeignKey returns the foreign key draft of the field, creating it and
// marking the field as a reference on first use.
func (f *FieldBuilder) ForeignKey() *ForeignKeyBuilder {
	f.mustBeOpen("set foreign key")
	if f.foreignKey == nil {
		f.foreignKey = &ForeignKeyBuilder{field: f, integrity: true}
	}
	f.reference = true
	return f.foreignKey
}

// ForeignKeyDraft returns the foreign key draft when one was declared.
func (f *FieldBuilder) ForeignKeyDraft() (*ForeignKeyBuilder, bool) {
	return f.foreignKey, f.foreignKey != nil
}

func (f *FieldBuilder) SetAccess(a Access) *FieldBuilder {
	f.mustBeOpen("set access")
	f.access = a.clone()
	return f
}

func (f *FieldBuilder) Access() Access { return f.access.clone() }

// SetLabel records the label for lang.
func (f *FieldBuilder) SetLabel(lang, label string) *FieldBuilder {
	f.mustBeOpen("set label")
	f.labels = putLang(f.labels, lang, label)
	return f
}

// SetDescription records the description for lang.
func (f *FieldBuilder) SetDescription(lang, description string) *FieldBuilder {
	f.mustBeOpen("set description")
	f.descriptions = putLang(f.descriptions, lang, description)
	return f
}

// SetData records side data.
func (f *FieldBuilder) SetData(key string, value any) *FieldBuilder {
	f.mustBeOpen("set data")
	if f.data == nil {
		f.data = make(sideData)
	}
	f.data[key] = value
	return f
}

func (f *FieldBuilder) Data(key string) (any, bool) { return f.data.get(key) }

// ForeignKeyBuilder is the mutable draft of a foreign key. Integrity is
// enforced unless disabled.
type ForeignKeyBuilder struct {
	field             *FieldBuilder
	typeRef           *SoftTypeRef
	fieldRef          *SoftFieldRef
	info              []*SoftFieldRef
	filter            string
	integrity         bool
	integrityOverride bool
}

// Reference sets the referenced entity type and field. A nil or identifier
// field reference designates the keys of the referenced type.
func (k *ForeignKeyBuilder) Reference(typeRef *SoftTypeRef, fieldRef *SoftFieldRef) *ForeignKeyBuilder {
	k.field.mustBeOpen("set foreign key")
	k.typeRef = typeRef
	k.fieldRef = fieldRef
	return k
}

// SetFilter attaches the filter expression.
func (k *ForeignKeyBuilder) SetFilter(filter string) *ForeignKeyBuilder {
	k.field.mustBeOpen("set foreign key filter")
	k.filter = filter
	return k
}

// AddInfo appends a field displayed along with the reference.
func (k *ForeignKeyBuilder) AddInfo(ref *SoftFieldRef) *ForeignKeyBuilder {
	k.field.mustBeOpen("add foreign key info")
	k.info = append(k.info, ref)
	return k
}

func (k *ForeignKeyBuilder) SetIntegrity(enforced bool) *ForeignKeyBuilder {
	k.field.mustBeOpen("set foreign key integrity")
	k.integrity = enforced
	return k
}

func (k *ForeignKeyBuilder) SetIntegrityOverride(allowed bool) *ForeignKeyBuilder {
	k.field.mustBeOpen("set foreign key integrity override")
	k.integrityOverride = allowed
	return k
}

func (k *ForeignKeyBuilder) TypeRef() *SoftTypeRef   { return k.typeRef }
func (k *ForeignKeyBuilder) FieldRef() *SoftFieldRef { return k.fieldRef }
func (k *ForeignKeyBuilder) Info() []*SoftFieldRef   { return slices.Clone(k.info) }
func (k *ForeignKeyBuilder) Filter() string          { return k.filter }
func (k *ForeignKeyBuilder) Integrity() bool         { return k.integrity }
func (k *ForeignKeyBuilder) IntegrityOverride() bool { return k.integrityOverride }

func appendPaths(dst, paths []string) []string {
	for _, p := range paths {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" && !slices.Contains(dst, p) {
			dst = append(dst, p)
		}
	}
	return dst
}

func putLang(m map[string]string, lang, value string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[strings.ToUpper(lang)] = value
	return m
}

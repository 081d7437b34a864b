package metadata

import (
	"slices"
	"strings"
)

// FieldKind classifies a sealed field by what its value holds.
type FieldKind uint8

const (
	// FieldSimple holds a simple typed value.
	FieldSimple FieldKind = iota
	// FieldEnumeration holds a value restricted by enumeration facets.
	FieldEnumeration
	// FieldContained holds an embedded complex value.
	FieldContained
	// FieldReference holds a pointer to another entity.
	FieldReference
)

// String returns the lower-case kind name.
func (k FieldKind) String() string {
	switch k {
	case FieldEnumeration:
		return "enumeration"
	case FieldContained:
		return "contained"
	case FieldReference:
		return "reference"
	default:
		return "simple"
	}
}

// Field is a sealed field of a complex type.
type Field struct {
	data         sideData
	declaring    *ComplexType
	typ          Type
	typeRef      *SoftTypeRef
	foreignKey   *ForeignKey
	labels       map[string]string
	descriptions map[string]string
	name         string
	access       Access
	minOccurs    int
	maxOccurs    int
	kind         FieldKind
	inline       bool
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Path returns the '/' separated position of the field from the outermost
// named type, descending through anonymous containers.
func (f *Field) Path() string {
	var segments []string
	cur := f
	for depth := 0; cur != nil && depth < maxHierarchyDepth; depth++ {
		segments = append(segments, cur.name)
		if cur.declaring == nil {
			break
		}
		cur = cur.declaring.container
	}
	slices.Reverse(segments)
	return strings.Join(segments, "/")
}

// DeclaringType returns the type that declares the field. Inherited fields
// keep the super type that declared them.
func (f *Field) DeclaringType() *ComplexType { return f.declaring }

// Type returns the field type, or nil when its reference did not resolve.
func (f *Field) Type() Type { return f.typ }

// TypeRef returns the reference the field type was resolved from, nil for
// inline anonymous types.
func (f *Field) TypeRef() *SoftTypeRef { return f.typeRef }

// ContainedType returns the embedded complex type of a contained field.
func (f *Field) ContainedType() *ComplexType {
	if f.kind != FieldContained {
		return nil
	}
	ct, _ := f.typ.(*ComplexType)
	return ct
}

func (f *Field) MinOccurs() int { return f.minOccurs }
func (f *Field) MaxOccurs() int { return f.maxOccurs }

// Mandatory reports minOccurs > 0.
func (f *Field) Mandatory() bool { return f.minOccurs > 0 }

// Many reports an unbounded or greater than one maxOccurs.
func (f *Field) Many() bool { return f.maxOccurs == Unbounded || f.maxOccurs > 1 }

// Enumeration reports whether the field values are restricted by enumeration facets.
func (f *Field) Enumeration() bool { return f.kind == FieldEnumeration }

func (f *Field) Kind() FieldKind { return f.kind }

// Key reports whether the field is one of the keys of its declaring type.
func (f *Field) Key() bool {
	if f.declaring == nil {
		return false
	}
	return slices.Contains(f.declaring.keys, f)
}

// ForeignKey returns the foreign key of a reference field, or nil.
func (f *Field) ForeignKey() *ForeignKey { return f.foreignKey }

// Data returns side data recorded on the field.
func (f *Field) Data(key string) (any, bool) { return f.data.get(key) }

// Position returns the source line and column of the declaration, 0 when unknown.
func (f *Field) Position() (line, column int) { return position(f.data) }

func (f *Field) Access() Access { return f.access.clone() }

// Label returns the label for lang, if any.
func (f *Field) Label(lang string) (string, bool) {
	v, ok := f.labels[strings.ToUpper(lang)]
	return v, ok
}

// Labels returns every label keyed by upper-case language code.
func (f *Field) Labels() map[string]string { return cloneStrings(f.labels) }

// Description returns the description for lang, if any.
func (f *Field) Description(lang string) (string, bool) {
	v, ok := f.descriptions[strings.ToUpper(lang)]
	return v, ok
}

// String returns Type/path.
func (f *Field) String() string {
	if f.declaring == nil {
		return f.Path()
	}
	return f.declaring.name + "/" + f.Path()
}

// Unbounded is the maxOccurs value of an unbounded field.
const Unbounded = -1

// ForeignKey describes the entity a reference field points to.
type ForeignKey struct {
	typ               *ComplexType
	typeRef           *SoftTypeRef
	fieldRef          *SoftFieldRef
	fields            []*Field
	info              []*Field
	infoRefs          []*SoftFieldRef
	filter            string
	integrity         bool
	integrityOverride bool
	implicit          bool
}

// ReferencedType returns the referenced entity type, or nil when unresolved.
func (k *ForeignKey) ReferencedType() *ComplexType { return k.typ }

// ReferencedFields returns the referenced fields: the keys of the referenced
// type for an identifier reference.
func (k *ForeignKey) ReferencedFields() []*Field { return slices.Clone(k.fields) }

// FieldRef returns the unresolved form of the referenced field.
func (k *ForeignKey) FieldRef() *SoftFieldRef { return k.fieldRef }

// Info returns the fields displayed along with the reference.
func (k *ForeignKey) Info() []*Field { return slices.Clone(k.info) }

// InfoRefs returns the unresolved form of the info fields.
func (k *ForeignKey) InfoRefs() []*SoftFieldRef { return slices.Clone(k.infoRefs) }

// Filter returns the filter expression restricting candidate targets.
func (k *ForeignKey) Filter() string { return k.filter }

// Integrity reports whether referential integrity is enforced.
func (k *ForeignKey) Integrity() bool { return k.integrity }

// IntegrityOverride reports whether users may override integrity checks.
func (k *ForeignKey) IntegrityOverride() bool { return k.integrityOverride }

// Access lists the roles restricting a type or field.
type Access struct {
	Hide               []string
	Write              []string
	DenyCreate         []string
	DenyLogicalDelete  []string
	DenyPhysicalDelete []string
}

// Empty reports whether no role list is set.
func (a Access) Empty() bool {
	return len(a.Hide) == 0 && len(a.Write) == 0 && len(a.DenyCreate) == 0 &&
		len(a.DenyLogicalDelete) == 0 && len(a.DenyPhysicalDelete) == 0
}

func (a Access) clone() Access {
	return Access{
		Hide:               slices.Clone(a.Hide),
		Write:              slices.Clone(a.Write),
		DenyCreate:         slices.Clone(a.DenyCreate),
		DenyLogicalDelete:  slices.Clone(a.DenyLogicalDelete),
		DenyPhysicalDelete: slices.Clone(a.DenyPhysicalDelete),
	}
}

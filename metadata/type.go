// Package metadata is the type system of a compiled data model: simple and
// complex types, fields, keys and foreign keys, the mutable builders they are
// assembled with, and the soft references linking them before resolution.
//
// Builders are drafts. Freeze seals a set of drafts in one pass into the
// immutable SimpleType and ComplexType values; a frozen draft panics on any
// further mutation.
package metadata

import (
	"slices"
	"strings"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

// Type is a sealed type: *SimpleType or *ComplexType.
type Type interface {
	Namespace() string
	Name() string
	Instantiable() bool
	SuperTypes() []Type
	Data(key string) (any, bool)
	Frozen() bool
	sealedType()
}

// SimpleType is a sealed simple type.
type SimpleType struct {
	data      sideData
	namespace string
	name      string
	supers    []Type
	superRefs []*SoftTypeRef
}

func (*SimpleType) sealedType() {}

func (t *SimpleType) Namespace() string  { return t.namespace }
func (t *SimpleType) Name() string       { return t.name }
func (t *SimpleType) Instantiable() bool { return false }
func (t *SimpleType) Frozen() bool       { return true }

// SuperTypes returns the base types, nearest first.
func (t *SimpleType) SuperTypes() []Type { return slices.Clone(t.supers) }

// Data returns side data recorded on the type.
func (t *SimpleType) Data(key string) (any, bool) { return t.data.get(key) }

// MaxLength returns the maxLength or length facet recorded on the type or the
// nearest base type declaring one.
func (t *SimpleType) MaxLength() (string, bool) {
	for cur, depth := t, 0; cur != nil && depth < maxHierarchyDepth; depth++ {
		if v, ok := cur.data[DataMaxLength].(string); ok {
			return v, true
		}
		cur = cur.base()
	}
	return "", false
}

// Root returns the furthest simple base type, usually a built-in type.
func (t *SimpleType) Root() *SimpleType {
	cur := t
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		next := cur.base()
		if next == nil {
			return cur
		}
		cur = next
	}
	return cur
}

func (t *SimpleType) base() *SimpleType {
	for _, s := range t.supers {
		if st, ok := s.(*SimpleType); ok {
			return st
		}
	}
	return nil
}

const maxHierarchyDepth = 128

// ComplexType is a sealed complex type: an entity type when instantiable,
// a reusable type otherwise.
type ComplexType struct {
	data           sideData
	container      *Field
	labels         map[string]string
	descriptions   map[string]string
	namespace      string
	name           string
	supers         []Type
	superRefs      []*SoftTypeRef
	keyRefs        []*SoftFieldRef
	usageRefs      []*SoftTypeRef
	declared       []*Field
	fields         []*Field
	keys           []*Field
	subTypes       []*ComplexType
	usages         []*ComplexType
	schematron     []string
	primaryKeyInfo []string
	lookupFields   []string
	access         Access
	instantiable   bool
	anonymous      bool
}

func (*ComplexType) sealedType() {}

func (t *ComplexType) Namespace() string  { return t.namespace }
func (t *ComplexType) Name() string       { return t.name }
func (t *ComplexType) Instantiable() bool { return t.instantiable }
func (t *ComplexType) Frozen() bool       { return true }

// Anonymous reports whether the type was declared inline on a field.
func (t *ComplexType) Anonymous() bool { return t.anonymous }

// Container returns the field owning an anonymous type, or nil.
func (t *ComplexType) Container() *Field { return t.container }

// SuperTypes returns the resolved super types in declaration order.
func (t *ComplexType) SuperTypes() []Type { return slices.Clone(t.supers) }

// Data returns side data recorded on the type.
func (t *ComplexType) Data(key string) (any, bool) { return t.data.get(key) }

// Position returns the source line and column of the definition, 0 when unknown.
func (t *ComplexType) Position() (line, column int) { return position(t.data) }

// BackingTypeName returns the named complex type an entity type was derived from.
func (t *ComplexType) BackingTypeName() string {
	name, _ := t.data[DataComplexTypeName].(string)
	return name
}

// EntitySuperType returns the first instantiable complex super type, or nil.
func (t *ComplexType) EntitySuperType() *ComplexType {
	for _, s := range t.supers {
		if ct, ok := s.(*ComplexType); ok && ct.instantiable {
			return ct
		}
	}
	return nil
}

// Fields returns inherited fields followed by declared fields.
func (t *ComplexType) Fields() []*Field { return slices.Clone(t.fields) }

// DeclaredFields returns the fields declared by the type itself.
func (t *ComplexType) DeclaredFields() []*Field { return slices.Clone(t.declared) }

// HasField reports whether path designates a field.
func (t *ComplexType) HasField(path string) bool {
	_, err := t.Field(path)
	return err == nil
}

// Field returns the field at path. Segments are separated by '/' and descend
// into contained types.
func (t *ComplexType) Field(path string) (*Field, error) {
	segments := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	cur := t
	for i, segment := range segments {
		f := cur.field(segment)
		if f == nil {
			return nil, &xsderrors.UnresolvedReferenceError{Namespace: t.namespace, Name: t.name, Path: path}
		}
		if i == len(segments)-1 {
			return f, nil
		}
		next, ok := f.typ.(*ComplexType)
		if !ok {
			return nil, &xsderrors.UnresolvedReferenceError{Namespace: t.namespace, Name: t.name, Path: path}
		}
		cur = next
	}
	return nil, &xsderrors.UnresolvedReferenceError{Namespace: t.namespace, Name: t.name, Path: path}
}

func (t *ComplexType) field(name string) *Field {
	for _, f := range t.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Keys returns the key fields: the declared ones, or those of the entity super type.
func (t *ComplexType) Keys() []*Field {
	cur := t
	for depth := 0; cur != nil && depth < maxHierarchyDepth; depth++ {
		if len(cur.keys) > 0 {
			return slices.Clone(cur.keys)
		}
		cur = cur.EntitySuperType()
	}
	return nil
}

// DeclaredKeys returns the keys registered on the type itself.
func (t *ComplexType) DeclaredKeys() []*Field { return slices.Clone(t.keys) }

// SubTypes returns the complex types naming t as a direct super type.
func (t *ComplexType) SubTypes() []*ComplexType { return slices.Clone(t.subTypes) }

// Usages returns the entity types embedding t, directly or transitively.
func (t *ComplexType) Usages() []*ComplexType { return slices.Clone(t.usages) }

// SchematronRules returns the validation rule documents attached to the type.
func (t *ComplexType) SchematronRules() []string { return slices.Clone(t.schematron) }

// Access returns the role lists restricting the type.
func (t *ComplexType) Access() Access { return t.access.clone() }

// PrimaryKeyInfo returns the field paths displayed in place of the key.
func (t *ComplexType) PrimaryKeyInfo() []string { return slices.Clone(t.primaryKeyInfo) }

// LookupFields returns the field paths used for lookups.
func (t *ComplexType) LookupFields() []string { return slices.Clone(t.lookupFields) }

// Label returns the label for lang, if any.
func (t *ComplexType) Label(lang string) (string, bool) {
	v, ok := t.labels[strings.ToUpper(lang)]
	return v, ok
}

// Labels returns every label keyed by upper-case language code.
func (t *ComplexType) Labels() map[string]string { return cloneStrings(t.labels) }

// Description returns the description for lang, if any.
func (t *ComplexType) Description(lang string) (string, bool) {
	v, ok := t.descriptions[strings.ToUpper(lang)]
	return v, ok
}

// IsAssignableFrom reports whether other is t or one of its sub types.
func (t *ComplexType) IsAssignableFrom(other *ComplexType) bool {
	seen := make(map[*ComplexType]bool)
	var walk func(c *ComplexType) bool
	walk = func(c *ComplexType) bool {
		if c == t {
			return true
		}
		if seen[c] {
			return false
		}
		seen[c] = true
		for _, s := range c.supers {
			if sc, ok := s.(*ComplexType); ok && walk(sc) {
				return true
			}
		}
		return false
	}
	return walk(other)
}

func cloneStrings(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

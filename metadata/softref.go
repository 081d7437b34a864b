package metadata

import (
	"fmt"
	"strings"
	"sync"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

// Resolver looks up sealed types by name. Entity lookups only consider
// instantiable types.
type Resolver interface {
	ResolveType(namespace, name string, entity bool) (Type, error)
}

// SoftTypeRef is a lazily resolved pointer to a type identified by name.
// Creating one never touches the resolver.
type SoftTypeRef struct {
	resolver  Resolver
	resolved  Type
	namespace string
	name      string
	mu        sync.Mutex
	entity    bool
}

// NewSoftTypeRef creates a reference to the type namespace:name. entity marks
// a reference to an instantiable type, as opposed to reuse of a shared type.
func NewSoftTypeRef(resolver Resolver, namespace, name string, entity bool) *SoftTypeRef {
	return &SoftTypeRef{resolver: resolver, namespace: namespace, name: strings.TrimSpace(name), entity: entity}
}

func (r *SoftTypeRef) Namespace() string { return r.namespace }
func (r *SoftTypeRef) Name() string      { return r.name }
func (r *SoftTypeRef) Entity() bool      { return r.entity }

// String returns the referenced name in {namespace}name form.
func (r *SoftTypeRef) String() string {
	if r.namespace == "" {
		return r.name
	}
	return "{" + r.namespace + "}" + r.name
}

// Resolve returns the referenced type. A successful resolution is cached, so
// resolving twice yields the identical object; failures are retried.
func (r *SoftTypeRef) Resolve() (Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved != nil {
		return r.resolved, nil
	}
	if r.resolver == nil {
		return nil, &xsderrors.UnresolvedReferenceError{Namespace: r.namespace, Name: r.name, Entity: r.entity}
	}
	t, err := r.resolver.ResolveType(r.namespace, r.name, r.entity)
	if err != nil {
		return nil, err
	}
	r.resolved = t
	return t, nil
}

// bind records t as the resolution of r.
func (r *SoftTypeRef) bind(t Type) {
	r.mu.Lock()
	r.resolved = t
	r.mu.Unlock()
}

func (r *SoftTypeRef) same(other *SoftTypeRef) bool {
	return r.namespace == other.namespace && r.name == other.name && r.entity == other.entity
}

func (r *SoftTypeRef) rebind(resolver Resolver) *SoftTypeRef {
	if r == nil {
		return nil
	}
	return NewSoftTypeRef(resolver, r.namespace, r.name, r.entity)
}

// SoftFieldRef is a lazily resolved pointer to a field of a named complex type.
// An empty path designates the identifier of the type, that is its key fields.
type SoftFieldRef struct {
	resolver  Resolver
	data      sideData
	namespace string
	typeName  string
	path      string
	entity    bool
}

// NewSoftFieldRef creates a reference to path in the type namespace:typeName.
func NewSoftFieldRef(resolver Resolver, namespace, typeName, path string, entity bool) *SoftFieldRef {
	return &SoftFieldRef{
		resolver:  resolver,
		namespace: namespace,
		typeName:  strings.TrimSpace(typeName),
		path:      strings.Trim(strings.TrimSpace(path), "/"),
		entity:    entity,
	}
}

// NewSoftIDFieldRef creates a reference to the identifier of an entity type.
func NewSoftIDFieldRef(resolver Resolver, namespace, typeName string) *SoftFieldRef {
	return NewSoftFieldRef(resolver, namespace, typeName, "", true)
}

func (r *SoftFieldRef) Namespace() string { return r.namespace }
func (r *SoftFieldRef) TypeName() string  { return r.typeName }
func (r *SoftFieldRef) Path() string      { return r.path }

// Identifier reports whether the reference designates the key fields.
func (r *SoftFieldRef) Identifier() bool { return r.path == "" }

// String returns typeName/path, or typeName alone for an identifier reference.
func (r *SoftFieldRef) String() string {
	if r.path == "" {
		return r.typeName
	}
	return r.typeName + "/" + r.path
}

// SetData records side data such as the source position of the reference.
func (r *SoftFieldRef) SetData(key string, value any) *SoftFieldRef {
	if r.data == nil {
		r.data = make(sideData)
	}
	r.data[key] = value
	return r
}

// Data returns side data recorded on the reference.
func (r *SoftFieldRef) Data(key string) (any, bool) {
	return r.data.get(key)
}

// Resolve returns the referenced fields: the key fields for an identifier
// reference, or the single field at path.
func (r *SoftFieldRef) Resolve() ([]*Field, error) {
	if r.resolver == nil {
		return nil, r.unresolved()
	}
	t, err := r.resolver.ResolveType(r.namespace, r.typeName, r.entity)
	if err != nil {
		return nil, err
	}
	ct, ok := t.(*ComplexType)
	if !ok {
		return nil, &xsderrors.KindMismatchError{Namespace: r.namespace, Name: r.typeName, Want: "complex", Got: "simple"}
	}
	return r.resolveIn(ct)
}

// ResolveField returns the single referenced field. Identifier references
// must designate a single key field.
func (r *SoftFieldRef) ResolveField() (*Field, error) {
	fields, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("reference '%s' designates %d fields", r, len(fields))
	}
	return fields[0], nil
}

func (r *SoftFieldRef) resolveIn(ct *ComplexType) ([]*Field, error) {
	if r.path == "" {
		keys := ct.Keys()
		if len(keys) == 0 {
			return nil, r.unresolved()
		}
		return keys, nil
	}
	f, err := ct.Field(r.path)
	if err != nil {
		return nil, r.unresolved()
	}
	return []*Field{f}, nil
}

func (r *SoftFieldRef) unresolved() error {
	path := r.path
	if path == "" {
		path = "(identifier)"
	}
	return &xsderrors.UnresolvedReferenceError{Namespace: r.namespace, Name: r.typeName, Path: path, Entity: r.entity}
}

func (r *SoftFieldRef) rebind(resolver Resolver) *SoftFieldRef {
	if r == nil {
		return nil
	}
	out := NewSoftFieldRef(resolver, r.namespace, r.typeName, r.path, r.entity)
	out.data = r.data.clone()
	return out
}

// Package xsdmeta compiles XML Schema data models into a frozen graph of
// entity and reusable type metadata.
//
// A Repository is filled by Load, which walks a schema, runs the annotation
// pipeline, stitches entity inheritance, seals every type and validates the
// result through a validation.Handler. Once frozen, a repository is safe for
// concurrent reads; Copy returns an independent open working set.
package xsdmeta

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
)

// UserNamespace is the namespace of every entity type.
const UserNamespace = ""

type typeKey struct {
	namespace string
	name      string
}

func keyOf(t interface {
	Namespace() string
	Name() string
}) typeKey {
	return typeKey{namespace: t.Namespace(), name: t.Name()}
}

// Repository holds the types of one data model.
//
// Loading is single threaded: a repository must not be used concurrently
// until it is frozen.
type Repository struct {
	opts     resolvedLoadOptions
	entities map[typeKey]*metadata.ComplexType
	reusable map[typeKey]metadata.Type
	// open drafts, in registration order
	drafts         []*metadata.TypeBuilder
	entityDrafts   map[typeKey]*metadata.TypeBuilder
	reusableDrafts map[typeKey]*metadata.TypeBuilder
	mu             sync.RWMutex
	frozen         bool
}

// NewRepository returns an open repository with default options.
func NewRepository() *Repository {
	r, _ := NewRepositoryWithOptions(NewLoadOptions())
	return r
}

// NewRepositoryWithOptions returns an open repository configured by opts.
func NewRepositoryWithOptions(opts LoadOptions) (*Repository, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return newRepository(resolved), nil
}

func newRepository(opts resolvedLoadOptions) *Repository {
	r := &Repository{
		opts:           opts,
		entities:       make(map[typeKey]*metadata.ComplexType),
		reusable:       make(map[typeKey]metadata.Type),
		entityDrafts:   make(map[typeKey]*metadata.TypeBuilder),
		reusableDrafts: make(map[typeKey]*metadata.TypeBuilder),
	}
	if opts.commonTypes {
		r.reusable = commonTypes()
		r.opts.logger.Verbose("repository starts with %d common types", len(r.reusable))
	}
	return r
}

// UserNamespace returns the namespace of user entity types.
func (r *Repository) UserNamespace() string { return UserNamespace }

// Frozen reports whether the repository has been sealed.
func (r *Repository) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// ResolveType implements metadata.Resolver over the sealed types.
func (r *Repository) ResolveType(namespace, name string, entity bool) (metadata.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(namespace, name, entity)
}

func (r *Repository) lookup(namespace, name string, entity bool) (metadata.Type, error) {
	key := typeKey{namespace: namespace, name: strings.TrimSpace(name)}
	if !entity {
		if t, ok := r.reusable[key]; ok {
			return t, nil
		}
	}
	if t, ok := r.entities[key]; ok {
		return t, nil
	}
	return nil, &xsderrors.UnresolvedReferenceError{Namespace: namespace, Name: key.name, Entity: entity}
}

// sealedResolver resolves against the sealed maps without locking. It is
// used while the repository itself holds its lock.
type sealedResolver struct {
	r *Repository
}

func (s sealedResolver) ResolveType(namespace, name string, entity bool) (metadata.Type, error) {
	return s.r.lookup(namespace, name, entity)
}

// Type returns the type namespace:name. Entity types win over reusable
// types of the same name.
func (r *Repository) Type(namespace, name string) (metadata.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := typeKey{namespace: namespace, name: strings.TrimSpace(name)}
	if t, ok := r.entities[key]; ok {
		return t, true
	}
	t, ok := r.reusable[key]
	return t, ok
}

// ComplexType returns the user complex type named name, looking at entity
// types first. A missing type is an *errors.UnresolvedReferenceError and a
// simple type an *errors.KindMismatchError.
func (r *Repository) ComplexType(name string) (*metadata.ComplexType, error) {
	name = strings.TrimSpace(name)
	t, ok := r.Type(UserNamespace, name)
	if !ok {
		return nil, &xsderrors.UnresolvedReferenceError{Namespace: UserNamespace, Name: name}
	}
	ct, ok := t.(*metadata.ComplexType)
	if !ok {
		return nil, &xsderrors.KindMismatchError{Namespace: UserNamespace, Name: name, Want: "complex", Got: "simple"}
	}
	return ct, nil
}

// NonInstantiableType returns the reusable type namespace:name.
func (r *Repository) NonInstantiableType(namespace, name string) (metadata.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.reusable[typeKey{namespace: namespace, name: strings.TrimSpace(name)}]
	return t, ok
}

// InstantiableTypes returns the entity types sorted by name.
func (r *Repository) InstantiableTypes() []*metadata.ComplexType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*metadata.ComplexType, 0, len(r.entities))
	for key, t := range r.entities {
		if key.namespace == UserNamespace {
			out = append(out, t)
		}
	}
	sortTypes(out)
	return out
}

// NonInstantiableTypes returns the reusable complex types of the user
// namespace sorted by name.
func (r *Repository) NonInstantiableTypes() []*metadata.ComplexType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*metadata.ComplexType
	for key, t := range r.reusable {
		if ct, ok := t.(*metadata.ComplexType); ok && key.namespace == UserNamespace {
			out = append(out, ct)
		}
	}
	sortTypes(out)
	return out
}

// Types returns every sealed type across namespaces: entity types first,
// then reusable types, each sorted by namespace and name.
func (r *Repository) Types() []metadata.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entities := make([]metadata.Type, 0, len(r.entities))
	for _, t := range r.entities {
		entities = append(entities, t)
	}
	reusable := make([]metadata.Type, 0, len(r.reusable))
	for _, t := range r.reusable {
		reusable = append(reusable, t)
	}
	sortTypes(entities)
	sortTypes(reusable)
	return append(entities, reusable...)
}

func sortTypes[T metadata.Type](types []T) {
	slices.SortFunc(types, func(a, b T) int {
		return cmp.Or(cmp.Compare(a.Namespace(), b.Namespace()), cmp.Compare(a.Name(), b.Name()))
	})
}

// AddType registers an open type draft. A draft with the same name and kind
// replaces the previous one.
func (r *Repository) AddType(b *metadata.TypeBuilder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen || b.Frozen() {
		return xsderrors.ErrFrozen
	}
	if b.Instantiable() && b.Namespace() != UserNamespace {
		return &xsderrors.EntityNamespaceError{Name: b.Name(), Namespace: b.Namespace()}
	}
	r.addDraft(b)
	return nil
}

// Draft returns the open draft namespace:name. entity selects entity or
// reusable drafts.
func (r *Repository) Draft(namespace, name string, entity bool) (*metadata.TypeBuilder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := typeKey{namespace: namespace, name: strings.TrimSpace(name)}
	if entity {
		b, ok := r.entityDrafts[key]
		return b, ok
	}
	b, ok := r.reusableDrafts[key]
	return b, ok
}

// Drafts returns the open drafts in registration order.
func (r *Repository) Drafts() []*metadata.TypeBuilder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.drafts)
}

func (r *Repository) draftIndex(b *metadata.TypeBuilder) map[typeKey]*metadata.TypeBuilder {
	if b.Instantiable() {
		return r.entityDrafts
	}
	return r.reusableDrafts
}

func (r *Repository) addDraft(b *metadata.TypeBuilder) {
	index := r.draftIndex(b)
	key := keyOf(b)
	if prev, ok := index[key]; ok {
		if i := slices.Index(r.drafts, prev); i >= 0 {
			r.drafts[i] = b
			index[key] = b
			return
		}
	}
	index[key] = b
	r.drafts = append(r.drafts, b)
}

func (r *Repository) removeDraft(b *metadata.TypeBuilder) {
	index := r.draftIndex(b)
	key := keyOf(b)
	if index[key] == b {
		delete(index, key)
	}
	r.drafts = slices.DeleteFunc(r.drafts, func(d *metadata.TypeBuilder) bool { return d == b })
}

// rollback drops every draft registered after the first mark drafts.
func (r *Repository) rollback(mark int) {
	if mark >= len(r.drafts) {
		return
	}
	for _, b := range r.drafts[mark:] {
		index := r.draftIndex(b)
		if key := keyOf(b); index[key] == b {
			delete(index, key)
		}
	}
	clear(r.drafts[mark:])
	r.drafts = r.drafts[:mark]
}

// hasEntity reports an entity named name, open or sealed.
func (r *Repository) hasEntity(name string) bool {
	key := typeKey{namespace: UserNamespace, name: name}
	if _, ok := r.entityDrafts[key]; ok {
		return true
	}
	_, ok := r.entities[key]
	return ok
}

// hasReusable reports a reusable type namespace:name, open or sealed.
func (r *Repository) hasReusable(namespace, name string) bool {
	key := typeKey{namespace: namespace, name: name}
	if _, ok := r.reusableDrafts[key]; ok {
		return true
	}
	_, ok := r.reusable[key]
	return ok
}

// Copy returns an open repository holding independent drafts of every user
// type. Common types are shared. Only frozen repositories can be copied.
func (r *Repository) Copy() (*Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.frozen {
		return nil, xsderrors.ErrNotFrozen
	}
	c := newRepository(r.opts)
	var user []metadata.Type
	for _, t := range r.sortedSealed() {
		if !isCommon(t) {
			user = append(user, t)
		}
	}
	for _, d := range metadata.Thaw(user, c) {
		c.addDraft(d)
	}
	return c, nil
}

// sortedSealed returns reusable types before entity types, each sorted by
// namespace and name.
func (r *Repository) sortedSealed() []metadata.Type {
	reusable := make([]metadata.Type, 0, len(r.reusable))
	for _, t := range r.reusable {
		reusable = append(reusable, t)
	}
	entities := make([]metadata.Type, 0, len(r.entities))
	for _, t := range r.entities {
		entities = append(entities, t)
	}
	sortTypes(reusable)
	sortTypes(entities)
	return append(reusable, entities...)
}

package xsdmeta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/xsdmeta/annotation"
	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/internal/state"
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// frame is one open complex type during traversal.
type frame struct {
	builder *metadata.TypeBuilder
	// path names the frame from the outermost named type, used for
	// anonymous type names and messages.
	path string
	// typeName is the nearest named type, the target of "." annotation paths.
	typeName string
}

// usageRecord notes that an entity is backed by a named complex type.
type usageRecord struct {
	typ    *schema.ComplexType
	entity *metadata.TypeBuilder
}

// visitor turns schema traversal callbacks into type drafts.
type visitor struct {
	repo      *Repository
	pipeline  *annotation.Pipeline
	logger    Logger
	namespace string
	stack     state.Stack[*frame]
	usages    []usageRecord
	// declarations and anonymous types currently being expanded
	elements  map[*schema.Element]bool
	anonymous map[*schema.ComplexType]bool
}

func newVisitor(r *Repository, s *schema.Schema) *visitor {
	return &visitor{
		repo:      r,
		pipeline:  r.opts.pipeline,
		logger:    r.opts.logger,
		namespace: s.TargetNamespace,
		stack:     state.NewStack[*frame](8),
		elements:  make(map[*schema.Element]bool),
		anonymous: make(map[*schema.ComplexType]bool),
	}
}

func (v *visitor) push(f *frame) { v.stack.Push(f) }

func (v *visitor) pop() { v.stack.Pop() }

func (v *visitor) top() *frame {
	f, _ := v.stack.Top()
	return f
}

// VisitSchema is the completion signal: every opened type must be closed.
func (v *visitor) VisitSchema(*schema.Schema) error {
	if v.stack.Empty() {
		return nil
	}
	open := make([]string, 0, v.stack.Len())
	for f := range v.stack.Outward() {
		open = append(open, f.path)
	}
	v.logger.Verbose("unprocessed types: %s", strings.Join(open, " "))
	return &xsderrors.IncompleteParseError{Open: open}
}

// VisitSimpleType registers a named simple type once.
func (v *visitor) VisitSimpleType(st *schema.SimpleType) error {
	if st.Anonymous() || v.repo.hasReusable(v.namespace, st.Name) {
		return nil
	}
	b := metadata.NewSimpleType(v.namespace, st.Name)
	if base := st.BaseType; base != nil && !base.Anonymous() {
		b.AddSuperType(metadata.NewSoftTypeRef(v.repo, base.Namespace, base.Name, false))
	}
	v.applyFacets(b, st)
	typePosition(b, st.Pos, st.Node)
	v.repo.addDraft(b)
	return nil
}

// applyFacets records maxLength or length as the max length of b.
func (v *visitor) applyFacets(b *metadata.TypeBuilder, st *schema.SimpleType) {
	for _, f := range st.Facets {
		switch f.Kind {
		case schema.FacetMaxLength, schema.FacetLength:
			b.SetMaxLength(f.Value)
		case schema.FacetEnumeration:
		default:
			v.logger.Verbose("ignore simple type facet on type '%s': %s=%s", b.Name(), f.Kind, f.Value)
		}
	}
}

// VisitComplexType opens a reusable type when no type is open, and adds the
// content of ct to the open type otherwise.
func (v *visitor) VisitComplexType(ct *schema.ComplexType) error {
	if v.stack.Empty() {
		if ct.Anonymous() || v.repo.hasReusable(v.namespace, ct.Name) {
			return nil
		}
		b := metadata.NewComplexType(v.namespace, ct.Name, false)
		typePosition(b, ct.Pos, ct.Node)
		v.repo.addDraft(b)
		v.push(&frame{builder: b, path: ct.Name, typeName: ct.Name})
		defer v.pop()
	} else if !ct.Anonymous() && ct.Namespace != schema.XSDNamespace {
		v.top().builder.SetData(metadata.DataComplexTypeName, ct.Name)
	}
	if err := v.walkContent(ct); err != nil {
		return err
	}
	if base, ok := superTypeName(ct); ok {
		v.top().builder.AddSuperType(metadata.NewSoftTypeRef(v.repo, base.Namespace, base.Local, false))
	}
	return nil
}

func (v *visitor) walkContent(ct *schema.ComplexType) error {
	if ct.SimpleContent {
		return &xsderrors.UnsupportedParticleError{Type: v.top().path, Content: "simpleContent"}
	}
	if ct.Content == nil {
		return nil
	}
	switch term := ct.Content.Term.(type) {
	case *schema.ModelGroup:
		for _, p := range term.Particles {
			if err := schema.Walk(p, v); err != nil {
				return err
			}
		}
		return nil
	case *schema.Wildcard, nil:
		return nil
	default:
		return &xsderrors.UnsupportedParticleError{Type: v.top().path, Content: fmt.Sprintf("%T", term)}
	}
}

// superTypeName returns the base of ct unless it is part of the XML Schema
// vocabulary.
func superTypeName(ct *schema.ComplexType) (schema.QName, bool) {
	base := ct.Base
	if base.IsZero() && ct.BaseType != nil {
		base = ct.BaseType.QName()
	}
	if base.IsZero() || base.Namespace == schema.XSDNamespace || base.Local == schema.AnyType.Name {
		return schema.QName{}, false
	}
	return base, true
}

// VisitElement starts an entity for a top-level element and adds a field to
// the open type otherwise.
func (v *visitor) VisitElement(el *schema.Element) error {
	if v.stack.Empty() {
		return v.visitEntity(el)
	}
	return v.visitField(el)
}

func (v *visitor) visitEntity(el *schema.Element) error {
	name := el.Name
	if el.Namespace != UserNamespace {
		return &xsderrors.EntityNamespaceError{Name: name, Namespace: el.Namespace}
	}
	if v.repo.hasEntity(name) {
		return nil
	}
	ids := keyPaths(el)

	b := metadata.NewComplexType(UserNamespace, name, true)
	ctx := &annotation.Context{Resolver: v.repo, Annotation: el.Annotation, Namespace: UserNamespace, TypeName: name}
	if err := v.pipeline.ProcessType(ctx, b); err != nil {
		return err
	}
	typePosition(b, el.Pos, el.Node)
	v.repo.addDraft(b)
	if ct, ok := el.Type.(*schema.ComplexType); ok && !ct.Anonymous() {
		v.usages = append(v.usages, usageRecord{typ: ct, entity: b})
	}

	v.elements[el] = true
	v.push(&frame{builder: b, path: name, typeName: name})
	err := schema.Walk(complexOnly(el.Type), v)
	v.pop()
	delete(v.elements, el)
	if err != nil {
		return err
	}

	if head := el.Substitution; head != nil && head != el &&
		el.SubstitutionGroup.Namespace != schema.XSDNamespace && el.SubstitutionGroup.Local != schema.AnyType.Name {
		b.AddSuperType(metadata.NewSoftTypeRef(v.repo, el.SubstitutionGroup.Namespace, el.SubstitutionGroup.Local, true))
	}
	for _, id := range ids {
		ref := metadata.NewSoftFieldRef(v.repo, UserNamespace, name, id.Value, true).
			SetData(metadata.DataXSDLine, id.Pos.Line).
			SetData(metadata.DataXSDColumn, id.Pos.Column).
			SetData(metadata.DataXSDNode, id.Node)
		b.RegisterKey(ref)
	}
	if len(b.Keys()) == 0 && len(b.SuperTypes()) == 0 {
		v.logger.Verbose("element '%s' declares no key and no super type, not an entity type", name)
		v.repo.removeDraft(b)
	}
	return nil
}

// keyPaths returns the distinct key and unique field paths of el in
// declaration order.
func keyPaths(el *schema.Element) []schema.XPath {
	var out []schema.XPath
	seen := make(map[string]bool)
	for _, c := range el.Constraints {
		if c.Kind == schema.KeyRef {
			continue
		}
		for _, f := range c.Fields {
			path := strings.TrimPrefix(f.Value, "./")
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true
			f.Value = path
			out = append(out, f)
		}
	}
	return out
}

// complexOnly drops simple type definitions, which add nothing to an entity.
func complexOnly(def schema.TypeDefinition) any {
	if ct, ok := def.(*schema.ComplexType); ok {
		return ct
	}
	return nil
}

func (v *visitor) visitField(el *schema.Element) error {
	top := v.top()
	if !el.IsReference() {
		return v.addField(top, el, el.MinOccurs, el.MaxOccurs)
	}
	target := el.Resolved
	if target != nil && target.Name == top.builder.Name() {
		return nil
	}
	if target == nil || target.Namespace != UserNamespace || v.elements[target] {
		return v.addReference(top, el)
	}
	return v.addField(top, target, el.MinOccurs, el.MaxOccurs)
}

// addReference adds a field pointing to the entity named by the element reference.
func (v *visitor) addReference(top *frame, el *schema.Element) error {
	fb, err := v.newField(top, el, el.MinOccurs, el.MaxOccurs)
	if err != nil {
		return err
	}
	fb.As(metadata.NewSoftTypeRef(v.repo, el.Ref.Namespace, el.Ref.Local, true)).MarkReference()
	top.builder.AddField(fb)
	return nil
}

func (v *visitor) newField(top *frame, decl *schema.Element, minOccurs, maxOccurs int) (*metadata.FieldBuilder, error) {
	fb, err := metadata.NewField(decl.Name, minOccurs, maxOccurs)
	if err != nil {
		var oe *xsderrors.OccursError
		if errors.As(err, &oe) {
			oe.Type = top.path
		}
		return nil, err
	}
	ctx := &annotation.Context{Resolver: v.repo, Annotation: decl.Annotation, Namespace: UserNamespace, TypeName: top.typeName}
	if err := v.pipeline.ProcessField(ctx, fb); err != nil {
		return nil, err
	}
	fb.SetData(metadata.DataXSDLine, decl.Pos.Line).
		SetData(metadata.DataXSDColumn, decl.Pos.Column).
		SetData(metadata.DataXSDNode, decl.Node)
	return fb, nil
}

// addField builds the field declared by decl and adds it to the open type.
func (v *visitor) addField(top *frame, decl *schema.Element, minOccurs, maxOccurs int) error {
	fb, err := v.newField(top, decl, minOccurs, maxOccurs)
	if err != nil {
		return err
	}
	path := top.path + "/" + decl.Name
	switch t := decl.Type.(type) {
	case *schema.SimpleType:
		v.typeSimpleField(fb, t, path)
	case *schema.ComplexType:
		if !t.Anonymous() {
			fb.As(metadata.NewSoftTypeRef(v.repo, t.Namespace, t.Name, false))
			break
		}
		if err := v.expand(top, fb, decl, t, path); err != nil {
			return err
		}
	default:
		if !decl.TypeName.IsZero() {
			fb.As(metadata.NewSoftTypeRef(v.repo, decl.TypeName.Namespace, decl.TypeName.Local, false))
		}
	}
	top.builder.AddField(fb)
	return nil
}

func (v *visitor) typeSimpleField(fb *metadata.FieldBuilder, st *schema.SimpleType, path string) {
	if !st.Anonymous() {
		fb.As(metadata.NewSoftTypeRef(v.repo, st.Namespace, st.Name, false))
	} else {
		anon := metadata.NewAnonymousSimpleType(v.namespace, path)
		if base := st.BaseType; base != nil && !base.Anonymous() {
			anon.AddSuperType(metadata.NewSoftTypeRef(v.repo, base.Namespace, base.Name, false))
		}
		v.applyFacets(anon, st)
		typePosition(anon, st.Pos, st.Node)
		fb.AsAnonymous(anon)
	}
	if st.HasEnumeration() {
		fb.MarkEnumeration()
	}
}

// expand walks an anonymous complex type into a new inline draft.
func (v *visitor) expand(top *frame, fb *metadata.FieldBuilder, decl *schema.Element, ct *schema.ComplexType, path string) error {
	if v.anonymous[ct] {
		return &xsderrors.UnsupportedParticleError{
			Type:    top.path,
			Content: fmt.Sprintf("recursive anonymous type of element '%s'", decl.Name),
		}
	}
	anon := metadata.NewAnonymousComplexType(v.namespace, path)
	typePosition(anon, ct.Pos, ct.Node)
	fb.AsAnonymous(anon)

	v.anonymous[ct] = true
	if decl.Global {
		v.elements[decl] = true
	}
	v.push(&frame{builder: anon, path: path, typeName: top.typeName})
	err := v.VisitComplexType(ct)
	v.pop()
	delete(v.elements, decl)
	delete(v.anonymous, ct)
	return err
}

func typePosition(b *metadata.TypeBuilder, pos schema.Pos, node schema.Node) {
	b.SetData(metadata.DataXSDLine, pos.Line).
		SetData(metadata.DataXSDColumn, pos.Column).
		SetData(metadata.DataXSDNode, node)
}

package xsdmeta

import (
	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
	"github.com/jacoelho/xsdmeta/validation"
)

// resolveAdditionalSuperTypes turns reuse of a complex type into entity
// inheritance: an entity backed by a type whose first super type backs
// exactly one other entity inherits from that entity. Several candidates are
// ambiguous and leave the relation as reuse only.
func (r *Repository) resolveAdditionalSuperTypes() {
	var entities []*metadata.TypeBuilder
	for _, d := range r.drafts {
		if d.Instantiable() && d.Namespace() == UserNamespace {
			entities = append(entities, d)
		}
	}
	for _, entity := range entities {
		backingName, ok := backingTypeName(entity)
		if !ok {
			continue
		}
		backing, ok := r.reusableDrafts[typeKey{namespace: UserNamespace, name: backingName}]
		if !ok || backing.Frozen() {
			continue
		}
		supers := backing.SuperTypes()
		if len(supers) == 0 {
			continue
		}
		superName := supers[0].Name()
		var candidate *metadata.TypeBuilder
		count := 0
		for _, other := range entities {
			if name, ok := backingTypeName(other); ok && name == superName {
				candidate = other
				count++
			}
		}
		switch {
		case count > 1:
			r.opts.logger.Warn("Type '%s' uses multiple inheritance (following reusable type usages), consider inheritance from '%s' as a reuse.",
				entity.Name(), superName)
		case candidate != nil && candidate != entity:
			entity.AddSuperType(metadata.NewSoftTypeRef(r, UserNamespace, candidate.Name(), true))
		}
	}
}

func backingTypeName(b *metadata.TypeBuilder) (string, bool) {
	v, ok := b.Data(metadata.DataComplexTypeName)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok && name != ""
}

// declareUsages records on each reusable type the entities it backs.
func (r *Repository) declareUsages(usages []usageRecord) {
	for _, u := range usages {
		backing, ok := r.reusableDrafts[typeKey{namespace: u.typ.Namespace, name: u.typ.Name}]
		if !ok || backing.Frozen() {
			continue
		}
		if r.entityDrafts[keyOf(u.entity)] != u.entity {
			continue
		}
		backing.DeclareUsage(metadata.NewSoftTypeRef(r, UserNamespace, u.entity.Name(), true))
	}
}

// seal freezes every open draft and publishes the sealed types. It returns
// the problems found while resolving references and the sealed user complex
// types, entities first.
func (r *Repository) seal() ([]xsderrors.Validation, []*metadata.ComplexType) {
	var reports []xsderrors.Validation
	report := func(v xsderrors.Validation) { reports = append(reports, v) }
	sealed := metadata.Freeze(r.drafts, sealedResolver{r: r}, report)

	var entities, reusable []*metadata.ComplexType
	for _, t := range sealed {
		key := keyOf(t)
		if ct, ok := t.(*metadata.ComplexType); ok && ct.Instantiable() {
			r.entities[key] = ct
			entities = append(entities, ct)
			continue
		}
		r.reusable[key] = t
		if ct, ok := t.(*metadata.ComplexType); ok {
			reusable = append(reusable, ct)
		}
	}
	clear(r.drafts)
	r.drafts = nil
	clear(r.entityDrafts)
	clear(r.reusableDrafts)
	r.frozen = true
	return reports, append(entities, reusable...)
}

// validate runs the type rules over types, then the repository rules, and
// ends the handler.
func (r *Repository) validate(h validation.Handler, reports []xsderrors.Validation, types []*metadata.ComplexType) {
	for _, v := range reports {
		validation.Report(h, v)
	}
	for _, t := range types {
		if t.Namespace() != schema.XSDNamespace {
			validation.ValidateType(h, t)
		}
	}
	validation.Run(h, validation.SuperTypeCycleRule{Types: types})
	h.End()
	if n := h.ErrorCount(); n != 0 {
		r.opts.logger.Error("Could not parse data model (%d error(s) found).", n)
	}
}

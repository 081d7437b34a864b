package metadata

import (
	"slices"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

type typeKey struct {
	namespace string
	name      string
}

type freezer struct {
	external Resolver
	report   func(xsderrors.Validation)
	shells   map[*TypeBuilder]Type
	owned    map[Type]*TypeBuilder
	entities map[typeKey]*TypeBuilder
	reusable map[typeKey]*TypeBuilder
	fields   map[*FieldBuilder]*Field
	done     map[*ComplexType]bool
	visiting map[*ComplexType]bool
	order    []*TypeBuilder
}

// Freeze seals drafts, and the inline anonymous drafts reachable from their
// fields, in one pass. Type names resolve against the drafts first and then
// against external. Names that do not resolve are passed to report, which
// may be nil, and stay unresolved on the sealed types.
//
// Freeze returns the sealed types in draft order. Drafts sealed by an
// earlier call are returned as they are.
func Freeze(drafts []*TypeBuilder, external Resolver, report func(xsderrors.Validation)) []Type {
	f := &freezer{
		external: external,
		report:   report,
		shells:   make(map[*TypeBuilder]Type),
		owned:    make(map[Type]*TypeBuilder),
		entities: make(map[typeKey]*TypeBuilder),
		reusable: make(map[typeKey]*TypeBuilder),
		fields:   make(map[*FieldBuilder]*Field),
		done:     make(map[*ComplexType]bool),
		visiting: make(map[*ComplexType]bool),
	}
	for _, d := range drafts {
		f.collect(d)
	}
	f.resolveSupers()
	f.declareFields()
	for _, d := range f.order {
		if ct, ok := f.shells[d].(*ComplexType); ok {
			f.inheritFields(ct)
		}
	}
	f.resolveKeys()
	f.linkSubTypes()
	f.resolveForeignKeys()
	f.closeUsages()
	f.seal()

	out := make([]Type, len(drafts))
	for i, d := range drafts {
		out[i] = d.sealed
	}
	return out
}

func (f *freezer) collect(d *TypeBuilder) {
	if d == nil || d.frozen {
		return
	}
	if _, ok := f.shells[d]; ok {
		return
	}
	var shell Type
	if d.simple {
		shell = &SimpleType{
			data:      d.data.clone(),
			namespace: d.namespace,
			name:      d.name,
			superRefs: slices.Clone(d.supers),
		}
	} else {
		shell = &ComplexType{
			data:           d.data.clone(),
			labels:         cloneStrings(d.labels),
			descriptions:   cloneStrings(d.descriptions),
			namespace:      d.namespace,
			name:           d.name,
			superRefs:      slices.Clone(d.supers),
			keyRefs:        slices.Clone(d.keys),
			usageRefs:      slices.Clone(d.usages),
			schematron:     slices.Clone(d.schematron),
			primaryKeyInfo: slices.Clone(d.primaryKeyInfo),
			lookupFields:   slices.Clone(d.lookupFields),
			access:         d.access.clone(),
			instantiable:   d.instantiable,
			anonymous:      d.anonymous,
		}
	}
	f.shells[d] = shell
	f.owned[shell] = d
	f.order = append(f.order, d)
	if !d.anonymous {
		key := typeKey{namespace: d.namespace, name: d.name}
		if d.instantiable {
			f.entities[key] = d
		} else {
			f.reusable[key] = d
		}
	}
	for _, fb := range d.fields {
		f.collect(fb.inline)
	}
}

// lookup finds a type by name. Entity lookups only consider instantiable
// types; other lookups prefer reusable types.
func (f *freezer) lookup(namespace, name string, entity bool) Type {
	key := typeKey{namespace: namespace, name: name}
	if !entity {
		if d, ok := f.reusable[key]; ok {
			return f.shells[d]
		}
	}
	if d, ok := f.entities[key]; ok {
		return f.shells[d]
	}
	if f.external != nil {
		if t, err := f.external.ResolveType(namespace, name, entity); err == nil {
			return t
		}
	}
	return nil
}

func (f *freezer) resolve(ref *SoftTypeRef) Type {
	t := f.lookup(ref.namespace, ref.name, ref.entity)
	if t != nil {
		ref.bind(t)
	}
	return t
}

func (f *freezer) resolveSupers() {
	for _, d := range f.order {
		var supers []Type
		for _, ref := range d.supers {
			t := f.resolve(ref)
			if t == nil {
				f.reportf(xsderrors.KindTypeDoesNotExist, d, d.data, f.shells[d],
					"super type '%s' does not exist", ref)
				continue
			}
			supers = append(supers, t)
		}
		switch shell := f.shells[d].(type) {
		case *SimpleType:
			shell.supers = supers
		case *ComplexType:
			shell.supers = supers
		}
	}
}

func (f *freezer) declareFields() {
	for _, d := range f.order {
		ct, ok := f.shells[d].(*ComplexType)
		if !ok {
			continue
		}
		for _, fb := range d.fields {
			fld := &Field{
				data:         fb.data.clone(),
				declaring:    ct,
				typeRef:      fb.typeRef,
				labels:       cloneStrings(fb.labels),
				descriptions: cloneStrings(fb.descriptions),
				name:         fb.name,
				access:       fb.access.clone(),
				minOccurs:    fb.minOccurs,
				maxOccurs:    fb.maxOccurs,
			}
			switch {
			case fb.inline != nil:
				fld.typ = f.shells[fb.inline]
				fld.inline = true
				if inner, ok := fld.typ.(*ComplexType); ok {
					inner.container = fld
				}
			case fb.typeRef != nil:
				fld.typ = f.resolve(fb.typeRef)
				if fld.typ == nil {
					f.reportf(xsderrors.KindTypeDoesNotExist, d, fb.data, fld,
						"type '%s' of field '%s' does not exist", fb.typeRef, fb.name)
				}
			}
			switch _, complexValue := fld.typ.(*ComplexType); {
			case fb.reference:
				fld.kind = FieldReference
			case fb.enumeration:
				fld.kind = FieldEnumeration
			case complexValue:
				fld.kind = FieldContained
			default:
				fld.kind = FieldSimple
			}
			ct.declared = append(ct.declared, fld)
			f.fields[fb] = fld
		}
	}
}

// inheritFields lists inherited fields first, the first super type winning
// on a name clash, and replaces an inherited field redeclared by ct in place.
func (f *freezer) inheritFields(ct *ComplexType) []*Field {
	if f.done[ct] {
		return ct.fields
	}
	if _, ok := f.owned[ct]; !ok {
		return ct.fields
	}
	if f.visiting[ct] {
		return ct.declared
	}
	f.visiting[ct] = true

	var fields []*Field
	index := make(map[string]int)
	for _, s := range ct.supers {
		sc, ok := s.(*ComplexType)
		if !ok || sc == ct {
			continue
		}
		for _, fld := range f.inheritFields(sc) {
			if _, dup := index[fld.name]; dup {
				continue
			}
			index[fld.name] = len(fields)
			fields = append(fields, fld)
		}
	}
	for _, fld := range ct.declared {
		if i, ok := index[fld.name]; ok {
			fields[i] = fld
			continue
		}
		index[fld.name] = len(fields)
		fields = append(fields, fld)
	}
	ct.fields = fields

	delete(f.visiting, ct)
	f.done[ct] = true
	return fields
}

func (f *freezer) resolveKeys() {
	for _, d := range f.order {
		ct, ok := f.shells[d].(*ComplexType)
		if !ok {
			continue
		}
		for _, ref := range d.keys {
			fld, err := ct.Field(ref.path)
			if err != nil {
				f.reportf(xsderrors.KindFieldDoesNotExist, d, ref.data, ct,
					"key field '%s' does not exist in type '%s'", ref.path, d.name)
				continue
			}
			if !slices.Contains(ct.keys, fld) {
				ct.keys = append(ct.keys, fld)
			}
		}
	}
}

func (f *freezer) linkSubTypes() {
	for _, d := range f.order {
		ct, ok := f.shells[d].(*ComplexType)
		if !ok {
			continue
		}
		for _, s := range ct.supers {
			sc, ok := s.(*ComplexType)
			if !ok || sc == ct {
				continue
			}
			if _, owned := f.owned[sc]; owned && !slices.Contains(sc.subTypes, ct) {
				sc.subTypes = append(sc.subTypes, ct)
			}
		}
	}
}

func (f *freezer) resolveForeignKeys() {
	for _, d := range f.order {
		for _, fb := range d.fields {
			fld := f.fields[fb]
			if fld == nil {
				continue
			}
			if kb := fb.foreignKey; kb != nil {
				fld.foreignKey = f.foreignKey(d, fb, kb)
				continue
			}
			if fld.kind != FieldReference {
				continue
			}
			if target, ok := fld.typ.(*ComplexType); ok {
				fld.foreignKey = &ForeignKey{
					typ:       target,
					typeRef:   fld.typeRef,
					fields:    target.Keys(),
					integrity: true,
					implicit:  true,
				}
			}
		}
	}
}

func (f *freezer) foreignKey(d *TypeBuilder, fb *FieldBuilder, kb *ForeignKeyBuilder) *ForeignKey {
	fld := f.fields[fb]
	fk := &ForeignKey{
		typeRef:           kb.typeRef,
		fieldRef:          kb.fieldRef,
		infoRefs:          slices.Clone(kb.info),
		filter:            kb.filter,
		integrity:         kb.integrity,
		integrityOverride: kb.integrityOverride,
	}
	if kb.typeRef != nil {
		switch t := f.resolve(kb.typeRef).(type) {
		case *ComplexType:
			fk.typ = t
		case nil:
			f.reportf(xsderrors.KindTypeDoesNotExist, d, fb.data, fld,
				"foreign key type '%s' of field '%s' does not exist", kb.typeRef, fb.name)
		default:
			f.reportf(xsderrors.KindTypeDoesNotExist, d, fb.data, fld,
				"foreign key type '%s' of field '%s' is not a complex type", kb.typeRef, fb.name)
		}
	}
	if fk.typ != nil {
		if kb.fieldRef == nil || kb.fieldRef.Identifier() {
			fk.fields = fk.typ.Keys()
		} else if fields, err := kb.fieldRef.resolveIn(fk.typ); err != nil {
			f.reportf(xsderrors.KindFieldDoesNotExist, d, fb.data, fld,
				"foreign key field '%s' of field '%s' does not exist", kb.fieldRef, fb.name)
		} else {
			fk.fields = fields
		}
	}
	for _, ref := range kb.info {
		target, ok := f.lookup(ref.namespace, ref.typeName, ref.entity).(*ComplexType)
		if !ok {
			f.reportf(xsderrors.KindTypeDoesNotExist, d, fb.data, fld,
				"foreign key info type '%s' of field '%s' does not exist", ref.typeName, fb.name)
			continue
		}
		fields, err := ref.resolveIn(target)
		if err != nil {
			f.reportf(xsderrors.KindFieldDoesNotExist, d, fb.data, fld,
				"foreign key info '%s' of field '%s' does not exist", ref, fb.name)
			continue
		}
		fk.info = append(fk.info, fields...)
	}
	return fk
}

// closeUsages records every entity type on the complex types it embeds,
// directly or through contained types and their sub types, then adds the
// usages declared on the drafts.
func (f *freezer) closeUsages() {
	for _, d := range f.order {
		entity, ok := f.shells[d].(*ComplexType)
		if !ok || !entity.instantiable {
			continue
		}
		f.markContained(entity, entity, make(map[*ComplexType]bool))
	}
	for _, d := range f.order {
		ct, ok := f.shells[d].(*ComplexType)
		if !ok {
			continue
		}
		for _, ref := range d.usages {
			user, ok := f.resolve(ref).(*ComplexType)
			if !ok {
				f.reportf(xsderrors.KindTypeDoesNotExist, d, d.data, ct,
					"type '%s' declared as user of '%s' does not exist", ref, d.name)
				continue
			}
			addUsage(ct, user)
		}
	}
}

func (f *freezer) markContained(entity, ct *ComplexType, visited map[*ComplexType]bool) {
	for _, fld := range ct.fields {
		if fld.kind != FieldContained {
			continue
		}
		if contained, ok := fld.typ.(*ComplexType); ok {
			f.useBy(entity, contained, visited)
		}
	}
}

func (f *freezer) useBy(entity, ct *ComplexType, visited map[*ComplexType]bool) {
	if visited[ct] {
		return
	}
	visited[ct] = true
	if _, owned := f.owned[ct]; owned {
		addUsage(ct, entity)
	}
	f.markContained(entity, ct, visited)
	for _, sub := range ct.subTypes {
		f.useBy(entity, sub, visited)
	}
}

func addUsage(ct, user *ComplexType) {
	if !slices.Contains(ct.usages, user) {
		ct.usages = append(ct.usages, user)
	}
}

func (f *freezer) seal() {
	for _, d := range f.order {
		d.sealed = f.shells[d]
		d.frozen = true
		for _, fb := range d.fields {
			fb.frozen = true
		}
	}
}

func (f *freezer) reportf(kind xsderrors.Kind, d *TypeBuilder, data sideData, source any, format string, args ...any) {
	if f.report == nil {
		return
	}
	v := xsderrors.NewValidationf(kind, displayName(d), format, args...)
	v.Line, v.Column = position(data)
	v.Source = source
	f.report(v)
}

// displayName names an anonymous draft after the field that owns it.
func displayName(d *TypeBuilder) string {
	if !d.anonymous || d.container == nil || d.container.owner == nil {
		return d.name
	}
	return displayName(d.container.owner) + "/" + d.container.name
}

package metadata

import "slices"

// Thaw returns open drafts structurally equal to the sealed types, with every
// reference rebound to resolver. Inline anonymous types are thawed with the
// field that owns them. Inherited fields, sub types and usages are derived
// again by the next Freeze. The sealed types are not modified.
func Thaw(types []Type, resolver Resolver) []*TypeBuilder {
	out := make([]*TypeBuilder, 0, len(types))
	for _, t := range types {
		if b := thawType(t, resolver); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func thawType(t Type, resolver Resolver) *TypeBuilder {
	switch t := t.(type) {
	case *SimpleType:
		return &TypeBuilder{
			data:      t.data.clone(),
			namespace: t.namespace,
			name:      t.name,
			supers:    rebindTypes(t.superRefs, resolver),
			simple:    true,
			anonymous: IsAnonymousName(t.name),
		}
	case *ComplexType:
		b := &TypeBuilder{
			data:           t.data.clone(),
			labels:         cloneStrings(t.labels),
			descriptions:   cloneStrings(t.descriptions),
			namespace:      t.namespace,
			name:           t.name,
			supers:         rebindTypes(t.superRefs, resolver),
			keys:           rebindFields(t.keyRefs, resolver),
			usages:         rebindTypes(t.usageRefs, resolver),
			schematron:     slices.Clone(t.schematron),
			primaryKeyInfo: slices.Clone(t.primaryKeyInfo),
			lookupFields:   slices.Clone(t.lookupFields),
			access:         t.access.clone(),
			instantiable:   t.instantiable,
			anonymous:      t.anonymous,
		}
		for _, fld := range t.declared {
			b.AddField(thawField(fld, resolver))
		}
		return b
	default:
		return nil
	}
}

func thawField(fld *Field, resolver Resolver) *FieldBuilder {
	fb := &FieldBuilder{
		data:         fld.data.clone(),
		labels:       cloneStrings(fld.labels),
		descriptions: cloneStrings(fld.descriptions),
		name:         fld.name,
		access:       fld.access.clone(),
		minOccurs:    fld.minOccurs,
		maxOccurs:    fld.maxOccurs,
		enumeration:  fld.kind == FieldEnumeration,
		reference:    fld.kind == FieldReference,
	}
	if fld.inline && fld.typ != nil {
		fb.AsAnonymous(thawType(fld.typ, resolver))
	} else {
		fb.typeRef = fld.typeRef.rebind(resolver)
	}
	if k := fld.foreignKey; k != nil && !k.implicit {
		fb.foreignKey = &ForeignKeyBuilder{
			field:             fb,
			typeRef:           k.typeRef.rebind(resolver),
			fieldRef:          k.fieldRef.rebind(resolver),
			info:              rebindFields(k.infoRefs, resolver),
			filter:            k.filter,
			integrity:         k.integrity,
			integrityOverride: k.integrityOverride,
		}
	}
	return fb
}

func rebindTypes(refs []*SoftTypeRef, resolver Resolver) []*SoftTypeRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*SoftTypeRef, len(refs))
	for i, r := range refs {
		out[i] = r.rebind(resolver)
	}
	return out
}

func rebindFields(refs []*SoftFieldRef, resolver Resolver) []*SoftFieldRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*SoftFieldRef, len(refs))
	for i, r := range refs {
		out[i] = r.rebind(resolver)
	}
	return out
}

package validation

import (
	"slices"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
)

type positioned interface {
	Position() (line, column int)
}

func record(kind xsderrors.Kind, owner string, source positioned, format string, args ...any) xsderrors.Validation {
	v := xsderrors.NewValidationf(kind, owner, format, args...)
	v.Line, v.Column = source.Position()
	v.Source = source
	return v
}

// ValidateType runs the type rules of t and of the anonymous types it
// declares. It returns true when every rule passed.
func ValidateType(h Handler, t *metadata.ComplexType) bool {
	ok := Run(h, TypeRules(t)...)
	for _, f := range t.DeclaredFields() {
		if ct := f.ContainedType(); ct != nil && ct.Anonymous() && ct.Container() == f {
			ok = ValidateType(h, ct) && ok
		}
	}
	return ok
}

// TypeRules returns the rules checking t, in the order they run.
func TypeRules(t *metadata.ComplexType) []Rule {
	var rules []Rule
	for _, f := range t.DeclaredFields() {
		rules = append(rules, FieldInheritanceOverrideRule{Field: f})
	}
	if t.Instantiable() {
		for _, key := range t.DeclaredKeys() {
			rules = append(rules, KeyFieldRule{Type: t, Key: key})
		}
		rules = append(rules, TypeMustHaveKeyRule{Type: t}, SuperTypeKeyRule{Type: t})
	}
	for _, f := range t.DeclaredFields() {
		if fk := f.ForeignKey(); fk != nil && len(fk.InfoRefs()) > 0 {
			rules = append(rules, ForeignKeyInfoRule{Field: f})
		}
	}
	if len(t.PrimaryKeyInfo()) > 0 || len(t.LookupFields()) > 0 {
		rules = append(rules, FieldPathRule{Type: t})
	}
	return rules
}

// FieldInheritanceOverrideRule rejects a field redeclaring a field that a
// super type inherits from another type.
type FieldInheritanceOverrideRule struct {
	Field *metadata.Field
}

func (r FieldInheritanceOverrideRule) Perform(h Handler) bool {
	declaring := r.Field.DeclaringType()
	if declaring == nil {
		return true
	}
	for _, s := range declaring.SuperTypes() {
		super, ok := s.(*metadata.ComplexType)
		if !ok {
			continue
		}
		inherited, err := super.Field(r.Field.Name())
		if err != nil || inherited.DeclaringType() == declaring {
			continue
		}
		Report(h, record(xsderrors.KindFieldCannotOverrideInheritedElement, declaring.Name(), r.Field,
			"field '%s' can not override inherited element", r.Field.Name()))
		return false
	}
	return true
}

func (FieldInheritanceOverrideRule) ContinueOnFail() bool { return false }

// KeyFieldRule checks that a key field is mandatory, single and simple.
type KeyFieldRule struct {
	Type *metadata.ComplexType
	Key  *metadata.Field
}

func (r KeyFieldRule) Perform(h Handler) bool {
	ok := true
	owner := r.Type.Name()
	if !r.Key.Mandatory() {
		Report(h, record(xsderrors.KindKeyFieldMustBeMandatory, owner, r.Key,
			"key field '%s' must be mandatory", r.Key.Path()))
		ok = false
	}
	if r.Key.Many() {
		Report(h, record(xsderrors.KindKeyFieldCannotBeRepeatable, owner, r.Key,
			"key field '%s' can not be repeatable", r.Key.Path()))
		ok = false
	}
	if _, complexValue := r.Key.Type().(*metadata.ComplexType); complexValue {
		Report(h, record(xsderrors.KindKeyFieldMustBeSimple, owner, r.Key,
			"key field '%s' must have a simple type", r.Key.Path()))
		ok = false
	}
	return ok
}

func (KeyFieldRule) ContinueOnFail() bool { return true }

// TypeMustHaveKeyRule checks that an entity type owns or inherits a key.
type TypeMustHaveKeyRule struct {
	Type *metadata.ComplexType
}

func (r TypeMustHaveKeyRule) Perform(h Handler) bool {
	if len(r.Type.Keys()) > 0 {
		return true
	}
	Report(h, record(xsderrors.KindTypeMustHaveKey, r.Type.Name(), r.Type,
		"entity type '%s' must have at least one key", r.Type.Name()))
	return false
}

func (TypeMustHaveKeyRule) ContinueOnFail() bool { return true }

// SuperTypeKeyRule rejects an entity sub type declaring keys that differ
// from the keys of its entity super type.
type SuperTypeKeyRule struct {
	Type *metadata.ComplexType
}

func (r SuperTypeKeyRule) Perform(h Handler) bool {
	super := r.Type.EntitySuperType()
	declared := r.Type.DeclaredKeys()
	if super == nil || len(declared) == 0 {
		return true
	}
	inherited := super.Keys()
	if len(inherited) == 0 || slices.Equal(keyPaths(declared), keyPaths(inherited)) {
		return true
	}
	Report(h, record(xsderrors.KindTypeCannotOverrideSuperTypeKey, r.Type.Name(), r.Type,
		"entity type '%s' can not override the key of its super type '%s'", r.Type.Name(), super.Name()))
	return false
}

func (SuperTypeKeyRule) ContinueOnFail() bool { return true }

func keyPaths(keys []*metadata.Field) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Path()
	}
	return out
}

// ForeignKeyInfoRule checks that foreign key info fields belong to the
// referenced type.
type ForeignKeyInfoRule struct {
	Field *metadata.Field
}

func (r ForeignKeyInfoRule) Perform(h Handler) bool {
	fk := r.Field.ForeignKey()
	target := fk.ReferencedType()
	if target == nil {
		return true
	}
	ok := true
	for _, info := range fk.InfoRefs() {
		if info.TypeName() == target.Name() {
			continue
		}
		Report(h, record(xsderrors.KindForeignKeyInfoNotInReferencedType, r.Field.DeclaringType().Name(), r.Field,
			"foreign key info '%s' of field '%s' is not a field of '%s'", info, r.Field.Name(), target.Name()))
		ok = false
	}
	return ok
}

func (ForeignKeyInfoRule) ContinueOnFail() bool { return true }

// FieldPathRule warns about primary key info and lookup paths designating
// no field.
type FieldPathRule struct {
	Type *metadata.ComplexType
}

func (r FieldPathRule) Perform(h Handler) bool {
	ok := true
	check := func(kind string, paths []string) {
		for _, p := range paths {
			if r.Type.HasField(p) {
				continue
			}
			v := record(xsderrors.KindFieldDoesNotExist, r.Type.Name(), r.Type,
				"%s '%s' does not designate a field of '%s'", kind, p, r.Type.Name())
			v.Severity = xsderrors.SeverityWarning
			Report(h, v)
			ok = false
		}
	}
	check("primary key info", r.Type.PrimaryKeyInfo())
	check("lookup field", r.Type.LookupFields())
	return ok
}

func (FieldPathRule) ContinueOnFail() bool { return true }

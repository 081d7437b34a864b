package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the rule or stage that produced a reported problem.
type Kind string

const (
	// KindXMLSchema reports a structural problem found while parsing the schema document.
	KindXMLSchema Kind = "XML_SCHEMA"
	// KindFieldCannotOverrideInheritedElement reports a field redeclaring an inherited field.
	KindFieldCannotOverrideInheritedElement Kind = "FIELD_CANNOT_OVERRIDE_INHERITED_ELEMENT"
	// KindTypeDoesNotExist reports a type reference with no matching type.
	KindTypeDoesNotExist Kind = "TYPE_DOES_NOT_EXIST"
	// KindFieldDoesNotExist reports a field reference with no matching field.
	KindFieldDoesNotExist Kind = "FIELD_DOES_NOT_EXIST"
	// KindKeyFieldMustBeMandatory reports an optional key field.
	KindKeyFieldMustBeMandatory Kind = "FIELD_KEY_MUST_BE_MANDATORY"
	// KindKeyFieldCannotBeRepeatable reports a key field with maxOccurs > 1.
	KindKeyFieldCannotBeRepeatable Kind = "FIELD_KEY_CANNOT_BE_REPEATABLE"
	// KindKeyFieldMustBeSimple reports a key field typed by a complex type.
	KindKeyFieldMustBeSimple Kind = "FIELD_KEY_MUST_BE_SIMPLE"
	// KindTypeMustHaveKey reports an entity type that neither owns nor inherits a key.
	KindTypeMustHaveKey Kind = "TYPE_MUST_HAVE_KEY"
	// KindTypeCannotOverrideSuperTypeKey reports an entity sub type redeclaring keys.
	KindTypeCannotOverrideSuperTypeKey Kind = "TYPE_CANNOT_OVERRIDE_SUPER_TYPE_KEY"
	// KindForeignKeyInfoNotInReferencedType reports a foreign key info outside the referenced type.
	KindForeignKeyInfoNotInReferencedType Kind = "FOREIGN_KEY_INFO_NOT_REFERENCING_FK_TYPE"
	// KindCyclicInheritance reports a super type cycle.
	KindCyclicInheritance Kind = "CYCLIC_INHERITANCE"
)

// Severity tells whether a reported problem counts as an error.
type Severity uint8

const (
	// SeverityError counts towards a handler's error count.
	SeverityError Severity = iota
	// SeverityWarning is informational only.
	SeverityWarning
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Validation describes one problem reported while validating a metadata graph,
// with the owning type or field name and optional source position.
//
//nolint:errname // public API name uses the metadata domain term.
type Validation struct {
	Source   any
	Kind     Kind
	Owner    string
	Message  string
	Line     int
	Column   int
	Severity Severity
}

// ValidationList is an error that wraps one or more validation records.
type ValidationList []Validation //nolint:errname // public API name, keep for compatibility.

// Error returns a compact summary of the validation errors.
func (v ValidationList) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
	}
}

// Errors returns the records with error severity.
func (v ValidationList) Errors() ValidationList {
	var out ValidationList
	for _, r := range v {
		if r.Severity == SeverityError {
			out = append(out, r)
		}
	}
	return out
}

// Error formats the record for display, including kind, message, owner and position.
func (v *Validation) Error() string {
	if v == nil {
		return "validation <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", v.Kind, v.Message))
	if v.Owner != "" {
		b.WriteString(fmt.Sprintf(" in %s", v.Owner))
	}
	if v.Line > 0 && v.Column > 0 {
		b.WriteString(fmt.Sprintf(" at line %d, column %d", v.Line, v.Column))
	} else if v.Line > 0 {
		b.WriteString(fmt.Sprintf(" at line %d", v.Line))
	}
	if v.Severity == SeverityWarning {
		b.WriteString(" (warning)")
	}
	return b.String()
}

// NewValidation builds an error-severity record for owner.
func NewValidation(kind Kind, owner, msg string) Validation {
	return Validation{Kind: kind, Owner: owner, Message: msg}
}

// NewValidationf formats a message and builds an error-severity record.
func NewValidationf(kind Kind, owner, format string, args ...any) Validation {
	return NewValidation(kind, owner, fmt.Sprintf(format, args...))
}

// AsValidations extracts validation records from an error.
func AsValidations(err error) ([]Validation, bool) {
	list, ok := asValidationList(err)
	if !ok {
		return nil, false
	}
	return []Validation(list), true
}

func asValidationList(err error) (ValidationList, bool) {
	if err == nil {
		return nil, false
	}
	var list ValidationList
	if errors.As(err, &list) {
		return list, true
	}

	var listPtr *ValidationList
	if errors.As(err, &listPtr) && listPtr != nil {
		return *listPtr, true
	}

	return nil, false
}

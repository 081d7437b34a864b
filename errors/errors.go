// Package errors defines the error taxonomy of the metadata compiler.
//
// Fatal errors abort a load and are returned to the caller. Validation
// records are reported through a handler and never returned by themselves.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilInput is returned when a load is attempted without input.
	ErrNilInput = errors.New("input can not be nil")
	// ErrFrozen is returned when a frozen repository is asked to change.
	ErrFrozen = errors.New("metadata is frozen")
	// ErrNotFrozen is returned when a query needs a frozen repository.
	ErrNotFrozen = errors.New("metadata is not frozen")
)

// MalformedInputError reports input from which no schema could be parsed.
type MalformedInputError struct {
	Err     error
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString("malformed schema input")
	if e.Line > 0 {
		b.WriteString(fmt.Sprintf(" (line %d", e.Line))
		if e.Column > 0 {
			b.WriteString(fmt.Sprintf(", column %d", e.Column))
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error, if any.
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// IncompleteParseError reports types still open when schema traversal ended.
type IncompleteParseError struct {
	Open []string
}

// Error implements the error interface.
func (e *IncompleteParseError) Error() string {
	return fmt.Sprintf("%d types have not been correctly parsed: %s", len(e.Open), strings.Join(e.Open, ", "))
}

// UnsupportedParticleError reports complex type content the traversal can not model.
type UnsupportedParticleError struct {
	Type    string
	Content string
}

// Error implements the error interface.
func (e *UnsupportedParticleError) Error() string {
	return fmt.Sprintf("not supported XML schema particle in type '%s': %s", e.Type, e.Content)
}

// OccursError reports a field whose minOccurs exceeds a bounded maxOccurs.
type OccursError struct {
	Field     string
	Type      string
	MinOccurs int
	MaxOccurs int
}

// Error implements the error interface.
func (e *OccursError) Error() string {
	return fmt.Sprintf("can not parse information on field '%s' of type '%s' (minOccurs %d > maxOccurs %d)",
		e.Field, e.Type, e.MinOccurs, e.MaxOccurs)
}

// AnnotationProcessingError reports a malformed annotation on a type or field.
// It always aborts loading of the enclosing type.
type AnnotationProcessingError struct {
	Err       error
	Type      string
	Field     string
	Processor string
}

// Error implements the error interface.
func (e *AnnotationProcessingError) Error() string {
	var b strings.Builder
	b.WriteString("annotation processing exception while parsing info for ")
	if e.Field != "" {
		b.WriteString(fmt.Sprintf("field '%s' in type '%s'", e.Field, e.Type))
	} else {
		b.WriteString(fmt.Sprintf("type '%s'", e.Type))
	}
	if e.Processor != "" {
		b.WriteString(fmt.Sprintf(" (%s)", e.Processor))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *AnnotationProcessingError) Unwrap() error {
	return e.Err
}

// UnresolvedReferenceError reports a soft reference naming a type or field
// that does not exist.
type UnresolvedReferenceError struct {
	Namespace string
	Name      string
	Path      string
	Entity    bool
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	name := e.Name
	if e.Namespace != "" {
		name = "{" + e.Namespace + "}" + e.Name
	}
	kind := "type"
	if e.Entity {
		kind = "entity type"
	}
	if e.Path != "" {
		return fmt.Sprintf("field '%s' does not exist in %s '%s'", e.Path, kind, name)
	}
	return fmt.Sprintf("%s '%s' does not exist", kind, name)
}

// KindMismatchError reports a type that exists but is not of the expected kind.
type KindMismatchError struct {
	Namespace string
	Name      string
	Want      string
	Got       string
}

// Error implements the error interface.
func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("type named '%s' is a %s type, not a %s type", e.Name, e.Got, e.Want)
}

// EntityNamespaceError reports an entity declared outside the default namespace.
type EntityNamespaceError struct {
	Name      string
	Namespace string
}

// Error implements the error interface.
func (e *EntityNamespaceError) Error() string {
	return fmt.Sprintf("entity type '%s' must be declared in the default namespace (found '%s')", e.Name, e.Namespace)
}

// ContractViolationError is the panic value raised when frozen metadata is mutated.
type ContractViolationError struct {
	Op    string
	Owner string
}

// Error implements the error interface.
func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s: can not %s on '%s'", ErrFrozen, e.Op, e.Owner)
}

// Unwrap returns ErrFrozen.
func (e *ContractViolationError) Unwrap() error {
	return ErrFrozen
}

// Package annotation interprets the xs:appinfo extensions of a schema and
// enriches type and field drafts with their domain semantics: foreign keys,
// validation rules, access control, primary key info, lookup fields and labels.
//
// Processors run in two passes. Reference-establishing annotations are read in
// PassReference, annotations depending on them in PassDependent, whatever
// their order in the document.
package annotation

import (
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// Pass identifies one of the two processing passes.
type Pass uint8

const (
	// PassReference establishes referenced types and fields.
	PassReference Pass = iota
	// PassDependent reads annotations that refine a reference.
	PassDependent
)

// String returns the pass name.
func (p Pass) String() string {
	if p == PassDependent {
		return "dependent"
	}
	return "reference"
}

// Context describes the annotated component.
type Context struct {
	// Resolver is bound into every soft reference created by processors.
	Resolver metadata.Resolver
	// Annotation is the raw annotation; nil when the component has none.
	Annotation *schema.Annotation
	// Namespace is the namespace of referenced entity types.
	Namespace string
	// TypeName is the nearest named type, the target of "." paths.
	TypeName string
}

// Processor interprets the annotations it recognizes and ignores the others.
// A malformed annotation value is returned as an error and aborts the load
// of the enclosing type.
type Processor interface {
	Name() string
	ProcessType(ctx *Context, pass Pass, b *metadata.TypeBuilder) error
	ProcessField(ctx *Context, pass Pass, s *State) error
}

// State accumulates what field processors found before it is folded into
// the field draft.
type State struct {
	Labels            map[string]string
	Descriptions      map[string]string
	ReferencedType    *metadata.SoftTypeRef
	ReferencedField   *metadata.SoftFieldRef
	Integrity         *bool
	IntegrityOverride *bool
	Filter            string
	Info              []*metadata.SoftFieldRef
	Access            metadata.Access
	Reference         bool
}

// Apply folds the state into b. Foreign key refinements are dropped when no
// reference was declared.
func (s *State) Apply(b *metadata.FieldBuilder) {
	if s.Reference {
		k := b.ForeignKey()
		if s.ReferencedType != nil {
			k.Reference(s.ReferencedType, s.ReferencedField)
		}
		if s.Filter != "" {
			k.SetFilter(s.Filter)
		}
		for _, info := range s.Info {
			k.AddInfo(info)
		}
		if s.Integrity != nil {
			k.SetIntegrity(*s.Integrity)
		}
		if s.IntegrityOverride != nil {
			k.SetIntegrityOverride(*s.IntegrityOverride)
		}
	}
	if !s.Access.Empty() {
		b.SetAccess(s.Access)
	}
	for lang, label := range s.Labels {
		b.SetLabel(lang, label)
	}
	for lang, description := range s.Descriptions {
		b.SetDescription(lang, description)
	}
}

func setPosition(ref *metadata.SoftFieldRef, info schema.AppInfo) *metadata.SoftFieldRef {
	return ref.SetData(metadata.DataXSDLine, info.Pos.Line).
		SetData(metadata.DataXSDColumn, info.Pos.Column).
		SetData(metadata.DataXSDNode, info.Node)
}

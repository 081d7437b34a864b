// Package describe renders a serialisable summary of a frozen metadata graph.
package describe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// Format selects the encoding of a summary.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want yaml or json)", s)
	}
}

// Source lists the types to describe.
type Source interface {
	InstantiableTypes() []*metadata.ComplexType
	NonInstantiableTypes() []*metadata.ComplexType
}

// Model is the summary of a repository.
type Model struct {
	Entities []Type `yaml:"entities" json:"entities"`
	Reusable []Type `yaml:"reusable,omitempty" json:"reusable,omitempty"`
}

// Type summarises a complex type.
type Type struct {
	Name       string            `yaml:"name" json:"name"`
	Super      string            `yaml:"super,omitempty" json:"super,omitempty"`
	Backing    string            `yaml:"backing,omitempty" json:"backing,omitempty"`
	Labels     map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	SuperTypes []string          `yaml:"superTypes,omitempty" json:"superTypes,omitempty"`
	Keys       []string          `yaml:"keys,omitempty" json:"keys,omitempty"`
	Usages     []string          `yaml:"usages,omitempty" json:"usages,omitempty"`
	SubTypes   []string          `yaml:"subTypes,omitempty" json:"subTypes,omitempty"`
	Fields     []Field           `yaml:"fields,omitempty" json:"fields,omitempty"`
	Line       int               `yaml:"line,omitempty" json:"line,omitempty"`
}

// Field summarises a field. Fields of anonymous contained types are nested.
type Field struct {
	Name      string     `yaml:"name" json:"name"`
	Type      string     `yaml:"type,omitempty" json:"type,omitempty"`
	Kind      string     `yaml:"kind" json:"kind"`
	MaxLength string     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinOccurs int        `yaml:"minOccurs" json:"minOccurs"`
	MaxOccurs int        `yaml:"maxOccurs" json:"maxOccurs"`
	Key       bool       `yaml:"key,omitempty" json:"key,omitempty"`
	Reference *Reference `yaml:"reference,omitempty" json:"reference,omitempty"`
	Fields    []Field    `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Reference summarises a foreign key.
type Reference struct {
	Type      string   `yaml:"type" json:"type"`
	Fields    []string `yaml:"fields,omitempty" json:"fields,omitempty"`
	Info      []string `yaml:"info,omitempty" json:"info,omitempty"`
	Filter    string   `yaml:"filter,omitempty" json:"filter,omitempty"`
	Integrity bool     `yaml:"integrity" json:"integrity"`
}

// Describe summarises the entity and reusable complex types of src.
func Describe(src Source) Model {
	var m Model
	for _, ct := range src.InstantiableTypes() {
		m.Entities = append(m.Entities, describeType(ct))
	}
	for _, ct := range src.NonInstantiableTypes() {
		m.Reusable = append(m.Reusable, describeType(ct))
	}
	return m
}

func describeType(ct *metadata.ComplexType) Type {
	t := Type{
		Name:    ct.Name(),
		Backing: ct.BackingTypeName(),
		Keys:    fieldPaths(ct.Keys()),
	}
	if labels := ct.Labels(); len(labels) > 0 {
		t.Labels = labels
	}
	if super := ct.EntitySuperType(); super != nil {
		t.Super = super.Name()
	}
	for _, s := range ct.SuperTypes() {
		t.SuperTypes = append(t.SuperTypes, s.Name())
	}
	for _, u := range ct.Usages() {
		t.Usages = append(t.Usages, u.Name())
	}
	for _, sub := range ct.SubTypes() {
		t.SubTypes = append(t.SubTypes, sub.Name())
	}
	t.Line, _ = ct.Position()
	t.Fields = describeFields(ct.Fields())
	return t
}

func describeFields(fields []*metadata.Field) []Field {
	var out []Field
	for _, f := range fields {
		out = append(out, describeField(f))
	}
	return out
}

func describeField(f *metadata.Field) Field {
	d := Field{
		Name:      f.Name(),
		Kind:      f.Kind().String(),
		MinOccurs: f.MinOccurs(),
		MaxOccurs: f.MaxOccurs(),
		Key:       f.Key(),
	}
	switch t := f.Type().(type) {
	case *metadata.SimpleType:
		d.Type = typeName(t)
		d.MaxLength, _ = t.MaxLength()
	case *metadata.ComplexType:
		d.Type = typeName(t)
		if t.Anonymous() && t.Container() == f {
			d.Type = ""
			d.Fields = describeFields(t.Fields())
		}
	default:
		if ref := f.TypeRef(); ref != nil {
			d.Type = ref.String()
		}
	}
	if fk := f.ForeignKey(); fk != nil {
		r := &Reference{
			Fields:    fieldPaths(fk.ReferencedFields()),
			Info:      fieldPaths(fk.Info()),
			Filter:    fk.Filter(),
			Integrity: fk.Integrity(),
		}
		if target := fk.ReferencedType(); target != nil {
			r.Type = target.Name()
		}
		d.Reference = r
	}
	return d
}

// typeName names simple types of the XML Schema namespace with an xs prefix.
func typeName(t metadata.Type) string {
	if metadata.IsAnonymousName(t.Name()) {
		if st, ok := t.(*metadata.SimpleType); ok {
			if supers := st.SuperTypes(); len(supers) > 0 {
				return typeName(supers[0])
			}
		}
		return ""
	}
	if t.Namespace() == schema.XSDNamespace {
		return "xs:" + t.Name()
	}
	return t.Name()
}

func fieldPaths(fields []*metadata.Field) []string {
	var out []string
	for _, f := range fields {
		out = append(out, f.Path())
	}
	return out
}

// Encode writes m to w.
func Encode(w io.Writer, m Model, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

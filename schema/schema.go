// Package schema is the structural object model of an XML schema document:
// elements, type definitions, particles, facets, annotations and identity
// constraints, plus the traversal contract used to walk it.
package schema

import (
	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/internal/xsdxml"
)

// XSDNamespace is the XML Schema namespace.
const XSDNamespace = xsdxml.XSDNamespace

// Unbounded is the MaxOccurs value of maxOccurs="unbounded".
const Unbounded = -1

// Pos is a 1-based source position. The zero value means unknown.
type Pos struct {
	Line   int
	Column int
}

// Node is an opaque handle to the raw schema markup a component was read from.
type Node struct {
	doc *xsdxml.Document
	id  xsdxml.NodeID
}

// NewNode wraps a document node.
func NewNode(doc *xsdxml.Document, id xsdxml.NodeID) Node {
	return Node{doc: doc, id: id}
}

// Valid reports whether the handle points at a node.
func (n Node) Valid() bool {
	return n.doc != nil && n.id != xsdxml.InvalidNode
}

// LocalName returns the element local name.
func (n Node) LocalName() string {
	if !n.Valid() {
		return ""
	}
	return n.doc.LocalName(n.id)
}

// OuterXML returns the source markup of the node.
func (n Node) OuterXML() string {
	if !n.Valid() {
		return ""
	}
	return n.doc.OuterXML(n.id)
}

// InnerXML returns the source markup between the node tags.
func (n Node) InnerXML() string {
	if !n.Valid() {
		return ""
	}
	return n.doc.InnerXML(n.id)
}

// Schema is a parsed schema document. Component slices keep document order.
type Schema struct {
	TargetNamespace string
	Location        string
	SimpleTypes     []*SimpleType
	ComplexTypes    []*ComplexType
	Elements        []*Element
	Groups          []*NamedGroup
	// Diagnostics holds the structural problems found while parsing.
	Diagnostics []xsderrors.Validation
}

// TypeDefinition is implemented by *SimpleType and *ComplexType.
type TypeDefinition interface {
	QName() QName
	Anonymous() bool
	typeDefinition()
}

// Term is the content of a particle: *Element, *ModelGroup or *Wildcard.
type Term interface {
	term()
}

// Particle binds occurrence bounds to a term.
type Particle struct {
	Term      Term
	MinOccurs int
	MaxOccurs int
}

// Compositor is the kind of a model group.
type Compositor uint8

const (
	Sequence Compositor = iota
	Choice
	All
)

// String returns the XSD keyword for the compositor.
func (c Compositor) String() string {
	switch c {
	case Choice:
		return "choice"
	case All:
		return "all"
	default:
		return "sequence"
	}
}

// ModelGroup is a sequence, choice or all group.
type ModelGroup struct {
	Particles  []*Particle
	Compositor Compositor
}

func (*ModelGroup) term() {}

// NamedGroup is a top-level xs:group definition.
type NamedGroup struct {
	Group     *ModelGroup
	Name      string
	Namespace string
	Pos       Pos
}

// Wildcard is an xs:any particle term.
type Wildcard struct {
	Namespace       string
	ProcessContents string
}

func (*Wildcard) term() {}

// Element is an element declaration, global or local, or an element reference.
type Element struct {
	Type              TypeDefinition
	Resolved          *Element
	Substitution      *Element
	Annotation        *Annotation
	Node              Node
	Name              string
	Namespace         string
	TypeName          QName
	Ref               QName
	SubstitutionGroup QName
	Constraints       []*IdentityConstraint
	Pos               Pos
	MinOccurs         int
	MaxOccurs         int
	Global            bool
	Abstract          bool
}

func (*Element) term() {}

// QName returns the element name.
func (e *Element) QName() QName {
	return QName{Namespace: e.Namespace, Local: e.Name}
}

// IsReference reports whether the declaration is an element reference.
func (e *Element) IsReference() bool {
	return !e.Ref.IsZero()
}

// Derivation is the complex content derivation method.
type Derivation uint8

const (
	DerivationNone Derivation = iota
	DerivationExtension
	DerivationRestriction
)

// ComplexType is a complex type definition.
type ComplexType struct {
	BaseType      TypeDefinition
	Content       *Particle
	Annotation    *Annotation
	Node          Node
	Name          string
	Namespace     string
	Base          QName
	Pos           Pos
	Derivation    Derivation
	SimpleContent bool
	Abstract      bool
}

func (*ComplexType) typeDefinition() {}

// QName returns the type name.
func (c *ComplexType) QName() QName {
	return QName{Namespace: c.Namespace, Local: c.Name}
}

// Anonymous reports whether the type is declared inline.
func (c *ComplexType) Anonymous() bool {
	return c.Name == ""
}

// AnyType is the complex ur-type.
var AnyType = &ComplexType{Name: "anyType", Namespace: XSDNamespace}

// Variety is the simple type variety.
type Variety uint8

const (
	Atomic Variety = iota
	List
	Union
)

// FacetKind names a constraining facet.
type FacetKind string

const (
	FacetLength         FacetKind = "length"
	FacetMinLength      FacetKind = "minLength"
	FacetMaxLength      FacetKind = "maxLength"
	FacetPattern        FacetKind = "pattern"
	FacetEnumeration    FacetKind = "enumeration"
	FacetWhiteSpace     FacetKind = "whiteSpace"
	FacetMaxInclusive   FacetKind = "maxInclusive"
	FacetMaxExclusive   FacetKind = "maxExclusive"
	FacetMinInclusive   FacetKind = "minInclusive"
	FacetMinExclusive   FacetKind = "minExclusive"
	FacetTotalDigits    FacetKind = "totalDigits"
	FacetFractionDigits FacetKind = "fractionDigits"
)

// Facet is one constraining facet with its lexical value.
type Facet struct {
	Kind  FacetKind
	Value string
	Pos   Pos
}

// SimpleType is a simple type definition.
type SimpleType struct {
	BaseType   *SimpleType
	Annotation *Annotation
	Node       Node
	Name       string
	Namespace  string
	Base       QName
	Facets     []Facet
	Pos        Pos
	Variety    Variety
	builtin    bool
}

func (*SimpleType) typeDefinition() {}

// QName returns the type name.
func (s *SimpleType) QName() QName {
	return QName{Namespace: s.Namespace, Local: s.Name}
}

// Anonymous reports whether the type is declared inline.
func (s *SimpleType) Anonymous() bool {
	return s.Name == ""
}

// Builtin reports whether the type is part of the XSD vocabulary.
func (s *SimpleType) Builtin() bool {
	return s.builtin
}

// Facet returns the value of the first facet of kind declared on s itself.
func (s *SimpleType) Facet(kind FacetKind) (string, bool) {
	for _, f := range s.Facets {
		if f.Kind == kind {
			return f.Value, true
		}
	}
	return "", false
}

// HasEnumeration reports whether s or one of its base types declares enumeration facets.
func (s *SimpleType) HasEnumeration() bool {
	seen := 0
	for cur := s; cur != nil && seen < maxBaseChain; cur = cur.BaseType {
		if _, ok := cur.Facet(FacetEnumeration); ok {
			return true
		}
		seen++
	}
	return false
}

// Enumeration returns the enumeration values declared on s, or on the nearest base declaring some.
func (s *SimpleType) Enumeration() []string {
	seen := 0
	for cur := s; cur != nil && seen < maxBaseChain; cur = cur.BaseType {
		var values []string
		for _, f := range cur.Facets {
			if f.Kind == FacetEnumeration {
				values = append(values, f.Value)
			}
		}
		if len(values) > 0 {
			return values
		}
		seen++
	}
	return nil
}

const maxBaseChain = 64

// Annotation holds the xs:annotation children of a component.
type Annotation struct {
	AppInfo       []AppInfo
	Documentation []string
}

// AppInfoBySource returns the appinfo entries whose source attribute equals source.
func (a *Annotation) AppInfoBySource(source string) []AppInfo {
	if a == nil {
		return nil
	}
	var out []AppInfo
	for _, info := range a.AppInfo {
		if info.Source == source {
			out = append(out, info)
		}
	}
	return out
}

// AppInfo is one xs:appinfo entry. Text is the decoded text content and
// Markup the verbatim inner markup.
type AppInfo struct {
	Node   Node
	Source string
	Text   string
	Markup string
	Pos    Pos
}

// ConstraintKind is the identity constraint category.
type ConstraintKind uint8

const (
	Key ConstraintKind = iota
	Unique
	KeyRef
)

// String returns the XSD keyword for the constraint kind.
func (k ConstraintKind) String() string {
	switch k {
	case Unique:
		return "unique"
	case KeyRef:
		return "keyref"
	default:
		return "key"
	}
}

// XPath is a selector or field expression of an identity constraint.
type XPath struct {
	Value string
	Pos   Pos
	Node  Node
}

// IdentityConstraint is an xs:key, xs:unique or xs:keyref definition.
type IdentityConstraint struct {
	Name     string
	Refer    QName
	Selector XPath
	Fields   []XPath
	Kind     ConstraintKind
}

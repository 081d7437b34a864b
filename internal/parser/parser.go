package parser

import (
	"fmt"
	"strings"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

type parser struct {
	doc    *xsdxml.Document
	schema *schema.Schema

	elements        map[string]*schema.Element
	complexTypes    map[string]*schema.ComplexType
	simpleTypes     map[string]*schema.SimpleType
	groups          map[string]*schema.NamedGroup
	groupNodes      map[string]xsdxml.NodeID
	simpleTypeNodes map[string]xsdxml.NodeID

	// bodies pairs each registered global with its declaring node, in document order.
	bodies []globalBody
	// groupRefs records group references per containing named group.
	groupRefs map[string][]groupRef
	// currentGroup is the named group whose body is being parsed.
	currentGroup string

	qualifiedElements bool
}

type globalBody struct {
	component any
	node      xsdxml.NodeID
}

type groupRef struct {
	owner    *schema.ModelGroup
	particle *schema.Particle
	target   string
}

func newParser(doc *xsdxml.Document, location string) *parser {
	return &parser{
		doc:             doc,
		schema:          &schema.Schema{Location: location},
		elements:        make(map[string]*schema.Element),
		complexTypes:    make(map[string]*schema.ComplexType),
		simpleTypes:     make(map[string]*schema.SimpleType),
		groups:          make(map[string]*schema.NamedGroup),
		groupNodes:      make(map[string]xsdxml.NodeID),
		simpleTypeNodes: make(map[string]xsdxml.NodeID),
		groupRefs:       make(map[string][]groupRef),
	}
}

func (p *parser) pos(id xsdxml.NodeID) schema.Pos {
	pos := p.doc.Position(id)
	return schema.Pos{Line: pos.Line, Column: pos.Column}
}

func (p *parser) report(id xsdxml.NodeID, severity xsderrors.Severity, owner, format string, args ...any) {
	pos := p.pos(id)
	p.schema.Diagnostics = append(p.schema.Diagnostics, xsderrors.Validation{
		Kind:     xsderrors.KindXMLSchema,
		Owner:    owner,
		Message:  fmt.Sprintf(format, args...),
		Line:     pos.Line,
		Column:   pos.Column,
		Severity: severity,
		Source:   schema.NewNode(p.doc, id),
	})
}

func (p *parser) errorf(id xsdxml.NodeID, owner, format string, args ...any) {
	p.report(id, xsderrors.SeverityError, owner, format, args...)
}

func (p *parser) warnf(id xsdxml.NodeID, owner, format string, args ...any) {
	p.report(id, xsderrors.SeverityWarning, owner, format, args...)
}

func (p *parser) parseSchemaAttributes(root xsdxml.NodeID) {
	p.schema.TargetNamespace = strings.TrimSpace(p.doc.GetAttribute(root, "targetNamespace"))
	p.qualifiedElements = strings.TrimSpace(p.doc.GetAttribute(root, "elementFormDefault")) == "qualified"
}

// registerGlobals records every named top-level component so that bodies can
// reference components declared later in the document.
func (p *parser) registerGlobals(root xsdxml.NodeID) {
	tns := p.schema.TargetNamespace
	for _, child := range p.doc.Children(root) {
		if p.doc.NamespaceURI(child) != xsdxml.XSDNamespace {
			p.warnf(child, "", "ignored non schema element {%s}%s", p.doc.NamespaceURI(child), p.doc.LocalName(child))
			continue
		}
		local := p.doc.LocalName(child)
		switch local {
		case "element", "complexType", "simpleType", "group":
		case "import", "include", "redefine", "override":
			p.warnf(child, "", "%s of '%s' is not followed", local, p.doc.GetAttribute(child, "schemaLocation"))
			continue
		case "annotation", "attribute", "attributeGroup", "notation":
			continue
		default:
			p.warnf(child, "", "unknown schema child '%s'", local)
			continue
		}

		name := getNameAttr(p.doc, child)
		if name == "" {
			p.errorf(child, "", "global %s is missing the 'name' attribute", local)
			continue
		}
		pos := p.pos(child)
		node := schema.NewNode(p.doc, child)
		var component any
		switch local {
		case "element":
			if _, dup := p.elements[name]; dup {
				p.errorf(child, name, "duplicate global element '%s'", name)
				continue
			}
			el := &schema.Element{Name: name, Namespace: tns, Global: true, MinOccurs: 1, MaxOccurs: 1, Pos: pos, Node: node}
			p.elements[name] = el
			p.schema.Elements = append(p.schema.Elements, el)
			component = el
		case "complexType":
			if p.typeDeclared(name) {
				p.errorf(child, name, "duplicate global type '%s'", name)
				continue
			}
			ct := &schema.ComplexType{Name: name, Namespace: tns, Pos: pos, Node: node}
			p.complexTypes[name] = ct
			p.schema.ComplexTypes = append(p.schema.ComplexTypes, ct)
			component = ct
		case "simpleType":
			if p.typeDeclared(name) {
				p.errorf(child, name, "duplicate global type '%s'", name)
				continue
			}
			st := &schema.SimpleType{Name: name, Namespace: tns, Pos: pos, Node: node}
			p.simpleTypes[name] = st
			p.simpleTypeNodes[name] = child
			p.schema.SimpleTypes = append(p.schema.SimpleTypes, st)
			component = st
		case "group":
			if _, dup := p.groups[name]; dup {
				p.errorf(child, name, "duplicate global group '%s'", name)
				continue
			}
			g := &schema.NamedGroup{Name: name, Namespace: tns, Pos: pos, Group: &schema.ModelGroup{}}
			p.groups[name] = g
			p.groupNodes[name] = child
			p.schema.Groups = append(p.schema.Groups, g)
			component = g
		}
		p.bodies = append(p.bodies, globalBody{component: component, node: child})
	}
}

func (p *parser) typeDeclared(name string) bool {
	_, complexOK := p.complexTypes[name]
	_, simpleOK := p.simpleTypes[name]
	return complexOK || simpleOK
}

func (p *parser) parseGlobals() {
	for _, body := range p.bodies {
		switch c := body.component.(type) {
		case *schema.Element:
			p.parseElementBody(body.node, c)
		case *schema.ComplexType:
			p.parseComplexTypeBody(body.node, c)
		case *schema.SimpleType:
			p.parseSimpleTypeBody(body.node, c)
		case *schema.NamedGroup:
			p.currentGroup = c.Name
			p.parseNamedGroupBody(body.node, c)
			p.currentGroup = ""
		}
	}
}

// inheritSubstitutionTypes gives untyped substitution group members the type
// of their head, as XSD prescribes.
func (p *parser) inheritSubstitutionTypes() {
	for _, el := range p.schema.Elements {
		seen := 0
		for cur := el; cur != nil && seen < len(p.schema.Elements); seen++ {
			if cur.Type != schema.AnyType || !cur.TypeName.IsZero() || cur.Substitution == nil {
				break
			}
			head := cur.Substitution
			if head.Type != nil && head.Type != schema.AnyType {
				el.Type = head.Type
				break
			}
			cur = head
		}
	}
}

// xsdChildren returns the children of id in the XML Schema namespace.
func (p *parser) xsdChildren(id xsdxml.NodeID) []xsdxml.NodeID {
	var out []xsdxml.NodeID
	for _, child := range p.doc.Children(id) {
		if p.doc.NamespaceURI(child) == xsdxml.XSDNamespace {
			out = append(out, child)
		}
	}
	return out
}

// resolveQName resolves a QName-valued attribute in the scope of id.
func (p *parser) resolveQName(id xsdxml.NodeID, owner, attr string) (schema.QName, bool) {
	value, ok := p.doc.LookupAttribute(id, attr)
	if !ok {
		return schema.QName{}, false
	}
	ns, local, err := p.doc.ResolveQName(id, value)
	if err != nil {
		p.errorf(id, owner, "%s: %v", attr, err)
		return schema.QName{}, false
	}
	return schema.QName{Namespace: ns, Local: local}, true
}

// lookupType resolves a type QName against the built-in vocabulary and the
// schema globals. Unknown names are reported and resolve to nil.
func (p *parser) lookupType(id xsdxml.NodeID, owner string, name schema.QName) schema.TypeDefinition {
	if def, ok := schema.LookupBuiltin(name); ok {
		return def
	}
	if name.Namespace == p.schema.TargetNamespace {
		if ct, ok := p.complexTypes[name.Local]; ok {
			return ct
		}
		if st, ok := p.simpleTypes[name.Local]; ok {
			return st
		}
	}
	p.errorf(id, owner, "type '%s' is not defined", name)
	return nil
}

func (p *parser) lookupSimpleType(id xsdxml.NodeID, owner string, name schema.QName) *schema.SimpleType {
	def := p.lookupType(id, owner, name)
	if def == nil {
		return nil
	}
	st, ok := def.(*schema.SimpleType)
	if !ok {
		p.errorf(id, owner, "type '%s' is not a simple type", name)
		return nil
	}
	return st
}

func (p *parser) lookupElement(id xsdxml.NodeID, owner string, name schema.QName) *schema.Element {
	if name.Namespace == p.schema.TargetNamespace {
		if el, ok := p.elements[name.Local]; ok {
			return el
		}
	}
	p.errorf(id, owner, "element '%s' is not defined", name)
	return nil
}

package parser

import (
	"strings"

	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

// parseElementBody fills a registered global element.
func (p *parser) parseElementBody(id xsdxml.NodeID, el *schema.Element) {
	if p.doc.HasAttribute(id, "ref") {
		p.errorf(id, el.Name, "global element '%s' can not use 'ref'", el.Name)
	}
	if p.doc.HasAttribute(id, "minOccurs") || p.doc.HasAttribute(id, "maxOccurs") {
		p.errorf(id, el.Name, "global element '%s' can not declare occurrence bounds", el.Name)
	}
	el.Abstract = strings.TrimSpace(p.doc.GetAttribute(id, "abstract")) == "true"
	if qn, ok := p.resolveQName(id, el.Name, "substitutionGroup"); ok {
		el.SubstitutionGroup = qn
		el.Substitution = p.lookupElement(id, el.Name, qn)
	}
	p.parseElementContent(id, el)
}

// parseLocalElement parses an element particle inside a model group.
func (p *parser) parseLocalElement(id xsdxml.NodeID, owner string) *schema.Element {
	el := &schema.Element{Pos: p.pos(id), Node: schema.NewNode(p.doc, id)}
	el.MinOccurs, el.MaxOccurs = p.parseOccurs(id, owner)

	if ref, ok := p.resolveQName(id, owner, "ref"); ok {
		el.Ref = ref
		el.Name = ref.Local
		el.Namespace = ref.Namespace
		el.Resolved = p.lookupElement(id, owner, ref)
		el.Annotation = p.componentAnnotation(id)
		return el
	}

	el.Name = getNameAttr(p.doc, id)
	if el.Name == "" {
		p.errorf(id, owner, "local element in '%s' is missing the 'name' attribute", owner)
		return nil
	}
	form := strings.TrimSpace(p.doc.GetAttribute(id, "form"))
	if form == "qualified" || (form == "" && p.qualifiedElements) {
		el.Namespace = p.schema.TargetNamespace
	}
	p.parseElementContent(id, el)
	return el
}

// parseElementContent reads the type, inline type, annotation and identity
// constraints shared by global and local declarations.
func (p *parser) parseElementContent(id xsdxml.NodeID, el *schema.Element) {
	if qn, ok := p.resolveQName(id, el.Name, "type"); ok {
		el.TypeName = qn
		el.Type = p.lookupType(id, el.Name, qn)
	}
	el.Annotation = p.componentAnnotation(id)
	for _, child := range p.xsdChildren(id) {
		switch p.doc.LocalName(child) {
		case "complexType":
			if !el.TypeName.IsZero() {
				p.errorf(child, el.Name, "element '%s' can not have both a 'type' attribute and an inline type", el.Name)
				continue
			}
			ct := &schema.ComplexType{Namespace: p.schema.TargetNamespace, Pos: p.pos(child), Node: schema.NewNode(p.doc, child)}
			p.parseComplexTypeBody(child, ct)
			el.Type = ct
		case "simpleType":
			if !el.TypeName.IsZero() {
				p.errorf(child, el.Name, "element '%s' can not have both a 'type' attribute and an inline type", el.Name)
				continue
			}
			st := &schema.SimpleType{Namespace: p.schema.TargetNamespace, Pos: p.pos(child), Node: schema.NewNode(p.doc, child)}
			p.parseSimpleTypeBody(child, st)
			el.Type = st
		case "key", "unique", "keyref":
			if c := p.parseIdentityConstraint(child, el.Name); c != nil {
				el.Constraints = append(el.Constraints, c)
			}
		}
	}
	if el.Type == nil && el.TypeName.IsZero() {
		el.Type = schema.AnyType
	}
}

// parseIdentityConstraint parses a key, keyref, or unique constraint.
func (p *parser) parseIdentityConstraint(id xsdxml.NodeID, owner string) *schema.IdentityConstraint {
	c := &schema.IdentityConstraint{Name: getNameAttr(p.doc, id)}
	if c.Name == "" {
		p.errorf(id, owner, "identity constraint missing name attribute")
	}
	switch p.doc.LocalName(id) {
	case "unique":
		c.Kind = schema.Unique
	case "keyref":
		c.Kind = schema.KeyRef
		if refer, ok := p.resolveQName(id, owner, "refer"); ok {
			c.Refer = refer
		} else {
			p.errorf(id, owner, "keyref missing refer attribute")
		}
	default:
		c.Kind = schema.Key
	}
	for _, child := range p.xsdChildren(id) {
		xpath := schema.XPath{
			Value: strings.TrimSpace(p.doc.GetAttribute(child, "xpath")),
			Pos:   p.pos(child),
			Node:  schema.NewNode(p.doc, child),
		}
		switch p.doc.LocalName(child) {
		case "selector":
			c.Selector = xpath
		case "field":
			if xpath.Value == "" {
				p.errorf(child, owner, "identity constraint field missing xpath attribute")
				continue
			}
			c.Fields = append(c.Fields, xpath)
		}
	}
	if len(c.Fields) == 0 {
		p.errorf(id, owner, "identity constraint '%s' declares no field", c.Name)
		return nil
	}
	return c
}

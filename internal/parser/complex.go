package parser

import (
	"strings"

	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

func typeOwner(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}

// parseComplexTypeBody fills a global or inline complex type.
func (p *parser) parseComplexTypeBody(id xsdxml.NodeID, ct *schema.ComplexType) {
	owner := typeOwner(ct.Name)
	ct.Abstract = strings.TrimSpace(p.doc.GetAttribute(id, "abstract")) == "true"
	ct.Annotation = p.componentAnnotation(id)
	for _, child := range p.xsdChildren(id) {
		switch local := p.doc.LocalName(child); local {
		case "annotation", "attribute", "attributeGroup", "anyAttribute", "assert", "openContent":
		case "sequence", "choice", "all":
			p.setContent(child, owner, ct, p.parseModelGroup(child, owner))
		case "group":
			p.setContent(child, owner, ct, p.parseGroupRef(child, owner, nil))
		case "complexContent":
			p.parseComplexContent(child, owner, ct)
		case "simpleContent":
			p.parseSimpleContent(child, owner, ct)
		default:
			p.warnf(child, owner, "unexpected '%s' in complex type", local)
		}
	}
}

func (p *parser) setContent(id xsdxml.NodeID, owner string, ct *schema.ComplexType, content *schema.Particle) {
	if content == nil {
		return
	}
	if ct.Content != nil {
		p.errorf(id, owner, "complex type '%s' declares more than one content model", owner)
		return
	}
	ct.Content = content
}

func (p *parser) parseComplexContent(id xsdxml.NodeID, owner string, ct *schema.ComplexType) {
	for _, derivation := range p.xsdChildren(id) {
		switch p.doc.LocalName(derivation) {
		case "extension":
			ct.Derivation = schema.DerivationExtension
		case "restriction":
			ct.Derivation = schema.DerivationRestriction
		default:
			continue
		}
		if base, ok := p.resolveQName(derivation, owner, "base"); ok {
			ct.Base = base
			switch def := p.lookupType(derivation, owner, base).(type) {
			case *schema.ComplexType:
				ct.BaseType = def
			case *schema.SimpleType:
				p.errorf(derivation, owner, "complex content of '%s' can not derive from simple type '%s'", owner, base)
			}
		} else {
			p.errorf(derivation, owner, "complex content derivation of '%s' is missing the 'base' attribute", owner)
		}
		for _, child := range p.xsdChildren(derivation) {
			switch p.doc.LocalName(child) {
			case "sequence", "choice", "all":
				p.setContent(child, owner, ct, p.parseModelGroup(child, owner))
			case "group":
				p.setContent(child, owner, ct, p.parseGroupRef(child, owner, nil))
			}
		}
	}
}

// parseSimpleContent only records the derivation; element traversal does not
// model simple content.
func (p *parser) parseSimpleContent(id xsdxml.NodeID, owner string, ct *schema.ComplexType) {
	ct.SimpleContent = true
	for _, derivation := range p.xsdChildren(id) {
		switch p.doc.LocalName(derivation) {
		case "extension":
			ct.Derivation = schema.DerivationExtension
		case "restriction":
			ct.Derivation = schema.DerivationRestriction
		default:
			continue
		}
		if base, ok := p.resolveQName(derivation, owner, "base"); ok {
			ct.Base = base
			ct.BaseType = p.lookupType(derivation, owner, base)
		}
	}
}

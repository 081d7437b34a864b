package parser

import (
	"strings"

	"github.com/jacoelho/xsdmeta/internal/graphcycle"
	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

var facetKinds = map[string]schema.FacetKind{
	"length":         schema.FacetLength,
	"minLength":      schema.FacetMinLength,
	"maxLength":      schema.FacetMaxLength,
	"pattern":        schema.FacetPattern,
	"enumeration":    schema.FacetEnumeration,
	"whiteSpace":     schema.FacetWhiteSpace,
	"maxInclusive":   schema.FacetMaxInclusive,
	"maxExclusive":   schema.FacetMaxExclusive,
	"minInclusive":   schema.FacetMinInclusive,
	"minExclusive":   schema.FacetMinExclusive,
	"totalDigits":    schema.FacetTotalDigits,
	"fractionDigits": schema.FacetFractionDigits,
}

// parseSimpleTypeBody fills a global or inline simple type.
func (p *parser) parseSimpleTypeBody(id xsdxml.NodeID, st *schema.SimpleType) {
	owner := typeOwner(st.Name)
	st.Annotation = p.componentAnnotation(id)
	anySimple, _ := schema.Builtin("anySimpleType")
	for _, child := range p.xsdChildren(id) {
		switch p.doc.LocalName(child) {
		case "restriction":
			p.parseRestriction(child, owner, st)
			return
		case "list":
			st.Variety = schema.List
			st.Base = anySimple.QName()
			st.BaseType = anySimple
			return
		case "union":
			st.Variety = schema.Union
			st.Base = anySimple.QName()
			st.BaseType = anySimple
			return
		}
	}
	p.errorf(id, owner, "simple type '%s' must declare a restriction, list or union", owner)
}

func (p *parser) parseRestriction(id xsdxml.NodeID, owner string, st *schema.SimpleType) {
	if base, ok := p.resolveQName(id, owner, "base"); ok {
		st.Base = base
		if base.Equal(st.QName()) {
			p.errorf(id, owner, "simple type '%s' can not derive from itself", owner)
		} else {
			st.BaseType = p.lookupSimpleType(id, owner, base)
		}
	}
	for _, child := range p.xsdChildren(id) {
		local := p.doc.LocalName(child)
		if local == "simpleType" {
			if !st.Base.IsZero() {
				p.errorf(child, owner, "restriction of '%s' can not have both a 'base' attribute and an inline type", owner)
				continue
			}
			inline := &schema.SimpleType{Namespace: p.schema.TargetNamespace, Pos: p.pos(child), Node: schema.NewNode(p.doc, child)}
			p.parseSimpleTypeBody(child, inline)
			st.BaseType = inline
			continue
		}
		kind, ok := facetKinds[local]
		if !ok {
			continue
		}
		st.Facets = append(st.Facets, schema.Facet{
			Kind:  kind,
			Value: strings.TrimSpace(p.doc.GetAttribute(child, "value")),
			Pos:   p.pos(child),
		})
	}
	if st.Base.IsZero() && st.BaseType == nil {
		p.errorf(id, owner, "restriction of '%s' is missing the 'base' attribute", owner)
	}
}

// breakDerivationCycles reports global simple types deriving from themselves
// through other types and cuts the base link that closes the cycle.
func (p *parser) breakDerivationCycles() {
	starts := make([]*schema.SimpleType, 0, len(p.schema.SimpleTypes))
	starts = append(starts, p.schema.SimpleTypes...)
	cycles, err := graphcycle.DetectAll(graphcycle.Config[*schema.SimpleType]{
		Starts: starts,
		Next: func(st *schema.SimpleType) ([]*schema.SimpleType, error) {
			if st.BaseType == nil || st.BaseType.Builtin() {
				return nil, nil
			}
			return []*schema.SimpleType{st.BaseType}, nil
		},
	})
	if err != nil {
		return
	}
	for _, cycle := range cycles {
		names := make([]string, len(cycle.Path))
		for i, st := range cycle.Path {
			names[i] = typeOwner(st.Name)
		}
		closing := cycle.Path[len(cycle.Path)-2]
		p.errorf(p.simpleTypeNodes[closing.Name], closing.Name, "circular simple type derivation: %s", strings.Join(names, " -> "))
		closing.BaseType = nil
	}
}

package parser

import (
	"strconv"
	"strings"

	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

// parseOccurs reads minOccurs and maxOccurs, defaulting both to 1.
// Invalid values are reported and replaced by the default. The relation
// between the two bounds is not checked here.
func (p *parser) parseOccurs(id xsdxml.NodeID, owner string) (minOccurs, maxOccurs int) {
	return p.parseOccursAttr(id, owner, "minOccurs"), p.parseOccursAttr(id, owner, "maxOccurs")
}

func (p *parser) parseOccursAttr(id xsdxml.NodeID, owner, attr string) int {
	value, ok := p.doc.LookupAttribute(id, attr)
	if !ok {
		return 1
	}
	value = strings.TrimSpace(value)
	if value == "unbounded" {
		if attr == "minOccurs" {
			p.errorf(id, owner, "minOccurs attribute cannot be 'unbounded'")
			return 1
		}
		return schema.Unbounded
	}
	n, err := strconv.ParseUint(value, 10, 31)
	if err != nil {
		p.errorf(id, owner, "invalid %s attribute value '%s'", attr, value)
		return 1
	}
	return int(n)
}

package parser

import (
	"strings"

	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

// parseAnnotation reads an xs:annotation element.
func (p *parser) parseAnnotation(id xsdxml.NodeID) *schema.Annotation {
	a := &schema.Annotation{}
	for _, child := range p.xsdChildren(id) {
		switch p.doc.LocalName(child) {
		case "appinfo":
			a.AppInfo = append(a.AppInfo, schema.AppInfo{
				Source: strings.TrimSpace(p.doc.GetAttribute(child, "source")),
				Text:   p.doc.TextContent(child),
				Markup: p.doc.InnerXML(child),
				Pos:    p.pos(child),
				Node:   schema.NewNode(p.doc, child),
			})
		case "documentation":
			a.Documentation = append(a.Documentation, p.doc.TextContent(child))
		}
	}
	return a
}

// componentAnnotation merges the annotation children of id, or returns nil when there is none.
func (p *parser) componentAnnotation(id xsdxml.NodeID) *schema.Annotation {
	var out *schema.Annotation
	for _, child := range p.xsdChildren(id) {
		if p.doc.LocalName(child) != "annotation" {
			continue
		}
		a := p.parseAnnotation(child)
		if out == nil {
			out = a
			continue
		}
		out.AppInfo = append(out.AppInfo, a.AppInfo...)
		out.Documentation = append(out.Documentation, a.Documentation...)
	}
	return out
}

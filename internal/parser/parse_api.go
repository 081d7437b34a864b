package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

// Options configures schema parsing.
type Options struct {
	// Location is recorded on the schema for diagnostics.
	Location string
	MaxDepth int
	MaxAttrs int
}

// Parse parses an XSD schema from a reader.
// Malformed XML and documents whose root is not xs:schema fail with
// *errors.MalformedInputError. Structural problems of the schema itself are
// returned as schema diagnostics.
func Parse(r io.Reader, opts Options) (*schema.Schema, error) {
	if r == nil {
		return nil, xsderrors.ErrNilInput
	}
	doc, err := xsdxml.Parse(r, xsdxml.Options{MaxDepth: opts.MaxDepth, MaxAttrs: opts.MaxAttrs})
	if err != nil {
		return nil, newMalformedInputError("parse XML", err)
	}
	return ParseDocument(doc, opts)
}

// ParseDocument builds a schema from an already parsed document.
func ParseDocument(doc *xsdxml.Document, opts Options) (*schema.Schema, error) {
	root := doc.DocumentElement()
	if root == xsdxml.InvalidNode {
		return nil, &xsderrors.MalformedInputError{Message: "empty document"}
	}
	if doc.LocalName(root) != "schema" || doc.NamespaceURI(root) != xsdxml.XSDNamespace {
		pos := doc.Position(root)
		return nil, &xsderrors.MalformedInputError{
			Message: fmt.Sprintf("root element must be xs:schema, got {%s}%s", doc.NamespaceURI(root), doc.LocalName(root)),
			Line:    pos.Line,
			Column:  pos.Column,
		}
	}

	p := newParser(doc, opts.Location)
	p.parseSchemaAttributes(root)
	p.registerGlobals(root)
	p.parseGlobals()
	p.breakGroupCycles()
	p.breakDerivationCycles()
	p.inheritSubstitutionTypes()
	return p.schema, nil
}

func newMalformedInputError(msg string, err error) *xsderrors.MalformedInputError {
	out := &xsderrors.MalformedInputError{Message: msg, Err: err}
	var se *xsdxml.SyntaxError
	if errors.As(err, &se) {
		out.Line = se.Line
		out.Column = se.Column
	}
	return out
}

// getNameAttr returns the name attribute value with whitespace trimmed.
// Attribute values are compared after whitespace normalization.
func getNameAttr(doc *xsdxml.Document, elem xsdxml.NodeID) string {
	return strings.TrimSpace(doc.GetAttribute(elem, "name"))
}

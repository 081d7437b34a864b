package xsdxml

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	xmlData := `<root xmlns="http://example.com">
		<child attr="value">text content</child>
		<child2>more text</child2>
	</root>`

	doc, err := Parse(strings.NewReader(xmlData), Options{})
	require.NoError(t, err)

	root := doc.DocumentElement()
	require.NotEqual(t, InvalidNode, root)
	assert.Equal(t, "root", doc.LocalName(root))
	assert.Equal(t, "http://example.com", doc.NamespaceURI(root))

	children := doc.Children(root)
	require.Len(t, children, 2)

	child := children[0]
	assert.Equal(t, "child", doc.LocalName(child))
	assert.True(t, doc.HasAttribute(child, "attr"))
	assert.Equal(t, "value", doc.GetAttribute(child, "attr"))
	assert.Equal(t, "text content", doc.TextContent(child))
	assert.Equal(t, Pos{Line: 2, Column: 3}, doc.Position(child))
}

func TestNamespaceDeclarationsAreNotAttributes(t *testing.T) {
	xmlData := `<root attr1="val1" xmlns:ns="http://ns.com" ns:attr3="val3"><ns:child/></root>`

	doc, err := Parse(strings.NewReader(xmlData), Options{})
	require.NoError(t, err)

	root := doc.DocumentElement()
	attrs := doc.Attributes(root)
	require.Len(t, attrs, 2)
	assert.Equal(t, "http://ns.com", attrs[1].NamespaceURI())
	assert.Equal(t, "attr3", attrs[1].LocalName())
	assert.Equal(t, "val3", attrs[1].Value())

	uri, ok := doc.LookupNamespace(doc.Children(root)[0], "ns")
	require.True(t, ok)
	assert.Equal(t, "http://ns.com", uri)
	assert.Equal(t, "http://ns.com", doc.NamespaceURI(doc.Children(root)[0]))
}

func TestResolveQName(t *testing.T) {
	xmlData := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns="urn:tns">
		<xs:element name="a" type="xs:string"/>
		<xs:element name="b" type="Local"/>
		<xs:element name="c" type="missing:T"/>
	</xs:schema>`

	doc, err := Parse(strings.NewReader(xmlData), Options{})
	require.NoError(t, err)
	elems := doc.Children(doc.DocumentElement())
	require.Len(t, elems, 3)

	ns, local, err := doc.ResolveQName(elems[0], doc.GetAttribute(elems[0], "type"))
	require.NoError(t, err)
	assert.Equal(t, XSDNamespace, ns)
	assert.Equal(t, "string", local)

	ns, local, err = doc.ResolveQName(elems[1], doc.GetAttribute(elems[1], "type"))
	require.NoError(t, err)
	assert.Equal(t, "urn:tns", ns)
	assert.Equal(t, "Local", local)

	_, _, err = doc.ResolveQName(elems[2], doc.GetAttribute(elems[2], "type"))
	assert.Error(t, err)
}

func TestInnerXML(t *testing.T) {
	xmlData := `<appinfo source="X_Schematron"><pattern name="p"><rule context="a"/></pattern></appinfo>`

	doc, err := Parse(strings.NewReader(xmlData), Options{})
	require.NoError(t, err)
	root := doc.DocumentElement()
	assert.Equal(t, `<pattern name="p"><rule context="a"/></pattern>`, doc.InnerXML(root))
	assert.Equal(t, xmlData, doc.OuterXML(root))

	empty := doc.Children(doc.Children(root)[0])[0]
	assert.Equal(t, "", doc.InnerXML(empty))
}

func TestTextContentMixed(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<a>one<b>two</b>three</a>`), Options{})
	require.NoError(t, err)
	root := doc.DocumentElement()
	assert.Equal(t, "onetwothree", doc.TextContent(root))
	assert.Equal(t, "two", doc.TextContent(doc.Children(root)[0]))
}

func TestParseLimits(t *testing.T) {
	_, err := Parse(strings.NewReader(`<a><b><c/></b></a>`), Options{MaxDepth: 2})
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "maximum depth 2")

	_, err = Parse(strings.NewReader(`<a x="1" y="2"/>`), Options{MaxAttrs: 1})
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "more than 1 attributes")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "unclosed", input: "<a><b></a>"},
		{name: "text outside root", input: "<a/>junk"},
		{name: "second root", input: "<a/><b/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), Options{})
			var se *SyntaxError
			assert.True(t, errors.As(err, &se), "error = %v", err)
		})
	}
}

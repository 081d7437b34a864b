package xsdxml

import "strings"

const (
	// XSDNamespace is the XML Schema namespace.
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"
	// XMLNamespace is the namespace bound to the xml prefix.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	// XMLNSNamespace is the namespace of namespace declarations.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// NodeID identifies a node in the document arena.
type NodeID int

// InvalidNode represents an invalid node reference.
const InvalidNode NodeID = -1

// Document is a compact arena for parsed XML.
// It keeps the source bytes so element markup can be re-read verbatim.
type Document struct {
	src          []byte
	nodes        []node
	attrs        []Attr
	nsDecls      []nsDecl
	children     []NodeID
	textSegments []textSegment
	textScratch  []textScratchEntry
	root         NodeID
}

type node struct {
	namespace   string
	local       string
	text        []byte
	attrsOff    int
	attrsLen    int
	nsOff       int
	nsLen       int
	childrenOff int
	childrenLen int
	textSegOff  int
	textSegLen  int
	parent      NodeID
	pos         Pos
	outerStart  int64
	innerStart  int64
	innerEnd    int64
	outerEnd    int64
}

type nsDecl struct {
	prefix string
	uri    string
}

type textSegment struct {
	childIndex int
	textOff    int
	textLen    int
}

type textScratchEntry struct {
	parent     NodeID
	childIndex int
	textOff    int
	textLen    int
}

// Pos is a 1-based line and column in the source document.
type Pos struct {
	Line   int
	Column int
}

// Attr exposes attribute name, namespace, and value.
type Attr struct {
	namespace string
	local     string
	value     string
}

func (a Attr) NamespaceURI() string {
	return a.namespace
}

func (a Attr) LocalName() string {
	return a.local
}

func (a Attr) Value() string {
	return a.value
}

// DocumentElement returns the document root node.
func (d *Document) DocumentElement() NodeID {
	if d == nil {
		return InvalidNode
	}
	return d.root
}

func (d *Document) validNode(id NodeID) bool {
	return d != nil && id >= 0 && int(id) < len(d.nodes)
}

// NamespaceURI returns the namespace URI for the given node.
func (d *Document) NamespaceURI(id NodeID) string {
	if !d.validNode(id) {
		return ""
	}
	return d.nodes[id].namespace
}

// LocalName returns the local name for the given node.
func (d *Document) LocalName(id NodeID) string {
	if !d.validNode(id) {
		return ""
	}
	return d.nodes[id].local
}

// Position returns the source position of the element start tag.
func (d *Document) Position(id NodeID) Pos {
	if !d.validNode(id) {
		return Pos{}
	}
	return d.nodes[id].pos
}

// Attributes returns a read-only view of the element attributes.
// Namespace declarations are not included.
// The returned slice aliases the document arena; do not modify or retain it.
func (d *Document) Attributes(id NodeID) []Attr {
	if !d.validNode(id) {
		return nil
	}
	n := d.nodes[id]
	if n.attrsLen == 0 {
		return nil
	}
	return d.attrs[n.attrsOff : n.attrsOff+n.attrsLen]
}

// Children returns a read-only view of the element children.
// The returned slice aliases the document arena; do not modify or retain it.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.validNode(id) {
		return nil
	}
	n := d.nodes[id]
	if n.childrenLen == 0 {
		return nil
	}
	return d.children[n.childrenOff : n.childrenOff+n.childrenLen]
}

// TextContent returns the concatenated text content of the element subtree.
func (d *Document) TextContent(id NodeID) string {
	if !d.validNode(id) {
		return ""
	}
	n := d.nodes[id]
	if n.childrenLen == 0 {
		return string(n.text)
	}
	var sb strings.Builder
	d.collectText(id, &sb)
	return sb.String()
}

func (d *Document) collectText(id NodeID, sb *strings.Builder) {
	n := d.nodes[id]
	if n.childrenLen == 0 {
		_, _ = sb.Write(n.text)
		return
	}
	children := d.Children(id)
	if n.textSegLen == 0 {
		for _, child := range children {
			d.collectText(child, sb)
		}
		return
	}
	segments := d.textSegments[n.textSegOff : n.textSegOff+n.textSegLen]
	childIdx := 0
	for _, segment := range segments {
		for childIdx < segment.childIndex && childIdx < len(children) {
			d.collectText(children[childIdx], sb)
			childIdx++
		}
		_, _ = sb.Write(n.text[segment.textOff : segment.textOff+segment.textLen])
	}
	for childIdx < len(children) {
		d.collectText(children[childIdx], sb)
		childIdx++
	}
}

// InnerXML returns the source markup between the element start and end tags.
func (d *Document) InnerXML(id NodeID) string {
	if !d.validNode(id) {
		return ""
	}
	n := d.nodes[id]
	if n.innerEnd < n.innerStart || n.innerEnd > int64(len(d.src)) {
		return ""
	}
	return string(d.src[n.innerStart:n.innerEnd])
}

// OuterXML returns the source markup of the element including its tags.
func (d *Document) OuterXML(id NodeID) string {
	if !d.validNode(id) {
		return ""
	}
	n := d.nodes[id]
	if n.outerEnd < n.outerStart || n.outerEnd > int64(len(d.src)) {
		return ""
	}
	return string(d.src[n.outerStart:n.outerEnd])
}

func (d *Document) findAttribute(id NodeID, match func(Attr) bool) (Attr, bool) {
	for _, attr := range d.Attributes(id) {
		if match(attr) {
			return attr, true
		}
	}
	return Attr{}, false
}

// GetAttribute returns the value of an unqualified attribute name.
func (d *Document) GetAttribute(id NodeID, name string) string {
	if attr, ok := d.findAttribute(id, func(a Attr) bool { return a.namespace == "" && a.local == name }); ok {
		return attr.value
	}
	return ""
}

// LookupAttribute returns the value of an unqualified attribute and whether it is present.
func (d *Document) LookupAttribute(id NodeID, name string) (string, bool) {
	attr, ok := d.findAttribute(id, func(a Attr) bool { return a.namespace == "" && a.local == name })
	return attr.value, ok
}

// HasAttribute reports whether the element has an unqualified attribute name.
func (d *Document) HasAttribute(id NodeID, name string) bool {
	_, ok := d.LookupAttribute(id, name)
	return ok
}

// LookupNamespace resolves prefix against the declarations in scope at id.
// The empty prefix resolves the default namespace.
func (d *Document) LookupNamespace(id NodeID, prefix string) (string, bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	for cur := id; d.validNode(cur); cur = d.nodes[cur].parent {
		n := d.nodes[cur]
		for _, decl := range d.nsDecls[n.nsOff : n.nsOff+n.nsLen] {
			if decl.prefix == prefix {
				return decl.uri, true
			}
		}
	}
	return "", prefix == ""
}

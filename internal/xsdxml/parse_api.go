package xsdxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/xsdmeta/internal/state"
)

const (
	// DefaultMaxDepth bounds element nesting when no limit is configured.
	DefaultMaxDepth = 256
	// DefaultMaxAttrs bounds attributes per element when no limit is configured.
	DefaultMaxAttrs = 256
)

// Options configures document parsing limits. Zero values select the defaults.
type Options struct {
	MaxDepth int
	MaxAttrs int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxAttrs <= 0 {
		o.MaxAttrs = DefaultMaxAttrs
	}
	return o
}

// SyntaxError reports malformed XML input with its source position.
type SyntaxError struct {
	Err    error
	Msg    string
	Line   int
	Column int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, msg)
	}
	return msg
}

// Unwrap returns the decoder error, if any.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse builds the DOM used by the schema reader from XML input.
func Parse(r io.Reader, opts Options) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("nil XML reader")
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xml read: %w", err)
	}
	return ParseBytes(src, opts)
}

// ParseBytes builds the DOM from an in-memory document. The document keeps src.
func ParseBytes(src []byte, opts Options) (*Document, error) {
	opts = opts.withDefaults()
	doc := &Document{src: src, root: InvalidNode}

	decoder := xml.NewDecoder(bytes.NewReader(src))
	decoder.Strict = true

	nodeStack := state.NewStack[NodeID](16)
	childCountStack := state.NewStack[int](16)
	rootClosed := false

	syntaxErr := func(msg string) error {
		line, col := decoder.InputPos()
		return &SyntaxError{Msg: msg, Line: line, Column: col}
	}

	for {
		offset := decoder.InputOffset()
		line, col := decoder.InputPos()
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				_, col := decoder.InputPos()
				return nil, &SyntaxError{Err: err, Msg: se.Msg, Line: se.Line, Column: col}
			}
			return nil, &SyntaxError{Err: err, Line: line, Column: col}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, syntaxErr(fmt.Sprintf("unexpected element %s after document end", t.Name.Local))
			}
			if nodeStack.Len() >= opts.MaxDepth {
				return nil, syntaxErr(fmt.Sprintf("element nesting exceeds maximum depth %d", opts.MaxDepth))
			}
			if len(t.Attr) > opts.MaxAttrs {
				return nil, syntaxErr(fmt.Sprintf("element %s has more than %d attributes", t.Name.Local, opts.MaxAttrs))
			}

			parent := InvalidNode
			if p, ok := nodeStack.Top(); ok {
				parent = p
				count, _ := childCountStack.Top()
				childCountStack.SetTop(count + 1)
			}
			id := doc.addNode(t, parent)
			doc.nodes[id].pos = Pos{Line: line, Column: col}
			doc.nodes[id].outerStart = offset
			doc.nodes[id].innerStart = decoder.InputOffset()
			if parent == InvalidNode {
				doc.root = id
			}
			nodeStack.Push(id)
			childCountStack.Push(0)

		case xml.EndElement:
			id, ok := nodeStack.Pop()
			if !ok {
				continue
			}
			_, _ = childCountStack.Pop()
			doc.nodes[id].innerEnd = offset
			doc.nodes[id].outerEnd = decoder.InputOffset()
			if nodeStack.Len() == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if nodeStack.Len() == 0 {
				if len(bytes.TrimSpace(bytes.TrimPrefix(t, []byte("\ufeff")))) != 0 {
					return nil, syntaxErr("unexpected character data outside root element")
				}
				continue
			}
			nodeID, _ := nodeStack.Top()
			n := &doc.nodes[nodeID]
			textOff := len(n.text)
			n.text = append(n.text, t...)
			count, _ := childCountStack.Top()
			doc.addTextSegment(nodeID, count, textOff, len(t))
		}
	}

	if doc.root == InvalidNode {
		return nil, &SyntaxError{Err: io.ErrUnexpectedEOF, Msg: "document has no root element"}
	}

	doc.buildChildren()
	doc.buildTextSegments()
	return doc, nil
}

func (d *Document) addNode(start xml.StartElement, parent NodeID) NodeID {
	n := node{
		namespace: start.Name.Space,
		local:     start.Name.Local,
		parent:    parent,
		attrsOff:  len(d.attrs),
		nsOff:     len(d.nsDecls),
	}
	for _, attr := range start.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			d.nsDecls = append(d.nsDecls, nsDecl{prefix: attr.Name.Local, uri: attr.Value})
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			d.nsDecls = append(d.nsDecls, nsDecl{uri: attr.Value})
		default:
			d.attrs = append(d.attrs, Attr{
				namespace: attr.Name.Space,
				local:     attr.Name.Local,
				value:     attr.Value,
			})
		}
	}
	n.attrsLen = len(d.attrs) - n.attrsOff
	n.nsLen = len(d.nsDecls) - n.nsOff
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

// ResolveQName splits a prefixed value and resolves its prefix in the scope of id.
// Unprefixed values take the default namespace in scope.
func (d *Document) ResolveQName(id NodeID, value string) (ns, local string, err error) {
	value = strings.TrimSpace(value)
	prefix, local, hasPrefix := strings.Cut(value, ":")
	if !hasPrefix {
		local, prefix = prefix, ""
	}
	if local == "" {
		return "", "", fmt.Errorf("invalid QName %q", value)
	}
	uri, ok := d.LookupNamespace(id, prefix)
	if !ok {
		return "", "", fmt.Errorf("undeclared namespace prefix %q in QName %q", prefix, value)
	}
	return uri, local, nil
}

// Package xmltree provides a typed element-tree abstraction over raw XML.
//
// Both interchange dialects are parsed into this one tree shape (element
// name, attributes, children, character data) before any model-level
// interpretation happens. Keeping all encoding/xml access here isolates the
// parsers from token-level details and gives format detection a cheap way
// to inspect the root element.
//
// Parsing is strict about well-formedness (malformed input is a fatal
// error) and lenient about everything else: unknown elements and attributes
// are kept verbatim for the callers to interpret or ignore.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one node of a parsed XML document.
type Element struct {
	Name     string // local element name
	Space    string // namespace URI, "" when none
	Attrs    []Attr
	Children []*Element
	Text     string // trimmed character data directly inside this element
}

// Attr is a single attribute with its local name.
type Attr struct {
	Name  string
	Value string
}

// Parse reads a complete XML document and returns its root element.
// Returns an error for malformed input or input without a root element.
func Parse(data []byte) (*Element, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:  t.Name.Local,
				Space: t.Name.Space,
				Attrs: make([]Attr, 0, len(t.Attr)),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("malformed XML: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("malformed XML: unexpected end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				if text := strings.TrimSpace(string(t)); text != "" {
					cur := stack[len(stack)-1]
					if cur.Text != "" {
						cur.Text += " "
					}
					cur.Text += text
				}
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("malformed XML: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("malformed XML: unclosed element %s", stack[len(stack)-1].Name)
	}
	return root, nil
}

// Attr returns the value of the named attribute. The lookup is exact first,
// then case-insensitive; producers disagree on attribute casing.
func (e *Element) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// LookupAttr is Attr with an explicit found flag.
func (e *Element) LookupAttr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given local name
// (case-insensitive), or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all children with the given local name
// (case-insensitive), in document order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits e and all descendants depth-first. Returning false from fn
// prunes the subtree below the current element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

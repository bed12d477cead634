package procxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skarven/flowsheet/pkg/xmltree"
)

// Root element identity of the current dialect.
const (
	// RootName is the root element of current-schema documents.
	RootName = "ProcessInterchange"
	// Namespace is the expected root namespace URI.
	Namespace = "urn:flowsheet:procxml:2"
)

// =============================================================================
// Grammar - Object / Data / Components
// =============================================================================
//
// The whole current schema is three shapes, applied recursively:
//
//	<Object id="..." type="...">     a typed entity
//	  <Data name="...">...</Data>        a named leaf (scalar or one Object)
//	  <Components name="...">...</C.>    a named ordered list of Objects
//	</Object>
//
// Steps, ports, connections, parameters, stream properties, layout, and
// metadata are all instances of this grammar; there is exactly one
// encoder/decoder pair, below.

// Object is a typed entity with named data leaves and component lists.
type Object struct {
	ID         string
	Type       string
	Data       []Data
	Components []Components
}

// Data is a named leaf. Exactly one of the value fields is set: a nested
// Object, or one scalar (string, double, boolean).
type Data struct {
	Name   string
	Object *Object
	String *string
	Double *float64
	Bool   *bool
}

// Components is a named, ordered list of sibling Objects.
type Components struct {
	Name    string
	Objects []Object
}

// StringData builds a string-valued leaf.
func StringData(name, value string) Data {
	return Data{Name: name, String: &value}
}

// DoubleData builds a double-valued leaf.
func DoubleData(name string, value float64) Data {
	return Data{Name: name, Double: &value}
}

// BoolData builds a boolean-valued leaf.
func BoolData(name string, value bool) Data {
	return Data{Name: name, Bool: &value}
}

// ObjectData builds a leaf wrapping a nested Object.
func ObjectData(name string, obj Object) Data {
	return Data{Name: name, Object: &obj}
}

// Scalar returns the leaf's scalar value rendered as a string, and whether
// the leaf holds a scalar at all.
func (d *Data) Scalar() (string, bool) {
	switch {
	case d.String != nil:
		return *d.String, true
	case d.Double != nil:
		return formatDouble(*d.Double), true
	case d.Bool != nil:
		return strconv.FormatBool(*d.Bool), true
	default:
		return "", false
	}
}

// =============================================================================
// Encoding
// =============================================================================

const indentUnit = "  "

// encodeObject renders one Object subtree as indented XML.
// This is the single encoder for every concept in the schema.
func encodeObject(sb *strings.Builder, obj *Object, depth int) {
	pad := strings.Repeat(indentUnit, depth)
	fmt.Fprintf(sb, "%s<Object id=%q type=%q>", pad, escape(obj.ID), escape(obj.Type))
	if len(obj.Data) == 0 && len(obj.Components) == 0 {
		sb.WriteString("</Object>\n")
		return
	}
	sb.WriteString("\n")
	for i := range obj.Data {
		encodeData(sb, &obj.Data[i], depth+1)
	}
	for i := range obj.Components {
		encodeComponents(sb, &obj.Components[i], depth+1)
	}
	fmt.Fprintf(sb, "%s</Object>\n", pad)
}

func encodeData(sb *strings.Builder, d *Data, depth int) {
	pad := strings.Repeat(indentUnit, depth)
	inner := strings.Repeat(indentUnit, depth+1)
	switch {
	case d.Object != nil:
		fmt.Fprintf(sb, "%s<Data name=%q>\n", pad, escape(d.Name))
		encodeObject(sb, d.Object, depth+1)
		fmt.Fprintf(sb, "%s</Data>\n", pad)
	case d.Double != nil:
		fmt.Fprintf(sb, "%s<Data name=%q>\n%s<Double>%s</Double>\n%s</Data>\n",
			pad, escape(d.Name), inner, formatDouble(*d.Double), pad)
	case d.Bool != nil:
		fmt.Fprintf(sb, "%s<Data name=%q>\n%s<Boolean>%t</Boolean>\n%s</Data>\n",
			pad, escape(d.Name), inner, *d.Bool, pad)
	default:
		var s string
		if d.String != nil {
			s = *d.String
		}
		fmt.Fprintf(sb, "%s<Data name=%q>\n%s<String>%s</String>\n%s</Data>\n",
			pad, escape(d.Name), inner, escape(s), pad)
	}
}

func encodeComponents(sb *strings.Builder, c *Components, depth int) {
	pad := strings.Repeat(indentUnit, depth)
	if len(c.Objects) == 0 {
		fmt.Fprintf(sb, "%s<Components name=%q></Components>\n", pad, escape(c.Name))
		return
	}
	fmt.Fprintf(sb, "%s<Components name=%q>\n", pad, escape(c.Name))
	for i := range c.Objects {
		encodeObject(sb, &c.Objects[i], depth+1)
	}
	fmt.Fprintf(sb, "%s</Components>\n", pad)
}

func formatDouble(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}

// =============================================================================
// Decoding
// =============================================================================

// decodeObject converts an <Object> element back into the grammar.
// This is the single decoder for every concept in the schema.
func decodeObject(el *xmltree.Element) Object {
	obj := Object{
		ID:   el.Attr("id"),
		Type: el.Attr("type"),
	}
	for _, child := range el.Children {
		switch {
		case strings.EqualFold(child.Name, "Data"):
			obj.Data = append(obj.Data, decodeData(child))
		case strings.EqualFold(child.Name, "Components"):
			obj.Components = append(obj.Components, decodeComponents(child))
		}
	}
	return obj
}

func decodeData(el *xmltree.Element) Data {
	d := Data{Name: el.Attr("name")}
	for _, child := range el.Children {
		switch {
		case strings.EqualFold(child.Name, "Object"):
			obj := decodeObject(child)
			d.Object = &obj
			return d
		case strings.EqualFold(child.Name, "Double"):
			if v, err := strconv.ParseFloat(child.Text, 64); err == nil {
				d.Double = &v
				return d
			}
			// Numeric parse failure degrades to the raw string.
			s := child.Text
			d.String = &s
			return d
		case strings.EqualFold(child.Name, "Boolean"):
			if v, err := strconv.ParseBool(strings.ToLower(child.Text)); err == nil {
				d.Bool = &v
				return d
			}
			s := child.Text
			d.String = &s
			return d
		case strings.EqualFold(child.Name, "String"):
			s := child.Text
			d.String = &s
			return d
		}
	}
	// Bare text content without a scalar wrapper.
	s := el.Text
	d.String = &s
	return d
}

func decodeComponents(el *xmltree.Element) Components {
	c := Components{Name: el.Attr("name")}
	for _, child := range el.Children {
		if strings.EqualFold(child.Name, "Object") {
			c.Objects = append(c.Objects, decodeObject(child))
		}
	}
	return c
}

// =============================================================================
// Case-Insensitive Lookups
// =============================================================================
//
// Producers vary the casing of Data/Components names. Every named lookup
// tries three spellings in order: exact, fully lowercase, lower-first.

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (o *Object) data(name string) (*Data, bool) {
	for _, candidate := range []string{name, strings.ToLower(name), lowerFirst(name)} {
		for i := range o.Data {
			if o.Data[i].Name == candidate {
				return &o.Data[i], true
			}
		}
	}
	return nil, false
}

func (o *Object) components(name string) (*Components, bool) {
	for _, candidate := range []string{name, strings.ToLower(name), lowerFirst(name)} {
		for i := range o.Components {
			if o.Components[i].Name == candidate {
				return &o.Components[i], true
			}
		}
	}
	return nil, false
}

// scalarData returns the named leaf's scalar value using the fallback
// spelling chain, or "" when absent or non-scalar.
func (o *Object) scalarData(name string) string {
	if d, ok := o.data(name); ok {
		if v, ok := d.Scalar(); ok {
			return v
		}
	}
	return ""
}

// doubleData returns the named leaf as a float64. Strings that parse as
// numbers are accepted; anything else reports false.
func (o *Object) doubleData(name string) (float64, bool) {
	d, ok := o.data(name)
	if !ok {
		return 0, false
	}
	if d.Double != nil {
		return *d.Double, true
	}
	if d.String != nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(*d.String), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

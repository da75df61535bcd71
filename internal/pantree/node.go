package pantree

import (
	"encoding/xml"
	"sort"
	"strings"
)

// Node is a single element of the loaded configuration tree. Children keep
// their source document order, which later stages use as a tie-break.
type Node struct {
	// Tag is the element name, e.g. "address-group".
	Tag string
	// Name is the value of the element's name attribute, or "" if absent.
	Name string
	// Text is the trimmed character data of the element.
	Text string
	// Attrs holds any remaining attributes (uuid, version, ...).
	Attrs map[string]string

	Children []*Node
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildNamed returns the last direct child with the given tag and name
// attribute. Last-wins mirrors the "last write wins" semantics of the
// source format when a scope declares the same name twice.
func (n *Node) ChildNamed(tag, name string) *Node {
	var found *Node
	for _, c := range n.Children {
		if c.Tag == tag && c.Name == name {
			found = c
		}
	}
	return found
}

// Path descends through the given tags, taking the first child at each
// step. Returns nil as soon as a segment is missing.
func (n *Node) Path(tags ...string) *Node {
	cur := n
	for _, tag := range tags {
		if cur = cur.Child(tag); cur == nil {
			return nil
		}
	}
	return cur
}

// TextAt returns the text of the node at the given path, or "".
func (n *Node) TextAt(tags ...string) string {
	if c := n.Path(tags...); c != nil {
		return c.Text
	}
	return ""
}

// Entries returns the "entry" children of the child with the given tag,
// in document order.
func (n *Node) Entries(tag string) []*Node {
	c := n.Child(tag)
	if c == nil {
		return nil
	}
	var out []*Node
	for _, e := range c.Children {
		if e.Tag == "entry" {
			out = append(out, e)
		}
	}
	return out
}

// Members returns the text of every <member> element under the given path,
// in document order. Used for the membership lists that pervade the format.
func (n *Node) Members(tags ...string) []string {
	c := n.Path(tags...)
	if c == nil {
		return nil
	}
	var out []string
	for _, m := range c.Children {
		if m.Tag == "member" && m.Text != "" {
			out = append(out, m.Text)
		}
	}
	return out
}

// Descendants returns every node with the given tag anywhere below n,
// in document order.
func (n *Node) Descendants(tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if c.Tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	cp := &Node{Tag: n.Tag, Name: n.Name, Text: n.Text}
	if n.Attrs != nil {
		cp.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			cp.Attrs[k] = v
		}
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// encode writes the node and its subtree to the encoder.
func (n *Node) encode(enc *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Tag}}
	if n.Name != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "name"}, Value: n.Name})
	}
	start.Attr = append(start.Attr, sortedAttrs(n.Attrs)...)
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := c.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func sortedAttrs(attrs map[string]string) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	// Deterministic attribute order regardless of map iteration.
	sort.Strings(keys)
	out := make([]xml.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, xml.Attr{Name: xml.Name{Local: k}, Value: attrs[k]})
	}
	return out
}

// trimText collapses surrounding whitespace the way the source exporter
// pads indented leaf values.
func trimText(s string) string {
	return strings.TrimSpace(s)
}

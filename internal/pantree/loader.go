// Package pantree loads a Panorama XML export into an in-memory tree of
// ordered nodes. The tree is read once, in full; nothing else in the
// pipeline touches the raw document.
package pantree

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// MalformedInputError reports a document that could not be parsed into a
// tree, or one that lacks the expected <config> root.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input document: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Tree is the loaded configuration document. Immutable after Load except
// for reference-normalizer rewrites.
type Tree struct {
	// Root is the <config> element.
	Root *Node
}

// Load parses the document from r. It fails with MalformedInputError when
// the XML is not well-formed or no <config> element exists.
func Load(r io.Reader) (*Tree, error) {
	dec := xml.NewDecoder(r)

	root, err := decodeDocument(dec)
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}

	cfg := findConfig(root)
	if cfg == nil {
		return nil, &MalformedInputError{Err: fmt.Errorf("no <config> element found (root is <%s>)", root.Tag)}
	}
	return &Tree{Root: cfg}, nil
}

// LoadFile is a convenience wrapper around Load.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// decodeDocument consumes the token stream into a node tree, preserving
// element order.
func decodeDocument(dec *xml.Decoder) (*Node, error) {
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == "name" {
					n.Name = a.Value
					continue
				}
				if n.Attrs == nil {
					n.Attrs = make(map[string]string)
				}
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected closing element </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if text := trimText(string(t)); text != "" {
					stack[len(stack)-1].Text += text
				}
			}
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("unexpected end of document inside <%s>", stack[len(stack)-1].Tag)
	}
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}

// findConfig locates the <config> element. Exports taken through the API
// wrap it in <response><result>, direct exports have it as the root.
func findConfig(root *Node) *Node {
	if root.Tag == "config" {
		return root
	}
	if nodes := root.Descendants("config"); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// DeviceGroups returns every device-group entry in the document, in
// declared order.
func (t *Tree) DeviceGroups() []*Node {
	var out []*Node
	for _, dg := range t.Root.Descendants("device-group") {
		for _, e := range dg.Children {
			if e.Tag == "entry" && e.Name != "" {
				out = append(out, e)
			}
		}
	}
	return out
}

// SharedSections returns every <shared> section. Exports can carry several
// disjoint shared sections; callers must consult all of them.
func (t *Tree) SharedSections() []*Node {
	return t.Root.Descendants("shared")
}

// Templates returns every template entry, in declared order.
func (t *Tree) Templates() []*Node {
	var out []*Node
	for _, tpl := range t.Root.Descendants("template") {
		for _, e := range tpl.Children {
			if e.Tag == "entry" && e.Name != "" {
				out = append(out, e)
			}
		}
	}
	return out
}

// TemplateStacks returns every template-stack entry, in declared order.
func (t *Tree) TemplateStacks() []*Node {
	var out []*Node
	for _, ts := range t.Root.Descendants("template-stack") {
		for _, e := range ts.Children {
			if e.Tag == "entry" && e.Name != "" {
				out = append(out, e)
			}
		}
	}
	return out
}

// Devices returns the device entries under the network hierarchy
// (devices/entry), used for device-level network lookups.
func (t *Tree) Devices() []*Node {
	d := t.Root.Child("devices")
	if d == nil {
		return nil
	}
	var out []*Node
	for _, e := range d.Children {
		if e.Tag == "entry" {
			out = append(out, e)
		}
	}
	return out
}

// WriteXML serializes the tree back to indented XML. Used by the
// partitioner to emit self-contained sub-documents.
func (t *Tree) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := t.Root.encode(enc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

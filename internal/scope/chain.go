// Package scope implements precedence-ordered name resolution across the
// layers of a loaded configuration tree. A Chain is a small ordered list
// of lookup tables with a single resolve entry point, so the precedence
// rules stay centrally testable instead of living in ad hoc conditionals.
package scope

import (
	"fmt"
	"strings"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
)

// Kind names a layer of the precedence hierarchy, most-local first.
type Kind int

const (
	KindDeviceGroup Kind = iota
	KindAncestorGroup
	KindTemplate
	KindTemplateStack
	KindDevice
	KindShared
)

func (k Kind) String() string {
	switch k {
	case KindDeviceGroup:
		return "device-group"
	case KindAncestorGroup:
		return "parent device-group"
	case KindTemplate:
		return "template"
	case KindTemplateStack:
		return "template-stack"
	case KindDevice:
		return "device"
	case KindShared:
		return "shared"
	}
	return "unknown"
}

// Table is one scope's lookup layer: entries per category in declared
// order.
type Table struct {
	Kind Kind
	Name string

	entries map[objects.Category][]*pantree.Node
}

func newTable(kind Kind, name string) *Table {
	return &Table{Kind: kind, Name: name, entries: make(map[objects.Category][]*pantree.Node)}
}

func (t *Table) add(cat objects.Category, nodes ...*pantree.Node) {
	if len(nodes) == 0 {
		return
	}
	t.entries[cat] = append(t.entries[cat], nodes...)
}

// Entries returns the table's entries for a category in declared order.
func (t *Table) Entries(cat objects.Category) []*pantree.Node {
	return t.entries[cat]
}

// lookup returns all same-named entries of a category, in declared order.
func (t *Table) lookup(cat objects.Category, name string) []*pantree.Node {
	var out []*pantree.Node
	for _, n := range t.entries[cat] {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

// UnresolvedError reports a reference that no scope in the chain defines.
// It is surfaced, never skipped: a missing reference means downstream
// generation would emit a dangling pointer.
type UnresolvedError struct {
	Category objects.Category
	Name     string
	Chain    string
	// StubOnly is set when placeholders for the name exist but no scope
	// carries an authored definition.
	StubOnly bool
}

func (e *UnresolvedError) Error() string {
	if e.StubOnly {
		return fmt.Sprintf("unresolved reference: %s %q has only reference stubs in scope chain %s",
			e.Category, e.Name, e.Chain)
	}
	return fmt.Sprintf("unresolved reference: %s %q not found in scope chain %s", e.Category, e.Name, e.Chain)
}

// Chain is the precedence-ordered scope list seen by one consumer (one
// device group, or the shared layer itself).
type Chain struct {
	// Name identifies the consuming scope, e.g. the device-group name.
	Name   string
	Tables []*Table
}

func (c *Chain) describe() string {
	parts := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		if t.Name != "" && t.Name != t.Kind.String() {
			parts[i] = fmt.Sprintf("%s %q", t.Kind, t.Name)
		} else {
			parts[i] = t.Kind.String()
		}
	}
	return strings.Join(parts, " -> ")
}

// Resolve walks the chain most-local first and returns the authoritative
// node for (category, name).
//
// Within one scope, duplicate names resolve to the later declaration
// (last write wins, mirroring the source format). Across scopes, stubs
// are transparent: precedence applies only among fully authored
// candidates, so a nearer placeholder never shadows the authored
// definition it points at.
func (c *Chain) Resolve(cat objects.Category, name string) (*pantree.Node, error) {
	spec := objects.SpecFor(cat)
	stubOnly := false
	for _, t := range c.Tables {
		var authored *pantree.Node
		for _, cand := range t.lookup(cat, name) {
			if spec.IsStub(cand) {
				stubOnly = true
				continue
			}
			authored = cand
		}
		if authored != nil {
			return authored, nil
		}
	}
	return nil, &UnresolvedError{Category: cat, Name: name, Chain: c.describe(), StubOnly: stubOnly}
}

// ResolveAny tries each candidate category in order across the whole
// chain and returns the first resolution.
func (c *Chain) ResolveAny(cats []objects.Category, name string) (objects.Category, *pantree.Node, error) {
	var firstErr error
	for _, cat := range cats {
		n, err := c.Resolve(cat, name)
		if err == nil {
			return cat, n, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &UnresolvedError{Name: name, Chain: c.describe()}
	}
	return "", nil, firstErr
}

// Normalize implements the reference-normalizer contract for a single
// node: a stub is replaced by the authored definition reachable through
// the chain, an authored node is returned unchanged.
func (c *Chain) Normalize(cat objects.Category, n *pantree.Node) (*pantree.Node, error) {
	if !objects.SpecFor(cat).IsStub(n) {
		return n, nil
	}
	return c.Resolve(cat, n.Name)
}

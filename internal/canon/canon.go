// Package canon turns raw scope entries into canonical objects: every
// reference normalized to its authored definition, content-identical
// duplicates collapsed to one representative, and unresolvable required
// references collected as a batch error instead of aborting the run.
package canon

import (
	"errors"
	"fmt"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
)

// Ref is one normalized outgoing reference of a canonical object.
type Ref struct {
	// Field labels the source field, matching the schema's RefField name.
	Field string
	// Raw is the name exactly as written in the source.
	Raw string
	// Target is the canonical object the name resolved to. Nil when the
	// reference is emitted verbatim.
	Target *Object
	// Verbatim marks builtin keywords, literal values, and optional
	// references whose target the export does not carry. They pass
	// through to the output unchanged and never produce an edge.
	Verbatim bool
}

// Object is one canonical definition. Aliased names (stubs, duplicates)
// all point at the same Object.
type Object struct {
	Category objects.Category
	// Name is the source name of the first-encountered representative.
	Name string
	// Scope names the chain the representative was first seen in.
	Scope string
	Node  *pantree.Node
	Refs  []Ref
	// Hash is the content hash used for duplicate detection. Identical
	// hashes within a category mean identical content, including the
	// content of everything referenced.
	Hash uint64
	// Seq is the first-encountered position, the tiebreaker for all
	// deterministic ordering downstream.
	Seq int
	// Broken is set when the object, or anything it requires, has an
	// unresolvable required reference. Broken objects are never emitted.
	Broken bool
}

// Key identifies the object across the pipeline. The sequence number
// keeps same-named definitions from different scopes distinct, so a
// device-group object that shadows a shared one never displaces it.
func (o *Object) Key() string {
	return fmt.Sprintf("%s/%s#%d", o.Category, o.Name, o.Seq)
}

// Set is the canonical object universe of one run.
type Set struct {
	// Objects in first-encountered order.
	Objects []*Object

	byNode  map[*pantree.Node]*Object
	byHash  map[objects.Category]map[uint64]*Object
	errs    []error
	errSeen map[string]bool
	seq     int
}

func newSet() *Set {
	return &Set{
		byNode:  make(map[*pantree.Node]*Object),
		byHash:  make(map[objects.Category]map[uint64]*Object),
		errSeen: make(map[string]bool),
	}
}

// ByCategory returns the canonical objects of one category in
// first-encountered order.
func (s *Set) ByCategory(cat objects.Category) []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if o.Category == cat {
			out = append(out, o)
		}
	}
	return out
}

// Err returns every resolution failure of the run as one joined error,
// or nil when all references resolved.
func (s *Set) Err() error {
	return errors.Join(s.errs...)
}

func (s *Set) recordErr(key string, err error) {
	if s.errSeen[key] {
		return
	}
	s.errSeen[key] = true
	s.errs = append(s.errs, err)
}

func (s *Set) register(o *Object) *Object {
	perCat := s.byHash[o.Category]
	if perCat == nil {
		perCat = make(map[uint64]*Object)
		s.byHash[o.Category] = perCat
	}
	if existing, ok := perCat[o.Hash]; ok {
		// Duplicate content: the first-encountered representative keeps
		// its name and metadata, the newcomer becomes an alias.
		s.byNode[o.Node] = existing
		return existing
	}
	perCat[o.Hash] = o
	o.Seq = s.seq
	s.seq++
	s.Objects = append(s.Objects, o)
	return o
}

func errUnresolved(chain, field, name string, cats []objects.Category) error {
	return fmt.Errorf("scope %s: field %s references %q, not defined as %s in any reachable scope",
		chain, field, name, catList(cats))
}

func catList(cats []objects.Category) string {
	out := ""
	for i, c := range cats {
		if i > 0 {
			out += " or "
		}
		out += string(c)
	}
	return out
}

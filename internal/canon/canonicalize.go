package canon

import (
	"context"
	"log/slog"

	"github.com/gswsys/panoform/internal/ctxlog"
	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/scope"
)

// Canonicalize walks every scope of the chain set in a fixed order
// (shared layers first, then each device group in document order) and
// builds the canonical object set. The returned error is the joined
// batch of resolution failures; the set is usable either way, with
// broken objects flagged.
func Canonicalize(ctx context.Context, cs *scope.ChainSet) (*Set, error) {
	c := &canonicalizer{set: newSet(), log: ctxlog.FromContext(ctx)}
	c.walkChain(cs.Shared, sharedRoots(cs.Shared))
	for _, chain := range cs.ByGroup {
		c.walkChain(chain, groupRoots(chain))
	}
	return c.set, c.set.Err()
}

// sharedRoots selects the tables whose entries the shared pass owns:
// the shared and device layers.
func sharedRoots(chain *scope.Chain) []*scope.Table {
	var out []*scope.Table
	for _, t := range chain.Tables {
		if t.Kind == scope.KindShared || t.Kind == scope.KindDevice {
			out = append(out, t)
		}
	}
	return out
}

// groupRoots selects the tables a device group's pass owns: its local
// layer plus its matched template layers. Ancestor groups canonicalize
// in their own pass, shared and device layers in the shared pass.
func groupRoots(chain *scope.Chain) []*scope.Table {
	var out []*scope.Table
	for _, t := range chain.Tables {
		switch t.Kind {
		case scope.KindDeviceGroup, scope.KindTemplate, scope.KindTemplateStack:
			out = append(out, t)
		}
	}
	return out
}

type canonicalizer struct {
	set *Set
	log *slog.Logger
}

func (c *canonicalizer) walkChain(chain *scope.Chain, roots []*scope.Table) {
	for i := range objects.Specs {
		spec := &objects.Specs[i]
		for _, t := range roots {
			for _, entry := range t.Entries(spec.Category) {
				c.canonicalize(chain, spec, entry)
			}
		}
	}
}

// canonicalize returns the canonical object for one entry, creating it
// on first sight. Stub entries canonicalize as their authored
// definition; a stub whose name never has an authored definition
// resolves to nothing and is reported.
func (c *canonicalizer) canonicalize(chain *scope.Chain, spec *objects.Spec, entry *pantree.Node) *Object {
	authored, err := chain.Normalize(spec.Category, entry)
	if err != nil {
		c.set.recordErr(chain.Name+"/"+string(spec.Category)+"/"+entry.Name, err)
		return nil
	}
	if o, ok := c.set.byNode[authored]; ok {
		if entry != authored {
			c.set.byNode[entry] = o
		}
		return o
	}

	o := &Object{
		Category: spec.Category,
		Name:     authored.Name,
		Scope:    chain.Name,
		Node:     authored,
	}
	// Registered before descending so reference cycles terminate; the
	// cycle itself surfaces later, from the dependency graph.
	c.set.byNode[authored] = o
	if entry != authored {
		c.set.byNode[entry] = o
	}

	o.Refs = c.resolveRefs(chain, spec, authored, o)
	o.Hash = hashObject(spec, o)
	canonical := c.set.register(o)
	if canonical != o && entry != authored {
		c.set.byNode[entry] = canonical
	}
	return canonical
}

func (c *canonicalizer) resolveRefs(chain *scope.Chain, spec *objects.Spec, n *pantree.Node, owner *Object) []Ref {
	var refs []Ref
	for i := range spec.Refs {
		rf := &spec.Refs[i]
		for _, raw := range refNames(n, rf) {
			refs = append(refs, c.resolveOne(chain, rf, raw, owner))
		}
	}
	return refs
}

func (c *canonicalizer) resolveOne(chain *scope.Chain, rf *objects.RefField, raw string, owner *Object) Ref {
	if objects.IsBuiltin(raw) || (targetsAddresses(rf) && objects.IsLiteralValue(raw)) {
		return Ref{Field: rf.Field, Raw: raw, Verbatim: true}
	}
	cat, node, err := chain.ResolveAny(rf.Targets, raw)
	if err != nil {
		if !rf.Required {
			c.log.Debug("optional reference not in export, passing through",
				"scope", chain.Name, "object", string(owner.Category)+"/"+owner.Name, "field", rf.Field, "name", raw)
			return Ref{Field: rf.Field, Raw: raw, Verbatim: true}
		}
		c.set.recordErr(chain.Name+"/"+raw, errUnresolved(chain.Name, rf.Field, raw, rf.Targets))
		owner.Broken = true
		return Ref{Field: rf.Field, Raw: raw}
	}
	target := c.canonicalize(chain, objects.SpecFor(cat), node)
	if target == nil {
		owner.Broken = true
		return Ref{Field: rf.Field, Raw: raw}
	}
	if target.Broken {
		// Brokenness is infectious: an object depending on a broken one
		// cannot be emitted either.
		owner.Broken = true
	}
	return Ref{Field: rf.Field, Raw: raw, Target: target}
}

// refNames extracts the referenced names of one field, in source order.
func refNames(n *pantree.Node, rf *objects.RefField) []string {
	switch rf.Kind {
	case objects.RefMembers:
		return n.Members(rf.Path...)
	case objects.RefText:
		if text := n.TextAt(rf.Path...); text != "" {
			return []string{text}
		}
		return nil
	case objects.RefEntryName:
		holder := n.Path(rf.Path...)
		if holder == nil {
			return nil
		}
		var out []string
		for _, e := range holder.Children {
			if e.Tag == "entry" && e.Name != "" {
				out = append(out, e.Name)
			}
		}
		return out
	}
	return nil
}

func targetsAddresses(rf *objects.RefField) bool {
	for _, t := range rf.Targets {
		if t == objects.Address {
			return true
		}
	}
	return false
}

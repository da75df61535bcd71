// Package synth plans the output: it names every canonical object,
// wires the dependency graph, and fixes the emission order so each
// resource appears after everything it references.
package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gswsys/panoform/internal/canon"
	"github.com/gswsys/panoform/internal/ctxlog"
	"github.com/gswsys/panoform/internal/depgraph"
	"github.com/gswsys/panoform/internal/names"
	"github.com/gswsys/panoform/internal/objects"
)

// Resource is one planned output resource.
type Resource struct {
	Object *canon.Object
	// ID is the unique generated-code identifier.
	ID string
	// Deps are the resources this one references, in reference order.
	Deps []*Resource
}

// Plan is the ordered output of a run.
type Plan struct {
	// Resources in emission order: dependencies before dependents, ties
	// broken by category priority and then first-encountered order.
	Resources []*Resource

	byKey map[string]*Resource
}

// ByCategory returns the planned resources of one category, keeping
// emission order.
func (p *Plan) ByCategory(cat objects.Category) []*Resource {
	var out []*Resource
	for _, r := range p.Resources {
		if r.Object.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the resource planned for a canonical object key.
func (p *Plan) Lookup(key string) (*Resource, bool) {
	r, ok := p.byKey[key]
	return r, ok
}

// Build turns a canonical set into an emission plan. Broken objects are
// excluded; their absence was already reported by the canonicalizer.
// The error is non-nil on dependency cycles or identifier exhaustion.
func Build(ctx context.Context, set *canon.Set) (*Plan, error) {
	log := ctxlog.FromContext(ctx)
	reg := names.NewRegistry()
	graph := depgraph.New()

	kept := make(map[string]*canon.Object)
	var errs []error
	for _, o := range set.Objects {
		if o.Broken {
			log.Warn("skipping object with unresolvable references",
				"category", string(o.Category), "name", o.Name, "scope", o.Scope)
			continue
		}
		if _, err := reg.Assign(o.Category, o.Key(), o.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		kept[o.Key()] = o
		graph.AddNode(o.Key())
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for _, o := range set.Objects {
		if _, ok := kept[o.Key()]; !ok {
			continue
		}
		for _, ref := range o.Refs {
			if ref.Target == nil || ref.Target.Broken {
				continue
			}
			if err := graph.AddEdge(o.Key(), ref.Target.Key()); err != nil {
				return nil, fmt.Errorf("%s: %w", o.Key(), err)
			}
		}
	}

	order, err := graph.Sort(func(a, b string) bool {
		oa, ob := kept[a], kept[b]
		if pa, pb := objects.Priority(oa.Category), objects.Priority(ob.Category); pa != pb {
			return pa < pb
		}
		return oa.Seq < ob.Seq
	})
	if err != nil {
		return nil, err
	}

	plan := &Plan{byKey: make(map[string]*Resource, len(order))}
	for _, key := range order {
		o := kept[key]
		id, _ := reg.Lookup(key)
		r := &Resource{Object: o, ID: id}
		plan.byKey[key] = r
		plan.Resources = append(plan.Resources, r)
	}
	for _, r := range plan.Resources {
		deps, _ := graph.Dependencies(r.Object.Key())
		for _, depKey := range deps {
			r.Deps = append(r.Deps, plan.byKey[depKey])
		}
	}
	log.Debug("emission plan built", "resources", len(plan.Resources))
	return plan, nil
}

package synth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gswsys/panoform/internal/canon"
	"github.com/gswsys/panoform/internal/depgraph"
	"github.com/gswsys/panoform/internal/objects"
)

func object(cat objects.Category, name string, seq int) *canon.Object {
	return &canon.Object{Category: cat, Name: name, Scope: "shared", Seq: seq}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("dependencies precede dependents", func(t *testing.T) {
		addr := object(objects.Address, "web", 1)
		grp := object(objects.AddressGroup, "servers", 2)
		grp.Refs = []canon.Ref{{Field: "static", Raw: "web", Target: addr}}

		// First-encountered order deliberately inverted.
		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{grp, addr}})
		require.NoError(t, err)

		require.Len(t, plan.Resources, 2)
		assert.Equal(t, "web", plan.Resources[0].Object.Name)
		assert.Equal(t, "servers", plan.Resources[1].Object.Name)
	})

	t.Run("category priority breaks ties", func(t *testing.T) {
		rule := object(objects.SecurityRule, "allow-web", 1)
		addr := object(objects.Address, "web", 2)
		tag := object(objects.Tag, "prod", 3)

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{rule, addr, tag}})
		require.NoError(t, err)

		var got []objects.Category
		for _, r := range plan.Resources {
			got = append(got, r.Object.Category)
		}
		assert.Equal(t, []objects.Category{objects.Tag, objects.Address, objects.SecurityRule}, got)
	})

	t.Run("sequence breaks ties within a category", func(t *testing.T) {
		b := object(objects.Address, "b", 7)
		a := object(objects.Address, "a", 3)

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{b, a}})
		require.NoError(t, err)

		assert.Equal(t, "a", plan.Resources[0].Object.Name)
		assert.Equal(t, "b", plan.Resources[1].Object.Name)
	})

	t.Run("broken objects are excluded", func(t *testing.T) {
		ok := object(objects.Address, "web", 1)
		broken := object(objects.SecurityRule, "allow-web", 2)
		broken.Broken = true

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{ok, broken}})
		require.NoError(t, err)

		require.Len(t, plan.Resources, 1)
		assert.Equal(t, "web", plan.Resources[0].Object.Name)
	})

	t.Run("references to broken objects drop the edge", func(t *testing.T) {
		broken := object(objects.Address, "bad", 1)
		broken.Broken = true
		grp := object(objects.AddressGroup, "servers", 2)
		grp.Refs = []canon.Ref{{Field: "static", Raw: "bad", Target: broken}}

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{broken, grp}})
		require.NoError(t, err)

		require.Len(t, plan.Resources, 1)
		assert.Empty(t, plan.Resources[0].Deps)
	})

	t.Run("verbatim references carry no edge", func(t *testing.T) {
		rule := object(objects.SecurityRule, "allow-any", 1)
		rule.Refs = []canon.Ref{{Field: "service", Raw: "any", Verbatim: true}}

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{rule}})
		require.NoError(t, err)

		require.Len(t, plan.Resources, 1)
		assert.Empty(t, plan.Resources[0].Deps)
	})

	t.Run("deps resolve to planned resources", func(t *testing.T) {
		addr := object(objects.Address, "web", 1)
		svc := object(objects.Service, "http", 2)
		rule := object(objects.SecurityRule, "allow-web", 3)
		rule.Refs = []canon.Ref{
			{Field: "destination", Raw: "web", Target: addr},
			{Field: "service", Raw: "http", Target: svc},
		}

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{addr, svc, rule}})
		require.NoError(t, err)

		r, ok := plan.Lookup(rule.Key())
		require.True(t, ok)
		require.Len(t, r.Deps, 2)
		assert.Equal(t, "web", r.Deps[0].Object.Name)
		assert.Equal(t, "http", r.Deps[1].Object.Name)
	})

	t.Run("identifiers are unique", func(t *testing.T) {
		a := object(objects.Address, "Web-Server", 1)
		b := object(objects.Address, "web server", 2)

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{a, b}})
		require.NoError(t, err)

		assert.Equal(t, "web_server", plan.Resources[0].ID)
		assert.Equal(t, "web_server_2", plan.Resources[1].ID)
	})

	t.Run("same name from different scopes keeps both resources", func(t *testing.T) {
		shared := object(objects.Address, "web", 1)
		local := object(objects.Address, "web", 2)
		local.Scope = "edge"

		plan, err := Build(ctx, &canon.Set{Objects: []*canon.Object{shared, local}})
		require.NoError(t, err)

		require.Len(t, plan.Resources, 2)
		assert.Equal(t, "web", plan.Resources[0].ID)
		assert.Equal(t, "web_2", plan.Resources[1].ID)
	})

	t.Run("cycle fails the build", func(t *testing.T) {
		a := object(objects.AddressGroup, "a", 1)
		b := object(objects.AddressGroup, "b", 2)
		a.Refs = []canon.Ref{{Field: "static", Raw: "b", Target: b}}
		b.Refs = []canon.Ref{{Field: "static", Raw: "a", Target: a}}

		_, err := Build(ctx, &canon.Set{Objects: []*canon.Object{a, b}})
		var cycle *depgraph.CycleError
		require.ErrorAs(t, err, &cycle)
	})
}

func TestPlanByCategory(t *testing.T) {
	addr := object(objects.Address, "web", 1)
	svc := object(objects.Service, "http", 2)

	plan, err := Build(context.Background(), &canon.Set{Objects: []*canon.Object{addr, svc}})
	require.NoError(t, err)

	addrs := plan.ByCategory(objects.Address)
	require.Len(t, addrs, 1)
	assert.Equal(t, "web", addrs[0].Object.Name)
	assert.Empty(t, plan.ByCategory(objects.NATRule))
}

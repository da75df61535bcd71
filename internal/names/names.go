// Package names maps source object names onto the generated-code
// identifier namespace: a deterministic sanitizer plus a registry that
// keeps sanitized names unique across all categories of a run.
package names

import (
	"fmt"
	"strings"

	"github.com/gswsys/panoform/internal/objects"
)

// prefixes supply the leading token when sanitization leaves a name
// empty or starting with a digit. Identifiers cannot start with either.
var prefixes = map[objects.Category]string{
	objects.Tag:                "tag",
	objects.Address:            "addr",
	objects.AddressGroup:       "grp",
	objects.Region:             "region",
	objects.ExternalList:       "edl",
	objects.CustomURLCategory:  "url",
	objects.Service:            "svc",
	objects.ServiceGroup:       "svcgrp",
	objects.ApplicationGroup:   "appgrp",
	objects.ApplicationFilter:  "appfltr",
	objects.Schedule:           "sched",
	objects.ProfileGroup:       "profgrp",
	objects.Interface:          "if",
	objects.Zone:               "zone",
	objects.VirtualRouter:      "vr",
	objects.LogicalRouter:      "lr",
	objects.IKECryptoProfile:   "ikecrypto",
	objects.IPsecCryptoProfile: "ipseccrypto",
	objects.IKEGateway:         "ikegw",
	objects.IPsecTunnel:        "tunnel",
	objects.SecurityRule:       "rule",
	objects.NATRule:            "nat",
	objects.DecryptionRule:     "decrypt",
	objects.PBFRule:            "pbf",
	objects.AppOverrideRule:    "appovr",
}

func prefixFor(cat objects.Category) string {
	if p, ok := prefixes[cat]; ok {
		return p
	}
	return "obj"
}

// Sanitize converts a source name into a generated-code identifier:
// lowercased, every run of characters outside [a-z0-9_] becomes a
// single underscore, leading and trailing underscores are trimmed, and
// a name that is empty or starts with a digit gains the category's
// prefix token. Pure function of its inputs.
func Sanitize(cat objects.Category, raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	prevUnderscore := false
	for _, r := range strings.ToLower(raw) {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}
	s := strings.Trim(b.String(), "_")
	if s == "" {
		return prefixFor(cat)
	}
	if s[0] >= '0' && s[0] <= '9' {
		return prefixFor(cat) + "_" + s
	}
	return s
}

// maxAttempts bounds the collision-suffix search. A run that exhausts it
// has thousands of same-named objects and is better treated as corrupt
// input than silently ground through.
const maxAttempts = 10000

// ExhaustionError reports a name whose collision suffixes ran out.
type ExhaustionError struct {
	Category objects.Category
	Raw      string
	Base     string
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("names: could not find a free identifier for %s %q after %d attempts (base %q)",
		e.Category, e.Raw, maxAttempts, e.Base)
}

// Registry assigns unique identifiers. Identity is the canonical object
// key, so asking again for the same object returns the same identifier
// rather than burning a new suffix.
type Registry struct {
	taken   map[string]string // identifier -> owner key
	byOwner map[string]string // owner key  -> identifier
}

func NewRegistry() *Registry {
	return &Registry{
		taken:   make(map[string]string),
		byOwner: make(map[string]string),
	}
}

// Assign returns the identifier for the object identified by key,
// sanitizing raw and suffixing _2, _3, ... on collision with a
// different owner.
func (r *Registry) Assign(cat objects.Category, key, raw string) (string, error) {
	if id, ok := r.byOwner[key]; ok {
		return id, nil
	}
	base := Sanitize(cat, raw)
	candidate := base
	for i := 2; ; i++ {
		owner, exists := r.taken[candidate]
		if !exists {
			r.taken[candidate] = key
			r.byOwner[key] = candidate
			return candidate, nil
		}
		if owner == key {
			r.byOwner[key] = candidate
			return candidate, nil
		}
		if i > maxAttempts {
			return "", &ExhaustionError{Category: cat, Raw: raw, Base: base}
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}

// Lookup returns the identifier previously assigned to key.
func (r *Registry) Lookup(key string) (string, bool) {
	id, ok := r.byOwner[key]
	return id, ok
}

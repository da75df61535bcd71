package objects

import (
	"net/netip"
	"strings"

	"github.com/gswsys/panoform/internal/pantree"
)

// IsStub reports whether an entry is a reference-only placeholder: it
// carries an <id> pointer and none of the category's content fields.
// Exports use such placeholders in a nearer scope purely to record
// membership of an inherited object.
func (s *Spec) IsStub(n *pantree.Node) bool {
	if len(s.ContentTags) == 0 {
		return false
	}
	if n.Child("id") == nil {
		return false
	}
	for _, tag := range s.ContentTags {
		if n.Child(tag) != nil {
			return false
		}
	}
	return true
}

// builtins are keywords of the rule grammar and vendor-predefined names
// that never correspond to a configured object.
var builtins = map[string]struct{}{
	"any":                 {},
	"application-default": {},
	"default":             {},
	"none":                {},
}

// IsBuiltin reports whether name is a grammar keyword or vendor default
// rather than a reference to a configured object.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// IsLiteralValue reports whether a member is an inline IP, prefix, or
// address range rather than an object name. Rules may embed such literals
// directly; they resolve to nothing and are emitted verbatim.
func IsLiteralValue(member string) bool {
	if _, err := netip.ParseAddr(member); err == nil {
		return true
	}
	if _, err := netip.ParsePrefix(member); err == nil {
		return true
	}
	if lo, hi, ok := strings.Cut(member, "-"); ok {
		_, loErr := netip.ParseAddr(lo)
		_, hiErr := netip.ParseAddr(hi)
		return loErr == nil && hiErr == nil
	}
	return false
}

package canon

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
)

// hashObject computes the content hash of an object. Two objects of the
// same category hash equal exactly when they describe the same thing:
// the same name with the same resolved content. The name is part of the
// identity because source references carry names; a renamed copy stays
// a separate object so that every referenced name keeps a definition in
// the output. Member lists compare order-independently, and reference
// fields contribute the hash of their resolved target rather than the
// written name.
func hashObject(spec *objects.Spec, o *Object) uint64 {
	h := xxhash.New()
	writeString(h, string(o.Category))
	writeString(h, "name:"+o.Name)
	hashContent(h, spec, o.Node, true)
	hashRefs(h, o.Refs)
	return h.Sum64()
}

// hashContent serializes a node structurally, skipping the subtrees that
// reference fields own (those are folded in via hashRefs). root skips
// the entry's own name, which hashObject folds in separately.
func hashContent(h *xxhash.Digest, spec *objects.Spec, n *pantree.Node, root bool) {
	skip := refPathSet(spec)
	var walk func(n *pantree.Node, path string, root bool)
	walk = func(n *pantree.Node, path string, root bool) {
		writeString(h, "<"+n.Tag)
		if !root && n.Name != "" {
			writeString(h, "@"+n.Name)
		}
		if n.Text != "" {
			writeString(h, "="+n.Text)
		}
		for _, k := range sortedKeys(n.Attrs) {
			writeString(h, ";"+k+"="+n.Attrs[k])
		}
		members, others := splitChildren(n)
		// Member order is presentation, not meaning.
		sort.Strings(members)
		for _, m := range members {
			writeString(h, "+"+m)
		}
		for _, c := range others {
			childPath := path + "/" + c.Tag
			if skip[childPath] {
				continue
			}
			walk(c, childPath, false)
		}
		writeString(h, ">")
	}
	walk(n, "", root)
}

func hashRefs(h *xxhash.Digest, refs []Ref) {
	// Group by field, then hash each field's targets order-independently.
	byField := make(map[string][]string)
	var fields []string
	for _, r := range refs {
		if _, ok := byField[r.Field]; !ok {
			fields = append(fields, r.Field)
		}
		byField[r.Field] = append(byField[r.Field], refFingerprint(r))
	}
	sort.Strings(fields)
	for _, f := range fields {
		prints := byField[f]
		sort.Strings(prints)
		writeString(h, "!"+f)
		for _, p := range prints {
			writeString(h, p)
		}
	}
}

func refFingerprint(r Ref) string {
	switch {
	case r.Verbatim:
		return "verbatim:" + r.Raw
	case r.Target == nil:
		return "missing:" + r.Raw
	case r.Target.Hash == 0:
		// Target still being hashed: a reference cycle. Fall back to the
		// canonical name so hashing stays deterministic; the cycle itself
		// is rejected later.
		return "cycle:" + string(r.Target.Category) + "/" + r.Target.Name
	default:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], r.Target.Hash)
		return "ref:" + string(buf[:])
	}
}

// refPathSet returns the child paths claimed by reference fields,
// rooted at the entry ("/source", "/profile-setting/group").
func refPathSet(spec *objects.Spec) map[string]bool {
	set := make(map[string]bool, len(spec.Refs))
	for _, rf := range spec.Refs {
		set["/"+strings.Join(rf.Path, "/")] = true
	}
	return set
}

func splitChildren(n *pantree.Node) (members []string, others []*pantree.Node) {
	for _, c := range n.Children {
		if c.Tag == "member" && len(c.Children) == 0 {
			members = append(members, c.Text)
			continue
		}
		others = append(others, c)
	}
	return members, others
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeString(h *xxhash.Digest, s string) {
	h.WriteString(s)
	h.Write([]byte{0})
}

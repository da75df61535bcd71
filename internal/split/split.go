// Package split partitions a management-server export into one
// self-contained sub-document per device group, each carrying
// everything a standalone conversion of that group needs: the group
// itself, the full shared layer, and the matching template material.
package split

import (
	"context"
	"fmt"
	"strings"

	"github.com/gswsys/panoform/internal/ctxlog"
	"github.com/gswsys/panoform/internal/pantree"
)

// Partition is one device group's extracted configuration.
type Partition struct {
	Group string
	// FileName is the group name made filesystem-safe.
	FileName string
	Tree     *pantree.Tree
}

// Result carries every partition in document order plus the warnings
// accumulated while matching templates.
type Result struct {
	Partitions []*Partition
	Warnings   []string
}

// ErrNoDeviceGroups reports an input without device groups, typically a
// single-firewall export rather than a management-server one.
type ErrNoDeviceGroups struct{}

func (ErrNoDeviceGroups) Error() string {
	return "no device groups found; this looks like a single firewall export, not a management-server export"
}

// Split builds one partition per device group.
func Split(ctx context.Context, tree *pantree.Tree) (*Result, error) {
	log := ctxlog.FromContext(ctx)
	groups := tree.DeviceGroups()
	if len(groups) == 0 {
		return nil, ErrNoDeviceGroups{}
	}

	res := &Result{}
	shared := mergeShared(tree.SharedSections())
	seen := make(map[string]bool)
	for _, dg := range groups {
		if seen[dg.Name] {
			continue
		}
		seen[dg.Name] = true
		p, warnings := extract(tree, dg, shared)
		res.Partitions = append(res.Partitions, p)
		res.Warnings = append(res.Warnings, warnings...)
		log.Debug("extracted device group", "group", dg.Name)
	}
	return res, nil
}

// extract assembles the self-contained config skeleton for one group:
// config/devices/entry[localhost.localdomain] holding the device-group,
// template, and template-stack, with the merged shared section at
// config level.
func extract(tree *pantree.Tree, dg *pantree.Node, shared *pantree.Node) (*Partition, []string) {
	var warnings []string

	version := "10.0.0"
	if v, ok := tree.Root.Attrs["version"]; ok {
		version = v
	}
	config := &pantree.Node{Tag: "config", Attrs: map[string]string{"version": version}}
	localhost := &pantree.Node{Tag: "entry", Name: "localhost.localdomain"}
	devices := &pantree.Node{Tag: "devices", Children: []*pantree.Node{localhost}}
	config.Children = append(config.Children, devices)

	dgContainer := &pantree.Node{Tag: "device-group", Children: []*pantree.Node{dg.Clone()}}
	localhost.Children = append(localhost.Children, dgContainer)

	if shared != nil {
		config.Children = append(config.Children, shared.Clone())
	}

	if tpl := matchTemplate(tree, dg.Name); tpl != nil {
		container := &pantree.Node{Tag: "template", Children: []*pantree.Node{tpl.Clone()}}
		localhost.Children = append(localhost.Children, container)
	} else if len(tree.Templates()) > 0 {
		warnings = append(warnings, fmt.Sprintf("no template matched device group %q", dg.Name))
	}

	for _, ts := range tree.TemplateStacks() {
		if stackNamesGroup(ts, dg.Name) {
			container := &pantree.Node{Tag: "template-stack", Children: []*pantree.Node{ts.Clone()}}
			localhost.Children = append(localhost.Children, container)
		}
	}

	return &Partition{
		Group:    dg.Name,
		FileName: safeFileName(dg.Name) + ".xml",
		Tree:     &pantree.Tree{Root: config},
	}, warnings
}

// mergeShared folds every shared section into one. Exports can carry
// several disjoint shared sections; dropping any of them silently loses
// objects that device groups reference, so all of them merge, section
// by section and entry by entry, first occurrence of a name winning.
func mergeShared(sections []*pantree.Node) *pantree.Node {
	if len(sections) == 0 {
		return nil
	}
	merged := &pantree.Node{Tag: "shared"}
	byTag := make(map[string]*pantree.Node)
	for _, shared := range sections {
		for _, child := range shared.Children {
			existing, ok := byTag[child.Tag]
			if !ok {
				cp := child.Clone()
				merged.Children = append(merged.Children, cp)
				byTag[child.Tag] = cp
				continue
			}
			mergeEntries(existing, child)
		}
	}
	return merged
}

// mergeEntries appends src's named entries into dst, skipping names dst
// already holds anywhere beneath it.
func mergeEntries(dst, src *pantree.Node) {
	existing := make(map[string]bool)
	collectEntryNames(dst, existing)
	for _, entry := range src.Descendants("entry") {
		if entry.Name == "" || existing[entry.Name] {
			continue
		}
		existing[entry.Name] = true
		dst.Children = append(dst.Children, entry.Clone())
	}
}

func collectEntryNames(n *pantree.Node, into map[string]bool) {
	for _, e := range n.Descendants("entry") {
		if e.Name != "" {
			into[e.Name] = true
		}
	}
}

// matchTemplate finds the template configuring a group's firewalls:
// exact name after stripping a DG- style prefix, then substring
// containment of the group name.
func matchTemplate(tree *pantree.Tree, group string) *pantree.Node {
	bare := strings.TrimPrefix(strings.TrimPrefix(group, "DG-"), "dg-")
	templates := tree.Templates()
	for _, tpl := range templates {
		if tpl.Name == bare || tpl.Name == group {
			return tpl
		}
	}
	lower := strings.ToLower(group)
	for _, tpl := range templates {
		if strings.Contains(strings.ToLower(tpl.Name), lower) {
			return tpl
		}
	}
	return nil
}

func stackNamesGroup(ts *pantree.Node, group string) bool {
	for _, dev := range ts.Entries("devices") {
		if dev.Name == group {
			return true
		}
	}
	return false
}

func safeFileName(name string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(name)
}

package scope

import (
	"fmt"
	"strings"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
)

// ChainSet holds the resolution chains built from one tree: a shared
// base chain plus one chain per device group, in document order.
type ChainSet struct {
	Shared   *Chain
	ByGroup  []*Chain
	Warnings []string

	byName map[string]*Chain
}

// Group returns the chain for a device group by name.
func (s *ChainSet) Group(name string) (*Chain, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// BuildChains indexes the tree's scopes and assembles a precedence chain
// for every device group, following the layer order local group, parent
// groups, matched template, template-stack templates, firewall devices,
// shared.
func BuildChains(tree *pantree.Tree) *ChainSet {
	b := &builder{tree: tree}
	return b.build()
}

type builder struct {
	tree     *pantree.Tree
	warnings []string

	sharedTables   []*Table
	deviceTables   []*Table
	templateTables map[string]*Table
	templateOrder  []string
	stacks         []*pantree.Node
	dgEntries      []*pantree.Node
	dgByName       map[string]*pantree.Node
	dgTables       map[string]*Table
}

func (b *builder) build() *ChainSet {
	b.indexShared()
	b.indexDevices()
	b.indexTemplates()
	b.indexGroups()

	set := &ChainSet{byName: make(map[string]*Chain)}
	set.Shared = &Chain{Name: "shared", Tables: b.sharedChainTables()}
	for _, dg := range b.dgEntries {
		c := b.groupChain(dg.Name)
		set.ByGroup = append(set.ByGroup, c)
		set.byName[c.Name] = c
	}
	set.Warnings = b.warnings
	return set
}

func (b *builder) sharedChainTables() []*Table {
	tables := make([]*Table, 0, len(b.deviceTables)+len(b.sharedTables))
	tables = append(tables, b.deviceTables...)
	tables = append(tables, b.sharedTables...)
	return tables
}

func (b *builder) groupChain(name string) *Chain {
	tables := []*Table{b.dgTables[name]}

	// Parent groups, nearest first. A reference loop in parent-dg
	// declarations terminates at the first revisit.
	seen := map[string]bool{name: true}
	for cur := b.dgByName[name]; cur != nil; {
		parent := cur.TextAt("parent-dg")
		if parent == "" || seen[parent] {
			break
		}
		seen[parent] = true
		if t, ok := b.dgTables[parent]; ok {
			pt := *t
			pt.Kind = KindAncestorGroup
			tables = append(tables, &pt)
		}
		cur = b.dgByName[parent]
	}

	if tpl := b.matchTemplate(name); tpl != "" {
		tables = append(tables, b.templateTables[tpl])
	}
	for _, tpl := range b.stackTemplates(name) {
		if t, ok := b.templateTables[tpl]; ok {
			st := *t
			st.Kind = KindTemplateStack
			tables = append(tables, &st)
		}
	}
	tables = append(tables, b.deviceTables...)
	tables = append(tables, b.sharedTables...)
	return &Chain{Name: name, Tables: tables}
}

// matchTemplate pairs a device group with the template that configures
// its firewalls. Naming conventions vary, so matching is best-effort:
// exact name after stripping a DG- style prefix, then substring
// containment, then none (with a warning).
func (b *builder) matchTemplate(group string) string {
	if len(b.templateOrder) == 0 {
		return ""
	}
	bare := strings.TrimPrefix(strings.TrimPrefix(group, "DG-"), "dg-")
	for _, name := range b.templateOrder {
		if name == bare || name == group {
			return name
		}
	}
	lower := strings.ToLower(group)
	for _, name := range b.templateOrder {
		if strings.Contains(strings.ToLower(name), lower) {
			return name
		}
	}
	b.warnf("no template matched device group %q; network-layer references resolve through shared only", group)
	return ""
}

// stackTemplates returns the member templates, in declared order, of
// every template-stack whose device list names the group.
func (b *builder) stackTemplates(group string) []string {
	var out []string
	for _, stack := range b.stacks {
		matched := false
		for _, dev := range stack.Entries("devices") {
			if dev.Name == group {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		out = append(out, stack.Members("templates")...)
	}
	return out
}

func (b *builder) indexShared() {
	for _, shared := range b.tree.SharedSections() {
		t := newTable(KindShared, "shared")
		indexScope(t, shared)
		b.sharedTables = append(b.sharedTables, t)
	}
	// Non-Panorama exports keep objects under vsys; fold those into the
	// shared layer so single-firewall configs resolve too.
	for _, dev := range b.tree.Devices() {
		for _, vsys := range dev.Entries("vsys") {
			t := newTable(KindShared, "vsys "+vsys.Name)
			indexScope(t, vsys)
			b.sharedTables = append(b.sharedTables, t)
		}
	}
}

func (b *builder) indexDevices() {
	for _, dev := range b.tree.Devices() {
		t := newTable(KindDevice, dev.Name)
		indexScope(t, dev)
		indexNetwork(t, dev)
		b.deviceTables = append(b.deviceTables, t)
	}
}

func (b *builder) indexTemplates() {
	b.templateTables = make(map[string]*Table)
	for _, tpl := range b.tree.Templates() {
		t := newTable(KindTemplate, tpl.Name)
		for _, dev := range templateDevices(tpl) {
			indexScope(t, dev)
			indexNetwork(t, dev)
			for _, vsys := range dev.Entries("vsys") {
				indexScope(t, vsys)
			}
		}
		b.templateTables[tpl.Name] = t
		b.templateOrder = append(b.templateOrder, tpl.Name)
	}
	b.stacks = b.tree.TemplateStacks()
}

// templateDevices returns the device entries carried inside a template
// definition.
func templateDevices(tpl *pantree.Node) []*pantree.Node {
	devices := tpl.Path("config", "devices")
	if devices == nil {
		return nil
	}
	var out []*pantree.Node
	for _, c := range devices.Children {
		if c.Tag == "entry" {
			out = append(out, c)
		}
	}
	return out
}

func (b *builder) indexGroups() {
	b.dgByName = make(map[string]*pantree.Node)
	b.dgTables = make(map[string]*Table)
	for _, dg := range b.tree.DeviceGroups() {
		b.dgEntries = append(b.dgEntries, dg)
		b.dgByName[dg.Name] = dg
		t := newTable(KindDeviceGroup, dg.Name)
		indexScope(t, dg)
		b.dgTables[dg.Name] = t
	}
}

// indexScope walks every category's entry paths under one scope node.
func indexScope(t *Table, scope *pantree.Node) {
	for i := range objects.Specs {
		spec := &objects.Specs[i]
		if spec.Category == objects.Interface {
			continue // handled by indexNetwork
		}
		for _, path := range spec.EntryPaths {
			t.add(spec.Category, collectEntries(scope, path)...)
		}
	}
}

// collectEntries resolves an entry path where a literal "entry" segment
// fans out across every entry child at that level.
func collectEntries(scope *pantree.Node, path []string) []*pantree.Node {
	nodes := []*pantree.Node{scope}
	for _, seg := range path {
		var next []*pantree.Node
		for _, n := range nodes {
			if seg == "entry" {
				for _, c := range n.Children {
					if c.Tag == "entry" {
						next = append(next, c)
					}
				}
				continue
			}
			for _, c := range n.Children {
				if c.Tag == seg {
					next = append(next, c)
				}
			}
		}
		nodes = next
		if len(nodes) == 0 {
			return nil
		}
	}
	var out []*pantree.Node
	for _, n := range nodes {
		for _, c := range n.Children {
			if c.Tag == "entry" {
				out = append(out, c)
			}
		}
	}
	return out
}

// indexNetwork flattens the interface hierarchy of one device scope into
// flat interface entries. Physical and aggregate interfaces index under
// their own names; their layer3 units index as subinterfaces; vlan,
// loopback and tunnel units gain the parent prefix when the export names
// them by bare unit number.
func indexNetwork(t *Table, dev *pantree.Node) {
	ifRoot := dev.Path("network", "interface")
	if ifRoot == nil {
		return
	}
	for _, kind := range []string{"ethernet", "aggregate-ethernet"} {
		for _, port := range ifRoot.Entries(kind) {
			t.add(objects.Interface, port)
			if l3 := port.Child("layer3"); l3 != nil {
				t.add(objects.Interface, l3.Entries("units")...)
			}
		}
	}
	for _, kind := range []string{"vlan", "loopback", "tunnel"} {
		parent := ifRoot.Child(kind)
		if parent == nil {
			continue
		}
		for _, unit := range parent.Entries("units") {
			t.add(objects.Interface, prefixUnit(kind, unit))
		}
	}
}

func prefixUnit(kind string, unit *pantree.Node) *pantree.Node {
	if strings.HasPrefix(unit.Name, kind+".") {
		return unit
	}
	named := unit.Clone()
	named.Name = fmt.Sprintf("%s.%s", kind, unit.Name)
	return named
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

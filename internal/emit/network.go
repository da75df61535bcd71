package emit

import (
	"strings"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/synth"
)

// zoneModes are the network child tags that select a zone's mode, in
// the order the platform prefers them.
var zoneModes = []string{"layer3", "layer2", "virtual-wire", "tap", "external", "tunnel"}

func renderZones(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.Zone)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Zone Configurations")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_zone", r.ID)
		setString(body, "name", r.Object.Name)
		mode := zoneMode(n)
		setString(body, "mode", mode)
		setList(body, "interfaces", n.Members("network", mode))
		setOptString(body, "zone_protection_profile", n.TextAt("network", "zone-protection-profile"))
	}
	return b.file("zones.tf")
}

func zoneMode(n *pantree.Node) string {
	network := n.Child("network")
	if network == nil {
		return "layer3"
	}
	for _, mode := range zoneModes {
		if network.Child(mode) != nil {
			return mode
		}
	}
	return "layer3"
}

func renderRouters(p *synth.Plan) (File, bool) {
	virtual := resourcesOf(p, objects.VirtualRouter)
	logical := resourcesOf(p, objects.LogicalRouter)
	if len(virtual)+len(logical) == 0 {
		return File{}, false
	}
	b := newBuilder("Router Configurations",
		"Supports both Virtual Routers (legacy) and Logical Routers (Advanced Routing Engine)")
	if len(logical) > 0 {
		b.comment("NOTE: Logical routers come from the Advanced Routing Engine (PAN-OS 10.2+).")
		b.comment("The provider may require panos_virtual_router for them; check provider docs.")
		b.body.AppendNewline()
	}
	for _, r := range virtual {
		renderRouter(b, r, false)
	}
	for _, r := range logical {
		renderRouter(b, r, true)
	}
	return b.file("virtual_routers.tf")
}

func renderRouter(b *builder, r *synth.Resource, logical bool) {
	n := r.Object.Node
	if logical {
		b.comment("Type: Logical Router (Advanced Routing Engine)")
	}
	body := b.resource("panos_virtual_router", r.ID)
	setString(body, "name", r.Object.Name)
	setList(body, "interfaces", n.Members("interface"))

	routes := n.Path("routing-table", "ip", "static-route")
	if routes == nil {
		return
	}
	for _, route := range routes.Children {
		if route.Tag != "entry" {
			continue
		}
		routeBody := b.resource("panos_static_route_ipv4", r.ID+"_"+sanitizeFragment(route.Name))
		setString(routeBody, "name", route.Name)
		setRef(routeBody, "virtual_router", "panos_virtual_router", r.ID)
		setOptString(routeBody, "destination", route.TextAt("destination"))
		if nextHop := route.TextAt("nexthop", "ip-address"); nextHop != "" {
			setString(routeBody, "next_hop", nextHop)
		} else {
			setOptString(routeBody, "interface", route.TextAt("interface"))
		}
		setOptNumber(routeBody, "metric", route.TextAt("metric"))
	}
}

func renderInterfaces(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.Interface)
	var physical []*synth.Resource
	for _, r := range rs {
		if interfaceKind(r.Object.Name) == "ethernet" && !strings.Contains(r.Object.Name, ".") {
			physical = append(physical, r)
		}
	}
	if len(physical) == 0 {
		return File{}, false
	}
	b := newBuilder("Ethernet Interface Configurations",
		"Note: These are reference configurations. Adjust for your hardware platform.")
	for _, r := range physical {
		n := r.Object.Node
		switch {
		case n.Child("layer3") != nil:
			body := b.resource("panos_ethernet_interface", r.ID)
			setString(body, "name", r.Object.Name)
			setString(body, "mode", "layer3")
			setOptString(body, "comment", n.TextAt("comment"))
			setList(body, "static_ips", entryNames(n.Path("layer3", "ip")))
			setOptString(body, "management_profile", n.TextAt("layer3", "interface-management-profile"))
		case n.Child("layer2") != nil:
			body := b.resource("panos_layer2_subinterface", r.ID)
			setString(body, "name", r.Object.Name)
			setOptString(body, "comment", n.TextAt("comment"))
		}
	}
	return b.file("interfaces.tf")
}

// interfaceKind classifies a flattened interface by its name.
func interfaceKind(name string) string {
	switch {
	case strings.HasPrefix(name, "ethernet"):
		return "ethernet"
	case strings.HasPrefix(name, "ae"):
		return "aggregate"
	case strings.HasPrefix(name, "vlan"):
		return "vlan"
	case strings.HasPrefix(name, "loopback"):
		return "loopback"
	case strings.HasPrefix(name, "tunnel"):
		return "tunnel"
	}
	return "other"
}

// entryNames returns the entry names under a node, e.g. the addresses
// of layer3/ip.
func entryNames(n *pantree.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, e := range n.Children {
		if e.Tag == "entry" && e.Name != "" {
			out = append(out, e.Name)
		}
	}
	return out
}

// sanitizeFragment lowers a name fragment into identifier characters,
// for composing child resource IDs from an already-unique parent ID.
func sanitizeFragment(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune('_')
	}
	return strings.Trim(sb.String(), "_")
}

// allRouters returns virtual then logical routers, keeping plan order
// within each family.
func allRouters(p *synth.Plan) []*synth.Resource {
	rs := resourcesOf(p, objects.VirtualRouter)
	return append(rs, resourcesOf(p, objects.LogicalRouter)...)
}

func renderBGP(p *synth.Plan) (File, bool) {
	var b *builder
	for _, r := range allRouters(p) {
		bgp := r.Object.Node.Path("protocol", "bgp")
		if bgp == nil || bgp.TextAt("enable") != "yes" {
			continue
		}
		if b == nil {
			b = newBuilder("BGP Configuration",
				"Note: BGP configuration requires careful validation.",
				"Verify all peer addresses and AS numbers before applying.")
		}
		body := b.resource("panos_bgp", r.ID)
		setRef(body, "virtual_router", "panos_virtual_router", r.ID)
		setBool(body, "enable", true)
		setOptString(body, "router_id", bgp.TextAt("router-id"))
		setOptString(body, "as_number", bgp.TextAt("local-as"))

		for _, pg := range bgp.Entries("peer-group") {
			pgBody := b.resource("panos_bgp_peer_group", r.ID+"_pg_"+sanitizeFragment(pg.Name))
			setRef(pgBody, "virtual_router", "panos_virtual_router", r.ID)
			setString(pgBody, "name", pg.Name)
			setDependsOn(pgBody, "panos_bgp", r.ID)

			for _, peer := range pg.Entries("peer") {
				peerBody := b.resource("panos_bgp_peer", r.ID+"_peer_"+sanitizeFragment(peer.Name))
				setRef(peerBody, "virtual_router", "panos_virtual_router", r.ID)
				setString(peerBody, "bgp_peer_group", pg.Name)
				setString(peerBody, "name", peer.Name)
				setBoolValue(peerBody, "enable", peer.TextAt("enable") == "yes")
				setOptString(peerBody, "peer_as", peer.TextAt("peer-as"))
				setOptString(peerBody, "local_address_interface", peer.TextAt("local-address", "interface"))
				setOptString(peerBody, "local_address_ip", peer.TextAt("local-address", "ip"))
				setOptString(peerBody, "peer_address_ip", peer.TextAt("peer-address", "ip"))
				setDependsOn(peerBody, "panos_bgp", r.ID)
			}
		}
	}
	if b == nil {
		return File{}, false
	}
	return b.file("bgp.tf")
}

func renderOSPF(p *synth.Plan) (File, bool) {
	var b *builder
	for _, r := range allRouters(p) {
		ospf := r.Object.Node.Path("protocol", "ospf")
		if ospf == nil || ospf.TextAt("enable") != "yes" {
			continue
		}
		if b == nil {
			b = newBuilder("OSPF Configuration",
				"Note: OSPF configuration requires careful validation.",
				"Verify all area configurations and interface assignments.")
		}
		body := b.resource("panos_ospf", r.ID)
		setRef(body, "virtual_router", "panos_virtual_router", r.ID)
		setBool(body, "enable", true)
		setOptString(body, "router_id", ospf.TextAt("router-id"))

		for _, area := range ospf.Entries("area") {
			areaBody := b.resource("panos_ospf_area", r.ID+"_area_"+sanitizeFragment(area.Name))
			setRef(areaBody, "virtual_router", "panos_virtual_router", r.ID)
			setString(areaBody, "name", area.Name)
			if typ := areaType(area); typ != "normal" {
				setString(areaBody, "type", typ)
			}
			setDependsOn(areaBody, "panos_ospf", r.ID)

			for _, iface := range area.Entries("interface") {
				ifBody := b.resource("panos_ospf_area_interface", r.ID+"_ospf_"+sanitizeFragment(iface.Name))
				setRef(ifBody, "virtual_router", "panos_virtual_router", r.ID)
				setString(ifBody, "ospf_area", area.Name)
				setString(ifBody, "name", iface.Name)
				setBoolValue(ifBody, "enable", iface.TextAt("enable") == "yes")
				setBool(ifBody, "passive", iface.TextAt("passive") == "yes")
				setOptNumber(ifBody, "metric", iface.TextAt("metric"))
				setDependsOn(ifBody, "panos_ospf", r.ID)
			}
		}
	}
	if b == nil {
		return File{}, false
	}
	return b.file("ospf.tf")
}

func areaType(area *pantree.Node) string {
	switch {
	case area.Path("type", "stub") != nil:
		return "stub"
	case area.Path("type", "nssa") != nil:
		return "nssa"
	}
	return "normal"
}

package emit

import (
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/synth"
)

// PSKPlaceholder stands in for pre-shared keys, which exports never
// carry. Every occurrence must be replaced before the plan is applied.
const PSKPlaceholder = "***CHANGE_ME***"

func renderVPN(p *synth.Plan) (File, bool) {
	ikeProfiles := resourcesOf(p, objects.IKECryptoProfile)
	ipsecProfiles := resourcesOf(p, objects.IPsecCryptoProfile)
	gateways := resourcesOf(p, objects.IKEGateway)
	tunnels := resourcesOf(p, objects.IPsecTunnel)
	if len(gateways)+len(tunnels) == 0 {
		return File{}, false
	}
	b := newBuilder("IPsec VPN Configuration",
		"IMPORTANT: Pre-shared keys are set to generic placeholders.",
		"You MUST update all pre-shared keys before applying!",
		"Search for \""+PSKPlaceholder+"\" and replace with actual keys.")

	if len(ikeProfiles) > 0 {
		b.comment("IKE Crypto Profiles")
		for _, r := range ikeProfiles {
			n := r.Object.Node
			body := b.resource("panos_ike_crypto_profile", r.ID)
			setString(body, "name", r.Object.Name)
			setList(body, "dh_groups", n.Members("dh-group"))
			setList(body, "authentications", n.Members("hash"))
			setList(body, "encryptions", n.Members("encryption"))
			setOptNumber(body, "lifetime_hours", n.TextAt("lifetime", "hours"))
		}
		b.body.AppendNewline()
	}

	if len(ipsecProfiles) > 0 {
		b.comment("IPsec Crypto Profiles")
		for _, r := range ipsecProfiles {
			n := r.Object.Node
			body := b.resource("panos_ipsec_crypto_profile", r.ID)
			setString(body, "name", r.Object.Name)
			proto := "esp"
			if n.Child("esp") == nil && n.Child("ah") != nil {
				proto = "ah"
			}
			setString(body, "protocol", proto)
			setList(body, "encryptions", n.Members(proto, "encryption"))
			setList(body, "authentications", n.Members(proto, "authentication"))
			setOptString(body, "dh_group", n.TextAt("dh-group"))
			setOptNumber(body, "lifetime_hours", n.TextAt("lifetime", "hours"))
		}
		b.body.AppendNewline()
	}

	if len(gateways) > 0 {
		b.comment("IKE Gateways")
		b.comment("WARNING: Pre-shared keys use placeholder \"" + PSKPlaceholder + "\"")
		b.comment("Update these with actual keys from your key management system!")
		for _, r := range gateways {
			renderIKEGateway(b, p, r)
		}
		b.body.AppendNewline()
	}

	if len(tunnels) > 0 {
		b.comment("IPsec Tunnels")
		for _, r := range tunnels {
			renderIPsecTunnel(b, p, r)
		}
	}
	return b.file("vpn.tf")
}

func renderIKEGateway(b *builder, p *synth.Plan, r *synth.Resource) {
	n := r.Object.Node
	body := b.resource("panos_ike_gateway", r.ID)
	setString(body, "name", r.Object.Name)

	version := "ikev1"
	if n.Path("protocol", "ikev2") != nil && n.Path("protocol", "ikev1") == nil {
		version = "ikev2"
	}
	if v := n.TextAt("protocol", "version"); v != "" {
		version = v
	}
	setString(body, "version", version)

	if peer := n.TextAt("peer-address", "ip"); peer != "" {
		setString(body, "peer_address_type", "ip")
		setString(body, "peer_address_value", peer)
	} else if peer := n.TextAt("peer-address", "fqdn"); peer != "" {
		setString(body, "peer_address_type", "fqdn")
		setString(body, "peer_address_value", peer)
	}

	if iface := n.TextAt("local-address", "interface"); iface != "" {
		setString(body, "interface", iface)
	} else if local := n.TextAt("local-address", "ip"); local != "" {
		setString(body, "local_address_value", local)
	}

	setString(body, "auth_type", "pre-shared-key")
	// The export never includes key material.
	setString(body, "pre_shared_key", PSKPlaceholder)

	if dep, ok := depResource(p, r, "ike_crypto_profile"); ok {
		setRef(body, "ike_crypto_profile", "panos_ike_crypto_profile", dep.ID)
	}

	setIdentity(body, n, "local-id", "local_id")
	setIdentity(body, n, "peer-id", "peer_id")
}

func setIdentity(body *hclwrite.Body, n *pantree.Node, tag, attr string) {
	id := n.Child(tag)
	if id == nil {
		return
	}
	if idType := id.TextAt("type"); idType != "" {
		setString(body, attr+"_type", idType)
	} else {
		setString(body, attr+"_type", "ufqdn")
	}
	setOptString(body, attr+"_value", id.TextAt("id"))
}

func renderIPsecTunnel(b *builder, p *synth.Plan, r *synth.Resource) {
	n := r.Object.Node
	body := b.resource("panos_ipsec_tunnel", r.ID)
	setString(body, "name", r.Object.Name)
	setOptString(body, "tunnel_interface", n.TextAt("tunnel-interface"))

	autoKey := n.Child("auto-key")
	if autoKey != nil {
		setString(body, "type", "auto-key")
		if dep, ok := depResource(p, r, "ike_gateway"); ok {
			setRef(body, "ak_ike_gateway", "panos_ike_gateway", dep.ID)
		}
		if dep, ok := depResource(p, r, "ipsec_crypto_profile"); ok {
			setRef(body, "ak_ipsec_crypto_profile", "panos_ipsec_crypto_profile", dep.ID)
		}
	}

	if autoKey == nil {
		return
	}
	for _, proxy := range autoKey.Entries("proxy-id") {
		proxyBody := b.resource("panos_ipsec_tunnel_proxy_id_ipv4", r.ID+"_"+sanitizeFragment(proxy.Name))
		setRef(proxyBody, "ipsec_tunnel", "panos_ipsec_tunnel", r.ID)
		setString(proxyBody, "name", proxy.Name)
		setOptString(proxyBody, "local", proxy.TextAt("local"))
		setOptString(proxyBody, "remote", proxy.TextAt("remote"))
	}
}

package emit

import (
	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/synth"
)

func renderSecurityRules(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.SecurityRule)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Security Policy Rules")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_security_rule_group", r.ID)
		setString(body, "position_keyword", "bottom")
		rule := body.AppendNewBlock("rule", nil).Body()
		setString(rule, "name", r.Object.Name)
		setOptString(rule, "description", n.TextAt("description"))
		setList(rule, "source_zones", n.Members("from"))
		setList(rule, "source_addresses", n.Members("source"))
		setList(rule, "destination_zones", n.Members("to"))
		setList(rule, "destination_addresses", n.Members("destination"))
		setList(rule, "applications", n.Members("application"))
		setList(rule, "services", n.Members("service"))
		action := n.TextAt("action")
		if action == "" {
			action = "allow"
		}
		setString(rule, "action", action)
		setBool(rule, "log_start", n.TextAt("log-start") == "yes")
		setBool(rule, "log_end", n.TextAt("log-end") == "yes")
		setBool(rule, "disabled", n.TextAt("disabled") == "yes")
	}
	return b.file("security_rules.tf")
}

func renderNATRules(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.NATRule)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("NAT Policy Rules")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_nat_rule_group", r.ID)
		setString(body, "position_keyword", "bottom")
		rule := body.AppendNewBlock("rule", nil).Body()
		setString(rule, "name", r.Object.Name)
		setOptString(rule, "description", n.TextAt("description"))

		original := rule.AppendNewBlock("original_packet", nil).Body()
		setList(original, "source_zones", n.Members("from"))
		setOptString(original, "destination_zone", firstMember(n, "to"))
		setList(original, "source_addresses", n.Members("source"))
		setList(original, "destination_addresses", n.Members("destination"))
		setOptString(original, "service", n.TextAt("service"))

		if st := n.Child("source-translation"); st != nil && len(st.Children) > 0 {
			kind := st.Children[0]
			trans := rule.AppendNewBlock("source_translation", nil).Body()
			setString(trans, "type", kind.Tag)
			setList(trans, "translated_addresses", kind.Members("translated-address"))
		}
		if dt := n.Child("destination-translation"); dt != nil {
			trans := rule.AppendNewBlock("destination_translation", nil).Body()
			setOptString(trans, "translated_address", dt.TextAt("translated-address"))
			setOptString(trans, "translated_port", dt.TextAt("translated-port"))
		}
		setBool(rule, "disabled", n.TextAt("disabled") == "yes")
	}
	return b.file("nat_rules.tf")
}

// renderDecryptionRules documents decryption rules for manual work: the
// SSL/TLS settings do not map cleanly onto provider resources.
func renderDecryptionRules(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.DecryptionRule)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Decryption Rules",
		"Note: Decryption rules require detailed SSL/TLS configuration",
		"Manual Terraform configuration is required")
	for _, r := range rs {
		n := r.Object.Node
		b.comment("Rule: " + r.Object.Name)
		if t := n.TextAt("type"); t != "" {
			b.comment("  Type: " + t)
		}
		if a := n.TextAt("action"); a != "" {
			b.comment("  Action: " + a)
		}
		if d := n.TextAt("description"); d != "" {
			b.comment("  Description: " + d)
		}
		b.body.AppendNewline()
	}
	return b.file("decryption_rules.tf")
}

func renderPBFRules(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.PBFRule)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Policy-Based Forwarding Rules",
		"Note: PBF rules require careful configuration with virtual routers",
		"Manual Terraform configuration is required")
	for _, r := range rs {
		n := r.Object.Node
		b.comment("Rule: " + r.Object.Name)
		if fwd := n.Path("action", "forward"); fwd != nil {
			b.comment("  Action: Forward to " + fwd.TextAt("nexthop", "ip-address") +
				" via " + fwd.TextAt("egress-interface"))
		}
		if d := n.TextAt("description"); d != "" {
			b.comment("  Description: " + d)
		}
		b.body.AppendNewline()
	}
	return b.file("pbf_rules.tf")
}

func renderAppOverrideRules(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.AppOverrideRule)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Application Override Rules",
		"Note: Application override rules require manual configuration")
	for _, r := range rs {
		n := r.Object.Node
		b.comment("Rule: " + r.Object.Name)
		if proto := n.TextAt("protocol"); proto != "" {
			b.comment("  Protocol: " + proto)
		}
		if app := n.TextAt("application"); app != "" {
			b.comment("  Application: " + app)
		}
		b.body.AppendNewline()
	}
	return b.file("application_override_rules.tf")
}

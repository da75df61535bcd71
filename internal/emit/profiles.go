package emit

import (
	"strings"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/synth"
)

// The profile families below have no faithful resource mapping in the
// provider; each renders as a documented placeholder file so nothing
// the source carries goes missing from the output.

func renderZoneProtectionProfiles(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.ZoneProtectionProfile)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Zone Protection Profiles",
		"Note: Zone protection profiles require detailed configuration",
		"Manual Terraform configuration is required")
	for _, r := range rs {
		b.comment("Profile: " + r.Object.Name)
		if desc := r.Object.Node.TextAt("description"); desc != "" {
			b.comment("Description: " + desc)
		}
		b.body.AppendNewline()
	}
	return b.file("zone_protection_profiles.tf")
}

func renderLogForwardingProfiles(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.LogForwardingProfile)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Log Forwarding Profiles",
		"Note: Log forwarding profiles require syslog/email configuration",
		"Manual Terraform configuration is required")
	for _, r := range rs {
		b.comment("Profile: " + r.Object.Name)
		if desc := r.Object.Node.TextAt("description"); desc != "" {
			b.comment("Description: " + desc)
		}
		b.body.AppendNewline()
	}
	return b.file("log_settings.tf")
}

func renderQoSProfiles(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.QoSProfile)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("QoS Profiles",
		"Note: QoS profiles require bandwidth and class configuration",
		"Manual Terraform configuration is required")
	for _, r := range rs {
		b.comment("Profile: " + r.Object.Name)
		var classes []string
		for _, cls := range r.Object.Node.Entries("class") {
			classes = append(classes, cls.Name)
		}
		if len(classes) > 0 {
			b.comment("Classes: " + strings.Join(classes, ", "))
		}
		b.body.AppendNewline()
	}
	return b.file("qos_profiles.tf")
}

func renderTunnelMonitorProfiles(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.TunnelMonitorProfile)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Tunnel Monitor Profiles",
		"Note: Tunnel monitor profiles require destination IP configuration",
		"Manual Terraform configuration is required")
	for _, r := range rs {
		n := r.Object.Node
		b.comment("Profile: " + r.Object.Name)
		b.comment("Interval: " + textOr(n.TextAt("interval"), "unknown"))
		b.comment("Threshold: " + textOr(n.TextAt("threshold"), "unknown"))
		b.comment("Action: " + textOr(n.TextAt("action"), "unknown"))
		b.body.AppendNewline()
	}
	return b.file("tunnel_monitor_profiles.tf")
}

func textOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

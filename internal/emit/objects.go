package emit

import (
	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/synth"
)

func renderTags(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.Tag)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Tags")
	for _, r := range rs {
		body := b.resource("panos_administrative_tag", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "color", r.Object.Node.TextAt("color"))
		setOptString(body, "comment", r.Object.Node.TextAt("comments"))
	}
	return b.file("tags.tf")
}

func renderAddresses(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.Address)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Address Objects")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_address_object", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "description", n.TextAt("description"))
		switch {
		case n.Child("ip-netmask") != nil:
			setString(body, "value", n.TextAt("ip-netmask"))
		case n.Child("ip-range") != nil:
			setString(body, "type", "ip-range")
			setString(body, "value", n.TextAt("ip-range"))
		case n.Child("fqdn") != nil:
			setString(body, "type", "fqdn")
			setString(body, "value", n.TextAt("fqdn"))
		}
		setList(body, "tags", n.Members("tag"))
	}
	return b.file("address_objects.tf")
}

func renderAddressGroups(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.AddressGroup)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Address Groups")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_address_group", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "description", n.TextAt("description"))
		setList(body, "static_value", n.Members("static"))
		setOptString(body, "dynamic_value", n.TextAt("dynamic", "filter"))
	}
	return b.file("address_groups.tf")
}

func renderServices(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.Service)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Service Objects")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_service_object", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "description", n.TextAt("description"))
		proto, port, sourcePort := serviceProtocol(n)
		setString(body, "protocol", proto)
		setOptString(body, "destination_port", port)
		setOptString(body, "source_port", sourcePort)
	}
	return b.file("service_objects.tf")
}

// serviceProtocol reads the protocol family (tcp, udp, sctp) and its
// ports from a service entry.
func serviceProtocol(n *pantree.Node) (proto, port, sourcePort string) {
	protoNode := n.Child("protocol")
	if protoNode == nil {
		return "tcp", "", ""
	}
	for _, c := range protoNode.Children {
		return c.Tag, c.TextAt("port"), c.TextAt("source-port")
	}
	return "tcp", "", ""
}

func renderServiceGroups(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.ServiceGroup)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Service Groups")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_service_group", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "description", n.TextAt("description"))
		setList(body, "services", n.Members("members"))
	}
	return b.file("service_groups.tf")
}

func renderURLCategories(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.CustomURLCategory)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Custom URL Categories")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_custom_url_category", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "description", n.TextAt("description"))
		setList(body, "sites", n.Members("list"))
	}
	return b.file("custom_url_categories.tf")
}

func renderApplicationGroups(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.ApplicationGroup)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Application Groups")
	for _, r := range rs {
		body := b.resource("panos_application_group", r.ID)
		setString(body, "name", r.Object.Name)
		setList(body, "applications", r.Object.Node.Members("members"))
	}
	return b.file("application_groups.tf")
}

func renderApplicationFilters(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.ApplicationFilter)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Application Filters",
		"Note: Application filters may require manual configuration of all attributes")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_application_filter", r.ID)
		setString(body, "name", r.Object.Name)
		setList(body, "category", n.Members("category"))
		setList(body, "subcategory", n.Members("subcategory"))
		setList(body, "technology", n.Members("technology"))
		setList(body, "risk", n.Members("risk"))
		setBool(body, "evasive", n.TextAt("evasive") == "yes")
	}
	return b.file("application_filters.tf")
}

func renderExternalLists(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.ExternalList)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("External Dynamic Lists")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_external_list", r.ID)
		setString(body, "name", r.Object.Name)
		if typeNode := n.Child("type"); typeNode != nil && len(typeNode.Children) > 0 {
			kind := typeNode.Children[0]
			setString(body, "type", kind.Tag)
			setOptString(body, "url", kind.TextAt("url"))
			if rec := kind.Child("recurring"); rec != nil && len(rec.Children) > 0 {
				setString(body, "recurring", rec.Children[0].Tag)
			}
		}
		setOptString(body, "description", n.TextAt("description"))
	}
	return b.file("external_lists.tf")
}

// renderSchedules documents schedules instead of generating resources:
// recurring calendars do not round-trip safely without review.
func renderSchedules(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.Schedule)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Schedules",
		"Note: Schedules require detailed recurring/non-recurring configuration",
		"Manual configuration may be needed for complex schedules")
	for _, r := range rs {
		b.comment("Schedule: " + r.Object.Name)
		b.comment("Manual Terraform configuration required")
		b.body.AppendNewline()
	}
	return b.file("schedules.tf")
}

var profileFamilies = []struct {
	cat      objects.Category
	heading  string
	resource string
}{
	{objects.AntivirusProfile, "Antivirus Profiles", "panos_antivirus_security_profile"},
	{objects.AntiSpywareProfile, "Anti-Spyware Profiles", "panos_anti_spyware_security_profile"},
	{objects.VulnerabilityProfile, "Vulnerability Protection Profiles", "panos_vulnerability_security_profile"},
	{objects.URLFilteringProfile, "URL Filtering Profiles", "panos_url_filtering_security_profile"},
	{objects.FileBlockingProfile, "File Blocking Profiles", "panos_file_blocking_security_profile"},
	{objects.WildfireProfile, "WildFire Analysis Profiles", "panos_wildfire_analysis_security_profile"},
}

// renderSecurityProfiles documents the profiles for manual import.
// Profile rule bodies are too detailed to synthesize faithfully.
func renderSecurityProfiles(p *synth.Plan) (File, bool) {
	total := 0
	for _, fam := range profileFamilies {
		total += len(resourcesOf(p, fam.cat))
	}
	if total == 0 {
		return File{}, false
	}
	b := newBuilder("Security Profiles",
		"Note: These are simplified profile references.",
		"Detailed profile rules must be configured manually or imported.")
	for _, fam := range profileFamilies {
		rs := resourcesOf(p, fam.cat)
		if len(rs) == 0 {
			continue
		}
		b.comment(fam.heading)
		for _, r := range rs {
			b.comment("Profile: " + r.Object.Name)
			if desc := r.Object.Node.TextAt("description"); desc != "" {
				b.comment("Description: " + desc)
			}
			b.comment("Resource: " + fam.resource + "." + r.ID)
			b.body.AppendNewline()
		}
	}
	return b.file("security_profiles.tf")
}

func renderProfileGroups(p *synth.Plan) (File, bool) {
	rs := resourcesOf(p, objects.ProfileGroup)
	if len(rs) == 0 {
		return File{}, false
	}
	b := newBuilder("Security Profile Groups")
	for _, r := range rs {
		n := r.Object.Node
		body := b.resource("panos_security_profile_group", r.ID)
		setString(body, "name", r.Object.Name)
		setOptString(body, "virus", firstMember(n, "virus"))
		setOptString(body, "spyware", firstMember(n, "spyware"))
		setOptString(body, "vulnerability", firstMember(n, "vulnerability"))
		setOptString(body, "url_filtering", firstMember(n, "url-filtering"))
		setOptString(body, "file_blocking", firstMember(n, "file-blocking"))
		setOptString(body, "wildfire_analysis", firstMember(n, "wildfire-analysis"))
	}
	return b.file("security_profile_groups.tf")
}

func firstMember(n *pantree.Node, tags ...string) string {
	members := n.Members(tags...)
	if len(members) == 0 {
		return ""
	}
	return members[0]
}

// Package objects holds the static knowledge about every object category
// of the source format: where a category's entries live inside a scope,
// what distinguishes an authored entry from a reference-only stub, and
// which fields of an entry name other objects.
package objects

// Category identifies one object type of the source configuration.
type Category string

const (
	Tag                   Category = "tag"
	Address               Category = "address"
	AddressGroup          Category = "address-group"
	Region                Category = "region"
	ExternalList          Category = "external-list"
	CustomURLCategory     Category = "custom-url-category"
	Service               Category = "service"
	ServiceGroup          Category = "service-group"
	ApplicationGroup      Category = "application-group"
	ApplicationFilter     Category = "application-filter"
	Schedule              Category = "schedule"
	AntivirusProfile      Category = "virus-profile"
	AntiSpywareProfile    Category = "spyware-profile"
	VulnerabilityProfile  Category = "vulnerability-profile"
	URLFilteringProfile   Category = "url-filtering-profile"
	FileBlockingProfile   Category = "file-blocking-profile"
	WildfireProfile       Category = "wildfire-analysis-profile"
	ProfileGroup          Category = "profile-group"
	LogForwardingProfile  Category = "log-forwarding-profile"
	ZoneProtectionProfile Category = "zone-protection-profile"
	QoSProfile            Category = "qos-profile"
	Interface             Category = "interface"
	Zone                  Category = "zone"
	VirtualRouter         Category = "virtual-router"
	LogicalRouter         Category = "logical-router"
	IKECryptoProfile      Category = "ike-crypto-profile"
	IPsecCryptoProfile    Category = "ipsec-crypto-profile"
	IKEGateway            Category = "ike-gateway"
	IPsecTunnel           Category = "ipsec-tunnel"
	TunnelMonitorProfile  Category = "tunnel-monitor-profile"
	SecurityRule          Category = "security-rule"
	NATRule               Category = "nat-rule"
	DecryptionRule        Category = "decryption-rule"
	PBFRule               Category = "pbf-rule"
	AppOverrideRule       Category = "application-override-rule"
)

// RefKind says how a reference field stores its target names.
type RefKind int

const (
	// RefMembers: a list of <member> elements under Path.
	RefMembers RefKind = iota
	// RefText: a single leaf element whose text is the target name.
	RefText
	// RefEntryName: <entry name="..."> children under Path.
	RefEntryName
)

// RefField describes one field of a category that names other objects.
type RefField struct {
	// Field is a short label used in diagnostics.
	Field string
	Path  []string
	Kind  RefKind
	// Targets are the candidate categories a name may resolve to, tried
	// in order.
	Targets []Category
	// Required marks fields whose targets must exist in the scope chain.
	// Optional fields (zones, predefined applications, vendor default
	// profiles) produce an edge when the target resolves and are emitted
	// verbatim when it does not.
	Required bool
}

// Spec is the per-category schema consulted by the resolver, the
// deduplicator and the synthesizer.
type Spec struct {
	Category Category

	// EntryPaths locate the category's entry lists relative to a scope
	// node. A literal "entry" segment fans out over all named entries at
	// that level (used for vsys and devices containers).
	EntryPaths [][]string

	// ContentTags mark an authored definition: an entry carrying none of
	// them (typically holding only an <id>) is a reference-only stub.
	// Empty means the category has no stub form.
	ContentTags []string

	// Refs are the fields of an entry that name other objects.
	Refs []RefField

	// Priority seeds the emission order: lower emits earlier. Categories
	// nothing depends on (rules) carry the highest values.
	Priority int
}

// Specs lists every category in the stable traversal order used by the
// deduplicator. Order matters: it fixes the first-encountered
// representative and therefore the surviving metadata.
var Specs = []Spec{
	{
		Category:   Tag,
		EntryPaths: [][]string{{"tag"}},
		Priority:   10,
	},
	{
		Category:    Address,
		EntryPaths:  [][]string{{"address"}},
		ContentTags: []string{"ip-netmask", "ip-range", "fqdn", "description"},
		Refs:        []RefField{
			{Field: "tags", Path: []string{"tag"}, Kind: RefMembers, Targets: []Category{Tag}},
		},
		Priority: 20,
	},
	{
		Category:   Region,
		EntryPaths: [][]string{{"region"}},
		Priority:   20,
	},
	{
		Category:    ExternalList,
		EntryPaths:  [][]string{{"external-list"}},
		ContentTags: []string{"type", "description"},
		Priority:    20,
	},
	{
		Category:   CustomURLCategory,
		EntryPaths: [][]string{{"custom-url-category"}},
		Priority:   20,
	},
	{
		Category:    Service,
		EntryPaths:  [][]string{{"service"}},
		ContentTags: []string{"protocol", "description"},
		Refs:        []RefField{
			{Field: "tags", Path: []string{"tag"}, Kind: RefMembers, Targets: []Category{Tag}},
		},
		Priority: 20,
	},
	{
		Category:   ApplicationFilter,
		EntryPaths: [][]string{{"application-filter"}},
		Priority:   25,
	},
	{
		Category:   ApplicationGroup,
		EntryPaths: [][]string{{"application-group"}},
		Refs:       []RefField{
			// Members are usually predefined applications, which the
			// export does not carry; only nested groups and filters
			// resolve.
			{Field: "members", Path: []string{"members"}, Kind: RefMembers,
				Targets: []Category{ApplicationGroup, ApplicationFilter}},
		},
		Priority: 25,
	},
	{
		Category:   Schedule,
		EntryPaths: [][]string{{"schedule"}},
		Priority:   25,
	},
	{
		Category:    AddressGroup,
		EntryPaths:  [][]string{{"address-group"}},
		ContentTags: []string{"static", "dynamic", "description"},
		Refs:        []RefField{
			{Field: "static", Path: []string{"static"}, Kind: RefMembers,
				Targets: []Category{Address, AddressGroup, ExternalList, Region}, Required: true},
			{Field: "tags", Path: []string{"tag"}, Kind: RefMembers, Targets: []Category{Tag}},
		},
		Priority: 30,
	},
	{
		Category:    ServiceGroup,
		EntryPaths:  [][]string{{"service-group"}},
		ContentTags: []string{"members", "description"},
		Refs:        []RefField{
			{Field: "members", Path: []string{"members"}, Kind: RefMembers,
				Targets: []Category{Service, ServiceGroup}, Required: true},
		},
		Priority: 30,
	},
	{
		Category:   AntivirusProfile,
		EntryPaths: [][]string{{"profiles", "virus"}},
		Priority:   30,
	},
	{
		Category:   AntiSpywareProfile,
		EntryPaths: [][]string{{"profiles", "spyware"}},
		Priority:   30,
	},
	{
		Category:   VulnerabilityProfile,
		EntryPaths: [][]string{{"profiles", "vulnerability"}},
		Priority:   30,
	},
	{
		Category:   URLFilteringProfile,
		EntryPaths: [][]string{{"profiles", "url-filtering"}},
		Priority:   30,
	},
	{
		Category:   FileBlockingProfile,
		EntryPaths: [][]string{{"profiles", "file-blocking"}},
		Priority:   30,
	},
	{
		Category:   WildfireProfile,
		EntryPaths: [][]string{{"profiles", "wildfire-analysis"}},
		Priority:   30,
	},
	{
		Category:   LogForwardingProfile,
		EntryPaths: [][]string{{"log-settings", "profiles"}},
		Priority:   30,
	},
	{
		Category:   ZoneProtectionProfile,
		EntryPaths: [][]string{{"zone-protection-profile"}, {"network", "profiles", "zone-protection-profile"}},
		Priority:   30,
	},
	{
		Category:   QoSProfile,
		EntryPaths: [][]string{{"qos", "profile"}, {"network", "qos", "profile"}},
		Priority:   30,
	},
	{
		Category:   TunnelMonitorProfile,
		EntryPaths: [][]string{{"network", "tunnel-monitor", "monitor-profile"}},
		Priority:   30,
	},
	{
		Category: Interface,
		// Populated by the scope builder, which flattens ethernet,
		// aggregate, and unit interfaces into one namespace.
		EntryPaths: nil,
		Priority:   20,
	},
	{
		Category:   Zone,
		EntryPaths: [][]string{{"zone"}, {"vsys", "entry", "zone"}},
		Refs:       []RefField{
			{Field: "interfaces", Path: []string{"network", "layer3"}, Kind: RefMembers, Targets: []Category{Interface}},
			{Field: "zone_protection_profile", Path: []string{"network", "zone-protection-profile"}, Kind: RefText,
				Targets: []Category{ZoneProtectionProfile}},
		},
		Priority: 35,
	},
	{
		Category:   VirtualRouter,
		EntryPaths: [][]string{{"network", "virtual-router"}},
		Refs:       []RefField{
			{Field: "interfaces", Path: []string{"interface"}, Kind: RefMembers, Targets: []Category{Interface}},
		},
		Priority: 40,
	},
	{
		Category:   LogicalRouter,
		EntryPaths: [][]string{{"network", "logical-router"}},
		Refs:       []RefField{
			{Field: "interfaces", Path: []string{"interface"}, Kind: RefMembers, Targets: []Category{Interface}},
		},
		Priority: 40,
	},
	{
		Category:   IKECryptoProfile,
		EntryPaths: [][]string{{"network", "ike", "crypto-profiles", "ike-crypto-profiles"}},
		Priority:   20,
	},
	{
		Category:   IPsecCryptoProfile,
		EntryPaths: [][]string{{"network", "ike", "crypto-profiles", "ipsec-crypto-profiles"}},
		Priority:   20,
	},
	{
		Category:   IKEGateway,
		EntryPaths: [][]string{{"network", "ike", "gateway"}},
		Refs:       []RefField{
			{Field: "ike_crypto_profile", Path: []string{"protocol", "ikev1", "ike-crypto-profile"}, Kind: RefText,
				Targets: []Category{IKECryptoProfile}},
			{Field: "ike_crypto_profile", Path: []string{"protocol", "ikev2", "ike-crypto-profile"}, Kind: RefText,
				Targets: []Category{IKECryptoProfile}},
			{Field: "interface", Path: []string{"local-address", "interface"}, Kind: RefText, Targets: []Category{Interface}},
		},
		Priority: 45,
	},
	{
		Category:   IPsecTunnel,
		EntryPaths: [][]string{{"network", "tunnel", "ipsec"}},
		Refs:       []RefField{
			{Field: "ike_gateway", Path: []string{"auto-key", "ike-gateway"}, Kind: RefEntryName,
				Targets: []Category{IKEGateway}, Required: true},
			{Field: "ipsec_crypto_profile", Path: []string{"auto-key", "ipsec-crypto-profile"}, Kind: RefText,
				Targets: []Category{IPsecCryptoProfile}},
			{Field: "tunnel_interface", Path: []string{"tunnel-interface"}, Kind: RefText, Targets: []Category{Interface}},
			{Field: "tunnel_monitor_profile", Path: []string{"tunnel-monitor", "tunnel-monitor-profile"}, Kind: RefText,
				Targets: []Category{TunnelMonitorProfile}},
		},
		Priority: 50,
	},
	{
		Category:   ProfileGroup,
		EntryPaths: [][]string{{"profile-group"}},
		Refs:       []RefField{
			{Field: "virus", Path: []string{"virus"}, Kind: RefMembers, Targets: []Category{AntivirusProfile}},
			{Field: "spyware", Path: []string{"spyware"}, Kind: RefMembers, Targets: []Category{AntiSpywareProfile}},
			{Field: "vulnerability", Path: []string{"vulnerability"}, Kind: RefMembers, Targets: []Category{VulnerabilityProfile}},
			{Field: "url_filtering", Path: []string{"url-filtering"}, Kind: RefMembers, Targets: []Category{URLFilteringProfile}},
			{Field: "file_blocking", Path: []string{"file-blocking"}, Kind: RefMembers, Targets: []Category{FileBlockingProfile}},
			{Field: "wildfire_analysis", Path: []string{"wildfire-analysis"}, Kind: RefMembers, Targets: []Category{WildfireProfile}},
		},
		Priority: 40,
	},
	{
		Category: SecurityRule,
		EntryPaths: [][]string{
			{"pre-rulebase", "security", "rules"},
			{"post-rulebase", "security", "rules"},
			{"rulebase", "security", "rules"},
			{"security", "rules"},
		},
		Refs: []RefField{
			{Field: "source", Path: []string{"source"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "destination", Path: []string{"destination"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "service", Path: []string{"service"}, Kind: RefMembers,
				Targets: []Category{ServiceGroup, Service}, Required: true},
			{Field: "application", Path: []string{"application"}, Kind: RefMembers,
				Targets: []Category{ApplicationGroup, ApplicationFilter}},
			{Field: "from", Path: []string{"from"}, Kind: RefMembers, Targets: []Category{Zone}},
			{Field: "to", Path: []string{"to"}, Kind: RefMembers, Targets: []Category{Zone}},
			{Field: "profile_group", Path: []string{"profile-setting", "group"}, Kind: RefMembers,
				Targets: []Category{ProfileGroup}},
			{Field: "tags", Path: []string{"tag"}, Kind: RefMembers, Targets: []Category{Tag}},
		},
		Priority: 60,
	},
	{
		Category: NATRule,
		EntryPaths: [][]string{
			{"pre-rulebase", "nat", "rules"},
			{"post-rulebase", "nat", "rules"},
			{"rulebase", "nat", "rules"},
			{"nat", "rules"},
		},
		Refs: []RefField{
			{Field: "source", Path: []string{"source"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "destination", Path: []string{"destination"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "service", Path: []string{"service"}, Kind: RefText,
				Targets: []Category{ServiceGroup, Service}, Required: true},
			{Field: "from", Path: []string{"from"}, Kind: RefMembers, Targets: []Category{Zone}},
			{Field: "translated_source", Path: []string{"source-translation", "dynamic-ip-and-port", "translated-address"},
				Kind: RefMembers, Targets: []Category{Address, AddressGroup}},
			{Field: "translated_destination", Path: []string{"destination-translation", "translated-address"},
				Kind: RefText, Targets: []Category{Address}},
		},
		Priority: 60,
	},
	{
		Category: DecryptionRule,
		EntryPaths: [][]string{
			{"pre-rulebase", "decryption", "rules"},
			{"post-rulebase", "decryption", "rules"},
			{"rulebase", "decryption", "rules"},
			{"decryption", "rules"},
		},
		Refs: []RefField{
			{Field: "source", Path: []string{"source"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "destination", Path: []string{"destination"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "service", Path: []string{"service"}, Kind: RefMembers,
				Targets: []Category{ServiceGroup, Service}, Required: true},
			{Field: "category", Path: []string{"category"}, Kind: RefMembers, Targets: []Category{CustomURLCategory}},
		},
		Priority: 60,
	},
	{
		Category: PBFRule,
		EntryPaths: [][]string{
			{"pre-rulebase", "pbf", "rules"},
			{"post-rulebase", "pbf", "rules"},
			{"rulebase", "pbf", "rules"},
			{"pbf", "rules"},
		},
		Refs: []RefField{
			{Field: "source", Path: []string{"source"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "destination", Path: []string{"destination"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "service", Path: []string{"service"}, Kind: RefMembers,
				Targets: []Category{ServiceGroup, Service}, Required: true},
			{Field: "egress_interface", Path: []string{"action", "forward", "egress-interface"}, Kind: RefText,
				Targets: []Category{Interface}},
		},
		Priority: 60,
	},
	{
		Category: AppOverrideRule,
		EntryPaths: [][]string{
			{"pre-rulebase", "application-override", "rules"},
			{"post-rulebase", "application-override", "rules"},
			{"rulebase", "application-override", "rules"},
			{"application-override", "rules"},
		},
		Refs: []RefField{
			{Field: "source", Path: []string{"source"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
			{Field: "destination", Path: []string{"destination"}, Kind: RefMembers,
				Targets: []Category{AddressGroup, Address, ExternalList, Region}, Required: true},
		},
		Priority: 60,
	},
}

var specIndex = func() map[Category]*Spec {
	m := make(map[Category]*Spec, len(Specs))
	for i := range Specs {
		m[Specs[i].Category] = &Specs[i]
	}
	return m
}()

// SpecFor returns the schema for a category. Panics on unknown categories:
// every category handed around the pipeline comes from Specs.
func SpecFor(c Category) *Spec {
	s, ok := specIndex[c]
	if !ok {
		panic("objects: unknown category " + string(c))
	}
	return s
}

// Priority returns the emission priority for a category.
func Priority(c Category) int { return SpecFor(c).Priority }

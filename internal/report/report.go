// Package report renders the human-readable companions of a generated
// plan: the interface inventory for hardware mapping and the VPN key
// management checklist.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/synth"
)

const rule = "================================================================================"
const thinRule = "--------------------------------------------------------------------------------"

// Interfaces renders the interface and IP inventory report. Returns
// false when the plan carries no interfaces.
func Interfaces(plan *synth.Plan) (string, bool) {
	rs := plan.ByCategory(objects.Interface)
	if len(rs) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("INTERFACE AND IP ADDRESS MIGRATION REPORT\n")
	b.WriteString("Generated for Firewall Migration Planning\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("This report lists all interfaces and their assigned IP addresses from the\n")
	b.WriteString("source configuration. Use this to plan interface mapping for the new platform.\n\n")
	b.WriteString(rule + "\n")
	b.WriteString("INTERFACE SUMMARY\n")
	b.WriteString(rule + "\n")

	byKind := make(map[string][]*synth.Resource)
	for _, r := range rs {
		kind := interfaceKind(r.Object.Name)
		byKind[kind] = append(byKind[kind], r)
	}
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		group := byKind[kind]
		fmt.Fprintf(&b, "\n%s INTERFACES (%d)\n", strings.ToUpper(kind), len(group))
		b.WriteString(thinRule + "\n")
		sort.Slice(group, func(i, j int) bool { return group[i].Object.Name < group[j].Object.Name })
		for _, r := range group {
			writeInterface(&b, r.Object.Name, r.Object.Node)
		}
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("MIGRATION CHECKLIST\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("1. Review interface naming differences between platforms\n")
	b.WriteString("2. Map source interfaces to target platform interfaces\n")
	b.WriteString("3. Verify IP addressing scheme is compatible\n")
	b.WriteString("4. Check for interface-specific features that may not translate\n")
	b.WriteString("5. Update zone and virtual router configurations accordingly\n")
	b.WriteString("6. Test connectivity after migration\n")
	return b.String(), true
}

func writeInterface(b *strings.Builder, name string, n *pantree.Node) {
	fmt.Fprintf(b, "\nInterface: %s\n", name)
	if comment := n.TextAt("comment"); comment != "" {
		fmt.Fprintf(b, "  Comment: %s\n", comment)
	}
	ips := addressEntries(n)
	if len(ips) > 0 {
		b.WriteString("  IPv4 Addresses:\n")
		for _, ip := range ips {
			fmt.Fprintf(b, "    - %s\n", ip)
		}
	}
	if profile := n.TextAt("layer3", "interface-management-profile"); profile != "" {
		fmt.Fprintf(b, "  Management Profile: %s\n", profile)
	}
	if tag := n.TextAt("tag"); tag != "" {
		fmt.Fprintf(b, "  VLAN Tag: %s\n", tag)
	}
}

// addressEntries collects IPv4 assignments from either a physical
// interface (layer3/ip) or a unit (ip).
func addressEntries(n *pantree.Node) []string {
	holder := n.Path("layer3", "ip")
	if holder == nil {
		holder = n.Child("ip")
	}
	if holder == nil {
		return nil
	}
	var out []string
	for _, e := range holder.Children {
		if e.Tag == "entry" && e.Name != "" {
			out = append(out, e.Name)
		}
	}
	return out
}

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

// VPN renders the key management report. Returns false when the plan
// carries neither gateways nor tunnels.
func VPN(plan *synth.Plan) (string, bool) {
	gateways := plan.ByCategory(objects.IKEGateway)
	tunnels := plan.ByCategory(objects.IPsecTunnel)
	if len(gateways)+len(tunnels) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("VPN CONFIGURATION MIGRATION REPORT\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("CRITICAL: PRE-SHARED KEY MANAGEMENT\n\n")
	b.WriteString("Pre-shared keys are NOT included in configuration exports for security reasons.\n")
	b.WriteString("All VPN configurations use placeholder keys: ***CHANGE_ME***\n\n")
	b.WriteString("REQUIRED ACTIONS:\n")
	b.WriteString("1. Retrieve actual pre-shared keys from your secure key management system\n")
	b.WriteString("2. Update vpn.tf file with real keys before applying\n")
	b.WriteString("3. Consider using Terraform variables or secrets management\n")
	b.WriteString("4. Never commit actual keys to version control\n\n")

	b.WriteString(rule + "\n")
	b.WriteString("IKE GATEWAYS\n")
	b.WriteString(rule + "\n\n")
	for _, r := range gateways {
		n := r.Object.Node
		fmt.Fprintf(&b, "Gateway: %s\n", r.Object.Name)
		version := "ikev1"
		if n.Path("protocol", "ikev2") != nil && n.Path("protocol", "ikev1") == nil {
			version = "ikev2"
		}
		fmt.Fprintf(&b, "  Version: %s\n", version)
		fmt.Fprintf(&b, "  Peer Address: %s\n", orNA(firstOf(n.TextAt("peer-address", "ip"), n.TextAt("peer-address", "fqdn"))))
		fmt.Fprintf(&b, "  Local Address: %s\n", orNA(firstOf(n.TextAt("local-address", "interface"), n.TextAt("local-address", "ip"))))
		b.WriteString("  Auth Type: pre-shared-key\n")
		b.WriteString("  Pre-Shared Key: ***MUST BE UPDATED***\n")
		b.WriteString("     Current placeholder: ***CHANGE_ME***\n")
		b.WriteString("     Action: Replace with actual key in vpn.tf\n")
		fmt.Fprintf(&b, "  IKE Crypto Profile: %s\n", orNA(ikeCryptoProfile(n)))
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString("IPSEC TUNNELS\n")
	b.WriteString(rule + "\n\n")
	for _, r := range tunnels {
		n := r.Object.Node
		fmt.Fprintf(&b, "Tunnel: %s\n", r.Object.Name)
		b.WriteString("  Type: auto-key\n")
		fmt.Fprintf(&b, "  Tunnel Interface: %s\n", orNA(n.TextAt("tunnel-interface")))
		fmt.Fprintf(&b, "  IKE Gateway: %s\n", orNA(firstGatewayName(n)))
		fmt.Fprintf(&b, "  IPsec Crypto Profile: %s\n", orNA(n.TextAt("auto-key", "ipsec-crypto-profile")))
		if autoKey := n.Child("auto-key"); autoKey != nil {
			proxies := autoKey.Entries("proxy-id")
			if len(proxies) > 0 {
				b.WriteString("  Proxy IDs:\n")
				for _, proxy := range proxies {
					fmt.Fprintf(&b, "    - %s: %s <-> %s\n", proxy.Name,
						orAny(proxy.TextAt("local")), orAny(proxy.TextAt("remote")))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString("KEY MANAGEMENT BEST PRACTICES\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("Option 1: Terraform Variables (Recommended)\n")
	b.WriteString(thinRule[:40] + "\n")
	b.WriteString("Create terraform.tfvars (DO NOT COMMIT) and reference it from vpn.tf:\n")
	b.WriteString("  pre_shared_key = var.vpn_psk_gateway1\n\n")
	b.WriteString("Option 2: Environment Variables\n")
	b.WriteString(thinRule[:40] + "\n")
	b.WriteString("  export TF_VAR_vpn_psk_gateway1=\"actual-key\"\n\n")
	b.WriteString("Option 3: Secrets Management\n")
	b.WriteString(thinRule[:40] + "\n")
	b.WriteString("Use HashiCorp Vault, AWS Secrets Manager, or similar.\n")
	return b.String(), true
}

func ikeCryptoProfile(n *pantree.Node) string {
	if p := n.TextAt("protocol", "ikev1", "ike-crypto-profile"); p != "" {
		return p
	}
	return n.TextAt("protocol", "ikev2", "ike-crypto-profile")
}

func firstGatewayName(n *pantree.Node) string {
	holder := n.Path("auto-key", "ike-gateway")
	if holder == nil {
		return ""
	}
	for _, e := range holder.Children {
		if e.Tag == "entry" && e.Name != "" {
			return e.Name
		}
	}
	return ""
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

// Readme is the usage guide written next to the generated files.
const Readme = `# Palo Alto Terraform Configuration

This directory contains Terraform configuration files generated from a
Palo Alto Panorama export.

## Prerequisites

1. Install Terraform (>= 1.0)
2. Install the Palo Alto Networks PAN-OS provider

## Configuration

1. Set up authentication variables in ` + "`terraform.tfvars`" + `:

` + "```hcl" + `
panos_hostname = "your-panorama-hostname-or-ip"
panos_username = "admin"
panos_password = "your-password"
device_group   = "your-device-group"
` + "```" + `

Or use environment variables:
` + "```bash" + `
export PANOS_HOSTNAME="your-panorama-hostname-or-ip"
export PANOS_USERNAME="admin"
export PANOS_PASSWORD="your-password"
` + "```" + `

2. Initialize Terraform:
` + "```bash" + `
terraform init
` + "```" + `

3. Review the plan:
` + "```bash" + `
terraform plan
` + "```" + `

4. Apply the configuration:
` + "```bash" + `
terraform apply
` + "```" + `

## File Structure

- ` + "`provider.tf`" + ` - Provider configuration
- ` + "`variables.tf`" + ` - Variable definitions
- ` + "`address_objects.tf`" + ` - Address object configurations
- ` + "`address_groups.tf`" + ` - Address group configurations
- ` + "`service_objects.tf`" + ` - Service object configurations
- ` + "`service_groups.tf`" + ` - Service group configurations
- ` + "`security_rules.tf`" + ` - Security policy rules
- ` + "`nat_rules.tf`" + ` - NAT policy rules

## Important Notes

- Review all configurations before applying
- Test in a non-production environment first
- Back up your existing configuration
- Adjust rule ordering as needed
- Some features may require manual adjustment

## Provider Documentation

For more information on the PAN-OS Terraform provider:
https://registry.terraform.io/providers/PaloAltoNetworks/panos/latest/docs
`

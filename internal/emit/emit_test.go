package emit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gswsys/panoform/internal/canon"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/scope"
	"github.com/gswsys/panoform/internal/synth"
)

func planFromXML(t *testing.T, doc string) *synth.Plan {
	t.Helper()
	ctx := context.Background()
	tree, err := pantree.Load(strings.NewReader(doc))
	require.NoError(t, err)
	set, err := canon.Canonicalize(ctx, scope.BuildChains(tree))
	require.NoError(t, err)
	plan, err := synth.Build(ctx, set)
	require.NoError(t, err)
	return plan
}

func fileNamed(t *testing.T, files []File, name string) string {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return string(f.Body)
		}
	}
	t.Fatalf("no file named %q in %d rendered files", name, len(files))
	return ""
}

// flatten collapses all whitespace runs so assertions do not depend on
// the formatter's attribute alignment.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fileNames(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func TestRenderBoilerplate(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `<config><shared/></config>`))

	t.Run("provider and variables always present", func(t *testing.T) {
		provider := flatten(fileNamed(t, files, "provider.tf"))
		assert.Contains(t, provider, `source = "PaloAltoNetworks/panos"`)
		variables := flatten(fileNamed(t, files, "variables.tf"))
		assert.Contains(t, variables, `variable "panos_hostname"`)
	})

	t.Run("empty sections are omitted", func(t *testing.T) {
		assert.Equal(t, []string{"provider.tf", "variables.tf"}, fileNames(files))
	})
}

func TestRenderObjects(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <shared>
    <address>
      <entry name="Web-Server">
        <ip-netmask>10.0.0.1/32</ip-netmask>
        <description>frontend</description>
      </entry>
      <entry name="mail"><fqdn>mail.example.com</fqdn></entry>
      <entry name="dhcp-pool"><ip-range>10.1.0.10-10.1.0.50</ip-range></entry>
    </address>
    <address-group>
      <entry name="servers">
        <static><member>Web-Server</member><member>mail</member></static>
      </entry>
    </address-group>
    <service>
      <entry name="tcp-8443">
        <protocol><tcp><port>8443</port></tcp></protocol>
      </entry>
    </service>
  </shared>
</config>`))

	t.Run("addresses", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "address_objects.tf"))
		assert.Contains(t, body, `resource "panos_address_object" "web_server"`)
		assert.Contains(t, body, `value = "10.0.0.1/32"`)
		assert.Contains(t, body, `description = "frontend"`)
		assert.Contains(t, body, `type = "fqdn"`)
		assert.Contains(t, body, `value = "mail.example.com"`)
		assert.Contains(t, body, `type = "ip-range"`)
	})

	t.Run("address groups keep source names in members", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "address_groups.tf"))
		assert.Contains(t, body, `resource "panos_address_group" "servers"`)
		assert.Contains(t, body, `static_value = ["Web-Server", "mail"]`)
	})

	t.Run("services", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "service_objects.tf"))
		assert.Contains(t, body, `resource "panos_service_object" "tcp_8443"`)
		assert.Contains(t, body, `protocol = "tcp"`)
		assert.Contains(t, body, `destination_port = "8443"`)
	})

	t.Run("resources are separated by a blank line", func(t *testing.T) {
		body := fileNamed(t, files, "address_objects.tf")
		assert.Contains(t, body, "}\n\nresource")
	})
}

func TestRenderSecurityRules(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <shared>
    <address>
      <entry name="web"><ip-netmask>10.0.0.1/32</ip-netmask></entry>
    </address>
    <pre-rulebase>
      <security>
        <rules>
          <entry name="Allow Web">
            <from><member>any</member></from>
            <to><member>any</member></to>
            <source><member>any</member></source>
            <destination><member>web</member></destination>
            <service><member>application-default</member></service>
            <application><member>web-browsing</member></application>
            <action>allow</action>
            <log-end>yes</log-end>
          </entry>
        </rules>
      </security>
    </pre-rulebase>
  </shared>
</config>`))

	body := flatten(fileNamed(t, files, "security_rules.tf"))
	assert.Contains(t, body, `resource "panos_security_rule_group" "allow_web"`)
	assert.Contains(t, body, `position_keyword = "bottom"`)
	assert.Contains(t, body, `name = "Allow Web"`)
	assert.Contains(t, body, `destination_addresses = ["web"]`)
	assert.Contains(t, body, `services = ["application-default"]`)
	assert.Contains(t, body, `action = "allow"`)
	assert.Contains(t, body, `log_end = true`)
	assert.NotContains(t, body, "log_start")
}

func TestRenderVPN(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <devices>
    <entry name="fw1">
      <network>
        <ike>
          <crypto-profiles>
            <ike-crypto-profiles>
              <entry name="ike-aes256">
                <dh-group><member>group14</member></dh-group>
                <hash><member>sha256</member></hash>
                <encryption><member>aes-256-cbc</member></encryption>
                <lifetime><hours>8</hours></lifetime>
              </entry>
            </ike-crypto-profiles>
            <ipsec-crypto-profiles>
              <entry name="ipsec-aes256">
                <esp>
                  <encryption><member>aes-256-cbc</member></encryption>
                  <authentication><member>sha256</member></authentication>
                </esp>
                <dh-group>group14</dh-group>
              </entry>
            </ipsec-crypto-profiles>
          </crypto-profiles>
          <gateway>
            <entry name="gw-branch">
              <protocol>
                <ikev2><ike-crypto-profile>ike-aes256</ike-crypto-profile></ikev2>
              </protocol>
              <peer-address><ip>203.0.113.10</ip></peer-address>
              <local-address><interface>ethernet1/1</interface></local-address>
            </entry>
          </gateway>
        </ike>
        <tunnel>
          <ipsec>
            <entry name="tun-branch">
              <tunnel-interface>tunnel.1</tunnel-interface>
              <auto-key>
                <ike-gateway><entry name="gw-branch"/></ike-gateway>
                <ipsec-crypto-profile>ipsec-aes256</ipsec-crypto-profile>
                <proxy-id>
                  <entry name="net-a">
                    <local>10.0.0.0/24</local>
                    <remote>192.168.0.0/24</remote>
                  </entry>
                </proxy-id>
              </auto-key>
            </entry>
          </ipsec>
        </tunnel>
      </network>
    </entry>
  </devices>
</config>`))

	body := flatten(fileNamed(t, files, "vpn.tf"))

	t.Run("crypto profiles", func(t *testing.T) {
		assert.Contains(t, body, `resource "panos_ike_crypto_profile" "ike_aes256"`)
		assert.Contains(t, body, `dh_groups = ["group14"]`)
		assert.Contains(t, body, `lifetime_hours = 8`)
		assert.Contains(t, body, `resource "panos_ipsec_crypto_profile" "ipsec_aes256"`)
		assert.Contains(t, body, `protocol = "esp"`)
		assert.Contains(t, body, `dh_group = "group14"`)
	})

	t.Run("gateway uses placeholder key", func(t *testing.T) {
		assert.Contains(t, body, `resource "panos_ike_gateway" "gw_branch"`)
		assert.Contains(t, body, `version = "ikev2"`)
		assert.Contains(t, body, `peer_address_value = "203.0.113.10"`)
		assert.Contains(t, body, `interface = "ethernet1/1"`)
		assert.Contains(t, body, `pre_shared_key = "`+PSKPlaceholder+`"`)
		assert.Contains(t, body, "ike_crypto_profile = panos_ike_crypto_profile.ike_aes256.name")
	})

	t.Run("tunnel references gateway and profile", func(t *testing.T) {
		assert.Contains(t, body, `resource "panos_ipsec_tunnel" "tun_branch"`)
		assert.Contains(t, body, `tunnel_interface = "tunnel.1"`)
		assert.Contains(t, body, "ak_ike_gateway = panos_ike_gateway.gw_branch.name")
		assert.Contains(t, body, "ak_ipsec_crypto_profile = panos_ipsec_crypto_profile.ipsec_aes256.name")
	})

	t.Run("proxy ids become their own resources", func(t *testing.T) {
		assert.Contains(t, body, `resource "panos_ipsec_tunnel_proxy_id_ipv4" "tun_branch_net_a"`)
		assert.Contains(t, body, "ipsec_tunnel = panos_ipsec_tunnel.tun_branch.name")
		assert.Contains(t, body, `local = "10.0.0.0/24"`)
		assert.Contains(t, body, `remote = "192.168.0.0/24"`)
	})
}

func TestRenderNATRules(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <shared>
    <address>
      <entry name="internal-net"><ip-netmask>10.0.0.0/8</ip-netmask></entry>
      <entry name="nat-pool"><ip-netmask>198.51.100.10/32</ip-netmask></entry>
    </address>
    <pre-rulebase>
      <nat>
        <rules>
          <entry name="outbound-nat">
            <from><member>trust</member></from>
            <to><member>untrust</member></to>
            <source><member>internal-net</member></source>
            <destination><member>any</member></destination>
            <service>any</service>
            <source-translation>
              <dynamic-ip-and-port>
                <translated-address><member>nat-pool</member></translated-address>
              </dynamic-ip-and-port>
            </source-translation>
          </entry>
        </rules>
      </nat>
    </pre-rulebase>
  </shared>
</config>`))

	body := flatten(fileNamed(t, files, "nat_rules.tf"))
	assert.Contains(t, body, `resource "panos_nat_rule_group" "outbound_nat"`)
	assert.Contains(t, body, `destination_zone = "untrust"`)
	assert.Contains(t, body, `source_addresses = ["internal-net"]`)
	assert.Contains(t, body, `service = "any"`)
	assert.Contains(t, body, `type = "dynamic-ip-and-port"`)
	assert.Contains(t, body, `translated_addresses = ["nat-pool"]`)
}

func TestRenderCommentOnlySections(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <shared>
    <schedule>
      <entry name="work-hours"/>
    </schedule>
    <profiles>
      <virus>
        <entry name="strict-av"><description>strict</description></entry>
      </virus>
    </profiles>
  </shared>
</config>`))

	t.Run("schedules", func(t *testing.T) {
		body := fileNamed(t, files, "schedules.tf")
		assert.Contains(t, body, "# Schedule: work-hours")
		assert.NotContains(t, body, "resource ")
	})

	t.Run("security profiles", func(t *testing.T) {
		body := fileNamed(t, files, "security_profiles.tf")
		assert.Contains(t, body, "# Antivirus Profiles")
		assert.Contains(t, body, "# Profile: strict-av")
		assert.Contains(t, body, "# Description: strict")
		assert.NotContains(t, body, "resource ")
	})
}

func TestRenderNetwork(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <devices>
    <entry name="fw1">
      <network>
        <interface>
          <ethernet>
            <entry name="ethernet1/1">
              <comment>uplink</comment>
              <layer3>
                <ip><entry name="192.0.2.1/30"/></ip>
                <interface-management-profile>mgmt-allow-ping</interface-management-profile>
              </layer3>
            </entry>
          </ethernet>
        </interface>
        <virtual-router>
          <entry name="vr-default">
            <interface><member>ethernet1/1</member></interface>
            <routing-table>
              <ip>
                <static-route>
                  <entry name="default">
                    <destination>0.0.0.0/0</destination>
                    <nexthop><ip-address>192.0.2.2</ip-address></nexthop>
                    <metric>10</metric>
                  </entry>
                </static-route>
              </ip>
            </routing-table>
          </entry>
        </virtual-router>
      </network>
      <zone>
        <entry name="untrust">
          <network>
            <layer3><member>ethernet1/1</member></layer3>
          </network>
        </entry>
      </zone>
    </entry>
  </devices>
</config>`))

	t.Run("interfaces", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "interfaces.tf"))
		assert.Contains(t, body, `resource "panos_ethernet_interface" "ethernet1_1"`)
		assert.Contains(t, body, `mode = "layer3"`)
		assert.Contains(t, body, `static_ips = ["192.0.2.1/30"]`)
		assert.Contains(t, body, `management_profile = "mgmt-allow-ping"`)
	})

	t.Run("zones", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "zones.tf"))
		assert.Contains(t, body, `resource "panos_zone" "untrust"`)
		assert.Contains(t, body, `mode = "layer3"`)
		assert.Contains(t, body, `interfaces = ["ethernet1/1"]`)
	})

	t.Run("routers and static routes", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "virtual_routers.tf"))
		assert.Contains(t, body, `resource "panos_virtual_router" "vr_default"`)
		assert.Contains(t, body, `interfaces = ["ethernet1/1"]`)
		assert.Contains(t, body, `resource "panos_static_route_ipv4" "vr_default_default"`)
		assert.Contains(t, body, "virtual_router = panos_virtual_router.vr_default.name")
		assert.Contains(t, body, `destination = "0.0.0.0/0"`)
		assert.Contains(t, body, `next_hop = "192.0.2.2"`)
		assert.Contains(t, body, `metric = 10`)
	})
}

func TestRenderIsDeterministic(t *testing.T) {
	const doc = `
<config>
  <shared>
    <address>
      <entry name="b"><ip-netmask>10.0.0.2/32</ip-netmask></entry>
      <entry name="a"><ip-netmask>10.0.0.1/32</ip-netmask></entry>
    </address>
    <address-group>
      <entry name="all"><static><member>a</member><member>b</member></static></entry>
    </address-group>
  </shared>
</config>`

	first := Render(context.Background(), planFromXML(t, doc))
	for i := 0; i < 5; i++ {
		again := Render(context.Background(), planFromXML(t, doc))
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Name, again[j].Name)
			assert.Equal(t, string(first[j].Body), string(again[j].Body))
		}
	}
}

func TestRenderKeepsRenamedDuplicateDefinitions(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <shared>
    <address>
      <entry name="web-1"><ip-netmask>10.0.0.1/32</ip-netmask></entry>
      <entry name="web-2"><ip-netmask>10.0.0.1/32</ip-netmask></entry>
    </address>
    <address-group>
      <entry name="grp"><static><member>web-2</member></static></entry>
    </address-group>
  </shared>
</config>`))

	addrs := flatten(fileNamed(t, files, "address_objects.tf"))
	groups := flatten(fileNamed(t, files, "address_groups.tf"))

	// Member lists carry source names, so every referenced name must
	// keep its own definition even when contents match another object.
	assert.Contains(t, groups, `static_value = ["web-2"]`)
	assert.Contains(t, addrs, `resource "panos_address_object" "web_1"`)
	assert.Contains(t, addrs, `resource "panos_address_object" "web_2"`)
}

func TestRenderRoutingProtocols(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <devices>
    <entry name="fw1">
      <network>
        <virtual-router>
          <entry name="vr-edge">
            <interface><member>ethernet1/1</member></interface>
            <protocol>
              <bgp>
                <enable>yes</enable>
                <router-id>10.0.0.1</router-id>
                <local-as>65001</local-as>
                <peer-group>
                  <entry name="upstream">
                    <peer>
                      <entry name="isp-a">
                        <enable>yes</enable>
                        <peer-as>65000</peer-as>
                        <local-address><interface>ethernet1/1</interface><ip>192.0.2.1/30</ip></local-address>
                        <peer-address><ip>192.0.2.2</ip></peer-address>
                      </entry>
                    </peer>
                  </entry>
                </peer-group>
              </bgp>
              <ospf>
                <enable>yes</enable>
                <router-id>10.0.0.1</router-id>
                <area>
                  <entry name="0.0.0.0">
                    <type><stub/></type>
                    <interface>
                      <entry name="ethernet1/1">
                        <enable>yes</enable>
                        <passive>yes</passive>
                        <metric>20</metric>
                      </entry>
                    </interface>
                  </entry>
                </area>
              </ospf>
            </protocol>
          </entry>
        </virtual-router>
      </network>
    </entry>
  </devices>
</config>`))

	t.Run("bgp", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "bgp.tf"))
		assert.Contains(t, body, `resource "panos_bgp" "vr_edge"`)
		assert.Contains(t, body, "virtual_router = panos_virtual_router.vr_edge.name")
		assert.Contains(t, body, `router_id = "10.0.0.1"`)
		assert.Contains(t, body, `as_number = "65001"`)
		assert.Contains(t, body, `resource "panos_bgp_peer_group" "vr_edge_pg_upstream"`)
		assert.Contains(t, body, "depends_on = [panos_bgp.vr_edge]")
		assert.Contains(t, body, `resource "panos_bgp_peer" "vr_edge_peer_isp_a"`)
		assert.Contains(t, body, `bgp_peer_group = "upstream"`)
		assert.Contains(t, body, `peer_as = "65000"`)
		assert.Contains(t, body, `local_address_interface = "ethernet1/1"`)
		assert.Contains(t, body, `peer_address_ip = "192.0.2.2"`)
	})

	t.Run("ospf", func(t *testing.T) {
		body := flatten(fileNamed(t, files, "ospf.tf"))
		assert.Contains(t, body, `resource "panos_ospf" "vr_edge"`)
		assert.Contains(t, body, "virtual_router = panos_virtual_router.vr_edge.name")
		assert.Contains(t, body, `resource "panos_ospf_area" "vr_edge_area_0_0_0_0"`)
		assert.Contains(t, body, `type = "stub"`)
		assert.Contains(t, body, `resource "panos_ospf_area_interface" "vr_edge_ospf_ethernet1_1"`)
		assert.Contains(t, body, `ospf_area = "0.0.0.0"`)
		assert.Contains(t, body, "passive = true")
		assert.Contains(t, body, "metric = 20")
		assert.Contains(t, body, "depends_on = [panos_ospf.vr_edge]")
	})

	t.Run("a disabled protocol emits nothing", func(t *testing.T) {
		quiet := Render(context.Background(), planFromXML(t, `
<config>
  <devices>
    <entry name="fw1">
      <network>
        <virtual-router>
          <entry name="vr-quiet">
            <protocol><bgp><enable>no</enable></bgp></protocol>
          </entry>
        </virtual-router>
      </network>
    </entry>
  </devices>
</config>`))
		assert.NotContains(t, fileNames(quiet), "bgp.tf")
		assert.NotContains(t, fileNames(quiet), "ospf.tf")
	})
}

func TestRenderProfilePlaceholders(t *testing.T) {
	files := Render(context.Background(), planFromXML(t, `
<config>
  <devices>
    <entry name="fw1">
      <network>
        <tunnel-monitor>
          <monitor-profile>
            <entry name="tm-default"><interval>3</interval><threshold>5</threshold><action>wait-recover</action></entry>
          </monitor-profile>
        </tunnel-monitor>
      </network>
    </entry>
  </devices>
  <shared>
    <log-settings>
      <profiles>
        <entry name="default-log"><description>send to syslog</description></entry>
      </profiles>
    </log-settings>
    <zone-protection-profile>
      <entry name="strict"/>
    </zone-protection-profile>
    <qos>
      <profile>
        <entry name="qos-wan">
          <class>
            <entry name="class1"><priority>real-time</priority></entry>
            <entry name="class2"><priority>high</priority></entry>
          </class>
        </entry>
      </profile>
    </qos>
  </shared>
</config>`))

	t.Run("log forwarding", func(t *testing.T) {
		body := fileNamed(t, files, "log_settings.tf")
		assert.Contains(t, body, "# Profile: default-log")
		assert.Contains(t, body, "# Description: send to syslog")
		assert.NotContains(t, body, "resource ")
	})

	t.Run("zone protection", func(t *testing.T) {
		body := fileNamed(t, files, "zone_protection_profiles.tf")
		assert.Contains(t, body, "# Profile: strict")
		assert.NotContains(t, body, "resource ")
	})

	t.Run("qos", func(t *testing.T) {
		body := fileNamed(t, files, "qos_profiles.tf")
		assert.Contains(t, body, "# Profile: qos-wan")
		assert.Contains(t, body, "# Classes: class1, class2")
		assert.NotContains(t, body, "resource ")
	})

	t.Run("tunnel monitor", func(t *testing.T) {
		body := fileNamed(t, files, "tunnel_monitor_profiles.tf")
		assert.Contains(t, body, "# Profile: tm-default")
		assert.Contains(t, body, "# Interval: 3")
		assert.Contains(t, body, "# Threshold: 5")
		assert.Contains(t, body, "# Action: wait-recover")
		assert.NotContains(t, body, "resource ")
	})
}

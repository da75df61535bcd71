package split

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gswsys/panoform/internal/pantree"
)

const exportDoc = `
<config version="10.2.0">
  <devices>
    <entry name="localhost.localdomain">
      <device-group>
        <entry name="DG-Branch">
          <address>
            <entry name="branch-net"><ip-netmask>10.1.0.0/16</ip-netmask></entry>
          </address>
        </entry>
        <entry name="Corp">
          <address>
            <entry name="corp-net"><ip-netmask>10.2.0.0/16</ip-netmask></entry>
          </address>
        </entry>
      </device-group>
      <template>
        <entry name="Branch">
          <config><devices><entry name="localhost.localdomain"/></devices></config>
        </entry>
      </template>
      <template-stack>
        <entry name="branch-stack">
          <templates><member>Branch</member></templates>
          <devices><entry name="DG-Branch"/></devices>
        </entry>
      </template-stack>
    </entry>
  </devices>
  <shared>
    <address>
      <entry name="dns-primary"><ip-netmask>8.8.8.8/32</ip-netmask></entry>
    </address>
  </shared>
  <shared>
    <address>
      <entry name="dns-primary"><ip-netmask>1.1.1.1/32</ip-netmask></entry>
      <entry name="dns-secondary"><ip-netmask>8.8.4.4/32</ip-netmask></entry>
    </address>
    <service>
      <entry name="dns"><protocol><udp><port>53</port></udp></protocol></entry>
    </service>
  </shared>
</config>`

func load(t *testing.T, doc string) *pantree.Tree {
	t.Helper()
	tree, err := pantree.Load(strings.NewReader(doc))
	require.NoError(t, err)
	return tree
}

func TestSplit(t *testing.T) {
	ctx := context.Background()
	res, err := Split(ctx, load(t, exportDoc))
	require.NoError(t, err)
	require.Len(t, res.Partitions, 2)

	branch := res.Partitions[0]
	corp := res.Partitions[1]

	t.Run("partition identity", func(t *testing.T) {
		assert.Equal(t, "DG-Branch", branch.Group)
		assert.Equal(t, "DG-Branch.xml", branch.FileName)
		assert.Equal(t, "Corp", corp.Group)
	})

	t.Run("skeleton", func(t *testing.T) {
		root := branch.Tree.Root
		assert.Equal(t, "config", root.Tag)
		assert.Equal(t, "10.2.0", root.Attrs["version"])

		localhost := root.Path("devices", "entry")
		require.NotNil(t, localhost)
		assert.Equal(t, "localhost.localdomain", localhost.Name)

		dgs := branch.Tree.DeviceGroups()
		require.Len(t, dgs, 1)
		assert.Equal(t, "DG-Branch", dgs[0].Name)
		assert.Equal(t, "10.1.0.0/16", dgs[0].TextAt("address", "entry", "ip-netmask"))
	})

	t.Run("shared sections merge with first name winning", func(t *testing.T) {
		shared := branch.Tree.SharedSections()
		require.Len(t, shared, 1)

		addrs := shared[0].Entries("address")
		require.Len(t, addrs, 2)
		assert.Equal(t, "dns-primary", addrs[0].Name)
		assert.Equal(t, "8.8.8.8/32", addrs[0].TextAt("ip-netmask"))
		assert.Equal(t, "dns-secondary", addrs[1].Name)

		svcs := shared[0].Entries("service")
		require.Len(t, svcs, 1)
		assert.Equal(t, "dns", svcs[0].Name)
	})

	t.Run("matching template and stack travel with the group", func(t *testing.T) {
		tpls := branch.Tree.Templates()
		require.Len(t, tpls, 1)
		assert.Equal(t, "Branch", tpls[0].Name)

		stacks := branch.Tree.TemplateStacks()
		require.Len(t, stacks, 1)
		assert.Equal(t, "branch-stack", stacks[0].Name)
	})

	t.Run("unmatched group warns and carries no template", func(t *testing.T) {
		assert.Empty(t, corp.Tree.Templates())
		assert.Empty(t, corp.Tree.TemplateStacks())
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], `"Corp"`)
	})

	t.Run("partitions survive a write and reload", func(t *testing.T) {
		var buf strings.Builder
		require.NoError(t, branch.Tree.WriteXML(&buf))

		again := load(t, buf.String())
		require.Len(t, again.DeviceGroups(), 1)
		assert.Equal(t, "DG-Branch", again.DeviceGroups()[0].Name)
		require.Len(t, again.SharedSections(), 1)
	})
}

func TestSplitNoDeviceGroups(t *testing.T) {
	_, err := Split(context.Background(), load(t, `
<config version="10.2.0">
  <devices><entry name="localhost.localdomain"/></devices>
  <shared/>
</config>`))
	var noGroups ErrNoDeviceGroups
	require.ErrorAs(t, err, &noGroups)
	assert.Contains(t, err.Error(), "single firewall export")
}

func TestSplitDuplicateGroupNames(t *testing.T) {
	res, err := Split(context.Background(), load(t, `
<config version="10.2.0">
  <devices>
    <entry name="localhost.localdomain">
      <device-group>
        <entry name="Edge"><address><entry name="a"><ip-netmask>10.0.0.1/32</ip-netmask></entry></address></entry>
        <entry name="Edge"><address><entry name="b"><ip-netmask>10.0.0.2/32</ip-netmask></entry></address></entry>
      </device-group>
    </entry>
  </devices>
</config>`))
	require.NoError(t, err)
	require.Len(t, res.Partitions, 1)
	assert.Equal(t, "Edge", res.Partitions[0].Group)
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "Branch_Office_EU_West", safeFileName("Branch Office/EU West"))
}

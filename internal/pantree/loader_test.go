package pantree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("plain config document", func(t *testing.T) {
		tree, err := Load(strings.NewReader(`
<config version="10.1.0">
  <shared>
    <address>
      <entry name="web"><ip-netmask>10.0.0.1/32</ip-netmask></entry>
    </address>
  </shared>
</config>`))
		require.NoError(t, err)
		require.NotNil(t, tree.Root)
		assert.Equal(t, "config", tree.Root.Tag)
		assert.Equal(t, "10.1.0", tree.Root.Attrs["version"])

		shared := tree.SharedSections()
		require.Len(t, shared, 1)
		entries := shared[0].Entries("address")
		require.Len(t, entries, 1)
		assert.Equal(t, "web", entries[0].Name)
		assert.Equal(t, "10.0.0.1/32", entries[0].TextAt("ip-netmask"))
	})

	t.Run("api response wrapping", func(t *testing.T) {
		tree, err := Load(strings.NewReader(`
<response status="success">
  <result>
    <config>
      <shared><tag><entry name="prod"/></tag></shared>
    </config>
  </result>
</response>`))
		require.NoError(t, err)
		assert.Equal(t, "config", tree.Root.Tag)
		require.Len(t, tree.SharedSections(), 1)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := Load(strings.NewReader(`<config><shared></config>`))
		require.Error(t, err)
		var malformed *MalformedInputError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("missing config element", func(t *testing.T) {
		_, err := Load(strings.NewReader(`<other/>`))
		require.Error(t, err)
		var malformed *MalformedInputError
		assert.ErrorAs(t, err, &malformed)
	})
}

func TestNodeAccessors(t *testing.T) {
	tree, err := Load(strings.NewReader(`
<config>
  <shared>
    <address>
      <entry name="dup"><ip-netmask>10.0.0.1/32</ip-netmask></entry>
      <entry name="dup"><ip-netmask>10.0.0.2/32</ip-netmask></entry>
    </address>
    <service-group>
      <entry name="grp">
        <members>
          <member>svc-a</member>
          <member>svc-b</member>
        </members>
      </entry>
    </service-group>
  </shared>
</config>`))
	require.NoError(t, err)
	shared := tree.SharedSections()[0]

	t.Run("ChildNamed returns the last declaration", func(t *testing.T) {
		addr := shared.Child("address")
		dup := addr.ChildNamed("entry", "dup")
		require.NotNil(t, dup)
		assert.Equal(t, "10.0.0.2/32", dup.TextAt("ip-netmask"))
	})

	t.Run("Members keeps document order", func(t *testing.T) {
		grp := shared.Child("service-group").ChildNamed("entry", "grp")
		require.NotNil(t, grp)
		assert.Equal(t, []string{"svc-a", "svc-b"}, grp.Members("members"))
	})

	t.Run("Path returns nil on missing segment", func(t *testing.T) {
		assert.Nil(t, shared.Path("does", "not", "exist"))
		assert.Equal(t, "", shared.TextAt("does", "not", "exist"))
	})
}

func TestWriteXML(t *testing.T) {
	input := `
<config version="10.0.0">
  <shared>
    <address><entry name="a"><ip-netmask>10.0.0.1/32</ip-netmask></entry></address>
  </shared>
</config>`
	tree, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, tree.WriteXML(&out))
	serialized := out.String()
	assert.Contains(t, serialized, `<?xml`)
	assert.Contains(t, serialized, `<entry name="a">`)

	// The serialized document loads back to an equivalent tree.
	again, err := Load(strings.NewReader(serialized))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0", again.Root.Attrs["version"])
	require.Len(t, again.SharedSections(), 1)
	assert.Equal(t, "10.0.0.1/32",
		again.SharedSections()[0].Child("address").ChildNamed("entry", "a").TextAt("ip-netmask"))
}

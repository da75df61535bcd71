package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportDoc = `
<config version="10.2.0">
  <devices>
    <entry name="localhost.localdomain">
      <device-group>
        <entry name="DG-Branch">
          <address>
            <entry name="branch-dns"><ip-netmask>10.1.0.53/32</ip-netmask></entry>
          </address>
          <pre-rulebase>
            <security>
              <rules>
                <entry name="allow-dns">
                  <from><member>any</member></from>
                  <to><member>any</member></to>
                  <source><member>any</member></source>
                  <destination><member>branch-dns</member></destination>
                  <service><member>dns-service</member></service>
                  <action>allow</action>
                </entry>
              </rules>
            </security>
          </pre-rulebase>
        </entry>
      </device-group>
    </entry>
  </devices>
  <shared>
    <service>
      <entry name="dns-service"><protocol><udp><port>53</port></udp></protocol></entry>
    </service>
  </shared>
</config>`

func writeExport(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestConverterRun(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	cfg, err := NewConfig(Config{
		InputPath: writeExport(t, exportDoc),
		OutputDir: outDir,
		LogLevel:  "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewConverter(&out, cfg).Run(context.Background()))

	read := func(name string) string {
		body, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		return string(body)
	}

	t.Run("boilerplate and docs", func(t *testing.T) {
		assert.Contains(t, read("provider.tf"), "PaloAltoNetworks/panos")
		assert.Contains(t, read("variables.tf"), "panos_hostname")
		assert.Contains(t, read("README.md"), "terraform init")
	})

	t.Run("objects follow the scope chain", func(t *testing.T) {
		assert.Contains(t, read("address_objects.tf"), `"branch_dns"`)
		assert.Contains(t, read("service_objects.tf"), `"dns_service"`)
	})

	t.Run("rules render last", func(t *testing.T) {
		body := read("security_rules.tf")
		assert.Contains(t, body, "panos_security_rule_group")
		assert.Contains(t, body, `"allow-dns"`)
	})
}

func TestConverterRunUnresolvedReferences(t *testing.T) {
	broken := strings.Replace(exportDoc, "<member>dns-service</member>", "<member>no-such-service</member>", 1)
	outDir := filepath.Join(t.TempDir(), "out")
	cfg, err := NewConfig(Config{
		InputPath: writeExport(t, broken),
		OutputDir: outDir,
		LogLevel:  "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	err = NewConverter(&out, cfg).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved references")
	assert.Contains(t, err.Error(), "no-such-service")

	// Output is still written; only the broken rule is missing.
	_, statErr := os.Stat(filepath.Join(outDir, "provider.tf"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(outDir, "security_rules.tf"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestConverterRunMissingInput(t *testing.T) {
	cfg, err := NewConfig(Config{
		InputPath: filepath.Join(t.TempDir(), "nope.xml"),
		LogLevel:  "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Error(t, NewConverter(&out, cfg).Run(context.Background()))
}

func TestSplitterRun(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	cfg, err := NewSplitConfig(SplitConfig{
		InputPath: writeExport(t, exportDoc),
		OutputDir: outDir,
		LogLevel:  "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewSplitter(&out, cfg).Run(context.Background()))

	body, err := os.ReadFile(filepath.Join(outDir, "DG-Branch.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(body), `<entry name="DG-Branch">`)
	assert.Contains(t, string(body), "dns-service")
}

func TestConverterRunIsDeterministic(t *testing.T) {
	input := writeExport(t, exportDoc)

	run := func() map[string][]byte {
		outDir := filepath.Join(t.TempDir(), "out")
		cfg, err := NewConfig(Config{InputPath: input, OutputDir: outDir, LogLevel: "error"})
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, NewConverter(&out, cfg).Run(context.Background()))

		files := make(map[string][]byte)
		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		for _, e := range entries {
			body, err := os.ReadFile(filepath.Join(outDir, e.Name()))
			require.NoError(t, err)
			files[e.Name()] = body
		}
		return files
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for name, body := range first {
		assert.Equal(t, string(body), string(second[name]), name)
	}
}

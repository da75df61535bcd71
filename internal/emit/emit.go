// Package emit renders an emission plan into Terraform source files,
// one file per object family, mirroring how operators review generated
// plans: objects first, then network, then policy, then VPN.
package emit

import (
	"context"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/gswsys/panoform/internal/ctxlog"
	"github.com/gswsys/panoform/internal/objects"
	"github.com/gswsys/panoform/internal/synth"
)

// File is one rendered output file.
type File struct {
	Name string
	Body []byte
}

// Render turns the plan into the full set of Terraform files. Files with
// no matching resources are omitted; provider.tf and variables.tf are
// always present.
func Render(ctx context.Context, plan *synth.Plan) []File {
	log := ctxlog.FromContext(ctx)
	out := []File{
		{Name: "provider.tf", Body: []byte(providerConfig)},
		{Name: "variables.tf", Body: []byte(variablesConfig)},
	}
	for _, render := range sections {
		if f, ok := render(plan); ok {
			out = append(out, f)
		}
	}
	log.Debug("rendered terraform files", "files", len(out))
	return out
}

// sections lists every renderer in output order.
var sections = []func(p *synth.Plan) (File, bool){
	renderTags,
	renderAddresses,
	renderAddressGroups,
	renderServices,
	renderServiceGroups,
	renderURLCategories,
	renderApplicationGroups,
	renderApplicationFilters,
	renderExternalLists,
	renderSchedules,
	renderSecurityProfiles,
	renderProfileGroups,
	renderZoneProtectionProfiles,
	renderLogForwardingProfiles,
	renderQoSProfiles,
	renderTunnelMonitorProfiles,
	renderInterfaces,
	renderZones,
	renderRouters,
	renderBGP,
	renderOSPF,
	renderVPN,
	renderSecurityRules,
	renderNATRules,
	renderDecryptionRules,
	renderPBFRules,
	renderAppOverrideRules,
}

// builder wraps an hclwrite file with the small vocabulary every
// section uses: header comments, resource blocks, optional attributes.
type builder struct {
	f        *hclwrite.File
	body     *hclwrite.Body
	resCount int
}

func newBuilder(header ...string) *builder {
	f := hclwrite.NewEmptyFile()
	b := &builder{f: f, body: f.Body()}
	for _, line := range header {
		b.comment(line)
	}
	if len(header) > 0 {
		b.body.AppendNewline()
	}
	return b
}

func (b *builder) comment(text string) {
	line := "#"
	if text != "" {
		line += " " + text
	}
	b.body.AppendUnstructuredTokens(hclwrite.Tokens{{
		Type:  hclsyntax.TokenComment,
		Bytes: []byte(line + "\n"),
	}})
}

func (b *builder) resource(resType, id string) *hclwrite.Body {
	if b.resCount > 0 {
		b.body.AppendNewline()
	}
	b.resCount++
	return b.body.AppendNewBlock("resource", []string{resType, id}).Body()
}

func (b *builder) file(name string) (File, bool) {
	return File{Name: name, Body: hclwrite.Format(b.f.Bytes())}, true
}

func setString(body *hclwrite.Body, name, value string) {
	body.SetAttributeValue(name, cty.StringVal(value))
}

// setOptString writes the attribute only when the value is non-empty.
func setOptString(body *hclwrite.Body, name, value string) {
	if value != "" {
		setString(body, name, value)
	}
}

// setList writes a list attribute, skipping empty lists entirely.
func setList(body *hclwrite.Body, name string, values []string) {
	if len(values) == 0 {
		return
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.ListVal(vals))
}

// setOptNumber writes a numeric attribute from source text, skipping
// empty or non-numeric values.
func setOptNumber(body *hclwrite.Body, name, text string) {
	if text == "" {
		return
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return
	}
	body.SetAttributeValue(name, cty.NumberIntVal(v))
}

func setBool(body *hclwrite.Body, name string, value bool) {
	if value {
		body.SetAttributeValue(name, cty.True)
	}
}

// setBoolValue always writes the attribute, for flags whose provider
// default differs from the source's disabled state.
func setBoolValue(body *hclwrite.Body, name string, value bool) {
	body.SetAttributeValue(name, cty.BoolVal(value))
}

// setDependsOn writes an explicit dependency on a resource the block
// has no attribute-level reference to.
func setDependsOn(body *hclwrite.Body, resType, id string) {
	body.SetAttributeRaw("depends_on", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(hcl.Traversal{
			hcl.TraverseRoot{Name: resType},
			hcl.TraverseAttr{Name: id},
		}),
	}))
}

// setRef writes a cross-resource reference, e.g.
// panos_virtual_router.trust.name.
func setRef(body *hclwrite.Body, name, resType, id string) {
	body.SetAttributeTraversal(name, hcl.Traversal{
		hcl.TraverseRoot{Name: resType},
		hcl.TraverseAttr{Name: id},
		hcl.TraverseAttr{Name: "name"},
	})
}

// depResource finds the planned resource a reference field resolved to.
func depResource(p *synth.Plan, r *synth.Resource, field string) (*synth.Resource, bool) {
	for _, ref := range r.Object.Refs {
		if ref.Field == field && ref.Target != nil {
			return p.Lookup(ref.Target.Key())
		}
	}
	return nil, false
}

func resourcesOf(p *synth.Plan, cat objects.Category) []*synth.Resource {
	return p.ByCategory(cat)
}

const providerConfig = `# Palo Alto Networks PAN-OS Provider Configuration
terraform {
  required_providers {
    panos = {
      source  = "PaloAltoNetworks/panos"
      version = "~> 2.0.7"
    }
  }
}

provider "panos" {
  # Configure these variables or use environment variables:
  # PANOS_HOSTNAME, PANOS_USERNAME, PANOS_PASSWORD
  # hostname = var.panos_hostname
  # username = var.panos_username
  # password = var.panos_password
}
`

const variablesConfig = `# Variables for Palo Alto Configuration
variable "panos_hostname" {
  description = "Hostname or IP of the Palo Alto firewall/Panorama"
  type        = string
  sensitive   = true
}

variable "panos_username" {
  description = "Username for authentication"
  type        = string
  sensitive   = true
}

variable "panos_password" {
  description = "Password for authentication"
  type        = string
  sensitive   = true
}

variable "device_group" {
  description = "Device group name for Panorama"
  type        = string
  default     = "shared"
}
`

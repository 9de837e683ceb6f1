// Package render binds device inventory data to a discovered template
// via the pongo2 template engine and normalizes its failures into a
// single error kind. The templating language itself (loops, filters,
// conditionals) is pongo2's concern, not this package's.
package render

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/netforge/netforge/pkg/catalog"
	"github.com/netforge/netforge/pkg/inventory"
)

// RenderedConfig is the output of binding a device to a template:
// the ordered configuration lines plus the template's safety flags
// carried through for the analyzer. Ephemeral, produced fresh per
// plan/apply cycle.
type RenderedConfig struct {
	DeviceName   string   `json:"device_name"`
	TemplateName string   `json:"template_name"`
	Vendor       string   `json:"vendor"`
	Lines        []string `json:"lines"`

	// Safe and ChangesHostname mirror the TemplateInfo declarations.
	Safe            bool `json:"safe"`
	ChangesHostname bool `json:"changes_hostname"`
}

// RenderError wraps a template syntax or execution failure.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer renders templates from disk. The zero value is not usable;
// construct with NewRenderer.
type Renderer struct {
	set *pongo2.TemplateSet
}

// NewRenderer creates a renderer with an isolated template set so
// global pongo2 state never leaks between runs.
func NewRenderer() *Renderer {
	return &Renderer{
		set: pongo2.NewSet("netforge", pongo2.DefaultLoader),
	}
}

// Render binds dev to tpl and returns the resulting configuration.
// Whitespace-only lines are dropped and each line is trimmed, matching
// what drivers actually submit to devices.
func (r *Renderer) Render(tpl catalog.TemplateInfo, dev inventory.Device) (RenderedConfig, error) {
	t, err := r.set.FromFile(tpl.Path)
	if err != nil {
		return RenderedConfig{}, &RenderError{Template: tpl.Name, Err: err}
	}

	text, err := t.Execute(bindings(dev))
	if err != nil {
		return RenderedConfig{}, &RenderError{Template: tpl.Name, Err: err}
	}

	return RenderedConfig{
		DeviceName:      dev.Name,
		TemplateName:    tpl.Name,
		Vendor:          tpl.Vendor,
		Lines:           splitLines(text),
		Safe:            tpl.Safe,
		ChangesHostname: tpl.ChangesHostname,
	}, nil
}

// bindings assembles the variables exposed to templates: hostname,
// interfaces, and every device-level custom field merged in verbatim.
// The reserved hostname/interfaces keys win on collision.
func bindings(dev inventory.Device) pongo2.Context {
	ctx := make(pongo2.Context, len(dev.Vars)+2)
	for k, v := range dev.Vars {
		ctx[k] = v
	}

	interfaces := make([]map[string]interface{}, 0, len(dev.Interfaces))
	for _, iface := range dev.Interfaces {
		interfaces = append(interfaces, iface.Bindings())
	}

	ctx["hostname"] = dev.Name
	ctx["interfaces"] = interfaces
	return ctx
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Package safety classifies a pending configuration change. The verdict
// is derived deterministically from the template's declared metadata and
// a lightweight scan of the rendered lines; it never blocks a plan, only
// annotates it and feeds the apply confirmation gate.
package safety

import (
	"strings"

	"github.com/netforge/netforge/pkg/render"
)

// Verdict is the classification of one rendered configuration.
type Verdict struct {
	// IsSafe is true only when the template is declared safe and no
	// hostname change was declared or detected.
	IsSafe bool `json:"is_safe"`

	// HostnameChangeDetected is true when the template declares a
	// hostname change or the rendered lines contain one.
	HostnameChangeDetected bool `json:"hostname_change_detected"`

	// Reasons explains each triggered condition, in a fixed order:
	// declared-unsafe, declared-hostname-change, detected-hostname-change.
	Reasons []string `json:"reasons,omitempty"`
}

// hostnamePrefixes maps a vendor to the command prefixes that assign a
// hostname on that platform. The scan is a defense against templates
// whose declared metadata understates their effect.
var hostnamePrefixes = map[string][]string{
	"huawei_vrp5": {"sysname "},
	"huawei_vrp8": {"sysname "},
	"routeros7":   {"/system identity "},
}

// Analyze derives the safety verdict for a rendered configuration.
// Pure function: equal inputs always yield equal verdicts.
func Analyze(rc render.RenderedConfig) Verdict {
	detected := scanHostnameChange(rc.Vendor, rc.Lines)

	v := Verdict{
		HostnameChangeDetected: rc.ChangesHostname || detected,
	}
	v.IsSafe = rc.Safe && !v.HostnameChangeDetected

	if !rc.Safe {
		v.Reasons = append(v.Reasons, "template is not declared safe")
	}
	if rc.ChangesHostname {
		v.Reasons = append(v.Reasons, "template declares a hostname change")
	}
	if detected {
		v.Reasons = append(v.Reasons, "rendered configuration contains a hostname-changing command")
	}
	return v
}

func scanHostnameChange(vendor string, lines []string) bool {
	prefixes := hostnamePrefixes[vendor]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, prefix := range prefixes {
			if strings.HasPrefix(trimmed, prefix) {
				return true
			}
		}
	}
	return false
}

package safety

import (
	"reflect"
	"testing"

	"github.com/netforge/netforge/pkg/render"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		rc   render.RenderedConfig
		want Verdict
	}{
		{
			name: "declared safe, no hostname change",
			rc: render.RenderedConfig{
				Vendor: "huawei_vrp8",
				Safe:   true,
				Lines:  []string{"interface GigabitEthernet0/0/1", "description uplink"},
			},
			want: Verdict{IsSafe: true},
		},
		{
			name: "declared unsafe",
			rc: render.RenderedConfig{
				Vendor: "huawei_vrp8",
				Lines:  []string{"interface GigabitEthernet0/0/1"},
			},
			want: Verdict{
				Reasons: []string{"template is not declared safe"},
			},
		},
		{
			name: "detection overrides declaration",
			rc: render.RenderedConfig{
				Vendor: "huawei_vrp8",
				Safe:   true,
				Lines:  []string{"sysname core-r1"},
			},
			want: Verdict{
				HostnameChangeDetected: true,
				Reasons:                []string{"rendered configuration contains a hostname-changing command"},
			},
		},
		{
			name: "declared hostname change without matching line",
			rc: render.RenderedConfig{
				Vendor:          "huawei_vrp5",
				Safe:            true,
				ChangesHostname: true,
				Lines:           []string{"interface Vlanif100"},
			},
			want: Verdict{
				HostnameChangeDetected: true,
				Reasons:                []string{"template declares a hostname change"},
			},
		},
		{
			name: "routeros identity command detected",
			rc: render.RenderedConfig{
				Vendor: "routeros7",
				Safe:   true,
				Lines:  []string{`/system identity set name=sw1`},
			},
			want: Verdict{
				HostnameChangeDetected: true,
				Reasons:                []string{"rendered configuration contains a hostname-changing command"},
			},
		},
		{
			name: "all conditions in fixed reason order",
			rc: render.RenderedConfig{
				Vendor:          "huawei_vrp8",
				ChangesHostname: true,
				Lines:           []string{"sysname core-r1"},
			},
			want: Verdict{
				HostnameChangeDetected: true,
				Reasons: []string{
					"template is not declared safe",
					"template declares a hostname change",
					"rendered configuration contains a hostname-changing command",
				},
			},
		},
		{
			name: "unknown vendor has no prefix set",
			rc: render.RenderedConfig{
				Vendor: "acme_os",
				Safe:   true,
				Lines:  []string{"sysname core-r1"},
			},
			want: Verdict{IsSafe: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.rc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Analyze() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	rc := render.RenderedConfig{
		Vendor: "huawei_vrp8",
		Safe:   true,
		Lines:  []string{"sysname r1", "interface g0/0/1"},
	}
	first := Analyze(rc)
	second := Analyze(rc)
	if !reflect.DeepEqual(first, second) {
		t.Error("verdicts for identical input differ")
	}
}

package drivers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/netforge/netforge/pkg/session"
)

// fakeSession is a scripted Session: responses and errors are keyed by
// the exact command line sent.
type fakeSession struct {
	responses map[string]string
	errors    map[string]error
	blockResp string
	blockErr  error

	sent    []string
	blocks  [][]string
	fetched []string
	prompt  string
	closed  bool
}

var _ session.Session = (*fakeSession)(nil)

func (f *fakeSession) SendLine(_ context.Context, line string) (string, error) {
	f.sent = append(f.sent, line)
	return f.responses[line], f.errors[line]
}

func (f *fakeSession) SendBlock(_ context.Context, lines []string) (string, error) {
	f.blocks = append(f.blocks, lines)
	return f.blockResp, f.blockErr
}

func (f *fakeSession) Prompt() string { return f.prompt }

func (f *fakeSession) Fetch(_ context.Context, remotePath, _ string) error {
	f.fetched = append(f.fetched, remotePath)
	return nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func sentContains(sent []string, cmd string) bool {
	for _, s := range sent {
		if s == cmd {
			return true
		}
	}
	return false
}

func TestVRP8CommitSuccess(t *testing.T) {
	sess := &fakeSession{
		responses: map[string]string{
			"system-view": "[~r1]",
			"commit":      "Info: commit complete.",
			"return":      "<r1>",
		},
		blockResp: "[~r1-GigabitEthernet0/0/1]",
	}

	res, err := NewHuaweiVRP8().Dispatch(context.Background(), sess, []string{"interface GigabitEthernet0/0/1"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !res.Persisted {
		t.Error("expected persisted result")
	}
	if !strings.Contains(res.Output, "commit complete") {
		t.Errorf("transcript missing commit output: %q", res.Output)
	}
	if sentContains(sess.sent, "rollback configuration last 1") {
		t.Error("rollback issued on a clean commit")
	}
}

func TestVRP8CommitFailureRollsBack(t *testing.T) {
	sess := &fakeSession{
		responses: map[string]string{
			"system-view":                   "[~r1]",
			"commit":                        "Error: configuration conflict detected.",
			"rollback configuration last 1": "Rollback complete.",
			"return":                        "<r1>",
		},
		blockResp: "[~r1]",
	}

	_, err := NewHuaweiVRP8().Dispatch(context.Background(), sess, []string{"sysname r2"})
	var de *DriverError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DriverError, got %v", err)
	}

	// Contract: the error reports both the original failure and the
	// rollback attempt's outcome.
	msg := de.Error()
	if !strings.Contains(msg, "commit failed") || !strings.Contains(strings.ToLower(msg), "error") {
		t.Errorf("error does not report the commit failure: %q", msg)
	}
	if !strings.Contains(msg, "rollback attempted and acknowledged") {
		t.Errorf("error does not report the rollback outcome: %q", msg)
	}
	if !sentContains(sess.sent, "rollback configuration last 1") {
		t.Error("rollback command was not issued")
	}
	if !strings.Contains(de.Output, "configuration conflict") {
		t.Errorf("transcript missing device failure text: %q", de.Output)
	}
}

func TestVRP8RollbackFailureIsReported(t *testing.T) {
	sess := &fakeSession{
		responses: map[string]string{
			"system-view":                   "[~r1]",
			"commit":                        "Error: commit rejected.",
			"rollback configuration last 1": "Error: rollback not possible.",
		},
		blockResp: "[~r1]",
	}

	_, err := NewHuaweiVRP8().Dispatch(context.Background(), sess, []string{"sysname r2"})
	if err == nil || !strings.Contains(err.Error(), `rollback attempt reported "error"`) {
		t.Errorf("rollback failure not surfaced: %v", err)
	}
}

func TestVRP5SendsLinesIndividuallyAndSaves(t *testing.T) {
	sess := &fakeSession{
		responses: map[string]string{
			"system-view":         "[r1]",
			"interface Vlanif100": "[r1-Vlanif100]",
			"return":              "<r1>",
			"save":                "The current configuration will be written to the device. Continue?[Y/N]",
			"Y":                   "Save operation complete.",
		},
	}

	d := NewHuaweiVRP5()
	d.LineDelay = 0 // no pacing in tests

	res, err := d.Dispatch(context.Background(), sess, []string{"interface Vlanif100"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(sess.blocks) != 0 {
		t.Error("timing-based driver must not submit block writes")
	}
	want := []string{"system-view", "interface Vlanif100", "return", "save", "Y"}
	for _, cmd := range want {
		if !sentContains(sess.sent, cmd) {
			t.Errorf("command %q was not sent (sent: %v)", cmd, sess.sent)
		}
	}
	if !res.Persisted {
		t.Error("expected persisted result after save")
	}
}

func TestVRP5MidSequenceFailure(t *testing.T) {
	sess := &fakeSession{
		responses: map[string]string{
			"system-view": "[r1]",
			"vlan 100":    "[r1-vlan100]",
		},
		errors: map[string]error{
			"port default vlan 100": errors.New("read timeout"),
		},
	}

	d := NewHuaweiVRP5()
	d.LineDelay = 0

	_, err := d.Dispatch(context.Background(), sess, []string{"vlan 100", "port default vlan 100"})
	var de *DriverError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DriverError, got %v", err)
	}
	if !strings.Contains(de.Error(), untrustedStateNote) {
		t.Errorf("mid-sequence failure must flag untrusted state: %v", de)
	}
	if !strings.Contains(de.Output, "vlan 100") {
		t.Errorf("captured output missing earlier echoes: %q", de.Output)
	}
	if sentContains(sess.sent, "save") {
		t.Error("save must not run after a failed line")
	}
}

func TestRouterOSRejectsBadCommand(t *testing.T) {
	sess := &fakeSession{blockResp: "bad command name add (line 1 column 1)"}

	_, err := NewRouterOS7().Dispatch(context.Background(), sess, []string{"/ip address add"})
	var de *DriverError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DriverError, got %v", err)
	}
	if sentContains(sess.sent, "rollback configuration last 1") {
		t.Error("routeros driver must not attempt rollback")
	}
}

func TestRouterOSSuccess(t *testing.T) {
	sess := &fakeSession{blockResp: "[admin@sw1] >"}

	res, err := NewRouterOS7().Dispatch(context.Background(), sess, []string{"/ip address add address=10.0.0.1/24"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !res.Persisted {
		t.Error("routeros applies immediately; result should be persisted")
	}
}

func TestRouterOSExportConfig(t *testing.T) {
	sess := &fakeSession{
		responses: map[string]string{"/export file=netforge-backup": "[admin@sw1] >"},
	}

	_, remote, err := NewRouterOS7().ExportConfig(context.Background(), sess)
	if err != nil {
		t.Fatalf("ExportConfig failed: %v", err)
	}
	if remote != "/netforge-backup.rsc" {
		t.Errorf("unexpected remote export path: %q", remote)
	}
}

func TestRegistryUnknownVendor(t *testing.T) {
	r := Default()

	// nil session: an unknown vendor must fail before any session use.
	_, err := r.Dispatch(context.Background(), "cisco_ios", nil, []string{"hostname r1"})
	var uv *UnknownVendorError
	if !errors.As(err, &uv) {
		t.Fatalf("expected *UnknownVendorError, got %v", err)
	}
	if uv.Vendor != "cisco_ios" {
		t.Errorf("unexpected vendor in error: %q", uv.Vendor)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewRouterOS7()); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(NewRouterOS7()); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestDefaultRegistryVendors(t *testing.T) {
	got := Default().Vendors()
	want := []string{"huawei_vrp5", "huawei_vrp8", "routeros7"}
	if len(got) != len(want) {
		t.Fatalf("unexpected vendors: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vendors[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

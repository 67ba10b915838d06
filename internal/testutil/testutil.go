// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"sync"
	"testing"

	"github.com/XiaoConstantine/mendloop/pkg/logging"
)

// Requests the impoverished base configuration gets wrong, one per
// correctable failure class. Each drives a distinct patch synthesis path.
var (
	// The carrier accepts these; the base skill cannot parse them.
	UnknownUnitRequest   = "Ship 1 lb books box to US"
	UnknownDestRequest   = "Ship 2 kg books box to usa"
	UnknownItemRequest   = "Ship 2 kg battery box to US"
	UnknownParcelRequest = "Ship 2 kg books tube to EU"

	// The carrier rejects these; the base skill happily quotes them.
	HazmatRequest     = "Ship 2 kg battery box to US"
	ProhibitedRequest = "Ship 2 kg weapon box to US"
	LiquidRequest     = "Ship 2 kg perfume box to US"
	EmbargoRequest    = "Ship 1 kg books box to iran"
	OverweightRequest = "Ship 25 kg books box to US"
)

// CaptureOutput is a logging.Output that records entries in memory.
type CaptureOutput struct {
	mu      sync.Mutex
	entries []logging.LogEntry
}

// Write implements logging.Output.
func (c *CaptureOutput) Write(entry logging.LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

// Sync implements logging.Output.
func (c *CaptureOutput) Sync() error { return nil }

// Close implements logging.Output.
func (c *CaptureOutput) Close() error { return nil }

// Entries snapshots the recorded entries.
func (c *CaptureOutput) Entries() []logging.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]logging.LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Messages returns just the recorded messages, in order.
func (c *CaptureOutput) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]string, len(c.entries))
	for i, e := range c.entries {
		msgs[i] = e.Message
	}
	return msgs
}

// InstallCaptureLogger swaps the global logger for one writing into the
// returned capture, restoring the previous logger when the test ends.
func InstallCaptureLogger(t *testing.T, severity logging.Severity) *CaptureOutput {
	t.Helper()

	capture := &CaptureOutput{}
	previous := logging.GetLogger()
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: severity,
		Outputs:  []logging.Output{capture},
	}))
	t.Cleanup(func() {
		logging.SetLogger(previous)
	})
	return capture
}

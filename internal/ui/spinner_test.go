package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinner_StaticOutput(t *testing.T) {
	t.Setenv("GRIDKIT_NO_COLOR", "1")
	var buf bytes.Buffer
	s := &Spinner{message: "Fetching orders", out: &buf, done: make(chan struct{})}

	s.Start()
	s.Success("42 rows")
	s.Stop() // second stop is harmless

	got := buf.String()
	if !strings.Contains(got, "Fetching orders...") {
		t.Errorf("missing static message: %q", got)
	}
	if !strings.Contains(got, "+ 42 rows") {
		t.Errorf("missing success line: %q", got)
	}
}

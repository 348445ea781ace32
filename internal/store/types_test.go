package store

import (
	"strings"
	"testing"
	"time"
)

func TestRunSnapshot_ToInfo(t *testing.T) {
	snap := testSnapshot("run-1")
	info := snap.ToInfo()
	if info.RunID != snap.RunID || info.SimulatorName != snap.SimulatorName {
		t.Errorf("ToInfo mismatch: got %+v", info)
	}
	if info.ObjectPath != snap.Source.ObjectPath {
		t.Errorf("expected ObjectPath %q, got %q", snap.Source.ObjectPath, info.ObjectPath)
	}
}

func TestRunSnapshot_Validate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*RunSnapshot)
	}{
		{"empty object path", func(s *RunSnapshot) { s.Source.ObjectPath = "" }},
		{"empty material path", func(s *RunSnapshot) { s.Source.MaterialPath = "" }},
		{"empty simulator name", func(s *RunSnapshot) { s.SimulatorName = "" }},
		{"negative step", func(s *RunSnapshot) { s.Step = -1 }},
		{"zero timestamp", func(s *RunSnapshot) { s.Timestamp = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := testSnapshot("run-1")
			tc.modify(snap)
			if err := snap.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCompatibilityError_Message(t *testing.T) {
	err := &CompatibilityError{Field: "Optimizer", Expected: "structural", Actual: "identity"}
	msg := err.Error()
	if !strings.Contains(msg, "Optimizer") || !strings.Contains(msg, "structural") || !strings.Contains(msg, "identity") {
		t.Errorf("unexpected error message: %q", msg)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	if err.Error() != "validation error: RunID cannot be empty" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

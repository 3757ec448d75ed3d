package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/edustack/campusaudit/model"
)

func TestCSVEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"New York, NY", `"New York, NY"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line\nbreak", "\"line\nbreak\""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := csvEscape(tt.in); got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarshalCSV(t *testing.T) {
	subject := "bob"
	errMsg := `timeout, after "3" tries`
	events := []*model.AuditEvent{
		{
			ID:            7,
			EventType:     EventTypeLoginSuccess,
			EventCategory: CategoryAuthentication,
			Description:   "login from New York, NY",
			SubjectUserID: &subject,
			SourceIP:      "203.0.113.5",
			UserAgent:     "Mozilla/5.0",
			Succeeded:     true,
			RiskScore:     5,
			OccurredAt:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:           8,
			EventType:    EventTypeLoginFailure,
			ErrorMessage: &errMsg,
			OccurredAt:   time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC),
		},
	}

	lines := strings.Split(strings.TrimRight(string(marshalCSV(events)), "\r\n"), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(exportColumns, ",") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `"login from New York, NY"`) {
		t.Errorf("comma value not quoted: %q", lines[1])
	}
	if !strings.Contains(lines[1], "203.0.113.5") || !strings.Contains(lines[1], "true") {
		t.Errorf("row missing plain values: %q", lines[1])
	}
	if !strings.Contains(lines[2], `"timeout, after ""3"" tries"`) {
		t.Errorf("embedded quotes not doubled: %q", lines[2])
	}
}

func TestMarshalCSVEmpty(t *testing.T) {
	out := string(marshalCSV(nil))
	if out != strings.Join(exportColumns, ",")+"\r\n" {
		t.Errorf("expected header only, got %q", out)
	}
}

package audit

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2025, 3, 1, hour, 30, 0, 0, time.Local)
}

func TestRiskScoreFailedLoginAtNight(t *testing.T) {
	// Failed login for "alice" from curl at 2am: +10 failed login, +5 hour.
	// "curl" matches none of the bot markers, so no user-agent points.
	attempted := "alice"
	event := Normalize(Event{
		Type:            EventTypeLoginFailure,
		AttemptedUserID: attempted,
		OccurredAt:      at(2),
	}, &RequestInfo{SourceIP: "203.0.113.5", UserAgent: "curl/7.68.0", Method: "POST", Path: "/login"}, "srv", "1.0.0")

	if got := RiskScore(event); got != 15 {
		t.Errorf("expected score 15, got %d", got)
	}
	if event.Succeeded {
		t.Error("failed login marked succeeded")
	}
	if event.SubjectUserID != nil {
		t.Error("subject user must stay nil on failed authentication")
	}
	if event.AttemptedUserID == nil || *event.AttemptedUserID != "alice" {
		t.Error("attempted user not recorded")
	}
}

func TestRiskScoreAdminDaytimeLogin(t *testing.T) {
	// Successful login with ADMIN role at 10am, normal browser: +5 only.
	event := Normalize(Event{
		Type:          EventTypeLoginSuccess,
		SubjectUserID: "bob",
		Roles:         []string{"ADMIN", "USER"},
		Succeeded:     true,
		OccurredAt:    at(10),
	}, &RequestInfo{UserAgent: "Mozilla/5.0 (X11; Linux x86_64)"}, "srv", "1.0.0")

	if got := RiskScore(event); got != 5 {
		t.Errorf("expected score 5, got %d", got)
	}
}

func TestRiskScoreUserAgentRule(t *testing.T) {
	tests := []struct {
		userAgent string
		want      int
	}{
		{"Googlebot/2.1", 10},
		{"some-crawler/1.0", 10},
		{"SPIDER agent", 10},
		{"unknown", 10},
		{"Mozilla/5.0", 0},
		{"curl/7.68.0", 0},
	}
	for _, tt := range tests {
		event := Normalize(Event{
			Type:       "page_view",
			Succeeded:  true,
			OccurredAt: at(12),
		}, &RequestInfo{UserAgent: tt.userAgent}, "srv", "1.0.0")
		if got := RiskScore(event); got != tt.want {
			t.Errorf("user agent %q: got %d, want %d", tt.userAgent, got, tt.want)
		}
	}
}

func TestRiskScoreUnusualHourBoundaries(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{5, 5},  // before 6 is unusual
		{6, 0},  // inclusive lower bound of normal hours
		{22, 0}, // inclusive upper bound of normal hours
		{23, 5}, // after 22 is unusual
	}
	for _, tt := range tests {
		event := Normalize(Event{
			Type:       "page_view",
			Succeeded:  true,
			OccurredAt: at(tt.hour),
		}, &RequestInfo{UserAgent: "Mozilla/5.0"}, "srv", "1.0.0")
		if got := RiskScore(event); got != tt.want {
			t.Errorf("hour %d: got %d, want %d", tt.hour, got, tt.want)
		}
	}
}

func TestRiskScoreDeterministic(t *testing.T) {
	event := Normalize(Event{
		Type:            EventTypeLoginFailure,
		AttemptedUserID: "mallory",
		Roles:           []string{"SUPERADMIN"},
		OccurredAt:      at(3),
	}, &RequestInfo{UserAgent: "badbot/0.1"}, "srv", "1.0.0")

	first := RiskScore(event)
	second := RiskScore(event)
	if first != second {
		t.Errorf("score not deterministic: %d then %d", first, second)
	}
	// 10 failed login + 5 admin + 10 bot + 5 hour
	if first != 30 {
		t.Errorf("expected all four rules to stack to 30, got %d", first)
	}
	if first < 0 || first > 100 {
		t.Errorf("score out of range: %d", first)
	}
}

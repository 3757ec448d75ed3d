package audit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestNormalizeDefaults(t *testing.T) {
	before := time.Now()
	event := Normalize(Event{Type: "login_failure"}, nil, "", "")
	after := time.Now()

	if event.EventCategory != CategoryAuthentication {
		t.Errorf("expected default category %q, got %q", CategoryAuthentication, event.EventCategory)
	}
	if event.Description != "login_failure event" {
		t.Errorf("unexpected default description %q", event.Description)
	}
	if event.OccurredAt.Before(before) || event.OccurredAt.After(after) {
		t.Errorf("expected OccurredAt defaulted to now, got %v", event.OccurredAt)
	}
	if event.ServerName == "" {
		t.Error("expected server name defaulted to hostname")
	}
	if event.AppVersion != "1.0.0" {
		t.Errorf("expected default app version 1.0.0, got %q", event.AppVersion)
	}
	if event.SubjectUserID != nil || event.AttemptedUserID != nil {
		t.Error("expected empty identities to stay nil")
	}
	if event.Context != nil {
		t.Error("expected empty context to stay nil")
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	occurred := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	event := Normalize(Event{
		Type:        "audit_export",
		Category:    CategorySystem,
		Description: "manual export",
		OccurredAt:  occurred,
	}, nil, "app-server-1", "2.3.4")

	if event.EventCategory != CategorySystem {
		t.Errorf("explicit category overwritten: %q", event.EventCategory)
	}
	if event.Description != "manual export" {
		t.Errorf("explicit description overwritten: %q", event.Description)
	}
	if !event.OccurredAt.Equal(occurred) {
		t.Errorf("explicit OccurredAt overwritten: %v", event.OccurredAt)
	}
	if event.ServerName != "app-server-1" || event.AppVersion != "2.3.4" {
		t.Errorf("deployment metadata overwritten: %q %q", event.ServerName, event.AppVersion)
	}
}

func TestNormalizeRoles(t *testing.T) {
	tests := []struct {
		name  string
		roles any
		want  string
	}{
		{"nil", nil, ""},
		{"list", []string{"ADMIN", "USER"}, "ADMIN,USER"},
		{"joined string", "ADMIN,USER", "ADMIN,USER"},
		{"single", []string{"STAFF"}, "STAFF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Normalize(Event{Type: "login_success", Roles: tt.roles}, nil, "srv", "1.0.0")
			if event.RolesSnapshot != tt.want {
				t.Errorf("roles %v: got %q, want %q", tt.roles, event.RolesSnapshot, tt.want)
			}
		})
	}
}

func TestNormalizeSerializesContext(t *testing.T) {
	event := Normalize(Event{
		Type:    "audit_cleanup",
		Context: map[string]any{"deletedRows": 3},
	}, nil, "srv", "1.0.0")
	if event.Context == nil {
		t.Fatal("expected serialized context")
	}
	if *event.Context != `{"deletedRows":3}` {
		t.Errorf("unexpected context blob %q", *event.Context)
	}
}

func TestNormalizeRequestInfo(t *testing.T) {
	req := &RequestInfo{SourceIP: "203.0.113.5", UserAgent: "curl/7.68.0", Method: "POST", Path: "/api/v1/auth/login"}
	event := Normalize(Event{Type: "login_failure"}, req, "srv", "1.0.0")
	if event.SourceIP != "203.0.113.5" || event.UserAgent != "curl/7.68.0" {
		t.Errorf("request context not applied: %q %q", event.SourceIP, event.UserAgent)
	}
	if event.HTTPMethod != "POST" || event.HTTPPath != "/api/v1/auth/login" {
		t.Errorf("request line not applied: %q %q", event.HTTPMethod, event.HTTPPath)
	}

	noReq := Normalize(Event{Type: "audit_cleanup"}, nil, "srv", "1.0.0")
	if noReq.SourceIP != "" || noReq.UserAgent != "" || noReq.HTTPMethod != "" {
		t.Error("expected request fields absent without a request")
	}
}

func TestRequestInfoFromCtx(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		wantIP  string
		wantUA  string
	}{
		{
			name:    "forwarded chain",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1", "User-Agent": "curl/7.68.0"},
			wantIP:  "203.0.113.5",
			wantUA:  "curl/7.68.0",
		},
		{
			name:    "real ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			wantIP:  "198.51.100.7",
			wantUA:  "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *RequestInfo
			app := fiber.New()
			app.Get("/probe", func(c *fiber.Ctx) error {
				got = RequestInfoFromCtx(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/probe", nil)
			for key, val := range tt.headers {
				req.Header.Set(key, val)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if got == nil {
				t.Fatal("handler did not run")
			}
			if got.SourceIP != tt.wantIP {
				t.Errorf("source ip: got %q, want %q", got.SourceIP, tt.wantIP)
			}
			if got.UserAgent != tt.wantUA {
				t.Errorf("user agent: got %q, want %q", got.UserAgent, tt.wantUA)
			}
			if got.Method != "GET" || got.Path != "/probe" {
				t.Errorf("request line: got %q %q", got.Method, got.Path)
			}
		})
	}
}

package mail

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/edustack/campusaudit/model"
)

// RiskAlerter mails high-risk audit events to the configured recipients.
// Sends are best-effort: a delivery failure is logged and dropped, matching
// the never-blocking contract of the audit write path.
type RiskAlerter struct {
	sender     MailSender
	recipients []string
}

func NewRiskAlerter(sender MailSender, recipients []string) *RiskAlerter {
	return &RiskAlerter{
		sender:     sender,
		recipients: recipients,
	}
}

func (a *RiskAlerter) HighRiskEvent(event *model.AuditEvent) {
	if len(a.recipients) == 0 {
		return
	}
	var body strings.Builder
	fmt.Fprintf(&body, "A high risk audit event was recorded on %s.\n\n", event.ServerName)
	fmt.Fprintf(&body, "Event type:  %s\n", event.EventType)
	fmt.Fprintf(&body, "Risk score:  %d\n", event.RiskScore)
	fmt.Fprintf(&body, "Occurred at: %s\n", event.OccurredAt)
	if event.AttemptedUserID != nil {
		fmt.Fprintf(&body, "Attempted user: %s\n", *event.AttemptedUserID)
	}
	if event.SubjectUserID != nil {
		fmt.Fprintf(&body, "Subject user:   %s\n", *event.SubjectUserID)
	}
	if event.SourceIP != "" {
		fmt.Fprintf(&body, "Source IP:   %s\n", event.SourceIP)
	}
	if event.UserAgent != "" {
		fmt.Fprintf(&body, "User agent:  %s\n", event.UserAgent)
	}

	err := a.sender.Send(&Message{
		To:      a.recipients,
		Subject: fmt.Sprintf("[campusaudit] %s (risk %d)", event.EventType, event.RiskScore),
		Body:    body.String(),
	})
	if err != nil {
		slog.Warn("Failed to send risk alert mail", "eventId", event.ID, "error", err)
	}
}

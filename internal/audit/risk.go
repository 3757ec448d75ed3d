package audit

import (
	"strings"

	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
)

// Risk rule weights. Rules are independent and additive; no rule disables
// another. The sum is clamped to maxRiskScore so that future rules cannot
// push a stored score out of range.
const (
	riskFailedLogin  = 10
	riskAdminRole    = 5
	riskSuspiciousUA = 10
	riskUnusualHour  = 5
	maxRiskScore     = 100
)

var suspiciousUAMarkers = []string{"bot", "crawler", "spider"}

// RiskScore maps a normalized event to an integer in [0,100]. It is pure and
// deterministic for a given event: the hour rule reads the event's own
// OccurredAt, so a stored score stays a faithful record of what was believed
// at write time even if scoring rules change later.
func RiskScore(event *model.AuditEvent) int {
	score := 0
	if event.EventType == EventTypeLoginFailure {
		score += riskFailedLogin
	}
	if strings.Contains(event.RolesSnapshot, AdminRoleMarker) {
		score += riskAdminRole
	}
	if suspiciousUserAgent(event.UserAgent) {
		score += riskSuspiciousUA
	}
	hour := event.OccurredAt.Hour()
	if hour < params.UnusualHourBefore || hour > params.UnusualHourAfter {
		score += riskUnusualHour
	}
	if score > maxRiskScore {
		score = maxRiskScore
	}
	return score
}

func suspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	if ua == unknownValue {
		return true
	}
	for _, marker := range suspiciousUAMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

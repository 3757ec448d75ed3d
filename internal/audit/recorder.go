package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
)

// Alerter is notified of freshly recorded events whose score reaches the
// alert threshold. Implementations must not block.
type Alerter interface {
	HighRiskEvent(event *model.AuditEvent)
}

// RecordResult identifies a durably written audit event.
type RecordResult struct {
	ID         uint64
	RecordedAt time.Time
}

// Recorder is the only write path into the audit ledger. Writes are
// best-effort: a storage failure is logged and swallowed so that the
// business operation that triggered the event is never aborted by an audit
// outage. Callers therefore get a nil result instead of an error.
type Recorder struct {
	repo       AuditEventRepository
	serverName string
	appVersion string
	alerter    Alerter
}

func NewRecorder(repo AuditEventRepository, serverName string, appVersion string, alerter Alerter) *Recorder {
	return &Recorder{
		repo:       repo,
		serverName: serverName,
		appVersion: appVersion,
		alerter:    alerter,
	}
}

// Record normalizes, scores and persists an event. Returns nil if the write
// failed. Must never be called inside a business transaction.
func (r *Recorder) Record(ctx context.Context, evt Event, req *RequestInfo) *RecordResult {
	event := Normalize(evt, req, r.serverName, r.appVersion)
	event.RiskScore = RiskScore(event)
	if err := r.repo.Create(ctx, event); err != nil {
		slog.Error("Failed to record audit event", "type", evt.Type, "error", err)
		return nil
	}
	if r.alerter != nil && event.RiskScore >= params.AlertRiskThreshold {
		go r.alerter.HighRiskEvent(event)
	}
	return &RecordResult{ID: event.ID, RecordedAt: event.RecordedAt}
}

// LoginRecord describes an authentication attempt.
type LoginRecord struct {
	Username  string
	Roles     []string
	SessionID string
	Success   bool
	Reason    string
}

// RecordLogin writes a login event. On failure only the attempted identity
// is recorded; the subject principal stays empty.
func (r *Recorder) RecordLogin(ctx context.Context, record LoginRecord, req *RequestInfo) *RecordResult {
	evt := Event{
		Type:            EventTypeLoginFailure,
		Category:        CategoryAuthentication,
		AttemptedUserID: record.Username,
		SessionID:       record.SessionID,
		ErrorMessage:    record.Reason,
	}
	if record.Success {
		evt.Type = EventTypeLoginSuccess
		evt.Succeeded = true
		evt.SubjectUserID = record.Username
		evt.AttemptedUserID = ""
		evt.Roles = record.Roles
		evt.ErrorMessage = ""
	}
	return r.Record(ctx, evt, req)
}

package model

import "time"

// AuditEvent is a write-once ledger row. Rows are inserted by the recorder,
// bulk-deleted by retention cleanup and never updated. No other table
// references it by foreign key.
type AuditEvent struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType       string    `gorm:"size:64;not null;index:idx_audit_type_time,priority:1" json:"eventType"`
	EventCategory   string    `gorm:"size:32;not null" json:"eventCategory"` // authentication, user-management, data-change, system
	Description     string    `gorm:"size:512;not null" json:"description"`
	SubjectUserID   *string   `gorm:"size:64;index:idx_audit_user_time,priority:1" json:"subjectUserId"`   // authenticated principal, nil on failed auth
	AttemptedUserID *string   `gorm:"size:64;index:idx_audit_attempt,priority:1" json:"attemptedUserId"`   // identifier presented in the attempt
	RolesSnapshot   string    `gorm:"size:256" json:"rolesSnapshot"`                                       // comma-joined roles valid at event time
	SessionID       string    `gorm:"size:64" json:"sessionId"`
	SourceIP        string    `gorm:"size:45;index:idx_audit_ip_time,priority:1" json:"sourceIp"`
	UserAgent       string    `gorm:"size:512" json:"userAgent"`
	HTTPMethod      string    `gorm:"size:8" json:"httpMethod"`
	HTTPPath        string    `gorm:"size:256" json:"httpPath"`
	Succeeded       bool      `gorm:"not null;index:idx_audit_attempt,priority:2" json:"succeeded"`
	ErrorCode       *string   `gorm:"size:64" json:"errorCode"`
	ErrorMessage    *string   `gorm:"size:512" json:"errorMessage"`
	Context         *string   `gorm:"type:text" json:"context"` // serialized JSON side channel, nil if absent
	RiskScore       int       `gorm:"not null;index:idx_audit_risk_time,priority:1" json:"riskScore"`
	ServerName      string    `gorm:"size:128" json:"serverName"`
	AppVersion      string    `gorm:"size:32" json:"appVersion"`
	OccurredAt      time.Time `gorm:"not null;index:idx_audit_type_time,priority:2;index:idx_audit_user_time,priority:2;index:idx_audit_attempt,priority:3;index:idx_audit_ip_time,priority:2;index:idx_audit_risk_time,priority:2" json:"occurredAt"`
	RecordedAt      time.Time `gorm:"autoCreateTime" json:"recordedAt"`
}

func (AuditEvent) TableName() string {
	return "audit_event"
}

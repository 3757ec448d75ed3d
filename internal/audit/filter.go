package audit

import (
	"time"

	"gorm.io/gorm"
)

// EventFilter is the shared filter surface of the list and export
// operations. Zero values mean "no constraint".
type EventFilter struct {
	ID        uint64     // exact match on the surrogate key
	EventType string     // exact match
	UserID    string     // substring match on subject or attempted identity
	Succeeded *bool      //
	From      *time.Time // inclusive
	To        *time.Time // inclusive
	SourceIP  string     // substring match
	MinRisk   *int       //
	Search    string     // free text across description, identities, error message, user agent
}

func (f EventFilter) apply(db *gorm.DB) *gorm.DB {
	if f.ID != 0 {
		db = db.Where("id = ?", f.ID)
	}
	if f.EventType != "" {
		db = db.Where("event_type = ?", f.EventType)
	}
	if f.UserID != "" {
		pattern := "%" + f.UserID + "%"
		db = db.Where("subject_user_id LIKE ? OR attempted_user_id LIKE ?", pattern, pattern)
	}
	if f.Succeeded != nil {
		db = db.Where("succeeded = ?", *f.Succeeded)
	}
	if f.From != nil {
		db = db.Where("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("occurred_at <= ?", *f.To)
	}
	if f.SourceIP != "" {
		db = db.Where("source_ip LIKE ?", "%"+f.SourceIP+"%")
	}
	if f.MinRisk != nil {
		db = db.Where("risk_score >= ?", *f.MinRisk)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		db = db.Where(
			"description LIKE ? OR subject_user_id LIKE ? OR attempted_user_id LIKE ? OR error_message LIKE ? OR user_agent LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	return db
}

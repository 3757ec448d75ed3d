package audit

import (
	"context"
	"time"

	"github.com/edustack/campusaudit/model"
	"gorm.io/gorm"
)

type EventTypeCount struct {
	EventType string `json:"eventType"`
	Count     int64  `json:"count"`
}

type IPFailureCount struct {
	SourceIP string `json:"sourceIp"`
	Failures int64  `json:"failures"`
}

// SummaryStats aggregates the ledger over a trailing window.
type SummaryStats struct {
	WindowDays    int                  `json:"windowDays"`
	TotalEvents   int64                `json:"totalEvents"`
	Succeeded     int64                `json:"succeeded"`
	Failed        int64                `json:"failed"`
	DistinctUsers int64                `json:"distinctUsers"`
	DistinctIPs   int64                `json:"distinctIps"`
	AverageRisk   float64              `json:"averageRisk"`
	MaxRisk       int                  `json:"maxRisk"`
	HighRiskCount int64                `json:"highRiskCount"`
	ByEventType   []EventTypeCount     `json:"byEventType"`
	TopFailedIPs  []IPFailureCount     `json:"topFailedIps"`
	RecentNotable []*model.AuditEvent  `json:"recentNotable"`
}

// UserStats is the per-user mini summary attached to a history query.
type UserStats struct {
	TotalEvents  int64      `json:"totalEvents"`
	Succeeded    int64      `json:"succeeded"`
	Failed       int64      `json:"failed"`
	AverageRisk  float64    `json:"averageRisk"`
	DistinctIPs  int64      `json:"distinctIps"`
	LastActivity *time.Time `json:"lastActivity"`
}

type AuditEventRepository interface {
	Create(ctx context.Context, event *model.AuditEvent) error
	Find(ctx context.Context, filter EventFilter, offset int, limit int) ([]*model.AuditEvent, error)
	Count(ctx context.Context, filter EventFilter) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Summarize(ctx context.Context, since time.Time, highRisk int, notable int, topN int) (*SummaryStats, error)
	UserEvents(ctx context.Context, userID string, since time.Time, limit int) ([]*model.AuditEvent, error)
	UserSummary(ctx context.Context, userID string, since time.Time) (*UserStats, error)
}

type auditEventRepository struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepository{db}
}

func (r *auditEventRepository) events(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.AuditEvent{})
}

func (r *auditEventRepository) Create(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditEventRepository) Find(ctx context.Context, filter EventFilter, offset int, limit int) ([]*model.AuditEvent, error) {
	var events []*model.AuditEvent
	err := filter.apply(r.events(ctx)).
		Order("occurred_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *auditEventRepository) Count(ctx context.Context, filter EventFilter) (int64, error) {
	var count int64
	err := filter.apply(r.events(ctx)).Count(&count).Error
	return count, err
}

func (r *auditEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("occurred_at < ?", cutoff).Delete(&model.AuditEvent{})
	return result.RowsAffected, result.Error
}

func (r *auditEventRepository) Summarize(ctx context.Context, since time.Time, highRisk int, notable int, topN int) (*SummaryStats, error) {
	stats := &SummaryStats{
		ByEventType:   []EventTypeCount{},
		TopFailedIPs:  []IPFailureCount{},
		RecentNotable: []*model.AuditEvent{},
	}
	window := func() *gorm.DB {
		return r.events(ctx).Where("occurred_at >= ?", since)
	}

	if err := window().Count(&stats.TotalEvents).Error; err != nil {
		return nil, err
	}
	if err := window().Where("succeeded = ?", true).Count(&stats.Succeeded).Error; err != nil {
		return nil, err
	}
	stats.Failed = stats.TotalEvents - stats.Succeeded

	if err := window().Where("subject_user_id IS NOT NULL").Distinct("subject_user_id").Count(&stats.DistinctUsers).Error; err != nil {
		return nil, err
	}
	if err := window().Where("source_ip <> ''").Distinct("source_ip").Count(&stats.DistinctIPs).Error; err != nil {
		return nil, err
	}

	var risk struct {
		Avg float64
		Max int
	}
	if err := window().Select("COALESCE(AVG(risk_score), 0) AS avg, COALESCE(MAX(risk_score), 0) AS max").Scan(&risk).Error; err != nil {
		return nil, err
	}
	stats.AverageRisk = risk.Avg
	stats.MaxRisk = risk.Max

	if err := window().Where("risk_score > ?", highRisk).Count(&stats.HighRiskCount).Error; err != nil {
		return nil, err
	}

	if err := window().
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Order("count DESC").
		Scan(&stats.ByEventType).Error; err != nil {
		return nil, err
	}

	if err := window().
		Select("source_ip, COUNT(*) AS failures").
		Where("succeeded = ? AND source_ip <> ''", false).
		Group("source_ip").
		Order("failures DESC").
		Limit(topN).
		Scan(&stats.TopFailedIPs).Error; err != nil {
		return nil, err
	}

	if err := window().
		Where("risk_score > ?", notable).
		Order("occurred_at DESC").
		Limit(topN).
		Find(&stats.RecentNotable).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *auditEventRepository) userScope(ctx context.Context, userID string, since time.Time) *gorm.DB {
	return r.events(ctx).
		Where("occurred_at >= ?", since).
		Where("subject_user_id = ? OR attempted_user_id = ?", userID, userID)
}

func (r *auditEventRepository) UserEvents(ctx context.Context, userID string, since time.Time, limit int) ([]*model.AuditEvent, error) {
	var events []*model.AuditEvent
	err := r.userScope(ctx, userID, since).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *auditEventRepository) UserSummary(ctx context.Context, userID string, since time.Time) (*UserStats, error) {
	stats := &UserStats{}
	if err := r.userScope(ctx, userID, since).Count(&stats.TotalEvents).Error; err != nil {
		return nil, err
	}
	if err := r.userScope(ctx, userID, since).Where("succeeded = ?", true).Count(&stats.Succeeded).Error; err != nil {
		return nil, err
	}
	stats.Failed = stats.TotalEvents - stats.Succeeded

	var avg struct{ Avg float64 }
	if err := r.userScope(ctx, userID, since).Select("COALESCE(AVG(risk_score), 0) AS avg").Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AverageRisk = avg.Avg

	if err := r.userScope(ctx, userID, since).Where("source_ip <> ''").Distinct("source_ip").Count(&stats.DistinctIPs).Error; err != nil {
		return nil, err
	}

	if stats.TotalEvents > 0 {
		var last struct{ Last time.Time }
		if err := r.userScope(ctx, userID, since).Select("MAX(occurred_at) AS last").Scan(&last).Error; err != nil {
			return nil, err
		}
		stats.LastActivity = &last.Last
	}
	return stats, nil
}

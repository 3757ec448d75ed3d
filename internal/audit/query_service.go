package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/edustack/campusaudit/internal/store"
	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
)

// EventPage is one page of a filtered listing plus pagination metadata.
type EventPage struct {
	Events []*model.AuditEvent `json:"events"`
	Total  int64               `json:"total"`
	Page   int                 `json:"page"`
	Limit  int                 `json:"limit"`
}

// UserHistory bundles a user's recent events with their mini summary.
type UserHistory struct {
	UserID  string              `json:"userId"`
	Events  []*model.AuditEvent `json:"events"`
	Summary *UserStats          `json:"summary"`
}

// QueryService is the admin-facing read/maintenance surface over the audit
// ledger. All numeric inputs are clamped to their documented caps rather
// than rejected.
type QueryService struct {
	repo     AuditEventRepository
	recorder *Recorder
	cache    store.Store[SummaryStats]
}

// NewQueryService wires the query layer. cache may be nil to disable
// summary caching.
func NewQueryService(repo AuditEventRepository, recorder *Recorder, cache store.Store[SummaryStats]) *QueryService {
	return &QueryService{
		repo:     repo,
		recorder: recorder,
		cache:    cache,
	}
}

func (s *QueryService) List(ctx context.Context, filter EventFilter, page int, limit int) (*EventPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = params.EventListDefaultLimit
	}
	if limit > params.EventListMaxLimit {
		limit = params.EventListMaxLimit
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.Find(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &EventPage{Events: events, Total: total, Page: page, Limit: limit}, nil
}

func (s *QueryService) Summary(ctx context.Context, days int) (*SummaryStats, error) {
	if days <= 0 {
		days = params.SummaryDefaultDays
	}
	if days > params.SummaryMaxDays {
		days = params.SummaryMaxDays
	}

	cacheKey := strconv.Itoa(days)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			return &cached, nil
		}
	}

	since := time.Now().AddDate(0, 0, -days)
	stats, err := s.repo.Summarize(ctx, since, params.HighRiskThreshold, params.NotableRiskThreshold, params.SummaryTopN)
	if err != nil {
		return nil, err
	}
	stats.WindowDays = days

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, *stats, params.SummaryCacheTTL); err != nil {
			slog.Warn("Failed to cache audit summary", "error", err)
		}
	}
	return stats, nil
}

func (s *QueryService) UserHistory(ctx context.Context, userID string, days int, limit int) (*UserHistory, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if days <= 0 {
		days = params.UserHistoryDefaultDays
	}
	if days > params.UserHistoryMaxDays {
		days = params.UserHistoryMaxDays
	}
	if limit <= 0 {
		limit = params.UserHistoryDefaultLimit
	}
	if limit > params.UserHistoryMaxLimit {
		limit = params.UserHistoryMaxLimit
	}

	since := time.Now().AddDate(0, 0, -days)
	events, err := s.repo.UserEvents(ctx, userID, since, limit)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.UserSummary(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return &UserHistory{UserID: userID, Events: events, Summary: summary}, nil
}

// Cleanup deletes events older than the requested retention. Retention below
// the 30-day floor is silently raised. The cleanup itself is recorded as an
// audit event, including on failure.
func (s *QueryService) Cleanup(ctx context.Context, retentionDays int, actor string, req *RequestInfo) (int64, error) {
	requested := retentionDays
	if retentionDays < params.RetentionFloorDays {
		retentionDays = params.RetentionFloorDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)

	evt := Event{
		Type:          EventTypeAuditCleanup,
		Category:      CategorySystem,
		SubjectUserID: actor,
		Succeeded:     err == nil,
		Context: map[string]any{
			"requestedDays": requested,
			"effectiveDays": retentionDays,
			"deletedRows":   deleted,
		},
	}
	if err != nil {
		evt.ErrorMessage = err.Error()
	}
	s.recorder.Record(ctx, evt, req)

	return deleted, err
}

// ExportCSV renders the filtered ledger as CSV, capped at 10k rows, and
// records the export with its filter parameters and row count.
func (s *QueryService) ExportCSV(ctx context.Context, filter EventFilter, actor string, req *RequestInfo) ([]byte, int, error) {
	events, err := s.repo.Find(ctx, filter, 0, params.ExportMaxRows)
	if err != nil {
		return nil, 0, err
	}
	data := marshalCSV(events)

	s.recorder.Record(ctx, Event{
		Type:          EventTypeAuditExport,
		Category:      CategorySystem,
		SubjectUserID: actor,
		Succeeded:     true,
		Context: map[string]any{
			"filter":   filterContext(filter),
			"rowCount": len(events),
		},
	}, req)

	return data, len(events), nil
}

func filterContext(filter EventFilter) map[string]any {
	out := map[string]any{}
	if filter.EventType != "" {
		out["eventType"] = filter.EventType
	}
	if filter.UserID != "" {
		out["userId"] = filter.UserID
	}
	if filter.Succeeded != nil {
		out["succeeded"] = *filter.Succeeded
	}
	if filter.From != nil {
		out["from"] = filter.From.Format(time.RFC3339)
	}
	if filter.To != nil {
		out["to"] = filter.To.Format(time.RFC3339)
	}
	if filter.SourceIP != "" {
		out["sourceIp"] = filter.SourceIP
	}
	if filter.MinRisk != nil {
		out["minRisk"] = *filter.MinRisk
	}
	if filter.Search != "" {
		out["search"] = filter.Search
	}
	return out
}

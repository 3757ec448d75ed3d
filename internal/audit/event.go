package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

const (
	EventTypeLoginSuccess      = "login_success"
	EventTypeLoginFailure      = "login_failure"
	EventTypeAccountLocked     = "account_locked"
	EventTypeStudentCreated    = "student_created"
	EventTypeStudentDeleted    = "student_deleted"
	EventTypeStudentBulkImport = "student_bulk_import"
	EventTypeAuditExport       = "audit_export"
	EventTypeAuditCleanup      = "audit_cleanup"
)

const (
	CategoryAuthentication = "authentication"
	CategoryUserManagement = "user-management"
	CategoryDataChange     = "data-change"
	CategorySystem         = "system"
)

// AdminRoleMarker flags admin-tier principals in a roles snapshot.
// SUPERADMIN matches as well since the marker is a substring check.
const AdminRoleMarker = "ADMIN"

const unknownValue = "unknown"

// Event is a partially-filled event description. Type is required; every
// other field defaults during normalization. Roles accepts either a
// []string or an already comma-joined string.
type Event struct {
	Type            string
	Category        string
	Description     string
	SubjectUserID   string
	AttemptedUserID string
	Roles           any
	SessionID       string
	Succeeded       bool
	ErrorCode       string
	ErrorMessage    string
	Context         map[string]any
	OccurredAt      time.Time // zero means now
}

// RequestInfo carries the request-context fields of an audit event. Nil when
// the event was not triggered by an inbound request.
type RequestInfo struct {
	SourceIP  string
	UserAgent string
	Method    string
	Path      string
}

// RequestInfoFromCtx extracts request context from a fiber request. The
// source IP is taken from the first X-Forwarded-For entry, then X-Real-IP,
// then the socket address.
func RequestInfoFromCtx(c *fiber.Ctx) *RequestInfo {
	info := &RequestInfo{
		SourceIP:  unknownValue,
		UserAgent: unknownValue,
		Method:    unknownValue,
		Path:      unknownValue,
	}
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		info.SourceIP = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	} else if realIP := c.Get("X-Real-IP"); realIP != "" {
		info.SourceIP = realIP
	} else if ip := c.IP(); ip != "" {
		info.SourceIP = ip
	}
	if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
		info.UserAgent = ua
	}
	if method := c.Method(); method != "" {
		info.Method = method
	}
	if path := c.Path(); path != "" {
		info.Path = path
	}
	return info
}

// Normalize fills every defaulted field of an event description and returns
// the pre-score, pre-id candidate row. It is a pure transform: nothing is
// written and no error is possible. Callers must set evt.Type; an empty type
// produces a row with an empty tag rather than an error.
func Normalize(evt Event, req *RequestInfo, serverName, appVersion string) *model.AuditEvent {
	event := &model.AuditEvent{
		EventType:       evt.Type,
		EventCategory:   evt.Category,
		Description:     evt.Description,
		SubjectUserID:   optional(evt.SubjectUserID),
		AttemptedUserID: optional(evt.AttemptedUserID),
		RolesSnapshot:   joinRoles(evt.Roles),
		SessionID:       evt.SessionID,
		Succeeded:       evt.Succeeded,
		ErrorCode:       optional(evt.ErrorCode),
		ErrorMessage:    optional(evt.ErrorMessage),
		Context:         serializeContext(evt.Context),
		ServerName:      serverName,
		AppVersion:      appVersion,
		OccurredAt:      evt.OccurredAt,
	}
	if event.EventCategory == "" {
		event.EventCategory = CategoryAuthentication
	}
	if event.Description == "" {
		event.Description = fmt.Sprintf("%s event", evt.Type)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if event.ServerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = unknownValue
		}
		event.ServerName = hostname
	}
	if event.AppVersion == "" {
		event.AppVersion = params.DefaultAppVersion
	}
	if req != nil {
		event.SourceIP = req.SourceIP
		event.UserAgent = req.UserAgent
		event.HTTPMethod = req.Method
		event.HTTPPath = req.Path
	}
	return event
}

func joinRoles(roles any) string {
	if roles == nil {
		return ""
	}
	if list, err := cast.ToStringSliceE(roles); err == nil {
		return strings.Join(list, ",")
	}
	return cast.ToString(roles)
}

func serializeContext(context map[string]any) *string {
	if len(context) == 0 {
		return nil
	}
	data, err := json.Marshal(context)
	if err != nil {
		return nil
	}
	blob := string(data)
	return &blob
}

func optional(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}

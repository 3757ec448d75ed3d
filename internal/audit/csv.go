package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/edustack/campusaudit/model"
	"github.com/valyala/bytebufferpool"
)

// Fixed column subset for CSV exports. Kept stable so downstream tooling can
// rely on the header.
var exportColumns = []string{
	"id", "occurred_at", "event_type", "event_category",
	"subject_user_id", "attempted_user_id", "source_ip", "user_agent",
	"succeeded", "risk_score", "description", "error_message",
}

// marshalCSV renders events as RFC4180 CSV. Values are quoted only when they
// contain a comma, quote or newline; embedded quotes are doubled.
func marshalCSV(events []*model.AuditEvent) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeCSVRow(buf, exportColumns)
	for _, event := range events {
		writeCSVRow(buf, []string{
			strconv.FormatUint(event.ID, 10),
			event.OccurredAt.Format(time.RFC3339),
			event.EventType,
			event.EventCategory,
			stringValue(event.SubjectUserID),
			stringValue(event.AttemptedUserID),
			event.SourceIP,
			event.UserAgent,
			strconv.FormatBool(event.Succeeded),
			strconv.Itoa(event.RiskScore),
			event.Description,
			stringValue(event.ErrorMessage),
		})
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func writeCSVRow(buf *bytebufferpool.ByteBuffer, values []string) {
	for i, val := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(csvEscape(val))
	}
	buf.WriteString("\r\n")
}

func csvEscape(val string) string {
	if !strings.ContainsAny(val, ",\"\n\r") {
		return val
	}
	return "\"" + strings.ReplaceAll(val, "\"", "\"\"") + "\""
}

func stringValue(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}

package students

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
	"gorm.io/gorm"
)

type ImportResult struct {
	Rows     int   `json:"rows"`
	Affected int64 `json:"affected"`
	Skipped  int   `json:"skipped"` // rows failing validation
}

// BulkImport reads a CSV with an admission_no/first_name/... header row and
// upserts students keyed by admission number, in chunks, inside one
// transaction. Rows failing the format checks are skipped, not fatal.
func (s *StudentService) BulkImport(ctx context.Context, r io.Reader, actor string, req *audit.RequestInfo) (*ImportResult, error) {
	students, skipped, err := parseImportCSV(r)

	result := &ImportResult{Rows: len(students), Skipped: skipped}
	if err == nil {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			for start := 0; start < len(students); start += params.StudentImportChunkSize {
				end := min(start+params.StudentImportChunkSize, len(students))
				affected, txErr := repo.UpsertBatch(ctx, students[start:end])
				if txErr != nil {
					return txErr
				}
				result.Affected += affected
			}
			return nil
		})
	}

	evt := audit.Event{
		Type:          audit.EventTypeStudentBulkImport,
		Category:      audit.CategoryDataChange,
		SubjectUserID: actor,
		Succeeded:     err == nil,
		Context: map[string]any{
			"rows":    result.Rows,
			"skipped": result.Skipped,
		},
	}
	if err != nil {
		evt.ErrorMessage = err.Error()
	}
	s.recorder.Record(ctx, evt, req)

	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseImportCSV(r io.Reader) ([]*model.Student, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, ErrImportEmpty
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var students []*model.Student
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(students) >= params.StudentImportMaxRows {
			return nil, 0, ErrImportTooLarge
		}

		input := CreateStudentInput{
			AdmissionNo:  field(record, "admission_no"),
			FirstName:    field(record, "first_name"),
			LastName:     field(record, "last_name"),
			ClassName:    field(record, "class_name"),
			Section:      field(record, "section"),
			GuardianName: field(record, "guardian_name"),
			GuardianPAN:  field(record, "guardian_pan"),
			AadhaarNo:    field(record, "aadhaar_no"),
			Email:        field(record, "email"),
			Phone:        field(record, "phone"),
		}
		if input.Validate() != nil {
			skipped++
			continue
		}
		students = append(students, &model.Student{
			ID:           model.GenerateID(),
			AdmissionNo:  input.AdmissionNo,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			ClassName:    input.ClassName,
			Section:      input.Section,
			GuardianName: input.GuardianName,
			GuardianPAN:  input.GuardianPAN,
			AadhaarNo:    input.AadhaarNo,
			Email:        input.Email,
			Phone:        input.Phone,
		})
	}
	if len(students) == 0 && skipped == 0 {
		return nil, 0, ErrImportEmpty
	}
	return students, skipped, nil
}

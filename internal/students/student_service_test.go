package students

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*StudentService, *gorm.DB, audit.AuditEventRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	auditRepo := audit.NewAuditEventRepository(db)
	recorder := audit.NewRecorder(auditRepo, "test-server", "1.0.0", nil)
	return NewStudentService(db, NewStudentRepository(db), recorder), db, auditRepo
}

func validInput() CreateStudentInput {
	return CreateStudentInput{
		AdmissionNo:  "ADM-1001",
		FirstName:    "Asha",
		LastName:     "Verma",
		ClassName:    "VII",
		Section:      "B",
		GuardianName: "R Verma",
		GuardianPAN:  "ABCDE1234F",
		AadhaarNo:    "123412341234",
	}
}

func TestCreateStudentWritesMirrors(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	student, err := svc.CreateStudent(ctx, validInput(), "admin", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if student.ID == 0 {
		t.Fatal("expected a generated id")
	}

	var finance model.StudentFinance
	if err := db.Where("student_id = ?", student.ID).First(&finance).Error; err != nil {
		t.Fatalf("finance mirror missing: %v", err)
	}
	if finance.AdmissionNo != student.AdmissionNo || finance.FeeBalance != 0 {
		t.Errorf("unexpected finance mirror: %+v", finance)
	}

	var progress model.StudentProgress
	if err := db.Where("student_id = ?", student.ID).First(&progress).Error; err != nil {
		t.Fatalf("progress mirror missing: %v", err)
	}
	if progress.ClassName != "VII" {
		t.Errorf("unexpected progress mirror: %+v", progress)
	}

	// the admission is audited as a data-change event
	var events []*model.AuditEvent
	if err := db.Where("event_type = ?", audit.EventTypeStudentCreated).Find(&events).Error; err != nil {
		t.Fatalf("audit lookup failed: %v", err)
	}
	if len(events) != 1 || !events[0].Succeeded || events[0].EventCategory != audit.CategoryDataChange {
		t.Errorf("unexpected audit trail: %+v", events)
	}
}

func TestCreateStudentValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateStudentInput)
		wantErr error
	}{
		{"missing admission no", func(in *CreateStudentInput) { in.AdmissionNo = "" }, ErrAdmissionNoRequired},
		{"missing first name", func(in *CreateStudentInput) { in.FirstName = "" }, ErrFirstNameRequired},
		{"bad pan", func(in *CreateStudentInput) { in.GuardianPAN = "1234ABCDE" }, ErrInvalidPAN},
		{"lowercase pan", func(in *CreateStudentInput) { in.GuardianPAN = "abcde1234f" }, ErrInvalidPAN},
		{"short aadhaar", func(in *CreateStudentInput) { in.AadhaarNo = "1234" }, ErrInvalidAadhaar},
		{"alpha aadhaar", func(in *CreateStudentInput) { in.AadhaarNo = "12341234123a" }, ErrInvalidAadhaar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			if _, err := svc.CreateStudent(ctx, input, "admin", nil); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	// optional fields may be empty
	input := validInput()
	input.GuardianPAN = ""
	input.AadhaarNo = ""
	if _, err := svc.CreateStudent(ctx, input, "admin", nil); err != nil {
		t.Errorf("empty optional fields rejected: %v", err)
	}
}

func TestDeleteStudentCascadesMirrors(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	student, err := svc.CreateStudent(ctx, validInput(), "admin", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteStudent(ctx, student.ID, "admin", nil); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var count int64
	db.Model(&model.StudentFinance{}).Where("student_id = ?", student.ID).Count(&count)
	if count != 0 {
		t.Error("finance mirror survived delete")
	}
	db.Model(&model.StudentProgress{}).Where("student_id = ?", student.ID).Count(&count)
	if count != 0 {
		t.Error("progress mirror survived delete")
	}

	if err := svc.DeleteStudent(ctx, student.ID, "admin", nil); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("double delete: got %v", err)
	}
}

func TestBulkImportUpserts(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	first := "admission_no,first_name,last_name,class_name\n" +
		"ADM-1,Asha,Verma,VII\n" +
		"ADM-2,Rohan,Iyer,VIII\n"
	result, err := svc.BulkImport(ctx, strings.NewReader(first), "admin", nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Rows != 2 || result.Skipped != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	// re-import with one change and one invalid row
	second := "admission_no,first_name,last_name,class_name,guardian_pan\n" +
		"ADM-1,Asha,Sharma,VII,\n" +
		"ADM-3,Kiran,Rao,VI,NOTAPAN\n"
	result, err = svc.BulkImport(ctx, strings.NewReader(second), "admin", nil)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if result.Rows != 1 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	var count int64
	db.Model(&model.Student{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 students after upsert, got %d", count)
	}
	var student model.Student
	if err := db.Where("admission_no = ?", "ADM-1").First(&student).Error; err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if student.LastName != "Sharma" {
		t.Errorf("upsert did not update: %q", student.LastName)
	}
}

func TestBulkImportEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.BulkImport(context.Background(), strings.NewReader(""), "admin", nil); !errors.Is(err, ErrImportEmpty) {
		t.Errorf("empty body: got %v", err)
	}
}

package students

import (
	"context"
	"errors"
	"regexp"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/model"
	"gorm.io/gorm"
)

var (
	panRegexp     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarRegexp = regexp.MustCompile(`^[0-9]{12}$`)
)

type CreateStudentInput struct {
	AdmissionNo  string `json:"admissionNo"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ClassName    string `json:"className"`
	Section      string `json:"section"`
	GuardianName string `json:"guardianName"`
	GuardianPAN  string `json:"guardianPan"`
	AadhaarNo    string `json:"aadhaarNo"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

func (in *CreateStudentInput) Validate() error {
	if in.AdmissionNo == "" {
		return ErrAdmissionNoRequired
	}
	if in.FirstName == "" {
		return ErrFirstNameRequired
	}
	if in.GuardianPAN != "" && !panRegexp.MatchString(in.GuardianPAN) {
		return ErrInvalidPAN
	}
	if in.AadhaarNo != "" && !aadhaarRegexp.MatchString(in.AadhaarNo) {
		return ErrInvalidAadhaar
	}
	return nil
}

type StudentService struct {
	db       *gorm.DB
	repo     StudentRepository
	recorder *audit.Recorder
}

func NewStudentService(db *gorm.DB, repo StudentRepository, recorder *audit.Recorder) *StudentService {
	return &StudentService{
		db:       db,
		repo:     repo,
		recorder: recorder,
	}
}

// CreateStudent inserts the student row and its finance and progress mirrors
// in a single transaction. The audit write happens after the transaction
// settles so an audit outage can never roll back the admission.
func (s *StudentService) CreateStudent(ctx context.Context, input CreateStudentInput, actor string, req *audit.RequestInfo) (*model.Student, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	student := &model.Student{
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
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, student); err != nil {
			return err
		}
		if err := repo.CreateFinance(ctx, &model.StudentFinance{
			ID:          model.GenerateID(),
			StudentID:   student.ID,
			AdmissionNo: student.AdmissionNo,
		}); err != nil {
			return err
		}
		return repo.CreateProgress(ctx, &model.StudentProgress{
			ID:          model.GenerateID(),
			StudentID:   student.ID,
			AdmissionNo: student.AdmissionNo,
			ClassName:   student.ClassName,
		})
	})

	evt := audit.Event{
		Type:          audit.EventTypeStudentCreated,
		Category:      audit.CategoryDataChange,
		SubjectUserID: actor,
		Succeeded:     err == nil,
		Context: map[string]any{
			"admissionNo": student.AdmissionNo,
		},
	}
	if err != nil {
		evt.ErrorMessage = err.Error()
	}
	s.recorder.Record(ctx, evt, req)

	if err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) GetStudent(ctx context.Context, id uint) (*model.Student, error) {
	student, err := s.repo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	return student, err
}

// DeleteStudent removes the student and both mirrors in one transaction.
func (s *StudentService) DeleteStudent(ctx context.Context, id uint, actor string, req *audit.RequestInfo) error {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		deleted, txErr = s.repo.WithTx(tx).DeleteByID(ctx, id)
		return txErr
	})
	if err == nil && deleted == 0 {
		err = ErrStudentNotFound
	}

	evt := audit.Event{
		Type:          audit.EventTypeStudentDeleted,
		Category:      audit.CategoryDataChange,
		SubjectUserID: actor,
		Succeeded:     err == nil,
		Context: map[string]any{
			"studentId": id,
		},
	}
	if err != nil {
		evt.ErrorMessage = err.Error()
	}
	s.recorder.Record(ctx, evt, req)
	return err
}

package students

import (
	"context"

	"github.com/edustack/campusaudit/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository interface {
	WithTx(tx *gorm.DB) StudentRepository
	Create(ctx context.Context, student *model.Student) error
	CreateFinance(ctx context.Context, finance *model.StudentFinance) error
	CreateProgress(ctx context.Context, progress *model.StudentProgress) error
	FirstByID(ctx context.Context, id uint) (*model.Student, error)
	DeleteByID(ctx context.Context, id uint) (int64, error)
	UpsertBatch(ctx context.Context, students []*model.Student) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

func (r *studentRepository) WithTx(tx *gorm.DB) StudentRepository {
	return NewStudentRepository(tx)
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) CreateFinance(ctx context.Context, finance *model.StudentFinance) error {
	return r.db.WithContext(ctx).Create(finance).Error
}

func (r *studentRepository) CreateProgress(ctx context.Context, progress *model.StudentProgress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *studentRepository) FirstByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) DeleteByID(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Student{})
	if result.Error != nil {
		return 0, result.Error
	}
	if err := r.db.WithContext(ctx).Where("student_id = ?", id).Delete(&model.StudentFinance{}).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Where("student_id = ?", id).Delete(&model.StudentProgress{}).Error; err != nil {
		return 0, err
	}
	return result.RowsAffected, nil
}

// UpsertBatch inserts the batch, updating the mutable columns of rows whose
// admission number already exists.
func (r *studentRepository) UpsertBatch(ctx context.Context, students []*model.Student) (int64, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "admission_no"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "class_name", "section",
			"guardian_name", "guardian_pan", "aadhaar_no", "email", "phone",
		}),
	}).Create(&students)
	return result.RowsAffected, result.Error
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db}
}

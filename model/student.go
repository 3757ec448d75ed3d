package model

import "time"

type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdmissionNo  string    `gorm:"size:32;not null;uniqueIndex" json:"admissionNo"`
	FirstName    string    `gorm:"size:64;not null" json:"firstName"`
	LastName     string    `gorm:"size:64" json:"lastName"`
	ClassName    string    `gorm:"size:32;index" json:"className"`
	Section      string    `gorm:"size:8" json:"section"`
	GuardianName string    `gorm:"size:128" json:"guardianName"`
	GuardianPAN  string    `gorm:"size:10" json:"guardianPan"`     // AAAAA9999A
	AadhaarNo    string    `gorm:"size:12" json:"aadhaarNo"`       // 12 digits
	Email        string    `gorm:"size:128" json:"email"`
	Phone        string    `gorm:"size:16" json:"phone"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Student) TableName() string {
	return "student"
}

// StudentFinance mirrors a student row into the fee-tracking table. Created
// in the same transaction as the student record.
type StudentFinance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;uniqueIndex" json:"studentId"`
	AdmissionNo string    `gorm:"size:32;not null" json:"admissionNo"`
	FeeBalance  int64     `gorm:"not null;default:0" json:"feeBalance"` // paise
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (StudentFinance) TableName() string {
	return "student_finance"
}

// StudentProgress mirrors a student row into the academic-progress table.
type StudentProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;uniqueIndex" json:"studentId"`
	AdmissionNo string    `gorm:"size:32;not null" json:"admissionNo"`
	ClassName   string    `gorm:"size:32" json:"className"`
	Remarks     string    `gorm:"size:512" json:"remarks"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

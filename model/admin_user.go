package model

import "time"

type AdminUser struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:128;not null"`
	FullName     string    `gorm:"size:128"`
	Email        string    `gorm:"size:128"`
	Roles        string    `gorm:"size:256;not null"` // comma-joined, e.g. "SUPERADMIN,STAFF"
	Disabled     bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (AdminUser) TableName() string {
	return "admin_user"
}

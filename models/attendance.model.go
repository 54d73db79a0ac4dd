package models

import (
	"time"

	"gorm.io/gorm"
)

type Attendance struct {
	gorm.Model
	StudentID uint      `gorm:"index;not null;uniqueIndex:unique_attendance"`
	CourseID  uint      `gorm:"index;not null;uniqueIndex:unique_attendance"`
	Date      time.Time `gorm:"not null;uniqueIndex:unique_attendance"`
	Status    string    `gorm:"default:'absent'"` // present, absent, late
	MarkedBy  *uint
	Notes     string

	Course *Course `gorm:"foreignKey:CourseID"`
}

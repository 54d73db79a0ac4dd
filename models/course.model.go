package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	CourseCode  string `gorm:"unique;not null"`
	CourseName  string `gorm:"not null"`
	Description string
	Credits     int    `gorm:"default:3"`
	Semester    int    `gorm:"not null"`
	Year        int    `gorm:"not null"`
	Department  string `gorm:"not null"`
	FacultyID   *uint  `gorm:"index"`
	IsActive    bool   `gorm:"default:true"`

	Faculty *Faculty `gorm:"foreignKey:FacultyID"`
}

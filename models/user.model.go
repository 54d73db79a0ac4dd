package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username    string `gorm:"unique;not null"`
	Email       string `gorm:"unique;not null"`
	Password    string `gorm:"not null"`
	Role        string `gorm:"default:'STUDENT'"` // STUDENT, FACULTY, ADMIN
	FirstName   string `gorm:"not null"`
	LastName    string `gorm:"not null"`
	StudentId   string
	YearOfStudy int
	Phone       string     `gorm:"default:''"`
	LastLogin   *time.Time `json:"last_login"`
	IsActive    bool       `gorm:"default:true"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsStudent() bool {
	return u.Role == "STUDENT"
}

func (u *User) IsFaculty() bool {
	return u.Role == "FACULTY"
}

func (u *User) IsAdmin() bool {
	return u.Role == "ADMIN"
}

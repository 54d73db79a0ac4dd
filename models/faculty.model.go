package models

import "gorm.io/gorm"

// Faculty is a staff profile linked to a user account
type Faculty struct {
	gorm.Model
	UserID         *uint  `gorm:"index"`
	EmployeeId     string `gorm:"unique;not null"`
	Department     string `gorm:"not null"`
	Designation    string `gorm:"not null"`
	Specialization string
	OfficeLocation string
	OfficeHours    string
	Bio            string
	ImageUrl       string
	IsActive       bool `gorm:"default:true"`

	User *User `gorm:"foreignKey:UserID"`
}

// Name returns the faculty display name from the linked user account
func (f *Faculty) Name() string {
	if f.User != nil {
		return f.User.FullName()
	}
	return "Unknown Faculty"
}

func (f *Faculty) Email() string {
	if f.User != nil {
		return f.User.Email
	}
	return ""
}

func (f *Faculty) Phone() string {
	if f.User != nil {
		return f.User.Phone
	}
	return ""
}

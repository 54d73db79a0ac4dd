package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	Title       string    `gorm:"not null"`
	Description string
	EventType   string    `gorm:"default:'other'"` // academic, cultural, sports, holiday, exam, other
	StartDate   time.Time `gorm:"not null;index"`
	EndDate     *time.Time
	StartTime   string
	EndTime     string
	Location    string
	Organizer   string
	IsHoliday   bool `gorm:"default:false"`
	IsActive    bool `gorm:"default:true"`
	CreatedBy   *uint
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizSession is one instance of a user being asked a quiz question.
// At most one session per user may be active with a null answer at a time.
type QuizSession struct {
	gorm.Model
	UserID       uint   `gorm:"index;not null"`
	QuizID       uint   `gorm:"index;not null"`
	SessionID    string `gorm:"not null"` // chat session token
	IsActive     bool   `gorm:"default:true"`
	UserAnswer   *string
	IsCorrect    *bool
	PointsEarned int `gorm:"default:0"`
	AnsweredAt   *time.Time

	Quiz *Quiz `gorm:"foreignKey:QuizID"`
}

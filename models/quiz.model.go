package models

import (
	"strings"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	Question      string `gorm:"not null"`
	OptionA       string `gorm:"not null"`
	OptionB       string `gorm:"not null"`
	OptionC       string
	OptionD       string
	CorrectAnswer string `gorm:"not null"` // A, B, C or D
	Explanation   string
	Subject       string `gorm:"not null"`
	Difficulty    string `gorm:"default:'medium'"` // easy, medium, hard
	Category      string `gorm:"default:'general'"`
	Points        int    `gorm:"default:1"`
	IsActive      bool   `gorm:"default:true"`
	CreatedBy     *uint
}

// CheckAnswer grades a single-letter answer against the stored correct option
func (q *Quiz) CheckAnswer(userAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(userAnswer), q.CorrectAnswer)
}

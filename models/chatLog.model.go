package models

import "gorm.io/gorm"

// ChatLog is an append-only record of one processed message
type ChatLog struct {
	gorm.Model
	UserID          uint   `gorm:"index;not null"`
	SessionID       string
	UserMessage     string `gorm:"not null"`
	BotResponse     string `gorm:"not null"`
	Intent          string
	ConfidenceScore float64
	ResponseTimeMs  int64
	IpAddress       string
	UserAgent       string
}

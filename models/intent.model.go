package models

import "gorm.io/gorm"

// Intent is a persisted intent definition. Patterns and Responses hold JSON
// arrays; malformed rows are skipped at load time.
type Intent struct {
	gorm.Model
	IntentName      string `gorm:"unique;not null"`
	Description     string
	Patterns        string `gorm:"not null"` // JSON array of regex patterns
	Responses       string `gorm:"not null"` // JSON array of response templates
	HandlerFunction string
	Priority        int  `gorm:"default:0"`
	IsActive        bool `gorm:"default:true"`
	CreatedBy       *uint
}

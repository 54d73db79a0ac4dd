package models

import (
	"strings"

	"gorm.io/gorm"
)

// QuickAction is an administrator-authored question/answer pair consulted
// before intent classification.
type QuickAction struct {
	gorm.Model
	Question   string `gorm:"not null"`
	Response   string `gorm:"not null"`
	Category   string
	Keywords   string // comma-separated keywords for matching
	IsActive   bool   `gorm:"default:true"`
	Priority   int    `gorm:"default:5"` // higher number = higher priority
	UsageCount int    `gorm:"default:0"`
	CreatedBy  *uint
}

// KeywordsList splits the stored keywords, each trimmed and lowercased
func (qa *QuickAction) KeywordsList() []string {
	if qa.Keywords == "" {
		return nil
	}
	var keywords []string
	for _, k := range strings.Split(qa.Keywords, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// MatchesQuery reports whether this Q&A matches the user query. The query
// matches when it is a substring of the question, or when it contains or is
// contained by any single keyword.
func (qa *QuickAction) MatchesQuery(query string) bool {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return false
	}

	if strings.Contains(strings.ToLower(qa.Question), queryLower) {
		return true
	}

	for _, keyword := range qa.KeywordsList() {
		if strings.Contains(queryLower, keyword) || strings.Contains(keyword, queryLower) {
			return true
		}
	}

	return false
}

// IncrementUsage bumps the usage counter and persists it immediately
func (qa *QuickAction) IncrementUsage(db *gorm.DB) error {
	qa.UsageCount++
	return db.Model(qa).Update("usage_count", qa.UsageCount).Error
}

// SearchForAnswer returns up to limit active Q&A entries matching the query,
// best first (priority desc, then usage count desc).
func SearchForAnswer(db *gorm.DB, query string, limit int) ([]QuickAction, error) {
	var quickActions []QuickAction
	if err := db.Where("is_active = ?", true).
		Order("priority desc").
		Order("usage_count desc").
		Find(&quickActions).Error; err != nil {
		return nil, err
	}

	var matches []QuickAction
	for _, qa := range quickActions {
		if qa.MatchesQuery(query) {
			matches = append(matches, qa)
			if len(matches) >= limit {
				break
			}
		}
	}

	return matches, nil
}

// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormQuestion 题库条目
type GormQuestion struct {
	gorm.Model
	QuestionID string `gorm:"uniqueIndex;not null"`
	Mode       string `gorm:"index;not null"`
	Content    string `gorm:"not null"`
	Type       string `gorm:"not null;default:QUESTION"`
	Points     int    `gorm:"not null;default:10"`
}

// GormGameMode 游戏模式目录
type GormGameMode struct {
	gorm.Model
	ModeID      string `gorm:"uniqueIndex;not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Description string
	Emoji       string
	EmojiURL    string
	ImageURL    string
}

// Question 转换为线上模型
func (q *GormQuestion) Question() Question {
	return Question{
		ID:      q.QuestionID,
		Content: q.Content,
		Type:    QuestionType(q.Type),
		Points:  q.Points,
	}
}

// GameMode 转换为线上模型
func (m *GormGameMode) GameMode() GameMode {
	return GameMode{
		ID:          m.ModeID,
		Slug:        m.Slug,
		Name:        m.Name,
		Description: m.Description,
		Emoji:       m.Emoji,
		EmojiURL:    m.EmojiURL,
		ImageURL:    m.ImageURL,
	}
}

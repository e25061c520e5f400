// internal/model/progress.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// FlashcardProgress はユーザーごとの単語カード習熟状況を表します。
// クイズの回答ごとに更新され、correct_streak が閾値に達すると is_learned になります。
// レコードは初回回答時に遅延作成され、エンジン側から削除されることはありません。
type FlashcardProgress struct {
	ProgressID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_user_flashcard,unique"` // 複合ユニークインデックスの一部
	FlashcardID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_flashcard,unique"` // 複合ユニークインデックスの一部
	CorrectStreak  int       `gorm:"not null;default:0"`
	IsLearned      bool      `gorm:"not null;default:false;index"`
	ReviewCount    int       `gorm:"not null;default:0"`
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// 関連 (Preload用)
	Flashcard *Flashcard `gorm:"foreignKey:FlashcardID;references:FlashcardID" json:"-"`
}

func (FlashcardProgress) TableName() string {
	return "user_flashcard_progress"
}

// ProgressResponse は習熟状況のレスポンスDTO
type ProgressResponse struct {
	FlashcardID    uuid.UUID  `json:"flashcard_id"`
	Front          string     `json:"front"`
	CorrectStreak  int        `json:"correct_streak"`
	IsLearned      bool       `json:"is_learned"`
	ReviewCount    int        `json:"review_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

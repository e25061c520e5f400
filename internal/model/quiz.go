// internal/model/quiz.go
package model

import "github.com/google/uuid"

// QuizQuestion は穴埋めクイズ1問を表します。永続化されない派生データです。
// Options は正解1つ + ダミー最大3つをシャッフルした提示順です。
type QuizQuestion struct {
	FlashcardID   uuid.UUID `json:"flashcard_id"`
	Sentence      string    `json:"sentence"` // 見出し語を ______ に置換済みの例文
	CorrectAnswer string    `json:"correct_answer"`
	Options       []string  `json:"options"`
}

// QuizSessionResponse はクイズセッション開始時のレスポンスDTO
type QuizSessionResponse struct {
	Questions      []*QuizQuestion `json:"questions"`
	TotalQuestions int             `json:"total_questions"`
	RequiredStreak int             `json:"required_streak"`
}

// SubmitQuizAnswerRequest はクイズ回答送信リクエストのDTO
type SubmitQuizAnswerRequest struct {
	IsCorrect *bool `json:"is_correct" validate:"required"`
	// 省略時は設定値 (app.required_streak) を使用。1〜3以外はエラー。
	RequiredStreak *int `json:"required_streak,omitempty"`
}

// SubmitQuizAnswerResponse は回答送信後の習熟状況レスポンス
type SubmitQuizAnswerResponse struct {
	FlashcardID   uuid.UUID `json:"flashcard_id"`
	CorrectStreak int       `json:"correct_streak"`
	IsLearned     bool      `json:"is_learned"`
	ReviewCount   int       `json:"review_count"`
}

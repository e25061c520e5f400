// internal/model/flashcard.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Flashcard は単語カードを表します。
// front が見出し語、back が訳語で、AI から取得した語義・例文などを保持します。
type Flashcard struct {
	FlashcardID       uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"flashcard_id"`
	UserID            uuid.UUID                     `gorm:"type:uuid;not null;index" json:"-"`
	Front             string                        `gorm:"not null" json:"front"` // 見出し語
	Back              string                        `gorm:"not null" json:"back"`  // 訳語
	Phonetic          string                        `json:"phonetic,omitempty"`
	ChineseDefinition string                        `json:"chinese_definition,omitempty"`
	EnglishDefinition string                        `json:"english_definition,omitempty"`
	Synonyms          datatypes.JSONSlice[string]   `json:"synonyms,omitempty"`
	Antonyms          datatypes.JSONSlice[string]   `json:"antonyms,omitempty"`
	RelatedWords      datatypes.JSONSlice[string]   `json:"related_words,omitempty"`
	ImageURL          string                        `json:"image_url,omitempty"`
	ExampleSentence1  string                        `json:"example_sentence_1,omitempty"`
	ExampleTranslation1 string                      `json:"example_translation_1,omitempty"`
	ExampleSource1    string                        `json:"example_source_1,omitempty"`
	ExampleSentence2  string                        `json:"example_sentence_2,omitempty"`
	ExampleTranslation2 string                      `json:"example_translation_2,omitempty"`
	ExampleSource2    string                        `json:"example_source_2,omitempty"`
	ExampleSentence3  string                        `json:"example_sentence_3,omitempty"`
	ExampleTranslation3 string                      `json:"example_translation_3,omitempty"`
	ExampleSource3    string                        `json:"example_source_3,omitempty"`
	IsFavorite        bool                          `gorm:"default:false" json:"is_favorite"`
	CreatedAt         time.Time                     `json:"created_at"`
	UpdatedAt         time.Time                     `json:"updated_at"`
	DeletedAt         gorm.DeletedAt                `gorm:"index" json:"-"` // 論理削除用

	// 関連 (Preload用)
	Progress *FlashcardProgress `gorm:"foreignKey:FlashcardID;references:FlashcardID" json:"-"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}

// HasExampleSentence はクイズ・復習の対象となる例文を持つかどうかを返します。
// クイズの出題対象は例文1に限る (元仕様どおり)。
func (f *Flashcard) HasExampleSentence() bool {
	return f.ExampleSentence1 != ""
}

// ExamplePair は例文と訳のペアです
type ExamplePair struct {
	Sentence    string
	Translation string
}

// ExamplePairs は設定されている例文を順番どおり返します。空の例文は含めません。
func (f *Flashcard) ExamplePairs() []ExamplePair {
	pairs := make([]ExamplePair, 0, 3)
	for _, p := range []ExamplePair{
		{f.ExampleSentence1, f.ExampleTranslation1},
		{f.ExampleSentence2, f.ExampleTranslation2},
		{f.ExampleSentence3, f.ExampleTranslation3},
	} {
		if p.Sentence != "" {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// 単語カード作成リクエストDTO
type PostFlashcardRequest struct {
	Front string `json:"front" validate:"required,min=1,max=100"`
	Back  string `json:"back" validate:"required,min=1"`

	Phonetic          string   `json:"phonetic,omitempty"`
	ChineseDefinition string   `json:"chinese_definition,omitempty"`
	EnglishDefinition string   `json:"english_definition,omitempty"`
	Synonyms          []string `json:"synonyms,omitempty"`
	Antonyms          []string `json:"antonyms,omitempty"`
	RelatedWords      []string `json:"related_words,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	ExampleSentence1  string   `json:"example_sentence_1,omitempty"`
	ExampleTranslation1 string `json:"example_translation_1,omitempty"`
	ExampleSource1    string   `json:"example_source_1,omitempty"`
	ExampleSentence2  string   `json:"example_sentence_2,omitempty"`
	ExampleTranslation2 string `json:"example_translation_2,omitempty"`
	ExampleSource2    string   `json:"example_source_2,omitempty"`
	ExampleSentence3  string   `json:"example_sentence_3,omitempty"`
	ExampleTranslation3 string `json:"example_translation_3,omitempty"`
	ExampleSource3    string   `json:"example_source_3,omitempty"`
}

// 単語カード更新（部分）リクエストDTO
type PatchFlashcardRequest struct {
	Front *string `json:"front,omitempty" validate:"omitempty,min=1,max=100"`
	Back  *string `json:"back,omitempty" validate:"omitempty,min=1"`

	Phonetic          *string   `json:"phonetic,omitempty"`
	ChineseDefinition *string   `json:"chinese_definition,omitempty"`
	EnglishDefinition *string   `json:"english_definition,omitempty"`
	Synonyms          *[]string `json:"synonyms,omitempty"`
	Antonyms          *[]string `json:"antonyms,omitempty"`
	RelatedWords      *[]string `json:"related_words,omitempty"`
	ImageURL          *string   `json:"image_url,omitempty"`
	ExampleSentence1  *string   `json:"example_sentence_1,omitempty"`
	ExampleTranslation1 *string `json:"example_translation_1,omitempty"`
	ExampleSource1    *string   `json:"example_source_1,omitempty"`
	ExampleSentence2  *string   `json:"example_sentence_2,omitempty"`
	ExampleTranslation2 *string `json:"example_translation_2,omitempty"`
	ExampleSource2    *string   `json:"example_source_2,omitempty"`
	ExampleSentence3  *string   `json:"example_sentence_3,omitempty"`
	ExampleTranslation3 *string `json:"example_translation_3,omitempty"`
	ExampleSource3    *string   `json:"example_source_3,omitempty"`
	IsFavorite        *bool     `json:"is_favorite,omitempty"`
}

// Excelインポートの結果サマリDTO
type ImportFlashcardsResponse struct {
	ImportedCount int      `json:"imported_count"`
	SkippedRows   []int    `json:"skipped_rows,omitempty"` // front/back が欠けている行番号
}

// internal/model/book.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WordBook は単語カードをまとめる単語帳を表します
type WordBook struct {
	BookID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"book_id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `json:"description,omitempty"`
	CoverImageURL string         `json:"cover_image_url,omitempty"`
	Tag           string         `gorm:"index" json:"tag,omitempty"`
	IsPurchased   bool           `gorm:"default:false" json:"is_purchased"`
	Price         *int           `json:"price,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// 関連 (Preload用)
	Cards []WordBookCard `gorm:"foreignKey:BookID;references:BookID" json:"-"`
}

func (WordBook) TableName() string {
	return "word_books"
}

// WordBookCard は単語帳への単語カードの登録 (並び順つき) を表します
type WordBookCard struct {
	CardID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"card_id"`
	BookID      uuid.UUID `gorm:"type:uuid;not null;index:idx_book_flashcard,unique" json:"book_id"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null;index:idx_book_flashcard,unique" json:"flashcard_id"`
	Position    int       `gorm:"not null" json:"position"`
	AddedAt     time.Time `gorm:"autoCreateTime" json:"added_at"`

	Flashcard *Flashcard `gorm:"foreignKey:FlashcardID;references:FlashcardID" json:"-"`
}

func (WordBookCard) TableName() string {
	return "word_book_cards"
}

// 単語帳作成リクエストDTO
type PostWordBookRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=100"`
	Description   string `json:"description,omitempty" validate:"omitempty,max=500"`
	CoverImageURL string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Tag           string `json:"tag,omitempty" validate:"omitempty,max=50"`
	Price         *int   `json:"price,omitempty" validate:"omitempty,min=0"`
}

// 単語帳更新（部分）リクエストDTO
type PatchWordBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=500"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Tag           *string `json:"tag,omitempty" validate:"omitempty,max=50"`
	Price         *int    `json:"price,omitempty" validate:"omitempty,min=0"`
}

// 単語帳へのカード追加リクエストDTO
type AddBookCardsRequest struct {
	FlashcardIDs []uuid.UUID `json:"flashcard_ids" validate:"required,min=1,dive,required"`
}

// WordBookResponse は単語帳一覧のレスポンスDTO (カード数つき)
type WordBookResponse struct {
	BookID        uuid.UUID `json:"book_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	Tag           string    `json:"tag,omitempty"`
	IsPurchased   bool      `json:"is_purchased"`
	Price         *int      `json:"price,omitempty"`
	CardCount     int64     `json:"card_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// WordBookDetailResponse は単語帳詳細 (position順のカードつき) のレスポンスDTO
type WordBookDetailResponse struct {
	WordBookResponse
	Cards []*Flashcard `json:"cards"`
}

// ToResponse はカード数を添えたレスポンスDTOへ変換します
func (b *WordBook) ToResponse(cardCount int64) *WordBookResponse {
	return &WordBookResponse{
		BookID:        b.BookID,
		Title:         b.Title,
		Description:   b.Description,
		CoverImageURL: b.CoverImageURL,
		Tag:           b.Tag,
		IsPurchased:   b.IsPurchased,
		Price:         b.Price,
		CardCount:     cardCount,
		CreatedAt:     b.CreatedAt,
	}
}

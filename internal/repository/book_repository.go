// internal/repository/book_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
)

type BookRepository interface {
	Create(ctx context.Context, tx *gorm.DB, book *model.WordBook) error
	FindByID(ctx context.Context, db *gorm.DB, userID, bookID uuid.UUID) (*model.WordBook, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, tag string) ([]*model.WordBook, error)
	Update(ctx context.Context, tx *gorm.DB, userID, bookID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, userID, bookID uuid.UUID) error

	CountCards(ctx context.Context, db *gorm.DB, bookID uuid.UUID) (int64, error)
	FindCards(ctx context.Context, db *gorm.DB, bookID uuid.UUID) ([]*model.WordBookCard, error)
	MaxCardPosition(ctx context.Context, db *gorm.DB, bookID uuid.UUID) (int, error)
	AddCards(ctx context.Context, tx *gorm.DB, cards []*model.WordBookCard) error
	RemoveCard(ctx context.Context, tx *gorm.DB, bookID, flashcardID uuid.UUID) error
}

type gormBookRepository struct{}

func NewGormBookRepository() BookRepository {
	return &gormBookRepository{}
}

func (r *gormBookRepository) Create(ctx context.Context, tx *gorm.DB, book *model.WordBook) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(book)
	if result.Error != nil {
		logger.Error("Error creating word book in DB",
			"error", result.Error,
			"user_id", book.UserID.String(),
			"title", book.Title,
		)
		return fmt.Errorf("gormBookRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormBookRepository) FindByID(ctx context.Context, db *gorm.DB, userID, bookID uuid.UUID) (*model.WordBook, error) {
	var book model.WordBook
	result := db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&book)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormBookRepository.FindByID: %w", result.Error)
	}
	return &book, nil
}

func (r *gormBookRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, tag string) ([]*model.WordBook, error) {
	var books []*model.WordBook
	query := db.WithContext(ctx).Where("user_id = ?", userID)
	if tag != "" {
		query = query.Where("tag = ?", tag)
	}
	result := query.Order("created_at DESC").Find(&books)
	if result.Error != nil {
		return nil, fmt.Errorf("gormBookRepository.FindByUser: %w", result.Error)
	}
	return books, nil
}

func (r *gormBookRepository) Update(ctx context.Context, tx *gorm.DB, userID, bookID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).
		Model(&model.WordBook{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormBookRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormBookRepository) Delete(ctx context.Context, tx *gorm.DB, userID, bookID uuid.UUID) error {
	// 登録カードを先に消してから単語帳本体を論理削除する
	if err := tx.WithContext(ctx).Where("book_id = ?", bookID).Delete(&model.WordBookCard{}).Error; err != nil {
		return fmt.Errorf("gormBookRepository.Delete cards: %w", err)
	}
	result := tx.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.WordBook{})
	if result.Error != nil {
		return fmt.Errorf("gormBookRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormBookRepository) CountCards(ctx context.Context, db *gorm.DB, bookID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.WordBookCard{}).
		Where("book_id = ?", bookID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormBookRepository.CountCards: %w", result.Error)
	}
	return count, nil
}

func (r *gormBookRepository) FindCards(ctx context.Context, db *gorm.DB, bookID uuid.UUID) ([]*model.WordBookCard, error) {
	var cards []*model.WordBookCard
	result := db.WithContext(ctx).
		Preload("Flashcard", "deleted_at IS NULL").
		Where("book_id = ?", bookID).
		Order("position ASC").
		Find(&cards)
	if result.Error != nil {
		return nil, fmt.Errorf("gormBookRepository.FindCards: %w", result.Error)
	}
	return cards, nil
}

func (r *gormBookRepository) MaxCardPosition(ctx context.Context, db *gorm.DB, bookID uuid.UUID) (int, error) {
	var max *int
	result := db.WithContext(ctx).
		Model(&model.WordBookCard{}).
		Where("book_id = ?", bookID).
		Select("MAX(position)").
		Scan(&max)
	if result.Error != nil {
		return 0, fmt.Errorf("gormBookRepository.MaxCardPosition: %w", result.Error)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *gormBookRepository) AddCards(ctx context.Context, tx *gorm.DB, cards []*model.WordBookCard) error {
	if len(cards) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Create(cards)
	if result.Error != nil {
		return fmt.Errorf("gormBookRepository.AddCards: %w", result.Error)
	}
	return nil
}

func (r *gormBookRepository) RemoveCard(ctx context.Context, tx *gorm.DB, bookID, flashcardID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("book_id = ? AND flashcard_id = ?", bookID, flashcardID).
		Delete(&model.WordBookCard{})
	if result.Error != nil {
		return fmt.Errorf("gormBookRepository.RemoveCard: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

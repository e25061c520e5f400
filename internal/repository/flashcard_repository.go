// internal/repository/flashcard_repository.go
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

type FlashcardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, card *model.Flashcard) error
	CreateBatch(ctx context.Context, tx *gorm.DB, cards []*model.Flashcard) error
	FindByID(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) (*model.Flashcard, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.Flashcard, error)
	// FindUnlearnedByUser は習得済みでない (進捗レコードなし含む) カードを返します
	FindUnlearnedByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.Flashcard, error)
	Update(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID) error
	CheckFrontExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, front string, excludeID *uuid.UUID) (bool, error)
}

type gormFlashcardRepository struct{}

func NewGormFlashcardRepository() FlashcardRepository {
	return &gormFlashcardRepository{}
}

func (r *gormFlashcardRepository) Create(ctx context.Context, tx *gorm.DB, card *model.Flashcard) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(card)
	if result.Error != nil {
		logger.Error("Error creating flashcard in DB",
			"error", result.Error,
			"user_id", card.UserID.String(),
			"front", card.Front,
		)
		return fmt.Errorf("gormFlashcardRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormFlashcardRepository) CreateBatch(ctx context.Context, tx *gorm.DB, cards []*model.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(cards)
	if result.Error != nil {
		logger.Error("Error batch creating flashcards in DB", "error", result.Error, "count", len(cards))
		return fmt.Errorf("gormFlashcardRepository.CreateBatch: %w", result.Error)
	}
	return nil
}

func (r *gormFlashcardRepository) FindByID(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) (*model.Flashcard, error) {
	var card model.Flashcard
	result := db.WithContext(ctx).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormFlashcardRepository.FindByID: %w", result.Error)
	}
	return &card, nil
}

func (r *gormFlashcardRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.Flashcard, error) {
	var cards []*model.Flashcard
	result := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&cards)
	if result.Error != nil {
		return nil, fmt.Errorf("gormFlashcardRepository.FindByUser: %w", result.Error)
	}
	return cards, nil
}

func (r *gormFlashcardRepository) FindUnlearnedByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.Flashcard, error) {
	var cards []*model.Flashcard
	// 進捗レコードが存在しないカードも「未習得」として扱う
	query := db.WithContext(ctx).
		Where("flashcards.user_id = ?", userID).
		Where(`NOT EXISTS (
			SELECT 1 FROM user_flashcard_progress p
			WHERE p.flashcard_id = flashcards.flashcard_id
			  AND p.user_id = flashcards.user_id
			  AND p.is_learned = ?
		)`, true).
		Order("flashcards.created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&cards)
	if result.Error != nil {
		return nil, fmt.Errorf("gormFlashcardRepository.FindUnlearnedByUser: %w", result.Error)
	}
	return cards, nil
}

func (r *gormFlashcardRepository) Update(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).
		Model(&model.Flashcard{}).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating flashcard in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"flashcard_id", flashcardID.String(),
		)
		return fmt.Errorf("gormFlashcardRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFlashcardRepository) Delete(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		Delete(&model.Flashcard{})
	if result.Error != nil {
		logger.Error("Error deleting flashcard in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"flashcard_id", flashcardID.String(),
		)
		return fmt.Errorf("gormFlashcardRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFlashcardRepository) CheckFrontExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, front string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := db.WithContext(ctx).
		Model(&model.Flashcard{}).
		Where("user_id = ? AND front = ?", userID, front)
	if excludeID != nil {
		query = query.Where("flashcard_id != ?", *excludeID)
	}
	result := query.Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormFlashcardRepository.CheckFrontExists: %w", result.Error)
	}
	return count > 0, nil
}

// internal/repository/progress_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/model"
)

type ProgressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, progress *model.FlashcardProgress) error // トランザクション対応
	FindByFlashcardID(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) (*model.FlashcardProgress, error)
	Update(ctx context.Context, tx *gorm.DB, progress *model.FlashcardProgress) error // トランザクション対応
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FlashcardProgress, error)
	// LearnedIDsByUser は習得済みカードIDの集合を返します (クイズの出題対象除外用)
	LearnedIDsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) (map[uuid.UUID]bool, error)
	CountUnlearnedByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Create(ctx context.Context, tx *gorm.DB, progress *model.FlashcardProgress) error {
	// UUIDはService層で設定済み想定
	result := tx.WithContext(ctx).Create(progress)
	return result.Error
}

func (r *gormProgressRepository) FindByFlashcardID(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) (*model.FlashcardProgress, error) {
	var progress model.FlashcardProgress
	result := db.WithContext(ctx).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormProgressRepository.FindByFlashcardID: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) Update(ctx context.Context, tx *gorm.DB, progress *model.FlashcardProgress) error {
	// progress オブジェクト全体を渡して更新。存在確認は呼び出し元(Service)で行う想定。
	result := tx.WithContext(ctx).Save(progress)
	if result.Error != nil {
		return fmt.Errorf("gormProgressRepository.Update: %w", result.Error)
	}
	return nil
}

func (r *gormProgressRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FlashcardProgress, error) {
	var progresses []*model.FlashcardProgress
	// Wordが論理削除されたカードの進捗は返さない
	result := db.WithContext(ctx).
		Preload("Flashcard", "deleted_at IS NULL").
		Joins("JOIN flashcards ON flashcards.flashcard_id = user_flashcard_progress.flashcard_id AND flashcards.deleted_at IS NULL").
		Where("user_flashcard_progress.user_id = ?", userID).
		Order("user_flashcard_progress.updated_at DESC").
		Find(&progresses)
	if result.Error != nil {
		return nil, fmt.Errorf("gormProgressRepository.FindByUser: %w", result.Error)
	}
	return progresses, nil
}

func (r *gormProgressRepository) LearnedIDsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	result := db.WithContext(ctx).
		Model(&model.FlashcardProgress{}).
		Where("user_id = ? AND is_learned = ?", userID, true).
		Pluck("flashcard_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("gormProgressRepository.LearnedIDsByUser: %w", result.Error)
	}
	learned := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		learned[id] = true
	}
	return learned, nil
}

func (r *gormProgressRepository) CountUnlearnedByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.Flashcard{}).
		Where("flashcards.user_id = ?", userID).
		Where(`NOT EXISTS (
			SELECT 1 FROM user_flashcard_progress p
			WHERE p.flashcard_id = flashcards.flashcard_id
			  AND p.user_id = flashcards.user_id
			  AND p.is_learned = ?
		)`, true).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormProgressRepository.CountUnlearnedByUser: %w", result.Error)
	}
	return count, nil
}

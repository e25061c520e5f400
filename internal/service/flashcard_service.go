// internal/service/flashcard_service.go
package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
)

type FlashcardService interface {
	CreateFlashcard(ctx context.Context, userID uuid.UUID, req *model.PostFlashcardRequest) (*model.Flashcard, error)
	GetFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) (*model.Flashcard, error)
	ListFlashcards(ctx context.Context, userID uuid.UUID) ([]*model.Flashcard, error)
	ReplaceFlashcard(ctx context.Context, userID, flashcardID uuid.UUID, req *model.PostFlashcardRequest) (*model.Flashcard, error)
	UpdateFlashcard(ctx context.Context, userID, flashcardID uuid.UUID, req *model.PatchFlashcardRequest) (*model.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) error
	ImportFlashcards(ctx context.Context, userID uuid.UUID, r io.Reader) (*model.ImportFlashcardsResponse, error)
}

type flashcardService struct {
	db       *gorm.DB
	cardRepo repository.FlashcardRepository
}

func NewFlashcardService(db *gorm.DB, cardRepo repository.FlashcardRepository) FlashcardService {
	return &flashcardService{db: db, cardRepo: cardRepo}
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID uuid.UUID, req *model.PostFlashcardRequest) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var created *model.Flashcard

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.cardRepo.CheckFrontExists(ctx, tx, userID, req.Front, nil)
		if err != nil {
			logger.Error("Failed to check front existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語の重複確認に失敗しました。", "", err)
		}
		if exists {
			return model.NewAppError("DUPLICATE_WORD", "この単語は既に登録されています。", "front", model.ErrConflict)
		}

		card := &model.Flashcard{
			FlashcardID:         uuid.New(),
			UserID:              userID,
			Front:               req.Front,
			Back:                req.Back,
			Phonetic:            req.Phonetic,
			ChineseDefinition:   req.ChineseDefinition,
			EnglishDefinition:   req.EnglishDefinition,
			Synonyms:            req.Synonyms,
			Antonyms:            req.Antonyms,
			RelatedWords:        req.RelatedWords,
			ImageURL:            req.ImageURL,
			ExampleSentence1:    req.ExampleSentence1,
			ExampleTranslation1: req.ExampleTranslation1,
			ExampleSource1:      req.ExampleSource1,
			ExampleSentence2:    req.ExampleSentence2,
			ExampleTranslation2: req.ExampleTranslation2,
			ExampleSource2:      req.ExampleSource2,
			ExampleSentence3:    req.ExampleSentence3,
			ExampleTranslation3: req.ExampleTranslation3,
			ExampleSource3:      req.ExampleSource3,
		}
		if err := s.cardRepo.Create(ctx, tx, card); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("DUPLICATE_WORD", "この単語は既に登録されています。", "front", model.ErrConflict)
			}
			logger.Error("Failed to create flashcard", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの作成に失敗しました。", "", err)
		}
		created = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *flashcardService) GetFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) (*model.Flashcard, error) {
	card, err := s.cardRepo.FindByID(ctx, s.db, userID, flashcardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("CARD_NOT_FOUND", "単語カードが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの取得に失敗しました。", "", err)
	}
	return card, nil
}

func (s *flashcardService) ListFlashcards(ctx context.Context, userID uuid.UUID) ([]*model.Flashcard, error) {
	cards, err := s.cardRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの一覧取得に失敗しました。", "", err)
	}
	return cards, nil
}

// ReplaceFlashcard はカードの内容を丸ごと置き換えます。リクエストで省略された
// フィールドはゼロ値で上書きされます (PATCHとの違い)。
func (s *flashcardService) ReplaceFlashcard(ctx context.Context, userID, flashcardID uuid.UUID, req *model.PostFlashcardRequest) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var replaced *model.Flashcard

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.cardRepo.CheckFrontExists(ctx, tx, userID, req.Front, &flashcardID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語の重複確認に失敗しました。", "", err)
		}
		if exists {
			return model.NewAppError("DUPLICATE_WORD", "この単語は既に登録されています。", "front", model.ErrConflict)
		}

		updates := map[string]interface{}{
			"front":                req.Front,
			"back":                 req.Back,
			"phonetic":             req.Phonetic,
			"chinese_definition":   req.ChineseDefinition,
			"english_definition":   req.EnglishDefinition,
			"synonyms":             datatypes.JSONSlice[string](req.Synonyms),
			"antonyms":             datatypes.JSONSlice[string](req.Antonyms),
			"related_words":        datatypes.JSONSlice[string](req.RelatedWords),
			"image_url":            req.ImageURL,
			"example_sentence1":    req.ExampleSentence1,
			"example_translation1": req.ExampleTranslation1,
			"example_source1":      req.ExampleSource1,
			"example_sentence2":    req.ExampleSentence2,
			"example_translation2": req.ExampleTranslation2,
			"example_source2":      req.ExampleSource2,
			"example_sentence3":    req.ExampleSentence3,
			"example_translation3": req.ExampleTranslation3,
			"example_source3":      req.ExampleSource3,
		}
		if err := s.cardRepo.Update(ctx, tx, userID, flashcardID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CARD_NOT_FOUND", "単語カードが見つかりません。", "", model.ErrNotFound)
			}
			logger.Error("Failed to replace flashcard", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの更新に失敗しました。", "", err)
		}

		card, err := s.cardRepo.FindByID(ctx, tx, userID, flashcardID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "更新後の単語カードの取得に失敗しました。", "", err)
		}
		replaced = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

func (s *flashcardService) UpdateFlashcard(ctx context.Context, userID, flashcardID uuid.UUID, req *model.PatchFlashcardRequest) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var updated *model.Flashcard

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Front != nil {
			exists, err := s.cardRepo.CheckFrontExists(ctx, tx, userID, *req.Front, &flashcardID)
			if err != nil {
				return model.NewAppError("INTERNAL_SERVER_ERROR", "単語の重複確認に失敗しました。", "", err)
			}
			if exists {
				return model.NewAppError("DUPLICATE_WORD", "この単語は既に登録されています。", "front", model.ErrConflict)
			}
		}

		updates := buildFlashcardUpdates(req)
		if len(updates) == 0 {
			return model.NewAppError("NO_UPDATE_FIELDS", "更新するフィールドが指定されていません。", "", model.ErrInvalidInput)
		}

		if err := s.cardRepo.Update(ctx, tx, userID, flashcardID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CARD_NOT_FOUND", "単語カードが見つかりません。", "", model.ErrNotFound)
			}
			logger.Error("Failed to update flashcard", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの更新に失敗しました。", "", err)
		}

		card, err := s.cardRepo.FindByID(ctx, tx, userID, flashcardID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "更新後の単語カードの取得に失敗しました。", "", err)
		}
		updated = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *flashcardService) DeleteFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) error {
	err := s.cardRepo.Delete(ctx, s.db, userID, flashcardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("CARD_NOT_FOUND", "単語カードが見つかりません。", "", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの削除に失敗しました。", "", err)
	}
	return nil
}

// ImportFlashcards はxlsxファイルから単語カードを一括登録します。
// 1行目はヘッダーとして読み飛ばします。見出し語が空の行と、既存の見出し語に
// 重複する行はスキップし、スキップした行番号を返します。
func (s *flashcardService) ImportFlashcards(ctx context.Context, userID uuid.UUID, r io.Reader) (*model.ImportFlashcardsResponse, error) {
	logger := middleware.GetLogger(ctx)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.NewAppError("INVALID_FILE", "xlsxファイルの読み込みに失敗しました。", "file", model.ErrInvalidInput)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, model.NewAppError("INVALID_FILE", "シートが見つかりません。", "file", model.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, model.NewAppError("INVALID_FILE", "シートの読み込みに失敗しました。", "file", model.ErrInvalidInput)
	}

	resp := &model.ImportFlashcardsResponse{SkippedRows: []int{}}
	var cards []*model.Flashcard

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := map[string]bool{}
		for i, row := range rows {
			if i == 0 {
				continue // ヘッダー行
			}
			rowNum := i + 1
			front := strings.TrimSpace(cellAt(row, 0))
			if front == "" {
				resp.SkippedRows = append(resp.SkippedRows, rowNum)
				continue
			}
			key := strings.ToLower(front)
			if seen[key] {
				resp.SkippedRows = append(resp.SkippedRows, rowNum)
				continue
			}
			exists, err := s.cardRepo.CheckFrontExists(ctx, tx, userID, front, nil)
			if err != nil {
				return model.NewAppError("INTERNAL_SERVER_ERROR", "単語の重複確認に失敗しました。", "", err)
			}
			if exists {
				resp.SkippedRows = append(resp.SkippedRows, rowNum)
				continue
			}
			seen[key] = true

			cards = append(cards, &model.Flashcard{
				FlashcardID:         uuid.New(),
				UserID:              userID,
				Front:               front,
				Back:                strings.TrimSpace(cellAt(row, 1)),
				Phonetic:            strings.TrimSpace(cellAt(row, 2)),
				ExampleSentence1:    strings.TrimSpace(cellAt(row, 3)),
				ExampleTranslation1: strings.TrimSpace(cellAt(row, 4)),
				ExampleSentence2:    strings.TrimSpace(cellAt(row, 5)),
				ExampleTranslation2: strings.TrimSpace(cellAt(row, 6)),
				ExampleSentence3:    strings.TrimSpace(cellAt(row, 7)),
				ExampleTranslation3: strings.TrimSpace(cellAt(row, 8)),
			})
		}

		if len(cards) > 0 {
			if err := s.cardRepo.CreateBatch(ctx, tx, cards); err != nil {
				logger.Error("Failed to batch insert flashcards", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの一括登録に失敗しました。", "", err)
			}
		}
		resp.ImportedCount = len(cards)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Flashcards imported", "user_id", userID.String(),
		"imported", resp.ImportedCount, "skipped", len(resp.SkippedRows))
	return resp, nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// buildFlashcardUpdates はPATCHリクエストで指定されたフィールドだけを更新対象にします
func buildFlashcardUpdates(req *model.PatchFlashcardRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.Front != nil {
		updates["front"] = *req.Front
	}
	if req.Back != nil {
		updates["back"] = *req.Back
	}
	if req.Phonetic != nil {
		updates["phonetic"] = *req.Phonetic
	}
	if req.ChineseDefinition != nil {
		updates["chinese_definition"] = *req.ChineseDefinition
	}
	if req.EnglishDefinition != nil {
		updates["english_definition"] = *req.EnglishDefinition
	}
	if req.Synonyms != nil {
		updates["synonyms"] = datatypes.JSONSlice[string](*req.Synonyms)
	}
	if req.Antonyms != nil {
		updates["antonyms"] = datatypes.JSONSlice[string](*req.Antonyms)
	}
	if req.RelatedWords != nil {
		updates["related_words"] = datatypes.JSONSlice[string](*req.RelatedWords)
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsFavorite != nil {
		updates["is_favorite"] = *req.IsFavorite
	}
	if req.ExampleSentence1 != nil {
		updates["example_sentence1"] = *req.ExampleSentence1
	}
	if req.ExampleTranslation1 != nil {
		updates["example_translation1"] = *req.ExampleTranslation1
	}
	if req.ExampleSource1 != nil {
		updates["example_source1"] = *req.ExampleSource1
	}
	if req.ExampleSentence2 != nil {
		updates["example_sentence2"] = *req.ExampleSentence2
	}
	if req.ExampleTranslation2 != nil {
		updates["example_translation2"] = *req.ExampleTranslation2
	}
	if req.ExampleSource2 != nil {
		updates["example_source2"] = *req.ExampleSource2
	}
	if req.ExampleSentence3 != nil {
		updates["example_sentence3"] = *req.ExampleSentence3
	}
	if req.ExampleTranslation3 != nil {
		updates["example_translation3"] = *req.ExampleTranslation3
	}
	if req.ExampleSource3 != nil {
		updates["example_source3"] = *req.ExampleSource3
	}
	return updates
}

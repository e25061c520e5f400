// internal/service/book_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
)

type BookService interface {
	CreateBook(ctx context.Context, userID uuid.UUID, req *model.PostWordBookRequest) (*model.WordBookResponse, error)
	GetBook(ctx context.Context, userID, bookID uuid.UUID) (*model.WordBookDetailResponse, error)
	ListBooks(ctx context.Context, userID uuid.UUID, tag string) ([]*model.WordBookResponse, error)
	UpdateBook(ctx context.Context, userID, bookID uuid.UUID, req *model.PatchWordBookRequest) (*model.WordBookResponse, error)
	DeleteBook(ctx context.Context, userID, bookID uuid.UUID) error
	AddCards(ctx context.Context, userID, bookID uuid.UUID, req *model.AddBookCardsRequest) error
	RemoveCard(ctx context.Context, userID, bookID, flashcardID uuid.UUID) error
}

type bookService struct {
	db       *gorm.DB
	bookRepo repository.BookRepository
	cardRepo repository.FlashcardRepository
}

func NewBookService(db *gorm.DB, bookRepo repository.BookRepository, cardRepo repository.FlashcardRepository) BookService {
	return &bookService{db: db, bookRepo: bookRepo, cardRepo: cardRepo}
}

func (s *bookService) CreateBook(ctx context.Context, userID uuid.UUID, req *model.PostWordBookRequest) (*model.WordBookResponse, error) {
	book := &model.WordBook{
		BookID:        uuid.New(),
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		Tag:           req.Tag,
		Price:         req.Price,
	}
	if err := s.bookRepo.Create(ctx, s.db, book); err != nil {
		middleware.GetLogger(ctx).Error("Failed to create word book", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の作成に失敗しました。", "", err)
	}
	return book.ToResponse(0), nil
}

func (s *bookService) GetBook(ctx context.Context, userID, bookID uuid.UUID) (*model.WordBookDetailResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, s.db, userID, bookID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("BOOK_NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の取得に失敗しました。", "", err)
	}

	cards, err := s.bookRepo.FindCards(ctx, s.db, bookID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳のカード取得に失敗しました。", "", err)
	}

	detail := &model.WordBookDetailResponse{
		WordBookResponse: *book.ToResponse(int64(len(cards))),
		Cards:            make([]*model.Flashcard, 0, len(cards)),
	}
	for _, c := range cards {
		if c.Flashcard != nil {
			detail.Cards = append(detail.Cards, c.Flashcard)
		}
	}
	return detail, nil
}

func (s *bookService) ListBooks(ctx context.Context, userID uuid.UUID, tag string) ([]*model.WordBookResponse, error) {
	books, err := s.bookRepo.FindByUser(ctx, s.db, userID, tag)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の一覧取得に失敗しました。", "", err)
	}

	resp := make([]*model.WordBookResponse, 0, len(books))
	for _, b := range books {
		count, err := s.bookRepo.CountCards(ctx, s.db, b.BookID)
		if err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳のカード数取得に失敗しました。", "", err)
		}
		resp = append(resp, b.ToResponse(count))
	}
	return resp, nil
}

func (s *bookService) UpdateBook(ctx context.Context, userID, bookID uuid.UUID, req *model.PatchWordBookRequest) (*model.WordBookResponse, error) {
	var updated *model.WordBookResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.CoverImageURL != nil {
			updates["cover_image_url"] = *req.CoverImageURL
		}
		if req.Tag != nil {
			updates["tag"] = *req.Tag
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		if len(updates) == 0 {
			return model.NewAppError("NO_UPDATE_FIELDS", "更新するフィールドが指定されていません。", "", model.ErrInvalidInput)
		}

		if err := s.bookRepo.Update(ctx, tx, userID, bookID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("BOOK_NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の更新に失敗しました。", "", err)
		}

		book, err := s.bookRepo.FindByID(ctx, tx, userID, bookID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "更新後の単語帳の取得に失敗しました。", "", err)
		}
		count, err := s.bookRepo.CountCards(ctx, tx, bookID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳のカード数取得に失敗しました。", "", err)
		}
		updated = book.ToResponse(count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *bookService) DeleteBook(ctx context.Context, userID, bookID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bookRepo.Delete(ctx, tx, userID, bookID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("BOOK_NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の削除に失敗しました。", "", err)
		}
		return nil
	})
}

// AddCards は単語帳の末尾にカードを追加します。既に登録済みのカードは読み飛ばします。
func (s *bookService) AddCards(ctx context.Context, userID, bookID uuid.UUID, req *model.AddBookCardsRequest) error {
	logger := middleware.GetLogger(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.bookRepo.FindByID(ctx, tx, userID, bookID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("BOOK_NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の取得に失敗しました。", "", err)
		}

		existing, err := s.bookRepo.FindCards(ctx, tx, bookID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳のカード取得に失敗しました。", "", err)
		}
		registered := make(map[uuid.UUID]bool, len(existing))
		for _, c := range existing {
			registered[c.FlashcardID] = true
		}

		maxPos, err := s.bookRepo.MaxCardPosition(ctx, tx, bookID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の位置取得に失敗しました。", "", err)
		}

		var toAdd []*model.WordBookCard
		pos := maxPos
		for _, flashcardID := range req.FlashcardIDs {
			if registered[flashcardID] {
				continue
			}
			// カードの実在と所有者を確認する
			if _, err := s.cardRepo.FindByID(ctx, tx, userID, flashcardID); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return model.NewAppError("CARD_NOT_FOUND", "単語カードが見つかりません。", "flashcard_ids", model.ErrNotFound)
				}
				return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの取得に失敗しました。", "", err)
			}
			pos++
			toAdd = append(toAdd, &model.WordBookCard{
				CardID:      uuid.New(),
				BookID:      bookID,
				FlashcardID: flashcardID,
				Position:    pos,
			})
			registered[flashcardID] = true
		}

		if len(toAdd) == 0 {
			return nil
		}
		if err := s.bookRepo.AddCards(ctx, tx, toAdd); err != nil {
			logger.Error("Failed to add cards to book", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳へのカード追加に失敗しました。", "", err)
		}
		return nil
	})
}

func (s *bookService) RemoveCard(ctx context.Context, userID, bookID, flashcardID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.bookRepo.FindByID(ctx, tx, userID, bookID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("BOOK_NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の取得に失敗しました。", "", err)
		}
		if err := s.bookRepo.RemoveCard(ctx, tx, bookID, flashcardID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CARD_NOT_IN_BOOK", "このカードは単語帳に登録されていません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳からのカード削除に失敗しました。", "", err)
		}
		return nil
	})
}

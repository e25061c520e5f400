// internal/service/book_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
)

func newTestBookService(db *gorm.DB) BookService {
	return NewBookService(db, repository.NewGormBookRepository(), repository.NewGormFlashcardRepository())
}

func Test_bookService_CreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 単語帳作成成功", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{
			Title: "基本単語帳",
			Tag:   "starter",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, book.BookID)
		assert.Equal(t, "基本単語帳", book.Title)
		assert.Equal(t, int64(0), book.CardCount)
	})
}

func Test_bookService_AddCards(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 追加したカードが末尾の順番で並ぶ", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "単語帳"})
		require.NoError(t, err)
		card1 := seedCard(t, db, user.UserID, "resilient", "She is resilient.")
		card2 := seedCard(t, db, user.UserID, "meticulous", "He is meticulous.")
		card3 := seedCard(t, db, user.UserID, "ubiquitous", "Phones are ubiquitous.")

		require.NoError(t, s.AddCards(ctx, user.UserID, book.BookID, &model.AddBookCardsRequest{
			FlashcardIDs: []uuid.UUID{card1.FlashcardID, card2.FlashcardID},
		}))
		require.NoError(t, s.AddCards(ctx, user.UserID, book.BookID, &model.AddBookCardsRequest{
			FlashcardIDs: []uuid.UUID{card3.FlashcardID},
		}))

		detail, err := s.GetBook(ctx, user.UserID, book.BookID)
		require.NoError(t, err)
		require.Len(t, detail.Cards, 3)
		assert.Equal(t, int64(3), detail.CardCount)
		assert.Equal(t, "resilient", detail.Cards[0].Front)
		assert.Equal(t, "meticulous", detail.Cards[1].Front)
		assert.Equal(t, "ubiquitous", detail.Cards[2].Front)
	})

	t.Run("正常系: 登録済みのカードは重複追加されない", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "単語帳"})
		require.NoError(t, err)
		card := seedCard(t, db, user.UserID, "resilient", "She is resilient.")

		req := &model.AddBookCardsRequest{FlashcardIDs: []uuid.UUID{card.FlashcardID}}
		require.NoError(t, s.AddCards(ctx, user.UserID, book.BookID, req))
		require.NoError(t, s.AddCards(ctx, user.UserID, book.BookID, req))

		detail, err := s.GetBook(ctx, user.UserID, book.BookID)
		require.NoError(t, err)
		assert.Len(t, detail.Cards, 1)
	})

	t.Run("異常系: 他ユーザーのカードは追加できない", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		other := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "単語帳"})
		require.NoError(t, err)
		card := seedCard(t, db, other.UserID, "resilient", "She is resilient.")

		err = s.AddCards(ctx, user.UserID, book.BookID, &model.AddBookCardsRequest{
			FlashcardIDs: []uuid.UUID{card.FlashcardID},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: 存在しない単語帳への追加はNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)
		card := seedCard(t, db, user.UserID, "resilient", "She is resilient.")

		err := s.AddCards(ctx, user.UserID, uuid.New(), &model.AddBookCardsRequest{
			FlashcardIDs: []uuid.UUID{card.FlashcardID},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_bookService_RemoveCard(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 単語帳から外してもカード自体は残る", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "単語帳"})
		require.NoError(t, err)
		card := seedCard(t, db, user.UserID, "resilient", "She is resilient.")
		require.NoError(t, s.AddCards(ctx, user.UserID, book.BookID, &model.AddBookCardsRequest{
			FlashcardIDs: []uuid.UUID{card.FlashcardID},
		}))

		require.NoError(t, s.RemoveCard(ctx, user.UserID, book.BookID, card.FlashcardID))

		detail, err := s.GetBook(ctx, user.UserID, book.BookID)
		require.NoError(t, err)
		assert.Empty(t, detail.Cards)

		var count int64
		require.NoError(t, db.Model(&model.Flashcard{}).
			Where("flashcard_id = ?", card.FlashcardID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("異常系: 未登録カードの削除はNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "単語帳"})
		require.NoError(t, err)

		err = s.RemoveCard(ctx, user.UserID, book.BookID, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_bookService_ListBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: tagで絞り込みできる", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		_, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "A", Tag: "starter"})
		require.NoError(t, err)
		_, err = s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "B", Tag: "advanced"})
		require.NoError(t, err)

		books, err := s.ListBooks(ctx, user.UserID, "starter")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "A", books[0].Title)

		all, err := s.ListBooks(ctx, user.UserID, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func Test_bookService_DeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 削除後は取得できず、登録も消える", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestBookService(db)

		book, err := s.CreateBook(ctx, user.UserID, &model.PostWordBookRequest{Title: "単語帳"})
		require.NoError(t, err)
		card := seedCard(t, db, user.UserID, "resilient", "She is resilient.")
		require.NoError(t, s.AddCards(ctx, user.UserID, book.BookID, &model.AddBookCardsRequest{
			FlashcardIDs: []uuid.UUID{card.FlashcardID},
		}))

		require.NoError(t, s.DeleteBook(ctx, user.UserID, book.BookID))

		_, err = s.GetBook(ctx, user.UserID, book.BookID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&model.WordBookCard{}).
			Where("book_id = ?", book.BookID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}

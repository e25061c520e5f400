// internal/handlers/helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/handlers"
	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
	"go_5_flashcard_quiz/internal/service"
)

// testEnv はハンドラテスト用の環境一式。モックではなく実サービス+インメモリDBで検証する。
type testEnv struct {
	db     *gorm.DB
	router *chi.Mux
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.UserVerificationToken{},
		&model.PasswordResetToken{},
		&model.Flashcard{},
		&model.FlashcardProgress{},
		&model.WordBook{},
		&model.WordBookCard{},
	))

	cfg := &config.Config{}
	cfg.App.RequiredStreak = 2
	cfg.App.ReviewLimit = 50

	cardRepo := repository.NewGormFlashcardRepository()
	progressRepo := repository.NewGormProgressRepository()
	bookRepo := repository.NewGormBookRepository()

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	flashcardHandler := handlers.NewFlashcardHandler(service.NewFlashcardService(db, cardRepo), testLogger)
	quizHandler := handlers.NewQuizHandler(service.NewQuizService(db, cardRepo, progressRepo, cfg), testLogger)
	bookHandler := handlers.NewBookHandler(service.NewBookService(db, bookRepo, cardRepo), testLogger)

	router := chi.NewRouter()
	router.Use(middleware.DevUserContextMiddleware) // 開発用認証ミドルウェア
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/flashcards", flashcardHandler.PostFlashcard)
		r.Get("/flashcards", flashcardHandler.GetFlashcards)
		r.Get("/flashcards/{flashcard_id}", flashcardHandler.GetFlashcard)
		r.Patch("/flashcards/{flashcard_id}", flashcardHandler.PatchFlashcard)
		r.Delete("/flashcards/{flashcard_id}", flashcardHandler.DeleteFlashcard)

		r.Get("/quiz/session", quizHandler.GetQuizSession)
		r.Post("/quiz/{flashcard_id}/answer", quizHandler.PostQuizAnswer)
		r.Get("/progress", quizHandler.GetProgress)

		r.Post("/books", bookHandler.PostBook)
		r.Get("/books/{book_id}", bookHandler.GetBook)
		r.Post("/books/{book_id}/cards", bookHandler.PostBookCards)
	})

	return &testEnv{db: db, router: router}
}

// createRequest はJSONボディとX-User-IDヘッダー付きのリクエストを作る
func createRequest(t *testing.T, method, path string, body interface{}, userID *uuid.UUID) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	return req
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       uuid.New(),
		Name:         "テストユーザー",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCard(t *testing.T, db *gorm.DB, userID uuid.UUID, front, sentence string) *model.Flashcard {
	t.Helper()
	card := &model.Flashcard{
		FlashcardID:      uuid.New(),
		UserID:           userID,
		Front:            front,
		Back:             front + "の意味",
		ExampleSentence1: sentence,
	}
	require.NoError(t, db.Create(card).Error)
	return card
}

// decodeErrorResponse はエラーレスポンスのerror.codeを取り出す
func decodeErrorResponse(t *testing.T, body *bytes.Buffer) model.APIErrorResponse {
	t.Helper()
	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

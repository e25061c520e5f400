// internal/handlers/book_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/service"
	"go_5_flashcard_quiz/internal/webutil"
)

type BookHandler struct {
	service service.BookService
	logger  *slog.Logger
}

func NewBookHandler(s service.BookService, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{
		service: s,
		logger:  logger,
	}
}

// PostBook は新しい単語帳を作成するためのハンドラ
func (h *BookHandler) PostBook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostBook"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.PostWordBookRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	book, err := h.service.CreateBook(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating word book in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Word book created successfully", slog.String("book_id", book.BookID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, book, logger)
}

// GetBooks は単語帳の一覧を取得するためのハンドラ。tagクエリで絞り込みできる。
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetBooks"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	books, err := h.service.ListBooks(r.Context(), userID, r.URL.Query().Get("tag"))
	if err != nil {
		logger.Error("Error listing word books in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if books == nil {
		books = []*model.WordBookResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, books, logger)
}

// GetBook は単語帳の詳細 (登録カードつき) を取得するためのハンドラ
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetBook"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	bookID, ok := parseUUIDParam(w, logger, "book_id", chi.URLParam(r, "book_id"))
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), userID, bookID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, book, logger)
}

// PatchBook は単語帳の一部を更新するためのハンドラ
func (h *BookHandler) PatchBook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchBook"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	bookID, ok := parseUUIDParam(w, logger, "book_id", chi.URLParam(r, "book_id"))
	if !ok {
		return
	}

	var req model.PatchWordBookRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	book, err := h.service.UpdateBook(r.Context(), userID, bookID, &req)
	if err != nil {
		logger.Error("Error patching word book in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Word book patched successfully", slog.String("book_id", bookID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, book, logger)
}

// DeleteBook は単語帳を削除するためのハンドラ
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteBook"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	bookID, ok := parseUUIDParam(w, logger, "book_id", chi.URLParam(r, "book_id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), userID, bookID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Word book deleted successfully", slog.String("book_id", bookID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// PostBookCards は単語帳の末尾にカードを追加するためのハンドラ
func (h *BookHandler) PostBookCards(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostBookCards"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	bookID, ok := parseUUIDParam(w, logger, "book_id", chi.URLParam(r, "book_id"))
	if !ok {
		return
	}

	var req model.AddBookCardsRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.AddCards(r.Context(), userID, bookID, &req); err != nil {
		logger.Error("Error adding cards to word book in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Cards added to word book successfully", slog.String("book_id", bookID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBookCard は単語帳からカードを外すためのハンドラ。カード自体は削除しない。
func (h *BookHandler) DeleteBookCard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteBookCard"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	bookID, ok := parseUUIDParam(w, logger, "book_id", chi.URLParam(r, "book_id"))
	if !ok {
		return
	}
	flashcardID, ok := parseUUIDParam(w, logger, "flashcard_id", chi.URLParam(r, "flashcard_id"))
	if !ok {
		return
	}

	if err := h.service.RemoveCard(r.Context(), userID, bookID, flashcardID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Card removed from word book successfully",
		slog.String("book_id", bookID.String()), slog.String("flashcard_id", flashcardID.String()))
	w.WriteHeader(http.StatusNoContent)
}

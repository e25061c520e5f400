// internal/handlers/flashcard_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/service"
	"go_5_flashcard_quiz/internal/webutil"
)

// xlsxインポートの上限 (10MB)
const maxImportFileSize = 10 << 20

type FlashcardHandler struct {
	service service.FlashcardService
	logger  *slog.Logger
}

func NewFlashcardHandler(s service.FlashcardService, logger *slog.Logger) *FlashcardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardHandler{
		service: s,
		logger:  logger,
	}
}

// PostFlashcard は新しい単語カードを作成するためのハンドラ
func (h *FlashcardHandler) PostFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostFlashcard"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.PostFlashcardRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	card, err := h.service.CreateFlashcard(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating flashcard in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcard created successfully", slog.String("flashcard_id", card.FlashcardID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, card, logger)
}

// GetFlashcards は単語カードの一覧を取得するためのハンドラ
func (h *FlashcardHandler) GetFlashcards(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetFlashcards"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	cards, err := h.service.ListFlashcards(r.Context(), userID)
	if err != nil {
		logger.Error("Error listing flashcards in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if cards == nil {
		cards = []*model.Flashcard{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, cards, logger)
}

// GetFlashcard は特定の単語カードを取得するためのハンドラ
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetFlashcard"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	flashcardID, ok := parseUUIDParam(w, logger, "flashcard_id", chi.URLParam(r, "flashcard_id"))
	if !ok {
		return
	}

	card, err := h.service.GetFlashcard(r.Context(), userID, flashcardID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

// PutFlashcard は特定の単語カードを完全に置き換えるためのハンドラ
func (h *FlashcardHandler) PutFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutFlashcard"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	flashcardID, ok := parseUUIDParam(w, logger, "flashcard_id", chi.URLParam(r, "flashcard_id"))
	if !ok {
		return
	}

	var req model.PostFlashcardRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	card, err := h.service.ReplaceFlashcard(r.Context(), userID, flashcardID, &req)
	if err != nil {
		logger.Error("Error putting flashcard in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcard put successfully", slog.String("flashcard_id", flashcardID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

// PatchFlashcard は特定の単語カードの一部を更新するためのハンドラ
func (h *FlashcardHandler) PatchFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchFlashcard"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	flashcardID, ok := parseUUIDParam(w, logger, "flashcard_id", chi.URLParam(r, "flashcard_id"))
	if !ok {
		return
	}

	var req model.PatchFlashcardRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	card, err := h.service.UpdateFlashcard(r.Context(), userID, flashcardID, &req)
	if err != nil {
		logger.Error("Error patching flashcard in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcard patched successfully", slog.String("flashcard_id", flashcardID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

// DeleteFlashcard は特定の単語カードを削除するためのハンドラ
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteFlashcard"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	flashcardID, ok := parseUUIDParam(w, logger, "flashcard_id", chi.URLParam(r, "flashcard_id"))
	if !ok {
		return
	}

	if err := h.service.DeleteFlashcard(r.Context(), userID, flashcardID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcard deleted successfully", slog.String("flashcard_id", flashcardID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ImportFlashcards はxlsxファイルから単語カードを一括登録するためのハンドラ。
// multipart/form-data の file フィールドでxlsxを受け取る。
func (h *FlashcardHandler) ImportFlashcards(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ImportFlashcards"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	if err := r.ParseMultipartForm(maxImportFileSize); err != nil {
		logger.Warn("Failed to parse multipart form", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "ファイルのアップロード形式が正しくありません。", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("Missing file field in multipart form", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "fileフィールドにxlsxファイルを指定してください。", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	defer file.Close()
	logger = logger.With(slog.String("filename", header.Filename))

	resp, err := h.service.ImportFlashcards(r.Context(), userID, file)
	if err != nil {
		logger.Error("Error importing flashcards in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcards imported successfully",
		slog.Int("imported", resp.ImportedCount), slog.Int("skipped", len(resp.SkippedRows)))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

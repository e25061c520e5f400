// internal/handlers/quiz_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/service"
	"go_5_flashcard_quiz/internal/webutil"
)

type QuizHandler struct {
	service service.QuizService
	logger  *slog.Logger
}

func NewQuizHandler(s service.QuizService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		service: s,
		logger:  logger,
	}
}

// GetQuizSession はクイズセッション (穴埋め問題一覧) を取得するためのハンドラ
func (h *QuizHandler) GetQuizSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetQuizSession"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var requiredStreak *int
	if raw := r.URL.Query().Get("required_streak"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn("Invalid required_streak query parameter", slog.String("required_streak", raw))
			appErr := model.NewAppError("INVALID_REQUIRED_STREAK",
				"required_streakは整数で指定してください。", "required_streak", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		requiredStreak = &n
	}

	session, err := h.service.GetQuizSession(r.Context(), userID, requiredStreak)
	if err != nil {
		logger.Error("Error building quiz session in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz session built successfully", slog.Int("questions", session.TotalQuestions))
	webutil.RespondWithJSON(w, http.StatusOK, session, logger)
}

// PostQuizAnswer はクイズの回答を習熟状況に反映するためのハンドラ
func (h *QuizHandler) PostQuizAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostQuizAnswer"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	flashcardID, ok := parseUUIDParam(w, logger, "flashcard_id", chi.URLParam(r, "flashcard_id"))
	if !ok {
		return
	}

	var req model.SubmitQuizAnswerRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), userID, flashcardID, &req)
	if err != nil {
		logger.Error("Error submitting quiz answer in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz answer submitted successfully",
		slog.String("flashcard_id", flashcardID.String()),
		slog.Bool("is_learned", resp.IsLearned))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// GetProgress はユーザーの習熟状況一覧を取得するためのハンドラ
func (h *QuizHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetProgress"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	progresses, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		logger.Error("Error listing progress in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if progresses == nil {
		progresses = []*model.ProgressResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, progresses, logger)
}

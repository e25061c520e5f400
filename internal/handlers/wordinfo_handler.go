// internal/handlers/wordinfo_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/service"
	"go_5_flashcard_quiz/internal/webutil"
)

type WordInfoHandler struct {
	service service.WordInfoService
	logger  *slog.Logger
}

func NewWordInfoHandler(s service.WordInfoService, logger *slog.Logger) *WordInfoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordInfoHandler{
		service: s,
		logger:  logger,
	}
}

// PostWordInfo は外部LLMから単語情報 (発音・定義・例文) を取得するためのハンドラ
func (h *WordInfoHandler) PostWordInfo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostWordInfo"))

	if _, ok := requireUserID(w, r, logger); !ok {
		return
	}

	var req model.WordInfoRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	info, err := h.service.LookupWordInfo(r.Context(), &req)
	if err != nil {
		logger.Error("Error looking up word info in service", slog.Any("error", err), slog.String("word", req.Word))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Word info retrieved successfully", slog.String("word", req.Word))
	webutil.RespondWithJSON(w, http.StatusOK, info, logger)
}

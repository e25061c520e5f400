// internal/handlers/review_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/service"
	"go_5_flashcard_quiz/internal/webutil"
)

type ReviewHandler struct {
	service service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(s service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		service: s,
		logger:  logger,
	}
}

// play_mode / language_mode クエリパラメータを既定値つきで読み取る
func reviewModes(r *http.Request) (string, string) {
	playMode := r.URL.Query().Get("play_mode")
	if playMode == "" {
		playMode = model.PlayModeSingle
	}
	languageMode := r.URL.Query().Get("language_mode")
	if languageMode == "" {
		languageMode = model.LanguageModeEnglish
	}
	return playMode, languageMode
}

// GetPlaylist は復習の読み上げ順リストを取得するためのハンドラ
func (h *ReviewHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetPlaylist"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	playMode, languageMode := reviewModes(r)
	playlist, err := h.service.BuildPlaylist(r.Context(), userID, playMode, languageMode)
	if err != nil {
		logger.Error("Error building review playlist in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Review playlist built successfully",
		slog.Int("cards", playlist.CardCount), slog.Int("utterances", len(playlist.Utterances)))
	webutil.RespondWithJSON(w, http.StatusOK, playlist, logger)
}

// PostPlay は復習リストを順番に音声合成し、MP3ストリームとして返すハンドラ。
// クライアントが切断した場合は以降の合成を打ち切る。
func (h *ReviewHandler) PostPlay(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostPlay"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	playMode, languageMode := reviewModes(r)

	// ストリーム開始後はステータスを変えられないため、ヘッダーを先に確定する
	w.Header().Set("Content-Type", "audio/mpeg")
	played, err := h.service.Play(r.Context(), userID, playMode, languageMode, w)
	if err != nil {
		if played == 0 {
			webutil.HandleError(w, logger, err)
			return
		}
		// 途中失敗はストリームを打ち切るしかない
		logger.Error("Playback aborted mid-stream", slog.Any("error", err), slog.Int("played", played))
		return
	}

	logger.Info("Review playback finished", slog.Int("played", played))
}

// PostSpeech は任意のテキスト1件を音声合成して返すハンドラ
func (h *ReviewHandler) PostSpeech(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSpeech"))

	if _, ok := requireUserID(w, r, logger); !ok {
		return
	}

	var req model.SpeakRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if err := h.service.Speak(r.Context(), &req, w); err != nil {
		logger.Error("Error synthesizing speech in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
}

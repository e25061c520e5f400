// internal/service/review_service.go
package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
)

type ReviewService interface {
	BuildPlaylist(ctx context.Context, userID uuid.UUID, playMode, languageMode string) (*model.ReviewPlaylistResponse, error)
	// Play は再生リストを順番に合成し、音声をwへ書き込みます。
	// 読み上げた発話数を返します。
	Play(ctx context.Context, userID uuid.UUID, playMode, languageMode string, w io.Writer) (int, error)
	Speak(ctx context.Context, req *model.SpeakRequest, w io.Writer) error
}

type reviewService struct {
	db       *gorm.DB
	cardRepo repository.FlashcardRepository
	synth    Synthesizer
	cfg      *config.Config
}

func NewReviewService(db *gorm.DB, cardRepo repository.FlashcardRepository, synth Synthesizer, cfg *config.Config) ReviewService {
	return &reviewService{db: db, cardRepo: cardRepo, synth: synth, cfg: cfg}
}

// BuildPlaylist は未習得カードの例文から読み上げ順のリストを組み立てます。
//   - playMode "single": 例文1のみ / "all": 設定済みの全例文
//   - languageMode "english": 英語例文のみ / "both": 各例文の直後に中国語訳を挟む
//
// カード内の例文順は保ち、訳が未設定の例文では訳の読み上げを飛ばします。
func (s *reviewService) BuildPlaylist(ctx context.Context, userID uuid.UUID, playMode, languageMode string) (*model.ReviewPlaylistResponse, error) {
	logger := middleware.GetLogger(ctx)

	if err := validateReviewModes(playMode, languageMode); err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.FindUnlearnedByUser(ctx, s.db, userID, s.cfg.App.ReviewLimit)
	if err != nil {
		logger.Error("Failed to list unlearned flashcards", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習対象カードの取得に失敗しました。", "", err)
	}

	resp := &model.ReviewPlaylistResponse{Utterances: []model.Utterance{}}
	for _, card := range cards {
		pairs := card.ExamplePairs()
		if len(pairs) == 0 {
			continue
		}
		if playMode == model.PlayModeSingle {
			pairs = pairs[:1]
		}
		resp.CardCount++
		for _, p := range pairs {
			resp.Utterances = append(resp.Utterances, model.Utterance{Text: p.Sentence, Lang: model.LangEnglish})
			if languageMode == model.LanguageModeBoth && p.Translation != "" {
				resp.Utterances = append(resp.Utterances, model.Utterance{Text: p.Translation, Lang: model.LangChinese})
			}
		}
	}
	return resp, nil
}

func (s *reviewService) Play(ctx context.Context, userID uuid.UUID, playMode, languageMode string, w io.Writer) (int, error) {
	playlist, err := s.BuildPlaylist(ctx, userID, playMode, languageMode)
	if err != nil {
		return 0, err
	}

	player := NewPlayer(NewStreamSpeaker(s.synth, w))
	played, err := player.Play(ctx, playlist.Utterances)
	if err != nil {
		middleware.GetLogger(ctx).Error("Playback aborted", "error", err, "played", played)
		return played, model.NewAppError("SPEECH_FAILED", "音声の合成に失敗しました。", "", model.ErrExternalService)
	}
	return played, nil
}

func (s *reviewService) Speak(ctx context.Context, req *model.SpeakRequest, w io.Writer) error {
	lang := req.Lang
	if lang == "" {
		lang = model.LangEnglish
	}
	speaker := NewStreamSpeaker(s.synth, w)
	if err := speaker.Speak(ctx, model.Utterance{Text: req.Text, Lang: lang}); err != nil {
		middleware.GetLogger(ctx).Error("Speech synthesis failed", "error", err)
		return model.NewAppError("SPEECH_FAILED", "音声の合成に失敗しました。", "", model.ErrExternalService)
	}
	return nil
}

func validateReviewModes(playMode, languageMode string) error {
	if playMode != model.PlayModeSingle && playMode != model.PlayModeAll {
		return model.NewAppError("INVALID_PLAY_MODE", "play_mode は single か all を指定してください。", "play_mode", model.ErrInvalidInput)
	}
	if languageMode != model.LanguageModeEnglish && languageMode != model.LanguageModeBoth {
		return model.NewAppError("INVALID_LANGUAGE_MODE", "language_mode は english か both を指定してください。", "language_mode", model.ErrInvalidInput)
	}
	return nil
}

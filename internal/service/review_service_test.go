// internal/service/review_service_test.go
package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
)

func newTestReviewService(db *gorm.DB, synth Synthesizer) ReviewService {
	cfg := &config.Config{}
	cfg.App.ReviewLimit = 50
	return NewReviewService(db, repository.NewGormFlashcardRepository(), synth, cfg)
}

// 複数例文つきのカードを登録する
func seedCardWithExamples(t *testing.T, db *gorm.DB, userID uuid.UUID, front string) *model.Flashcard {
	t.Helper()
	card := &model.Flashcard{
		FlashcardID:         uuid.New(),
		UserID:              userID,
		Front:               front,
		Back:                front + "の意味",
		ExampleSentence1:    front + " sentence one.",
		ExampleTranslation1: front + " 翻譯一。",
		ExampleSentence2:    front + " sentence two.",
		ExampleTranslation2: front + " 翻譯二。",
	}
	require.NoError(t, db.Create(card).Error)
	return card
}

func Test_reviewService_BuildPlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: singleモードは例文1だけを読み上げる", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		seedCardWithExamples(t, db, user.UserID, "resilient")
		s := newTestReviewService(db, &staticSynthesizer{})

		playlist, err := s.BuildPlaylist(ctx, user.UserID, model.PlayModeSingle, model.LanguageModeEnglish)
		require.NoError(t, err)

		assert.Equal(t, 1, playlist.CardCount)
		require.Len(t, playlist.Utterances, 1)
		assert.Equal(t, "resilient sentence one.", playlist.Utterances[0].Text)
		assert.Equal(t, model.LangEnglish, playlist.Utterances[0].Lang)
	})

	t.Run("正常系: allモードは設定済みの全例文を順番どおり読み上げる", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		seedCardWithExamples(t, db, user.UserID, "resilient")
		s := newTestReviewService(db, &staticSynthesizer{})

		playlist, err := s.BuildPlaylist(ctx, user.UserID, model.PlayModeAll, model.LanguageModeEnglish)
		require.NoError(t, err)

		require.Len(t, playlist.Utterances, 2)
		assert.Equal(t, "resilient sentence one.", playlist.Utterances[0].Text)
		assert.Equal(t, "resilient sentence two.", playlist.Utterances[1].Text)
	})

	t.Run("正常系: bothモードは各例文の直後に中国語訳が入る", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		seedCardWithExamples(t, db, user.UserID, "resilient")
		s := newTestReviewService(db, &staticSynthesizer{})

		playlist, err := s.BuildPlaylist(ctx, user.UserID, model.PlayModeAll, model.LanguageModeBoth)
		require.NoError(t, err)

		require.Len(t, playlist.Utterances, 4)
		assert.Equal(t, "resilient sentence one.", playlist.Utterances[0].Text)
		assert.Equal(t, model.LangEnglish, playlist.Utterances[0].Lang)
		assert.Equal(t, "resilient 翻譯一。", playlist.Utterances[1].Text)
		assert.Equal(t, model.LangChinese, playlist.Utterances[1].Lang)
		assert.Equal(t, "resilient sentence two.", playlist.Utterances[2].Text)
		assert.Equal(t, "resilient 翻譯二。", playlist.Utterances[3].Text)
	})

	t.Run("正常系: 訳が未設定の例文では訳の読み上げを飛ばす", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		card := &model.Flashcard{
			FlashcardID:      uuid.New(),
			UserID:           user.UserID,
			Front:            "ubiquitous",
			Back:             "どこにでもある",
			ExampleSentence1: "Phones are ubiquitous.",
			// 訳なし
		}
		require.NoError(t, db.Create(card).Error)
		s := newTestReviewService(db, &staticSynthesizer{})

		playlist, err := s.BuildPlaylist(ctx, user.UserID, model.PlayModeAll, model.LanguageModeBoth)
		require.NoError(t, err)
		require.Len(t, playlist.Utterances, 1)
		assert.Equal(t, model.LangEnglish, playlist.Utterances[0].Lang)
	})

	t.Run("正常系: 習得済みカードと例文なしカードは対象外", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		learned := seedCardWithExamples(t, db, user.UserID, "resilient")
		require.NoError(t, db.Create(&model.FlashcardProgress{
			ProgressID:  uuid.New(),
			UserID:      user.UserID,
			FlashcardID: learned.FlashcardID,
			IsLearned:   true,
		}).Error)
		seedCard(t, db, user.UserID, "ephemeral", "") // 例文なし
		s := newTestReviewService(db, &staticSynthesizer{})

		playlist, err := s.BuildPlaylist(ctx, user.UserID, model.PlayModeAll, model.LanguageModeEnglish)
		require.NoError(t, err)
		assert.Equal(t, 0, playlist.CardCount)
		assert.Empty(t, playlist.Utterances)
	})

	t.Run("異常系: 不正なモード指定はエラー", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestReviewService(db, &staticSynthesizer{})

		_, err := s.BuildPlaylist(ctx, user.UserID, "loop", model.LanguageModeEnglish)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = s.BuildPlaylist(ctx, user.UserID, model.PlayModeSingle, "japanese")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_reviewService_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 発話ごとの音声が順番に書き込まれる", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		seedCardWithExamples(t, db, user.UserID, "resilient")
		s := newTestReviewService(db, &staticSynthesizer{audio: []byte("X")})

		var buf bytes.Buffer
		played, err := s.Play(ctx, user.UserID, model.PlayModeAll, model.LanguageModeBoth, &buf)
		require.NoError(t, err)
		assert.Equal(t, 4, played)
		assert.Equal(t, "XXXX", buf.String()) // 1発話につき1回書き込まれる
	})

	t.Run("正常系: 対象カードがなければ何も書き込まれない", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		s := newTestReviewService(db, &staticSynthesizer{audio: []byte("X")})

		var buf bytes.Buffer
		played, err := s.Play(ctx, user.UserID, model.PlayModeSingle, model.LanguageModeEnglish, &buf)
		require.NoError(t, err)
		assert.Equal(t, 0, played)
		assert.Zero(t, buf.Len())
	})
}

func Test_reviewService_Speak(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 言語省略時は英語で合成される", func(t *testing.T) {
		db := setupTestDB(t)
		synth := &recordingSynthesizer{}
		s := newTestReviewService(db, synth)

		var buf bytes.Buffer
		err := s.Speak(ctx, &model.SpeakRequest{Text: "hello"}, &buf)
		require.NoError(t, err)
		require.Len(t, synth.calls, 1)
		assert.Equal(t, model.LangEnglish, synth.calls[0].Lang)
	})

	t.Run("正常系: 指定した言語がそのまま使われる", func(t *testing.T) {
		db := setupTestDB(t)
		synth := &recordingSynthesizer{}
		s := newTestReviewService(db, synth)

		var buf bytes.Buffer
		err := s.Speak(ctx, &model.SpeakRequest{Text: "你好", Lang: model.LangChinese}, &buf)
		require.NoError(t, err)
		require.Len(t, synth.calls, 1)
		assert.Equal(t, model.LangChinese, synth.calls[0].Lang)
	})
}

// recordingSynthesizer は合成要求を記録するテスト用Synthesizer
type recordingSynthesizer struct {
	calls []model.Utterance
}

func (s *recordingSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	s.calls = append(s.calls, model.Utterance{Text: text, Lang: lang})
	return []byte("audio"), nil
}

// internal/service/speaker_test.go
package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_5_flashcard_quiz/internal/model"
)

// recordingSpeaker は読み上げた発話を記録するテスト用Speaker
type recordingSpeaker struct {
	spoken  []model.Utterance
	failAt  int // この件数まで読み上げたら失敗する (0なら失敗しない)
	onSpeak func()
}

func (s *recordingSpeaker) Speak(ctx context.Context, utt model.Utterance) error {
	if s.failAt > 0 && len(s.spoken) >= s.failAt {
		return errors.New("synthesis failed")
	}
	s.spoken = append(s.spoken, utt)
	if s.onSpeak != nil {
		s.onSpeak()
	}
	return nil
}

func TestPlayer_Play(t *testing.T) {
	utterances := []model.Utterance{
		{Text: "She is resilient.", Lang: model.LangEnglish},
		{Text: "她很堅韌。", Lang: model.LangChinese},
		{Text: "He is meticulous.", Lang: model.LangEnglish},
	}

	t.Run("正常系: 与えた順に1件ずつ読み上げる", func(t *testing.T) {
		speaker := &recordingSpeaker{}
		player := NewPlayer(speaker)

		played, err := player.Play(context.Background(), utterances)
		require.NoError(t, err)
		assert.Equal(t, 3, played)
		assert.Equal(t, utterances, speaker.spoken)
	})

	t.Run("正常系: 空のリストは何もせず完了", func(t *testing.T) {
		speaker := &recordingSpeaker{}
		player := NewPlayer(speaker)

		played, err := player.Play(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, played)
		assert.Empty(t, speaker.spoken)
	})

	t.Run("異常系: 途中で失敗したらそこで打ち切る", func(t *testing.T) {
		speaker := &recordingSpeaker{failAt: 2}
		player := NewPlayer(speaker)

		played, err := player.Play(context.Background(), utterances)
		require.Error(t, err)
		assert.Equal(t, 2, played)
		assert.Len(t, speaker.spoken, 2)
	})

	t.Run("異常系: キャンセルされたら次の発話に進まない", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		speaker := &recordingSpeaker{}
		speaker.onSpeak = func() {
			if len(speaker.spoken) == 1 {
				cancel() // 1件目の読み上げ後にクライアントが切断
			}
		}
		player := NewPlayer(speaker)

		played, err := player.Play(ctx, utterances)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, played)
	})
}

func TestStreamSpeaker_Speak(t *testing.T) {
	t.Run("正常系: 合成した音声がそのまま書き込まれる", func(t *testing.T) {
		var buf bytes.Buffer
		speaker := NewStreamSpeaker(&staticSynthesizer{audio: []byte("MP3DATA")}, &buf)

		err := speaker.Speak(context.Background(), model.Utterance{Text: "hello", Lang: model.LangEnglish})
		require.NoError(t, err)
		assert.Equal(t, "MP3DATA", buf.String())
	})

	t.Run("異常系: 合成失敗はエラーになる", func(t *testing.T) {
		var buf bytes.Buffer
		speaker := NewStreamSpeaker(&staticSynthesizer{err: errors.New("backend down")}, &buf)

		err := speaker.Speak(context.Background(), model.Utterance{Text: "hello", Lang: model.LangEnglish})
		require.Error(t, err)
		assert.Zero(t, buf.Len())
	})
}

// staticSynthesizer は固定の音声バイト列を返すテスト用Synthesizer
type staticSynthesizer struct {
	audio []byte
	err   error
}

func (s *staticSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

// internal/service/speaker.go
package service

import (
	"context"
	"io"

	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
)

// Synthesizer は (テキスト, 言語タグ) から音声データを合成する外部サービスの抽象です
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Speaker は1発話を読み上げて完了を待つ抽象です。
// Speak が返った時点でその発話は完了しており、途中で次の発話に割り込まれることはありません。
type Speaker interface {
	Speak(ctx context.Context, utt model.Utterance) error
}

// --- LogSynthesizer ---
// 開発環境用。合成はせず、内容をログに出力して空の音声を返します。
type LogSynthesizer struct{}

func (s *LogSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Synthesizing speech (LogSynthesizer) ---", "text", text, "lang", lang)
	return []byte{}, nil
}

// --- LogSpeaker ---
type LogSpeaker struct{}

func (s *LogSpeaker) Speak(ctx context.Context, utt model.Utterance) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Speaking (LogSpeaker) ---", "text", utt.Text, "lang", utt.Lang)
	return nil
}

// --- StreamSpeaker ---
// Synthesizer で合成した音声を w に書き切ることで「読み上げ完了」とみなす実装です。
// 復習再生エンドポイントがレスポンスへ逐次ストリームするために使います。
type StreamSpeaker struct {
	synth Synthesizer
	w     io.Writer
}

func NewStreamSpeaker(synth Synthesizer, w io.Writer) *StreamSpeaker {
	return &StreamSpeaker{synth: synth, w: w}
}

func (s *StreamSpeaker) Speak(ctx context.Context, utt model.Utterance) error {
	audio, err := s.synth.Synthesize(ctx, utt.Text, utt.Lang)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(audio); err != nil {
		return err
	}
	return nil
}

// Player は発話キューを先頭から1件ずつ順番に読み上げます。
// 1発話の完了を待ってから次を開始し、キャンセルされた場合は残りの発話を破棄して
// 直ちに停止します (発話中の1件は Speak の完了まで中断しません)。
type Player struct {
	speaker Speaker
}

func NewPlayer(speaker Speaker) *Player {
	return &Player{speaker: speaker}
}

// Play は utterances を順に読み上げ、完了した発話数を返します。
func (p *Player) Play(ctx context.Context, utterances []model.Utterance) (int, error) {
	for i, utt := range utterances {
		// 次の発話を始める前にキャンセルを確認する
		select {
		case <-ctx.Done():
			return i, ctx.Err()
		default:
		}

		if err := p.speaker.Speak(ctx, utt); err != nil {
			return i, err
		}
	}
	return len(utterances), nil
}

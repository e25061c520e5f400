// internal/service/speaker_google.go
package service

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
)

// GoogleSynthesizer は Google Cloud Text-to-Speech で音声を合成する実装です。
// 認証は Application Default Credentials に委ねます。
type GoogleSynthesizer struct {
	client *texttospeech.Client
}

func NewGoogleSynthesizer(ctx context.Context) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGoogleSynthesizer: %w", err)
	}
	return &GoogleSynthesizer{client: client}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	logger := middleware.GetLogger(ctx)
	if lang == "" {
		lang = model.LangEnglish
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		logger.Error("Failed to synthesize speech", "error", err, "lang", lang)
		return nil, fmt.Errorf("GoogleSynthesizer.Synthesize: %w", err)
	}
	return resp.AudioContent, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}

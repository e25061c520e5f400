// internal/model/review.go
package model

// 復習再生の設定値
const (
	PlayModeSingle = "single" // 例文1のみ
	PlayModeAll    = "all"    // 全例文

	LanguageModeEnglish = "english" // 英語例文のみ
	LanguageModeBoth    = "both"    // 英語例文 + 中国語訳

	LangEnglish = "en-US"
	LangChinese = "zh-TW"
)

// Utterance は読み上げ1件分のテキストと言語タグです
type Utterance struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// ReviewPlaylistResponse は復習再生リスト (読み上げ順) のレスポンスDTO
type ReviewPlaylistResponse struct {
	Utterances []Utterance `json:"utterances"`
	CardCount  int         `json:"card_count"`
}

// SpeakRequest は単発の読み上げリクエストDTO
type SpeakRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
	Lang string `json:"lang,omitempty" validate:"omitempty,bcp47_language_tag"`
}

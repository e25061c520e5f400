// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "FlashcardQuiz"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort           = ":8080"
	DefaultLogLevel             = "info"
	DefaultReviewLimit          = 50
	DefaultJWTExpiresInHours    = 24
	DefaultLLMEndpoint          = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultLLMModel             = "google/gemini-2.5-flash"
	DefaultLLMTimeoutSeconds    = 30
	DefaultWordInfoCacheMinutes = 1440 // 24時間
	DefaultReminderDailyAt      = "09:00"
)

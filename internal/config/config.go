// internal/config/config.go
package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"

	"go_5_flashcard_quiz/internal/quiz"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type JWTConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	ExpiresInHours int    `mapstructure:"expires_in_hours"`
}

type AppConfig struct {
	// クイズで習得済みと判定する連続正解数 (1〜3)
	RequiredStreak int `mapstructure:"required_streak"`
	// 復習再生の1回あたりの最大カード数
	ReviewLimit int    `mapstructure:"review_limit"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// LLMConfig は単語情報取得に使う チャット補完API (OpenAI互換) の設定です
type LLMConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	// 0 で無効。秒単位のHTTPタイムアウト。
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// SpeechConfig は読み上げ音声合成の設定です
type SpeechConfig struct {
	// "log" (開発用) または "google"
	Provider string `mapstructure:"provider"`
}

// RedisConfig は単語情報のキャッシュ設定です。Addr が空ならキャッシュ無効。
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	From            string `mapstructure:"from"`
	AuthType        string `mapstructure:"auth_type"` // "iam_role" or "static_credentials"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type MailerConfig struct {
	// "log", "smtp", "ses"
	Provider string `mapstructure:"provider"`
}

// ReminderConfig は未習得カードの定期リマインダー設定です
type ReminderConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// "15:04" 形式の毎日の送信時刻
	DailyAt string `mapstructure:"daily_at"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SES      SESConfig      `mapstructure:"ses"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

var Cfg *Config

// LoadConfig は config.yaml と環境変数から設定を読み込みます。
// 環境変数は APP_ 接頭辞つき (例: APP_JWT_SECRET_KEY) で上書きできます。
func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "APP_JWT_SECRET_KEY")
	viper.BindEnv("llm.api_key", "LLM_API_KEY")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	Cfg = &Config{}
	if err := viper.Unmarshal(Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.App.ReviewLimit <= 0 {
		Cfg.App.ReviewLimit = DefaultReviewLimit
	}
	if Cfg.App.RequiredStreak == 0 {
		Cfg.App.RequiredStreak = quiz.DefaultRequiredStreak
	}
	if Cfg.JWT.ExpiresInHours <= 0 {
		Cfg.JWT.ExpiresInHours = DefaultJWTExpiresInHours
	}
	if Cfg.LLM.Endpoint == "" {
		Cfg.LLM.Endpoint = DefaultLLMEndpoint
	}
	if Cfg.LLM.Model == "" {
		Cfg.LLM.Model = DefaultLLMModel
	}
	if Cfg.LLM.TimeoutSeconds <= 0 {
		Cfg.LLM.TimeoutSeconds = DefaultLLMTimeoutSeconds
	}
	if Cfg.Redis.TTLMinutes <= 0 {
		Cfg.Redis.TTLMinutes = DefaultWordInfoCacheMinutes
	}
	if Cfg.Speech.Provider == "" {
		Cfg.Speech.Provider = "log"
	}
	if Cfg.Mailer.Provider == "" {
		Cfg.Mailer.Provider = "log"
	}
	if Cfg.Reminder.DailyAt == "" {
		Cfg.Reminder.DailyAt = DefaultReminderDailyAt
	}

	// 設定ミスを起動時に検出する (丸め込みはしない)
	if Cfg.App.RequiredStreak < quiz.MinRequiredStreak || Cfg.App.RequiredStreak > quiz.MaxRequiredStreak {
		return fmt.Errorf("app.required_streak must be between %d and %d, got %d",
			quiz.MinRequiredStreak, quiz.MaxRequiredStreak, Cfg.App.RequiredStreak)
	}

	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	log.Println("Config loaded successfully")
	return nil
}

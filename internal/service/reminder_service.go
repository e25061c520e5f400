// internal/service/reminder_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/repository"
)

// ReminderService は未習得カードが残っているユーザーへ毎日決まった時刻に
// 学習リマインドを送ります。メールに加えて、Telegramのチャットを紐づけている
// ユーザーにはBot経由でも通知します。
type ReminderService struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	mailer       Mailer
	bot          *tgbotapi.BotAPI // 未設定ならnil
	cfg          *config.Config
	logger       *slog.Logger

	scheduler *gocron.Scheduler
}

func NewReminderService(db *gorm.DB, userRepo repository.UserRepository, progressRepo repository.ProgressRepository, mailer Mailer, cfg *config.Config, logger *slog.Logger) *ReminderService {
	var bot *tgbotapi.BotAPI
	if cfg.Telegram.BotToken != "" {
		b, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Warn("Telegram bot unavailable, reminders fall back to email only", "error", err)
		} else {
			bot = b
		}
	}
	return &ReminderService{
		db:           db,
		userRepo:     userRepo,
		progressRepo: progressRepo,
		mailer:       mailer,
		bot:          bot,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start は毎日 cfg.Reminder.DailyAt (HH:MM) にリマインド送信ジョブを起動します
func (s *ReminderService) Start() error {
	if !s.cfg.Reminder.Enabled {
		s.logger.Info("Reminder scheduler disabled")
		return nil
	}

	s.scheduler = gocron.NewScheduler(time.Local)
	_, err := s.scheduler.Every(1).Day().At(s.cfg.Reminder.DailyAt).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.SendReminders(ctx)
	})
	if err != nil {
		return fmt.Errorf("ReminderService.Start: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("Reminder scheduler started", "daily_at", s.cfg.Reminder.DailyAt)
	return nil
}

func (s *ReminderService) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// SendReminders は有効な全ユーザーの未習得カード数を調べ、残っている
// ユーザーにだけ通知を送ります。1ユーザーの失敗で全体は止めません。
func (s *ReminderService) SendReminders(ctx context.Context) {
	users, err := s.userRepo.ListActive(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to list users for reminders", "error", err)
		return
	}

	var sent int
	for _, user := range users {
		count, err := s.progressRepo.CountUnlearnedByUser(ctx, s.db, user.UserID)
		if err != nil {
			s.logger.Error("Failed to count unlearned cards", "user_id", user.UserID.String(), "error", err)
			continue
		}
		if count == 0 {
			continue
		}

		body := fmt.Sprintf("未習得の単語カードが%d枚あります。今日も学習を続けましょう!", count)
		if err := s.mailer.Send(ctx, user.Email, "今日の学習リマインド", body); err != nil {
			s.logger.Error("Failed to send reminder email", "user_id", user.UserID.String(), "error", err)
		} else {
			sent++
		}

		if s.bot != nil && user.TelegramChatID != nil {
			msg := tgbotapi.NewMessage(*user.TelegramChatID, body)
			if _, err := s.bot.Send(msg); err != nil {
				s.logger.Error("Failed to send Telegram reminder", "user_id", user.UserID.String(), "error", err)
			}
		}
	}
	s.logger.Info("Reminder run finished", "users", len(users), "sent", sent)
}

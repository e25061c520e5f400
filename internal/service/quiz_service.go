// internal/service/quiz_service.go
package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/quiz"
	"go_5_flashcard_quiz/internal/repository"
)

type QuizService interface {
	GetQuizSession(ctx context.Context, userID uuid.UUID, requiredStreak *int) (*model.QuizSessionResponse, error)
	SubmitAnswer(ctx context.Context, userID, flashcardID uuid.UUID, req *model.SubmitQuizAnswerRequest) (*model.SubmitQuizAnswerResponse, error)
	GetProgress(ctx context.Context, userID uuid.UUID) ([]*model.ProgressResponse, error)
}

type quizService struct {
	db           *gorm.DB
	cardRepo     repository.FlashcardRepository
	progressRepo repository.ProgressRepository
	cfg          *config.Config
	newRng       func() *rand.Rand // テストで固定シードに差し替える
}

func NewQuizService(db *gorm.DB, cardRepo repository.FlashcardRepository, progressRepo repository.ProgressRepository, cfg *config.Config) QuizService {
	return &quizService{
		db:           db,
		cardRepo:     cardRepo,
		progressRepo: progressRepo,
		cfg:          cfg,
		newRng: func() *rand.Rand {
			now := time.Now()
			return rand.New(rand.NewPCG(uint64(now.Unix()), uint64(now.UnixNano())))
		},
	}
}

// GetQuizSession はユーザーの全カードから出題対象を確定し、
// 穴埋め問題の一覧を生成して返します。例文を持たないカードと
// 習得済みのカードは出題対象になりません。requiredStreak を指定すると
// このセッションに適用される閾値として応答に反映されます (省略時は設定値)。
func (s *quizService) GetQuizSession(ctx context.Context, userID uuid.UUID, requiredStreak *int) (*model.QuizSessionResponse, error) {
	logger := middleware.GetLogger(ctx)

	streak := s.cfg.App.RequiredStreak
	if requiredStreak != nil {
		streak = *requiredStreak
	}
	if streak < quiz.MinRequiredStreak || streak > quiz.MaxRequiredStreak {
		return nil, model.NewAppError("INVALID_REQUIRED_STREAK",
			"連続正解数の閾値は1〜3の範囲で指定してください。", "required_streak", model.ErrInvalidInput)
	}

	cards, err := s.cardRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Failed to list flashcards for quiz", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの取得に失敗しました。", "", err)
	}
	learned, err := s.progressRepo.LearnedIDsByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Failed to load learned flashcard IDs", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "習熟状況の取得に失敗しました。", "", err)
	}

	session := quiz.NewSession(cards, learned, s.newRng())
	questions := make([]*model.QuizQuestion, 0, session.Len())
	for !session.Done() {
		questions = append(questions, session.Current())
		session.Advance()
	}

	return &model.QuizSessionResponse{
		Questions:      questions,
		TotalQuestions: len(questions),
		RequiredStreak: streak,
	}, nil
}

// SubmitAnswer は1回の回答を習熟状況に反映します。進捗レコードは
// 初回回答時に遅延作成します。同一カードへの並行回答は後勝ちです。
func (s *quizService) SubmitAnswer(ctx context.Context, userID, flashcardID uuid.UUID, req *model.SubmitQuizAnswerRequest) (*model.SubmitQuizAnswerResponse, error) {
	logger := middleware.GetLogger(ctx)

	requiredStreak := s.cfg.App.RequiredStreak
	if req.RequiredStreak != nil {
		requiredStreak = *req.RequiredStreak
	}

	var resp *model.SubmitQuizAnswerResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// カードの実在と所有者を確認する
		if _, err := s.cardRepo.FindByID(ctx, tx, userID, flashcardID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CARD_NOT_FOUND", "単語カードが見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "単語カードの取得に失敗しました。", "", err)
		}

		progress, err := s.progressRepo.FindByFlashcardID(ctx, tx, userID, flashcardID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "習熟状況の取得に失敗しました。", "", err)
		}

		var prev *quiz.ProgressState
		if progress != nil {
			prev = &quiz.ProgressState{
				CorrectStreak: progress.CorrectStreak,
				IsLearned:     progress.IsLearned,
				ReviewCount:   progress.ReviewCount,
			}
			if progress.LastReviewedAt != nil {
				prev.LastReviewedAt = *progress.LastReviewedAt
			}
		}

		next, err := quiz.SubmitAnswer(prev, *req.IsCorrect, requiredStreak, time.Now())
		if err != nil {
			if errors.Is(err, quiz.ErrInvalidRequiredStreak) {
				return model.NewAppError("INVALID_REQUIRED_STREAK", "連続正解数の閾値は1〜3で指定してください。", "required_streak", model.ErrInvalidInput)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "回答の反映に失敗しました。", "", err)
		}

		lastReviewedAt := next.LastReviewedAt
		if progress == nil {
			progress = &model.FlashcardProgress{
				ProgressID:     uuid.New(),
				UserID:         userID,
				FlashcardID:    flashcardID,
				CorrectStreak:  next.CorrectStreak,
				IsLearned:      next.IsLearned,
				ReviewCount:    next.ReviewCount,
				LastReviewedAt: &lastReviewedAt,
			}
			if err := s.progressRepo.Create(ctx, tx, progress); err != nil {
				logger.Error("Failed to create progress record", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "習熟状況の保存に失敗しました。", "", err)
			}
		} else {
			progress.CorrectStreak = next.CorrectStreak
			progress.IsLearned = next.IsLearned
			progress.ReviewCount = next.ReviewCount
			progress.LastReviewedAt = &lastReviewedAt
			if err := s.progressRepo.Update(ctx, tx, progress); err != nil {
				logger.Error("Failed to update progress record", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "習熟状況の保存に失敗しました。", "", err)
			}
		}

		resp = &model.SubmitQuizAnswerResponse{
			FlashcardID:   flashcardID,
			CorrectStreak: progress.CorrectStreak,
			IsLearned:     progress.IsLearned,
			ReviewCount:   progress.ReviewCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *quizService) GetProgress(ctx context.Context, userID uuid.UUID) ([]*model.ProgressResponse, error) {
	progresses, err := s.progressRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "習熟状況の一覧取得に失敗しました。", "", err)
	}

	resp := make([]*model.ProgressResponse, 0, len(progresses))
	for _, p := range progresses {
		item := &model.ProgressResponse{
			FlashcardID:    p.FlashcardID,
			CorrectStreak:  p.CorrectStreak,
			IsLearned:      p.IsLearned,
			ReviewCount:    p.ReviewCount,
			LastReviewedAt: p.LastReviewedAt,
		}
		if p.Flashcard != nil {
			item.Front = p.Flashcard.Front
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// internal/service/auth_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	VerifyAccount(ctx context.Context, tokenString string) error
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	mailer    Mailer
	cfg       *config.Config
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		cfg:       cfg,
	}
}

// Register は新しいユーザーを登録し、有効化メールを送信します
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var newUser *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Emailでの重複チェック
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check email existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}

		// パスワードのハッシュ化
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
		}

		user := &model.User{
			UserID:       uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			IsActive:     false,
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// レースコンディションで一意制約に当たった場合
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during user creation (race condition)", "error", err)
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Failed to create user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}
		newUser = user

		tokenString, err := s.generateAndSaveVerificationToken(ctx, tx, user.UserID)
		if err != nil {
			return err
		}

		if err := s.sendVerificationEmail(ctx, user.Email, tokenString); err != nil {
			return model.NewAppError("EMAIL_SEND_FAILED", "確認メールの送信に失敗しました。時間をおいて再度お試しください。", "", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return newUser, nil
}

// VerifyAccount は有効化トークンを検証し、ユーザーを有効化します
func (s *authService) VerifyAccount(ctx context.Context, tokenString string) error {
	logger := middleware.GetLogger(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.tokenRepo.FindVerificationToken(ctx, tx, tokenString)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("INVALID_TOKEN", "有効化トークンが無効です。", "token", model.ErrInvalidInput)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの確認中にエラーが発生しました。", "", err)
		}
		if time.Now().After(token.ExpiresAt) {
			return model.NewAppError("TOKEN_EXPIRED", "有効化トークンの有効期限が切れています。", "token", model.ErrInvalidInput)
		}

		user, err := s.userRepo.FindByID(ctx, tx, token.UserID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの取得に失敗しました。", "", err)
		}

		user.IsActive = true
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの有効化に失敗しました。", "", err)
		}

		// 使用済みトークンは削除する
		if err := s.tokenRepo.DeleteVerificationToken(ctx, tx, tokenString); err != nil {
			logger.Warn("Failed to delete used verification token", "error", err)
		}

		logger.Info("Account verified", "user_id", user.UserID.String())
		return nil
	})
}

// Login はメールアドレスとパスワードを検証し、JWTを発行します
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// ユーザーの存在を知らせないため、パスワード不一致と同じエラーを返す
			return nil, model.NewAppError("INVALID_CREDENTIALS", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login failed: password mismatch", "email", req.Email)
		return nil, model.NewAppError("INVALID_CREDENTIALS", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, model.NewAppError("ACCOUNT_NOT_VERIFIED", "アカウントが有効化されていません。確認メールをご確認ください。", "", model.ErrForbidden)
	}

	claims := model.JWTCustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.AppName,
			Subject:   user.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.cfg.JWT.ExpiresInHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの発行に失敗しました。", "", err)
	}

	logger.Info("Login succeeded", "user_id", user.UserID.String())
	return &model.LoginResponse{AccessToken: signed}, nil
}

func (s *authService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの取得に失敗しました。", "", err)
	}
	return user, nil
}

// RequestPasswordReset はパスワード再設定メールを送信します。
// ユーザーの存在を知らせないため、未登録のメールアドレスでも成功として扱います。
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Password reset requested for unknown email", "email", email)
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	tokenString, err := generateSecureToken()
	if err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	resetToken := &model.PasswordResetToken{
		Token:     tokenString,
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := s.tokenRepo.CreatePasswordResetToken(ctx, s.db, resetToken); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.App.FrontendURL, tokenString)
	body := fmt.Sprintf("以下のURLからパスワードを再設定してください (有効期限: 1時間)。\n\n%s", resetURL)
	if err := s.mailer.Send(ctx, user.Email, "パスワード再設定のご案内", body); err != nil {
		return model.NewAppError("EMAIL_SEND_FAILED", "メールの送信に失敗しました。", "", err)
	}
	return nil
}

// ResetPassword はトークンを検証し、新しいパスワードを設定します
func (s *authService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.tokenRepo.FindPasswordResetToken(ctx, tx, tokenString)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("INVALID_TOKEN", "再設定トークンが無効です。", "token", model.ErrInvalidInput)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの確認中にエラーが発生しました。", "", err)
		}
		if time.Now().After(token.ExpiresAt) {
			return model.NewAppError("TOKEN_EXPIRED", "再設定トークンの有効期限が切れています。", "token", model.ErrInvalidInput)
		}

		user, err := s.userRepo.FindByID(ctx, tx, token.UserID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの取得に失敗しました。", "", err)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
		}
		user.PasswordHash = string(hashedPassword)
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの更新に失敗しました。", "", err)
		}

		if err := s.tokenRepo.DeletePasswordResetToken(ctx, tx, tokenString); err != nil {
			middleware.GetLogger(ctx).Warn("Failed to delete used password reset token", "error", err)
		}
		return nil
	})
}

func (s *authService) generateAndSaveVerificationToken(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (string, error) {
	logger := middleware.GetLogger(ctx)

	tokenString, err := generateSecureToken()
	if err != nil {
		logger.Error("Failed to generate verification token", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	token := &model.UserVerificationToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := s.tokenRepo.CreateVerificationToken(ctx, tx, token); err != nil {
		logger.Error("Failed to save verification token", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}
	return tokenString, nil
}

func (s *authService) sendVerificationEmail(ctx context.Context, email, tokenString string) error {
	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.cfg.App.FrontendURL, tokenString)
	body := fmt.Sprintf("以下のURLをクリックしてアカウントを有効化してください (有効期限: 24時間)。\n\n%s", verifyURL)
	return s.mailer.Send(ctx, email, "アカウントの有効化", body)
}

// generateSecureToken は暗号学的に安全なランダムトークンを生成します
func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

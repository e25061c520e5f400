// internal/handlers/auth_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/service"
	"go_5_flashcard_quiz/internal/webutil"
)

type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(s service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service: s,
		logger:  logger,
	}
}

// Register は新規ユーザー登録のハンドラ。登録後に確認メールを送信する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Register"))

	var req model.RegisterRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		logger.Error("Error registering user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User registered successfully", slog.String("user_id", user.UserID.String()))
	resp := model.UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// Verify は確認メールのトークンでアカウントを有効化するハンドラ
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Verify"))

	token := r.URL.Query().Get("token")
	if token == "" {
		appErr := model.NewAppError("INVALID_URL_PARAM", "tokenを指定してください。", "token", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.VerifyAccount(r.Context(), token); err != nil {
		logger.Warn("Account verification failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Account verified successfully")
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "アカウントを有効化しました。"}, logger)
}

// Login はメールアドレスとパスワードでログインし、アクセストークンを返すハンドラ
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Login"))

	var req model.LoginRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		logger.Warn("Login failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// Me はログイン中のユーザー情報を返すハンドラ
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Me"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		logger.Error("Error getting user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp := model.UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// ForgotPassword はパスワード再設定メールの送信を受け付けるハンドラ。
// メールアドレスの登録有無にかかわらず202を返す。
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ForgotPassword"))

	var req model.ForgotPasswordRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		logger.Error("Error requesting password reset in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "パスワード再設定メールを送信しました。"}, logger)
}

// ResetPassword は再設定トークンで新しいパスワードを設定するハンドラ
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ResetPassword"))

	var req model.ResetPasswordRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		logger.Warn("Password reset failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Password reset successfully")
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "パスワードを再設定しました。"}, logger)
}

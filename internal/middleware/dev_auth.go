// internal/middleware/dev_auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/webutil"
)

// DevUserContextMiddleware は開発・テスト用の認証ミドルウェアです。
// X-User-ID ヘッダーをそのまま信用してコンテキストに格納します。本番では使用しないこと。
func DevUserContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			appErr := model.NewAppError("UNAUTHORIZED", "X-User-IDヘッダーが必要です。", "", model.ErrUnauthorized)
			webutil.HandleError(w, logger, appErr)
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			appErr := model.NewAppError("UNAUTHORIZED", "X-User-IDの形式が正しくありません。", "", model.ErrUnauthorized)
			webutil.HandleError(w, logger, appErr)
			return
		}

		ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

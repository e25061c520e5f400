// internal/handlers/quiz_handler_test.go
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_5_flashcard_quiz/internal/model"
	"go_5_flashcard_quiz/internal/quiz"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestQuizHandler_GetQuizSession(t *testing.T) {
	env := setupTestEnv(t)
	user := seedUser(t, env.db)
	withExample := seedCard(t, env.db, user.UserID, "resilient", "She is resilient under pressure.")
	seedCard(t, env.db, user.UserID, "ephemeral", "") // 例文なしは出題対象外

	t.Run("正常系: 例文ありのカードだけが穴埋め問題になる", func(t *testing.T) {
		req := createRequest(t, http.MethodGet, "/api/v1/quiz/session", nil, &user.UserID)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.QuizSessionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Equal(t, 1, got.TotalQuestions)
		require.Len(t, got.Questions, 1)
		q := got.Questions[0]
		assert.Equal(t, withExample.FlashcardID, q.FlashcardID)
		assert.Equal(t, "resilient", q.CorrectAnswer)
		assert.Contains(t, q.Sentence, quiz.BlankToken)
		assert.False(t, strings.Contains(strings.ToLower(q.Sentence), "resilient"))
		assert.Equal(t, 2, got.RequiredStreak)
	})

	t.Run("正常系: 出題対象がなければ空のセッション", func(t *testing.T) {
		empty := seedUser(t, env.db)
		req := createRequest(t, http.MethodGet, "/api/v1/quiz/session", nil, &empty.UserID)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.QuizSessionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Zero(t, got.TotalQuestions)
	})
}

func TestQuizHandler_PostQuizAnswer(t *testing.T) {
	env := setupTestEnv(t)
	user := seedUser(t, env.db)
	card := seedCard(t, env.db, user.UserID, "resilient", "She is resilient under pressure.")
	answerPath := "/api/v1/quiz/" + card.FlashcardID.String() + "/answer"

	postAnswer := func(t *testing.T, body model.SubmitQuizAnswerRequest) *httptest.ResponseRecorder {
		t.Helper()
		req := createRequest(t, http.MethodPost, answerPath, body, &user.UserID)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("正常系: 連続正解数が規定回数に達すると習得済みになる", func(t *testing.T) {
		rr := postAnswer(t, model.SubmitQuizAnswerRequest{IsCorrect: boolPtr(true)})
		require.Equal(t, http.StatusOK, rr.Code)
		var got model.SubmitQuizAnswerResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 1, got.CorrectStreak)
		assert.False(t, got.IsLearned)

		rr = postAnswer(t, model.SubmitQuizAnswerRequest{IsCorrect: boolPtr(true)})
		require.Equal(t, http.StatusOK, rr.Code)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 2, got.CorrectStreak)
		assert.True(t, got.IsLearned)
	})

	t.Run("正常系: 不正解で連続正解数はリセットされる", func(t *testing.T) {
		rr := postAnswer(t, model.SubmitQuizAnswerRequest{IsCorrect: boolPtr(false)})
		require.Equal(t, http.StatusOK, rr.Code)
		var got model.SubmitQuizAnswerResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Zero(t, got.CorrectStreak)
		assert.Equal(t, 3, got.ReviewCount) // 回答履歴は積み上がる
	})

	t.Run("異常系: 規定回数の範囲外は400", func(t *testing.T) {
		rr := postAnswer(t, model.SubmitQuizAnswerRequest{IsCorrect: boolPtr(true), RequiredStreak: intPtr(5)})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeErrorResponse(t, rr.Body)
		assert.Equal(t, "INVALID_REQUIRED_STREAK", resp.Error.Code)
	})

	t.Run("異常系: is_correct欠落は400", func(t *testing.T) {
		rr := postAnswer(t, model.SubmitQuizAnswerRequest{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("異常系: 存在しないカードへの回答は404", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/api/v1/quiz/"+uuid.NewString()+"/answer",
			model.SubmitQuizAnswerRequest{IsCorrect: boolPtr(true)}, &user.UserID)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestQuizHandler_GetProgress(t *testing.T) {
	env := setupTestEnv(t)
	user := seedUser(t, env.db)
	card := seedCard(t, env.db, user.UserID, "resilient", "She is resilient.")

	t.Run("正常系: 回答前は空配列", func(t *testing.T) {
		req := createRequest(t, http.MethodGet, "/api/v1/progress", nil, &user.UserID)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("正常系: 回答後は見出し語付きの進捗が返る", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/api/v1/quiz/"+card.FlashcardID.String()+"/answer",
			model.SubmitQuizAnswerRequest{IsCorrect: boolPtr(true)}, &user.UserID)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		req = createRequest(t, http.MethodGet, "/api/v1/progress", nil, &user.UserID)
		rr = httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got []*model.ProgressResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "resilient", got[0].Front)
		assert.Equal(t, 1, got[0].CorrectStreak)
	})
}

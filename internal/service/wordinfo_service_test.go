// internal/service/wordinfo_service_test.go
package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/model"
)

// newFakeLLMServer はchat completions互換の応答を返すテスト用サーバーを立てる
func newFakeLLMServer(t *testing.T, content string, status int, gotReqs *[]chatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if gotReqs != nil {
			*gotReqs = append(*gotReqs, req)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := chatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: content}})
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestWordInfoService(endpoint string) WordInfoService {
	cfg := &config.Config{}
	cfg.LLM.Endpoint = endpoint
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "test-model"
	cfg.LLM.TimeoutSeconds = 5
	return NewWordInfoService(nil, cfg) // キャッシュなし
}

func Test_wordInfoService_LookupWordInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: LLMの応答をWordInfoとして返す", func(t *testing.T) {
		body := `{"phonetic":"/rɪˈzɪliənt/","chineseDefinition":"有韌性的","synonyms":["tough","hardy"],` +
			`"exampleSentence1":"She is resilient under pressure.","exampleTranslation1":"她在壓力下很有韌性。"}`
		var gotReqs []chatCompletionRequest
		srv := newFakeLLMServer(t, body, http.StatusOK, &gotReqs)
		defer srv.Close()
		s := newTestWordInfoService(srv.URL)

		info, err := s.LookupWordInfo(ctx, &model.WordInfoRequest{Word: "resilient"})
		require.NoError(t, err)
		assert.Equal(t, "/rɪˈzɪliənt/", info.Phonetic)
		assert.Equal(t, "有韌性的", info.ChineseDefinition)
		assert.Equal(t, []string{"tough", "hardy"}, info.Synonyms)
		assert.Equal(t, "She is resilient under pressure.", info.ExampleSentence1)

		// システムプロンプト + 単語が送られている
		require.Len(t, gotReqs, 1)
		require.Len(t, gotReqs[0].Messages, 2)
		assert.Equal(t, "system", gotReqs[0].Messages[0].Role)
		assert.Equal(t, "resilient", gotReqs[0].Messages[1].Content)
	})

	t.Run("正常系: コードフェンスで囲まれた応答でもパースできる", func(t *testing.T) {
		body := "```json\n{\"phonetic\":\"/test/\"}\n```"
		srv := newFakeLLMServer(t, body, http.StatusOK, nil)
		defer srv.Close()
		s := newTestWordInfoService(srv.URL)

		info, err := s.LookupWordInfo(ctx, &model.WordInfoRequest{Word: "Test"})
		require.NoError(t, err)
		assert.Equal(t, "/test/", info.Phonetic)
	})

	t.Run("異常系: 空の単語はエラー", func(t *testing.T) {
		s := newTestWordInfoService("http://unused.invalid")

		_, err := s.LookupWordInfo(ctx, &model.WordInfoRequest{Word: "   "})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: LLMが5xxを返したら外部サービスエラー", func(t *testing.T) {
		srv := newFakeLLMServer(t, "", http.StatusInternalServerError, nil)
		defer srv.Close()
		s := newTestWordInfoService(srv.URL)

		_, err := s.LookupWordInfo(ctx, &model.WordInfoRequest{Word: "resilient"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrExternalService)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "WORD_INFO_UNAVAILABLE", appErr.Detail.Code)
	})

	t.Run("異常系: JSONでない応答は外部サービスエラー", func(t *testing.T) {
		srv := newFakeLLMServer(t, "Sorry, I can't help with that.", http.StatusOK, nil)
		defer srv.Close()
		s := newTestWordInfoService(srv.URL)

		_, err := s.LookupWordInfo(ctx, &model.WordInfoRequest{Word: "resilient"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrExternalService)
	})
}

func Test_extractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"素のJSON", `{"a":1}`, `{"a":1}`},
		{"コードフェンス付き", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"前後に説明文", "Here you go:\n{\"a\":1}\nHope this helps!", `{"a":1}`},
		{"JSONなし", "no json here", "no json here"}, // そのまま返して後段のUnmarshalで弾く
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSONObject(tc.content))
		})
	}
}

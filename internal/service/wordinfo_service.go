// internal/service/wordinfo_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/model"
)

// 単語情報の取得に使うシステムプロンプト。応答はJSONのみを要求する。
const wordInfoSystemPrompt = `You are an English-Chinese dictionary assistant. ` +
	`Given an English word, respond with a single JSON object and nothing else. ` +
	`Use these keys, omitting any you cannot fill: ` +
	`phonetic, chineseDefinition, englishDefinition, synonyms, antonyms, relatedWords, ` +
	`exampleSentence1, exampleTranslation1, exampleSource1, ` +
	`exampleSentence2, exampleTranslation2, exampleSource2, ` +
	`exampleSentence3, exampleTranslation3, exampleSource3. ` +
	`synonyms, antonyms and relatedWords are arrays of strings. ` +
	`Example translations are Traditional Chinese (zh-TW).`

type WordInfoService interface {
	LookupWordInfo(ctx context.Context, req *model.WordInfoRequest) (*model.WordInfo, error)
}

type wordInfoService struct {
	httpClient *http.Client
	rdb        *redis.Client // nilの場合はキャッシュなしで動作する
	cfg        *config.Config
}

func NewWordInfoService(rdb *redis.Client, cfg *config.Config) WordInfoService {
	return &wordInfoService{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		},
		rdb: rdb,
		cfg: cfg,
	}
}

// chat completions互換エンドポイントのリクエスト/レスポンス
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// LookupWordInfo は外部LLMから単語情報 (発音・定義・類義語・例文) を取得します。
// 同じ単語への問い合わせ結果はRedisにキャッシュします。
func (s *wordInfoService) LookupWordInfo(ctx context.Context, req *model.WordInfoRequest) (*model.WordInfo, error) {
	logger := middleware.GetLogger(ctx)
	word := strings.ToLower(strings.TrimSpace(req.Word))
	if word == "" {
		return nil, model.NewAppError("INVALID_WORD", "単語を指定してください。", "word", model.ErrInvalidInput)
	}

	cacheKey := "wordinfo:" + word
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var info model.WordInfo
			if err := json.Unmarshal(cached, &info); err == nil {
				logger.Debug("Word info cache hit", "word", word)
				return &info, nil
			}
		}
	}

	info, err := s.fetchFromLLM(ctx, word)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		ttl := time.Duration(s.cfg.Redis.TTLMinutes) * time.Minute
		if data, err := json.Marshal(info); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
				// キャッシュ失敗は応答を妨げない
				logger.Warn("Failed to cache word info", "word", word, "error", err)
			}
		}
	}
	return info, nil
}

func (s *wordInfoService) fetchFromLLM(ctx context.Context, word string) (*model.WordInfo, error) {
	logger := middleware.GetLogger(ctx)

	payload := chatCompletionRequest{
		Model: s.cfg.LLM.Model,
		Messages: []chatMessage{
			{Role: "system", Content: wordInfoSystemPrompt},
			{Role: "user", Content: word},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "リクエストの作成に失敗しました。", "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LLM.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "リクエストの作成に失敗しました。", "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.cfg.LLM.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.LLM.APIKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("LLM request failed", "word", word, "error", err)
		return nil, model.NewAppError("WORD_INFO_UNAVAILABLE", "単語情報の取得に失敗しました。", "", model.ErrExternalService)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logger.Error("LLM returned non-200 status", "word", word, "status", resp.StatusCode, "body", string(b))
		return nil, model.NewAppError("WORD_INFO_UNAVAILABLE", "単語情報の取得に失敗しました。", "", model.ErrExternalService)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		logger.Error("Failed to decode LLM response", "word", word, "error", err)
		return nil, model.NewAppError("WORD_INFO_UNAVAILABLE", "単語情報の解析に失敗しました。", "", model.ErrExternalService)
	}
	if len(completion.Choices) == 0 {
		return nil, model.NewAppError("WORD_INFO_UNAVAILABLE", "単語情報の解析に失敗しました。", "", model.ErrExternalService)
	}

	content := extractJSONObject(completion.Choices[0].Message.Content)
	var info model.WordInfo
	if err := json.Unmarshal([]byte(content), &info); err != nil {
		logger.Error("LLM response is not valid word info JSON", "word", word, "error", err)
		return nil, model.NewAppError("WORD_INFO_UNAVAILABLE", "単語情報の解析に失敗しました。", "", model.ErrExternalService)
	}
	return &info, nil
}

// extractJSONObject はマークダウンのコードフェンス等に包まれた応答から
// 最初のJSONオブジェクト部分を取り出します
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}

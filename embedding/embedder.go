package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	"hotel-review-rag/config"
)

// TaskType 임베딩 용도 (저장용 문서 / 검색 질문)
type TaskType int

const (
	TaskDocument TaskType = iota
	TaskQuery
)

// Embedder 텍스트를 고정 길이 벡터로 변환하는 인터페이스.
// 인덱스 구축과 검색은 반드시 같은 Embedder를 사용해야 합니다.
type Embedder interface {
	EmbedText(ctx context.Context, text string, task TaskType) ([]float32, error)
	ModelName() string
	Close() error
}

// New 설정에 맞는 임베딩 생성기를 생성합니다
func New(ctx context.Context, cfg config.EmbedderConfig) (Embedder, error) {
	switch cfg.Type {
	case "ollama", "":
		return NewOllamaEmbedder(OllamaConfig{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
			Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		}), nil
	case "gemini":
		apiKey := os.Getenv(cfg.Gemini.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("환경 변수 %s에 Gemini API Key가 설정되지 않았습니다", cfg.Gemini.APIKeyEnv)
		}
		return NewGeminiEmbedder(ctx, apiKey, cfg.Gemini.Model)
	default:
		return nil, fmt.Errorf("알 수 없는 임베딩 백엔드: %s", cfg.Type)
	}
}

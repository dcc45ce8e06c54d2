package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"hotel-review-rag/config"
)

// Generator 렌더링된 프롬프트를 받아 텍스트를 생성하는 언어 모델 인터페이스
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// New 설정에 맞는 언어 모델 클라이언트를 생성합니다
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Type {
	case "ollama", "":
		return NewOllamaGenerator(OllamaConfig{
			BaseURL:     cfg.Ollama.BaseURL,
			Model:       cfg.Ollama.Model,
			Temperature: cfg.Temperature,
			Timeout:     time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		}), nil
	case "gemini":
		apiKey := os.Getenv(cfg.Gemini.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("환경 변수 %s에 Gemini API Key가 설정되지 않았습니다", cfg.Gemini.APIKeyEnv)
		}
		return NewGeminiGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("알 수 없는 언어 모델 백엔드: %s", cfg.Type)
	}
}

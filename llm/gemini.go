package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-review-rag/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiGenerator Gemini API로 답변을 생성하는 구조체
type GeminiGenerator struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// NewGeminiGenerator 새로운 Gemini 생성기를 생성합니다
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, temperature float32) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("Gemini 클라이언트 생성 실패: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)

	return &GeminiGenerator{
		client:     client,
		model:      model,
		modelName:  modelName,
		maxRetries: 3,
		retryDelay: 30 * time.Second,
	}, nil
}

// Generate 프롬프트에 대한 답변을 생성합니다.
// Rate Limit 에러 발생 시 retryDelay 만큼 대기 후 재시도합니다.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			var parts []string
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if text, ok := part.(genai.Text); ok {
						parts = append(parts, string(text))
					}
				}
			}
			return strings.Join(parts, "\n"), nil
		}

		lastErr = err
		if !isRateLimit(err) || attempt == g.maxRetries-1 {
			break
		}

		fmt.Printf("⚠️  Rate Limit 에러 발생 (시도 %d/%d), %v 후 재시도...\n", attempt+1, g.maxRetries, g.retryDelay)
		select {
		case <-ctx.Done():
			return "", models.NewBackendError("gemini", ctx.Err())
		case <-time.After(g.retryDelay):
		}
	}

	return "", models.NewBackendError("gemini", lastErr)
}

func isRateLimit(err error) bool {
	return status.Code(err) == codes.ResourceExhausted
}

// ModelName 사용 중인 모델 이름을 반환합니다
func (g *GeminiGenerator) ModelName() string {
	return g.modelName
}

// Ping Gemini는 별도 상태 확인 API를 쓰지 않고 모델 정보 조회로 대신합니다
func (g *GeminiGenerator) Ping(ctx context.Context) error {
	if _, err := g.model.Info(ctx); err != nil {
		return models.NewBackendError("gemini", err)
	}
	return nil
}

// Close 클라이언트를 닫습니다
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

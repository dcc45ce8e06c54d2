package embedding

import (
	"context"
	"fmt"

	"hotel-review-rag/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEmbedder Gemini API를 사용하여 텍스트를 임베딩으로 변환하는 구조체
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

// NewGeminiEmbedder 새로운 Gemini 임베딩 생성기를 생성합니다
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("Gemini 클라이언트 생성 실패: %w", err)
	}
	if model == "" {
		model = "text-embedding-004"
	}

	return &GeminiEmbedder{client: client, modelName: model}, nil
}

// EmbedText 텍스트를 임베딩 벡터로 변환합니다.
// 저장 문서는 RETRIEVAL_DOCUMENT, 질문은 RETRIEVAL_QUERY 용도로 임베딩합니다.
func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string, task TaskType) ([]float32, error) {
	model := e.client.EmbeddingModel(e.modelName)
	model.TaskType = genai.TaskTypeRetrievalDocument
	if task == TaskQuery {
		model.TaskType = genai.TaskTypeRetrievalQuery
	}

	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, models.NewBackendError("gemini-embedding", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("임베딩 응답이 비어있습니다")
	}

	values := resp.Embedding.Values
	vector := make([]float32, len(values))
	for i, v := range values {
		vector[i] = float32(v)
	}
	return vector, nil
}

// ModelName 사용 중인 모델 이름을 반환합니다
func (e *GeminiEmbedder) ModelName() string {
	return e.modelName
}

// Close 클라이언트를 닫습니다
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}

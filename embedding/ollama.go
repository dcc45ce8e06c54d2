package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hotel-review-rag/models"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "bge-m3"
	DefaultOllamaTimeout = 30 * time.Second
)

// OllamaConfig Ollama 임베딩 설정
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OllamaEmbedder 로컬 Ollama 서버로 임베딩을 생성하는 구조체
type OllamaEmbedder struct {
	client  *http.Client
	baseURL string
	model   string
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaEmbedder 새로운 Ollama 임베딩 생성기를 생성합니다
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultOllamaTimeout
	}

	return &OllamaEmbedder{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// EmbedText 텍스트를 임베딩 벡터로 변환합니다. Ollama는 용도 구분이 없어 task는 무시됩니다.
func (e *OllamaEmbedder) EmbedText(ctx context.Context, text string, _ TaskType) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("요청 직렬화 실패: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("요청 생성 실패: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, models.NewBackendError("ollama-embedding", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, &models.BackendError{
			Backend: "ollama-embedding",
			Kind:    models.KindOther,
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(msg)),
		}
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("응답 디코딩 실패: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, errors.New("임베딩 응답이 비어있습니다")
	}

	vector := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// ModelName 사용 중인 모델 이름을 반환합니다
func (e *OllamaEmbedder) ModelName() string {
	return e.model
}

// Close HTTP 클라이언트는 별도 정리가 필요 없습니다
func (e *OllamaEmbedder) Close() error {
	return nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hotel-review-rag/models"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "qwen2:1.5b"
	DefaultOllamaTimeout = 120 * time.Second
)

// OllamaConfig Ollama 언어 모델 설정
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// OllamaGenerator 로컬 Ollama 서버의 /api/generate를 호출하는 구조체
type OllamaGenerator struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float32
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	Temperature float32 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewOllamaGenerator 새로운 Ollama 클라이언트를 생성합니다
func NewOllamaGenerator(cfg OllamaConfig) *OllamaGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultOllamaTimeout
	}

	return &OllamaGenerator{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Generate 프롬프트에 대한 답변을 생성합니다
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  false,
		Options: &options{Temperature: g.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("요청 직렬화 실패: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("요청 생성 실패: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", models.NewBackendError("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		msg := string(raw)
		var errResp errorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return "", &models.BackendError{
			Backend: "ollama",
			Kind:    models.KindOther,
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("응답 디코딩 실패: %w", err)
	}
	return out.Response, nil
}

// ModelName 사용 중인 모델 이름을 반환합니다
func (g *OllamaGenerator) ModelName() string {
	return g.model
}

// Ping /api/tags를 호출해 서버 연결을 확인합니다
func (g *OllamaGenerator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("요청 생성 실패: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return models.NewBackendError("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.BackendError{
			Backend: "ollama",
			Kind:    models.KindOther,
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return nil
}

// Close HTTP 클라이언트는 별도 정리가 필요 없습니다
func (g *OllamaGenerator) Close() error {
	return nil
}

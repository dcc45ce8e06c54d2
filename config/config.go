package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정 구조체
type Config struct {
	App       AppConfig       `yaml:"app" toml:"app"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus" toml:"corpus"`
	Index     IndexConfig     `yaml:"index" toml:"index"`
	Embedder  EmbedderConfig  `yaml:"embedder" toml:"embedder"`
	LLM       LLMConfig       `yaml:"llm" toml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval" toml:"retrieval"`
	Synthesis SynthesisConfig `yaml:"synthesis" toml:"synthesis"`
	Frontend  FrontendConfig  `yaml:"frontend" toml:"frontend"`
}

type AppConfig struct {
	Name        string `yaml:"name" toml:"name"`
	Environment string `yaml:"environment" toml:"environment"`
	Version     string `yaml:"version" toml:"version"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// CorpusConfig 리뷰 코퍼스 위치 설정 (source: csv | notion)
type CorpusConfig struct {
	Source string       `yaml:"source" toml:"source"`
	Path   string       `yaml:"path" toml:"path"`
	Column string       `yaml:"column" toml:"column"`
	Notion NotionConfig `yaml:"notion" toml:"notion"`
}

type NotionConfig struct {
	DatabaseID string `yaml:"database_id" toml:"database_id"`
	APIKeyEnv  string `yaml:"api_key_env" toml:"api_key_env"`
}

// IndexConfig 벡터 DB 저장 위치 설정
type IndexConfig struct {
	Path             string `yaml:"path" toml:"path"`
	Collection       string `yaml:"collection" toml:"collection"`
	Compress         bool   `yaml:"compress" toml:"compress"`
	EmbedConcurrency int    `yaml:"embed_concurrency" toml:"embed_concurrency"`
}

// EmbedderConfig 임베딩 백엔드 설정 (type: ollama | gemini)
type EmbedderConfig struct {
	Type   string       `yaml:"type" toml:"type"`
	Ollama OllamaConfig `yaml:"ollama" toml:"ollama"`
	Gemini GeminiConfig `yaml:"gemini" toml:"gemini"`
}

// LLMConfig 언어 모델 백엔드 설정 (type: ollama | gemini)
type LLMConfig struct {
	Type        string       `yaml:"type" toml:"type"`
	Temperature float32      `yaml:"temperature" toml:"temperature"`
	Ollama      OllamaConfig `yaml:"ollama" toml:"ollama"`
	Gemini      GeminiConfig `yaml:"gemini" toml:"gemini"`
}

type OllamaConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	Model       string `yaml:"model" toml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

type GeminiConfig struct {
	APIKeyEnv string `yaml:"api_key_env" toml:"api_key_env"`
	Model     string `yaml:"model" toml:"model"`
}

type RetrievalConfig struct {
	TopK          int     `yaml:"top_k" toml:"top_k"`
	MinSimilarity float32 `yaml:"min_similarity" toml:"min_similarity"`
}

// SynthesisConfig map-reduce 요약 설정. 프롬프트가 비어있으면 기본 프롬프트를 사용합니다.
type SynthesisConfig struct {
	MapConcurrency  int    `yaml:"map_concurrency" toml:"map_concurrency"`
	MaxCombineChars int    `yaml:"max_combine_chars" toml:"max_combine_chars"`
	QuestionPrompt  string `yaml:"question_prompt" toml:"question_prompt"`
	CombinePrompt   string `yaml:"combine_prompt" toml:"combine_prompt"`
}

type FrontendConfig struct {
	IndexPath string `yaml:"index_path" toml:"index_path"`
}

// Default 기본 설정을 반환합니다
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "hotel-review-rag",
			Environment: "development",
			Version:     "1.0.0",
		},
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000},
		Corpus: CorpusConfig{
			Source: "csv",
			Path:   "data/hotel_comments.csv",
			Column: "review",
			Notion: NotionConfig{APIKeyEnv: "NOTION_API_KEY"},
		},
		Index: IndexConfig{
			Path:             "data/vector_db",
			Collection:       "hotel_reviews",
			EmbedConcurrency: 4,
		},
		Embedder: EmbedderConfig{
			Type: "ollama",
			Ollama: OllamaConfig{
				BaseURL:     "http://localhost:11434",
				Model:       "bge-m3",
				TimeoutSecs: 30,
			},
			Gemini: GeminiConfig{APIKeyEnv: "GEMINI_API_KEY", Model: "text-embedding-004"},
		},
		LLM: LLMConfig{
			Type:        "ollama",
			Temperature: 0.1,
			Ollama: OllamaConfig{
				BaseURL:     "http://localhost:11434",
				Model:       "qwen2:1.5b",
				TimeoutSecs: 120,
			},
			Gemini: GeminiConfig{APIKeyEnv: "GEMINI_API_KEY", Model: "gemini-2.5-flash"},
		},
		Retrieval: RetrievalConfig{TopK: 20},
		Synthesis: SynthesisConfig{MapConcurrency: 1, MaxCombineChars: 4000},
		Frontend:  FrontendConfig{IndexPath: "frontend/index.html"},
	}
}

// Load 설정 파일을 읽습니다. 파일이 없으면 기본값을 사용합니다.
// 확장자가 .toml이면 TOML, 그 외에는 YAML로 읽습니다.
// .env 파일과 환경 변수 값이 파일 설정보다 우선합니다.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env 파일이 없어 환경 변수만 사용합니다")
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 파일이 없으면 기본 설정 파일을 생성하고 기본값으로 계속 진행
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("기본 설정 파일 생성 실패: %w", err)
		}
		fmt.Printf("📝 설정 파일이 없어 기본 설정으로 생성했습니다: %s\n", path)
	default:
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 설정을 파일로 저장합니다 (확장자가 .toml이면 TOML, 그 외에는 YAML)
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("설정 디렉터리 생성 실패: %w", err)
	}
	data, err := marshal(path, cfg)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}

// Validate 필수 값을 검증합니다
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port가 올바르지 않습니다: %d", c.Server.Port)
	}
	if c.Index.Path == "" {
		return fmt.Errorf("index.path가 설정되지 않았습니다")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k는 1 이상이어야 합니다: %d", c.Retrieval.TopK)
	}
	switch c.Corpus.Source {
	case "csv":
		if c.Corpus.Path == "" {
			return fmt.Errorf("corpus.path가 설정되지 않았습니다")
		}
	case "notion":
		if c.Corpus.Notion.DatabaseID == "" {
			return fmt.Errorf("corpus.notion.database_id가 설정되지 않았습니다")
		}
	default:
		return fmt.Errorf("알 수 없는 corpus.source: %s", c.Corpus.Source)
	}
	if c.Synthesis.MaxCombineChars < 0 {
		return fmt.Errorf("synthesis.max_combine_chars는 0 이상이어야 합니다: %d", c.Synthesis.MaxCombineChars)
	}
	if c.Corpus.Column == "" {
		return fmt.Errorf("corpus.column이 설정되지 않았습니다")
	}
	if !isBackend(c.Embedder.Type) {
		return fmt.Errorf("알 수 없는 embedder.type: %s", c.Embedder.Type)
	}
	if !isBackend(c.LLM.Type) {
		return fmt.Errorf("알 수 없는 llm.type: %s", c.LLM.Type)
	}
	return nil
}

// Addr 서버 리슨 주소를 반환합니다
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func isBackend(t string) bool {
	return t == "ollama" || t == "gemini"
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.Corpus.Path = getEnv("CORPUS_PATH", cfg.Corpus.Path)
	cfg.Index.Path = getEnv("INDEX_PATH", cfg.Index.Path)

	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Embedder.Ollama.BaseURL = v
		cfg.LLM.Ollama.BaseURL = v
	}
	cfg.LLM.Ollama.Model = getEnv("LLM_MODEL", cfg.LLM.Ollama.Model)
	cfg.Embedder.Ollama.Model = getEnv("EMBED_MODEL", cfg.Embedder.Ollama.Model)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️  %s 값이 정수가 아닙니다. 기본값 %d를 사용합니다", key, defaultValue)
		return defaultValue
	}
	return value
}

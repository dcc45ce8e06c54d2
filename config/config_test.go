package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "review", cfg.Corpus.Column)
	assert.Equal(t, 20, cfg.Retrieval.TopK)
	assert.Equal(t, 4000, cfg.Synthesis.MaxCombineChars)
	assert.Equal(t, "qwen2:1.5b", cfg.LLM.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.BaseURL)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	t.Setenv("PORT", "9999")

	_, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "qwen2:1.5b")
	assert.Contains(t, string(data), "port: 8000")

	// 두 번째 로드는 생성된 파일을 그대로 읽습니다
	t.Setenv("PORT", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Retrieval, cfg.Retrieval)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoad_MissingTOMLWritesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := Load(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[retrieval]")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
retrieval:
  top_k: 5
llm:
  type: gemini
synthesis:
  map_concurrency: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "gemini", cfg.LLM.Type)
	assert.Equal(t, 4, cfg.Synthesis.MapConcurrency)
	// 지정하지 않은 값은 기본값 유지
	assert.Equal(t, "review", cfg.Corpus.Column)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Gemini.Model)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("LLM_MODEL", "llama3.2")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.Ollama.BaseURL)
	assert.Equal(t, "http://ollama:11434", cfg.Embedder.Ollama.BaseURL)
	assert.Equal(t, "llama3.2", cfg.LLM.Ollama.Model)
}

func TestLoad_InvalidPortEnvFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"unknown embedder", func(c *Config) { c.Embedder.Type = "faiss" }},
		{"unknown llm", func(c *Config) { c.LLM.Type = "openai" }},
		{"empty index path", func(c *Config) { c.Index.Path = "" }},
		{"notion without database", func(c *Config) { c.Corpus.Source = "notion" }},
		{"unknown source", func(c *Config) { c.Corpus.Source = "xlsx" }},
		{"empty column", func(c *Config) { c.Corpus.Column = "" }},
		{"negative max_combine_chars", func(c *Config) { c.Synthesis.MaxCombineChars = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Retrieval.TopK = 7

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8181

[retrieval]
top_k = 3
min_similarity = 0.5

[llm.ollama]
model = "qwen2:7b"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.5, cfg.Retrieval.MinSimilarity, 1e-6)
	assert.Equal(t, "qwen2:7b", cfg.LLM.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.BaseURL)
}

func TestSave_TOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Synthesis.MapConcurrency = 3

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Synthesis.MapConcurrency)
	assert.Equal(t, cfg.Index.Path, loaded.Index.Path)
}
